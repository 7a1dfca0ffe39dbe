package style

import (
	"image/color"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialStyle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.style")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	s := InitialStyle()
	assert.Equal(t, Property("inline"), s.Get("display"))
	assert.Equal(t, Property("16px"), s.Get("font-size"))
	assert.Equal(t, Property("0px"), s.Get("margin-left"))
	assert.Equal(t, NullStyle, s.Get("no-such-property"))
	for _, k := range Keys() {
		if s.Get(k).IsEmpty() {
			t.Errorf("expected property %s to have an initial value, hasn't", k)
		}
	}
	assert.True(t, IsCascading("color"))
	assert.False(t, IsCascading("margin-top"))
	assert.True(t, AffectsLayout("width"))
	assert.False(t, AffectsLayout("background-color"))
}

func TestBuilderSharesGroups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.style")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	b := NewBuilder(nil)
	b.Set("color", "#ff0000")
	b.Set("display", "block")
	parent := b.Build()
	b = NewBuilder(parent)
	b.Set("margin-top", "10px")
	child := b.Build()
	assert.Equal(t, Property("#ff0000"), child.Get("color")) // inherited group
	assert.Equal(t, Property("inline"), child.Get("display")) // not inherited
	assert.True(t, child.SharesGroup(parent, Text))
	assert.True(t, child.SharesGroup(InitialStyle(), Display))
	assert.False(t, child.SharesGroup(InitialStyle(), Margins))
	assert.Equal(t, []string{"display", "margin-top"}, parent.Differences(child))
	assert.False(t, parent.Equal(child))
	//
	b = NewBuilder(parent)
	b.Set("margin-top", "0px") // same as initial, no fork
	same := b.Build()
	assert.True(t, same.SharesGroup(InitialStyle(), Margins))
	assert.Panics(t, func() { b.Set("color", "blue") })
}

func TestSplitCompoundProperty(t *testing.T) {
	kv, err := SplitCompoundProperty("margin", "1px 2px")
	require.NoError(t, err)
	assert.Equal(t, []KeyValue{
		{"margin-top", "1px"}, {"margin-right", "2px"},
		{"margin-bottom", "1px"}, {"margin-left", "2px"},
	}, kv)
	kv, err = SplitCompoundProperty("border-top", "solid rgb(1, 2, 3) 2px")
	require.NoError(t, err)
	assert.Equal(t, []KeyValue{
		{"border-top-width", "2px"}, {"border-top-style", "solid"},
		{"border-top-color", "rgb(1, 2, 3)"},
	}, kv)
	kv, err = SplitCompoundProperty("flex", "2")
	require.NoError(t, err)
	assert.Equal(t, []KeyValue{{"flex-grow", "2"}, {"flex-shrink", "1"}, {"flex-basis", "0%"}}, kv)
	kv, err = SplitCompoundProperty("padding", "inherit")
	require.NoError(t, err)
	assert.Len(t, kv, 4)
	assert.Equal(t, Property("inherit"), kv[3].Value)
	kv, err = SplitCompoundProperty("border-radius", "4px")
	require.NoError(t, err)
	assert.Equal(t, "border-top-left-radius", kv[0].Key)
	_, err = SplitCompoundProperty("margin", "1px 2px 3px 4px 5px")
	assert.Error(t, err)
	_, err = SplitCompoundProperty("font", "12px serif")
	assert.Error(t, err)
}

func TestColors(t *testing.T) {
	for _, test := range []struct {
		in  Property
		out color.RGBA
	}{
		{"red", color.RGBA{0xff, 0, 0, 0xff}},
		{"#0f0", color.RGBA{0, 0xff, 0, 0xff}},
		{"#0000ff80", color.RGBA{0, 0, 0xff, 0x80}},
		{"rgb(255, 128, 0)", color.RGBA{0xff, 0x80, 0, 0xff}},
		{"rgba(0, 0, 0, 0)", color.RGBA{}},
		{"transparent", color.RGBA{}},
	} {
		c, err := test.in.Color()
		require.NoError(t, err)
		if c != test.out {
			t.Errorf("expected %s to be %v, is %v", test.in, test.out, c)
		}
	}
	_, err := Property("fuchsia-ish").Color()
	assert.Error(t, err)
	assert.Equal(t, "#ff0000", ColorString(color.RGBA{0xff, 0, 0, 0xff}))
	assert.Equal(t, "#00000000", ColorString(color.RGBA{}))
}
