package layout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/cascade"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
	"github.com/npillmayer/layoutcore/dom/style/cssom/douceuradapter"
	"github.com/npillmayer/layoutcore/dom/style/selector"
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/layoutcore/frame/fragment"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tyse/core/dimen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDoc is a document styled sequentially, serving as a box tree source.
type testDoc struct {
	doc    *dom.Document
	styles map[dom.NodeID]*style.ComputedStyle
}

const baseSheet = `html, body { margin: 0 } body { font-size: 13px; line-height: 20px }`

func newTestDoc(t *testing.T, markup string, sheet string) *testDoc {
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	store := cssom.NewStore(douceuradapter.UserAgentSheet())
	store.Add(cssom.Author, douceuradapter.MustParse(baseSheet+sheet))
	idx := selector.Compile(store.Current())
	td := &testDoc{doc: doc, styles: make(map[dom.NodeID]*style.ComputedStyle)}
	var root *style.ComputedStyle
	var walk func(id dom.NodeID, parent *style.ComputedStyle)
	walk = func(id dom.NodeID, parent *style.ComputedStyle) {
		if doc.Tag(id) == "" {
			td.styles[id] = parent
			return
		}
		var inline []cssom.Declaration
		if v, ok := doc.Attr(id, "style"); ok {
			decls, err := douceuradapter.ParseDeclarations(v)
			require.NoError(t, err)
			inline = selector.Expand(decls)
		}
		s := cascade.Resolve(idx.Match(doc.Node(id)), inline,
			cascade.Context{Parent: parent, Root: root, Viewport: css.DefaultViewport})
		if root == nil {
			root = s
		}
		td.styles[id] = s
		for _, c := range doc.Children(id) {
			walk(c, s)
		}
	}
	walk(doc.Root(), nil)
	return td
}

func (td *testDoc) Root() dom.NodeID                           { return td.doc.Root() }
func (td *testDoc) Children(id dom.NodeID) []dom.NodeID         { return td.doc.Children(id) }
func (td *testDoc) Tag(id dom.NodeID) string                    { return td.doc.Tag(id) }
func (td *testDoc) Text(id dom.NodeID) (string, bool)           { return td.doc.Text(id) }
func (td *testDoc) Attr(id dom.NodeID, key string) (string, bool) { return td.doc.Attr(id, key) }
func (td *testDoc) Style(id dom.NodeID) *style.ComputedStyle    { return td.styles[id] }
func (td *testDoc) Reusable(dom.NodeID) ([]*boxtree.Box, bool)  { return nil, false }
func (td *testDoc) Built(dom.NodeID, []*boxtree.Box)            {}

func (td *testDoc) boxes(t *testing.T) *boxtree.Box {
	root, err := boxtree.Build(context.Background(), nil, td, boxtree.Options{})
	require.NoError(t, err)
	return root
}

// byTag returns the fragments of all elements with a given tag, in paint
// order.
func (td *testDoc) byTag(root *fragment.Fragment, tag string) []*fragment.Fragment {
	var found []*fragment.Fragment
	root.Walk(func(f *fragment.Fragment, _ int) bool {
		if f.Node != dom.NoNode && !f.Anonymous && td.doc.Tag(f.Node) == tag {
			found = append(found, f)
		}
		return true
	})
	return found
}

func texts(root *fragment.Fragment) []*fragment.Fragment {
	var found []*fragment.Fragment
	root.Walk(func(f *fragment.Fragment, _ int) bool {
		if f.Kind == fragment.Text {
			found = append(found, f)
		}
		return true
	})
	return found
}

func run(t *testing.T, markup, sheet string) (*testDoc, *fragment.Fragment) {
	td := newTestDoc(t, markup, sheet)
	root, err := Layout(context.Background(), nil, td.boxes(t), Options{})
	require.NoError(t, err)
	require.NotNil(t, root)
	return td, root
}

// ---------------------------------------------------------------------------

func TestBlockStacking(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><div id="c" style="width:400px">`+
		`<div style="height:50px"></div><div style="height:75px"></div></div></body></html>`, "")
	divs := td.byTag(root, "div")
	require.Len(t, divs, 3)
	assert.Equal(t, fragment.Rect{X: 0, Y: 0, W: 400, H: 125}, divs[0].Bounds)
	assert.Equal(t, fragment.Rect{X: 0, Y: 0, W: 400, H: 50}, divs[1].Bounds)
	assert.Equal(t, fragment.Rect{X: 0, Y: 50, W: 400, H: 75}, divs[2].Bounds)
	assert.Equal(t, 800.0, root.Bounds.W)
}

func TestBoxModelEdges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><div style="width:100px;padding:10px;border:2px solid red;margin:5px">`+
		`</div></body></html>`, "")
	div := td.byTag(root, "div")[0]
	assert.Equal(t, fragment.Rect{X: 5, Y: 5, W: 124, H: 24}, div.Bounds)
	assert.Equal(t, fragment.Edges{Top: 2, Right: 2, Bottom: 2, Left: 2}, div.Border)
	assert.Equal(t, fragment.Rect{X: 17, Y: 17, W: 100, H: 0}, div.ContentBox())
	assert.Equal(t, "#ff0000", div.Paint.BorderColor)
}

func TestAutoMarginsCentre(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><div style="width:200px;margin-left:auto;margin-right:auto;height:10px">`+
		`</div></body></html>`, "")
	div := td.byTag(root, "div")[0]
	if div.Bounds.X != 300 {
		t.Errorf("expected centred box at x=300, is %v", div.Bounds)
	}
}

func TestFlexGrow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><div style="display:flex;width:400px">`+
		`<p style="flex-grow:1;margin:0"></p><p style="flex-grow:2;margin:0"></p><p style="flex-grow:1;margin:0"></p>`+
		`</div></body></html>`, "")
	items := td.byTag(root, "p")
	require.Len(t, items, 3)
	widths := []float64{items[0].Bounds.W, items[1].Bounds.W, items[2].Bounds.W}
	assert.Equal(t, []float64{100, 200, 100}, widths)
	xs := []float64{items[0].Bounds.X, items[1].Bounds.X, items[2].Bounds.X}
	assert.Equal(t, []float64{0, 100, 300}, xs)
	assert.Equal(t, fragment.Flex, td.byTag(root, "div")[0].Kind)
}

func TestFlexJustifyAndStretch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><div style="display:flex;width:300px;height:60px;justify-content:space-between">`+
		`<p style="width:50px;margin:0"></p><p style="width:50px;margin:0;align-self:center;height:20px"></p>`+
		`<p style="width:50px;margin:0"></p></div></body></html>`, "")
	items := td.byTag(root, "p")
	require.Len(t, items, 3)
	assert.Equal(t, fragment.Rect{X: 0, Y: 0, W: 50, H: 60}, items[0].Bounds)
	assert.Equal(t, fragment.Rect{X: 125, Y: 20, W: 50, H: 20}, items[1].Bounds)
	assert.Equal(t, fragment.Rect{X: 250, Y: 0, W: 50, H: 60}, items[2].Bounds)
}

func TestFlexShrinkRespectsMinimum(t *testing.T) {
	items := []*flexItem{
		{base: 200, hypo: 200, min: 150, max: 1000, shrink: 1},
		{base: 200, hypo: 200, min: 0, max: 1000, shrink: 1},
	}
	resolveFlexible(items, 300, true)
	assert.Equal(t, 150.0, items[0].target)
	assert.Equal(t, 150.0, items[1].target)
	items = []*flexItem{
		{base: 100, hypo: 100, min: 0, max: 1000, shrink: 1},
		{base: 300, hypo: 300, min: 280, max: 1000, shrink: 1},
	}
	resolveFlexible(items, 300, true)
	assert.Equal(t, 20.0, items[0].target)
	assert.Equal(t, 280.0, items[1].target)
}

func TestInlineWrapping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><div style="width:70px">aaaa bbbb cccc</div></body></html>`, "")
	div := td.byTag(root, "div")[0]
	assert.Equal(t, 40.0, div.Bounds.H)
	txt := texts(root)
	require.Len(t, txt, 2)
	assert.Equal(t, "aaaa bbbb", txt[0].Text)
	assert.Equal(t, fragment.Rect{X: 0, Y: 0, W: 63, H: 20}, txt[0].Bounds)
	assert.Equal(t, "cccc", txt[1].Text)
	assert.Equal(t, fragment.Rect{X: 0, Y: 20, W: 28, H: 20}, txt[1].Bounds)
}

func TestTextAlignment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	for align, x := range map[string]float64{"left": 0, "center": 43, "right": 86, "end": 86} {
		_, root := run(t, fmt.Sprintf(`<html><body><div style="width:100px;text-align:%s">ab</div></body></html>`, align), "")
		txt := texts(root)
		require.Len(t, txt, 1)
		if txt[0].Bounds.X != x {
			t.Errorf("expected text-align %s to place text at %v, is %v", align, x, txt[0].Bounds.X)
		}
	}
}

func TestInlineBoxAcrossLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><div style="width:70px">aaaa <span style="padding:0 5px">bbbb cccc</span></div>`+
		`</body></html>`, "")
	spans := td.byTag(root, "span")
	require.Len(t, spans, 2)
	assert.Equal(t, fragment.Rect{X: 35, Y: 0, W: 33, H: 20}, spans[0].Bounds)
	assert.Equal(t, fragment.Rect{X: 0, Y: 20, W: 33, H: 20}, spans[1].Bounds)
	assert.Equal(t, 5.0, spans[0].Padding.Left)
	assert.Equal(t, 0.0, spans[0].Padding.Right)
	assert.Equal(t, 0.0, spans[1].Padding.Left)
	assert.Equal(t, 5.0, spans[1].Padding.Right)
	require.Len(t, spans[0].Children, 1)
	assert.Equal(t, "bbbb", spans[0].Children[0].Text)
	assert.Equal(t, 40.0, spans[0].Children[0].Bounds.X)
}

func TestForcedLineBreak(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><div>ab<br>cd</div></body></html>`, "")
	assert.Equal(t, 40.0, td.byTag(root, "div")[0].Bounds.H)
	var ys []float64
	for _, f := range texts(root) {
		if strings.TrimSpace(f.Text) != "" {
			ys = append(ys, f.Bounds.Y)
		}
	}
	assert.Equal(t, []float64{0, 20}, ys)
}

func TestTableColumns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><table><tr><td style="width:50px"></td><td style="width:100px"></td></tr>`+
		`<tr><td colspan="2" style="height:30px"></td></tr></table></body></html>`, "")
	table := td.byTag(root, "table")[0]
	assert.Equal(t, 154.0, table.Bounds.W)
	cells := td.byTag(root, "td")
	require.Len(t, cells, 3)
	assert.Equal(t, fragment.Rect{X: 0, Y: 0, W: 52, H: 2}, cells[0].Bounds)
	assert.Equal(t, fragment.Rect{X: 52, Y: 0, W: 102, H: 2}, cells[1].Bounds)
	assert.Equal(t, fragment.Rect{X: 0, Y: 2, W: 154, H: 32}, cells[2].Bounds)
	assert.Equal(t, 34.0, table.Bounds.H)
	assert.Len(t, td.byTag(root, "tr"), 2)
}

func TestDistributeColumns(t *testing.T) {
	cols := []boxtree.Sizes{{Min: 10, Max: 20}, {Min: 10, Max: 60}}
	assert.Equal(t, []dimen.DU{10, 10}, distribute(cols, 10))
	assert.Equal(t, []dimen.DU{15, 35}, distribute(cols, 50))
	assert.Equal(t, []dimen.DU{25, 75}, distribute(cols, 100))
}

func TestReplacedAspectRatio(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><div><img width="200" height="100" style="width:100px"></div></body></html>`, "")
	img := td.byTag(root, "img")[0]
	assert.Equal(t, fragment.Replaced, img.Kind)
	assert.Equal(t, 100.0, img.Bounds.W)
	assert.Equal(t, 50.0, img.Bounds.H)
	td, root = run(t, `<html><body><div><img></div></body></html>`, "")
	img = td.byTag(root, "img")[0]
	assert.Equal(t, float64(boxtree.DefaultReplacedWidth), img.Bounds.W)
	assert.Equal(t, float64(boxtree.DefaultReplacedHeight), img.Bounds.H)
}

func TestFloats(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	for overflow, h := range map[string]float64{"visible": 0, "hidden": 60} {
		td, root := run(t, `<html><body><div style="width:300px;overflow:`+overflow+`">`+
			`<p style="float:left;width:100px;height:50px;margin:0"></p>`+
			`<p style="float:left;width:100px;height:50px;margin:0"></p>`+
			`<p style="float:right;width:100px;height:20px;margin:0"></p>`+
			`<p style="float:left;width:250px;height:10px;margin:0"></p>`+
			`</div></body></html>`, "")
		ps := td.byTag(root, "p")
		require.Len(t, ps, 4)
		assert.Equal(t, fragment.Rect{X: 0, Y: 0, W: 100, H: 50}, ps[0].Bounds)
		assert.Equal(t, fragment.Rect{X: 100, Y: 0, W: 100, H: 50}, ps[1].Bounds)
		assert.Equal(t, fragment.Rect{X: 200, Y: 0, W: 100, H: 20}, ps[2].Bounds)
		assert.Equal(t, fragment.Rect{X: 0, Y: 50, W: 250, H: 10}, ps[3].Bounds)
		if div := td.byTag(root, "div")[0]; div.Bounds.H != h {
			t.Errorf("expected container with overflow %s to be %vpx high, is %v", overflow, h, div.Bounds.H)
		}
	}
}

func TestAbsoluteAndFixed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td, root := run(t, `<html><body><div style="position:relative;width:200px;height:100px;margin-left:50px">`+
		`<p style="position:absolute;right:10px;top:5px;width:20px;height:20px;margin:0"></p>`+
		`<section style="position:fixed;left:0;bottom:0;width:10px;height:10px"></section>`+
		`</div></body></html>`, "")
	abs := td.byTag(root, "p")[0]
	assert.Equal(t, fragment.Rect{X: 220, Y: 5, W: 20, H: 20}, abs.Bounds)
	fixed := td.byTag(root, "section")[0]
	assert.Equal(t, fragment.Rect{X: 0, Y: 590, W: 10, H: 10}, fixed.Bounds)
}

func TestDepthLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td := newTestDoc(t, `<html><body><div><div><div><div><div>deep</div></div></div></div></div></body></html>`, "")
	var mu sync.Mutex
	var diags []Diagnostic
	opts := Options{MaxDepth: 3, Report: func(d Diagnostic) {
		mu.Lock()
		defer mu.Unlock()
		diags = append(diags, d)
	}}
	root, err := Layout(context.Background(), nil, td.boxes(t), opts)
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Equal(t, DepthExceeded, diags[0].Kind)
	broken := 0
	root.Walk(func(f *fragment.Fragment, _ int) bool {
		if f.NotRendered {
			broken++
			assert.Empty(t, f.Children)
		}
		return true
	})
	assert.Equal(t, 1, broken)
}

func TestLayoutIsDeterministicAcrossPools(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	var sb strings.Builder
	sb.WriteString(`<html><body>`)
	for i := range 40 {
		fmt.Fprintf(&sb, `<div style="padding:%dpx"><p>item %d with some text to wrap around</p>`, i%5, i)
		fmt.Fprintf(&sb, `<div style="display:flex"><span>a</span><span style="flex-grow:%d">b</span></div>`, i%3)
		sb.WriteString(`<table><tr><td>x</td><td>yy</td></tr></table></div>`)
	}
	sb.WriteString(`</body></html>`)
	td := newTestDoc(t, sb.String(), "")
	sequential, err := Layout(context.Background(), nil, td.boxes(t), Options{})
	require.NoError(t, err)
	for _, n := range []int{1, 4} {
		pool := tree.NewPool(n)
		parallel, err := Layout(context.Background(), pool, td.boxes(t), Options{Threshold: 2, LeafBatch: 2})
		pool.Close()
		require.NoError(t, err)
		if diff := cmp.Diff(sequential, parallel); diff != "" {
			t.Errorf("layout with %d workers differs from sequential layout (-seq +par):\n%s", n, diff)
		}
	}
}

func TestLayoutReusesMemo(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td := newTestDoc(t, `<html><body><div>hello world</div></body></html>`, "")
	boxes := td.boxes(t)
	first, err := Layout(context.Background(), nil, boxes, Options{})
	require.NoError(t, err)
	_, ok := boxes.Memo(css.PixelsToDU(800), css.PixelsToDU(600))
	assert.True(t, ok, "root layout should be memoized")
	second, err := Layout(context.Background(), nil, boxes, Options{})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, second))
	boxes.Invalidate()
	_, ok = boxes.Memo(css.PixelsToDU(800), css.PixelsToDU(600))
	assert.False(t, ok)
}

func TestLayoutRecomputesDroppedSizes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td := newTestDoc(t, `<html><body><div style="float:left"><div style="width:120px">`+
		`<p>some words</p></div></div></body></html>`, "")
	boxes := td.boxes(t)
	first, err := Layout(context.Background(), nil, boxes, Options{})
	require.NoError(t, err)
	// drop the sizes of the deepest box and the memoized layout above it
	var path []*boxtree.Box
	for b := boxes; b != nil; {
		path = append(path, b)
		if len(b.Children) == 0 {
			break
		}
		b = b.Children[0]
	}
	deepest := path[len(path)-1]
	deepest.Invalidate()
	for _, b := range path[:len(path)-1] {
		b.DropMemo()
		assert.False(t, b.Settled())
	}
	second, err := Layout(context.Background(), nil, boxes, Options{})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(first, second))
	_, ok := deepest.Intrinsic()
	assert.True(t, ok, "dropped sizes are recomputed")
	for _, b := range path {
		assert.True(t, b.Settled(), "box %v must be settled after layout", b)
	}
}

func TestLayoutHonoursCancellation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td := newTestDoc(t, `<html><body><div>hello</div></body></html>`, "")
	boxes := td.boxes(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Layout(ctx, nil, boxes, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := boxes.Memo(css.PixelsToDU(800), css.PixelsToDU(600))
	assert.False(t, ok, "cancelled layout must not leave memoized results")
	_, err = Layout(context.Background(), nil, nil, Options{})
	assert.ErrorIs(t, err, ErrNoBoxTree)
}

func TestPaintReadsCurrentStyle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	td := newTestDoc(t, `<html><body><div style="background-color:red;height:10px"></div></body></html>`, "")
	boxes := td.boxes(t)
	div := td.byTag
	root, err := Layout(context.Background(), nil, boxes, Options{Style: td.Style})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", div(root, "div")[0].Paint.Background)
	for id, s := range td.styles {
		if td.doc.Tag(id) == "div" {
			b := style.NewBuilder(s)
			b.Set("background-color", "#0000ffff")
			td.styles[id] = b.Build()
		}
	}
	root, err = Layout(context.Background(), nil, boxes, Options{Style: td.Style})
	require.NoError(t, err)
	assert.Equal(t, "#0000ff", div(root, "div")[0].Paint.Background)
}
