package dom

import (
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var myhtml = `<html><head></head><body>
  <!-- comment -->
  <p id="p1" class="x">The quick brown fox</p>
  <div>jumps <span>over</span></div>
</body></html>`

func TestParseAssignsIDs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.dom")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	doc, err := ParseString(myhtml)
	require.NoError(t, err)
	root := doc.Root()
	assert.Equal(t, "html", doc.Tag(root))
	kids := doc.Children(root)
	require.Len(t, kids, 2)
	assert.Equal(t, "head", doc.Tag(kids[0]))
	body := kids[1]
	assert.Equal(t, root, doc.Parent(body))
	var tags []string
	for _, c := range doc.Children(body) {
		if tag := doc.Tag(c); tag != "" {
			tags = append(tags, tag)
		}
	}
	assert.Equal(t, []string{"p", "div"}, tags) // comment is not registered
	p := findTag(doc, root, "p")
	v, ok := doc.Attr(p, "class")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	id, ok := doc.ID(doc.Node(p))
	assert.True(t, ok)
	assert.Equal(t, p, id)
}

func TestMutationsNotifyObservers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.dom")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	doc, err := ParseString(myhtml)
	require.NoError(t, err)
	var seen []Mutation
	doc.Observe(ObserverFunc(func(m Mutation) { seen = append(seen, m) }))
	p := findTag(doc, doc.Root(), "p")
	require.NoError(t, doc.SetAttribute(p, "class", "y"))
	require.NoError(t, doc.SetAttribute(p, "class", "y")) // no change, no notification
	require.NoError(t, doc.RemoveAttribute(p, "id"))
	txt := doc.Children(p)[0]
	require.NoError(t, doc.SetText(txt, "lazy dog"))
	assert.ErrorIs(t, doc.SetText(p, "x"), ErrNotText)
	//
	div := findTag(doc, doc.Root(), "div")
	em, err := doc.AppendChild(div, NewElement("em", "class", "z"))
	require.NoError(t, err)
	assert.Equal(t, div, doc.Parent(em))
	_, err = doc.InsertBefore(div, em, NewText("!"))
	require.NoError(t, err)
	_, err = doc.AppendChild(div, doc.Node(p))
	assert.ErrorIs(t, err, ErrAttached)
	before := doc.Len()
	require.NoError(t, doc.RemoveChild(div))
	assert.False(t, doc.Contains(em))
	assert.Less(t, doc.Len(), before)
	//
	kinds := make([]MutationKind, len(seen))
	for i, m := range seen {
		kinds[i] = m.Kind
	}
	assert.Equal(t, []MutationKind{AttributeChanged, AttributeChanged, TextChanged,
		NodeInserted, NodeInserted, NodeRemoved}, kinds)
	last := seen[len(seen)-1]
	assert.Equal(t, div, last.Removed[0])
	assert.Contains(t, last.Removed, em)
	assert.Equal(t, uint64(len(seen)), doc.Version())
	if seen[1].Attribute != "id" {
		t.Errorf("expected 2nd mutation to concern attribute 'id', is %q", seen[1].Attribute)
	}
}

func TestIsWhitespace(t *testing.T) {
	assert.True(t, IsWhitespace(" \n\t "))
	assert.True(t, IsWhitespace(""))
	assert.False(t, IsWhitespace(" x "))
}

func findTag(doc *Document, id NodeID, tag string) NodeID {
	if doc.Tag(id) == tag {
		return id
	}
	for _, c := range doc.Children(id) {
		if f := findTag(doc, c, tag); f != NoNode {
			return f
		}
	}
	return NoNode
}
