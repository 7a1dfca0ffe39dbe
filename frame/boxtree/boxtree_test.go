package boxtree

import (
	"context"
	"sync"
	"testing"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/cascade"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
	"github.com/npillmayer/layoutcore/dom/style/cssom/douceuradapter"
	"github.com/npillmayer/layoutcore/dom/style/selector"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSource styles a document sequentially and serves it to the builder.
type testSource struct {
	doc    *dom.Document
	styles map[dom.NodeID]*style.ComputedStyle
	mu     sync.Mutex
	built  map[dom.NodeID][]*Box
	reuse  map[dom.NodeID][]*Box
}

func newTestSource(t *testing.T, markup string, sheet string) *testSource {
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	store := cssom.NewStore(douceuradapter.UserAgentSheet())
	if sheet != "" {
		store.Add(cssom.Author, douceuradapter.MustParse(sheet))
	}
	idx := selector.Compile(store.Current())
	src := &testSource{
		doc:    doc,
		styles: make(map[dom.NodeID]*style.ComputedStyle),
		built:  make(map[dom.NodeID][]*Box),
		reuse:  make(map[dom.NodeID][]*Box),
	}
	var root *style.ComputedStyle
	var walk func(id dom.NodeID, parent *style.ComputedStyle)
	walk = func(id dom.NodeID, parent *style.ComputedStyle) {
		if doc.Tag(id) == "" {
			src.styles[id] = parent
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
		src.styles[id] = s
		for _, c := range doc.Children(id) {
			walk(c, s)
		}
	}
	walk(doc.Root(), nil)
	return src
}

func (src *testSource) Root() dom.NodeID                      { return src.doc.Root() }
func (src *testSource) Children(id dom.NodeID) []dom.NodeID    { return src.doc.Children(id) }
func (src *testSource) Tag(id dom.NodeID) string               { return src.doc.Tag(id) }
func (src *testSource) Text(id dom.NodeID) (string, bool)      { return src.doc.Text(id) }
func (src *testSource) Style(id dom.NodeID) *style.ComputedStyle { return src.styles[id] }

func (src *testSource) Attr(id dom.NodeID, key string) (string, bool) {
	return src.doc.Attr(id, key)
}

func (src *testSource) Reusable(id dom.NodeID) ([]*Box, bool) {
	src.mu.Lock()
	defer src.mu.Unlock()
	b, ok := src.reuse[id]
	return b, ok
}

func (src *testSource) Built(id dom.NodeID, boxes []*Box) {
	src.mu.Lock()
	defer src.mu.Unlock()
	src.built[id] = boxes
}

// find returns the first box generated by an element with the given tag.
func (src *testSource) find(b *Box, tag string) *Box {
	if b.Node != dom.NoNode && src.doc.Tag(b.Node) == tag {
		return b
	}
	for _, c := range b.Children {
		if f := src.find(c, tag); f != nil {
			return f
		}
	}
	return nil
}

func build(t *testing.T, src *testSource, pool *tree.Pool) *Box {
	root, err := Build(context.Background(), pool, src, Options{})
	require.NoError(t, err)
	require.NotNil(t, root)
	return root
}

func kinds(boxes []*Box) []string {
	var k []string
	for _, b := range boxes {
		k = append(k, b.String())
	}
	return k
}

func TestAnonymousBlocks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	src := newTestSource(t, `<div id="d">text<p>para</p>more</div>`, "")
	root := build(t, src, nil)
	t.Logf("box tree:\n%s", Dump(root))
	assert.Equal(t, BlockBox, root.Kind)
	d := src.find(root, "div")
	require.NotNil(t, d)
	require.Len(t, d.Children, 3)
	assert.True(t, d.Children[0].Anonymous)
	assert.Equal(t, BlockBox, d.Children[1].Kind)
	assert.False(t, d.Children[1].Anonymous)
	assert.True(t, d.Children[2].Anonymous)
	assert.Equal(t, "more", d.Children[2].Children[0].Text)
}

func TestBlockInInline(t *testing.T) {
	src := newTestSource(t, `<div><span>a<p>b</p>c</span></div>`, "")
	root := build(t, src, nil)
	d := src.find(root, "div")
	require.Len(t, d.Children, 3, "div children: %v", kinds(d.Children))
	for _, i := range []int{0, 2} {
		anon := d.Children[i]
		assert.True(t, anon.Anonymous)
		require.Len(t, anon.Children, 1)
		assert.Equal(t, InlineBox, anon.Children[0].Kind)
	}
	assert.Equal(t, d.Children[0].Children[0].Node, d.Children[2].Children[0].Node)
}

func TestFlexItems(t *testing.T) {
	src := newTestSource(t, `<div style="display:flex">text<span>s</span> </div>`, "")
	root := build(t, src, nil)
	flex := src.find(root, "div")
	require.Equal(t, FlexBox, flex.Kind)
	require.Len(t, flex.Children, 2, "flex items: %v", kinds(flex.Children))
	assert.True(t, flex.Children[0].Anonymous)
	assert.Equal(t, BlockBox, flex.Children[1].Kind)
	assert.False(t, flex.Children[1].Inline)
}

func TestTableFixup(t *testing.T) {
	src := newTestSource(t, `<div><span style="display:table-cell">x</span>
		<span style="display:table-cell">y</span></div>`, "")
	root := build(t, src, nil)
	d := src.find(root, "div")
	require.Len(t, d.Children, 1)
	table := d.Children[0]
	assert.Equal(t, TableBox, table.Kind)
	assert.True(t, table.Anonymous)
	require.Len(t, table.Children, 1)
	group := table.Children[0]
	assert.Equal(t, TableRowGroupBox, group.Kind)
	require.Len(t, group.Children, 1)
	row := group.Children[0]
	assert.Equal(t, TableRowBox, row.Kind)
	require.Len(t, row.Children, 2)
	assert.Equal(t, TableCellBox, row.Children[1].Kind)
	//
	src = newTestSource(t, `<table><tr><td colspan="2">a</td></tr></table>`, "")
	root = build(t, src, nil)
	td := src.find(root, "td")
	require.NotNil(t, td)
	assert.Equal(t, 2, td.Span)
}

func TestDisplayNoneAndContents(t *testing.T) {
	src := newTestSource(t, `<div id="outer"><div style="display:contents"><p>a</p><p>b</p></div>
		<span style="display:none">x</span></div>`, "")
	root := build(t, src, nil)
	outer := src.find(root, "div")
	var tags []string
	for _, c := range outer.Children {
		if c.Node != dom.NoNode {
			tags = append(tags, src.doc.Tag(c.Node))
		}
	}
	assert.Equal(t, []string{"p", "p"}, tags)
	assert.Nil(t, src.find(root, "span"))
}

func TestReplacedAndOutOfFlow(t *testing.T) {
	src := newTestSource(t, `<p><img width="100"><b style="float:left">f</b></p>
		<div style="position:absolute">abs</div>`, "")
	root := build(t, src, nil)
	img := src.find(root, "img")
	require.Equal(t, ReplacedBox, img.Kind)
	assert.Equal(t, &Replaced{Width: 100, Height: 50}, img.Replaced)
	assert.True(t, img.Inline)
	f := src.find(root, "b")
	assert.Equal(t, FloatLeft, f.Placement)
	assert.False(t, f.Inline)
	abs := src.find(root, "div")
	assert.Equal(t, Absolute, abs.Placement)
	assert.True(t, abs.IsOutOfFlow())
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, " a b ", CollapseWhitespace("\n  a \t\n b  ", false))
	assert.Equal(t, "a\nb", CollapseWhitespace("a  \n  b", true))
	assert.Equal(t, "", CollapseWhitespace("", false))
}

func TestParallelBuildAndReuse(t *testing.T) {
	markup := `<div><p>one <b>two</b></p><ul><li>a</li><li>b</li><li>c</li></ul>
		<table><tr><td>1</td><td>2</td></tr></table></div>`
	seq := build(t, newTestSource(t, markup, ""), nil)
	pool := tree.NewPool(4)
	defer pool.Close()
	src := newTestSource(t, markup, "")
	par := build(t, src, pool)
	assert.Equal(t, Dump(seq), Dump(par))
	//
	ul := src.find(par, "ul")
	ulID := ul.Node
	src.reuse[ulID] = src.built[ulID]
	again := build(t, src, pool)
	assert.Same(t, ul, src.find(again, "ul"))
	assert.Equal(t, Dump(par), Dump(again))
}

func TestStructural(t *testing.T) {
	base := style.InitialStyle()
	b := style.NewBuilder(base)
	b.Set("text-align", "center")
	aligned := b.Build()
	b = style.NewBuilder(base)
	b.Set("display", "flex")
	flex := b.Build()
	assert.False(t, Structural(base, aligned))
	assert.True(t, Structural(base, flex))
	assert.True(t, Structural(nil, base))
	assert.False(t, Structural(nil, nil))
}

func TestRefreshKeepsShape(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.frame")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	src := newTestSource(t, `<div>before <p>block</p> after</div>`, "")
	root := build(t, src, nil)
	div := src.find(root, "div")
	require.NotNil(t, div)
	p := src.find(div, "p")
	require.NotNil(t, p)
	pStyle := p.Style
	var all []*Box
	var collect func(*Box)
	collect = func(b *Box) {
		all = append(all, b)
		b.SetIntrinsic(Sizes{Min: 1, Max: 2})
		b.SetMemo(10, 10, "piece")
		for _, c := range b.Children {
			collect(c)
		}
	}
	collect(div)
	shape := Dump(div)
	owned := func(b *Box) bool {
		switch {
		case b.Node == div.Node || b.Anonymous:
			return true
		case b.Kind == TextBox:
			return src.doc.Parent(b.Node) == div.Node
		}
		return false
	}
	bld := style.NewBuilder(div.Style)
	bld.Set("text-align", "center")
	s := bld.Build()
	Refresh([]*Box{div}, s, owned, DropIntrinsic)
	assert.Equal(t, shape, Dump(div))
	assert.Same(t, s, div.Style)
	assert.Same(t, pStyle, p.Style, "boxes of other elements keep their style")
	_, ok := p.Intrinsic()
	assert.True(t, ok, "caches of other elements are kept")
	anon := 0
	for _, b := range all {
		if b.Anonymous {
			anon++
			assert.Equal(t, "center", b.Style.Get("text-align").String())
			assert.Equal(t, "block", b.Style.Get("display").String())
		}
		if owned(b) {
			assert.False(t, b.Settled(), "box %v keeps its sizes", b)
			_, ok := b.Memo(10, 10)
			assert.False(t, ok)
		}
	}
	assert.Equal(t, 2, anon, "text runs are wrapped in anonymous blocks")
	//
	div.SetIntrinsic(Sizes{Min: 1, Max: 2})
	div.SetMemo(10, 10, "piece")
	Refresh([]*Box{div}, nil, owned, DropLayout)
	assert.Same(t, s, div.Style)
	_, ok = div.Intrinsic()
	assert.True(t, ok, "dropping the layout keeps intrinsic sizes")
	assert.False(t, div.Settled())
	_, ok = div.Memo(10, 10)
	assert.False(t, ok)
	div.SetIntrinsic(Sizes{Min: 1, Max: 2})
	assert.True(t, div.Settled())
}
