package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
	"github.com/npillmayer/layoutcore/dom/style/cssom/douceuradapter"
	"github.com/npillmayer/layoutcore/dom/style/restyle"
	"github.com/npillmayer/layoutcore/dom/styledtree"
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/layoutcore/frame/fragment"
	"github.com/npillmayer/layoutcore/frame/layout"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const baseSheet = `html, body { margin: 0 } body { font-size: 13px; line-height: 20px } `

func newEngine(t *testing.T, markup, sheet string, opts ...Option) (*Engine, *dom.Document, *cssom.Store) {
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	store := cssom.NewStore(douceuradapter.UserAgentSheet())
	store.Add(cssom.Author, douceuradapter.MustParse(baseSheet+sheet))
	eng, err := New(doc, store, opts...)
	require.NoError(t, err)
	return eng, doc, store
}

func reflow(t *testing.T, eng *Engine) *fragment.Snapshot {
	snap, err := eng.Reflow(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	return snap
}

// byID finds the element with a given id attribute.
func byID(doc *dom.Document, id string) dom.NodeID {
	found := dom.NoNode
	var walk func(n dom.NodeID)
	walk = func(n dom.NodeID) {
		if v, ok := doc.Attr(n, "id"); ok && v == id {
			found = n
		}
		for _, c := range doc.Children(n) {
			walk(c)
		}
	}
	walk(doc.Root())
	return found
}

func frag(t *testing.T, snap *fragment.Snapshot, id dom.NodeID) *fragment.Fragment {
	fs := snap.Find(id)
	require.Len(t, fs, 1, "expected a single fragment for node %d", id)
	return fs[0]
}

func slots(eng *Engine) *styledtree.Table {
	return eng.last.Load().table
}

// ---------------------------------------------------------------------------

func TestNewRejectsMissingInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	doc, err := dom.ParseString(`<p>x</p>`)
	require.NoError(t, err)
	_, err = New(nil, cssom.NewStore(nil))
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = New(doc, nil)
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestBlockChildrenStack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	eng, doc, _ := newEngine(t, `<html><body><div id="r" style="width:400px">`+
		`<div id="a" style="height:50px"></div><div id="b" style="height:75px"></div>`+
		`</div></body></html>`, "")
	defer eng.Close()
	assert.Nil(t, eng.Snapshot())
	assert.Equal(t, uint64(0), eng.Pass())
	snap := reflow(t, eng)
	assert.Equal(t, uint64(1), snap.Pass)
	assert.Equal(t, eng.ID(), snap.Document)
	r, a, b := byID(doc, "r"), byID(doc, "a"), byID(doc, "b")
	assert.Equal(t, 0.0, frag(t, snap, a).Bounds.Y)
	assert.Equal(t, 50.0, frag(t, snap, b).Bounds.Y)
	assert.Equal(t, 125.0, frag(t, snap, r).Bounds.H)
	assert.Equal(t, 400.0, frag(t, snap, r).Bounds.W)
	f, ok := eng.HitTest(10, 60)
	require.True(t, ok)
	assert.Equal(t, b, f.Node)
}

func TestFlexGrowDistribution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	eng, doc, _ := newEngine(t, `<html><body><div style="display:flex;width:400px;height:10px">`+
		`<div id="x" style="flex-grow:1"></div><div id="y" style="flex-grow:2"></div>`+
		`<div id="z" style="flex-grow:1"></div></div></body></html>`,
		`div div { flex-basis: 0px }`)
	defer eng.Close()
	snap := reflow(t, eng)
	var xs, ws []float64
	for _, id := range []string{"x", "y", "z"} {
		f := frag(t, snap, byID(doc, id))
		xs = append(xs, f.Bounds.X)
		ws = append(ws, f.Bounds.W)
	}
	assert.Equal(t, []float64{100, 200, 100}, ws)
	assert.Equal(t, []float64{0, 100, 300}, xs)
}

func TestClassToggleIsRepaintOnly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	eng, doc, _ := newEngine(t, `<html><body><div id="t"><p>some text</p></div>`+
		`<div id="o">other <span>text</span></div></body></html>`,
		`.hi { background-color: #ff0000 }`)
	defer eng.Close()
	before := reflow(t, eng)
	target := byID(doc, "t")
	assert.Equal(t, "", frag(t, before, target).Paint.Background)
	require.NoError(t, doc.SetAttribute(target, "class", "hi"))
	after := reflow(t, eng)
	assert.Equal(t, restyle.LevelRepaint, eng.Damage(target).Level())
	slots(eng).Each(func(id dom.NodeID, slot *styledtree.Slot) {
		if id != target && slot.Damage != 0 {
			t.Errorf("expected node %d to be skipped, has damage %v", id, slot.Damage)
		}
	})
	assert.Equal(t, "#ff0000", frag(t, after, target).Paint.Background)
	geometry := cmpopts.IgnoreFields(fragment.Fragment{}, "Paint")
	if diff := cmp.Diff(before.Root, after.Root, geometry); diff != "" {
		t.Errorf("expected geometry to be unchanged, diff:\n%s", diff)
	}
}

func TestPseudoClassFollowsAttributes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	const sheet = `input:checked { margin-left: 33px } span:lang(de) { margin-top: 7px }`
	marginOf := func(eng *Engine, id dom.NodeID, key string) string {
		cs, ok := eng.ComputedStyle(id)
		require.True(t, ok)
		return cs.Get(key).String()
	}
	eng, doc, _ := newEngine(t, `<html><body><div id="d"><span id="p">x</span></div>`+
		`<input id="c" type="checkbox"></body></html>`, sheet)
	defer eng.Close()
	reflow(t, eng)
	c, d, p := byID(doc, "c"), byID(doc, "d"), byID(doc, "p")
	assert.Equal(t, "0px", marginOf(eng, c, "margin-left"))
	assert.Equal(t, "0px", marginOf(eng, p, "margin-top"))
	require.NoError(t, doc.SetAttribute(c, "checked", ""))
	require.NoError(t, doc.SetAttribute(d, "lang", "de"))
	reflow(t, eng)
	//
	fresh, fdoc, _ := newEngine(t, `<html><body><div id="d" lang="de"><span id="p">x</span></div>`+
		`<input id="c" type="checkbox" checked></body></html>`, sheet)
	defer fresh.Close()
	reflow(t, fresh)
	assert.Equal(t, "33px", marginOf(fresh, byID(fdoc, "c"), "margin-left"))
	assert.Equal(t, marginOf(fresh, byID(fdoc, "c"), "margin-left"), marginOf(eng, c, "margin-left"))
	assert.Equal(t, "7px", marginOf(fresh, byID(fdoc, "p"), "margin-top"))
	assert.Equal(t, marginOf(fresh, byID(fdoc, "p"), "margin-top"), marginOf(eng, p, "margin-top"))
	//
	require.NoError(t, doc.RemoveAttribute(c, "checked"))
	reflow(t, eng)
	assert.Equal(t, "0px", marginOf(eng, c, "margin-left"))
}

// sameAsFresh lays out markup with a new engine and compares its fragments
// to snap.
func sameAsFresh(t *testing.T, markup, sheet string, snap *fragment.Snapshot) {
	t.Helper()
	fresh, _, _ := newEngine(t, markup, sheet)
	defer fresh.Close()
	want := reflow(t, fresh)
	if diff := cmp.Diff(want.Root, snap.Root); diff != "" {
		t.Errorf("expected the layout of a fresh engine, diff (-fresh +incremental):\n%s", diff)
	}
}

func TestDeepReflowKeepsAncestorBoxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	const markup = `<html id="h"><body id="y"><div id="a"><div id="b">` +
		`<p id="c"%s>a few words</p></div></div><p id="d">sibling</p></body></html>`
	eng, doc, _ := newEngine(t, fmt.Sprintf(markup, ""), "")
	defer eng.Close()
	reflow(t, eng)
	ids := map[string]dom.NodeID{}
	boxes := map[string]*boxtree.Box{}
	for _, name := range []string{"h", "y", "a", "b", "c", "d"} {
		ids[name] = byID(doc, name)
		boxes[name] = slots(eng).Get(ids[name]).Principal(ids[name])
		require.NotNil(t, boxes[name], "element %s has no box", name)
	}
	c := ids["c"]
	require.NoError(t, doc.SetAttribute(c, "style", "text-align:center"))
	snap := reflow(t, eng)
	assert.Equal(t, restyle.LevelReflowSubtree, eng.Damage(c).Level())
	for name, box := range boxes {
		assert.Same(t, box, slots(eng).Get(ids[name]).Principal(ids[name]),
			"box of %s must be re-used", name)
	}
	cs, ok := eng.ComputedStyle(c)
	require.True(t, ok)
	assert.Same(t, cs, boxes["c"].Style, "re-used box must carry the current style")
	texts := snap.Find(doc.Children(c)[0])
	require.NotEmpty(t, texts)
	assert.Greater(t, texts[0].Bounds.X, 0.0, "text must be centred")
	sameAsFresh(t, fmt.Sprintf(markup, ` style="text-align:center"`), "", snap)
}

func TestIntrinsicChangeBelowFixedWidth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	const markup = `<html><body><div id="f" style="float:left"><div id="w" style="width:100px">` +
		`<p id="m"%s>x</p></div></div><div id="s" style="float:left"><span id="t"%s>grow</span></div>` +
		`</body></html>`
	eng, doc, _ := newEngine(t, fmt.Sprintf(markup, "", ""), "")
	defer eng.Close()
	reflow(t, eng)
	f, m, s, tt := byID(doc, "f"), byID(doc, "m"), byID(doc, "s"), byID(doc, "t")
	boxF := slots(eng).Get(f).Principal(f)
	boxS := slots(eng).Get(s).Principal(s)
	require.NoError(t, doc.SetAttribute(m, "style", "margin-left:20px"))
	require.NoError(t, doc.SetAttribute(tt, "style", "padding-left:30px"))
	snap := reflow(t, eng)
	assert.Equal(t, restyle.LevelReflowAncestors, eng.Damage(m).Level())
	assert.Same(t, boxF, slots(eng).Get(f).Principal(f))
	assert.Same(t, boxS, slots(eng).Get(s).Principal(s))
	assert.Equal(t, 100.0, frag(t, snap, f).Bounds.W, "fixed width isolates the float")
	sameAsFresh(t, fmt.Sprintf(markup, ` style="margin-left:20px"`, ` style="padding-left:30px"`), "", snap)
}

func TestSecondPassIsIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	eng, _, _ := newEngine(t, sampleDocument, sampleSheet)
	defer eng.Close()
	first := reflow(t, eng)
	second := reflow(t, eng)
	assert.Equal(t, first.Pass+1, second.Pass)
	slots(eng).Each(func(id dom.NodeID, slot *styledtree.Slot) {
		if slot.Damage.Level() != restyle.LevelSkip {
			t.Errorf("expected node %d to be skipped, is %v", id, slot.Damage.Level())
		}
	})
	if diff := cmp.Diff(first.Root, second.Root); diff != "" {
		t.Errorf("expected identical fragment trees, diff:\n%s", diff)
	}
}

const sampleDocument = `<html><head><title>sample</title></head><body>
<h1 id="h">Heading</h1>
<p id="p1">Some <b>bold</b> and <i>italic</i> text which is long enough to wrap
across a couple of lines in a narrow column.</p>
<div class="row"><div>one</div><div>two</div><div>three</div></div>
<table><tr><td>a</td><td colspan="2">b c</td></tr><tr><td>d</td><td>e</td><td>f</td></tr></table>
<ul><li>first</li><li>second <span style="padding:2px">item</span></li></ul>
<p id="p2" style="text-align:center">centred</p>
<img src="x.png" width="40" height="30">
<div style="float:left;width:50px;height:20px"></div>
<div style="position:absolute;left:5px;top:5px;width:10px;height:10px"></div>
</body></html>`

const sampleSheet = `body { width: 300px } .row { display: flex } .row div { flex-grow: 1 }
h1 { font-size: 26px } ul { padding-left: 20px }`

func TestLayoutIsIndependentOfWorkerCount(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	var reference *fragment.Snapshot
	for _, workers := range []int{1, 2, 4, 8} {
		eng, _, _ := newEngine(t, sampleDocument, sampleSheet,
			WithWorkers(workers), WithThreshold(1), WithLeafBatch(1))
		snap := reflow(t, eng)
		eng.Close()
		if reference == nil {
			reference = snap
			continue
		}
		if diff := cmp.Diff(reference.Root, snap.Root); diff != "" {
			t.Errorf("expected same fragments with %d workers, diff:\n%s", workers, diff)
		}
	}
}

func TestBlockContentHeightIsSumOfChildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	eng, doc, _ := newEngine(t, `<html><body><div id="c" style="padding:3px;border:1px solid">`+
		`<div style="height:10px"></div><div style="border:2px solid">text</div>`+
		`<div style="padding:4px;height:7px"></div><div>line one<br>line two</div>`+
		`</div></body></html>`, "")
	defer eng.Close()
	snap := reflow(t, eng)
	c := frag(t, snap, byID(doc, "c"))
	content := c.ContentBox()
	y, sum := content.Y, 0.0
	for _, k := range c.Children {
		assert.Equal(t, y, k.Bounds.Y, "children must be stacked without gaps")
		y += k.Bounds.H
		sum += k.Bounds.H
	}
	assert.Equal(t, content.H, sum)
	assert.Len(t, c.Children, 4)
}

func TestTextChangeReusesUnchangedBoxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	eng, doc, _ := newEngine(t, `<html><body><p id="a">first</p><p id="b">second</p></body></html>`, "")
	defer eng.Close()
	reflow(t, eng)
	a, b := byID(doc, "a"), byID(doc, "b")
	boxA := slots(eng).Get(a).Principal(a)
	boxB := slots(eng).Get(b).Principal(b)
	require.NotNil(t, boxA)
	require.NotNil(t, boxB)
	text := doc.Children(a)[0]
	require.NoError(t, doc.SetText(text, "first, but longer"))
	snap := reflow(t, eng)
	assert.Same(t, boxB, slots(eng).Get(b).Principal(b), "unchanged paragraph must keep its box")
	assert.NotSame(t, boxA, slots(eng).Get(a).Principal(a), "changed paragraph must be rebuilt")
	assert.Equal(t, restyle.LevelSkip, eng.Damage(b).Level())
	assert.Equal(t, restyle.LevelReconstruct, eng.Damage(a).Level())
	texts := snap.Find(text)
	require.NotEmpty(t, texts)
	assert.True(t, strings.HasPrefix(texts[0].Text, "first,"), "expected new text, is %q", texts[0].Text)
}

func TestStructuralMutations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	eng, doc, _ := newEngine(t, `<html><body><div id="c">`+
		`<div id="a" style="height:50px"></div><div id="b" style="height:75px"></div>`+
		`</div></body></html>`, "")
	defer eng.Close()
	reflow(t, eng)
	c, a, b := byID(doc, "c"), byID(doc, "a"), byID(doc, "b")
	require.NoError(t, doc.RemoveChild(a))
	snap := reflow(t, eng)
	assert.Empty(t, snap.Find(a))
	_, ok := eng.ComputedStyle(a)
	assert.False(t, ok, "removed node must not have a style")
	assert.Equal(t, 0.0, frag(t, snap, b).Bounds.Y)
	assert.Equal(t, 75.0, frag(t, snap, c).Bounds.H)
	//
	n, err := doc.AppendChild(c, dom.NewElement("div", "style", "height:10px"))
	require.NoError(t, err)
	snap = reflow(t, eng)
	assert.Equal(t, 75.0, frag(t, snap, n).Bounds.Y)
	assert.Equal(t, 85.0, frag(t, snap, c).Bounds.H)
	assert.Equal(t, restyle.LevelReconstruct, eng.Damage(n).Level())
}

func TestStyleSheetChangeRestylesAll(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	eng, doc, store := newEngine(t, `<html><body><div id="a" style="height:50px"></div>`+
		`<div id="b">b</div></body></html>`, "")
	defer eng.Close()
	reflow(t, eng)
	b := byID(doc, "b")
	store.Add(cssom.Author, douceuradapter.MustParse(`#b { height: 30px; color: #0000ff }`))
	snap := reflow(t, eng)
	assert.Equal(t, 30.0, frag(t, snap, b).Bounds.H)
	s, ok := eng.ComputedStyle(b)
	require.True(t, ok)
	assert.Equal(t, "30px", s.Get("height").String())
	text := doc.Children(b)[0]
	ts, ok := eng.ComputedStyle(text)
	require.True(t, ok)
	assert.Same(t, s, ts, "text nodes report the style of their parent")
}

func TestSupersededPassIsRestarted(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	var doc *dom.Document
	var once sync.Once
	hook := func() {
		once.Do(func() {
			_ = doc.SetAttribute(byID(doc, "a"), "style", "height:20px")
		})
	}
	eng, d, _ := newEngine(t, `<html><body><div id="a" style="height:50px"></div></body></html>`, "")
	doc = d
	eng.opts.beforePublish = hook
	defer eng.Close()
	snap := reflow(t, eng)
	assert.Equal(t, uint64(1), snap.Pass, "superseded passes must not be published")
	assert.Equal(t, 20.0, frag(t, snap, byID(doc, "a")).Bounds.H)
}

func TestContinuousMutationsSupersedeEveryPass(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	eng, doc, _ := newEngine(t, `<html><body><div id="a"></div></body></html>`, "",
		WithMaxRetries(3))
	defer eng.Close()
	a := byID(doc, "a")
	n := 0
	eng.opts.beforePublish = func() {
		n++
		_ = doc.SetAttribute(a, "title", fmt.Sprintf("t%d", n))
	}
	_, err := eng.Reflow(context.Background())
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, 3, n)
	assert.Nil(t, eng.Snapshot())
	eng.opts.beforePublish = nil
	snap := reflow(t, eng)
	assert.Equal(t, uint64(1), snap.Pass)
}

func TestCancelledReflowKeepsHints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	eng, doc, _ := newEngine(t, `<html><body><div id="a" style="height:50px"></div></body></html>`, "")
	defer eng.Close()
	reflow(t, eng)
	a := byID(doc, "a")
	require.NoError(t, doc.SetAttribute(a, "style", "height:20px"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Reflow(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(1), eng.Pass())
	snap := reflow(t, eng)
	assert.Equal(t, 20.0, frag(t, snap, a).Bounds.H)
}

func TestDiagnosticsAreReported(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	var diags []Diagnostic
	rep := ReporterFunc(func(d Diagnostic) { diags = append(diags, d) })
	markup := `<html><body>` + strings.Repeat("<div>", 8) + "deep" +
		strings.Repeat("</div>", 8) + `</body></html>`
	eng, _, _ := newEngine(t, markup, "", WithMaxDepth(4), WithReporter(rep))
	defer eng.Close()
	snap := reflow(t, eng)
	require.NotEmpty(t, diags)
	for _, d := range diags {
		assert.Equal(t, snap.Pass, d.Pass)
		assert.Equal(t, layout.DepthExceeded, d.Kind)
	}
	truncated := 0
	snap.Root.Walk(func(f *fragment.Fragment, _ int) bool {
		if f.NotRendered {
			truncated++
		}
		return true
	})
	assert.Equal(t, 1, truncated)
}

func TestClosedEngine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	defer goleak.VerifyNone(t)
	//
	eng, doc, _ := newEngine(t, `<html><body><p>x</p></body></html>`, "", WithWorkers(3))
	snap := reflow(t, eng)
	eng.Close()
	eng.Close()
	_, err := eng.Reflow(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.Same(t, snap, eng.Snapshot(), "queries answer from the last pass")
	// mutations after Close are ignored
	require.NoError(t, doc.SetAttribute(doc.Root(), "lang", "en"))
}

func TestEnginesShareAPool(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "layoutcore.engine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	defer goleak.VerifyNone(t)
	//
	pool := tree.NewPool(2)
	defer pool.Close()
	e1, _, _ := newEngine(t, `<p>one</p>`, "", WithPool(pool))
	e2, _, _ := newEngine(t, `<p>two</p>`, "", WithPool(pool))
	s1, s2 := reflow(t, e1), reflow(t, e2)
	assert.NotEqual(t, s1.Document, s2.Document)
	e1.Close()
	e2.Close()
	assert.NoError(t, pool.Run(func(*tree.Worker) {}), "shared pool must survive its engines")
}
