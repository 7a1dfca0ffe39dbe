package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/cascade"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
	"github.com/npillmayer/layoutcore/dom/style/cssom/douceuradapter"
	"github.com/npillmayer/layoutcore/dom/style/restyle"
	"github.com/npillmayer/layoutcore/dom/style/selector"
	"github.com/npillmayer/layoutcore/dom/styledtree"
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/layoutcore/frame/fragment"
	"github.com/npillmayer/layoutcore/frame/layout"
	"github.com/npillmayer/layoutcore/tree"
)

// pass is a single run from styles to fragments. All of its state is
// private until it is published.
type pass struct {
	e       *Engine
	gen     uint64
	rev     *cssom.Revision
	index   *selector.Index
	table   *styledtree.Table
	hints   map[dom.NodeID]restyle.Hint // as taken from the engine
	removed []dom.NodeID
	all     bool // rules changed: restyle every element

	// indexed by node ID; every entry is written by the task owning the node
	hint    []restyle.Hint
	marked  []bool // ancestors of hinted nodes
	visited []bool

	caches []*cascade.SharingCache // one per worker

	mu     sync.Mutex
	diags  []Diagnostic
	failed map[dom.NodeID]restyle.Hint
}

// begin starts a pass. The caller must hold the document's read lock.
func (e *Engine) begin() *pass {
	e.mu.Lock()
	p := &pass{
		e:       e,
		gen:     e.gen,
		hints:   e.hints,
		removed: e.removed,
		failed:  make(map[dom.NodeID]restyle.Hint),
	}
	e.hints = make(map[dom.NodeID]restyle.Hint)
	e.removed = nil
	e.mu.Unlock()

	p.rev = e.store.Current()
	prev := e.last.Load()
	if prev != nil && prev.index.Revision() == p.rev.Number {
		p.index = prev.index
	} else {
		p.index = selector.Compile(p.rev)
		p.all = true
	}
	base := styledtree.NewTable()
	if prev != nil {
		base = prev.table
	}
	p.table = base.Next()
	p.table.Detach(p.removed...)
	maxID := e.doc.MaxID()
	p.table.Grow(maxID)
	n := int(maxID) + 1
	p.hint = make([]restyle.Hint, n)
	p.marked = make([]bool, n)
	p.visited = make([]bool, n)
	p.expand()
	p.caches = make([]*cascade.SharingCache, max(e.pool.Size(), 1))
	for i := range p.caches {
		p.caches[i] = cascade.NewSharingCache(0)
	}
	tracer().Debugf("engine %s: pass %d begins, %d hints, rules changed=%v",
		e.id, p.table.Pass(), len(p.hints), p.all)
	return p
}

// expand distributes the pending hints: later siblings receive the hints
// of sibling sensitive changes, and all ancestors of a hinted node are
// marked so that the style traversal reaches it.
func (p *pass) expand() {
	doc := p.e.doc
	for id, h := range p.hints {
		if int(id) >= len(p.hint) || !doc.Contains(id) {
			continue
		}
		p.hint[id] |= h
		if h&restyle.RestyleLaterSiblings == 0 {
			continue
		}
		later := false
		for _, sib := range doc.Children(doc.Parent(id)) {
			if later && doc.Tag(sib) != "" {
				p.hint[sib] |= restyle.RestyleSelf | restyle.RestyleSubtree
			}
			later = later || sib == id
		}
	}
	for id, h := range p.hint {
		if h == 0 {
			continue
		}
		doc.Ancestors(dom.NodeID(id), func(a dom.NodeID) bool {
			if p.marked[a] {
				return false
			}
			p.marked[a] = true
			return true
		})
	}
}

// run executes the pass. It expects the document read-locked and releases
// the lock as soon as the box tree is complete.
func (p *pass) run(ctx context.Context) (*published, error) {
	e := p.e
	locked := true
	defer func() {
		if locked {
			e.doc.RUnlock()
		}
	}()
	if err := p.style(ctx); err != nil {
		return nil, err
	}
	if err := p.propagate(ctx); err != nil {
		return nil, err
	}
	root, err := boxtree.Build(ctx, e.pool, &source{doc: e.doc, table: p.table}, boxtree.Options{
		Threshold: e.opts.Threshold,
		LeafBatch: e.opts.LeafBatch,
		OnError: func(id dom.NodeID, err error) {
			p.table.Ensure(id).Invalid = true
			p.fail(id, fmt.Sprintf("box construction failed: %v", err))
		},
	})
	if err != nil {
		return nil, err
	}
	e.doc.RUnlock()
	locked = false

	frag, err := layout.Layout(ctx, e.pool, root, layout.Options{
		Viewport:  e.opts.Viewport,
		Metrics:   e.opts.Metrics,
		MaxDepth:  e.opts.MaxDepth,
		Threshold: e.opts.Threshold,
		LeafBatch: e.opts.LeafBatch,
		Style:     p.styleOf,
		Report: func(d layout.Diagnostic) {
			p.report(d.Node, d.Kind, d.Message)
		},
	})
	if err != nil {
		return nil, err
	}
	snap := &fragment.Snapshot{
		Pass:     p.table.Pass(),
		Document: e.id,
		Viewport: fragment.Rect{W: e.opts.Viewport.Width, H: e.opts.Viewport.Height},
		Root:     frag,
	}
	return &published{table: p.table, snap: snap, index: p.index}, nil
}

// --- Styles ----------------------------------------------------------------

// inherit is handed down the style traversal.
type inherit struct {
	parent  *style.ComputedStyle
	root    *style.ComputedStyle // style of the root element
	force   bool                 // inherited values changed
	subtree bool                 // restyle every descendant
	rebuild bool                 // rebuild the boxes of every descendant
}

func (p *pass) style(ctx context.Context) error {
	doc := p.e.doc
	tr := tree.Traversal[dom.NodeID]{
		Children:  p.elements,
		Threshold: p.e.opts.Threshold,
		LeafBatch: p.e.opts.LeafBatch,
		OnError: func(id dom.NodeID, err error) {
			p.table.Ensure(id).Invalid = true
			p.fail(id, fmt.Sprintf("style resolution failed: %v", err))
		},
	}
	return tree.TopDown(ctx, p.e.pool, doc.Root(), inherit{}, tr, p.styleElement)
}

// elements returns the element children of a node.
func (p *pass) elements(id dom.NodeID) []dom.NodeID {
	doc := p.e.doc
	kids := doc.Children(id)
	elems := make([]dom.NodeID, 0, len(kids))
	for _, c := range kids {
		if doc.Tag(c) != "" {
			elems = append(elems, c)
		}
	}
	return elems
}

func (p *pass) styleElement(w *tree.Worker, id dom.NodeID, in inherit) (inherit, bool, error) {
	p.visited[id] = true
	slot := p.table.Ensure(id)
	hint := p.hint[id]
	slot.Hint = hint
	if in.force || in.subtree || p.all || slot.Style == nil ||
		hint&(restyle.RestyleSelf|restyle.RestyleSubtree) != 0 {
		slot.Style = p.resolve(w, id, in)
	}
	slot.Damage = p.e.classifier.Classify(slot.Prev, slot.Style)
	rebuild := in.rebuild || hint&restyle.ReconstructSubtree != 0
	if rebuild {
		slot.Damage |= restyle.Reconstruct
	}
	if slot.Damage&restyle.Reconstruct != 0 || boxtree.Structural(slot.Prev, slot.Style) {
		slot.Dirty = true
	}
	p.styleTexts(id, slot, rebuild)
	root := in.root
	if root == nil {
		root = slot.Style
	}
	down := inherit{
		parent:  slot.Style,
		root:    root,
		force:   restyle.ChildrenNeedRestyle(slot.Prev, slot.Style, hint, p.index.SiblingSensitive()),
		subtree: in.subtree || p.all || hint&restyle.RestyleSubtree != 0,
		rebuild: rebuild,
	}
	return down, down.force || down.subtree || rebuild || p.marked[id], nil
}

func (p *pass) resolve(w *tree.Worker, id dom.NodeID, in inherit) *style.ComputedStyle {
	doc := p.e.doc
	var inline []cssom.Declaration
	if v, ok := doc.Attr(id, "style"); ok {
		decls, err := douceuradapter.ParseDeclarations(v)
		if err != nil {
			tracer().Infof("ignoring style attribute of node %d: %v", id, err)
		}
		inline = selector.Expand(decls)
	}
	ctx := cascade.Context{Parent: in.parent, Root: in.root, Viewport: p.e.opts.Viewport}
	return p.caches[w.ID()].Resolve(p.index.Match(doc.Node(id)), inline, ctx)
}

// styleTexts hands the style of an element to its text children. Text
// nodes only depend on inherited properties.
func (p *pass) styleTexts(id dom.NodeID, parent *styledtree.Slot, rebuild bool) {
	doc := p.e.doc
	for _, c := range doc.Children(id) {
		if doc.Tag(c) != "" {
			continue
		}
		slot := p.table.Ensure(c)
		slot.Style = parent.Style
		slot.Damage = p.textDamage(slot.Prev, slot.Style)
		if rebuild {
			slot.Damage |= restyle.Reconstruct
		}
		if rebuild || slot.Style != slot.Prev {
			slot.Dirty = true
		}
	}
}

func (p *pass) textDamage(old, new *style.ComputedStyle) restyle.Damage {
	if old == nil {
		return p.e.classifier.Classify(nil, new)
	}
	var d restyle.Damage
	for _, key := range old.Differences(new) {
		if style.IsCascading(key) {
			d |= p.e.classifier.DamageOf(key)
		}
	}
	return d
}

// change is what an element hands up to its parent during propagation.
type change struct {
	rebuilt  bool // boxes are rebuilt, or the element failed
	relayout bool // layout pieces in the subtree changed
	sizes    bool // the element's contribution to the parent's intrinsic sizes changed
}

// propagate decides, bottom-up, what happens to the boxes of every
// element. An element with rebuilt children rebuilds its boxes as well,
// as its boxes refer to theirs. All other elements keep their boxes,
// which are refreshed to the current style. Layout damage drops the
// intrinsic sizes of the element and of its ancestors, up to the first
// ancestor whose sizes do not depend on its content. Ancestors above it
// drop their memoized layout only and are laid out again from the
// memoized pieces of their unchanged children.
func (p *pass) propagate(ctx context.Context) error {
	tr := tree.Traversal[dom.NodeID]{
		Children: func(id dom.NodeID) []dom.NodeID {
			if !p.visited[id] {
				return nil
			}
			return p.elements(id)
		},
		Threshold: p.e.opts.Threshold,
		LeafBatch: p.e.opts.LeafBatch,
	}
	_, err := tree.BottomUp(ctx, p.e.pool, p.e.doc.Root(), tr,
		func(w *tree.Worker, id dom.NodeID, kids []change) (change, error) {
			slot := p.table.Get(id)
			if slot == nil {
				return change{}, nil
			}
			var below change
			for _, k := range kids {
				below.rebuilt = below.rebuilt || k.rebuilt
				below.relayout = below.relayout || k.relayout
				below.sizes = below.sizes || k.sizes
			}
			if below.rebuilt {
				slot.Dirty = true
			}
			rebuilt := slot.Dirty || slot.Invalid
			own := slot.Damage&(restyle.ReflowAncestors|restyle.Reconstruct) != 0
			if !rebuilt {
				p.refresh(id, slot, below)
			}
			up := change{
				rebuilt:  rebuilt,
				relayout: rebuilt || below.relayout || slot.Damage.NeedsLayout(),
				sizes:    rebuilt,
			}
			if slot.Style != nil {
				up.sizes = !css.PositionOf(slot.Style).IsOutOfFlow() &&
					(rebuilt || own || below.sizes && !css.HasFixedWidth(slot.Style))
			}
			return up, nil
		})
	return err
}

// refresh brings the boxes an element keeps from the previous pass up to
// date: their style, and the layout caches affected by changes in the
// element and below it.
func (p *pass) refresh(id dom.NodeID, slot *styledtree.Slot, below change) {
	if slot.Boxes == nil {
		return
	}
	drop := boxtree.KeepCaches
	switch {
	case slot.Damage.NeedsLayout() || below.sizes:
		drop = boxtree.DropIntrinsic
	case below.relayout:
		drop = boxtree.DropLayout
	}
	s := slot.Style
	if !p.stale(id, slot) {
		s = nil
	}
	if s == nil && drop == boxtree.KeepCaches {
		return
	}
	doc := p.e.doc
	boxtree.Refresh(slot.Boxes, s, func(b *boxtree.Box) bool {
		switch {
		case b.Node == id || b.Anonymous:
			return true
		case b.Kind == boxtree.TextBox:
			return doc.Parent(b.Node) == id
		}
		return false
	}, drop)
}

// stale is true if the boxes of an element carry an outdated style.
func (p *pass) stale(id dom.NodeID, slot *styledtree.Slot) bool {
	if b := slot.Principal(id); b != nil {
		return b.Style != slot.Style
	}
	return slot.Style != slot.Prev
}

// styleOf returns the style of a node in this pass.
func (p *pass) styleOf(id dom.NodeID) *style.ComputedStyle {
	if slot := p.table.Get(id); slot != nil {
		return slot.Style
	}
	return nil
}

// --- Diagnostics -----------------------------------------------------------

func (p *pass) report(id dom.NodeID, kind layout.DiagnosticKind, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.diags = append(p.diags, Diagnostic{Pass: p.table.Pass(), Node: id, Kind: kind, Message: msg})
}

// fail reports a failed task. The node is restyled and rebuilt in the next
// pass.
func (p *pass) fail(id dom.NodeID, msg string) {
	p.report(id, layout.TaskFailed, msg)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[id] |= restyle.RestyleSelf | restyle.RestyleSubtree | restyle.ReconstructSubtree
}

// deliver hands the diagnostics of a published pass to the reporter, in
// a deterministic order.
func (p *pass) deliver() {
	sort.Slice(p.diags, func(i, j int) bool {
		a, b := p.diags[i], p.diags[j]
		if a.Node != b.Node {
			return a.Node < b.Node
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})
	for _, d := range p.diags {
		p.e.opts.Reporter.Report(d)
	}
}
