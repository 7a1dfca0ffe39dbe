package layout

import (
	"context"
	"fmt"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/frame/fragment"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/npillmayer/tyse/core/dimen"
)

// posNode is a piece at its absolute position, together with the fragment
// to fill for it.
type posNode struct {
	p    *piece
	x, y dimen.DU
	frag *fragment.Fragment
	kids []*posNode
}

// place converts the tree of pieces into a fragment tree with absolute
// coordinates. Siblings are filled in parallel.
func (lay *layouter) place(ctx context.Context, pool *tree.Pool, root *piece, x, y dimen.DU) (*fragment.Fragment, error) {
	top := &posNode{p: root, x: x, y: y, frag: &fragment.Fragment{}}
	tr := tree.Traversal[*posNode]{
		Children:  func(n *posNode) []*posNode { return n.kids },
		Threshold: lay.opts.Threshold,
		LeafBatch: lay.opts.LeafBatch,
		OnError: func(n *posNode, err error) {
			n.frag.NotRendered = true
			lay.report(n.p.box, TaskFailed, fmt.Sprintf("fragment construction failed: %v", err))
		},
	}
	err := tree.TopDown(ctx, pool, top, struct{}{}, tr,
		func(w *tree.Worker, n *posNode, _ struct{}) (struct{}, bool, error) {
			lay.fill(n)
			return struct{}{}, len(n.kids) > 0, nil
		})
	if err != nil {
		return nil, err
	}
	return top.frag, nil
}

func (lay *layouter) fill(n *posNode) {
	p, f := n.p, n.frag
	b := p.box
	f.Kind = p.kind
	f.Node = b.Node
	f.Anonymous = b.Anonymous
	f.Bounds = fragment.Rect{
		X: css.DUToPixels(n.x),
		Y: css.DUToPixels(n.y),
		W: css.DUToPixels(p.w),
		H: css.DUToPixels(p.h),
	}
	f.Border = p.border.fragment()
	f.Padding = p.padding.fragment()
	f.Text = p.text
	f.Paint = lay.paint(p)
	if p.broken {
		f.NotRendered = true
		return
	}
	if len(p.kids) == 0 {
		return
	}
	frags := make([]fragment.Fragment, len(p.kids))
	f.Children = make([]*fragment.Fragment, len(p.kids))
	n.kids = make([]*posNode, len(p.kids))
	for i, k := range p.kids {
		f.Children[i] = &frags[i]
		n.kids[i] = &posNode{p: k.p, x: sum(n.x, k.x), y: sum(n.y, k.y), frag: &frags[i]}
	}
}

// paint collects the paint references of a fragment. Styles are looked up
// freshly, so that changes which require repainting only are visible
// without another layout.
func (lay *layouter) paint(p *piece) fragment.Paint {
	s := p.box.Style
	if lay.opts.Style != nil && p.box.Node != dom.NoNode {
		if cur := lay.opts.Style(p.box.Node); cur != nil {
			s = cur
		}
	}
	pt := fragment.Paint{
		Color:   style.ColorString(css.Color(s, "color")),
		Opacity: 1,
		Hidden:  s.Get("visibility") != "visible",
	}
	if p.kind == fragment.Text {
		return pt
	}
	if o := css.Number(s, "opacity"); o >= 0 && o <= 1 {
		pt.Opacity = o
	}
	if bg := css.Color(s, "background-color"); bg.A > 0 {
		pt.Background = style.ColorString(bg)
	}
	if p.border != (edges{}) {
		pt.BorderColor = style.ColorString(css.Color(s, "border-top-color"))
	}
	return pt
}
