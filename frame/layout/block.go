package layout

import (
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/npillmayer/tyse/core/dimen"
)

type rect struct {
	x, y, w, h dimen.DU
}

// layoutBlock lays out a block container. Besides block boxes this covers
// inline-blocks, table cells and table parts found outside of tables.
func (lay *layouter) layoutBlock(w *tree.Worker, b *boxtree.Box, c constraints) *piece {
	m := lay.widths(b, c)
	p := &piece{box: b, kind: kindOf(b), margin: m.margin, border: m.border, padding: m.padding}
	cbH := lay.definiteHeight(b.Style, m, c)
	ox, oy := m.origin()
	var content dimen.DU
	var floats []pending
	if hasBlockChildren(b) {
		content, floats = lay.blockFlow(w, b, p, m.width, cbH, c.depth, ox, oy)
	} else if len(b.Children) > 0 {
		content, floats = lay.inlineFlow(w, b, p, m.width, cbH, c.depth, ox, oy)
	}
	if len(floats) > 0 {
		bottom := lay.placeFloats(w, p, floats, rect{x: ox, y: oy, w: m.width, h: cbH}, c.depth)
		if establishesContext(b, c) {
			content = maxDU(content, sum(bottom, -oy))
		}
	}
	p.w = sum(m.width, m.innerH())
	p.h = sum(lay.height(b.Style, m, content, c), m.innerV())
	lay.resolvePositioned(w, p, c.depth)
	return p
}

// establishesContext is true for boxes which contain their floats.
func establishesContext(b *boxtree.Box, c constraints) bool {
	if c.depth == 0 || b.Inline || b.IsOutOfFlow() || b.Kind == boxtree.TableCellBox {
		return true
	}
	if b.Style.Get("display") == "flow-root" {
		return true
	}
	ov := b.Style.Get("overflow")
	return ov != "visible" && ov != "clip"
}

// blockFlow stacks the block-level children of a box vertically. The
// children are laid out in parallel: without margin collapsing and with
// floats placed afterwards, their layout depends on the content width
// only.
func (lay *layouter) blockFlow(w *tree.Worker, b *boxtree.Box, p *piece,
	width, cbH dimen.DU, depth int, ox, oy dimen.DU) (dimen.DU, []pending) {
	//
	var inflow []*boxtree.Box
	for _, k := range b.Children {
		if !k.IsOutOfFlow() {
			inflow = append(inflow, k)
		}
	}
	c := constraints{depth: depth}.child(width, width, cbH)
	pieces := tree.ForkJoin(w, inflow, func(w *tree.Worker, k *boxtree.Box) *piece {
		return lay.layout(w, k, c)
	})
	p.kids = make([]placed, 0, len(pieces))
	var floats []pending
	y, i := oy, 0
	for _, k := range b.Children {
		if k.IsOutOfFlow() {
			o := pending{box: k, x: ox, y: y}
			if k.Placement.IsFloat() {
				floats = append(floats, o)
			} else {
				p.oof = append(p.oof, o)
			}
			continue
		}
		kp := pieces[i]
		i++
		dx, dy := relativeOffset(k.Style, width, cbH)
		x, ky := sum(ox, kp.margin.left, dx), sum(y, kp.margin.top, dy)
		p.kids = append(p.kids, placed{x: x, y: ky, p: kp})
		p.oof = append(p.oof, kp.translate(x, ky)...)
		y = sum(y, kp.margin.top, kp.h, kp.margin.bottom)
	}
	return sum(y, -oy), floats
}

// --- Floats ----------------------------------------------------------------

// placeFloats lays out floats and stacks them against the left or right
// edge of the content area, at or below their static position. It returns
// the bottom of the lowest float.
func (lay *layouter) placeFloats(w *tree.Worker, p *piece, floats []pending, area rect, depth int) dimen.DU {
	c := constraints{avail: area.w, cbW: area.w, cbH: area.h,
		forceW: indefinite, forceH: indefinite, shrink: true, depth: depth + 1}
	pieces := tree.ForkJoin(w, floats, func(w *tree.Worker, o pending) *piece {
		return lay.layout(w, o.box, c)
	})
	var left, right []rect // margin boxes of floats placed so far
	bottom, top := area.y, area.y
	for i, o := range floats {
		fp := pieces[i]
		fw, fh := sum(fp.w, fp.margin.h()), sum(fp.h, fp.margin.v())
		y := maxDU(o.y, top)
		var x dimen.DU
		for n := 0; n <= len(floats); n++ {
			l := leftEdge(left, y, fh, area.x)
			r := rightEdge(right, y, fh, sum(area.x, area.w))
			fits := sum(r, -l) >= fw
			if fits || n == len(floats) || (l == area.x && r == sum(area.x, area.w)) {
				if o.box.Placement == boxtree.FloatLeft {
					x = l
				} else {
					x = sum(r, -fw)
				}
				break
			}
			y = nextBottom(left, right, y, fh)
		}
		mb := rect{x: x, y: y, w: fw, h: fh}
		if o.box.Placement == boxtree.FloatLeft {
			left = append(left, mb)
		} else {
			right = append(right, mb)
		}
		fx, fy := sum(x, fp.margin.left), sum(y, fp.margin.top)
		p.kids = append(p.kids, placed{x: fx, y: fy, p: fp})
		p.oof = append(p.oof, fp.translate(fx, fy)...)
		top = y
		bottom = maxDU(bottom, sum(y, fh))
	}
	return bottom
}

func overlaps(r rect, y, h dimen.DU) bool {
	return r.y < sum(y, h) && y < sum(r.y, r.h)
}

func leftEdge(floats []rect, y, h, edge dimen.DU) dimen.DU {
	for _, f := range floats {
		if overlaps(f, y, h) {
			edge = maxDU(edge, sum(f.x, f.w))
		}
	}
	return edge
}

func rightEdge(floats []rect, y, h, edge dimen.DU) dimen.DU {
	for _, f := range floats {
		if overlaps(f, y, h) {
			edge = minDU(edge, f.x)
		}
	}
	return edge
}

// nextBottom returns the smallest bottom edge of the floats overlapping a
// band, i.e. the next position where more room may be available.
func nextBottom(left, right []rect, y, h dimen.DU) dimen.DU {
	next := css.MaxLength
	for _, fs := range [][]rect{left, right} {
		for _, f := range fs {
			if overlaps(f, y, h) {
				next = minDU(next, sum(f.y, f.h))
			}
		}
	}
	if next <= y {
		return sum(y, 1)
	}
	return next
}

// --- Positioned boxes ------------------------------------------------------

// resolvePositioned places the absolutely positioned descendants of a
// positioned box. Fixed boxes are passed on to the root.
func (lay *layouter) resolvePositioned(w *tree.Worker, p *piece, depth int) {
	if len(p.oof) == 0 || !css.PositionOf(p.box.Style).IsPositioned() {
		return
	}
	var keep, todo []pending
	for _, o := range p.oof {
		fixed := css.PositionPattern[bool](css.PositionOf(o.box.Style)).OneOf(css.PositionPatterns[bool]{
			Fixed: true,
		})
		if fixed {
			keep = append(keep, o)
		} else {
			todo = append(todo, o)
		}
	}
	if len(todo) == 0 {
		return
	}
	cb := rect{ // padding box
		x: p.border.left,
		y: p.border.top,
		w: clamp(sum(p.w, -p.border.h())),
		h: clamp(sum(p.h, -p.border.v())),
	}
	for _, pl := range lay.placePositioned(w, todo, cb, depth+1) {
		p.kids = append(p.kids, pl)
		keep = append(keep, pl.p.translate(pl.x, pl.y)...)
	}
	p.oof = keep
}

func (lay *layouter) placePositioned(w *tree.Worker, boxes []pending, cb rect, depth int) []placed {
	return tree.ForkJoin(w, boxes, func(w *tree.Worker, o pending) placed {
		return lay.layoutPositioned(w, o, cb, depth)
	})
}

// layoutPositioned lays out an absolutely positioned or fixed box against
// its containing block. Offsets which are auto keep the box at its static
// position.
func (lay *layouter) layoutPositioned(w *tree.Worker, o pending, cb rect, depth int) placed {
	s := o.box.Style
	pos := css.PositionOf(s)
	top, hasTop := resolve(pos.Offset(css.Top), cb.h)
	bottom, hasBottom := resolve(pos.Offset(css.Bottom), cb.h)
	left, hasLeft := resolve(pos.Offset(css.Left), cb.w)
	right, hasRight := resolve(pos.Offset(css.Right), cb.w)
	m, _, _ := margins(s, cb.w)
	c := constraints{avail: cb.w, cbW: cb.w, cbH: cb.h,
		forceW: indefinite, forceH: indefinite, shrink: true, depth: depth}
	if hasLeft {
		c.avail = clamp(sum(c.avail, -left))
	}
	if hasRight {
		c.avail = clamp(sum(c.avail, -right))
	}
	if hasLeft && hasRight && css.Length(s, "width").IsAuto() {
		c.forceW = clamp(sum(cb.w, -left, -right, -m.h()))
	}
	if hasTop && hasBottom && css.Length(s, "height").IsAuto() {
		c.forceH = clamp(sum(cb.h, -top, -bottom, -m.v()))
	}
	kp := lay.layout(w, o.box, c)
	var x, y dimen.DU
	switch {
	case hasLeft:
		x = sum(cb.x, left, kp.margin.left)
	case hasRight:
		x = sum(cb.x, cb.w, -right, -kp.margin.right, -kp.w)
	default:
		x = sum(o.x, kp.margin.left)
	}
	switch {
	case hasTop:
		y = sum(cb.y, top, kp.margin.top)
	case hasBottom:
		y = sum(cb.y, cb.h, -bottom, -kp.margin.bottom, -kp.h)
	default:
		y = sum(o.y, kp.margin.top)
	}
	return placed{x: x, y: y, p: kp}
}
