package layout

import (
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/layoutcore/frame/fragment"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/npillmayer/tyse/core/dimen"
)

// Tables use the automatic table layout algorithm without row spans:
// column widths are derived from the intrinsic sizes of the cells, rows
// are as tall as their tallest cell.

type gridCell struct {
	box       *boxtree.Box
	col, span int
}

type gridRow struct {
	box   *boxtree.Box
	cells []gridCell
}

type gridGroup struct {
	box  *boxtree.Box
	rows []gridRow
}

type grid struct {
	groups []gridGroup
	cols   int
	oof    []*boxtree.Box
}

func buildGrid(table *boxtree.Box) *grid {
	g := &grid{}
	for _, grp := range table.Children {
		if grp.Kind != boxtree.TableRowGroupBox {
			if grp.IsOutOfFlow() {
				g.oof = append(g.oof, grp)
			}
			continue
		}
		gg := gridGroup{box: grp}
		for _, row := range grp.Children {
			if row.Kind != boxtree.TableRowBox {
				continue
			}
			gr := gridRow{box: row}
			col := 0
			for _, cell := range row.Children {
				if cell.Kind != boxtree.TableCellBox {
					continue
				}
				span := max(cell.Span, 1)
				gr.cells = append(gr.cells, gridCell{box: cell, col: col, span: span})
				col += span
			}
			g.cols = max(g.cols, col)
			gg.rows = append(gg.rows, gr)
		}
		g.groups = append(g.groups, gg)
	}
	return g
}

func (g *grid) cells() []gridCell {
	var cells []gridCell
	for _, grp := range g.groups {
		for _, row := range grp.rows {
			cells = append(cells, row.cells...)
		}
	}
	return cells
}

// columns computes the intrinsic sizes of the columns. Cells spanning a
// single column are considered first; spanning cells distribute what they
// need beyond the spanned columns evenly.
func (lay *layouter) columns(g *grid) []boxtree.Sizes {
	cols := make([]boxtree.Sizes, g.cols)
	cells := g.cells()
	for _, c := range cells {
		if c.span == 1 {
			sz := lay.sizes(c.box)
			cols[c.col].Min = maxDU(cols[c.col].Min, sz.Min)
			cols[c.col].Max = maxDU(cols[c.col].Max, sz.Max)
		}
	}
	for _, c := range cells {
		if c.span == 1 {
			continue
		}
		sz := lay.sizes(c.box)
		span := cols[c.col : c.col+c.span]
		var mn, mx dimen.DU
		for _, s := range span {
			mn, mx = sum(mn, s.Min), sum(mx, s.Max)
		}
		if extra := sum(sz.Min, -mn); extra > 0 {
			share := extra / dimen.DU(c.span)
			for i := range span {
				span[i].Min = sum(span[i].Min, share)
			}
			span[len(span)-1].Min = sum(span[len(span)-1].Min, extra-share*dimen.DU(c.span))
		}
		if extra := sum(sz.Max, -mx); extra > 0 {
			share := extra / dimen.DU(c.span)
			for i := range span {
				span[i].Max = sum(span[i].Max, share)
			}
			span[len(span)-1].Max = sum(span[len(span)-1].Max, extra-share*dimen.DU(c.span))
		}
	}
	for i := range cols {
		cols[i].Max = maxDU(cols[i].Max, cols[i].Min)
	}
	return cols
}

func (lay *layouter) tableSizes(b *boxtree.Box) boxtree.Sizes {
	var sz boxtree.Sizes
	for _, col := range lay.columns(buildGrid(b)) {
		sz.Min = sum(sz.Min, col.Min)
		sz.Max = sum(sz.Max, col.Max)
	}
	return sz
}

// distribute assigns widths to columns, given the width of the table's
// content box. The last column receives rounding remainders.
func distribute(cols []boxtree.Sizes, width dimen.DU) []dimen.DU {
	widths := make([]dimen.DU, len(cols))
	if len(cols) == 0 {
		return widths
	}
	var mn, mx float64
	for _, c := range cols {
		mn += float64(c.Min)
		mx += float64(c.Max)
	}
	W := float64(width)
	for i, c := range cols {
		var f float64
		switch {
		case W <= mn:
			f = float64(c.Min)
		case W <= mx:
			f = float64(c.Min) + (float64(c.Max)-float64(c.Min))*(W-mn)/(mx-mn)
		case mx > 0:
			f = float64(c.Max) * W / mx
		default:
			f = W / float64(len(cols))
		}
		widths[i] = dimen.DU(f)
	}
	var total dimen.DU
	for _, w := range widths {
		total = sum(total, w)
	}
	if target := maxDU(width, dimen.DU(mn)); total < target {
		widths[len(widths)-1] = sum(widths[len(widths)-1], target-total)
	}
	return widths
}

func (lay *layouter) layoutTable(w *tree.Worker, b *boxtree.Box, c constraints) *piece {
	s := b.Style
	wc := c
	if wc.forceW < 0 {
		wc.shrink = true
	}
	m := lay.widths(b, wc)
	if !c.shrink && c.forceW < 0 && !b.Inline {
		_, autoL, autoR := margins(s, c.cbW)
		centre(&m, autoL, autoR, c.avail)
	}
	g := buildGrid(b)
	cols := lay.columns(g)
	var minW dimen.DU
	for _, col := range cols {
		minW = sum(minW, col.Min)
	}
	m.width = maxDU(m.width, minW)
	widths := distribute(cols, m.width)
	colX := make([]dimen.DU, len(widths)+1)
	for i, cw := range widths {
		colX[i+1] = sum(colX[i], cw)
	}
	p := &piece{box: b, kind: kindOf(b), margin: m.margin, border: m.border, padding: m.padding}
	cbH := lay.definiteHeight(s, m, c)
	ox, oy := m.origin()

	cells := g.cells()
	pieces := tree.ForkJoin(w, cells, func(w *tree.Worker, gc gridCell) *piece {
		cw := sum(colX[gc.col+gc.span], -colX[gc.col])
		cc := constraints{avail: cw, cbW: m.width, cbH: indefinite,
			forceW: cw, forceH: indefinite, depth: c.depth + 3}
		return lay.layout(w, gc.box, cc)
	})

	y, n := oy, 0
	p.kids = make([]placed, 0, len(g.groups))
	for _, grp := range g.groups {
		gp := &piece{box: grp.box, kind: fragment.TableRowGroup, w: m.width}
		gy := y
		for _, row := range grp.rows {
			rh := dimen.DU(0)
			for i := range row.cells {
				rh = maxDU(rh, pieces[n+i].h)
			}
			if h, ok := contentSize(row.box.Style, "height", cbH, 0, false); ok {
				rh = maxDU(rh, h)
			}
			rp := &piece{box: row.box, kind: fragment.TableRow, w: m.width, h: rh}
			rp.kids = make([]placed, 0, len(row.cells))
			for _, gc := range row.cells {
				kp := pieces[n]
				n++
				if kp.h != rh && !kp.broken {
					stretched := *kp
					stretched.h = rh
					kp = &stretched
				}
				cx := colX[gc.col]
				rp.kids = append(rp.kids, placed{x: cx, y: 0, p: kp})
				p.oof = append(p.oof, kp.translate(sum(ox, cx), y)...)
			}
			gp.kids = append(gp.kids, placed{x: 0, y: sum(y, -gy), p: rp})
			y = sum(y, rh)
		}
		gp.h = sum(y, -gy)
		p.kids = append(p.kids, placed{x: ox, y: gy, p: gp})
	}
	for _, k := range g.oof {
		if k.Placement.IsPositioned() {
			p.oof = append(p.oof, pending{box: k, x: ox, y: y})
		}
	}
	p.w = sum(m.width, m.innerH())
	p.h = sum(lay.height(s, m, sum(y, -oy), c), m.innerV())
	lay.resolvePositioned(w, p, c.depth)
	return p
}
