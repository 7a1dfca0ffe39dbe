package layout

import (
	"sort"
	"strings"

	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/npillmayer/tyse/core/dimen"
)

// Flex layout is single-line: items never wrap. Items are sized along the
// main axis by resolving their flexible lengths, then laid out with their
// main size imposed.

type flexItem struct {
	box                *boxtree.Box
	order              int
	margin             edges
	base, hypo         dimen.DU // flex base size and hypothetical size (border box)
	min, max           dimen.DU // main size limits (border box)
	grow, shrink       float64
	target             float64
	frozen             bool
	autoStart, autoEnd bool // auto margins on the main axis
}

func (lay *layouter) layoutFlex(w *tree.Worker, b *boxtree.Box, c constraints) *piece {
	s := b.Style
	m := lay.widths(b, c)
	p := &piece{box: b, kind: kindOf(b), margin: m.margin, border: m.border, padding: m.padding}
	cbH := lay.definiteHeight(s, m, c)
	ox, oy := m.origin()
	dir := css.Keyword(s, "flex-direction")
	row := !strings.HasPrefix(dir, "column")
	reverse := strings.HasSuffix(dir, "-reverse")

	var boxes []*boxtree.Box
	for _, k := range b.Children {
		if k.Placement.IsPositioned() {
			p.oof = append(p.oof, pending{box: k, x: ox, y: oy})
			continue
		}
		boxes = append(boxes, k)
	}
	depth := c.depth + 1
	mainSize := m.width
	if !row {
		mainSize = cbH
	}
	items := make([]*flexItem, len(boxes))
	for i, k := range boxes {
		items[i] = lay.flexItem(w, k, row, m.width, cbH, depth)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].order < items[j].order })
	if mainSize < 0 { // column with indefinite height: items keep their hypothetical size
		mainSize = 0
		for _, it := range items {
			it.target = float64(it.hypo)
			it.frozen = true
			mainSize = sum(mainSize, it.hypo, it.mainMargins(row))
		}
	} else {
		resolveFlexible(items, mainSize, row)
	}

	// lay out the items with their main size imposed
	pieces := tree.ForkJoin(w, items, func(w *tree.Worker, it *flexItem) *piece {
		ic := constraints{avail: m.width, cbW: m.width, cbH: cbH,
			forceW: indefinite, forceH: indefinite, depth: depth}
		if row {
			ic.forceW = dimen.DU(it.target)
		} else {
			ic.forceH = dimen.DU(it.target)
			if lay.alignSelf(b, it.box) == "stretch" && css.Length(it.box.Style, "width").IsAuto() {
				ic.forceW = clamp(sum(m.width, -it.margin.h()))
			} else {
				ic.shrink = true
				ic.avail = clamp(sum(m.width, -it.margin.h()))
			}
		}
		return lay.layout(w, it.box, ic)
	})

	// cross size of the line
	cross := dimen.DU(0)
	if row {
		for i, kp := range pieces {
			cross = maxDU(cross, sum(kp.h, items[i].margin.v()))
		}
		if cbH >= 0 {
			cross = cbH
		}
		// stretched items are laid out again with their cross size imposed
		var again []int
		for i, it := range items {
			if lay.alignSelf(b, it.box) == "stretch" && css.Length(it.box.Style, "height").IsAuto() &&
				pieces[i].h != clamp(sum(cross, -it.margin.v())) {
				again = append(again, i)
			}
		}
		redone := tree.ForkJoin(w, again, func(w *tree.Worker, i int) *piece {
			it := items[i]
			ic := constraints{avail: m.width, cbW: m.width, cbH: cbH, depth: depth,
				forceW: dimen.DU(it.target), forceH: clamp(sum(cross, -it.margin.v()))}
			return lay.layout(w, it.box, ic)
		})
		for j, i := range again {
			pieces[i] = redone[j]
		}
	} else {
		cross = m.width
	}

	// main axis positions
	var used dimen.DU
	autos := 0
	for i, it := range items {
		used = sum(used, mainOf(pieces[i], row), it.mainMargins(row))
		if it.autoStart {
			autos++
		}
		if it.autoEnd {
			autos++
		}
	}
	free := sum(mainSize, -used)
	lead, gap := dimen.DU(0), dimen.DU(0)
	var autoShare dimen.DU
	if autos > 0 && free > 0 {
		autoShare = free / dimen.DU(autos)
	} else {
		lead, gap = justify(css.Keyword(s, "justify-content"), free, len(items), reverse)
	}
	pos := lead
	if reverse {
		pos = sum(mainSize, -lead)
	}
	p.kids = make([]placed, 0, len(items))
	for i, it := range items {
		kp := pieces[i]
		ms, me := it.mainMarginStart(row), it.mainMarginEnd(row)
		if it.autoStart {
			ms = sum(ms, autoShare)
		}
		if it.autoEnd {
			me = sum(me, autoShare)
		}
		size := mainOf(kp, row)
		var at dimen.DU
		if reverse {
			at = sum(pos, -me, -size)
			pos = sum(pos, -me, -size, -ms, -gap)
		} else {
			at = sum(pos, ms)
			pos = sum(pos, ms, size, me, gap)
		}
		var x, y dimen.DU
		if row {
			y = sum(oy, crossOffset(lay.alignSelf(b, it.box), cross, kp.h, it.margin.top, it.margin.bottom))
			x = sum(ox, at)
		} else {
			x = sum(ox, crossOffset(lay.alignSelf(b, it.box), cross, kp.w, it.margin.left, it.margin.right))
			y = sum(oy, at)
		}
		dx, dy := relativeOffset(it.box.Style, m.width, cbH)
		x, y = sum(x, dx), sum(y, dy)
		p.kids = append(p.kids, placed{x: x, y: y, p: kp})
		p.oof = append(p.oof, kp.translate(x, y)...)
	}
	content := cross
	if !row {
		content = mainSize
	}
	p.w = sum(m.width, m.innerH())
	p.h = sum(lay.height(s, m, content, c), m.innerV())
	lay.resolvePositioned(w, p, c.depth)
	return p
}

// flexItem determines the flex base size and limits of an item.
func (lay *layouter) flexItem(w *tree.Worker, k *boxtree.Box, row bool, cbW, cbH dimen.DU, depth int) *flexItem {
	s := k.Style
	m, autoL, autoR := margins(s, cbW)
	autoT := css.Length(s, "margin-top").IsAuto()
	autoB := css.Length(s, "margin-bottom").IsAuto()
	it := &flexItem{
		box:    k,
		order:  css.Integer(s, "order", 0),
		margin: m,
		grow:   css.Number(s, "flex-grow"),
		shrink: css.Number(s, "flex-shrink"),
	}
	bo, pa := border(s), padding(s, cbW)
	borderBox := s.Get("box-sizing") == "border-box"
	var inner, ref dimen.DU
	var sizeKey, minKey, maxKey string
	if row {
		inner, ref, sizeKey, minKey, maxKey = sum(bo.h(), pa.h()), cbW, "width", "min-width", "max-width"
		it.autoStart, it.autoEnd = autoL, autoR
	} else {
		inner, ref, sizeKey, minKey, maxKey = sum(bo.v(), pa.v()), cbH, "height", "min-height", "max-height"
		it.autoStart, it.autoEnd = autoT, autoB
	}
	var base dimen.DU
	ok := false
	if basis := css.Length(s, "flex-basis"); !basis.IsAuto() && !basis.IsContent() {
		if v, resolved := resolve(basis, ref); resolved {
			if borderBox {
				v = sum(v, -inner)
			}
			base, ok = clamp(v), true
		}
	}
	if !ok {
		base, ok = contentSize(s, sizeKey, ref, inner, borderBox)
	}
	if !ok {
		if row {
			base = clamp(sum(lay.sizes(k).Max, -inner))
		} else {
			c := constraints{avail: cbW, cbW: cbW, cbH: cbH, forceW: indefinite, forceH: indefinite, depth: depth}
			if k.Kind == boxtree.ReplacedBox || k.Kind == boxtree.TextBox {
				c.shrink = true
			}
			base = clamp(sum(lay.layout(w, k, c).h, -inner))
		}
	}
	it.base = sum(base, inner)
	// automatic minimum size
	var minC dimen.DU
	if row {
		minC = clamp(sum(lay.sizes(k).Min, -inner))
	}
	if v, ok := contentSize(s, minKey, ref, inner, borderBox); ok {
		minC = v
	}
	it.min = sum(minC, inner)
	it.max = css.MaxLength
	if v, ok := contentSize(s, maxKey, ref, inner, borderBox); ok {
		it.max = maxDU(sum(v, inner), it.min)
	}
	it.hypo = minDU(maxDU(it.base, it.min), it.max)
	return it
}

func (it *flexItem) mainMarginStart(row bool) dimen.DU {
	if row {
		return it.margin.left
	}
	return it.margin.top
}

func (it *flexItem) mainMarginEnd(row bool) dimen.DU {
	if row {
		return it.margin.right
	}
	return it.margin.bottom
}

func (it *flexItem) mainMargins(row bool) dimen.DU {
	return sum(it.mainMarginStart(row), it.mainMarginEnd(row))
}

func mainOf(p *piece, row bool) dimen.DU {
	if row {
		return p.w
	}
	return p.h
}

// resolveFlexible distributes the free space of a flex line among its
// items, freezing items which violate their limits.
func resolveFlexible(items []*flexItem, mainSize dimen.DU, row bool) {
	var hypo dimen.DU
	for _, it := range items {
		hypo = sum(hypo, it.hypo, it.mainMargins(row))
	}
	growing := hypo < mainSize
	for _, it := range items {
		it.target = float64(it.hypo)
		factor := it.shrink
		if growing {
			factor = it.grow
		}
		if factor == 0 || (growing && it.base > it.hypo) || (!growing && it.base < it.hypo) {
			it.frozen = true
		}
	}
	for range len(items) + 1 {
		var used, sumFactors, scaledSum float64
		active := 0
		for _, it := range items {
			used += float64(it.mainMargins(row))
			if it.frozen {
				used += it.target
				continue
			}
			used += float64(it.base)
			active++
			if growing {
				sumFactors += it.grow
			} else {
				sumFactors += it.shrink
				scaledSum += it.shrink * float64(it.base)
			}
		}
		if active == 0 {
			break
		}
		free := float64(mainSize) - used
		if sumFactors < 1 && sumFactors > 0 {
			free *= sumFactors
		}
		var violation float64
		for _, it := range items {
			if it.frozen {
				continue
			}
			t := float64(it.base)
			switch {
			case growing && sumFactors > 0:
				t += free * it.grow / sumFactors
			case !growing && scaledSum > 0:
				t += free * it.shrink * float64(it.base) / scaledSum
			}
			clamped := t
			if clamped < float64(it.min) {
				clamped = float64(it.min)
			}
			if clamped > float64(it.max) {
				clamped = float64(it.max)
			}
			violation += clamped - t
			it.target = clamped
		}
		done := true
		for _, it := range items {
			if it.frozen {
				continue
			}
			switch {
			case violation == 0,
				violation > 0 && it.target == float64(it.min),
				violation < 0 && it.target == float64(it.max):
				it.frozen = true
			}
			if !it.frozen {
				done = false
			}
		}
		if done {
			break
		}
	}
	for _, it := range items {
		it.target = float64(dimen.DU(it.target))
	}
}

// alignSelf returns the used cross axis alignment of a flex item.
func (lay *layouter) alignSelf(container, item *boxtree.Box) string {
	a := css.Keyword(item.Style, "align-self")
	if a == "auto" || a == "" {
		a = css.Keyword(container.Style, "align-items")
	}
	if a == "normal" || a == "" {
		a = "stretch"
	}
	return a
}

func crossOffset(align string, cross, size, start, end dimen.DU) dimen.DU {
	free := sum(cross, -size, -start, -end)
	switch align {
	case "flex-end", "end":
		return sum(start, free)
	case "center":
		return sum(start, free/2)
	}
	return start
}

// justify returns the offset of the first item and the gap between items.
func justify(mode string, free dimen.DU, n int, reverse bool) (lead, gap dimen.DU) {
	if free <= 0 || n == 0 {
		if mode == "flex-end" || mode == "end" {
			return free, 0
		}
		if mode == "center" {
			return free / 2, 0
		}
		return 0, 0
	}
	switch mode {
	case "flex-end":
		return free, 0
	case "end":
		if reverse {
			return 0, 0
		}
		return free, 0
	case "start":
		if reverse {
			return free, 0
		}
	case "center":
		return free / 2, 0
	case "space-between":
		if n > 1 {
			return 0, free / dimen.DU(n-1)
		}
	case "space-around":
		gap = free / dimen.DU(n)
		return gap / 2, gap
	case "space-evenly":
		gap = free / dimen.DU(n+1)
		return gap, gap
	}
	return 0, 0
}
