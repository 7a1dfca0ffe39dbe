package layout

import (
	"strings"

	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/layoutcore/frame/fragment"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/npillmayer/tyse/core/dimen"
)

// Inline layout flattens the inline content of a block container into a
// sequence of items (words, spaces, inline box boundaries and atomic
// inlines) and breaks it greedily into lines.

type itemKind uint8

const (
	itemText itemKind = iota
	itemSpace
	itemBreak // forced line break
	itemOpen  // start of an inline box
	itemClose // end of an inline box
	itemAtomic
	itemOOF // float or positioned box at its static position
)

type item struct {
	kind            itemKind
	box             *boxtree.Box
	text            string
	w, h            dimen.DU
	wrap            bool // a line may break after this space
	keep            bool // preserved white space
	border, padding edges
	atom            *piece
}

// tokenize splits a line of text into words and runs of spaces.
func tokenize(line string) []string {
	var toks []string
	start := 0
	for i := 1; i <= len(line); i++ {
		if i == len(line) || (line[i] == ' ') != (line[start] == ' ') {
			toks = append(toks, line[start:i])
			start = i
		}
	}
	return toks
}

type inlineContent struct {
	lay   *layouter
	w     *tree.Worker
	width dimen.DU
	cbH   dimen.DU
	items []item
}

func (ic *inlineContent) collect(boxes []*boxtree.Box, depth int) {
	if depth > ic.lay.opts.MaxDepth {
		if len(boxes) > 0 {
			ic.lay.report(boxes[0], DepthExceeded, "inline content nested too deeply")
		}
		return
	}
	for _, k := range boxes {
		switch {
		case k.IsOutOfFlow():
			ic.items = append(ic.items, item{kind: itemOOF, box: k})
		case k.Kind == boxtree.TextBox:
			ic.text(k)
		case k.Kind == boxtree.InlineBox:
			m, _, _ := margins(k.Style, ic.width)
			bo, pa := border(k.Style), padding(k.Style, ic.width)
			ic.items = append(ic.items, item{kind: itemOpen, box: k, border: bo, padding: pa,
				w: sum(m.left, bo.left, pa.left)})
			ic.collect(k.Children, depth+1)
			ic.items = append(ic.items, item{kind: itemClose, box: k,
				w: sum(pa.right, bo.right, m.right)})
		default:
			c := constraints{avail: ic.width, cbW: ic.width, cbH: ic.cbH,
				forceW: indefinite, forceH: indefinite, shrink: true, depth: depth + 1}
			kp := ic.lay.layout(ic.w, k, c)
			ic.items = append(ic.items, item{kind: itemAtomic, box: k, atom: kp,
				w: sum(kp.w, kp.margin.h()), h: sum(kp.h, kp.margin.v())})
		}
	}
}

func (ic *inlineContent) text(k *boxtree.Box) {
	s := k.Style
	ws := s.Get("white-space")
	f := FontOf(s)
	lh := css.LineHeight(s)
	wrap := ws != "nowrap" && ws != "pre"
	metrics := ic.lay.opts.Metrics
	for i, line := range strings.Split(k.Text, "\n") {
		if i > 0 {
			ic.items = append(ic.items, item{kind: itemBreak, box: k, h: lh})
		}
		if k.Preserve && !wrap {
			if line != "" {
				ic.items = append(ic.items, item{kind: itemText, box: k, text: line,
					w: metrics.Advance(line, f), h: lh})
			}
			continue
		}
		for _, tok := range tokenize(line) {
			it := item{kind: itemText, box: k, text: tok, w: metrics.Advance(tok, f), h: lh}
			if tok[0] == ' ' {
				it.kind, it.wrap, it.keep = itemSpace, wrap, k.Preserve
			}
			ic.items = append(ic.items, it)
		}
	}
}

// --- Line breaking ---------------------------------------------------------

// seg is a piece of a line: text, an atomic inline or the part of an
// inline box on that line.
type seg struct {
	box             *boxtree.Box
	kind            fragment.Kind
	x, w, h         dimen.DU
	text            string
	kids            []*seg
	atom            *piece
	border, padding edges
	first, last     bool // segment carries the start or end edges of its box
}

type line struct {
	roots   []*seg
	stack   []*seg // open inline box segments, parallel to lineBuilder.open
	x, h    dimen.DU
	content bool
	forced  bool
	oof     []pending // static positions; y is filled in later
}

type openBox struct {
	box             *boxtree.Box
	left            dimen.DU
	border, padding edges
	started         bool
}

type lineBuilder struct {
	width       dimen.DU
	wrapAtomics bool
	lines       []*line
	cur         *line
	open        []*openBox
	space       *item // pending collapsible space
	breakAfter  bool  // a line may break after the last item placed
}

func (lb *lineBuilder) run(items []item) {
	for i := range items {
		it := &items[i]
		switch it.kind {
		case itemOpen:
			lb.open = append(lb.open, &openBox{box: it.box, left: it.w, border: it.border, padding: it.padding})
		case itemClose:
			lb.close(it)
		case itemBreak:
			lb.space = nil
			lb.openSegments()
			lb.cur.h = maxDU(lb.cur.h, it.h)
			lb.cur.forced = true
			lb.newLine()
		case itemSpace:
			if it.keep {
				lb.place(it)
				continue
			}
			if lb.cur.content && lb.space == nil {
				lb.space = it
			}
		case itemText, itemAtomic:
			need := sum(it.w, lb.pendingEdges())
			if lb.space != nil {
				need = sum(need, lb.space.w)
			}
			if lb.cur.content && sum(lb.cur.x, need) > lb.width && lb.canBreak(it) {
				lb.newLine()
			}
			if lb.space != nil {
				lb.placeSpace(lb.space)
				lb.space = nil
			}
			lb.place(it)
		case itemOOF:
			lb.cur.oof = append(lb.cur.oof, pending{box: it.box, x: lb.cur.x})
		}
	}
	lb.newLine()
}

func (lb *lineBuilder) canBreak(it *item) bool {
	if lb.space != nil {
		return lb.space.wrap
	}
	return lb.breakAfter || (it.kind == itemAtomic && lb.wrapAtomics)
}

// pendingEdges is the width of the start edges of inline boxes opened but
// not yet started.
func (lb *lineBuilder) pendingEdges() dimen.DU {
	var w dimen.DU
	for _, ob := range lb.open {
		if !ob.started {
			w = sum(w, ob.left)
		}
	}
	return w
}

// openSegments creates segments on the current line for all open inline
// boxes which do not have one yet.
func (lb *lineBuilder) openSegments() {
	cur := lb.cur
	for i := len(cur.stack); i < len(lb.open); i++ {
		ob := lb.open[i]
		s := &seg{box: ob.box, kind: fragment.Inline, x: cur.x, h: css.LineHeight(ob.box.Style),
			border: ob.border, padding: ob.padding}
		if !ob.started {
			s.first, ob.started = true, true
			cur.x = sum(cur.x, ob.left)
		}
		lb.attach(i, s)
		cur.stack = append(cur.stack, s)
		cur.h = maxDU(cur.h, s.h)
	}
}

func (lb *lineBuilder) attach(level int, s *seg) {
	if level == 0 {
		lb.cur.roots = append(lb.cur.roots, s)
		return
	}
	parent := lb.cur.stack[level-1]
	parent.kids = append(parent.kids, s)
}

func (lb *lineBuilder) place(it *item) {
	lb.openSegments()
	lb.put(it, len(lb.cur.stack))
}

// placeSpace places a collapsible space into the innermost box already
// present on the line.
func (lb *lineBuilder) placeSpace(it *item) {
	lb.put(it, len(lb.cur.stack))
}

func (lb *lineBuilder) put(it *item, level int) {
	cur := lb.cur
	if it.kind == itemAtomic {
		lb.attach(level, &seg{box: it.box, kind: it.atom.kind, x: cur.x, w: it.w, h: it.h, atom: it.atom})
		lb.breakAfter = lb.wrapAtomics
	} else {
		var last *seg
		if level == 0 {
			if n := len(cur.roots); n > 0 {
				last = cur.roots[n-1]
			}
		} else if kids := cur.stack[level-1].kids; len(kids) > 0 {
			last = kids[len(kids)-1]
		}
		if last != nil && last.kind == fragment.Text && last.box == it.box && sum(last.x, last.w) == cur.x {
			last.text += it.text
			last.w = sum(last.w, it.w)
			last.h = maxDU(last.h, it.h)
		} else {
			lb.attach(level, &seg{box: it.box, kind: fragment.Text, x: cur.x, w: it.w, h: it.h, text: it.text})
		}
		lb.breakAfter = it.kind == itemSpace && it.wrap
	}
	cur.x = sum(cur.x, it.w)
	cur.h = maxDU(cur.h, it.h)
	if it.kind != itemSpace || it.keep {
		cur.content = true
	}
}

func (lb *lineBuilder) close(it *item) {
	n := len(lb.open)
	if n == 0 {
		return
	}
	ob := lb.open[n-1]
	if !ob.started {
		lb.openSegments() // empty inline box
	}
	cur := lb.cur
	if len(cur.stack) == n {
		s := cur.stack[n-1]
		cur.x = sum(cur.x, it.w)
		s.last = true
		s.w = sum(cur.x, -s.x)
		cur.stack = cur.stack[:n-1]
		if s.w > 0 {
			cur.content = true
		}
	}
	lb.open = lb.open[:n-1]
}

func (lb *lineBuilder) newLine() {
	cur := lb.cur
	for _, s := range cur.stack {
		s.w = sum(cur.x, -s.x)
	}
	lb.lines = append(lb.lines, cur)
	lb.cur = &line{}
	lb.space = nil
	lb.breakAfter = false
}

// --- Lines to pieces -------------------------------------------------------

// inlineFlow lays out the inline content of a block container. It returns
// the height of the lines and the floats found within them.
func (lay *layouter) inlineFlow(w *tree.Worker, b *boxtree.Box, p *piece,
	width, cbH dimen.DU, depth int, ox, oy dimen.DU) (dimen.DU, []pending) {
	//
	s := b.Style
	ic := &inlineContent{lay: lay, w: w, width: width, cbH: cbH}
	ic.collect(b.Children, depth)
	ws := s.Get("white-space")
	lb := &lineBuilder{width: width, wrapAtomics: ws != "nowrap" && ws != "pre"}
	indent, _ := resolve(css.Length(s, "text-indent"), width)
	lb.cur = &line{x: indent}
	lb.run(ic.items)
	strut := css.LineHeight(s)
	align := s.Get("text-align").String()
	rtl := s.Get("direction") == "rtl"
	var floats []pending
	y := oy
	for _, ln := range lb.lines {
		h := ln.h
		if ln.content {
			h = maxDU(h, strut)
		} else if !ln.forced {
			h = 0 // white space only
		}
		base := sum(ox, alignment(align, rtl, sum(width, -ln.x)))
		for _, o := range ln.oof {
			o.x, o.y = sum(base, o.x), y
			if o.box.Placement.IsFloat() {
				floats = append(floats, o)
			} else {
				p.oof = append(p.oof, o)
			}
		}
		if h == 0 {
			continue
		}
		for _, sg := range ln.roots {
			p.kids = append(p.kids, lay.segment(p, sg, base, y, h, dimen.DU(0), dimen.DU(0)))
		}
		y = sum(y, h)
	}
	return sum(y, -oy), floats
}

// alignment returns the offset of a line within its container.
func alignment(align string, rtl bool, free dimen.DU) dimen.DU {
	if free <= 0 {
		return 0
	}
	switch align {
	case "right":
		return free
	case "center":
		return free / 2
	case "end":
		if !rtl {
			return free
		}
	case "start", "justify":
		if rtl {
			return free
		}
	}
	return 0
}

// segment converts a line segment into a piece. Segments are bottom
// aligned within their line. The position returned is relative to the
// parent segment at (px, py), or to the container if both are zero.
func (lay *layouter) segment(p *piece, sg *seg, base, lineY, lineH, px, py dimen.DU) placed {
	x := sum(base, sg.x)
	switch {
	case sg.atom != nil:
		kp := sg.atom
		ax, ay := sum(x, kp.margin.left), sum(lineY, lineH, -kp.h, -kp.margin.bottom)
		p.oof = append(p.oof, kp.translate(ax, ay)...)
		return placed{x: sum(ax, -px), y: sum(ay, -py), p: kp}
	case sg.kind == fragment.Text:
		tp := &piece{box: sg.box, kind: fragment.Text, w: sg.w, h: sg.h, text: sg.text}
		return placed{x: sum(x, -px), y: sum(lineY, lineH, -sg.h, -py), p: tp}
	}
	bo, pa := sg.border, sg.padding
	if !sg.first {
		bo.left, pa.left = 0, 0
	}
	if !sg.last {
		bo.right, pa.right = 0, 0
	}
	ip := &piece{box: sg.box, kind: fragment.Inline, w: sg.w, border: bo, padding: pa}
	ip.h = sum(sg.h, bo.v(), pa.v())
	y := sum(lineY, lineH, -sg.h, -pa.top, -bo.top)
	ip.kids = make([]placed, 0, len(sg.kids))
	for _, k := range sg.kids {
		ip.kids = append(ip.kids, lay.segment(p, k, base, lineY, lineH, x, y))
	}
	return placed{x: sum(x, -px), y: sum(y, -py), p: ip}
}
