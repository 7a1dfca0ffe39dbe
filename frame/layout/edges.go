package layout

import (
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/layoutcore/frame/fragment"
	"github.com/npillmayer/tyse/core/dimen"
)

// --- Arithmetic ------------------------------------------------------------

// clamp restricts a size to [0, css.MaxLength].
func clamp(d dimen.DU) dimen.DU {
	switch {
	case d < 0:
		return 0
	case d > css.MaxLength:
		return css.MaxLength
	}
	return d
}

// sum adds lengths without overflowing; the result is restricted to
// ±css.MaxLength.
func sum(ds ...dimen.DU) dimen.DU {
	var t int64
	for _, d := range ds {
		t += int64(d)
	}
	switch {
	case t > int64(css.MaxLength):
		return css.MaxLength
	case t < -int64(css.MaxLength):
		return -css.MaxLength
	}
	return dimen.DU(t)
}

func maxDU(a, b dimen.DU) dimen.DU {
	if a > b {
		return a
	}
	return b
}

func minDU(a, b dimen.DU) dimen.DU {
	if a < b {
		return a
	}
	return b
}

// scale multiplies a length by a factor.
func scale(d dimen.DU, f float64) dimen.DU {
	return css.PixelsToDU(css.DUToPixels(d) * f)
}

// resolve returns the used value of a dimension, with percentages relative
// to ref. Percentages of an indefinite reference do not resolve.
func resolve(d css.DimenT, ref dimen.DU) (dimen.DU, bool) {
	switch {
	case d.IsAbsolute():
		return d.Unwrap(), true
	case d.IsPercent():
		if ref < 0 {
			return 0, false
		}
		return scale(ref, d.Percent()/100), true
	}
	return 0, false
}

// --- Box edges -------------------------------------------------------------

type edges struct {
	top, right, bottom, left dimen.DU
}

func (e edges) h() dimen.DU {
	return sum(e.left, e.right)
}

func (e edges) v() dimen.DU {
	return sum(e.top, e.bottom)
}

func (e edges) plus(o edges) edges {
	return edges{
		top:    sum(e.top, o.top),
		right:  sum(e.right, o.right),
		bottom: sum(e.bottom, o.bottom),
		left:   sum(e.left, o.left),
	}
}

func (e edges) fragment() fragment.Edges {
	return fragment.Edges{
		Top:    css.DUToPixels(e.top),
		Right:  css.DUToPixels(e.right),
		Bottom: css.DUToPixels(e.bottom),
		Left:   css.DUToPixels(e.left),
	}
}

// margins resolves the margins of a box. Auto margins are returned as
// zero and flagged.
func margins(s *style.ComputedStyle, cbW dimen.DU) (m edges, autoLeft, autoRight bool) {
	side := func(key string) (dimen.DU, bool) {
		d := css.Length(s, key)
		if d.IsAuto() {
			return 0, true
		}
		v, _ := resolve(d, maxDU(cbW, 0))
		return v, false
	}
	m.top, _ = side("margin-top")
	m.right, autoRight = side("margin-right")
	m.bottom, _ = side("margin-bottom")
	m.left, autoLeft = side("margin-left")
	return
}

func padding(s *style.ComputedStyle, cbW dimen.DU) edges {
	side := func(key string) dimen.DU {
		v, _ := resolve(css.Length(s, key), maxDU(cbW, 0))
		return clamp(v)
	}
	return edges{
		top:    side("padding-top"),
		right:  side("padding-right"),
		bottom: side("padding-bottom"),
		left:   side("padding-left"),
	}
}

func border(s *style.ComputedStyle) edges {
	side := func(key string) dimen.DU {
		return clamp(css.Length(s, key).Unwrap())
	}
	return edges{
		top:    side("border-top-width"),
		right:  side("border-right-width"),
		bottom: side("border-bottom-width"),
		left:   side("border-left-width"),
	}
}

// --- Used sizes ------------------------------------------------------------

// model is the resolved box model of a box along the inline axis.
type model struct {
	margin, border, padding edges
	width                   dimen.DU // content width
	borderBox               bool     // box-sizing: border-box
}

func (m model) innerH() dimen.DU {
	return sum(m.border.h(), m.padding.h())
}

func (m model) innerV() dimen.DU {
	return sum(m.border.v(), m.padding.v())
}

// origin is the offset of the content box relative to the border box.
func (m model) origin() (dimen.DU, dimen.DU) {
	return sum(m.border.left, m.padding.left), sum(m.border.top, m.padding.top)
}

// contentSize returns the content size given by a 'width' or 'height'
// property, if it resolves.
func contentSize(s *style.ComputedStyle, key string, ref, inner dimen.DU, borderBox bool) (dimen.DU, bool) {
	v, ok := resolve(css.Length(s, key), ref)
	if !ok {
		return 0, false
	}
	if borderBox {
		v = sum(v, -inner)
	}
	return clamp(v), true
}

// limits applies 'min-*' and 'max-*' to a content size.
func limits(s *style.ComputedStyle, size dimen.DU, minKey, maxKey string, ref, inner dimen.DU, borderBox bool) dimen.DU {
	if mx, ok := contentSize(s, maxKey, ref, inner, borderBox); ok && size > mx {
		size = mx
	}
	if mn, ok := contentSize(s, minKey, ref, inner, borderBox); ok && size < mn {
		size = mn
	}
	return clamp(size)
}

// widths resolves the horizontal box model of a box from its constraints.
func (lay *layouter) widths(b *boxtree.Box, c constraints) model {
	s := b.Style
	var m model
	var autoL, autoR bool
	m.margin, autoL, autoR = margins(s, c.cbW)
	m.border = border(s)
	m.padding = padding(s, c.cbW)
	m.borderBox = s.Get("box-sizing") == "border-box"
	inner := m.innerH()
	if c.forceW >= 0 {
		m.width = clamp(sum(c.forceW, -inner))
		return m
	}
	w, ok := contentSize(s, "width", c.cbW, inner, m.borderBox)
	if !ok {
		avail := clamp(sum(c.avail, -m.margin.h(), -inner))
		if c.shrink {
			sz := lay.sizes(b)
			minC, maxC := clamp(sum(sz.Min, -inner)), clamp(sum(sz.Max, -inner))
			w = minDU(maxDU(minC, avail), maxC)
		} else {
			w = avail
		}
	}
	m.width = limits(s, w, "min-width", "max-width", c.cbW, inner, m.borderBox)
	if !c.shrink {
		centre(&m, autoL, autoR, c.avail)
	}
	return m
}

// centre distributes the free space of a block-level box among its auto
// margins.
func centre(m *model, autoL, autoR bool, avail dimen.DU) {
	if !autoL && !autoR {
		return
	}
	free := sum(avail, -m.width, -m.innerH(), -m.margin.h())
	if free <= 0 {
		return
	}
	switch {
	case autoL && autoR:
		m.margin.left = free / 2
		m.margin.right = free - free/2
	case autoL:
		m.margin.left = free
	default:
		m.margin.right = free
	}
}

// height resolves the used content height of a box, given the height of
// its content.
func (lay *layouter) height(s *style.ComputedStyle, m model, content dimen.DU, c constraints) dimen.DU {
	inner := m.innerV()
	if c.forceH >= 0 {
		return clamp(sum(c.forceH, -inner))
	}
	h, ok := contentSize(s, "height", c.cbH, inner, m.borderBox)
	if !ok {
		h = content
	}
	return limits(s, h, "min-height", "max-height", c.cbH, inner, m.borderBox)
}

// definiteHeight is the content height of a box if it is known before its
// content has been laid out, or indefinite.
func (lay *layouter) definiteHeight(s *style.ComputedStyle, m model, c constraints) dimen.DU {
	inner := m.innerV()
	if c.forceH >= 0 {
		return clamp(sum(c.forceH, -inner))
	}
	if h, ok := contentSize(s, "height", c.cbH, inner, m.borderBox); ok {
		return limits(s, h, "min-height", "max-height", c.cbH, inner, m.borderBox)
	}
	return indefinite
}

// relativeOffset returns the offset of a relatively positioned box.
func relativeOffset(s *style.ComputedStyle, cbW, cbH dimen.DU) (dx, dy dimen.DU) {
	pos := css.PositionOf(s)
	switch m := pos.Match(); m {
	case m.Relative(nil):
	default:
		return 0, 0
	}
	if v, ok := resolve(pos.Offset(css.Left), cbW); ok {
		dx = v
	} else if v, ok := resolve(pos.Offset(css.Right), cbW); ok {
		dx = -v
	}
	if v, ok := resolve(pos.Offset(css.Top), cbH); ok {
		dy = v
	} else if v, ok := resolve(pos.Offset(css.Bottom), cbH); ok {
		dy = -v
	}
	return
}
