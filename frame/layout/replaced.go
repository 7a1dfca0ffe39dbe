package layout

import (
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/tyse/core/dimen"
)

// replacedSize returns the used content size of replaced content. A size
// given for one axis only scales the other axis with the intrinsic aspect
// ratio.
func (lay *layouter) replacedSize(b *boxtree.Box, cbW, cbH dimen.DU) (dimen.DU, dimen.DU) {
	s := b.Style
	iw, ih := float64(boxtree.DefaultReplacedWidth), float64(boxtree.DefaultReplacedHeight)
	if b.Replaced != nil {
		iw, ih = b.Replaced.Width, b.Replaced.Height
	}
	inner := sum(border(s).h(), padding(s, maxDU(cbW, 0)).h())
	innerV := sum(border(s).v(), padding(s, maxDU(cbW, 0)).v())
	borderBox := s.Get("box-sizing") == "border-box"
	w, hasW := contentSize(s, "width", cbW, inner, borderBox)
	h, hasH := contentSize(s, "height", cbH, innerV, borderBox)
	switch {
	case hasW && hasH:
	case hasW:
		h = dimen.DU(0)
		if iw > 0 {
			h = scale(w, ih/iw)
		}
	case hasH:
		w = dimen.DU(0)
		if ih > 0 {
			w = scale(h, iw/ih)
		}
	default:
		w, h = css.PixelsToDU(iw), css.PixelsToDU(ih)
	}
	w = limits(s, w, "min-width", "max-width", cbW, inner, borderBox)
	h = limits(s, h, "min-height", "max-height", cbH, innerV, borderBox)
	return w, h
}

func (lay *layouter) layoutReplaced(b *boxtree.Box, c constraints) *piece {
	s := b.Style
	m, autoL, autoR := margins(s, c.cbW)
	bo, pa := border(s), padding(s, c.cbW)
	w, h := lay.replacedSize(b, c.cbW, c.cbH)
	if c.forceW >= 0 {
		w = clamp(sum(c.forceW, -bo.h(), -pa.h()))
	}
	if c.forceH >= 0 {
		h = clamp(sum(c.forceH, -bo.v(), -pa.v()))
	}
	md := model{margin: m, border: bo, padding: pa, width: w}
	if !b.Inline && !c.shrink {
		centre(&md, autoL, autoR, c.avail)
	}
	return &piece{
		box:     b,
		kind:    kindOf(b),
		w:       sum(w, md.innerH()),
		h:       sum(h, md.innerV()),
		margin:  md.margin,
		border:  bo,
		padding: pa,
	}
}
