package layout

import (
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/tyse/core/dimen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Font describes the font a run of text is set in.
type Font struct {
	Family string
	Size   dimen.DU
	Weight int
	Italic bool
}

// FontOf returns the font of a computed style.
func FontOf(s *style.ComputedStyle) Font {
	return Font{
		Family: s.Get("font-family").String(),
		Size:   css.FontSize(s),
		Weight: css.FontWeight(s),
		Italic: s.Get("font-style") != "normal",
	}
}

// Metrics measures text. Implementations must be safe for concurrent use.
type Metrics interface {
	// Advance returns the width of text set in font f.
	Advance(text string, f Font) dimen.DU
}

// BasicMetrics measures text with the fixed-width glyphs of
// basicfont.Face7x13, scaled to the requested font size.
type BasicMetrics struct {
	face font.Face
	em   float64 // design size of face, in pixels
}

var _ Metrics = (*BasicMetrics)(nil)

// NewBasicMetrics creates the default metrics provider.
func NewBasicMetrics() *BasicMetrics {
	return &BasicMetrics{face: basicfont.Face7x13, em: 13}
}

// boldening widens glyphs of bold fonts.
const boldening = 1.1

// Advance implements Metrics.
func (m *BasicMetrics) Advance(text string, f Font) dimen.DU {
	if text == "" {
		return 0
	}
	adv := font.MeasureString(m.face, text)
	px := float64(adv) / 64 * css.DUToPixels(f.Size) / m.em
	if f.Weight >= 600 {
		px *= boldening
	}
	return css.PixelsToDU(px)
}
