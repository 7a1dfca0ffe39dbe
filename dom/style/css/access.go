package css

import (
	"image/color"
	"strconv"

	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/tyse/core/dimen"
)

// Typed access to computed styles. Computed values are canonical, so these
// functions do not report errors; unparsable values yield zero values.

// Length returns a computed length property.
func Length(s *style.ComputedStyle, key string) DimenT {
	return ParseComputed(s.Get(key).String())
}

// Number returns a computed numeric property.
func Number(s *style.ComputedStyle, key string) float64 {
	f, err := strconv.ParseFloat(s.Get(key).String(), 64)
	if err != nil || f != f {
		return 0
	}
	return f
}

// Integer returns a computed integer property, or deflt for keywords.
func Integer(s *style.ComputedStyle, key string, deflt int) int {
	n, err := strconv.Atoi(s.Get(key).String())
	if err != nil {
		return deflt
	}
	return n
}

// Keyword returns a computed keyword property.
func Keyword(s *style.ComputedStyle, key string) string {
	return s.Get(key).String()
}

// Display returns the display mode of a computed style.
func Display(s *style.ComputedStyle) DisplayMode {
	d, err := ParseDisplay(s.Get("display").String())
	if err != nil {
		tracer().Debugf("%v", err)
	}
	return d
}

// FontSize returns the computed font size.
func FontSize(s *style.ComputedStyle) dimen.DU {
	return Length(s, "font-size").Unwrap()
}

// FontWeight returns the computed font weight.
func FontWeight(s *style.ComputedStyle) int {
	return Integer(s, "font-weight", 400)
}

// NormalLineHeight is the factor for 'line-height: normal'.
const NormalLineHeight = 1.2

// LineHeight returns the used line height.
func LineHeight(s *style.ComputedStyle) dimen.DU {
	fs := FontSize(s)
	v := s.Get("line-height").String()
	if v == "normal" {
		return dimen.DU(float64(fs) * NormalLineHeight)
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return dimen.DU(float64(fs) * f)
	}
	return Length(s, "line-height").Unwrap()
}

// Color returns a computed color property.
func Color(s *style.ComputedStyle, key string) color.RGBA {
	p := s.Get(key)
	if p == "currentcolor" {
		p = s.Get("color")
	}
	c, _ := p.Color()
	return c
}

// IsFloating is true for boxes with a float other than 'none'.
func IsFloating(s *style.ComputedStyle) bool {
	f := s.Get("float")
	return f == "left" || f == "right"
}

// HasFixedWidth is true if the 'width' of a style is an absolute length.
// The intrinsic sizes of such a box do not depend on its content.
func HasFixedWidth(s *style.ComputedStyle) bool {
	return Length(s, "width").IsAbsolute()
}
