package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"
	"github.com/npillmayer/tyse/core/dimen"
)

// PX is a CSS pixel, i.e. 1/96 inch or 3/4 of a point.
var PX = dimen.PT * 3 / 4

// MaxLength is the largest length layout will work with.
const MaxLength dimen.DU = 1 << 30

const (
	dimenUnset uint32 = 0

	dimenAbsolute uint32 = 0x0001
	dimenAuto     uint32 = 0x0002
	dimenInherit  uint32 = 0x0003
	dimenInitial  uint32 = 0x0004
	dimenNone     uint32 = 0x0005
	kindMask      uint32 = 0x000f

	// Flags for content dependent dimensions
	DimenContentMax uint32 = 0x0010
	DimenContentMin uint32 = 0x0020
	DimenContentFit uint32 = 0x0030
	contentMask     uint32 = 0x00f0

	dimenEM      uint32 = 0x0100
	dimenEX      uint32 = 0x0200
	dimenCH      uint32 = 0x0300
	dimenREM     uint32 = 0x0400
	dimenVW      uint32 = 0x0500
	dimenVH      uint32 = 0x0600
	dimenVMIN    uint32 = 0x0700
	dimenVMAX    uint32 = 0x0800
	dimenPercent uint32 = 0x0900
	relativeMask uint32 = 0xff00
)

// DimenT is an option type for CSS dimensions.
type DimenT struct {
	d     dimen.DU
	rel   float64 // factor for font- and viewport-relative units, or percentage
	flags uint32
}

/*
type DimenT
	= Auto
	| None
	| Inherit
	| Initial
	| JustDimen dimen
	| Percentage Percent
	| ViewRel unit
	| FontRel unit
	| ContentRel Min N
	| ContentRel Max N
*/

func Auto() DimenT {
	return DimenT{flags: dimenAuto}
}

// None is the dimension for keyword 'none', as in 'max-width: none'.
func None() DimenT {
	return DimenT{flags: dimenNone}
}

func Inherit() DimenT {
	return DimenT{flags: dimenInherit}
}

func Initial() DimenT {
	return DimenT{flags: dimenInitial}
}

// JustDimen creates a CSS dimension with a fixed value of x.
func JustDimen(x dimen.DU) DimenT {
	return DimenT{d: x, flags: dimenAbsolute}
}

// Pixels creates a CSS dimension with a fixed value of n CSS pixels.
func Pixels(n float64) DimenT {
	return JustDimen(PixelsToDU(n))
}

// Percentage creates a CSS dimension with a %-relative value.
func Percentage(n float64) DimenT {
	return DimenT{rel: n, flags: dimenPercent}
}

// Content creates a content dependent dimension (DimenContentMin, etc).
func Content(which uint32) DimenT {
	return DimenT{flags: which & contentMask}
}

// IsAuto is true for dimension 'auto'.
func (d DimenT) IsAuto() bool { return d.flags&kindMask == dimenAuto }

// IsNone is true for dimension 'none'.
func (d DimenT) IsNone() bool { return d.flags&kindMask == dimenNone }

// IsAbsolute is true for fixed dimensions.
func (d DimenT) IsAbsolute() bool { return d.flags&kindMask == dimenAbsolute }

// IsPercent is true for percentages.
func (d DimenT) IsPercent() bool { return d.flags&relativeMask == dimenPercent }

// IsRelative is true for percentages and font- or viewport-relative units.
func (d DimenT) IsRelative() bool { return d.flags&relativeMask != 0 }

// IsContent is true for content dependent dimensions.
func (d DimenT) IsContent() bool { return d.flags&contentMask != 0 }

// IsUnset is true for the zero value.
func (d DimenT) IsUnset() bool { return d.flags == dimenUnset }

// Unwrap returns the fixed value of a dimension, or 0.
func (d DimenT) Unwrap() dimen.DU {
	if d.IsAbsolute() {
		return d.d
	}
	return 0
}

// Percent returns the percentage of a dimension, or 0.
func (d DimenT) Percent() float64 {
	if d.IsPercent() {
		return d.rel
	}
	return 0
}

// Resolve returns the used value of a fixed dimension or a percentage of
// ref. ok is false for auto, none and content-dependent dimensions.
func (d DimenT) Resolve(ref dimen.DU) (du dimen.DU, ok bool) {
	switch {
	case d.IsAbsolute():
		return d.d, true
	case d.IsPercent():
		return dimen.DU(math.Round(float64(ref) * d.rel / 100)), true
	}
	return 0, false
}

// ResolveOr is like Resolve, but returns a default for dimensions without
// a fixed or percentage value.
func (d DimenT) ResolveOr(ref, deflt dimen.DU) dimen.DU {
	if du, ok := d.Resolve(ref); ok {
		return du
	}
	return deflt
}

func (d DimenT) String() string {
	switch {
	case d.IsAbsolute():
		return FormatPixels(d.d)
	case d.IsPercent():
		return strconv.FormatFloat(d.rel, 'f', -1, 64) + "%"
	case d.IsRelative():
		for unit, flag := range relativeUnits {
			if d.flags&relativeMask == flag {
				return strconv.FormatFloat(d.rel, 'f', -1, 64) + unit
			}
		}
	case d.IsAuto():
		return "auto"
	case d.IsNone():
		return "none"
	case d.flags&kindMask == dimenInherit:
		return "inherit"
	case d.flags&kindMask == dimenInitial:
		return "initial"
	case d.flags&contentMask == DimenContentMin:
		return "min-content"
	case d.flags&contentMask == DimenContentMax:
		return "max-content"
	case d.flags&contentMask == DimenContentFit:
		return "fit-content"
	}
	return "<unset>"
}

// --- Units -----------------------------------------------------------------

// PixelsToDU converts CSS pixels to design units, clamped to ±MaxLength.
func PixelsToDU(px float64) dimen.DU {
	du := px * float64(PX)
	switch {
	case du != du:
		return 0
	case du > float64(MaxLength):
		return MaxLength
	case du < -float64(MaxLength):
		return -MaxLength
	}
	return dimen.DU(math.Round(du))
}

// DUToPixels converts design units to CSS pixels.
func DUToPixels(du dimen.DU) float64 {
	return float64(du) / float64(PX)
}

// FormatPixels returns the canonical computed form of a length, e.g. "12.5px".
func FormatPixels(du dimen.DU) string {
	px := math.Round(DUToPixels(du)*1000) / 1000
	return strconv.FormatFloat(px, 'f', -1, 64) + "px"
}

// absolute units in CSS pixels
var absoluteUnits = map[string]float64{
	"px": 1,
	"pt": 4.0 / 3.0,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"q":  96 / 101.6,
}

var relativeUnits = map[string]uint32{
	"em":   dimenEM,
	"ex":   dimenEX,
	"ch":   dimenCH,
	"rem":  dimenREM,
	"vw":   dimenVW,
	"vh":   dimenVH,
	"vmin": dimenVMIN,
	"vmax": dimenVMAX,
}

// ParseDimen parses a specified CSS length value, e.g. "12pt", "1.5em",
// "50%", "auto". Unitless numbers other than 0 are rejected.
func ParseDimen(s string) (DimenT, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "auto":
		return Auto(), nil
	case "none":
		return None(), nil
	case "inherit":
		return Inherit(), nil
	case "initial":
		return Initial(), nil
	case "min-content":
		return Content(DimenContentMin), nil
	case "max-content":
		return Content(DimenContentMax), nil
	case "fit-content":
		return Content(DimenContentFit), nil
	}
	sc := scanner.New(s)
	tok := sc.Next()
	sign := 1.0
	if tok.Type == scanner.TokenChar && (tok.Value == "-" || tok.Value == "+") {
		if tok.Value == "-" {
			sign = -1
		}
		tok = sc.Next()
	}
	var d DimenT
	switch tok.Type {
	case scanner.TokenNumber:
		v, err := parseNumber(tok.Value)
		if err != nil {
			return d, err
		}
		if v != 0 {
			return d, fmt.Errorf("length without unit: %q", s)
		}
		d = JustDimen(0)
	case scanner.TokenPercentage:
		v, err := parseNumber(strings.TrimSuffix(tok.Value, "%"))
		if err != nil {
			return d, err
		}
		d = Percentage(sign * v)
	case scanner.TokenDimension:
		num, unit := splitDimension(tok.Value)
		v, err := parseNumber(num)
		if err != nil {
			return d, err
		}
		v *= sign
		if factor, ok := absoluteUnits[unit]; ok {
			d = Pixels(v * factor)
		} else if flag, ok := relativeUnits[unit]; ok {
			d = DimenT{rel: v, flags: flag}
		} else {
			return d, fmt.Errorf("unknown unit %q in %q", unit, s)
		}
	default:
		return d, fmt.Errorf("not a length: %q", s)
	}
	if tok = sc.Next(); tok.Type != scanner.TokenEOF {
		return DimenT{}, fmt.Errorf("trailing characters in length %q", s)
	}
	return d, nil
}

// ParseComputed parses the canonical computed form of a length (as
// produced by FormatPixels, a percentage or a keyword). It does not need a
// tokenizer and is used on hot paths of layout.
func ParseComputed(s string) DimenT {
	switch {
	case strings.HasSuffix(s, "px"):
		if v, err := strconv.ParseFloat(s[:len(s)-2], 64); err == nil {
			return Pixels(v)
		}
	case strings.HasSuffix(s, "%"):
		if v, err := strconv.ParseFloat(s[:len(s)-1], 64); err == nil {
			return Percentage(v)
		}
	}
	d, err := ParseDimen(s)
	if err != nil {
		return DimenT{}
	}
	return d
}

func splitDimension(v string) (num, unit string) {
	i := strings.IndexFunc(v, func(r rune) bool {
		return r != '.' && r != '-' && r != '+' && (r < '0' || r > '9')
	})
	if i < 0 {
		return v, ""
	}
	return v[:i], v[i:]
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

// ---------------------------------------------------------------------------

func (d DimenT) Match() *Matcher {
	return &Matcher{dimen: d}
}

type Matcher struct {
	dimen DimenT
}

func (m *Matcher) IsKind(d DimenT) *Matcher {
	switch {
	case (m.dimen.flags&relativeMask > 0) && (d.flags&relativeMask > 0):
		if (m.dimen.flags&relativeMask == dimenPercent) != (d.flags&relativeMask == dimenPercent) {
			return nil
		}
		return m
	case (m.dimen.flags&contentMask > 0) && (d.flags&contentMask > 0):
		return m
	case m.dimen.flags&(relativeMask|contentMask) == 0 && (m.dimen.flags&kindMask) == (d.flags&kindMask):
		return m
	}
	return nil
}

func (m *Matcher) Just(du *dimen.DU) *Matcher {
	if m.dimen.IsAbsolute() {
		if du != nil {
			*du = m.dimen.d
		}
		return m
	}
	return nil
}

func (m *Matcher) Percentage(p *float64) *Matcher {
	if m.dimen.IsPercent() {
		if p != nil {
			*p = m.dimen.rel
		}
		return m
	}
	return nil
}

// --- Expression matching ---------------------------------------------------

type DimenPatterns[T any] struct {
	Auto    T
	None    T
	Inherit T
	Initial T
	Just    T
	Percent T
	Default T
}

func DimenPattern[T any](d DimenT) *MatchExpr[T] {
	return &MatchExpr[T]{dimen: d}
}

type MatchExpr[T any] struct {
	dimen DimenT
}

func (m *MatchExpr[T]) OneOf(patterns DimenPatterns[T]) T {
	switch {
	case m.dimen.IsPercent():
		return patterns.Percent
	case m.dimen.IsAuto():
		return patterns.Auto
	case m.dimen.IsNone():
		return patterns.None
	case m.dimen.IsAbsolute():
		return patterns.Just
	case m.dimen.flags&kindMask == dimenInitial:
		return patterns.Initial
	case m.dimen.flags&kindMask == dimenInherit:
		return patterns.Inherit
	}
	return patterns.Default
}

func (m *MatchExpr[T]) With(du *dimen.DU) *MatchExpr[T] {
	*du = m.dimen.d
	return m
}

func (m *MatchExpr[T]) Const(x T) T {
	return x
}
