package css

import (
	"fmt"
	"math"
	"strconv"

	"github.com/npillmayer/layoutcore/dom/style"
)

// Viewport describes the device a document is laid out for. Sizes are
// given in CSS pixels.
type Viewport struct {
	Width            float64
	Height           float64
	DevicePixelRatio float64
}

// DefaultViewport is used if a client does not specify a viewport.
var DefaultViewport = Viewport{Width: 800, Height: 600, DevicePixelRatio: 1}

// Env is the context needed to compute property values for an element.
// Font sizes are in CSS pixels.
type Env struct {
	FontSize         float64        // computed font size of the element itself
	ParentFontSize   float64        // computed font size of the parent
	RootFontSize     float64        // computed font size of the root element
	ParentFontWeight int            // computed font weight of the parent
	Color            style.Property // computed color of the element, for 'currentcolor'
	ParentColor      style.Property // computed color of the parent
	Viewport         Viewport
}

// Validate checks a specified value for a property. Unknown properties and
// invalid values result in an error. The CSS-wide keywords 'inherit',
// 'initial' and 'unset' are valid for every property.
func Validate(key string, value style.Property) error {
	info, ok := style.Lookup(key)
	if !ok {
		return fmt.Errorf("unknown property %q", key)
	}
	v := value.String()
	if v == "" {
		return fmt.Errorf("empty value for property %q", key)
	}
	if value.IsInherit() || value.IsInitial() || value.IsUnset() || isKeyword(info, v) {
		return nil
	}
	switch info.Syntax {
	case style.SyntaxKeyword:
		return fmt.Errorf("illegal value %q for property %q", v, key)
	case style.SyntaxLength:
		d, err := ParseDimen(v)
		if err != nil {
			return err
		}
		if !(d.IsAbsolute() || d.IsRelative()) {
			return fmt.Errorf("illegal value %q for property %q", v, key)
		}
		if info.NonNegative && (d.Unwrap() < 0 || d.rel < 0) {
			return fmt.Errorf("negative value %q for property %q", v, key)
		}
	case style.SyntaxFontSize:
		if _, ok := fontSizeKeywords[v]; ok || v == "smaller" || v == "larger" {
			return nil
		}
		d, err := ParseDimen(v)
		if err != nil {
			return err
		}
		if !(d.IsAbsolute() || d.IsRelative()) || d.Unwrap() < 0 || d.rel < 0 {
			return fmt.Errorf("illegal font size %q", v)
		}
	case style.SyntaxLineHeight:
		if f, err := parseNumber(v); err == nil {
			if f < 0 {
				return fmt.Errorf("negative line height %q", v)
			}
			return nil
		}
		d, err := ParseDimen(v)
		if err != nil {
			return err
		}
		if !(d.IsAbsolute() || d.IsRelative()) || d.Unwrap() < 0 || d.rel < 0 {
			return fmt.Errorf("illegal line height %q", v)
		}
	case style.SyntaxColor:
		if v == "currentcolor" {
			return nil
		}
		_, err := value.Color()
		return err
	case style.SyntaxNumber:
		f, err := parseNumber(v)
		if err != nil {
			return err
		}
		if f < 0 {
			return fmt.Errorf("negative value %q for property %q", v, key)
		}
	case style.SyntaxInteger:
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("illegal integer %q for property %q", v, key)
		}
	}
	return nil
}

func isKeyword(info style.PropertyInfo, v string) bool {
	for _, kw := range info.Keywords {
		if kw == v {
			return true
		}
	}
	return false
}

// absolute-size keywords for font-size, in CSS pixels
var fontSizeKeywords = map[string]float64{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32, "xxx-large": 48,
}

var borderWidthKeywords = map[string]float64{"thin": 1, "medium": 3, "thick": 5}

// FontSizeFactor is the ratio for font-size keywords 'smaller' and 'larger'.
const FontSizeFactor = 1.2

// Compute converts a valid specified value into its computed value.
// Lengths are converted to canonical pixel values, except for percentages,
// which will be resolved during layout. The CSS-wide keywords must have
// been handled by the caller.
func Compute(key string, value style.Property, env Env) (style.Property, error) {
	info, ok := style.Lookup(key)
	if !ok {
		return style.NullStyle, fmt.Errorf("unknown property %q", key)
	}
	v := value.String()
	switch info.Syntax {
	case style.SyntaxLength:
		if px, ok := borderWidthKeywords[v]; ok && isKeyword(info, v) {
			return style.Property(FormatPixels(PixelsToDU(px))), nil
		}
		if isKeyword(info, v) {
			return value, nil
		}
		d, err := ParseDimen(v)
		if err != nil {
			return style.NullStyle, err
		}
		return computeLength(d, env.FontSize, env), nil
	case style.SyntaxFontSize:
		if px, ok := fontSizeKeywords[v]; ok {
			return pixels(px), nil
		}
		switch v {
		case "smaller":
			return pixels(env.ParentFontSize / FontSizeFactor), nil
		case "larger":
			return pixels(env.ParentFontSize * FontSizeFactor), nil
		}
		d, err := ParseDimen(v)
		if err != nil {
			return style.NullStyle, err
		}
		if d.IsPercent() {
			return pixels(env.ParentFontSize * d.rel / 100), nil
		}
		return computeLength(d, env.ParentFontSize, env), nil
	case style.SyntaxLineHeight:
		if v == "normal" {
			return value, nil
		}
		if f, err := parseNumber(v); err == nil {
			return style.Property(strconv.FormatFloat(f, 'f', -1, 64)), nil
		}
		d, err := ParseDimen(v)
		if err != nil {
			return style.NullStyle, err
		}
		if d.IsPercent() {
			return pixels(env.FontSize * d.rel / 100), nil
		}
		return computeLength(d, env.FontSize, env), nil
	case style.SyntaxColor:
		if v == "currentcolor" {
			if key == "color" {
				return env.ParentColor, nil
			}
			return env.Color, nil
		}
		c, err := value.Color()
		if err != nil {
			return style.NullStyle, err
		}
		return style.Property(style.ColorString(c)), nil
	case style.SyntaxNumber:
		f, err := parseNumber(v)
		if err != nil {
			return style.NullStyle, err
		}
		return style.Property(strconv.FormatFloat(f, 'f', -1, 64)), nil
	case style.SyntaxInteger:
		if isKeyword(info, v) {
			return value, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return style.NullStyle, err
		}
		return style.Property(strconv.Itoa(n)), nil
	case style.SyntaxKeyword:
		if key == "font-weight" {
			return computeFontWeight(v, env.ParentFontWeight), nil
		}
	}
	return value, nil
}

func pixels(px float64) style.Property {
	return style.Property(FormatPixels(PixelsToDU(px)))
}

// computeLength resolves font- and viewport-relative units. em is the
// reference for 'em' units.
func computeLength(d DimenT, em float64, env Env) style.Property {
	var px float64
	switch d.flags & relativeMask {
	case 0:
		return style.Property(d.String())
	case dimenPercent:
		return style.Property(d.String())
	case dimenEM:
		px = d.rel * em
	case dimenEX, dimenCH:
		px = d.rel * em / 2
	case dimenREM:
		px = d.rel * env.RootFontSize
	case dimenVW:
		px = d.rel * env.Viewport.Width / 100
	case dimenVH:
		px = d.rel * env.Viewport.Height / 100
	case dimenVMIN:
		px = d.rel * math.Min(env.Viewport.Width, env.Viewport.Height) / 100
	case dimenVMAX:
		px = d.rel * math.Max(env.Viewport.Width, env.Viewport.Height) / 100
	}
	return pixels(px)
}

func computeFontWeight(v string, parent int) style.Property {
	switch v {
	case "normal":
		return "400"
	case "bold":
		return "700"
	case "bolder":
		switch {
		case parent < 350:
			return "400"
		case parent < 550:
			return "700"
		}
		return "900"
	case "lighter":
		switch {
		case parent < 550:
			return "100"
		case parent < 750:
			return "400"
		}
		return "700"
	}
	return style.Property(v)
}
