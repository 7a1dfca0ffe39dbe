package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color interprets a property as a CSS color value. Supported are
// the CSS named colors, "transparent", hex notation (#rgb, #rgba, #rrggbb,
// #rrggbbaa) and the functional notations rgb() and rgba().
// "currentcolor" must be resolved by the caller.
func (p Property) Color() (color.RGBA, error) {
	s := strings.ToLower(strings.TrimSpace(string(p)))
	switch {
	case s == "transparent":
		return color.RGBA{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGBFunction(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("not a color value: %q", s)
}

// ColorString returns the canonical computed form of a color: #rrggbb for
// opaque colors, #rrggbbaa otherwise.
func ColorString(c color.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func parseHexColor(h string) (color.RGBA, error) {
	hexval := func(s string) (uint8, error) {
		v, err := strconv.ParseUint(s, 16, 8)
		return uint8(v), err
	}
	var parts []string
	switch len(h) {
	case 3, 4:
		for _, c := range h {
			parts = append(parts, string(c)+string(c))
		}
	case 6, 8:
		for i := 0; i < len(h); i += 2 {
			parts = append(parts, h[i:i+2])
		}
	default:
		return color.RGBA{}, fmt.Errorf("illegal hex color #%s", h)
	}
	c := color.RGBA{A: 0xff}
	for i, part := range parts {
		v, err := hexval(part)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("illegal hex color #%s", h)
		}
		switch i {
		case 0:
			c.R = v
		case 1:
			c.G = v
		case 2:
			c.B = v
		case 3:
			c.A = v
		}
	}
	return c, nil
}

func parseRGBFunction(s string) (color.RGBA, error) {
	lp, rp := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if rp < lp {
		return color.RGBA{}, fmt.Errorf("illegal color function %q", s)
	}
	args := strings.FieldsFunc(s[lp+1:rp], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(args) != 3 && len(args) != 4 {
		return color.RGBA{}, fmt.Errorf("illegal color function %q", s)
	}
	var v [4]float64
	v[3] = 1
	for i, a := range args {
		pct := strings.HasSuffix(a, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
		if err != nil || f != f {
			return color.RGBA{}, fmt.Errorf("illegal color component %q", a)
		}
		switch {
		case pct && i < 3:
			f = f * 255 / 100
		case pct:
			f = f / 100
		}
		v[i] = f
	}
	ch := func(f, max float64) uint8 {
		if f < 0 {
			f = 0
		} else if f > max {
			f = max
		}
		return uint8(f*255/max + 0.5)
	}
	return color.RGBA{R: ch(v[0], 255), G: ch(v[1], 255), B: ch(v[2], 255), A: ch(v[3], 1)}, nil
}
