package style

import (
	"sort"

	"golang.org/x/net/html"
)

// Syntax describes the kind of values a property accepts.
type Syntax uint8

// Value syntaxes of properties.
const (
	SyntaxKeyword    Syntax = iota // one of the property's keywords
	SyntaxLength                   // length, percentage or keyword
	SyntaxColor                    // color value
	SyntaxNumber                   // non-negative number
	SyntaxInteger                  // integer
	SyntaxFontSize                 // length, percentage or absolute/relative size keyword
	SyntaxLineHeight               // normal, number, length or percentage
	SyntaxAny                      // any non-empty value
)

// PropertyInfo describes a CSS property known to the engine.
type PropertyInfo struct {
	Key         string
	Group       GroupID
	Inherited   bool
	Layout      bool     // a change of the property affects layout
	Initial     Property // computed initial value
	Syntax      Syntax
	Keywords    []string // keywords accepted in addition to Syntax
	NonNegative bool     // negative lengths and numbers are invalid
}

var registry = map[string]PropertyInfo{}

func register(key string, g GroupID, layout bool, initial Property, syntax Syntax, keywords ...string) {
	registry[key] = PropertyInfo{
		Key:       key,
		Group:     g,
		Inherited: g.Inherited(),
		Layout:    layout,
		Initial:   initial,
		Syntax:    syntax,
		Keywords:  keywords,
	}
}

func nonNegative(key string) {
	info := registry[key]
	info.NonNegative = true
	registry[key] = info
}

func init() {
	for _, d := range fourDirs {
		register("margin-"+d, Margins, true, "0px", SyntaxLength, "auto")
		register("padding-"+d, Padding, true, "0px", SyntaxLength)
		nonNegative("padding-" + d)
		register("border-"+d+"-width", Border, true, "0px", SyntaxLength, "thin", "medium", "thick")
		nonNegative("border-" + d + "-width")
		register("border-"+d+"-style", Border, true, "none", SyntaxKeyword,
			"none", "hidden", "dotted", "dashed", "solid", "double", "groove", "ridge", "inset", "outset")
		register("border-"+d+"-color", Border, false, "currentcolor", SyntaxColor)
		register(d, Offsets, true, "auto", SyntaxLength, "auto")
	}
	for _, c := range fourCorners {
		register("border-"+c+"-radius", Border, false, "0px", SyntaxLength)
		nonNegative("border-" + c + "-radius")
	}
	register("width", Dimension, true, "auto", SyntaxLength, "auto", "min-content", "max-content", "fit-content")
	register("height", Dimension, true, "auto", SyntaxLength, "auto", "min-content", "max-content", "fit-content")
	register("min-width", Dimension, true, "auto", SyntaxLength, "auto")
	register("min-height", Dimension, true, "auto", SyntaxLength, "auto")
	register("max-width", Dimension, true, "none", SyntaxLength, "none")
	register("max-height", Dimension, true, "none", SyntaxLength, "none")
	for _, k := range []string{"width", "height", "min-width", "min-height", "max-width", "max-height"} {
		nonNegative(k)
	}
	register("box-sizing", Dimension, true, "content-box", SyntaxKeyword, "content-box", "border-box")
	register("display", Display, true, "inline", SyntaxKeyword, displayKeywords...)
	register("position", Display, true, "static", SyntaxKeyword, "static", "relative", "absolute", "fixed", "sticky")
	register("float", Display, true, "none", SyntaxKeyword, "none", "left", "right")
	register("clear", Display, true, "none", SyntaxKeyword, "none", "left", "right", "both")
	register("overflow", Display, false, "visible", SyntaxKeyword, "visible", "hidden", "scroll", "auto", "clip")
	register("z-index", Display, false, "auto", SyntaxInteger, "auto")
	register("flex-direction", Flex, true, "row", SyntaxKeyword, "row", "row-reverse", "column", "column-reverse")
	register("flex-wrap", Flex, true, "nowrap", SyntaxKeyword, "nowrap", "wrap", "wrap-reverse")
	register("flex-grow", Flex, true, "0", SyntaxNumber)
	register("flex-shrink", Flex, true, "1", SyntaxNumber)
	register("flex-basis", Flex, true, "auto", SyntaxLength, "auto", "content")
	nonNegative("flex-basis")
	register("justify-content", Flex, true, "flex-start", SyntaxKeyword,
		"flex-start", "flex-end", "start", "end", "center", "space-between", "space-around", "space-evenly", "normal")
	register("align-items", Flex, true, "stretch", SyntaxKeyword,
		"stretch", "flex-start", "flex-end", "start", "end", "center", "baseline", "normal")
	register("align-self", Flex, true, "auto", SyntaxKeyword,
		"auto", "stretch", "flex-start", "flex-end", "start", "end", "center", "baseline", "normal")
	register("order", Flex, true, "0", SyntaxInteger)
	register("background-color", Background, false, "#00000000", SyntaxColor)
	register("opacity", Background, false, "1", SyntaxNumber)
	register("font-size", Font, true, "16px", SyntaxFontSize)
	nonNegative("font-size")
	register("font-family", Font, true, "serif", SyntaxAny)
	register("font-weight", Font, true, "400", SyntaxKeyword,
		"normal", "bold", "bolder", "lighter", "100", "200", "300", "400", "500", "600", "700", "800", "900")
	register("font-style", Font, true, "normal", SyntaxKeyword, "normal", "italic", "oblique")
	register("line-height", Font, true, "normal", SyntaxLineHeight, "normal")
	nonNegative("line-height")
	register("color", Text, false, "#000000", SyntaxColor)
	register("text-align", Text, true, "start", SyntaxKeyword, "start", "end", "left", "right", "center", "justify")
	register("text-indent", Text, true, "0px", SyntaxLength)
	register("white-space", Text, true, "normal", SyntaxKeyword, "normal", "nowrap", "pre", "pre-wrap", "pre-line")
	register("direction", Text, true, "ltr", SyntaxKeyword, "ltr", "rtl")
	register("visibility", Text, false, "visible", SyntaxKeyword, "visible", "hidden", "collapse")
	register("letter-spacing", Text, true, "normal", SyntaxLength, "normal")
	register("word-spacing", Text, true, "normal", SyntaxLength, "normal")
	register("list-style-type", Text, false, "disc", SyntaxAny)
	initialStyle = buildInitialStyle()
}

var displayKeywords = []string{
	"none", "contents", "block", "inline", "inline-block", "flow-root", "list-item",
	"flex", "inline-flex", "grid", "inline-grid", "table", "inline-table",
	"table-row-group", "table-header-group", "table-footer-group", "table-row",
	"table-cell", "table-column", "table-column-group", "table-caption",
}

// Lookup returns the description of a property.
func Lookup(key string) (PropertyInfo, bool) {
	info, ok := registry[key]
	return info, ok
}

// Keys returns the keys of all known properties, sorted.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GroupOf returns the property group of a property. The second return
// value is false for unknown properties.
func GroupOf(key string) (GroupID, bool) {
	info, ok := registry[key]
	return info.Group, ok
}

// IsCascading returns wether the standard behaviour for a propery is to be
// inherited or not, i.e., a call to retrieve its value will cascade.
func IsCascading(key string) bool {
	return registry[key].Inherited
}

// AffectsLayout returns wether a change of a property's value requires
// re-layout. Unknown properties never affect layout.
func AffectsLayout(key string) bool {
	return registry[key].Layout
}

// --- Initial style --------------------------------------------------------

var initialStyle *ComputedStyle

// InitialStyle returns the style with every property set to its initial
// value. The returned style is shared and must not be modified.
func InitialStyle() *ComputedStyle {
	return initialStyle
}

func buildInitialStyle() *ComputedStyle {
	s := &ComputedStyle{}
	for g := GroupID(0); g < NumGroups; g++ {
		s.groups[g] = NewPropertyGroup(g)
	}
	for k, info := range registry {
		s.groups[info.Group].set(k, info.Initial)
	}
	return s
}

// --- User agent defaults --------------------------------------------------

// DisplayDefaults maps HTML element names to their user-agent `display`
// value. Elements not listed are inline.
var DisplayDefaults = map[string]string{
	"head": "none", "script": "none", "style": "none", "title": "none",
	"meta": "none", "link": "none", "template": "none", "noscript": "none",
	"html": "block", "body": "block", "address": "block", "article": "block",
	"aside": "block", "blockquote": "block", "details": "block", "dialog": "block",
	"dd": "block", "div": "block", "dl": "block", "dt": "block", "fieldset": "block",
	"figcaption": "block", "figure": "block", "footer": "block", "form": "block",
	"h1": "block", "h2": "block", "h3": "block", "h4": "block", "h5": "block",
	"h6": "block", "header": "block", "hgroup": "block", "hr": "block", "main": "block",
	"menu": "block", "nav": "block", "ol": "block", "p": "block", "pre": "block",
	"section": "block", "summary": "block", "ul": "block", "center": "block",
	"li":    "list-item",
	"table": "table", "caption": "table-caption", "colgroup": "table-column-group",
	"col": "table-column", "thead": "table-header-group", "tbody": "table-row-group",
	"tfoot": "table-footer-group", "tr": "table-row", "td": "table-cell", "th": "table-cell",
	"img": "inline", "video": "inline", "canvas": "inline", "iframe": "inline",
	"button": "inline-block", "input": "inline-block", "select": "inline-block",
	"textarea": "inline-block",
}

// DisplayPropertyForHTMLNode returns the default `display` CSS property for an HTML node.
func DisplayPropertyForHTMLNode(node *html.Node) Property {
	if node == nil {
		return "none"
	}
	if node.Type == html.DocumentNode {
		return "block"
	}
	if node.Type != html.ElementNode {
		tracer().Debugf("cannot get display-property for non-element")
		return "none"
	}
	if d, ok := DisplayDefaults[node.Data]; ok {
		return Property(d)
	}
	return "inline"
}
