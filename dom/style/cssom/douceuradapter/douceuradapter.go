/*
Package douceuradapter is a concrete implementation of interface cssom.StyleSheet.

It wraps style sheets parsed by github.com/aymerick/douceur. Besides the
adapter types the package offers parsing of style sheets and of style
attributes, the extraction of <style> elements from an HTML parse tree and
the built-in user-agent style sheet.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package douceuradapter

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tracer traces with key 'layoutcore.style'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.style")
}

// CSSStyles is an adapter for interface cssom.StyleSheet.
// For an explanation of the motivation behind this design, please refer
// to documentation for interface cssom.StyleSheet.
type CSSStyles struct {
	css css.Stylesheet
}

// Wrap a douceur.css.Stylesheet into CssStyles.
// The stylesheet is now managed by the wrapper.
func Wrap(css *css.Stylesheet) *CSSStyles {
	sheet := &CSSStyles{*css}
	return sheet
}

// Parse parses a style sheet.
func Parse(text string) (*CSSStyles, error) {
	c, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("cannot parse style sheet: %w", err)
	}
	return Wrap(c), nil
}

// MustParse is like Parse, but panics on errors. It is intended for
// style sheets given as literals.
func MustParse(text string) *CSSStyles {
	sheet, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return sheet
}

// ParseDeclarations parses the content of a style attribute,
// e.g. "margin: 0; color: red !important".
func ParseDeclarations(text string) ([]cssom.Declaration, error) {
	decls, err := parser.ParseDeclarations(text)
	if err != nil {
		return nil, fmt.Errorf("cannot parse declarations: %w", err)
	}
	return convert(decls), nil
}

func convert(decls []*css.Declaration) []cssom.Declaration {
	r := make([]cssom.Declaration, 0, len(decls))
	for _, d := range decls {
		r = append(r, cssom.Declaration{
			Key:       strings.ToLower(strings.TrimSpace(d.Property)),
			Value:     style.Property(strings.TrimSpace(d.Value)),
			Important: d.Important,
		})
	}
	return r
}

// Empty checks if this stylesheet contains any rules.
//
// Interface cssom.StyleSheet
func (sheet *CSSStyles) Empty() bool {
	return len(sheet.css.Rules) == 0
}

// AppendRules appends rules from another stylesheet.
//
// Interface cssom.StyleSheet
func (sheet *CSSStyles) AppendRules(other cssom.StyleSheet) {
	if othercss, ok := other.(*CSSStyles); ok {
		sheet.css.Rules = append(sheet.css.Rules, othercss.css.Rules...)
		return
	}
	tracer().Errorf("cannot append rules from style sheet of type %T", other)
}

// Rules returns all the qualified rules of a stylesheet. At-rules
// (@media, @font-face, …) are not supported and skipped.
//
// Interface style.StyleSheet
func (sheet *CSSStyles) Rules() []cssom.Rule {
	rules := make([]cssom.Rule, 0, len(sheet.css.Rules))
	for _, r := range sheet.css.Rules {
		if r.Kind != css.QualifiedRule {
			tracer().Infof("skipping unsupported at-rule %s", r.Name)
			continue
		}
		rules = append(rules, Rule{*r})
	}
	return rules
}

func (sheet *CSSStyles) String() string {
	return sheet.css.String()
}

var _ cssom.StyleSheet = &CSSStyles{}

// Rule is an adapter for interface cssom.Rule.
type Rule struct {
	css.Rule
}

// Selector returns the prelude / selectors of the rule.
func (r Rule) Selector() string {
	return r.Prelude
}

// Properties returns the property keys of a rule,
// e.g. "margin-top"
func (r Rule) Properties() []string {
	decl := r.Rule.Declarations
	props := make([]string, 0, len(decl))
	for _, d := range decl {
		props = append(props, d.Property)
	}
	return props
}

// Value returns the property values for given key with this rule, e.g. "15px".
// If a property is declared more than once, the last declaration counts.
func (r Rule) Value(key string) style.Property {
	decl := r.Rule.Declarations
	for i := len(decl) - 1; i >= 0; i-- {
		if decl[i].Property == key {
			return style.Property(decl[i].Value)
		}
	}
	return ""
}

// IsImportant returns true if a style key is marked as important ("!").
func (r Rule) IsImportant(key string) bool {
	decl := r.Rule.Declarations
	for i := len(decl) - 1; i >= 0; i-- {
		if decl[i].Property == key {
			return decl[i].Important
		}
	}
	return false
}

// Declarations returns all declarations of a rule in source order.
func (r Rule) Declarations() []cssom.Declaration {
	return convert(r.Rule.Declarations)
}

var _ cssom.Rule = &Rule{}

// ExtractStyleElements visits <head> and <body> elements in an HTML parse
// tree and searches for embedded <style>s. It returns the content of
// style-elements as style sheets. Style elements which fail to parse are
// skipped.
func ExtractStyleElements(htmldoc *html.Node) []*CSSStyles {
	head := findElement(atom.Head, htmldoc)
	body := findElement(atom.Body, htmldoc)
	css := extractStyles(head)
	css = append(css, extractStyles(body)...)
	return css
}

func extractStyles(h *html.Node) []*CSSStyles {
	if h == nil {
		return nil
	}
	var css []*CSSStyles
	for ch := h.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.DataAtom != atom.Style || ch.FirstChild == nil {
			continue
		}
		c, err := Parse(ch.FirstChild.Data)
		if err != nil {
			tracer().Errorf("%v", err)
			continue
		}
		css = append(css, c)
	}
	return css
}

func findElement(a atom.Atom, h *html.Node) *html.Node {
	if h == nil {
		return nil
	}
	if h.DataAtom == a {
		return h
	}
	ch := h.FirstChild
	for ch != nil {
		r := findElement(a, ch)
		if r != nil && r.DataAtom == a {
			return r
		}
		ch = ch.NextSibling
	}
	return nil
}

// --- User agent style sheet -----------------------------------------------

//go:embed useragent.css
var userAgentCSS string

// UserAgentSheet returns the built-in user-agent style sheet: the default
// display values of HTML elements and a small set of presentational rules.
func UserAgentSheet() *CSSStyles {
	return MustParse(UserAgentCSS())
}

// UserAgentCSS returns the text of the user-agent style sheet.
func UserAgentCSS() string {
	byDisplay := make(map[string][]string)
	for tag, d := range style.DisplayDefaults {
		if d != "inline" {
			byDisplay[d] = append(byDisplay[d], tag)
		}
	}
	displays := make([]string, 0, len(byDisplay))
	for d := range byDisplay {
		displays = append(displays, d)
	}
	sort.Strings(displays)
	var b strings.Builder
	for _, d := range displays {
		tags := byDisplay[d]
		sort.Strings(tags)
		fmt.Fprintf(&b, "%s { display: %s }\n", strings.Join(tags, ", "), d)
	}
	b.WriteString(userAgentCSS)
	return b.String()
}
