/*
Package cascade resolves the computed style of an element.

The cascade combines the declarations of all rules matching an element with
the declarations of its style attribute. Declarations are ordered by
cascade layer, then by specificity, then by rule order, then by position
within their block; the last declaration for a property wins. Layers, from
lowest to highest precedence:

    user-agent normal
    user normal
    author normal
    inline normal
    author !important
    inline !important
    user !important
    user-agent !important

Properties without a winning declaration inherit the parent's computed
value (inherited properties) or take their initial value.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cascade

import (
	"sort"

	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
	"github.com/npillmayer/layoutcore/dom/style/selector"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'layoutcore.style'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.style")
}

// Layer is a cascade layer. Higher layers win.
type Layer uint8

// Cascade layers, lowest precedence first.
const (
	UserAgentNormal Layer = iota
	UserNormal
	AuthorNormal
	InlineNormal
	AuthorImportant
	InlineImportant
	UserImportant
	UserAgentImportant
	numLayers
)

// LayerOf returns the cascade layer of a declaration from a style sheet.
func LayerOf(origin cssom.Origin, important bool) Layer {
	switch origin {
	case cssom.UserAgent:
		if important {
			return UserAgentImportant
		}
		return UserAgentNormal
	case cssom.User:
		if important {
			return UserImportant
		}
		return UserNormal
	}
	if important {
		return AuthorImportant
	}
	return AuthorNormal
}

func inlineLayer(important bool) Layer {
	if important {
		return InlineImportant
	}
	return InlineNormal
}

// Context is what the cascade needs to know about an element's
// surroundings.
type Context struct {
	Parent   *style.ComputedStyle // computed style of the parent, nil for the root
	Root     *style.ComputedStyle // computed style of the root element, nil for the root
	Viewport css.Viewport
}

// IsRoot is true if the context describes the root element.
func (ctx Context) IsRoot() bool {
	return ctx.Parent == nil
}

// Winners determines the winning specified value for every property.
// matches must be in the order returned by selector.Index.Match.
func Winners(matches []*selector.Rule, inline []cssom.Declaration) map[string]cssom.Declaration {
	winners := make(map[string]cssom.Declaration)
	for layer := Layer(0); layer < numLayers; layer++ {
		for _, r := range matches {
			for _, d := range r.Block.Declarations {
				if LayerOf(r.Origin, d.Important) == layer {
					winners[d.Key] = d
				}
			}
		}
		for _, d := range inline {
			if inlineLayer(d.Important) == layer {
				winners[d.Key] = d
			}
		}
	}
	return winners
}

// the properties other properties depend on during computation
var computeFirst = []string{"font-size", "font-weight", "color"}

// Resolve computes the style of an element. The parent style in ctx must
// be complete. inline holds the expanded and validated declarations of the
// element's style attribute.
func Resolve(matches []*selector.Rule, inline []cssom.Declaration, ctx Context) *style.ComputedStyle {
	winners := Winners(matches, inline)
	b := style.NewBuilder(ctx.Parent)
	parent := ctx.Parent
	if parent == nil {
		parent = style.InitialStyle()
	}
	env := css.Env{
		ParentFontSize:   pixelsOf(parent, "font-size"),
		ParentFontWeight: css.FontWeight(parent),
		ParentColor:      parent.Get("color"),
		Viewport:         ctx.Viewport,
	}
	// rem in the root's own font-size refers to the initial font size
	env.RootFontSize = env.ParentFontSize
	if ctx.Root != nil {
		env.RootFontSize = pixelsOf(ctx.Root, "font-size")
	}
	// font-size must be known before any em unit can be computed
	for _, key := range computeFirst {
		if d, ok := winners[key]; ok {
			apply(b, key, d.Value, parent, env)
			delete(winners, key)
		}
	}
	env.FontSize = pixelsOf(b, "font-size")
	env.Color = b.Get("color")
	if ctx.Root == nil {
		env.RootFontSize = env.FontSize
	}
	keys := make([]string, 0, len(winners))
	for k := range winners {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		apply(b, key, winners[key].Value, parent, env)
	}
	fixup(b, ctx)
	return b.Build()
}

func apply(b *style.Builder, key string, value style.Property, parent *style.ComputedStyle, env css.Env) {
	info, ok := style.Lookup(key)
	if !ok {
		return
	}
	switch {
	case value.IsInherit():
		b.Set(key, parent.Get(key))
	case value.IsInitial():
		b.Set(key, info.Initial)
	case value.IsUnset():
		if info.Inherited {
			b.Set(key, parent.Get(key))
		} else {
			b.Set(key, info.Initial)
		}
	default:
		v, err := css.Compute(key, value, env)
		if err != nil {
			tracer().Debugf("cannot compute %s: %s: %v", key, value, err)
			return
		}
		b.Set(key, v)
	}
}

var borderSides = [4]string{"top", "right", "bottom", "left"}

func fixup(b *style.Builder, ctx Context) {
	for _, side := range borderSides {
		bs := b.Get("border-" + side + "-style")
		if bs == "none" || bs == "hidden" {
			b.Set("border-"+side+"-width", "0px")
		}
	}
	pos := b.Get("position")
	outOfFlow := pos == "absolute" || pos == "fixed"
	if outOfFlow {
		b.Set("float", "none")
	}
	blockify := outOfFlow || ctx.IsRoot()
	if f := b.Get("float"); f == "left" || f == "right" {
		blockify = true
	}
	if ctx.Parent != nil && css.Display(ctx.Parent).Contains(css.FlexMode) {
		blockify = true // flex items
	}
	if blockify {
		d := b.Get("display").String()
		b.Set("display", style.Property(css.Blockify(d)))
	}
}

type getter interface {
	Get(string) style.Property
}

func pixelsOf(s getter, key string) float64 {
	return css.DUToPixels(css.ParseComputed(s.Get(key).String()).Unwrap())
}
