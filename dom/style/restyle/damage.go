/*
Package restyle classifies style changes between two passes.

After an element's style has been recomputed, the old and the new computed
style are compared. The result is a Damage value, telling later phases how
much work the change causes: nothing, repainting, relayout of the element's
subtree, relayout including the ancestors (whose intrinsic sizes may
depend on the element) or a reconstruction of the element's boxes.

Which properties cause which damage is configuration data; see Sets.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package restyle

import (
	"strings"

	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'layoutcore.style'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.style")
}

// Damage is a set of consequences of a style change.
type Damage uint8

// Damage flags.
const (
	Repaint         Damage = 1 << iota // paint properties changed
	ReflowSubtree                      // the element's subtree has to be laid out again
	ReflowAncestors                    // intrinsic sizes of the ancestors are affected
	Reconstruct                        // boxes of the element have to be rebuilt
)

// Level is the single classification of a damage value.
type Level uint8

// Damage levels, in increasing order of cost.
const (
	LevelSkip Level = iota
	LevelRepaint
	LevelReflowSubtree
	LevelReflowAncestors
	LevelReconstruct
)

var levelNames = [...]string{"skip", "repaint-only", "reflow-subtree", "reflow-ancestors", "reconstruct"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "?"
}

// Level returns the classification of the most expensive flag of d.
func (d Damage) Level() Level {
	switch {
	case d&Reconstruct != 0:
		return LevelReconstruct
	case d&ReflowAncestors != 0:
		return LevelReflowAncestors
	case d&ReflowSubtree != 0:
		return LevelReflowSubtree
	case d&Repaint != 0:
		return LevelRepaint
	}
	return LevelSkip
}

// NeedsLayout is true if d requires any kind of relayout.
func (d Damage) NeedsLayout() bool {
	return d&(ReflowSubtree|ReflowAncestors|Reconstruct) != 0
}

func (d Damage) String() string {
	if d == 0 {
		return "none"
	}
	var flags []string
	for i, name := range []string{"repaint", "reflow-subtree", "reflow-ancestors", "reconstruct"} {
		if d&(1<<i) != 0 {
			flags = append(flags, name)
		}
	}
	return strings.Join(flags, "|")
}

// Sets configures which property changes cause which damage. A layout
// property not listed in any set causes ReflowSubtree; all other
// properties cause Repaint.
type Sets struct {
	ReflowAncestors []string
	ReflowSubtree   []string
	Reconstruct     []string
}

// DefaultSets returns the sets used if nothing is configured. Properties
// taking part in intrinsic size computation reflow the ancestors.
func DefaultSets() Sets {
	s := Sets{
		Reconstruct: []string{"display", "position", "float", "white-space"},
		ReflowSubtree: []string{"top", "right", "bottom", "left", "text-align",
			"justify-content", "align-items", "align-self", "direction", "clear"},
	}
	for _, d := range []string{"top", "right", "bottom", "left"} {
		s.ReflowAncestors = append(s.ReflowAncestors,
			"margin-"+d, "padding-"+d, "border-"+d+"-width", "border-"+d+"-style")
	}
	s.ReflowAncestors = append(s.ReflowAncestors,
		"width", "height", "min-width", "min-height", "max-width", "max-height", "box-sizing",
		"font-size", "font-family", "font-weight", "font-style", "line-height",
		"letter-spacing", "word-spacing", "text-indent",
		"flex-basis", "flex-grow", "flex-shrink", "flex-direction", "flex-wrap", "order")
	return s
}

// Classifier compares computed styles. A Classifier is immutable and safe
// for concurrent use.
type Classifier struct {
	damage map[string]Damage
}

// NewClassifier creates a classifier from property sets. Property names
// unknown to the style registry are ignored.
func NewClassifier(sets Sets) *Classifier {
	c := &Classifier{damage: make(map[string]Damage)}
	for _, key := range style.Keys() {
		if style.AffectsLayout(key) {
			c.damage[key] = ReflowSubtree
		} else {
			c.damage[key] = Repaint
		}
	}
	set := func(keys []string, d Damage) {
		for _, k := range keys {
			k = strings.ToLower(strings.TrimSpace(k))
			if _, ok := style.Lookup(k); !ok {
				tracer().Infof("damage classifier: unknown property %q", k)
				continue
			}
			c.damage[k] = d
		}
	}
	set(sets.ReflowSubtree, ReflowSubtree)
	set(sets.ReflowAncestors, ReflowSubtree|ReflowAncestors)
	set(sets.Reconstruct, Reconstruct|ReflowSubtree|ReflowAncestors)
	return c
}

// DamageOf returns the damage a change of a single property causes.
func (c *Classifier) DamageOf(key string) Damage {
	return c.damage[key]
}

// Classify compares the style of an element from the previous pass with
// its new style. An element without a previous style has to be
// constructed.
func (c *Classifier) Classify(old, new *style.ComputedStyle) Damage {
	if old == nil {
		return Reconstruct | ReflowSubtree | ReflowAncestors
	}
	if old == new {
		return 0
	}
	var d Damage
	for _, key := range old.Differences(new) {
		d |= c.damage[key]
	}
	return d
}
