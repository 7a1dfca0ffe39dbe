package style

import (
	"sort"
	"strings"
)

// ComputedStyle is the immutable, fully resolved set of property values
// for one DOM node. Every known property has a value.
//
// Styles are shared by pointer. Clients must never modify a style after
// it has been built.
type ComputedStyle struct {
	groups [NumGroups]*PropertyGroup
}

// Get returns the value of a property. For unknown properties NullStyle is
// returned.
func (s *ComputedStyle) Get(key string) Property {
	if s == nil {
		s = initialStyle
	}
	info, ok := registry[key]
	if !ok {
		return NullStyle
	}
	p, _ := s.groups[info.Group].Get(key)
	return p
}

// Group returns a property group of the style.
func (s *ComputedStyle) Group(g GroupID) *PropertyGroup {
	if s == nil || g >= NumGroups {
		return nil
	}
	return s.groups[g]
}

// SharesGroup is true if s and other share property group g verbatim.
func (s *ComputedStyle) SharesGroup(other *ComputedStyle, g GroupID) bool {
	return s != nil && other != nil && s.groups[g] == other.groups[g]
}

// Equal compares two styles property by property.
func (s *ComputedStyle) Equal(other *ComputedStyle) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	for g := range s.groups {
		if !s.groups[g].Equal(other.groups[g]) {
			return false
		}
	}
	return true
}

// Differences returns the keys of all properties with different values in
// s and other, sorted. A nil style is different in every property.
func (s *ComputedStyle) Differences(other *ComputedStyle) []string {
	if s == other {
		return nil
	}
	if s == nil || other == nil {
		return Keys()
	}
	var diff []string
	for g := range s.groups {
		a, b := s.groups[g], other.groups[g]
		if a == b {
			continue
		}
		for k, v := range a.propsDict {
			if w, _ := b.Get(k); v != w {
				diff = append(diff, k)
			}
		}
	}
	sort.Strings(diff)
	return diff
}

// Properties returns all properties of a style, sorted by key.
func (s *ComputedStyle) Properties() []KeyValue {
	var r []KeyValue
	for _, g := range s.groups {
		r = append(r, g.Properties()...)
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Key < r[j].Key })
	return r
}

// String lists all properties which differ from their initial values.
func (s *ComputedStyle) String() string {
	if s == nil {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{")
	first := true
	for _, kv := range s.Properties() {
		if kv.Value == initialStyle.Get(kv.Key) {
			continue
		}
		if !first {
			b.WriteString("; ")
		}
		first = false
		b.WriteString(kv.String())
	}
	b.WriteString("}")
	return b.String()
}

// --- Builder ---------------------------------------------------------------

// Builder creates a computed style. It starts from the inherited groups of
// a parent style and the non-inherited groups of the initial style. Groups
// are copied only when a property value of the group differs from the
// value already present.
type Builder struct {
	style *ComputedStyle
	owned [NumGroups]bool
	done  bool
}

// NewBuilder creates a builder for a style with a given parent style.
// parent may be nil for the root element.
func NewBuilder(parent *ComputedStyle) *Builder {
	if parent == nil {
		parent = initialStyle
	}
	s := &ComputedStyle{}
	for g := GroupID(0); g < NumGroups; g++ {
		if g.Inherited() {
			s.groups[g] = parent.groups[g]
		} else {
			s.groups[g] = initialStyle.groups[g]
		}
	}
	return &Builder{style: s}
}

// Get returns the value a property currently has in the style under
// construction.
func (b *Builder) Get(key string) Property {
	return b.style.Get(key)
}

// Set sets a (computed) property value. Unknown properties are ignored.
func (b *Builder) Set(key string, value Property) {
	if b.done {
		panic("style builder: Set called after Build")
	}
	info, ok := registry[key]
	if !ok {
		tracer().Debugf("style builder: ignoring unknown property %s", key)
		return
	}
	pg := b.style.groups[info.Group]
	value = Property(strings.ToLower(string(value)))
	if old, _ := pg.Get(key); old == value {
		return
	}
	if !b.owned[info.Group] {
		pg = pg.fork()
		b.style.groups[info.Group] = pg
		b.owned[info.Group] = true
	}
	pg.set(key, value)
}

// Build returns the computed style. The builder must not be used
// afterwards.
func (b *Builder) Build() *ComputedStyle {
	b.done = true
	return b.style
}
