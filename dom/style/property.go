package style

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"sort"
	"strings"
)

// Property is a raw value for a CSS property. For example, with
//
//     color: black
//
// a property value of "black" is set. The main purpose of wrapping
// the raw string value into type Property is to provide a set of
// convenient type conversion functions and other helpers.
type Property string

// NullStyle is an empty property value.
const NullStyle Property = ""

func (p Property) String() string {
	return string(p)
}

// IsInitial denotes if a property is of inheritence-type "initial"
func (p Property) IsInitial() bool {
	return p == "initial"
}

// IsInherit denotes if a property is of inheritence-type "inherit"
func (p Property) IsInherit() bool {
	return p == "inherit"
}

// IsUnset denotes if a property is of inheritence-type "unset"
func (p Property) IsUnset() bool {
	return p == "unset"
}

// IsEmpty checks wether a property is empty, i.e. the null-string.
func (p Property) IsEmpty() bool {
	return p == ""
}

// KeyValue is a container for a style property.
type KeyValue struct {
	Key   string
	Value Property
}

func (kv KeyValue) String() string {
	return kv.Key + ": " + kv.Value.String()
}

// --- CSS Property Groups ----------------------------------------------

// GroupID identifies a property group.
type GroupID uint8

// Property groups. Font and Text are inherited, all others are not.
const (
	Margins GroupID = iota
	Padding
	Border
	Dimension
	Display
	Offsets
	Flex
	Background
	Font
	Text
	NumGroups // number of property groups
)

var groupNames = [NumGroups]string{
	"Margins", "Padding", "Border", "Dimension", "Display", "Offsets",
	"Flex", "Background", "Font", "Text",
}

func (g GroupID) String() string {
	if g < NumGroups {
		return groupNames[g]
	}
	return "X"
}

// Inherited is true for groups of inherited properties.
func (g GroupID) Inherited() bool {
	return g == Font || g == Text
}

// PropertyGroup is a collection of propertes sharing a common topic.
// A property group is immutable once it is part of a computed style.
// Clients wanting to change a property fork the group (see Builder).
type PropertyGroup struct {
	id        GroupID
	propsDict map[string]Property
}

// NewPropertyGroup creates a new empty property group.
func NewPropertyGroup(id GroupID) *PropertyGroup {
	return &PropertyGroup{id: id, propsDict: make(map[string]Property)}
}

// ID returns the group identifier.
func (pg *PropertyGroup) ID() GroupID {
	return pg.id
}

// Name returns the name of the property group.
func (pg *PropertyGroup) Name() string {
	return pg.id.String()
}

// Stringer for property groups; used for debugging.
func (pg *PropertyGroup) String() string {
	var b strings.Builder
	b.WriteString("[" + pg.Name() + "] =\n")
	for _, kv := range pg.Properties() {
		fmt.Fprintf(&b, "  %s = %s\n", kv.Key, kv.Value)
	}
	return b.String()
}

// Properties returns all properties of a group, sorted by key.
func (pg *PropertyGroup) Properties() []KeyValue {
	r := make([]KeyValue, 0, len(pg.propsDict))
	for k, v := range pg.propsDict {
		r = append(r, KeyValue{k, v})
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Key < r[j].Key })
	return r
}

// IsSet is a predicated wether a property is set within this group.
func (pg *PropertyGroup) IsSet(key string) bool {
	if pg == nil {
		return false
	}
	v, ok := pg.propsDict[key]
	return ok && !v.IsEmpty()
}

// Get a property's value.
func (pg *PropertyGroup) Get(key string) (Property, bool) {
	if pg == nil {
		return NullStyle, false
	}
	p, ok := pg.propsDict[key]
	return p, ok
}

// set a property's value. Must only be called on groups not yet shared.
//
// Style property values are always converted to lower case.
func (pg *PropertyGroup) set(key string, p Property) {
	pg.propsDict[key] = Property(strings.ToLower(string(p)))
}

// fork creates a private copy of a group.
func (pg *PropertyGroup) fork() *PropertyGroup {
	npg := &PropertyGroup{id: pg.id, propsDict: make(map[string]Property, len(pg.propsDict))}
	for k, v := range pg.propsDict {
		npg.propsDict[k] = v
	}
	return npg
}

// Equal compares two groups property by property.
func (pg *PropertyGroup) Equal(other *PropertyGroup) bool {
	if pg == other {
		return true
	}
	if pg == nil || other == nil || len(pg.propsDict) != len(other.propsDict) {
		return false
	}
	for k, v := range pg.propsDict {
		if w, ok := other.propsDict[k]; !ok || v != w {
			return false
		}
	}
	return true
}

// --- Compound properties ---------------------------------------------------

// SplitCompoundProperty splits up a shortcut property into its individual
// components. Returns a slice of key-value pairs representing the
// individual (fine grained) style properties.
// Example:
//    SplitCompountProperty("padding", "3px")
// will return
//    "padding-top"    => "3px"
//    "padding-right"  => "3px"
//    "padding-bottom" => "3px"
//    "padding-left  " => "3px"
// For the logic behind this, refer to e.g.
// https://www.w3schools.com/css/css_padding.asp .
func SplitCompoundProperty(key string, value Property) ([]KeyValue, error) {
	fields := splitFields(value.String())
	if len(fields) == 1 && isGlobalKeyword(fields[0]) {
		return expandGlobal(key, Property(fields[0]))
	}
	switch key {
	case "margin":
		return feazeCompound4("margin", "", fourDirs, fields)
	case "padding":
		return feazeCompound4("padding", "", fourDirs, fields)
	case "inset":
		return feazeCompound4("", "", fourDirs, fields)
	case "border-color":
		return feazeCompound4("border", "color", fourDirs, fields)
	case "border-width":
		return feazeCompound4("border", "width", fourDirs, fields)
	case "border-style":
		return feazeCompound4("border", "style", fourDirs, fields)
	case "border-radius":
		return feazeCompound4("border", "radius", fourCorners, fields)
	case "border":
		var r []KeyValue
		for _, dir := range fourDirs {
			side, err := splitBorderSide("border-"+dir, fields)
			if err != nil {
				return nil, err
			}
			r = append(r, side...)
		}
		return r, nil
	case "border-top", "border-right", "border-bottom", "border-left":
		return splitBorderSide(key, fields)
	case "flex":
		return splitFlex(fields)
	case "flex-flow":
		return splitFlexFlow(fields)
	case "background":
		if len(fields) == 1 {
			return []KeyValue{{"background-color", Property(fields[0])}}, nil
		}
		return nil, fmt.Errorf("background: only a single color value is supported")
	}
	return nil, fmt.Errorf("not recognized as compound property: %s", key)
}

// IsCompound is true for shortcut properties known to SplitCompoundProperty.
func IsCompound(key string) bool {
	switch key {
	case "margin", "padding", "inset", "border-color", "border-width", "border-style",
		"border-radius", "border", "border-top", "border-right", "border-bottom",
		"border-left", "flex", "flex-flow", "background":
		return true
	}
	return false
}

// CSS logic to distribute individual values from compound shortcuts is as
// follows: https://www.w3schools.com/css/css_border.asp
func feazeCompound4(pre string, suf string, dirs [4]string, fields []string) ([]KeyValue, error) {
	l := len(fields)
	if l == 0 || l > 4 {
		return nil, fmt.Errorf("expecting 1-4 values for %s-%s", pre, suf)
	}
	r := make([]KeyValue, 4)
	r[0] = KeyValue{p(pre, suf, dirs[0]), Property(fields[0])}
	if l >= 2 {
		r[1] = KeyValue{p(pre, suf, dirs[1]), Property(fields[1])}
		if l >= 3 {
			r[2] = KeyValue{p(pre, suf, dirs[2]), Property(fields[2])}
			if l == 4 {
				r[3] = KeyValue{p(pre, suf, dirs[3]), Property(fields[3])}
			} else {
				r[3] = KeyValue{p(pre, suf, dirs[3]), Property(fields[1])}
			}
		} else {
			r[2] = KeyValue{p(pre, suf, dirs[2]), Property(fields[0])}
			r[3] = KeyValue{p(pre, suf, dirs[3]), Property(fields[1])}
		}
	} else {
		r[1] = KeyValue{p(pre, suf, dirs[1]), Property(fields[0])}
		r[2] = KeyValue{p(pre, suf, dirs[2]), Property(fields[0])}
		r[3] = KeyValue{p(pre, suf, dirs[3]), Property(fields[0])}
	}
	return r, nil
}

var fourDirs = [4]string{"top", "right", "bottom", "left"}
var fourCorners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

func p(prefix string, suffix string, tag string) string {
	if prefix == "" && suffix == "" {
		return tag
	}
	if suffix == "" {
		return prefix + "-" + tag
	}
	if prefix == "" {
		return tag + "-" + suffix
	}
	return prefix + "-" + tag + "-" + suffix
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// splitBorderSide distributes "border-top: 1px solid red" to width, style
// and color, in any order. Omitted components are reset to their initial
// values.
func splitBorderSide(side string, fields []string) ([]KeyValue, error) {
	if len(fields) == 0 || len(fields) > 3 {
		return nil, fmt.Errorf("expecting 1-3 values for %s", side)
	}
	width, style, color := Property("medium"), Property("none"), Property("currentcolor")
	for _, f := range fields {
		switch {
		case borderStyles[f]:
			style = Property(f)
		case f == "thin" || f == "medium" || f == "thick" || startsNumeric(f):
			width = Property(f)
		default:
			color = Property(f)
		}
	}
	return []KeyValue{
		{side + "-width", width},
		{side + "-style", style},
		{side + "-color", color},
	}, nil
}

// splitFlex implements the 'flex' shorthand.
func splitFlex(fields []string) ([]KeyValue, error) {
	mk := func(grow, shrink, basis string) []KeyValue {
		return []KeyValue{
			{"flex-grow", Property(grow)},
			{"flex-shrink", Property(shrink)},
			{"flex-basis", Property(basis)},
		}
	}
	switch len(fields) {
	case 1:
		switch f := fields[0]; {
		case f == "none":
			return mk("0", "0", "auto"), nil
		case f == "auto":
			return mk("1", "1", "auto"), nil
		case isPlainNumber(f):
			return mk(f, "1", "0%"), nil
		default:
			return mk("1", "1", f), nil
		}
	case 2:
		if !isPlainNumber(fields[0]) {
			return nil, fmt.Errorf("flex: expecting a number, have %q", fields[0])
		}
		if isPlainNumber(fields[1]) {
			return mk(fields[0], fields[1], "0%"), nil
		}
		return mk(fields[0], "1", fields[1]), nil
	case 3:
		if !isPlainNumber(fields[0]) || !isPlainNumber(fields[1]) {
			return nil, fmt.Errorf("flex: expecting numbers for grow and shrink")
		}
		return mk(fields[0], fields[1], fields[2]), nil
	}
	return nil, fmt.Errorf("expecting 1-3 values for flex")
}

func splitFlexFlow(fields []string) ([]KeyValue, error) {
	if len(fields) == 0 || len(fields) > 2 {
		return nil, fmt.Errorf("expecting 1-2 values for flex-flow")
	}
	dir, wrap := Property("row"), Property("nowrap")
	for _, f := range fields {
		switch f {
		case "row", "row-reverse", "column", "column-reverse":
			dir = Property(f)
		case "nowrap", "wrap", "wrap-reverse":
			wrap = Property(f)
		default:
			return nil, fmt.Errorf("flex-flow: illegal value %q", f)
		}
	}
	return []KeyValue{{"flex-direction", dir}, {"flex-wrap", wrap}}, nil
}

// expandGlobal distributes a CSS-wide keyword to all longhands of a shortcut.
func expandGlobal(key string, kw Property) ([]KeyValue, error) {
	var keys []string
	switch key {
	case "margin", "padding":
		for _, d := range fourDirs {
			keys = append(keys, key+"-"+d)
		}
	case "inset":
		keys = fourDirs[:]
	case "border-color", "border-width", "border-style":
		suf := strings.TrimPrefix(key, "border-")
		for _, d := range fourDirs {
			keys = append(keys, "border-"+d+"-"+suf)
		}
	case "border":
		for _, d := range fourDirs {
			keys = append(keys, "border-"+d+"-width", "border-"+d+"-style", "border-"+d+"-color")
		}
	case "border-top", "border-right", "border-bottom", "border-left":
		keys = []string{key + "-width", key + "-style", key + "-color"}
	case "border-radius":
		for _, c := range fourCorners {
			keys = append(keys, "border-"+c+"-radius")
		}
	case "flex":
		keys = []string{"flex-grow", "flex-shrink", "flex-basis"}
	case "flex-flow":
		keys = []string{"flex-direction", "flex-wrap"}
	case "background":
		keys = []string{"background-color"}
	default:
		return nil, fmt.Errorf("not recognized as compound property: %s", key)
	}
	r := make([]KeyValue, len(keys))
	for i, k := range keys {
		r[i] = KeyValue{k, kw}
	}
	return r, nil
}

func isGlobalKeyword(s string) bool {
	return s == "inherit" || s == "initial" || s == "unset"
}

// splitFields splits a value at top-level white space, i.e. white space
// within parentheses (as in "rgb(1, 2, 3)") does not split.
func splitFields(s string) []string {
	var fields []string
	depth, start := 0, -1
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'):
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

func startsNumeric(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if c == '+' || c == '-' {
		if len(s) == 1 {
			return false
		}
		c = s[1]
	}
	return c == '.' || (c >= '0' && c <= '9')
}

func isPlainNumber(s string) bool {
	if !startsNumeric(s) {
		return false
	}
	for _, c := range s {
		if !(c == '.' || c == '+' || c == '-' || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
