package css

import (
	"strings"

	"github.com/npillmayer/layoutcore/dom/style"
)

// positionKind enumerates the values of the 'position' property. Sticky
// boxes are laid out as relatively positioned ones.
type positionKind uint8

const (
	positionUnset positionKind = iota
	positionStatic
	positionRelative
	positionAbsolute
	positionFixed
)

var positionNames = [...]string{"unset", "static", "relative", "absolute", "fixed"}

var positionKeywords = map[string]positionKind{
	"static":   positionStatic,
	"relative": positionRelative,
	"sticky":   positionRelative,
	"absolute": positionAbsolute,
	"fixed":    positionFixed,
}

// PositionT is the value of the 'position' property together with the
// box offsets 'top', 'right', 'bottom' and 'left'.
type PositionT struct {
	offsets []PositionOffset
	kind    positionKind
}

// PositionOffset is a single box offset.
type PositionOffset struct {
	Dim DimenT
	Dir PosDir
}

// PosDir is either Top, Right, Bottom or Left.
type PosDir uint8

// Offset directions, in the order of the CSS shorthands.
const (
	Top PosDir = iota
	Right
	Bottom
	Left
)

var offsetKeys = [4]string{"top", "right", "bottom", "left"}

// NormalizeOffsets orders offsets by direction, one for each of them.
// Offsets with an invalid direction are dropped, missing ones are zero.
func NormalizeOffsets(offsets []PositionOffset) []PositionOffset {
	norm := ZeroOffsets()
	for _, o := range offsets {
		if o.Dir <= Left {
			norm[o.Dir] = o
		}
	}
	return norm
}

// ZeroOffsets returns zero offsets for all four directions.
func ZeroOffsets() []PositionOffset {
	zeros := make([]PositionOffset, 4)
	for dir := range zeros {
		zeros[dir].Dir = PosDir(dir)
	}
	return zeros
}

func positioned(kind positionKind, offsets []PositionOffset) PositionT {
	return PositionT{kind: kind, offsets: NormalizeOffsets(offsets)}
}

// Static is the position of boxes in normal flow.
func Static() PositionT {
	return PositionT{kind: positionStatic}
}

// Relative creates a relative position. Offsets may be partial or nil.
func Relative(offsets []PositionOffset) PositionT {
	return positioned(positionRelative, offsets)
}

// Absolute creates an absolute position. Offsets may be partial or nil.
func Absolute(offsets []PositionOffset) PositionT {
	return positioned(positionAbsolute, offsets)
}

// Fixed creates a fixed position. Offsets may be partial or nil.
func Fixed(offsets []PositionOffset) PositionT {
	return positioned(positionFixed, offsets)
}

// Position interprets a 'position' keyword. Unknown keywords result in
// an unset position.
func Position(p style.Property) PositionT {
	kind, ok := positionKeywords[strings.ToLower(p.String())]
	if !ok {
		return PositionT{}
	}
	return positioned(kind, nil)
}

// PositionOf returns the position of a computed style. Offsets are read
// for positioned boxes only.
func PositionOf(s *style.ComputedStyle) PositionT {
	pos := Position(s.Get("position"))
	if !pos.IsPositioned() {
		return pos
	}
	for dir, key := range offsetKeys {
		pos.offsets[dir].Dim = ParseComputed(s.Get(key).String())
	}
	return pos
}

// Offsets returns the four offsets of a position, ordered by PosDir.
func (p PositionT) Offsets() []PositionOffset {
	if len(p.offsets) == 0 {
		return ZeroOffsets()
	}
	return p.offsets
}

// Offset returns the offset for one direction.
func (p PositionT) Offset(dir PosDir) DimenT {
	return p.Offsets()[dir].Dim
}

func (p PositionT) String() string {
	return positionNames[p.kind]
}

// IsUnset is true for positions not set from a valid keyword.
func (p PositionT) IsUnset() bool { return p.kind == positionUnset }

// IsRelative is true for relative (and sticky) positions.
func (p PositionT) IsRelative() bool { return p.kind == positionRelative }

// IsAbsolute is true for absolute positions.
func (p PositionT) IsAbsolute() bool { return p.kind == positionAbsolute }

// IsFixed is true for fixed positions.
func (p PositionT) IsFixed() bool { return p.kind == positionFixed }

// IsOutOfFlow is true for absolutely positioned and fixed boxes.
func (p PositionT) IsOutOfFlow() bool {
	return p.kind == positionAbsolute || p.kind == positionFixed
}

// IsPositioned is true for all positions except static and unset. A
// positioned box is the containing block of absolutely positioned
// descendants.
func (p PositionT) IsPositioned() bool {
	return p.kind > positionStatic
}

// --- Matching --------------------------------------------------------------

// PMatcher matches a position in a switch statement:
//
//	switch m := pos.Match(); m {
//	case m.Absolute(&offsets):
//	    …
//	}
type PMatcher struct {
	pos PositionT
}

// Match starts matching p.
func (p PositionT) Match() *PMatcher {
	return &PMatcher{pos: p}
}

// when returns m if the position is of kind, copying its offsets to o.
func (m *PMatcher) when(kind positionKind, o *[]PositionOffset) *PMatcher {
	if m.pos.kind != kind {
		return nil
	}
	if o != nil {
		*o = m.pos.offsets
	}
	return m
}

// IsKind matches positions of the same kind as p, ignoring offsets.
func (m *PMatcher) IsKind(p PositionT) *PMatcher { return m.when(p.kind, nil) }

// Absolute matches absolute positions.
func (m *PMatcher) Absolute(o *[]PositionOffset) *PMatcher { return m.when(positionAbsolute, o) }

// Relative matches relative positions.
func (m *PMatcher) Relative(o *[]PositionOffset) *PMatcher { return m.when(positionRelative, o) }

// Fixed matches fixed positions.
func (m *PMatcher) Fixed(o *[]PositionOffset) *PMatcher { return m.when(positionFixed, o) }

// PositionPatterns holds a result for every kind of position. Default is
// the result for static positions.
type PositionPatterns[T any] struct {
	Unset    T
	Static   T
	Absolute T
	Relative T
	Fixed    T
	Default  T
}

// PMatchExpr selects a value depending on a position. Create it with
// PositionPattern.
type PMatchExpr[T any] struct {
	pos PositionT
}

// PositionPattern starts an expression match on p.
func PositionPattern[T any](p PositionT) *PMatchExpr[T] {
	return &PMatchExpr[T]{pos: p}
}

// OneOf returns the pattern for the kind of the position.
func (m *PMatchExpr[T]) OneOf(patterns PositionPatterns[T]) T {
	switch m.pos.kind {
	case positionUnset:
		return patterns.Unset
	case positionAbsolute:
		return patterns.Absolute
	case positionRelative:
		return patterns.Relative
	case positionFixed:
		return patterns.Fixed
	}
	return patterns.Default
}

// With copies the offsets of the position to o.
func (m *PMatchExpr[T]) With(o *[]PositionOffset) *PMatchExpr[T] {
	if o != nil {
		*o = m.pos.offsets
	}
	return m
}

// Const returns x.
func (m *PMatchExpr[T]) Const(x T) T {
	return x
}
