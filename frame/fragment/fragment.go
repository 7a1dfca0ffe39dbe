package fragment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/npillmayer/layoutcore/dom"
)

// Kind is the type of a fragment. It mirrors the kind of the generating box.
type Kind uint8

// Kinds of fragments.
const (
	Block Kind = iota
	Inline
	Flex
	Table
	TableRowGroup
	TableRow
	TableCell
	Replaced
	Text
)

var kindNames = [...]string{"block", "inline", "flex", "table", "row-group", "row", "cell", "replaced", "text"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// MarshalText makes kinds appear by name in serialized snapshots.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Rect is a rectangle in CSS pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains is true if the point (x, y) lies within r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
}

// Edges are the widths of the four sides of a border or padding.
type Edges struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// IsZero is true if all sides are zero.
func (e Edges) IsZero() bool {
	return e == Edges{}
}

// Paint are the references a painter needs. Colors are in '#rrggbbaa'
// notation.
type Paint struct {
	Color       string  `json:"color,omitempty"`
	Background  string  `json:"background,omitempty"`
	BorderColor string  `json:"borderColor,omitempty"`
	Opacity     float64 `json:"opacity"`
	Hidden      bool    `json:"hidden,omitempty"`
}

// Fragment is a positioned piece of a box.
type Fragment struct {
	Kind        Kind        `json:"kind"`
	Node        dom.NodeID  `json:"node"`
	Anonymous   bool        `json:"anonymous,omitempty"`
	Bounds      Rect        `json:"bounds"` // border box
	Border      Edges       `json:"border"`
	Padding     Edges       `json:"padding"`
	Text        string      `json:"text,omitempty"`
	Paint       Paint       `json:"paint"`
	NotRendered bool        `json:"notRendered,omitempty"` // subtree truncated or failed
	Children    []*Fragment `json:"children,omitempty"`
}

// ContentBox returns the content rectangle of a fragment.
func (f *Fragment) ContentBox() Rect {
	r := f.Bounds
	r.X += f.Border.Left + f.Padding.Left
	r.Y += f.Border.Top + f.Padding.Top
	r.W -= f.Border.Left + f.Border.Right + f.Padding.Left + f.Padding.Right
	r.H -= f.Border.Top + f.Border.Bottom + f.Padding.Top + f.Padding.Bottom
	if r.W < 0 {
		r.W = 0
	}
	if r.H < 0 {
		r.H = 0
	}
	return r
}

// Len returns the number of fragments of the subtree of f.
func (f *Fragment) Len() int {
	if f == nil {
		return 0
	}
	n := 1
	for _, c := range f.Children {
		n += c.Len()
	}
	return n
}

func (f *Fragment) String() string {
	if f == nil {
		return "<nil fragment>"
	}
	var sb strings.Builder
	if f.Anonymous {
		sb.WriteString("anon-")
	}
	sb.WriteString(f.Kind.String())
	if f.Node != dom.NoNode {
		fmt.Fprintf(&sb, " #%d", f.Node)
	}
	sb.WriteByte(' ')
	sb.WriteString(f.Bounds.String())
	if f.Kind == Text {
		fmt.Fprintf(&sb, " %q", f.Text)
	}
	if f.NotRendered {
		sb.WriteString(" not-rendered")
	}
	return sb.String()
}

// Walk visits the fragments of the subtree of f in paint order (parents
// before children, siblings in order). If visit returns false, the
// children of a fragment are skipped.
func (f *Fragment) Walk(visit func(f *Fragment, depth int) bool) {
	walk(f, 0, visit)
}

func walk(f *Fragment, depth int, visit func(*Fragment, int) bool) {
	if f == nil || !visit(f, depth) {
		return
	}
	for _, c := range f.Children {
		walk(c, depth+1, visit)
	}
}

// Snapshot is the fragment tree of a completed pass.
type Snapshot struct {
	Pass     uint64    `json:"pass"`
	Document uuid.UUID `json:"document"`
	Viewport Rect      `json:"viewport"`
	Root     *Fragment `json:"root"`
}

// Len returns the number of fragments of the snapshot.
func (snap *Snapshot) Len() int {
	if snap == nil {
		return 0
	}
	return snap.Root.Len()
}

// Find returns the fragments generated by a node, in paint order.
func (snap *Snapshot) Find(id dom.NodeID) []*Fragment {
	if snap == nil {
		return nil
	}
	var found []*Fragment
	snap.Root.Walk(func(f *Fragment, _ int) bool {
		if f.Node == id {
			found = append(found, f)
		}
		return true
	})
	return found
}
