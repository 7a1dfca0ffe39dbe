package boxtree

import (
	"fmt"
	"strings"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/tyse/core/dimen"
)

// Kind is the type of a box.
type Kind uint8

// Kinds of boxes. The set of kinds is closed; layout dispatches on it.
const (
	BlockBox Kind = iota
	InlineBox
	FlexBox
	TableBox
	TableRowGroupBox
	TableRowBox
	TableCellBox
	ReplacedBox
	TextBox
)

var kindNames = [...]string{"block", "inline", "flex", "table", "row-group", "row", "cell", "replaced", "text"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Placement tells how a box is positioned relative to the normal flow.
type Placement uint8

// Placements of boxes.
const (
	InFlow Placement = iota
	FloatLeft
	FloatRight
	Absolute
	Fixed
)

// IsFloat is true for left and right floats.
func (p Placement) IsFloat() bool {
	return p == FloatLeft || p == FloatRight
}

// IsPositioned is true for absolutely positioned and fixed boxes.
func (p Placement) IsPositioned() bool {
	return p == Absolute || p == Fixed
}

// Replaced holds the intrinsic dimensions of replaced content, in CSS pixels.
type Replaced struct {
	Width, Height float64
}

// Default dimensions of replaced elements without intrinsic size.
const (
	DefaultReplacedWidth  = 300
	DefaultReplacedHeight = 150
)

// Sizes are the intrinsic inline sizes of a box (its border box, without
// margins).
type Sizes struct {
	Min, Max dimen.DU
}

// Memo is a cached layout result of a box. Layout stores its results
// together with the constraints they have been computed for.
type Memo struct {
	Width, Height dimen.DU // available width and containing block height
	Value         any
}

// Box is a node of the box tree.
//
// A box is owned by the traversal task which creates or lays it out; its
// caches are written by that task only.
type Box struct {
	Kind      Kind
	Node      dom.NodeID // generating DOM node; NoNode for anonymous boxes
	Style     *style.ComputedStyle
	Display   css.DisplayMode
	Inline    bool // inline-level (atomic inlines, inline boxes, text)
	Anonymous bool
	Placement Placement
	Children  []*Box
	Text      string    // collapsed text of a text box
	Preserve  bool      // text box preserves white space
	Replaced  *Replaced // intrinsic size of replaced content
	Span      int       // column span of a table cell
	intrinsic *Sizes
	memo      *Memo
	unsettled bool // boxes below may have dropped their intrinsic sizes
}

// IsBlockLevel is true for boxes taking part in a block formatting context
// as blocks.
func (b *Box) IsBlockLevel() bool {
	return !b.Inline
}

// IsOutOfFlow is true for floats, absolutely positioned and fixed boxes.
func (b *Box) IsOutOfFlow() bool {
	return b.Placement != InFlow
}

// IsWhitespace is true for text boxes which hold collapsible white space
// only.
func (b *Box) IsWhitespace() bool {
	return b.Kind == TextBox && !b.Preserve && strings.TrimSpace(b.Text) == ""
}

// Intrinsic returns the cached intrinsic sizes of a box.
func (b *Box) Intrinsic() (Sizes, bool) {
	if b.intrinsic == nil {
		return Sizes{}, false
	}
	return *b.intrinsic, true
}

// SetIntrinsic caches the intrinsic sizes of a box. The caller guarantees
// that the sizes of all boxes below b are cached as well.
func (b *Box) SetIntrinsic(s Sizes) {
	b.intrinsic = &s
	b.unsettled = false
}

// Settled is true if the intrinsic sizes of b and of every box below it
// are cached.
func (b *Box) Settled() bool {
	return b.intrinsic != nil && !b.unsettled
}

// Memo returns the cached layout result for the given constraints.
func (b *Box) Memo(width, height dimen.DU) (any, bool) {
	if b.memo == nil || b.memo.Width != width || b.memo.Height != height {
		return nil, false
	}
	return b.memo.Value, true
}

// SetMemo caches a layout result.
func (b *Box) SetMemo(width, height dimen.DU, v any) {
	b.memo = &Memo{Width: width, Height: height, Value: v}
}

// DropMemo drops the memoized layout of a box, keeping its intrinsic
// sizes. It is used for boxes whose own sizes are unaffected by a change
// below them. Layout descends below b to recompute dropped sizes.
func (b *Box) DropMemo() {
	b.memo = nil
	b.unsettled = true
}

// Invalidate drops the layout caches of a box.
func (b *Box) Invalidate() {
	b.intrinsic = nil
	b.memo = nil
}

// Len returns the number of boxes in the subtree of b.
func (b *Box) Len() int {
	if b == nil {
		return 0
	}
	n := 1
	for _, c := range b.Children {
		n += c.Len()
	}
	return n
}

func (b *Box) String() string {
	if b == nil {
		return "<nil box>"
	}
	var sb strings.Builder
	if b.Anonymous {
		sb.WriteString("anon-")
	}
	if b.Inline && b.Kind != InlineBox && b.Kind != TextBox {
		sb.WriteString("inline-")
	}
	sb.WriteString(b.Kind.String())
	if b.Node != dom.NoNode {
		fmt.Fprintf(&sb, " #%d", b.Node)
	}
	switch b.Placement {
	case FloatLeft:
		sb.WriteString(" float:left")
	case FloatRight:
		sb.WriteString(" float:right")
	case Absolute:
		sb.WriteString(" absolute")
	case Fixed:
		sb.WriteString(" fixed")
	}
	if b.Kind == TextBox {
		fmt.Fprintf(&sb, " %q", b.Text)
	}
	if b.Kind == ReplacedBox && b.Replaced != nil {
		fmt.Fprintf(&sb, " %gx%g", b.Replaced.Width, b.Replaced.Height)
	}
	return sb.String()
}
