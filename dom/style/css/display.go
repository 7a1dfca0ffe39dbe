package css

import (
	"bytes"
	"fmt"
	"strings"
)

// DisplayMode is a type for CSS property "display".
//
type DisplayMode uint16

// Flags for box context and display mode (outer and inner).
const (
	NoMode            DisplayMode = iota   // unset or error condition
	DisplayNone       DisplayMode = 0x0001 // CSS outer display = none
	BlockMode         DisplayMode = 0x0002 // CSS block context (inner or outer)
	InlineMode        DisplayMode = 0x0004 // CSS inline context
	ContentsMode      DisplayMode = 0x0008 // CSS outer display = contents
	FlowRootMode      DisplayMode = 0x0010 // CSS flow-root display property
	ListItemMode      DisplayMode = 0x0020 // CSS list-item display
	FlexMode          DisplayMode = 0x0040 // CSS inner display = flex
	GridMode          DisplayMode = 0x0080 // CSS inner display = grid
	TableMode         DisplayMode = 0x0100 // CSS table display property (inner or outer)
	InnerBlockMode    DisplayMode = 0x0200 // CSS inner block mode (inline-block)
	InnerInlineMode   DisplayMode = 0x0400 // CSS inner inline mode (paragraphs)
	TableRowGroupMode DisplayMode = 0x0800 // CSS table-row-group and header/footer groups
	TableRowMode      DisplayMode = 0x1000 // CSS table-row
	TableCellMode     DisplayMode = 0x2000 // CSS table-cell
	TableOtherMode    DisplayMode = 0x4000 // CSS table-column(-group), table-caption
)

var allDisplayModes = []DisplayMode{
	DisplayNone, BlockMode, InlineMode, ContentsMode, ListItemMode, FlowRootMode,
	FlexMode, GridMode, TableMode, InnerBlockMode, InnerInlineMode,
	TableRowGroupMode, TableRowMode, TableCellMode, TableOtherMode,
}

var displayModeNames = map[DisplayMode]string{
	NoMode:            "NoMode",
	DisplayNone:       "DisplayNone",
	BlockMode:         "BlockMode",
	InlineMode:        "InlineMode",
	ContentsMode:      "ContentsMode",
	FlowRootMode:      "FlowRootMode",
	ListItemMode:      "ListItemMode",
	FlexMode:          "FlexMode",
	GridMode:          "GridMode",
	TableMode:         "TableMode",
	InnerBlockMode:    "InnerBlockMode",
	InnerInlineMode:   "InnerInlineMode",
	TableRowGroupMode: "TableRowGroupMode",
	TableRowMode:      "TableRowMode",
	TableCellMode:     "TableCellMode",
	TableOtherMode:    "TableOtherMode",
}

func (disp DisplayMode) String() string {
	if s, ok := displayModeNames[disp]; ok {
		return s
	}
	return disp.FullString()
}

// Outer returns outer mode
func (disp DisplayMode) Outer() DisplayMode {
	return disp & 0x000f
}

// Inner returns inner mode
func (disp DisplayMode) Inner() DisplayMode {
	return disp & 0xfff0
}

// IsBlockLevel return true if it has outer display level of BlockMode.
//
// A block-level element is defined as (CSS 2.1, section 9.2.1):
// Block-level elements are those elements of the source document that are formatted visually
// as blocks (e.g., paragraphs). The following values of the 'display' property make an element
// block-level: 'block', 'list-item', and 'table'.
//
func (disp DisplayMode) IsBlockLevel() bool {
	return disp&0x000f == BlockMode
}

// IsInlineLevel return true if it has outer display level of InlineMode.
func (disp DisplayMode) IsInlineLevel() bool {
	return disp&0x000f == InlineMode
}

// IsTablePart is true for the internal table display types.
func (disp DisplayMode) IsTablePart() bool {
	return disp.Overlaps(TableRowGroupMode | TableRowMode | TableCellMode | TableOtherMode)
}

// Set sets a given atomic mode within this display mode.
func (disp *DisplayMode) Set(d DisplayMode) {
	*disp = (*disp) | d
}

// Contains checks if a display mode contains a given atomic mode.
// Returns false for d = NoMode.
func (disp DisplayMode) Contains(d DisplayMode) bool {
	return d != NoMode && (disp&d > 0)
}

// Overlaps returns true if a given display mode shares at least one atomic
// mode flag with disp (excluding NoMode).
func (disp DisplayMode) Overlaps(d DisplayMode) bool {
	for _, m := range allDisplayModes {
		if disp.Contains(m) && d.Contains(m) {
			return true
		}
	}
	return false
}

// FullString returns all atomic modes set in a display mode.
func (disp DisplayMode) FullString() string {
	var b bytes.Buffer
	first := true
	for _, m := range allDisplayModes {
		if disp.Contains(m) {
			if !first {
				b.WriteString(" ")
			}
			first = false
			b.WriteString(displayModeNames[m])
		}
	}
	return b.String()
}

// Symbol returns a Unicode symbol for a mode.
func (disp DisplayMode) Symbol() string {
	if disp.Contains(FlexMode) {
		return "▤"
	} else if disp.Contains(GridMode) {
		return "◰"
	} else if disp.Contains(TableMode) || disp.IsTablePart() {
		return "▥"
	} else if disp.Contains(ListItemMode) {
		return "▣"
	} else if disp.Contains(BlockMode) || disp.Contains(InnerBlockMode) {
		return "▩"
	} else if disp.Contains(InlineMode) || disp.Contains(InnerInlineMode) {
		return "►"
	} else if disp == NoMode {
		return "–"
	}
	return "?"
}

// ParseDisplay returns mode flags from a display property string (outer and inner).
func ParseDisplay(display string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(display)) {
	case "":
		return NoMode, nil
	case "none":
		return DisplayNone, nil
	case "contents":
		return ContentsMode, nil
	case "block":
		return BlockMode | InnerBlockMode, nil
	case "flow-root":
		return BlockMode | FlowRootMode, nil
	case "inline":
		return InlineMode | InnerInlineMode, nil
	case "list-item":
		return ListItemMode | BlockMode, nil
	case "block-inline":
		return BlockMode | InnerInlineMode, nil
	case "inline-block":
		return InlineMode | InnerBlockMode, nil
	case "flex":
		return BlockMode | FlexMode, nil
	case "inline-flex":
		return InlineMode | FlexMode, nil
	case "grid":
		return BlockMode | GridMode, nil
	case "inline-grid":
		return InlineMode | GridMode, nil
	case "table":
		return BlockMode | TableMode, nil
	case "inline-table":
		return InlineMode | TableMode, nil
	case "table-row-group", "table-header-group", "table-footer-group":
		return TableRowGroupMode, nil
	case "table-row":
		return TableRowMode, nil
	case "table-cell":
		return TableCellMode, nil
	case "table-column", "table-column-group", "table-caption":
		return TableOtherMode, nil
	}
	return BlockMode, fmt.Errorf("unknown display mode: %s", display)
}

// Blockify returns the block-level equivalent of a display value, as
// required for floats, absolutely positioned boxes, flex items and the
// root element.
func Blockify(display string) string {
	switch display {
	case "inline", "inline-block", "table-row-group", "table-header-group",
		"table-footer-group", "table-row", "table-cell", "table-column",
		"table-column-group", "table-caption":
		return "block"
	case "inline-flex":
		return "flex"
	case "inline-grid":
		return "grid"
	case "inline-table":
		return "table"
	}
	return display
}
