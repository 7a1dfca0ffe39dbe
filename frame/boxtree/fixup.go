package boxtree

import (
	"strings"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
)

// --- Text ------------------------------------------------------------------

// textBoxes creates the box for a text node. White space is collapsed
// according to the 'white-space' property of the enclosing element.
func textBoxes(id dom.NodeID, text string, s *style.ComputedStyle) []*Box {
	ws := s.Get("white-space").String()
	preserve := ws == "pre" || ws == "pre-wrap"
	if !preserve {
		text = CollapseWhitespace(text, ws == "pre-line")
	}
	if text == "" {
		return nil
	}
	return []*Box{{
		Kind:     TextBox,
		Node:     id,
		Style:    s,
		Inline:   true,
		Text:     text,
		Preserve: preserve,
		Span:     1,
	}}
}

// CollapseWhitespace replaces every sequence of white space by a single
// space. With keepNewlines set, line feeds are kept and spaces around
// them are removed.
func CollapseWhitespace(text string, keepNewlines bool) string {
	var b strings.Builder
	b.Grow(len(text))
	space, newline := false, false
	for _, r := range text {
		switch r {
		case '\n':
			if keepNewlines {
				newline = true
				space = false
				continue
			}
			space = true
		case ' ', '\t', '\r', '\f':
			if !newline {
				space = true
			}
		default:
			if newline {
				b.WriteByte('\n')
			} else if space {
				b.WriteByte(' ')
			}
			space, newline = false, false
			b.WriteRune(r)
		}
	}
	if newline {
		b.WriteByte('\n')
	} else if space {
		b.WriteByte(' ')
	}
	return b.String()
}

// --- Block and inline content ----------------------------------------------

func inFlowBlock(b *Box) bool {
	return !b.Inline && !b.IsOutOfFlow()
}

// onlyCollapsible is true if a run of boxes would not produce any visible
// inline content: white space and out-of-flow boxes only.
func onlyCollapsible(run []*Box) bool {
	for _, b := range run {
		if !b.IsWhitespace() && !b.IsOutOfFlow() {
			return false
		}
	}
	return true
}

func outOfFlow(run []*Box) []*Box {
	var oof []*Box
	for _, b := range run {
		if b.IsOutOfFlow() {
			oof = append(oof, b)
		}
	}
	return oof
}

// blockContainer normalizes the children of a block container: either all
// in-flow children are block-level, or all of them are inline-level.
// Inline runs between blocks are wrapped into anonymous blocks.
func blockContainer(children []*Box, s *style.ComputedStyle) []*Box {
	children = wrapTableParts(children, s)
	hasBlock := false
	for _, c := range children {
		if inFlowBlock(c) {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		if onlyCollapsible(children) {
			return outOfFlow(children)
		}
		return children
	}
	var out, run []*Box
	flush := func() {
		if len(run) == 0 {
			return
		}
		if onlyCollapsible(run) {
			out = append(out, outOfFlow(run)...)
		} else {
			out = append(out, anonymous(BlockBox, s, "block", run))
		}
		run = nil
	}
	for _, c := range children {
		if inFlowBlock(c) {
			flush()
			out = append(out, c)
		} else {
			run = append(run, c)
		}
	}
	flush()
	return out
}

// splitInline handles block-level boxes within an inline box: the inline
// box is split around them and the blocks are hoisted to the enclosing
// block container.
func splitInline(box *Box, children []*Box) []*Box {
	hasBlock := false
	for _, c := range children {
		if inFlowBlock(c) {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		box.Children = children
		return []*Box{box}
	}
	var out, run []*Box
	flush := func() {
		if len(run) == 0 {
			return
		}
		part := *box
		part.Children = run
		out = append(out, &part)
		run = nil
	}
	for _, c := range children {
		if inFlowBlock(c) {
			flush()
			out = append(out, c)
		} else {
			run = append(run, c)
		}
	}
	flush()
	return out
}

// --- Flex ------------------------------------------------------------------

// flexItems makes every in-flow child of a flex container a flex item.
// Runs of text become anonymous block items.
func flexItems(children []*Box, s *style.ComputedStyle) []*Box {
	children = wrapTableParts(children, s)
	var out, run []*Box
	flush := func() {
		if len(run) == 0 {
			return
		}
		if !onlyCollapsible(run) {
			out = append(out, anonymous(BlockBox, s, "block", blockContainer(run, s)))
		}
		run = nil
	}
	for _, c := range children {
		switch {
		case c.IsOutOfFlow():
			flush()
			out = append(out, c)
		case c.Inline:
			run = append(run, c)
		default:
			flush()
			out = append(out, c)
		}
	}
	flush()
	return out
}

// --- Tables ----------------------------------------------------------------

func isTablePart(b *Box) bool {
	return b.Kind == TableRowGroupBox || b.Kind == TableRowBox || b.Kind == TableCellBox
}

// wrapTableParts wraps table parts outside of a table into anonymous
// tables.
func wrapTableParts(children []*Box, s *style.ComputedStyle) []*Box {
	found := false
	for _, c := range children {
		if isTablePart(c) {
			found = true
			break
		}
	}
	if !found {
		return children
	}
	var out, run []*Box
	flush := func() {
		if len(run) > 0 {
			out = append(out, anonymous(TableBox, s, "table", tableChildren(run, s)))
			run = nil
		}
	}
	for _, c := range children {
		switch {
		case isTablePart(c):
			run = append(run, c)
		case c.IsWhitespace() && len(run) > 0:
			// dropped
		default:
			flush()
			out = append(out, c)
		}
	}
	flush()
	return out
}

// strayRuns groups children into boxes of the expected kind and runs of
// other content. White space outside of runs is dropped.
func strayRuns(children []*Box, kind Kind, wrap func(run []*Box) *Box) []*Box {
	var out, run []*Box
	flush := func() {
		if len(run) > 0 && !onlyCollapsible(run) {
			out = append(out, wrap(run))
		}
		run = nil
	}
	for _, c := range children {
		switch {
		case c.Kind == kind:
			flush()
			out = append(out, c)
		case c.IsWhitespace() && len(run) == 0:
			// dropped
		default:
			run = append(run, c)
		}
	}
	flush()
	return out
}

func tableChildren(children []*Box, s *style.ComputedStyle) []*Box {
	return strayRuns(children, TableRowGroupBox, func(run []*Box) *Box {
		return anonymous(TableRowGroupBox, s, "table-row-group", rowGroupChildren(run, s))
	})
}

func rowGroupChildren(children []*Box, s *style.ComputedStyle) []*Box {
	return strayRuns(children, TableRowBox, func(run []*Box) *Box {
		return anonymous(TableRowBox, s, "table-row", rowChildren(run, s))
	})
}

func rowChildren(children []*Box, s *style.ComputedStyle) []*Box {
	return strayRuns(children, TableCellBox, func(run []*Box) *Box {
		return anonymous(TableCellBox, s, "table-cell", blockContainer(run, s))
	})
}
