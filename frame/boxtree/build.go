package boxtree

import (
	"context"
	"strconv"
	"strings"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/tree"
)

// Source gives the builder access to a styled document.
type Source interface {
	Root() dom.NodeID
	Children(dom.NodeID) []dom.NodeID // element and text children, in order
	Tag(dom.NodeID) string            // lower case tag; "" for text nodes
	Text(dom.NodeID) (string, bool)
	Attr(dom.NodeID, string) (string, bool)
	// Style returns the computed style of an element. For text nodes the
	// style of the parent element is returned.
	Style(dom.NodeID) *style.ComputedStyle
	// Reusable returns the boxes a node generated in the previous pass, if
	// neither the node nor any of its descendants changed.
	Reusable(dom.NodeID) ([]*Box, bool)
	// Built is called with the boxes generated for a node. It is called by
	// the task owning the node.
	Built(dom.NodeID, []*Box)
}

// Options control the parallel build.
type Options struct {
	Size      func(dom.NodeID) int // estimated subtree size; may be nil
	Threshold int                  // see tree.Traversal
	LeafBatch int                  // see tree.Traversal
	OnError   func(dom.NodeID, error)
}

// Build creates the box tree for the document of src. The returned box is
// the principal box of the root element (blockified by the cascade). If
// the root element generates no box, an empty anonymous block is returned.
//
// Build returns an error only if ctx is cancelled or the pool has been
// closed.
func Build(ctx context.Context, pool *tree.Pool, src Source, opts Options) (*Box, error) {
	bld := &builder{src: src}
	tr := tree.Traversal[dom.NodeID]{
		Children: func(id dom.NodeID) []dom.NodeID {
			if _, ok := src.Reusable(id); ok {
				return nil
			}
			return src.Children(id)
		},
		Size:      opts.Size,
		Threshold: opts.Threshold,
		LeafBatch: opts.LeafBatch,
		OnError:   opts.OnError,
	}
	boxes, err := tree.BottomUp(ctx, pool, src.Root(), tr,
		func(w *tree.Worker, id dom.NodeID, kids [][]*Box) ([]*Box, error) {
			if reused, ok := src.Reusable(id); ok {
				return reused, nil
			}
			boxes := bld.generate(id, kids)
			src.Built(id, boxes)
			return boxes, nil
		})
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	if err != nil {
		tracer().Errorf("box tree: root element failed: %v", err)
	}
	switch len(boxes) {
	case 0:
		return &Box{Kind: BlockBox, Node: dom.NoNode, Anonymous: true,
			Style: anonymousStyle(src.Style(src.Root()), "block")}, nil
	case 1:
		if !boxes[0].Inline && boxes[0].Kind != TextBox {
			return boxes[0], nil
		}
	}
	root := &Box{Kind: BlockBox, Node: dom.NoNode, Anonymous: true,
		Style: anonymousStyle(src.Style(src.Root()), "block")}
	root.Children = blockContainer(boxes, root.Style)
	return root, nil
}

type builder struct {
	src Source
}

// generate creates the boxes for a single node from the boxes of its
// children.
func (bld *builder) generate(id dom.NodeID, kids [][]*Box) []*Box {
	tag := bld.src.Tag(id)
	s := bld.src.Style(id)
	if tag == "" {
		text, ok := bld.src.Text(id)
		if !ok {
			return nil
		}
		return textBoxes(id, text, s)
	}
	var children []*Box
	for _, k := range kids {
		children = append(children, k...)
	}
	mode := css.Display(s)
	if mode == css.DisplayNone {
		return nil
	}
	if mode.Contains(css.ContentsMode) {
		return children
	}
	if tag == "br" {
		return []*Box{{Kind: TextBox, Node: id, Style: s, Inline: true, Text: "\n", Preserve: true, Span: 1}}
	}
	box := &Box{Node: id, Style: s, Display: mode, Inline: mode.IsInlineLevel(), Span: 1}
	box.Placement = placement(s)
	if box.Placement != InFlow {
		box.Inline = false
	}
	if isReplaced(tag) {
		box.Kind = ReplacedBox
		box.Replaced = bld.replacedSize(id)
		return []*Box{box}
	}
	switch {
	case mode.Contains(css.FlexMode):
		box.Kind = FlexBox
		box.Children = flexItems(children, s)
	case mode.Contains(css.TableMode):
		box.Kind = TableBox
		box.Children = tableChildren(children, s)
	case mode.Contains(css.TableRowGroupMode):
		box.Kind = TableRowGroupBox
		box.Children = rowGroupChildren(children, s)
	case mode.Contains(css.TableRowMode):
		box.Kind = TableRowBox
		box.Children = rowChildren(children, s)
	case mode.Contains(css.TableCellMode):
		box.Kind = TableCellBox
		box.Span = bld.colspan(id)
		box.Children = blockContainer(children, s)
	case mode.Contains(css.TableOtherMode):
		if css.Keyword(s, "display") != "table-caption" {
			return nil // columns do not generate boxes
		}
		box.Kind = BlockBox
		box.Children = blockContainer(children, s)
	case mode.IsInlineLevel() && mode.Contains(css.InnerInlineMode) && box.Placement == InFlow:
		box.Kind = InlineBox
		return splitInline(box, children)
	default:
		box.Kind = BlockBox
		box.Children = blockContainer(children, s)
	}
	return []*Box{box}
}

func placement(s *style.ComputedStyle) Placement {
	switch s.Get("position") {
	case "absolute":
		return Absolute
	case "fixed":
		return Fixed
	}
	switch s.Get("float") {
	case "left":
		return FloatLeft
	case "right":
		return FloatRight
	}
	return InFlow
}

var replacedTags = map[string]bool{
	"img": true, "video": true, "canvas": true, "iframe": true, "svg": true, "embed": true,
	"object": true, "input": true, "textarea": true, "select": true, "button": true,
}

func isReplaced(tag string) bool {
	return replacedTags[tag]
}

func (bld *builder) replacedSize(id dom.NodeID) *Replaced {
	w, hasW := bld.pixelAttr(id, "width")
	h, hasH := bld.pixelAttr(id, "height")
	r := &Replaced{Width: DefaultReplacedWidth, Height: DefaultReplacedHeight}
	switch {
	case hasW && hasH:
		r.Width, r.Height = w, h
	case hasW:
		r.Width, r.Height = w, w*DefaultReplacedHeight/DefaultReplacedWidth
	case hasH:
		r.Width, r.Height = h*DefaultReplacedWidth/DefaultReplacedHeight, h
	}
	return r
}

func (bld *builder) pixelAttr(id dom.NodeID, key string) (float64, bool) {
	v, ok := bld.src.Attr(id, key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil || f < 0 || f != f || f > css.DUToPixels(css.MaxLength) {
		return 0, false
	}
	return f, true
}

func (bld *builder) colspan(id dom.NodeID) int {
	v, ok := bld.src.Attr(id, "colspan")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	if n > 1000 {
		return 1000
	}
	return n
}

// anonymousStyle creates the style of an anonymous box, inheriting from
// the style of its parent box.
func anonymousStyle(parent *style.ComputedStyle, display string) *style.ComputedStyle {
	b := style.NewBuilder(parent)
	b.Set("display", style.Property(display))
	return b.Build()
}

func anonymous(kind Kind, parent *style.ComputedStyle, display string, children []*Box) *Box {
	s := anonymousStyle(parent, display)
	mode, _ := css.ParseDisplay(display)
	return &Box{
		Kind:      kind,
		Node:      dom.NoNode,
		Style:     s,
		Display:   mode,
		Anonymous: true,
		Span:      1,
		Children:  children,
	}
}
