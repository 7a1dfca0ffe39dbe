package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/npillmayer/tyse/core/dimen"
)

// intrinsic computes the intrinsic sizes of all boxes of a tree, bottom-up.
// Settled subtrees are skipped.
func (lay *layouter) intrinsic(ctx context.Context, pool *tree.Pool, root *boxtree.Box) error {
	tr := tree.Traversal[*boxtree.Box]{
		Children: func(b *boxtree.Box) []*boxtree.Box {
			if b.Settled() {
				return nil
			}
			return b.Children
		},
		Threshold: lay.opts.Threshold,
		LeafBatch: lay.opts.LeafBatch,
		OnError: func(b *boxtree.Box, err error) {
			lay.report(b, TaskFailed, fmt.Sprintf("intrinsic sizing failed: %v", err))
		},
	}
	_, err := tree.BottomUp(ctx, pool, root, tr,
		func(w *tree.Worker, b *boxtree.Box, _ []struct{}) (struct{}, error) {
			b.SetIntrinsic(lay.sizes(b))
			return struct{}{}, nil
		})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, tree.ErrPoolClosed) {
		return err
	}
	return nil // failed subtrees have been reported
}

// sizes returns the intrinsic sizes of a box's border box, computing and
// caching them if necessary.
func (lay *layouter) sizes(b *boxtree.Box) boxtree.Sizes {
	if sz, ok := b.Intrinsic(); ok {
		return sz
	}
	sz := lay.computeSizes(b)
	b.SetIntrinsic(sz)
	return sz
}

// contribution returns the intrinsic sizes of a box's margin box. Margins
// given in percent do not contribute.
func (lay *layouter) contribution(b *boxtree.Box) boxtree.Sizes {
	sz := lay.sizes(b)
	if b.Kind == boxtree.TextBox {
		return sz
	}
	m, _, _ := margins(b.Style, 0)
	return boxtree.Sizes{Min: sum(sz.Min, m.h()), Max: sum(sz.Max, m.h())}
}

func (lay *layouter) computeSizes(b *boxtree.Box) boxtree.Sizes {
	if b.Kind == boxtree.TextBox {
		return lay.textSizes(b)
	}
	s := b.Style
	inner := sum(border(s).h(), padding(s, 0).h())
	borderBox := s.Get("box-sizing") == "border-box"
	var content boxtree.Sizes
	switch b.Kind {
	case boxtree.ReplacedBox:
		w, _ := lay.replacedSize(b, indefinite, indefinite)
		content = boxtree.Sizes{Min: w, Max: w}
	case boxtree.FlexBox:
		content = lay.flexSizes(b)
	case boxtree.TableBox:
		content = lay.tableSizes(b)
	case boxtree.InlineBox:
		content = lay.inlineSizes(b.Children)
	default:
		if hasBlockChildren(b) {
			content = lay.blockSizes(b.Children)
		} else {
			content = lay.inlineSizes(b.Children)
		}
	}
	if b.Kind != boxtree.ReplacedBox && b.Kind != boxtree.InlineBox {
		if w, ok := contentSize(s, "width", indefinite, inner, borderBox); ok {
			content = boxtree.Sizes{Min: w, Max: w}
		}
	}
	content.Min = limits(s, content.Min, "min-width", "max-width", indefinite, inner, borderBox)
	content.Max = limits(s, content.Max, "min-width", "max-width", indefinite, inner, borderBox)
	return boxtree.Sizes{Min: sum(content.Min, inner), Max: sum(content.Max, inner)}
}

// hasBlockChildren is true for block containers with block-level content.
// The box tree builder guarantees that in-flow children are either all
// block-level or all inline-level.
func hasBlockChildren(b *boxtree.Box) bool {
	for _, c := range b.Children {
		if !c.IsOutOfFlow() {
			return !c.Inline && c.Kind != boxtree.TextBox
		}
	}
	return false
}

func (lay *layouter) blockSizes(children []*boxtree.Box) boxtree.Sizes {
	var sz boxtree.Sizes
	for _, c := range children {
		if c.Placement.IsPositioned() {
			continue
		}
		k := lay.contribution(c)
		sz.Min = maxDU(sz.Min, k.Min)
		sz.Max = maxDU(sz.Max, k.Max)
	}
	return sz
}

// inlineSizes: the widest unbreakable piece, and all content on one line.
// Floats contribute like blocks.
func (lay *layouter) inlineSizes(children []*boxtree.Box) boxtree.Sizes {
	var sz boxtree.Sizes
	var line, floats dimen.DU
	for _, c := range children {
		switch {
		case c.Placement.IsPositioned():
			continue
		case c.Placement.IsFloat():
			k := lay.contribution(c)
			sz.Min = maxDU(sz.Min, k.Min)
			floats = sum(floats, k.Max)
			continue
		}
		k := lay.contribution(c)
		sz.Min = maxDU(sz.Min, k.Min)
		line = sum(line, k.Max)
	}
	sz.Max = maxDU(sum(line, floats), sz.Min)
	return sz
}

// textSizes measures text the same way inline layout does, token by token,
// so that content never breaks within its own max-content width.
func (lay *layouter) textSizes(b *boxtree.Box) boxtree.Sizes {
	f := FontOf(b.Style)
	ws := b.Style.Get("white-space")
	var sz boxtree.Sizes
	for _, line := range strings.Split(b.Text, "\n") {
		var w dimen.DU
		for _, tok := range tokenize(line) {
			adv := lay.opts.Metrics.Advance(tok, f)
			w = sum(w, adv)
			if tok[0] != ' ' {
				sz.Min = maxDU(sz.Min, adv)
			}
		}
		sz.Max = maxDU(sz.Max, w)
		if ws == "nowrap" || ws == "pre" {
			sz.Min = maxDU(sz.Min, w)
		}
	}
	return sz
}

func (lay *layouter) flexSizes(b *boxtree.Box) boxtree.Sizes {
	row := !strings.HasPrefix(css.Keyword(b.Style, "flex-direction"), "column")
	var sz boxtree.Sizes
	for _, c := range b.Children {
		if c.IsOutOfFlow() {
			continue
		}
		k := lay.contribution(c)
		if row {
			sz.Min = sum(sz.Min, k.Min)
			sz.Max = sum(sz.Max, k.Max)
		} else {
			sz.Min = maxDU(sz.Min, k.Min)
			sz.Max = maxDU(sz.Max, k.Max)
		}
	}
	return sz
}
