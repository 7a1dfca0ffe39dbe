package layout

import (
	"context"
	"errors"
	"fmt"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/frame/boxtree"
	"github.com/npillmayer/layoutcore/frame/fragment"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/npillmayer/tyse/core/dimen"
)

// ErrNoBoxTree is returned if Layout is called without a box tree.
var ErrNoBoxTree = errors.New("layout: no box tree")

// DefaultMaxDepth is the default for the nesting depth of boxes which are
// laid out.
const DefaultMaxDepth = 512

// Options configure a layout run.
type Options struct {
	Viewport  css.Viewport
	Metrics   Metrics // text measurement; defaults to BasicMetrics
	MaxDepth  int     // boxes nested deeper are not rendered
	Threshold int     // see tree.Traversal
	LeafBatch int     // see tree.Traversal
	// Style returns the current style of a node. It is used for the paint
	// references of fragments; if nil, the styles of the boxes are used.
	Style func(dom.NodeID) *style.ComputedStyle
	// Report receives diagnostics. It is called concurrently.
	Report func(Diagnostic)
}

// DiagnosticKind classifies the problems layout reports.
type DiagnosticKind uint8

// Kinds of diagnostics.
const (
	TaskFailed    DiagnosticKind = iota // processing of a subtree panicked
	DepthExceeded                       // subtree nested too deeply
	Clamped                             // a size exceeded the supported range
)

func (k DiagnosticKind) String() string {
	switch k {
	case TaskFailed:
		return "task-failed"
	case DepthExceeded:
		return "depth-exceeded"
	case Clamped:
		return "clamped"
	}
	return "unknown"
}

// Diagnostic is a problem encountered during layout. Diagnostics never
// stop a layout run; the affected subtree is marked as not rendered.
type Diagnostic struct {
	Node    dom.NodeID
	Kind    DiagnosticKind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at node %d: %s", d.Kind, d.Node, d.Message)
}

// Layout lays out a box tree for a viewport and returns the resulting
// fragment tree.
//
// With a nil pool, layout runs on the calling goroutine. Layout returns
// an error only if ctx is cancelled, the pool is closed or root is nil.
// Failures of subtrees are reported as diagnostics.
func Layout(ctx context.Context, pool *tree.Pool, root *boxtree.Box, opts Options) (*fragment.Fragment, error) {
	if root == nil {
		return nil, ErrNoBoxTree
	}
	lay := newLayouter(ctx, opts)
	if err := lay.intrinsic(ctx, pool, root); err != nil {
		return nil, err
	}
	var p *piece
	resolve := func(w *tree.Worker) {
		p = lay.layoutRoot(w, root)
	}
	if pool == nil {
		resolve(nil)
	} else if err := pool.Run(resolve); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return lay.place(ctx, pool, p, p.margin.left, p.margin.top)
}

type layouter struct {
	ctx    context.Context
	opts   Options
	vw, vh dimen.DU
}

func newLayouter(ctx context.Context, opts Options) *layouter {
	if opts.Metrics == nil {
		opts.Metrics = NewBasicMetrics()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = css.DefaultViewport
	}
	return &layouter{
		ctx:  ctx,
		opts: opts,
		vw:   clamp(css.PixelsToDU(opts.Viewport.Width)),
		vh:   clamp(css.PixelsToDU(opts.Viewport.Height)),
	}
}

func (lay *layouter) report(b *boxtree.Box, kind DiagnosticKind, msg string) {
	d := Diagnostic{Node: b.Node, Kind: kind, Message: msg}
	tracer().Infof("layout: %v", d)
	if lay.opts.Report != nil {
		lay.opts.Report(d)
	}
}

// --- Constraints and pieces ------------------------------------------------

// indefinite marks sizes which are not known.
const indefinite dimen.DU = -1

// constraints are handed from a box to its children.
type constraints struct {
	avail  dimen.DU // space for the margin box
	cbW    dimen.DU // width of the containing block, for percentages
	cbH    dimen.DU // height of the containing block; may be indefinite
	forceW dimen.DU // border box width imposed by the parent, or indefinite
	forceH dimen.DU // border box height imposed by the parent, or indefinite
	shrink bool     // an auto width shrinks to fit the content
	depth  int
}

func (c constraints) child(avail, cbW, cbH dimen.DU) constraints {
	return constraints{avail: avail, cbW: cbW, cbH: cbH,
		forceW: indefinite, forceH: indefinite, depth: c.depth + 1}
}

func (c constraints) memoizable() bool {
	return c.forceW < 0 && c.forceH < 0 && !c.shrink && c.avail == c.cbW
}

// piece is the layout result of a box: its size and the offsets of its
// children, relative to its border box. Pieces are immutable once their
// box has been laid out, as they may be re-used in later passes.
type piece struct {
	box             *boxtree.Box
	kind            fragment.Kind
	w, h            dimen.DU // border box
	margin          edges
	border, padding edges
	text            string
	kids            []placed
	oof             []pending // positioned descendants waiting for their containing block
	broken          bool      // not rendered
}

type placed struct {
	x, y dimen.DU
	p    *piece
}

// pending is a positioned box together with its static position.
type pending struct {
	box  *boxtree.Box
	x, y dimen.DU
}

func (p *piece) translate(dx, dy dimen.DU) []pending {
	if len(p.oof) == 0 {
		return nil
	}
	moved := make([]pending, len(p.oof))
	for i, o := range p.oof {
		moved[i] = pending{box: o.box, x: sum(o.x, dx), y: sum(o.y, dy)}
	}
	return moved
}

var fragmentKinds = map[boxtree.Kind]fragment.Kind{
	boxtree.BlockBox:         fragment.Block,
	boxtree.InlineBox:        fragment.Inline,
	boxtree.FlexBox:          fragment.Flex,
	boxtree.TableBox:         fragment.Table,
	boxtree.TableRowGroupBox: fragment.TableRowGroup,
	boxtree.TableRowBox:      fragment.TableRow,
	boxtree.TableCellBox:     fragment.TableCell,
	boxtree.ReplacedBox:      fragment.Replaced,
	boxtree.TextBox:          fragment.Text,
}

func kindOf(b *boxtree.Box) fragment.Kind {
	return fragmentKinds[b.Kind]
}

// --- Dispatch --------------------------------------------------------------

// layout lays out a box. Panics are contained: the box is marked as not
// rendered and the rest of the tree is laid out as usual.
func (lay *layouter) layout(w *tree.Worker, b *boxtree.Box, c constraints) (p *piece) {
	if c.depth > lay.opts.MaxDepth {
		lay.report(b, DepthExceeded, fmt.Sprintf("box nested deeper than %d levels", lay.opts.MaxDepth))
		return &piece{box: b, kind: kindOf(b), broken: true}
	}
	if lay.ctx.Err() != nil {
		return &piece{box: b, kind: kindOf(b)}
	}
	memo := c.memoizable()
	if memo {
		if v, ok := b.Memo(c.avail, c.cbH); ok {
			return v.(*piece)
		}
	}
	defer func() {
		if r := recover(); r != nil {
			lay.report(b, TaskFailed, fmt.Sprintf("layout panicked: %v", r))
			p = &piece{box: b, kind: kindOf(b), broken: true}
		}
	}()
	switch b.Kind {
	case boxtree.FlexBox:
		p = lay.layoutFlex(w, b, c)
	case boxtree.TableBox:
		p = lay.layoutTable(w, b, c)
	case boxtree.ReplacedBox:
		p = lay.layoutReplaced(b, c)
	case boxtree.TextBox:
		// text outside of inline content; the builder never produces it
		p = &piece{box: b, kind: fragment.Text, text: b.Text}
	default:
		p = lay.layoutBlock(w, b, c)
	}
	if memo && lay.ctx.Err() == nil {
		b.SetMemo(c.avail, c.cbH, p)
	}
	return p
}

// layoutRoot lays out the root box against the initial containing block,
// which has the size of the viewport.
func (lay *layouter) layoutRoot(w *tree.Worker, root *boxtree.Box) *piece {
	c := constraints{avail: lay.vw, cbW: lay.vw, cbH: lay.vh, forceW: indefinite, forceH: indefinite}
	p := lay.layout(w, root, c)
	if len(p.oof) == 0 {
		return p
	}
	icb := rect{x: -p.margin.left, y: -p.margin.top, w: lay.vw, h: lay.vh}
	q := *p
	q.kids = p.kids[:len(p.kids):len(p.kids)]
	q.oof = nil
	pend := p.oof
	for n := 0; len(pend) > 0 && n < lay.opts.MaxDepth; n++ {
		var next []pending
		for _, pl := range lay.placePositioned(w, pend, icb, c.depth+1) {
			q.kids = append(q.kids, pl)
			next = append(next, pl.p.translate(pl.x, pl.y)...)
		}
		pend = next
	}
	return &q
}
