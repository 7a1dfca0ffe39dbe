package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
	"github.com/npillmayer/layoutcore/dom/style/restyle"
	"github.com/npillmayer/layoutcore/dom/style/selector"
	"github.com/npillmayer/layoutcore/dom/styledtree"
	"github.com/npillmayer/layoutcore/frame/fragment"
	"github.com/npillmayer/layoutcore/frame/layout"
	"github.com/npillmayer/layoutcore/tree"
)

// Errors returned by an engine.
var (
	ErrNoDocument = errors.New("engine: no document")
	ErrNoStore    = errors.New("engine: no style sheet store")
	ErrClosed     = errors.New("engine: closed")
	// ErrSuperseded is returned by Reflow if every attempt to complete a
	// pass was overtaken by changes of the document or its style sheets.
	ErrSuperseded = errors.New("engine: pass superseded")
)

// DefaultMaxRetries is the number of times Reflow restarts a superseded
// pass before giving up.
const DefaultMaxRetries = 8

// Options configure an engine.
type Options struct {
	Workers    int // size of the worker pool; see tree.WorkerCount
	Threshold  int // sequential cutoff for traversals; see tree.Traversal
	LeafBatch  int // leaf siblings per task; see tree.Traversal
	MaxDepth   int // boxes nested deeper are not rendered
	MaxRetries int
	Viewport   css.Viewport
	Damage     restyle.Sets   // property sets for damage classification
	Metrics    layout.Metrics // text measurement
	Reporter   Reporter       // defaults to logging with zap
	Pool       *tree.Pool     // shared pool; the engine will not close it

	beforePublish func() // test hook
}

// Option sets a configuration value.
type Option func(*Options)

// WithWorkers sets the number of workers of the engine's pool.
func WithWorkers(n int) Option { return func(o *Options) { o.Workers = n } }

// WithThreshold sets the sequential cutoff of the parallel traversals.
func WithThreshold(n int) Option { return func(o *Options) { o.Threshold = n } }

// WithLeafBatch sets the number of leaf siblings processed by one task.
func WithLeafBatch(n int) Option { return func(o *Options) { o.LeafBatch = n } }

// WithMaxDepth sets the nesting depth beyond which boxes are not rendered.
func WithMaxDepth(n int) Option { return func(o *Options) { o.MaxDepth = n } }

// WithMaxRetries sets how often a superseded pass is restarted.
func WithMaxRetries(n int) Option { return func(o *Options) { o.MaxRetries = n } }

// WithViewport sets the viewport documents are laid out for.
func WithViewport(v css.Viewport) Option { return func(o *Options) { o.Viewport = v } }

// WithDamageSets configures damage classification.
func WithDamageSets(sets restyle.Sets) Option { return func(o *Options) { o.Damage = sets } }

// WithMetrics sets the text measurement.
func WithMetrics(m layout.Metrics) Option { return func(o *Options) { o.Metrics = m } }

// WithReporter sets the receiver of diagnostics.
func WithReporter(r Reporter) Option { return func(o *Options) { o.Reporter = r } }

// WithPool lets the engine share a worker pool with others.
func WithPool(p *tree.Pool) Option { return func(o *Options) { o.Pool = p } }

// WithOptions replaces all options at once, e.g. with a set loaded from
// configuration.
func WithOptions(opts Options) Option { return func(o *Options) { *o = opts } }

// published is the result of a completed pass.
type published struct {
	table *styledtree.Table
	snap  *fragment.Snapshot
	index *selector.Index
}

// Engine lays out a single document. Reflow calls are serialized; queries
// may be issued concurrently with a running pass and always see the last
// completed pass.
type Engine struct {
	id         uuid.UUID
	doc        *dom.Document
	store      *cssom.Store
	opts       Options
	pool       *tree.Pool
	ownPool    bool
	classifier *restyle.Classifier
	run        sync.Mutex // serializes passes
	closed     atomic.Bool
	last       atomic.Pointer[published]

	mu      sync.Mutex // guards the fields below; acquired after the document lock
	gen     uint64     // incremented with every mutation
	hints   map[dom.NodeID]restyle.Hint
	removed []dom.NodeID
	index   *selector.Index // index used for mapping mutations to hints
}

// New creates an engine for a document and registers it as an observer of
// the document's mutations.
func New(doc *dom.Document, store *cssom.Store, opts ...Option) (*Engine, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if store == nil {
		return nil, ErrNoStore
	}
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Viewport.Width <= 0 || o.Viewport.Height <= 0 {
		o.Viewport = css.DefaultViewport
	}
	if o.Metrics == nil {
		o.Metrics = layout.NewBasicMetrics()
	}
	if o.Reporter == nil {
		o.Reporter = logReporter{}
	}
	sets := o.Damage
	if sets.ReflowAncestors == nil && sets.ReflowSubtree == nil && sets.Reconstruct == nil {
		sets = restyle.DefaultSets()
	}
	e := &Engine{
		id:         uuid.New(),
		doc:        doc,
		store:      store,
		opts:       o,
		pool:       o.Pool,
		classifier: restyle.NewClassifier(sets),
		hints:      make(map[dom.NodeID]restyle.Hint),
	}
	if e.pool == nil {
		e.pool = tree.NewPool(o.Workers)
		e.ownPool = true
	}
	doc.Observe(e)
	tracer().Debugf("engine %s created with %d workers", e.id, e.pool.Size())
	return e, nil
}

// ID returns the identity of the engine's document, as recorded in its
// snapshots.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Close stops the engine. It waits for a running pass to finish and stops
// the worker pool, if the engine owns it. Queries keep answering from the
// last completed pass.
func (e *Engine) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.run.Lock()
	defer e.run.Unlock()
	if e.ownPool {
		e.pool.Close()
	}
	tracer().Debugf("engine %s closed", e.id)
}

// Mutated implements dom.Observer. It is called with the document
// write-locked.
func (e *Engine) Mutated(m dom.Mutation) {
	if e.closed.Load() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, inv := range restyle.HintForMutation(m, e.index) {
		e.hints[inv.Node] |= inv.Hint
	}
	if m.Kind == dom.NodeRemoved {
		e.removed = append(e.removed, m.Removed...)
		for _, id := range m.Removed {
			delete(e.hints, id)
		}
	}
	e.gen++
	tracer().Debugf("engine %s: %v, generation %d", e.id, m, e.gen)
}

// requeue merges hints of an unsuccessful pass back into the pending set.
func (e *Engine) requeue(hints map[dom.NodeID]restyle.Hint, removed []dom.NodeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, h := range hints {
		e.hints[id] |= h
	}
	e.removed = append(e.removed, removed...)
}

// Reflow brings the layout of the document up to date and returns the
// resulting snapshot. If nothing changed since the last pass, the pass
// re-uses all boxes and layout results.
//
// Reflow returns ctx.Err() if ctx ends before a pass completes, ErrClosed
// after Close and ErrSuperseded if the document kept changing during every
// attempt.
func (e *Engine) Reflow(ctx context.Context) (*fragment.Snapshot, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	e.run.Lock()
	defer e.run.Unlock()
	if e.closed.Load() {
		return nil, ErrClosed
	}
	for attempt := 0; attempt < e.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.doc.RLock()
		p := e.begin()
		res, err := p.run(ctx)
		if err != nil {
			e.requeue(p.hints, p.removed)
			return nil, err
		}
		if e.publish(p, res) {
			p.deliver()
			return res.snap, nil
		}
		tracer().Infof("engine %s: pass %d superseded, restarting", e.id, p.table.Pass())
		e.requeue(p.hints, p.removed)
	}
	return nil, ErrSuperseded
}

// publish makes the result of a pass visible, unless the document or the
// style sheets changed since the pass started.
func (e *Engine) publish(p *pass, res *published) bool {
	if e.opts.beforePublish != nil {
		e.opts.beforePublish()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != p.gen || e.store.Current().Number != p.rev.Number {
		return false
	}
	res.table.Seal()
	e.last.Store(res)
	e.index = res.index
	for id, h := range p.failed {
		e.hints[id] |= h
	}
	tracer().Debugf("engine %s: published pass %d", e.id, res.table.Pass())
	return true
}

// --- Queries ---------------------------------------------------------------

// Pass returns the number of the last completed pass, 0 if there is none.
func (e *Engine) Pass() uint64 {
	if last := e.last.Load(); last != nil {
		return last.table.Pass()
	}
	return 0
}

// Snapshot returns the fragment tree of the last completed pass, or nil.
func (e *Engine) Snapshot() *fragment.Snapshot {
	if last := e.last.Load(); last != nil {
		return last.snap
	}
	return nil
}

// ComputedStyle returns the computed style of a node in the last completed
// pass. Text nodes report the style of their parent element.
func (e *Engine) ComputedStyle(id dom.NodeID) (*style.ComputedStyle, bool) {
	if slot := e.slot(id); slot != nil && slot.Style != nil {
		return slot.Style, true
	}
	return nil, false
}

// Damage returns the damage a node took in the last completed pass.
func (e *Engine) Damage(id dom.NodeID) restyle.Damage {
	if slot := e.slot(id); slot != nil {
		return slot.Damage
	}
	return 0
}

// HitTest returns the topmost fragment of the last completed pass
// containing the point (x, y), in CSS pixels.
func (e *Engine) HitTest(x, y float64) (*fragment.Fragment, bool) {
	snap := e.Snapshot()
	if snap == nil {
		return nil, false
	}
	return snap.HitTest(x, y)
}

func (e *Engine) slot(id dom.NodeID) *styledtree.Slot {
	last := e.last.Load()
	if last == nil {
		return nil
	}
	return last.table.Get(id)
}
