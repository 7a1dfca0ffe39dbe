package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"context"
	"errors"
)

// ErrEmptyTree is returned if a traversal is started without a way to find
// the children of a node.
var ErrEmptyTree = errors.New("cannot walk tree without children function")

// Default values for the sequential cutoff of traversals.
const (
	DefaultThreshold = 32 // subtrees smaller than this are processed inline
	DefaultLeafBatch = 16 // number of leaf siblings processed by a single task
)

// Traversal describes the shape of a tree to walk and the granularity of
// the tasks to create. N is the type of the tree nodes.
type Traversal[N any] struct {
	Children  func(N) []N    // children of a node, in order
	Size      func(N) int    // estimated number of nodes of a subtree; nil = unknown
	Threshold int            // subtrees smaller than Threshold are not split into tasks
	LeafBatch int            // maximum number of leaf siblings per task
	OnError   func(N, error) // called for every failing node; its subtree is skipped
}

func (tr *Traversal[N]) normalize() error {
	if tr.Children == nil {
		return ErrEmptyTree
	}
	if tr.Threshold <= 0 {
		tr.Threshold = DefaultThreshold
	}
	if tr.LeafBatch <= 0 {
		tr.LeafBatch = DefaultLeafBatch
	}
	return nil
}

func (tr *Traversal[N]) failed(n N, err error) {
	tracer().Errorf("tree traversal: node failed: %v", err)
	if tr.OnError != nil {
		tr.OnError(n, err)
	}
}

// sequential decides whether the children of a node will be processed inline
// on the current worker.
func (tr *Traversal[N]) sequential(w *Worker, n N, kids []N) bool {
	if w == nil || len(kids) < 2 {
		return true
	}
	return tr.Size != nil && tr.Size(n) < tr.Threshold
}

// batches groups children into units of work: inner nodes are processed one
// per task, consecutive leaves are batched.
func (tr *Traversal[N]) batches(kids []N) [][]N {
	var groups [][]N
	var leaves []N
	for _, k := range kids {
		if len(tr.Children(k)) > 0 {
			if len(leaves) > 0 {
				groups = append(groups, leaves)
				leaves = nil
			}
			groups = append(groups, []N{k})
			continue
		}
		leaves = append(leaves, k)
		if len(leaves) == tr.LeafBatch {
			groups = append(groups, leaves)
			leaves = nil
		}
	}
	if len(leaves) > 0 {
		groups = append(groups, leaves)
	}
	return groups
}

// --- Top down --------------------------------------------------------------

// Action is a function type to operate on tree nodes during a TopDown walk.
// It receives the value handed down from the parent and returns the value
// for its children. If descend is false, the children are not visited.
type Action[N, C any] func(w *Worker, n N, c C) (down C, descend bool, err error)

// TopDown traverses a tree starting at (and including) the root node.
// The traversal guarantees that parents are always processed before
// their children; siblings are processed concurrently.
//
// If the action returns an error or panics for a node, descending the branch
// below this node is aborted and the error is reported to tr.OnError.
// TopDown returns an error only if ctx has been cancelled or tr is invalid.
//
// If p is nil, the walk is performed sequentially on the calling goroutine.
func TopDown[N, C any](ctx context.Context, p *Pool, root N, c C, tr Traversal[N], action Action[N, C]) error {
	if err := tr.normalize(); err != nil {
		return err
	}
	var walk func(w *Worker, n N, c C)
	walk = func(w *Worker, n N, c C) {
		if ctx.Err() != nil {
			return
		}
		var down C
		var descend bool
		err := protect(func() (err error) {
			down, descend, err = action(w, n, c)
			return
		})
		if err != nil {
			tr.failed(n, err)
			return
		}
		if !descend {
			return
		}
		kids := tr.Children(n)
		if tr.sequential(w, n, kids) {
			for _, k := range kids {
				walk(w, k, down)
			}
			return
		}
		ForkJoin(w, tr.batches(kids), func(w *Worker, group []N) struct{} {
			for _, k := range group {
				walk(w, k, down)
			}
			return struct{}{}
		})
	}
	if p == nil {
		walk(nil, root, c)
	} else if err := p.Run(func(w *Worker) { walk(w, root, c) }); err != nil {
		return err
	}
	return ctx.Err()
}

// --- Bottom up -------------------------------------------------------------

// Combinator is a function type to operate on tree nodes during a BottomUp
// walk. It receives the results of the node's children (in order) and
// returns the result for the node itself. Results of failed children are
// zero values.
type Combinator[N, R any] func(w *Worker, n N, children []R) (R, error)

// BottomUp traverses a tree in post-order: children are always processed
// before their parent, siblings are processed concurrently. The result of
// the root node is returned.
//
// Errors and panics of a node are reported to tr.OnError and the node's result
// is the zero value of R. BottomUp returns an error for a failing root node,
// for a cancelled ctx and for an invalid traversal.
//
// If p is nil, the walk is performed sequentially on the calling goroutine.
func BottomUp[N, R any](ctx context.Context, p *Pool, root N, tr Traversal[N], combine Combinator[N, R]) (R, error) {
	var zero R
	if err := tr.normalize(); err != nil {
		return zero, err
	}
	var walk func(w *Worker, n N) (R, error)
	walk = func(w *Worker, n N) (R, error) {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		kids := tr.Children(n)
		results := make([]R, len(kids))
		if tr.sequential(w, n, kids) {
			for i, k := range kids {
				results[i], _ = walk(w, k)
			}
		} else {
			groups := tr.batches(kids)
			sub := ForkJoin(w, groups, func(w *Worker, group []N) []R {
				rs := make([]R, len(group))
				for i, k := range group {
					rs[i], _ = walk(w, k)
				}
				return rs
			})
			i := 0
			for _, rs := range sub {
				i += copy(results[i:], rs)
			}
		}
		var r R
		err := protect(func() (err error) {
			r, err = combine(w, n, results)
			return
		})
		if err != nil {
			tr.failed(n, err)
			return zero, err
		}
		return r, nil
	}
	var result R
	var rootErr error
	if p == nil {
		result, rootErr = walk(nil, root)
	} else if err := p.Run(func(w *Worker) { result, rootErr = walk(w, root) }); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return result, rootErr
}

// --- Fork / join -----------------------------------------------------------

// ForkJoin calls f for every item, concurrently if w is a pool worker, and
// returns the results in the order of items. The first item is processed
// by the calling worker itself.
//
// A panic within f is not contained here but propagates into the caller's
// task; clients wanting containment per item wrap f themselves.
func ForkJoin[I, R any](w *Worker, items []I, f func(w *Worker, item I) R) []R {
	results := make([]R, len(items))
	if w == nil || len(items) < 2 {
		for i, item := range items {
			results[i] = f(w, item)
		}
		return results
	}
	var j Join
	for i := len(items) - 1; i > 0; i-- {
		i := i
		w.Spawn(&j, func(x *Worker) {
			results[i] = f(x, items[i])
		})
	}
	first := protect(func() error {
		results[0] = f(w, items[0])
		return nil
	})
	rest := w.Wait(&j) // always join, even if the first item failed
	if first != nil {
		panic(first)
	}
	if rest != nil {
		panic(rest)
	}
	return results
}
