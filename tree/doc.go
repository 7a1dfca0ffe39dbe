/*
Package tree implements tree storage and parallel tree traversal.

Styling and layout of HTML/CSS involves a lot of operations on different
trees: the element tree, the box tree and the fragment tree. This package
offers two things for them:

An Arena is an index-based tree store. Parents own their children by index,
children keep a weak index of their parent. Nodes are addressed by a stable
ID, which is never re-used within one arena. Arenas perform no locking;
exclusive access to a node is the job of the traversal which hands out
nodes to workers.

A Pool is a fixed-size set of worker goroutines which process fork-join
tasks by work-stealing. Every worker owns a deque of tasks; idle workers
steal from the top of other workers' deques. A worker waiting at a join
point keeps on executing tasks until the join is complete, thus no worker
idles as long as there is work left.

Traversals

On top of the pool we support three kinds of walks:

   TopDown(…)    // pre-order: parents before children, a value flows downwards
   BottomUp(…)   // post-order: children before parents, results return at the join
   ForkJoin(…)   // fork n tasks from within a task and collect their results

Traversals never hand overlapping subtrees to concurrently running tasks.
This is the invariant which makes per-node data safe to access without
locks. Small subtrees are processed inline (sequential cutoff) and leaf
children are batched to reduce per-task overhead.

A panic within a visit is contained: it is converted to a *TaskError, the
subtree of the failing node is skipped and the error is reported to the
traversal's failure callback. Sibling subtrees are not affected.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'layoutcore.tree'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.tree")
}
