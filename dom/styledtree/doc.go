/*
Package styledtree holds the per-node data the engine keeps between passes.

Overview

Styling and layout need a place to put data for every DOM node: the
computed style of the current and of the previous pass, the restyle hint
and the damage, and the boxes the node generated. This is a side table,
indexed by the node's dom.NodeID, so the DOM itself is never touched.

Slots are created lazily during the first style pass for a node and torn
down when the node is detached from the document. The table performs no
locking: during a pass every slot is written only by the traversal task
owning the node. A pass works on its own copy of the table (see Next);
the copy replaces the table of the previous pass only if the pass
completes, so a superseded pass never leaves partial results behind.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package styledtree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'layoutcore.dom'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.dom")
}
