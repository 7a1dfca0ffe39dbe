/*
Package engine runs styling and layout passes for a document.

An Engine owns the layout state of exactly one document: the slot table
holding computed styles, damage and boxes per node, the compiled selector
index, and the fragment snapshot of the last completed pass. Embedders
mutate the document through the dom package; the engine observes every
mutation, turns it into restyle hints and runs an incremental pass on the
next call to Reflow:

    doc, _ := dom.ParseString(markup)
    store := cssom.NewStore(douceuradapter.UserAgentSheet())
    eng, err := engine.New(doc, store, engine.WithWorkers(4))
    ...
    snap, err := eng.Reflow(ctx)

A pass proceeds in barriers: style resolution and damage classification,
box tree construction, intrinsic sizing, constraint resolution and
positioning. Each stage is a parallel traversal on the engine's worker
pool. Results become visible to queries only when a pass completes; a pass
overtaken by a document mutation or a style sheet change is discarded as a
whole and a fresh pass is started.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package engine

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'layoutcore.engine'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.engine")
}
