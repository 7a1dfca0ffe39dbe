/*
Package fragment holds the result of layout: an immutable tree of
positioned fragments.

Every box of the box tree produces one or more fragments. Block-level boxes
produce exactly one; inline boxes produce one fragment per line they span,
and text produces one fragment per line segment. Geometry is absolute, in
CSS pixels, relative to the top left corner of the initial containing
block.

A Snapshot bundles the fragment tree of a completed pass with the pass
number and the identity of the document. Snapshots are never modified
after publication, so they may be handed to painting and hit testing on
any goroutine.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fragment

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'layoutcore.frame'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.frame")
}
