/*
Package layout computes the geometry of a box tree.

Layout runs in three stages, each of them a parallel traversal of the box
tree:

1. Intrinsic sizing (bottom-up): the min-content and max-content widths of
every box. Results are cached on the box and survive as long as the box
is re-used by the box tree builder.

2. Constraint resolution (top-down): every box receives the size of its
containing block from its parent, computes its used width, lays out its
children and finally determines its used height. Children which do not
depend on each other, e.g. the block-level children of a block container
or the cells of a table, are laid out in parallel. The result of a box is
a piece: its size plus the offsets of its children relative to its own
border box. Pieces are cached on the box together with the constraints
they have been computed for.

3. Positioning (top-down): pieces are translated into absolute fragments.
Paint references (colors, visibility) are taken from the current styles
at this point, so a change of a color never requires stages 1 and 2.

Formatting contexts are dispatched on the kind of a box: block flow,
inline flow, flex, table and replaced content. Floats and absolutely
positioned boxes are collected while their containing block is laid out
and placed as soon as its size is known.

Geometry is computed in design units (dimen.DU). Sizes are clamped to
[0, css.MaxLength] at the boundaries of formatting contexts; boxes nested
deeper than the configured maximum depth are not laid out but reported.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package layout

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'layoutcore.frame'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.frame")
}
