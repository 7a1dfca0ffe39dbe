/*
Package boxtree builds the tree of boxes for a styled document.

Every element generates zero or more boxes, depending on its computed
'display' value. The kind of a box determines the formatting context its
children take part in:

    display                      box kind          children
    ------------------------------------------------------------------
    none                         –                 –
    contents                     –                 hoisted to the parent
    block, flow-root, list-item  BlockBox          block or inline content
    inline-block                 BlockBox, inline  block or inline content
    inline                       InlineBox         inline content
    flex, inline-flex            FlexBox           flex items
    table, inline-table          TableBox          row groups
    table-row-group (…)          TableRowGroupBox  rows
    table-row                    TableRowBox       cells
    table-cell                   TableCellBox      block or inline content

Replaced elements (images, form controls and the like) generate a single
ReplacedBox, their children are ignored. Text generates TextBoxes; a
line break element generates a text box holding a preserved line feed.

The builder fixes up structures which would violate the rules of their
formatting context by inserting anonymous boxes: runs of inline-level
content next to block-level boxes are wrapped into anonymous blocks, text
within a flex container becomes an anonymous flex item, and missing table
structure boxes are synthesized.

Box trees are built bottom-up and in parallel. Subtrees which did not
change since the previous pass are re-used as they are, including the
layout information cached on them.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package boxtree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'layoutcore.frame'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.frame")
}
