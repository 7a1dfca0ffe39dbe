/*
Package dom provides read access to the element tree consumed by the
styling and layout core, together with a mutation API for embedders.

Overview

Markup parsing is not part of the core. Documents are parsed with
golang.org/x/net/html and wrapped into a Document. A Document assigns a
stable NodeID to every element and text node, which the core uses to key
its side tables (see package styledtree). IDs are never re-used within a
document, even if nodes are removed.

The core never mutates the element tree. Embedders (script engines, editors,
tests) do, using the mutation methods of Document. Every mutation takes the
document's write lock and is reported to registered Observers as a
Mutation value. Style and box-tree passes read the document while holding
the read lock.

Tree Implementation

The structure of the element tree is mirrored in a tree.Arena, which stores
parent/children relationships by ID. Parents own their children, children
keep a weak ID of their parent.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package dom

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer will return a tracer. We are tracing to 'layoutcore.dom'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.dom")
}
