/*
Package style implements computed styles for DOM nodes.

Overview

CSS knows a whole lot of properties. We split them up into organisational
groups (margins, padding, border, dimension, …). A computed style is an
immutable array of property groups, one per group. Groups are immutable
as well and are shared between styles wherever possible: a style which
does not set any property of an inherited group shares the group with its
parent's style, a style which does not set any property of a non-inherited
group shares the group with the initial style.

Every property known to the engine is described in a registry
(see Lookup), which knows about the property's group, its initial value,
wether it is inherited and wether it affects layout.

Property values are stored as strings. Computed values (see package css)
are canonical strings, e.g. lengths are always given in pixels.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package style

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer will return a tracer. We are tracing to 'layoutcore.style'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.style")
}
