/*
Package selector matches style rules against DOM elements.

For every revision of a style sheet store an Index is compiled once. The
index holds every (selector, declaration block) pair of the revision as an
immutable Rule. Rules are distributed into candidate buckets, keyed by
the rightmost compound selector: by id if the compound has an id, else by
its first class, else by its tag name. All other rules go to the universal
bucket. Matching an element tests only the rules of the buckets the
element can fall into.

Selectors are compiled with cascadia. Declaration blocks are expanded
(shortcut properties are split into their components) and validated
during compilation; invalid declarations are dropped and never reach the
cascade.

An Index is never modified after compilation and may be used by any
number of goroutines concurrently.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package selector

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'layoutcore.style'.
func tracer() tracing.Trace {
	return tracing.Select("layoutcore.style")
}
