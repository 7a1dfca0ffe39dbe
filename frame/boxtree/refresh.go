package boxtree

import (
	"github.com/npillmayer/layoutcore/dom/style"
)

// Drop tells which layout caches Refresh drops.
type Drop uint8

// Cache drops, in increasing order.
const (
	KeepCaches   Drop = iota
	DropLayout        // memoized layout only
	DropIntrinsic     // memoized layout and intrinsic sizes
)

// structural lists the properties the shape of the box tree depends on.
var structural = []string{"display", "position", "float", "white-space"}

// Structural is true if the boxes generated for an element with style
// old would differ in shape from the boxes generated with style new.
// Boxes of a node without a structural change may be refreshed in place.
func Structural(old, new *style.ComputedStyle) bool {
	if old == nil || new == nil {
		return old != new
	}
	for _, key := range structural {
		if old.Get(key) != new.Get(key) {
			return true
		}
	}
	return false
}

// Refresh updates the boxes a node generated in an earlier pass, without
// changing their shape. owned reports the boxes belonging to the node:
// its principal box and continuations, its text and the anonymous boxes
// created for it. The walk does not enter boxes of other nodes.
//
// If s is not nil, owned boxes take s as their style; anonymous boxes
// inherit from s. drop selects the caches dropped for every owned box.
//
// Refresh must only be called by the task owning the node.
func Refresh(boxes []*Box, s *style.ComputedStyle, owned func(*Box) bool, drop Drop) {
	for _, b := range boxes {
		if owned(b) {
			refresh(b, s, owned, drop)
		}
	}
}

func refresh(b *Box, s *style.ComputedStyle, owned func(*Box) bool, drop Drop) {
	if s != nil {
		if b.Anonymous {
			b.Style = anonymousStyle(s, b.Style.Get("display").String())
		} else {
			b.Style = s
		}
	}
	switch drop {
	case DropLayout:
		b.DropMemo()
	case DropIntrinsic:
		b.Invalidate()
	}
	for _, c := range b.Children {
		if owned(c) {
			refresh(c, s, owned, drop)
		}
	}
}
