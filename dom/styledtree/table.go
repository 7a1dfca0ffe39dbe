package styledtree

import (
	"fmt"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/restyle"
	"github.com/npillmayer/layoutcore/frame/boxtree"
)

// Slot is the layout data of a single DOM node.
type Slot struct {
	Prev    *style.ComputedStyle // style of the previous completed pass
	Style   *style.ComputedStyle // style of the current pass
	Hint    restyle.Hint
	Damage  restyle.Damage
	Boxes   []*boxtree.Box // boxes generated by the node
	Dirty   bool           // boxes of the node have to be rebuilt
	Invalid bool           // processing of the node failed in the current pass
	live    bool
}

// Principal returns the principal box of the node, if any.
func (s *Slot) Principal(id dom.NodeID) *boxtree.Box {
	for _, b := range s.Boxes {
		if b.Node == id {
			return b
		}
	}
	return nil
}

// Table is the side table of slots, indexed by node ID.
type Table struct {
	slots []Slot
	pass  uint64
	count int
}

// NewTable creates an empty table for pass 0.
func NewTable() *Table {
	return &Table{}
}

// Pass returns the number of the pass the table belongs to.
func (t *Table) Pass() uint64 {
	return t.pass
}

// Len returns the number of live slots, as counted by the last call to
// Seal.
func (t *Table) Len() int {
	return t.count
}

// Grow makes room for slots up to and including maxID. Grow must not be
// called concurrently with any other method.
func (t *Table) Grow(maxID dom.NodeID) {
	if int(maxID) < len(t.slots) {
		return
	}
	slots := make([]Slot, int(maxID)+1, 2*(int(maxID)+1))
	copy(slots, t.slots)
	t.slots = slots
}

// Get returns the slot of a node, or nil if the node has none.
func (t *Table) Get(id dom.NodeID) *Slot {
	if int(id) >= len(t.slots) || !t.slots[id].live {
		return nil
	}
	return &t.slots[id]
}

// Ensure returns the slot of a node, creating it if necessary. The table
// must have been grown to hold id. Ensure may be called concurrently for
// different nodes.
func (t *Table) Ensure(id dom.NodeID) *Slot {
	if int(id) >= len(t.slots) {
		panic(fmt.Sprintf("styledtree: slot %d out of range, table not grown", id))
	}
	s := &t.slots[id]
	if !s.live {
		*s = Slot{live: true, Dirty: true}
	}
	return s
}

// Detach tears down the slots of nodes which have been removed from the
// document.
func (t *Table) Detach(ids ...dom.NodeID) {
	for _, id := range ids {
		if s := t.Get(id); s != nil {
			*s = Slot{}
		}
	}
}

// Next creates the table for the following pass. The styles of t become
// the previous styles; hints, damage and failure marks are reset.
func (t *Table) Next() *Table {
	next := &Table{slots: make([]Slot, len(t.slots), cap(t.slots)), pass: t.pass + 1}
	copy(next.slots, t.slots)
	for i := range next.slots {
		s := &next.slots[i]
		if !s.live {
			continue
		}
		s.Prev = s.Style
		s.Hint, s.Damage = 0, 0
		s.Dirty, s.Invalid = false, false
	}
	return next
}

// Seal counts the live slots after a pass. It must be called before the
// table is published.
func (t *Table) Seal() {
	t.count = 0
	for i := range t.slots {
		if t.slots[i].live {
			t.count++
		}
	}
	tracer().Debugf("slot table of pass %d sealed with %d slots", t.pass, t.count)
}

// Each calls f for every live slot, in order of node IDs.
func (t *Table) Each(f func(dom.NodeID, *Slot)) {
	for i := range t.slots {
		if t.slots[i].live {
			f(dom.NodeID(i), &t.slots[i])
		}
	}
}
