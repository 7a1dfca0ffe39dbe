package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
)

// ID identifies a node within an Arena. IDs are assigned in ascending order
// and never re-used.
type ID uint32

// None is the ID of no node. It is the parent ID of a root node.
const None ID = 0

// ErrNoSuchNode is returned for operations on IDs which are not (or no longer)
// part of an arena.
var ErrNoSuchNode = errors.New("no such node in tree arena")

/*
We manage a tree of nodes in a slice. Every slot carries a payload of type
parameter T. Parents hold the IDs of their children, children hold a weak
ID of their parent. There are no pointers between slots, therefore no
reference cycles.
*/

// Arena is the base type our trees are built of.
//
// Arena is not safe for concurrent modification. Concurrent reads are fine,
// as are concurrent writes to the payloads of distinct nodes.
type Arena[T any] struct {
	slots []slot[T] // slots[0] is unused
	count int       // number of live nodes
}

type slot[T any] struct {
	payload  T
	parent   ID
	children []ID
	live     bool
}

// NewArena creates an empty arena with room for capacity nodes.
func NewArena[T any](capacity int) *Arena[T] {
	if capacity < 1 {
		capacity = 16
	}
	return &Arena[T]{slots: make([]slot[T], 1, capacity+1)}
}

func (a *Arena[T]) String() string {
	return fmt.Sprintf("(Arena #nodes=%d cap=%d)", a.count, len(a.slots)-1)
}

// Len returns the number of live nodes.
func (a *Arena[T]) Len() int {
	return a.count
}

// MaxID returns the highest ID ever assigned. Clients may use it to size
// side tables indexed by ID.
func (a *Arena[T]) MaxID() ID {
	return ID(len(a.slots) - 1)
}

// Contains is a predicate: is id a live node of the arena?
func (a *Arena[T]) Contains(id ID) bool {
	return id != None && int(id) < len(a.slots) && a.slots[id].live
}

// Add creates a new node carrying payload and appends it to the children of
// parent. With parent = None a new root is created.
func (a *Arena[T]) Add(parent ID, payload T) (ID, error) {
	return a.InsertBefore(parent, None, payload)
}

// InsertBefore creates a new node carrying payload and inserts it into the
// children of parent, in front of child before. If before is None, the node
// will be appended.
func (a *Arena[T]) InsertBefore(parent ID, before ID, payload T) (ID, error) {
	if parent != None && !a.Contains(parent) {
		return None, ErrNoSuchNode
	}
	id := ID(len(a.slots))
	a.slots = append(a.slots, slot[T]{payload: payload, parent: parent, live: true})
	a.count++
	if parent == None {
		return id, nil
	}
	p := &a.slots[parent]
	pos := len(p.children)
	if before != None {
		if pos = a.IndexOfChild(parent, before); pos < 0 {
			pos = len(p.children)
		}
	}
	p.children = append(p.children, None) // make room for one child
	copy(p.children[pos+1:], p.children[pos:])
	p.children[pos] = id
	return id, nil
}

// Remove detaches node id from its parent and frees id together with all of
// its descendants. It returns the freed IDs in pre-order.
func (a *Arena[T]) Remove(id ID) ([]ID, error) {
	if !a.Contains(id) {
		return nil, ErrNoSuchNode
	}
	if p := a.slots[id].parent; p != None {
		if i := a.IndexOfChild(p, id); i >= 0 {
			ch := a.slots[p].children
			a.slots[p].children = append(ch[:i:i], ch[i+1:]...)
		}
	}
	var freed []ID
	var free func(ID)
	free = func(n ID) {
		freed = append(freed, n)
		for _, ch := range a.slots[n].children {
			free(ch)
		}
		var zero T
		a.slots[n] = slot[T]{payload: zero}
		a.count--
	}
	free(id)
	return freed, nil
}

// Payload returns the payload of a node.
func (a *Arena[T]) Payload(id ID) (T, bool) {
	if !a.Contains(id) {
		var zero T
		return zero, false
	}
	return a.slots[id].payload, true
}

// SetPayload replaces the payload of a node.
func (a *Arena[T]) SetPayload(id ID, payload T) error {
	if !a.Contains(id) {
		return ErrNoSuchNode
	}
	a.slots[id].payload = payload
	return nil
}

// Parent returns the parent of a node, or None for a root node.
func (a *Arena[T]) Parent(id ID) ID {
	if !a.Contains(id) {
		return None
	}
	return a.slots[id].parent
}

// Children returns the children of a node. The slice is owned by the arena
// and must not be modified by clients.
func (a *Arena[T]) Children(id ID) []ID {
	if !a.Contains(id) {
		return nil
	}
	return a.slots[id].children
}

// ChildCount returns the number of children of a node.
func (a *Arena[T]) ChildCount(id ID) int {
	return len(a.Children(id))
}

// IndexOfChild returns the position of child within the children of parent,
// or -1.
func (a *Arena[T]) IndexOfChild(parent, child ID) int {
	for i, ch := range a.Children(parent) {
		if ch == child {
			return i
		}
	}
	return -1
}

// Ancestors calls f for every ancestor of id, starting with its parent,
// until f returns false.
func (a *Arena[T]) Ancestors(id ID, f func(ID) bool) {
	for p := a.Parent(id); p != None; p = a.Parent(p) {
		if !f(p) {
			return
		}
	}
}
