package cssom

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Origin is the origin of a style sheet.
type Origin uint8

// Origins of style sheets, in ascending order of precedence for normal
// declarations.
const (
	UserAgent Origin = iota
	User
	Author
)

func (o Origin) String() string {
	switch o {
	case UserAgent:
		return "user-agent"
	case User:
		return "user"
	case Author:
		return "author"
	}
	return fmt.Sprintf("origin(%d)", int(o))
}

// SheetID identifies a style sheet within a store.
type SheetID uint64

// Sheet is a style sheet together with its origin.
type Sheet struct {
	ID     SheetID
	Origin Origin
	StyleSheet
}

// Revision is an immutable set of style sheets. The order of sheets is
// the order of precedence for declarations of equal origin and
// specificity: later sheets win.
type Revision struct {
	Number uint64
	Sheets []Sheet
}

// Store holds the style sheets of a document. Every modification creates
// a new Revision. Clients read revisions concurrently, modifications are
// serialized.
type Store struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Revision]
	nextID  SheetID
}

// NewStore creates a store with a user-agent style sheet, which will be
// part of every revision. ua may be nil.
func NewStore(ua StyleSheet) *Store {
	s := &Store{nextID: 1}
	rev := &Revision{Number: 1}
	if ua != nil {
		rev.Sheets = []Sheet{{ID: s.nextID, Origin: UserAgent, StyleSheet: ua}}
		s.nextID++
	}
	s.current.Store(rev)
	return s
}

// Current returns the current revision.
func (s *Store) Current() *Revision {
	return s.current.Load()
}

// publish must be called with s.mu held.
func (s *Store) publish(sheets []Sheet) *Revision {
	rev := &Revision{Number: s.current.Load().Number + 1, Sheets: sheets}
	s.current.Store(rev)
	tracer().Debugf("style sheet store: published revision #%d with %d sheets", rev.Number, len(sheets))
	return rev
}

func (s *Store) uaSheets() []Sheet {
	var ua []Sheet
	for _, sh := range s.current.Load().Sheets {
		if sh.Origin == UserAgent {
			ua = append(ua, sh)
		}
	}
	return ua
}

// Add appends a style sheet and returns its ID.
func (s *Store) Add(origin Origin, sheet StyleSheet) SheetID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	old := s.current.Load().Sheets
	sheets := make([]Sheet, len(old), len(old)+1)
	copy(sheets, old)
	s.publish(append(sheets, Sheet{ID: id, Origin: origin, StyleSheet: sheet}))
	return id
}

// Remove removes a style sheet. It returns false if no sheet with the
// given ID is part of the current revision.
func (s *Store) Remove(id SheetID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.current.Load().Sheets
	sheets := make([]Sheet, 0, len(old))
	for _, sh := range old {
		if sh.ID != id {
			sheets = append(sheets, sh)
		}
	}
	if len(sheets) == len(old) {
		return false
	}
	s.publish(sheets)
	return true
}

// Replace replaces all user and author sheets. IDs of the given sheets
// are ignored and re-assigned; the new revision is returned.
func (s *Store) Replace(sheets ...Sheet) *Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.uaSheets()
	for _, sh := range sheets {
		sh.ID = s.nextID
		s.nextID++
		all = append(all, sh)
	}
	return s.publish(all)
}
