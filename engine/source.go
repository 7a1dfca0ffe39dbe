package engine

import (
	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/styledtree"
	"github.com/npillmayer/layoutcore/frame/boxtree"
)

// source serves a styled document to the box tree builder. Boxes of slots
// which are not dirty are handed back for re-use.
type source struct {
	doc   *dom.Document
	table *styledtree.Table
}

var _ boxtree.Source = (*source)(nil)

func (src *source) Root() dom.NodeID { return src.doc.Root() }

// Children leaves out elements which have not been styled successfully.
func (src *source) Children(id dom.NodeID) []dom.NodeID {
	kids := src.doc.Children(id)
	var filtered []dom.NodeID
	for i, c := range kids {
		slot := src.table.Get(c)
		if slot != nil && slot.Style != nil && !slot.Invalid {
			if filtered != nil {
				filtered = append(filtered, c)
			}
			continue
		}
		if filtered == nil {
			filtered = append(make([]dom.NodeID, 0, len(kids)), kids[:i]...)
		}
	}
	if filtered == nil {
		return kids
	}
	return filtered
}

func (src *source) Tag(id dom.NodeID) string                      { return src.doc.Tag(id) }
func (src *source) Text(id dom.NodeID) (string, bool)             { return src.doc.Text(id) }
func (src *source) Attr(id dom.NodeID, key string) (string, bool) { return src.doc.Attr(id, key) }

func (src *source) Style(id dom.NodeID) *style.ComputedStyle {
	if slot := src.table.Get(id); slot != nil {
		return slot.Style
	}
	return nil
}

func (src *source) Reusable(id dom.NodeID) ([]*boxtree.Box, bool) {
	slot := src.table.Get(id)
	if slot == nil || slot.Dirty || slot.Invalid || slot.Boxes == nil {
		return nil, false
	}
	return slot.Boxes, true
}

// Built records the boxes of a node. A node generating no boxes records an
// empty, non-nil list, which makes it re-usable as well.
func (src *source) Built(id dom.NodeID, boxes []*boxtree.Box) {
	if boxes == nil {
		boxes = []*boxtree.Box{}
	}
	if slot := src.table.Get(id); slot != nil {
		slot.Boxes = boxes
	}
}
