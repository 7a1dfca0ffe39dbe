package restyle

import (
	"strings"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/selector"
)

// Hint tells the style traversal which parts of the tree have to be
// visited.
type Hint uint8

// Restyle hints.
const (
	RestyleSelf          Hint = 1 << iota // recompute the element's style
	RestyleSubtree                        // recompute the styles of all descendants
	RestyleLaterSiblings                  // recompute the styles of the following siblings
	ReconstructSubtree                    // rebuild the boxes of the element's subtree
)

func (h Hint) String() string {
	if h == 0 {
		return "none"
	}
	var flags []string
	for i, name := range []string{"self", "subtree", "later-siblings", "reconstruct"} {
		if h&(1<<i) != 0 {
			flags = append(flags, name)
		}
	}
	return strings.Join(flags, "|")
}

// Invalidation is a hint for a node.
type Invalidation struct {
	Node dom.NodeID
	Hint Hint
}

// attributes read by the box tree builder
var boxAttributes = map[string]bool{"width": true, "height": true, "colspan": true}

// HintForMutation maps a DOM mutation to the nodes and hints it
// invalidates. Attribute changes on attributes no selector depends on
// invalidate nothing.
func HintForMutation(m dom.Mutation, idx *selector.Index) []Invalidation {
	sibling := Hint(0)
	if idx != nil && idx.SiblingSensitive() {
		sibling = RestyleLaterSiblings
	}
	switch m.Kind {
	case dom.AttributeChanged:
		var h Hint
		if boxAttributes[strings.ToLower(m.Attribute)] {
			h = ReconstructSubtree
		}
		if idx == nil || idx.DependsOnAttribute(m.Attribute) {
			// descendant selectors may depend on the element
			h |= RestyleSelf | RestyleSubtree | sibling
		}
		if h == 0 {
			return nil
		}
		return []Invalidation{{m.Target, h}}
	case dom.TextChanged:
		if m.Parent == dom.NoNode {
			return nil
		}
		return []Invalidation{{m.Parent, ReconstructSubtree}}
	case dom.NodeInserted, dom.NodeRemoved:
		if m.Parent == dom.NoNode {
			return nil
		}
		return []Invalidation{{m.Parent, RestyleSelf | RestyleSubtree | ReconstructSubtree}}
	}
	return nil
}

// ChildrenNeedRestyle decides whether the style traversal has to descend
// from an element into its children. If the element's inherited
// properties did not change and no hint asks for it, children keep their
// styles. For sibling sensitive rule sets a structural change always
// descends.
func ChildrenNeedRestyle(old, new *style.ComputedStyle, hint Hint, siblingSensitive bool) bool {
	if hint&RestyleSubtree != 0 || old == nil || new == nil {
		return true
	}
	if siblingSensitive && hint&ReconstructSubtree != 0 {
		return true
	}
	if old == new {
		return false
	}
	for g := style.GroupID(0); g < style.NumGroups; g++ {
		if g.Inherited() && !old.SharesGroup(new, g) && !old.Group(g).Equal(new.Group(g)) {
			return true
		}
	}
	return false
}
