package dom

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/npillmayer/layoutcore/tree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeID is the stable identity of an element or text node within a document.
type NodeID = tree.ID

// NoNode is the invalid NodeID.
const NoNode NodeID = tree.None

// Errors returned by document operations.
var (
	ErrNoDocument  = errors.New("document has no root element")
	ErrNotAttached = errors.New("node is not part of the document")
	ErrAttached    = errors.New("node is already part of a tree")
	ErrNotText     = errors.New("node is not a text node")
	ErrNotElement  = errors.New("node is not an element")
)

// Document wraps an HTML parse tree and assigns NodeIDs to its element and
// text nodes.
//
// Read accessors do not lock. Clients reading the document concurrently with
// mutations must bracket their reads with RLock/RUnlock.
type Document struct {
	mu        sync.RWMutex
	root      *html.Node // the <html> element
	nodes     *tree.Arena[*html.Node]
	ids       map[*html.Node]NodeID
	observers []Observer
	version   atomic.Uint64
}

// Parse reads an HTML document and wraps it.
func Parse(r io.Reader) (*Document, error) {
	h, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse HTML: %w", err)
	}
	return NewDocument(h)
}

// ParseString is a convenience function for Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// NewDocument wraps an HTML parse tree. h may either be a document node or
// the <html> element itself.
func NewDocument(h *html.Node) (*Document, error) {
	if h == nil {
		return nil, ErrNoDocument
	}
	root := h
	if h.Type == html.DocumentNode {
		root = nil
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				root = c
				break
			}
		}
	}
	if root == nil || root.Type != html.ElementNode {
		return nil, ErrNoDocument
	}
	doc := &Document{
		root:  root,
		nodes: tree.NewArena[*html.Node](64),
		ids:   make(map[*html.Node]NodeID, 64),
	}
	if _, err := doc.register(NoNode, NoNode, root); err != nil {
		return nil, err
	}
	tracer().Debugf("document with %d nodes", doc.nodes.Len())
	return doc, nil
}

// register assigns IDs to n and its subtree. n is inserted into the arena
// before sibling before (or appended if before is NoNode).
func (doc *Document) register(parent, before NodeID, n *html.Node) (NodeID, error) {
	var id NodeID
	var err error
	if before == NoNode {
		id, err = doc.nodes.Add(parent, n)
	} else {
		id, err = doc.nodes.InsertBefore(parent, before, n)
	}
	if err != nil {
		return NoNode, err
	}
	doc.ids[n] = id
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if registered(c) {
			if _, err := doc.register(id, NoNode, c); err != nil {
				return NoNode, err
			}
		}
	}
	return id, nil
}

// RLock locks the document for reading.
func (doc *Document) RLock() { doc.mu.RLock() }

// RUnlock undoes a single RLock call.
func (doc *Document) RUnlock() { doc.mu.RUnlock() }

// Version is incremented with every mutation.
func (doc *Document) Version() uint64 {
	return doc.version.Load()
}

// Root returns the ID of the root element.
func (doc *Document) Root() NodeID {
	return doc.ids[doc.root]
}

// Len returns the number of nodes in the document.
func (doc *Document) Len() int {
	return doc.nodes.Len()
}

// MaxID returns the highest NodeID ever assigned.
func (doc *Document) MaxID() NodeID {
	return doc.nodes.MaxID()
}

// Node returns the HTML node for an ID, or nil.
func (doc *Document) Node(id NodeID) *html.Node {
	n, _ := doc.nodes.Payload(id)
	return n
}

// ID returns the ID of an HTML node.
func (doc *Document) ID(n *html.Node) (NodeID, bool) {
	id, ok := doc.ids[n]
	return id, ok
}

// Parent returns the ID of the parent of a node, or NoNode for the root.
func (doc *Document) Parent(id NodeID) NodeID {
	return doc.nodes.Parent(id)
}

// Children returns the IDs of the element and text children of a node.
// The returned slice must not be modified.
func (doc *Document) Children(id NodeID) []NodeID {
	return doc.nodes.Children(id)
}

// Contains checks if a node is attached to the document.
func (doc *Document) Contains(id NodeID) bool {
	return doc.nodes.Contains(id)
}

// Tag returns the tag name of an element, or "" for text nodes.
func (doc *Document) Tag(id NodeID) string {
	if n := doc.Node(id); NodeIsElement(n) {
		return n.Data
	}
	return ""
}

// Text returns the content of a text node.
func (doc *Document) Text(id NodeID) (string, bool) {
	if n := doc.Node(id); NodeIsText(n) {
		return n.Data, true
	}
	return "", false
}

// Attr returns the value of an attribute of an element.
func (doc *Document) Attr(id NodeID, key string) (string, bool) {
	return Attr(doc.Node(id), key)
}

// Ancestors calls f for every ancestor of a node, nearest first, until f
// returns false.
func (doc *Document) Ancestors(id NodeID, f func(NodeID) bool) {
	doc.nodes.Ancestors(id, f)
}

// --- Mutations -------------------------------------------------------------

// MutationKind is the type of a document change.
type MutationKind uint8

// Kinds of mutations.
const (
	AttributeChanged MutationKind = iota + 1
	TextChanged
	NodeInserted
	NodeRemoved
)

func (k MutationKind) String() string {
	switch k {
	case AttributeChanged:
		return "attribute-changed"
	case TextChanged:
		return "text-changed"
	case NodeInserted:
		return "node-inserted"
	case NodeRemoved:
		return "node-removed"
	}
	return fmt.Sprintf("mutation(%d)", int(k))
}

// Mutation describes a single change of the document.
type Mutation struct {
	Kind      MutationKind
	Target    NodeID   // changed, inserted or removed node
	Parent    NodeID   // parent of Target at the time of the mutation
	Attribute string   // name of a changed attribute
	Removed   []NodeID // all nodes of a removed subtree, pre-order
	Version   uint64   // document version after the mutation
}

func (m Mutation) String() string {
	if m.Kind == AttributeChanged {
		return fmt.Sprintf("%s(%d, %s)", m.Kind, m.Target, m.Attribute)
	}
	return fmt.Sprintf("%s(%d)", m.Kind, m.Target)
}

// Observer is notified of document mutations. Mutated is called while
// the document is write-locked; observers must not call back into the
// document.
type Observer interface {
	Mutated(Mutation)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Mutation)

// Mutated calls f(m).
func (f ObserverFunc) Mutated(m Mutation) { f(m) }

// Observe registers an observer.
func (doc *Document) Observe(o Observer) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	doc.observers = append(doc.observers, o)
}

// notify must be called with the write lock held.
func (doc *Document) notify(m Mutation) {
	m.Version = doc.version.Add(1)
	tracer().Debugf("mutation %v", m)
	for _, o := range doc.observers {
		o.Mutated(m)
	}
}

func (doc *Document) element(id NodeID) (*html.Node, error) {
	n := doc.Node(id)
	if n == nil {
		return nil, ErrNotAttached
	}
	if !NodeIsElement(n) {
		return nil, ErrNotElement
	}
	return n, nil
}

// SetAttribute sets an attribute of an element.
func (doc *Document) SetAttribute(id NodeID, key, value string) error {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	n, err := doc.element(id)
	if err != nil {
		return err
	}
	found := false
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			if a.Val == value {
				return nil
			}
			n.Attr[i].Val = value
			found = true
			break
		}
	}
	if !found {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
	}
	doc.notify(Mutation{Kind: AttributeChanged, Target: id, Parent: doc.Parent(id), Attribute: key})
	return nil
}

// RemoveAttribute removes an attribute from an element. Removing an
// attribute which is not present is not an error.
func (doc *Document) RemoveAttribute(id NodeID, key string) error {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	n, err := doc.element(id)
	if err != nil {
		return err
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			doc.notify(Mutation{Kind: AttributeChanged, Target: id, Parent: doc.Parent(id), Attribute: key})
			return nil
		}
	}
	return nil
}

// SetText replaces the content of a text node.
func (doc *Document) SetText(id NodeID, text string) error {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	n := doc.Node(id)
	if n == nil {
		return ErrNotAttached
	}
	if !NodeIsText(n) {
		return ErrNotText
	}
	if n.Data == text {
		return nil
	}
	n.Data = text
	doc.notify(Mutation{Kind: TextChanged, Target: id, Parent: doc.Parent(id)})
	return nil
}

// AppendChild appends a detached node (and its subtree) as the last child
// of parent.
func (doc *Document) AppendChild(parent NodeID, n *html.Node) (NodeID, error) {
	return doc.InsertBefore(parent, NoNode, n)
}

// InsertBefore inserts a detached node (and its subtree) as a child of
// parent, before sibling before. If before is NoNode, n is appended.
func (doc *Document) InsertBefore(parent, before NodeID, n *html.Node) (NodeID, error) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	p, err := doc.element(parent)
	if err != nil {
		return NoNode, err
	}
	if n == nil || n.Parent != nil || n.PrevSibling != nil || n.NextSibling != nil {
		return NoNode, ErrAttached
	}
	if !registered(n) {
		return NoNode, fmt.Errorf("cannot insert node of type %d: %w", n.Type, ErrNotElement)
	}
	var b *html.Node
	if before != NoNode {
		if b = doc.Node(before); b == nil || doc.Parent(before) != parent {
			return NoNode, ErrNotAttached
		}
	}
	id, err := doc.register(parent, before, n)
	if err != nil {
		return NoNode, err
	}
	p.InsertBefore(n, b)
	doc.notify(Mutation{Kind: NodeInserted, Target: id, Parent: parent})
	return id, nil
}

// RemoveChild detaches a node and its subtree from the document. The IDs
// of the subtree become invalid.
func (doc *Document) RemoveChild(id NodeID) error {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	n := doc.Node(id)
	if n == nil {
		return ErrNotAttached
	}
	if n == doc.root {
		return fmt.Errorf("cannot remove root element: %w", ErrNotAttached)
	}
	parent := doc.Parent(id)
	removed, err := doc.nodes.Remove(id)
	if err != nil {
		return err
	}
	var forget func(*html.Node)
	forget = func(h *html.Node) {
		delete(doc.ids, h)
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			forget(c)
		}
	}
	forget(n)
	n.Parent.RemoveChild(n)
	doc.notify(Mutation{Kind: NodeRemoved, Target: id, Parent: parent, Removed: removed})
	return nil
}

// --- Node factories --------------------------------------------------------

// NewElement creates a detached element node, to be inserted with
// AppendChild or InsertBefore. attrs are pairs of key and value.
func NewElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
