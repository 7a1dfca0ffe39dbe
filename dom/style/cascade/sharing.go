package cascade

import (
	"strconv"

	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
	"github.com/npillmayer/layoutcore/dom/style/selector"
)

// SharingCache lets elements with identical matched rules and an identical
// parent style share their computed style. Elements with a style attribute
// and the root element never share.
//
// A SharingCache is valid for the rules of a single selector.Index and is
// not safe for concurrent use; every worker of a style traversal owns one.
type SharingCache struct {
	entries  map[sharingKey]*style.ComputedStyle
	capacity int
	hits     int
	buf      []byte
}

type sharingKey struct {
	parent *style.ComputedStyle
	rules  string
}

// DefaultSharingCapacity is the number of entries a cache holds before it
// is reset.
const DefaultSharingCapacity = 128

// NewSharingCache creates a cache. A capacity <= 0 selects
// DefaultSharingCapacity.
func NewSharingCache(capacity int) *SharingCache {
	if capacity <= 0 {
		capacity = DefaultSharingCapacity
	}
	return &SharingCache{
		entries:  make(map[sharingKey]*style.ComputedStyle, capacity),
		capacity: capacity,
	}
}

// Hits returns the number of styles served from the cache.
func (c *SharingCache) Hits() int {
	if c == nil {
		return 0
	}
	return c.hits
}

// Resolve works like the package level Resolve, but consults the cache
// first. c may be nil.
func (c *SharingCache) Resolve(matches []*selector.Rule, inline []cssom.Declaration, ctx Context) *style.ComputedStyle {
	if c == nil || len(inline) > 0 || ctx.IsRoot() {
		return Resolve(matches, inline, ctx)
	}
	key := sharingKey{parent: ctx.Parent, rules: c.fingerprint(matches)}
	if s, ok := c.entries[key]; ok {
		c.hits++
		return s
	}
	s := Resolve(matches, inline, ctx)
	if len(c.entries) >= c.capacity {
		c.entries = make(map[sharingKey]*style.ComputedStyle, c.capacity)
	}
	c.entries[key] = s
	return s
}

// fingerprint identifies a list of matched rules. Rule order numbers are
// unique within an index.
func (c *SharingCache) fingerprint(matches []*selector.Rule) string {
	c.buf = c.buf[:0]
	for _, r := range matches {
		c.buf = strconv.AppendInt(c.buf, int64(r.Order), 36)
		c.buf = append(c.buf, '.')
	}
	return string(c.buf)
}
