package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
	"golang.org/x/net/html"
)

// Specificity of a selector: (ids, classes/attributes/pseudo-classes, tags).
type Specificity = cascadia.Specificity

// Block is an expanded and validated declaration block, shared by all the
// selectors of a CSS rule.
type Block struct {
	ID           int
	Declarations []cssom.Declaration
}

// Rule is a single selector together with its declaration block.
// Rules are immutable.
type Rule struct {
	Selector    string
	Specificity Specificity
	Origin      cssom.Origin
	Order       int // position of the rule within its revision
	Block       *Block
	sel         cascadia.Sel
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s %v #%d (%s)", r.Selector, r.Specificity, r.Order, r.Origin)
}

// Index is the compiled form of a style sheet store revision.
type Index struct {
	revision         uint64
	byID             map[string][]*Rule
	byClass          map[string][]*Rule
	byTag            map[string][]*Rule
	universal        []*Rule
	count            int
	siblingSensitive bool
	attributes       map[string]bool
}

// Compile builds the rule index for a store revision. Rules with
// selectors cascadia cannot parse, rules for pseudo-elements and invalid
// declarations are dropped.
func Compile(rev *cssom.Revision) *Index {
	idx := &Index{
		byID:       make(map[string][]*Rule),
		byClass:    make(map[string][]*Rule),
		byTag:      make(map[string][]*Rule),
		attributes: map[string]bool{"style": true, "class": true, "id": true},
	}
	if rev == nil {
		return idx
	}
	idx.revision = rev.Number
	order, blockID := 0, 0
	for _, sheet := range rev.Sheets {
		if sheet.StyleSheet == nil {
			continue
		}
		for _, r := range sheet.Rules() {
			blockID++
			block := &Block{ID: blockID, Declarations: Expand(r.Declarations())}
			if len(block.Declarations) == 0 {
				continue
			}
			for _, text := range SplitSelectorList(r.Selector()) {
				sel, err := cascadia.Parse(text)
				if err != nil {
					tracer().Infof("dropping selector %q: %v", text, err)
					continue
				}
				if sel.PseudoElement() != "" {
					tracer().Debugf("pseudo-elements are not supported: %q", text)
					continue
				}
				order++
				rule := &Rule{
					Selector:    text,
					Specificity: sel.Specificity(),
					Origin:      sheet.Origin,
					Order:       order,
					Block:       block,
					sel:         sel,
				}
				idx.insert(rule, analyze(text))
			}
		}
	}
	tracer().Debugf("compiled rule index for revision #%d with %d rules", idx.revision, idx.count)
	return idx
}

func (idx *Index) insert(rule *Rule, k keys) {
	idx.count++
	if k.siblings {
		idx.siblingSensitive = true
	}
	for _, a := range k.attributes {
		idx.attributes[a] = true
	}
	switch {
	case k.id != "":
		idx.byID[k.id] = append(idx.byID[k.id], rule)
	case k.class != "":
		idx.byClass[k.class] = append(idx.byClass[k.class], rule)
	case k.tag != "":
		idx.byTag[k.tag] = append(idx.byTag[k.tag], rule)
	default:
		idx.universal = append(idx.universal, rule)
	}
}

// Revision returns the number of the store revision the index has been
// compiled from.
func (idx *Index) Revision() uint64 {
	return idx.revision
}

// Len returns the number of rules in the index.
func (idx *Index) Len() int {
	return idx.count
}

// SiblingSensitive is true if any selector depends on an element's
// siblings (sibling combinators or structural pseudo-classes).
func (idx *Index) SiblingSensitive() bool {
	return idx.siblingSensitive
}

// DependsOnAttribute is true if a change of the given attribute may change
// the set of matching rules (or the inline style) of an element.
func (idx *Index) DependsOnAttribute(name string) bool {
	return idx.attributes[strings.ToLower(name)]
}

// Match returns the rules matching an element, ordered by specificity and
// rule order. Match is a pure function of the element's neighbourhood in
// the DOM and the index.
func (idx *Index) Match(n *html.Node) []*Rule {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	var candidates []*Rule
	for _, a := range n.Attr {
		if a.Namespace != "" {
			continue
		}
		switch a.Key {
		case "id":
			candidates = append(candidates, idx.byID[a.Val]...)
		case "class":
			for _, c := range uniqueFields(a.Val) {
				candidates = append(candidates, idx.byClass[c]...)
			}
		}
	}
	candidates = append(candidates, idx.byTag[strings.ToLower(n.Data)]...)
	candidates = append(candidates, idx.universal...)
	matches := candidates[:0]
	for _, r := range candidates {
		if r.sel.Match(n) {
			matches = append(matches, r)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return Less(matches[i], matches[j])
	})
	return matches
}

// Less orders rules by specificity, then by rule order.
func Less(a, b *Rule) bool {
	for i := 0; i < 3; i++ {
		if a.Specificity[i] != b.Specificity[i] {
			return a.Specificity[i] < b.Specificity[i]
		}
	}
	return a.Order < b.Order
}

func uniqueFields(s string) []string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return fields
	}
	sort.Strings(fields)
	u := fields[:1]
	for _, f := range fields[1:] {
		if f != u[len(u)-1] {
			u = append(u, f)
		}
	}
	return u
}

// SplitSelectorList splits a selector list at top-level commas.
func SplitSelectorList(prelude string) []string {
	var sels []string
	depth, start := 0, 0
	var quote rune
	for i, r := range prelude {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
		case r == ',' && depth == 0:
			if s := strings.TrimSpace(prelude[start:i]); s != "" {
				sels = append(sels, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(prelude[start:]); s != "" {
		sels = append(sels, s)
	}
	return sels
}
