package selector

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// keys holds what the index needs to know about a selector: the bucket
// key of its rightmost compound and its dependencies.
type keys struct {
	id, class, tag string
	attributes     []string
	siblings       bool
}

var siblingPseudos = map[string]bool{
	"first-child":   true,
	"last-child":    true,
	"only-child":    true,
	"first-of-type": true,
	"last-of-type":  true,
	"only-of-type":  true,
	"empty":         true,
}

// attributePseudos maps pseudo-classes to the attributes they read.
var attributePseudos = map[string][]string{
	"checked":  {"checked", "selected", "type"},
	"disabled": {"disabled", "type"},
	"enabled":  {"disabled", "type"},
	"link":     {"href"},
	"lang":     {"lang"},
}

// analyze scans a single selector (no selector list). Every
// combinator starts a new compound, so after the last token the compound
// fields hold the rightmost compound.
func analyze(sel string) keys {
	var k keys
	sc := scanner.New(sel)
	depth, brackets := 0, 0
	prev := "" // previous significant char token within the compound
	for {
		tok := sc.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			break
		}
		switch tok.Type {
		case scanner.TokenS:
			if depth == 0 && brackets == 0 {
				k.id, k.class, k.tag = "", "", ""
			}
			prev = ""
			continue
		case scanner.TokenFunction:
			name := strings.ToLower(strings.TrimSuffix(tok.Value, "("))
			if strings.HasPrefix(name, "nth-") {
				k.siblings = true
			}
			k.attributes = append(k.attributes, attributePseudos[name]...)
			depth++
		case scanner.TokenHash:
			if depth == 0 && brackets == 0 && k.id == "" {
				k.id = tok.Value[1:]
			}
		case scanner.TokenIdent:
			switch {
			case prev == "[":
				k.attributes = append(k.attributes, strings.ToLower(tok.Value))
			case brackets > 0:
			case prev == ":":
				name := strings.ToLower(tok.Value)
				if siblingPseudos[name] {
					k.siblings = true
				}
				k.attributes = append(k.attributes, attributePseudos[name]...)
			case depth > 0:
			case prev == ".":
				if k.class == "" {
					k.class = tok.Value
				}
			default:
				k.tag = strings.ToLower(tok.Value)
			}
		case scanner.TokenChar:
			switch tok.Value {
			case "[":
				brackets++
			case "]":
				brackets--
			case ")":
				depth--
			case "+", "~":
				k.siblings = true
				fallthrough
			case ">":
				if depth == 0 && brackets == 0 {
					k.id, k.class, k.tag = "", "", ""
				}
			}
		}
		if tok.Type == scanner.TokenChar {
			prev = tok.Value
		} else {
			prev = ""
		}
	}
	return k
}
