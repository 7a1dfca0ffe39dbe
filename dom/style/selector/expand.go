package selector

import (
	"strings"

	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/css"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
)

// Expand splits shortcut properties into their components and validates
// every resulting declaration. Invalid declarations are dropped. The
// order of the declarations is preserved.
func Expand(decls []cssom.Declaration) []cssom.Declaration {
	expanded := make([]cssom.Declaration, 0, len(decls))
	for _, d := range decls {
		key := strings.ToLower(strings.TrimSpace(d.Key))
		value := style.Property(strings.TrimSpace(d.Value.String()))
		if !style.IsCompound(key) {
			if err := css.Validate(key, value); err != nil {
				tracer().Debugf("dropping declaration %s: %v", d, err)
				continue
			}
			expanded = append(expanded, cssom.Declaration{Key: key, Value: value, Important: d.Important})
			continue
		}
		kvs, err := style.SplitCompoundProperty(key, value)
		if err != nil {
			tracer().Debugf("dropping declaration %s: %v", d, err)
			continue
		}
		valid := true
		for _, kv := range kvs {
			if err := css.Validate(kv.Key, kv.Value); err != nil {
				tracer().Debugf("dropping declaration %s: %v", d, err)
				valid = false
				break
			}
		}
		if !valid { // a shortcut is invalid as a whole
			continue
		}
		for _, kv := range kvs {
			expanded = append(expanded, cssom.Declaration{Key: kv.Key, Value: kv.Value, Important: d.Important})
		}
	}
	return expanded
}
