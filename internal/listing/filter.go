package listing

import (
	"strings"

	"github.com/rbacctl/rbacctl/internal/record"
)

// SelectorAll is the selector value meaning "no constraint".
const SelectorAll = "all"

// Criteria is the free text term plus categorical selectors applied to a
// collection. Selector values are keyed by selector name.
type Criteria struct {
	Search    string
	Selectors map[string]string
}

// WithSelector returns a copy of c with the selector name set to value.
func (c Criteria) WithSelector(name, value string) Criteria {
	selectors := make(map[string]string, len(c.Selectors)+1)
	for k, v := range c.Selectors {
		selectors[k] = v
	}
	selectors[name] = value
	c.Selectors = selectors
	return c
}

// Selector returns the value of the named selector, "all" when unset.
func (c Criteria) Selector(name string) string {
	v := strings.TrimSpace(c.Selectors[name])
	if v == "" {
		return SelectorAll
	}
	return v
}

// Active reports whether any criterion narrows the collection.
func (c Criteria) Active() bool {
	if c.Search != "" {
		return true
	}
	for name := range c.Selectors {
		if !isAll(c.Selector(name)) {
			return true
		}
	}
	return false
}

// Matcher binds the searchable fields and selector fields of one entity.
type Matcher struct {
	SearchFields   []record.Field
	SelectorFields map[string]record.Field
	// SelectorValues, when set for a selector, derives the compared value
	// instead of reading its field.
	SelectorValues map[string]func(record.Record) string
}

// Filter returns the records of collection matching c, in their original
// order. The input is never modified.
func (m Matcher) Filter(collection []record.Record, c Criteria) []record.Record {
	term := strings.ToLower(c.Search)
	out := make([]record.Record, 0, len(collection))
	for _, r := range collection {
		if m.Matches(r, term, c) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r passes the lower-cased search term and every
// selector of c.
func (m Matcher) Matches(r record.Record, lowerTerm string, c Criteria) bool {
	if !m.matchesSearch(r, lowerTerm) {
		return false
	}
	for name, value := range c.Selectors {
		if isAll(value) {
			continue
		}
		got, ok := m.selectorValue(name, r)
		if !ok {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(value)) {
			return false
		}
	}
	return true
}

func (m Matcher) selectorValue(name string, r record.Record) (string, bool) {
	if fn, ok := m.SelectorValues[name]; ok && fn != nil {
		return fn(r), true
	}
	field, ok := m.SelectorFields[name]
	if !ok {
		return "", false
	}
	return field.String(r), true
}

func (m Matcher) matchesSearch(r record.Record, lowerTerm string) bool {
	if lowerTerm == "" {
		return true
	}
	for _, f := range m.SearchFields {
		if strings.Contains(strings.ToLower(f.String(r)), lowerTerm) {
			return true
		}
	}
	return false
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, SelectorAll)
}

// Filter is a convenience wrapper around Matcher.Filter.
func Filter(
	collection []record.Record,
	c Criteria,
	searchFields []record.Field,
	selectorFields map[string]record.Field,
) []record.Record {
	return Matcher{SearchFields: searchFields, SelectorFields: selectorFields}.Filter(collection, c)
}

// Dedupe drops records whose composite key over fields was already seen,
// keeping the first occurrence.
func Dedupe(collection []record.Record, fields ...record.Field) []record.Record {
	if len(fields) == 0 {
		return append([]record.Record{}, collection...)
	}
	seen := make(map[string]struct{}, len(collection))
	out := make([]record.Record, 0, len(collection))
	for _, r := range collection {
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = f.String(r)
		}
		key := strings.Join(parts, "\x00")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// DistinctValues returns the distinct non-empty values of field in first
// seen order.
func DistinctValues(collection []record.Record, field record.Field) []string {
	return DistinctBy(collection, field.String)
}

// DistinctBy returns the distinct non-empty results of value in first seen
// order.
func DistinctBy(collection []record.Record, value func(record.Record) string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range collection {
		v := strings.TrimSpace(value(r))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
