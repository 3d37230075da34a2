package listing

import (
	"sort"

	"github.com/rbacctl/rbacctl/internal/record"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByField returns a copy of collection sorted ascending on field using
// locale aware collation. Records with equal keys keep their order.
func SortByField(collection []record.Record, field record.Field, tag language.Tag) []record.Record {
	out := append([]record.Record{}, collection...)
	if len(out) < 2 {
		return out
	}

	keys := make(map[int]string, len(out))
	idx := make([]int, len(out))
	for i, r := range out {
		idx[i] = i
		keys[i] = field.String(r)
	}

	c := collate.New(tag)
	sort.SliceStable(idx, func(a, b int) bool {
		return c.CompareString(keys[idx[a]], keys[idx[b]]) < 0
	})

	sorted := make([]record.Record, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}
