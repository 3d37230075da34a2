// Package entity holds the per resource configuration of the shared listing,
// export and mutation core.
package entity

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/export"
	"github.com/rbacctl/rbacctl/internal/listing"
	"github.com/rbacctl/rbacctl/internal/mutation"
	"github.com/rbacctl/rbacctl/internal/record"
	"golang.org/x/text/language"
)

// Selector is a categorical filter. Flag is the CLI flag that sets it.
type Selector struct {
	Name  string
	Flag  string
	Label string
	Field record.Field
	// Value renders the compared value when the raw field is not what the
	// user sees, e.g. a boolean status shown as Active.
	Value func(record.Record) string
}

// ValueOf returns the value of r that s filters on.
func (s Selector) ValueOf(r record.Record) string {
	if s.Value != nil {
		return s.Value(r)
	}
	return s.Field.String(r)
}

// PayloadField is one writable attribute. Key is the name sent to the
// backend, Flag the CLI flag that sets it.
type PayloadField struct {
	Flag  string
	Key   string
	Usage string
	Field record.Field
	List  bool
	Bool  bool
	// Identity fields cannot be changed by update.
	Identity bool
}

type Definition struct {
	Name    string
	Plural  string
	Title   string
	Aliases []string

	// Key identifies a record for get, update and delete. Read only
	// definitions leave it empty.
	Key      record.Field
	ReadOnly bool

	Search    []record.Field
	Selectors []Selector
	// SortBy pre-sorts the collection when set.
	SortBy *record.Field
	// DedupeBy drops later records repeating the composite key.
	DedupeBy []record.Field

	Columns    []export.ColumnSpec
	Payload    []PayloadField
	Validators []mutation.Validator

	// Label renders a record for confirmations and notifications.
	Label func(record.Record) string

	bind func(*Definition, helpers.API) Ops
}

// Matcher returns the filter configuration of d.
func (d *Definition) Matcher() listing.Matcher {
	selectors := make(map[string]record.Field, len(d.Selectors))
	values := map[string]func(record.Record) string{}
	for _, s := range d.Selectors {
		selectors[s.Name] = s.Field
		if s.Value != nil {
			values[s.Name] = s.Value
		}
	}
	return listing.Matcher{SearchFields: d.Search, SelectorFields: selectors, SelectorValues: values}
}

// Prepare applies the pre-sort and dedupe rules to a freshly fetched
// collection. The input is not modified.
func (d *Definition) Prepare(collection []record.Record, tag language.Tag) []record.Record {
	out := append([]record.Record{}, collection...)
	if d.SortBy != nil {
		out = listing.SortByField(out, *d.SortBy, tag)
	}
	if len(d.DedupeBy) > 0 {
		out = listing.Dedupe(out, d.DedupeBy...)
	}
	return out
}

// Fetcher wraps list so every fetch is prepared for tag.
func (d *Definition) Fetcher(list listing.FetchFunc, tag language.Tag) listing.FetchFunc {
	return func(ctx context.Context) ([]record.Record, error) {
		recs, err := list(ctx)
		if err != nil {
			return nil, err
		}
		return d.Prepare(recs, tag), nil
	}
}

// KeyOf returns the key of r, or "" for read only definitions.
func (d *Definition) KeyOf(r record.Record) string {
	if len(d.Key.Keys) == 0 {
		return ""
	}
	return strings.TrimSpace(d.Key.String(r))
}

// Find returns the first record of collection whose key equals key.
func (d *Definition) Find(collection []record.Record, key string) (record.Record, bool) {
	for _, r := range collection {
		if d.KeyOf(r) == key {
			return r, true
		}
	}
	return nil, false
}

// Describe is the human label of r, e.g. "application APP_HR_1 (HR)".
func (d *Definition) Describe(r record.Record) string {
	if d.Label != nil {
		return d.Name + " " + d.Label(r)
	}
	return d.Name + " " + d.KeyOf(r)
}

// Table projects collection through the display columns.
func (d *Definition) Table(collection []record.Record) export.Table {
	t := export.Project(collection, d.Columns)
	t.Title = d.Title
	return t
}

// Bind returns the backend operations of d.
func (d *Definition) Bind(b helpers.API) Ops {
	return d.bind(d, b)
}

// Selector returns the named selector.
func (d *Definition) Selector(name string) (Selector, bool) {
	for _, s := range d.Selectors {
		if s.Name == name {
			return s, true
		}
	}
	return Selector{}, false
}

// Detail returns the non empty fields of r as sorted key value pairs.
func Detail(r record.Record) [][2]string {
	keys := make([]string, 0, len(r))
	for k, v := range r {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, record.Stringify(r[k])})
	}
	return out
}

var registry []*Definition

func register(d *Definition) *Definition {
	registry = append(registry, d)
	return d
}

// All returns every definition in menu order.
func All() []*Definition {
	return append([]*Definition{}, registry...)
}

// Lookup resolves a resource name, plural or alias case insensitively.
func Lookup(name string) (*Definition, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, d := range registry {
		if n == d.Name || n == d.Plural {
			return d, nil
		}
		for _, a := range d.Aliases {
			if n == a {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown resource %q, must be one of %s", name, strings.Join(Names(), ", "))
}

// Names returns the plural names of every definition.
func Names() []string {
	out := make([]string, 0, len(registry))
	for _, d := range registry {
		out = append(out, d.Plural)
	}
	return out
}
