package mutation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rbacctl/rbacctl/internal/record"
)

// ValidationError maps payload fields to messages. It is returned before any
// backend call is attempted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := e.FieldNames()
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", n, e.Fields[n]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldNames returns the invalid field names sorted.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for n := range e.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validator checks a payload and reports problems into v.
type Validator func(payload record.Record, v *Validation)

// Validation collects field messages. The first message per field wins.
type Validation struct {
	fields map[string]string
}

func (v *Validation) Add(field, msg string) {
	if v.fields == nil {
		v.fields = map[string]string{}
	}
	if _, exists := v.fields[field]; exists {
		return
	}
	v.fields[field] = msg
}

// Required reports field when none of its keys holds a non blank value.
func (v *Validation) Required(payload record.Record, name string, f record.Field) {
	val := f.Get(payload, nil)
	switch typed := val.(type) {
	case nil:
		v.Add(name, "is required")
	case string:
		if strings.TrimSpace(typed) == "" {
			v.Add(name, "is required")
		}
	case []any:
		if len(typed) == 0 {
			v.Add(name, "requires at least one value")
		}
	case []string:
		if len(typed) == 0 {
			v.Add(name, "requires at least one value")
		}
	}
}

// Match reports field when its value is present and does not match re.
func (v *Validation) Match(payload record.Record, name string, f record.Field, re *regexp.Regexp, msg string) {
	s := strings.TrimSpace(f.String(payload))
	if s == "" {
		return
	}
	if !re.MatchString(s) {
		v.Add(name, msg)
	}
}

// Err returns nil when no problem was recorded.
func (v *Validation) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(v.fields))
	for k, m := range v.fields {
		out[k] = m
	}
	return &ValidationError{Fields: out}
}

// Validate runs validators over payload.
func Validate(payload record.Record, validators ...Validator) error {
	var v Validation
	for _, fn := range validators {
		if fn != nil {
			fn(payload, &v)
		}
	}
	return v.Err()
}
