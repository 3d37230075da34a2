package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rbacctl/rbacctl/internal/record"
	"sigs.k8s.io/yaml"
)

// ParsePayload decodes a YAML or JSON payload document.
func ParsePayload(data []byte) (record.Record, error) {
	var out record.Record
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid payload document: %w", err)
	}
	if out == nil {
		out = record.Record{}
	}
	return out, nil
}

// Overrides resolves the payload fields of d present in doc, keyed by flag.
// It lets a payload file use any of the spellings the backend returns.
func (d *Definition) Overrides(doc record.Record) map[string]any {
	out := map[string]any{}
	for _, pf := range d.Payload {
		if v := pf.Field.Get(doc, nil); v != nil {
			out[pf.Flag] = v
		}
	}
	return out
}

// BuildPayload produces the request body: every payload field takes its
// override when present and otherwise the value of base. Only the canonical
// keys are emitted. For updates, identity fields of base cannot be changed.
func (d *Definition) BuildPayload(base record.Record, overrides map[string]any, update bool) (record.Record, error) {
	payload := record.Record{}
	for _, pf := range d.Payload {
		current := pf.Field.Get(base, nil)
		v, overridden := overrides[pf.Flag]
		if !overridden {
			v = current
		}
		if v == nil {
			continue
		}

		normalized, err := normalize(pf, v)
		if err != nil {
			return nil, err
		}

		if update && overridden && pf.Identity && current != nil {
			was := strings.TrimSpace(record.Stringify(current))
			if was != "" && was != record.Stringify(normalized) {
				return nil, fmt.Errorf("%s cannot be changed on update (is %q)", pf.Flag, was)
			}
		}
		payload[pf.Key] = normalized
	}
	return payload, nil
}

func normalize(pf PayloadField, v any) (any, error) {
	switch {
	case pf.List:
		codes := record.Strings(record.Record{"v": v}, []string{"v"})
		out := make([]any, 0, len(codes))
		for _, c := range codes {
			out = append(out, c)
		}
		return out, nil
	case pf.Bool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
				return parsed, nil
			}
			r := record.Record{"v": b}
			yes, no := record.Bool(r, []string{"v"}, true), record.Bool(r, []string{"v"}, false)
			if yes != no {
				return nil, fmt.Errorf("%s: %q is not a boolean", pf.Flag, b)
			}
			return yes, nil
		default:
			return record.Bool(record.Record{"v": v}, []string{"v"}, false), nil
		}
	default:
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s), nil
		}
		return record.Stringify(v), nil
	}
}
