package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// NewFriendlyErrorHandler renders error records as short console messages:
//
//	Error: Failed to delete role
//	  suggestion: check the role is not referenced by an assignment
//	  status: 409
func NewFriendlyErrorHandler(w io.Writer) slog.Handler {
	return &friendlyHandler{w: w}
}

type friendlyHandler struct {
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func (h *friendlyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *friendlyHandler) Handle(_ context.Context, record slog.Record) error {
	fields := map[string]string{}
	keys := make([]string, 0, len(h.attrs)+record.NumAttrs())
	add := func(a slog.Attr) bool {
		key := h.qualify(a.Key)
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = strings.TrimSpace(valueString(a.Value.Resolve()))
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	record.Attrs(add)

	summary := strings.TrimSpace(record.Message)
	if summary == "" {
		summary = fields["error"]
	}
	if summary == "" {
		summary = "an unknown error occurred"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", summary)
	if s := fields["suggestion"]; s != "" {
		fmt.Fprintf(&sb, "  suggestion: %s\n", s)
	}

	sort.Strings(keys)
	for _, key := range keys {
		val := fields[key]
		if key == "suggestion" || val == "" || (key == "error" && val == summary) {
			continue
		}
		writeField(&sb, key, val)
	}

	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *friendlyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *friendlyHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}

func (h *friendlyHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

func valueString(val slog.Value) string {
	switch val.Kind() {
	case slog.KindGroup:
		parts := make([]string, 0, len(val.Group()))
		for _, a := range val.Group() {
			parts = append(parts, a.Key+"="+valueString(a.Value.Resolve()))
		}
		return strings.Join(parts, ", ")
	case slog.KindAny:
		if err, ok := val.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(val.Any())
	default:
		return val.String()
	}
}

// writeField indents continuation lines of multi line values.
func writeField(sb *strings.Builder, key, val string) {
	lines := strings.Split(val, "\n")
	fmt.Fprintf(sb, "  %s: %s\n", key, strings.TrimSpace(lines[0]))
	for _, line := range lines[1:] {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(sb, "    %s\n", line)
		}
	}
}
