package log

import (
	"context"
	"log/slog"
	"strings"
)

type httpLogContextKey struct{}

// HTTPLogContext is attached to every backend request log.
type HTTPLogContext struct {
	CommandPath string
	CommandVerb string
	CommandMode string

	Entity    string
	Operation string
	RecordKey string
}

var HTTPLogContextKey = httpLogContextKey{}

// WithHTTPLogContext merges the non empty fields of update into ctx.
func WithHTTPLogContext(ctx context.Context, update HTTPLogContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	current := HTTPLogContextFromContext(ctx)
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&current.CommandPath, update.CommandPath},
		{&current.CommandVerb, update.CommandVerb},
		{&current.CommandMode, update.CommandMode},
		{&current.Entity, update.Entity},
		{&current.Operation, update.Operation},
		{&current.RecordKey, update.RecordKey},
	} {
		if v := strings.TrimSpace(f.src); v != "" {
			*f.dst = v
		}
	}
	return context.WithValue(ctx, HTTPLogContextKey, current)
}

func HTTPLogContextFromContext(ctx context.Context) HTTPLogContext {
	if ctx == nil {
		return HTTPLogContext{}
	}
	switch value := ctx.Value(HTTPLogContextKey).(type) {
	case HTTPLogContext:
		return value
	case *HTTPLogContext:
		if value != nil {
			return *value
		}
	}
	return HTTPLogContext{}
}

// HTTPLogContextAttrs converts the context metadata to slog attributes,
// skipping empty fields.
func HTTPLogContextAttrs(ctx context.Context) []slog.Attr {
	meta := HTTPLogContextFromContext(ctx)
	attrs := make([]slog.Attr, 0, 6)
	for _, kv := range [][2]string{
		{"command_path", meta.CommandPath},
		{"command_verb", meta.CommandVerb},
		{"command_mode", meta.CommandMode},
		{"entity", meta.Entity},
		{"operation", meta.Operation},
		{"record_key", meta.RecordKey},
	} {
		if v := strings.TrimSpace(kv[1]); v != "" {
			attrs = append(attrs, slog.String(kv[0], v))
		}
	}
	return attrs
}
