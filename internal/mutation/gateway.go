package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/rbacctl/rbacctl/internal/listing"
	"github.com/rbacctl/rbacctl/internal/record"
)

var (
	// ErrCancelled is returned when the user declines a delete confirmation.
	ErrCancelled = errors.New("delete cancelled")
	// ErrInFlight is returned when a delete for the same key is still running.
	ErrInFlight = errors.New("operation already in progress")
)

// Notifier surfaces transient success and failure messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string, err error)
}

// Confirmer asks the user to explicitly accept a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, description string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, description string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, description string) (bool, error) {
	return f(ctx, description)
}

// Op describes one mutation of an entity.
type Op struct {
	// Entity is the singular display name, e.g. "application".
	Entity string
	// Key identifies the record for update and delete.
	Key string
	// Payload is sent as is for create and update.
	Payload    record.Record
	Validators []Validator
	// OnSuccess runs after the success notification and before the refresh
	// signal is bumped.
	OnSuccess func(record.Record)
}

type (
	CreateCall func(ctx context.Context, payload record.Record) (record.Record, error)
	UpdateCall func(ctx context.Context, key string, payload record.Record) (record.Record, error)
	DeleteCall func(ctx context.Context, key string) error
)

// Gateway issues create, update and delete calls. It never patches a local
// collection; success bumps the refresh signal so the owner reloads.
type Gateway struct {
	notifier Notifier
	logger   *slog.Logger
	signal   *listing.RefreshSignal
	inflight *InFlight
}

func NewGateway(notifier Notifier, logger *slog.Logger, signal *listing.RefreshSignal) *Gateway {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if signal == nil {
		signal = &listing.RefreshSignal{}
	}
	return &Gateway{
		notifier: notifier,
		logger:   logger,
		signal:   signal,
		inflight: &InFlight{},
	}
}

func (g *Gateway) Signal() *listing.RefreshSignal {
	return g.signal
}

func (g *Gateway) InFlight() *InFlight {
	return g.inflight
}

func (g *Gateway) Create(ctx context.Context, op Op, call CreateCall) (record.Record, error) {
	if err := Validate(op.Payload, op.Validators...); err != nil {
		return nil, err
	}
	res, err := call(ctx, op.Payload)
	if err != nil {
		return nil, g.fail(ctx, "create", op, err)
	}
	g.succeed(fmt.Sprintf("%s created successfully", titleCase(op.Entity)), op, res)
	return res, nil
}

func (g *Gateway) Update(ctx context.Context, op Op, call UpdateCall) (record.Record, error) {
	if op.Key == "" {
		return nil, &ValidationError{Fields: map[string]string{"key": "is required"}}
	}
	if err := Validate(op.Payload, op.Validators...); err != nil {
		return nil, err
	}
	res, err := call(ctx, op.Key, op.Payload)
	if err != nil {
		return nil, g.fail(ctx, "update", op, err)
	}
	g.succeed(fmt.Sprintf("%s updated successfully", titleCase(op.Entity)), op, res)
	return res, nil
}

// Delete asks confirmer first and only calls the backend once the user
// accepted. A declined confirmation returns ErrCancelled.
func (g *Gateway) Delete(ctx context.Context, op Op, description string, confirmer Confirmer, call DeleteCall) error {
	if op.Key == "" {
		return &ValidationError{Fields: map[string]string{"key": "is required"}}
	}
	if confirmer == nil {
		return fmt.Errorf("no confirmation available for deleting %s", description)
	}
	ok, err := confirmer.Confirm(ctx, description)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}

	if !g.inflight.Begin(op.Key) {
		return ErrInFlight
	}
	defer g.inflight.End(op.Key)

	if err := call(ctx, op.Key); err != nil {
		return g.fail(ctx, "delete", op, err)
	}
	g.succeed(fmt.Sprintf("%s deleted successfully", titleCase(op.Entity)), op, nil)
	return nil
}

func (g *Gateway) succeed(msg string, op Op, res record.Record) {
	g.notifier.Success(msg)
	if op.OnSuccess != nil {
		op.OnSuccess(res)
	}
	g.signal.Bump()
}

func (g *Gateway) fail(ctx context.Context, verb string, op Op, err error) error {
	msg := fmt.Sprintf("Failed to %s %s", verb, op.Entity)
	g.notifier.Error(msg, err)
	g.logger.LogAttrs(ctx, slog.LevelError, msg,
		slog.String("entity", op.Entity),
		slog.String("key", op.Key),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s: %w", msg, err)
}

// InFlight tracks which keys currently have an operation running.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// Begin marks key busy. It returns false when key is already busy.
func (f *InFlight) Begin(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = map[string]struct{}{}
	}
	if _, busy := f.keys[key]; busy {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *InFlight) End(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
}

func (f *InFlight) Busy(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.keys[key]
	return busy
}

// Keys returns the busy keys sorted.
func (f *InFlight) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.keys))
	for k := range f.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type nopNotifier struct{}

func (nopNotifier) Success(string)      {}
func (nopNotifier) Error(string, error) {}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
