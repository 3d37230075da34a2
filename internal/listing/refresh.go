package listing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rbacctl/rbacctl/internal/record"
)

// RefreshSignal is a counter whose increment means "reload the collection".
type RefreshSignal struct {
	v atomic.Int64
}

// Bump increments the signal and returns the new value.
func (s *RefreshSignal) Bump() int64 {
	return s.v.Add(1)
}

func (s *RefreshSignal) Value() int64 {
	return s.v.Load()
}

// LoadState is the tri-state of a list view. A failed fetch ends in
// StateLoaded with an empty collection.
type LoadState int

const (
	StateLoading LoadState = iota
	StateLoaded
)

func (s LoadState) String() string {
	if s == StateLoading {
		return "loading"
	}
	return "loaded"
}

// ErrStaleResult is returned by Loader.Load when a newer load was issued
// before this one resolved. The result was discarded.
var ErrStaleResult = errors.New("stale load result discarded")

// FetchFunc retrieves the full collection from the backend.
type FetchFunc func(ctx context.Context) ([]record.Record, error)

// Loader owns the in-memory collection of one view. Every load replaces the
// collection wholesale. Loads carry a generation token and only the most
// recently issued load may commit its result.
type Loader struct {
	fetch  FetchFunc
	signal *RefreshSignal

	issued atomic.Uint64

	mu         sync.RWMutex
	collection []record.Record
	state      LoadState
	lastSignal int64
	lastErr    error
}

func NewLoader(fetch FetchFunc, signal *RefreshSignal) *Loader {
	if signal == nil {
		signal = &RefreshSignal{}
	}
	return &Loader{
		fetch:      fetch,
		signal:     signal,
		state:      StateLoading,
		lastSignal: signal.Value(),
	}
}

func (l *Loader) Signal() *RefreshSignal {
	return l.signal
}

// Load fetches the collection. On failure the collection becomes empty and
// the fetch error is returned for the caller to report.
func (l *Loader) Load(ctx context.Context) error {
	gen := l.issued.Add(1)
	signal := l.signal.Value()

	l.mu.Lock()
	l.state = StateLoading
	l.mu.Unlock()

	recs, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.issued.Load() {
		return ErrStaleResult
	}
	l.state = StateLoaded
	l.lastSignal = signal
	l.lastErr = err
	if err != nil {
		l.collection = nil
		return err
	}
	l.collection = recs
	return nil
}

// Refresh loads again only when the refresh signal moved since the last
// committed load. It reports whether a fetch was issued.
func (l *Loader) Refresh(ctx context.Context) (bool, error) {
	l.mu.RLock()
	changed := l.signal.Value() != l.lastSignal
	l.mu.RUnlock()
	if !changed {
		return false, nil
	}
	return true, l.Load(ctx)
}

// Collection returns the committed collection. Callers must not modify it.
func (l *Loader) Collection() []record.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collection
}

func (l *Loader) State() LoadState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

// Guard hands out liveness tokens for fetches whose result depends on a
// selection that can change before the fetch resolves.
type Guard struct {
	gen atomic.Uint64
}

// Token is captured when a fetch starts and checked before its result is
// committed.
type Token struct {
	g   *Guard
	gen uint64
}

// Begin invalidates every outstanding token and returns a new live one.
func (g *Guard) Begin() Token {
	return Token{g: g, gen: g.gen.Add(1)}
}

// Cancel invalidates every outstanding token, for example on teardown.
func (g *Guard) Cancel() {
	g.gen.Add(1)
}

// Live reports whether no newer token was issued and the guard was not
// cancelled since t was created.
func (t Token) Live() bool {
	return t.g != nil && t.g.gen.Load() == t.gen
}
