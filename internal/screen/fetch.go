// Package screen holds the data-fetch state machine every data screen uses:
// idle, then loading, then success or error.
package screen

import (
	"context"
	"sync"

	"github.com/findosh/wiprox/internal/api"
	"github.com/findosh/wiprox/internal/models"
)

// Status is the phase of a fetch
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of a fetch
type State[T any] struct {
	Status  Status
	Data    T
	Err     error
	Message string // human-readable error text, set when Status is Failed
}

// OK reports whether data is available
func (s State[T]) OK() bool { return s.Status == Success }

// Failed reports whether the fetch ended in error
func (s State[T]) Failed() bool { return s.Status == Failed }

// Loader produces a screen's data
type Loader[T any] func(ctx context.Context) (T, error)

// Fetch runs a loader and tracks its state. A load whose context ends before
// it completes is discarded, as is any load overtaken by a newer one.
type Fetch[T any] struct {
	fallback string

	mu     sync.Mutex
	state  State[T]
	loader Loader[T]
	seq    uint64
}

// New creates an idle fetch. fallback is the error text used when the
// failure carries no server message.
func New[T any](fallback string) *Fetch[T] {
	return &Fetch[T]{fallback: fallback}
}

// Snapshot returns the current state
func (f *Fetch[T]) Snapshot() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Load runs loader and returns the resulting state
func (f *Fetch[T]) Load(ctx context.Context, loader Loader[T]) State[T] {
	f.mu.Lock()
	prev := f.state
	f.loader = loader
	f.seq++
	seq := f.seq
	f.state = State[T]{Status: Loading, Data: prev.Data}
	f.mu.Unlock()

	data, err := loader(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		return f.state
	}
	if ctx.Err() != nil {
		f.state = prev
		return f.state
	}
	if err != nil {
		var zero T
		f.state = State[T]{Status: Failed, Data: zero, Err: err, Message: Message(err, f.fallback)}
		return f.state
	}
	f.state = State[T]{Status: Success, Data: data}
	return f.state
}

// Retry runs the last loader again. Without a previous load it is a no-op.
func (f *Fetch[T]) Retry(ctx context.Context) State[T] {
	f.mu.Lock()
	loader := f.loader
	f.mu.Unlock()
	if loader == nil {
		return f.Snapshot()
	}
	return f.Load(ctx, loader)
}

// Run is a one-shot Load for handlers that render a single state
func Run[T any](ctx context.Context, fallback string, loader Loader[T]) State[T] {
	return New[T](fallback).Load(ctx, loader)
}

// Message turns an error into notice text: local validation text as is, the
// server's message verbatim, or the fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if models.IsValidation(err) {
		return err.Error()
	}
	return api.Message(err, fallback)
}
