// Package boundary implements an error recovery boundary: a supervisor that
// captures a failure raised while rendering its subtree, shows a fallback in
// its place, and clears the failure on an explicit retry or when one of its
// watched reset keys changes. Failures are never retried automatically.
package boundary

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"pokeinfo/statehub/internal/view"
)

// FallbackFunc renders the captured failure. reset performs the same explicit
// retry as Boundary.Reset.
type FallbackFunc func(err error, reset func()) view.View

type Options struct {
	Fallback FallbackFunc
	// OnReset runs after an explicit Reset, typically to clear the input that
	// led to the failure. It does not run on an implicit, key-driven reset.
	OnReset   func()
	ResetKeys []string
	Logger    *zap.Logger
}

type Boundary struct {
	mu        sync.Mutex
	fallback  FallbackFunc
	onReset   func()
	logger    *zap.Logger
	resetKeys []string
	err       error
	snapshot  []string // resetKeys at capture time
}

func New(opts Options) *Boundary {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Fallback == nil {
		opts.Fallback = DefaultFallback
	}
	return &Boundary{
		fallback:  opts.Fallback,
		onReset:   opts.OnReset,
		logger:    opts.Logger,
		resetKeys: slices.Clone(opts.ResetKeys),
	}
}

// DefaultFallback shows the error message and a retry action.
func DefaultFallback(err error, _ func()) view.View {
	return view.Fallback(err, view.Action{Label: "Try Again"})
}

// Observe renders the subtree through render unless a failure is already
// captured. An error returned by render, or a panic inside it, is captured and
// the fallback is shown instead.
func (b *Boundary) Observe(render func() (view.View, error)) view.View {
	if err := b.Failed(); err != nil {
		return b.fallback(err, b.Reset)
	}

	v, err := safeRender(render)
	if err == nil {
		return v
	}

	b.mu.Lock()
	b.err = err
	b.snapshot = slices.Clone(b.resetKeys)
	keys := b.snapshot
	b.mu.Unlock()

	b.logger.Warn("error boundary captured failure", zap.Error(err), zap.Strings("reset_keys", keys))
	return b.fallback(err, b.Reset)
}

func safeRender(render func() (view.View, error)) (v view.View, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()
	return render()
}

// Failed returns the captured failure, if any.
func (b *Boundary) Failed() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Reset clears the captured failure and notifies OnReset. Without a captured
// failure there is no fallback to retry from, so Reset does nothing.
func (b *Boundary) Reset() {
	b.mu.Lock()
	if b.err == nil {
		b.mu.Unlock()
		return
	}
	b.err = nil
	b.snapshot = nil
	b.mu.Unlock()

	b.logger.Debug("error boundary reset")
	if b.onReset != nil {
		b.onReset()
	}
}

// SetResetKeys updates the watched keys. If a failure is captured and the
// keys differ from those at capture time, the failure is cleared and true is
// returned.
func (b *Boundary) SetResetKeys(keys []string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetKeys = slices.Clone(keys)
	if b.err == nil || !KeysChanged(b.snapshot, keys) {
		return false
	}
	b.err = nil
	b.snapshot = nil
	b.logger.Debug("error boundary reset by key change", zap.Strings("reset_keys", keys))
	return true
}

// KeysChanged reports whether next differs from prev in length or in any
// element.
func KeysChanged(prev, next []string) bool {
	return !slices.Equal(prev, next)
}
