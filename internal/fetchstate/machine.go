// Package fetchstate tracks the lifecycle of one outstanding lookup-by-key:
// idle, pending, then resolved or rejected.
package fetchstate

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Machine serializes every transition for one component on its mutex, which
// plays the role of the component's event loop.
//
// Each submission bumps a generation counter. A completion that arrives after
// a newer submission is discarded rather than applied, so a slow lookup for an
// abandoned key can never overwrite the state of the current one. Superseded
// lookups are not cancelled; they run to completion and their result is dropped.
type Machine[T any] struct {
	mu        sync.Mutex
	ctx       context.Context
	source    Source[T]
	logger    *zap.Logger
	state     State[T]
	gen       uint64
	done      chan struct{}
	listeners []func(State[T])
}

// New returns an idle machine. Lookups run under ctx.
func New[T any](ctx context.Context, source Source[T], logger *zap.Logger) *Machine[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	done := make(chan struct{})
	close(done)
	return &Machine[T]{
		ctx:    ctx,
		source: source,
		logger: logger,
		state:  State[T]{Status: StatusIdle},
		done:   done,
	}
}

// OnChange registers fn to be called with every new state. Listeners run in
// transition order while the machine is locked and must not call back into it.
func (m *Machine[T]) OnChange(fn func(State[T])) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Machine[T]) Snapshot() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Done is closed once the most recent submission has settled.
func (m *Machine[T]) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Submit starts tracking key. An empty key resets the machine to idle without
// issuing a lookup. A non-empty key moves it to pending immediately and issues
// the lookup in the background. The returned channel is closed when this
// submission's lookup has completed, whether or not its result was applied.
func (m *Machine[T]) Submit(key string) <-chan struct{} {
	done := make(chan struct{})

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.done = done
	if key == "" {
		m.state = State[T]{Status: StatusIdle}
	} else {
		m.state = State[T]{Status: StatusPending, RequestedKey: key}
	}
	m.notify()
	m.mu.Unlock()

	if key == "" {
		close(done)
		return done
	}
	m.logger.Debug("lookup issued", zap.String("key", key), zap.Uint64("generation", gen))
	go m.run(gen, key, done)
	return done
}

func (m *Machine[T]) run(gen uint64, key string, done chan struct{}) {
	defer close(done)

	data, err := m.source.FetchByKey(m.ctx, key)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		m.logger.Debug("discarding stale lookup result",
			zap.String("key", key), zap.Uint64("generation", gen), zap.Error(err))
		return
	}
	if err != nil {
		m.state = State[T]{Status: StatusRejected, Err: err, RequestedKey: key}
	} else {
		m.state = State[T]{Status: StatusResolved, Data: &data, RequestedKey: key}
	}
	m.notify()
	m.mu.Unlock()

	if err != nil {
		m.logger.Info("lookup rejected", zap.String("key", key), zap.Error(err))
	}
}

// notify must be called with mu held.
func (m *Machine[T]) notify() {
	for _, fn := range m.listeners {
		fn(m.state)
	}
}
