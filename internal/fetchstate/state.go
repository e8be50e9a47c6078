package fetchstate

import "context"

type Status string

const (
	StatusIdle     Status = "idle"
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

func (s Status) Settled() bool {
	return s == StatusResolved || s == StatusRejected
}

// State is a snapshot of one tracked lookup. Data is set only when resolved,
// Err only when rejected.
type State[T any] struct {
	Status       Status `json:"status"`
	Data         *T     `json:"data,omitempty"`
	Err          error  `json:"-"`
	RequestedKey string `json:"requestedKey,omitempty"`
}

// Source resolves a key to data.
type Source[T any] interface {
	FetchByKey(ctx context.Context, key string) (T, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, key string) (T, error)

func (f SourceFunc[T]) FetchByKey(ctx context.Context, key string) (T, error) {
	return f(ctx, key)
}
