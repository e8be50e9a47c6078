package fetchstate

import "pokeinfo/statehub/internal/view"

// Views maps each non-failed status to its output.
type Views[T any] struct {
	Idle     func() view.View
	Pending  func(key string) view.View
	Resolved func(data T) view.View
}

// Render produces the view for s. A rejected state is not rendered: its error
// is returned so that an enclosing boundary can decide what to show.
func Render[T any](s State[T], v Views[T]) (view.View, error) {
	switch s.Status {
	case StatusPending:
		return v.Pending(s.RequestedKey), nil
	case StatusResolved:
		return v.Resolved(*s.Data), nil
	case StatusRejected:
		return view.View{}, s.Err
	default:
		return v.Idle(), nil
	}
}
