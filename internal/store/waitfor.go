package store

import "context"

// WaitFor resolves to the first ok result produced by predicate: it
// evaluates eagerly once; if not satisfied, registers a subscription on
// events and re-evaluates on every notification; it re-evaluates once
// more immediately after registering to close the race window between
// "subscription registered" and "return future".
func WaitFor[S any, R any](ctx context.Context, st *Store[S], events []Event, predicate func(state *S) (R, bool)) (R, error) {
	var zero R

	var result R
	var ok bool
	st.WithState(func(s *S) { result, ok = predicate(s) })
	if ok {
		return result, nil
	}

	ch := make(chan R, 1)

	id := st.SubscribeAlways(events, func(_ *MutationState) {
		st.WithState(func(s *S) {
			if r, ok := predicate(s); ok {
				select {
				case ch <- r:
				default:
				}
			}
		})
	})
	defer st.Unsubscribe(id)

	// Close the registration race window.
	st.WithState(func(s *S) {
		if r, ok := predicate(s); ok {
			select {
			case ch <- r:
			default:
			}
		}
	})

	select {
	case r := <-ch:
		return r, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
