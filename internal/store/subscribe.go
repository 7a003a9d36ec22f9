package store

import "sort"

// subscription is a registered (events, snapshot, onChange) triple. The
// store recomputes Snapshot after any Mutate touching one of Events and
// compares it against the subscriber-owned cached value; on change the
// onChange side effect is scheduled to run after the lock is released.
type subscription[S any] struct {
	events   map[Event]struct{}
	snapshot func(state *S) interface{}
	onChange func(old, new interface{}, mutState *MutationState)
	cached   interface{}
	primed   bool
}

// Subscribe registers a subscriber observing events. snapshot computes a
// derived view of state; onChange is invoked (outside the write lock)
// whenever the recomputed view differs from the cached one by == (see
// snapshotsEqual). Use Unsubscribe with the returned id to remove it.
func (st *Store[S]) Subscribe(events []Event, snapshot func(state *S) interface{}, onChange func(old, new interface{}, mutState *MutationState)) uint64 {
	set := make(map[Event]struct{}, len(events))
	for _, e := range events {
		set[e] = struct{}{}
	}

	st.subsMu.Lock()
	st.nextSubID++
	id := st.nextSubID
	sub := &subscription[S]{events: set, snapshot: snapshot, onChange: onChange}
	st.subs[id] = sub
	st.subsMu.Unlock()

	st.WithState(func(s *S) {
		sub.cached = snapshot(s)
		sub.primed = true
	})

	return id
}

// SubscribeAlways registers a subscriber that fires on every Mutate
// touching one of events, skipping snapshot diffing. Used by WaitFor and
// other raw listeners that do their own recomputation.
func (st *Store[S]) SubscribeAlways(events []Event, onChange func(mutState *MutationState)) uint64 {
	var tick int64
	return st.Subscribe(events,
		func(s *S) interface{} { tick++; return tick }, // strictly increasing: never compares equal
		func(_, _ interface{}, mutState *MutationState) { onChange(mutState) },
	)
}

func (st *Store[S]) Unsubscribe(id uint64) {
	st.subsMu.Lock()
	defer st.subsMu.Unlock()
	delete(st.subs, id)
}

// dispatch is called after the write lock is released with the coalesced
// event list from one Mutate call. Subscribers registered for any of
// those events get their snapshot recomputed under a fresh read lock;
// changed ones are queued and then invoked, in registration order, with
// no lock held.
func (st *Store[S]) dispatch(events []Event, mutState *MutationState) {
	if len(events) == 0 {
		return
	}

	type pending struct {
		sub      *subscription[S]
		old, new interface{}
	}

	st.subsMu.Lock()
	subIDs := make([]uint64, 0, len(st.subs))
	for id := range st.subs {
		subIDs = append(subIDs, id)
	}
	sort.Slice(subIDs, func(i, j int) bool { return subIDs[i] < subIDs[j] })
	var matched []*subscription[S]
	for _, id := range subIDs {
		sub := st.subs[id]
		for _, e := range events {
			if _, ok := sub.events[e]; ok {
				matched = append(matched, sub)
				break
			}
		}
	}
	st.subsMu.Unlock()

	var toFire []pending
	for _, sub := range matched {
		var newSnap interface{}
		st.WithState(func(s *S) {
			newSnap = sub.snapshot(s)
		})
		old := sub.cached
		sub.cached = newSnap
		if !sub.primed || !snapshotsEqual(old, newSnap) {
			sub.primed = true
			toFire = append(toFire, pending{sub: sub, old: old, new: newSnap})
		}
	}

	for _, p := range toFire {
		p.sub.onChange(p.old, p.new, mutState)
	}
}

// snapshotsEqual uses == when the dynamic types support it and otherwise
// treats the values as always-changed; callers whose snapshot type isn't
// comparable should bake their own diffing into onChange and always
// return a fresh value here.
func snapshotsEqual(a, b interface{}) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
