package store

import (
	"context"
	"testing"
	"time"
)

type testState struct {
	counter int
}

func TestMutateDispatchesCoalescedEvents(t *testing.T) {
	st := New(testState{})

	var received []interface{}
	st.Subscribe([]Event{EventRepos},
		func(s *testState) interface{} { return s.counter },
		func(_, new interface{}, _ *MutationState) { received = append(received, new) },
	)

	st.Mutate(func(s *testState, notify NotifyFunc, mutState *MutationState, mutNotify MutationNotifyFunc) {
		s.counter = 1
		notify(EventRepos)
		notify(EventRepos) // duplicate within one mutation must collapse
	})

	if len(received) != 1 {
		t.Fatalf("expected exactly one dispatched change, got %d: %v", len(received), received)
	}
	if received[0] != 1 {
		t.Errorf("expected snapshot 1, got %v", received[0])
	}
}

func TestSubscribeOnlyFiresOnChange(t *testing.T) {
	st := New(testState{counter: 5})

	fired := 0
	st.Subscribe([]Event{EventRepos},
		func(s *testState) interface{} { return s.counter },
		func(_, _ interface{}, _ *MutationState) { fired++ },
	)

	st.Mutate(func(s *testState, notify NotifyFunc, mutState *MutationState, mutNotify MutationNotifyFunc) {
		// no change to counter
		notify(EventRepos)
	})
	if fired != 0 {
		t.Errorf("expected no fire when snapshot unchanged, got %d", fired)
	}

	st.Mutate(func(s *testState, notify NotifyFunc, mutState *MutationState, mutNotify MutationNotifyFunc) {
		s.counter = 6
		notify(EventRepos)
	})
	if fired != 1 {
		t.Errorf("expected exactly one fire after real change, got %d", fired)
	}
}

func TestMutationNotifyRunsInsideLock(t *testing.T) {
	st := New(testState{})

	st.OnMutation(MutationRepos, func(me MutationEvent, state *testState, mutState *MutationState, notify NotifyFunc) {
		state.counter += 10
	})

	st.Mutate(func(s *testState, notify NotifyFunc, mutState *MutationState, mutNotify MutationNotifyFunc) {
		s.counter = 1
		mutNotify(MutationRepos)
	})

	st.WithState(func(s *testState) {
		if s.counter != 11 {
			t.Errorf("expected mutation listener to run, counter = %d", s.counter)
		}
	})
}

func TestWaitForEagerMatch(t *testing.T) {
	st := New(testState{counter: 42})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := WaitFor(ctx, st, []Event{EventRepos}, func(s *testState) (int, bool) {
		if s.counter == 42 {
			return s.counter, true
		}
		return 0, false
	})
	if err != nil {
		t.Fatalf("WaitFor failed: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestWaitForResolvesOnMutation(t *testing.T) {
	st := New(testState{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan int, 1)
	go func() {
		got, err := WaitFor(ctx, st, []Event{EventRepos}, func(s *testState) (int, bool) {
			if s.counter == 7 {
				return s.counter, true
			}
			return 0, false
		})
		if err != nil {
			t.Errorf("WaitFor failed: %v", err)
		}
		done <- got
	}()

	time.Sleep(10 * time.Millisecond)
	st.Mutate(func(s *testState, notify NotifyFunc, mutState *MutationState, mutNotify MutationNotifyFunc) {
		s.counter = 7
		notify(EventRepos)
	})

	select {
	case got := <-done:
		if got != 7 {
			t.Errorf("got %d, want 7", got)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitFor did not resolve in time")
	}
}
