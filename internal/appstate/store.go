package appstate

import "github.com/rescale-labs/safebox/internal/store"

// Store is the concrete store type every component operates on.
type Store = store.Store[State]

// NewStore builds a fresh Store with an empty State.
func NewStore() *Store {
	return store.New(New())
}
