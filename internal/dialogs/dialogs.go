// Package dialogs implements the pending-confirmation state for
// destructive operations (component K): opening one records it in
// appstate.Dialogs; the caller resolves it by confirming or canceling,
// which removes it again. No OS dialog/file picker lives here — that
// is UI glue, out of scope per SPEC_FULL.md.
//
// Grounded on original_source/vault-core/src/dialogs's shape (a map of
// pending dialogs keyed by id), reproduced here against the store's
// mutation-closure model (component B).
package dialogs

import (
	"github.com/google/uuid"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/store"
)

// Kind enumerates the destructive operations a dialog can confirm.
type Kind string

const (
	KindOverwrite Kind = "overwrite"
	KindDelete    Kind = "delete"
)

// Open records a new pending confirmation and returns its id.
func Open(st *appstate.Store, kind Kind, message string) string {
	id := uuid.New().String()
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		s.Dialogs[id] = &appstate.DialogState{Id: id, Kind: string(kind), Message: message}
		notify(store.EventDialogs)
		mutNotify(store.MutationDialogs)
	})
	return id
}

// Resolve removes a pending dialog, whether confirmed or canceled; the
// caller is responsible for acting on the decision before calling this.
func Resolve(st *appstate.Store, id string) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		delete(s.Dialogs, id)
		notify(store.EventDialogs)
		mutNotify(store.MutationDialogs)
	})
}

// Get returns the pending dialog with the given id, if any.
func Get(s *appstate.State, id string) (*appstate.DialogState, bool) {
	d, ok := s.Dialogs[id]
	return d, ok
}
