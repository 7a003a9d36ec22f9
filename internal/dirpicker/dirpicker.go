// Package dirpicker implements the cached listing-navigation cursor
// for "choose a folder" flows (component K): a repo-scoped cursor over
// decrypted paths plus an optional selected subfolder. Like
// internal/dialogs, this is state only — no OS folder picker, which is
// UI glue out of scope per SPEC_FULL.md.
//
// Grounded on original_source/vault-core/src/dir_pickers's shape (a
// map of pickers keyed by id, each tracking a navigation cursor),
// reproduced here against the store's mutation-closure model.
package dirpicker

import (
	"github.com/google/uuid"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/store"
)

// Open starts a new picker rooted at path within repoId and returns its id.
func Open(st *appstate.Store, repoId ids.RepoId, path ids.DecryptedPath) string {
	id := uuid.New().String()
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		s.DirPickers[id] = &appstate.DirPickerState{Id: id, RepoId: repoId, Path: path}
		notify(store.EventDirPickers)
		mutNotify(store.MutationDirPickers)
	})
	return id
}

// Navigate moves an open picker's cursor to a new path, clearing any
// prior selection (it no longer applies once the listing changes).
func Navigate(st *appstate.Store, id string, path ids.DecryptedPath) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		p, ok := s.DirPickers[id]
		if !ok {
			return
		}
		p.Path = path
		p.Selected = nil
		notify(store.EventDirPickers)
		mutNotify(store.MutationDirPickers)
	})
}

// Select records the chosen subfolder under the picker's current cursor.
func Select(st *appstate.Store, id string, selected ids.DecryptedPath) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		p, ok := s.DirPickers[id]
		if !ok {
			return
		}
		p.Selected = &selected
		notify(store.EventDirPickers)
		mutNotify(store.MutationDirPickers)
	})
}

// Close discards a picker.
func Close(st *appstate.Store, id string) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		delete(s.DirPickers, id)
		notify(store.EventDirPickers)
		mutNotify(store.MutationDirPickers)
	})
}

// Get returns the picker with the given id, if any.
func Get(s *appstate.State, id string) (*appstate.DirPickerState, bool) {
	p, ok := s.DirPickers[id]
	return p, ok
}
