package repofiles

import (
	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
	"github.com/rescale-labs/safebox/internal/store"
)

// Install projects and caches f under an unlocked repo.
func Install(st *appstate.Store, c *model.Repo, f *model.RemoteFile) *model.RepoFile {
	var out *model.RepoFile
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		rfile := Project(c.Cipher, c.Id, c.RemotePath, f)
		s.RepoFiles.Files[f.Id()] = rfile
		out = rfile
		notify(store.EventRepoFiles)
	})
	return out
}

// Invalidate drops the cached projection for id (repo lock, or a cache
// mutation of the underlying remote entry).
func Invalidate(st *appstate.Store, id ids.RemoteFileId) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		delete(s.RepoFiles.Files, id)
		notify(store.EventRepoFiles)
	})
}

// InvalidateRepo drops every cached projection belonging to repoId.
func InvalidateRepo(st *appstate.Store, repoId ids.RepoId) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		for id, rfile := range s.RepoFiles.Files {
			if rfile.RepoId == repoId {
				delete(s.RepoFiles.Files, id)
			}
		}
		notify(store.EventRepoFiles)
	})
}
