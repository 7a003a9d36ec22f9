// Package repos implements the repo registry and unlock/lock lifecycle
// (component F): loading the index, password-validator verification,
// cipher ownership while unlocked, and the auto-lock policy.
package repos

import (
	"time"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/cipher"
	"github.com/rescale-labs/safebox/internal/errs"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
	"github.com/rescale-labs/safebox/internal/store"
)

// SetRepos installs the repo list fetched from the index endpoint,
// preserving the lock state of any repo already present (a refresh must
// not silently lock an unlocked repo).
func SetRepos(st *appstate.Store, fetched []*model.Repo) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		for _, r := range fetched {
			if existing, ok := s.Repos[r.Id]; ok && existing.State == model.Unlocked {
				r.State = existing.State
				r.Cipher = existing.Cipher
				r.LastActivity = existing.LastActivity
			}
			s.Repos[r.Id] = r
		}
		notify(store.EventRepos)
	})
}

// Unlock derives keys from (password, repo.salt), builds a candidate
// cipher, decrypts the stored validator, and compares it against the
// repo's plaintext validator. On match the repo transitions to Unlocked
// and the cipher becomes shared with every downstream consumer; on
// mismatch, or on any validator the cipher cannot make sense of, it
// returns ErrInvalidPassword (spec's legacy-validator open question:
// unknown formats are InvalidPassword, never an internal error).
func Unlock(st *appstate.Store, repoId ids.RepoId, password string) error {
	var outcome error

	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		repo, ok := s.Repos[repoId]
		if !ok {
			outcome = errs.ErrRepoNotFound
			return
		}

		c, err := cipher.New(password, repo.Salt)
		if err != nil {
			outcome = err
			return
		}

		decrypted, err := c.DecryptValidator(repo.PasswordValidatorEncrypted)
		if err != nil || decrypted != repo.PasswordValidator {
			outcome = errs.ErrInvalidPassword
			return
		}

		repo.State = model.Unlocked
		repo.Cipher = c
		repo.LastActivity = time.Now()

		mutState.UnlockedRepos = append(mutState.UnlockedRepos, string(repoId))
		notify(store.EventRepos)
		notify(store.EventRepoUnlock)
		mutNotify(store.MutationRepoUnlock)
	})

	return outcome
}

// Lock drops the cipher and purges every RepoFile projection under the
// repo, atomically in one mutation.
func Lock(st *appstate.Store, repoId ids.RepoId) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		repo, ok := s.Repos[repoId]
		if !ok || repo.State != model.Unlocked {
			return
		}
		repo.State = model.Locked
		repo.Cipher = nil

		for id, rfile := range s.RepoFiles.Files {
			if rfile.RepoId == repoId {
				delete(s.RepoFiles.Files, id)
			}
		}

		mutState.LockedRepos = append(mutState.LockedRepos, string(repoId))
		notify(store.EventRepos)
		notify(store.EventRepoFiles)
		mutNotify(store.MutationRepoUnlock)
	})
}

// Touch updates last_activity; any mutation via the repo (listing,
// upload, download, unlock) should call this.
func Touch(st *appstate.Store, repoId ids.RepoId) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		if repo, ok := s.Repos[repoId]; ok {
			repo.LastActivity = time.Now()
		}
	})
}

// Remove drops a repo from the registry (after the remote delete call
// succeeds).
func Remove(st *appstate.Store, repoId ids.RepoId) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		delete(s.Repos, repoId)
		for id, rfile := range s.RepoFiles.Files {
			if rfile.RepoId == repoId {
				delete(s.RepoFiles.Files, id)
			}
		}
		notify(store.EventRepos)
		notify(store.EventRepoRemove)
	})
}
