package repos

import (
	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/cipher"
	"github.com/rescale-labs/safebox/internal/errs"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
)

func Get(s *appstate.State, id ids.RepoId) (*model.Repo, bool) {
	r, ok := s.Repos[id]
	return r, ok
}

func IsUnlocked(s *appstate.State, id ids.RepoId) bool {
	r, ok := s.Repos[id]
	return ok && r.State == model.Unlocked
}

// Cipher returns the repo's active cipher, or ErrRepoLocked if it isn't
// unlocked.
func Cipher(s *appstate.State, id ids.RepoId) (*cipher.Cipher, error) {
	r, ok := s.Repos[id]
	if !ok {
		return nil, errs.ErrRepoNotFound
	}
	if r.State != model.Unlocked {
		return nil, errs.ErrRepoLocked
	}
	return r.Cipher, nil
}

func List(s *appstate.State) []*model.Repo {
	out := make([]*model.Repo, 0, len(s.Repos))
	for _, r := range s.Repos {
		out = append(out, r)
	}
	return out
}
