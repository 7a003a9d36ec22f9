// Package spaceusage implements component K's remote space-usage
// tracking: a repo's used/quota byte counts fetched from the index
// endpoint, held in appstate.SpaceUsage and refreshed on demand.
//
// Adapted from the teacher's internal/diskspace, which checked local
// filesystem free space before writing a download. The shape here is
// the same (bytes used vs. available) but the source flips: instead of
// statting a local mountpoint, Refresh asks the remote index for a
// repo's used/quota bytes, and InsufficientQuotaError plays the role
// the teacher's InsufficientSpaceError played for local writes.
package spaceusage

import (
	"context"
	"fmt"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/store"
)

// Remote is the subset of the HTTP collaborator needed to fetch a
// repo's current usage.
type Remote interface {
	RepoUsage(ctx context.Context, repoId ids.RepoId) (used int64, quota *int64, err error)
}

// InsufficientQuotaError reports that an upload of requiredBytes would
// exceed the repo's remote quota.
type InsufficientQuotaError struct {
	RepoId        ids.RepoId
	RequiredBytes int64
	Used          int64
	Quota         int64
}

func (e *InsufficientQuotaError) Error() string {
	return fmt.Sprintf("insufficient remote quota for repo %s: used %d + required %d exceeds quota %d",
		e.RepoId, e.Used, e.RequiredBytes, e.Quota)
}

// Refresh fetches current usage for repoId and stores it.
func Refresh(ctx context.Context, st *appstate.Store, remote Remote, repoId ids.RepoId) error {
	used, quota, err := remote.RepoUsage(ctx, repoId)
	if err != nil {
		return err
	}
	Set(st, repoId, used, quota)
	return nil
}

// Set installs a usage reading directly, bypassing Remote (used by
// Refresh and by tests that already have the numbers).
func Set(st *appstate.Store, repoId ids.RepoId, used int64, quota *int64) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		s.SpaceUsage[repoId] = &appstate.SpaceUsage{Used: used, Quota: quota}
		notify(store.EventSpaceUsage)
	})
}

// Get returns the last-known usage for repoId.
func Get(s *appstate.State, repoId ids.RepoId) (*appstate.SpaceUsage, bool) {
	u, ok := s.SpaceUsage[repoId]
	return u, ok
}

// CheckQuota reports InsufficientQuotaError if adding requiredBytes to
// the cached usage would exceed a known quota. A nil (unknown) quota
// never blocks the operation.
func CheckQuota(s *appstate.State, repoId ids.RepoId, requiredBytes int64) error {
	u, ok := s.SpaceUsage[repoId]
	if !ok || u.Quota == nil {
		return nil
	}
	if u.Used+requiredBytes > *u.Quota {
		return &InsufficientQuotaError{RepoId: repoId, RequiredBytes: requiredBytes, Used: u.Used, Quota: *u.Quota}
	}
	return nil
}
