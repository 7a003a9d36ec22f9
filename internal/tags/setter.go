package tags

import (
	"context"
	"errors"

	"github.com/rescale-labs/safebox/internal/errs"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
)

// SetTagsCondition carries the optimistic-concurrency preconditions §4.J
// attaches to a set-tags call.
type SetTagsCondition struct {
	IfSize     *int64
	IfModified *int64
	IfHash     string
	IfOldTags  map[string][]string
}

// Remote is the subset of the HTTP collaborator the tag setter needs:
// issuing the conditional set-tags call, and re-fetching a file's
// current metadata after a Conflict so the retry has fresh conditions.
type Remote interface {
	SetTags(ctx context.Context, mount ids.MountId, path ids.RemotePath, cond SetTagsCondition, tags map[string][]string) (*model.RemoteFile, error)
	FileInfo(ctx context.Context, mount ids.MountId, path ids.RemotePath) (*model.RemoteFile, error)
}

// Set applies tags to (mount, path), retrying on Conflict up to
// maxRetries by reloading the remote file and recomputing the
// conditional headers from its current (size, modified, hash, tags).
func Set(ctx context.Context, remote Remote, mount ids.MountId, path ids.RemotePath, current *model.RemoteFile, tags map[string][]string, maxRetries int) (*model.RemoteFile, error) {
	for attempt := 0; ; attempt++ {
		cond := conditionFrom(current)
		updated, err := remote.SetTags(ctx, mount, path, cond, tags)
		if err == nil {
			return updated, nil
		}
		if !isConflict(err) {
			return nil, err
		}
		if attempt >= maxRetries {
			return nil, errs.ErrTagRetriesExhausted
		}
		current, err = remote.FileInfo(ctx, mount, path)
		if err != nil {
			return nil, err
		}
	}
}

func conditionFrom(f *model.RemoteFile) SetTagsCondition {
	if f == nil {
		return SetTagsCondition{}
	}
	size, modified := f.Size, f.Modified
	return SetTagsCondition{
		IfSize:     &size,
		IfModified: &modified,
		IfHash:     f.Hash,
		IfOldTags:  f.Tags,
	}
}

func isConflict(err error) bool {
	return errors.Is(err, errs.ErrTagConflict)
}
