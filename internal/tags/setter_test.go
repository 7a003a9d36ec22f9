package tags

import (
	"context"
	"testing"

	"github.com/rescale-labs/safebox/internal/errs"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
)

type fakeRemote struct {
	conflictsLeft int
	current       *model.RemoteFile
	setCalls      int
	infoCalls     int
}

func (f *fakeRemote) SetTags(ctx context.Context, mount ids.MountId, path ids.RemotePath, cond SetTagsCondition, tags map[string][]string) (*model.RemoteFile, error) {
	f.setCalls++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return nil, errs.ErrTagConflict
	}
	updated := *f.current
	updated.Tags = tags
	return &updated, nil
}

func (f *fakeRemote) FileInfo(ctx context.Context, mount ids.MountId, path ids.RemotePath) (*model.RemoteFile, error) {
	f.infoCalls++
	return f.current, nil
}

func TestSetSucceedsFirstTry(t *testing.T) {
	remote := &fakeRemote{current: &model.RemoteFile{Size: 10}}
	got, err := Set(context.Background(), remote, "m1", "/a", remote.current, map[string][]string{VaultKey: {"x"}}, 3)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got.Tags[VaultKey][0] != "x" {
		t.Fatalf("expected tags applied, got %v", got.Tags)
	}
	if remote.setCalls != 1 || remote.infoCalls != 0 {
		t.Fatalf("expected 1 set call, 0 reloads, got %d/%d", remote.setCalls, remote.infoCalls)
	}
}

func TestSetRetriesOnConflictThenSucceeds(t *testing.T) {
	remote := &fakeRemote{current: &model.RemoteFile{Size: 10}, conflictsLeft: 2}
	got, err := Set(context.Background(), remote, "m1", "/a", remote.current, map[string][]string{VaultKey: {"x"}}, 5)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a result")
	}
	if remote.setCalls != 3 {
		t.Fatalf("expected 3 set attempts (2 conflicts + 1 success), got %d", remote.setCalls)
	}
	if remote.infoCalls != 2 {
		t.Fatalf("expected 2 reloads between conflicting attempts, got %d", remote.infoCalls)
	}
}

func TestSetGivesUpAfterMaxRetries(t *testing.T) {
	remote := &fakeRemote{current: &model.RemoteFile{Size: 10}, conflictsLeft: 100}
	_, err := Set(context.Background(), remote, "m1", "/a", remote.current, map[string][]string{VaultKey: {"x"}}, 2)
	if err == nil {
		t.Fatalf("expected retries-exhausted error")
	}
	if err != errs.ErrTagRetriesExhausted {
		t.Fatalf("got %v, want ErrTagRetriesExhausted", err)
	}
}
