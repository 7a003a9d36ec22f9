package repos

import (
	"testing"
	"time"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/cipher"
	"github.com/rescale-labs/safebox/internal/errs"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
)

func newTestRepo(t *testing.T, id, password, salt string) *model.Repo {
	t.Helper()
	c, err := cipher.New(password, salt)
	if err != nil {
		t.Fatalf("cipher.New failed: %v", err)
	}
	const validator = "123e4567-e89b-12d3-a456-426614174000"
	encrypted, err := c.EncryptValidator(validator)
	if err != nil {
		t.Fatalf("EncryptValidator failed: %v", err)
	}
	return &model.Repo{
		Id:                         ids.RepoId(id),
		Name:                       "My safe box",
		MountId:                    ids.MountId("m1"),
		RemotePath:                 "/enc-root",
		Salt:                       salt,
		PasswordValidator:          validator,
		PasswordValidatorEncrypted: encrypted,
		State:                      model.Locked,
	}
}

func TestUnlockWrongPasswordFails(t *testing.T) {
	st := appstate.NewStore()
	repo := newTestRepo(t, "r1", "password", "salt")
	SetRepos(st, []*model.Repo{repo})

	err := Unlock(st, "r1", "wrong-password")
	if err == nil {
		t.Fatal("expected an error for wrong password")
	}
	if err.(*errs.Error).Code != "invalid_password" {
		t.Errorf("expected invalid_password, got %v", err)
	}
}

func TestUnlockCorrectPasswordTransitionsAndCipherRoundTrips(t *testing.T) {
	st := appstate.NewStore()
	repo := newTestRepo(t, "r1", "password", "salt")
	SetRepos(st, []*model.Repo{repo})

	if err := Unlock(st, "r1", "password"); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	st.WithState(func(s *appstate.State) {
		r, ok := Get(s, "r1")
		if !ok {
			t.Fatal("repo missing after unlock")
		}
		if r.State != model.Unlocked {
			t.Errorf("expected Unlocked, got %v", r.State)
		}
		if r.Cipher == nil {
			t.Fatal("expected a cipher to be attached")
		}
		dec, err := r.Cipher.DecryptValidator(r.PasswordValidatorEncrypted)
		if err != nil || dec != r.PasswordValidator {
			t.Errorf("cipher does not round-trip the stored validator: %v", err)
		}
	})
}

func TestLockPurgesRepoFileProjections(t *testing.T) {
	st := appstate.NewStore()
	repo := newTestRepo(t, "r1", "password", "salt")
	SetRepos(st, []*model.Repo{repo})
	if err := Unlock(st, "r1", "password"); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	st.WithState(func(s *appstate.State) {
		s.RepoFiles.Files["some-id"] = &model.RepoFile{RepoId: "r1"}
	})

	Lock(st, "r1")

	st.WithState(func(s *appstate.State) {
		r, _ := Get(s, "r1")
		if r.State != model.Locked || r.Cipher != nil {
			t.Error("expected repo to be Locked with no cipher")
		}
		if len(s.RepoFiles.Files) != 0 {
			t.Error("expected all RepoFile projections under the repo to be purged")
		}
	})
}

func TestAutoLockSweepLocksAfterInactivity(t *testing.T) {
	st := appstate.NewStore()
	repo := newTestRepo(t, "r1", "password", "salt")
	repo.AutoLock.After.Enabled = true
	repo.AutoLock.After.Duration = 10 * time.Millisecond
	SetRepos(st, []*model.Repo{repo})
	if err := Unlock(st, "r1", "password"); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	st.WithState(func(s *appstate.State) {
		r, _ := Get(s, "r1")
		r.LastActivity = time.Now().Add(-time.Hour)
	})

	locker := NewAutoLocker(st, time.Millisecond, nil)
	locker.sweep()

	st.WithState(func(s *appstate.State) {
		r, _ := Get(s, "r1")
		if r.State != model.Locked {
			t.Error("expected repo to auto-lock after inactivity")
		}
	})
}
