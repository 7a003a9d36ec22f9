package repos

import (
	"context"
	"time"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/logging"
	"github.com/rescale-labs/safebox/internal/model"
)

// AutoLocker runs one background loop that wakes every checkInterval,
// sweeps all unlocked repos, and locks those whose last_activity has
// aged past their auto_lock.after duration.
type AutoLocker struct {
	st            *appstate.Store
	checkInterval time.Duration
	log           *logging.Logger

	appHidden bool
}

func NewAutoLocker(st *appstate.Store, checkInterval time.Duration, log *logging.Logger) *AutoLocker {
	if log == nil {
		log = logging.Nop()
	}
	return &AutoLocker{st: st, checkInterval: checkInterval, log: log}
}

// Run blocks, evaluating every checkInterval until ctx is canceled.
func (a *AutoLocker) Run(ctx context.Context) {
	ticker := time.NewTicker(a.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep()
		}
	}
}

func (a *AutoLocker) sweep() {
	now := time.Now()
	var toLock []ids.RepoId
	a.st.WithState(func(s *appstate.State) {
		for id, r := range s.Repos {
			if r.State != model.Unlocked {
				continue
			}
			if !r.AutoLock.After.Enabled {
				continue
			}
			if now.Sub(r.LastActivity) >= r.AutoLock.After.Duration {
				toLock = append(toLock, id)
			}
		}
	})
	for _, id := range toLock {
		a.log.Debug().Str("repo_id", string(id)).Msg("auto-locking repo after inactivity")
		Lock(a.st, id)
	}
}

// OnAppVisibilityChanged locks every unlocked repo whose policy requests
// it when the host UI transitions Visible -> Hidden.
func (a *AutoLocker) OnAppVisibilityChanged(visible bool) {
	wasVisible := !a.appHidden
	a.appHidden = !visible
	if !wasVisible || visible {
		return // only fires on a Visible -> Hidden transition
	}

	var toLock []ids.RepoId
	a.st.WithState(func(s *appstate.State) {
		for id, r := range s.Repos {
			if r.State == model.Unlocked && r.AutoLock.OnAppHidden {
				toLock = append(toLock, id)
			}
		}
	})
	for _, id := range toLock {
		Lock(a.st, id)
	}
}
