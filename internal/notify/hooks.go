package notify

import (
	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
	"github.com/rescale-labs/safebox/internal/store"
)

// Hooks installs the OnMutation listeners that fire desktop
// notifications on transfer completion/failure and repo auto-lock,
// per §4.K. Each listener runs synchronously inside the mutation that
// produced the state change (component B's in-lock listener layer).
// The transfers listener remembers the terminal state it last reported
// for each transfer id, so a transfer that stays Done or Failed across
// later mutations is reported once.
type Hooks struct {
	n        *Notifier
	notified map[string]model.TransferState
}

func NewHooks(n *Notifier) *Hooks {
	return &Hooks{n: n, notified: make(map[string]model.TransferState)}
}

// Install registers the listeners on st and returns a function that
// unregisters them.
func (h *Hooks) Install(st *appstate.Store) (remove func()) {
	transfersID := st.OnMutation(store.MutationTransfers, h.onTransfersMutation)
	reposID := st.OnMutation(store.MutationRepos, h.onReposMutation)
	return func() {
		st.OffMutation(store.MutationTransfers, transfersID)
		st.OffMutation(store.MutationRepos, reposID)
	}
}

func (h *Hooks) onTransfersMutation(me store.MutationEvent, s *appstate.State, mutState *store.MutationState, notify store.NotifyFunc) {
	for _, t := range s.Transfers.Transfers {
		if prev, ok := h.notified[t.Id]; ok && prev == t.State {
			continue
		}
		switch t.State {
		case model.TransferDone:
			h.notified[t.Id] = t.State
			h.n.TransferComplete(transferDisplayName(t), transferDisplayPath(t))
		case model.TransferFailed:
			if !t.IsRetriable {
				h.notified[t.Id] = t.State
				errMsg := ""
				if t.LastError != nil {
					errMsg = t.LastError.Error()
				}
				h.n.TransferFailed(transferDisplayName(t), errMsg)
			}
		}
	}
}

func (h *Hooks) onReposMutation(me store.MutationEvent, s *appstate.State, mutState *store.MutationState, notify store.NotifyFunc) {
	for _, repoIdStr := range mutState.LockedRepos {
		repoId := ids.RepoId(repoIdStr)
		if r, ok := s.Repos[repoId]; ok {
			h.n.RepoAutoLocked(r.Name)
		}
	}
}

func transferDisplayName(t *model.Transfer) string {
	switch {
	case t.Upload != nil:
		if t.Upload.CurrentName != "" {
			return t.Upload.CurrentName
		}
		return t.Upload.OriginalName
	case t.Download != nil:
		_, name, ok := ids.SplitParentName(string(t.Download.EncryptedPath))
		if ok {
			return name
		}
	}
	return t.Id
}

func transferDisplayPath(t *model.Transfer) string {
	switch {
	case t.Upload != nil:
		return string(t.Upload.ParentPath)
	case t.Download != nil:
		return string(t.Download.EncryptedPath)
	}
	return ""
}
