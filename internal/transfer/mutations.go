package transfer

import (
	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/model"
	"github.com/rescale-labs/safebox/internal/store"
)

// Enqueue adds a new Waiting transfer and returns its id.
func Enqueue(st *appstate.Store, t *model.Transfer) string {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		s.Transfers.NextInsertionOrder++
		t.InsertionOrder = s.Transfers.NextInsertionOrder
		t.State = model.TransferWaiting
		s.Transfers.Transfers[t.Id] = t
		notify(store.EventTransfers)
		mutNotify(store.MutationTransfers)
	})
	return t.Id
}

// selectNextTransfer prefers an upload over a download when both
// classes have slack; among candidates, the smallest insertion order.
func selectNextTransfer(s *appstate.State, cfg SchedulerLimits) *model.Transfer {
	var bestUpload, bestDownload *model.Transfer
	for _, t := range s.Transfers.Transfers {
		if t.State != model.TransferWaiting {
			continue
		}
		switch t.Kind {
		case model.TransferUpload:
			if bestUpload == nil || t.InsertionOrder < bestUpload.InsertionOrder {
				bestUpload = t
			}
		case model.TransferDownload, model.TransferDownloadReader:
			if bestDownload == nil || t.InsertionOrder < bestDownload.InsertionOrder {
				bestDownload = t
			}
		}
	}

	uploadSlack := s.Transfers.TransferringUploads < cfg.UploadConcurrency
	downloadSlack := s.Transfers.TransferringDownloads < cfg.DownloadConcurrency

	if uploadSlack && bestUpload != nil {
		return bestUpload
	}
	if downloadSlack && bestDownload != nil {
		return bestDownload
	}
	return nil
}

// SchedulerLimits is the per-class concurrency cap pair consulted by
// selectNextTransfer and TryDispatch.
type SchedulerLimits struct {
	UploadConcurrency   int
	DownloadConcurrency int
}

// TryDispatch atomically picks the next eligible Waiting transfer (if
// any idle slot exists) and transitions it to Processing, incrementing
// the relevant class counter. Returns nil if nothing is dispatchable.
func TryDispatch(st *appstate.Store, limits SchedulerLimits) *model.Transfer {
	var dispatched *model.Transfer
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		t := selectNextTransfer(s, limits)
		if t == nil {
			return
		}
		t.State = model.TransferProcessing
		t.Attempts++
		if t.Kind == model.TransferUpload {
			s.Transfers.TransferringUploads++
		} else {
			s.Transfers.TransferringDownloads++
		}
		dispatched = t
		notify(store.EventTransfers)
		mutNotify(store.MutationTransfers)
	})
	return dispatched
}

// MarkTransferring transitions id from Processing to Transferring.
func MarkTransferring(st *appstate.Store, id string) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		if t, ok := s.Transfers.Transfers[id]; ok {
			t.State = model.TransferTransferring
			notify(store.EventTransfers)
		}
	})
}

// release decrements the class counter for a terminal transfer.
func release(s *appstate.State, t *model.Transfer) {
	if t.Kind == model.TransferUpload {
		if s.Transfers.TransferringUploads > 0 {
			s.Transfers.TransferringUploads--
		}
	} else {
		if s.Transfers.TransferringDownloads > 0 {
			s.Transfers.TransferringDownloads--
		}
	}
}

// MarkDone transitions id to Done, releasing its concurrency slot.
func MarkDone(st *appstate.Store, id string) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		t, ok := s.Transfers.Transfers[id]
		if !ok {
			return
		}
		release(s, t)
		t.State = model.TransferDone
		s.Transfers.DoneCount++
		notify(store.EventTransfers)
		mutNotify(store.MutationTransfers)
	})
}

// MarkFailed transitions id back to Waiting if retriable and under the
// attempt cap, else to Failed. A transfer whose Aborted flag is set is
// never retried regardless of attempts remaining.
func MarkFailed(st *appstate.Store, id string, err error, autoretryAttempts int) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		t, ok := s.Transfers.Transfers[id]
		if !ok {
			return
		}
		if t.State == model.TransferProcessing || t.State == model.TransferTransferring {
			release(s, t)
		}
		if t.State == model.TransferTransferring {
			s.Transfers.DoneBytes -= t.TransferredBytes
			t.TransferredBytes = 0
		}
		t.LastError = err
		if t.IsRetriable && !t.Aborted && t.Attempts < autoretryAttempts {
			t.State = model.TransferWaiting
		} else {
			t.State = model.TransferFailed
			s.Transfers.FailedCount++
		}
		notify(store.EventTransfers)
		mutNotify(store.MutationTransfers)
	})
}

// Abort flips the per-transfer abort flag; non-persistent transfers are
// dropped from the map immediately.
func Abort(st *appstate.Store, id string) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		t, ok := s.Transfers.Transfers[id]
		if !ok {
			return
		}
		t.Aborted = true
		if t.State == model.TransferProcessing || t.State == model.TransferTransferring {
			release(s, t)
			if t.State == model.TransferTransferring {
				s.Transfers.DoneBytes -= t.TransferredBytes
				t.TransferredBytes = 0
			}
			if t.IsPersistent {
				t.State = model.TransferFailed
			}
		}
		if !t.IsPersistent {
			delete(s.Transfers.Transfers, id)
		}
		notify(store.EventTransfers)
	})
}

// AbortAll aborts every non-terminal transfer.
func AbortAll(st *appstate.Store) {
	st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		for id, t := range s.Transfers.Transfers {
			if t.IsTerminal() {
				continue
			}
			t.Aborted = true
			if t.State == model.TransferProcessing || t.State == model.TransferTransferring {
				release(s, t)
				if t.State == model.TransferTransferring {
					s.Transfers.DoneBytes -= t.TransferredBytes
					t.TransferredBytes = 0
				}
				if t.IsPersistent {
					t.State = model.TransferFailed
				}
			}
			if !t.IsPersistent {
				delete(s.Transfers.Transfers, id)
			}
		}
		notify(store.EventTransfers)
	})
}
