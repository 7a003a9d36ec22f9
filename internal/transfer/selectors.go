package transfer

import (
	"time"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/model"
)

// Get returns the transfer with the given id.
func Get(s *appstate.State, id string) (*model.Transfer, bool) {
	t, ok := s.Transfers.Transfers[id]
	return t, ok
}

// List returns every transfer, insertion order ascending.
func List(s *appstate.State) []*model.Transfer {
	out := make([]*model.Transfer, 0, len(s.Transfers.Transfers))
	for _, t := range s.Transfers.Transfers {
		out = append(out, t)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].InsertionOrder < out[j-1].InsertionOrder; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// RemainingEstimate implements §4.H's estimate formula:
// remaining_bytes / (done_bytes / elapsed) + remaining_count * min_time_per_file.
func RemainingEstimate(s *appstate.State, elapsed time.Duration, minTimePerFile time.Duration) time.Duration {
	if elapsed <= 0 || s.Transfers.DoneBytes == 0 {
		return 0
	}
	var remainingBytes int64
	var remainingCount int64
	for _, t := range s.Transfers.Transfers {
		if t.IsTerminal() {
			continue
		}
		if t.Size.Exact != nil {
			remainingBytes += *t.Size.Exact - t.TransferredBytes
		} else if t.Size.Estimate != nil {
			remainingBytes += *t.Size.Estimate - t.TransferredBytes
		}
		remainingCount++
	}
	rate := float64(s.Transfers.DoneBytes) / elapsed.Seconds()
	if rate <= 0 {
		return time.Duration(remainingCount) * minTimePerFile
	}
	bytesEta := time.Duration(float64(remainingBytes) / rate * float64(time.Second))
	return bytesEta + time.Duration(remainingCount)*minTimePerFile
}

// ShouldEmitProgress gates a progress tick on progressThrottle since the
// last notified tick, per §4.H; updates LastProgressUpdate when it
// allows the tick through.
func ShouldEmitProgress(s *appstate.State, now time.Time, progressThrottle time.Duration) bool {
	if now.Sub(s.Transfers.LastProgressUpdate) < progressThrottle {
		return false
	}
	s.Transfers.LastProgressUpdate = now
	return true
}
