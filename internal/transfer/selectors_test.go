package transfer

import (
	"testing"
	"time"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/model"
)

func TestRemainingEstimateZeroBeforeAnyProgress(t *testing.T) {
	s := appstate.New()
	got := RemainingEstimate(&s, 10*time.Second, 500*time.Millisecond)
	if got != 0 {
		t.Fatalf("expected 0 before any bytes transferred, got %v", got)
	}
}

func TestRemainingEstimateScalesWithRateAndCount(t *testing.T) {
	s := appstate.New()
	exact := int64(1000)
	s.Transfers.DoneBytes = 500
	s.Transfers.Transfers["a"] = &model.Transfer{
		Id:               "a",
		Size:             model.TransferSize{Exact: &exact},
		TransferredBytes: 500,
	}

	got := RemainingEstimate(&s, 1*time.Second, 0)
	// rate = 500 B/s, remaining = 500 B -> 1s
	if got < 900*time.Millisecond || got > 1100*time.Millisecond {
		t.Fatalf("expected ~1s, got %v", got)
	}
}

func TestRemainingEstimateAddsMinTimePerFile(t *testing.T) {
	s := appstate.New()
	exact := int64(1000)
	s.Transfers.DoneBytes = 1000
	s.Transfers.Transfers["a"] = &model.Transfer{
		Id:               "a",
		Size:             model.TransferSize{Exact: &exact},
		TransferredBytes: 1000,
	}
	s.Transfers.Transfers["b"] = &model.Transfer{
		Id:               "b",
		Size:             model.TransferSize{Exact: &exact},
		TransferredBytes: 0,
	}

	got := RemainingEstimate(&s, 1*time.Second, 2*time.Second)
	// rate = 1000B/s; a has 0 remaining bytes, b has 1000 remaining bytes ->
	// bytesEta = 1s; both transfers are still non-terminal (state is Waiting)
	// so remainingCount=2 -> +4s of min-time-per-file -> ~5s total.
	if got < 4900*time.Millisecond || got > 5100*time.Millisecond {
		t.Fatalf("expected ~5s, got %v", got)
	}
}

func TestShouldEmitProgressThrottles(t *testing.T) {
	s := appstate.New()
	now := time.Now()
	if !ShouldEmitProgress(&s, now, 100*time.Millisecond) {
		t.Fatalf("expected first tick to emit")
	}
	if ShouldEmitProgress(&s, now.Add(50*time.Millisecond), 100*time.Millisecond) {
		t.Fatalf("expected tick within throttle window to be suppressed")
	}
	if !ShouldEmitProgress(&s, now.Add(150*time.Millisecond), 100*time.Millisecond) {
		t.Fatalf("expected tick past throttle window to emit")
	}
}
