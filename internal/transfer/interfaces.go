// Package transfer implements the transfer engine (component H): a
// scheduler honoring per-class concurrency caps, streaming
// encrypt/decrypt through the HTTP collaborator, collision-safe
// naming, retries, and cooperative cancellation.
//
// Grounded on the teacher's three-layer split: internal/transfer
// (queue/task state machine) for the scheduler shape and EMA speed
// smoothing, internal/cloud/transfer for the cipher-to-transport
// wiring, both since deleted and reproduced here directly against
// appstate.State.Transfers instead of a standalone task map.
package transfer

import (
	"context"
	"io"
)

// Uploadable is an upload source (§4.H / §6).
type Uploadable interface {
	Size() int64
	IsRetriable() bool
	Reader(ctx context.Context) (io.ReadCloser, int64, error)
}

// Downloadable is a download sink (§4.H / §6).
type Downloadable interface {
	IsRetriable() bool
	IsOpenable() bool
	Exists(name string) (bool, error)
	Writer(ctx context.Context, name string, size int64, contentType string, uniqueName string) (io.WriteCloser, string, error)
	Done(err error)
	Open() error
}
