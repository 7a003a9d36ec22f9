// Package httpapi implements the §6 HTTP collaborator: the REST surface
// the core calls for user/repo/directory/file operations and for
// streaming file bodies.
package httpapi

import (
	"context"
	"io"
)

// ProgressFunc is invoked as a request body is read, reporting bytes
// read so far; used to drive transfer progress. With DefaultCollaborator
// the body is read into memory before it is sent, so the count tracks
// that read, not bytes on the wire.
type ProgressFunc func(written int64)

// Request is one outbound HTTP call.
type Request struct {
	Method  string
	Path    string // joined onto the collaborator's configured base URL
	Query   map[string]string
	Headers map[string]string
	Body    io.Reader // nil for bodyless requests
	OnWrite ProgressFunc
}

// Response is the result of a Request.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       io.ReadCloser
}

// Bytes fully reads and closes Body, for JSON endpoints that are small
// enough to buffer.
func (r *Response) Bytes() ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

// Collaborator is the trait the core consumes for every REST call (§6).
// The default implementation (DefaultCollaborator) wraps
// hashicorp/go-retryablehttp with the core's Authorization/401-refresh
// policy; embedders may substitute their own.
type Collaborator interface {
	Do(ctx context.Context, req Request) (*Response, error)
}
