// Package eventstream implements the persistent WebSocket client
// (component E): authenticate, register per-(mount,path) subscriptions,
// translate inbound server events into remote-cache mutations, and
// reconnect on failure.
package eventstream

import "context"

// WireEventType is the server's typed event discriminant (§6).
type WireEventType string

const (
	WireAuthenticated WireEventType = "authenticated"
	WireRegistered    WireEventType = "registered"
	WireDeregistered  WireEventType = "deregistered"
	WireFileCreated   WireEventType = "fileCreated"
	WireFileRemoved   WireEventType = "fileRemoved"
	WireFileCopied    WireEventType = "fileCopied"
	WireFileMoved     WireEventType = "fileMoved"
	WireFileTagsUpd   WireEventType = "fileTagsUpdated"
	WireFileRefreshed WireEventType = "fileRefreshed"
	WireFileSyncDone  WireEventType = "fileSyncDone"
	WirePing          WireEventType = "ping"
)

// WireFile is the server's inline file model, present on file events.
type WireFile struct {
	Path     string            `json:"path"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Size     int64             `json:"size"`
	Modified int64             `json:"modified"`
	Hash     string            `json:"hash"`
	Tags     map[string][]string `json:"tags"`
}

// InboundMessage is one JSON-framed message arriving on the socket.
type InboundMessage struct {
	Type      WireEventType `json:"type"`
	MountId   string        `json:"mountId"`
	Path      string        `json:"path"`
	NewPath   string        `json:"newPath"`
	File      *WireFile     `json:"file"`
	UserAgent string        `json:"userAgent"`
	RequestId string        `json:"requestId"`
	ListenerId string       `json:"listenerId"`
}

// OutboundMessage is one JSON-framed message sent to the socket.
type OutboundMessage struct {
	Type          string `json:"type"`
	Authorization string `json:"authorization,omitempty"`
	RequestId     string `json:"requestId,omitempty"`
	MountId       string `json:"mountId,omitempty"`
	Path          string `json:"path,omitempty"`
	ListenerId    string `json:"listenerId,omitempty"`
}

// Collaborator is the §6 WebSocket trait the core consumes: open a
// durable connection, observe lifecycle callbacks, send frames.
type Collaborator interface {
	Open(ctx context.Context, url string, onOpen func(), onMessage func(InboundMessage), onClose func(error)) error
	Send(msg OutboundMessage) error
	Close() error
}
