package eventstream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rescale-labs/safebox/internal/errs"
)

// WSCollaborator is the default Collaborator, backed by gorilla/websocket.
// Grounded on the teacher's use of persistent streaming connections for
// transfer progress (internal/cloud/transfer), generalized here to a
// bidirectional JSON-framed session.
type WSCollaborator struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWSCollaborator() *WSCollaborator {
	return &WSCollaborator{}
}

func (w *WSCollaborator) Open(ctx context.Context, url string, onOpen func(), onMessage func(InboundMessage), onClose func(error)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return errs.Wrap(errs.KindTransport, "websocket_dial_failed", err)
	}
	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	onOpen()

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				onClose(err)
				return
			}
			var msg InboundMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			onMessage(msg)
		}
	}()
	return nil
}

func (w *WSCollaborator) Send(msg OutboundMessage) error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	if conn == nil {
		return errs.New(errs.KindTransport, "not_connected", "websocket is not open")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errs.Wrap(errs.KindProtocol, "encode_failed", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WSCollaborator) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}
