package eventstream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/logging"
	"github.com/rescale-labs/safebox/internal/model"
	"github.com/rescale-labs/safebox/internal/remotefiles"
	"github.com/rescale-labs/safebox/internal/store"
)

// TokenSource supplies the current OAuth2 access token for the auth frame.
type TokenSource interface {
	AccessToken() (string, error)
}

// Client runs the durable WebSocket session described in §4.E: connect,
// authenticate, keep mount-listener registrations in sync with
// subscriber demand, translate inbound events into remotefiles
// mutations, and reconnect on failure.
type Client struct {
	st   *appstate.Store
	url  string
	tok  TokenSource
	ws   Collaborator
	log  *logging.Logger

	reconnectDelay time.Duration
	pingInterval   time.Duration

	mu          sync.Mutex
	cancelPing  context.CancelFunc
}

func New(st *appstate.Store, url string, tok TokenSource, ws Collaborator, reconnectDelay, pingInterval time.Duration, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	if ws == nil {
		ws = NewWSCollaborator()
	}
	return &Client{st: st, url: url, tok: tok, ws: ws, log: log, reconnectDelay: reconnectDelay, pingInterval: pingInterval}
}

// Run drives the Initial -> Connecting -> Authenticating -> Connected
// (-> Disconnected -> Reconnecting -> Connecting -> ...) loop until ctx
// is canceled.
func (c *Client) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.setConnState(appstate.EventstreamConnecting)
		closed := make(chan error, 1)

		err := c.ws.Open(ctx, c.url,
			func() { c.onOpen() },
			func(msg InboundMessage) { c.onMessage(msg) },
			func(err error) { closed <- err },
		)
		if err != nil {
			c.log.Warn().Err(err).Msg("eventstream dial failed")
			c.scheduleReconnect(ctx)
			continue
		}

		select {
		case <-ctx.Done():
			c.ws.Close()
			return
		case err := <-closed:
			c.onClose(err)
			c.scheduleReconnect(ctx)
		}
	}
}

func (c *Client) scheduleReconnect(ctx context.Context) {
	c.setConnState(appstate.EventstreamReconnecting)
	select {
	case <-ctx.Done():
	case <-time.After(c.reconnectDelay):
	}
}

func (c *Client) onOpen() {
	c.setConnState(appstate.EventstreamAuthenticating)
	token, err := c.tok.AccessToken()
	if err != nil {
		c.log.Error().Err(err).Msg("eventstream: failed to obtain access token")
		return
	}
	c.ws.Send(OutboundMessage{Type: "auth", Authorization: "Bearer " + token})

	c.mu.Lock()
	pctx, cancel := context.WithCancel(context.Background())
	c.cancelPing = cancel
	c.mu.Unlock()
	go c.pingLoop(pctx)
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.ws.Send(OutboundMessage{Type: "ping"})
		}
	}
}

// onClose demotes Connected -> Disconnected: every MountListener returns
// to Unregistered with its server-assigned id cleared, so a subsequent
// reconnect re-registers from scratch (no replay).
func (c *Client) onClose(err error) {
	c.mu.Lock()
	if c.cancelPing != nil {
		c.cancelPing()
		c.cancelPing = nil
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Msg("eventstream connection closed")
	}
	c.st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		s.Eventstream.ConnState = appstate.EventstreamDisconnected
		for _, l := range s.Eventstream.Listeners {
			l.State = model.ListenerUnregistered
			l.ServerListenerId = ""
			l.RequestId = ""
			l.Canceling = false
		}
		notify(store.EventEventstream)
	})
}

func (c *Client) setConnState(state appstate.EventstreamConnState) {
	c.st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		s.Eventstream.ConnState = state
		notify(store.EventEventstream)
	})
}

// onMessage handles the server's Authenticated/Registered/Deregistered
// acks and the seven file-event types.
func (c *Client) onMessage(msg InboundMessage) {
	switch msg.Type {
	case WireAuthenticated:
		c.onAuthenticated()
	case WireRegistered:
		c.onRegistered(msg)
	case WireDeregistered:
		c.onDeregistered(msg)
	case WirePing:
		// server-initiated ping: nothing to reply, connection liveness only.
	default:
		c.dispatchFileEvent(msg)
	}
}

func (c *Client) onAuthenticated() {
	var toRegister []*model.MountListener
	c.st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		s.Eventstream.ConnState = appstate.EventstreamConnected
		for _, l := range s.Eventstream.Listeners {
			if l.State == model.ListenerUnregistered {
				toRegister = append(toRegister, l)
			}
		}
		notify(store.EventEventstream)
	})
	for _, l := range toRegister {
		c.sendRegister(l)
	}
}

func (c *Client) sendRegister(l *model.MountListener) {
	var reqId string
	c.st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		s.Eventstream.NextRequestId++
		reqId = fmt.Sprintf("%d", s.Eventstream.NextRequestId)
		l.State = model.ListenerRegistering
		l.RequestId = reqId
		notify(store.EventEventstream)
	})
	c.ws.Send(OutboundMessage{Type: "register", RequestId: reqId, MountId: string(l.MountId), Path: string(l.Path)})
}

func (c *Client) onRegistered(msg InboundMessage) {
	c.st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		for key, l := range s.Eventstream.Listeners {
			if l.RequestId != msg.RequestId {
				continue
			}
			if l.Canceling {
				delete(s.Eventstream.Listeners, key)
				go c.ws.Send(OutboundMessage{Type: "deregister", ListenerId: msg.ListenerId})
				continue
			}
			l.State = model.ListenerRegistered
			l.ServerListenerId = msg.ListenerId
			notify(store.EventEventstream)
		}
	})
}

func (c *Client) onDeregistered(msg InboundMessage) {
	// Deregister acks need no state change beyond what Unsubscribe already
	// performed when the last subscriber tag was removed.
}

// dispatchFileEvent translates an inbound file event relative to each
// subscribed root and applies it to the remote cache (component D). A
// listener not subscribed to the event's subtree ignores it.
func (c *Client) dispatchFileEvent(msg InboundMessage) {
	var roots []ids.RemotePath
	c.st.WithState(func(s *appstate.State) {
		for _, l := range s.Eventstream.Listeners {
			if l.State == model.ListenerRegistered && l.MountId == ids.MountId(msg.MountId) {
				roots = append(roots, l.Path)
			}
		}
	})

	for _, root := range roots {
		translated, ok := translateForRoot(root, msg)
		if !ok {
			continue
		}
		c.applyTranslated(msg.MountId, translated)
	}
}

type translatedEvent struct {
	kind    WireEventType
	path    string
	newPath string
}

// translateForRoot implements §4.E's relative-path + downgrade rules: a
// copy/move whose source lies outside the subscribed root downgrades to
// a create at the destination; one whose destination lies outside
// downgrades to a remove at the source.
func translateForRoot(root ids.RemotePath, msg InboundMessage) (translatedEvent, bool) {
	inRoot := func(p string) bool {
		r := string(root)
		if r == "" || r == "/" {
			return true
		}
		return p == r || (len(p) > len(r) && p[:len(r)] == r && p[len(r)] == '/')
	}

	switch msg.Type {
	case WireFileMoved, WireFileCopied:
		srcIn, dstIn := inRoot(msg.Path), inRoot(msg.NewPath)
		switch {
		case srcIn && dstIn:
			return translatedEvent{kind: msg.Type, path: msg.Path, newPath: msg.NewPath}, true
		case !srcIn && dstIn:
			return translatedEvent{kind: WireFileCreated, path: msg.NewPath}, true
		case srcIn && !dstIn:
			return translatedEvent{kind: WireFileRemoved, path: msg.Path}, true
		default:
			return translatedEvent{}, false
		}
	default:
		if !inRoot(msg.Path) {
			return translatedEvent{}, false
		}
		return translatedEvent{kind: msg.Type, path: msg.Path, newPath: msg.NewPath}, true
	}
}

func wireFileToModel(mountId string, path string, f *WireFile) *model.RemoteFile {
	if f == nil {
		return &model.RemoteFile{MountId: ids.MountId(mountId), Path: ids.RemotePath(path), Type: model.FileTypeFile}
	}
	ft := model.FileTypeFile
	if f.Type == "dir" {
		ft = model.FileTypeDir
	}
	return &model.RemoteFile{
		MountId:  ids.MountId(mountId),
		Path:     ids.RemotePath(path),
		Name:     ids.RemoteName(f.Name),
		Type:     ft,
		Size:     f.Size,
		Modified: f.Modified,
		Hash:     f.Hash,
		Tags:     f.Tags,
	}
}

func (c *Client) applyTranslated(mountId string, ev translatedEvent) {
	switch ev.kind {
	case WireFileCreated, WireFileRefreshed, WireFileSyncDone:
		remotefiles.CreateFile(c.st, wireFileToModel(mountId, ev.path, nil))
	case WireFileRemoved:
		remotefiles.RemoveFile(c.st, ids.FileId(ids.MountId(mountId), ids.RemotePath(ev.path)))
	case WireFileMoved:
		remotefiles.MoveFile(c.st, ids.FileId(ids.MountId(mountId), ids.RemotePath(ev.path)), ids.MountId(mountId), ids.RemotePath(ev.newPath))
	case WireFileCopied:
		remotefiles.CreateFile(c.st, wireFileToModel(mountId, ev.newPath, nil))
	case WireFileTagsUpd:
		remotefiles.TagsUpdated(c.st, ids.FileId(ids.MountId(mountId), ids.RemotePath(ev.path)), nil)
	}
}
