package eventstream

import (
	"github.com/rescale-labs/safebox/internal/appstate"
	"github.com/rescale-labs/safebox/internal/ids"
	"github.com/rescale-labs/safebox/internal/model"
	"github.com/rescale-labs/safebox/internal/store"
)

func listenerKey(mount ids.MountId, path ids.RemotePath) string {
	return string(mount) + ":" + string(path)
}

// Subscribe records one more subscriber for (mount, path) under tag,
// creating the MountListener on first demand. Repeat tags are tolerated
// and counted (§4.E multi-set semantics). The listener transitions
// Unregistered -> Registering only once the client is Connected; while
// disconnected it stays Unregistered until the next reconnect's flush.
func (c *Client) Subscribe(mount ids.MountId, path ids.RemotePath, tag string) {
	var needsRegister *model.MountListener
	c.st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		key := listenerKey(mount, path)
		l, ok := s.Eventstream.Listeners[key]
		if !ok {
			l = &model.MountListener{
				Id:             key,
				MountId:        mount,
				Path:           path,
				State:          model.ListenerUnregistered,
				SubscriberTags: make(map[string]int),
			}
			s.Eventstream.Listeners[key] = l
		}
		l.SubscriberTags[tag]++
		notify(store.EventEventstream)
		if l.State == model.ListenerUnregistered && s.Eventstream.ConnState == appstate.EventstreamConnected {
			needsRegister = l
		}
	})
	if needsRegister != nil {
		c.sendRegister(needsRegister)
	}
}

// Unsubscribe drops one subscriber tag. Once the last subscriber is
// gone, a Registered listener either deregisters immediately or, if
// still Registering, sets the cancel flag so the server reply triggers
// an immediate deregister.
func (c *Client) Unsubscribe(mount ids.MountId, path ids.RemotePath, tag string) {
	var deregisterListenerId string
	c.st.Mutate(func(s *appstate.State, notify store.NotifyFunc, mutState *store.MutationState, mutNotify store.MutationNotifyFunc) {
		key := listenerKey(mount, path)
		l, ok := s.Eventstream.Listeners[key]
		if !ok {
			return
		}
		if l.SubscriberTags[tag] > 0 {
			l.SubscriberTags[tag]--
			if l.SubscriberTags[tag] == 0 {
				delete(l.SubscriberTags, tag)
			}
		}
		if len(l.SubscriberTags) > 0 {
			notify(store.EventEventstream)
			return
		}
		switch l.State {
		case model.ListenerRegistering:
			l.Canceling = true
		case model.ListenerRegistered:
			deregisterListenerId = l.ServerListenerId
			delete(s.Eventstream.Listeners, key)
		default:
			delete(s.Eventstream.Listeners, key)
		}
		notify(store.EventEventstream)
	})
	if deregisterListenerId != "" {
		c.ws.Send(OutboundMessage{Type: "deregister", ListenerId: deregisterListenerId})
	}
}
