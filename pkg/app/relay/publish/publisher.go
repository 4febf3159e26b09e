// Package publish maintains the relay's clients table: one record per
// connected client keyed by remote address, each holding that connection's
// subscriptions, and the fan-out of newly ingested events across them.
package publish

import (
	"sync"

	"quill.dev/pkg/encoders/envelopes/eventenvelope"
	"quill.dev/pkg/encoders/envelopes/noticeenvelope"
	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/encoders/filter"
	"quill.dev/pkg/protocol/ws"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/log"
)

type client struct {
	listener *ws.Listener
	subs     map[string]filter.S
}

// S is the clients table. Mx guards the table and is the outermost lock of
// the relay: handlers hold it across subscription upserts, backlog replay
// and fan-out so a given event is seen exactly once per subscription, either
// in the backlog or live.
type S struct {
	Mx      sync.Mutex
	clients map[string]*client
}

// New creates an empty clients table.
func New() (s *S) {
	return &S{clients: make(map[string]*client)}
}

// UpsertLocked registers the filters under id for the listener's connection,
// creating the connection record on first use and replacing any previous
// filter list under the same id. Callers hold Mx.
func (s *S) UpsertLocked(l *ws.Listener, id string, ff filter.S) {
	remote := l.RealRemote()
	c, ok := s.clients[remote]
	if !ok {
		c = &client{listener: l, subs: make(map[string]filter.S)}
		s.clients[remote] = c
	}
	c.listener = l
	c.subs[id] = ff
	log.T.F("%s subscribed %s (%d filters)", remote, id, len(ff))
}

// UnsubscribeLocked removes the subscription id from the listener's
// connection, reporting whether it existed. Callers hold Mx.
func (s *S) UnsubscribeLocked(l *ws.Listener, id string) (found bool) {
	c, ok := s.clients[l.RealRemote()]
	if !ok {
		return
	}
	if _, found = c.subs[id]; found {
		delete(c.subs, id)
	}
	return
}

// DisconnectLocked drops the listener's connection record. Callers hold Mx.
func (s *S) DisconnectLocked(l *ws.Listener) {
	remote := l.RealRemote()
	if _, ok := s.clients[remote]; ok {
		delete(s.clients, remote)
		log.D.F("%s disconnected, %d clients remain", remote, len(s.clients))
	}
}

// Disconnect drops the listener's connection record.
func (s *S) Disconnect(l *ws.Listener) {
	s.Mx.Lock()
	defer s.Mx.Unlock()
	s.DisconnectLocked(l)
}

// DeliverLocked enqueues ev to every subscription it matches, once per
// matching subscription: the filter loop stops at the first filter that
// matches so multiple filters of one subscription cannot duplicate delivery,
// while distinct subscriptions of the same client each get their own frame.
// Enqueue failures on one client are logged and do not interrupt the
// fan-out. Callers hold Mx.
func (s *S) DeliverLocked(ev *event.E) {
	for remote, c := range s.clients {
		for id, ff := range c.subs {
			if !ff.Match(ev) {
				continue
			}
			b, err := eventenvelope.NewResult(id, ev).Marshal()
			if chk.E(err) {
				continue
			}
			if err = c.listener.Enqueue(b); err != nil {
				log.W.F("%s: dropping event %s for %s: %v", remote, ev.ID, id, err)
			}
		}
	}
}

// Len returns the number of connected clients.
func (s *S) Len() int {
	s.Mx.Lock()
	defer s.Mx.Unlock()
	return len(s.clients)
}

// NotifyAll enqueues a NOTICE to every connected client, following with a
// close frame when closing is set. Used on shutdown.
func (s *S) NotifyAll(message string, closing bool) {
	s.Mx.Lock()
	defer s.Mx.Unlock()
	b, err := noticeenvelope.New(message).Marshal()
	if chk.E(err) {
		return
	}
	for _, c := range s.clients {
		if err = c.listener.Enqueue(b); err != nil {
			log.D.F("%s: %v", c.listener.RealRemote(), err)
		}
		if closing {
			chk.D(c.listener.CloseFrame())
		}
	}
}
