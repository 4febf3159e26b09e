package relay

import (
	"sort"

	"quill.dev/pkg/encoders/envelopes/eoseenvelope"
	"quill.dev/pkg/encoders/envelopes/eventenvelope"
	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/encoders/filter"
	"quill.dev/pkg/protocol/ws"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/log"
)

// Subscribe registers the filters under id for the listener's connection,
// replays the matching backlog and terminates it with exactly one EOSE. The
// clients lock is held from the upsert through the EOSE enqueue, so a live
// event ingested concurrently lands after the EOSE, never inside or instead
// of the backlog.
func (s *Server) Subscribe(l *ws.Listener, id string, ff filter.S) {
	s.publisher.Mx.Lock()
	defer s.publisher.Mx.Unlock()
	s.publisher.UpsertLocked(l, id, ff)
	remote := l.RealRemote()
	backlog := s.queryEvents(ff)
	for _, ev := range backlog {
		b, err := eventenvelope.NewResult(id, ev).Marshal()
		if chk.E(err) {
			continue
		}
		if err = l.Enqueue(b); err != nil {
			log.W.F("%s: dropping backlog event %s for %s: %v",
				remote, ev.ID, id, err)
		}
	}
	b, err := eoseenvelope.New(id).Marshal()
	if chk.E(err) {
		return
	}
	if err = l.Enqueue(b); err != nil {
		log.D.F("%s: %v", remote, err)
	}
	log.D.F("%s replayed %d events for %s", remote, len(backlog), id)
}

// Unsubscribe removes the subscription id from the listener's connection,
// reporting whether it existed.
func (s *Server) Unsubscribe(l *ws.Listener, id string) (found bool) {
	s.publisher.Mx.Lock()
	defer s.publisher.Mx.Unlock()
	return s.publisher.UnsubscribeLocked(l, id)
}

// Disconnect removes the listener's connection record.
func (s *Server) Disconnect(l *ws.Listener) {
	s.publisher.Disconnect(l)
}

// queryEvents computes the backlog for a filter list: each filter is matched
// against the event vector independently, its matches sorted newest-first
// and truncated per its limit, and the per-filter results concatenated in
// filter order. An event matching several filters appears once per filter.
func (s *Server) queryEvents(ff filter.S) (backlog []*event.E) {
	s.evMx.Lock()
	defer s.evMx.Unlock()
	for _, f := range ff {
		var matches event.S
		for _, ev := range s.events {
			if f.Matches(ev) {
				matches = append(matches, ev)
			}
		}
		sort.Stable(matches)
		if f.Limit != nil && len(matches) > 0 {
			// a limit at or above the match count keeps one fewer than the
			// match count
			keep := len(matches) - 1
			if int(*f.Limit) < len(matches) {
				keep = int(*f.Limit)
			}
			matches = matches[:keep]
		}
		backlog = append(backlog, matches...)
	}
	return
}
