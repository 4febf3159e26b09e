package relay

import (
	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/errorf"
)

// AddEvent ingests a validated event. If the id is new the event is appended
// to the durable log and the in-memory vector, then fanned out to every
// matching subscription; a re-submission of a known id is an accepted=false
// no-op with no second fan-out. A failed append takes the whole relay down:
// it cannot keep serving clients with a log it can no longer write.
//
// The clients lock is held across ingest and fan-out, so a concurrently
// arriving REQ sees the event either in its backlog or live, never both and
// never neither.
func (s *Server) AddEvent(c context.T, ev *event.E) (accepted bool, err error) {
	if ev == nil {
		return false, errorf.E("empty event")
	}
	s.publisher.Mx.Lock()
	defer s.publisher.Mx.Unlock()
	s.evMx.Lock()
	if _, ok := s.seen[ev.ID]; ok {
		s.evMx.Unlock()
		return false, nil
	}
	if _, err = s.eventLog.Append(ev); chk.E(err) {
		s.evMx.Unlock()
		s.Fatal(err)
		return false, err
	}
	s.seen[ev.ID] = struct{}{}
	s.events = append(s.events, ev)
	s.evMx.Unlock()
	s.publisher.DeliverLocked(ev)
	return true, nil
}
