package socketapi

import (
	"encoding/json"

	"quill.dev/pkg/encoders/envelopes/eventenvelope"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/log"
)

// HandleEvent validates an EVENT submission and hands it to the relay core.
// Events failing the id or signature check are dropped without a reply. A
// failed durable append is fatal relay-wide: the core records it and shuts
// the process down, while this handler cancels its own connection so the
// read loop stops promptly.
func (a *A) HandleEvent(rest []json.RawMessage) {
	remote := a.Listener.RealRemote()
	sub, err := eventenvelope.ParseSubmission(rest)
	if err != nil {
		log.T.F("%s malformed EVENT: %v", remote, err)
		return
	}
	ev := sub.Event
	var valid bool
	if valid, err = ev.CheckID(); err != nil || !valid {
		log.D.F("%s event id mismatch, dropping %s", remote, ev.ID)
		return
	}
	if valid, err = ev.Verify(); err != nil || !valid {
		log.D.F("%s invalid signature, dropping %s", remote, ev.ID)
		return
	}
	var accepted bool
	if accepted, err = a.I.AddEvent(a.Ctx, ev); chk.E(err) {
		a.Listener.Cancel()
		return
	}
	if accepted {
		log.D.F("%s accepted event %s kind %d", remote, ev.ID, ev.Kind)
	} else {
		log.T.F("%s duplicate event %s", remote, ev.ID)
	}
}
