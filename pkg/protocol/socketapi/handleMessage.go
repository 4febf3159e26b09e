package socketapi

import (
	"encoding/json"
	"fmt"

	"quill.dev/pkg/encoders/envelopes"
	"quill.dev/pkg/encoders/envelopes/closeenvelope"
	"quill.dev/pkg/encoders/envelopes/eventenvelope"
	"quill.dev/pkg/encoders/envelopes/reqenvelope"
	"quill.dev/pkg/utils/log"
)

// HandleMessage identifies an inbound frame and routes it to its handler.
// Frames that are not valid JSON arrays, or whose label is unknown, are
// dropped without a reply so a confused peer cannot provoke error chatter.
func (a *A) HandleMessage(msg []byte) {
	remote := a.Listener.RealRemote()
	log.T.C(
		func() string {
			return fmt.Sprintf("%s received message:\n%s", remote, string(msg))
		},
	)
	var err error
	var t string
	var rest []json.RawMessage
	if t, rest, err = envelopes.Identify(msg); err != nil {
		log.T.F("%s unparseable frame: %v", remote, err)
		return
	}
	switch t {
	case eventenvelope.L:
		a.HandleEvent(rest)
	case reqenvelope.L:
		a.HandleReq(rest)
	case closeenvelope.L:
		a.HandleClose(rest)
	default:
		log.T.F("%s unknown envelope type %q", remote, t)
	}
}
