package socketapi

import (
	"encoding/json"

	"quill.dev/pkg/encoders/envelopes/reqenvelope"
	"quill.dev/pkg/utils/log"
)

// HandleReq opens or replaces a subscription. The relay core replays the
// matching backlog newest-first and terminates it with EOSE; live events
// matching the subscription follow from then on.
func (a *A) HandleReq(rest []json.RawMessage) {
	remote := a.Listener.RealRemote()
	req, err := reqenvelope.Parse(rest)
	if err != nil {
		log.T.F("%s malformed REQ: %v", remote, err)
		return
	}
	a.I.Subscribe(a.Listener, req.Subscription, req.Filters)
}
