package socketapi

import (
	"encoding/json"

	"quill.dev/pkg/encoders/envelopes/closeenvelope"
	"quill.dev/pkg/encoders/envelopes/noticeenvelope"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/log"
)

// HandleClose removes a subscription and reports the outcome to the client
// with a NOTICE.
func (a *A) HandleClose(rest []json.RawMessage) {
	remote := a.Listener.RealRemote()
	cl, err := closeenvelope.Parse(rest)
	if err != nil {
		log.T.F("%s malformed CLOSE: %v", remote, err)
		return
	}
	message := "Subscription not found."
	if a.I.Unsubscribe(a.Listener, cl.Subscription) {
		message = "Subscription ended."
	}
	var b []byte
	if b, err = noticeenvelope.New(message).Marshal(); chk.E(err) {
		return
	}
	if err = a.Listener.Enqueue(b); err != nil {
		log.D.F("%s: %v", remote, err)
	}
}
