// Package noticeenvelope implements the NOTICE frame ["NOTICE", <message>]
// carrying human-readable information from relay to client.
package noticeenvelope

import (
	"encoding/json"

	"quill.dev/pkg/encoders/envelopes"
	"quill.dev/pkg/utils/errorf"
)

// L is the frame label.
const L = "NOTICE"

// T is a parsed NOTICE frame.
type T struct {
	Message string
}

// New builds a NOTICE frame.
func New(message string) *T { return &T{Message: message} }

// Parse decodes the elements after the label.
func Parse(rest []json.RawMessage) (t *T, err error) {
	if len(rest) != 1 {
		err = errorf.E("noticeenvelope: wants 1 element, got %d", len(rest))
		return
	}
	t = &T{}
	if err = json.Unmarshal(rest[0], &t.Message); err != nil {
		t = nil
	}
	return
}

// Marshal renders the frame.
func (t *T) Marshal() (b []byte, err error) {
	return envelopes.Marshal(L, t.Message)
}
