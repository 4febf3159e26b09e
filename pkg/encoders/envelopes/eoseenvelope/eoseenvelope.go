// Package eoseenvelope implements the EOSE frame ["EOSE", <sub-id>] marking
// the boundary between backlog and live delivery for one subscription.
package eoseenvelope

import (
	"encoding/json"

	"quill.dev/pkg/encoders/envelopes"
	"quill.dev/pkg/utils/errorf"
)

// L is the frame label.
const L = "EOSE"

// T is a parsed EOSE frame.
type T struct {
	Subscription string
}

// New builds an EOSE frame.
func New(sub string) *T { return &T{Subscription: sub} }

// Parse decodes the elements after the label.
func Parse(rest []json.RawMessage) (t *T, err error) {
	if len(rest) != 1 {
		err = errorf.E("eoseenvelope: wants 1 element, got %d", len(rest))
		return
	}
	t = &T{}
	if err = json.Unmarshal(rest[0], &t.Subscription); err != nil {
		t = nil
	}
	return
}

// Marshal renders the frame.
func (t *T) Marshal() (b []byte, err error) {
	return envelopes.Marshal(L, t.Subscription)
}
