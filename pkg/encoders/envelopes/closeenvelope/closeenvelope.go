// Package closeenvelope implements the CLOSE frame ["CLOSE", <sub-id>]
// ending a subscription.
package closeenvelope

import (
	"encoding/json"

	"quill.dev/pkg/encoders/envelopes"
	"quill.dev/pkg/utils/errorf"
)

// L is the frame label.
const L = "CLOSE"

// T is a parsed CLOSE frame.
type T struct {
	Subscription string
}

// New builds a CLOSE frame.
func New(sub string) *T { return &T{Subscription: sub} }

// Parse decodes the elements after the label.
func Parse(rest []json.RawMessage) (t *T, err error) {
	if len(rest) != 1 {
		err = errorf.E("closeenvelope: wants 1 element, got %d", len(rest))
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
