// Package reqenvelope implements the REQ frame ["REQ", <sub-id>, <filter>...]
// opening or replacing a subscription.
package reqenvelope

import (
	"encoding/json"

	"quill.dev/pkg/encoders/envelopes"
	"quill.dev/pkg/encoders/filter"
	"quill.dev/pkg/utils/errorf"
)

// L is the frame label.
const L = "REQ"

// T is a parsed REQ frame. At least one filter is required.
type T struct {
	Subscription string
	Filters      filter.S
}

// New builds a REQ frame.
func New(sub string, ff filter.S) *T { return &T{Subscription: sub, Filters: ff} }

// Parse decodes the elements after the label.
func Parse(rest []json.RawMessage) (t *T, err error) {
	if len(rest) < 2 {
		err = errorf.E("reqenvelope: wants sub id and at least 1 filter, got %d elements", len(rest))
		return
	}
	t = &T{}
	if err = json.Unmarshal(rest[0], &t.Subscription); err != nil {
		t = nil
		return
	}
	for _, raw := range rest[1:] {
		f := &filter.F{}
		if err = json.Unmarshal(raw, f); err != nil {
			t = nil
			return
		}
		t.Filters = append(t.Filters, f)
	}
	return
}

// Marshal renders the frame.
func (t *T) Marshal() (b []byte, err error) {
	elems := make([]interface{}, 0, len(t.Filters)+1)
	elems = append(elems, t.Subscription)
	for _, f := range t.Filters {
		elems = append(elems, f)
	}
	return envelopes.Marshal(L, elems...)
}
