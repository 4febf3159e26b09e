// Package eventenvelope implements the two EVENT frames: the client
// submission ["EVENT", <event>] and the relay result ["EVENT", <sub-id>,
// <event>].
package eventenvelope

import (
	"encoding/json"

	"quill.dev/pkg/encoders/envelopes"
	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/utils/errorf"
)

// L is the frame label.
const L = "EVENT"

// Submission is a client-to-relay EVENT frame.
type Submission struct {
	Event *event.E
}

// NewSubmission wraps an event for publishing.
func NewSubmission(ev *event.E) *Submission { return &Submission{Event: ev} }

// ParseSubmission decodes the elements after the label.
func ParseSubmission(rest []json.RawMessage) (s *Submission, err error) {
	if len(rest) != 1 {
		err = errorf.E("eventenvelope: submission wants 1 element, got %d", len(rest))
		return
	}
	s = &Submission{Event: &event.E{}}
	if err = json.Unmarshal(rest[0], s.Event); err != nil {
		s = nil
	}
	return
}

// Marshal renders the frame.
func (s *Submission) Marshal() (b []byte, err error) {
	return envelopes.Marshal(L, s.Event)
}

// Result is a relay-to-client EVENT frame carrying the subscription id it
// matched.
type Result struct {
	Subscription string
	Event        *event.E
}

// NewResult frames an event for one subscription.
func NewResult(sub string, ev *event.E) *Result {
	return &Result{Subscription: sub, Event: ev}
}

// ParseResult decodes the elements after the label.
func ParseResult(rest []json.RawMessage) (r *Result, err error) {
	if len(rest) != 2 {
		err = errorf.E("eventenvelope: result wants 2 elements, got %d", len(rest))
		return
	}
	r = &Result{Event: &event.E{}}
	if err = json.Unmarshal(rest[0], &r.Subscription); err != nil {
		r = nil
		return
	}
	if err = json.Unmarshal(rest[1], r.Event); err != nil {
		r = nil
	}
	return
}

// Marshal renders the frame.
func (r *Result) Marshal() (b []byte, err error) {
	return envelopes.Marshal(L, r.Subscription, r.Event)
}
