// Package event implements the content-addressed, signed unit of data the
// protocol exchanges: canonical serialization, id derivation, signing and
// verification, and the JSON wire form.
package event

import (
	"encoding/json"

	"quill.dev/pkg/encoders/kind"
	"quill.dev/pkg/encoders/tag"
	"quill.dev/pkg/encoders/timestamp"
)

// E is one event. Immutable once signed; the ID, Pubkey and Sig fields are
// lowercase hex.
type E struct {
	ID        string      `json:"id"`
	Pubkey    string      `json:"pubkey"`
	CreatedAt timestamp.T `json:"created_at"`
	Kind      kind.T      `json:"kind"`
	Tags      tag.S       `json:"tags"`
	Content   string      `json:"content"`
	Sig       string      `json:"sig"`
}

// New returns an unsigned event with the current timestamp.
func New(k kind.T, tags tag.S, content string) *E {
	return &E{
		CreatedAt: timestamp.Now(),
		Kind:      k,
		Tags:      tags,
		Content:   content,
	}
}

// MarshalJSON renders the wire object, with an empty array rather than null
// for absent tags.
func (ev *E) MarshalJSON() (b []byte, err error) {
	type alias E
	cp := *ev
	if cp.Tags == nil {
		cp.Tags = tag.S{}
	}
	return json.Marshal((*alias)(&cp))
}

// S is a list of events sorting newest first.
type S []*E

func (s S) Len() int           { return len(s) }
func (s S) Less(i, j int) bool { return s[i].CreatedAt > s[j].CreatedAt }
func (s S) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// C is a channel of events.
type C chan *E
