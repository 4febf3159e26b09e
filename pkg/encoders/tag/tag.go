// Package tag implements the event tag taxonomy and its wire forms.
//
// Three forms exist: event references ("e"), pubkey references ("p"), and
// generic tags preserved verbatim. Wire forms are JSON string arrays:
//
//	["e", <event-id>, <relay-url>?, <marker>?]
//	["p", <pubkey>..., <relay-url-or-empty>]
//	[<kind>, <field>...]
//
// A p tag carries 1..N pubkeys so a reply can reference the whole participant
// set. On output the trailing empty relay slot of a p tag is elided; on input
// it is tolerated. An e tag with a marker but no relay keeps the empty relay
// placeholder: ["e", id, "", marker].
package tag

import (
	"bytes"
	"encoding/json"
	"net/url"

	"quill.dev/pkg/utils/errorf"
)

// Markers for the e tag's optional relationship field.
const (
	MarkerRoot    = "root"
	MarkerReply   = "reply"
	MarkerMention = "mention"
)

// Form discriminates the three tag shapes.
type Form int

const (
	Generic Form = iota
	Event
	PubKey
)

// T is a single tag.
type T struct {
	Form Form
	// Kind is the wire prefix: "e", "p", or the generic kind string.
	Kind string
	// EventID is set for Event form.
	EventID string
	// PubKeys is set for PubKey form.
	PubKeys []string
	// Relay is the optional relay hint of the e and p forms; empty means
	// absent.
	Relay string
	// Marker is the optional relationship marker of the e form.
	Marker string
	// Fields holds everything after the kind for the Generic form.
	Fields []string
}

// NewEvent makes an e tag. Pass empty strings for absent relay or marker.
func NewEvent(id, relay, marker string) *T {
	return &T{Form: Event, Kind: "e", EventID: id, Relay: relay, Marker: marker}
}

// NewPubKey makes a p tag. Pass an empty relay for absent.
func NewPubKey(relay string, pubkeys ...string) *T {
	return &T{Form: PubKey, Kind: "p", PubKeys: pubkeys, Relay: relay}
}

// NewGeneric makes a verbatim tag.
func NewGeneric(kind string, fields ...string) *T {
	return &T{Form: Generic, Kind: kind, Fields: fields}
}

// Slice renders the tag in its wire vector form, before p-tag elision.
func (t *T) Slice() (s []string) {
	switch t.Form {
	case Event:
		s = []string{"e", t.EventID}
		if t.Relay != "" {
			s = append(s, t.Relay)
		}
		if t.Marker != "" {
			if len(s) == 2 {
				s = append(s, "")
			}
			s = append(s, t.Marker)
		}
	case PubKey:
		s = append([]string{"p"}, t.PubKeys...)
		s = append(s, t.Relay)
	default:
		s = append([]string{t.Kind}, t.Fields...)
	}
	return
}

// looksLikeURL mirrors the parse used to decide whether the last element of a
// p tag is a relay hint or another pubkey.
func looksLikeURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// fromPubKeySlice handles p tags of three or more elements: the last element
// is a relay if empty or URL-shaped, otherwise it is one more pubkey.
func fromPubKeySlice(s []string) *T {
	body, last := s[1:len(s)-1], s[len(s)-1]
	if last == "" {
		return NewPubKey("", body...)
	}
	if looksLikeURL(last) {
		return NewPubKey(last, body...)
	}
	return NewPubKey("", append(body, last)...)
}

// FromSlice parses a wire vector into a tag. Unrecognized shapes fall back to
// the generic form, including e tags with more than four elements.
func FromSlice(s []string) (t *T, err error) {
	if len(s) == 0 {
		err = errorf.E("tag: empty")
		return
	}
	kind := s[0]
	switch {
	case len(s) == 1:
		t = NewGeneric(kind)
	case len(s) == 2:
		switch kind {
		case "p":
			t = NewPubKey("", s[1])
		case "e":
			t = NewEvent(s[1], "", "")
		default:
			t = NewGeneric(kind, s[1:]...)
		}
	case len(s) == 3:
		switch kind {
		case "p":
			t = fromPubKeySlice(s)
		case "e":
			t = NewEvent(s[1], s[2], "")
		default:
			t = NewGeneric(kind, s[1:]...)
		}
	case len(s) == 4:
		switch kind {
		case "p":
			t = fromPubKeySlice(s)
		case "e":
			t = NewEvent(s[1], s[2], s[3])
		default:
			t = NewGeneric(kind, s[1:]...)
		}
	default:
		if kind == "p" {
			t = fromPubKeySlice(s)
		} else {
			t = NewGeneric(kind, s[1:]...)
		}
	}
	return
}

// MarshalJSON writes the wire form, eliding empty elements of p tags so a
// p tag without a relay has no trailing empty string. Encoding never HTML
// escapes: tag bytes feed the event id pre-image, where a relay URL's
// ampersand must stay literal.
func (t *T) MarshalJSON() (b []byte, err error) {
	s := t.Slice()
	if t.Form == PubKey {
		out := s[:0:0]
		for _, el := range s {
			if el == "" {
				continue
			}
			out = append(out, el)
		}
		s = out
	}
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err = enc.Encode(s); err != nil {
		return
	}
	b = bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return
}

// UnmarshalJSON parses a wire string array.
func (t *T) UnmarshalJSON(b []byte) (err error) {
	var s []string
	if err = json.Unmarshal(b, &s); err != nil {
		return
	}
	var parsed *T
	if parsed, err = FromSlice(s); err != nil {
		return
	}
	*t = *parsed
	return
}

// S is the ordered tag list of one event.
type S []*T

// First returns the first tag with the given wire kind, or nil.
func (s S) First(kind string) *T {
	for _, t := range s {
		if t.Kind == kind {
			return t
		}
	}
	return nil
}
