// Package filter implements the subscription filter model and its matching
// predicate.
//
// All fields are optional and absent fields constrain nothing; present
// fields are ANDed. The tag-match fields accept both the "e"/"p" and
// "#e"/"#p" spellings on input and always emit "#e"/"#p".
package filter

import (
	"encoding/json"
	"strings"

	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/encoders/kind"
	"quill.dev/pkg/encoders/tag"
	"quill.dev/pkg/encoders/timestamp"
)

// F is one filter.
type F struct {
	IDs     []string
	Authors []string
	Kinds   []kind.T
	E       []string
	P       []string
	Since   *timestamp.T
	Until   *timestamp.T
	Limit   *uint64
}

type wire struct {
	IDs     []string     `json:"ids,omitempty"`
	Authors []string     `json:"authors,omitempty"`
	Kinds   []kind.T     `json:"kinds,omitempty"`
	E       []string     `json:"#e,omitempty"`
	P       []string     `json:"#p,omitempty"`
	Since   *timestamp.T `json:"since,omitempty"`
	Until   *timestamp.T `json:"until,omitempty"`
	Limit   *uint64      `json:"limit,omitempty"`
}

// MarshalJSON emits the wire object with the "#e"/"#p" field names.
func (f *F) MarshalJSON() (b []byte, err error) {
	return json.Marshal(&wire{
		IDs:     f.IDs,
		Authors: f.Authors,
		Kinds:   f.Kinds,
		E:       f.E,
		P:       f.P,
		Since:   f.Since,
		Until:   f.Until,
		Limit:   f.Limit,
	})
}

// UnmarshalJSON accepts both the plain and "#"-prefixed spellings of the tag
// match fields, the prefixed one winning when both are present.
func (f *F) UnmarshalJSON(b []byte) (err error) {
	var w struct {
		wire
		EAlias []string `json:"e"`
		PAlias []string `json:"p"`
	}
	if err = json.Unmarshal(b, &w); err != nil {
		return
	}
	*f = F{
		IDs:     w.IDs,
		Authors: w.Authors,
		Kinds:   w.Kinds,
		E:       w.E,
		P:       w.P,
		Since:   w.Since,
		Until:   w.Until,
		Limit:   w.Limit,
	}
	if f.E == nil {
		f.E = w.EAlias
	}
	if f.P == nil {
		f.P = w.PAlias
	}
	return
}

func anyPrefixOf(entries []string, field string) bool {
	for _, e := range entries {
		if strings.HasPrefix(field, e) {
			return true
		}
	}
	return false
}

// Matches reports whether ev passes every present constraint of f. An empty
// filter matches everything.
//
// The e and p constraints inspect only the FIRST tag of their kind on the
// event, not all of them; an event whose second e tag is the referenced one
// does not match. This mirrors the wire behavior of existing deployments and
// is kept for compatibility.
func (f *F) Matches(ev *event.E) bool {
	if ev == nil {
		return false
	}
	if f.IDs != nil && !anyPrefixOf(f.IDs, ev.ID) {
		return false
	}
	if f.Authors != nil && !anyPrefixOf(f.Authors, ev.Pubkey) {
		return false
	}
	if f.Kinds != nil && !ev.Kind.In(f.Kinds) {
		return false
	}
	if f.Since != nil && !(*f.Since <= ev.CreatedAt) {
		return false
	}
	if f.Until != nil && !(ev.CreatedAt <= *f.Until) {
		return false
	}
	if f.E != nil {
		t := firstOfForm(ev.Tags, tag.Event)
		if t == nil {
			return false
		}
		if !contains(f.E, t.EventID) {
			return false
		}
	}
	if f.P != nil {
		t := firstOfForm(ev.Tags, tag.PubKey)
		if t == nil {
			return false
		}
		found := false
		for _, pk := range t.PubKeys {
			if contains(f.P, pk) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func firstOfForm(tags tag.S, form tag.Form) *tag.T {
	for _, t := range tags {
		if t.Form == form {
			return t
		}
	}
	return nil
}

func contains(set []string, s string) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

// S is the filter list of one subscription. An event matches when any filter
// matches.
type S []*F

// Match reports whether any filter in s matches ev.
func (s S) Match(ev *event.E) bool {
	for _, f := range s {
		if f.Matches(ev) {
			return true
		}
	}
	return false
}
