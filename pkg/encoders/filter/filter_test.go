package filter

import (
	"encoding/json"
	"testing"

	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/encoders/kind"
	"quill.dev/pkg/encoders/tag"
	"quill.dev/pkg/encoders/timestamp"
)

func ts(v int64) *timestamp.T {
	t := timestamp.T(v)
	return &t
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	f := &F{}
	if !f.Matches(&event.E{ID: "anything", CreatedAt: 1}) {
		t.Error("empty filter rejected an event")
	}
	if f.Matches(nil) {
		t.Error("matched a nil event")
	}
}

func TestFieldConstraints(t *testing.T) {
	ev := &event.E{
		ID:        "00960bc35e455f3a",
		Pubkey:    "614a695bab54e8dc",
		CreatedAt: 100,
		Kind:      kind.Text,
	}
	tests := []struct {
		name string
		f    *F
		want bool
	}{
		{"id prefix hit", &F{IDs: []string{"00960"}}, true},
		{"id prefix miss", &F{IDs: []string{"ff"}}, false},
		{"author prefix hit", &F{Authors: []string{"614a"}}, true},
		{"author prefix miss", &F{Authors: []string{"aaaa"}}, false},
		{"kind hit", &F{Kinds: []kind.T{kind.Text}}, true},
		{"kind miss", &F{Kinds: []kind.T{kind.Metadata}}, false},
		{"since inclusive", &F{Since: ts(100)}, true},
		{"since excludes older", &F{Since: ts(101)}, false},
		{"until inclusive", &F{Until: ts(100)}, true},
		{"until excludes newer", &F{Until: ts(99)}, false},
		{
			"all fields and together",
			&F{IDs: []string{"00"}, Authors: []string{"614a"}, Since: ts(50), Until: ts(150)},
			true,
		},
		{
			"one failing field fails the filter",
			&F{IDs: []string{"00"}, Authors: []string{"nope"}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				if got := tt.f.Matches(ev); got != tt.want {
					t.Errorf("Matches = %v, want %v", got, tt.want)
				}
			},
		)
	}
}

// The e and p constraints only consult the first tag of their kind on the
// event.
func TestTagConstraintsUseFirstTagOnly(t *testing.T) {
	ev := &event.E{
		ID:        "aa",
		CreatedAt: 1,
		Tags: tag.S{
			tag.NewEvent("first", "", ""),
			tag.NewEvent("second", "", ""),
			tag.NewPubKey("", "pk1", "pk2"),
			tag.NewPubKey("", "pk3"),
		},
	}
	if !(&F{E: []string{"first"}}).Matches(ev) {
		t.Error("e constraint missed the first e tag")
	}
	if (&F{E: []string{"second"}}).Matches(ev) {
		t.Error("e constraint matched a later e tag")
	}
	if !(&F{P: []string{"pk2"}}).Matches(ev) {
		t.Error("p constraint missed a pubkey of the first p tag")
	}
	if (&F{P: []string{"pk3"}}).Matches(ev) {
		t.Error("p constraint matched a later p tag")
	}
	bare := &event.E{ID: "bb", CreatedAt: 1}
	if (&F{E: []string{"first"}}).Matches(bare) {
		t.Error("e constraint matched an event with no e tag")
	}
}

func TestUnmarshalAcceptsBothSpellings(t *testing.T) {
	var f F
	if err := json.Unmarshal([]byte(`{"e":["aa"],"p":["bb"]}`), &f); err != nil {
		t.Fatal(err)
	}
	if len(f.E) != 1 || f.E[0] != "aa" || len(f.P) != 1 || f.P[0] != "bb" {
		t.Fatalf("plain spelling parse: %+v", f)
	}
	f = F{}
	if err := json.Unmarshal(
		[]byte(`{"#e":["cc"],"e":["dd"]}`), &f,
	); err != nil {
		t.Fatal(err)
	}
	if len(f.E) != 1 || f.E[0] != "cc" {
		t.Fatalf("prefixed spelling should win: %+v", f)
	}
}

func TestMarshalEmitsPrefixedSpelling(t *testing.T) {
	f := &F{E: []string{"aa"}, P: []string{"bb"}}
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"#e":["aa"],"#p":["bb"]}`
	if string(b) != want {
		t.Errorf("got %s want %s", b, want)
	}
}

func TestFilterListIsDisjunction(t *testing.T) {
	ev := &event.E{ID: "00960", Pubkey: "614a", CreatedAt: 1}
	s := S{
		{Authors: []string{"nope"}},
		{IDs: []string{"00"}},
	}
	if !s.Match(ev) {
		t.Error("second filter should have matched")
	}
	if (S{{Authors: []string{"nope"}}}).Match(ev) {
		t.Error("no filter should have matched")
	}
}
