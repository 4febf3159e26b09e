package tag

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFromSlice(t *testing.T) {
	id := "5c83da77af1dec6d7289834998ad7aafbd9e2191396d75ec3cc27f5a77226f36"
	pk1 := "f7234bd4c1394dda46d09f35bd384dd30cc552ad5541990f98844fb06676e9ca"
	pk2 := "2c48e2c4a6e2c6e8c9e7e29a9b46e5fdd90bd38b06c44d4d5905d0e3a7a2a66c"
	relay := "wss://relay.example.com"
	tests := []struct {
		name string
		in   []string
		want *T
	}{
		{"bare e", []string{"e", id}, NewEvent(id, "", "")},
		{"e with relay", []string{"e", id, relay}, NewEvent(id, relay, "")},
		{
			"e with relay and marker", []string{"e", id, relay, "root"},
			NewEvent(id, relay, "root"),
		},
		{
			"e marker without relay", []string{"e", id, "", "reply"},
			NewEvent(id, "", "reply"),
		},
		{
			"overlong e degrades to generic",
			[]string{"e", id, relay, "root", "extra"},
			NewGeneric("e", id, relay, "root", "extra"),
		},
		{"bare p", []string{"p", pk1}, NewPubKey("", pk1)},
		{"p empty relay slot", []string{"p", pk1, ""}, NewPubKey("", pk1)},
		{"p with relay", []string{"p", pk1, relay}, NewPubKey(relay, pk1)},
		{
			"p last element is another pubkey", []string{"p", pk1, pk2},
			NewPubKey("", pk1, pk2),
		},
		{
			"p many pubkeys with relay", []string{"p", pk1, pk2, relay},
			NewPubKey(relay, pk1, pk2),
		},
		{"single element", []string{"t"}, NewGeneric("t")},
		{"generic", []string{"t", "potato"}, NewGeneric("t", "potato")},
	}
	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				got, err := FromSlice(tt.in)
				if err != nil {
					t.Fatal(err)
				}
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("got %+v want %+v", got, tt.want)
				}
			},
		)
	}
}

func TestFromSliceEmpty(t *testing.T) {
	if _, err := FromSlice(nil); err == nil {
		t.Fatal("expected error for empty slice")
	}
}

func TestMarshalWireForms(t *testing.T) {
	id := "00960bc35e455f3a3c619cf2af4cff94cb176c63e0c25eb0e57cea3ef0ddbe5f"
	pk := "614a695bab54e8dc98946abdb8ec019599ece6dada0c23890977d0fa128081d6"
	tests := []struct {
		name string
		in   *T
		want string
	}{
		{"bare e", NewEvent(id, "", ""), `["e","` + id + `"]`},
		{
			"e marker without relay keeps placeholder",
			NewEvent(id, "", "root"), `["e","` + id + `","","root"]`,
		},
		{
			"e relay and marker", NewEvent(id, "wss://r.io", "reply"),
			`["e","` + id + `","wss://r.io","reply"]`,
		},
		{"p elides empty relay", NewPubKey("", pk), `["p","` + pk + `"]`},
		{
			"p keeps relay", NewPubKey("wss://r.io", pk),
			`["p","` + pk + `","wss://r.io"]`,
		},
		{"generic", NewGeneric("t", "potato"), `["t","potato"]`},
	}
	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				b, err := json.Marshal(tt.in)
				if err != nil {
					t.Fatal(err)
				}
				if string(b) != tt.want {
					t.Errorf("got %s want %s", b, tt.want)
				}
			},
		)
	}
}

// The wire form keeps HTML-sensitive characters literal so the bytes can
// feed the id pre-image unchanged. json.Marshal re-escapes a Marshaler's
// output, so this checks MarshalJSON directly, the way the pre-image
// encoder consumes it.
func TestMarshalKeepsURLQueryLiteral(t *testing.T) {
	id := "00960bc35e455f3a3c619cf2af4cff94cb176c63e0c25eb0e57cea3ef0ddbe5f"
	relay := "wss://relay.example.com/?a=1&b=2"
	tg := NewEvent(id, relay, "")
	b, err := tg.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `["e","` + id + `","` + relay + `"]`
	if string(b) != want {
		t.Errorf("got %s want %s", b, want)
	}
}

func TestUnmarshalRoundTrip(t *testing.T) {
	in := `["p","aaa","bbb","wss://relay.example.com"]`
	var tg T
	if err := json.Unmarshal([]byte(in), &tg); err != nil {
		t.Fatal(err)
	}
	if tg.Form != PubKey || len(tg.PubKeys) != 2 ||
		tg.Relay != "wss://relay.example.com" {
		t.Fatalf("unexpected parse: %+v", tg)
	}
	b, err := json.Marshal(&tg)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != in {
		t.Errorf("round trip got %s want %s", b, in)
	}
}

func TestFirst(t *testing.T) {
	s := S{
		NewGeneric("t", "one"),
		NewEvent("aaa", "", ""),
		NewEvent("bbb", "", ""),
	}
	if got := s.First("e"); got == nil || got.EventID != "aaa" {
		t.Fatalf("First(e) = %+v, want the aaa tag", got)
	}
	if got := s.First("p"); got != nil {
		t.Fatalf("First(p) = %+v, want nil", got)
	}
}
