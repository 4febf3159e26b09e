package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fasthttp/websocket"

	"quill.dev/pkg/app/config"
	"quill.dev/pkg/crypto/p256k"
	"quill.dev/pkg/database"
	"quill.dev/pkg/encoders/envelopes"
	"quill.dev/pkg/encoders/envelopes/eoseenvelope"
	"quill.dev/pkg/encoders/envelopes/eventenvelope"
	"quill.dev/pkg/encoders/envelopes/noticeenvelope"
	"quill.dev/pkg/encoders/envelopes/reqenvelope"
	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/encoders/filter"
	"quill.dev/pkg/encoders/kind"
	"quill.dev/pkg/utils/context"
)

func newTestRelay(t *testing.T) (s *Server, hs *httptest.Server) {
	t.Helper()
	ctx, cancel := context.Cancel(context.Bg())
	db, err := database.New(ctx, cancel, t.TempDir(), "off")
	if err != nil {
		t.Fatal(err)
	}
	if s, err = NewServer(ctx, cancel, &config.C{AppName: "quill"}, db); err != nil {
		t.Fatal(err)
	}
	hs = httptest.NewServer(s)
	t.Cleanup(
		func() {
			hs.Close()
			cancel()
			db.Close()
		},
	)
	return
}

func dial(t *testing.T, hs *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func signedNote(t *testing.T, content string) *event.E {
	t.Helper()
	keys := &p256k.Signer{}
	if err := keys.Generate(); err != nil {
		t.Fatal(err)
	}
	ev := event.New(kind.Text, nil, content)
	if err := ev.Sign(keys); err != nil {
		t.Fatal(err)
	}
	return ev
}

func send(t *testing.T, conn *websocket.Conn, b []byte) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatal(err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) (string, []json.RawMessage) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	label, rest, err := envelopes.Identify(msg)
	if err != nil {
		t.Fatal(err)
	}
	return label, rest
}

func waitIngested(t *testing.T, s *Server, n uint64) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for s.eventLog.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("event log has %d entries, want %d", s.eventLog.Len(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPublishThenSubscribe(t *testing.T) {
	s, hs := newTestRelay(t)
	ev := signedNote(t, "potato")

	a := dial(t, hs)
	b, err := eventenvelope.NewSubmission(ev).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	send(t, a, b)
	waitIngested(t, s, 1)

	sub := dial(t, hs)
	req, err := reqenvelope.New(
		"s1", filter.S{{IDs: []string{ev.ID[:5]}}},
	).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	send(t, sub, req)

	label, rest := readFrame(t, sub)
	if label != eventenvelope.L {
		t.Fatalf("first frame = %s, want EVENT", label)
	}
	res, err := eventenvelope.ParseResult(rest)
	if err != nil {
		t.Fatal(err)
	}
	if res.Subscription != "s1" || res.Event.ID != ev.ID {
		t.Errorf("got sub %q event %s", res.Subscription, res.Event.ID)
	}
	label, rest = readFrame(t, sub)
	if label != eoseenvelope.L {
		t.Fatalf("second frame = %s, want EOSE", label)
	}
	eose, err := eoseenvelope.Parse(rest)
	if err != nil {
		t.Fatal(err)
	}
	if eose.Subscription != "s1" {
		t.Errorf("EOSE sub = %q", eose.Subscription)
	}
}

func TestSubscribeThenPublish(t *testing.T) {
	s, hs := newTestRelay(t)
	ev := signedNote(t, "live one")

	sub := dial(t, hs)
	req, err := reqenvelope.New(
		"s2", filter.S{{Authors: []string{ev.Pubkey[:8]}}},
	).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	send(t, sub, req)
	if label, _ := readFrame(t, sub); label != eoseenvelope.L {
		t.Fatalf("expected immediate EOSE on empty backlog, got %s", label)
	}

	pub := dial(t, hs)
	frame, err := eventenvelope.NewSubmission(ev).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	send(t, pub, frame)
	waitIngested(t, s, 1)

	label, rest := readFrame(t, sub)
	if label != eventenvelope.L {
		t.Fatalf("live frame = %s, want EVENT", label)
	}
	res, err := eventenvelope.ParseResult(rest)
	if err != nil {
		t.Fatal(err)
	}
	if res.Subscription != "s2" || res.Event.Content != "live one" {
		t.Errorf("got sub %q content %q", res.Subscription, res.Event.Content)
	}

	// a duplicate submission must not fan out a second time
	send(t, pub, frame)
	time.Sleep(100 * time.Millisecond)
	if n := s.eventLog.Len(); n != 1 {
		t.Fatalf("event log has %d entries after duplicate, want 1", n)
	}
	sub.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err = sub.ReadMessage(); err == nil {
		t.Error("received a frame for a duplicate submission")
	}
}

func TestInvalidEventsAreDropped(t *testing.T) {
	s, hs := newTestRelay(t)
	ev := signedNote(t, "tampered")
	ev.Content = "changed after signing"

	a := dial(t, hs)
	frame, err := eventenvelope.NewSubmission(ev).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	send(t, a, frame)
	time.Sleep(100 * time.Millisecond)
	if n := s.eventLog.Len(); n != 0 {
		t.Fatalf("event log has %d entries, want 0", n)
	}
}

func TestCloseNotices(t *testing.T) {
	_, hs := newTestRelay(t)
	conn := dial(t, hs)

	close1, err := envelopes.Marshal("CLOSE", "nope")
	if err != nil {
		t.Fatal(err)
	}
	send(t, conn, close1)
	label, rest := readFrame(t, conn)
	if label != noticeenvelope.L {
		t.Fatalf("frame = %s, want NOTICE", label)
	}
	n, err := noticeenvelope.Parse(rest)
	if err != nil {
		t.Fatal(err)
	}
	if n.Message != "Subscription not found." {
		t.Errorf("notice = %q", n.Message)
	}

	req, err := reqenvelope.New("s3", filter.S{{}}).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	send(t, conn, req)
	if label, _ = readFrame(t, conn); label != eoseenvelope.L {
		t.Fatalf("frame = %s, want EOSE", label)
	}
	close2, err := envelopes.Marshal("CLOSE", "s3")
	if err != nil {
		t.Fatal(err)
	}
	send(t, conn, close2)
	label, rest = readFrame(t, conn)
	if label != noticeenvelope.L {
		t.Fatalf("frame = %s, want NOTICE", label)
	}
	if n, err = noticeenvelope.Parse(rest); err != nil {
		t.Fatal(err)
	}
	if n.Message != "Subscription ended." {
		t.Errorf("notice = %q", n.Message)
	}
}

func TestMalformedFramesAreIgnored(t *testing.T) {
	_, hs := newTestRelay(t)
	conn := dial(t, hs)
	send(t, conn, []byte(`this is not json`))
	send(t, conn, []byte(`["WHATEVER","x"]`))

	// the connection stays usable
	req, err := reqenvelope.New("s4", filter.S{{}}).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	send(t, conn, req)
	if label, _ := readFrame(t, conn); label != eoseenvelope.L {
		t.Fatalf("frame = %s, want EOSE", label)
	}
}

func TestRelayInfoDocument(t *testing.T) {
	_, hs := newTestRelay(t)
	req, err := http.NewRequest(http.MethodGet, hs.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Accept", "application/nostr+json")
	res, err := hs.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	var info Info
	if err = json.NewDecoder(res.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Name != "quill" {
		t.Errorf("info name = %q", info.Name)
	}
	if info.Version == "" {
		t.Error("info version is empty")
	}
}

// An append failure is not a per-connection problem: the relay records it
// as fatal and takes itself down rather than keep serving clients with a
// log it can no longer write.
func TestFailedAppendShutsDownRelay(t *testing.T) {
	s, _ := newTestRelay(t)
	if err := s.store.Close(); err != nil {
		t.Fatal(err)
	}
	accepted, err := s.AddEvent(s.Ctx, signedNote(t, "doomed"))
	if err == nil || accepted {
		t.Fatalf("AddEvent on a closed store: accepted=%v err=%v", accepted, err)
	}
	select {
	case <-s.Ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not shut down after a failed append")
	}
	if s.fatal.Load() == nil {
		t.Error("no fatal error recorded for Start to report")
	}
}
