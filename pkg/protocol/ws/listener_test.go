package ws

import (
	"testing"

	"quill.dev/pkg/utils/context"
)

// Exercises the outbound queue semantics without a live socket: no writer is
// draining, so the queue fills and Enqueue must fail instead of blocking.
func TestListenerEnqueueNeverBlocks(t *testing.T) {
	l := &Listener{out: make(chan []byte, 2)}
	l.Ctx, l.Cancel = context.Cancel(context.Bg())
	l.remote.Store("test-remote")

	if err := l.Enqueue([]byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := l.Enqueue([]byte("two")); err != nil {
		t.Fatal(err)
	}
	if err := l.Enqueue([]byte("three")); err == nil {
		t.Fatal("enqueue on a full queue should fail")
	}

	l.Cancel()
	if err := l.Enqueue([]byte("four")); err == nil {
		t.Fatal("enqueue on a closing connection should fail")
	}
}

func TestListenerRealRemote(t *testing.T) {
	l := &Listener{}
	l.remote.Store("10.0.0.1:1234")
	if got := l.RealRemote(); got != "10.0.0.1:1234" {
		t.Errorf("RealRemote = %q", got)
	}
}
