// Package server defines the interface the websocket frame handlers consume
// to act on the relay's shared state.
package server

import (
	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/encoders/filter"
	"quill.dev/pkg/protocol/ws"
	"quill.dev/pkg/utils/context"
)

// I is the relay core as seen from one connection handler.
type I interface {
	// Context is the process lifetime context.
	Context() context.T
	// AddEvent ingests a validated event: appends it to the log if its id is
	// new and fans it out to matching subscriptions. Re-submissions of a
	// known id are accepted=false no-ops. A non-nil error means the durable
	// append failed and the relay is shutting down.
	AddEvent(c context.T, ev *event.E) (accepted bool, err error)
	// Subscribe upserts a subscription for the listener's connection,
	// replays the matching backlog newest-first and terminates it with EOSE.
	Subscribe(l *ws.Listener, id string, ff filter.S)
	// Unsubscribe removes a subscription, reporting whether it existed.
	Unsubscribe(l *ws.Listener, id string) (found bool)
	// Disconnect removes the listener's connection record.
	Disconnect(l *ws.Listener)
	// Shutdown notifies connected clients and stops the relay.
	Shutdown()
}
