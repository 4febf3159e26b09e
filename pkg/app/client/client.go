// Package client implements the multi-relay client SDK: a persistent
// identity with lazy key generation, a durable subscription store, and a
// relay pool that broadcasts published events and aggregates verified
// inbound ones.
package client

import (
	"encoding/json"

	"github.com/google/uuid"

	"quill.dev/pkg/database"
	"quill.dev/pkg/encoders/envelopes/closeenvelope"
	"quill.dev/pkg/encoders/envelopes/eventenvelope"
	"quill.dev/pkg/encoders/envelopes/reqenvelope"
	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/encoders/filter"
	"quill.dev/pkg/encoders/kind"
	"quill.dev/pkg/encoders/tag"
	"quill.dev/pkg/interfaces/signer"
	"quill.dev/pkg/protocol/ws"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/log"
)

// Metadata is the profile document published as a kind 0 event.
type Metadata struct {
	Name    string `json:"name,omitempty"`
	About   string `json:"about,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// C is a client identity over a pool of relay connections. Subscriptions
// are stored durably so they can be re-issued wholesale after a restart or
// a reconnect.
type C struct {
	Ctx  context.T
	Keys signer.I
	Pool *ws.Pool

	store    *database.D
	metadata []byte
}

// New loads or generates the client keypair from the store and creates an
// empty pool. A key generation failure is fatal for the caller.
func New(ctx context.T, store *database.D) (c *C, err error) {
	c = &C{Ctx: ctx, Pool: ws.NewPool(ctx), store: store}
	if c.Keys, err = store.LoadKeys(); chk.E(err) {
		return nil, err
	}
	log.D.F("client identity %x", c.Keys.Pub())
	return
}

// SetMetadata signs a kind 0 profile event that is presented to each relay
// on connect. It is not broadcast until PublishMetadata or a connection is
// opened.
func (c *C) SetMetadata(m *Metadata) (ev *event.E, err error) {
	if ev, err = c.sign(kind.Metadata, mustJSON(m), nil); chk.E(err) {
		return
	}
	if c.metadata, err = eventenvelope.NewSubmission(ev).Marshal(); chk.E(err) {
		return
	}
	return
}

// AddRelay inserts and connects a pool entry for url, presenting the client
// metadata when one has been set.
func (c *C) AddRelay(url string) (err error) {
	return c.Pool.AddRelay(url, c.metadata)
}

// RemoveRelay drops the relay from the pool and closes its connection.
func (c *C) RemoveRelay(url string) { c.Pool.RemoveRelay(url) }

// Connect dials every pool entry that is not yet connected.
func (c *C) Connect() { c.Pool.Connect(c.metadata) }

// DisconnectRelay closes the relay's connection but keeps its pool entry.
func (c *C) DisconnectRelay(url string) { c.Pool.DisconnectRelay(url) }

// Notes is the stream of verified events received across the pool.
func (c *C) Notes() <-chan *ws.Note { return c.Pool.Notes() }

// PublishTextNote signs a kind 1 event with the given content and tags and
// broadcasts it across the pool.
func (c *C) PublishTextNote(content string, tags tag.S) (ev *event.E, err error) {
	if ev, err = c.sign(kind.Text, content, tags); chk.E(err) {
		return
	}
	if err = c.broadcast(ev); chk.E(err) {
		return
	}
	return
}

// PublishMetadata signs and broadcasts a kind 0 profile event, and keeps it
// as the metadata presented on future connects.
func (c *C) PublishMetadata(m *Metadata) (ev *event.E, err error) {
	if ev, err = c.SetMetadata(m); chk.E(err) {
		return
	}
	c.Pool.Broadcast(c.metadata)
	return
}

// Subscribe stores the filter list under a fresh subscription id and
// broadcasts the REQ across the pool. The id identifies inbound events on
// Notes and is the handle for Unsubscribe.
func (c *C) Subscribe(ff filter.S) (id string, err error) {
	id = uuid.NewString()
	if err = c.store.PutSubscription(id, ff); chk.E(err) {
		return
	}
	var b []byte
	if b, err = reqenvelope.New(id, ff).Marshal(); chk.E(err) {
		return
	}
	c.Pool.Broadcast(b)
	return
}

// Unsubscribe broadcasts a CLOSE for the subscription and removes it from
// the store.
func (c *C) Unsubscribe(id string) (err error) {
	var b []byte
	if b, err = closeenvelope.New(id).Marshal(); chk.E(err) {
		return
	}
	c.Pool.Broadcast(b)
	return c.store.DeleteSubscription(id)
}

// SubscribeStored re-issues every stored subscription across the pool.
// Used after Connect to resume where a previous session left off.
func (c *C) SubscribeStored() (err error) {
	var subs []database.Subscription
	if subs, err = c.store.ListSubscriptions(); chk.E(err) {
		return
	}
	for _, sub := range subs {
		var b []byte
		if b, err = reqenvelope.New(sub.ID, sub.Filters).Marshal(); chk.E(err) {
			return
		}
		c.Pool.Broadcast(b)
	}
	log.D.F("re-issued %d stored subscriptions", len(subs))
	return
}

// Close tears down every pool connection.
func (c *C) Close() { c.Pool.Close() }

func (c *C) sign(k kind.T, content string, tags tag.S) (ev *event.E, err error) {
	ev = event.New(k, tags, content)
	if err = ev.Sign(c.Keys); chk.E(err) {
		return nil, err
	}
	return
}

func (c *C) broadcast(ev *event.E) (err error) {
	var b []byte
	if b, err = eventenvelope.NewSubmission(ev).Marshal(); chk.E(err) {
		return
	}
	c.Pool.Broadcast(b)
	return
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if chk.E(err) {
		return "{}"
	}
	return string(b)
}
