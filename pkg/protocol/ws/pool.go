package ws

import (
	"errors"

	"github.com/puzpuzpuz/xsync/v3"

	"quill.dev/pkg/encoders/envelopes"
	"quill.dev/pkg/encoders/envelopes/eoseenvelope"
	"quill.dev/pkg/encoders/envelopes/eventenvelope"
	"quill.dev/pkg/encoders/envelopes/noticeenvelope"
	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/errorf"
	"quill.dev/pkg/utils/log"
	"quill.dev/pkg/utils/normalize"
)

// ErrUnknownRelay is returned by SendTo for a URL with no pool entry.
var ErrUnknownRelay = errors.New("ws: unknown relay")

// Note is a verified EVENT frame received from a relay.
type Note struct {
	URL          string
	Subscription string
	Event        *event.E
}

// Pool owns a set of outbound relay connections keyed by normalized URL.
// Every connection's reader feeds one aggregation channel; the notifier
// drains it, drops EVENT frames that fail the id or signature check, and
// surfaces the rest on Notes.
type Pool struct {
	Ctx      context.T
	clients  *xsync.MapOf[string, *Client]
	incoming chan *Frame
	notes    chan *Note
}

// NewPool creates an empty pool and starts its notifier.
func NewPool(ctx context.T) (p *Pool) {
	p = &Pool{
		Ctx:      ctx,
		clients:  xsync.NewMapOf[string, *Client](),
		incoming: make(chan *Frame, OutboundBuffer),
		notes:    make(chan *Note, OutboundBuffer),
	}
	go p.notifier()
	return
}

// Notes is the stream of verified events received across the pool.
func (p *Pool) Notes() <-chan *Note { return p.notes }

// AddRelay inserts a connection for url if absent, connects it, and sends
// the metadata frame when one is given. Adding an already known URL only
// reconnects it if its socket is down.
func (p *Pool) AddRelay(url string, metadata []byte) (err error) {
	url = normalize.URL(url)
	if url == "" {
		return errorf.E("ws: empty relay url")
	}
	c, _ := p.clients.LoadOrStore(url, NewClient(url))
	return p.connectClient(c, metadata)
}

// RemoveRelay drops the entry for url and tears its connection down.
func (p *Pool) RemoveRelay(url string) {
	if c, ok := p.clients.LoadAndDelete(normalize.URL(url)); ok {
		c.RequestClose()
	}
}

// Connect dials every entry that is not currently connected, sending the
// metadata frame on each newly opened socket.
func (p *Pool) Connect(metadata []byte) {
	p.clients.Range(
		func(url string, c *Client) bool {
			chk.E(p.connectClient(c, metadata))
			return true
		},
	)
}

// DisconnectRelay tears down the connection for url but keeps the entry, so
// a later Connect can re-establish it.
func (p *Pool) DisconnectRelay(url string) {
	if c, ok := p.clients.Load(normalize.URL(url)); ok {
		c.RequestClose()
	}
}

// Broadcast enqueues the frame on every connected entry. Enqueue failures
// are logged and do not abort the broadcast.
func (p *Pool) Broadcast(b []byte) {
	p.clients.Range(
		func(url string, c *Client) bool {
			if err := c.Enqueue(b); err != nil {
				log.W.F("%s: %v", url, err)
			}
			return true
		},
	)
}

// SendTo enqueues the frame on one entry, failing with ErrUnknownRelay when
// the URL has no pool entry.
func (p *Pool) SendTo(url string, b []byte) (err error) {
	c, ok := p.clients.Load(normalize.URL(url))
	if !ok {
		return ErrUnknownRelay
	}
	return c.Enqueue(b)
}

// Close tears down every connection, keeping the entries.
func (p *Pool) Close() {
	p.clients.Range(
		func(url string, c *Client) bool {
			c.RequestClose()
			return true
		},
	)
}

func (p *Pool) connectClient(c *Client, metadata []byte) (err error) {
	if c.IsConnected() {
		return
	}
	if err = c.Connect(p.Ctx, p.incoming); err != nil {
		return
	}
	log.I.F("connected to %s", c.URL)
	if len(metadata) > 0 {
		err = c.Enqueue(metadata)
	}
	return
}

// notifier classifies inbound frames from every connection. EVENT frames
// are checked for id and signature integrity before being surfaced; EOSE
// and NOTICE frames are logged; anything else is dropped.
func (p *Pool) notifier() {
	for {
		var f *Frame
		select {
		case <-p.Ctx.Done():
			return
		case f = <-p.incoming:
		}
		t, rest, err := envelopes.Identify(f.Data)
		if err != nil {
			log.T.F("%s unparseable frame: %v", f.URL, err)
			continue
		}
		switch t {
		case eventenvelope.L:
			res, err := eventenvelope.ParseResult(rest)
			if err != nil {
				log.T.F("%s malformed EVENT: %v", f.URL, err)
				continue
			}
			var valid bool
			if valid, err = res.Event.CheckID(); err != nil || !valid {
				log.D.F("%s event id mismatch, dropping", f.URL)
				continue
			}
			if valid, err = res.Event.Verify(); err != nil || !valid {
				log.D.F("%s invalid signature, dropping %s", f.URL, res.Event.ID)
				continue
			}
			select {
			case p.notes <- &Note{
				URL:          f.URL,
				Subscription: res.Subscription,
				Event:        res.Event,
			}:
			default:
				log.W.F("%s: notes channel full, dropping %s", f.URL, res.Event.ID)
			}
		case eoseenvelope.L:
			if e, err := eoseenvelope.Parse(rest); err == nil {
				log.D.F("%s end of stored events for %s", f.URL, e.Subscription)
			}
		case noticeenvelope.L:
			if n, err := noticeenvelope.Parse(rest); err == nil {
				log.I.F("%s notice: %s", f.URL, n.Message)
			}
		default:
			log.T.F("%s unknown envelope type %q", f.URL, t)
		}
	}
}
