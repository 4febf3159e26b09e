package ws

import (
	"github.com/fasthttp/websocket"
	"go.uber.org/atomic"

	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/errorf"
	"quill.dev/pkg/utils/log"
	"quill.dev/pkg/utils/normalize"
)

// Frame is one inbound frame tagged with the relay it arrived from.
type Frame struct {
	URL  string
	Data []byte
}

// Client is one outbound relay connection, owned by a Pool. Frames leave
// through the out queue, drained by a writer goroutine; inbound frames are
// forwarded to the pool's aggregation channel tagged with the URL. There is
// no reconnection: once the socket drops, Connect must be called again.
type Client struct {
	URL string

	conn           *websocket.Conn
	out            chan []byte
	connected      *atomic.Bool
	closeRequested *atomic.Bool
}

// NewClient creates an unconnected client for the normalized relay URL.
func NewClient(url string) (c *Client) {
	return &Client{
		URL:            normalize.URL(url),
		out:            make(chan []byte, OutboundBuffer),
		connected:      atomic.NewBool(false),
		closeRequested: atomic.NewBool(false),
	}
}

// IsConnected reports whether the socket is currently up.
func (c *Client) IsConnected() bool { return c.connected.Load() }

// Connect dials the relay and starts the reader and writer. Inbound frames
// are sent to incoming. A no-op when already connected.
func (c *Client) Connect(ctx context.T, incoming chan *Frame) (err error) {
	if c.connected.Load() {
		return
	}
	var conn *websocket.Conn
	if conn, _, err = websocket.DefaultDialer.DialContext(
		ctx, c.URL, nil,
	); err != nil {
		return errorf.E("ws: dialing %s: %s", c.URL, err)
	}
	c.conn = conn
	c.closeRequested.Store(false)
	c.connected.Store(true)
	// done scopes the reader and writer to this socket. The writer exits
	// with the connection instead of lingering on the shared queue, so a
	// later Connect starts exactly one writer for the new socket.
	done := make(chan struct{})
	go c.reader(conn, incoming, done)
	go c.writer(conn, done)
	return
}

// reader forwards every inbound frame to the aggregation channel until the
// socket closes, then releases the writer.
func (c *Client) reader(
	conn *websocket.Conn, incoming chan *Frame, done chan struct{},
) {
	defer close(done)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !c.closeRequested.Load() {
				log.D.F("%s read failed: %v", c.URL, err)
			}
			c.connected.Store(false)
			return
		}
		incoming <- &Frame{URL: c.URL, Data: msg}
	}
}

// writer drains the outbound queue into the socket until the connection's
// done channel closes, checking the close flag between messages.
func (c *Client) writer(conn *websocket.Conn, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case b := <-c.out:
			if c.closeRequested.Load() {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				log.D.F("%s write failed: %v", c.URL, err)
				c.connected.Store(false)
				return
			}
		}
	}
}

// Enqueue queues a frame for delivery. It never blocks; a full queue or a
// closed connection drops the frame with an error.
func (c *Client) Enqueue(b []byte) (err error) {
	if !c.connected.Load() {
		return errorf.E("ws: %s not connected", c.URL)
	}
	select {
	case c.out <- b:
		return
	default:
		return errorf.E("ws: outbound queue full for %s", c.URL)
	}
}

// RequestClose marks the connection for teardown and closes the socket so
// the reader and writer observe it promptly.
func (c *Client) RequestClose() {
	c.closeRequested.Store(true)
	if c.connected.Swap(false) && c.conn != nil {
		_ = c.conn.Close()
	}
}
