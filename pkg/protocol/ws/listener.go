// Package ws implements the websocket transport for both sides of the
// protocol: the relay-side Listener wrapping one accepted connection, and
// the client-side Client and Pool managing outbound relay connections.
package ws

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"go.uber.org/atomic"

	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/errorf"
	"quill.dev/pkg/utils/log"
)

// OutboundBuffer is the depth of a connection's outbound frame queue.
// Enqueues never block; a full queue drops the frame with an error so one
// slow client cannot stall fan-out to the others.
const OutboundBuffer = 512

// Listener is one accepted relay-side connection. All frames leave through
// the out queue, drained by a single writer goroutine, so wire order is
// enqueue order.
type Listener struct {
	Ctx     context.T
	Cancel  context.F
	Conn    *websocket.Conn
	Request *http.Request
	remote  atomic.String
	out     chan []byte
	once    sync.Once
}

// NewListener wraps an accepted connection and starts its writer.
func NewListener(c context.T, conn *websocket.Conn, req *http.Request) (ws *Listener) {
	ws = &Listener{
		Conn:    conn,
		Request: req,
		out:     make(chan []byte, OutboundBuffer),
	}
	ws.Ctx, ws.Cancel = context.Cancel(c)
	ws.remote.Store(remoteFromReq(conn, req))
	go ws.writer()
	return
}

func remoteFromReq(conn *websocket.Conn, r *http.Request) (remote string) {
	if r != nil {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			return strings.TrimSpace(strings.Split(fwd, ",")[0])
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
	}
	return conn.NetConn().RemoteAddr().String()
}

// writer drains the outbound queue to the wire until the connection context
// ends or a write fails.
func (ws *Listener) writer() {
	for {
		select {
		case <-ws.Ctx.Done():
			return
		case b := <-ws.out:
			if err := ws.Conn.WriteMessage(websocket.TextMessage, b); err != nil {
				if !strings.Contains(err.Error(), "close sent") {
					log.D.F("%s write failed: %v", ws.RealRemote(), err)
				}
				ws.Close()
				return
			}
		}
	}
}

// Enqueue queues a frame for delivery. It never blocks; when the queue is
// full or the connection is closing the frame is dropped and an error
// returned.
func (ws *Listener) Enqueue(b []byte) (err error) {
	select {
	case <-ws.Ctx.Done():
		return errorf.E("ws: connection %s closing", ws.RealRemote())
	case ws.out <- b:
		return
	default:
		return errorf.E("ws: outbound queue full for %s", ws.RealRemote())
	}
}

// Ping sends a ping control frame, bypassing the queue. Control frames may
// interleave with data frames per the websocket protocol.
func (ws *Listener) Ping(deadline time.Time) (err error) {
	return ws.Conn.WriteControl(websocket.PingMessage, nil, deadline)
}

// CloseFrame sends a close control frame.
func (ws *Listener) CloseFrame() (err error) {
	return ws.Conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
}

// RealRemote returns the remote address identifying this connection.
func (ws *Listener) RealRemote() string { return ws.remote.Load() }

// Req returns the upgrade request.
func (ws *Listener) Req() *http.Request { return ws.Request }

// Close tears the connection down. Safe to call more than once.
func (ws *Listener) Close() (err error) {
	ws.once.Do(
		func() {
			ws.Cancel()
			err = ws.Conn.Close()
			chk.D(err)
		},
	)
	return
}
