// Package socketapi runs the per-connection protocol state machine of the
// relay: upgrade, read loop, frame dispatch, keepalive pings and cleanup.
package socketapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/fasthttp/websocket"

	"quill.dev/pkg/interfaces/server"
	"quill.dev/pkg/protocol/ws"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/log"
	"quill.dev/pkg/utils/units"
)

const (
	DefaultPongWait = 60 * time.Second
	// DefaultPingWait is the keepalive cadence from relay to client.
	DefaultPingWait       = 20 * time.Second
	DefaultMaxMessageSize = 1 * units.Mb
)

// A handles one accepted connection, joining its context, its transport and
// the relay core.
type A struct {
	Ctx context.T
	*ws.Listener
	server.I
}

// Serve upgrades the request and runs the connection until the peer or the
// relay ends it. Cleanup removes the connection record from the clients
// table, so no further fan-out can reach this client.
func (a *A) Serve(w http.ResponseWriter, r *http.Request) {
	var err error
	var conn *websocket.Conn
	if conn, err = Upgrader.Upgrade(w, r, nil); chk.E(err) {
		return
	}
	var cancel context.F
	a.Ctx, cancel = context.Cancel(a.I.Context())
	a.Listener = ws.NewListener(a.Ctx, conn, r)
	log.D.F("%s connected", a.Listener.RealRemote())
	ticker := time.NewTicker(DefaultPingWait)
	defer func() {
		cancel()
		ticker.Stop()
		a.I.Disconnect(a.Listener)
		chk.D(a.Listener.Close())
		log.D.F("%s cleaned up", a.Listener.RealRemote())
	}()
	conn.SetReadLimit(DefaultMaxMessageSize)
	chk.E(conn.SetReadDeadline(time.Now().Add(DefaultPongWait)))
	conn.SetPongHandler(
		func(string) error {
			chk.E(conn.SetReadDeadline(time.Now().Add(DefaultPongWait)))
			return nil
		},
	)
	go a.Pinger(a.Ctx, ticker, cancel)
	var message []byte
	for {
		select {
		case <-a.Ctx.Done():
			return
		default:
		}
		if _, message, err = conn.ReadMessage(); err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return
			}
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
				websocket.CloseAbnormalClosure,
			) {
				log.W.F(
					"unexpected close error from %s: %v",
					a.Listener.RealRemote(), err,
				)
			}
			return
		}
		a.HandleMessage(message)
	}
}
