// Package relay implements the relay core: the durable event log, the
// in-memory event vector replayed from it at startup, the clients table, and
// the HTTP front door that upgrades websocket connections and serves the
// relay information document.
package relay

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"
	"go.uber.org/atomic"

	"quill.dev/pkg/app/config"
	"quill.dev/pkg/app/relay/publish"
	"quill.dev/pkg/database"
	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/interfaces/server"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/log"
)

// Server is the relay core. One value owns all relay state; the per
// connection handlers reach it through the server.I interface.
//
// Lock order is publisher.Mx outermost, then evMx. Handlers hold
// publisher.Mx across ingest+fan-out and across upsert+backlog+EOSE so a
// subscription sees every event exactly once, in the backlog or live, and
// never both.
type Server struct {
	Ctx    context.T
	Cancel context.F
	Addr   string
	C      *config.C

	store    *database.D
	eventLog *database.EventLog

	// evMx guards the event vector and the id set.
	evMx   sync.Mutex
	events []*event.E
	seen   map[string]struct{}

	publisher  *publish.S
	httpServer *http.Server

	// fatal records the error that forced the relay down, reported by Start
	// so the process exits non-zero.
	fatal    atomic.Error
	shutdown sync.Once
}

var _ server.I = &Server{}

// NewServer opens the event log over the store and replays it into the
// in-memory vector.
func NewServer(
	ctx context.T, cancel context.F, cfg *config.C, store *database.D,
) (s *Server, err error) {
	s = &Server{
		Ctx:       ctx,
		Cancel:    cancel,
		C:         cfg,
		store:     store,
		seen:      make(map[string]struct{}),
		publisher: publish.New(),
	}
	if s.eventLog, err = database.NewEventLog(store); chk.E(err) {
		return nil, err
	}
	var evs []*event.E
	if evs, err = s.eventLog.ScanAll(); chk.E(err) {
		return nil, err
	}
	for _, ev := range evs {
		if _, ok := s.seen[ev.ID]; ok {
			continue
		}
		s.seen[ev.ID] = struct{}{}
		s.events = append(s.events, ev)
	}
	log.I.F("replayed %d events from the log", len(s.events))
	return
}

// Context returns the process lifetime context.
func (s *Server) Context() context.T { return s.Ctx }

// ServeHTTP routes the root path: websocket upgrades go to the frame
// handler, an application/nostr+json Accept header gets the relay
// information document, anything else is not found.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		if r.Header.Get("Upgrade") == "websocket" {
			s.handleWebsocket(w, r)
			return
		}
		if r.Header.Get("Accept") == "application/nostr+json" {
			s.HandleRelayInfo(w, r)
			return
		}
	}
	log.T.F("http request: %s from %s", r.URL.String(), r.RemoteAddr)
	http.NotFound(w, r)
}

// Start binds addr and serves until Shutdown. Optional started channels are
// closed once the listener is bound.
func (s *Server) Start(addr string, started ...chan bool) (err error) {
	s.Addr = addr
	log.I.F("starting relay listener at %s", addr)
	var ln net.Listener
	if ln, err = net.Listen("tcp", addr); err != nil {
		return err
	}
	s.httpServer = &http.Server{
		Handler:           cors.Default().Handler(s),
		Addr:              addr,
		ReadHeaderTimeout: 7 * time.Second,
		IdleTimeout:       28 * time.Second,
	}
	for _, startedC := range started {
		close(startedC)
	}
	if err = s.httpServer.Serve(ln); errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if ferr := s.fatal.Load(); ferr != nil {
		err = ferr
	}
	return
}

// Fatal records err as the reason the relay is going down and starts the
// shutdown. Used when the event log can no longer honor its persistence
// contract.
func (s *Server) Fatal(err error) {
	s.fatal.Store(err)
	go s.Shutdown()
}

// Shutdown notifies every connected client, sends close frames, and stops
// the HTTP server and the store. Safe to call more than once; only the
// first call runs.
func (s *Server) Shutdown() {
	s.shutdown.Do(
		func() {
			log.I.F(
				"shutting down relay, notifying %d clients", s.publisher.Len(),
			)
			s.publisher.NotifyAll(
				"Server "+s.Addr+" closing connection...", true,
			)
			s.Cancel()
			if s.httpServer != nil {
				log.W.Ln("shutting down relay listener")
				chk.E(s.httpServer.Shutdown(context.Bg()))
			}
			log.W.Ln("closing event store")
			chk.E(s.store.Close())
		},
	)
}
