// Package interrupt runs registered handlers on SIGINT/SIGTERM, in the order
// they were added, then exits.
package interrupt

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"quill.dev/pkg/utils/log"
)

var (
	mx       sync.Mutex
	handlers []func()
	armed    bool
)

// AddHandler registers fn to run when an interrupt signal arrives. The first
// call arms the signal listener.
func AddHandler(fn func()) {
	mx.Lock()
	defer mx.Unlock()
	handlers = append(handlers, fn)
	if armed {
		return
	}
	armed = true
	go listen()
}

func listen() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	log.I.F("received %v, shutting down", s)
	mx.Lock()
	hs := make([]func(), len(handlers))
	copy(hs, handlers)
	mx.Unlock()
	for _, fn := range hs {
		fn()
	}
	os.Exit(0)
}
