// Package main is the quill relay: a websocket event relay with a durable
// append-only event log. Configuration is via environment variables or an
// optional .env file.
package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/pkg/profile"

	"quill.dev/pkg/app/config"
	"quill.dev/pkg/app/relay"
	"quill.dev/pkg/database"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/interrupt"
	"quill.dev/pkg/utils/log"
	"quill.dev/pkg/utils/lol"
	"quill.dev/pkg/version"
)

func main() {
	var err error
	var cfg *config.C
	if cfg, err = config.New(); chk.T(err) {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err)
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(1)
	}
	if config.HelpRequested() {
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	if config.GetEnv() {
		config.PrintEnv(cfg, os.Stdout)
		os.Exit(0)
	}
	lol.SetLogLevel(cfg.LogLevel)
	log.I.F("starting %s %s", cfg.AppName, version.V)
	if cfg.Pprof {
		defer profile.Start(profile.MemProfile).Stop()
		go func() {
			chk.E(http.ListenAndServe("127.0.0.1:6060", nil))
		}()
	}
	c, cancel := context.Cancel(context.Bg())
	var storage *database.D
	if storage, err = database.New(
		c, cancel, cfg.DataDir, cfg.DbLogLevel,
	); chk.E(err) {
		os.Exit(1)
	}
	var server *relay.Server
	if server, err = relay.NewServer(c, cancel, cfg, storage); chk.E(err) {
		os.Exit(1)
	}
	interrupt.AddHandler(func() { server.Shutdown() })
	if err = server.Start(cfg.Listen); chk.E(err) {
		log.F.F("relay terminated: %v", err)
		os.Exit(1)
	}
}
