// Command quillcli is the relay pool client. It connects to the relays in
// QUILL_RELAYS, re-issues stored subscriptions, optionally publishes a text
// note from the command line, and prints verified inbound events until
// interrupted.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"quill.dev/pkg/app/client"
	"quill.dev/pkg/app/config"
	"quill.dev/pkg/database"
	"quill.dev/pkg/encoders/filter"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/interrupt"
	"quill.dev/pkg/utils/log"
	"quill.dev/pkg/utils/lol"
	"quill.dev/pkg/version"
)

func printUsage() {
	fmt.Println("Usage: quillcli <command> [<args...>]")
	fmt.Println("\nAvailable commands:")
	fmt.Println("  note <content>      - Publish a text note across the pool")
	fmt.Println("  metadata <name>     - Publish a profile document")
	fmt.Println("  sub [<filter json>] - Subscribe and print inbound events")
	fmt.Println("  unsub <sub id>      - Close and forget a stored subscription")
	fmt.Println("\nRelays come from QUILL_RELAYS (comma separated URLs).")
}

func main() {
	var err error
	var cfg *config.C
	if cfg, err = config.New(); chk.T(err) {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err)
		os.Exit(1)
	}
	if config.HelpRequested() || len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}
	lol.SetLogLevel(cfg.LogLevel)
	log.I.F("starting %s client %s", cfg.AppName, version.V)
	if len(cfg.Relays) == 0 {
		fmt.Fprintln(os.Stderr, "no relays configured, set QUILL_RELAYS")
		os.Exit(1)
	}
	c, cancel := context.Cancel(context.Bg())
	var storage *database.D
	if storage, err = database.New(
		c, cancel, cfg.DataDir, cfg.DbLogLevel,
	); chk.E(err) {
		os.Exit(1)
	}
	var cl *client.C
	if cl, err = client.New(c, storage); chk.E(err) {
		os.Exit(1)
	}
	interrupt.AddHandler(
		func() {
			cl.Close()
			cancel()
			chk.D(storage.Close())
		},
	)
	for _, url := range cfg.Relays {
		if err = cl.AddRelay(url); err != nil {
			log.W.F("%s: %v", url, err)
		}
	}
	chk.E(cl.SubscribeStored())
	command := os.Args[1]
	args := os.Args[2:]
	switch command {
	case "note":
		if len(args) == 0 {
			printUsage()
			os.Exit(1)
		}
		note, err := cl.PublishTextNote(strings.Join(args, " "), nil)
		if chk.E(err) {
			os.Exit(1)
		}
		fmt.Printf("published %s\n", note.ID)
	case "metadata":
		if len(args) == 0 {
			printUsage()
			os.Exit(1)
		}
		ev, err := cl.PublishMetadata(&client.Metadata{Name: args[0]})
		if chk.E(err) {
			os.Exit(1)
		}
		fmt.Printf("published %s\n", ev.ID)
	case "sub":
		f := &filter.F{}
		if len(args) > 0 {
			if err = json.Unmarshal([]byte(args[0]), f); chk.E(err) {
				os.Exit(1)
			}
		}
		var id string
		if id, err = cl.Subscribe(filter.S{f}); chk.E(err) {
			os.Exit(1)
		}
		fmt.Printf("subscribed %s\n", id)
	case "unsub":
		if len(args) == 0 {
			printUsage()
			os.Exit(1)
		}
		if err = cl.Unsubscribe(args[0]); chk.E(err) {
			os.Exit(1)
		}
		fmt.Printf("unsubscribed %s\n", args[0])
	default:
		printUsage()
		os.Exit(1)
	}
	for note := range cl.Notes() {
		fmt.Printf(
			"%s [%s] kind %d from %s: %s\n",
			note.URL, note.Subscription, note.Event.Kind,
			note.Event.Pubkey, note.Event.Content,
		)
	}
}
