// Package config provides the go-simpler.org/env configuration table shared
// by the relay and client binaries, with .env file support.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"quill.dev/pkg/utils/apputil"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/log"
	"quill.dev/pkg/utils/lol"
	"quill.dev/pkg/version"
)

// C holds configuration loaded from environment variables and default
// values, for both the relay and the client.
type C struct {
	AppName    string   `env:"QUILL_APP_NAME" default:"quill"`
	Config     string   `env:"QUILL_CONFIG_DIR" usage:"location of the optional .env configuration file" default:""`
	DataDir    string   `env:"QUILL_DATA_DIR" usage:"storage location for the event log and client state" default:""`
	Listen     string   `env:"RELAY_HOST" default:"0.0.0.0:8080" usage:"relay bind address as host:port"`
	LogLevel   string   `env:"QUILL_LOG_LEVEL" default:"info" usage:"log level: fatal error warn info debug trace"`
	DbLogLevel string   `env:"QUILL_DB_LOG_LEVEL" default:"info" usage:"database log level: fatal error warn info debug trace"`
	Pprof      bool     `env:"QUILL_PPROF" default:"false" usage:"enable profiling on 127.0.0.1:6060"`
	Relays     []string `env:"QUILL_RELAYS" usage:"relay URLs the client connects to (comma separated)"`
}

// New loads the configuration from the environment, falling back to a .env
// file in the config directory when one exists.
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, &env.Options{SliceSep: ","}); chk.T(err) {
		return
	}
	if cfg.Config == "" {
		cfg.Config = filepath.Join(xdg.ConfigHome, cfg.AppName)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(xdg.DataHome, cfg.AppName)
	}
	envPath := filepath.Join(cfg.Config, ".env")
	if apputil.FileExists(envPath) {
		var kv map[string]string
		if kv, err = godotenv.Read(envPath); chk.T(err) {
			return
		}
		// the process environment wins over the file
		for k, v := range kv {
			if _, present := os.LookupEnv(k); !present {
				os.Setenv(k, v)
			}
		}
		if err = env.Load(cfg, &env.Options{SliceSep: ","}); chk.E(err) {
			return
		}
		lol.SetLogLevel(cfg.LogLevel)
		log.I.F("loaded configuration from %s", envPath)
	}
	var relays []string
	for _, u := range cfg.Relays {
		if u == "" {
			continue
		}
		relays = append(relays, u)
	}
	cfg.Relays = relays
	return
}

// HelpRequested reports whether the first CLI argument asks for help.
func HelpRequested() (help bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "help", "-h", "--h", "-help", "--help", "?":
			help = true
		}
	}
	return
}

// GetEnv reports whether the first CLI argument is "env", requesting a dump
// of the current configuration.
func GetEnv() (requested bool) {
	if len(os.Args) > 1 {
		if strings.ToLower(os.Args[1]) == "env" {
			requested = true
		}
	}
	return
}

// KV is a key/value pair.
type KV struct{ Key, Value string }

// KVSlice is a sortable slice of key/value pairs.
type KVSlice []KV

func (kv KVSlice) Len() int           { return len(kv) }
func (kv KVSlice) Less(i, j int) bool { return kv[i].Key < kv[j].Key }
func (kv KVSlice) Swap(i, j int)      { kv[i], kv[j] = kv[j], kv[i] }

// EnvKV extracts the env-tagged fields of cfg as key/value pairs.
func EnvKV(cfg any) (m KVSlice) {
	t := reflect.TypeOf(cfg)
	for i := 0; i < t.NumField(); i++ {
		k := t.Field(i).Tag.Get("env")
		if k == "" {
			continue
		}
		v := reflect.ValueOf(cfg).Field(i).Interface()
		var val string
		switch x := v.(type) {
		case string:
			val = x
		case int, bool:
			val = fmt.Sprint(x)
		case []string:
			if len(x) > 0 {
				val = strings.Join(x, ",")
			}
		}
		m = append(m, KV{k, val})
	}
	return
}

// PrintEnv writes the current configuration as sorted KEY=value lines.
func PrintEnv(cfg *C, printer io.Writer) {
	kvs := EnvKV(*cfg)
	sort.Sort(kvs)
	for _, v := range kvs {
		_, _ = fmt.Fprintf(printer, "%s=%s\n", v.Key, v.Value)
	}
}

// PrintHelp writes version, environment variable usage and the current
// configuration.
func PrintHelp(cfg *C, printer io.Writer) {
	_, _ = fmt.Fprintf(printer, "%s %s\n\n", cfg.AppName, version.V)
	_, _ = fmt.Fprintf(
		printer, "Environment variables that configure %s:\n\n", cfg.AppName,
	)
	env.Usage(cfg, printer, &env.Options{SliceSep: ","})
	_, _ = fmt.Fprintf(
		printer,
		"\nA .env file at %s is loaded automatically; the process environment"+
			" overrides it.\nUse the parameter 'env' to print the current"+
			" configuration:\n\n\t%s env > %s/.env\n\n",
		cfg.Config, os.Args[0], cfg.Config,
	)
	fmt.Fprintf(printer, "current configuration:\n\n")
	PrintEnv(cfg, printer)
	fmt.Fprintln(printer)
}
