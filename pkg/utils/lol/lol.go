// Package lol (log of levels) is a small leveled logger with colored level
// labels and source code locations on the fatal, error and check printers.
//
// The log level is a process-wide atomic so handlers on any goroutine observe
// changes from SetLogLevel immediately.
package lol

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/atomic"
)

const (
	Off int32 = iota
	Fatal
	Error
	Warn
	Info
	Debug
	Trace
)

var LevelNames = []string{"off", "fatal", "error", "warn", "info", "debug", "trace"}

var level = atomic.NewInt32(Info)

// SetLogLevel sets the active log level by name. Unknown names leave the
// level at info.
func SetLogLevel(name string) {
	level.Store(Info)
	for i, n := range LevelNames {
		if strings.EqualFold(name, n) {
			level.Store(int32(i))
			return
		}
	}
}

// GetLogLevel returns the current level as its name.
func GetLogLevel() string { return LevelNames[level.Load()] }

var colorers = map[int32]func(a ...interface{}) string{
	Fatal: color.New(color.FgRed, color.Bold).SprintFunc(),
	Error: color.New(color.FgRed).SprintFunc(),
	Warn:  color.New(color.FgYellow).SprintFunc(),
	Info:  color.New(color.FgGreen).SprintFunc(),
	Debug: color.New(color.FgBlue).SprintFunc(),
	Trace: color.New(color.FgMagenta).SprintFunc(),
}

// Printer emits log entries at one fixed level.
type Printer struct {
	Level int32
	Label string
}

func (p *Printer) enabled() bool { return p.Level <= level.Load() }

func (p *Printer) emit(loc, msg string) {
	ts := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	label := colorers[p.Level]("[" + p.Label + "]")
	if loc != "" {
		fmt.Fprintf(os.Stderr, "%s %s %s %s\n", ts, label, msg, loc)
	} else {
		fmt.Fprintf(os.Stderr, "%s %s %s\n", ts, label, msg)
	}
	if p.Level == Fatal {
		os.Exit(1)
	}
}

// F prints a formatted log entry.
func (p *Printer) F(format string, a ...interface{}) {
	if !p.enabled() {
		return
	}
	var loc string
	if p.Level <= Error {
		loc = GetLoc(2)
	}
	p.emit(loc, fmt.Sprintf(format, a...))
}

// Ln prints its arguments space separated.
func (p *Printer) Ln(a ...interface{}) {
	if !p.enabled() {
		return
	}
	var loc string
	if p.Level <= Error {
		loc = GetLoc(2)
	}
	p.emit(loc, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
}

// C prints the result of a closure, only evaluating it when the level is
// enabled. Use for log lines whose rendering is expensive.
func (p *Printer) C(c func() string) {
	if !p.enabled() {
		return
	}
	p.emit("", c())
}

// Chk logs err and reports whether it was non-nil. Backs the chk package.
func (p *Printer) Chk(err error) bool {
	if err == nil {
		return false
	}
	if p.enabled() {
		p.emit(GetLoc(3), err.Error())
	}
	return true
}

// GetLoc renders the file:line of the caller skip frames up the stack.
func GetLoc(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	// trim to the module-relative path
	if i := strings.Index(file, "quill.dev/"); i >= 0 {
		file = file[i:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// Main is the set of level printers shared by the log and chk packages.
var Main = struct {
	F, E, W, I, D, T *Printer
}{
	F: &Printer{Fatal, "FTL"},
	E: &Printer{Error, "ERR"},
	W: &Printer{Warn, "WRN"},
	I: &Printer{Info, "INF"},
	D: &Printer{Debug, "DBG"},
	T: &Printer{Trace, "TRC"},
}
