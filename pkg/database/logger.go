package database

import (
	"strings"

	"go.uber.org/atomic"

	"quill.dev/pkg/utils/lol"
)

// logger adapts the lol printers to badger's Logger interface, with its own
// level so database noise can be tuned independently of the app.
type logger struct {
	level *atomic.Int32
}

func newLogger(level string) (l *logger) {
	l = &logger{level: atomic.NewInt32(lol.Info)}
	l.setLevel(level)
	return
}

func (l *logger) setLevel(level string) {
	for i, n := range lol.LevelNames {
		if strings.EqualFold(level, n) {
			l.level.Store(int32(i))
			return
		}
	}
	l.level.Store(lol.Info)
}

func (l *logger) Errorf(format string, a ...interface{}) {
	if l.level.Load() >= lol.Error {
		lol.Main.E.F("badger: "+strings.TrimSpace(format), a...)
	}
}

func (l *logger) Warningf(format string, a ...interface{}) {
	if l.level.Load() >= lol.Warn {
		lol.Main.W.F("badger: "+strings.TrimSpace(format), a...)
	}
}

func (l *logger) Infof(format string, a ...interface{}) {
	if l.level.Load() >= lol.Info {
		lol.Main.I.F("badger: "+strings.TrimSpace(format), a...)
	}
}

func (l *logger) Debugf(format string, a ...interface{}) {
	if l.level.Load() >= lol.Debug {
		lol.Main.D.F("badger: "+strings.TrimSpace(format), a...)
	}
}
