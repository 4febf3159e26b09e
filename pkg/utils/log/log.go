// Package log exposes the shared level printers, so call sites read as
// log.I.F(...), log.E.Ln(...), log.T.C(...).
package log

import "quill.dev/pkg/utils/lol"

var (
	F = lol.Main.F
	E = lol.Main.E
	W = lol.Main.W
	I = lol.Main.I
	D = lol.Main.D
	T = lol.Main.T
)
