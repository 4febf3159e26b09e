// Package chk provides one-letter error check helpers that log the error at
// a given level, with the caller's location, and report whether it was
// non-nil. They read as:
//
//	if err = f(); chk.E(err) {
//		return
//	}
package chk

import "quill.dev/pkg/utils/lol"

// E logs err at error level and reports err != nil.
func E(err error) bool { return lol.Main.E.Chk(err) }

// W logs err at warn level and reports err != nil.
func W(err error) bool { return lol.Main.W.Chk(err) }

// D logs err at debug level and reports err != nil.
func D(err error) bool { return lol.Main.D.Chk(err) }

// T logs err at trace level and reports err != nil.
func T(err error) bool { return lol.Main.T.Chk(err) }

// F logs err at fatal level, exiting the process if err != nil.
func F(err error) bool { return lol.Main.F.Chk(err) }
