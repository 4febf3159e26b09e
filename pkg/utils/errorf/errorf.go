// Package errorf provides formatted error constructors matching the chk
// level letters.
package errorf

import "fmt"

// E returns a formatted error.
func E(format string, a ...interface{}) error { return fmt.Errorf(format, a...) }

// W returns a formatted error for conditions that are warnings at the call
// site but errors to the caller.
func W(format string, a ...interface{}) error { return fmt.Errorf(format, a...) }
