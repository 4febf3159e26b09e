// Package version carries the release version string reported at startup and
// in the relay information document.
package version

// V is the current release version.
var V = "v0.1.0"

// Name is the software name reported in the relay information document.
var Name = "quill"

// URL points at the canonical source repository.
var URL = "https://quill.dev"
