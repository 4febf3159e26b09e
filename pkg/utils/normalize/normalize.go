// Package normalize canonicalizes relay URLs so the pool map has one key per
// relay regardless of how the caller spelled the address.
package normalize

import (
	"net/url"
	"strings"
)

// URL normalizes a relay address to a ws:// or wss:// URL with a lowercase
// scheme and host and no trailing slash on an empty path. Bare host[:port]
// strings get the wss scheme, except localhost and raw IPs which get ws.
func URL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	u = strings.ToLower(u)
	if !strings.HasPrefix(u, "ws://") && !strings.HasPrefix(u, "wss://") {
		switch {
		case strings.HasPrefix(u, "http://"):
			u = "ws://" + u[len("http://"):]
		case strings.HasPrefix(u, "https://"):
			u = "wss://" + u[len("https://"):]
		case strings.HasPrefix(u, "localhost") ||
			strings.HasPrefix(u, "127.") ||
			strings.HasPrefix(u, "0.0.0.0"):
			u = "ws://" + u
		default:
			u = "wss://" + u
		}
	}
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	if p.Path == "/" {
		p.Path = ""
	}
	return p.String()
}
