package normalize

import "testing"

func TestURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"relay.damus.io", "wss://relay.damus.io"},
		{"wss://relay.damus.io", "wss://relay.damus.io"},
		{"WSS://Relay.Damus.IO", "wss://relay.damus.io"},
		{"https://relay.damus.io", "wss://relay.damus.io"},
		{"http://localhost:8080", "ws://localhost:8080"},
		{"localhost:8080", "ws://localhost:8080"},
		{"127.0.0.1:8080", "ws://127.0.0.1:8080"},
		{"wss://relay.damus.io/", "wss://relay.damus.io"},
		{"  relay.damus.io ", "wss://relay.damus.io"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := URL(tt.in); got != tt.want {
			t.Errorf("URL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
