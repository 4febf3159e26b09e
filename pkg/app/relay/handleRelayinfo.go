package relay

import (
	"encoding/json"
	"net/http"

	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/log"
	"quill.dev/pkg/version"
)

// Info is the relay information document served to clients that ask for
// application/nostr+json on the root path.
type Info struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Pubkey        string `json:"pubkey,omitempty"`
	SupportedNIPs []int  `json:"supported_nips"`
	Software      string `json:"software"`
	Version       string `json:"version"`
}

// HandleRelayInfo serves the relay information document.
func (s *Server) HandleRelayInfo(w http.ResponseWriter, r *http.Request) {
	log.T.Ln("handling relay information document")
	w.Header().Set("Content-Type", "application/json")
	info := &Info{
		Name:          s.C.AppName,
		Description:   "in-memory backlog relay with a durable event log",
		SupportedNIPs: []int{1},
		Software:      version.URL,
		Version:       version.V,
	}
	if err := json.NewEncoder(w).Encode(info); chk.E(err) {
	}
}
