// Package kind defines the event kind number type. The three kinds the
// protocol recognizes get named constants; any other value passes through
// unchanged.
package kind

// T is an event kind number.
type T uint64

const (
	// Metadata events carry a JSON profile document in their content.
	Metadata T = 0
	// Text events are plain notes.
	Text T = 1
	// RecommendRelay events carry a relay URL to suggest to followers.
	RecommendRelay T = 2
)

// U64 returns the kind as uint64.
func (k T) U64() uint64 { return uint64(k) }

// In reports whether k is one of ks.
func (k T) In(ks []T) bool {
	for _, x := range ks {
		if k == x {
			return true
		}
	}
	return false
}
