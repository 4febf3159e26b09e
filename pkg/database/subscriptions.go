package database

import (
	"encoding/json"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"quill.dev/pkg/encoders/filter"
	"quill.dev/pkg/utils/chk"
)

var subscriptionPrefix = []byte("subscriptions/")

func subscriptionKey(id string) []byte {
	return append(append([]byte{}, subscriptionPrefix...), id...)
}

// subscriptionRecord is the stored form of one client subscription. Filters
// are kept as their wire JSON so the stored REQ replays byte-compatible.
type subscriptionRecord struct {
	ID      string    `msgpack:"id"`
	Filters []byte    `msgpack:"filters"`
	SavedAt time.Time `msgpack:"saved_at"`
}

// Subscription is one stored client subscription.
type Subscription struct {
	ID      string
	Filters filter.S
}

// PutSubscription stores or replaces the filter list for id.
func (d *D) PutSubscription(id string, ff filter.S) (err error) {
	var fj []byte
	if fj, err = json.Marshal(ff); chk.E(err) {
		return
	}
	var b []byte
	if b, err = msgpack.Marshal(
		&subscriptionRecord{ID: id, Filters: fj, SavedAt: time.Now()},
	); chk.E(err) {
		return
	}
	return d.Put(subscriptionKey(id), b)
}

// DeleteSubscription removes the stored subscription for id.
func (d *D) DeleteSubscription(id string) (err error) {
	return d.Delete(subscriptionKey(id))
}

// ListSubscriptions returns every stored subscription.
func (d *D) ListSubscriptions() (subs []Subscription, err error) {
	if err = d.Iter(
		subscriptionPrefix, func(key, val []byte) (err error) {
			var rec subscriptionRecord
			if err = msgpack.Unmarshal(val, &rec); chk.E(err) {
				return
			}
			var ff filter.S
			if err = json.Unmarshal(rec.Filters, &ff); chk.E(err) {
				return
			}
			subs = append(subs, Subscription{ID: rec.ID, Filters: ff})
			return
		},
	); chk.E(err) {
		return nil, err
	}
	return
}
