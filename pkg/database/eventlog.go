package database

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	"quill.dev/pkg/encoders/event"
	"quill.dev/pkg/interfaces/store"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/errorf"
)

// eventPrefix namespaces event log keys. The key is the prefix followed by
// the big endian insertion index, so key order is insertion order.
var eventPrefix = []byte("events/")

func eventKey(index uint64) []byte {
	k := make([]byte, len(eventPrefix)+8)
	copy(k, eventPrefix)
	binary.BigEndian.PutUint64(k[len(eventPrefix):], index)
	return k
}

// EventLog is the append-only persistent event sequence. Indexes are
// monotonic from 0 and never reused; entries are never mutated or deleted.
type EventLog struct {
	mx   sync.Mutex
	db   store.KVStore
	next uint64
}

// NewEventLog opens the log over db, positioning the next index after the
// highest existing entry.
func NewEventLog(db store.KVStore) (l *EventLog, err error) {
	l = &EventLog{db: db}
	if err = db.Iter(
		eventPrefix, func(key, val []byte) error {
			if len(key) != len(eventPrefix)+8 {
				return errorf.E("eventlog: malformed key %x", key)
			}
			l.next = binary.BigEndian.Uint64(key[len(eventPrefix):]) + 1
			return nil
		},
	); chk.E(err) {
		return nil, err
	}
	return
}

// Append durably stores ev and returns its insertion index. When Append
// returns nil the entry survives process restart.
func (l *EventLog) Append(ev *event.E) (index uint64, err error) {
	l.mx.Lock()
	defer l.mx.Unlock()
	var b []byte
	if b, err = json.Marshal(ev); chk.E(err) {
		return
	}
	index = l.next
	if err = l.db.Put(eventKey(index), b); chk.E(err) {
		return
	}
	l.next++
	return
}

// ScanAll returns every logged event in insertion order. Used once at
// startup to rebuild the in-memory event vector.
func (l *EventLog) ScanAll() (evs []*event.E, err error) {
	l.mx.Lock()
	defer l.mx.Unlock()
	if err = l.db.Iter(
		eventPrefix, func(key, val []byte) (err error) {
			ev := &event.E{}
			if err = json.Unmarshal(val, ev); chk.E(err) {
				return
			}
			evs = append(evs, ev)
			return
		},
	); chk.E(err) {
		return nil, err
	}
	return
}

// Len returns the number of logged events.
func (l *EventLog) Len() uint64 {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.next
}
