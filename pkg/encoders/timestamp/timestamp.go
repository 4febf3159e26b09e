// Package timestamp defines the seconds-since-epoch time type used in events
// and filters.
package timestamp

import "time"

// T is a unix timestamp in seconds.
type T int64

// Now returns the current time as a T.
func Now() T { return T(time.Now().Unix()) }

// FromUnix converts a unix seconds value.
func FromUnix(u int64) T { return T(u) }

// I64 returns the timestamp as int64.
func (t T) I64() int64 { return int64(t) }

// Time converts to a time.Time.
func (t T) Time() time.Time { return time.Unix(int64(t), 0) }
