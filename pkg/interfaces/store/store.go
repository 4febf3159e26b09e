// Package store defines the key-value persistence interface consumed by the
// event log, key store and subscription store.
package store

// KVStore is an ordered key-value namespace. Iter visits keys with the given
// prefix in ascending key order; returning an error from fn stops the
// iteration and propagates it. Point lookups are Iter with the full key as
// prefix.
type KVStore interface {
	Put(key, val []byte) (err error)
	Delete(key []byte) (err error)
	Iter(prefix []byte, fn func(key, val []byte) error) (err error)
}
