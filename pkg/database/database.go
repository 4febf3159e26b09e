// Package database implements the persistence layer over badger: the
// append-only event log, the client key store and the client subscription
// store, all through one ordered key-value namespace.
package database

import (
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"quill.dev/pkg/interfaces/store"
	"quill.dev/pkg/utils/apputil"
	"quill.dev/pkg/utils/chk"
	"quill.dev/pkg/utils/context"
	"quill.dev/pkg/utils/units"
)

// D is an open badger database implementing store.KVStore.
type D struct {
	ctx     context.T
	cancel  context.F
	dataDir string
	Logger  *logger
	*badger.DB
}

var _ store.KVStore = &D{}

// New opens (creating if necessary) the database under dataDir. Writes are
// synchronous so a returned append survives a crash. Closing is the
// caller's job: cancelling ctx does not touch the database, so whoever
// drives the shutdown sequence calls Close exactly once.
func New(ctx context.T, cancel context.F, dataDir, logLevel string) (
	d *D, err error,
) {
	d = &D{
		ctx:     ctx,
		cancel:  cancel,
		dataDir: dataDir,
		Logger:  newLogger(logLevel),
	}
	if err = os.MkdirAll(dataDir, 0755); chk.E(err) {
		return
	}
	if err = apputil.EnsureDir(filepath.Join(dataDir, "dummy.sst")); chk.E(err) {
		return
	}
	opts := badger.DefaultOptions(d.dataDir)
	opts.BlockCacheSize = int64(256 * units.Mb)
	opts.CompactL0OnClose = true
	opts.SyncWrites = true
	opts.Logger = d.Logger
	if d.DB, err = badger.Open(opts); chk.E(err) {
		return
	}
	return
}

// Path returns where the database files are stored.
func (d *D) Path() string { return d.dataDir }

// SetLogLevel changes the verbosity of the badger logger.
func (d *D) SetLogLevel(level string) { d.Logger.setLevel(level) }

// Put stores val under key.
func (d *D) Put(key, val []byte) (err error) {
	return d.DB.Update(
		func(txn *badger.Txn) error {
			return txn.Set(key, val)
		},
	)
}

// Delete removes key. Deleting an absent key is not an error.
func (d *D) Delete(key []byte) (err error) {
	return d.DB.Update(
		func(txn *badger.Txn) error {
			return txn.Delete(key)
		},
	)
}

// Iter visits every key with the given prefix in ascending key order.
func (d *D) Iter(prefix []byte, fn func(key, val []byte) error) (err error) {
	return d.DB.View(
		func(txn *badger.Txn) (err error) {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				item := it.Item()
				if err = item.Value(
					func(val []byte) error {
						return fn(item.KeyCopy(nil), val)
					},
				); err != nil {
					return
				}
			}
			return
		},
	)
}

// get is a point lookup; absent keys return nil.
func (d *D) get(key []byte) (val []byte, err error) {
	err = d.Iter(
		key, func(k, v []byte) error {
			val = append([]byte{}, v...)
			return nil
		},
	)
	return
}

// Sync flushes buffers to disk.
func (d *D) Sync() (err error) {
	return d.DB.Sync()
}

// Close releases resources and closes the database.
func (d *D) Close() (err error) {
	if d.DB != nil {
		if err = d.DB.Close(); chk.E(err) {
			return
		}
	}
	return
}
