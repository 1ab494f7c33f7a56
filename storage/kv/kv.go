// Package kv contains a generic interface for ordered key-value databases
// with support for batch writes. The tree keeps its entry set in a DB and
// relies on iteration following ascending byte order of the keys.
package kv

import "errors"

// DB is an abstract ordered key-value store. All operations are assumed to be
// synchronous and atomic. Write(...) performs a series of Put-s and Delete-s
// atomically.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
	Write(Batch) error
	NewIterator(*Range) Iterator
	Close() error

	ErrNotFound() error
}

// A Batch contains a sequence of Put-s and Delete-s waiting to be Write-n
// to a DB.
type Batch interface {
	Reset()
	Put(key, value []byte)
	Delete(key []byte)
}

// Iterator is an abstract pointer to a DB entry. It must be valid to call
// Error() after release. The boolean return values indicate whether the
// requested entry exists. Entries are visited in ascending key order.
type Iterator interface {
	Key() []byte
	Value() []byte
	First() bool
	Next() bool
	Last() bool
	Release()
	Error() error
}

// Range is a key range.
type Range struct {
	// Start of the key range, included in the range.
	Start []byte

	// Limit of the key range, not included in the range. nil indicates no limit.
	Limit []byte
}

// BytesPrefix returns the key range of all keys prefixed by prefix.
func BytesPrefix(prefix []byte) *Range {
	var limit []byte
	for i := len(prefix) - 1; i >= 0; i-- {
		if c := prefix[i]; c < 0xff {
			limit = make([]byte, i+1)
			copy(limit, prefix)
			limit[i] = c + 1
			break
		}
	}
	return &Range{Start: prefix, Limit: limit}
}

var (
	// ErrUnknownBackend indicates a configured storage backend name
	// that has no implementation.
	ErrUnknownBackend = errors.New("[kv] Unknown storage backend")
)
