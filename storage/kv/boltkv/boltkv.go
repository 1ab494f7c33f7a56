// Package boltkv implements the kv interface using bbolt.
// All entries live in a single bucket.
package boltkv

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emf99/zkSMT/storage/kv"
	bolt "go.etcd.io/bbolt"
)

// Bucket is the bucket holding every entry.
var Bucket = []byte("zksmt")

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("[boltkv] Key not found")

type boltkv struct {
	db *bolt.DB
}

// OpenDB opens (or creates) a bolt database file at path.
func OpenDB(path string) (kv.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("could not create dir for BoltDB: %w", err)
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(Bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create root bucket: %w", err)
	}
	return &boltkv{db: db}, nil
}

func (b *boltkv) Get(key []byte) ([]byte, error) {
	var val []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(Bucket).Get(key)
		if v == nil {
			return ErrNotFound
		}
		// v is only valid for the life of the transaction
		val = append([]byte{}, v...)
		return nil
	})
	return val, err
}

func (b *boltkv) Put(key, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(Bucket).Put(key, value)
	})
}

func (b *boltkv) Delete(key []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(Bucket).Delete(key)
	})
}

type op struct {
	key, value []byte
	del        bool
}

type batch struct {
	ops []op
}

func (bt *batch) Reset() { bt.ops = bt.ops[:0] }

func (bt *batch) Put(key, value []byte) {
	bt.ops = append(bt.ops, op{key: key, value: value})
}

func (bt *batch) Delete(key []byte) {
	bt.ops = append(bt.ops, op{key: key, del: true})
}

func (b *boltkv) NewBatch() kv.Batch {
	return new(batch)
}

func (b *boltkv) Write(wb kv.Batch) error {
	bt, ok := wb.(*batch)
	if !ok {
		return fmt.Errorf("boltkv.Write: unexpected batch type %T", wb)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(Bucket)
		for _, o := range bt.ops {
			var err error
			if o.del {
				err = bk.Delete(o.key)
			} else {
				err = bk.Put(o.key, o.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// NewIterator returns an iterator over a snapshot of the range taken
// when the iterator is created.
func (b *boltkv) NewIterator(rg *kv.Range) kv.Iterator {
	it := &iterator{pos: -1}
	it.err = b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(Bucket).Cursor()
		var k, v []byte
		if rg != nil && rg.Start != nil {
			k, v = c.Seek(rg.Start)
		} else {
			k, v = c.First()
		}
		for ; k != nil; k, v = c.Next() {
			if rg != nil && rg.Limit != nil && bytes.Compare(k, rg.Limit) >= 0 {
				break
			}
			it.keys = append(it.keys, append([]byte{}, k...))
			it.values = append(it.values, append([]byte{}, v...))
		}
		return nil
	})
	return it
}

func (b *boltkv) Close() error {
	return b.db.Close()
}

func (b *boltkv) ErrNotFound() error {
	return ErrNotFound
}

type iterator struct {
	keys, values [][]byte
	pos          int
	err          error
}

func (it *iterator) valid() bool { return it.pos >= 0 && it.pos < len(it.keys) }

func (it *iterator) Key() []byte {
	if !it.valid() {
		return nil
	}
	return it.keys[it.pos]
}

func (it *iterator) Value() []byte {
	if !it.valid() {
		return nil
	}
	return it.values[it.pos]
}

func (it *iterator) First() bool {
	it.pos = 0
	return it.valid()
}

func (it *iterator) Next() bool {
	if it.pos < len(it.keys) {
		it.pos++
	}
	return it.valid()
}

func (it *iterator) Last() bool {
	it.pos = len(it.keys) - 1
	return it.valid()
}

func (it *iterator) Release() {
	it.keys, it.values = nil, nil
	it.pos = -1
}

func (it *iterator) Error() error { return it.err }
