// Package leveldbkv implements the kv interface using leveldb.
package leveldbkv

import (
	"fmt"

	"github.com/emf99/zkSMT/storage/kv"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type leveldbkv struct {
	db   *leveldb.DB
	sync bool
}

// OpenDB opens (or creates) a leveldb database at path.
// Writes are synchronous.
func OpenDB(path string) (kv.DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB instance: %w", err)
	}
	return &leveldbkv{db: db, sync: true}, nil
}

// OpenMem opens a leveldb database backed by memory only.
// Its content is lost when the process exits.
func OpenMem() (kv.DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &leveldbkv{db: db}, nil
}

func (l *leveldbkv) writeOptions() *opt.WriteOptions {
	return &opt.WriteOptions{Sync: l.sync}
}

func (l *leveldbkv) Get(key []byte) ([]byte, error) {
	return l.db.Get(key, nil)
}

func (l *leveldbkv) Put(key, value []byte) error {
	return l.db.Put(key, value, l.writeOptions())
}

func (l *leveldbkv) Delete(key []byte) error {
	return l.db.Delete(key, l.writeOptions())
}

func (l *leveldbkv) NewBatch() kv.Batch {
	return new(leveldb.Batch)
}

func (l *leveldbkv) Write(b kv.Batch) error {
	wb, ok := b.(*leveldb.Batch)
	if !ok {
		return fmt.Errorf("leveldbkv.Write: expected *leveldb.Batch, got %T", b)
	}
	return l.db.Write(wb, l.writeOptions())
}

func (l *leveldbkv) NewIterator(rg *kv.Range) kv.Iterator {
	if rg == nil {
		return l.db.NewIterator(nil, nil)
	}
	return l.db.NewIterator(&util.Range{Start: rg.Start, Limit: rg.Limit}, nil)
}

func (l *leveldbkv) Close() error {
	return l.db.Close()
}

func (l *leveldbkv) ErrNotFound() error {
	return leveldb.ErrNotFound
}
