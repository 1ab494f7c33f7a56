package merkletree

import (
	"errors"
	"sort"

	"github.com/emf99/zkSMT/crypto"
	"github.com/emf99/zkSMT/crypto/hasher"
	"github.com/emf99/zkSMT/storage/kv"
)

var (
	// ErrInvalidTree indicates that the persisted root does not match
	// the persisted entry set.
	ErrInvalidTree = errors.New("[merkletree] Invalid tree")
	// ErrBadRootLength indicates a persisted root of the wrong width.
	ErrBadRootLength = errors.New("[merkletree] Bad root length")
)

const (
	// Depth is the height of the default-hash ladder.
	Depth = 256

	// EntryIdentifier is the key prefix of persisted entries.
	EntryIdentifier = 'E'

	// RootIdentifier is the key of the persisted root.
	RootIdentifier = 'R'
)

// Entry is a key-value pair stored in the tree.
type Entry struct {
	Key   string
	Value string
}

// SparseMerkleTree is the authenticated key-value tree.
type SparseMerkleTree struct {
	db     kv.DB
	hasher hasher.TreeHasher

	keys   []string // sorted
	values map[string]string

	root          crypto.Element
	defaultHashes [Depth + 1]crypto.Element
}

// New returns a tree backed by db. An empty db yields a fresh tree whose
// root is DefaultHash(Depth); otherwise the entries are loaded and the
// root is recomputed and checked against the persisted one.
func New(db kv.DB, h hasher.TreeHasher) (*SparseMerkleTree, error) {
	m := &SparseMerkleTree{
		db:     db,
		hasher: h,
		values: make(map[string]string),
	}
	for i := 0; i < Depth; i++ {
		m.defaultHashes[i+1] = h.HashPair(m.defaultHashes[i], m.defaultHashes[i])
	}
	m.root = m.defaultHashes[Depth]

	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SparseMerkleTree) load() error {
	iter := m.db.NewIterator(kv.BytesPrefix([]byte{EntryIdentifier}))
	for iter.Next() {
		k := string(iter.Key()[1:])
		m.keys = append(m.keys, k)
		m.values[k] = string(iter.Value())
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}

	stored, err := m.db.Get([]byte{RootIdentifier})
	switch {
	case err == m.db.ErrNotFound():
		if len(m.keys) > 0 {
			m.root = m.computeRoot()
		}
		return nil
	case err != nil:
		return err
	case len(stored) != crypto.ElementSizeByte:
		return ErrBadRootLength
	}

	m.root = m.computeRoot()
	if want := crypto.ElementFromLE(stored); !m.root.Equal(&want) {
		return ErrInvalidTree
	}
	return nil
}

// computeRoot folds the entries in ascending key order.
func (m *SparseMerkleTree) computeRoot() crypto.Element {
	acc := crypto.Zero()
	for _, k := range m.keys {
		leaf := m.leafHash(k, m.values[k])
		acc = m.hasher.HashPair(acc, leaf)
	}
	return acc
}

func (m *SparseMerkleTree) leafHash(key, value string) crypto.Element {
	return m.hasher.HashPair(m.hasher.HashLeaf(key), m.hasher.HashLeaf(value))
}

// Insert upserts the pair and recomputes the root.
func (m *SparseMerkleTree) Insert(key, value string) error {
	i := sort.SearchStrings(m.keys, key)
	old, exists := m.values[key]

	wb := m.db.NewBatch()
	wb.Put(entryKey(key), []byte(value))

	m.values[key] = value
	if !exists {
		m.keys = append(m.keys, "")
		copy(m.keys[i+1:], m.keys[i:])
		m.keys[i] = key
	}
	return m.commit(wb, func() {
		if exists {
			m.values[key] = old
			return
		}
		m.keys = append(m.keys[:i], m.keys[i+1:]...)
		delete(m.values, key)
	})
}

// Delete removes key if present and recomputes the root.
// Deleting an absent key is not an error.
func (m *SparseMerkleTree) Delete(key string) error {
	wb := m.db.NewBatch()
	old, exists := m.values[key]
	i := sort.SearchStrings(m.keys, key)
	if exists {
		wb.Delete(entryKey(key))
		m.keys = append(m.keys[:i], m.keys[i+1:]...)
		delete(m.values, key)
	}
	return m.commit(wb, func() {
		if exists {
			m.keys = append(m.keys, "")
			copy(m.keys[i+1:], m.keys[i:])
			m.keys[i] = key
			m.values[key] = old
		}
	})
}

// commit recomputes the root and writes it along with the pending
// entry changes. If the write fails, undo restores the entry set and
// the previous root is kept.
func (m *SparseMerkleTree) commit(wb kv.Batch, undo func()) error {
	root := m.computeRoot()
	wb.Put([]byte{RootIdentifier}, crypto.ElementToLE(&root))
	if err := m.db.Write(wb); err != nil {
		undo()
		return err
	}
	m.root = root
	return nil
}

// Root returns the current root.
func (m *SparseMerkleTree) Root() crypto.Element {
	return m.root
}

// Get returns the value stored under key.
func (m *SparseMerkleTree) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Contains reports whether key is stored in the tree.
func (m *SparseMerkleTree) Contains(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Entries returns all entries sorted by key.
func (m *SparseMerkleTree) Entries() []Entry {
	entries := make([]Entry, len(m.keys))
	for i, k := range m.keys {
		entries[i] = Entry{Key: k, Value: m.values[k]}
	}
	return entries
}

// Len returns the number of entries.
func (m *SparseMerkleTree) Len() int {
	return len(m.keys)
}

// DefaultHash returns the i-th element of the default-hash ladder.
func (m *SparseMerkleTree) DefaultHash(i int) crypto.Element {
	return m.defaultHashes[i]
}

// Hasher returns the hasher the tree was built with.
func (m *SparseMerkleTree) Hasher() hasher.TreeHasher {
	return m.hasher
}

func entryKey(key string) []byte {
	return append([]byte{EntryIdentifier}, key...)
}
