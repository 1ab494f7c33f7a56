package merkletree

import (
	"testing"

	"github.com/emf99/zkSMT/crypto/hasher/smt"
	"github.com/emf99/zkSMT/storage/kv/leveldbkv"
)

// NewTreeForTest returns an empty tree on an in-memory backend,
// for _tests_ only.
func NewTreeForTest(t testing.TB) *SparseMerkleTree {
	db, err := leveldbkv.OpenMem()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	m, err := New(db, smt.New())
	if err != nil {
		t.Fatal(err)
	}
	return m
}
