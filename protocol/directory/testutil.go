package directory

import (
	"testing"

	"github.com/emf99/zkSMT/merkletree"
)

// NewTestDirectory creates a Directory on an empty in-memory tree,
// for testing server-side operations.
func NewTestDirectory(t testing.TB) *Directory {
	d, err := New(merkletree.NewTreeForTest(t), 16, nil)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
