package merkletree

import (
	"errors"

	"github.com/emf99/zkSMT/crypto"
	"github.com/emf99/zkSMT/crypto/hasher"
)

// ErrBadProofLength indicates a byte proof whose length is not a
// multiple of crypto.ElementSizeByte.
var ErrBadProofLength = errors.New("[merkletree] Bad proof length")

// PathElement is one witness element of a MerklePath.
type PathElement struct {
	// Value is the 32-byte little-endian encoding of
	// HashPair(HashLeaf(key), HashLeaf(value)) of another entry.
	Value []byte
	// IsLeft is always true for the paths built by this package.
	IsLeft bool
}

// MerklePath returns the witness for key: one element per other entry,
// in ascending key order. It returns nil if key is not in the tree,
// so the path of a present key always has Len()-1 elements.
func (m *SparseMerkleTree) MerklePath(key string) []PathElement {
	if !m.Contains(key) {
		return nil
	}
	path := make([]PathElement, 0, len(m.keys)-1)
	for _, k := range m.keys {
		if k == key {
			continue
		}
		leaf := m.leafHash(k, m.values[k])
		path = append(path, PathElement{
			Value:  crypto.ElementToLE(&leaf),
			IsLeft: true,
		})
	}
	return path
}

// FoldProof seeds an accumulator with HashPair(HashLeaf(name), HashLeaf(id))
// and folds each element-wide chunk of proof into it with HashPair.
// The chunks are read as little-endian field elements.
func FoldProof(h hasher.TreeHasher, name, id string, proof []byte) (crypto.Element, error) {
	if len(proof)%crypto.ElementSizeByte != 0 {
		return crypto.Zero(), ErrBadProofLength
	}
	acc := h.HashPair(h.HashLeaf(name), h.HashLeaf(id))
	for len(proof) > 0 {
		sibling := crypto.ElementFromLE(proof[:crypto.ElementSizeByte])
		acc = h.HashPair(acc, sibling)
		proof = proof[crypto.ElementSizeByte:]
	}
	return acc, nil
}
