package hasher

import (
	"fmt"

	"github.com/emf99/zkSMT/crypto"
)

// TreeHasher provides the hash functions of the tree implementation.
// Every output is a field element.
type TreeHasher interface {
	// ID returns the name of the hash construction.
	ID() string

	// HashLeaf maps a string to a field element as:
	// H(utf8(s)) mod r
	HashLeaf(s string) crypto.Element

	// HashPair combines two field elements as:
	// H(LE(left) || LE(right)) mod r
	HashPair(left, right crypto.Element) crypto.Element
}

var hashers = make(map[string]func() TreeHasher)

// RegisterHasher registers a hasher for use.
func RegisterHasher(h string, f func() TreeHasher) {
	if _, ok := hashers[h]; ok {
		panic(fmt.Sprintf("RegisterHasher(%v) is already registered", h))
	}
	hashers[h] = f
}

// Hasher returns a TreeHasher.
func Hasher(h string) (TreeHasher, error) {
	if f, ok := hashers[h]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("Hasher(%v) is unknown hasher", h)
}
