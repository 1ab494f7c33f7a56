// Package smt provides the default tree hasher: SHA-256 digests reduced
// into the BLS12-381 scalar field using a little-endian interpretation.
//
// Importing this package registers the hasher under SMTHasher.
package smt

import (
	"github.com/emf99/zkSMT/crypto"
	"github.com/emf99/zkSMT/crypto/hasher"
)

func init() {
	hasher.RegisterHasher(SMTHasher, New)
}

// SMTHasher is the identity of the default hash construction.
const SMTHasher = "SHA-256/BLS12-381"

type smtHasher struct{}

// New returns an instance of the default tree hasher.
func New() hasher.TreeHasher {
	return smtHasher{}
}

func (smtHasher) ID() string {
	return SMTHasher
}

func (smtHasher) HashLeaf(s string) crypto.Element {
	return crypto.ElementFromLE(crypto.Digest([]byte(s)))
}

// HashPair digests the 32-byte little-endian encodings of left and right.
// Byte width and order must not change, every root depends on them.
func (smtHasher) HashPair(left, right crypto.Element) crypto.Element {
	return crypto.ElementFromLE(crypto.Digest(
		crypto.ElementToLE(&left),
		crypto.ElementToLE(&right),
	))
}
