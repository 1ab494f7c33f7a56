package crypto

import (
	"crypto/sha256"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

const (
	// ElementSizeByte is the width in bytes of the little-endian
	// encoding of a field element.
	ElementSizeByte = fr.Bytes
	// HashSizeByte is the size of the digest output in bytes.
	HashSizeByte = sha256.Size
	// HashID identifies the used digest as a string.
	HashID = "SHA-256"
)

// Element is a scalar of the BLS12-381 scalar field. It is the common
// output domain of every tree hash.
type Element = fr.Element

// Zero returns the field-zero element.
func Zero() Element {
	return Element{}
}

// Digest hashes all passed byte slices.
// The passed slices won't be mutated.
func Digest(ms ...[]byte) []byte {
	h := sha256.New()
	for _, m := range ms {
		h.Write(m)
	}
	return h.Sum(nil)
}

// ElementFromLE interprets b as a little-endian unsigned integer of any
// length and reduces it modulo the field order.
func ElementFromLE(b []byte) Element {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	var e Element
	e.SetBigInt(new(big.Int).SetBytes(be))
	return e
}

// ElementToLE returns the canonical ElementSizeByte-long little-endian
// encoding of e.
func ElementToLE(e *Element) []byte {
	be := e.Bytes()
	le := make([]byte, ElementSizeByte)
	for i := range be {
		le[ElementSizeByte-1-i] = be[i]
	}
	return le
}

// ElementDecimal returns the canonical base-10 representation of e.
// fr.Element.String is not used since it prints values close to the
// modulus as negative numbers.
func ElementDecimal(e *Element) string {
	return e.BigInt(new(big.Int)).String()
}
