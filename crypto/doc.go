// Package crypto contains the field and digest primitives the tree is
// built on:
// - hash arbitrary data (`Digest`) using SHA-256
// - map digests into the BLS12-381 scalar field (`ElementFromLE`)
// - encode field elements as little-endian bytes or decimal text.
//
// The tree hashes themselves live in the hasher subpackages.
package crypto
