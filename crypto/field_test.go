package crypto

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

func TestDigestMatchesSHA256(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := hex.EncodeToString(Digest([]byte("a"), []byte("bc"))); got != want {
		t.Fatalf("Digest(abc) = %s, want %s", got, want)
	}
}

func TestElementLERoundTrip(t *testing.T) {
	b := make([]byte, ElementSizeByte)
	b[0] = 0x01
	b[1] = 0x02
	b[31] = 0x03
	e := ElementFromLE(b)
	if got := ElementToLE(&e); !bytes.Equal(got, b) {
		t.Fatalf("round trip mismatch: got %x, want %x", got, b)
	}
}

func TestElementFromLEReducesModulo(t *testing.T) {
	// r itself, little-endian, must reduce to zero.
	be := fr.Modulus().Bytes()
	le := make([]byte, len(be))
	for i := range be {
		le[len(be)-1-i] = be[i]
	}
	e := ElementFromLE(le)
	if !e.IsZero() {
		t.Fatalf("expected r mod r == 0, got %s", ElementDecimal(&e))
	}

	// r + 5 reduces to 5.
	rp5 := new(big.Int).Add(fr.Modulus(), big.NewInt(5)).Bytes()
	le = make([]byte, len(rp5))
	for i := range rp5 {
		le[len(rp5)-1-i] = rp5[i]
	}
	e = ElementFromLE(le)
	if ElementDecimal(&e) != "5" {
		t.Fatalf("expected 5, got %s", ElementDecimal(&e))
	}
}

func TestElementFromLEShortAndEmpty(t *testing.T) {
	e := ElementFromLE(nil)
	if !e.IsZero() {
		t.Error("empty input must decode to zero")
	}
	e = ElementFromLE([]byte{0x01, 0x01})
	if ElementDecimal(&e) != "257" {
		t.Errorf("expected 257, got %s", ElementDecimal(&e))
	}
}

func TestElementDecimalNearModulus(t *testing.T) {
	var e Element
	e.SetBigInt(new(big.Int).Sub(fr.Modulus(), big.NewInt(1)))
	want := new(big.Int).Sub(fr.Modulus(), big.NewInt(1)).String()
	if got := ElementDecimal(&e); got != want {
		t.Fatalf("ElementDecimal = %s, want %s", got, want)
	}
}
