package protocol

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// Format discriminates the three envelope shapes.
type Format int

const (
	FormatUnknown Format = iota
	// FormatKeyedNumeric envelopes prove a numeric key and disclose its value.
	FormatKeyedNumeric
	// FormatUserKeyed envelopes prove a username bound to a secret value.
	FormatUserKeyed
	// FormatSignal envelopes carry a Groth16-shaped proof and its public signals.
	FormatSignal
)

var formatNames = map[Format]string{
	FormatKeyedNumeric: "keyed",
	FormatUserKeyed:    "user",
	FormatSignal:       "signal",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "unknown"
}

// Groth16Proof holds the three proof components. They are decimal
// strings built by Placeholder, not curve points.
type Groth16Proof struct {
	PiA [2]string    `json:"pi_a"`
	PiB [2][2]string `json:"pi_b"`
	PiC [2]string    `json:"pi_c"`
}

// KeyedProof is the keyed-numeric envelope.
type KeyedProof struct {
	Groth16Proof
	SMTRoot  string    `json:"smt_root"`
	Key      uint64    `json:"key"`
	Value    uint64    `json:"value"`
	Siblings [3]uint64 `json:"siblings"`
}

// UserProof is the username-keyed envelope.
type UserProof struct {
	Groth16Proof
	SMTRoot     string    `json:"smt_root"`
	Username    string    `json:"username"`
	PublicKey   uint64    `json:"public_key"`
	SecretValue uint64    `json:"secret_value"`
	Nonce       uint64    `json:"nonce"`
	Siblings    [3]uint64 `json:"siblings"`
}

// SignalProof is the signal-based envelope. PublicSignals is expected
// to hold the public key followed by the expected root.
type SignalProof struct {
	Proof         Groth16Proof `json:"proof"`
	PublicSignals []string     `json:"public_signals"`
}

// Envelope is a decoded proof envelope. Exactly the field matching
// Format is set.
type Envelope struct {
	Format Format
	Keyed  *KeyedProof
	User   *UserProof
	Signal *SignalProof
}

// Payload returns the shape held by e, or nil.
func (e *Envelope) Payload() interface{} {
	switch e.Format {
	case FormatKeyedNumeric:
		return e.Keyed
	case FormatUserKeyed:
		return e.User
	case FormatSignal:
		return e.Signal
	}
	return nil
}

// Encode returns the wire form of e: the lowercase hex of its compact
// JSON text.
func (e *Envelope) Encode() (string, error) {
	p := e.Payload()
	if p == nil {
		return "", errUnknownFormat
	}
	return EncodeHex(p)
}

// MarshalCompact returns the compact JSON text of v. HTML characters
// are not escaped and no trailing newline is written.
func MarshalCompact(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// EncodeHex returns the lowercase hex of the compact JSON text of v.
func EncodeHex(v interface{}) (string, error) {
	b, err := MarshalCompact(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Placeholder builds a proof component from a derived value and its
// slot number (1 to 8): the slot digit followed by nine zeros is
// appended to v.
func Placeholder(v string, slot int) string {
	return v + strconv.Itoa(slot) + "000000000"
}

// PlaceholderU64 is Placeholder for a numeric value.
func PlaceholderU64(v uint64, slot int) string {
	return Placeholder(strconv.FormatUint(v, 10), slot)
}
