package protocol

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	errUnknownFormat = errors.New("unknown envelope format")
	errInvalidUTF8   = errors.New("invalid UTF-8")
	errMissingField  = errors.New("missing field")
	errNull          = errors.New("unexpected null")
)

// Required fields of each shape.
var (
	UserFields   = []string{"pi_a", "pi_b", "pi_c", "smt_root", "username", "public_key", "secret_value", "nonce", "siblings"}
	KeyedFields  = []string{"pi_a", "pi_b", "pi_c", "smt_root", "key", "value", "siblings"}
	SignalFields = []string{"proof", "public_signals"}
)

var decodeOrder = []struct {
	format Format
	fields []string
}{
	{FormatUserKeyed, UserFields},
	{FormatKeyedNumeric, KeyedFields},
	{FormatSignal, SignalFields},
}

// A DecodeError reports the stage at which an envelope failed to decode.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("[zksmt] Malformed envelope (%s): %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeEnvelope decodes the wire form of an envelope. The shapes are
// tried in order username-keyed, keyed-numeric, signal-based, each only
// when its fields are all present, and the first strict decode that
// succeeds wins: all fields present, arrays of their fixed length,
// numbers unsigned 64-bit integers. Fields outside the chosen shape are
// ignored. Every failure is a *DecodeError.
func DecodeEnvelope(hexText string) (*Envelope, error) {
	fs, err := decodeFieldSet(hexText)
	if err != nil {
		return nil, err
	}
	err = &DecodeError{Stage: "format", Err: errUnknownFormat}
	for _, f := range decodeOrder {
		if !fs.has(f.fields) {
			continue
		}
		var env *Envelope
		if env, err = fs.envelope(f.format); err == nil {
			return env, nil
		}
	}
	return nil, err
}

// DecodeEnvelopeAs decodes the wire form of an envelope expected to
// have the given shape. Fields of other shapes are ignored.
func DecodeEnvelopeAs(hexText string, want Format) (*Envelope, error) {
	fs, err := decodeFieldSet(hexText)
	if err != nil {
		return nil, err
	}
	return fs.envelope(want)
}

func decodeFieldSet(hexText string) (fieldSet, error) {
	raw, err := hex.DecodeString(hexText)
	if err != nil {
		return nil, &DecodeError{Stage: "hex", Err: err}
	}
	if !utf8.Valid(raw) {
		return nil, &DecodeError{Stage: "utf8", Err: errInvalidUTF8}
	}
	var fs fieldSet
	if err := json.Unmarshal(raw, &fs); err != nil {
		return nil, &DecodeError{Stage: "json", Err: err}
	}
	if fs == nil {
		return nil, &DecodeError{Stage: "json", Err: errNull}
	}
	return fs, nil
}

func (fs fieldSet) envelope(format Format) (*Envelope, error) {
	var err error
	env := &Envelope{Format: format}
	switch format {
	case FormatUserKeyed:
		env.User, err = fs.userProof()
	case FormatKeyedNumeric:
		env.Keyed, err = fs.keyedProof()
	case FormatSignal:
		env.Signal, err = fs.signalProof()
	default:
		err = errUnknownFormat
	}
	if err != nil {
		return nil, &DecodeError{Stage: format.String(), Err: err}
	}
	return env, nil
}

// fieldSet is a decoded JSON object whose values are not decoded yet.
type fieldSet map[string]json.RawMessage

func (fs fieldSet) has(names []string) bool {
	for _, n := range names {
		if _, ok := fs[n]; !ok {
			return false
		}
	}
	return true
}

func (fs fieldSet) get(name string) (json.RawMessage, error) {
	raw, ok := fs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", errMissingField, name)
	}
	return raw, nil
}

func (fs fieldSet) str(name string) (string, error) {
	raw, err := fs.get(name)
	if err != nil {
		return "", err
	}
	return decodeString(raw)
}

func (fs fieldSet) u64(name string) (uint64, error) {
	raw, err := fs.get(name)
	if err != nil {
		return 0, err
	}
	return decodeU64(raw)
}

func (fs fieldSet) siblings() ([3]uint64, error) {
	var s [3]uint64
	raw, err := fs.get("siblings")
	if err != nil {
		return s, err
	}
	elems, err := decodeArray(raw, len(s))
	if err != nil {
		return s, err
	}
	for i := range s {
		if s[i], err = decodeU64(elems[i]); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (fs fieldSet) groth16() (Groth16Proof, error) {
	var p Groth16Proof
	var err error
	if p.PiA, err = fs.pair("pi_a"); err != nil {
		return p, err
	}
	if p.PiC, err = fs.pair("pi_c"); err != nil {
		return p, err
	}
	raw, err := fs.get("pi_b")
	if err != nil {
		return p, err
	}
	rows, err := decodeArray(raw, 2)
	if err != nil {
		return p, err
	}
	for i := range p.PiB {
		if p.PiB[i], err = decodePair(rows[i]); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (fs fieldSet) pair(name string) ([2]string, error) {
	raw, err := fs.get(name)
	if err != nil {
		return [2]string{}, err
	}
	return decodePair(raw)
}

func (fs fieldSet) userProof() (*UserProof, error) {
	var p UserProof
	var err error
	if p.Groth16Proof, err = fs.groth16(); err != nil {
		return nil, err
	}
	if p.SMTRoot, err = fs.str("smt_root"); err != nil {
		return nil, err
	}
	if p.Username, err = fs.str("username"); err != nil {
		return nil, err
	}
	if p.PublicKey, err = fs.u64("public_key"); err != nil {
		return nil, err
	}
	if p.SecretValue, err = fs.u64("secret_value"); err != nil {
		return nil, err
	}
	if p.Nonce, err = fs.u64("nonce"); err != nil {
		return nil, err
	}
	if p.Siblings, err = fs.siblings(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (fs fieldSet) keyedProof() (*KeyedProof, error) {
	var p KeyedProof
	var err error
	if p.Groth16Proof, err = fs.groth16(); err != nil {
		return nil, err
	}
	if p.SMTRoot, err = fs.str("smt_root"); err != nil {
		return nil, err
	}
	if p.Key, err = fs.u64("key"); err != nil {
		return nil, err
	}
	if p.Value, err = fs.u64("value"); err != nil {
		return nil, err
	}
	if p.Siblings, err = fs.siblings(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (fs fieldSet) signalProof() (*SignalProof, error) {
	var p SignalProof
	raw, err := fs.get("proof")
	if err != nil {
		return nil, err
	}
	var inner fieldSet
	if err := decodeNonNull(raw, &inner); err != nil {
		return nil, err
	}
	if p.Proof, err = inner.groth16(); err != nil {
		return nil, err
	}

	raw, err = fs.get("public_signals")
	if err != nil {
		return nil, err
	}
	elems, err := decodeArray(raw, -1)
	if err != nil {
		return nil, err
	}
	p.PublicSignals = make([]string, len(elems))
	for i, e := range elems {
		if p.PublicSignals[i], err = decodeString(e); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// decodeNonNull unmarshals raw into v, rejecting a JSON null which
// json.Unmarshal would silently accept.
func decodeNonNull(raw json.RawMessage, v interface{}) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errNull
	}
	return json.Unmarshal(raw, v)
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	err := decodeNonNull(raw, &s)
	return s, err
}

func decodeU64(raw json.RawMessage) (uint64, error) {
	var n uint64
	err := decodeNonNull(raw, &n)
	return n, err
}

// decodeArray decodes a JSON array of exactly n elements, or of any
// length if n is negative.
func decodeArray(raw json.RawMessage, n int) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := decodeNonNull(raw, &elems); err != nil {
		return nil, err
	}
	if n >= 0 && len(elems) != n {
		return nil, fmt.Errorf("expected %d elements, got %d", n, len(elems))
	}
	return elems, nil
}

func decodePair(raw json.RawMessage) ([2]string, error) {
	var p [2]string
	elems, err := decodeArray(raw, 2)
	if err != nil {
		return p, err
	}
	for i := range p {
		if p[i], err = decodeString(elems[i]); err != nil {
			return p, err
		}
	}
	return p, nil
}
