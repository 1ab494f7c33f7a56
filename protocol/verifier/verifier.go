// Package verifier checks proof envelopes and byte proofs against a tree.
//
// None of the envelope checks is cryptographic: they compare the fields
// of the envelope with the tree and with the request. Two behaviors are
// kept on purpose. The username-keyed check computes the additive leaf
// and sibling fold but never compares it with the tree root, so an
// envelope built against a stale root is accepted. The signal-based check
// performs no pairing check. The byte-proof check is the only one that
// compares a folded hash with a root.
package verifier

import (
	"encoding/hex"
	"strconv"

	"github.com/emf99/zkSMT/application/metrics"
	"github.com/emf99/zkSMT/crypto"
	"github.com/emf99/zkSMT/crypto/hasher"
	"github.com/emf99/zkSMT/merkletree"
	"github.com/emf99/zkSMT/protocol"
)

// Names of the verification routines, used as metric labels.
const (
	RoutineMembership = "membership"
	RoutineUser       = "user"
	RoutineKeyed      = "keyed"
	RoutineSignal     = "signal"
	RoutineQuery      = "query"
)

// Tree is the read-only view of the tree the verifier checks against.
type Tree interface {
	Root() crypto.Element
	Get(key string) (string, bool)
	Hasher() hasher.TreeHasher
}

var _ Tree = (*merkletree.SparseMerkleTree)(nil)

// A Verifier checks requests against a Tree. The caller serializes
// accesses to the tree.
type Verifier struct {
	tree Tree
	log  protocol.Logger
}

// New returns a Verifier reading tree. A nil log discards messages.
func New(tree Tree, log protocol.Logger) *Verifier {
	if log == nil {
		log = protocol.NopLogger{}
	}
	return &Verifier{tree: tree, log: log}
}

func (v *Verifier) result(routine string, valid bool) bool {
	metrics.AddVerification(routine, valid)
	return valid
}

// VerifyMembership decodes the envelope of req once and dispatches it
// to the username-keyed or the keyed-numeric check. Any other shape,
// and any decode failure, is rejected.
func (v *Verifier) VerifyMembership(req *protocol.VerifyMembershipRequest) bool {
	env, err := protocol.DecodeEnvelope(req.ZKProof)
	if err != nil {
		v.log.Debug("cannot decode envelope", "error", err)
		return v.result(RoutineMembership, false)
	}
	switch env.Format {
	case protocol.FormatUserKeyed:
		return v.result(RoutineUser, v.verifyUser(req, env.User))
	case protocol.FormatKeyedNumeric:
		return v.result(RoutineKeyed, v.verifyKeyed(req, env.Keyed))
	}
	v.log.Debug("unexpected envelope format", "format", env.Format.String())
	return v.result(RoutineMembership, false)
}

func (v *Verifier) verifyUser(req *protocol.VerifyMembershipRequest, p *protocol.UserProof) bool {
	if p.Username != req.Key {
		v.log.Debug("username mismatch", "proof", p.Username, "request", req.Key)
		return false
	}
	stored, ok := v.tree.Get(p.Username)
	if !ok {
		v.log.Debug("user does not exist", "username", p.Username)
		return false
	}
	id, err := protocol.ParseU64(stored)
	if err != nil {
		v.log.Debug("invalid stored value", "username", p.Username, "value", stored)
		return false
	}
	if p.SecretValue != id {
		v.log.Debug("secret value mismatch", "proof", p.SecretValue, "stored", id)
		return false
	}

	root := v.tree.Root()
	// the root cross-check is disabled; the fold is only logged
	v.log.Debug("user proof accepted",
		"username", p.Username,
		"proofRoot", p.SMTRoot,
		"currentRoot", crypto.ElementDecimal(&root),
		"computedRoot", additiveFold(p.PublicKey, p.SecretValue, p.Siblings))
	return true
}

func (v *Verifier) verifyKeyed(req *protocol.VerifyMembershipRequest, p *protocol.KeyedProof) bool {
	root := v.tree.Root()
	if current := crypto.ElementDecimal(&root); p.SMTRoot != current {
		v.log.Debug("root mismatch", "proof", p.SMTRoot, "current", current)
		return false
	}
	if requested := protocol.ParseU64OrZero(req.Key); p.Key != requested {
		v.log.Debug("key mismatch", "proof", p.Key, "request", requested)
		return false
	}
	if _, ok := v.tree.Get(strconv.FormatUint(p.Key, 10)); !ok {
		v.log.Debug("key does not exist", "key", p.Key)
		return false
	}
	v.log.Debug("keyed proof accepted",
		"key", p.Key,
		"computedRoot", additiveFold(p.Key, p.Value, p.Siblings))
	return true
}

// additiveFold returns a*a + b*b + s[0] + s[1] + s[2], wrapping at 64 bits.
func additiveFold(a, b uint64, siblings [3]uint64) uint64 {
	acc := a*a + b*b
	for _, s := range siblings {
		acc += s
	}
	return acc
}

// VerifySignalProof checks a signal-based envelope: exactly two public
// signals equal to publicKey and expectedRoot, and pi_a elements that
// are unsigned integers. The pi components have their fixed lengths
// once decoded.
func (v *Verifier) VerifySignalProof(req *protocol.VerifySignalProofRequest) bool {
	env, err := protocol.DecodeEnvelopeAs(req.ZKProofHex, protocol.FormatSignal)
	if err != nil {
		v.log.Debug("cannot decode signal envelope", "error", err)
		return v.result(RoutineSignal, false)
	}
	p := env.Signal
	if len(p.PublicSignals) != 2 {
		v.log.Debug("invalid number of public signals", "got", len(p.PublicSignals))
		return v.result(RoutineSignal, false)
	}
	if p.PublicSignals[0] != req.PublicKey {
		v.log.Debug("public key mismatch", "proof", p.PublicSignals[0], "request", req.PublicKey)
		return v.result(RoutineSignal, false)
	}
	if p.PublicSignals[1] != req.ExpectedRoot {
		v.log.Debug("expected root mismatch", "proof", p.PublicSignals[1], "request", req.ExpectedRoot)
		return v.result(RoutineSignal, false)
	}
	for _, e := range p.Proof.PiA {
		if _, err := protocol.ParseU64(e); err != nil {
			v.log.Debug("invalid pi_a element", "element", e)
			return v.result(RoutineSignal, false)
		}
	}
	v.log.Debug("signal proof accepted", "publicKey", req.PublicKey, "root", req.ExpectedRoot)
	return v.result(RoutineSignal, true)
}

// VerifyQueryResult folds the byte proof of req over the hashed
// (name, id) pair and compares the result with the root of req.
// Undecodable hex counts as empty bytes.
func (v *Verifier) VerifyQueryResult(req *protocol.VerifyQueryRequest) bool {
	rootBytes := decodeHexOrEmpty(req.Root)
	proof := decodeHexOrEmpty(req.ZKProof)

	got, err := merkletree.FoldProof(v.tree.Hasher(), req.Name, strconv.FormatUint(req.ID, 10), proof)
	if err != nil {
		v.log.Debug("invalid byte proof", "error", err, "length", len(proof))
		return v.result(RoutineQuery, false)
	}
	want := crypto.ElementFromLE(rootBytes)
	return v.result(RoutineQuery, got.Equal(&want))
}

func decodeHexOrEmpty(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
