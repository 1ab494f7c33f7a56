// Package client derives circuit inputs and proof envelopes on the
// client side, from what the server discloses: the root, the witness of
// a username and the entry list.
//
// The placeholders of the built envelopes follow the same slot suffixes
// as the server's, over the derived circuit inputs reduced modulo 1000.
package client

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/emf99/zkSMT/protocol"
)

// Defaults used when no nonce is given. DefaultNonce also replaces an
// explicit zero nonce in the envelope, while the salt keeps it.
const (
	DefaultSalt  = 789
	DefaultNonce = 12345
)

var (
	// ErrBadRoot indicates a root that is not a hex string.
	ErrBadRoot = errors.New("[client] Bad root")
	// ErrBadWitness indicates a witness hash that is not a hex string.
	ErrBadWitness = errors.New("[client] Bad witness hash")
)

var nonMemberSiblings = [3]string{"100", "200", "300"}

// TreeView is what the server disclosed about the tree.
type TreeView struct {
	// Root is the hex of the little-endian root bytes.
	Root string
	// Path is the witness of the username.
	Path []protocol.MerkleProofEntry
	// Entries is the sorted entry list.
	Entries [][2]string
}

// CircuitInputs are the inputs of the membership circuit, as decimal
// strings.
type CircuitInputs struct {
	PublicKey    string `json:"publicKey"`
	ExpectedRoot string `json:"expectedRoot"`
	SecretValue  string `json:"secretValue"`
	Salt         string `json:"salt"`
	Sibling1     string `json:"sibling1"`
	Sibling2     string `json:"sibling2"`
	Sibling3     string `json:"sibling3"`
}

// A Proof is the result of BuildUserProof.
type Proof struct {
	Member bool
	Inputs CircuitInputs
	User   *protocol.UserProof
	Signal *protocol.SignalProof
}

// UserHex returns the wire form of the username-keyed envelope.
func (p *Proof) UserHex() (string, error) {
	return protocol.EncodeHex(p.User)
}

// SignalHex returns the wire form of the signal-based envelope.
func (p *Proof) SignalHex() (string, error) {
	return protocol.EncodeHex(p.Signal)
}

// BuildUserProof derives the circuit inputs of username from view and
// builds both a username-keyed and a signal-based envelope. A nil nonce
// selects DefaultSalt and DefaultNonce. A given nonce is the salt, and
// the envelope nonce unless it is zero.
//
// The public key is the 32-bit username hash. The expected root is the
// root hex read as a big-endian integer, which is what clients pass as
// the public signal. A username found in the entries with a non-empty
// witness is a member: its siblings are the witness hashes reduced
// modulo 2^32, padded with zeros to three. Otherwise the secret value
// is zero and the siblings are 100, 200 and 300.
func BuildUserProof(username string, nonce *uint64, view *TreeView) (*Proof, error) {
	expectedRoot, ok := new(big.Int).SetString(view.Root, 16)
	if !ok {
		return nil, ErrBadRoot
	}
	pk := protocol.UsernameHash32(username)

	var stored uint64
	found := false
	for _, e := range view.Entries {
		if e[0] == username {
			stored = protocol.ParseU64OrZero(e[1])
			found = true
			break
		}
	}
	member := found && len(view.Path) > 0

	salt, envNonce := uint64(DefaultSalt), uint64(DefaultNonce)
	if nonce != nil {
		salt = *nonce
		if *nonce != 0 {
			envNonce = *nonce
		}
	}

	in := CircuitInputs{
		PublicKey:    strconv.FormatUint(uint64(pk), 10),
		ExpectedRoot: expectedRoot.String(),
		SecretValue:  "0",
		Salt:         strconv.FormatUint(salt, 10),
	}
	siblings := nonMemberSiblings
	if member {
		in.SecretValue = strconv.FormatUint(stored, 10)
		var err error
		if siblings, err = witnessSiblings(view.Path); err != nil {
			return nil, err
		}
	}
	in.Sibling1, in.Sibling2, in.Sibling3 = siblings[0], siblings[1], siblings[2]

	var sibs [3]uint64
	for i, s := range siblings {
		sibs[i] = protocol.ParseU64OrZero(s)
	}
	secret := protocol.ParseU64OrZero(in.SecretValue)
	pi := placeholders(uint64(pk), secret, salt, sibs)

	return &Proof{
		Member: member,
		Inputs: in,
		User: &protocol.UserProof{
			Groth16Proof: pi,
			SMTRoot:      view.Root,
			Username:     username,
			PublicKey:    uint64(pk),
			SecretValue:  stored,
			Nonce:        envNonce,
			Siblings:     sibs,
		},
		Signal: &protocol.SignalProof{
			Proof:         pi,
			PublicSignals: []string{in.PublicKey, in.ExpectedRoot},
		},
	}, nil
}

// witnessSiblings reduces the first three witness hashes, read as
// big-endian integers, modulo 2^32 and pads the result with zeros.
func witnessSiblings(path []protocol.MerkleProofEntry) ([3]string, error) {
	siblings := [3]string{"0", "0", "0"}
	mod := new(big.Int).Lsh(big.NewInt(1), 32)
	for i, e := range path {
		if i == len(siblings) {
			break
		}
		h, ok := new(big.Int).SetString(e.Hash, 16)
		if !ok {
			return siblings, ErrBadWitness
		}
		siblings[i] = h.Mod(h, mod).String()
	}
	return siblings, nil
}

func placeholders(pk, secret, salt uint64, siblings [3]uint64) protocol.Groth16Proof {
	return protocol.Groth16Proof{
		PiA: [2]string{
			protocol.PlaceholderU64(pk%1000, 1),
			protocol.PlaceholderU64(secret%1000, 2),
		},
		PiB: [2][2]string{
			{protocol.PlaceholderU64(salt%1000, 3), protocol.PlaceholderU64(siblings[0]%1000, 4)},
			{protocol.PlaceholderU64(siblings[1]%1000, 5), protocol.PlaceholderU64(siblings[2]%1000, 6)},
		},
		PiC: [2]string{
			protocol.PlaceholderU64((pk+secret)%1000, 7),
			protocol.PlaceholderU64((pk*secret)%1000, 8),
		},
	}
}
