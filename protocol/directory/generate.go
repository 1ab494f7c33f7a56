package directory

import (
	"fmt"
	"strconv"

	"github.com/emf99/zkSMT/protocol"
)

// siblingSlots is the fixed number of siblings of every envelope.
const siblingSlots = 3

// Defaults of the username-keyed siblings and of the proof data.
var defaultSiblings = [siblingSlots]uint64{100, 200, 300}

// keyedProof builds the keyed-numeric envelope of (key, value). The
// key is inserted with value if absent. All arithmetic wraps at 64 bits.
func (d *Directory) keyedProof(key, value, nonce uint64) (*protocol.KeyedProof, error) {
	keyStr := strconv.FormatUint(key, 10)
	if !d.tree.Contains(keyStr) {
		if err := d.insert(keyStr, strconv.FormatUint(value, 10)); err != nil {
			return nil, err
		}
	}
	root := d.rootDecimal()

	var siblings [siblingSlots]uint64
	i := 0
	for _, e := range d.tree.Entries() {
		if i == siblingSlots {
			break
		}
		if e.Key == keyStr {
			continue
		}
		k := protocol.ParseU64OrZero(e.Key)
		v := protocol.ParseU64OrZero(e.Value)
		siblings[i] = k*k + v*v
		i++
	}
	for ; i < siblingSlots; i++ {
		siblings[i] = nonce + uint64(i)
	}

	d.log.Debug("generating keyed proof", "key", key, "value", value, "root", root)
	return &protocol.KeyedProof{
		Groth16Proof: protocol.Groth16Proof{
			PiA: [2]string{
				protocol.PlaceholderU64(key, 1),
				protocol.PlaceholderU64(value, 2),
			},
			PiB: [2][2]string{
				{protocol.PlaceholderU64(nonce, 3), protocol.Placeholder(root, 4)},
				{protocol.PlaceholderU64(key+value, 5), protocol.PlaceholderU64(nonce+siblings[0], 6)},
			},
			PiC: [2]string{
				protocol.Placeholder(root, 7),
				protocol.PlaceholderU64(key*value, 8),
			},
		},
		SMTRoot:  root,
		Key:      key,
		Value:    value,
		Siblings: siblings,
	}, nil
}

// userProof builds the username-keyed envelope of username. It never
// changes the tree: on failure it returns nil and the error text.
func (d *Directory) userProof(username string, nonce uint64) (*protocol.UserProof, string) {
	stored, ok := d.tree.Get(username)
	if !ok {
		return nil, fmt.Sprintf("ERROR: User %s not found in SMT", username)
	}
	id, err := protocol.ParseU64(stored)
	if err != nil {
		return nil, fmt.Sprintf("ERROR: Invalid ID format for user %s: %s", username, stored)
	}
	pk := protocol.UsernameHash(username)
	root := d.rootDecimal()
	rootLen := uint64(len(root))

	siblings := defaultSiblings
	i := 0
	for _, e := range d.tree.Entries() {
		if i == siblingSlots {
			break
		}
		if e.Key == username {
			continue
		}
		siblings[i] = (protocol.UsernameHash(e.Key) + protocol.ParseU64OrZero(e.Value)) % 1000000
		i++
	}

	d.log.Debug("generating user proof", "username", username, "publicKey", pk)
	return &protocol.UserProof{
		Groth16Proof: protocol.Groth16Proof{
			PiA: [2]string{
				protocol.PlaceholderU64(pk%1000, 1),
				protocol.PlaceholderU64(id%1000, 2),
			},
			PiB: [2][2]string{
				{protocol.PlaceholderU64(nonce%1000, 3), protocol.PlaceholderU64(rootLen%1000, 4)},
				{protocol.PlaceholderU64((pk+id)%1000, 5), protocol.PlaceholderU64((nonce+siblings[0])%1000, 6)},
			},
			PiC: [2]string{
				protocol.PlaceholderU64(rootLen%1000, 7),
				protocol.PlaceholderU64((pk*id)%1000, 8),
			},
		},
		SMTRoot:     root,
		Username:    username,
		PublicKey:   pk,
		SecretValue: id,
		Nonce:       nonce,
		Siblings:    siblings,
	}, ""
}
