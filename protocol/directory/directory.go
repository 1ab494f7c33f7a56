// This module implements the tree directory that the tree server
// maintains. It owns the authenticated tree and serves every operation
// of the server on it: mutations, root and witness lookups, proof
// generation, verification and diagnostics.

package directory

import (
	"encoding/hex"
	"strconv"

	"github.com/emf99/zkSMT/application/metrics"
	"github.com/emf99/zkSMT/crypto"
	"github.com/emf99/zkSMT/merkletree"
	"github.com/emf99/zkSMT/protocol"
	"github.com/emf99/zkSMT/protocol/verifier"
)

// A Directory maintains the authenticated tree, a verifier bound to it
// and a cache of recently served witnesses.
//
// A Directory takes no locks: the caller must not run a mutating
// operation (see protocol.MutatingTypes) concurrently with any other.
type Directory struct {
	tree      *merkletree.SparseMerkleTree
	verifier  *verifier.Verifier
	witnesses *witnessCache
	log       protocol.Logger
}

// New constructs a Directory serving tree. cacheSize is the number of
// witnesses kept in memory; zero disables the cache.
func New(tree *merkletree.SparseMerkleTree, cacheSize int, log protocol.Logger) (*Directory, error) {
	if log == nil {
		log = protocol.NopLogger{}
	}
	wc, err := newWitnessCache(cacheSize)
	if err != nil {
		return nil, err
	}
	metrics.SetTreeEntries(tree.Len())
	return &Directory{
		tree:      tree,
		verifier:  verifier.New(tree, log),
		witnesses: wc,
		log:       log,
	}, nil
}

// Tree returns the tree of d.
func (d *Directory) Tree() *merkletree.SparseMerkleTree {
	return d.tree
}

// SetWitnessCacheSize changes the number of witnesses kept in memory.
func (d *Directory) SetWitnessCacheSize(size int) error {
	return d.witnesses.resize(size)
}

func (d *Directory) rootDecimal() string {
	r := d.tree.Root()
	return crypto.ElementDecimal(&r)
}

func (d *Directory) insert(key, value string) error {
	if err := d.tree.Insert(key, value); err != nil {
		d.log.Error("cannot insert entry", "key", key, "error", err)
		return err
	}
	metrics.SetTreeEntries(d.tree.Len())
	return nil
}

// Insert upserts the entry in req, storing the decimal form of its value.
func (d *Directory) Insert(req *protocol.InsertRequest) (*protocol.Response, error) {
	if err := d.insert(req.Key, strconv.FormatUint(req.Value, 10)); err != nil {
		return protocol.NewErrorResponse(protocol.ErrDirectory), protocol.ErrDirectory
	}
	return protocol.NewSuccessResponse(nil), nil
}

// Delete removes the entry of req.Key. Deleting an absent key succeeds.
func (d *Directory) Delete(req *protocol.DeleteRequest) (*protocol.Response, error) {
	if err := d.tree.Delete(req.Key); err != nil {
		d.log.Error("cannot delete entry", "key", req.Key, "error", err)
		return protocol.NewErrorResponse(protocol.ErrDirectory), protocol.ErrDirectory
	}
	metrics.SetTreeEntries(d.tree.Len())
	return protocol.NewSuccessResponse(nil), nil
}

// GetRoot returns the hex of the little-endian root bytes.
func (d *Directory) GetRoot() (*protocol.Response, error) {
	r := d.tree.Root()
	return protocol.NewSuccessResponse(&protocol.RootResponse{
		Root: hex.EncodeToString(crypto.ElementToLE(&r)),
	}), nil
}

// GetMerkleProof returns the witness of req.Key, hex-encoded. The
// witness of an absent key is empty.
func (d *Directory) GetMerkleProof(req *protocol.MerkleProofRequest) (*protocol.Response, error) {
	root := d.rootDecimal()
	path, ok := d.witnesses.get(root, req.Key)
	if !ok {
		elems := d.tree.MerklePath(req.Key)
		path = make([]protocol.MerkleProofEntry, len(elems))
		for i, e := range elems {
			path[i] = protocol.MerkleProofEntry{
				Hash:   hex.EncodeToString(e.Value),
				IsLeft: e.IsLeft,
			}
		}
		d.witnesses.add(root, req.Key, path)
	}
	return protocol.NewSuccessResponse(&protocol.MerkleProofResponse{Path: path}), nil
}

// GenerateProof returns a keyed-numeric envelope for req. If the key is
// absent it is inserted with req.Value first, which changes the root.
func (d *Directory) GenerateProof(req *protocol.GenerateProofRequest) (*protocol.Response, error) {
	p, err := d.keyedProof(req.Key, req.Value, req.Nonce)
	if err != nil {
		return protocol.NewErrorResponse(protocol.ErrDirectory), protocol.ErrDirectory
	}
	wire, err := protocol.EncodeHex(p)
	if err != nil {
		return protocol.NewErrorResponse(protocol.ErrDirectory), protocol.ErrDirectory
	}
	return protocol.NewSuccessResponse(&protocol.ProofResponse{Proof: wire}), nil
}

// GenerateUserProof returns a username-keyed envelope for req. If the
// username is absent, or its value is not an unsigned integer, the proof
// is the hex of an "ERROR: ..." text instead and the tree is unchanged.
func (d *Directory) GenerateUserProof(req *protocol.GenerateUserProofRequest) (*protocol.Response, error) {
	p, errText := d.userProof(req.Username, req.Nonce)
	if p == nil {
		d.log.Info("cannot generate user proof", "reason", errText)
		return protocol.NewSuccessResponse(&protocol.ProofResponse{
			Proof: hex.EncodeToString([]byte(errText)),
		}), nil
	}
	wire, err := protocol.EncodeHex(p)
	if err != nil {
		return protocol.NewErrorResponse(protocol.ErrDirectory), protocol.ErrDirectory
	}
	return protocol.NewSuccessResponse(&protocol.ProofResponse{Proof: wire}), nil
}

// VerifyMembership checks a username-keyed or keyed-numeric envelope.
func (d *Directory) VerifyMembership(req *protocol.VerifyMembershipRequest) (*protocol.Response, error) {
	return verification(d.verifier.VerifyMembership(req)), nil
}

// VerifySignalProof checks a signal-based envelope.
func (d *Directory) VerifySignalProof(req *protocol.VerifySignalProofRequest) (*protocol.Response, error) {
	return verification(d.verifier.VerifySignalProof(req)), nil
}

// VerifyQueryResult checks a byte proof.
func (d *Directory) VerifyQueryResult(req *protocol.VerifyQueryRequest) (*protocol.Response, error) {
	return verification(d.verifier.VerifyQueryResult(req)), nil
}

func verification(valid bool) *protocol.Response {
	return protocol.NewSuccessResponse(&protocol.VerificationResponse{Valid: valid})
}

// GetProofData returns the circuit inputs of req.PublicKey, or no data
// if the key is absent.
func (d *Directory) GetProofData(req *protocol.ProofDataRequest) (*protocol.Response, error) {
	data, ok := d.proofData(req.PublicKey)
	if !ok {
		return protocol.NewSuccessResponse(&protocol.ProofDataResponse{}), nil
	}
	return protocol.NewSuccessResponse(&protocol.ProofDataResponse{Data: &data}), nil
}

// GetAllEntries returns every entry sorted by key.
func (d *Directory) GetAllEntries() (*protocol.Response, error) {
	entries := d.tree.Entries()
	pairs := make([][2]string, len(entries))
	for i, e := range entries {
		pairs[i] = [2]string{e.Key, e.Value}
	}
	return protocol.NewSuccessResponse(&protocol.EntriesResponse{Entries: pairs}), nil
}

// GetStats returns the statistics text of the tree.
func (d *Directory) GetStats() (*protocol.Response, error) {
	return protocol.NewSuccessResponse(&protocol.StatsResponse{Stats: d.stats()}), nil
}

// Greet returns a greeting for req.Name.
func (d *Directory) Greet(req *protocol.GreetRequest) (*protocol.Response, error) {
	return protocol.NewSuccessResponse(&protocol.GreetResponse{
		Message: "Welcome, " + req.Name + "! You are using the zkSMT tree server.",
	}), nil
}
