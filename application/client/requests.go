package client

import (
	"errors"

	"github.com/emf99/zkSMT/protocol"
	"github.com/emf99/zkSMT/protocol/client"
)

// ErrUnexpectedResponse indicates a reply whose payload does not match
// the request type.
var ErrUnexpectedResponse = errors.New("[client] Unexpected response payload")

// Insert upserts key with value.
func (conf *Config) Insert(key string, value uint64) error {
	_, err := conf.Do(protocol.InsertType, &protocol.InsertRequest{Key: key, Value: value})
	return err
}

// Delete removes key.
func (conf *Config) Delete(key string) error {
	_, err := conf.Do(protocol.DeleteType, &protocol.DeleteRequest{Key: key})
	return err
}

// Root returns the hex of the little-endian root bytes.
func (conf *Config) Root() (string, error) {
	res, err := conf.Do(protocol.GetRootType, nil)
	if err != nil {
		return "", err
	}
	r, ok := res.(*protocol.RootResponse)
	if !ok {
		return "", ErrUnexpectedResponse
	}
	return r.Root, nil
}

// MerklePath returns the witness of key; it is empty if key is absent.
func (conf *Config) MerklePath(key string) ([]protocol.MerkleProofEntry, error) {
	res, err := conf.Do(protocol.GetMerkleProofType, &protocol.MerkleProofRequest{Key: key})
	if err != nil {
		return nil, err
	}
	r, ok := res.(*protocol.MerkleProofResponse)
	if !ok {
		return nil, ErrUnexpectedResponse
	}
	return r.Path, nil
}

func (conf *Config) proof(reqType int, request interface{}) (string, error) {
	res, err := conf.Do(reqType, request)
	if err != nil {
		return "", err
	}
	r, ok := res.(*protocol.ProofResponse)
	if !ok {
		return "", ErrUnexpectedResponse
	}
	return r.Proof, nil
}

// GenerateProof returns the hex of a keyed-numeric envelope.
func (conf *Config) GenerateProof(key, value, nonce uint64) (string, error) {
	return conf.proof(protocol.GenerateProofType,
		&protocol.GenerateProofRequest{Key: key, Value: value, Nonce: nonce})
}

// GenerateUserProof returns the hex of a username-keyed envelope, or
// the hex of an "ERROR: ..." text.
func (conf *Config) GenerateUserProof(username string, nonce uint64) (string, error) {
	return conf.proof(protocol.GenerateUserProofType,
		&protocol.GenerateUserProofRequest{Username: username, Nonce: nonce})
}

func (conf *Config) verify(reqType int, request interface{}) (bool, error) {
	res, err := conf.Do(reqType, request)
	if err != nil {
		return false, err
	}
	r, ok := res.(*protocol.VerificationResponse)
	if !ok {
		return false, ErrUnexpectedResponse
	}
	return r.Valid, nil
}

// VerifyMembership asks the server to check a membership envelope.
func (conf *Config) VerifyMembership(req *protocol.VerifyMembershipRequest) (bool, error) {
	return conf.verify(protocol.VerifyMembershipType, req)
}

// VerifySignalProof asks the server to check a signal-based envelope.
func (conf *Config) VerifySignalProof(req *protocol.VerifySignalProofRequest) (bool, error) {
	return conf.verify(protocol.VerifySignalProofType, req)
}

// VerifyQueryResult asks the server to check a byte proof.
func (conf *Config) VerifyQueryResult(req *protocol.VerifyQueryRequest) (bool, error) {
	return conf.verify(protocol.VerifyQueryResultType, req)
}

// ProofData returns the circuit inputs of key as JSON text, or nil if
// key is absent.
func (conf *Config) ProofData(key string) (*string, error) {
	res, err := conf.Do(protocol.GetProofDataType, &protocol.ProofDataRequest{PublicKey: key})
	if err != nil {
		return nil, err
	}
	r, ok := res.(*protocol.ProofDataResponse)
	if !ok {
		return nil, ErrUnexpectedResponse
	}
	return r.Data, nil
}

// Entries returns every entry sorted by key.
func (conf *Config) Entries() ([][2]string, error) {
	res, err := conf.Do(protocol.GetAllEntriesType, nil)
	if err != nil {
		return nil, err
	}
	r, ok := res.(*protocol.EntriesResponse)
	if !ok {
		return nil, ErrUnexpectedResponse
	}
	return r.Entries, nil
}

// Stats returns the statistics text of the tree.
func (conf *Config) Stats() (string, error) {
	res, err := conf.Do(protocol.GetStatsType, nil)
	if err != nil {
		return "", err
	}
	r, ok := res.(*protocol.StatsResponse)
	if !ok {
		return "", ErrUnexpectedResponse
	}
	return r.Stats, nil
}

// Greet returns the server's greeting for name.
func (conf *Config) Greet(name string) (string, error) {
	res, err := conf.Do(protocol.GreetType, &protocol.GreetRequest{Name: name})
	if err != nil {
		return "", err
	}
	r, ok := res.(*protocol.GreetResponse)
	if !ok {
		return "", ErrUnexpectedResponse
	}
	return r.Message, nil
}

// TreeView fetches what the client needs to build the proof of
// username locally: the root, the witness of username and the entries.
func (conf *Config) TreeView(username string) (*client.TreeView, error) {
	root, err := conf.Root()
	if err != nil {
		return nil, err
	}
	path, err := conf.MerklePath(username)
	if err != nil {
		return nil, err
	}
	entries, err := conf.Entries()
	if err != nil {
		return nil, err
	}
	return &client.TreeView{Root: root, Path: path, Entries: entries}, nil
}
