package client

import (
	"testing"

	"github.com/emf99/zkSMT/protocol"
	"github.com/emf99/zkSMT/protocol/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceBobRoot       = "12d6ae5dbe25ab5d6b75ad7818bac28f927bcb38afe1e4a796cadd4611013f42"
	aliceBobRootBigEnd = "8520939977525582547351195049038454609925036071568935134759768661246273994562"
	aliceWitness       = "5d21d2fe4044628b8020b445e650f01781b1ba85cb75b26ec8aa128c683d5c35"
)

func aliceBobView() *TreeView {
	return &TreeView{
		Root:    aliceBobRoot,
		Path:    []protocol.MerkleProofEntry{{Hash: aliceWitness, IsLeft: true}},
		Entries: [][2]string{{"alice", "1"}, {"bob", "2"}},
	}
}

func TestBuildMemberProof(t *testing.T) {
	p, err := BuildUserProof("alice", nil, aliceBobView())
	require.NoError(t, err)
	assert.True(t, p.Member)
	assert.Equal(t, CircuitInputs{
		PublicKey:    "92903040",
		ExpectedRoot: aliceBobRootBigEnd,
		SecretValue:  "1",
		Salt:         "789",
		Sibling1:     "1748851765",
		Sibling2:     "0",
		Sibling3:     "0",
	}, p.Inputs)

	want := protocol.Groth16Proof{
		PiA: [2]string{"401000000000", "12000000000"},
		PiB: [2][2]string{{"7893000000000", "7654000000000"}, {"05000000000", "06000000000"}},
		PiC: [2]string{"417000000000", "408000000000"},
	}
	assert.Equal(t, want, p.User.Groth16Proof)
	assert.Equal(t, want, p.Signal.Proof)
	assert.Equal(t, aliceBobRoot, p.User.SMTRoot)
	assert.Equal(t, uint64(12345), p.User.Nonce)
	assert.Equal(t, uint64(1), p.User.SecretValue)
	assert.Equal(t, [3]uint64{1748851765, 0, 0}, p.User.Siblings)
	assert.Equal(t, []string{"92903040", aliceBobRootBigEnd}, p.Signal.PublicSignals)
}

func TestBuildNonMemberProof(t *testing.T) {
	view := aliceBobView()
	view.Path = nil
	nonce := uint64(42)
	p, err := BuildUserProof("carol", &nonce, view)
	require.NoError(t, err)
	assert.False(t, p.Member)
	assert.Equal(t, "0", p.Inputs.SecretValue)
	assert.Equal(t, "42", p.Inputs.Salt)
	assert.Equal(t, [3]string{"100", "200", "300"}, [3]string{p.Inputs.Sibling1, p.Inputs.Sibling2, p.Inputs.Sibling3})
	assert.Equal(t, uint64(42), p.User.Nonce)
	assert.Equal(t, uint64(0), p.User.SecretValue)

	// a lone entry has an empty witness and takes the defaults
	// but keeps its stored value in the envelope
	p, err = BuildUserProof("alice", nil, &TreeView{Root: "00", Entries: [][2]string{{"alice", "7"}}})
	require.NoError(t, err)
	assert.False(t, p.Member)
	assert.Equal(t, "0", p.Inputs.SecretValue)
	assert.Equal(t, uint64(7), p.User.SecretValue)
}

func TestBuildUserProofZeroNonce(t *testing.T) {
	var zero uint64
	p, err := BuildUserProof("alice", &zero, aliceBobView())
	require.NoError(t, err)
	assert.Equal(t, "0", p.Inputs.Salt)
	assert.Equal(t, uint64(DefaultNonce), p.User.Nonce)
	assert.Equal(t, "03000000000", p.User.PiB[0][0])
}

func TestBuildUserProofErrors(t *testing.T) {
	_, err := BuildUserProof("alice", nil, &TreeView{Root: "xyz"})
	assert.Equal(t, ErrBadRoot, err)

	_, err = BuildUserProof("alice", nil, &TreeView{Root: ""})
	assert.Equal(t, ErrBadRoot, err)

	view := aliceBobView()
	view.Path[0].Hash = "not hex"
	_, err = BuildUserProof("alice", nil, view)
	assert.Equal(t, ErrBadWitness, err)
}

func TestProofsVerifyOnServer(t *testing.T) {
	d := directory.NewTestDirectory(t)
	_, err := d.Insert(&protocol.InsertRequest{Key: "alice", Value: 1})
	require.NoError(t, err)
	_, err = d.Insert(&protocol.InsertRequest{Key: "bob", Value: 2})
	require.NoError(t, err)

	p, err := BuildUserProof("alice", nil, aliceBobView())
	require.NoError(t, err)

	userHex, err := p.UserHex()
	require.NoError(t, err)
	res, err := d.VerifyMembership(&protocol.VerifyMembershipRequest{Key: "alice", ZKProof: userHex})
	require.NoError(t, err)
	assert.True(t, res.DirectoryResponse.(*protocol.VerificationResponse).Valid)

	signalHex, err := p.SignalHex()
	require.NoError(t, err)
	res, err = d.VerifySignalProof(&protocol.VerifySignalProofRequest{
		PublicKey:    p.Inputs.PublicKey,
		ExpectedRoot: p.Inputs.ExpectedRoot,
		ZKProofHex:   signalHex,
	})
	require.NoError(t, err)
	assert.True(t, res.DirectoryResponse.(*protocol.VerificationResponse).Valid)
}
