package directory

import (
	"encoding/hex"
	"testing"

	"github.com/emf99/zkSMT/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateProof(t *testing.T, d *Directory, key, value, nonce uint64) string {
	res, err := d.GenerateProof(&protocol.GenerateProofRequest{Key: key, Value: value, Nonce: nonce})
	require.NoError(t, err)
	b, err := hex.DecodeString(res.DirectoryResponse.(*protocol.ProofResponse).Proof)
	require.NoError(t, err)
	return string(b)
}

func generateUserProof(t *testing.T, d *Directory, username string, nonce uint64) string {
	res, err := d.GenerateUserProof(&protocol.GenerateUserProofRequest{Username: username, Nonce: nonce})
	require.NoError(t, err)
	b, err := hex.DecodeString(res.DirectoryResponse.(*protocol.ProofResponse).Proof)
	require.NoError(t, err)
	return string(b)
}

func TestGenerateProofInsertsAbsentKey(t *testing.T) {
	d := NewTestDirectory(t)
	got := generateProof(t, d, 5, 7, 100)
	assert.Equal(t, `{"pi_a":["51000000000","72000000000"],"pi_b":[["1003000000000","98125772595895452909368636381528683842423690267809513597504532566964705665754000000000"],["125000000000","2006000000000"]],"pi_c":["98125772595895452909368636381528683842423690267809513597504532566964705665757000000000","358000000000"],"smt_root":"9812577259589545290936863638152868384242369026780951359750453256696470566575","key":5,"value":7,"siblings":[100,101,102]}`, got)
	assert.Equal(t, [][2]string{{"5", "7"}}, entries(t, d))

	got = generateProof(t, d, 3, 4, 9)
	assert.Equal(t, `{"pi_a":["31000000000","42000000000"],"pi_b":[["93000000000","490497811927286589163706645354063455558761928619182491472545314416564167520824000000000"],["75000000000","836000000000"]],"pi_c":["490497811927286589163706645354063455558761928619182491472545314416564167520827000000000","128000000000"],"smt_root":"49049781192728658916370664535406345555876192861918249147254531441656416752082","key":3,"value":4,"siblings":[74,10,11]}`, got)
}

func TestGenerateProofKeepsPresentKey(t *testing.T) {
	d := NewTestDirectory(t)
	insert(t, d, "5", 7)
	before := root(t, d)
	generateProof(t, d, 5, 8, 1)
	assert.Equal(t, before, root(t, d))
	assert.Equal(t, [][2]string{{"5", "7"}}, entries(t, d))
}

func TestGenerateProofWraps(t *testing.T) {
	d := NewTestDirectory(t)
	got := generateProof(t, d, 1<<32, 1<<32, 18446744073709551615)
	assert.Equal(t, `{"pi_a":["42949672961000000000","42949672962000000000"],"pi_b":[["184467440737095516153000000000","107355939867506437192973292368304570709420123792626083957742309592193699457684000000000"],["85899345925000000000","184467440737095516146000000000"]],"pi_c":["107355939867506437192973292368304570709420123792626083957742309592193699457687000000000","08000000000"],"smt_root":"10735593986750643719297329236830457070942012379262608395774230959219369945768","key":4294967296,"value":4294967296,"siblings":[18446744073709551615,0,1]}`, got)
}

func TestGenerateUserProof(t *testing.T) {
	d := NewTestDirectory(t)
	insert(t, d, "alice", 1)
	insert(t, d, "bob", 2)
	assert.Equal(t, `{"pi_a":["401000000000","12000000000"],"pi_b":[["53000000000","774000000000"],["415000000000","7246000000000"]],"pi_c":["777000000000","408000000000"],"smt_root":"29963966739105160068285757171147703940987895093623352041220032054013698430482","username":"alice","public_key":92903040,"secret_value":1,"nonce":5,"siblings":[97719,200,300]}`,
		generateUserProof(t, d, "alice", 5))
}

func TestGenerateUserProofSiblings(t *testing.T) {
	d := NewTestDirectory(t)
	for _, e := range [][2]string{{"alice", "1"}, {"bob", "2"}, {"carol", "x"}, {"dave", "4"}, {"eve", "5"}} {
		require.NoError(t, d.tree.Insert(e[0], e[1]))
	}
	assert.Equal(t, `{"pi_a":["8201000000000","52000000000"],"pi_b":[["53000000000","774000000000"],["8255000000000","466000000000"]],"pi_c":["777000000000","1008000000000"],"smt_root":"17820177534697206276644362914543857607677489360457792285340286175534427159248","username":"eve","public_key":100820,"secret_value":5,"nonce":1005,"siblings":[903041,97719,431409]}`,
		generateUserProof(t, d, "eve", 1005))
	assert.Equal(t, "ERROR: Invalid ID format for user carol: x", generateUserProof(t, d, "carol", 1))
	assert.Equal(t, "ERROR: User zed not found in SMT", generateUserProof(t, d, "zed", 1))
}

func TestGeneratedProofsVerify(t *testing.T) {
	d := NewTestDirectory(t)
	res, err := d.GenerateProof(&protocol.GenerateProofRequest{Key: 42, Value: 7, Nonce: 3})
	require.NoError(t, err)
	wire := res.DirectoryResponse.(*protocol.ProofResponse).Proof

	res, err = d.VerifyMembership(&protocol.VerifyMembershipRequest{Key: "42", ZKProof: wire})
	require.NoError(t, err)
	assert.True(t, res.DirectoryResponse.(*protocol.VerificationResponse).Valid)

	// another insertion moves the root away from the envelope
	insert(t, d, "43", 1)
	res, err = d.VerifyMembership(&protocol.VerifyMembershipRequest{Key: "42", ZKProof: wire})
	require.NoError(t, err)
	assert.False(t, res.DirectoryResponse.(*protocol.VerificationResponse).Valid)
}
