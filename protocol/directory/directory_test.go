package directory

import (
	"encoding/hex"
	"testing"

	"github.com/emf99/zkSMT/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insert(t *testing.T, d *Directory, key string, value uint64) {
	res, err := d.Insert(&protocol.InsertRequest{Key: key, Value: value})
	require.NoError(t, err)
	require.Equal(t, protocol.ReqSuccess, res.Error)
}

func root(t *testing.T, d *Directory) string {
	res, err := d.GetRoot()
	require.NoError(t, err)
	return res.DirectoryResponse.(*protocol.RootResponse).Root
}

func entries(t *testing.T, d *Directory) [][2]string {
	res, err := d.GetAllEntries()
	require.NoError(t, err)
	return res.DirectoryResponse.(*protocol.EntriesResponse).Entries
}

func merkleProof(t *testing.T, d *Directory, key string) []protocol.MerkleProofEntry {
	res, err := d.GetMerkleProof(&protocol.MerkleProofRequest{Key: key})
	require.NoError(t, err)
	return res.DirectoryResponse.(*protocol.MerkleProofResponse).Path
}

func TestInsertDeleteRoot(t *testing.T) {
	d := NewTestDirectory(t)
	assert.Equal(t, "1a5d8fd113cb7f860e46da85a7bbd73c07efbf3218ddbb5eaaf405c864638728", root(t, d))

	insert(t, d, "alice", 1)
	insert(t, d, "bob", 2)
	assert.Equal(t, [][2]string{{"alice", "1"}, {"bob", "2"}}, entries(t, d))
	h := root(t, d)
	assert.Equal(t, "12d6ae5dbe25ab5d6b75ad7818bac28f927bcb38afe1e4a796cadd4611013f42", h)

	res, err := d.Delete(&protocol.DeleteRequest{Key: "bob"})
	require.NoError(t, err)
	assert.Equal(t, protocol.ReqSuccess, res.Error)
	assert.Equal(t, "76e528801a07a111cec92f6c698dd953fb20f073a639d231cc4ebb97e045db54", root(t, d))

	insert(t, d, "bob", 2)
	assert.Equal(t, h, root(t, d))

	_, err = d.Delete(&protocol.DeleteRequest{Key: "nobody"})
	assert.NoError(t, err)
	assert.Equal(t, h, root(t, d))
}

func TestGetMerkleProof(t *testing.T) {
	d := NewTestDirectory(t)
	assert.Empty(t, merkleProof(t, d, "alice"))

	insert(t, d, "alice", 1)
	insert(t, d, "bob", 2)
	path := merkleProof(t, d, "alice")
	require.Len(t, path, 1)
	assert.Equal(t, protocol.MerkleProofEntry{
		Hash:   "5d21d2fe4044628b8020b445e650f01781b1ba85cb75b26ec8aa128c683d5c35",
		IsLeft: true,
	}, path[0])

	// served from the cache
	assert.Equal(t, path, merkleProof(t, d, "alice"))

	insert(t, d, "carol", 3)
	assert.Len(t, merkleProof(t, d, "alice"), 2)
	assert.Len(t, merkleProof(t, d, "dave"), 0)
	assert.Equal(t, 4, d.witnesses.len())
}

func TestWitnessCacheDisabled(t *testing.T) {
	d := NewTestDirectory(t)
	wc, err := newWitnessCache(0)
	require.NoError(t, err)
	d.witnesses = wc

	insert(t, d, "alice", 1)
	insert(t, d, "bob", 2)
	assert.Len(t, merkleProof(t, d, "bob"), 1)
	assert.Equal(t, 0, d.witnesses.len())
}

func TestVerifyThroughDirectory(t *testing.T) {
	d := NewTestDirectory(t)
	insert(t, d, "alice", 1)

	res, err := d.GenerateUserProof(&protocol.GenerateUserProofRequest{Username: "alice", Nonce: 1})
	require.NoError(t, err)
	proof := res.DirectoryResponse.(*protocol.ProofResponse).Proof

	res, err = d.VerifyMembership(&protocol.VerifyMembershipRequest{Key: "alice", ZKProof: proof})
	require.NoError(t, err)
	assert.True(t, res.DirectoryResponse.(*protocol.VerificationResponse).Valid)

	res, err = d.VerifyMembership(&protocol.VerifyMembershipRequest{Key: "bob", ZKProof: proof})
	require.NoError(t, err)
	assert.False(t, res.DirectoryResponse.(*protocol.VerificationResponse).Valid)

	res, err = d.VerifySignalProof(&protocol.VerifySignalProofRequest{ZKProofHex: proof})
	require.NoError(t, err)
	assert.False(t, res.DirectoryResponse.(*protocol.VerificationResponse).Valid)

	res, err = d.VerifyQueryResult(&protocol.VerifyQueryRequest{
		Name: "alice",
		ID:   1,
		Root: "2467a129b7126033b0aefee92fc56dc8af5e65fd8543c6e8b2a725efaf7fc41a",
	})
	require.NoError(t, err)
	assert.True(t, res.DirectoryResponse.(*protocol.VerificationResponse).Valid)
}

func TestGetProofData(t *testing.T) {
	d := NewTestDirectory(t)
	res, err := d.GetProofData(&protocol.ProofDataRequest{PublicKey: "3"})
	require.NoError(t, err)
	assert.Nil(t, res.DirectoryResponse.(*protocol.ProofDataResponse).Data)

	insert(t, d, "1", 2)
	insert(t, d, "3", 4)
	require.NoError(t, d.tree.Insert("x", "9"))
	res, err = d.GetProofData(&protocol.ProofDataRequest{PublicKey: "3"})
	require.NoError(t, err)
	data := res.DirectoryResponse.(*protocol.ProofDataResponse).Data
	require.NotNil(t, data)
	assert.Equal(t, `{"expectedRoot":"25734127454580221095813151563168297739586822385078053325369916055596342145043","siblings":[3,9,300]}`, *data)
}

func TestGetProofDataDefaults(t *testing.T) {
	d := NewTestDirectory(t)
	insert(t, d, "alice", 1)
	data, ok := d.proofData("alice")
	require.True(t, ok)
	assert.Equal(t, `{"expectedRoot":"38381701063686034785107338483700804987828991626939370938953292422463892284790","siblings":[100,200,300]}`, data)
}

func TestGetStats(t *testing.T) {
	d := NewTestDirectory(t)
	res, err := d.GetStats()
	require.NoError(t, err)
	assert.Equal(t, "SMT Statistics:\n- Root: 18331724287023644777026697190617484719521508646783216109538655651390701919514\n- Total entries: 0\n- Entries: {}",
		res.DirectoryResponse.(*protocol.StatsResponse).Stats)

	insert(t, d, "alice", 1)
	insert(t, d, "bob", 2)
	res, err = d.GetStats()
	require.NoError(t, err)
	assert.Equal(t, "SMT Statistics:\n- Root: 29963966739105160068285757171147703940987895093623352041220032054013698430482\n- Total entries: 2\n- Entries: {\"alice\": \"1\", \"bob\": \"2\"}",
		res.DirectoryResponse.(*protocol.StatsResponse).Stats)
}

func TestStatsQuoting(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{in: "alice", want: `"alice"`},
		{in: "\x01", want: `"\u{1}"`},
		{in: "a\"b\\c", want: `"a\"b\\c"`},
		{in: "\t\r\n\x00", want: `"\t\r\n\0"`},
		{in: "it's", want: `"it's"`},
		{in: "żółw", want: `"żółw"`},
		{in: "e\u0301", want: `"e\u{301}"`},
		{in: "\u007f\u200b", want: `"\u{7f}\u{200b}"`},
	} {
		assert.Equal(t, tc.want, debugQuote(tc.in), tc.in)
	}
}

func TestGreet(t *testing.T) {
	d := NewTestDirectory(t)
	res, err := d.Greet(&protocol.GreetRequest{Name: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome, alice! You are using the zkSMT tree server.",
		res.DirectoryResponse.(*protocol.GreetResponse).Message)
}

func TestErrorTextIsHex(t *testing.T) {
	d := NewTestDirectory(t)
	res, err := d.GenerateUserProof(&protocol.GenerateUserProofRequest{Username: "zed", Nonce: 1})
	require.NoError(t, err)
	b, err := hex.DecodeString(res.DirectoryResponse.(*protocol.ProofResponse).Proof)
	require.NoError(t, err)
	assert.Equal(t, "ERROR: User zed not found in SMT", string(b))
	assert.Empty(t, entries(t, d), "a failed user proof must not insert")
}

func TestSetWitnessCacheSize(t *testing.T) {
	d := NewTestDirectory(t)
	insert(t, d, "alice", 1)
	insert(t, d, "bob", 2)
	insert(t, d, "carol", 3)
	merkleProof(t, d, "alice")
	merkleProof(t, d, "bob")
	merkleProof(t, d, "carol")
	require.Equal(t, 3, d.witnesses.len())

	require.NoError(t, d.SetWitnessCacheSize(1))
	assert.Equal(t, 1, d.witnesses.len())

	require.NoError(t, d.SetWitnessCacheSize(0))
	merkleProof(t, d, "alice")
	assert.Equal(t, 0, d.witnesses.len())

	require.NoError(t, d.SetWitnessCacheSize(8))
	merkleProof(t, d, "alice")
	assert.Equal(t, 1, d.witnesses.len())
}
