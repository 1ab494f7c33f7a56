package server

import (
	"os"
	"path"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/emf99/zkSMT/application"
	"github.com/emf99/zkSMT/application/testutil"
	"github.com/emf99/zkSMT/protocol"
	"github.com/emf99/zkSMT/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	publicConnection = "tcp://127.0.0.1:3001"
	localConnection  = "unix:///tmp/zksmtservertest.sock"
)

var insertMsg = `
{
    "type": 0,
    "request": {
        "key": "alice",
        "value": 1
    }
}
`

var rootMsg = `
{
    "type": 2,
    "request": null
}
`

func newTestTCPAddress(dir string) *application.ServerAddress {
	return &application.ServerAddress{
		Address:     publicConnection,
		TLSCertPath: path.Join(dir, "server.pem"),
		TLSKeyPath:  path.Join(dir, "server.key"),
	}
}

// newTestConfig returns a config with a read-only TLS address and a
// Unix socket address accepting mutations.
func newTestConfig(t *testing.T, tree *TreeConfig) *Config {
	dir := testutil.CreateTLSCertForTest(t)
	addrs := []*Address{
		{ServerAddress: newTestTCPAddress(dir)},
		{
			ServerAddress: &application.ServerAddress{Address: localConnection},
			AllowMutation: true,
		},
	}
	logger := &application.LoggerConfig{
		Environment: "development",
		Path:        path.Join(dir, "zksmtserver.log"),
	}
	return NewConfig(path.Join(dir, "config.toml"), "toml", addrs, logger, tree, nil)
}

func startServer(t *testing.T, conf *Config) *TreeServer {
	server, err := NewTreeServer(conf)
	require.NoError(t, err)
	require.NoError(t, server.Run(conf.Addresses))
	t.Cleanup(func() { server.Shutdown() })
	return server
}

func memoryTree() *TreeConfig {
	return &TreeConfig{Backend: MemoryBackend, WitnessCacheSize: 16}
}

func request(t *testing.T, reqType int, request interface{}) *protocol.Request {
	msg, err := application.MarshalRequest(reqType, request)
	require.NoError(t, err)
	req, err := application.UnmarshalRequest(msg)
	require.NoError(t, err)
	return req
}

func rootOf(t *testing.T, server *TreeServer) string {
	res := server.HandleRequests(request(t, protocol.GetRootType, nil))
	require.Equal(t, protocol.ReqSuccess, res.Error)
	return res.DirectoryResponse.(*protocol.RootResponse).Root
}

func TestServerStartStop(t *testing.T) {
	startServer(t, newTestConfig(t, memoryTree()))
}

func TestServerReloadWithError(t *testing.T) {
	// the config file was never written, so reloading fails
	server := startServer(t, newTestConfig(t, memoryTree()))
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR2))
	time.Sleep(100 * time.Millisecond)

	// just to make sure the server's still running normally
	rev, err := testutil.NewUnixClient([]byte(rootMsg), localConnection)
	require.NoError(t, err)
	res := application.UnmarshalResponse(protocol.GetRootType, rev)
	require.Equal(t, protocol.ReqSuccess, res.Error)
	assert.Equal(t, rootOf(t, server), res.DirectoryResponse.(*protocol.RootResponse).Root)
}

func TestServerReloadConfig(t *testing.T) {
	conf := newTestConfig(t, memoryTree())
	require.NoError(t, conf.Save())
	server := startServer(t, conf)
	server.HandleRequests(request(t, protocol.InsertType, &protocol.InsertRequest{Key: "alice", Value: 1}))
	server.HandleRequests(request(t, protocol.InsertType, &protocol.InsertRequest{Key: "bob", Value: 2}))

	require.NoError(t, os.Remove(conf.Path))
	conf.Tree.WitnessCacheSize = 0
	require.NoError(t, conf.Save())
	server.reloadConfig()

	res := server.HandleRequests(request(t, protocol.GetMerkleProofType, &protocol.MerkleProofRequest{Key: "alice"}))
	require.Equal(t, protocol.ReqSuccess, res.Error)
	assert.Len(t, res.DirectoryResponse.(*protocol.MerkleProofResponse).Path, 1)
}

func TestAcceptMutationOverUnixSocket(t *testing.T) {
	server := startServer(t, newTestConfig(t, memoryTree()))

	rev, err := testutil.NewUnixClient([]byte(insertMsg), localConnection)
	require.NoError(t, err)
	res := application.UnmarshalResponse(protocol.InsertType, rev)
	assert.Equal(t, protocol.ReqSuccess, res.Error)

	res = server.HandleRequests(request(t, protocol.GetAllEntriesType, nil))
	assert.Equal(t, [][2]string{{"alice", "1"}},
		res.DirectoryResponse.(*protocol.EntriesResponse).Entries)
}

func TestRejectMutationFromOutside(t *testing.T) {
	server := startServer(t, newTestConfig(t, memoryTree()))
	before := rootOf(t, server)

	rev, err := testutil.NewTCPClient([]byte(insertMsg), publicConnection)
	require.NoError(t, err)
	res := application.UnmarshalResponse(protocol.InsertType, rev)
	assert.Equal(t, protocol.ErrUnauthorized, res.Error)
	assert.Equal(t, before, rootOf(t, server))
}

func TestReadFromOutside(t *testing.T) {
	server := startServer(t, newTestConfig(t, memoryTree()))
	_, err := testutil.NewUnixClient([]byte(insertMsg), localConnection)
	require.NoError(t, err)

	rev, err := testutil.NewTCPClient([]byte(rootMsg), publicConnection)
	require.NoError(t, err)
	res := application.UnmarshalResponse(protocol.GetRootType, rev)
	require.Equal(t, protocol.ReqSuccess, res.Error)
	assert.Equal(t, rootOf(t, server), res.DirectoryResponse.(*protocol.RootResponse).Root)
}

func TestGenerateProofsFromOutside(t *testing.T) {
	server := startServer(t, newTestConfig(t, memoryTree()))
	_, err := testutil.NewUnixClient([]byte(insertMsg), localConnection)
	require.NoError(t, err)
	before := rootOf(t, server)

	msg, err := application.MarshalRequest(protocol.GenerateUserProofType,
		&protocol.GenerateUserProofRequest{Username: "alice", Nonce: 7})
	require.NoError(t, err)
	rev, err := testutil.NewTCPClient(msg, publicConnection)
	require.NoError(t, err)
	res := application.UnmarshalResponse(protocol.GenerateUserProofType, rev)
	require.Equal(t, protocol.ReqSuccess, res.Error)
	assert.NotEmpty(t, res.DirectoryResponse.(*protocol.ProofResponse).Proof)

	// the keyed-numeric generator may insert, so it stays local
	msg, err = application.MarshalRequest(protocol.GenerateProofType,
		&protocol.GenerateProofRequest{Key: 5, Value: 7, Nonce: 1})
	require.NoError(t, err)
	rev, err = testutil.NewTCPClient(msg, publicConnection)
	require.NoError(t, err)
	res = application.UnmarshalResponse(protocol.GenerateProofType, rev)
	assert.Equal(t, protocol.ErrUnauthorized, res.Error)
	assert.Equal(t, before, rootOf(t, server))
}

func TestHandleRequestsMalformedPayload(t *testing.T) {
	server, err := NewTreeServer(newTestConfig(t, memoryTree()))
	require.NoError(t, err)
	defer server.db.Close()

	res := server.HandleRequests(&protocol.Request{
		Type:    protocol.InsertType,
		Request: &protocol.DeleteRequest{Key: "alice"},
	})
	assert.Equal(t, protocol.ErrMalformedMessage, res.Error)

	res = server.HandleRequests(&protocol.Request{Type: 99})
	assert.Equal(t, protocol.ErrMalformedMessage, res.Error)
}

func TestDeleteReinsertReproducesRoot(t *testing.T) {
	server, err := NewTreeServer(newTestConfig(t, memoryTree()))
	require.NoError(t, err)
	defer server.db.Close()

	server.HandleRequests(request(t, protocol.InsertType, &protocol.InsertRequest{Key: "alice", Value: 1}))
	server.HandleRequests(request(t, protocol.InsertType, &protocol.InsertRequest{Key: "bob", Value: 2}))
	h := rootOf(t, server)

	server.HandleRequests(request(t, protocol.DeleteType, &protocol.DeleteRequest{Key: "bob"}))
	assert.NotEqual(t, h, rootOf(t, server))
	server.HandleRequests(request(t, protocol.InsertType, &protocol.InsertRequest{Key: "bob", Value: 2}))
	assert.Equal(t, h, rootOf(t, server))

	res := server.HandleRequests(request(t, protocol.GreetType, &protocol.GreetRequest{Name: "alice"}))
	assert.Equal(t, "Welcome, alice! You are using the zkSMT tree server.",
		res.DirectoryResponse.(*protocol.GreetResponse).Message)
}

func TestDurableBackends(t *testing.T) {
	for _, backend := range []string{LevelDBBackend, BoltBackend} {
		t.Run(backend, func(t *testing.T) {
			tree := &TreeConfig{
				Backend: backend,
				Path:    filepath.Join(t.TempDir(), "tree.db"),
			}
			server, err := NewTreeServer(newTestConfig(t, tree))
			require.NoError(t, err)
			server.HandleRequests(request(t, protocol.InsertType, &protocol.InsertRequest{Key: "alice", Value: 1}))
			server.HandleRequests(request(t, protocol.InsertType, &protocol.InsertRequest{Key: "bob", Value: 2}))
			root := rootOf(t, server)
			require.NoError(t, server.db.Close())

			server, err = NewTreeServer(newTestConfig(t, tree))
			require.NoError(t, err)
			defer server.db.Close()
			assert.Equal(t, root, rootOf(t, server))
		})
	}
}

func TestOpenDBErrors(t *testing.T) {
	_, err := (&TreeConfig{Backend: "rocksdb"}).OpenDB()
	assert.ErrorIs(t, err, kv.ErrUnknownBackend)
	_, err = (&TreeConfig{Backend: LevelDBBackend}).OpenDB()
	assert.Error(t, err)
	_, _, err = (&TreeConfig{Hasher: "MD5"}).OpenTree()
	assert.Error(t, err)
}

func TestConfigLoadResolvesPaths(t *testing.T) {
	for _, encoding := range []string{"toml", "yaml"} {
		t.Run(encoding, func(t *testing.T) {
			dir := t.TempDir()
			file := filepath.Join(dir, "config."+encoding)
			addrs := []*Address{{
				ServerAddress: &application.ServerAddress{
					Address:     "tcp://0.0.0.0:3000",
					TLSCertPath: "server.pem",
					TLSKeyPath:  "server.key",
				},
			}}
			logger := &application.LoggerConfig{Environment: "production", Path: "zksmt.log"}
			tree := &TreeConfig{Backend: BoltBackend, Path: "tree.db", WitnessCacheSize: 8}
			require.NoError(t, NewConfig(file, encoding, addrs, logger, tree,
				&MetricsConfig{Address: ":2112"}).Save())

			conf := new(Config)
			require.NoError(t, conf.Load(file, encoding))
			require.Len(t, conf.Addresses, 1)
			assert.Equal(t, "tcp://0.0.0.0:3000", conf.Addresses[0].Address)
			assert.Equal(t, filepath.Join(dir, "server.pem"), conf.Addresses[0].TLSCertPath)
			assert.Equal(t, filepath.Join(dir, "server.key"), conf.Addresses[0].TLSKeyPath)
			assert.False(t, conf.Addresses[0].AllowMutation)
			assert.Equal(t, filepath.Join(dir, "zksmt.log"), conf.Logger.Path)
			assert.Equal(t, filepath.Join(dir, "tree.db"), conf.Tree.Path)
			assert.Equal(t, BoltBackend, conf.Tree.Backend)
			assert.Equal(t, 8, conf.Tree.WitnessCacheSize)
			assert.Equal(t, ":2112", conf.Metrics.Address)
		})
	}
}

func TestConfigLoadWithoutTree(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, []byte("addresses = []\n"), 0644))
	assert.Error(t, new(Config).Load(file, "toml"))
}
