package server

import (
	"github.com/emf99/zkSMT/application"
	"github.com/emf99/zkSMT/application/metrics"
	"github.com/emf99/zkSMT/protocol"
	"github.com/emf99/zkSMT/protocol/directory"
	"github.com/emf99/zkSMT/storage/kv"
)

// A TreeServer represents the tree server.
// It wraps a Directory with a network layer which
// handles requests/responses and their encoding/decoding.
// A TreeServer also supports concurrent handling of requests and
// reloading its witness cache size on SIGUSR2.
type TreeServer struct {
	*application.ServerBase
	dir     *directory.Directory
	db      kv.DB
	metrics *metrics.Service
}

// NewTreeServer opens the tree described by conf and creates a server
// for it. The server owns the tree's database until Shutdown.
func NewTreeServer(conf *Config) (*TreeServer, error) {
	// determine this server's request permissions
	perms := make(map[*application.ServerAddress]map[int]bool)
	for _, addr := range conf.Addresses {
		perms[addr.ServerAddress] = make(map[int]bool)
		for t := protocol.InsertType; t <= protocol.GreetType; t++ {
			perms[addr.ServerAddress][t] = !protocol.MutatingTypes[t] || addr.AllowMutation
		}
	}

	sb := application.NewServerBase(conf.CommonConfig, "Listen", perms)

	db, tree, err := conf.Tree.OpenTree()
	if err != nil {
		return nil, err
	}
	dir, err := directory.New(tree, conf.Tree.WitnessCacheSize, sb.Logger())
	if err != nil {
		db.Close()
		return nil, err
	}

	server := &TreeServer{
		ServerBase: sb,
		dir:        dir,
		db:         db,
	}
	if conf.Metrics != nil {
		server.metrics = metrics.NewService(conf.Metrics.Address, sb.Logger())
	}
	return server, nil
}

// HandleRequests validates the request message and passes it to the
// appropriate operation handler according to the request type.
func (server *TreeServer) HandleRequests(req *protocol.Request) *protocol.Response {
	var res *protocol.Response
	var err error
	switch req.Type {
	case protocol.InsertType:
		if msg, ok := req.Request.(*protocol.InsertRequest); ok {
			res, err = server.dir.Insert(msg)
		}
	case protocol.DeleteType:
		if msg, ok := req.Request.(*protocol.DeleteRequest); ok {
			res, err = server.dir.Delete(msg)
		}
	case protocol.GetRootType:
		res, err = server.dir.GetRoot()
	case protocol.GetMerkleProofType:
		if msg, ok := req.Request.(*protocol.MerkleProofRequest); ok {
			res, err = server.dir.GetMerkleProof(msg)
		}
	case protocol.GenerateProofType:
		if msg, ok := req.Request.(*protocol.GenerateProofRequest); ok {
			res, err = server.dir.GenerateProof(msg)
		}
	case protocol.GenerateUserProofType:
		if msg, ok := req.Request.(*protocol.GenerateUserProofRequest); ok {
			res, err = server.dir.GenerateUserProof(msg)
		}
	case protocol.VerifyMembershipType:
		if msg, ok := req.Request.(*protocol.VerifyMembershipRequest); ok {
			res, err = server.dir.VerifyMembership(msg)
		}
	case protocol.VerifySignalProofType:
		if msg, ok := req.Request.(*protocol.VerifySignalProofRequest); ok {
			res, err = server.dir.VerifySignalProof(msg)
		}
	case protocol.VerifyQueryResultType:
		if msg, ok := req.Request.(*protocol.VerifyQueryRequest); ok {
			res, err = server.dir.VerifyQueryResult(msg)
		}
	case protocol.GetProofDataType:
		if msg, ok := req.Request.(*protocol.ProofDataRequest); ok {
			res, err = server.dir.GetProofData(msg)
		}
	case protocol.GetAllEntriesType:
		res, err = server.dir.GetAllEntries()
	case protocol.GetStatsType:
		res, err = server.dir.GetStats()
	case protocol.GreetType:
		if msg, ok := req.Request.(*protocol.GreetRequest); ok {
			res, err = server.dir.Greet(msg)
		}
	}
	if res == nil {
		return protocol.NewErrorResponse(protocol.ErrMalformedMessage)
	}
	if err != nil {
		server.Logger().Error(err.Error(), "request type", protocol.TypeName(req.Type))
	}
	return res
}

// Run implements the main functionality of the tree server.
// It listens for all declared connections with corresponding
// permissions, and starts the metrics service if one is configured.
func (server *TreeServer) Run(addrs []*Address) error {
	hasMutationPerm := false
	for _, addr := range addrs {
		hasMutationPerm = hasMutationPerm || addr.AllowMutation
		if addr.AllowMutation {
			server.Verb = "Accepting mutations"
		} else {
			server.Verb = "Listen"
		}
		if err := server.ListenAndHandle(addr.ServerAddress, server.HandleRequests); err != nil {
			return err
		}
	}

	if !hasMutationPerm {
		server.Logger().Warn("None of the addresses permit mutations")
	}

	if server.metrics != nil {
		go server.metrics.Start()
	}
	server.RunInBackground(func() {
		server.HotReload(server.reloadConfig)
	})
	return nil
}

// reloadConfig re-reads the config file and applies its witness cache
// size. It runs under the write lock.
func (server *TreeServer) reloadConfig() {
	file, encoding := server.ConfigInfo()
	conf := new(Config)
	if err := conf.Load(file, encoding); err != nil {
		// keep running with the current settings
		server.Logger().Error(err.Error())
		return
	}
	if err := server.dir.SetWitnessCacheSize(conf.Tree.WitnessCacheSize); err != nil {
		server.Logger().Error(err.Error())
		return
	}
	server.Logger().Info("Config reloaded!",
		"witness_cache_size", conf.Tree.WitnessCacheSize)
}

// Shutdown stops listening, waits for the pending requests, stops the
// metrics service and closes the tree's database.
func (server *TreeServer) Shutdown() error {
	if err := server.ServerBase.Shutdown(); err != nil {
		return err
	}
	if server.metrics != nil {
		server.metrics.ShutDown()
	}
	server.Logger().Sync()
	return server.db.Close()
}
