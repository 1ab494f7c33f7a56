package application

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/emf99/zkSMT/application/metrics"
	"github.com/emf99/zkSMT/protocol"
)

// MaxMessageSize is the largest request a server reads from a
// connection.
const MaxMessageSize = 1 << 20

// connDeadline bounds the lifetime of a client connection.
const connDeadline = 5 * time.Second

// A ServerAddress describes a server's connection.
// It supports two types of connections: a TCP connection ("tcp")
// and a Unix socket connection ("unix").
//
// Additionally, TCP connections must use TLS for added security,
// and each is required to specify a TLS certificate and corresponding
// private key.
type ServerAddress struct {
	// Address is formatted as a url: scheme://address.
	Address string `toml:"address" yaml:"address"`
	// TLSCertPath is a path to the server's TLS Certificate,
	// which has to be set if the connection is TCP.
	TLSCertPath string `toml:"cert,omitempty" yaml:"cert,omitempty"`
	// TLSKeyPath is a path to the server's TLS private key,
	// which has to be set if the connection is TCP.
	TLSKeyPath string `toml:"key,omitempty" yaml:"key,omitempty"`
}

// A ServerBase represents the base features needed to implement
// the tree server. It wraps a request handler with a network layer
// which handles requests/responses and their encoding/decoding.
//
// A ServerBase handles requests concurrently. The handler runs under
// the write lock for the request types in protocol.MutatingTypes and
// under the read lock for the others.
type ServerBase struct {
	Verb           string
	acceptableReqs map[*ServerAddress]map[int]bool

	logger *Logger
	sync.RWMutex

	stop          chan struct{}
	waitStop      sync.WaitGroup
	waitCloseConn sync.WaitGroup

	configFilePath string
	configEncoding string
	reloadChan     chan os.Signal
}

// NewServerBase creates a new generic server base.
// perms lists for each address the request types it accepts.
func NewServerBase(conf *CommonConfig, listenVerb string,
	perms map[*ServerAddress]map[int]bool) *ServerBase {
	sb := new(ServerBase)
	sb.Verb = listenVerb
	sb.acceptableReqs = perms
	sb.logger = NewLogger(conf.Logger)
	sb.stop = make(chan struct{})
	sb.configFilePath = conf.Path
	sb.configEncoding = conf.Encoding
	sb.reloadChan = make(chan os.Signal, 1)
	signal.Notify(sb.reloadChan, syscall.SIGUSR2)
	return sb
}

// ListenAndHandle listens at the given server address and serves each
// accepted connection with reqHandler in its own goroutine.
func (sb *ServerBase) ListenAndHandle(addr *ServerAddress,
	reqHandler func(req *protocol.Request) *protocol.Response) error {
	ln, tlsConfig, err := addr.resolveAndListen()
	if err != nil {
		return err
	}
	verb := sb.Verb
	sb.waitStop.Add(1)
	go func() {
		sb.logger.Info(verb, "address", addr.Address)
		sb.acceptRequests(addr, ln, tlsConfig, reqHandler)
		sb.waitStop.Done()
	}()
	return nil
}

func (addr *ServerAddress) resolveAndListen() (net.Listener, *tls.Config, error) {
	u, err := url.Parse(addr.Address)
	if err != nil {
		return nil, nil, err
	}
	switch u.Scheme {
	case "tcp":
		// force to use TLS
		cer, err := tls.LoadX509KeyPair(addr.TLSCertPath, addr.TLSKeyPath)
		if err != nil {
			return nil, nil, err
		}
		tlsConfig := &tls.Config{Certificates: []tls.Certificate{cer}}
		tcpaddr, err := net.ResolveTCPAddr(u.Scheme, u.Host)
		if err != nil {
			return nil, nil, err
		}
		ln, err := net.ListenTCP(u.Scheme, tcpaddr)
		if err != nil {
			return nil, nil, err
		}
		return ln, tlsConfig, nil
	case "unix":
		unixaddr, err := net.ResolveUnixAddr(u.Scheme, u.Path)
		if err != nil {
			return nil, nil, err
		}
		ln, err := net.ListenUnix(u.Scheme, unixaddr)
		if err != nil {
			return nil, nil, err
		}
		return ln, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown network type %q", u.Scheme)
	}
}

func (sb *ServerBase) acceptRequests(addr *ServerAddress, ln net.Listener,
	tlsConfig *tls.Config,
	handler func(req *protocol.Request) *protocol.Response) {
	defer ln.Close()
	go func() {
		<-sb.stop
		if l, ok := ln.(interface {
			SetDeadline(time.Time) error
		}); ok {
			l.SetDeadline(time.Now())
		}
	}()

	for {
		select {
		case <-sb.stop:
			sb.waitCloseConn.Wait()
			return
		default:
		}
		conn, err := ln.Accept()
		if err != nil {
			if opErr, ok := err.(*net.OpError); ok && opErr.Timeout() {
				continue
			}
			sb.logger.Error(err.Error())
			continue
		}
		if tlsConfig != nil {
			conn = tls.Server(conn, tlsConfig)
		}
		sb.waitCloseConn.Add(1)
		go func() {
			sb.acceptClient(addr, conn, handler)
			sb.waitCloseConn.Done()
		}()
	}
}

// checkRequestType verifies that the server is allowed to handle
// the given Request message type at the given address.
// A mutation on an address which does not allow it yields
// protocol.ErrUnauthorized, any other unacceptable type
// protocol.ErrMalformedMessage.
func (sb *ServerBase) checkRequestType(addr *ServerAddress,
	reqType int) error {
	if sb.acceptableReqs[addr][reqType] {
		return nil
	}
	sb.logger.Warn("Unacceptable message type",
		"request type", protocol.TypeName(reqType),
		"address", addr.Address)
	if protocol.MutatingTypes[reqType] {
		return protocol.ErrUnauthorized
	}
	return protocol.ErrMalformedMessage
}

// handle runs handler on req under the lock matching its type.
func (sb *ServerBase) handle(req *protocol.Request,
	handler func(req *protocol.Request) *protocol.Response) *protocol.Response {
	if protocol.MutatingTypes[req.Type] {
		sb.Lock()
		defer sb.Unlock()
	} else {
		sb.RLock()
		defer sb.RUnlock()
	}
	return handler(req)
}

// result names the outcome of a response for the request counter.
func result(res *protocol.Response) string {
	switch res.Error {
	case protocol.ReqSuccess:
		return "success"
	case protocol.ErrMalformedMessage:
		return "malformed"
	case protocol.ErrUnauthorized:
		return "unauthorized"
	}
	return "directory"
}

func (sb *ServerBase) acceptClient(addr *ServerAddress, conn net.Conn,
	handler func(req *protocol.Request) *protocol.Response) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(connDeadline))

	msg, err := io.ReadAll(io.LimitReader(conn, MaxMessageSize))
	if err != nil {
		sb.logger.Error(err.Error(),
			"address", conn.RemoteAddr().String())
		return
	}

	var response *protocol.Response
	reqType := "unknown"
	req, err := UnmarshalRequest(msg)
	if err != nil {
		response = malformedClientMsg(err)
	} else {
		reqType = protocol.TypeName(req.Type)
		if err := sb.checkRequestType(addr, req.Type); err != nil {
			response = malformedClientMsg(err)
		} else {
			response = sb.handle(req, handler)
		}
	}
	metrics.AddRequest(reqType, result(response))
	if response.Error != protocol.ReqSuccess {
		sb.logger.Warn(response.Error.Error(),
			"request type", reqType,
			"address", conn.RemoteAddr().String())
	}

	res, err := MarshalResponse(response)
	if err != nil {
		sb.logger.Error(err.Error(), "request type", reqType)
		return
	}
	if _, err := conn.Write(res); err != nil {
		sb.logger.Error(err.Error(),
			"address", conn.RemoteAddr().String())
		return
	}
}

// RunInBackground creates a new goroutine that calls function `f`.
// It automatically increments the counter `sync.WaitGroup` of the
// `ServerBase` and calls `Done` when the function execution is finished.
func (sb *ServerBase) RunInBackground(f func()) {
	sb.waitStop.Add(1)
	go func() {
		f()
		sb.waitStop.Done()
	}()
}

// HotReload runs f under the write lock each time the process
// receives SIGUSR2, until the server base is shut down.
func (sb *ServerBase) HotReload(f func()) {
	for {
		select {
		case <-sb.stop:
			return
		case <-sb.reloadChan:
			sb.Lock()
			f()
			sb.Unlock()
		}
	}
}

// Logger returns the server base's logger instance.
func (sb *ServerBase) Logger() *Logger {
	return sb.logger
}

// ConfigInfo returns the server base's config file path and encoding.
func (sb *ServerBase) ConfigInfo() (string, string) {
	return sb.configFilePath, sb.configEncoding
}

// Shutdown closes all of the server's connections and shuts down the server.
func (sb *ServerBase) Shutdown() error {
	signal.Stop(sb.reloadChan)
	close(sb.stop)
	sb.waitStop.Wait()
	return nil
}
