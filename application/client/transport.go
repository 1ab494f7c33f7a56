package client

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/emf99/zkSMT/application"
	"github.com/emf99/zkSMT/protocol"
)

// ErrBadCACert indicates the configured CA file holds no certificate.
var ErrBadCACert = errors.New("[client] No certificate in CA file")

const dialTimeout = 5 * time.Second

// tlsConfig builds the TLS configuration for TCP addresses.
func (conf *Config) tlsConfig(serverName string) (*tls.Config, error) {
	tlsConf := &tls.Config{
		ServerName:         serverName,
		InsecureSkipVerify: conf.InsecureSkipVerify,
	}
	if conf.CACertPath != "" {
		pem, err := os.ReadFile(conf.CACertPath)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, ErrBadCACert
		}
		tlsConf.RootCAs = pool
	}
	return tlsConf, nil
}

// Send writes msg to the server at conf.Address and returns the raw
// reply. tcp:// addresses are secured with TLS.
func (conf *Config) Send(msg []byte) ([]byte, error) {
	u, err := url.Parse(conf.Address)
	if err != nil {
		return nil, err
	}

	var conn interface {
		net.Conn
		CloseWrite() error
	}
	switch u.Scheme {
	case "tcp":
		tlsConf, err := conf.tlsConfig(u.Hostname())
		if err != nil {
			return nil, err
		}
		dialer := &net.Dialer{Timeout: dialTimeout}
		c, err := tls.DialWithDialer(dialer, "tcp", u.Host, tlsConf)
		if err != nil {
			return nil, err
		}
		conn = c
	case "unix":
		c, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: u.Path, Net: "unix"})
		if err != nil {
			return nil, err
		}
		conn = c
	default:
		return nil, fmt.Errorf("unknown network type %q", u.Scheme)
	}
	defer conn.Close()

	if _, err := conn.Write(msg); err != nil {
		return nil, err
	}
	if err := conn.CloseWrite(); err != nil {
		return nil, err
	}
	return io.ReadAll(conn)
}

// Do sends a request of the given type and decodes the reply.
// A reply with an error code is returned as a Go error.
func (conf *Config) Do(reqType int, request interface{}) (protocol.DirectoryResponse, error) {
	msg, err := application.MarshalRequest(reqType, request)
	if err != nil {
		return nil, err
	}
	rev, err := conf.Send(msg)
	if err != nil {
		return nil, err
	}
	res := application.UnmarshalResponse(reqType, rev)
	if res.Error != protocol.ReqSuccess {
		return nil, res.Error
	}
	return res.DirectoryResponse, nil
}
