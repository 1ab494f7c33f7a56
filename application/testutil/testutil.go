// Package testutil provides TLS material and raw socket clients for
// testing the tree server.
package testutil

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"net"
	"net/url"
	"os"
	"path"
	"testing"
	"time"
)

const (
	// PublicConnection is the TCP address test servers listen at.
	PublicConnection = "tcp://127.0.0.1:3000"
	// LocalConnection is the Unix socket test servers listen at.
	LocalConnection = "unix:///tmp/zksmttest.sock"
)

// CreateTLSCert writes a self-signed certificate for localhost
// to dir/server.pem and its key to dir/server.key.
func CreateTLSCert(dir string) error {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}

	notBefore := time.Now()
	notAfter := notBefore.Add(365 * 24 * time.Hour)

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	if err != nil {
		return err
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"zkSMT"},
			CommonName:   "localhost",
		},
		NotBefore: notBefore,
		NotAfter:  notAfter,

		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		DNSNames:              []string{"localhost"},
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return err
	}
	b, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return err
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	if err := os.WriteFile(path.Join(dir, "server.pem"), certPEM, 0644); err != nil {
		return err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: b})
	return os.WriteFile(path.Join(dir, "server.key"), keyPEM, 0600)
}

// CreateTLSCertForTest creates a temporary directory holding a
// certificate and its key. The directory is removed with the test.
func CreateTLSCertForTest(t testing.TB) string {
	dir := t.TempDir()
	if err := CreateTLSCert(dir); err != nil {
		t.Fatal(err)
	}
	return dir
}

// SocketPath returns the file path of a unix:// address.
func SocketPath(address string) string {
	u, err := url.Parse(address)
	if err != nil {
		return ""
	}
	return u.Path
}

// exchange writes msg, half-closes the connection and reads the reply.
func exchange(conn interface {
	io.ReadWriter
	CloseWrite() error
}, msg []byte) ([]byte, error) {
	if _, err := conn.Write(msg); err != nil {
		return nil, err
	}
	if err := conn.CloseWrite(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewTCPClient sends msg over TLS to the tcp:// address and returns
// the reply. The server certificate is not verified.
func NewTCPClient(msg []byte, address string) ([]byte, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	conn, err := tls.Dial("tcp", u.Host, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return exchange(conn, msg)
}

// NewUnixClient sends msg to the unix:// address and returns the reply.
func NewUnixClient(msg []byte, address string) ([]byte, error) {
	unixaddr := &net.UnixAddr{Name: SocketPath(address), Net: "unix"}
	conn, err := net.DialUnix("unix", nil, unixaddr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return exchange(conn, msg)
}

// NewTCPClientDefault sends msg to PublicConnection.
func NewTCPClientDefault(msg []byte) ([]byte, error) {
	return NewTCPClient(msg, PublicConnection)
}

// NewUnixClientDefault sends msg to LocalConnection.
func NewUnixClientDefault(msg []byte) ([]byte, error) {
	return NewUnixClient(msg, LocalConnection)
}
