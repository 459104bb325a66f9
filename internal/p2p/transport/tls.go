package transport

import (
	"crypto/ed25519"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/alxayo/mydia-p2p/internal/p2p/identity"
)

// nodeIDFromKey is the transport-side mirror of identity.Secret's own
// hex-encoding, applied to a peer's certificate public key instead of our
// own.
func nodeIDFromKey(pub ed25519.PublicKey) string {
	return hex.EncodeToString(pub)
}

// selfSignedCert wraps secret's Ed25519 keypair in a minimal self-signed
// certificate. Authentication rests entirely on the peer's public key
// (turned into a node id by peerNodeID) matching the node id the dialer
// expected (compared in wrapDialed), not on any CA chain, so the
// certificate fields beyond the key itself are placeholders.
func selfSignedCert(secret *identity.Secret) (tls.Certificate, error) {
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: secret.NodeID},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(10 * 365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(nil, template, template, secret.PublicKey(), secret.PrivateKey())
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("create self-signed cert: %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  secret.PrivateKey(),
	}, nil
}

func serverTLSConfig(secret *identity.Secret) (*tls.Config, error) {
	cert, err := selfSignedCert(secret)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates:       []tls.Certificate{cert},
		NextProtos:         []string{ALPN},
		ClientAuth:         tls.RequireAnyClientCert,
		InsecureSkipVerify: true,
	}, nil
}

func clientTLSConfig(secret *identity.Secret) (*tls.Config, error) {
	cert, err := selfSignedCert(secret)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates:       []tls.Certificate{cert},
		NextProtos:         []string{ALPN},
		InsecureSkipVerify: true,
	}, nil
}
