package crypto

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// ClientTLSConfig builds a client-side TLS configuration for shared-key
// mutual authentication. Certificate verification is pinned to the CA
// derived from the key, skipping hostname validation since derived
// certificates carry random names.
func ClientTLSConfig(key string, nextProtos []string) (*tls.Config, error) {
	caCert, cert, err := GenerateCertificates(key)
	if err != nil {
		return nil, fmt.Errorf("generate certificates: %w", err)
	}

	return &tls.Config{
		MinVersion:         tls.VersionTLS13,
		NextProtos:         nextProtos,
		Certificates:       []tls.Certificate{cert},
		InsecureSkipVerify: true, // custom verification below
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			return VerifyPinnedCertificate(caCert, rawCerts)
		},
	}, nil
}

// ServerTLSConfig builds the matching server-side configuration. With a
// non-empty key, client certificates are required and pinned to the
// derived CA; with an empty key the server uses a random single-use
// certificate and accepts any client.
func ServerTLSConfig(key string, nextProtos []string) (*tls.Config, error) {
	caCert, cert, err := GenerateCertificates(key)
	if err != nil {
		return nil, fmt.Errorf("generate certificates: %w", err)
	}

	cfg := &tls.Config{
		MinVersion:   tls.VersionTLS13,
		NextProtos:   nextProtos,
		Certificates: []tls.Certificate{cert},
	}

	if key != "" {
		cfg.ClientAuth = tls.RequireAnyClientCert
		cfg.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			return VerifyPinnedCertificate(caCert, rawCerts)
		}
	}

	return cfg, nil
}
