// Package crypto generates the deterministic, key-seeded certificates
// used for shared-key mutual TLS authentication. Both peers derive the
// same CA from the key, so each side can pin the other's certificate
// chain without distributing files.
package crypto

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// GenerateCertificates derives a CA from the seed and issues a fresh
// leaf certificate signed by it. An empty seed produces a random,
// single-use CA.
func GenerateCertificates(seed string) (*x509.CertPool, tls.Certificate, error) {
	var caCert *x509.CertPool
	var cert tls.Certificate
	var err error

	// if seed is unspecified we use a random one
	if seed == "" {
		seed, err = GenerateRandomString(32)
		if err != nil {
			return caCert, cert, fmt.Errorf("GenerateRandomString(32): %s", err)
		}
	}

	caKeyPEM, caCertPEM, err := generateKeyPair(seed)
	if err != nil {
		return caCert, cert, fmt.Errorf("generateKeyPair(seed): %s", err)
	}

	caCert = x509.NewCertPool()
	caCert.AppendCertsFromPEM(caCertPEM)

	cert, err = generateCertificate(caCertPEM, caKeyPEM)
	if err != nil {
		return caCert, cert, fmt.Errorf("generateCertificate(cert, key): %s", err)
	}

	return caCert, cert, nil
}

// VerifyPinnedCertificate validates a peer certificate against the CA
// pool derived from the shared key. It cares only about the root
// certificate, not SANs, since derived certificates carry random names.
func VerifyPinnedCertificate(caCert *x509.CertPool, rawCerts [][]byte) error {
	if len(rawCerts) != 1 {
		return fmt.Errorf("unexpected number of raw certs: %d", len(rawCerts))
	}

	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("parse certificate: %s", err)
	}

	if _, err := cert.Verify(x509.VerifyOptions{
		Roots: caCert,
	}); err != nil {
		return fmt.Errorf("verify certificate: %s", err)
	}

	return nil
}
