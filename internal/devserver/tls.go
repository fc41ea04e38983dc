package devserver

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

var (
	ErrCertExpired     = errors.New("certificate has expired")
	ErrCertNotYetValid = errors.New("certificate is not valid yet")
)

// LoadTLS loads a PEM certificate and key for serving HTTPS. A certificate
// outside its validity window at now is rejected.
func LoadTLS(certFile, keyFile string, now time.Time) (*tls.Config, error) {
	pair, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("loading certificate: %w", err)
	}
	if len(pair.Certificate) == 0 {
		return nil, errors.New("failed to parse certificate PEM")
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("parsing certificate: %w", err)
	}
	if err := checkValidity(leaf, now); err != nil {
		return nil, fmt.Errorf("%s: %w", certFile, err)
	}
	pair.Leaf = leaf
	return &tls.Config{
		Certificates: []tls.Certificate{pair},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func checkValidity(cert *x509.Certificate, now time.Time) error {
	if cert.NotAfter.Before(now) {
		return ErrCertExpired
	}
	if cert.NotBefore.After(now) {
		return ErrCertNotYetValid
	}
	return nil
}
