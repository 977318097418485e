package certs

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

// ErrExpired is returned when the serving certificate is past NotAfter.
var ErrExpired = errors.New("certificate expired")

// CertManager loads the dashboard's TLS key pair.
type CertManager struct {
	certFile string
	keyFile  string
	now      func() time.Time
}

// NewCertManager creates a CertManager for the given PEM files.
func NewCertManager(certFile, keyFile string) *CertManager {
	return &CertManager{certFile: certFile, keyFile: keyFile, now: time.Now}
}

// Load reads the key pair and parses the leaf certificate.
func (cm *CertManager) Load() (tls.Certificate, *x509.Certificate, error) {
	pair, err := tls.LoadX509KeyPair(cm.certFile, cm.keyFile)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("load key pair: %w", err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("parse certificate: %w", err)
	}
	pair.Leaf = leaf
	if cm.IsExpired(leaf) {
		return pair, leaf, ErrExpired
	}
	return pair, leaf, nil
}

// TLSConfig returns a server TLS config serving the loaded pair.
func (cm *CertManager) TLSConfig() (*tls.Config, *x509.Certificate, error) {
	pair, leaf, err := cm.Load()
	if err != nil {
		return nil, leaf, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{pair},
		MinVersion:   tls.VersionTLS12,
	}, leaf, nil
}

// IsExpired checks if a certificate is expired.
func (cm *CertManager) IsExpired(cert *x509.Certificate) bool {
	return cert.NotAfter.Before(cm.now())
}

// ExpiresWithin reports whether cert expires inside d.
func (cm *CertManager) ExpiresWithin(cert *x509.Certificate, d time.Duration) bool {
	return cert.NotAfter.Before(cm.now().Add(d))
}
