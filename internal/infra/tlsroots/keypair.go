package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"
)

// KeyPair serves a certificate that can be swapped while the listener is
// running. A failed reload keeps the previous certificate.
type KeyPair struct {
	certFile string
	keyFile  string

	mu   sync.RWMutex
	cert *tls.Certificate
}

// LoadKeyPair reads the certificate and key files.
func LoadKeyPair(certFile, keyFile string) (*KeyPair, error) {
	kp := &KeyPair{certFile: certFile, keyFile: keyFile}
	if err := kp.Reload(); err != nil {
		return nil, err
	}
	return kp, nil
}

// Reload re-reads both files.
func (kp *KeyPair) Reload() error {
	cert, err := tls.LoadX509KeyPair(kp.certFile, kp.keyFile)
	if err != nil {
		return fmt.Errorf("tlsroots: load key pair: %w", err)
	}
	if cert.Leaf == nil && len(cert.Certificate) > 0 {
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return fmt.Errorf("tlsroots: parse leaf: %w", err)
		}
		cert.Leaf = leaf
	}

	kp.mu.Lock()
	kp.cert = &cert
	kp.mu.Unlock()
	return nil
}

// Files returns the certificate and key paths.
func (kp *KeyPair) Files() (certFile, keyFile string) {
	return kp.certFile, kp.keyFile
}

// NotAfter returns the expiry of the current leaf certificate.
func (kp *KeyPair) NotAfter() time.Time {
	kp.mu.RLock()
	defer kp.mu.RUnlock()
	if kp.cert == nil || kp.cert.Leaf == nil {
		return time.Time{}
	}
	return kp.cert.Leaf.NotAfter
}

// GetCertificate implements tls.Config.GetCertificate.
func (kp *KeyPair) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	kp.mu.RLock()
	defer kp.mu.RUnlock()
	return kp.cert, nil
}

// ServerConfig returns a server TLS config backed by the key pair.
func (kp *KeyPair) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: kp.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}
