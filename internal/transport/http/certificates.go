package http

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/pkcs12"

	"github.com/oshokin/httpreq/internal/transport"
)

// Static error definitions for better error handling.
var (
	// errCertificate indicates that the client certificate or key could not be loaded.
	errCertificate = errors.New("client certificate problem")
	// errCAFile indicates that the CA bundle could not be loaded.
	errCAFile = errors.New("CA certificate problem")
)

// certificateStore caches parsed client key pairs by their source paths, passwords
// and file modification times, so a file replaced on disk is parsed again.
type certificateStore struct {
	// cache holds parsed key pairs.
	cache *lru.Cache[certificateKey, tls.Certificate]
}

// certificateKey identifies one version of a client key pair.
type certificateKey struct {
	// auth holds the file paths and passwords.
	auth transport.ClientAuth
	// certificateModTime is the certificate file modification time in nanoseconds.
	certificateModTime int64
	// keyModTime is the key file modification time in nanoseconds, zero without a key file.
	keyModTime int64
}

func newCertificateStore(size int) (*certificateStore, error) {
	if size <= 0 {
		size = DefaultCertificateCacheSize
	}

	cache, err := lru.New[certificateKey, tls.Certificate](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate cache: %w", err)
	}

	return &certificateStore{cache: cache}, nil
}

// Load returns the key pair described by auth, parsing it on first use.
func (s *certificateStore) Load(auth transport.ClientAuth) (tls.Certificate, error) {
	key := certificateKey{
		auth:               auth,
		certificateModTime: modTime(auth.Certificate),
		keyModTime:         modTime(auth.Key),
	}

	if cert, ok := s.cache.Get(key); ok {
		return cert, nil
	}

	cert, err := loadClientCertificate(auth)
	if err != nil {
		return tls.Certificate{}, err
	}

	s.cache.Add(key, cert)

	return cert, nil
}

// modTime returns the modification time of path, or zero when it cannot be read.
func modTime(path string) int64 {
	if path == "" {
		return 0
	}

	stat, err := os.Stat(path)
	if err != nil {
		return 0
	}

	return stat.ModTime().UnixNano()
}

// loadClientCertificate reads a PEM certificate with a separate or bundled key,
// or a PKCS#12 archive when the certificate file is not PEM encoded.
func loadClientCertificate(auth transport.ClientAuth) (tls.Certificate, error) {
	if auth.Certificate == "" {
		return tls.Certificate{}, fmt.Errorf("%w: client key %q given without a certificate", errCertificate, auth.Key)
	}

	certData, err := os.ReadFile(auth.Certificate)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %w", errCertificate, err)
	}

	if !bytes.Contains(certData, []byte("-----BEGIN")) {
		return loadPKCS12(certData, auth.CertificatePassword)
	}

	keyData, keyPassword := certData, auth.CertificatePassword

	if auth.Key != "" {
		keyData, err = os.ReadFile(auth.Key)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("%w: %w", errCertificate, err)
		}

		keyPassword = auth.KeyPassword
	}

	keyPEM, err := extractPrivateKey(keyData, keyPassword)
	if err != nil {
		return tls.Certificate{}, err
	}

	cert, err := tls.X509KeyPair(certData, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %w", errCertificate, err)
	}

	return cert, nil
}

// extractPrivateKey finds the private key block and decrypts it if needed.
func extractPrivateKey(data []byte, password string) ([]byte, error) {
	for rest := data; ; {
		var block *pem.Block

		block, rest = pem.Decode(rest)
		if block == nil {
			return nil, fmt.Errorf("%w: no private key found", errCertificate)
		}

		if !strings.HasSuffix(block.Type, "PRIVATE KEY") {
			continue
		}

		//nolint:staticcheck // Legacy encrypted PEM keys are still produced by openssl.
		if !x509.IsEncryptedPEMBlock(block) {
			return pem.EncodeToMemory(block), nil
		}

		//nolint:staticcheck // Legacy encrypted PEM keys are still produced by openssl.
		der, err := x509.DecryptPEMBlock(block, []byte(password))
		if err != nil {
			return nil, fmt.Errorf("%w: decrypt private key: %w", errCertificate, err)
		}

		return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil
	}
}

func loadPKCS12(data []byte, password string) (tls.Certificate, error) {
	key, leaf, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %w", errCertificate, err)
	}

	return tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}

// loadCAPool reads a PEM bundle of trusted authorities.
func loadCAPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCAFile, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("%w: no certificates in %s", errCAFile, path)
	}

	return pool, nil
}
