package app

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// loadTLSConfig reads the static certificate/key pair. Both files must exist
// before anything is served.
func loadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" {
		return nil, errors.New("app: TLS certificate file is required")
	}
	if keyFile == "" {
		return nil, errors.New("app: TLS key file is required")
	}

	certPEM, err := readPEM(certFile)
	if err != nil {
		return nil, fmt.Errorf("app: read certificate: %w", err)
	}
	keyPEM, err := readPEM(keyFile)
	if err != nil {
		return nil, fmt.Errorf("app: read key: %w", err)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("app: parse certificate: %w", err)
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}

func readPEM(path string) ([]byte, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	return os.ReadFile(abs)
}
