package app

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/goliatone/go-hatool/pkg/config"
)

// tlsConfig returns nil when the defaults of net/http apply.
func tlsConfig(cfg config.TLSConfig) (*tls.Config, error) {
	if !cfg.InsecureSkipVerify && cfg.CAFile == "" {
		return nil, nil
	}
	out := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("tls: read ca_file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("tls: no certificates found in %s", cfg.CAFile)
		}
		out.RootCAs = pool
	}
	return out, nil
}
