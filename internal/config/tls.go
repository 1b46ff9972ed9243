package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
)

var ErrBadCACert = errors.New("failed to parse CA certificate")

// PostgresTLSConfig returns nil when no CA is configured; sslmode in the
// URL then decides.
func (c *Config) PostgresTLSConfig() (*tls.Config, error) {
	if c.DBCACert == "" {
		return nil, nil
	}
	rootCertPool := x509.NewCertPool()
	if ok := rootCertPool.AppendCertsFromPEM([]byte(c.DBCACert)); !ok {
		return nil, ErrBadCACert
	}
	return &tls.Config{
		RootCAs:    rootCertPool,
		ServerName: c.DBHost,
		MinVersion: tls.VersionTLS12,
	}, nil
}

// KafkaTLSConfig returns nil for a plaintext connection when no CA is set.
func (c *Config) KafkaTLSConfig() (*tls.Config, error) {
	if c.KafkaCACert == "" {
		return nil, nil
	}
	rootCertPool := x509.NewCertPool()
	if ok := rootCertPool.AppendCertsFromPEM([]byte(c.KafkaCACert)); !ok {
		return nil, ErrBadCACert
	}

	cfg := &tls.Config{
		RootCAs:    rootCertPool,
		ServerName: brokerHost(c.KafkaBrokers), // must match SAN in certificate
		MinVersion: tls.VersionTLS12,
	}
	if c.KafkaCert != "" {
		pair, err := tls.X509KeyPair([]byte(c.KafkaCert), []byte(c.KafkaKey))
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{pair}
	}
	return cfg, nil
}

// brokerHost extracts the host of the first broker, with or without port.
func brokerHost(brokers []string) string {
	if len(brokers) == 0 {
		return ""
	}
	host, _, err := net.SplitHostPort(brokers[0])
	if err != nil {
		return brokers[0]
	}
	return host
}
