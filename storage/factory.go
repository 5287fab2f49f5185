package storage

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// SecretStoreFactory creates secret stores from location URIs.
type SecretStoreFactory struct {
	log     *slog.Logger
	timeout time.Duration
	region  string
}

// NewSecretStoreFactory creates a new factory. timeout bounds each request
// the created stores make to remote services; zero keeps client defaults.
func NewSecretStoreFactory(logger *slog.Logger, timeout time.Duration) *SecretStoreFactory {
	return &SecretStoreFactory{
		log:     logger,
		timeout: timeout,
	}
}

// WithDefaultRegion creates a new factory using region for ssm:// URIs
// that do not name one.
func (sf *SecretStoreFactory) WithDefaultRegion(region string) *SecretStoreFactory {
	return &SecretStoreFactory{
		log:     sf.log,
		timeout: sf.timeout,
		region:  region,
	}
}

// SecretStoreFor creates a secret store from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - ssm:// - AWS Systems Manager Parameter Store
//   - vault:// - HashiCorp Vault KV v2
//   - file:// - Local filesystem storage
//   - memory:// - Process memory, lost on exit
func (sf *SecretStoreFactory) SecretStoreFor(location interfaces.SecretStoreLocation) (interfaces.SecretStore, error) {
	switch strings.ToLower(location.Scheme) {
	case "ssm":
		return sf.createSSMStore(location)
	case "vault":
		return sf.createVaultStore(location)
	case "file":
		return sf.createFileStore(location)
	case "memory":
		return NewMemoryStore(sf.log), nil
	default:
		return nil, fmt.Errorf("%w: unsupported store scheme %q", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// createSSMStore creates an SSM Parameter Store backed store.
// URI format: ssm://[region]?endpoint=http://localhost:4566&profile=dev
// Without a region in the URI the factory default, then AWS_REGION and the
// shared config region are used.
func (sf *SecretStoreFactory) createSSMStore(location interfaces.SecretStoreLocation) (interfaces.SecretStore, error) {
	sf.log.Debug("Creating SSM store", slog.String("uri", location.String()))

	region := location.Host
	if region == "" {
		region = sf.region
	}

	// Store requests run at most once: a timed out write may have been
	// applied and must not be sent again.
	sess, err := NewAWSSession(AWSSessionConfig{
		Region:     region,
		Endpoint:   location.GetParam("endpoint"),
		Profile:    location.GetParam("profile"),
		Timeout:    sf.timeout,
		MaxRetries: aws.Int(0),
	})
	if err != nil {
		return nil, err
	}

	return NewSSMStoreFromSession(sess, sf.log), nil
}

// createVaultStore creates a Vault KV v2 store.
// URI format: vault://[token@]host:port/mount/path?tls=false
// The token falls back to VAULT_TOKEN when absent from the URI.
func (sf *SecretStoreFactory) createVaultStore(location interfaces.SecretStoreLocation) (interfaces.SecretStore, error) {
	sf.log.Debug("Creating Vault store", slog.String("host", location.Host))

	if location.Host == "" {
		return nil, fmt.Errorf("%w: vault URI requires a host", interfaces.ErrInvalidLocationURI)
	}

	scheme := "https"
	if location.GetParam("tls") != "" && !location.GetParamBool("tls") {
		scheme = "http"
	}
	address := fmt.Sprintf("%s://%s", scheme, location.Host)

	parts := strings.SplitN(strings.Trim(location.Path, "/"), "/", 2)
	mountPath := parts[0]
	if mountPath == "" {
		mountPath = "secret"
	}
	dataPath := ""
	if len(parts) > 1 {
		dataPath = parts[1]
	}

	token := os.Getenv("VAULT_TOKEN")
	if location.User != nil && location.User.Username() != "" {
		token = location.User.Username()
	}

	return NewVaultStore(address, mountPath, dataPath, token, sf.timeout, sf.log)
}

// createFileStore creates a local filesystem store.
// URI format: file:///var/lib/rsakeys
func (sf *SecretStoreFactory) createFileStore(location interfaces.SecretStoreLocation) (interfaces.SecretStore, error) {
	sf.log.Debug("Creating file store", slog.String("path", location.Path))

	baseDir := location.Path
	if location.Host != "" {
		// file://relative/dir
		baseDir = location.Host + location.Path
	}

	return NewFileStore(baseDir, sf.log)
}
