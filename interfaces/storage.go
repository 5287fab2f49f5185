package interfaces

import (
	"context"
	"fmt"
	"net/url"
)

// PutOptions controls how a secret is written.
type PutOptions struct {
	// KeyAlias names the KMS key used to encrypt the value at rest.
	KeyAlias string

	// Description is stored with the secret when non-empty.
	Description string

	// Overwrite allows replacing an existing secret with the same name.
	// When false the write fails with ErrAlreadyExists if the name is taken.
	Overwrite bool
}

// SecretStore stores named encrypted parameters.
type SecretStore interface {
	// Put stores value under name. Fails with ErrAlreadyExists when
	// opts.Overwrite is false and the name exists.
	Put(ctx context.Context, name string, value []byte, opts PutOptions) error

	// Get fetches and decrypts the value stored under name.
	// Returns ErrNotFound if absent.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes name. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// Available checks if the store is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this store.
	LocationURI() string
}

// SecretStoreLocation represents URI for a secret store.
type SecretStoreLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	User   *url.Userinfo
}

// NewSecretStoreLocation creates a new store location from a URI string with validation.
func NewSecretStoreLocation(uri string) (SecretStoreLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return SecretStoreLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	switch parsed.Scheme {
	case "ssm", "vault", "file", "memory":
	default:
		return SecretStoreLocation{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocationURI, parsed.Scheme)
	}

	return SecretStoreLocation{
		Raw:    uri,
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		User:   parsed.User,
	}, nil
}

// String returns the original URI string.
func (loc SecretStoreLocation) String() string {
	return loc.Raw
}

// IsAWS checks if this location is backed by AWS Systems Manager.
func (loc SecretStoreLocation) IsAWS() bool {
	return loc.Scheme == "ssm"
}

// GetParam returns a query parameter value.
func (loc SecretStoreLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool returns a boolean query parameter value.
func (loc SecretStoreLocation) GetParamBool(name string) bool {
	value := loc.Query.Get(name)
	return value == "true" || value == "1" || value == "yes"
}

// SecretStoreFactory creates secret stores.
type SecretStoreFactory interface {
	// SecretStoreFor creates a store from a location.
	// Supports ssm://, vault://, file://, memory://
	SecretStoreFor(location SecretStoreLocation) (SecretStore, error)
}
