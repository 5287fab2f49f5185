package interfaces

import "errors"

var (
	// ErrValidation is returned when resource properties are malformed.
	// It is raised before any secret store interaction.
	ErrValidation = errors.New("invalid resource properties")

	// ErrAlreadyExists is returned when a store write is rejected because
	// overwrite was disallowed and an entry with the same name exists.
	ErrAlreadyExists = errors.New("secret already exists")

	// ErrNotFound is returned when the requested secret does not exist.
	ErrNotFound = errors.New("secret not found")

	// ErrDecode is returned when a stored value is not a valid private key.
	ErrDecode = errors.New("stored value is not a valid private key")

	// ErrStoreUnavailable is returned for transport, authentication, throttling
	// and timeout failures of the secret store.
	ErrStoreUnavailable = errors.New("secret store unavailable")

	// ErrInvalidLocationURI is returned when a secret store URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid secret store location URI")
)
