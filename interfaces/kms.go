package interfaces

import "context"

// KeyGenerator produces fresh key material.
type KeyGenerator interface {
	Generate() KeyMaterial
}

// KeyFetcher loads existing key material from a secret store.
type KeyFetcher interface {
	// Fetch retrieves the private key stored under name and derives its public key.
	// Fails with ErrNotFound or ErrDecode.
	Fetch(ctx context.Context, name string) (KeyMaterial, error)
}

// KeyManager generates new keys and fetches stored ones.
type KeyManager interface {
	KeyGenerator
	KeyFetcher
}
