// Package kms provides the key material services of the RSA key provider.
//
// RSAKMS implements interfaces.KeyManager:
//
//	// KeyGenerator produces fresh key material.
//	type KeyGenerator interface {
//		Generate() KeyMaterial
//	}
//
//	// KeyFetcher loads existing key material from a secret store.
//	type KeyFetcher interface {
//		Fetch(ctx context.Context, name string) (KeyMaterial, error)
//	}
//
// # Generation
//
// Generate creates an RSA-2048 keypair with public exponent 65537. It has no
// error path: a failing entropy source is fatal and panics.
//
// # Fetching
//
// Fetch reads the private key back from the secret store the key manager was
// created with, decodes it and derives the public key. The private key bytes
// are returned exactly as stored so that re-publishing them is a no-op.
// Missing secrets surface as interfaces.ErrNotFound and undecodable values as
// interfaces.ErrDecode.
//
// # Usage Example
//
//	store := storage.NewMemoryStore(logger)
//	keys := kms.NewRSAKMS(store, logger)
//
//	km := keys.Generate()
//	err := store.Put(ctx, "svc/key1", km.PrivateKey, interfaces.PutOptions{})
//
//	fetched, err := keys.Fetch(ctx, "svc/key1")
//	// fetched.PublicKey equals km.PublicKey
package kms
