// Package interfaces defines core interfaces and types for the RSA key
// provider, separating interface definitions from implementations.
//
// # Storage Interfaces
//
// SecretStore: put/get/delete of named encrypted parameters, implemented by
// the SSM, Vault, file and in-memory backends in package storage.
//
// SecretStoreFactory: creates secret stores from location URIs.
//
// # Key Interfaces
//
// KeyGenerator and KeyFetcher produce KeyMaterial, either freshly generated
// or loaded back from a SecretStore.
//
// # Lifecycle Types
//
//   - ResourceRequest: lifecycle kind, normalized Properties and the prior identity
//   - ResourceIdentity: the locator string reported to the orchestrator
//   - Outcome and Attributes: what a request publishes
//
// # Error Types
//
// ErrValidation, ErrAlreadyExists, ErrNotFound, ErrDecode and
// ErrStoreUnavailable classify failures. Implementations wrap the underlying
// cause so that errors.Is works while the original message is kept.
package interfaces
