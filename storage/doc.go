// Package storage provides the secret stores RSA private keys are persisted in.
//
// Every store implements interfaces.SecretStore:
//
//	type SecretStore interface {
//	    Put(ctx context.Context, name string, value []byte, opts PutOptions) error
//	    Get(ctx context.Context, name string) ([]byte, error)
//	    Delete(ctx context.Context, name string) error
//	    Available(ctx context.Context) bool
//	    Name() string
//	    LocationURI() string
//	}
//
// Stores map their native failures onto a shared set of errors so callers can
// branch with errors.Is:
//
//   - interfaces.ErrAlreadyExists when Put without overwrite hits an existing name
//   - interfaces.ErrNotFound when Get finds nothing
//   - interfaces.ErrStoreUnavailable for transport, permission and throttling failures
//
// Delete of a missing name succeeds on every store.
//
// # Store URI Format
//
// Stores are selected with a URI:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - ssm://us-east-1?endpoint=http://localhost:4566&profile=dev
//   - vault://vault.example.com:8200/secret/rsakeys
//   - vault://s.token@127.0.0.1:8200/secret/rsakeys?tls=false
//   - file:///var/lib/rsakeys
//   - memory://
//
// # SSM Parameter Store
//
// SSMStore writes SecureString parameters. The key alias is passed as the KMS
// key id and an empty description is omitted. ParameterAlreadyExists and
// ParameterNotFound are the only codes with their own meaning; everything
// else is reported as unavailable.
//
// # Vault
//
// VaultStore uses the KV v2 engine. Writes without overwrite carry
// options.cas=0 and a check-and-set rejection maps to ErrAlreadyExists.
// Delete removes the metadata path so no versions are left behind.
//
// # Usage Example
//
//	factory := storage.NewSecretStoreFactory(logger, 10*time.Second)
//
//	location, err := interfaces.NewSecretStoreLocation("ssm://eu-west-1")
//	if err != nil {
//	    log.Fatalf("Invalid store URI: %v", err)
//	}
//
//	store, err := factory.SecretStoreFor(location)
//	if err != nil {
//	    log.Fatalf("Failed to create store: %v", err)
//	}
package storage
