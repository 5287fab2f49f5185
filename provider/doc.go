// Package provider implements the lifecycle of an RSA keypair resource.
//
// The Controller maps Create, Update and Delete requests onto secret store
// operations:
//
//   - Create generates a key and writes it with overwrite disabled.
//   - Update writes either a fresh key (RefreshOnUpdate) or the key already
//     stored under the name. Overwrite is enabled only when the prior
//     identity equals the identity computed for the current name.
//   - Delete parses the prior identity and removes the named entry. A
//     missing entry counts as deleted and an unparseable identity is ignored.
//
// Every outcome carries an identity. Failed writes report
// interfaces.NotCreatedIdentity so that a later Delete is a no-op, and a
// failed Delete keeps the prior identity so it can be retried.
//
// The controller never retries store operations; each request performs at
// most one write or delete.
//
// Public attributes (Arn, PublicKey, PublicKeyPEM, Hash) are derived from
// the key material being written on every successful Create and Update.
package provider
