// Package cryptoutils provides the key material primitives of the RSA key provider.
//
// # Key Functions
//
//   - GenerateRSAKeyMaterial: a fresh RSA-2048 keypair, e=65537. The private key is
//     serialized as unencrypted PKCS8 PEM, the public key in OpenSSH authorized-key
//     format ("ssh-rsa AAAA...", no comment, no trailing newline).
//   - ParsePrivateKeyPEM / KeyMaterialFromPrivateKeyPEM: decode a stored private key
//     (PKCS8 or PKCS1) and derive its OpenSSH public key. Failures wrap
//     interfaces.ErrDecode.
//   - OpenSSHToPEM: convert the OpenSSH public key to a PKCS1 "RSA PUBLIC KEY" block.
//   - PublicKeyHash: hex MD5 of the OpenSSH public key bytes.
//   - DeriveAttributes: everything published for a resource, computed from the
//     current key material only.
package cryptoutils
