package cryptoutils

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/ruteri/cfn-rsakey-provider/interfaces"
	"golang.org/x/crypto/ssh"
)

// RSAKeyBits is the modulus size of generated keys. The public exponent is
// always 65537, which is what crypto/rsa uses.
const RSAKeyBits = 2048

const (
	pkcs8PEMType = "PRIVATE KEY"
	pkcs1PEMType = "RSA PRIVATE KEY"
)

// GenerateRSAKeyMaterial creates a new RSA keypair.
// The private key is PKCS8 PEM without encryption, the public key is in
// OpenSSH authorized-key format.
func GenerateRSAKeyMaterial() (interfaces.KeyMaterial, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, RSAKeyBits)
	if err != nil {
		return interfaces.KeyMaterial{}, fmt.Errorf("failed to generate rsa key: %w", err)
	}

	privateKeyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return interfaces.KeyMaterial{}, fmt.Errorf("failed to marshal private key: %w", err)
	}

	publicKey, err := MarshalOpenSSHPublicKey(privateKey.Public())
	if err != nil {
		return interfaces.KeyMaterial{}, err
	}

	return interfaces.KeyMaterial{
		PrivateKey: pem.EncodeToMemory(&pem.Block{Type: pkcs8PEMType, Bytes: privateKeyBytes}),
		PublicKey:  publicKey,
	}, nil
}

// ParsePrivateKeyPEM decodes a PEM private key in PKCS8 or PKCS1 form.
// All failures wrap interfaces.ErrDecode.
func ParsePrivateKeyPEM(keyPEM []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", interfaces.ErrDecode)
	}

	var (
		key any
		err error
	)
	switch block.Type {
	case pkcs8PEMType:
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case pkcs1PEMType:
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block type %q", interfaces.ErrDecode, block.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrDecode, err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported key type %T", interfaces.ErrDecode, key)
	}
	return signer, nil
}

// KeyMaterialFromPrivateKeyPEM derives the public key of a stored private key.
// The private key bytes are kept exactly as given.
func KeyMaterialFromPrivateKeyPEM(keyPEM []byte) (interfaces.KeyMaterial, error) {
	signer, err := ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return interfaces.KeyMaterial{}, err
	}

	publicKey, err := MarshalOpenSSHPublicKey(signer.Public())
	if err != nil {
		return interfaces.KeyMaterial{}, fmt.Errorf("%w: %v", interfaces.ErrDecode, err)
	}

	return interfaces.KeyMaterial{
		PrivateKey: keyPEM,
		PublicKey:  publicKey,
	}, nil
}

// MarshalOpenSSHPublicKey serializes a public key as "ssh-rsa AAAA...",
// without comment and trailing newline.
func MarshalOpenSSHPublicKey(pub crypto.PublicKey) ([]byte, error) {
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh public key: %w", err)
	}
	return bytes.TrimSpace(ssh.MarshalAuthorizedKey(sshPub)), nil
}
