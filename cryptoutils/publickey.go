package cryptoutils

import (
	"crypto/md5"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"

	"github.com/ruteri/cfn-rsakey-provider/interfaces"
	"golang.org/x/crypto/ssh"
)

// OpenSSHToPEM converts an OpenSSH authorized-key line into PEM.
// RSA keys become a PKCS1 "RSA PUBLIC KEY" block, other key types a PKIX
// "PUBLIC KEY" block.
func OpenSSHToPEM(authorizedKey []byte) ([]byte, error) {
	sshPub, _, _, _, err := ssh.ParseAuthorizedKey(authorizedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openssh public key: %w", err)
	}

	cryptoPub, ok := sshPub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, fmt.Errorf("unsupported openssh key type %s", sshPub.Type())
	}

	if rsaPub, ok := cryptoPub.CryptoPublicKey().(*rsa.PublicKey); ok {
		return pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PUBLIC KEY",
			Bytes: x509.MarshalPKCS1PublicKey(rsaPub),
		}), nil
	}

	der, err := x509.MarshalPKIXPublicKey(cryptoPub.CryptoPublicKey())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// PublicKeyHash returns the hex MD5 digest of the OpenSSH public key bytes.
// It is a change marker for templates, not a security fingerprint.
func PublicKeyHash(publicKey []byte) string {
	sum := md5.Sum(publicKey)
	return hex.EncodeToString(sum[:])
}

// DeriveAttributes computes the published attributes of key material.
func DeriveAttributes(id interfaces.ResourceIdentity, km interfaces.KeyMaterial) (*interfaces.Attributes, error) {
	publicKeyPEM, err := OpenSSHToPEM(km.PublicKey)
	if err != nil {
		return nil, err
	}

	return &interfaces.Attributes{
		Arn:          id.String(),
		PublicKey:    string(km.PublicKey),
		PublicKeyPEM: string(publicKeyPEM),
		Hash:         PublicKeyHash(km.PublicKey),
	}, nil
}
