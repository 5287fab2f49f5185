package cryptoutils

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/ruteri/cfn-rsakey-provider/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRSAKeyMaterial(t *testing.T) {
	km, err := GenerateRSAKeyMaterial()
	require.NoError(t, err)

	block, rest := pem.Decode(km.PrivateKey)
	require.NotNil(t, block)
	assert.Empty(t, rest)
	assert.Equal(t, "PRIVATE KEY", block.Type)

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	rsaKey, ok := key.(*rsa.PrivateKey)
	require.True(t, ok)
	assert.Equal(t, RSAKeyBits, rsaKey.N.BitLen())
	assert.Equal(t, 65537, rsaKey.E)

	assert.True(t, strings.HasPrefix(string(km.PublicKey), "ssh-rsa "))
	assert.NotContains(t, string(km.PublicKey), "\n")
}

func TestGenerateRSAKeyMaterialIsFresh(t *testing.T) {
	a, err := GenerateRSAKeyMaterial()
	require.NoError(t, err)
	b, err := GenerateRSAKeyMaterial()
	require.NoError(t, err)

	assert.NotEqual(t, a.PublicKey, b.PublicKey)
	assert.NotEqual(t, a.PrivateKey, b.PrivateKey)
}

func TestKeyMaterialFromPrivateKeyPEM(t *testing.T) {
	km, err := GenerateRSAKeyMaterial()
	require.NoError(t, err)

	derived, err := KeyMaterialFromPrivateKeyPEM(km.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, km.PrivateKey, derived.PrivateKey)
	assert.Equal(t, km.PublicKey, derived.PublicKey)
}

func TestKeyMaterialFromPKCS1(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, RSAKeyBits)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	derived, err := KeyMaterialFromPrivateKeyPEM(keyPEM)
	require.NoError(t, err)

	expected, err := MarshalOpenSSHPublicKey(key.Public())
	require.NoError(t, err)
	assert.Equal(t, expected, derived.PublicKey)
}

func TestParsePrivateKeyPEMErrors(t *testing.T) {
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	ecDER, err := x509.MarshalECPrivateKey(ecKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"not pem", []byte("not a valid PEM")},
		{"certificate block", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1, 2, 3}})},
		{"garbage pkcs8", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1, 2, 3}})},
		{"ec key labelled as rsa", pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: ecDER})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := KeyMaterialFromPrivateKeyPEM(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, interfaces.ErrDecode)
		})
	}
}

func TestOpenSSHToPEM(t *testing.T) {
	km, err := GenerateRSAKeyMaterial()
	require.NoError(t, err)

	pubPEM, err := OpenSSHToPEM(km.PublicKey)
	require.NoError(t, err)

	block, _ := pem.Decode(pubPEM)
	require.NotNil(t, block)
	assert.Equal(t, "RSA PUBLIC KEY", block.Type)

	pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
	require.NoError(t, err)

	signer, err := ParsePrivateKeyPEM(km.PrivateKey)
	require.NoError(t, err)
	assert.True(t, pub.Equal(signer.Public()))

	_, err = OpenSSHToPEM([]byte("ssh-rsa not-base64"))
	assert.Error(t, err)
}

func TestPublicKeyHash(t *testing.T) {
	assert.Equal(t, "870e774cb97e2df7620ea0ad19efc964", PublicKeyHash([]byte("ssh-rsa AAAA")))
	assert.Len(t, PublicKeyHash([]byte("x")), 32)
	assert.Equal(t, PublicKeyHash([]byte("same")), PublicKeyHash([]byte("same")))
	assert.NotEqual(t, PublicKeyHash([]byte("a")), PublicKeyHash([]byte("b")))
}

func TestDeriveAttributes(t *testing.T) {
	km, err := GenerateRSAKeyMaterial()
	require.NoError(t, err)

	id := interfaces.ResourceIdentity("arn:aws:ssm:eu-west-1:123456789012:parameter/svc/key1")
	attrs, err := DeriveAttributes(id, km)
	require.NoError(t, err)

	assert.Equal(t, id.String(), attrs.Arn)
	assert.Equal(t, string(km.PublicKey), attrs.PublicKey)
	assert.Equal(t, PublicKeyHash(km.PublicKey), attrs.Hash)
	assert.True(t, strings.HasPrefix(attrs.PublicKeyPEM, "-----BEGIN RSA PUBLIC KEY-----"))
}
