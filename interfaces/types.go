package interfaces

import (
	"fmt"
)

// DefaultKeyAlias is the AWS managed KMS key used by Systems Manager for SecureString parameters.
const DefaultKeyAlias = "alias/aws/ssm"

// NotCreatedIdentity is reported as the resource identity when no secret
// could be written. Deleting it is a no-op because it never parses.
const NotCreatedIdentity = ResourceIdentity("could-not-create")

// RequestKind is the lifecycle operation requested by the orchestrator.
type RequestKind string

const (
	KindCreate RequestKind = "Create"
	KindUpdate RequestKind = "Update"
	KindDelete RequestKind = "Delete"
)

// Validate checks the kind is one of Create, Update or Delete.
func (k RequestKind) Validate() error {
	switch k {
	case KindCreate, KindUpdate, KindDelete:
		return nil
	default:
		return fmt.Errorf("unsupported request kind %q", string(k))
	}
}

// ResourceIdentity is the locator string naming a provisioned secret
// (the physical resource id), e.g. arn:aws:ssm:eu-west-1:123456789012:parameter/svc/key1.
type ResourceIdentity string

// String returns the identity as a string.
func (id ResourceIdentity) String() string {
	return string(id)
}

// KeyMaterial holds a keypair in its serialized forms.
type KeyMaterial struct {
	// PrivateKey is the unencrypted PKCS8 private key in PEM format.
	PrivateKey []byte

	// PublicKey is the public key in OpenSSH authorized-key format, without trailing newline.
	PublicKey []byte
}

// Properties are the desired resource properties after boundary normalization.
type Properties struct {
	Name            string `json:"Name" yaml:"Name"`
	Description     string `json:"Description" yaml:"Description"`
	KeyAlias        string `json:"KeyAlias" yaml:"KeyAlias"`
	RefreshOnUpdate bool   `json:"RefreshOnUpdate" yaml:"RefreshOnUpdate"`
	Version         string `json:"Version,omitempty" yaml:"Version,omitempty"`
}

// ResourceRequest is a single lifecycle request handed to the controller.
type ResourceRequest struct {
	Kind       RequestKind
	Properties Properties

	// PriorIdentity is the last identity reported for the resource.
	// Only set on Update and Delete.
	PriorIdentity ResourceIdentity
}

// Attribute names published on success.
const (
	AttributeArn          = "Arn"
	AttributePublicKey    = "PublicKey"
	AttributePublicKeyPEM = "PublicKeyPEM"
	AttributeHash         = "Hash"
)

// Attributes are the public values derived from the current key material.
type Attributes struct {
	Arn          string `json:"Arn"`
	PublicKey    string `json:"PublicKey"`
	PublicKeyPEM string `json:"PublicKeyPEM"`
	Hash         string `json:"Hash"`
}

// Map returns the attributes keyed by their published names.
func (a Attributes) Map() map[string]string {
	return map[string]string{
		AttributeArn:          a.Arn,
		AttributePublicKey:    a.PublicKey,
		AttributePublicKeyPEM: a.PublicKeyPEM,
		AttributeHash:         a.Hash,
	}
}

// Outcome is the result of a lifecycle request.
// Identity is always set, on failure too.
type Outcome struct {
	Success  bool
	Identity ResourceIdentity
	Reason   string

	// Attributes is nil unless key material was published.
	Attributes *Attributes
}
