package kms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruteri/cfn-rsakey-provider/cryptoutils"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// GenerateFunc produces fresh key material.
type GenerateFunc func() (interfaces.KeyMaterial, error)

// RSAKMS generates RSA key material and loads previously stored keys back
// from a secret store.
type RSAKMS struct {
	store    interfaces.SecretStore
	generate GenerateFunc
	log      *slog.Logger
}

// NewRSAKMS creates a key manager reading stored keys from store.
func NewRSAKMS(store interfaces.SecretStore, log *slog.Logger) *RSAKMS {
	return &RSAKMS{
		store:    store,
		generate: cryptoutils.GenerateRSAKeyMaterial,
		log:      log,
	}
}

// WithGenerator creates a new RSAKMS using the given generator.
// Used to plug deterministic keys into tests.
func (k *RSAKMS) WithGenerator(generate GenerateFunc) *RSAKMS {
	return &RSAKMS{
		store:    k.store,
		generate: generate,
		log:      k.log,
	}
}

// Generate returns a fresh RSA-2048 keypair.
// Running out of entropy is not recoverable and panics.
func (k *RSAKMS) Generate() interfaces.KeyMaterial {
	start := time.Now()

	km, err := k.generate()
	if err != nil {
		panic(fmt.Sprintf("rsa key generation failed: %v", err))
	}

	k.log.Debug("Generated key material",
		slog.Duration("duration", time.Since(start)))

	return km
}

// Fetch retrieves the private key stored under name and derives its public key.
// Returns an error wrapping interfaces.ErrNotFound when the secret is absent and
// interfaces.ErrDecode when it does not hold a private key.
func (k *RSAKMS) Fetch(ctx context.Context, name string) (interfaces.KeyMaterial, error) {
	value, err := k.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			k.log.Debug("Stored key not found",
				slog.String("name", name),
				slog.String("store", k.store.Name()))
		}
		return interfaces.KeyMaterial{}, err
	}

	km, err := cryptoutils.KeyMaterialFromPrivateKeyPEM(value)
	if err != nil {
		k.log.Error("Stored value is not a private key",
			slog.String("name", name),
			slog.String("store", k.store.Name()),
			"err", err)
		return interfaces.KeyMaterial{}, fmt.Errorf("parameter %s: %w", name, err)
	}

	return km, nil
}
