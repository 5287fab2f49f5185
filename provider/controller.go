package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruteri/cfn-rsakey-provider/cryptoutils"
	"github.com/ruteri/cfn-rsakey-provider/identity"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// Config holds everything the controller needs. It is built once at
// startup and never mutated afterwards.
type Config struct {
	Store    interfaces.SecretStore
	Keys     interfaces.KeyManager
	Resolver *identity.Resolver

	// DefaultKeyAlias replaces an empty KeyAlias. Defaults to interfaces.DefaultKeyAlias.
	DefaultKeyAlias string

	Log *slog.Logger
}

// Controller runs the Create/Update/Delete lifecycle of an RSA key
// kept in a secret store. It holds no state between requests.
type Controller struct {
	store           interfaces.SecretStore
	keys            interfaces.KeyManager
	resolver        *identity.Resolver
	defaultKeyAlias string
	log             *slog.Logger
}

// New creates a controller from cfg.
func New(cfg *Config) (*Controller, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Store == nil || cfg.Keys == nil || cfg.Resolver == nil {
		return nil, errors.New("store, key manager and resolver are required")
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	keyAlias := cfg.DefaultKeyAlias
	if keyAlias == "" {
		keyAlias = interfaces.DefaultKeyAlias
	}

	return &Controller{
		store:           cfg.Store,
		keys:            cfg.Keys,
		resolver:        cfg.Resolver,
		defaultKeyAlias: keyAlias,
		log:             log,
	}, nil
}

// Resolver returns the identity resolver the controller computes identities with.
func (c *Controller) Resolver() *identity.Resolver {
	return c.resolver
}

// Handle dispatches req by kind. The returned outcome always carries an identity.
func (c *Controller) Handle(ctx context.Context, req interfaces.ResourceRequest) interfaces.Outcome {
	start := time.Now()

	var outcome interfaces.Outcome
	switch req.Kind {
	case interfaces.KindCreate:
		outcome = c.Create(ctx, req.Properties)
	case interfaces.KindUpdate:
		outcome = c.Update(ctx, req.Properties, req.PriorIdentity)
	case interfaces.KindDelete:
		outcome = c.Delete(ctx, req.PriorIdentity)
	default:
		outcome = failure(priorOrNotCreated(req.PriorIdentity), req.Kind.Validate())
	}

	c.log.Info("Handled resource request",
		slog.String("kind", string(req.Kind)),
		slog.String("name", req.Properties.Name),
		slog.String("identity", outcome.Identity.String()),
		slog.Bool("success", outcome.Success),
		slog.Duration("duration", time.Since(start)))

	return outcome
}

// Create generates a new key and stores it without overwriting.
// Any existing entry with the same name makes Create fail.
func (c *Controller) Create(ctx context.Context, props interfaces.Properties) interfaces.Outcome {
	if err := ValidateName(props.Name); err != nil {
		return failure(interfaces.NotCreatedIdentity, err)
	}

	km := c.keys.Generate()
	return c.publish(ctx, props, km, false)
}

// Update stores the key for props again, either freshly generated
// (RefreshOnUpdate) or fetched from the store by name. Overwriting is only
// allowed when prior still points at the same name, so a renamed resource
// never clobbers an unrelated entry.
func (c *Controller) Update(ctx context.Context, props interfaces.Properties, prior interfaces.ResourceIdentity) interfaces.Outcome {
	if err := ValidateName(props.Name); err != nil {
		return failure(priorOrNotCreated(prior), err)
	}

	overwrite := prior == c.resolver.Compute(props.Name)

	var km interfaces.KeyMaterial
	if props.RefreshOnUpdate {
		km = c.keys.Generate()
	} else {
		fetched, err := c.keys.Fetch(ctx, props.Name)
		if err != nil {
			c.log.Error("Failed to fetch existing key",
				slog.String("name", props.Name),
				slog.String("prior", prior.String()),
				"err", err)
			return failure(interfaces.NotCreatedIdentity, err)
		}
		km = fetched
	}

	return c.publish(ctx, props, km, overwrite)
}

// Delete removes the entry prior points at. Identities that do not parse
// never referred to a stored entry and are ignored.
func (c *Controller) Delete(ctx context.Context, prior interfaces.ResourceIdentity) interfaces.Outcome {
	name, ok := identity.ParseLogicalName(prior)
	if !ok {
		c.log.Debug("Ignoring unparseable identity", slog.String("identity", prior.String()))
		return interfaces.Outcome{
			Success:  true,
			Identity: priorOrNotCreated(prior),
			Reason:   fmt.Sprintf("System Parameter with the name %s is ignored", prior),
		}
	}

	if err := c.store.Delete(ctx, name); err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			c.log.Error("Failed to delete parameter",
				slog.String("name", name),
				slog.String("store", c.store.Name()),
				"err", err)
			return failure(prior, err)
		}
	}

	return interfaces.Outcome{
		Success:  true,
		Identity: prior,
		Reason:   fmt.Sprintf("System Parameter with the name %s is deleted", name),
	}
}

// Describe derives the public attributes of the key stored under name
// without writing anything.
func (c *Controller) Describe(ctx context.Context, name string) (*interfaces.Attributes, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	km, err := c.keys.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	return cryptoutils.DeriveAttributes(c.resolver.Compute(name), km)
}

// publish derives the attributes of km, then writes km under props.Name.
// Nothing is written when the attributes cannot be derived.
func (c *Controller) publish(ctx context.Context, props interfaces.Properties, km interfaces.KeyMaterial, overwrite bool) interfaces.Outcome {
	keyAlias := props.KeyAlias
	if keyAlias == "" {
		keyAlias = c.defaultKeyAlias
	}

	id := c.resolver.Compute(props.Name)
	attrs, err := cryptoutils.DeriveAttributes(id, km)
	if err != nil {
		return failure(interfaces.NotCreatedIdentity, err)
	}

	err = c.store.Put(ctx, props.Name, km.PrivateKey, interfaces.PutOptions{
		KeyAlias:    keyAlias,
		Description: props.Description,
		Overwrite:   overwrite,
	})
	if err != nil {
		c.log.Error("Failed to store key",
			slog.String("name", props.Name),
			slog.Bool("overwrite", overwrite),
			slog.String("store", c.store.Name()),
			"err", err)
		return failure(interfaces.NotCreatedIdentity, err)
	}

	c.log.Debug("Published key",
		slog.String("name", props.Name),
		slog.String("identity", id.String()),
		slog.String("hash", attrs.Hash),
		slog.Bool("overwrite", overwrite))

	return interfaces.Outcome{
		Success:    true,
		Identity:   id,
		Attributes: attrs,
	}
}

func failure(id interfaces.ResourceIdentity, err error) interfaces.Outcome {
	return interfaces.Outcome{
		Identity: id,
		Reason:   err.Error(),
	}
}

func priorOrNotCreated(prior interfaces.ResourceIdentity) interfaces.ResourceIdentity {
	if prior == "" {
		return interfaces.NotCreatedIdentity
	}
	return prior
}
