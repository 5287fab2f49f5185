package providercommon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/ruteri/cfn-rsakey-provider/cmd/flags"
	"github.com/ruteri/cfn-rsakey-provider/config"
	"github.com/ruteri/cfn-rsakey-provider/identity"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
	"github.com/ruteri/cfn-rsakey-provider/kms"
	"github.com/ruteri/cfn-rsakey-provider/provider"
	"github.com/ruteri/cfn-rsakey-provider/storage"
	"github.com/urfave/cli/v2"
)

// Identity scope used by stores outside AWS when none is configured.
const (
	LocalRegion  = "local"
	LocalAccount = "000000000000"
)

// Options select the secret store and identity scope of a provider.
type Options struct {
	StoreURI        string
	Region          string
	Account         string
	DefaultKeyAlias string
	StoreTimeout    time.Duration
}

func OptionsFromFlags(cCtx *cli.Context) Options {
	return Options{
		StoreURI:        cCtx.String(flags.StoreURIFlag.Name),
		Region:          cCtx.String(flags.RegionFlag.Name),
		Account:         cCtx.String(flags.AccountFlag.Name),
		DefaultKeyAlias: cCtx.String(flags.DefaultKeyAliasFlag.Name),
		StoreTimeout:    cCtx.Duration(flags.StoreTimeoutFlag.Name),
	}
}

func OptionsFromSettings(s config.Settings) Options {
	return Options{
		StoreURI:        s.StoreURI,
		Region:          s.Region,
		Account:         s.Account,
		DefaultKeyAlias: s.DefaultKeyAlias,
		StoreTimeout:    s.StoreTimeout,
	}
}

// Provider bundles the components built by Bootstrap.
type Provider struct {
	Controller *provider.Controller
	Store      interfaces.SecretStore
}

// Bootstrap connects to the configured store and resolves the identity
// scope once. For ssm:// stores the region comes from the AWS session and
// the account, unless configured, from STS.
func Bootstrap(ctx context.Context, opts Options, logger *slog.Logger) (*Provider, error) {
	location, err := interfaces.NewSecretStoreLocation(opts.StoreURI)
	if err != nil {
		return nil, err
	}

	factory := storage.NewSecretStoreFactory(logger, opts.StoreTimeout).WithDefaultRegion(opts.Region)
	store, err := factory.SecretStoreFor(location)
	if err != nil {
		return nil, fmt.Errorf("could not create secret store: %w", err)
	}

	resolver, err := resolveScope(ctx, store, opts, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Using secret store",
		slog.String("store", store.Name()),
		slog.String("region", resolver.Region()),
		slog.String("account", resolver.Account()))

	controller, err := provider.New(&provider.Config{
		Store:           store,
		Keys:            kms.NewRSAKMS(store, logger),
		Resolver:        resolver,
		DefaultKeyAlias: opts.DefaultKeyAlias,
		Log:             logger,
	})
	if err != nil {
		return nil, err
	}

	return &Provider{Controller: controller, Store: store}, nil
}

func resolveScope(ctx context.Context, store interfaces.SecretStore, opts Options, logger *slog.Logger) (*identity.Resolver, error) {
	ssmStore, ok := store.(*storage.SSMStore)
	if !ok {
		region, account := opts.Region, opts.Account
		if region == "" {
			region = LocalRegion
		}
		if account == "" {
			account = LocalAccount
		}
		return identity.NewResolver(region, account)
	}

	if opts.Account != "" {
		return identity.NewResolver(ssmStore.Region(), opts.Account)
	}

	if ssmStore.Session() == nil {
		return nil, errors.New("account is required for ssm stores without an AWS session")
	}
	resolver, err := identity.ResolverFromSTS(ctx, sts.New(ssmStore.Session()), ssmStore.Region(), logger)
	if err != nil {
		return nil, fmt.Errorf("could not resolve account: %w", err)
	}
	return resolver, nil
}
