package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// LookupAccount returns the AWS account id of the caller's credentials.
// It is meant to be called once at startup.
func LookupAccount(ctx context.Context, client stsiface.STSAPI) (string, error) {
	out, err := client.GetCallerIdentityWithContext(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("%w: failed to get caller identity: %v", interfaces.ErrStoreUnavailable, err)
	}

	account := aws.StringValue(out.Account)
	if account == "" {
		return "", fmt.Errorf("caller identity has no account")
	}
	return account, nil
}

// ResolverFromSTS builds a resolver for region, looking the account up with STS.
func ResolverFromSTS(ctx context.Context, client stsiface.STSAPI, region string, log *slog.Logger) (*Resolver, error) {
	account, err := LookupAccount(ctx, client)
	if err != nil {
		return nil, err
	}

	log.Debug("Resolved account scope",
		slog.String("region", region),
		slog.String("account", account))

	return NewResolver(region, account)
}
