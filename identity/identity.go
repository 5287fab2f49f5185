package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// Scheme is the fixed locator prefix of an SSM parameter ARN.
const Scheme = "arn:aws:ssm"

const parameterPrefix = "parameter/"

// Locator is a parsed resource identity.
type Locator struct {
	Region  string
	Account string
	Name    string
}

// Compute returns the resource identity for a logical name in the given scope:
//
//	arn:aws:ssm:<region>:<account>:parameter/<name>
//
// The result is deterministic, and distinct (region, account, name) triples
// yield distinct identities as long as region and account contain no colon.
func Compute(region, account, name string) interfaces.ResourceIdentity {
	return interfaces.ResourceIdentity(fmt.Sprintf("%s:%s:%s:%s%s", Scheme, region, account, parameterPrefix, name))
}

// Parse splits an identity back into its components.
// Returns false if the string does not follow the locator grammar.
func Parse(id interfaces.ResourceIdentity) (Locator, bool) {
	rest, ok := strings.CutPrefix(string(id), Scheme+":")
	if !ok {
		return Locator{}, false
	}

	parts := strings.SplitN(rest, ":", 3)
	if len(parts) != 3 {
		return Locator{}, false
	}

	name, ok := strings.CutPrefix(parts[2], parameterPrefix)
	if !ok || name == "" {
		return Locator{}, false
	}

	return Locator{Region: parts[0], Account: parts[1], Name: name}, true
}

// ParseLogicalName returns the logical name embedded in an identity.
// ok is false for identities that never pointed at a secret, such as
// interfaces.NotCreatedIdentity.
func ParseLogicalName(id interfaces.ResourceIdentity) (string, bool) {
	loc, ok := Parse(id)
	if !ok {
		return "", false
	}
	return loc.Name, true
}

// Resolver computes identities within a fixed region and account,
// resolved once when the provider starts.
type Resolver struct {
	region  string
	account string
}

// NewResolver creates a resolver for the given scope.
func NewResolver(region, account string) (*Resolver, error) {
	if region == "" || account == "" {
		return nil, errors.New("region and account are required")
	}
	if strings.Contains(region, ":") || strings.Contains(account, ":") {
		return nil, fmt.Errorf("region %q and account %q must not contain ':'", region, account)
	}
	return &Resolver{region: region, account: account}, nil
}

// Compute returns the identity of name in the resolver's scope.
func (r *Resolver) Compute(name string) interfaces.ResourceIdentity {
	return Compute(r.region, r.account, name)
}

// Region returns the region embedded in computed identities.
func (r *Resolver) Region() string {
	return r.region
}

// Account returns the account embedded in computed identities.
func (r *Resolver) Account() string {
	return r.account
}
