package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// AWSSessionConfig configures the AWS session shared by the SSM store and
// the STS account lookup.
type AWSSessionConfig struct {
	Region   string
	Endpoint string
	Profile  string

	// Timeout bounds every HTTP request made by the AWS clients.
	// Zero keeps the SDK default.
	Timeout time.Duration

	// MaxRetries overrides the SDK retry count when non-nil.
	MaxRetries *int
}

// NewAWSSession creates an AWS session. The region falls back to the
// environment and shared config when not set explicitly.
func NewAWSSession(cfg AWSSessionConfig) (*session.Session, error) {
	awsCfg := aws.Config{}
	if cfg.Region != "" {
		awsCfg.Region = aws.String(cfg.Region)
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.Timeout > 0 {
		awsCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxRetries != nil {
		awsCfg.MaxRetries = cfg.MaxRetries
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            awsCfg,
		Profile:           cfg.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	if aws.StringValue(sess.Config.Region) == "" {
		return nil, errors.New("no AWS region configured")
	}

	return sess, nil
}

// SSMStore implements a secret store using AWS Systems Manager Parameter Store.
// Secrets are written as SecureString parameters encrypted with the KMS key
// named by the key alias.
type SSMStore struct {
	client      ssmiface.SSMAPI
	sess        *session.Session
	region      string
	log         *slog.Logger
	locationURI string
}

// NewSSMStore creates a store on top of an SSM client.
func NewSSMStore(client ssmiface.SSMAPI, region string, log *slog.Logger) *SSMStore {
	return &SSMStore{
		client:      client,
		region:      region,
		log:         log,
		locationURI: fmt.Sprintf("ssm://%s", region),
	}
}

// NewSSMStoreFromSession creates a store with an SSM client built from sess.
func NewSSMStoreFromSession(sess *session.Session, log *slog.Logger) *SSMStore {
	store := NewSSMStore(ssm.New(sess), aws.StringValue(sess.Config.Region), log)
	store.sess = sess
	return store
}

// Put writes value as a SecureString parameter.
func (s *SSMStore) Put(ctx context.Context, name string, value []byte, opts interfaces.PutOptions) error {
	start := time.Now()

	input := &ssm.PutParameterInput{
		Name:      aws.String(name),
		Value:     aws.String(string(value)),
		Type:      aws.String(ssm.ParameterTypeSecureString),
		Overwrite: aws.Bool(opts.Overwrite),
	}
	if opts.KeyAlias != "" {
		input.KeyId = aws.String(opts.KeyAlias)
	}
	if opts.Description != "" {
		input.Description = aws.String(opts.Description)
	}

	if _, err := s.client.PutParameterWithContext(ctx, input); err != nil {
		s.log.Error("Failed to put parameter",
			slog.String("name", name),
			slog.Bool("overwrite", opts.Overwrite),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return classifySSMError(err)
	}

	s.log.Debug("Stored parameter in SSM",
		slog.String("name", name),
		slog.String("key_alias", opts.KeyAlias),
		slog.Bool("overwrite", opts.Overwrite),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// Get fetches and decrypts a parameter.
func (s *SSMStore) Get(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()

	out, err := s.client.GetParameterWithContext(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		err = classifySSMError(err)
		if errors.Is(err, interfaces.ErrNotFound) {
			s.log.Debug("Parameter not found in SSM",
				slog.String("name", name),
				slog.Duration("duration", time.Since(start)))
		} else {
			s.log.Error("Failed to get parameter",
				slog.String("name", name),
				"err", err,
				slog.Duration("duration", time.Since(start)))
		}
		return nil, err
	}

	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("%w: parameter %s has no value", interfaces.ErrNotFound, name)
	}

	s.log.Debug("Fetched parameter from SSM",
		slog.String("name", name),
		slog.Duration("duration", time.Since(start)))

	return []byte(aws.StringValue(out.Parameter.Value)), nil
}

// Delete removes a parameter. A missing parameter is not an error.
func (s *SSMStore) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteParameterWithContext(ctx, &ssm.DeleteParameterInput{
		Name: aws.String(name),
	})
	if err != nil {
		err = classifySSMError(err)
		if errors.Is(err, interfaces.ErrNotFound) {
			s.log.Debug("Parameter already deleted", slog.String("name", name))
			return nil
		}
		s.log.Error("Failed to delete parameter", slog.String("name", name), "err", err)
		return err
	}

	s.log.Debug("Deleted parameter from SSM", slog.String("name", name))
	return nil
}

// Available checks if the SSM API is reachable with the current credentials.
func (s *SSMStore) Available(ctx context.Context) bool {
	_, err := s.client.DescribeParametersWithContext(ctx, &ssm.DescribeParametersInput{
		MaxResults: aws.Int64(1),
	})
	if err != nil {
		s.log.Warn("SSM store unavailable", slog.String("region", s.region), "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this store.
func (s *SSMStore) Name() string {
	return fmt.Sprintf("ssm-%s", s.region)
}

// LocationURI returns the URI that identifies this store.
func (s *SSMStore) LocationURI() string {
	return s.locationURI
}

// Region returns the AWS region parameters are written to.
func (s *SSMStore) Region() string {
	return s.region
}

// Session returns the AWS session the store was created from, or nil.
func (s *SSMStore) Session() *session.Session {
	return s.sess
}

// classifySSMError maps SSM error codes onto the store error taxonomy.
// The original error text is kept in the message.
func classifySSMError(err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case ssm.ErrCodeParameterAlreadyExists:
			return fmt.Errorf("%w: %v", interfaces.ErrAlreadyExists, err)
		case ssm.ErrCodeParameterNotFound:
			return fmt.Errorf("%w: %v", interfaces.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
}
