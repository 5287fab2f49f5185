package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/ruteri/cfn-rsakey-provider/common"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "RSAKEY"

// Settings configures the provider when it runs without command line flags,
// as it does inside Lambda.
type Settings struct {
	StoreURI        string        `envconfig:"STORE_URI" default:"ssm://"`
	Region          string        `envconfig:"REGION"`
	Account         string        `envconfig:"ACCOUNT"`
	DefaultKeyAlias string        `envconfig:"DEFAULT_KEY_ALIAS" default:"alias/aws/ssm"`
	StoreTimeout    time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
	ResponseTimeout time.Duration `envconfig:"RESPONSE_TIMEOUT" default:"30s"`

	LogJSON    bool   `envconfig:"LOG_JSON" default:"true"`
	LogDebug   bool   `envconfig:"LOG_DEBUG" default:"false"`
	LogService string `envconfig:"LOG_SERVICE" default:"cfn-rsakey-provider"`
}

// Load reads Settings from RSAKEY_* variables. An unset region falls back
// to AWS_REGION, which the Lambda runtime always provides.
func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	if s.Region == "" {
		s.Region = os.Getenv("AWS_REGION")
	}
	if s.DefaultKeyAlias == "" {
		s.DefaultKeyAlias = interfaces.DefaultKeyAlias
	}

	if _, err := interfaces.NewSecretStoreLocation(s.StoreURI); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoggingOpts returns the logger options described by s.
func (s Settings) LoggingOpts() *common.LoggingOpts {
	return &common.LoggingOpts{
		Debug:   s.LogDebug,
		JSON:    s.LogJSON,
		Service: s.LogService,
		Version: common.Version,
	}
}
