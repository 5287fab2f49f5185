package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/cfn-rsakey-provider/api"
	"github.com/ruteri/cfn-rsakey-provider/common"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *api.HTTPServerConfig {
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var StoreURIFlag = &cli.StringFlag{
	Name:    "store-uri",
	Value:   "ssm://",
	EnvVars: []string{"RSAKEY_STORE_URI"},
	Usage:   "secret store to keep keys in: ssm://[region], vault://[token@]host:port/mount/path, file:///dir or memory://",
}

var RegionFlag = &cli.StringFlag{
	Name:    "region",
	EnvVars: []string{"RSAKEY_REGION", "AWS_REGION"},
	Usage:   "region embedded in resource identities, and used for ssm:// URIs without one",
}

var AccountFlag = &cli.StringFlag{
	Name:    "account",
	EnvVars: []string{"RSAKEY_ACCOUNT"},
	Usage:   "account embedded in resource identities. Looked up with STS for ssm:// stores when empty",
}

var DefaultKeyAliasFlag = &cli.StringFlag{
	Name:    "default-key-alias",
	Value:   interfaces.DefaultKeyAlias,
	EnvVars: []string{"RSAKEY_DEFAULT_KEY_ALIAS"},
	Usage:   "encryption key alias used when KeyAlias is not set",
}

var StoreTimeoutFlag = &cli.DurationFlag{
	Name:    "store-timeout",
	Value:   10 * time.Second,
	EnvVars: []string{"RSAKEY_STORE_TIMEOUT"},
	Usage:   "timeout of a single secret store request",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var ProviderURLFlag = &cli.StringFlag{
	Name:  "provider-url",
	Value: "http://127.0.0.1:8080",
	Usage: "base URL of a running provider API",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlagFn(common.PackageName),
}

var StoreFlags = []cli.Flag{
	StoreURIFlag,
	RegionFlag,
	AccountFlag,
	DefaultKeyAliasFlag,
	StoreTimeoutFlag,
}

var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	PprofFlag,
	DrainSecondsFlag,
}
