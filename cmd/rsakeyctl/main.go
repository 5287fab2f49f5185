package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/cfn-rsakey-provider/api/cfn"
	"github.com/ruteri/cfn-rsakey-provider/api/resourcehandler"
	"github.com/ruteri/cfn-rsakey-provider/cmd/flags"
	"github.com/ruteri/cfn-rsakey-provider/cmd/providercommon"
	"github.com/ruteri/cfn-rsakey-provider/common"
	"github.com/ruteri/cfn-rsakey-provider/httpserver"
	"github.com/urfave/cli/v2"
)

var propertiesFileFlag = &cli.StringFlag{
	Name:    "properties",
	Aliases: []string{"f"},
	Usage:   "YAML or JSON file with resource properties. Flags override its values",
}

var physicalIDFlag = &cli.StringFlag{
	Name:     "physical-id",
	Required: true,
	Usage:    "physical resource id reported for the resource by the previous request",
}

var propertyFlags = []cli.Flag{
	propertiesFileFlag,
	&cli.StringFlag{Name: "name", Usage: "parameter name"},
	&cli.StringFlag{Name: "description", Usage: "parameter description"},
	&cli.StringFlag{Name: "key-alias", Usage: "encryption key alias of the parameter"},
	&cli.BoolFlag{Name: "refresh-on-update", Usage: "generate a new key on update"},
}

func main() {
	app := &cli.App{
		Name:    "rsakeyctl",
		Usage:   "Manage RSA keys kept in a secret store the way the Custom::RSAKey provider does",
		Version: common.Version,
		Flags:   append(append([]cli.Flag{}, flags.CommonFlags...), flags.StoreFlags...),
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Generate a key and store it under a new name",
				Flags:  propertyFlags,
				Action: lifecycleAction(cfn.RequestCreate),
			},
			{
				Name:   "update",
				Usage:  "Update or rename a key",
				Flags:  append(append([]cli.Flag{}, propertyFlags...), physicalIDFlag),
				Action: lifecycleAction(cfn.RequestUpdate),
			},
			{
				Name:   "delete",
				Usage:  "Delete the key named by a physical resource id",
				Flags:  []cli.Flag{physicalIDFlag},
				Action: lifecycleAction(cfn.RequestDelete),
			},
			{
				Name:  "show",
				Usage: "Print the public attributes of a stored key",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Usage: "parameter name"},
				},
				Action: showAction,
			},
			{
				Name:   "serve",
				Usage:  "Serve the provider over HTTP",
				Flags:  flags.ServerFlags,
				Action: serveAction,
			},
			{
				Name:  "invoke",
				Usage: "Submit an event file to a provider served over HTTP",
				Flags: []cli.Flag{
					flags.ProviderURLFlag,
					&cli.StringFlag{Name: "event", Usage: "YAML or JSON custom resource event"},
					&cli.StringFlag{Name: "public-key", Usage: "fetch the public attributes of this name instead"},
				},
				Action: invokeAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func lifecycleAction(requestType cfn.RequestType) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		logger := flags.SetupLogger(cCtx)

		p, err := providercommon.Bootstrap(cCtx.Context, providercommon.OptionsFromFlags(cCtx), logger)
		if err != nil {
			return err
		}

		event := cfn.Event{
			RequestType:        requestType,
			RequestID:          uuid.NewString(),
			ResourceType:       "Custom::RSAKey",
			LogicalResourceID:  "rsakeyctl",
			PhysicalResourceID: cCtx.String(physicalIDFlag.Name),
		}

		if requestType != cfn.RequestDelete {
			overrides := map[string]interface{}{
				"Name":        cCtx.String("name"),
				"Description": cCtx.String("description"),
				"KeyAlias":    cCtx.String("key-alias"),
			}
			if cCtx.IsSet("refresh-on-update") {
				overrides["RefreshOnUpdate"] = cCtx.Bool("refresh-on-update")
			}
			event.ResourceProperties, err = mergeProperties(cCtx.String(propertiesFileFlag.Name), overrides)
			if err != nil {
				return err
			}
		}

		resp := cfn.NewDispatcher(p.Controller, logger).Dispatch(cCtx.Context, event)
		if err := printJSON(resp); err != nil {
			return err
		}
		if resp.Status != cfn.StatusSuccess {
			return cli.Exit("", 1)
		}
		return nil
	}
}

func showAction(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	p, err := providercommon.Bootstrap(cCtx.Context, providercommon.OptionsFromFlags(cCtx), logger)
	if err != nil {
		return err
	}

	attrs, err := p.Controller.Describe(cCtx.Context, cCtx.String("name"))
	if err != nil {
		return err
	}
	return printJSON(attrs)
}

func serveAction(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	p, err := providercommon.Bootstrap(cCtx.Context, providercommon.OptionsFromFlags(cCtx), logger)
	if err != nil {
		logger.Error("Failed to bootstrap provider", "err", err)
		return err
	}

	responder := cfn.NewResponder(&http.Client{Timeout: 30 * time.Second}, logger)
	handler := resourcehandler.NewHandler(cfn.NewDispatcher(p.Controller, logger), responder, p.Controller, logger)

	server, err := httpserver.New(flags.ConfigureServer(cCtx, logger), handler, p.Store.Available)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	return nil
}

func invokeAction(cCtx *cli.Context) error {
	client := resourcehandler.NewClient(cCtx.String(flags.ProviderURLFlag.Name))

	if name := cCtx.String("public-key"); name != "" {
		attrs, err := client.PublicKey(name)
		if err != nil {
			return err
		}
		return printJSON(attrs)
	}

	path := cCtx.String("event")
	if path == "" {
		return errors.New("either --event or --public-key is required")
	}

	event, err := readEvent(path)
	if err != nil {
		return err
	}
	if event.RequestID == "" {
		event.RequestID = uuid.NewString()
	}

	resp, err := client.SubmitEvent(event)
	if resp != nil {
		if perr := printJSON(resp); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	if resp.Status != cfn.StatusSuccess {
		return cli.Exit(fmt.Sprintf("request failed: %s", resp.Reason), 1)
	}
	return nil
}
