package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/ruteri/cfn-rsakey-provider/api/cfn"
	"github.com/ruteri/cfn-rsakey-provider/cmd/providercommon"
	"github.com/ruteri/cfn-rsakey-provider/common"
	"github.com/ruteri/cfn-rsakey-provider/config"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := common.SetupLogger(settings.LoggingOpts())

	p, err := providercommon.Bootstrap(context.Background(), providercommon.OptionsFromSettings(settings), logger)
	if err != nil {
		logger.Error("Failed to bootstrap provider", "err", err)
		log.Fatal(err)
	}

	dispatcher := cfn.NewDispatcher(p.Controller, logger)
	responder := cfn.NewResponder(&http.Client{Timeout: settings.ResponseTimeout}, logger)

	lambda.Start(newEventHandler(dispatcher, responder, logger))
}
