/*
Package api provides the transport layer of the RSA key custom resource provider.

This package is organized into two subpackages:

1. cfn - CloudFormation custom resource events, dispatching and response delivery
2. resourcehandler - HTTP handler and client serving the same events over a REST API

HTTPServerConfig configures the HTTP server that hosts resourcehandler.

# Request Flow

	event -> cfn.Dispatcher -> provider.Controller -> secret store
	      <- cfn.Response   <- interfaces.Outcome

The Lambda entrypoint sends the response to the event's pre-signed URL with
cfn.Responder. The HTTP server does the same and also returns the response in
the HTTP body.
*/
package api
