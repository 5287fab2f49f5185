// Package resourcehandler implements an HTTP server and client for the RSA key
// custom resource provider.
//
// Key components:
//   - Handler: accepts CloudFormation custom resource events and serves the
//     public attributes of stored keys
//   - Client: submits events and reads public keys from a running provider
//
// Routes:
//
//	POST /api/v1/custom-resource   event JSON in, response JSON out
//	GET  /api/v1/public-key?name=  Arn, PublicKey, PublicKeyPEM and Hash of a stored key
//
// Private keys are never returned by either route.
package resourcehandler
