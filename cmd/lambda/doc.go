/*
Command lambda runs the Custom::RSAKey provider as an AWS Lambda function.

Each invocation receives one CloudFormation custom resource event, runs the
requested lifecycle operation and uploads the response to the event's
pre-signed ResponseURL. Configuration is read from the environment:

  - RSAKEY_STORE_URI - secret store, defaults to ssm:// in the function's region
  - RSAKEY_REGION - identity region, defaults to AWS_REGION
  - RSAKEY_ACCOUNT - identity account, looked up with STS when empty
  - RSAKEY_DEFAULT_KEY_ALIAS - encryption key alias when KeyAlias is not set
  - RSAKEY_STORE_TIMEOUT, RSAKEY_RESPONSE_TIMEOUT - request timeouts
  - RSAKEY_LOG_JSON, RSAKEY_LOG_DEBUG, RSAKEY_LOG_SERVICE - logging
*/
package main
