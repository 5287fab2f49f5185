// Package cfn adapts the RSA key controller to CloudFormation custom resources.
//
// A custom resource event carries the request type, the declared resource
// properties and, for Update and Delete, the physical resource id reported
// previously. Dispatcher parses the properties, runs the controller and
// builds the response:
//
//	{
//	  "Status": "SUCCESS",
//	  "PhysicalResourceId": "arn:aws:ssm:eu-west-1:123456789012:parameter/svc/key1",
//	  "Data": {"Arn": "...", "PublicKey": "ssh-rsa ...", "PublicKeyPEM": "...", "Hash": "..."},
//	  ...
//	}
//
// Invalid properties fail Create and Update before any store access. Delete
// only needs the physical resource id and ignores the properties.
//
// Responder uploads the response to the event's ResponseURL with a single
// PUT. Redelivery is left to CloudFormation.
package cfn
