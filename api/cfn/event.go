package cfn

import (
	"encoding/json"
	"unicode/utf8"

	lambdacfn "github.com/aws/aws-lambda-go/cfn"
)

// Event is a CloudFormation custom resource request.
type Event = lambdacfn.Event

// Response is the document delivered to the pre-signed ResponseURL.
type Response = lambdacfn.Response

// RequestType is the lifecycle operation an Event asks for.
type RequestType = lambdacfn.RequestType

const (
	RequestCreate = lambdacfn.RequestCreate
	RequestUpdate = lambdacfn.RequestUpdate
	RequestDelete = lambdacfn.RequestDelete
)

const (
	StatusSuccess = lambdacfn.StatusSuccess
	StatusFailed  = lambdacfn.StatusFailed
)

// MaxResponseBytes is the largest response body CloudFormation accepts.
const MaxResponseBytes = 4096

const truncationMarker = "..."

// MarshalResponse encodes resp, shortening Reason until the body fits in
// MaxResponseBytes. Data is never truncated.
func MarshalResponse(resp *Response) ([]byte, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	reason := resp.Reason
	for len(body) > MaxResponseBytes && reason != "" {
		overflow := len(body) - MaxResponseBytes
		keep := len(reason) - overflow - len(truncationMarker)
		if keep < 0 {
			keep = 0
		}
		for keep > 0 && !utf8.RuneStart(reason[keep]) {
			keep--
		}
		reason = reason[:keep]

		shortened := *resp
		shortened.Reason = reason + truncationMarker
		if reason == "" {
			shortened.Reason = ""
		}
		if body, err = json.Marshal(&shortened); err != nil {
			return nil, err
		}
	}

	return body, nil
}
