package resourcehandler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ruteri/cfn-rsakey-provider/api/cfn"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// Client submits events to a provider served over HTTP.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  http.DefaultClient,
	}
}

// SubmitEvent posts event and returns the response document the server produced.
func (c *Client) SubmitEvent(event cfn.Event) (*cfn.Response, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("could not encode event: %w", err)
	}

	resp, err := c.httpClient().Post(c.BaseURL+"/api/v1/custom-resource", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not reach provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadGateway {
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(respBody))
	}

	var out cfn.Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("could not parse provider response: %w", err)
	}

	if resp.StatusCode == http.StatusBadGateway {
		return &out, fmt.Errorf("provider could not deliver response to the response url")
	}

	return &out, nil
}

// PublicKey fetches the public attributes of the key stored under name.
func (c *Client) PublicKey(name string) (*interfaces.Attributes, error) {
	resp, err := c.httpClient().Get(c.BaseURL + "/api/v1/public-key?name=" + url.QueryEscape(name))
	if err != nil {
		return nil, fmt.Errorf("could not reach provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read provider response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, strings.TrimSpace(string(respBody)))
	default:
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(respBody))
	}

	var attrs interfaces.Attributes
	if err := json.Unmarshal(respBody, &attrs); err != nil {
		return nil, fmt.Errorf("could not parse provider response: %w", err)
	}
	return &attrs, nil
}

func (c *Client) httpClient() *http.Client {
	if c.Client == nil {
		return http.DefaultClient
	}
	return c.Client
}
