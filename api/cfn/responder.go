package cfn

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Responder delivers responses to the pre-signed S3 URL of an event.
type Responder struct {
	Client *http.Client
	log    *slog.Logger
}

// NewResponder creates a responder using client, or http.DefaultClient when nil.
func NewResponder(client *http.Client, log *slog.Logger) *Responder {
	if client == nil {
		client = http.DefaultClient
	}
	return &Responder{Client: client, log: log}
}

// Send PUTs resp to url once. The pre-signed URL is signed without a
// content type, so none is sent.
func (r *Responder) Send(ctx context.Context, url string, resp Response) error {
	start := time.Now()

	body, err := MarshalResponse(&resp)
	if err != nil {
		return fmt.Errorf("could not encode response: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not initialize request: %w", err)
	}
	req.Header.Set("Content-Type", "")
	req.ContentLength = int64(len(body))

	res, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("could not deliver response: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("response url returned %d: %s", res.StatusCode, string(msg))
	}

	r.log.Info("Delivered custom resource response",
		slog.String("status", string(resp.Status)),
		slog.String("physicalResourceId", resp.PhysicalResourceID),
		slog.Duration("duration", time.Since(start)))

	return nil
}
