package main

import (
	"context"
	"log/slog"

	"github.com/ruteri/cfn-rsakey-provider/api/cfn"
)

// EventHandler handles one custom resource event per invocation.
type EventHandler func(ctx context.Context, event cfn.Event) error

// newEventHandler dispatches the event and uploads its response. A failed
// upload is logged and not returned: a retried invocation would run the
// lifecycle operation a second time for the same request.
func newEventHandler(dispatcher *cfn.Dispatcher, responder *cfn.Responder, log *slog.Logger) EventHandler {
	return func(ctx context.Context, event cfn.Event) error {
		resp := dispatcher.Dispatch(ctx, event)

		if err := responder.Send(ctx, event.ResponseURL, resp); err != nil {
			log.Error("Failed to deliver response",
				slog.String("requestId", event.RequestID),
				slog.String("status", string(resp.Status)),
				slog.String("physicalResourceId", resp.PhysicalResourceID),
				"err", err)
		}
		return nil
	}
}
