package cfn

import (
	"context"
	"log/slog"

	"github.com/ruteri/cfn-rsakey-provider/interfaces"
	"github.com/ruteri/cfn-rsakey-provider/provider"
)

// ResourceHandler runs a single lifecycle request.
type ResourceHandler interface {
	Handle(ctx context.Context, req interfaces.ResourceRequest) interfaces.Outcome
}

// Dispatcher turns custom resource events into lifecycle requests and
// their outcomes into responses.
type Dispatcher struct {
	handler ResourceHandler
	log     *slog.Logger
}

func NewDispatcher(handler ResourceHandler, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		handler: handler,
		log:     log,
	}
}

// Dispatch handles event and returns the response to report. It never
// fails: every problem becomes a FAILED response with a physical resource id.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) Response {
	log := d.log.With(
		slog.String("requestType", string(event.RequestType)),
		slog.String("requestId", event.RequestID),
		slog.String("logicalResourceId", event.LogicalResourceID))

	kind := interfaces.RequestKind(event.RequestType)
	prior := interfaces.ResourceIdentity(event.PhysicalResourceID)

	if err := kind.Validate(); err != nil {
		log.Warn("Unsupported request type", "err", err)
		return newResponse(event, interfaces.Outcome{Identity: priorOrNotCreated(prior), Reason: err.Error()})
	}

	props, err := provider.ParseProperties(event.ResourceProperties)
	if err != nil && kind != interfaces.KindDelete {
		log.Warn("Rejected resource properties", "err", err)
		return newResponse(event, interfaces.Outcome{Identity: priorOrNotCreated(prior), Reason: err.Error()})
	}

	outcome := d.handler.Handle(ctx, interfaces.ResourceRequest{
		Kind:          kind,
		Properties:    props,
		PriorIdentity: prior,
	})

	if !outcome.Success {
		log.Error("Resource request failed",
			slog.String("physicalResourceId", outcome.Identity.String()),
			slog.String("reason", outcome.Reason))
	}

	return newResponse(event, outcome)
}

func newResponse(event Event, outcome interfaces.Outcome) Response {
	resp := Response{
		Status:             StatusFailed,
		RequestID:          event.RequestID,
		LogicalResourceID:  event.LogicalResourceID,
		StackID:            event.StackID,
		PhysicalResourceID: outcome.Identity.String(),
		Reason:             outcome.Reason,
	}
	if outcome.Success {
		resp.Status = StatusSuccess
	}
	if outcome.Attributes != nil {
		resp.Data = make(map[string]interface{}, 4)
		for k, v := range outcome.Attributes.Map() {
			resp.Data[k] = v
		}
	}
	return resp
}

func priorOrNotCreated(prior interfaces.ResourceIdentity) interfaces.ResourceIdentity {
	if prior == "" {
		return interfaces.NotCreatedIdentity
	}
	return prior
}
