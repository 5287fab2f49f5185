package resourcehandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/cfn-rsakey-provider/api/cfn"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// maxEventBytes bounds the size of an accepted custom resource event.
const maxEventBytes = 1 << 16

// KeyDescriber reads the public attributes of a stored key.
type KeyDescriber interface {
	Describe(ctx context.Context, name string) (*interfaces.Attributes, error)
}

// Handler serves custom resource events over HTTP, for deployments where
// CloudFormation reaches the provider through an SNS subscription or a
// proxy rather than by invoking a Lambda function.
type Handler struct {
	dispatcher *cfn.Dispatcher
	responder  *cfn.Responder
	keys       KeyDescriber
	log        *slog.Logger
}

// NewHandler creates a new HTTP request handler. responder may be nil, in
// which case responses are only returned to the caller.
func NewHandler(dispatcher *cfn.Dispatcher, responder *cfn.Responder, keys KeyDescriber, log *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		responder:  responder,
		keys:       keys,
		log:        log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/custom-resource", h.HandleCustomResource)
	r.Get("/api/v1/public-key", h.HandlePublicKey)
}

// HandleCustomResource processes a custom resource event.
//
// URL format: POST /api/v1/custom-resource
// Request body: the CloudFormation event JSON
//
// The response JSON is returned in the body. When the event carries a
// ResponseURL it is also delivered there; a failed delivery is reported
// with 502 and the response document in the body.
func (h *Handler) HandleCustomResource(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes+1))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) > maxEventBytes {
		http.Error(w, "Event too large", http.StatusRequestEntityTooLarge)
		return
	}

	var event cfn.Event
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, fmt.Errorf("invalid event: %w", err).Error(), http.StatusBadRequest)
		return
	}

	resp := h.dispatcher.Dispatch(r.Context(), event)

	status := http.StatusOK
	if event.ResponseURL != "" && h.responder != nil {
		if err := h.responder.Send(r.Context(), event.ResponseURL, resp); err != nil {
			h.log.Error("Failed to deliver response",
				slog.String("requestId", event.RequestID),
				"err", err)
			status = http.StatusBadGateway
		}
	}

	encoded, err := cfn.MarshalResponse(&resp)
	if err != nil {
		h.log.Error("Failed to encode response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(encoded)
}

// HandlePublicKey returns the public attributes of a stored key.
//
// URL format: GET /api/v1/public-key?name=svc/key1
func (h *Handler) HandlePublicKey(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	attrs, err := h.keys.Describe(r.Context(), name)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, interfaces.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, interfaces.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, interfaces.ErrStoreUnavailable):
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(attrs); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}
