package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ruteri/cfn-rsakey-provider/api/cfn"
	"github.com/ruteri/cfn-rsakey-provider/cmd/providercommon"
	"github.com/ruteri/cfn-rsakey-provider/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func newTestHandler(t *testing.T) (EventHandler, *storage.MemoryStore) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := providercommon.Bootstrap(context.Background(), providercommon.Options{StoreURI: "memory://"}, log)
	require.NoError(t, err)

	store, ok := p.Store.(*storage.MemoryStore)
	require.True(t, ok)

	handler := newEventHandler(cfn.NewDispatcher(p.Controller, log), cfn.NewResponder(nil, log), log)
	return handler, store
}

func createEvent(responseURL string) cfn.Event {
	return cfn.Event{
		RequestType:        cfn.RequestCreate,
		RequestID:          "req-1",
		ResponseURL:        responseURL,
		LogicalResourceID:  "Key",
		ResourceProperties: map[string]interface{}{"Name": "svc/key1"},
	}
}

func TestEventHandlerDeliversResponse(t *testing.T) {
	var delivered cfn.Response
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&delivered))
	}))
	defer sink.Close()

	handler, store := newTestHandler(t)

	require.NoError(t, handler(context.Background(), createEvent(sink.URL)))
	assert.Equal(t, cfn.StatusSuccess, delivered.Status)
	assert.Equal(t, "arn:aws:ssm:local:000000000000:parameter/svc/key1", delivered.PhysicalResourceID)

	_, ok := store.Entry("svc/key1")
	assert.True(t, ok)
}

func TestEventHandlerSwallowsDeliveryFailure(t *testing.T) {
	var uploads atomic.Int32
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploads.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<Error><Code>AccessDenied</Code></Error>"))
	}))
	defer sink.Close()

	handler, store := newTestHandler(t)

	// The invocation must not fail: a retry would create the key again
	// and report AlreadyExists for a key this request stored.
	assert.NoError(t, handler(context.Background(), createEvent(sink.URL)))
	assert.Equal(t, int32(1), uploads.Load())

	_, ok := store.Entry("svc/key1")
	assert.True(t, ok)
}
