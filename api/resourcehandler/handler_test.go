package resourcehandler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/cfn-rsakey-provider/api/cfn"
	"github.com/ruteri/cfn-rsakey-provider/identity"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
	"github.com/ruteri/cfn-rsakey-provider/kms"
	"github.com/ruteri/cfn-rsakey-provider/provider"
	"github.com/ruteri/cfn-rsakey-provider/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnvironment wires a handler on top of an in-memory store.
func setupTestEnvironment(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemoryStore(logger)

	resolver, err := identity.NewResolver("local", "000000000000")
	require.NoError(t, err)

	controller, err := provider.New(&provider.Config{
		Store:    store,
		Keys:     kms.NewRSAKMS(store, logger),
		Resolver: resolver,
		Log:      logger,
	})
	require.NoError(t, err)

	handler := NewHandler(cfn.NewDispatcher(controller, logger), cfn.NewResponder(nil, logger), controller, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

// responseSink records responses PUT to a pre-signed URL.
type responseSink struct {
	mu        sync.Mutex
	responses []cfn.Response
	status    int
}

func (s *responseSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resp cfn.Response
	json.NewDecoder(r.Body).Decode(&resp)
	s.responses = append(s.responses, resp)
	if s.status != 0 {
		w.WriteHeader(s.status)
	}
}

func TestHandleCustomResource_Lifecycle(t *testing.T) {
	srv, store := setupTestEnvironment(t)
	sink := &responseSink{}
	sinkSrv := httptest.NewServer(sink)
	defer sinkSrv.Close()

	client := NewClient(srv.URL)

	created, err := client.SubmitEvent(cfn.Event{
		RequestType:        cfn.RequestCreate,
		RequestID:          "req-1",
		ResponseURL:        sinkSrv.URL,
		LogicalResourceID:  "Key",
		ResourceProperties: map[string]interface{}{"Name": "svc/key1", "Description": "test"},
	})
	require.NoError(t, err)
	assert.Equal(t, cfn.StatusSuccess, created.Status, created.Reason)
	assert.Equal(t, "arn:aws:ssm:local:000000000000:parameter/svc/key1", created.PhysicalResourceID)
	assert.True(t, strings.HasPrefix(created.Data["PublicKey"].(string), "ssh-rsa "))

	sink.mu.Lock()
	require.Len(t, sink.responses, 1)
	assert.Equal(t, created.PhysicalResourceID, sink.responses[0].PhysicalResourceID)
	sink.mu.Unlock()

	attrs, err := client.PublicKey("svc/key1")
	require.NoError(t, err)
	assert.Equal(t, created.Data["Hash"], attrs.Hash)

	deleted, err := client.SubmitEvent(cfn.Event{
		RequestType:        cfn.RequestDelete,
		RequestID:          "req-2",
		PhysicalResourceID: created.PhysicalResourceID,
		ResourceProperties: map[string]interface{}{"Name": "svc/key1"},
	})
	require.NoError(t, err)
	assert.Equal(t, cfn.StatusSuccess, deleted.Status)

	_, ok := store.Entry("svc/key1")
	assert.False(t, ok)

	_, err = client.PublicKey("svc/key1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestHandleCustomResource_DeliveryFailure(t *testing.T) {
	srv, _ := setupTestEnvironment(t)
	sink := &responseSink{status: http.StatusForbidden}
	sinkSrv := httptest.NewServer(sink)
	defer sinkSrv.Close()

	resp, err := NewClient(srv.URL).SubmitEvent(cfn.Event{
		RequestType:        cfn.RequestDelete,
		RequestID:          "req-1",
		ResponseURL:        sinkSrv.URL,
		PhysicalResourceID: "could-not-create",
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, cfn.StatusSuccess, resp.Status)
	assert.Equal(t, "System Parameter with the name could-not-create is ignored", resp.Reason)
}

func TestHandleCustomResource_BadRequests(t *testing.T) {
	srv, _ := setupTestEnvironment(t)

	tests := []struct {
		name       string
		body       []byte
		wantStatus int
	}{
		{name: "invalid json", body: []byte("{not json"), wantStatus: http.StatusBadRequest},
		{name: "too large", body: bytes.Repeat([]byte("a"), maxEventBytes+1), wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/custom-resource", "application/json", bytes.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHandlePublicKey_InvalidName(t *testing.T) {
	srv, _ := setupTestEnvironment(t)

	resp, err := http.Get(srv.URL + "/api/v1/public-key?name=bad+name")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
