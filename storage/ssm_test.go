package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// fakeSSM keeps parameters in a map and records the last put request.
type fakeSSM struct {
	ssmiface.SSMAPI

	params  map[string]string
	lastPut *ssm.PutParameterInput
	err     error
}

func newFakeSSM() *fakeSSM {
	return &fakeSSM{params: make(map[string]string)}
}

func (f *fakeSSM) PutParameterWithContext(ctx aws.Context, in *ssm.PutParameterInput, _ ...request.Option) (*ssm.PutParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastPut = in
	name := aws.StringValue(in.Name)
	if _, ok := f.params[name]; ok && !aws.BoolValue(in.Overwrite) {
		return nil, awserr.New(ssm.ErrCodeParameterAlreadyExists, "The parameter already exists.", nil)
	}
	f.params[name] = aws.StringValue(in.Value)
	return &ssm.PutParameterOutput{Version: aws.Int64(1)}, nil
}

func (f *fakeSSM) GetParameterWithContext(ctx aws.Context, in *ssm.GetParameterInput, _ ...request.Option) (*ssm.GetParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !aws.BoolValue(in.WithDecryption) {
		return nil, errors.New("expected decryption")
	}
	value, ok := f.params[aws.StringValue(in.Name)]
	if !ok {
		return nil, awserr.New(ssm.ErrCodeParameterNotFound, "", nil)
	}
	return &ssm.GetParameterOutput{Parameter: &ssm.Parameter{Name: in.Name, Value: aws.String(value)}}, nil
}

func (f *fakeSSM) DeleteParameterWithContext(ctx aws.Context, in *ssm.DeleteParameterInput, _ ...request.Option) (*ssm.DeleteParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	name := aws.StringValue(in.Name)
	if _, ok := f.params[name]; !ok {
		return nil, awserr.New(ssm.ErrCodeParameterNotFound, "", nil)
	}
	delete(f.params, name)
	return &ssm.DeleteParameterOutput{}, nil
}

func (f *fakeSSM) DescribeParametersWithContext(ctx aws.Context, in *ssm.DescribeParametersInput, _ ...request.Option) (*ssm.DescribeParametersOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.DescribeParametersOutput{}, nil
}

func TestSSMStore(t *testing.T) {
	store := NewSSMStore(newFakeSSM(), "eu-west-1", testLogger())
	storeContract(t, store)

	assert.Equal(t, "ssm-eu-west-1", store.Name())
	assert.Equal(t, "ssm://eu-west-1", store.LocationURI())
}

func TestSSMStorePutRequest(t *testing.T) {
	tests := []struct {
		name            string
		opts            interfaces.PutOptions
		wantKeyID       *string
		wantDescription *string
	}{
		{
			name:            "alias and description",
			opts:            interfaces.PutOptions{KeyAlias: "alias/aws/ssm", Description: "service key"},
			wantKeyID:       aws.String("alias/aws/ssm"),
			wantDescription: aws.String("service key"),
		},
		{
			name:      "empty description omitted",
			opts:      interfaces.PutOptions{KeyAlias: "alias/custom"},
			wantKeyID: aws.String("alias/custom"),
		},
		{
			name: "empty alias omitted",
			opts: interfaces.PutOptions{Overwrite: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeSSM()
			store := NewSSMStore(fake, "eu-west-1", testLogger())

			require.NoError(t, store.Put(context.Background(), "svc/key1", []byte("pem"), tt.opts))
			require.NotNil(t, fake.lastPut)

			assert.Equal(t, ssm.ParameterTypeSecureString, aws.StringValue(fake.lastPut.Type))
			assert.Equal(t, tt.opts.Overwrite, aws.BoolValue(fake.lastPut.Overwrite))
			assert.Equal(t, tt.wantKeyID, fake.lastPut.KeyId)
			assert.Equal(t, tt.wantDescription, fake.lastPut.Description)
		})
	}
}

func TestSSMStoreErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "throttled", err: awserr.New("ThrottlingException", "Rate exceeded", nil), want: interfaces.ErrStoreUnavailable},
		{name: "access denied", err: awserr.New("AccessDeniedException", "denied", nil), want: interfaces.ErrStoreUnavailable},
		{name: "kms", err: awserr.New(ssm.ErrCodeInvalidKeyId, "bad key", nil), want: interfaces.ErrStoreUnavailable},
		{name: "plain error", err: errors.New("connection reset"), want: interfaces.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeSSM()
			fake.err = tt.err
			store := NewSSMStore(fake, "eu-west-1", testLogger())
			ctx := context.Background()

			assert.ErrorIs(t, store.Put(ctx, "k", []byte("v"), interfaces.PutOptions{}), tt.want)
			_, err := store.Get(ctx, "k")
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, store.Delete(ctx, "k"), tt.want)
			assert.False(t, store.Available(ctx))
		})
	}
}

func TestSSMStoreDoesNotRetry(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))

	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, r *http.Request)
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/x-amz-json-1.1")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"__type":"InternalServerError","message":"internal failure"}`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(300 * time.Millisecond):
				case <-r.Context().Done():
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tt.handler(w, r)
			}))
			defer srv.Close()

			location, err := interfaces.NewSecretStoreLocation("ssm://us-east-1?endpoint=" + url.QueryEscape(srv.URL))
			require.NoError(t, err)

			store, err := NewSecretStoreFactory(testLogger(), 100*time.Millisecond).SecretStoreFor(location)
			require.NoError(t, err)

			err = store.Put(context.Background(), "svc/key1", []byte("pem"), interfaces.PutOptions{})
			assert.ErrorIs(t, err, interfaces.ErrStoreUnavailable)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}
