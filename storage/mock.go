package storage

import (
	"context"

	"github.com/ruteri/cfn-rsakey-provider/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockSecretStore mocks the interfaces.SecretStore interface
type MockSecretStore struct {
	mock.Mock
}

// Put mocks the Put method
func (m *MockSecretStore) Put(ctx context.Context, name string, value []byte, opts interfaces.PutOptions) error {
	args := m.Called(ctx, name, value, opts)
	return args.Error(0)
}

// Get mocks the Get method
func (m *MockSecretStore) Get(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockSecretStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// Available mocks the Available method
func (m *MockSecretStore) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockSecretStore) Name() string {
	return "mock"
}

func (m *MockSecretStore) LocationURI() string {
	return "mock://"
}
