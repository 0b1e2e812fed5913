package kube

import "context"

// MockClient is a function-field test double for Client.
type MockClient struct {
	EnsureNamespaceFunc         func(ctx context.Context, name string) (bool, error)
	EnsurePlaceholderSecretFunc func(ctx context.Context, namespace, name string) (bool, error)
	ApplyManifestsFunc          func(ctx context.Context, manifests []byte, fieldManager string) error
}

var _ Client = (*MockClient)(nil)

// EnsureNamespace implements Client.
func (m *MockClient) EnsureNamespace(ctx context.Context, name string) (bool, error) {
	if m.EnsureNamespaceFunc != nil {
		return m.EnsureNamespaceFunc(ctx, name)
	}
	return false, nil
}

// EnsurePlaceholderSecret implements Client.
func (m *MockClient) EnsurePlaceholderSecret(ctx context.Context, namespace, name string) (bool, error) {
	if m.EnsurePlaceholderSecretFunc != nil {
		return m.EnsurePlaceholderSecretFunc(ctx, namespace, name)
	}
	return false, nil
}

// ApplyManifests implements Client.
func (m *MockClient) ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) error {
	if m.ApplyManifestsFunc != nil {
		return m.ApplyManifestsFunc(ctx, manifests, fieldManager)
	}
	return nil
}
