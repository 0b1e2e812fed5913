package gcp

import "context"

// MockClient is a function-field test double for CloudManager.
// Unset functions report clean absence (or succeed) so tests only wire
// the calls they care about.
type MockClient struct {
	GetProjectFunc    func(ctx context.Context, projectID string) (*Project, error)
	CreateProjectFunc func(ctx context.Context, projectID, displayName string) (*Project, error)

	GetBillingAccountFunc   func(ctx context.Context, projectID string) (string, error)
	ListBillingAccountsFunc func(ctx context.Context) ([]string, error)
	LinkBillingAccountFunc  func(ctx context.Context, projectID, accountName string) error

	ServiceEnabledFunc func(ctx context.Context, projectID, service string) (bool, error)
	EnableServiceFunc  func(ctx context.Context, projectID, service string) error

	GetServiceAccountFunc    func(ctx context.Context, email string) (*ServiceAccount, error)
	CreateServiceAccountFunc func(ctx context.Context, projectID, accountID, displayName string) (*ServiceAccount, error)
	EnsureRoleBindingsFunc   func(ctx context.Context, projectID, member string, roles []string) error

	GetClusterFunc    func(ctx context.Context, projectID, zone, name string) (*Cluster, error)
	CreateClusterFunc func(ctx context.Context, spec ClusterSpec) (*Cluster, error)

	GetRepositoryFunc    func(ctx context.Context, projectID, location, name string) (*Repository, error)
	CreateRepositoryFunc func(ctx context.Context, projectID, location, name string) (*Repository, error)

	GetAddressFunc     func(ctx context.Context, projectID, region, name string) (*Address, error)
	ReserveAddressFunc func(ctx context.Context, projectID, region, name string) (*Address, error)
}

var _ CloudManager = (*MockClient)(nil)

// GetProject implements CloudManager.
func (m *MockClient) GetProject(ctx context.Context, projectID string) (*Project, error) {
	if m.GetProjectFunc != nil {
		return m.GetProjectFunc(ctx, projectID)
	}
	return nil, nil
}

// CreateProject implements CloudManager.
func (m *MockClient) CreateProject(ctx context.Context, projectID, displayName string) (*Project, error) {
	if m.CreateProjectFunc != nil {
		return m.CreateProjectFunc(ctx, projectID, displayName)
	}
	return &Project{ID: projectID, DisplayName: displayName}, nil
}

// GetBillingAccount implements CloudManager.
func (m *MockClient) GetBillingAccount(ctx context.Context, projectID string) (string, error) {
	if m.GetBillingAccountFunc != nil {
		return m.GetBillingAccountFunc(ctx, projectID)
	}
	return "", nil
}

// ListBillingAccounts implements CloudManager.
func (m *MockClient) ListBillingAccounts(ctx context.Context) ([]string, error) {
	if m.ListBillingAccountsFunc != nil {
		return m.ListBillingAccountsFunc(ctx)
	}
	return nil, nil
}

// LinkBillingAccount implements CloudManager.
func (m *MockClient) LinkBillingAccount(ctx context.Context, projectID, accountName string) error {
	if m.LinkBillingAccountFunc != nil {
		return m.LinkBillingAccountFunc(ctx, projectID, accountName)
	}
	return nil
}

// ServiceEnabled implements CloudManager.
func (m *MockClient) ServiceEnabled(ctx context.Context, projectID, service string) (bool, error) {
	if m.ServiceEnabledFunc != nil {
		return m.ServiceEnabledFunc(ctx, projectID, service)
	}
	return false, nil
}

// EnableService implements CloudManager.
func (m *MockClient) EnableService(ctx context.Context, projectID, service string) error {
	if m.EnableServiceFunc != nil {
		return m.EnableServiceFunc(ctx, projectID, service)
	}
	return nil
}

// GetServiceAccount implements CloudManager.
func (m *MockClient) GetServiceAccount(ctx context.Context, email string) (*ServiceAccount, error) {
	if m.GetServiceAccountFunc != nil {
		return m.GetServiceAccountFunc(ctx, email)
	}
	return nil, nil
}

// CreateServiceAccount implements CloudManager.
func (m *MockClient) CreateServiceAccount(ctx context.Context, projectID, accountID, displayName string) (*ServiceAccount, error) {
	if m.CreateServiceAccountFunc != nil {
		return m.CreateServiceAccountFunc(ctx, projectID, accountID, displayName)
	}
	return &ServiceAccount{Email: accountID + "@" + projectID + ".iam.gserviceaccount.com"}, nil
}

// EnsureRoleBindings implements CloudManager.
func (m *MockClient) EnsureRoleBindings(ctx context.Context, projectID, member string, roles []string) error {
	if m.EnsureRoleBindingsFunc != nil {
		return m.EnsureRoleBindingsFunc(ctx, projectID, member, roles)
	}
	return nil
}

// GetCluster implements CloudManager.
func (m *MockClient) GetCluster(ctx context.Context, projectID, zone, name string) (*Cluster, error) {
	if m.GetClusterFunc != nil {
		return m.GetClusterFunc(ctx, projectID, zone, name)
	}
	return nil, nil
}

// CreateCluster implements CloudManager.
func (m *MockClient) CreateCluster(ctx context.Context, spec ClusterSpec) (*Cluster, error) {
	if m.CreateClusterFunc != nil {
		return m.CreateClusterFunc(ctx, spec)
	}
	return &Cluster{Name: spec.Name, Zone: spec.Zone, Status: "RUNNING"}, nil
}

// GetRepository implements CloudManager.
func (m *MockClient) GetRepository(ctx context.Context, projectID, location, name string) (*Repository, error) {
	if m.GetRepositoryFunc != nil {
		return m.GetRepositoryFunc(ctx, projectID, location, name)
	}
	return nil, nil
}

// CreateRepository implements CloudManager.
func (m *MockClient) CreateRepository(ctx context.Context, projectID, location, name string) (*Repository, error) {
	if m.CreateRepositoryFunc != nil {
		return m.CreateRepositoryFunc(ctx, projectID, location, name)
	}
	return &Repository{Name: name, Location: location}, nil
}

// GetAddress implements CloudManager.
func (m *MockClient) GetAddress(ctx context.Context, projectID, region, name string) (*Address, error) {
	if m.GetAddressFunc != nil {
		return m.GetAddressFunc(ctx, projectID, region, name)
	}
	return nil, nil
}

// ReserveAddress implements CloudManager.
func (m *MockClient) ReserveAddress(ctx context.Context, projectID, region, name string) (*Address, error) {
	if m.ReserveAddressFunc != nil {
		return m.ReserveAddressFunc(ctx, projectID, region, name)
	}
	return &Address{Name: name, Region: region, IP: "192.0.2.1"}, nil
}
