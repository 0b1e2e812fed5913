package gcp

import "context"

// Project is a billed cloud project.
type Project struct {
	ID          string
	Number      int64
	DisplayName string
}

// ServiceAccount is an IAM identity for cluster nodes.
type ServiceAccount struct {
	Email       string
	DisplayName string
}

// Cluster describes a provisioned Kubernetes cluster.
type Cluster struct {
	Name          string
	Zone          string
	Endpoint      string
	CACertificate string // base64-encoded PEM, as returned by the API
	Status        string
}

// ClusterSpec describes the desired cluster. Core settings are
// immutable after creation.
type ClusterSpec struct {
	ProjectID      string
	Zone           string
	Name           string
	NodeCount      int
	MachineType    string
	ServiceAccount string
}

// Repository is a container-image repository.
type Repository struct {
	Name     string
	Location string
}

// Address is a reserved regional static IP.
type Address struct {
	Name   string
	Region string
	IP     string
}

// CloudManager is the cloud resource-management collaborator surface.
// Get methods return (nil, nil) when the resource does not exist;
// any other failure is returned as an error.
type CloudManager interface {
	// Projects
	GetProject(ctx context.Context, projectID string) (*Project, error)
	CreateProject(ctx context.Context, projectID, displayName string) (*Project, error)

	// Billing
	GetBillingAccount(ctx context.Context, projectID string) (string, error)
	ListBillingAccounts(ctx context.Context) ([]string, error)
	LinkBillingAccount(ctx context.Context, projectID, accountName string) error

	// Service enablement
	ServiceEnabled(ctx context.Context, projectID, service string) (bool, error)
	EnableService(ctx context.Context, projectID, service string) error

	// Node identity
	GetServiceAccount(ctx context.Context, email string) (*ServiceAccount, error)
	CreateServiceAccount(ctx context.Context, projectID, accountID, displayName string) (*ServiceAccount, error)
	// EnsureRoleBindings adds the member to each role on the project's
	// IAM policy. Re-adding an existing binding is a no-op.
	EnsureRoleBindings(ctx context.Context, projectID, member string, roles []string) error

	// Cluster
	GetCluster(ctx context.Context, projectID, zone, name string) (*Cluster, error)
	CreateCluster(ctx context.Context, spec ClusterSpec) (*Cluster, error)

	// Container registry
	GetRepository(ctx context.Context, projectID, location, name string) (*Repository, error)
	CreateRepository(ctx context.Context, projectID, location, name string) (*Repository, error)

	// Static addresses
	GetAddress(ctx context.Context, projectID, region, name string) (*Address, error)
	ReserveAddress(ctx context.Context, projectID, region, name string) (*Address, error)
}
