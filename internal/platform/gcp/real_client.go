package gcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	artifactregistry "cloud.google.com/go/artifactregistry/apiv1"
	"cloud.google.com/go/artifactregistry/apiv1/artifactregistrypb"
	billing "cloud.google.com/go/billing/apiv1"
	"cloud.google.com/go/billing/apiv1/billingpb"
	compute "cloud.google.com/go/compute/apiv1"
	"cloud.google.com/go/compute/apiv1/computepb"
	container "cloud.google.com/go/container/apiv1"
	"cloud.google.com/go/container/apiv1/containerpb"
	admin "cloud.google.com/go/iam/admin/apiv1"
	"cloud.google.com/go/iam/admin/apiv1/adminpb"
	"cloud.google.com/go/iam/apiv1/iampb"
	resourcemanager "cloud.google.com/go/resourcemanager/apiv3"
	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"
	serviceusage "cloud.google.com/go/serviceusage/apiv1"
	"cloud.google.com/go/serviceusage/apiv1/serviceusagepb"
	"google.golang.org/api/iterator"
	"google.golang.org/protobuf/proto"

	"github.com/cloudramp/cloudramp/internal/config"
)

// RealClient implements CloudManager using the Google Cloud client
// libraries. Operations that the API models as long-running are waited
// on before returning, so callers see synchronous semantics.
type RealClient struct {
	projects  *resourcemanager.ProjectsClient
	billing   *billing.CloudBillingClient
	services  *serviceusage.Client
	iam       *admin.IamClient
	clusters  *container.ClusterManagerClient
	registry  *artifactregistry.Client
	addresses *compute.AddressesClient

	timeouts *config.Timeouts
}

var _ CloudManager = (*RealClient)(nil)

// NewRealClient dials all required Google Cloud services using
// application default credentials.
func NewRealClient(ctx context.Context, timeouts *config.Timeouts) (*RealClient, error) {
	projects, err := resourcemanager.NewProjectsClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource manager client: %w", err)
	}

	billingClient, err := billing.NewCloudBillingClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create billing client: %w", err)
	}

	services, err := serviceusage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create service usage client: %w", err)
	}

	iamClient, err := admin.NewIamClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create IAM client: %w", err)
	}

	clusters, err := container.NewClusterManagerClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster manager client: %w", err)
	}

	registry, err := artifactregistry.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact registry client: %w", err)
	}

	addresses, err := compute.NewAddressesRESTClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute addresses client: %w", err)
	}

	if timeouts == nil {
		timeouts = config.LoadTimeouts()
	}

	return &RealClient{
		projects:  projects,
		billing:   billingClient,
		services:  services,
		iam:       iamClient,
		clusters:  clusters,
		registry:  registry,
		addresses: addresses,
		timeouts:  timeouts,
	}, nil
}

// Close releases all underlying API connections.
func (c *RealClient) Close() error {
	var firstErr error
	for _, closer := range []interface{ Close() error }{
		c.projects, c.billing, c.services, c.iam, c.clusters, c.registry, c.addresses,
	} {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetProject returns the project, or (nil, nil) if it does not exist.
func (c *RealClient) GetProject(ctx context.Context, projectID string) (*Project, error) {
	p, err := c.projects.GetProject(ctx, &resourcemanagerpb.GetProjectRequest{
		Name: "projects/" + projectID,
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project %s: %w", projectID, err)
	}
	return projectFromPB(p), nil
}

// CreateProject creates the project and waits for the operation.
func (c *RealClient) CreateProject(ctx context.Context, projectID, displayName string) (*Project, error) {
	op, err := c.projects.CreateProject(ctx, &resourcemanagerpb.CreateProjectRequest{
		Project: &resourcemanagerpb.Project{
			ProjectId:   projectID,
			DisplayName: displayName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create project %s: %w", projectID, err)
	}

	p, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("project creation for %s did not complete: %w", projectID, err)
	}
	return projectFromPB(p), nil
}

func projectFromPB(p *resourcemanagerpb.Project) *Project {
	number, _ := strconv.ParseInt(strings.TrimPrefix(p.GetName(), "projects/"), 10, 64)
	return &Project{
		ID:          p.GetProjectId(),
		Number:      number,
		DisplayName: p.GetDisplayName(),
	}
}

// GetBillingAccount returns the billing account linked to the project,
// or "" if the project has no billing account attached.
func (c *RealClient) GetBillingAccount(ctx context.Context, projectID string) (string, error) {
	info, err := c.billing.GetProjectBillingInfo(ctx, &billingpb.GetProjectBillingInfoRequest{
		Name: "projects/" + projectID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get billing info for %s: %w", projectID, err)
	}
	return info.GetBillingAccountName(), nil
}

// ListBillingAccounts returns the open billing accounts visible to the
// operator's credentials.
func (c *RealClient) ListBillingAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	it := c.billing.ListBillingAccounts(ctx, &billingpb.ListBillingAccountsRequest{})
	for {
		account, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list billing accounts: %w", err)
		}
		if account.GetOpen() {
			accounts = append(accounts, account.GetName())
		}
	}
	return accounts, nil
}

// LinkBillingAccount attaches the billing account to the project.
func (c *RealClient) LinkBillingAccount(ctx context.Context, projectID, accountName string) error {
	_, err := c.billing.UpdateProjectBillingInfo(ctx, &billingpb.UpdateProjectBillingInfoRequest{
		Name: "projects/" + projectID,
		ProjectBillingInfo: &billingpb.ProjectBillingInfo{
			BillingAccountName: accountName,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to link billing account %s to %s: %w", accountName, projectID, err)
	}
	return nil
}

// ServiceEnabled reports whether the API service is enabled on the project.
func (c *RealClient) ServiceEnabled(ctx context.Context, projectID, service string) (bool, error) {
	svc, err := c.services.GetService(ctx, &serviceusagepb.GetServiceRequest{
		Name: fmt.Sprintf("projects/%s/services/%s", projectID, service),
	})
	if err != nil {
		return false, fmt.Errorf("failed to get service %s state: %w", service, err)
	}
	return svc.GetState() == serviceusagepb.State_ENABLED, nil
}

// EnableService enables the API service and waits for the operation.
func (c *RealClient) EnableService(ctx context.Context, projectID, service string) error {
	op, err := c.services.EnableService(ctx, &serviceusagepb.EnableServiceRequest{
		Name: fmt.Sprintf("projects/%s/services/%s", projectID, service),
	})
	if err != nil {
		return fmt.Errorf("failed to enable service %s: %w", service, err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("enabling service %s did not complete: %w", service, err)
	}
	return nil
}

// GetServiceAccount returns the service account, or (nil, nil) if it
// does not exist. New accounts may not be visible immediately after
// creation; callers poll through this method.
func (c *RealClient) GetServiceAccount(ctx context.Context, email string) (*ServiceAccount, error) {
	sa, err := c.iam.GetServiceAccount(ctx, &adminpb.GetServiceAccountRequest{
		Name: "projects/-/serviceAccounts/" + email,
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get service account %s: %w", email, err)
	}
	return &ServiceAccount{Email: sa.GetEmail(), DisplayName: sa.GetDisplayName()}, nil
}

// CreateServiceAccount creates the service account in the project.
func (c *RealClient) CreateServiceAccount(ctx context.Context, projectID, accountID, displayName string) (*ServiceAccount, error) {
	sa, err := c.iam.CreateServiceAccount(ctx, &adminpb.CreateServiceAccountRequest{
		Name:      "projects/" + projectID,
		AccountId: accountID,
		ServiceAccount: &adminpb.ServiceAccount{
			DisplayName: displayName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create service account %s: %w", accountID, err)
	}
	return &ServiceAccount{Email: sa.GetEmail(), DisplayName: sa.GetDisplayName()}, nil
}

// EnsureRoleBindings adds the member to each role on the project's IAM
// policy via read-modify-write. Bindings already present are left
// untouched, so re-running is a no-op.
func (c *RealClient) EnsureRoleBindings(ctx context.Context, projectID, member string, roles []string) error {
	policy, err := c.projects.GetIamPolicy(ctx, &iampb.GetIamPolicyRequest{
		Resource: "projects/" + projectID,
	})
	if err != nil {
		return fmt.Errorf("failed to get IAM policy for %s: %w", projectID, err)
	}

	changed := false
	for _, role := range roles {
		if addBinding(policy, role, member) {
			changed = true
		}
	}
	if !changed {
		return nil
	}

	_, err = c.projects.SetIamPolicy(ctx, &iampb.SetIamPolicyRequest{
		Resource: "projects/" + projectID,
		Policy:   policy,
	})
	if err != nil {
		return fmt.Errorf("failed to set IAM policy for %s: %w", projectID, err)
	}
	return nil
}

// addBinding adds member to the binding for role, reporting whether the
// policy was modified.
func addBinding(policy *iampb.Policy, role, member string) bool {
	for _, binding := range policy.Bindings {
		if binding.GetRole() != role {
			continue
		}
		for _, m := range binding.GetMembers() {
			if m == member {
				return false
			}
		}
		binding.Members = append(binding.Members, member)
		return true
	}
	policy.Bindings = append(policy.Bindings, &iampb.Binding{
		Role:    role,
		Members: []string{member},
	})
	return true
}

// GetCluster returns the cluster, or (nil, nil) if it does not exist.
func (c *RealClient) GetCluster(ctx context.Context, projectID, zone, name string) (*Cluster, error) {
	cluster, err := c.clusters.GetCluster(ctx, &containerpb.GetClusterRequest{
		Name: fmt.Sprintf("projects/%s/locations/%s/clusters/%s", projectID, zone, name),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cluster %s: %w", name, err)
	}
	return clusterFromPB(cluster, zone), nil
}

// CreateCluster creates the cluster with node IP-alias networking
// enabled and waits until the provisioning operation completes.
func (c *RealClient) CreateCluster(ctx context.Context, spec ClusterSpec) (*Cluster, error) {
	parent := fmt.Sprintf("projects/%s/locations/%s", spec.ProjectID, spec.Zone)

	op, err := c.clusters.CreateCluster(ctx, &containerpb.CreateClusterRequest{
		Parent: parent,
		Cluster: &containerpb.Cluster{
			Name:             spec.Name,
			InitialNodeCount: int32(spec.NodeCount),
			NodeConfig: &containerpb.NodeConfig{
				MachineType:    spec.MachineType,
				ServiceAccount: spec.ServiceAccount,
				OauthScopes: []string{
					"https://www.googleapis.com/auth/cloud-platform",
				},
			},
			IpAllocationPolicy: &containerpb.IPAllocationPolicy{
				UseIpAliases: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster %s: %w", spec.Name, err)
	}

	if err := c.waitClusterOperation(ctx, spec.ProjectID, spec.Zone, op.GetName()); err != nil {
		return nil, fmt.Errorf("cluster %s creation did not complete: %w", spec.Name, err)
	}

	return c.GetCluster(ctx, spec.ProjectID, spec.Zone, spec.Name)
}

// waitClusterOperation polls the cluster operation until it reports
// DONE or the configured timeout elapses.
func (c *RealClient) waitClusterOperation(ctx context.Context, projectID, zone, opName string) error {
	deadline := time.Now().Add(c.timeouts.ClusterCreate)
	name := fmt.Sprintf("projects/%s/locations/%s/operations/%s", projectID, zone, opName)

	for {
		op, err := c.clusters.GetOperation(ctx, &containerpb.GetOperationRequest{Name: name})
		if err != nil {
			return fmt.Errorf("failed to poll operation %s: %w", opName, err)
		}
		if op.GetStatus() == containerpb.Operation_DONE {
			if msg := op.GetStatusMessage(); msg != "" {
				return fmt.Errorf("operation %s finished with error: %s", opName, msg)
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("operation %s did not complete within %v", opName, c.timeouts.ClusterCreate)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.timeouts.OperationPoll):
		}
	}
}

func clusterFromPB(cluster *containerpb.Cluster, zone string) *Cluster {
	return &Cluster{
		Name:          cluster.GetName(),
		Zone:          zone,
		Endpoint:      cluster.GetEndpoint(),
		CACertificate: cluster.GetMasterAuth().GetClusterCaCertificate(),
		Status:        cluster.GetStatus().String(),
	}
}

// GetRepository returns the container repository, or (nil, nil) if it
// does not exist.
func (c *RealClient) GetRepository(ctx context.Context, projectID, location, name string) (*Repository, error) {
	repo, err := c.registry.GetRepository(ctx, &artifactregistrypb.GetRepositoryRequest{
		Name: fmt.Sprintf("projects/%s/locations/%s/repositories/%s", projectID, location, name),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get repository %s: %w", name, err)
	}
	return &Repository{Name: repo.GetName(), Location: location}, nil
}

// CreateRepository creates a container-image repository and waits for
// the operation.
func (c *RealClient) CreateRepository(ctx context.Context, projectID, location, name string) (*Repository, error) {
	op, err := c.registry.CreateRepository(ctx, &artifactregistrypb.CreateRepositoryRequest{
		Parent:       fmt.Sprintf("projects/%s/locations/%s", projectID, location),
		RepositoryId: name,
		Repository: &artifactregistrypb.Repository{
			Format: artifactregistrypb.Repository_DOCKER,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create repository %s: %w", name, err)
	}

	repo, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository %s creation did not complete: %w", name, err)
	}
	return &Repository{Name: repo.GetName(), Location: location}, nil
}

// GetAddress returns the reserved static address, or (nil, nil) if it
// does not exist.
func (c *RealClient) GetAddress(ctx context.Context, projectID, region, name string) (*Address, error) {
	addr, err := c.addresses.Get(ctx, &computepb.GetAddressRequest{
		Project: projectID,
		Region:  region,
		Address: name,
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get address %s: %w", name, err)
	}
	return &Address{Name: addr.GetName(), Region: region, IP: addr.GetAddress()}, nil
}

// ReserveAddress allocates a regional static address and waits for the
// operation, then reads back the allocated IP literal.
func (c *RealClient) ReserveAddress(ctx context.Context, projectID, region, name string) (*Address, error) {
	op, err := c.addresses.Insert(ctx, &computepb.InsertAddressRequest{
		Project: projectID,
		Region:  region,
		AddressResource: &computepb.Address{
			Name: proto.String(name),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reserve address %s: %w", name, err)
	}
	if err := op.Wait(ctx); err != nil {
		return nil, fmt.Errorf("address %s reservation did not complete: %w", name, err)
	}

	return c.GetAddress(ctx, projectID, region, name)
}
