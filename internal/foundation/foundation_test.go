package foundation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudramp/cloudramp/internal/config"
	"github.com/cloudramp/cloudramp/internal/convergence"
	"github.com/cloudramp/cloudramp/internal/platform/gcp"
)

type nullObserver struct{}

func (nullObserver) Printf(string, ...interface{}) {}
func (nullObserver) Event(convergence.Event)       {}

func testConfig() *config.Config {
	return &config.Config{
		Host:               "app.example.com",
		Email:              "ops@example.com",
		ProjectID:          "test-project",
		ProjectDescription: "Test project",
		Zone:               "europe-west3-a",
		ClusterName:        "test-cluster",
		MachineType:        "e2-small",
		NodeCount:          2,
		ServiceAccountID:   "cluster-minimal",
		TLSEnvironment:     config.TLSStaging,
	}
}

func testContext(cloud gcp.CloudManager) *convergence.Context {
	return &convergence.Context{
		Context: context.Background(),
		Config:  testConfig(),
		Timeouts: &config.Timeouts{
			ProbeAttempts:    3,
			ProbeInterval:    time.Millisecond,
			PostCreateSettle: 0,
			OperationPoll:    time.Millisecond,
			ClusterCreate:    time.Second,
			ReleaseWait:      time.Second,
		},
		State:    &convergence.State{},
		Observer: nullObserver{},
		Cloud:    cloud,
	}
}

func TestProjectStep_SkipsExistingProject(t *testing.T) {
	t.Parallel()
	creates := 0
	cloud := &gcp.MockClient{
		GetProjectFunc: func(_ context.Context, projectID string) (*gcp.Project, error) {
			return &gcp.Project{ID: projectID, Number: 42}, nil
		},
		CreateProjectFunc: func(context.Context, string, string) (*gcp.Project, error) {
			creates++
			return nil, nil
		},
	}

	ctx := testContext(cloud)
	require.NoError(t, ProjectStep{}.Converge(ctx))

	assert.Zero(t, creates)
}

func TestProjectStep_CreatesMissingProject(t *testing.T) {
	t.Parallel()
	creates := 0
	cloud := &gcp.MockClient{
		CreateProjectFunc: func(_ context.Context, projectID, displayName string) (*gcp.Project, error) {
			creates++
			assert.Equal(t, "test-project", projectID)
			assert.Equal(t, "Test project", displayName)
			return &gcp.Project{ID: projectID, Number: 7}, nil
		},
	}

	ctx := testContext(cloud)
	require.NoError(t, ProjectStep{}.Converge(ctx))
	assert.Equal(t, 1, creates)
}

func TestBillingStep_AlreadyLinked(t *testing.T) {
	t.Parallel()
	listed := false
	cloud := &gcp.MockClient{
		GetBillingAccountFunc: func(context.Context, string) (string, error) {
			return "billingAccounts/01AB", nil
		},
		ListBillingAccountsFunc: func(context.Context) ([]string, error) {
			listed = true
			return nil, nil
		},
	}

	require.NoError(t, BillingStep{}.Converge(testContext(cloud)))
	assert.False(t, listed, "a linked project must not enumerate accounts")
}

func TestBillingStep_ZeroAccountsIsFatal(t *testing.T) {
	t.Parallel()
	links := 0
	cloud := &gcp.MockClient{
		LinkBillingAccountFunc: func(context.Context, string, string) error {
			links++
			return nil
		},
	}

	err := BillingStep{}.Converge(testContext(cloud))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no open billing account")
	assert.Zero(t, links)
}

func TestBillingStep_SingleAccountLinkedOnce(t *testing.T) {
	t.Parallel()
	var linked []string
	cloud := &gcp.MockClient{
		ListBillingAccountsFunc: func(context.Context) ([]string, error) {
			return []string{"billingAccounts/01AB"}, nil
		},
		LinkBillingAccountFunc: func(_ context.Context, _ string, account string) error {
			linked = append(linked, account)
			return nil
		},
	}

	require.NoError(t, BillingStep{}.Converge(testContext(cloud)))
	assert.Equal(t, []string{"billingAccounts/01AB"}, linked)
}

func TestBillingStep_MultipleAccountsIsFatal(t *testing.T) {
	t.Parallel()
	links := 0
	cloud := &gcp.MockClient{
		ListBillingAccountsFunc: func(context.Context) ([]string, error) {
			return []string{"billingAccounts/01AB", "billingAccounts/02CD"}, nil
		},
		LinkBillingAccountFunc: func(context.Context, string, string) error {
			links++
			return nil
		},
	}

	err := BillingStep{}.Converge(testContext(cloud))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 open billing accounts")
	assert.Zero(t, links)
}

func TestServicesStep_EnablesOnlyMissing(t *testing.T) {
	t.Parallel()
	var enabled []string
	cloud := &gcp.MockClient{
		ServiceEnabledFunc: func(_ context.Context, _ string, service string) (bool, error) {
			return service == "compute.googleapis.com", nil
		},
		EnableServiceFunc: func(_ context.Context, _ string, service string) error {
			enabled = append(enabled, service)
			return nil
		},
	}

	require.NoError(t, ServicesStep{}.Converge(testContext(cloud)))

	assert.NotContains(t, enabled, "compute.googleapis.com")
	assert.Contains(t, enabled, "container.googleapis.com")
	assert.Contains(t, enabled, "artifactregistry.googleapis.com")
}

func TestIdentityStep_ExistingAccountSkipsCreation(t *testing.T) {
	t.Parallel()
	creates := 0
	var boundRoles []string
	cloud := &gcp.MockClient{
		GetServiceAccountFunc: func(_ context.Context, email string) (*gcp.ServiceAccount, error) {
			return &gcp.ServiceAccount{Email: email}, nil
		},
		CreateServiceAccountFunc: func(context.Context, string, string, string) (*gcp.ServiceAccount, error) {
			creates++
			return nil, nil
		},
		EnsureRoleBindingsFunc: func(_ context.Context, _ string, member string, roles []string) error {
			assert.Equal(t, "serviceAccount:cluster-minimal@test-project.iam.gserviceaccount.com", member)
			boundRoles = roles
			return nil
		},
	}

	ctx := testContext(cloud)
	require.NoError(t, IdentityStep{}.Converge(ctx))

	assert.Zero(t, creates)
	assert.Equal(t, NodeRoles, boundRoles)
	assert.Equal(t, "cluster-minimal@test-project.iam.gserviceaccount.com", ctx.State.ServiceAccountEmail)
}

func TestIdentityStep_WaitsForVisibilityAfterCreation(t *testing.T) {
	t.Parallel()
	probes := 0
	cloud := &gcp.MockClient{
		GetServiceAccountFunc: func(_ context.Context, email string) (*gcp.ServiceAccount, error) {
			probes++
			// Absent on the guard probe and the first visibility poll,
			// visible afterwards.
			if probes < 3 {
				return nil, nil
			}
			return &gcp.ServiceAccount{Email: email}, nil
		},
	}

	ctx := testContext(cloud)
	require.NoError(t, IdentityStep{}.Converge(ctx))
	assert.GreaterOrEqual(t, probes, 3)
}

func TestIdentityStep_VisibilityBoundExhausted(t *testing.T) {
	t.Parallel()
	cloud := &gcp.MockClient{
		GetServiceAccountFunc: func(context.Context, string) (*gcp.ServiceAccount, error) {
			return nil, nil // never becomes visible
		},
	}

	err := IdentityStep{}.Converge(testContext(cloud))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not become visible")
}

func TestClusterStep_CreatesWithNodeIdentity(t *testing.T) {
	t.Parallel()
	var spec gcp.ClusterSpec
	cloud := &gcp.MockClient{
		CreateClusterFunc: func(_ context.Context, s gcp.ClusterSpec) (*gcp.Cluster, error) {
			spec = s
			return &gcp.Cluster{Name: s.Name, Zone: s.Zone, Endpoint: "203.0.113.10", Status: "RUNNING"}, nil
		},
	}

	ctx := testContext(cloud)
	ctx.State.ServiceAccountEmail = "cluster-minimal@test-project.iam.gserviceaccount.com"

	step := &ClusterStep{
		BuildKubeconfig: func(context.Context, *gcp.Cluster) ([]byte, error) {
			return []byte("kubeconfig"), nil
		},
	}
	require.NoError(t, step.Converge(ctx))

	assert.Equal(t, "test-cluster", spec.Name)
	assert.Equal(t, "europe-west3-a", spec.Zone)
	assert.Equal(t, 2, spec.NodeCount)
	assert.Equal(t, "e2-small", spec.MachineType)
	assert.Equal(t, ctx.State.ServiceAccountEmail, spec.ServiceAccount)
	assert.Equal(t, []byte("kubeconfig"), ctx.State.Kubeconfig)
}

func TestClusterStep_ExistingClusterStillYieldsKubeconfig(t *testing.T) {
	t.Parallel()
	creates := 0
	cloud := &gcp.MockClient{
		GetClusterFunc: func(_ context.Context, _, zone, name string) (*gcp.Cluster, error) {
			return &gcp.Cluster{Name: name, Zone: zone, Endpoint: "203.0.113.10"}, nil
		},
		CreateClusterFunc: func(context.Context, gcp.ClusterSpec) (*gcp.Cluster, error) {
			creates++
			return nil, nil
		},
	}

	ctx := testContext(cloud)
	step := &ClusterStep{
		BuildKubeconfig: func(context.Context, *gcp.Cluster) ([]byte, error) {
			return []byte("kubeconfig"), nil
		},
	}
	require.NoError(t, step.Converge(ctx))

	assert.Zero(t, creates)
	assert.NotEmpty(t, ctx.State.Kubeconfig)
}

// convergedCloud simulates a fully converged foundation: every probe
// reports found and every mutation counts as a spurious side effect.
func convergedCloud(t *testing.T, mutations *int) *gcp.MockClient {
	t.Helper()
	return &gcp.MockClient{
		GetProjectFunc: func(_ context.Context, projectID string) (*gcp.Project, error) {
			return &gcp.Project{ID: projectID, Number: 1}, nil
		},
		CreateProjectFunc: func(context.Context, string, string) (*gcp.Project, error) {
			*mutations++
			return nil, fmt.Errorf("unexpected create")
		},
		GetBillingAccountFunc: func(context.Context, string) (string, error) {
			return "billingAccounts/01AB", nil
		},
		LinkBillingAccountFunc: func(context.Context, string, string) error {
			*mutations++
			return fmt.Errorf("unexpected link")
		},
		ServiceEnabledFunc: func(context.Context, string, string) (bool, error) {
			return true, nil
		},
		EnableServiceFunc: func(context.Context, string, string) error {
			*mutations++
			return fmt.Errorf("unexpected enable")
		},
		GetServiceAccountFunc: func(_ context.Context, email string) (*gcp.ServiceAccount, error) {
			return &gcp.ServiceAccount{Email: email}, nil
		},
		CreateServiceAccountFunc: func(context.Context, string, string, string) (*gcp.ServiceAccount, error) {
			*mutations++
			return nil, fmt.Errorf("unexpected create")
		},
		GetClusterFunc: func(_ context.Context, _, zone, name string) (*gcp.Cluster, error) {
			return &gcp.Cluster{Name: name, Zone: zone, Endpoint: "203.0.113.10"}, nil
		},
		CreateClusterFunc: func(context.Context, gcp.ClusterSpec) (*gcp.Cluster, error) {
			*mutations++
			return nil, fmt.Errorf("unexpected create")
		},
	}
}

func TestPipeline_ConvergedFoundationIssuesNoMutations(t *testing.T) {
	t.Parallel()
	mutations := 0
	ctx := testContext(convergedCloud(t, &mutations))

	steps := []convergence.Step{
		ProjectStep{},
		BillingStep{},
		ServicesStep{},
		IdentityStep{},
		&ClusterStep{BuildKubeconfig: func(context.Context, *gcp.Cluster) ([]byte, error) {
			return []byte("kubeconfig"), nil
		}},
	}

	pipeline := convergence.NewPipeline("foundation", steps...)
	require.NoError(t, pipeline.Run(ctx))

	assert.Zero(t, mutations, "a converged system must see zero creation or mutation calls")
}
