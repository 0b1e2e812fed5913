package handlers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudramp/cloudramp/internal/config"
	"github.com/cloudramp/cloudramp/internal/convergence"
	"github.com/cloudramp/cloudramp/internal/foundation"
	"github.com/cloudramp/cloudramp/internal/platform/gcp"
	"github.com/cloudramp/cloudramp/internal/platform/helm"
	"github.com/cloudramp/cloudramp/internal/platform/image"
	"github.com/cloudramp/cloudramp/internal/platform/kube"
)

// saveAndRestoreFactories snapshots the factory variables and restores
// them when the test finishes, so tests can inject doubles freely.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()

	origLoadConfig := loadConfig
	origNewCloudClient := newCloudClient
	origNewPublisher := newPublisher
	origNewInstaller := newInstaller
	origNewKubeClient := newKubeClient
	origNewObserver := newObserver
	origBuildKubeconfig := buildKubeconfig
	origFoundationSteps := foundationSteps

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		newCloudClient = origNewCloudClient
		newPublisher = origNewPublisher
		newInstaller = origNewInstaller
		newKubeClient = origNewKubeClient
		newObserver = origNewObserver
		buildKubeconfig = origBuildKubeconfig
		foundationSteps = origFoundationSteps
	})
}

type nullObserver struct{}

func (nullObserver) Printf(string, ...interface{}) {}
func (nullObserver) Event(convergence.Event)       {}

func validConfig() *config.Config {
	return &config.Config{
		Host:               "app.example.com",
		Email:              "ops@example.com",
		ProjectID:          "test-project",
		ProjectDescription: "Test project",
		Zone:               "europe-west3-a",
		ClusterName:        "test-cluster",
		MachineType:        "e2-small",
		NodeCount:          1,
		ServiceAccountID:   "cluster-minimal",
		RegistryHost:       "europe-west3-docker.pkg.dev",
		RepoName:           "apps",
		ImageName:          "app",
		ImageTag:           "v1",
		BuildContext:       ".",
		Namespace:          "app",
		StaticIPName:       "app-ip",
		TLSEnvironment:     config.TLSStaging,
		ReleaseName:        "app",
		ChartPath:          "./chart",
		SecretName:         "app-secrets",
	}
}

// installMocks wires a fully converged set of collaborators.
func installMocks(t *testing.T, cloud *gcp.MockClient) {
	t.Helper()
	saveAndRestoreFactories(t)

	loadConfig = func(string) (*config.Config, error) { return validConfig(), nil }
	newObserver = func() (convergence.Observer, error) { return nullObserver{}, nil }
	newCloudClient = func(context.Context, *config.Timeouts) (gcp.CloudManager, error) {
		return cloud, nil
	}
	newPublisher = func() image.Publisher {
		return &image.MockPublisher{
			ExistsFunc: func(context.Context, string) (bool, error) { return true, nil },
		}
	}
	newInstaller = func([]byte) helm.Installer { return &helm.MockInstaller{} }
	newKubeClient = func([]byte) (kube.Client, error) { return &kube.MockClient{}, nil }
	buildKubeconfig = func(context.Context, *gcp.Cluster) ([]byte, error) {
		return []byte("kubeconfig"), nil
	}
	foundationSteps = func() []convergence.Step {
		return []convergence.Step{
			foundation.ProjectStep{},
			foundation.BillingStep{},
			foundation.ServicesStep{},
			foundation.IdentityStep{},
			&foundation.ClusterStep{BuildKubeconfig: func(context.Context, *gcp.Cluster) ([]byte, error) {
				return []byte("kubeconfig"), nil
			}},
		}
	}
}

// convergedCloud answers every probe with "found".
func convergedCloud() *gcp.MockClient {
	return &gcp.MockClient{
		GetProjectFunc: func(_ context.Context, projectID string) (*gcp.Project, error) {
			return &gcp.Project{ID: projectID, Number: 1}, nil
		},
		GetBillingAccountFunc: func(context.Context, string) (string, error) {
			return "billingAccounts/01AB", nil
		},
		ServiceEnabledFunc: func(context.Context, string, string) (bool, error) {
			return true, nil
		},
		GetServiceAccountFunc: func(_ context.Context, email string) (*gcp.ServiceAccount, error) {
			return &gcp.ServiceAccount{Email: email}, nil
		},
		GetClusterFunc: func(_ context.Context, _, zone, name string) (*gcp.Cluster, error) {
			return &gcp.Cluster{Name: name, Zone: zone, Endpoint: "203.0.113.10"}, nil
		},
		GetRepositoryFunc: func(_ context.Context, _, location, name string) (*gcp.Repository, error) {
			return &gcp.Repository{Name: name, Location: location}, nil
		},
		GetAddressFunc: func(_ context.Context, _, region, name string) (*gcp.Address, error) {
			return &gcp.Address{Name: name, Region: region, IP: "203.0.113.20"}, nil
		},
	}
}

func TestConverge_RunsBothPipelines(t *testing.T) {
	installMocks(t, convergedCloud())

	err := Converge(context.Background(), "")
	require.NoError(t, err)
}

func TestConverge_InvalidConfigHaltsBeforeAnyCollaboratorCall(t *testing.T) {
	saveAndRestoreFactories(t)

	cloudClients := 0
	loadConfig = func(string) (*config.Config, error) {
		cfg := validConfig()
		cfg.Host = ""
		return cfg, nil
	}
	newCloudClient = func(context.Context, *config.Timeouts) (gcp.CloudManager, error) {
		cloudClients++
		return &gcp.MockClient{}, nil
	}

	err := Converge(context.Background(), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "host is required")
	assert.Zero(t, cloudClients)
}

func TestConverge_FoundationFailureSkipsDeployment(t *testing.T) {
	cloud := convergedCloud()
	cloud.GetBillingAccountFunc = func(context.Context, string) (string, error) {
		return "", errors.New("billing api unavailable")
	}
	installMocks(t, cloud)

	installerBuilt := false
	newInstaller = func([]byte) helm.Installer {
		installerBuilt = true
		return &helm.MockInstaller{}
	}

	err := Converge(context.Background(), "")

	require.Error(t, err)
	assert.False(t, installerBuilt, "deployment collaborators must not be built after a foundation failure")
}

func TestDeployment_MissingClusterIsFatal(t *testing.T) {
	cloud := convergedCloud()
	cloud.GetClusterFunc = func(context.Context, string, string, string) (*gcp.Cluster, error) {
		return nil, nil
	}
	installMocks(t, cloud)

	err := Deployment(context.Background(), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestDeployment_ExistingClusterConverges(t *testing.T) {
	installMocks(t, convergedCloud())

	err := Deployment(context.Background(), "")
	require.NoError(t, err)
}

func TestFoundation_RunsOnlyFoundationSteps(t *testing.T) {
	installMocks(t, convergedCloud())

	installerBuilt := false
	newInstaller = func([]byte) helm.Installer {
		installerBuilt = true
		return &helm.MockInstaller{}
	}

	require.NoError(t, Foundation(context.Background(), ""))
	assert.False(t, installerBuilt)
}

func TestPrintConfig_WritesResolvedYAML(t *testing.T) {
	saveAndRestoreFactories(t)
	loadConfig = func(string) (*config.Config, error) { return validConfig(), nil }

	var buf bytes.Buffer
	require.NoError(t, PrintConfig("", &buf))

	out := buf.String()
	assert.Contains(t, out, "host: app.example.com")
	assert.Contains(t, out, "email: ops@example.com")
	assert.Contains(t, out, "tls_environment: staging")
}

func TestPrintConfig_InvalidConfigFails(t *testing.T) {
	saveAndRestoreFactories(t)
	loadConfig = func(string) (*config.Config, error) {
		cfg := validConfig()
		cfg.TLSEnvironment = "qa"
		return cfg, nil
	}

	var buf bytes.Buffer
	err := PrintConfig("", &buf)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tls_environment")
	assert.Zero(t, buf.Len())
}
