// Package handlers implements the business logic for CLI commands.
//
// Handlers are framework-agnostic and can be tested independently of
// the CLI framework. Collaborator constructors are factory variables
// so tests can inject doubles.
package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cloudramp/cloudramp/internal/config"
	"github.com/cloudramp/cloudramp/internal/convergence"
	"github.com/cloudramp/cloudramp/internal/deployment"
	"github.com/cloudramp/cloudramp/internal/foundation"
	"github.com/cloudramp/cloudramp/internal/platform/gcp"
	"github.com/cloudramp/cloudramp/internal/platform/helm"
	"github.com/cloudramp/cloudramp/internal/platform/image"
	"github.com/cloudramp/cloudramp/internal/platform/kube"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig resolves the configuration from defaults, file, and env.
	loadConfig = config.Load

	// newCloudClient creates the cloud resource-management client.
	newCloudClient = func(ctx context.Context, timeouts *config.Timeouts) (gcp.CloudManager, error) {
		return gcp.NewRealClient(ctx, timeouts)
	}

	// newPublisher creates the container build-and-publish collaborator.
	newPublisher = func() image.Publisher {
		return image.NewDockerPublisher()
	}

	// newInstaller creates the chart installer from kubeconfig bytes.
	newInstaller = func(kubeconfig []byte) helm.Installer {
		return helm.NewClient(kubeconfig)
	}

	// newKubeClient creates the cluster object API client.
	newKubeClient = kube.NewFromKubeconfig

	// newObserver creates the run observer.
	newObserver = func() (convergence.Observer, error) {
		logger, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return convergence.NewZapObserver(logger), nil
	}

	// foundationSteps and deploymentSteps build the pipeline step lists.
	foundationSteps = foundation.Steps
	deploymentSteps = deployment.Steps
)

// Converge runs the foundation pipeline and then the deployment
// pipeline. The deployment pipeline only starts once the foundation
// pipeline has produced an authenticated cluster context.
func Converge(ctx context.Context, configPath string) error {
	runCtx, err := setup(ctx, configPath)
	if err != nil {
		return err
	}

	if err := runFoundation(runCtx); err != nil {
		return err
	}
	return runDeployment(runCtx)
}

// setup resolves and validates configuration and builds the pre-cluster
// collaborators. Validation happens before any collaborator call.
func setup(ctx context.Context, configPath string) (*convergence.Context, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	observer, err := newObserver()
	if err != nil {
		return nil, err
	}

	runCtx := convergence.NewContext(ctx, cfg, nil, observer)

	cloud, err := newCloudClient(ctx, runCtx.Timeouts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloud client: %w", err)
	}
	runCtx.Cloud = cloud
	runCtx.Image = newPublisher()

	return runCtx, nil
}

func runFoundation(runCtx *convergence.Context) error {
	pipeline := convergence.NewPipeline("foundation", foundationSteps()...)
	return pipeline.Run(runCtx)
}

// runDeployment connects the cluster-bound collaborators from the
// kubeconfig in the run state, then runs the deployment pipeline.
func runDeployment(runCtx *convergence.Context) error {
	if len(runCtx.State.Kubeconfig) == 0 {
		return fmt.Errorf("no cluster context available: run the foundation pipeline first")
	}

	runCtx.Helm = newInstaller(runCtx.State.Kubeconfig)

	kubeClient, err := newKubeClient(runCtx.State.Kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to connect to cluster: %w", err)
	}
	runCtx.Kube = kubeClient

	pipeline := convergence.NewPipeline("deployment", deploymentSteps()...)
	return pipeline.Run(runCtx)
}
