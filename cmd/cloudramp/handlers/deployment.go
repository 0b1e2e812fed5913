package handlers

import (
	"context"
	"fmt"

	"github.com/cloudramp/cloudramp/internal/convergence"
	"github.com/cloudramp/cloudramp/internal/platform/gcp"
)

// buildKubeconfig synthesizes kubeconfig bytes for an existing cluster
// (for testing injection).
var buildKubeconfig = gcp.BuildKubeconfig

// Deployment runs only the deployment pipeline against an existing
// cluster. The cluster is probed first; a missing cluster is a hard
// error, not something this command creates.
func Deployment(ctx context.Context, configPath string) error {
	runCtx, err := setup(ctx, configPath)
	if err != nil {
		return err
	}

	if err := connectCluster(runCtx); err != nil {
		return err
	}
	return runDeployment(runCtx)
}

func connectCluster(runCtx *convergence.Context) error {
	cfg := runCtx.Config

	cluster, err := runCtx.Cloud.GetCluster(runCtx, cfg.ProjectID, cfg.Zone, cfg.ClusterName)
	if err != nil {
		return fmt.Errorf("failed to probe cluster %s: %w", cfg.ClusterName, err)
	}
	if cluster == nil {
		return fmt.Errorf("cluster %s/%s does not exist: run 'cloudramp foundation' first",
			cfg.Zone, cfg.ClusterName)
	}

	kubeconfig, err := buildKubeconfig(runCtx, cluster)
	if err != nil {
		return fmt.Errorf("failed to build kubeconfig for cluster %s: %w", cluster.Name, err)
	}

	runCtx.State.Kubeconfig = kubeconfig
	return nil
}
