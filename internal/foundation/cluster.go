package foundation

import (
	"context"
	"fmt"

	"github.com/cloudramp/cloudramp/internal/convergence"
	"github.com/cloudramp/cloudramp/internal/platform/gcp"
)

// ClusterStep ensures the Kubernetes cluster exists, bound to the node
// service account with IP-alias networking enabled, and leaves an
// authenticated in-memory kubeconfig in the shared state. A failure
// here is fatal: every subsequent step needs a reachable cluster.
type ClusterStep struct {
	// BuildKubeconfig synthesizes kubeconfig bytes for a cluster.
	// Overridable for tests.
	BuildKubeconfig func(ctx context.Context, cluster *gcp.Cluster) ([]byte, error)
}

// NewClusterStep creates a ClusterStep using operator credentials for
// the kubeconfig.
func NewClusterStep() *ClusterStep {
	return &ClusterStep{BuildKubeconfig: gcp.BuildKubeconfig}
}

// Name implements convergence.Step.
func (*ClusterStep) Name() string { return "cluster" }

// Converge implements convergence.Step.
func (s *ClusterStep) Converge(ctx *convergence.Context) error {
	cfg := ctx.Config

	serviceAccount := ctx.State.ServiceAccountEmail
	if serviceAccount == "" {
		serviceAccount = cfg.ServiceAccountEmail()
	}

	cluster, _, err := convergence.Ensure(ctx.Observer, convergence.Resource[*gcp.Cluster]{
		Kind: "cluster",
		Name: fmt.Sprintf("%s/%s", cfg.Zone, cfg.ClusterName),
		Probe: func() (*gcp.Cluster, bool, error) {
			c, err := ctx.Cloud.GetCluster(ctx, cfg.ProjectID, cfg.Zone, cfg.ClusterName)
			if err != nil {
				return nil, false, err
			}
			return c, c != nil, nil
		},
		Create: func() (*gcp.Cluster, error) {
			return ctx.Cloud.CreateCluster(ctx, gcp.ClusterSpec{
				ProjectID:      cfg.ProjectID,
				Zone:           cfg.Zone,
				Name:           cfg.ClusterName,
				NodeCount:      cfg.NodeCount,
				MachineType:    cfg.MachineType,
				ServiceAccount: serviceAccount,
			})
		},
	})
	if err != nil {
		return err
	}

	kubeconfig, err := s.BuildKubeconfig(ctx, cluster)
	if err != nil {
		return fmt.Errorf("failed to build kubeconfig for cluster %s: %w", cluster.Name, err)
	}

	ctx.Observer.Printf("cluster %s reachable at %s", cluster.Name, cluster.Endpoint)
	ctx.State.Kubeconfig = kubeconfig
	return nil
}
