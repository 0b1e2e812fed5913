package deployment

import (
	"fmt"

	"github.com/cloudramp/cloudramp/internal/convergence"
)

// ReleaseStep converges the application release. It is the terminal
// step of the deployment pipeline and blocks until the release's
// workloads report ready.
type ReleaseStep struct{}

// Name implements convergence.Step.
func (ReleaseStep) Name() string { return "application-release" }

// Converge implements convergence.Step.
func (ReleaseStep) Converge(ctx *convergence.Context) error {
	cfg := ctx.Config

	if ctx.State.ImageRef == "" {
		return fmt.Errorf("no published image resolved: the image step must run first")
	}

	if err := ctx.Helm.InstallOrUpgrade(ctx, helmReleaseApp(ctx)); err != nil {
		return fmt.Errorf("failed to converge release %s: %w", cfg.ReleaseName, err)
	}

	ctx.Observer.Printf("release %s is ready at https://%s", cfg.ReleaseName, cfg.Host)
	return nil
}
