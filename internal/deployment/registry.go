package deployment

import (
	"github.com/cloudramp/cloudramp/internal/convergence"
	"github.com/cloudramp/cloudramp/internal/platform/gcp"
)

// RegistryStep ensures the container image repository exists in the
// registry location derived from the registry host.
type RegistryStep struct{}

// Name implements convergence.Step.
func (RegistryStep) Name() string { return "container-repository" }

// Converge implements convergence.Step.
func (RegistryStep) Converge(ctx *convergence.Context) error {
	cfg := ctx.Config
	location := cfg.RegistryLocation()

	_, _, err := convergence.Ensure(ctx.Observer, convergence.Resource[*gcp.Repository]{
		Kind: "container repository",
		Name: location + "/" + cfg.RepoName,
		Probe: func() (*gcp.Repository, bool, error) {
			repo, err := ctx.Cloud.GetRepository(ctx, cfg.ProjectID, location, cfg.RepoName)
			if err != nil {
				return nil, false, err
			}
			return repo, repo != nil, nil
		},
		Create: func() (*gcp.Repository, error) {
			return ctx.Cloud.CreateRepository(ctx, cfg.ProjectID, location, cfg.RepoName)
		},
	})
	return err
}
