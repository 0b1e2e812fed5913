package foundation

import (
	"github.com/cloudramp/cloudramp/internal/convergence"
	"github.com/cloudramp/cloudramp/internal/platform/gcp"
)

// ProjectStep ensures the target project exists.
type ProjectStep struct{}

// Name implements convergence.Step.
func (ProjectStep) Name() string { return "project" }

// Converge implements convergence.Step.
func (ProjectStep) Converge(ctx *convergence.Context) error {
	cfg := ctx.Config

	project, _, err := convergence.Ensure(ctx.Observer, convergence.Resource[*gcp.Project]{
		Kind: "project",
		Name: cfg.ProjectID,
		Probe: func() (*gcp.Project, bool, error) {
			p, err := ctx.Cloud.GetProject(ctx, cfg.ProjectID)
			if err != nil {
				return nil, false, err
			}
			return p, p != nil, nil
		},
		Create: func() (*gcp.Project, error) {
			return ctx.Cloud.CreateProject(ctx, cfg.ProjectID, cfg.ProjectDescription)
		},
	})
	if err != nil {
		return err
	}

	ctx.Observer.Printf("project %s ready", project.ID)
	return nil
}
