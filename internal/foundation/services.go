package foundation

import (
	"github.com/cloudramp/cloudramp/internal/convergence"
)

// RequiredServices are the API services the pipelines depend on.
// Billing must be linked before enablement, so this step runs after
// BillingStep.
var RequiredServices = []string{
	"compute.googleapis.com",
	"container.googleapis.com",
	"artifactregistry.googleapis.com",
	"iam.googleapis.com",
}

// ServicesStep enables the required API services on the project.
// Already-enabled services are left untouched.
type ServicesStep struct{}

// Name implements convergence.Step.
func (ServicesStep) Name() string { return "services" }

// Converge implements convergence.Step.
func (ServicesStep) Converge(ctx *convergence.Context) error {
	cfg := ctx.Config

	for _, service := range RequiredServices {
		service := service
		_, _, err := convergence.Ensure(ctx.Observer, convergence.Resource[struct{}]{
			Kind: "service",
			Name: service,
			Probe: func() (struct{}, bool, error) {
				enabled, err := ctx.Cloud.ServiceEnabled(ctx, cfg.ProjectID, service)
				return struct{}{}, enabled, err
			},
			Create: func() (struct{}, error) {
				return struct{}{}, ctx.Cloud.EnableService(ctx, cfg.ProjectID, service)
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
