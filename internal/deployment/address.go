package deployment

import (
	"fmt"

	"github.com/cloudramp/cloudramp/internal/convergence"
	"github.com/cloudramp/cloudramp/internal/platform/gcp"
)

// AddressStep ensures the static ingress address is reserved in the
// cluster's region and records the allocated IP literal for the
// ingress controller binding.
type AddressStep struct{}

// Name implements convergence.Step.
func (AddressStep) Name() string { return "static-address" }

// Converge implements convergence.Step.
func (AddressStep) Converge(ctx *convergence.Context) error {
	cfg := ctx.Config
	region := cfg.Region()

	address, _, err := convergence.Ensure(ctx.Observer, convergence.Resource[*gcp.Address]{
		Kind: "static address",
		Name: region + "/" + cfg.StaticIPName,
		Probe: func() (*gcp.Address, bool, error) {
			a, err := ctx.Cloud.GetAddress(ctx, cfg.ProjectID, region, cfg.StaticIPName)
			if err != nil {
				return nil, false, err
			}
			return a, a != nil, nil
		},
		Create: func() (*gcp.Address, error) {
			return ctx.Cloud.ReserveAddress(ctx, cfg.ProjectID, region, cfg.StaticIPName)
		},
	})
	if err != nil {
		return err
	}
	if address.IP == "" {
		return fmt.Errorf("static address %s has no allocated IP yet", cfg.StaticIPName)
	}

	ctx.State.StaticIP = address.IP
	ctx.Observer.Printf("static address %s resolves to %s", cfg.StaticIPName, address.IP)
	return nil
}
