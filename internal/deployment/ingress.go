package deployment

import (
	"fmt"

	"github.com/cloudramp/cloudramp/internal/convergence"
)

// IngressStep installs the ingress controller bound to the reserved
// static address. It requires AddressStep to have run first.
type IngressStep struct{}

// Name implements convergence.Step.
func (IngressStep) Name() string { return "ingress-controller" }

// Converge implements convergence.Step.
func (IngressStep) Converge(ctx *convergence.Context) error {
	if ctx.State.StaticIP == "" {
		return fmt.Errorf("no static address resolved: the static-address step must run first")
	}

	if err := ctx.Helm.InstallOrUpgrade(ctx, helmReleaseIngressNginx(ctx)); err != nil {
		return fmt.Errorf("failed to converge ingress controller: %w", err)
	}
	return nil
}
