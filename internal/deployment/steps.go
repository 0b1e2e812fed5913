package deployment

import "github.com/cloudramp/cloudramp/internal/convergence"

// Steps returns the deployment pipeline steps in causal order: the
// static address before the ingress controller that binds it, the
// issuer before the release that references it, the image before the
// release that runs it. The order must not change.
func Steps() []convergence.Step {
	return []convergence.Step{
		ChartReposStep{},
		RegistryStep{},
		AddressStep{},
		ImageStep{},
		NamespaceStep{},
		IssuerStep{},
		IngressStep{},
		ReleaseStep{},
	}
}
