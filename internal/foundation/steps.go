package foundation

import "github.com/cloudramp/cloudramp/internal/convergence"

// Steps returns the foundation pipeline steps in causal order: billing
// before service enablement, the node identity before the cluster.
// The order must not change.
func Steps() []convergence.Step {
	return []convergence.Step{
		ProjectStep{},
		BillingStep{},
		ServicesStep{},
		IdentityStep{},
		NewClusterStep(),
	}
}
