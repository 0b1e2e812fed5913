package foundation

import (
	"fmt"
	"time"

	"github.com/cloudramp/cloudramp/internal/convergence"
	"github.com/cloudramp/cloudramp/internal/platform/gcp"
	"github.com/cloudramp/cloudramp/internal/util/retry"
)

// NodeRoles are the role bindings the node service account must carry
// before cluster creation.
var NodeRoles = []string{
	"roles/artifactregistry.reader",
	"roles/logging.logWriter",
	"roles/monitoring.metricWriter",
}

// IdentityStep ensures the cluster's dedicated node service account
// exists, waits for it to become visible (service accounts are
// eventually consistent after creation), and attaches the required
// role bindings.
type IdentityStep struct{}

// Name implements convergence.Step.
func (IdentityStep) Name() string { return "node-identity" }

// Converge implements convergence.Step.
func (s IdentityStep) Converge(ctx *convergence.Context) error {
	cfg := ctx.Config
	email := cfg.ServiceAccountEmail()

	_, created, err := convergence.Ensure(ctx.Observer, convergence.Resource[*gcp.ServiceAccount]{
		Kind: "service account",
		Name: email,
		Probe: func() (*gcp.ServiceAccount, bool, error) {
			sa, err := ctx.Cloud.GetServiceAccount(ctx, email)
			if err != nil {
				return nil, false, err
			}
			return sa, sa != nil, nil
		},
		Create: func() (*gcp.ServiceAccount, error) {
			return ctx.Cloud.CreateServiceAccount(ctx, cfg.ProjectID, cfg.ServiceAccountID, "Cluster node service account")
		},
	})
	if err != nil {
		return err
	}

	if created {
		if err := s.awaitVisibility(ctx, email); err != nil {
			return err
		}
	}

	member := "serviceAccount:" + email
	if err := ctx.Cloud.EnsureRoleBindings(ctx, cfg.ProjectID, member, NodeRoles); err != nil {
		return err
	}

	ctx.State.ServiceAccountEmail = email
	return nil
}

// awaitVisibility polls until the freshly created account is readable.
// Creation is accepted by the provider before the account propagates,
// so the first probe is delayed by a one-time settling period and the
// poll is bounded rather than open-ended.
func (IdentityStep) awaitVisibility(ctx *convergence.Context, email string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(ctx.Timeouts.PostCreateSettle):
	}

	err := retry.WithBackoff(ctx, func() error {
		sa, err := ctx.Cloud.GetServiceAccount(ctx, email)
		if err != nil {
			return retry.Fatal(err)
		}
		if sa == nil {
			return fmt.Errorf("service account %s not yet visible", email)
		}
		return nil
	},
		retry.WithMaxAttempts(ctx.Timeouts.ProbeAttempts),
		retry.WithInterval(ctx.Timeouts.ProbeInterval),
	)
	if err != nil {
		return fmt.Errorf("service account %s did not become visible: %w", email, err)
	}
	return nil
}
