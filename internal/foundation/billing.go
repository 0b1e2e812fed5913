package foundation

import (
	"fmt"
	"strings"

	"github.com/cloudramp/cloudramp/internal/convergence"
)

// BillingStep ensures the project has exactly one billing account
// attached. Ambiguity is surfaced to the operator, never silently
// resolved: zero available accounts and more than one are both fatal.
type BillingStep struct{}

// Name implements convergence.Step.
func (BillingStep) Name() string { return "billing" }

// Converge implements convergence.Step.
func (BillingStep) Converge(ctx *convergence.Context) error {
	cfg := ctx.Config

	linked, err := ctx.Cloud.GetBillingAccount(ctx, cfg.ProjectID)
	if err != nil {
		return err
	}
	if linked != "" {
		ctx.Observer.Printf("project %s already linked to billing account %s", cfg.ProjectID, linked)
		return nil
	}

	accounts, err := ctx.Cloud.ListBillingAccounts(ctx)
	if err != nil {
		return err
	}

	// The account count decides the outcome and is evaluated exactly
	// once per run.
	switch len(accounts) {
	case 0:
		return fmt.Errorf("no open billing account available to link to project %s", cfg.ProjectID)
	case 1:
		if err := ctx.Cloud.LinkBillingAccount(ctx, cfg.ProjectID, accounts[0]); err != nil {
			return err
		}
		ctx.Observer.Printf("linked billing account %s to project %s", accounts[0], cfg.ProjectID)
		return nil
	default:
		return fmt.Errorf("found %d open billing accounts (%s): set the billing account on project %s manually and re-run",
			len(accounts), strings.Join(accounts, ", "), cfg.ProjectID)
	}
}
