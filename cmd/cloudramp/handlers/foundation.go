package handlers

import "context"

// Foundation runs only the foundation pipeline: billed project,
// enabled services, node identity, and cluster.
func Foundation(ctx context.Context, configPath string) error {
	runCtx, err := setup(ctx, configPath)
	if err != nil {
		return err
	}
	return runFoundation(runCtx)
}
