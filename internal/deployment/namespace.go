package deployment

import (
	"github.com/cloudramp/cloudramp/internal/convergence"
)

// NamespaceStep ensures the application namespace and its placeholder
// secret exist. The secret is created empty exactly once and never
// overwritten, so values an operator fills in later survive re-runs.
type NamespaceStep struct{}

// Name implements convergence.Step.
func (NamespaceStep) Name() string { return "namespace" }

// Converge implements convergence.Step.
func (NamespaceStep) Converge(ctx *convergence.Context) error {
	cfg := ctx.Config

	created, err := ctx.Kube.EnsureNamespace(ctx, cfg.Namespace)
	if err != nil {
		return err
	}
	if created {
		ctx.Observer.Printf("created namespace %s", cfg.Namespace)
	}

	created, err = ctx.Kube.EnsurePlaceholderSecret(ctx, cfg.Namespace, cfg.SecretName)
	if err != nil {
		return err
	}
	if created {
		ctx.Observer.Printf("created placeholder secret %s/%s", cfg.Namespace, cfg.SecretName)
	} else {
		ctx.Observer.Printf("secret %s/%s already present, leaving it untouched", cfg.Namespace, cfg.SecretName)
	}
	return nil
}
