package deployment

import (
	"fmt"

	"github.com/cloudramp/cloudramp/internal/convergence"
)

// ImageStep is the build-and-publish gate. The tag is the unit of
// idempotency: an existing manifest at the target tag skips build and
// push entirely, and a code change under an unchanged tag will not
// rebuild. Callers bump the tag to force a rebuild.
type ImageStep struct{}

// Name implements convergence.Step.
func (ImageStep) Name() string { return "image" }

// Converge implements convergence.Step.
func (ImageStep) Converge(ctx *convergence.Context) error {
	cfg := ctx.Config
	ref := cfg.ImageRef()

	exists, err := ctx.Image.Exists(ctx, ref)
	if err != nil {
		return err
	}
	if exists {
		ctx.Observer.Printf("image %s already published", ref)
		ctx.State.ImageRef = ref
		return nil
	}

	ctx.Observer.Printf("building image %s from %s", ref, cfg.BuildContext)
	if err := ctx.Image.Build(ctx, ref, cfg.BuildContext); err != nil {
		return fmt.Errorf("failed to build image %s: %w", ref, err)
	}
	if err := ctx.Image.Push(ctx, ref); err != nil {
		return fmt.Errorf("failed to push image %s: %w", ref, err)
	}

	ctx.State.ImageRef = ref
	return nil
}
