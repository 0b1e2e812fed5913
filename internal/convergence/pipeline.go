package convergence

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudramp/cloudramp/internal/config"
	"github.com/cloudramp/cloudramp/internal/platform/gcp"
	"github.com/cloudramp/cloudramp/internal/platform/helm"
	"github.com/cloudramp/cloudramp/internal/platform/image"
	"github.com/cloudramp/cloudramp/internal/platform/kube"
)

// Step defines a single convergence step.
type Step interface {
	// Name returns the human-readable name of this step.
	Name() string

	// Converge queries current state and applies the minimal change to
	// reach desired state.
	Converge(ctx *Context) error
}

// State holds the shared results of convergence steps.
// It is progressively populated as each step completes and is read by
// subsequent steps that need earlier results.
type State struct {
	// Foundation results
	ServiceAccountEmail string
	Kubeconfig          []byte

	// Deployment results
	StaticIP   string
	ImageRef   string
	IssuerName string
}

// Context wraps all dependencies and state needed by convergence steps.
type Context struct {
	context.Context
	Config   *config.Config
	Timeouts *config.Timeouts
	State    *State
	Observer Observer

	// Collaborators. Cloud and Image are available from the start;
	// Helm and Kube are connected once a reachable cluster context
	// exists (after the foundation pipeline).
	Cloud gcp.CloudManager
	Image image.Publisher
	Helm  helm.Installer
	Kube  kube.Client
}

// NewContext creates a convergence context with an empty state.
func NewContext(ctx context.Context, cfg *config.Config, cloud gcp.CloudManager, observer Observer) *Context {
	if observer == nil {
		observer = NewConsoleObserver()
	}
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Timeouts: config.LoadTimeouts(),
		State:    &State{},
		Observer: observer,
		Cloud:    cloud,
	}
}

// Pipeline is an ordered sequence of convergence steps.
type Pipeline struct {
	Name  string
	Steps []Step
}

// NewPipeline creates a pipeline from the given steps.
func NewPipeline(name string, steps ...Step) *Pipeline {
	return &Pipeline{Name: name, Steps: steps}
}

// Run executes all steps sequentially, halting on the first failure.
// No step begins before the prior step's collaborator call returns.
func (p *Pipeline) Run(ctx *Context) error {
	start := time.Now()
	ctx.Observer.Printf("Starting %s pipeline with %d steps...", p.Name, len(p.Steps))

	for i, step := range p.Steps {
		stepStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", step.Name(), i+1, len(p.Steps))

		ctx.Observer.Event(Event{Type: EventStepStarted, Step: step.Name(), Timestamp: stepStart})

		if err := step.Converge(ctx); err != nil {
			ctx.Observer.Event(Event{
				Type: EventStepFailed, Step: step.Name(),
				Message: err.Error(), Timestamp: time.Now(),
			})
			return fmt.Errorf("%s step failed: %w", step.Name(), err)
		}

		ctx.Observer.Printf("[%s] completed in %v", name, time.Since(stepStart).Round(time.Millisecond))
		ctx.Observer.Event(Event{Type: EventStepCompleted, Step: step.Name(), Timestamp: time.Now()})
	}

	ctx.Observer.Printf("%s pipeline completed in %v", p.Name, time.Since(start).Round(time.Millisecond))
	return nil
}

// StepFunc adapts a function to the Step interface.
type StepFunc struct {
	StepName string
	Fn       func(ctx *Context) error
}

// Name implements Step.
func (s StepFunc) Name() string { return s.StepName }

// Converge implements Step.
func (s StepFunc) Converge(ctx *Context) error { return s.Fn(ctx) }
