package deployment

import (
	"github.com/cloudramp/cloudramp/internal/convergence"
)

// ChartReposStep registers the chart repository sources the later
// installs pull from. Registration is at most once per source.
type ChartReposStep struct{}

// Name implements convergence.Step.
func (ChartReposStep) Name() string { return "chart-repositories" }

// Converge implements convergence.Step.
func (ChartReposStep) Converge(ctx *convergence.Context) error {
	repos := []struct {
		name string
		url  string
	}{
		{ingressNginxRepoName, ingressNginxRepoURL},
		{jetstackRepoName, jetstackRepoURL},
	}

	for _, r := range repos {
		added, err := ctx.Helm.EnsureRepository(r.name, r.url)
		if err != nil {
			return err
		}
		if added {
			ctx.Observer.Printf("registered chart repository %s (%s)", r.name, r.url)
		} else {
			ctx.Observer.Printf("chart repository %s already registered", r.name)
		}
	}
	return nil
}
