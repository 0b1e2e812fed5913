package helm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/downloader"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/repo"
)

// Values holds chart value overrides.
type Values = map[string]interface{}

// ReleaseSpec describes a desired release. Exactly one of ChartPath
// (local chart directory) or RepoURL+ChartName (remote chart) is set.
type ReleaseSpec struct {
	ReleaseName string
	Namespace   string

	RepoURL   string
	ChartName string
	Version   string
	ChartPath string

	Values Values

	// Wait blocks until the release's workloads report ready.
	Wait    bool
	Timeout time.Duration
}

// Installer is the package-chart installer collaborator surface.
type Installer interface {
	// EnsureRepository registers a chart repository at most once per
	// source, reporting whether a registration was performed.
	EnsureRepository(name, url string) (bool, error)

	// InstallOrUpgrade installs the release or upgrades it if present.
	InstallOrUpgrade(ctx context.Context, spec ReleaseSpec) error

	// ReleaseExists reports whether the release has any history in the
	// namespace.
	ReleaseExists(releaseName, namespace string) (bool, error)
}

// Client implements Installer using the Helm action packages with an
// in-memory kubeconfig.
type Client struct {
	kubeconfig []byte
	settings   *cli.EnvSettings

	// action configurations are namespace-bound, cached per namespace
	configs map[string]*action.Configuration
}

var _ Installer = (*Client)(nil)

// NewClient creates a Helm client from kubeconfig bytes.
func NewClient(kubeconfig []byte) *Client {
	return &Client{
		kubeconfig: kubeconfig,
		settings:   cli.New(),
		configs:    make(map[string]*action.Configuration),
	}
}

func (c *Client) actionConfig(namespace string) (*action.Configuration, error) {
	if cfg, ok := c.configs[namespace]; ok {
		return cfg, nil
	}

	cfg := new(action.Configuration)
	restGetter := newKubeconfigRESTGetter(c.kubeconfig, namespace)

	// Suppress Helm's debug output.
	if err := cfg.Init(restGetter, namespace, "secret", func(string, ...interface{}) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	c.configs[namespace] = cfg
	return cfg, nil
}

// EnsureRepository implements Installer. The repository file is probed
// for the entry before anything is written, so a registered source is
// never re-added.
func (c *Client) EnsureRepository(name, url string) (bool, error) {
	repoFile := c.settings.RepositoryConfig

	f, err := loadRepoFile(repoFile)
	if err != nil {
		return false, err
	}

	if f.Has(name) {
		return false, nil
	}

	entry := &repo.Entry{Name: name, URL: url}
	chartRepo, err := repo.NewChartRepository(entry, getter.All(c.settings))
	if err != nil {
		return false, fmt.Errorf("failed to construct chart repository %s: %w", url, err)
	}
	if _, err := chartRepo.DownloadIndexFile(); err != nil {
		return false, fmt.Errorf("repository %s is unreachable: %w", url, err)
	}

	f.Update(entry)
	if err := f.WriteFile(repoFile, 0o644); err != nil {
		return false, fmt.Errorf("failed to write repository file %s: %w", repoFile, err)
	}
	return true, nil
}

// loadRepoFile reads the repository file, treating a missing file as an
// empty registry. The absence check unwraps, since helm may wrap the
// underlying read error.
func loadRepoFile(path string) (*repo.File, error) {
	f, err := repo.LoadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load repository file %s: %w", path, err)
		}
		return repo.NewFile(), nil
	}
	return f, nil
}

// ReleaseExists implements Installer.
func (c *Client) ReleaseExists(releaseName, namespace string) (bool, error) {
	cfg, err := c.actionConfig(namespace)
	if err != nil {
		return false, err
	}

	histClient := action.NewHistory(cfg)
	histClient.Max = 1
	if _, err := histClient.Run(releaseName); err != nil {
		return false, nil
	}
	return true, nil
}

// InstallOrUpgrade implements Installer with install-or-upgrade
// semantics: the release is never duplicated per namespace.
func (c *Client) InstallOrUpgrade(ctx context.Context, spec ReleaseSpec) error {
	exists, err := c.ReleaseExists(spec.ReleaseName, spec.Namespace)
	if err != nil {
		return err
	}

	if exists {
		return c.upgrade(ctx, spec)
	}
	return c.install(ctx, spec)
}

func (c *Client) install(ctx context.Context, spec ReleaseSpec) error {
	cfg, err := c.actionConfig(spec.Namespace)
	if err != nil {
		return err
	}

	installClient := action.NewInstall(cfg)
	installClient.ReleaseName = spec.ReleaseName
	installClient.Namespace = spec.Namespace
	installClient.CreateNamespace = true
	installClient.Version = spec.Version
	installClient.Wait = spec.Wait
	installClient.Timeout = spec.Timeout

	ch, err := c.loadChart(spec)
	if err != nil {
		return fmt.Errorf("failed to load chart for %s: %w", spec.ReleaseName, err)
	}

	if _, err := installClient.RunWithContext(ctx, ch, spec.Values); err != nil {
		return fmt.Errorf("failed to install release %s: %w", spec.ReleaseName, err)
	}
	return nil
}

func (c *Client) upgrade(ctx context.Context, spec ReleaseSpec) error {
	cfg, err := c.actionConfig(spec.Namespace)
	if err != nil {
		return err
	}

	upgradeClient := action.NewUpgrade(cfg)
	upgradeClient.Namespace = spec.Namespace
	upgradeClient.Version = spec.Version
	upgradeClient.Wait = spec.Wait
	upgradeClient.Timeout = spec.Timeout
	upgradeClient.ReuseValues = false

	ch, err := c.loadChart(spec)
	if err != nil {
		return fmt.Errorf("failed to load chart for %s: %w", spec.ReleaseName, err)
	}

	if _, err := upgradeClient.RunWithContext(ctx, spec.ReleaseName, ch, spec.Values); err != nil {
		return fmt.Errorf("failed to upgrade release %s: %w", spec.ReleaseName, err)
	}
	return nil
}

// loadChart loads either a local chart directory (resolving missing
// dependencies first) or a chart from a registered repository.
func (c *Client) loadChart(spec ReleaseSpec) (*chart.Chart, error) {
	if spec.ChartPath != "" {
		return c.loadLocalChart(spec.ChartPath)
	}

	chartPath, err := repo.FindChartInRepoURL(
		spec.RepoURL,
		spec.ChartName,
		spec.Version,
		"", "", "",
		getter.All(c.settings),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find chart %s in repo %s: %w", spec.ChartName, spec.RepoURL, err)
	}

	defer func() {
		_ = os.Remove(chartPath)
	}()

	return loader.Load(chartPath)
}

func (c *Client) loadLocalChart(path string) (*chart.Chart, error) {
	ch, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	if req := ch.Metadata.Dependencies; len(req) > 0 {
		if err := action.CheckDependencies(ch, req); err != nil {
			manager := &downloader.Manager{
				Out:              io.Discard,
				ChartPath:        path,
				Getters:          getter.All(c.settings),
				RepositoryConfig: c.settings.RepositoryConfig,
				RepositoryCache:  c.settings.RepositoryCache,
			}
			if err := manager.Update(); err != nil {
				return nil, fmt.Errorf("failed to resolve chart dependencies: %w", err)
			}
			if ch, err = loader.Load(path); err != nil {
				return nil, err
			}
		}
	}

	return ch, nil
}

// MockInstaller is a function-field test double for Installer.
type MockInstaller struct {
	EnsureRepositoryFunc func(name, url string) (bool, error)
	InstallOrUpgradeFunc func(ctx context.Context, spec ReleaseSpec) error
	ReleaseExistsFunc    func(releaseName, namespace string) (bool, error)
}

var _ Installer = (*MockInstaller)(nil)

// EnsureRepository implements Installer.
func (m *MockInstaller) EnsureRepository(name, url string) (bool, error) {
	if m.EnsureRepositoryFunc != nil {
		return m.EnsureRepositoryFunc(name, url)
	}
	return false, nil
}

// InstallOrUpgrade implements Installer.
func (m *MockInstaller) InstallOrUpgrade(ctx context.Context, spec ReleaseSpec) error {
	if m.InstallOrUpgradeFunc != nil {
		return m.InstallOrUpgradeFunc(ctx, spec)
	}
	return nil
}

// ReleaseExists implements Installer.
func (m *MockInstaller) ReleaseExists(releaseName, namespace string) (bool, error) {
	if m.ReleaseExistsFunc != nil {
		return m.ReleaseExistsFunc(releaseName, namespace)
	}
	return false, nil
}
