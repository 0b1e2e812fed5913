package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// TLS environment names accepted by the issuer selector.
const (
	TLSStaging = "staging"
	TLSProd    = "prod"
)

// Config holds the full deployment configuration.
// All fields are resolved before the first pipeline step runs.
type Config struct {
	// Mandatory parameters. The run fails immediately if either is unset.
	Host  string `mapstructure:"host" yaml:"host"`
	Email string `mapstructure:"email" yaml:"email"`

	// Project
	ProjectID          string `mapstructure:"project_id" yaml:"project_id"`
	ProjectDescription string `mapstructure:"project_description" yaml:"project_description"`
	Zone               string `mapstructure:"zone" yaml:"zone"`

	// Cluster
	ClusterName      string `mapstructure:"cluster_name" yaml:"cluster_name"`
	MachineType      string `mapstructure:"machine_type" yaml:"machine_type"`
	NodeCount        int    `mapstructure:"node_count" yaml:"node_count"`
	ServiceAccountID string `mapstructure:"service_account_id" yaml:"service_account_id"`

	// Container image
	RegistryHost string `mapstructure:"registry_host" yaml:"registry_host"`
	RepoName     string `mapstructure:"repo_name" yaml:"repo_name"`
	ImageName    string `mapstructure:"image_name" yaml:"image_name"`
	ImageTag     string `mapstructure:"image_tag" yaml:"image_tag"`
	BuildContext string `mapstructure:"build_context" yaml:"build_context"`

	// Deployment
	Namespace      string `mapstructure:"namespace" yaml:"namespace"`
	StaticIPName   string `mapstructure:"static_ip_name" yaml:"static_ip_name"`
	TLSEnvironment string `mapstructure:"tls_environment" yaml:"tls_environment"`
	ReleaseName    string `mapstructure:"release_name" yaml:"release_name"`
	ChartPath      string `mapstructure:"chart_path" yaml:"chart_path"`
	SecretName     string `mapstructure:"secret_name" yaml:"secret_name"`
}

// EnvPrefix is the prefix for environment variable overrides,
// e.g. CLOUDRAMP_PROJECT_ID overrides project_id.
const EnvPrefix = "CLOUDRAMP"

// Load resolves the configuration from defaults, an optional YAML file,
// and environment variable overrides. Every parameter is independently
// overridable from the calling environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Mandatory parameters default to empty so viper knows the keys;
	// env-only keys are invisible to Unmarshal unless registered.
	v.SetDefault("host", "")
	v.SetDefault("email", "")
	v.SetDefault("project_id", "cloudramp-app")
	v.SetDefault("project_description", "Cloudramp application")
	v.SetDefault("zone", "europe-west3-a")
	v.SetDefault("cluster_name", "cloudramp")
	v.SetDefault("machine_type", "e2-small")
	v.SetDefault("node_count", 1)
	v.SetDefault("service_account_id", "cluster-minimal")
	v.SetDefault("registry_host", "europe-west3-docker.pkg.dev")
	v.SetDefault("repo_name", "apps")
	v.SetDefault("image_name", "app")
	v.SetDefault("image_tag", "latest")
	v.SetDefault("build_context", ".")
	v.SetDefault("namespace", "app")
	v.SetDefault("static_ip_name", "app-ip")
	v.SetDefault("tls_environment", TLSStaging)
	v.SetDefault("release_name", "app")
	v.SetDefault("chart_path", "./chart")
	v.SetDefault("secret_name", "app-secrets")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("cloudramp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// The config file is optional; env and defaults suffice.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read cloudramp.yaml: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// Validate checks mandatory parameters and constrains enum fields.
// It must be called before any collaborator call is made.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required: set CLOUDRAMP_HOST or host in cloudramp.yaml")
	}
	if c.Email == "" {
		return fmt.Errorf("email is required: set CLOUDRAMP_EMAIL or email in cloudramp.yaml")
	}
	if c.TLSEnvironment != TLSStaging && c.TLSEnvironment != TLSProd {
		return fmt.Errorf("invalid tls_environment %q: must be %q or %q",
			c.TLSEnvironment, TLSStaging, TLSProd)
	}
	if c.NodeCount < 1 {
		return fmt.Errorf("node_count must be at least 1, got %d", c.NodeCount)
	}
	if c.Zone == "" {
		return fmt.Errorf("zone is required")
	}
	if !strings.Contains(c.Zone, "-") {
		return fmt.Errorf("invalid zone %q: expected a zone like europe-west3-a", c.Zone)
	}
	return nil
}

// Region derives the region from the configured zone by stripping the
// zone suffix, e.g. europe-west3-a -> europe-west3. The static address
// must be reserved in the cluster's region or the ingress binding fails.
func (c *Config) Region() string {
	i := strings.LastIndex(c.Zone, "-")
	if i < 0 {
		return c.Zone
	}
	return c.Zone[:i]
}

// RegistryLocation derives the Artifact Registry location from the
// registry host, e.g. europe-west3-docker.pkg.dev -> europe-west3.
func (c *Config) RegistryLocation() string {
	host := c.RegistryHost
	if i := strings.Index(host, "-docker.pkg.dev"); i > 0 {
		return host[:i]
	}
	return c.Region()
}

// ServiceAccountEmail returns the email the node service account gets
// once created in the target project.
func (c *Config) ServiceAccountEmail() string {
	return fmt.Sprintf("%s@%s.iam.gserviceaccount.com", c.ServiceAccountID, c.ProjectID)
}

// ImageRef returns the fully qualified image reference, tag included.
// The tag is the unit of idempotency for the publish gate: re-running
// with an unchanged tag will not rebuild, callers bump the tag to force
// a rebuild.
func (c *Config) ImageRef() string {
	return fmt.Sprintf("%s/%s/%s/%s:%s",
		c.RegistryHost, c.ProjectID, c.RepoName, c.ImageName, c.ImageTag)
}

// ImageRepository returns the image reference without the tag, as chart
// values expect repository and tag separately.
func (c *Config) ImageRepository() string {
	return fmt.Sprintf("%s/%s/%s/%s",
		c.RegistryHost, c.ProjectID, c.RepoName, c.ImageName)
}

// TLSSecretName is the certificate secret the ingress references.
func (c *Config) TLSSecretName() string {
	return c.ReleaseName + "-tls"
}
