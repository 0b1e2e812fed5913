package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Host:           "app.example.com",
		Email:          "ops@example.com",
		ProjectID:      "cloudramp-app",
		Zone:           "europe-west3-a",
		NodeCount:      1,
		TLSEnvironment: TLSStaging,
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingHost(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Host = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "host is required")
}

func TestValidate_MissingEmail(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Email = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}

func TestValidate_UnknownTLSEnvironment(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.TLSEnvironment = "production"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tls_environment")
}

func TestValidate_AcceptsProd(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.TLSEnvironment = TLSProd
	require.NoError(t, cfg.Validate())
}

func TestValidate_NodeCount(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.NodeCount = 0

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "node_count")
}

func TestRegion_DerivedFromZone(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	assert.Equal(t, "europe-west3", cfg.Region())

	cfg.Zone = "us-central1-f"
	assert.Equal(t, "us-central1", cfg.Region())
}

func TestRegistryLocation(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.RegistryHost = "europe-west3-docker.pkg.dev"
	assert.Equal(t, "europe-west3", cfg.RegistryLocation())
}

func TestImageRef(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.RegistryHost = "europe-west3-docker.pkg.dev"
	cfg.RepoName = "apps"
	cfg.ImageName = "web"
	cfg.ImageTag = "v3"

	assert.Equal(t,
		"europe-west3-docker.pkg.dev/cloudramp-app/apps/web:v3",
		cfg.ImageRef())
	assert.Equal(t,
		"europe-west3-docker.pkg.dev/cloudramp-app/apps/web",
		cfg.ImageRepository())
}

func TestServiceAccountEmail(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.ServiceAccountID = "cluster-minimal"

	assert.Equal(t,
		"cluster-minimal@cloudramp-app.iam.gserviceaccount.com",
		cfg.ServiceAccountEmail())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cloudramp-app", cfg.ProjectID)
	assert.Equal(t, TLSStaging, cfg.TLSEnvironment)
	assert.Equal(t, 1, cfg.NodeCount)
	assert.Equal(t, "e2-small", cfg.MachineType)
	// Mandatory fields have no defaults.
	assert.Empty(t, cfg.Host)
	assert.Empty(t, cfg.Email)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CLOUDRAMP_HOST", "app.example.com")
	t.Setenv("CLOUDRAMP_PROJECT_ID", "other-project")
	t.Setenv("CLOUDRAMP_NODE_COUNT", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "app.example.com", cfg.Host)
	assert.Equal(t, "other-project", cfg.ProjectID)
	assert.Equal(t, 3, cfg.NodeCount)
}

// The mandatory parameters have no meaningful default, so their env
// overrides only decode if the keys are registered with viper.
func TestLoad_MandatoryParametersFromEnvOnly(t *testing.T) {
	t.Setenv("CLOUDRAMP_HOST", "env.example.com")
	t.Setenv("CLOUDRAMP_EMAIL", "env@example.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env.example.com", cfg.Host)
	assert.Equal(t, "env@example.com", cfg.Email)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cloudramp.yaml")
	content := []byte("host: file.example.com\nemail: file@example.com\ntls_environment: prod\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file.example.com", cfg.Host)
	assert.Equal(t, "file@example.com", cfg.Email)
	assert.Equal(t, TLSProd, cfg.TLSEnvironment)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadTimeouts_Defaults(t *testing.T) {
	timeouts := LoadTimeouts()

	assert.Equal(t, 5, timeouts.ProbeAttempts)
	assert.Equal(t, 60*time.Second, timeouts.ProbeInterval)
	assert.Equal(t, 10*time.Second, timeouts.PostCreateSettle)
}

func TestLoadTimeouts_EnvOverride(t *testing.T) {
	t.Setenv("CLOUDRAMP_PROBE_ATTEMPTS", "2")
	t.Setenv("CLOUDRAMP_PROBE_INTERVAL", "5ms")

	timeouts := LoadTimeouts()

	assert.Equal(t, 2, timeouts.ProbeAttempts)
	assert.Equal(t, 5*time.Millisecond, timeouts.ProbeInterval)
}

func TestLoadTimeouts_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CLOUDRAMP_PROBE_ATTEMPTS", "many")

	timeouts := LoadTimeouts()

	assert.Equal(t, 5, timeouts.ProbeAttempts)
}
