package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable retry bounds and timeout values.
// The probe values bound the service-account visibility wait: creation
// is accepted by the provider before the account becomes readable, so
// the prober polls at a fixed interval until the bound is exhausted.
type Timeouts struct {
	ProbeAttempts    int           // Total visibility probe attempts after resource creation
	ProbeInterval    time.Duration // Fixed interval between visibility probes
	PostCreateSettle time.Duration // One-time delay after a creation call before the first probe
	OperationPoll    time.Duration // Poll interval for long-running cloud operations
	ClusterCreate    time.Duration // Timeout for cluster creation
	ReleaseWait      time.Duration // Timeout for release workload readiness
}

// LoadTimeouts loads timeout configuration from environment variables.
// If a variable is not set or invalid, the default value is used.
//
// Environment variables:
//   - CLOUDRAMP_PROBE_ATTEMPTS (default: 5)
//   - CLOUDRAMP_PROBE_INTERVAL (default: 60s)
//   - CLOUDRAMP_POST_CREATE_SETTLE (default: 10s)
//   - CLOUDRAMP_OPERATION_POLL (default: 10s)
//   - CLOUDRAMP_TIMEOUT_CLUSTER_CREATE (default: 20m)
//   - CLOUDRAMP_TIMEOUT_RELEASE_WAIT (default: 10m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ProbeAttempts:    parseInt("CLOUDRAMP_PROBE_ATTEMPTS", 5),
		ProbeInterval:    parseDuration("CLOUDRAMP_PROBE_INTERVAL", 60*time.Second),
		PostCreateSettle: parseDuration("CLOUDRAMP_POST_CREATE_SETTLE", 10*time.Second),
		OperationPoll:    parseDuration("CLOUDRAMP_OPERATION_POLL", 10*time.Second),
		ClusterCreate:    parseDuration("CLOUDRAMP_TIMEOUT_CLUSTER_CREATE", 20*time.Minute),
		ReleaseWait:      parseDuration("CLOUDRAMP_TIMEOUT_RELEASE_WAIT", 10*time.Minute),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
