// Package config loads and validates the deployment configuration.
//
// Configuration is resolved once at startup from defaults, an optional
// cloudramp.yaml file, and CLOUDRAMP_* environment variable overrides,
// then validated before any collaborator call is made. The resulting
// Config is treated as immutable for the rest of the run.
package config
