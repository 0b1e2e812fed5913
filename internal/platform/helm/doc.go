// Package helm drives the package-chart installer: idempotent chart
// repository registration, chart loading with dependency resolution,
// and install-or-upgrade of releases against an in-memory kubeconfig.
package helm
