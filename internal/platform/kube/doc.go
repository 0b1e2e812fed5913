// Package kube wraps the cluster object API: namespace creation,
// create-once secret placeholders, and server-side apply of manifests.
package kube
