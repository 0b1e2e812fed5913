// Package image publishes the application container image.
//
// Existence is probed with a remote manifest lookup so an image already
// published at its tag is never rebuilt; building and pushing go
// through the container build tool's command surface.
package image
