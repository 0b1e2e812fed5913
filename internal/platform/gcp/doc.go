// Package gcp wraps the Google Cloud resource-management APIs behind the
// CloudManager interface.
//
// The RealClient implements CloudManager on top of the cloud.google.com
// client libraries; MockClient provides a function-field test double.
// Probe methods return (nil, nil) when the resource cleanly does not
// exist and an error for any other failure, so callers never confuse a
// transient failure with absence.
package gcp
