package gcp

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsNotFound reports whether err is a clean "resource does not exist"
// response from either a gRPC-based API or the compute REST API.
// Anything else (auth failure, transient unavailability) must be
// propagated rather than treated as absence.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	if s, ok := status.FromError(err); ok && s.Code() == codes.NotFound {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return true
	}

	return false
}
