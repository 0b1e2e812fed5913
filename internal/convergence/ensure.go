package convergence

import (
	"fmt"
	"time"
)

// Resource describes an existence-guarded resource: a probe that
// reports whether the resource is present, and a creation operation
// invoked only when it is not. A probe failure that is not a clean
// "not found" must be returned as an error by Probe, never treated as
// absence.
type Resource[T any] struct {
	// Kind names the resource kind for diagnostics, e.g. "cluster".
	Kind string

	// Name identifies the concrete resource.
	Name string

	// Probe reports the current resource and whether it was found.
	Probe func() (T, bool, error)

	// Create creates the resource.
	Create func() (T, error)
}

// Ensure applies the existence-guard pattern: probe, then create only
// on a clean "not found". It returns the resource and whether a
// creation call was made. On a fully converged system Ensure issues
// zero creation calls.
func Ensure[T any](obs Observer, r Resource[T]) (T, bool, error) {
	var zero T

	resource, found, err := r.Probe()
	if err != nil {
		return zero, false, fmt.Errorf("failed to probe %s %q: %w", r.Kind, r.Name, err)
	}

	if found {
		obs.Event(Event{
			Type:      EventResourceExists,
			Resource:  fmt.Sprintf("%s/%s", r.Kind, r.Name),
			Message:   "already present, skipping creation",
			Timestamp: time.Now(),
		})
		return resource, false, nil
	}

	obs.Event(Event{
		Type:      EventResourceCreating,
		Resource:  fmt.Sprintf("%s/%s", r.Kind, r.Name),
		Timestamp: time.Now(),
	})

	resource, err = r.Create()
	if err != nil {
		return zero, false, fmt.Errorf("failed to create %s %q: %w", r.Kind, r.Name, err)
	}

	obs.Event(Event{
		Type:      EventResourceCreated,
		Resource:  fmt.Sprintf("%s/%s", r.Kind, r.Name),
		Timestamp: time.Now(),
	})
	return resource, true, nil
}
