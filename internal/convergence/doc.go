// Package convergence provides the shared machinery for convergence
// pipelines: the sequential step runner, the existence-guarded creator,
// and the observer used for structured progress reporting.
//
// A convergence step queries current collaborator state and mutates only
// if it differs from desired state. Steps are strictly ordered; the
// pipeline halts on the first failure, leaving previously converged
// resources intact for the next run to pick up from.
package convergence
