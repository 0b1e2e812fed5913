// Package retry provides bounded retry with backoff for collaborator calls.
//
// The [WithBackoff] function retries an operation with configurable max
// attempts, interval, and backoff multiplier. It is used to tolerate
// eventual-consistency delays in cloud resources: a successful creation
// call does not guarantee the resource is immediately visible to reads.
package retry
