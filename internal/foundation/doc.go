// Package foundation converges the foundation of the deployment: a
// billed cloud project with the required API services enabled, an IAM
// identity for cluster nodes, and a provisioned Kubernetes cluster.
//
// Its output, a reachable authenticated cluster context in the shared
// state, is the precondition for the deployment pipeline.
package foundation
