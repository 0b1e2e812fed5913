// Package deployment contains the deployment pipeline steps: chart
// repository registration, the container repository and image publish
// gate, the static ingress address, certificate issuing, the ingress
// controller, and the application release. The pipeline requires an
// authenticated cluster context produced by the foundation pipeline.
package deployment
