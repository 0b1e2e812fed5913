package deployment

import (
	"fmt"

	"github.com/cloudramp/cloudramp/internal/config"
	"github.com/cloudramp/cloudramp/internal/convergence"
)

// Issuer binds a cluster-wide certificate issuer name to its ACME
// directory endpoint.
type Issuer struct {
	Name          string
	ACMEDirectory string
}

// IssuerForEnvironment maps a TLS environment name to its issuer.
// Exactly two inputs are valid; anything else is a configuration error
// and the caller must halt rather than proceed with an unresolved
// issuer.
func IssuerForEnvironment(env string) (Issuer, error) {
	switch env {
	case config.TLSStaging:
		return Issuer{
			Name:          "letsencrypt-staging",
			ACMEDirectory: "https://acme-staging-v02.api.letsencrypt.org/directory",
		}, nil
	case config.TLSProd:
		return Issuer{
			Name:          "letsencrypt",
			ACMEDirectory: "https://acme-v02.api.letsencrypt.org/directory",
		}, nil
	default:
		return Issuer{}, fmt.Errorf("unknown tls_environment %q: must be %q or %q",
			env, config.TLSStaging, config.TLSProd)
	}
}

const certManagerNamespace = "cert-manager"

// clusterIssuerManifest renders the cluster-wide issuer object that
// cert-manager reconciles. HTTP-01 challenges are solved through the
// nginx ingress class, so the ingress controller must be reachable
// before certificates can be issued.
func clusterIssuerManifest(issuer Issuer, email string) []byte {
	manifest := fmt.Sprintf(`apiVersion: cert-manager.io/v1
kind: ClusterIssuer
metadata:
  name: %s
spec:
  acme:
    server: %s
    email: %s
    privateKeySecretRef:
      name: %s
    solvers:
      - http01:
          ingress:
            class: nginx
`, issuer.Name, issuer.ACMEDirectory, email, issuer.Name)
	return []byte(manifest)
}

// IssuerStep installs cert-manager and applies the cluster issuer for
// the configured TLS environment. The chart install waits for the
// webhook to become ready, otherwise the issuer apply races it.
type IssuerStep struct{}

// Name implements convergence.Step.
func (IssuerStep) Name() string { return "tls-issuer" }

// Converge implements convergence.Step.
func (IssuerStep) Converge(ctx *convergence.Context) error {
	issuer, err := IssuerForEnvironment(ctx.Config.TLSEnvironment)
	if err != nil {
		return err
	}

	err = ctx.Helm.InstallOrUpgrade(ctx, helmReleaseCertManager(ctx))
	if err != nil {
		return fmt.Errorf("failed to converge cert-manager: %w", err)
	}

	manifest := clusterIssuerManifest(issuer, ctx.Config.Email)
	if err := ctx.Kube.ApplyManifests(ctx, manifest, "cloudramp"); err != nil {
		return fmt.Errorf("failed to apply cluster issuer %s: %w", issuer.Name, err)
	}

	ctx.State.IssuerName = issuer.Name
	ctx.Observer.Printf("cluster issuer %s bound to %s", issuer.Name, issuer.ACMEDirectory)
	return nil
}
