package deployment

import (
	"github.com/cloudramp/cloudramp/internal/convergence"
	"github.com/cloudramp/cloudramp/internal/platform/helm"
)

// Chart repository sources registered before any remote chart install.
const (
	ingressNginxRepoName = "ingress-nginx"
	ingressNginxRepoURL  = "https://kubernetes.github.io/ingress-nginx"

	jetstackRepoName = "jetstack"
	jetstackRepoURL  = "https://charts.jetstack.io"
)

func helmReleaseCertManager(ctx *convergence.Context) helm.ReleaseSpec {
	return helm.ReleaseSpec{
		ReleaseName: "cert-manager",
		Namespace:   certManagerNamespace,
		RepoURL:     jetstackRepoURL,
		ChartName:   "cert-manager",
		Values: helm.Values{
			"installCRDs": true,
		},
		Wait:    true,
		Timeout: ctx.Timeouts.ReleaseWait,
	}
}

// helmReleaseIngressNginx pins the controller service to the reserved
// static address so the DNS record for the host stays valid across
// controller restarts and re-installs.
func helmReleaseIngressNginx(ctx *convergence.Context) helm.ReleaseSpec {
	return helm.ReleaseSpec{
		ReleaseName: "ingress-nginx",
		Namespace:   "ingress-nginx",
		RepoURL:     ingressNginxRepoURL,
		ChartName:   "ingress-nginx",
		Values: helm.Values{
			"controller": helm.Values{
				"service": helm.Values{
					"loadBalancerIP": ctx.State.StaticIP,
				},
			},
		},
		Wait:    true,
		Timeout: ctx.Timeouts.ReleaseWait,
	}
}

func helmReleaseApp(ctx *convergence.Context) helm.ReleaseSpec {
	cfg := ctx.Config
	return helm.ReleaseSpec{
		ReleaseName: cfg.ReleaseName,
		Namespace:   cfg.Namespace,
		ChartPath:   cfg.ChartPath,
		Values: helm.Values{
			"image": helm.Values{
				"repository": cfg.ImageRepository(),
				"tag":        cfg.ImageTag,
			},
			"ingress": helm.Values{
				"host":          cfg.Host,
				"tlsSecretName": cfg.TLSSecretName(),
				"issuer":        ctx.State.IssuerName,
				"staticIPName":  cfg.StaticIPName,
			},
			"app": helm.Values{
				"email":          cfg.Email,
				"trustedOrigins": []string{"https://" + cfg.Host},
				"secretName":     cfg.SecretName,
			},
		},
		Wait:    true,
		Timeout: ctx.Timeouts.ReleaseWait,
	}
}
