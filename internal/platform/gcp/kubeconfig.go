package gcp

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2/google"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// BuildKubeconfig synthesizes kubeconfig bytes for the cluster from its
// endpoint and CA certificate, authenticated with a token from the
// operator's application default credentials. The token is short-lived,
// which is sufficient for a single convergence run.
func BuildKubeconfig(ctx context.Context, cluster *Cluster) ([]byte, error) {
	if cluster.Endpoint == "" {
		return nil, fmt.Errorf("cluster %s has no endpoint", cluster.Name)
	}

	caData, err := base64.StdEncoding.DecodeString(cluster.CACertificate)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cluster CA certificate: %w", err)
	}

	tokenSource, err := google.DefaultTokenSource(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, fmt.Errorf("failed to build token source: %w", err)
	}
	token, err := tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	name := cluster.Name
	kubeconfig := clientcmdapi.Config{
		Clusters: map[string]*clientcmdapi.Cluster{
			name: {
				Server:                   "https://" + cluster.Endpoint,
				CertificateAuthorityData: caData,
			},
		},
		AuthInfos: map[string]*clientcmdapi.AuthInfo{
			name: {
				Token: token.AccessToken,
			},
		},
		Contexts: map[string]*clientcmdapi.Context{
			name: {
				Cluster:  name,
				AuthInfo: name,
			},
		},
		CurrentContext: name,
	}

	data, err := clientcmd.Write(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize kubeconfig: %w", err)
	}
	return data, nil
}
