package helm

import (
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// kubeconfigRESTGetter satisfies the RESTClientGetter contract the helm
// action configuration expects, backed by the kubeconfig bytes
// synthesized for the converged cluster. Nothing is written to disk and
// the operator's own kubeconfig file is never touched.
type kubeconfigRESTGetter struct {
	kubeconfig []byte
	namespace  string

	// resolved on first use, then shared by every action in the namespace
	restConfig *rest.Config
}

func newKubeconfigRESTGetter(kubeconfig []byte, namespace string) *kubeconfigRESTGetter {
	return &kubeconfigRESTGetter{kubeconfig: kubeconfig, namespace: namespace}
}

// ToRESTConfig resolves the REST config from the kubeconfig bytes,
// caching it for subsequent calls.
func (g *kubeconfigRESTGetter) ToRESTConfig() (*rest.Config, error) {
	if g.restConfig == nil {
		clientConfig, err := clientcmd.NewClientConfigFromBytes(g.kubeconfig)
		if err != nil {
			return nil, err
		}

		restConfig, err := clientConfig.ClientConfig()
		if err != nil {
			return nil, err
		}
		g.restConfig = restConfig
	}
	return g.restConfig, nil
}

// ToDiscoveryClient wraps discovery in a memory cache; the deferred
// REST mapper below requires a cached implementation.
func (g *kubeconfigRESTGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	restConfig, err := g.ToRESTConfig()
	if err != nil {
		return nil, err
	}

	dc, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, err
	}
	return memory.NewMemCacheClient(dc), nil
}

// ToRESTMapper builds a deferred mapper so API groups are discovered
// only when a chart actually references them.
func (g *kubeconfigRESTGetter) ToRESTMapper() (meta.RESTMapper, error) {
	dc, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}
	return restmapper.NewDeferredDiscoveryRESTMapper(dc), nil
}

// ToRawKubeConfigLoader exposes the client config for callers that need
// namespace resolution.
func (g *kubeconfigRESTGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	clientConfig, _ := clientcmd.NewClientConfigFromBytes(g.kubeconfig)
	return clientConfig
}
