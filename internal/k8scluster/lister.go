package k8scluster

import (
	"context"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"

	"k8s.io/cli-runtime/pkg/genericclioptions"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
	"github.com/hashmap-kz/kubiq/internal/planner"
)

// Lister is the cluster lister (C4). It owns the process-wide discovery
// cache; one Lister should be constructed per CLI process and reused
// across List calls within that process, per spec §4.4.1/§5.
type Lister struct {
	configFlags *genericclioptions.ConfigFlags
	cache       *discoveryCache
}

// New builds a Lister from the same kubectl-style connection flags the
// rest of the tool already parses.
func New(configFlags *genericclioptions.ConfigFlags) *Lister {
	return &Lister{configFlags: configFlags, cache: newDiscoveryCache()}
}

type clients struct {
	restConfig *rest.Config
	dyn        dynamic.Interface
	disc       discovery.DiscoveryInterface
}

func (l *Lister) buildClients() (clients, error) {
	cfg, err := l.configFlags.ToRESTConfig()
	if err != nil {
		return clients{}, &kqlerrors.K8sError{Kind: kqlerrors.ConfigInfer, Source: err}
	}

	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return clients{}, &kqlerrors.K8sError{Kind: kqlerrors.ClientBuild, Source: err}
	}

	disc, err := discovery.NewDiscoveryClientForConfig(cfg)
	if err != nil {
		return clients{}, &kqlerrors.K8sError{Kind: kqlerrors.ClientBuild, Source: err}
	}

	return clients{restConfig: cfg, dyn: dyn, disc: disc}, nil
}

// List resolves resource and lists every matching object, applying the
// cached-discovery, retry, selector-fallback, and stale-resolution-retry
// policies of spec §4.4.
func (l *Lister) List(ctx context.Context, resource string, options planner.ListQueryOptions) (ListResult, error) {
	trimmed := strings.ToLower(strings.TrimSpace(resource))
	if trimmed == "" {
		return ListResult{}, &kqlerrors.K8sError{Kind: kqlerrors.EmptyResourceName}
	}

	cl, err := l.buildClients()
	if err != nil {
		return ListResult{}, err
	}

	namespace := ""
	if l.configFlags.Namespace != nil {
		namespace = *l.configFlags.Namespace
	}
	key := newCacheKey(cl.restConfig.Host, namespace, trimmed)

	resolved, err := l.resolveResource(ctx, cl, key, trimmed)
	if err != nil {
		return ListResult{}, err
	}

	result, err := l.listWithFallback(ctx, cl, resolved, trimmed, options)
	if err == nil {
		return result, nil
	}

	if !isStaleResolution(err) {
		return ListResult{}, err
	}

	l.cache.invalidate(key)
	resolved, reresolveErr := l.resolveResource(ctx, cl, key, trimmed)
	if reresolveErr != nil {
		return ListResult{}, reresolveErr
	}

	return l.listWithFallback(ctx, cl, resolved, trimmed, options)
}

func isStaleResolution(err error) bool {
	k8sErr, ok := err.(*kqlerrors.K8sError)
	return ok && k8sErr.Kind == kqlerrors.ResourceResolutionStale
}

func (l *Lister) resolveResource(ctx context.Context, cl clients, key cacheKey, resource string) (resolvedResource, error) {
	if cached, ok := l.cache.lookup(key); ok {
		return cached, nil
	}

	result, err := runWithRetry(ctx, "discovery", func(_ context.Context) ([]*metav1.APIResourceList, error) {
		return fetchPreferredResources(cl.disc)
	})
	if err != nil {
		return resolvedResource{}, err
	}

	resolved, found := matchAPIResource(result.value, resource)
	if !found {
		return resolvedResource{}, &kqlerrors.K8sError{Kind: kqlerrors.ResourceNotFound, Resource: resource}
	}

	l.cache.insert(key, resolved)
	return resolved, nil
}
