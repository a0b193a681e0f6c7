package k8scluster

import (
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"

	"github.com/hashmap-kz/kubiq/internal/kqlerrors"
)

// fetchPreferredResources runs the transport call retry wraps: this is
// the only part of resolution that can be a retryable transport failure.
func fetchPreferredResources(disc discovery.DiscoveryInterface) ([]*metav1.APIResourceList, error) {
	lists, err := disc.ServerPreferredResources()
	if err != nil && len(lists) == 0 {
		return nil, mapDiscoveryError(err)
	}
	return lists, nil
}

// matchAPIResource scans already-fetched discovery data for a plural
// resource name (e.g. "pods", "deployments"), matching case-insensitively
// and skipping subresources ("pods/status"). This is pure data lookup,
// not a network call, so it never goes through the retry loop.
func matchAPIResource(lists []*metav1.APIResourceList, resource string) (resolvedResource, bool) {
	for _, list := range lists {
		groupVersion, parseErr := schema.ParseGroupVersion(list.GroupVersion)
		if parseErr != nil {
			continue
		}

		for _, apiResource := range list.APIResources {
			if strings.Contains(apiResource.Name, "/") {
				continue
			}
			if !strings.EqualFold(apiResource.Name, resource) {
				continue
			}

			group := apiResource.Group
			version := apiResource.Version
			if group == "" && version == "" {
				group, version = groupVersion.Group, groupVersion.Version
			}

			return resolvedResource{
				gvr:        schema.GroupVersionResource{Group: group, Version: version, Resource: apiResource.Name},
				namespaced: apiResource.Namespaced,
			}, true
		}
	}

	return resolvedResource{}, false
}

func mapDiscoveryError(err error) error {
	if isAPIUnreachableErrorMessage(err.Error()) {
		return &kqlerrors.K8sError{Kind: kqlerrors.ApiUnreachable, Stage: "discovery", Source: err}
	}
	return &kqlerrors.K8sError{Kind: kqlerrors.DiscoveryRun, Source: err}
}
