package widgets

import "github.com/go-drift/renderkit/pkg/core"

// Registry returns the built-in component types keyed by tag, for use with
// [core.Factory.AddCustomResolver] and scene files.
func Registry() map[core.Tag]*core.ComponentType {
	return map[core.Tag]*core.ComponentType{
		"ContextProvider": ContextProviderType,
		"ContextConsumer": ContextConsumerType,
		"WithAssets":      WithAssetsType,
		"Suspense":        SuspenseType,
		"Transition":      TransitionType,
		"ErrorBoundary":   ErrorBoundaryType,
		"List":            ListType,
		"Grid":            GridType,
	}
}
