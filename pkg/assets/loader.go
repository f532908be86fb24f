// Package assets caches externally loaded resources for a render root and
// notifies subscribers as batches complete.
package assets

import "context"

// Resource is a loaded asset. Its concrete type is decided by the Loader.
type Resource any

// Loader fetches resources. Implementations may return a partial map
// alongside an error; entries present in the map are cached.
type Loader interface {
	LoadAll(ctx context.Context, urls []string) (map[string]Resource, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, urls []string) (map[string]Resource, error)

// LoadAll calls f.
func (f LoaderFunc) LoadAll(ctx context.Context, urls []string) (map[string]Resource, error) {
	return f(ctx, urls)
}

// Batch describes a completed AddMany call.
type Batch struct {
	// URLs are the URLs requested, including ones already cached.
	URLs []string
	// Loaded are the URLs fetched by this batch.
	Loaded []string
	// Err is an *errors.AssetError when any URL failed.
	Err error
}
