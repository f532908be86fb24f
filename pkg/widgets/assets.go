package widgets

import (
	stderrors "errors"
	"slices"

	"github.com/go-drift/renderkit/pkg/assets"
	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/errors"
)

// WithAssetsType gates its children on a set of cached assets.
var WithAssetsType = core.Define("WithAssets", func() core.Instance { return &withAssets{} })

// WithAssets renders Children only once every URL is in the root's asset
// cache, and nothing before that. Missing URLs are requested on mount.
// A failed load is thrown to the nearest error boundary.
type WithAssets struct {
	URLs     []string
	Key      any
	Children []*core.Element
}

// Element builds the WithAssets element.
func (w WithAssets) Element() *core.Element {
	props := core.Props{"urls": w.URLs}
	if w.Key != nil {
		props[core.KeyProp] = w.Key
	}
	return core.H(WithAssetsType, props, w.Children...)
}

type withAssets struct {
	core.StateBase
	urls    []string
	manager *assets.Manager
}

func (w *withAssets) Init() error {
	meta := w.Meta()
	if meta == nil || meta.Assets == nil {
		return &errors.ConfigError{Op: "widgets.WithAssets", Component: "WithAssets", Err: errors.ErrNoResolver}
	}
	w.manager = meta.Assets
	w.urls = slices.Clone(w.Props().Strings("urls"))
	w.OnDispose(w.manager.Subscribe(w.onBatch))
	w.SetState(core.State{"loaded": w.manager.HasAll(w.urls)})
	return nil
}

func (w *withAssets) DidMount() {
	if missing := w.manager.Missing(w.urls); len(missing) > 0 {
		w.manager.AddMany(missing)
	}
}

func (w *withAssets) WillReceiveProps(next core.Props) {
	urls := next.Strings("urls")
	if slices.Equal(urls, w.urls) {
		return
	}
	var added []string
	for _, url := range urls {
		if !slices.Contains(w.urls, url) {
			added = append(added, url)
		}
	}
	w.urls = slices.Clone(urls)
	w.SetState(core.State{"loaded": w.manager.HasAll(w.urls)})
	if missing := w.manager.Missing(added); len(missing) > 0 {
		w.manager.AddMany(missing)
	}
}

func (w *withAssets) onBatch(b assets.Batch) {
	if b.Err != nil {
		var assetErr *errors.AssetError
		if stderrors.As(b.Err, &assetErr) && slices.ContainsFunc(assetErr.URLs, func(u string) bool {
			return slices.Contains(w.urls, u)
		}) {
			w.Throw(b.Err)
			return
		}
	}
	if w.State()["loaded"] != true && w.manager.HasAll(w.urls) {
		w.SetState(core.State{"loaded": true})
	}
}

// Loaded reports whether every URL is cached.
func (w *withAssets) Loaded() bool {
	return w.State()["loaded"] == true
}

func (w *withAssets) Render() core.Result {
	if !w.Loaded() {
		return core.Ready(nil)
	}
	return core.Ready(core.Frag(w.Children()...))
}
