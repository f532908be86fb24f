// Package widgets provides the built-in components of the render-kit
// engine: context propagation, asset gating, suspense, transitions, error
// boundaries and simple list/grid placement.
//
// # Widget Construction
//
// Every widget has two forms.
//
// ## Tier 1: Struct Literal (canonical, full control)
//
//	gate := widgets.WithAssets{
//	    URLs:     []string{"hero.png"},
//	    Children: []*core.Element{hero},
//	}.Element()
//
// The struct's Element method builds the element with the right props.
//
// ## Tier 2: Component Type (scenes, custom resolvers)
//
//	core.H(widgets.WithAssetsType, core.Props{"urls": []string{"hero.png"}}, hero)
//
// Component types are also exported by tag through [Registry], which is how
// YAML scenes refer to them.
//
// # Context
//
// A [ContextProvider] publishes a value; a [ContextConsumer] finds its
// nearest provider either by name or by provider type (see
// [DefineProvider]), never both. Consumers without a provider fail with a
// configuration error.
package widgets
