// Package render is the entry point of the render-kit engine. It bundles a
// host backend into an [Engine], mounts Element trees into host containers
// and drives the resulting [Root] on its owner goroutine.
//
// A minimal program:
//
//	mount := render.Render(render.Engine{
//	    Drawables: backend,
//	    Mutator:   backend,
//	    Events:    backend,
//	    Loader:    loader,
//	})
//	root, err := mount(ctx, app, stage).Wait(ctx)
//	if err != nil {
//	    return err
//	}
//	defer root.Unmount()
//	return root.Run(ctx)
//
// Everything that touches the component tree happens on the goroutine that
// calls Wait, Pump, Step or Run. Other goroutines hand work over with
// [Root.Dispatch].
package render

import (
	"context"
	"log/slog"
	"maps"
	"sync/atomic"

	"github.com/go-drift/renderkit/pkg/animation"
	"github.com/go-drift/renderkit/pkg/assets"
	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/errors"
)

// DefaultFrameRate is the tick rate used by Root.Run when none is set.
const DefaultFrameRate = 60

// Engine bundles the host collaborators a render root needs.
type Engine struct {
	// Factory resolves element types. Nil builds a core.DefaultFactory over
	// Drawables.
	Factory core.Factory
	// Drawables creates host drawables for primitive tags.
	Drawables core.DrawableFactory
	Mutator   core.Mutator
	Events    core.EventManager
	Loader    assets.Loader
	// Resources are preloaded before the first mount. A failed preload
	// rejects the render.
	Resources []string
	// Resolvers map string tags to custom component types.
	Resolvers map[core.Tag]*core.ComponentType
	// Values is copied into every root's Meta.
	Values map[string]any
}

type options struct {
	logger    *slog.Logger
	clock     animation.Clock
	frameRate int
}

// Option configures roots created by Render.
type Option func(*options)

// WithLogger sets the base logger. Each root logs with a "root" attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the animation clock of every root.
func WithClock(clock animation.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithFrameRate sets the tick rate of Root.Run.
func WithFrameRate(fps int) Option {
	return func(o *options) {
		if fps > 0 {
			o.frameRate = fps
		}
	}
}

var rootIDs atomic.Int64

// Render returns a function that mounts an element into a container. Each
// call creates an independent root with its own scheduler, context
// registry, asset cache and timeline. Initial resources load in the
// background under ctx; the mount itself happens inside [Future.Wait] or
// [Future.Mounted]. Cancelling ctx later does not end the root.
func Render(engine Engine, opts ...Option) func(ctx context.Context, el *core.Element, container core.Container) *Future {
	o := options{frameRate: DefaultFrameRate}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = errors.Logger()
	}
	factory := engine.Factory
	if factory == nil {
		factory = core.NewFactory(engine.Drawables)
	}
	if len(engine.Resolvers) > 0 {
		factory.AddCustomResolver(engine.Resolvers)
	}

	return func(ctx context.Context, el *core.Element, container core.Container) *Future {
		root := newRoot(ctx, engine, factory, o, container)
		f := newFuture(root, func() error { return root.mount(el) })
		if len(engine.Resources) == 0 {
			close(f.ready)
			return f
		}
		resources := append([]string(nil), engine.Resources...)
		go func() {
			f.preloadErr = root.meta.Assets.Preload(ctx, resources)
			close(f.ready)
		}()
		return f
	}
}

func newRoot(ctx context.Context, engine Engine, factory core.Factory, o options, container core.Container) *Root {
	id := rootIDs.Add(1)
	logger := o.logger.With(slog.Int64("root", id))
	sched := core.NewScheduler(logger)
	// The root outlives the mount call; only Unmount ends it.
	rctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	meta := &core.Meta{
		Contexts:  core.NewContextManager(),
		Scheduler: sched,
		Timeline:  animation.NewTimeline(o.clock),
		Mutator:   engine.Mutator,
		Events:    engine.Events,
		Logger:    logger,
		Values:    maps.Clone(engine.Values),
	}
	meta.Assets = assets.NewManager(engine.Loader,
		assets.WithDispatch(sched.Dispatch),
		assets.WithContext(rctx),
		assets.WithLogger(logger),
	)
	r := &Root{
		id:        id,
		ctx:       rctx,
		cancel:    cancel,
		meta:      meta,
		container: container,
		frameRate: o.frameRate,
		logger:    logger,
	}
	r.reconciler = core.NewReconciler(factory, meta)
	sched.OnFatal(r.raise)
	return r
}
