package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/go-drift/renderkit/pkg/config"
	"github.com/go-drift/renderkit/pkg/errors"
	"github.com/go-drift/renderkit/pkg/headless"
	"github.com/go-drift/renderkit/pkg/render"
	"github.com/go-drift/renderkit/pkg/scene"
	"github.com/go-drift/renderkit/pkg/widgets"
)

// projectDir is set by --dir; empty means search upwards from the working
// directory.
var projectDir string

func loadProject() (*config.Resolved, error) {
	dir := projectDir
	if dir == "" {
		root, err := config.FindProjectRoot(".")
		if err != nil {
			root = "."
		}
		dir = root
	}
	return config.Resolve(dir)
}

func newLogger(cfg *config.Resolved, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

type mountOptions struct {
	scenePath string
	// fontSize > 0 measures text with Go Regular at that size.
	fontSize float64
}

// session is one mounted scene.
type session struct {
	cfg     *config.Resolved
	logger  *slog.Logger
	backend *headless.Backend
	stage   *headless.Node
	root    *render.Root
}

func mountScene(ctx context.Context, cfg *config.Resolved, opts mountOptions) (*session, error) {
	path := opts.scenePath
	if path == "" {
		path = cfg.Scene
	}
	if path == "" {
		return nil, fmt.Errorf("no scene given: pass a path or set app.scene in %s", config.FileName)
	}
	sc, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	registry := widgets.Registry()
	el, err := sc.Element(registry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger := newLogger(cfg, stderr).With(slog.String("app", cfg.AppName))
	errors.SetLogger(logger)
	errors.SetHandler(&errors.LogHandler{Verbose: cfg.Debug})

	backendOpts := []headless.Option{headless.WithLogger(logger)}
	if opts.fontSize > 0 {
		face, err := headless.GoRegular(opts.fontSize)
		if err != nil {
			return nil, err
		}
		backendOpts = append(backendOpts, headless.WithFace(face))
	}
	backend := headless.New(backendOpts...)
	engine := render.Engine{
		Drawables: backend,
		Mutator:   backend,
		Events:    backend,
		Loader:    &headless.FileLoader{FS: os.DirFS(cfg.AssetsDir), Concurrency: cfg.Concurrency},
		Resources: append(slices.Clone(cfg.Preload), sc.Assets...),
		Resolvers: registry,
		Values:    map[string]any{"app": cfg.AppName, "debug": cfg.Debug},
	}

	stage := backend.NewStage()
	mount := render.Render(engine,
		render.WithLogger(logger),
		render.WithFrameRate(cfg.FrameRate),
	)
	root, err := mount(ctx, el, stage).Wait(ctx)
	if err != nil {
		return nil, err
	}
	cache := root.Meta().Assets
	backend.SetResources(func(url string) (any, bool) { return cache.Get(url) })
	logger.Debug("scene mounted", slog.String("scene", path), slog.Int64("root", root.ID()))
	return &session{cfg: cfg, logger: logger, backend: backend, stage: stage, root: root}, nil
}

// settle runs frames until nothing is loading, dispatched or animating.
func (s *session) settle(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	frame := time.NewTicker(time.Second / time.Duration(s.cfg.FrameRate))
	defer frame.Stop()
	for {
		if err := s.root.Frame(); err != nil {
			return err
		}
		if s.root.Idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("scene did not settle within %v", timeout)
		case <-s.root.Meta().Scheduler.Wake():
		case <-frame.C:
		}
	}
}

func (s *session) close() {
	if err := s.root.Unmount(); err != nil {
		s.logger.Debug("unmount", slog.String("error", err.Error()))
	}
}
