package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-drift/renderkit/pkg/devtools"
)

func init() {
	RegisterCommand(&Command{
		Name:  "inspect",
		Short: "Mount a scene and serve the live inspector",
		Long: `Mount a YAML scene, keep it running, and serve the inspector:

  GET /health   liveness
  GET /tree     component tree as JSON
  GET /ws       WebSocket stream of trees, one per commit

The port comes from devtools.port in renderkit.yaml unless --port is given.
Port 0 picks a free port. Stop with Ctrl-C.`,
		Usage: "renderkit inspect [scene.yaml] [--port N]",
		Run:   runInspect,
	})
}

func runInspect(args []string) error {
	var opts mountOptions
	port := -1
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--port":
			if i+1 >= len(args) {
				return fmt.Errorf("--port requires a number")
			}
			p, err := strconv.Atoi(args[i+1])
			if err != nil || p < 0 || p > 65535 {
				return fmt.Errorf("invalid --port %q", args[i+1])
			}
			port = p
			i++
		default:
			if strings.HasPrefix(arg, "--") {
				return fmt.Errorf("unknown flag %s", arg)
			}
			opts.scenePath = arg
		}
	}

	cfg, err := loadProject()
	if err != nil {
		return err
	}
	if port < 0 {
		port = cfg.DevtoolsPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := mountScene(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer s.close()

	srv := devtools.New(s.root, devtools.WithLogger(s.logger))
	defer srv.Close()
	bound, err := srv.Start(port)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Inspecting %s on http://127.0.0.1:%d/tree\n", cfg.AppName, bound)

	err = s.root.Run(ctx)
	if errors.Is(err, context.Canceled) {
		s.logger.Info("inspector stopped")
		return nil
	}
	if err != nil {
		s.logger.Error("root failed", slog.String("error", err.Error()))
	}
	return err
}
