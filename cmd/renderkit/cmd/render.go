package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-drift/renderkit/pkg/headless"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Mount a scene and print the result",
		Long: `Mount a YAML scene against the in-memory backend, wait for assets and
animations to settle, and print the scene graph.

Assets are read from assets.baseDir in renderkit.yaml. With --json the
component tree is printed instead of the scene graph.

Flags:
  --json             Print the component tree as JSON
  --timeout DUR      Give up settling after DUR (default 5s)
  --font-size PT     Measure text with Go Regular at PT points`,
		Usage: "renderkit render [scene.yaml] [--json] [--timeout 5s] [--font-size 13]",
		Run:   runRender,
	})
}

type renderOptions struct {
	mountOptions
	json    bool
	timeout time.Duration
}

func parseRenderArgs(args []string) (renderOptions, error) {
	opts := renderOptions{timeout: 5 * time.Second}
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--json":
			opts.json = true
		case "--timeout":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--timeout requires a duration")
			}
			d, err := time.ParseDuration(args[i+1])
			if err != nil || d <= 0 {
				return opts, fmt.Errorf("invalid --timeout %q", args[i+1])
			}
			opts.timeout = d
			i++
		case "--font-size":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--font-size requires a size")
			}
			size, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil || size <= 0 {
				return opts, fmt.Errorf("invalid --font-size %q", args[i+1])
			}
			opts.fontSize = size
			i++
		default:
			if strings.HasPrefix(arg, "--") {
				return opts, fmt.Errorf("unknown flag %s", arg)
			}
			if opts.scenePath != "" {
				return opts, fmt.Errorf("only one scene may be given")
			}
			opts.scenePath = arg
		}
	}
	return opts, nil
}

func runRender(args []string) error {
	opts, err := parseRenderArgs(args)
	if err != nil {
		return err
	}
	cfg, err := loadProject()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	s, err := mountScene(ctx, cfg, opts.mountOptions)
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.settle(ctx, opts.timeout); err != nil {
		return err
	}

	if opts.json {
		data, err := json.MarshalIndent(s.root.Snapshot(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	fmt.Fprint(stdout, headless.Dump(s.stage))
	return nil
}
