// Package cmd implements the renderkit CLI commands.
//
// The root command dispatches to subcommands (render, inspect, version).
// Every command reads renderkit.yaml from the project root when present.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-drift/renderkit/pkg/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Output streams; replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(args []string) error
}

var rootCmd = &Command{
	Name:  "renderkit",
	Short: "renderkit - retained-mode component rendering",
	Long: `renderkit mounts component trees described in YAML scenes against an
in-memory backend, prints the resulting scene graph, and serves a live
inspector for running trees.

Use "renderkit <command> --help" for more information about a command.`,
	Usage: "renderkit <command> [flags]",
}

var commands = make(map[string]*Command)
var order []*Command

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	order = append(order, cmd)
}

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	var filtered []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filtered) == 0 {
				printHelp()
				return nil
			}
			filtered = append(filtered, arg)
		case "-v", "--version":
			if len(filtered) == 0 {
				printVersion()
				return nil
			}
			filtered = append(filtered, arg)
		case "--dir", "-C":
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a directory path", arg)
			}
			projectDir = args[i+1]
			i++
		default:
			if strings.HasPrefix(arg, "--dir=") {
				projectDir = strings.TrimPrefix(arg, "--dir=")
				continue
			}
			filtered = append(filtered, arg)
		}
	}
	args = filtered

	if len(args) == 0 {
		printHelp()
		return nil
	}

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", name)
		printHelp()
		return fmt.Errorf("unknown command: %s", name)
	}

	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}
	return cmd.Run(cmdArgs)
}

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Print the CLI build and the engine version it carries.",
		Usage: "renderkit version",
		Run: func([]string) error {
			printVersion()
			return nil
		},
	})
}

func printVersion() {
	fmt.Fprintf(stdout, "renderkit %s (engine %s, built %s)\n", Version, config.EngineVersion, BuildTime)
}

func printHelp() {
	fmt.Fprintln(stdout, rootCmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", rootCmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	for _, sub := range order {
		fmt.Fprintf(stdout, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Flags:")
	fmt.Fprintln(stdout, "  -h, --help           Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version        Show version information")
	fmt.Fprintln(stdout, "  -C, --dir DIR        Project directory (default: nearest renderkit.yaml)")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintln(stdout, "  renderkit render scenes/main.yaml      Print the mounted scene graph")
	fmt.Fprintln(stdout, "  renderkit render --json                Print the component tree as JSON")
	fmt.Fprintln(stdout, "  renderkit inspect --port 9321          Serve the live inspector")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
