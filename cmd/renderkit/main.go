// Command renderkit renders YAML scenes headlessly and serves the
// component-tree inspector.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/renderkit/cmd/renderkit/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
