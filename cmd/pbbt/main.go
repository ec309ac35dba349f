package main

import (
	"fmt"
	"os"

	"github.com/prometheusresearch/pbbt/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, "pbbt:", msg)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
