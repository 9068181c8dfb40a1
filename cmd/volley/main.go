package main

import (
	"fmt"
	"os"

	"github.com/roach88/volley/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "volley:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
