package main

import (
	"context"
	"fmt"
	"os"

	"github.com/a3tai/pdf-tools/internal/cli"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	cli.Version = version
	cli.BuildDate = buildTime
	cli.GitCommit = gitCommit

	if err := cli.New().Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
