// Package main is the entry point for the cloudramp CLI.
//
// cloudramp converges a cloud project, a Kubernetes cluster, and an
// application release into a desired end state. Every command is safe
// to re-run at any point, including after partial failure.
//
// Commands: converge, foundation, deployment, config, version.
//
// For detailed usage information, run:
//
//	cloudramp --help
package main

import (
	"fmt"
	"os"

	"github.com/cloudramp/cloudramp/cmd/cloudramp/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
