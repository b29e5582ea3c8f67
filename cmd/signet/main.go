// Copyright 2026 The Signet Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/signet-auth/signet/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	subcommand := os.Args[1]
	switch subcommand {
	case "provision":
		return runProvision(os.Args[2:])
	case "inspect":
		return runInspect(os.Args[2:])
	case "version":
		if len(os.Args) > 2 && os.Args[2] == "--full" {
			fmt.Printf("signet %s\n", version.Full())
			return nil
		}
		fmt.Printf("signet %s\n", version.Info())
		return nil
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: signet <subcommand> [flags]

Subcommands:
  provision   Generate access/refresh key pairs and merge them into an env file
  inspect     Check the key files in a key directory and print fingerprints
  version     Print version information (--full includes Go and platform)

Run 'signet <subcommand> --help' for subcommand flags.
`)
}
