// Package main is the entry point for the vetdiff CLI.
//
// This file is intentionally minimal - all logic lives in the commands package.
package main

import (
	"os"

	"github.com/vetdiff/vetdiff/cmd/vetdiff/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
