// Package main is the entry point for the signbridge CLI.
//
// Usage:
//
//	signbridge [flags] <command> [args]
//
// Commands:
//
//	run        - Run a live interpreter session
//	summarize  - Summarize a saved transcript
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/openinterp/signbridge/cmd/signbridge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
