// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// projector shows and hides overlays on a playing media timeline.
//
// Usage:
//
//	projector run [--config|-f config.yaml]
//	projector check [--lenient] cues.yaml
//	projector unwind [-o out.yaml] cues.yaml
//	projector version
//
// Exit codes:
//   - 0: success
//   - 1: runtime, load or validation error
//   - 2: usage error
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(dispatch(os.Args[1:], os.Stdout, os.Stderr))
}

func dispatch(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "run":
		return runDaemon(args[1:], stderr)
	case "check":
		return runCheck(args[1:], stdout, stderr)
	case "unwind":
		return runUnwind(args[1:], stdout, stderr)
	case "version", "--version", "-version":
		return runVersion(stdout)
	case "-h", "--help", "help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  projector run [--config|-f config.yaml]")
	fmt.Fprintln(w, "  projector check [--lenient] cues.yaml")
	fmt.Fprintln(w, "  projector unwind [-o out.yaml] cues.yaml")
	fmt.Fprintln(w, "  projector version")
}
