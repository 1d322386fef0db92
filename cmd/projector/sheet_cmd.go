// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/ManuGH/projector/internal/cuesheet"
	"github.com/ManuGH/projector/internal/host"
	"github.com/ManuGH/projector/internal/projector"
	"github.com/ManuGH/projector/internal/version"
)

// offlineRegistry resolves the built-in hooks without a playback host.
func offlineRegistry() *cuesheet.Registry {
	reg := cuesheet.NewRegistry()
	cuesheet.RegisterBuiltins(reg, func(string) {})
	return reg
}

// runCheck loads a cue sheet and installs it on a throwaway projector.
func runCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("projector check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	lenient := fs.Bool("lenient", false, "accept windows that can never open or close")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: exactly one cue sheet path is required")
		return 2
	}
	path := fs.Arg(0)

	sheet, err := cuesheet.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "Cue sheet error in %s:\n  %v\n", path, err)
		return 1
	}

	nop := zerolog.Nop()
	proj, err := projector.New(host.NewPlayer(), projector.Config{
		Strict:      !*lenient,
		KnownEvents: sheet.Events,
		Logger:      &nop,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = proj.Close() }()

	if err := sheet.Install(proj, offlineRegistry()); err != nil {
		fmt.Fprintf(stderr, "Cue sheet error in %s:\n  %v\n", path, err)
		return 1
	}

	windows := 0
	for _, st := range proj.Snapshot() {
		windows += len(st.Windows)
	}
	fmt.Fprintf(stdout, "✓ %s is valid (%d overlays, %d windows)\n", path, proj.Len(), windows)
	return 0
}

// runUnwind expands every shorthand timing into explicit start/end pairs.
func runUnwind(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("projector unwind", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "write the unwound sheet to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: exactly one cue sheet path is required")
		return 2
	}
	path := fs.Arg(0)

	sheet, err := cuesheet.Load(path)
	if err == nil {
		err = sheet.Check(offlineRegistry())
	}
	if err != nil {
		fmt.Fprintf(stderr, "Cue sheet error in %s:\n  %v\n", path, err)
		return 1
	}

	if *out == "" {
		if err := cuesheet.Encode(stdout, cuesheet.Unwound(sheet)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	if err := cuesheet.WriteUnwound(*out, sheet); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", *out)
	return 0
}

func runVersion(stdout io.Writer) int {
	fmt.Fprintln(stdout, version.String())
	return 0
}
