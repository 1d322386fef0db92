// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package cuesheet loads overlay definitions from YAML and turns them into
// overlays and timing windows for a projector.
package cuesheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/projector/internal/overlay"
	"github.com/ManuGH/projector/internal/timing"
)

// CurrentVersion is the cue sheet format version written by this package.
const CurrentVersion = 1

// Overlay types.
const (
	TypeText   = "text"
	TypeMarkup = "markup"
)

var (
	ErrUnknownHook         = errors.New("unknown hook")
	ErrUnknownType         = errors.New("unknown overlay type")
	ErrUnsupportedVersion  = errors.New("unsupported cue sheet version")
	ErrDuplicateOverlayID  = errors.New("duplicate overlay id")
	ErrMultipleDocuments   = errors.New("cue sheet contains multiple documents")
	ErrInvalidBoundaryNode = errors.New("timing boundary must be a scalar")
)

// Sheet is a cue sheet document.
type Sheet struct {
	Version int `yaml:"version"`
	// Events lists the custom playback events the sheet refers to. In
	// strict mode only these (and the host's own events) are accepted.
	Events   []string      `yaml:"events,omitempty"`
	Overlays []OverlaySpec `yaml:"overlays"`
}

// OverlaySpec declares one overlay.
type OverlaySpec struct {
	ID       string            `yaml:"id,omitempty"`
	Type     string            `yaml:"type,omitempty"`
	Text     string            `yaml:"text,omitempty"`
	HTML     string            `yaml:"html,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Position overlay.Position  `yaml:"position,omitempty"`
	Cover    bool              `yaml:"cover,omitempty"`
	Timings  []TimingSpec      `yaml:"timings"`
}

// TimingSpec declares a shorthand range list or one explicit window, plus
// hook names resolved through a Registry.
type TimingSpec struct {
	Timing      string `yaml:"timing,omitempty"`
	Start       Token  `yaml:"start,omitempty"`
	End         Token  `yaml:"end,omitempty"`
	BeforeBegin string `yaml:"before_begin,omitempty"`
	AfterBegin  string `yaml:"after_begin,omitempty"`
	BeforeEnd   string `yaml:"before_end,omitempty"`
	AfterEnd    string `yaml:"after_end,omitempty"`
}

// Token is a boundary written as a YAML scalar: a number is a time in
// seconds, anything else names a playback event.
type Token struct {
	timing.Boundary
}

// TokenOf wraps a boundary.
func TokenOf(b timing.Boundary) Token { return Token{Boundary: b} }

func (t *Token) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: %w", node.Line, ErrInvalidBoundaryNode)
	}
	t.Boundary = timing.Parse(node.Value)
	return nil
}

func (t Token) MarshalYAML() (any, error) {
	switch {
	case t.IsTime():
		return t.Seconds(), nil
	case t.IsEvent():
		return t.Event(), nil
	default:
		return nil, nil
	}
}

// IsZero lets omitempty drop unset boundaries.
func (t Token) IsZero() bool { return !t.IsSet() }

// Load reads and parses a cue sheet file.
func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cue sheet: %w", err)
	}
	sheet, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sheet, nil
}

// Parse decodes a single strict YAML document and validates its structure.
// Hook names are checked later, against a Registry.
func Parse(data []byte) (*Sheet, error) {
	var sheet Sheet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&sheet); err != nil {
		if err == io.EOF {
			sheet.Version = CurrentVersion
			return &sheet, nil
		}
		return nil, fmt.Errorf("strict cue sheet parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, ErrMultipleDocuments
	}

	if sheet.Version == 0 {
		sheet.Version = CurrentVersion
	}
	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// Validate checks overlay types, ids and content.
func (s *Sheet) Validate() error {
	var errs []error
	if s.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version))
	}
	seen := make(map[string]int, len(s.Overlays))
	for i, spec := range s.Overlays {
		if id := strings.TrimSpace(spec.ID); id != "" {
			if prev, ok := seen[id]; ok {
				errs = append(errs, fmt.Errorf("overlays[%d]: %w %q (also overlays[%d])", i, ErrDuplicateOverlayID, id, prev))
			}
			seen[id] = i
		}
		switch spec.kind() {
		case TypeText:
			if spec.HTML != "" {
				errs = append(errs, fmt.Errorf("overlays[%d]: text overlay carries html", i))
			}
		case TypeMarkup:
			if spec.Text != "" {
				errs = append(errs, fmt.Errorf("overlays[%d]: markup overlay carries text", i))
			}
		default:
			errs = append(errs, fmt.Errorf("overlays[%d]: %w %q", i, ErrUnknownType, spec.Type))
		}
	}
	return errors.Join(errs...)
}

// kind defaults the type from the content fields.
func (o OverlaySpec) kind() string {
	if o.Type != "" {
		return strings.ToLower(strings.TrimSpace(o.Type))
	}
	if o.HTML != "" {
		return TypeMarkup
	}
	return TypeText
}
