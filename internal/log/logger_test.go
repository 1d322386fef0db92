// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestConfigure_AttachesServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "projector-test", Version: "v9.9.9"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("engine")
	l.Info().Str(FieldEvent, "test.configure").Msg("configured")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "projector-test", entry[FieldService])
	require.Equal(t, "v9.9.9", entry[FieldVersion])
	require.Equal(t, "engine", entry[FieldComponent])
	require.Equal(t, "test.configure", entry[FieldEvent])
}

func TestDerive_AppliesBuilder(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := Derive(func(c *zerolog.Context) {
		*c = c.Str(FieldOverlayID, "intro")
	})
	l.Info().Msg("derived")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "intro", entry[FieldOverlayID])
}

func TestConfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "loud", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := Base()
	l.Debug().Msg("hidden")
	require.Zero(t, buf.Len())

	l.Info().Msg("visible")
	require.NotZero(t, buf.Len())
}
