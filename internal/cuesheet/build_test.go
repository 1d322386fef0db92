// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cuesheet

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/projector/internal/host"
	"github.com/ManuGH/projector/internal/overlay"
	"github.com/ManuGH/projector/internal/projector"
)

func TestBuild_UnknownHookFailsWholeSheet(t *testing.T) {
	sheet, err := Parse([]byte("overlays:\n  - id: a\n    timings:\n      - timing: 1-2\n        before_begin: confetti\n"))
	require.NoError(t, err)

	reg := NewRegistry()
	_, err = sheet.Build(reg)
	require.ErrorIs(t, err, ErrUnknownHook)
	require.ErrorIs(t, sheet.Check(reg), ErrUnknownHook)
}

func TestBuild_Variants(t *testing.T) {
	sheet, err := Parse([]byte(demoSheet))
	require.NoError(t, err)
	reg := NewRegistry()
	RegisterBuiltins(reg, func(string) {})

	entries, err := sheet.Build(reg)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	_, isText := entries[0].Overlay.(*overlay.Text)
	assert.True(t, isText)
	_, isMarkup := entries[1].Overlay.(*overlay.Markup)
	assert.True(t, isMarkup)

	assert.Equal(t, []string{overlay.TextClass, overlay.ItemClass, "lower-third"}, entries[0].Overlay.Render().Classes())
	require.Len(t, entries[0].Timings, 2)
	assert.NotNil(t, entries[0].Timings[0].Hooks.BeforeBegin)
	assert.Nil(t, entries[0].Timings[0].Hooks.AfterBegin)
	assert.NotNil(t, entries[0].Timings[0].Hooks.AfterEnd)
}

func TestInstall_DrivesProjectorThroughPlayer(t *testing.T) {
	sheet, err := Parse([]byte(demoSheet))
	require.NoError(t, err)

	player := host.NewPlayer()
	reg := NewRegistry()
	RegisterBuiltins(reg, player.Emit)

	nop := zerolog.Nop()
	proj, err := projector.New(player, projector.Config{
		Strict:      true,
		KnownEvents: append(sheet.Events, "intro-done"),
		Logger:      &nop,
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, proj.Close()) }()

	require.NoError(t, sheet.Install(proj, reg))
	assert.Equal(t, 2, proj.Len())

	player.SetTime(2, false)
	assert.True(t, proj.IsActive("intro"))
	assert.False(t, proj.IsActive("note"))

	// leaving the first window emits intro-done from its after_end hook
	player.SetTime(11, false)
	assert.False(t, proj.IsActive("intro"))
	assert.True(t, proj.IsActive("note"))

	player.Emit("chapter2")
	assert.True(t, proj.IsActive("intro"))
	player.SetTime(95, false)
	assert.False(t, proj.IsActive("intro"))
}

func TestInstall_StrictRejectsUnknownEvent(t *testing.T) {
	sheet, err := Parse([]byte(demoSheet))
	require.NoError(t, err)

	player := host.NewPlayer()
	reg := NewRegistry()
	RegisterBuiltins(reg, player.Emit)

	nop := zerolog.Nop()
	proj, err := projector.New(player, projector.Config{Strict: true, KnownEvents: sheet.Events, Logger: &nop})
	require.NoError(t, err)
	defer func() { _ = proj.Close() }()

	err = sheet.Install(proj, reg)
	require.ErrorIs(t, err, projector.ErrInvalidTiming)
	assert.Equal(t, 1, proj.Len(), "overlays before the failing one stay registered")
}
