// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cuesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/projector/internal/overlay"
)

func TestRegistry_Resolve(t *testing.T) {
	var emitted []string
	reg := NewRegistry()
	RegisterBuiltins(reg, func(name string) { emitted = append(emitted, name) })

	hook, err := reg.Resolve("")
	require.NoError(t, err)
	assert.Nil(t, hook)

	logHook, err := reg.Resolve("log")
	require.NoError(t, err)
	require.NotNil(t, logHook)
	require.NoError(t, logHook(overlay.NewText("x", overlay.Options{ID: "x"}), 1, false))

	emit, err := reg.Resolve(" emit:chapter3 ")
	require.NoError(t, err)
	require.NoError(t, emit(nil, 0, false))
	assert.Equal(t, []string{"chapter3"}, emitted)

	_, err = reg.Resolve("emit:")
	require.Error(t, err)

	_, err = reg.Resolve("confetti")
	require.ErrorIs(t, err, ErrUnknownHook)
	_, err = reg.Resolve("confetti:big")
	require.ErrorIs(t, err, ErrUnknownHook)

	assert.Equal(t, []string{"emit:", "log"}, reg.Names())
}

func TestRegisterBuiltins_EmitWithoutHost(t *testing.T) {
	reg := NewRegistry()
	RegisterBuiltins(reg, nil)

	_, err := reg.Resolve("emit:x")
	require.Error(t, err)
}
