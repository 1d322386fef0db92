// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timing

import (
	"testing"

	"github.com/ManuGH/projector/internal/overlay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwind_ShorthandSharesHooks(t *testing.T) {
	var calls []string
	hooks := Hooks{
		BeforeBegin: func(overlay.Overlay, float64, bool) error { calls = append(calls, "bb"); return nil },
		AfterBegin:  func(overlay.Overlay, float64, bool) error { calls = append(calls, "ab"); return nil },
		BeforeEnd:   func(overlay.Overlay, float64, bool) error { calls = append(calls, "be"); return nil },
		AfterEnd:    func(overlay.Overlay, float64, bool) error { calls = append(calls, "ae"); return nil },
	}

	descs := Unwind([]Raw{{Timing: "1-10,45-60", Hooks: hooks}})
	require.Len(t, descs, 2)

	assert.Equal(t, At(1), descs[0].Start)
	assert.Equal(t, At(10), descs[0].End)
	assert.Equal(t, At(45), descs[1].Start)
	assert.Equal(t, At(60), descs[1].End)

	for _, d := range descs {
		require.NotNil(t, d.Hooks.BeforeBegin)
		require.NotNil(t, d.Hooks.AfterBegin)
		require.NotNil(t, d.Hooks.BeforeEnd)
		require.NotNil(t, d.Hooks.AfterEnd)
		_ = d.Hooks.BeforeBegin(nil, 0, false)
		_ = d.Hooks.AfterEnd(nil, 0, false)
	}
	assert.Equal(t, []string{"bb", "ae", "bb", "ae"}, calls)
}

func TestUnwind_PreservesOrder(t *testing.T) {
	descs := Unwind([]Raw{
		{Start: At(100), End: At(110)},
		{Timing: "1-2, 3-4"},
		{Start: On("chapter2")},
	})
	require.Len(t, descs, 4)

	got := make([]string, 0, len(descs))
	for _, d := range descs {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{"100-110", "1-2", "3-4", "chapter2-"}, got)
	assert.Empty(t, descs[0].Source)
	assert.Equal(t, "3-4", descs[2].Source)
}

func TestUnwind_MalformedRangesAreStillEmitted(t *testing.T) {
	descs := Unwind([]Raw{{Timing: "5,-7,8-"}})
	require.Len(t, descs, 3)

	// "5": no separator, start only, open-ended.
	assert.Equal(t, At(5), descs[0].Start)
	assert.False(t, descs[0].End.IsSet())

	// "-7": no start, never opens by time.
	assert.False(t, descs[1].Start.IsSet())
	assert.Equal(t, At(7), descs[1].End)

	// "8-": explicit open end.
	assert.Equal(t, At(8), descs[2].Start)
	assert.False(t, descs[2].End.IsSet())
}

func TestUnwind_SplitsOnFirstDash(t *testing.T) {
	descs := Unwind([]Raw{{Timing: "intro-chapter-2"}})
	require.Len(t, descs, 1)
	assert.Equal(t, On("intro"), descs[0].Start)
	assert.Equal(t, On("chapter-2"), descs[0].End)
}

func TestUnwind_ExplicitWinsOnlyWithoutShorthand(t *testing.T) {
	descs := Unwind([]Raw{{Timing: "1-2", Start: At(50), End: At(60)}})
	require.Len(t, descs, 1)
	assert.Equal(t, At(1), descs[0].Start)
	assert.Equal(t, At(2), descs[0].End)
}

func TestShorthand_RoundTrip(t *testing.T) {
	descs := Unwind([]Raw{{Timing: "1-10,45-60"}, {Start: On("chapter2"), End: At(90.5)}})
	assert.Equal(t, "1-10,45-60,chapter2-90.5", Shorthand(descs))
}
