// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/projector/internal/api"
	"github.com/ManuGH/projector/internal/cuesheet"
	"github.com/ManuGH/projector/internal/host"
	"github.com/ManuGH/projector/internal/projector"
)

const introSheet = `
version: 1
overlays:
  - id: intro
    text: Welcome
    timings:
      - timing: "1-10"
`

const outroSheet = `
version: 1
overlays:
  - id: outro
    text: Goodbye
    timings:
      - timing: "20-30"
`

const reversedSheet = `
version: 1
overlays:
  - id: broken
    text: never
    timings:
      - timing: "10-5"
`

func parse(t *testing.T, doc string) *cuesheet.Sheet {
	t.Helper()
	sheet, err := cuesheet.Parse([]byte(doc))
	require.NoError(t, err)
	return sheet
}

func newDeps(player *host.Player) Deps {
	reg := cuesheet.NewRegistry()
	cuesheet.RegisterBuiltins(reg, player.Emit)
	return Deps{
		Logger:   zerolog.Nop(),
		Player:   player,
		Registry: reg,
		API:      api.New(api.Config{}, player, nil),
	}
}

func TestNewApp_RequiresDeps(t *testing.T) {
	player := host.NewPlayer()

	_, err := NewApp(Deps{})
	require.ErrorIs(t, err, ErrMissingPlayer)

	_, err = NewApp(Deps{Player: player})
	require.ErrorIs(t, err, ErrMissingRegistry)

	_, err = NewApp(Deps{Player: player, Registry: cuesheet.NewRegistry()})
	require.ErrorIs(t, err, ErrMissingAPIServer)

	app, err := NewApp(newDeps(player))
	require.NoError(t, err)
	assert.Nil(t, app.Projector())
	assert.Equal(t, DefaultShutdownTimeout, app.deps.ShutdownTimeout)
}

func TestInstall_OpensWindowsAtCurrentPosition(t *testing.T) {
	player := host.NewPlayer()
	player.SetTime(5, false)

	app, err := NewApp(newDeps(player))
	require.NoError(t, err)
	require.NoError(t, app.Install(parse(t, introSheet)))
	t.Cleanup(func() { _ = app.Projector().Close() })

	assert.True(t, app.Projector().IsActive("intro"))
	require.Len(t, player.Stage(), 1)
	assert.True(t, player.Stage()[0].Visible())
}

func TestInstall_ReplacesProjector(t *testing.T) {
	player := host.NewPlayer()
	app, err := NewApp(newDeps(player))
	require.NoError(t, err)

	require.NoError(t, app.Install(parse(t, introSheet)))
	first := app.Projector()

	require.NoError(t, app.Install(parse(t, outroSheet)))
	t.Cleanup(func() { _ = app.Projector().Close() })

	assert.NotSame(t, first, app.Projector())
	assert.Equal(t, 0, first.Len(), "previous projector is closed")
	require.Len(t, player.Stage(), 1)
	assert.Equal(t, "outro", player.Stage()[0].ID())

	player.SetTime(25, false)
	assert.True(t, app.Projector().IsActive("outro"))
}

func TestInstall_StrictRejectionRestoresPreviousSheet(t *testing.T) {
	player := host.NewPlayer()
	deps := newDeps(player)
	deps.Strict = true
	app, err := NewApp(deps)
	require.NoError(t, err)

	require.NoError(t, app.Install(parse(t, introSheet)))

	err = app.Install(parse(t, reversedSheet))
	require.ErrorIs(t, err, projector.ErrInvalidTiming)
	t.Cleanup(func() { _ = app.Projector().Close() })

	require.NotNil(t, app.Projector())
	_, ok := app.Projector().State("intro")
	assert.True(t, ok)
	require.Len(t, player.Stage(), 1)
	assert.Equal(t, "intro", player.Stage()[0].ID())
}

func TestInstall_FirstSheetRejected(t *testing.T) {
	player := host.NewPlayer()
	deps := newDeps(player)
	deps.Strict = true
	app, err := NewApp(deps)
	require.NoError(t, err)

	require.ErrorIs(t, app.Install(parse(t, reversedSheet)), projector.ErrInvalidTiming)
	assert.Nil(t, app.Projector())
	assert.Empty(t, player.Stage())
}

func TestRun_ServesAndReloads(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "cues.yaml")
	require.NoError(t, os.WriteFile(path, []byte(introSheet), 0o600))
	initial, err := cuesheet.Load(path)
	require.NoError(t, err)

	player := host.NewPlayer()
	deps := newDeps(player)
	watcher := cuesheet.NewWatcher(path, deps.Registry, initial)
	deps.Watcher = watcher

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deps.Listener = ln

	app, err := NewApp(deps)
	require.NoError(t, err)
	app.reloadSignal = nil
	require.NoError(t, app.Install(initial))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- app.Run(ctx) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 2 * time.Second}
	base := "http://" + ln.Addr().String()

	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := client.Post(base+"/api/v1/playback/time", "application/json", strings.NewReader(`{"time":5}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	st := getState(t, client, base, "intro")
	assert.True(t, st.Active)

	require.NoError(t, os.WriteFile(path, []byte(outroSheet), 0o600))
	require.NoError(t, watcher.Reload(ctx))

	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/api/v1/overlays/outro")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Nil(t, app.Projector())
	assert.Empty(t, player.Stage())
}

func TestRun_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	deps := newDeps(host.NewPlayer())
	deps.ListenAddr = ln.Addr().String()
	app, err := NewApp(deps)
	require.NoError(t, err)

	err = app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server")
}

func getState(t *testing.T, client *http.Client, base, id string) projector.OverlayState {
	t.Helper()
	resp, err := client.Get(fmt.Sprintf("%s/api/v1/overlays/%s", base, id))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st projector.OverlayState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	return st
}
