package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/internal/editor"
	"scene-engine/internal/engine"
	"scene-engine/internal/engineconfig"
	"scene-engine/internal/logger"
	"scene-engine/internal/model"
	"scene-engine/internal/script"
)

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "engine.json")
	p := engineconfig.Default()
	p.LibraryDir = "assets"
	p.LogLevel = "warn"
	require.NoError(t, engineconfig.SaveTo(cfg, p))

	f, err := parseFlags([]string{"-config", cfg, "-backend", "soft", "-headless", "-frames", "5"})
	require.NoError(t, err)
	assert.True(t, f.headless)
	assert.Equal(t, 5, f.frames)

	got := f.prefs()
	assert.Equal(t, "soft", got.Backend)
	assert.Equal(t, "assets", got.LibraryDir)
	assert.Equal(t, "warn", got.LogLevel)

	_, err = parseFlags([]string{"-frames", "many"})
	assert.Error(t, err)
}

func TestHeadlessRunsScriptsAndSnapshots(t *testing.T) {
	dir := t.TempDir()
	log := logger.New()
	ed, err := editor.New(engine.Options{
		Log:        log,
		Scripts:    script.NewHost(log),
		Resolution: mgl32.Vec2{64, 48},
	}, editor.WithBackend(engine.Soft))
	require.NoError(t, err)
	defer ed.Close()

	sphere := model.FindByName(ed.SceneRoot(), "Sphere")
	sphere.Script = `var n = 0; function tick(t) { n++; if (n == 3) print("frames " + n) }`

	shot := filepath.Join(dir, "out.png")
	require.NoError(t, headless(ed, log, 3, shot))
	assert.Equal(t, []string{"frames 3"}, log.Lines())
	assert.False(t, ed.IsPlaying())
	_, err = os.Stat(shot)
	assert.NoError(t, err)
}

func TestHeadlessSnapshotNeedsSoftBackend(t *testing.T) {
	ed, err := editor.New(engine.Options{}, editor.WithBackend(engine.Raylib))
	require.NoError(t, err)
	defer ed.Close()
	assert.Error(t, headless(ed, logger.New(), 1, filepath.Join(t.TempDir(), "x.png")))
}
