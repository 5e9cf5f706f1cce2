package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigYAMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
window:
  width: 800
  title: Demo
camera:
  speed: 5
renderer:
  shadowMapEnabled: true
  toneMapping: aces
water:
  base_amplitude: 2
scene: assets/scene.json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "Demo", cfg.Window.Title)
	assert.True(t, cfg.Window.VSync)
	assert.Equal(t, float32(5), cfg.Camera.Speed)
	assert.Equal(t, float32(45), cfg.Camera.Fov)
	assert.True(t, cfg.Renderer.ShadowMapEnabled)
	assert.Equal(t, "aces", cfg.Renderer.ToneMapping)
	assert.True(t, cfg.Renderer.AutoClear)
	assert.Equal(t, float32(2), cfg.Water.BaseAmplitude)
	assert.Equal(t, float32(200), cfg.Water.OceanSize)
	assert.Equal(t, filepath.Join(dir, "assets", "scene.json"), cfg.Scene)
}

func TestLoadConfigTOMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(writeConfig(t, dir, "config.toml", "[window]\nheight = 600\n\n[renderer]\nprecision = \"mediump\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, "mediump", cfg.Renderer.Precision)

	cfg, err = LoadConfig(writeConfig(t, dir, "config.json", `{"camera": {"invertMouse": true}}`))
	require.NoError(t, err)
	assert.True(t, cfg.Camera.InvertMouse)
}

func TestLoadConfigValidates(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(writeConfig(t, dir, "config.yaml", `
window: {width: -1, height: 0, title: ""}
camera: {fov: 400, near: 10, far: 1}
renderer: {toneMapping: sparkly}
`))
	require.NoError(t, err)
	def := DefaultConfig()
	assert.Equal(t, def.Window.Width, cfg.Window.Width)
	assert.Equal(t, def.Window.Height, cfg.Window.Height)
	assert.Equal(t, def.Window.Title, cfg.Window.Title)
	assert.Equal(t, def.Camera.Fov, cfg.Camera.Fov)
	assert.Equal(t, def.Camera.Near, cfg.Camera.Near)
	assert.Equal(t, def.Camera.Far, cfg.Camera.Far)
	assert.Equal(t, "none", cfg.Renderer.ToneMapping)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, dir, "config.ini", "a=b"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, dir, "bad.yaml", "window: [unclosed"))
	assert.Error(t, err)
}

func TestWatchConfigReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "window: {width: 640}\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := WatchConfig(ctx, path)
	require.NoError(t, err)

	// unrelated files in the same directory are ignored
	writeConfig(t, dir, "other.yaml", "window: {width: 1}\n")
	writeConfig(t, dir, "config.yaml", "window: {width: 1024}\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-updates:
			if cfg.Window.Width == 1024 {
				cancel()
				for range updates {
				}
				return
			}
			assert.NotEqual(t, 1, cfg.Window.Width)
		case <-deadline:
			t.Fatal("no config update received")
		}
	}
}

func TestWatchConfigMissingDirectory(t *testing.T) {
	_, err := WatchConfig(context.Background(), filepath.Join(t.TempDir(), "nope", "config.yaml"))
	assert.Error(t, err)
}
