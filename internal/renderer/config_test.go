package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"GopherScene/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "renderer.yaml", `
toneMapping: aces
toneMappingExposure: 1.5
shadowMapEnabled: true
shadowMapType: vsm
antialias: 4
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, scene.ACESFilmicToneMapping, cfg.toneMapping())
	assert.Equal(t, float32(1.5), cfg.ToneMappingExposure)
	assert.True(t, cfg.ShadowMapEnabled)
	assert.Equal(t, scene.VSMShadowMap, cfg.shadowMapType())
	assert.Equal(t, 4, cfg.Antialias)
	// untouched keys keep their defaults
	assert.True(t, cfg.AutoClear)
	assert.Equal(t, "highp", cfg.Precision)
}

func TestLoadConfigJSON(t *testing.T) {
	path := writeFile(t, "renderer.json", `{"sortObjects": false, "precision": "mediump"}`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.False(t, cfg.SortObjects)
	assert.Equal(t, "mediump", cfg.Precision)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "renderer.ini", "a=b"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "renderer.yaml", "toneMapping: [unclosed"))
	assert.Error(t, err)
}

func TestValidateRepairsBadValues(t *testing.T) {
	cfg := Config{
		ToneMapping:      "sepia",
		ShadowMapType:    "fuzzy",
		Precision:        "ultra",
		OutputColorSpace: "cmyk",
		PixelRatio:       -1,
		Antialias:        -2,
	}

	cfg.Validate()

	def := DefaultConfig()
	assert.Equal(t, def.ToneMapping, cfg.ToneMapping)
	assert.Equal(t, def.ShadowMapType, cfg.ShadowMapType)
	assert.Equal(t, def.Precision, cfg.Precision)
	assert.Equal(t, def.OutputColorSpace, cfg.OutputColorSpace)
	assert.Equal(t, def.ToneMappingExposure, cfg.ToneMappingExposure)
	assert.Equal(t, def.PixelRatio, cfg.PixelRatio)
	assert.Zero(t, cfg.Antialias)
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeFile(t, "renderer.toml", "toneMapping = \"reinhard\"\nclearColor = [0.1, 0.2, 0.3]\n\n[debug]\ncheckShaderErrors = false\n")

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, scene.ReinhardToneMapping, cfg.toneMapping())
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, cfg.ClearColor)
	assert.False(t, cfg.Debug.CheckShaderErrors)
}
