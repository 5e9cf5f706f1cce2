package renderer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DebugConfig toggles diagnostics that cost GPU round trips.
type DebugConfig struct {
	CheckShaderErrors bool `json:"checkShaderErrors" yaml:"checkShaderErrors" toml:"checkShaderErrors"`
}

// Config holds renderer settings that feed program parameters and frame behaviour.
type Config struct {
	ToneMapping         string  `json:"toneMapping" yaml:"toneMapping" toml:"toneMapping"`
	ToneMappingExposure float32 `json:"toneMappingExposure" yaml:"toneMappingExposure" toml:"toneMappingExposure"`
	OutputColorSpace    string  `json:"outputColorSpace" yaml:"outputColorSpace" toml:"outputColorSpace"`

	ShadowMapEnabled    bool   `json:"shadowMapEnabled" yaml:"shadowMapEnabled" toml:"shadowMapEnabled"`
	ShadowMapType       string `json:"shadowMapType" yaml:"shadowMapType" toml:"shadowMapType"`
	ShadowMapAutoUpdate bool   `json:"shadowMapAutoUpdate" yaml:"shadowMapAutoUpdate" toml:"shadowMapAutoUpdate"`

	SortObjects        bool       `json:"sortObjects" yaml:"sortObjects" toml:"sortObjects"`
	AutoClear          bool       `json:"autoClear" yaml:"autoClear" toml:"autoClear"`
	AutoClearColor     bool       `json:"autoClearColor" yaml:"autoClearColor" toml:"autoClearColor"`
	AutoClearDepth     bool       `json:"autoClearDepth" yaml:"autoClearDepth" toml:"autoClearDepth"`
	AutoClearStencil   bool       `json:"autoClearStencil" yaml:"autoClearStencil" toml:"autoClearStencil"`
	ClearColor         [3]float32 `json:"clearColor" yaml:"clearColor" toml:"clearColor"`
	ClearAlpha         float32    `json:"clearAlpha" yaml:"clearAlpha" toml:"clearAlpha"`
	FrustumCulling     bool       `json:"frustumCulling" yaml:"frustumCulling" toml:"frustumCulling"`
	UseLegacyLights    bool       `json:"useLegacyLights" yaml:"useLegacyLights" toml:"useLegacyLights"`
	PremultipliedAlpha bool       `json:"premultipliedAlpha" yaml:"premultipliedAlpha" toml:"premultipliedAlpha"`

	Precision              string  `json:"precision" yaml:"precision" toml:"precision"`
	LogarithmicDepthBuffer bool    `json:"logarithmicDepthBuffer" yaml:"logarithmicDepthBuffer" toml:"logarithmicDepthBuffer"`
	MaxTextureSizeOverride int     `json:"maxTextureSizeOverride" yaml:"maxTextureSizeOverride" toml:"maxTextureSizeOverride"`
	Antialias              int     `json:"antialias" yaml:"antialias" toml:"antialias"` // MSAA samples, 0 disables
	PixelRatio             float32 `json:"pixelRatio" yaml:"pixelRatio" toml:"pixelRatio"`

	LogLevel string      `json:"logLevel" yaml:"logLevel" toml:"logLevel"`
	Debug    DebugConfig `json:"debug" yaml:"debug" toml:"debug"`
}

// DefaultConfig returns the settings used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		ToneMapping:         "none",
		ToneMappingExposure: 1,
		OutputColorSpace:    string(scene.SRGBColorSpace),
		ShadowMapEnabled:    false,
		ShadowMapType:       "pcf",
		ShadowMapAutoUpdate: true,
		SortObjects:         true,
		AutoClear:           true,
		AutoClearColor:      true,
		AutoClearDepth:      true,
		AutoClearStencil:    true,
		ClearAlpha:          1,
		FrustumCulling:      true,
		PremultipliedAlpha:  true,
		Precision:           "highp",
		PixelRatio:          1,
		LogLevel:            "info",
		Debug:               DebugConfig{CheckShaderErrors: true},
	}
}

// LoadConfig reads a YAML, JSON or TOML file over the defaults. The decoder is picked by extension.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("config %s: unsupported extension", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

var (
	toneMappings = map[string]scene.ToneMapping{
		"none":     scene.NoToneMapping,
		"linear":   scene.LinearToneMapping,
		"reinhard": scene.ReinhardToneMapping,
		"cineon":   scene.CineonToneMapping,
		"aces":     scene.ACESFilmicToneMapping,
		"agx":      scene.AgXToneMapping,
		"neutral":  scene.NeutralToneMapping,
	}
	shadowMapTypes = map[string]scene.ShadowMapType{
		"basic":   scene.BasicShadowMap,
		"pcf":     scene.PCFShadowMap,
		"pcfsoft": scene.PCFSoftShadowMap,
		"vsm":     scene.VSMShadowMap,
	}
)

// Validate replaces unknown or out of range values with defaults and logs each fix.
func (c *Config) Validate() {
	def := DefaultConfig()
	if _, ok := toneMappings[c.ToneMapping]; !ok {
		logger.Log.Warn("Unknown tone mapping, using none", zap.String("toneMapping", c.ToneMapping))
		c.ToneMapping = def.ToneMapping
	}
	if _, ok := shadowMapTypes[c.ShadowMapType]; !ok {
		logger.Log.Warn("Unknown shadow map type, using pcf", zap.String("shadowMapType", c.ShadowMapType))
		c.ShadowMapType = def.ShadowMapType
	}
	switch c.Precision {
	case "highp", "mediump", "lowp":
	default:
		logger.Log.Warn("Unknown precision, using highp", zap.String("precision", c.Precision))
		c.Precision = def.Precision
	}
	if c.OutputColorSpace != string(scene.SRGBColorSpace) && c.OutputColorSpace != string(scene.LinearColorSpace) {
		c.OutputColorSpace = def.OutputColorSpace
	}
	if c.ToneMappingExposure <= 0 {
		c.ToneMappingExposure = def.ToneMappingExposure
	}
	if c.PixelRatio <= 0 {
		c.PixelRatio = def.PixelRatio
	}
	if c.Antialias < 0 {
		c.Antialias = 0
	}
}

func (c *Config) toneMapping() scene.ToneMapping     { return toneMappings[c.ToneMapping] }
func (c *Config) shadowMapType() scene.ShadowMapType { return shadowMapTypes[c.ShadowMapType] }
func (c *Config) outputColorSpace() scene.ColorSpace { return scene.ColorSpace(c.OutputColorSpace) }
