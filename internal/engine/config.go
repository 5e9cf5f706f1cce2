package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"GopherScene/internal/logger"
	"GopherScene/internal/renderer"
	"GopherScene/internal/water"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type WindowConfig struct {
	Width     int    `json:"width" yaml:"width" toml:"width"`
	Height    int    `json:"height" yaml:"height" toml:"height"`
	Title     string `json:"title" yaml:"title" toml:"title"`
	VSync     bool   `json:"vsync" yaml:"vsync" toml:"vsync"`
	Decorated bool   `json:"decorated" yaml:"decorated" toml:"decorated"`
	// DarkTitleBar has an effect on Windows only
	DarkTitleBar bool `json:"darkTitleBar" yaml:"darkTitleBar" toml:"darkTitleBar"`
	// negative keeps the window manager's placement
	X int `json:"x" yaml:"x" toml:"x"`
	Y int `json:"y" yaml:"y" toml:"y"`
}

type CameraConfig struct {
	Fov         float32    `json:"fov" yaml:"fov" toml:"fov"`
	Near        float32    `json:"near" yaml:"near" toml:"near"`
	Far         float32    `json:"far" yaml:"far" toml:"far"`
	Speed       float32    `json:"speed" yaml:"speed" toml:"speed"`
	Sensitivity float32    `json:"sensitivity" yaml:"sensitivity" toml:"sensitivity"`
	InvertMouse bool       `json:"invertMouse" yaml:"invertMouse" toml:"invertMouse"`
	Position    [3]float32 `json:"position" yaml:"position" toml:"position"`
	Target      [3]float32 `json:"target" yaml:"target" toml:"target"`
}

// Config is the application level configuration file.
type Config struct {
	Window   WindowConfig    `json:"window" yaml:"window" toml:"window"`
	Camera   CameraConfig    `json:"camera" yaml:"camera" toml:"camera"`
	Renderer renderer.Config `json:"renderer" yaml:"renderer" toml:"renderer"`
	Water    water.Config    `json:"water" yaml:"water" toml:"water"`
	// Scene is a scene description file, relative to the config file
	Scene string `json:"scene" yaml:"scene" toml:"scene"`
	// WatchConfig reloads the file while running
	WatchConfig bool `json:"watchConfig" yaml:"watchConfig" toml:"watchConfig"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:     1280,
			Height:    720,
			Title:     "GopherScene",
			VSync:     true,
			Decorated: true,
			X:         -1,
			Y:         -1,
		},
		Camera: CameraConfig{
			Fov:         45,
			Near:        0.1,
			Far:         1000,
			Speed:       20,
			Sensitivity: 0.1,
			Position:    [3]float32{0, 15, 40},
		},
		Renderer: renderer.DefaultConfig(),
		Water:    water.DefaultConfig(),
	}
}

// LoadConfig reads a YAML, JSON or TOML file over the defaults.
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
	if cfg.Scene != "" && !filepath.IsAbs(cfg.Scene) {
		cfg.Scene = filepath.Join(filepath.Dir(path), cfg.Scene)
	}
	cfg.Validate()
	return cfg, nil
}

// Validate replaces unusable values with defaults.
func (c *Config) Validate() {
	def := DefaultConfig()
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		logger.Log.Warn("Invalid window size, using default",
			zap.Int("width", c.Window.Width), zap.Int("height", c.Window.Height))
		c.Window.Width, c.Window.Height = def.Window.Width, def.Window.Height
	}
	if c.Window.Title == "" {
		c.Window.Title = def.Window.Title
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		c.Camera.Fov = def.Camera.Fov
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		logger.Log.Warn("Invalid camera clip planes, using defaults",
			zap.Float32("near", c.Camera.Near), zap.Float32("far", c.Camera.Far))
		c.Camera.Near, c.Camera.Far = def.Camera.Near, def.Camera.Far
	}
	if c.Camera.Speed <= 0 {
		c.Camera.Speed = def.Camera.Speed
	}
	if c.Camera.Sensitivity <= 0 {
		c.Camera.Sensitivity = def.Camera.Sensitivity
	}
	c.Renderer.Validate()
}
