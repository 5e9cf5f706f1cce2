// Package water animates an ocean surface with Gerstner waves. The surface is a
// regular grid whose vertices are displaced on the CPU every fixed step.
package water

import (
	"math"

	"GopherScene/internal/behaviour"
	"GopherScene/internal/loader"
	"GopherScene/internal/scene"

	mgl32 "github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultResolution is the grid resolution of the water mesh
	DefaultResolution = 64
	// MaxWaves is the maximum number of Gerstner waves
	MaxWaves = 4
)

// Config is the serializable part of a simulation.
type Config struct {
	OceanSize           float32    `json:"ocean_size" yaml:"ocean_size" toml:"ocean_size"`
	Resolution          int        `json:"resolution" yaml:"resolution" toml:"resolution"`
	BaseAmplitude       float32    `json:"base_amplitude" yaml:"base_amplitude" toml:"base_amplitude"`
	WaterColor          [3]float32 `json:"water_color" yaml:"water_color" toml:"water_color"`
	Transparency        float32    `json:"transparency" yaml:"transparency" toml:"transparency"`
	WaveSpeedMultiplier float32    `json:"wave_speed_multiplier" yaml:"wave_speed_multiplier" toml:"wave_speed_multiplier"`
	WaveHeight          float32    `json:"wave_height" yaml:"wave_height" toml:"wave_height"`
	Roughness           float32    `json:"roughness" yaml:"roughness" toml:"roughness"`
}

func DefaultConfig() Config {
	return Config{
		OceanSize:           200,
		Resolution:          DefaultResolution,
		BaseAmplitude:       0.6,
		WaterColor:          [3]float32{0.06, 0.22, 0.45},
		Transparency:        0.85,
		WaveSpeedMultiplier: 1,
		WaveHeight:          1,
		Roughness:           0.15,
	}
}

type wave struct {
	direction mgl32.Vec2
	amplitude float32
	// angular wave number
	k         float32
	speed     float32
	phase     float32
	steepness float32
}

// Simulation is a component that owns the water mesh and moves its vertices.
type Simulation struct {
	behaviour.BaseComponent

	Config
	Mesh  *scene.Object
	Time  float32
	waves [MaxWaves]wave

	rest scene.Float32Array
}

// NewSimulation builds the water mesh. Add it to a scene through Mesh.
func NewSimulation(cfg Config) (*Simulation, error) {
	if cfg.Resolution < 2 {
		cfg.Resolution = DefaultResolution
	}
	g, err := loader.Grid(cfg.Resolution, cfg.OceanSize/float32(cfg.Resolution-1))
	if err != nil {
		return nil, err
	}
	pos := g.Attribute("position").(*scene.BufferAttribute)
	pos.Usage = scene.DynamicDrawUsage
	g.Attribute("normal").(*scene.BufferAttribute).Usage = scene.DynamicDrawUsage

	m := scene.NewMaterial(scene.MeshStandardMaterial)
	m.Name = "Water"
	m.Side = scene.DoubleSide
	m.Metalness = 0

	ws := &Simulation{
		Config: cfg,
		Mesh:   scene.NewMesh(g, m),
		rest:   append(scene.Float32Array(nil), pos.Array.(scene.Float32Array)...),
	}
	ws.Mesh.Name = "Water Surface"
	ws.Mesh.ReceiveShadow = true
	// waves push vertices past the flat grid bounds
	ws.Mesh.FrustumCulled = false
	ws.initWaves()
	ws.ApplyConfig(cfg)
	return ws, nil
}

// initWaves spreads MaxWaves waves 45 degrees apart with shrinking wavelengths.
func (ws *Simulation) initWaves() {
	for i := range ws.waves {
		angle := float64(i) * 45 * math.Pi / 180
		wavelength := ws.OceanSize / float32(4+i*3)
		k := 2 * math.Pi / wavelength
		ws.waves[i] = wave{
			direction: mgl32.Vec2{float32(math.Cos(angle)), float32(math.Sin(angle))},
			amplitude: ws.BaseAmplitude * []float32{1.2, 0.8, 0.6, 0.4}[i],
			k:         k,
			// deep water dispersion
			speed:     float32(math.Sqrt(9.8 / float64(k))),
			phase:     float32(i) * math.Pi / 3,
			steepness: 0.2 + float32(i)*0.1,
		}
	}
}

// Displace returns the surface position of the rest point p at time t.
func (ws *Simulation) Displace(p mgl32.Vec3, t float32) mgl32.Vec3 {
	out := p
	for _, w := range ws.waves {
		a := w.amplitude * ws.WaveHeight
		theta := w.k*w.direction.Dot(mgl32.Vec2{p.X(), p.Z()}) - w.k*w.speed*ws.WaveSpeedMultiplier*t + w.phase
		s, c := math.Sincos(float64(theta))
		// horizontal drift is independent of height so crests never loop
		q := w.steepness / (w.k * float32(len(ws.waves)))
		out[0] += q * w.direction.X() * float32(c)
		out[2] += q * w.direction.Y() * float32(c)
		out[1] += a * float32(s)
	}
	return out
}

// FixedUpdate advances the waves and flags the geometry for re-upload.
func (ws *Simulation) FixedUpdate(dt float32) {
	ws.Step(dt)
}

// Step advances the surface by dt seconds.
func (ws *Simulation) Step(dt float32) {
	ws.Time += dt
	g := ws.Mesh.Geometry
	pos := g.Attribute("position").(*scene.BufferAttribute)
	arr := pos.Array.(scene.Float32Array)
	for i := 0; i+2 < len(ws.rest); i += 3 {
		p := ws.Displace(mgl32.Vec3{ws.rest[i], ws.rest[i+1], ws.rest[i+2]}, ws.Time)
		arr[i], arr[i+1], arr[i+2] = p[0], p[1], p[2]
	}
	pos.NeedsUpdate()

	norm := g.Attribute("normal").(*scene.BufferAttribute)
	copy(norm.Array.(scene.Float32Array), loader.RecalculateNormals(arr, g.Index.Array.(scene.Uint32Array)))
	norm.NeedsUpdate()
}

// ApplyConfig updates the appearance and wave settings. Size and resolution are fixed at creation.
func (ws *Simulation) ApplyConfig(cfg Config) {
	size, res := ws.OceanSize, ws.Resolution
	ws.Config = cfg
	ws.OceanSize, ws.Resolution = size, res

	m := ws.Mesh.Material
	m.Color = mgl32.Vec3{cfg.WaterColor[0], cfg.WaterColor[1], cfg.WaterColor[2]}
	m.Roughness = cfg.Roughness
	m.Opacity = cfg.Transparency
	m.Transparent = cfg.Transparency < 1
	m.NeedsUpdate()
	for i := range ws.waves {
		ws.waves[i].amplitude = cfg.BaseAmplitude * []float32{1.2, 0.8, 0.6, 0.4}[i]
	}
}

func (ws *Simulation) GetConfig() Config {
	return ws.Config
}
