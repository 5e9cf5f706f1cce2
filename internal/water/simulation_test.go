package water

import (
	"testing"

	"GopherScene/internal/behaviour"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.OceanSize = 20
	cfg.Resolution = 8
	return cfg
}

func TestNewSimulationBuildsGrid(t *testing.T) {
	ws, err := NewSimulation(smallConfig())
	require.NoError(t, err)

	pos := ws.Mesh.Geometry.Attribute("position").(*scene.BufferAttribute)
	assert.Equal(t, 64, pos.Count())
	assert.Equal(t, scene.DynamicDrawUsage, pos.Usage)
	assert.False(t, ws.Mesh.FrustumCulled)
	assert.True(t, ws.Mesh.ReceiveShadow)
	assert.True(t, ws.Mesh.Material.Transparent)
	assert.InDelta(t, 0.85, ws.Mesh.Material.Opacity, 1e-6)
}

func TestNewSimulationFallsBackToDefaultResolution(t *testing.T) {
	cfg := smallConfig()
	cfg.Resolution = 0
	ws, err := NewSimulation(cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultResolution, ws.Resolution)
}

func TestStepDisplacesVertices(t *testing.T) {
	ws, err := NewSimulation(smallConfig())
	require.NoError(t, err)
	pos := ws.Mesh.Geometry.Attribute("position").(*scene.BufferAttribute)
	norm := ws.Mesh.Geometry.Attribute("normal").(*scene.BufferAttribute)
	pv, nv := pos.Version, norm.Version

	ws.Step(0.5)

	assert.Equal(t, pv+1, pos.Version)
	assert.Equal(t, nv+1, norm.Version)
	assert.InDelta(t, 0.5, ws.Time, 1e-6)

	arr := pos.Array.(scene.Float32Array)
	moved := false
	for i := 1; i < len(arr); i += 3 {
		if arr[i] != 0 {
			moved = true
			break
		}
	}
	assert.True(t, moved)
}

func TestDisplaceIsDeterministic(t *testing.T) {
	ws, err := NewSimulation(smallConfig())
	require.NoError(t, err)
	p := mgl32.Vec3{3, 0, -2}
	assert.Equal(t, ws.Displace(p, 1.25), ws.Displace(p, 1.25))
}

func TestZeroWaveHeightKeepsSurfaceFlat(t *testing.T) {
	cfg := smallConfig()
	cfg.WaveHeight = 0
	ws, err := NewSimulation(cfg)
	require.NoError(t, err)
	out := ws.Displace(mgl32.Vec3{1, 0, 1}, 2)
	assert.InDelta(t, 0, out.Y(), 1e-6)
}

func TestApplyConfigKeepsGridShape(t *testing.T) {
	ws, err := NewSimulation(smallConfig())
	require.NoError(t, err)
	version := ws.Mesh.Material.Version

	cfg := DefaultConfig()
	cfg.Transparency = 1
	cfg.WaterColor = [3]float32{1, 0, 0}
	ws.ApplyConfig(cfg)

	got := ws.GetConfig()
	assert.Equal(t, float32(20), got.OceanSize)
	assert.Equal(t, 8, got.Resolution)
	assert.False(t, ws.Mesh.Material.Transparent)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, ws.Mesh.Material.Color)
	assert.Greater(t, ws.Mesh.Material.Version, version)
}

func TestSimulationRunsAsComponent(t *testing.T) {
	ws, err := NewSimulation(smallConfig())
	require.NoError(t, err)
	m := behaviour.NewBehaviourManager()
	obj := behaviour.NewGameObject("water", ws.Mesh)
	obj.AddComponent(ws)
	m.Add(obj)

	m.Step(m.FixedStep * 2.5)
	assert.InDelta(t, m.FixedStep*2, ws.Time, 1e-5)
}
