package engine

import (
	"os"
	"path/filepath"
	"testing"

	"GopherScene/internal/behaviour"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSceneJSON = `{
  "skybox": {"type": "color", "color": [0.1, 0.2, 0.3]},
  "terrain": {"size": 8, "spacing": 1, "seed": 7, "color": [0.3, 0.5, 0.2]},
  "models": [{
    "name": "Tri",
    "path": "tri.obj",
    "position": [1, 2, 3],
    "scale": [2, 2, 2],
    "diffuse_color": [1, 0, 0],
    "roughness": 0.25,
    "alpha": 0.5,
    "cast_shadow": true,
    "components": [{"type": "RotateScript", "properties": {"speed": 90, "axis": [0, 0, 1]}}]
  }, {
    "name": "Missing",
    "path": "nope.obj"
  }],
  "game_objects": [{
    "name": "Spinner",
    "tag": "fx",
    "active": true,
    "position": [0, 5, 0],
    "components": [{"type": "BounceScript"}, {"type": "NoSuchScript"}]
  }],
  "lights": [
    {"name": "Sun", "mode": "directional", "position": [10, 20, 10], "intensity": 2, "cast_shadow": true, "shadow_map_size": 1024, "shadow_extent": 30},
    {"name": "Lamp", "mode": "point", "position": [0, 3, 0], "intensity": 5, "distance": 20, "cast_shadow": true},
    {"name": "Torch", "mode": "spot", "position": [0, 8, 0], "target": [0, 0, 0], "angle": 25, "penumbra": 0.2, "cast_shadow": true},
    {"name": "Fill", "mode": "ambient", "intensity": 0.2},
    {"name": "Odd", "mode": "laser"}
  ],
  "water": {"ocean_size": 10, "resolution": 4, "base_amplitude": 0.2, "transparency": 0.7, "wave_height": 1, "wave_speed_multiplier": 1, "position": [0, -1, 0]},
  "camera": {"position": [0, 10, 20], "target": [0, 0, 0], "fov": 60, "speed": 42}
}`

func writeSceneFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(obj), 0o644))
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(testSceneJSON), 0o644))
	return path
}

func TestLoadSceneFileErrors(t *testing.T) {
	_, err := LoadSceneFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadSceneFile(bad)
	assert.Error(t, err)
}

func TestSceneBuild(t *testing.T) {
	path := writeSceneFixture(t)
	sd, err := LoadSceneFile(path)
	require.NoError(t, err)

	sc := scene.NewScene()
	mgr := behaviour.NewBehaviourManager()
	controls := NewFlyCamera(scene.NewPerspectiveCamera(45, 1, 0.1, 100))
	built, err := sd.Build(sc, mgr, controls, filepath.Dir(path))
	require.NoError(t, err)

	t.Run("background", func(t *testing.T) {
		require.NotNil(t, sc.BackgroundColor)
		assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, *sc.BackgroundColor)
	})

	t.Run("terrain", func(t *testing.T) {
		terrain := built.Objects["Terrain"]
		require.NotNil(t, terrain)
		assert.True(t, terrain.ReceiveShadow)
		assert.Equal(t, 64, terrain.Geometry.Attribute("position").Count())
	})

	t.Run("model", func(t *testing.T) {
		tri := built.Objects["Tri"]
		require.NotNil(t, tri)
		assert.Equal(t, mgl32.Vec3{1, 2, 3}, tri.Position)
		assert.Equal(t, mgl32.Vec3{2, 2, 2}, tri.Scale)
		assert.True(t, tri.CastShadow)
		assert.False(t, tri.ReceiveShadow)
		assert.Equal(t, mgl32.Vec3{1, 0, 0}, tri.Material.Color)
		assert.Equal(t, float32(0.25), tri.Material.Roughness)
		assert.True(t, tri.Material.Transparent)
		assert.NotContains(t, built.Objects, "Missing")
	})

	t.Run("scripts", func(t *testing.T) {
		gobj := mgr.Components.FindGameObject("Tri")
		require.NotNil(t, gobj)
		rot, ok := gobj.Components[0].(*behaviour.RotateScript)
		require.True(t, ok)
		assert.Equal(t, float32(90), rot.Speed)
		assert.Equal(t, mgl32.Vec3{0, 0, 1}, rot.Axis)

		spinner := mgr.Components.FindGameObject("Spinner")
		require.NotNil(t, spinner)
		assert.Equal(t, "fx", spinner.Tag)
		assert.Len(t, spinner.Components, 1, "unknown scripts are skipped")
		assert.Equal(t, mgl32.Vec3{0, 5, 0}, spinner.Object.Position)
	})

	t.Run("lights", func(t *testing.T) {
		require.Len(t, built.Lights, 4)
		sun, lamp, torch, fill := built.Lights[0], built.Lights[1], built.Lights[2], built.Lights[3]

		assert.Equal(t, scene.DirectionalLight, sun.Kind)
		assert.True(t, sun.CastShadow)
		assert.Equal(t, 1024, sun.Shadow.MapWidth)
		assert.Equal(t, float32(30), sun.Shadow.Camera.Right)

		assert.Equal(t, scene.PointLight, lamp.Kind)
		assert.Equal(t, float32(20), lamp.Distance)
		assert.Equal(t, float32(2), lamp.Decay)

		assert.Equal(t, scene.SpotLight, torch.Kind)
		assert.InDelta(t, mgl32.DegToRad(25), torch.Angle, 1e-6)
		assert.Same(t, &sc.Object, torch.Target.Parent)

		assert.Equal(t, scene.AmbientLight, fill.Kind)
		assert.Nil(t, fill.Shadow)
	})

	t.Run("water", func(t *testing.T) {
		require.NotNil(t, built.Water)
		assert.Equal(t, mgl32.Vec3{0, -1, 0}, built.Water.Mesh.Position)
		assert.Same(t, &sc.Object, built.Water.Mesh.Parent)
		mgr.Step(mgr.FixedStep)
		assert.Greater(t, built.Water.Time, float32(0))
	})

	t.Run("camera", func(t *testing.T) {
		assert.Equal(t, mgl32.Vec3{0, 10, 20}, controls.Camera.Position)
		assert.Equal(t, float32(42), controls.Speed)
		assert.Equal(t, float32(60), controls.Camera.Fov)
		want := mgl32.Vec3{0, -10, -20}.Normalize()
		assertVec(t, want, controls.Front)
	})
}

func TestSceneBuildAddsFallbackLight(t *testing.T) {
	sc := scene.NewScene()
	built, err := (&SceneData{}).Build(sc, behaviour.NewBehaviourManager(), nil, "")
	require.NoError(t, err)
	require.Len(t, built.Lights, 1)
	assert.Equal(t, "FallbackLight", built.Lights[0].Name)
}

func TestScriptPropertiesRejectUnknownFields(t *testing.T) {
	sd := &SceneData{GameObjects: []SceneGameObject{{
		Name:   "Bad",
		Active: true,
		Components: []SceneComponent{{
			Type:       "OrbitScript",
			Properties: map[string]any{"radius": 3, "wobble": true},
		}},
	}}}
	_, err := sd.Build(scene.NewScene(), behaviour.NewBehaviourManager(), nil, "")
	assert.Error(t, err)
}
