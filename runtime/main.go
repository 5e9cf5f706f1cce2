package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"

	"GopherScene/internal/behaviour"
	"GopherScene/internal/engine"
	"GopherScene/internal/loader"
	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	mgl "github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file (yaml, json or toml)")
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Log.Fatal("Failed to load config", zap.Error(err))
		}
		logger.Log.Warn("No config file, using defaults", zap.String("path", *configPath))
		cfg = engine.DefaultConfig()
	}

	gopher := engine.NewGopher(cfg)
	gopher.ConfigPath = *configPath

	built, err := loadGame(gopher)
	if err != nil {
		logger.Log.Fatal("Failed to build scene", zap.Error(err))
	}
	gopher.OnConfig = func(cfg engine.Config) {
		if built.Water != nil {
			built.Water.ApplyConfig(cfg.Water)
		}
	}
	gopher.OnPick = func(hit engine.Hit) {
		logger.Log.Info("Picked",
			zap.String("object", hit.Object.Name),
			zap.Float32("distance", hit.Distance),
			zap.Float32s("point", hit.Point[:]))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := gopher.Run(ctx); err != nil {
		logger.Log.Fatal("Engine stopped", zap.Error(err))
	}
}

// loadGame builds the scene file named in the config, or the built-in demo.
func loadGame(g *engine.Gopher) (*engine.BuiltScene, error) {
	if path := g.Config.Scene; path != "" {
		sd, err := engine.LoadSceneFile(path)
		if err == nil {
			logger.Log.Info("Loading scene", zap.String("path", path))
			return sd.Build(g.Scene, g.Behaviours, g.Controls, filepath.Dir(path))
		}
		logger.Log.Error("Failed to read scene, using demo scene", zap.Error(err))
	}
	return buildDemoScene(g)
}

func buildDemoScene(g *engine.Gopher) (*engine.BuiltScene, error) {
	waterCfg := g.Config.Water
	sd := &engine.SceneData{
		Skybox:  &engine.SceneSkybox{Type: "color", Color: [3]float32{0.55, 0.7, 0.9}},
		Terrain: &engine.SceneTerrain{Size: 128, Spacing: 1, Seed: 42, Color: [3]float32{0.35, 0.5, 0.25}},
		Water:   &engine.SceneWater{Config: waterCfg, Position: [3]float32{0, -2, 0}},
		Lights: []engine.SceneLight{
			{Name: "Sun", Mode: "directional", Position: [3]float32{40, 80, 30}, Color: [3]float32{1, 0.96, 0.88},
				Intensity: 2, CastShadow: true, ShadowMapSize: 2048, ShadowExtent: 70, ShadowBias: -0.0005},
			{Name: "Sky", Mode: "hemisphere", Color: [3]float32{0.6, 0.75, 1}, Ground: [3]float32{0.3, 0.25, 0.2}, Intensity: 0.6},
			{Name: "Torch", Mode: "spot", Position: [3]float32{-10, 20, 10}, Target: [3]float32{-10, 0, 0},
				Color: [3]float32{1, 0.8, 0.5}, Intensity: 300, Distance: 60, Angle: 30, Penumbra: 0.3, CastShadow: true},
			{Name: "Lamp", Mode: "point", Position: [3]float32{12, 12, -6}, Color: [3]float32{0.5, 0.7, 1},
				Intensity: 150, Distance: 50, CastShadow: true},
		},
		Camera: &engine.SceneCamera{Position: g.Config.Camera.Position, Target: g.Config.Camera.Target, Speed: g.Config.Camera.Speed},
	}

	for _, name := range []string{"model.obj", "model.gltf", "model.glb"} {
		if path := findAsset(name); path != "" {
			sd.Models = append(sd.Models, engine.SceneModel{
				Name:           "Model",
				Path:           path,
				SceneTransform: engine.SceneTransform{Position: [3]float32{0, 12, 0}, Scale: [3]float32{1, 1, 1}},
				CastShadow:     true,
				ReceiveShadow:  true,
				Components:     []engine.SceneComponent{{Type: "RotateScript"}},
			})
			break
		}
	}

	built, err := sd.Build(g.Scene, g.Behaviours, g.Controls, ".")
	if err != nil {
		return nil, err
	}

	addVoxelPatch(g.Scene, built)
	addScriptedBoxes(g, built)
	return built, nil
}

func addVoxelPatch(sc *scene.Scene, built *engine.BuiltScene) {
	world := loader.NewVoxelWorld(8, 2, 2, 12, 1)
	world.FillHeightmap(func(x, z int) int {
		dx, dz := float64(x-8), float64(z-8)
		return 10 - int((dx*dx+dz*dz)/8)
	})
	voxels := world.BuildInstanced(scene.NewMaterial(scene.MeshLambertMaterial))
	voxels.Position = mgl.Vec3{20, 4, 10}
	voxels.CastShadow = true
	voxels.ReceiveShadow = true
	sc.Add(voxels)
	built.Objects[voxels.Name] = voxels
}

func addScriptedBoxes(g *engine.Gopher, built *engine.BuiltScene) {
	box := scene.NewBoxGeometry(2, 2, 2)
	colors := []mgl.Vec3{{0.9, 0.3, 0.2}, {0.2, 0.6, 0.9}, {0.9, 0.8, 0.2}}
	scripts := []string{"RotateScript", "OrbitScript", "BounceScript"}
	for i, name := range scripts {
		m := scene.NewMaterial(scene.MeshStandardMaterial)
		m.Color = colors[i]
		m.Roughness = 0.4
		mesh := scene.NewMesh(box, m)
		mesh.Name = name
		mesh.Position = mgl.Vec3{float32(i*6 - 6), 10, 0}
		mesh.CastShadow = true
		g.Scene.Add(mesh)
		built.Objects[mesh.Name] = mesh

		obj := behaviour.NewGameObject(name, mesh)
		if script := behaviour.CreateScript(name); script != nil {
			obj.AddComponent(script)
		}
		g.Behaviours.Add(obj)
	}
}

func findAsset(name string) string {
	exePath, _ := os.Executable()
	exeDir := filepath.Dir(exePath)
	paths := []string{
		filepath.Join("assets", name),
		filepath.Join(exeDir, "assets", name),
		name,
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
