package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"GopherScene/internal/behaviour"
	"GopherScene/internal/loader"
	"GopherScene/internal/logger"
	"GopherScene/internal/scene"
	"GopherScene/internal/water"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// SceneData is the on-disk scene description.
type SceneData struct {
	GameObjects []SceneGameObject `json:"game_objects,omitempty"`
	Models      []SceneModel      `json:"models,omitempty"`
	Lights      []SceneLight      `json:"lights,omitempty"`
	Camera      *SceneCamera      `json:"camera,omitempty"`
	Terrain     *SceneTerrain     `json:"terrain,omitempty"`
	Water       *SceneWater       `json:"water,omitempty"`
	Skybox      *SceneSkybox      `json:"skybox,omitempty"`
}

type SceneTransform struct {
	Position [3]float32 `json:"position"`
	// Euler angles in degrees, applied X then Y then Z
	Rotation [3]float32 `json:"rotation"`
	Scale    [3]float32 `json:"scale"`
}

// SceneGameObject is an empty transform that carries scripts.
type SceneGameObject struct {
	SceneTransform
	Name       string           `json:"name"`
	Tag        string           `json:"tag,omitempty"`
	Active     bool             `json:"active"`
	Components []SceneComponent `json:"components,omitempty"`
}

type SceneModel struct {
	SceneTransform
	Name          string           `json:"name"`
	Path          string           `json:"path"`
	Tag           string           `json:"tag,omitempty"`
	DiffuseColor  *[3]float32      `json:"diffuse_color,omitempty"`
	Metallic      *float32         `json:"metallic,omitempty"`
	Roughness     *float32         `json:"roughness,omitempty"`
	Alpha         *float32         `json:"alpha,omitempty"`
	CastShadow    bool             `json:"cast_shadow"`
	ReceiveShadow bool             `json:"receive_shadow"`
	Components    []SceneComponent `json:"components,omitempty"`
}

// SceneComponent names a registered script. Properties are decoded into the
// script's exported fields.
type SceneComponent struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

type SceneLight struct {
	Name      string     `json:"name"`
	Mode      string     `json:"mode"`
	Position  [3]float32 `json:"position"`
	Target    [3]float32 `json:"target"`
	Color     [3]float32 `json:"color"`
	Ground    [3]float32 `json:"ground_color"`
	Intensity float32    `json:"intensity"`
	Distance  float32    `json:"distance"`
	Decay     float32    `json:"decay"`
	// cone half angle in degrees
	Angle         float32 `json:"angle"`
	Penumbra      float32 `json:"penumbra"`
	CastShadow    bool    `json:"cast_shadow"`
	ShadowMapSize int     `json:"shadow_map_size,omitempty"`
	ShadowBias    float32 `json:"shadow_bias,omitempty"`
	// half extent of a directional shadow camera
	ShadowExtent float32 `json:"shadow_extent,omitempty"`
}

type SceneCamera struct {
	Position    [3]float32 `json:"position"`
	Target      [3]float32 `json:"target"`
	Fov         float32    `json:"fov,omitempty"`
	Speed       float32    `json:"speed,omitempty"`
	InvertMouse bool       `json:"invert_mouse"`
}

type SceneTerrain struct {
	Size     int        `json:"size"`
	Spacing  float32    `json:"spacing"`
	Seed     int64      `json:"seed"`
	Color    [3]float32 `json:"color"`
	Position [3]float32 `json:"position"`
}

type SceneWater struct {
	water.Config
	Position [3]float32 `json:"position"`
}

type SceneSkybox struct {
	// "color" or "image"; images are equirectangular panoramas
	Type      string     `json:"type"`
	ImagePath string     `json:"image_path"`
	Color     [3]float32 `json:"color"`
}

// LoadSceneFile parses a JSON scene description.
func LoadSceneFile(path string) (*SceneData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	var sd SceneData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return &sd, nil
}

// BuiltScene lists what Build added.
type BuiltScene struct {
	Objects map[string]*scene.Object
	Lights  []*scene.Light
	Water   *water.Simulation
}

// Build adds the described content to sc and registers scripts with mgr. Relative
// asset paths resolve against assetsDir. Models that fail to load are logged and skipped.
func (sd *SceneData) Build(sc *scene.Scene, mgr *behaviour.BehaviourManager, controls *FlyCamera, assetsDir string) (*BuiltScene, error) {
	built := &BuiltScene{Objects: map[string]*scene.Object{}}

	if sd.Skybox != nil {
		sd.buildSkybox(sc, assetsDir)
	}

	if t := sd.Terrain; t != nil {
		g, err := loader.Heightfield(t.Size, t.Spacing, t.Seed)
		if err != nil {
			return nil, fmt.Errorf("terrain: %w", err)
		}
		m := scene.NewMaterial(scene.MeshStandardMaterial)
		m.Color = vec3(t.Color)
		terrain := scene.NewMesh(g, m)
		terrain.Name = "Terrain"
		terrain.Position = vec3(t.Position)
		terrain.ReceiveShadow = true
		terrain.CastShadow = true
		sc.Add(terrain)
		built.Objects[terrain.Name] = terrain
	}

	for _, md := range sd.Models {
		obj, err := loadModel(resolvePath(md.Path, assetsDir))
		if err != nil {
			logger.Log.Error("Failed to load model", zap.String("name", md.Name), zap.String("path", md.Path), zap.Error(err))
			continue
		}
		if md.Name != "" {
			obj.Name = md.Name
		}
		md.SceneTransform.apply(obj)
		obj.Traverse(func(o *scene.Object) {
			o.CastShadow = md.CastShadow
			o.ReceiveShadow = md.ReceiveShadow
			for _, m := range objectMaterials(o) {
				md.applyMaterial(m)
			}
		})
		sc.Add(obj)
		built.Objects[obj.Name] = obj
		if err := attachScripts(mgr, obj, md.Name, md.Tag, true, md.Components); err != nil {
			return nil, err
		}
		logger.Log.Info("Loaded model", zap.String("name", obj.Name))
	}

	for _, god := range sd.GameObjects {
		obj := scene.NewGroup()
		obj.Name = god.Name
		god.SceneTransform.apply(obj)
		sc.Add(obj)
		built.Objects[obj.Name] = obj
		if err := attachScripts(mgr, obj, god.Name, god.Tag, god.Active, god.Components); err != nil {
			return nil, err
		}
	}

	for _, ld := range sd.Lights {
		l := ld.build()
		if l == nil {
			logger.Log.Warn("Unknown light mode", zap.String("name", ld.Name), zap.String("mode", ld.Mode))
			continue
		}
		sc.Add(&l.Object)
		if l.Target != nil {
			sc.Add(l.Target)
		}
		built.Lights = append(built.Lights, l)
	}
	if len(sd.Lights) == 0 {
		logger.Log.Warn("No lights in scene, adding fallback light")
		l := scene.NewDirectionalLight(mgl32.Vec3{1, 1, 1}, 1)
		l.Name = "FallbackLight"
		l.Position = mgl32.Vec3{0, 10, 5}
		sc.Add(&l.Object, l.Target)
		sc.Add(&scene.NewAmbientLight(mgl32.Vec3{1, 1, 1}, 0.3).Object)
		built.Lights = append(built.Lights, l)
	}

	if wd := sd.Water; wd != nil {
		ws, err := water.NewSimulation(wd.Config)
		if err != nil {
			return nil, fmt.Errorf("water: %w", err)
		}
		ws.Mesh.Position = vec3(wd.Position)
		sc.Add(ws.Mesh)
		goWater := behaviour.NewGameObject("Water", ws.Mesh)
		goWater.AddComponent(ws)
		mgr.Add(goWater)
		built.Water = ws
		built.Objects[ws.Mesh.Name] = ws.Mesh
	}

	if c := sd.Camera; c != nil && controls != nil {
		controls.Camera.Position = vec3(c.Position)
		controls.InvertMouse = c.InvertMouse
		if c.Speed > 0 {
			controls.Speed = c.Speed
		}
		if c.Fov > 0 {
			controls.Camera.Fov = c.Fov
			controls.Camera.UpdateProjection()
		}
		controls.LookAt(vec3(c.Target))
	}

	sc.UpdateMatrixWorld()
	return built, nil
}

func (sd *SceneData) buildSkybox(sc *scene.Scene, assetsDir string) {
	sky := sd.Skybox
	if sky.Type == "image" && sky.ImagePath != "" {
		tex, err := loader.LoadImage(resolvePath(sky.ImagePath, assetsDir))
		if err == nil {
			tex.Mapping = scene.EquirectangularReflectionMapping
			sc.BackgroundTexture = tex
			sc.BackgroundColor = nil
			return
		}
		logger.Log.Error("Failed to load skybox", zap.String("path", sky.ImagePath), zap.Error(err))
	}
	sc.SetBackgroundColor(vec3(sky.Color))
}

func loadModel(path string) (*scene.Object, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return loader.LoadOBJ(path)
	case ".gltf", ".glb":
		return loader.LoadGLTF(path)
	}
	return nil, fmt.Errorf("%s: %w", path, loader.ErrUnsupportedFormat)
}

func resolvePath(path, assetsDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(assetsDir, path)
}

func objectMaterials(o *scene.Object) []*scene.Material {
	if len(o.Materials) > 0 {
		return o.Materials
	}
	if o.Material != nil {
		return []*scene.Material{o.Material}
	}
	return nil
}

func (md *SceneModel) applyMaterial(m *scene.Material) {
	if md.DiffuseColor != nil {
		m.Color = vec3(*md.DiffuseColor)
	}
	if md.Metallic != nil {
		m.Metalness = *md.Metallic
	}
	if md.Roughness != nil {
		m.Roughness = *md.Roughness
	}
	if md.Alpha != nil {
		m.Opacity = *md.Alpha
		m.Transparent = *md.Alpha < 1
	}
	m.NeedsUpdate()
}

func (t SceneTransform) apply(o *scene.Object) {
	o.Position = vec3(t.Position)
	o.Rotation = mgl32.AnglesToQuat(
		mgl32.DegToRad(t.Rotation[0]),
		mgl32.DegToRad(t.Rotation[1]),
		mgl32.DegToRad(t.Rotation[2]),
		mgl32.XYZ,
	)
	if t.Scale != ([3]float32{}) {
		o.Scale = vec3(t.Scale)
	}
}

func (ld *SceneLight) build() *scene.Light {
	color := vec3(ld.Color)
	if color.Len() == 0 {
		color = mgl32.Vec3{1, 1, 1}
	}
	var l *scene.Light
	switch ld.Mode {
	case "ambient":
		l = scene.NewAmbientLight(color, ld.Intensity)
	case "hemisphere":
		l = scene.NewHemisphereLight(color, vec3(ld.Ground), ld.Intensity)
	case "directional", "":
		l = scene.NewDirectionalLight(color, ld.Intensity)
		if e := ld.ShadowExtent; e > 0 {
			cam := l.Shadow.Camera
			cam.Left, cam.Right, cam.Top, cam.Bottom = -e, e, e, -e
			cam.UpdateProjection()
		}
	case "point":
		l = scene.NewPointLight(color, ld.Intensity, ld.Distance, decayOr(ld.Decay))
	case "spot":
		angle := ld.Angle
		if angle <= 0 {
			angle = 30
		}
		l = scene.NewSpotLight(color, ld.Intensity, ld.Distance, mgl32.DegToRad(angle), ld.Penumbra, decayOr(ld.Decay))
	default:
		return nil
	}
	l.Name = ld.Name
	if l.Kind != scene.AmbientLight && l.Kind != scene.HemisphereLight {
		l.Position = vec3(ld.Position)
	}
	if l.Target != nil {
		l.Target.Position = vec3(ld.Target)
	}
	if l.Shadow != nil {
		l.CastShadow = ld.CastShadow
		if ld.ShadowMapSize > 0 {
			l.Shadow.MapWidth, l.Shadow.MapHeight = ld.ShadowMapSize, ld.ShadowMapSize
		}
		l.Shadow.Bias = ld.ShadowBias
	}
	return l
}

func decayOr(d float32) float32 {
	if d <= 0 {
		return 2
	}
	return d
}

// attachScripts wraps obj in a game object when components are listed.
func attachScripts(mgr *behaviour.BehaviourManager, obj *scene.Object, name, tag string, active bool, comps []SceneComponent) error {
	if len(comps) == 0 {
		return nil
	}
	gobj := behaviour.NewGameObject(name, obj)
	gobj.Tag = tag
	gobj.Active = active
	for _, c := range comps {
		script := behaviour.CreateScript(c.Type)
		if script == nil {
			logger.Log.Warn("Unknown script", zap.String("object", name), zap.String("type", c.Type))
			continue
		}
		if len(c.Properties) > 0 {
			if err := decodeProperties(c.Properties, script); err != nil {
				return fmt.Errorf("%s.%s: %w", name, c.Type, err)
			}
		}
		gobj.AddComponent(script)
	}
	mgr.Add(gobj)
	return nil
}

func decodeProperties(props map[string]any, into behaviour.Component) error {
	data, err := json.Marshal(props)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(into)
}

func vec3(v [3]float32) mgl32.Vec3 { return mgl32.Vec3(v) }
