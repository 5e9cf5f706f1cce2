package renderer

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"GopherScene/internal/gpu"
	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// ProgramParameters is everything that selects a shader permutation.
type ProgramParameters struct {
	ShaderID            string
	ShaderName          string
	VertexShader        string
	FragmentShader      string
	Defines             map[string]string
	CustomCacheKey      string
	IsRawShaderMaterial bool
	IsShaderMaterial    bool

	Precision                string
	IndexOfAttributePosition int

	Instancing      bool
	InstancingColor bool
	Skinning        bool

	Map                   bool
	MapColorSpace         scene.ColorSpace
	Matcap                bool
	EnvMap                bool
	EnvMapMode            scene.Mapping
	LightMap              bool
	AOMap                 bool
	BumpMap               bool
	NormalMap             bool
	NormalMapObjectSpace  bool
	NormalMapTangentSpace bool
	DisplacementMap       bool
	EmissiveMap           bool
	MetalnessMap          bool
	RoughnessMap          bool
	SpecularMap           bool
	AlphaMap              bool
	GradientMap           bool
	AlphaTest             bool
	AlphaHash             bool

	IsStandard   bool
	IsPhysical   bool
	Clearcoat    bool
	Sheen        bool
	Transmission bool
	Iridescence  bool
	Dispersion   bool

	VertexTangents bool
	VertexColors   bool
	VertexAlphas   bool
	VertexUV1s     bool
	VertexUV2s     bool
	VertexUV3s     bool
	PointsUVs      bool

	Fog             bool
	FogExp2         bool
	FlatShading     bool
	SizeAttenuation bool

	LogarithmicDepthBuffer bool

	MorphTargets       bool
	MorphNormals       bool
	MorphColors        bool
	MorphTargetsCount  int
	MorphTextureStride int

	NumDirLights                int
	NumPointLights              int
	NumSpotLights               int
	NumSpotLightMaps            int
	NumRectAreaLights           int
	NumHemiLights               int
	NumDirLightShadows          int
	NumPointLightShadows        int
	NumSpotLightShadows         int
	NumSpotLightShadowsWithMaps int
	NumLightProbes              int
	NumClippingPlanes           int
	NumClipIntersection         int

	Dithering          bool
	ShadowMapEnabled   bool
	ShadowMapType      scene.ShadowMapType
	ToneMapping        scene.ToneMapping
	UseLegacyLights    bool
	OutputSRGB         bool
	PremultipliedAlpha bool
	DoubleSided        bool
	FlipSided          bool
	DepthPacking       scene.DepthPacking
}

// Programs compiles shader permutations and shares them between materials.
type Programs struct {
	ctx           gpu.Context
	bindingStates *BindingStates
	caps          *Capabilities
	cfg           *Config
	info          *Info

	programs []*Program

	// destination of the current render, nil for the default framebuffer
	target *scene.RenderTarget
}

func NewPrograms(ctx gpu.Context, bindingStates *BindingStates, caps *Capabilities, cfg *Config, info *Info) *Programs {
	return &Programs{ctx: ctx, bindingStates: bindingStates, caps: caps, cfg: cfg, info: info}
}

// usesLights reports whether the material's shader reads the light uniforms.
func usesLights(m *scene.Material) bool {
	switch m.Kind {
	case scene.MeshLambertMaterial, scene.MeshPhongMaterial, scene.MeshToonMaterial,
		scene.MeshStandardMaterial, scene.MeshPhysicalMaterial, scene.ShadowMaterial:
		return true
	case scene.ShaderMaterial:
		_, ok := m.Uniforms["directionalLights"]
		return ok
	}
	return false
}

func hasAttribute(g *scene.Geometry, name string) bool {
	if g == nil {
		return false
	}
	_, ok := g.Attributes[name]
	return ok
}

// GetParameters derives the permutation parameters of drawing object with material.
func (ps *Programs) GetParameters(material *scene.Material, lights *LightsState, shadows []*scene.Light, sc *scene.Scene, object *scene.Object) (*ProgramParameters, error) {
	geometry := object.Geometry
	shaderID := shaderIDFor(material)

	p := &ProgramParameters{
		ShaderID:                 shaderID,
		Defines:                  material.Defines,
		IsRawShaderMaterial:      material.Kind == scene.RawShaderMaterial,
		IsShaderMaterial:         material.Kind == scene.ShaderMaterial,
		Precision:                ps.caps.Precision,
		IndexOfAttributePosition: -1,
		LogarithmicDepthBuffer:   ps.caps.LogarithmicDepthBuffer,
		UseLegacyLights:          ps.cfg.UseLegacyLights,
		PremultipliedAlpha:       material.PremultipliedAlpha,
		DoubleSided:              material.Side == scene.DoubleSide,
		FlipSided:                material.Side == scene.BackSide,
		DepthPacking:             material.DepthPacking,
		Dithering:                material.Dithering,
		AlphaHash:                material.AlphaHash,
		FlatShading:              material.FlatShading,
		SizeAttenuation:          material.SizeAttenuation,
	}
	if material.CustomProgramCacheKey != nil {
		p.CustomCacheKey = material.CustomProgramCacheKey()
	}

	if material.IsShader() {
		// custom sources are keyed by their text, not by a library id
		p.ShaderID = ""
		p.VertexShader, p.FragmentShader = material.VertexShader, material.FragmentShader
		p.ShaderName = material.Kind.String()
		if shaderID != "" {
			p.ShaderName = shaderID
		}
		if material.Name != "" {
			p.ShaderName += "-" + material.Name
		}
	} else {
		src, ok := ShaderLib[shaderID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMaterialKind, material.Kind)
		}
		p.VertexShader, p.FragmentShader = src.Vertex, src.Fragment
		p.ShaderName = shaderID
	}
	if !p.IsRawShaderMaterial {
		p.IndexOfAttributePosition = 0
	}

	p.Instancing = object.Kind == scene.KindInstancedMesh
	p.InstancingColor = p.Instancing && object.InstanceColor != nil
	p.Skinning = object.Kind == scene.KindSkinnedMesh && object.Skeleton != nil

	p.Map = material.Map != nil
	if p.Map {
		p.MapColorSpace = material.Map.ColorSpace
	}
	p.Matcap = material.Matcap != nil
	envMap := material.EnvMap
	if envMap == nil && (material.Kind == scene.MeshStandardMaterial || material.Kind == scene.MeshPhysicalMaterial) && sc != nil {
		envMap = sc.Environment
	}
	p.EnvMap = envMap != nil
	if p.EnvMap {
		p.EnvMapMode = envMapMode(envMap)
	}
	p.LightMap = material.LightMap != nil
	p.AOMap = material.AOMap != nil
	p.BumpMap = material.BumpMap != nil
	p.NormalMap = material.NormalMap != nil
	p.NormalMapObjectSpace = p.NormalMap && material.NormalMapType == scene.ObjectSpaceNormalMap
	p.NormalMapTangentSpace = p.NormalMap && material.NormalMapType == scene.TangentSpaceNormalMap
	p.DisplacementMap = material.DisplacementMap != nil
	p.EmissiveMap = material.EmissiveMap != nil
	p.MetalnessMap = material.MetalnessMap != nil
	p.RoughnessMap = material.RoughnessMap != nil
	p.SpecularMap = material.SpecularMap != nil
	p.AlphaMap = material.AlphaMap != nil
	p.GradientMap = material.GradientMap != nil
	p.AlphaTest = material.AlphaTest > 0

	p.IsStandard = material.Kind == scene.MeshStandardMaterial || material.Kind == scene.MeshPhysicalMaterial
	p.IsPhysical = material.Kind == scene.MeshPhysicalMaterial
	if p.IsPhysical {
		p.Clearcoat = material.Clearcoat > 0
		p.Sheen = material.Sheen > 0
		p.Transmission = material.Transmission > 0
		p.Iridescence = material.Iridescence > 0
		p.Dispersion = material.Dispersion > 0
	}

	p.VertexTangents = hasAttribute(geometry, "tangent") && (p.NormalMap || material.Anisotropy > 0)
	p.VertexColors = material.VertexColors
	if p.VertexColors && geometry != nil {
		if c, ok := geometry.Attributes["color"]; ok && c.Size() == 4 {
			p.VertexAlphas = true
		}
	}
	p.VertexUV1s = hasAttribute(geometry, "uv1")
	p.VertexUV2s = hasAttribute(geometry, "uv2")
	p.VertexUV3s = hasAttribute(geometry, "uv3")
	p.PointsUVs = object.Kind == scene.KindPoints && hasAttribute(geometry, "uv") && p.Map

	if sc != nil && sc.Fog != nil && material.Fog {
		p.Fog = true
		p.FogExp2 = sc.Fog.Kind == scene.ExponentialFog
	}

	if geometry != nil {
		morphs := geometry.MorphAttributes
		p.MorphTargets = len(morphs["position"]) > 0
		p.MorphNormals = len(morphs["normal"]) > 0
		p.MorphColors = len(morphs["color"]) > 0
		p.MorphTargetsCount = morphTargetsCount(geometry)
		p.MorphTextureStride = morphTextureStride(geometry)
	}

	if usesLights(material) {
		p.NumDirLights = len(lights.Directional)
		p.NumPointLights = len(lights.Point)
		p.NumSpotLights = len(lights.Spot)
		p.NumSpotLightMaps = len(lights.SpotLightMap)
		p.NumRectAreaLights = len(lights.RectArea)
		p.NumHemiLights = len(lights.Hemi)
		p.NumDirLightShadows = len(lights.DirectionalShadowMap)
		p.NumPointLightShadows = len(lights.PointShadowMap)
		p.NumSpotLightShadows = len(lights.SpotShadowMap)
		p.NumSpotLightShadowsWithMaps = lights.NumSpotLightShadowsWithMaps
		p.NumLightProbes = lights.NumLightProbes
	}
	p.NumClippingPlanes = len(material.ClippingPlanes)

	p.ShadowMapEnabled = ps.cfg.ShadowMapEnabled && len(shadows) > 0 && object.ReceiveShadow
	p.ShadowMapType = ps.cfg.shadowMapType()

	p.ToneMapping = ps.toneMappingFor(material)
	p.OutputSRGB = ps.outputSRGB()
	return p, nil
}

// toneMappingFor is applied only when drawing to the default framebuffer.
func (ps *Programs) toneMappingFor(material *scene.Material) scene.ToneMapping {
	if !material.ToneMapped || ps.target != nil {
		return scene.NoToneMapping
	}
	return ps.cfg.toneMapping()
}

// outputSRGB reports whether the current destination expects sRGB encoded output.
func (ps *Programs) outputSRGB() bool {
	if ps.target == nil {
		return ps.cfg.outputColorSpace() == scene.SRGBColorSpace
	}
	t := ps.target.Texture()
	return t != nil && t.ColorSpace == scene.SRGBColorSpace
}

// SetRenderTarget tells parameter derivation where the next draws go.
func (ps *Programs) SetRenderTarget(rt *scene.RenderTarget) { ps.target = rt }

// GetProgramCacheKey is the exact-match key programs are shared by.
func (ps *Programs) GetProgramCacheKey(p *ProgramParameters) string {
	var b strings.Builder
	if p.ShaderID != "" {
		b.WriteString(p.ShaderID)
	} else {
		h := fnv.New64a()
		h.Write([]byte(p.FragmentShader))
		h.Write([]byte(p.VertexShader))
		b.WriteString(strconv.FormatUint(h.Sum64(), 16))
	}
	if len(p.Defines) > 0 {
		keys := maps.Keys(p.Defines)
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(',')
			b.WriteString(k)
			b.WriteByte(',')
			b.WriteString(p.Defines[k])
		}
	}
	if !p.IsRawShaderMaterial {
		writeKeyParameters(&b, p)
		fmt.Fprintf(&b, ",%d,%d", flagLayer0(p), flagLayer1(p))
	}
	b.WriteByte(',')
	b.WriteString(p.CustomCacheKey)
	return b.String()
}

func writeKeyParameters(b *strings.Builder, p *ProgramParameters) {
	for _, v := range []any{
		p.Precision, p.OutputSRGB, p.MapColorSpace, p.EnvMapMode, p.ToneMapping,
		p.MorphTargetsCount, p.MorphTextureStride,
		p.NumDirLights, p.NumPointLights, p.NumSpotLights, p.NumSpotLightMaps,
		p.NumHemiLights, p.NumRectAreaLights, p.NumDirLightShadows, p.NumPointLightShadows,
		p.NumSpotLightShadows, p.NumSpotLightShadowsWithMaps, p.NumLightProbes,
		p.ShadowMapType, p.NumClippingPlanes, p.NumClipIntersection, p.DepthPacking,
	} {
		b.WriteByte(',')
		fmt.Fprint(b, v)
	}
}

func bits(flags ...bool) uint64 {
	var m uint64
	for i, f := range flags {
		if f {
			m |= 1 << uint(i)
		}
	}
	return m
}

func flagLayer0(p *ProgramParameters) uint64 {
	return bits(
		p.Instancing, p.InstancingColor, p.Skinning, p.Map, p.Matcap, p.EnvMap,
		p.LightMap, p.AOMap, p.BumpMap, p.NormalMap, p.NormalMapObjectSpace,
		p.NormalMapTangentSpace, p.DisplacementMap, p.EmissiveMap, p.MetalnessMap,
		p.RoughnessMap, p.SpecularMap, p.AlphaMap, p.GradientMap, p.AlphaTest,
		p.AlphaHash, p.Clearcoat, p.Sheen, p.Transmission, p.Iridescence, p.Dispersion,
		p.VertexTangents, p.VertexColors, p.VertexAlphas, p.VertexUV1s, p.VertexUV2s,
		p.VertexUV3s, p.PointsUVs,
	)
}

func flagLayer1(p *ProgramParameters) uint64 {
	return bits(
		p.Fog, p.FogExp2, p.FlatShading, p.SizeAttenuation, p.LogarithmicDepthBuffer,
		p.MorphTargets, p.MorphNormals, p.MorphColors, p.Dithering, p.ShadowMapEnabled,
		p.UseLegacyLights, p.PremultipliedAlpha, p.DoubleSided, p.FlipSided,
		p.IsStandard, p.IsPhysical,
	)
}

// GetUniforms returns a fresh uniform bag for material. Shader materials share their own map.
func (ps *Programs) GetUniforms(material *scene.Material) UniformValues {
	if material.IsShader() {
		return UniformValues(material.Uniforms)
	}
	if src, ok := ShaderLib[shaderIDFor(material)]; ok {
		return src.Uniforms()
	}
	return UniformValues{}
}

// AcquireProgram returns the program with key, compiling it on first request.
func (ps *Programs) AcquireProgram(p *ProgramParameters, key string) (*Program, error) {
	for _, prog := range ps.programs {
		if prog.CacheKey == key {
			prog.usedTimes++
			return prog, nil
		}
	}
	prog, err := newProgram(ps.ctx, key, p, ps.cfg.Debug.CheckShaderErrors)
	if err != nil {
		return nil, err
	}
	ps.programs = append(ps.programs, prog)
	ps.info.Programs = len(ps.programs)
	logger.Log.Debug("Program compiled",
		zap.String("program", prog.Name),
		zap.Int("id", prog.id),
		zap.Int("programs", len(ps.programs)))
	return prog, nil
}

// ReleaseProgram drops one use. The native program is deleted with the last one.
func (ps *Programs) ReleaseProgram(prog *Program) {
	if prog.usedTimes <= 0 {
		panic(fmt.Sprintf("renderer: program %d released more times than acquired", prog.id))
	}
	prog.usedTimes--
	if prog.usedTimes > 0 {
		return
	}
	for i, p := range ps.programs {
		if p == prog {
			last := len(ps.programs) - 1
			ps.programs[i] = ps.programs[last]
			ps.programs[last] = nil
			ps.programs = ps.programs[:last]
			break
		}
	}
	ps.bindingStates.ReleaseStatesOfProgram(prog.id)
	prog.destroy()
	ps.info.Programs = len(ps.programs)
	logger.Log.Debug("Program released", zap.String("program", prog.Name), zap.Int("id", prog.id))
}

// Programs returns the live programs.
func (ps *Programs) Programs() []*Program {
	out := make([]*Program, len(ps.programs))
	copy(out, ps.programs)
	return out
}

// Dispose deletes every live program regardless of use counts.
func (ps *Programs) Dispose() {
	for _, prog := range ps.programs {
		prog.destroy()
	}
	ps.programs = nil
	ps.info.Programs = 0
}
