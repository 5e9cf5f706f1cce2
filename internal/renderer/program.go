package renderer

import (
	"fmt"
	"sort"
	"strings"

	"GopherScene/internal/gpu"
	"GopherScene/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// programAttribute is one active vertex input. Matrices span several locations.
type programAttribute struct {
	typ          gpu.Enum
	location     int
	locationSize int
}

// ProgramDiagnostics is kept on a program whose link failed.
type ProgramDiagnostics struct {
	Runnable    bool
	ProgramLog  string
	VertexLog   string
	FragmentLog string
}

// Program is one compiled shader permutation, shared by every material with the same cache key.
type Program struct {
	id        int
	Name      string
	CacheKey  string
	usedTimes int

	ctx            gpu.Context
	program        gpu.Program
	vertexShader   gpu.Shader
	fragmentShader gpu.Shader
	checkErrors    bool

	// reflected lazily on first use
	diagnostics *ProgramDiagnostics
	uniforms    *Uniforms
	attributes  map[string]programAttribute
}

var programIDCount int

func newProgram(ctx gpu.Context, cacheKey string, p *ProgramParameters, checkErrors bool) (*Program, error) {
	vertex, fragment, err := programSources(p)
	if err != nil {
		return nil, err
	}
	programIDCount++
	prog := &Program{
		id:          programIDCount,
		Name:        p.ShaderName,
		CacheKey:    cacheKey,
		usedTimes:   1,
		ctx:         ctx,
		checkErrors: checkErrors,
	}
	prog.program = ctx.CreateProgram()
	prog.vertexShader = compileShader(ctx, gpu.VERTEX_SHADER, vertex)
	prog.fragmentShader = compileShader(ctx, gpu.FRAGMENT_SHADER, fragment)
	ctx.AttachShader(prog.program, prog.vertexShader)
	ctx.AttachShader(prog.program, prog.fragmentShader)
	if p.IndexOfAttributePosition >= 0 {
		ctx.BindAttribLocation(prog.program, gpu.Attrib(p.IndexOfAttributePosition), "position")
	}
	ctx.LinkProgram(prog.program)
	return prog, nil
}

func compileShader(ctx gpu.Context, typ gpu.Enum, src string) gpu.Shader {
	s := ctx.CreateShader(typ)
	ctx.ShaderSource(s, src)
	ctx.CompileShader(s)
	return s
}

func (p *Program) ID() int { return p.id }

// UsedTimes is the number of materials currently holding the program.
func (p *Program) UsedTimes() int { return p.usedTimes }

// Native returns the GPU program handle.
func (p *Program) Native() gpu.Program { return p.program }

// Diagnostics checks link status on first call and logs failures once.
func (p *Program) Diagnostics() *ProgramDiagnostics {
	if p.diagnostics != nil {
		return p.diagnostics
	}
	ctx := p.ctx
	d := &ProgramDiagnostics{Runnable: ctx.GetProgrami(p.program, gpu.LINK_STATUS) != 0}
	if !d.Runnable {
		d.ProgramLog = strings.TrimSpace(ctx.GetProgramInfoLog(p.program))
		if ctx.GetShaderi(p.vertexShader, gpu.COMPILE_STATUS) == 0 {
			d.VertexLog = strings.TrimSpace(ctx.GetShaderInfoLog(p.vertexShader))
		}
		if ctx.GetShaderi(p.fragmentShader, gpu.COMPILE_STATUS) == 0 {
			d.FragmentLog = strings.TrimSpace(ctx.GetShaderInfoLog(p.fragmentShader))
		}
		if p.checkErrors {
			logger.Log.Error("Shader program failed to link",
				zap.String("program", p.Name),
				zap.String("programLog", d.ProgramLog),
				zap.String("vertexLog", d.VertexLog),
				zap.String("fragmentLog", d.FragmentLog))
		}
	}
	// shaders are no longer needed once linked
	ctx.DeleteShader(p.vertexShader)
	ctx.DeleteShader(p.fragmentShader)
	p.diagnostics = d
	return d
}

// Runnable reports whether the program linked.
func (p *Program) Runnable() bool { return p.Diagnostics().Runnable }

// Uniforms returns the reflected setter tree.
func (p *Program) Uniforms() *Uniforms {
	if p.uniforms == nil {
		p.uniforms = NewUniforms(p.ctx, p.program)
	}
	return p.uniforms
}

// Attributes returns the active vertex inputs keyed by name.
func (p *Program) Attributes() map[string]programAttribute {
	if p.attributes != nil {
		return p.attributes
	}
	p.attributes = make(map[string]programAttribute)
	n := int(p.ctx.GetProgrami(p.program, gpu.ACTIVE_ATTRIBS))
	for i := 0; i < n; i++ {
		name, _, typ := p.ctx.GetActiveAttrib(p.program, uint32(i))
		size := 1
		switch typ {
		case gpu.FLOAT_MAT2:
			size = 2
		case gpu.FLOAT_MAT3:
			size = 3
		case gpu.FLOAT_MAT4:
			size = 4
		}
		p.attributes[name] = programAttribute{
			typ:          typ,
			location:     int(p.ctx.GetAttribLocation(p.program, name)),
			locationSize: size,
		}
	}
	return p.attributes
}

func (p *Program) destroy() {
	p.ctx.DeleteProgram(p.program)
	p.program = 0
}

// programSources assembles the final GLSL for both stages.
func programSources(p *ProgramParameters) (string, string, error) {
	vertex, fragment := p.VertexShader, p.FragmentShader
	if !p.IsRawShaderMaterial {
		var err error
		if vertex, err = resolveIncludes(stripVersion(vertex)); err != nil {
			return "", "", fmt.Errorf("%s vertex: %w", p.ShaderName, err)
		}
		if fragment, err = resolveIncludes(stripVersion(fragment)); err != nil {
			return "", "", fmt.Errorf("%s fragment: %w", p.ShaderName, err)
		}
	}
	custom := customDefines(p.Defines)
	if p.IsRawShaderMaterial {
		return rawPrefix(vertex, custom), rawPrefix(fragment, custom), nil
	}
	return vertexPrefix(p, custom) + vertex, fragmentPrefix(p, custom) + fragment, nil
}

func rawPrefix(src, custom string) string {
	if strings.HasPrefix(strings.TrimSpace(src), "#version") {
		return src
	}
	return "#version 410 core\n" + custom + src
}

func customDefines(defines map[string]string) string {
	if len(defines) == 0 {
		return ""
	}
	keys := maps.Keys(defines)
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		v := defines[k]
		if v == "false" {
			continue
		}
		if v == "" || v == "true" {
			fmt.Fprintf(&b, "#define %s\n", k)
		} else {
			fmt.Fprintf(&b, "#define %s %s\n", k, v)
		}
	}
	return b.String()
}

// define writes "#define NAME" when on is set.
func define(b *strings.Builder, on bool, name string) {
	if on {
		b.WriteString("#define ")
		b.WriteString(name)
		b.WriteByte('\n')
	}
}

func defineInt(b *strings.Builder, name string, v int) {
	fmt.Fprintf(b, "#define %s %d\n", name, v)
}

func commonPrefix(b *strings.Builder, p *ProgramParameters, custom string) {
	b.WriteString("#version 410 core\n")
	fmt.Fprintf(b, "#define SHADER_NAME %s\n", p.ShaderName)
	b.WriteString(custom)
	fmt.Fprintf(b, "precision %s float;\nprecision %s int;\n", p.Precision, p.Precision)
	defineInt(b, "NUM_DIR_LIGHTS", p.NumDirLights)
	defineInt(b, "NUM_POINT_LIGHTS", p.NumPointLights)
	defineInt(b, "NUM_SPOT_LIGHTS", p.NumSpotLights)
	defineInt(b, "NUM_SPOT_LIGHT_MAPS", p.NumSpotLightMaps)
	defineInt(b, "NUM_SPOT_LIGHT_COORDS", p.NumSpotLightShadows+p.NumSpotLightMaps-p.NumSpotLightShadowsWithMaps)
	defineInt(b, "NUM_RECT_AREA_LIGHTS", p.NumRectAreaLights)
	defineInt(b, "NUM_HEMI_LIGHTS", p.NumHemiLights)
	defineInt(b, "NUM_DIR_LIGHT_SHADOWS", p.NumDirLightShadows)
	defineInt(b, "NUM_POINT_LIGHT_SHADOWS", p.NumPointLightShadows)
	defineInt(b, "NUM_SPOT_LIGHT_SHADOWS", p.NumSpotLightShadows)
	defineInt(b, "NUM_SPOT_LIGHT_SHADOWS_WITH_MAPS", p.NumSpotLightShadowsWithMaps)
	defineInt(b, "NUM_CLIPPING_PLANES", p.NumClippingPlanes)
	defineInt(b, "UNION_CLIPPING_PLANES", p.NumClippingPlanes-p.NumClipIntersection)
	define(b, p.ShaderID == "phong", "PHONG")
	define(b, p.ShaderID == "toon", "TOON")
	define(b, p.IsStandard, "STANDARD")
	define(b, p.IsPhysical, "PHYSICAL")
	define(b, p.Map, "USE_MAP")
	define(b, p.AlphaMap, "USE_ALPHAMAP")
	define(b, p.AlphaTest, "USE_ALPHATEST")
	define(b, p.EnvMap, "USE_ENVMAP")
	define(b, p.LightMap, "USE_LIGHTMAP")
	define(b, p.AOMap, "USE_AOMAP")
	define(b, p.BumpMap, "USE_BUMPMAP")
	define(b, p.NormalMap, "USE_NORMALMAP")
	define(b, p.NormalMapObjectSpace, "USE_NORMALMAP_OBJECTSPACE")
	define(b, p.NormalMapTangentSpace, "USE_NORMALMAP_TANGENTSPACE")
	define(b, p.EmissiveMap, "USE_EMISSIVEMAP")
	define(b, p.RoughnessMap, "USE_ROUGHNESSMAP")
	define(b, p.MetalnessMap, "USE_METALNESSMAP")
	define(b, p.SpecularMap, "USE_SPECULARMAP")
	define(b, p.GradientMap, "USE_GRADIENTMAP")
	define(b, p.Matcap, "USE_MATCAP")
	define(b, p.Clearcoat, "USE_CLEARCOAT")
	define(b, p.Sheen, "USE_SHEEN")
	define(b, p.Transmission, "USE_TRANSMISSION")
	define(b, p.Iridescence, "USE_IRIDESCENCE")
	define(b, p.VertexTangents, "USE_TANGENT")
	define(b, p.VertexColors, "USE_COLOR")
	define(b, p.VertexAlphas, "USE_COLOR_ALPHA")
	define(b, p.VertexUV1s, "USE_UV1")
	define(b, p.VertexUV2s, "USE_UV2")
	define(b, p.VertexUV3s, "USE_UV3")
	define(b, p.InstancingColor, "USE_INSTANCING_COLOR")
	define(b, p.Fog, "USE_FOG")
	define(b, p.Fog && p.FogExp2, "FOG_EXP2")
	define(b, p.FlatShading, "FLAT_SHADED")
	define(b, p.DoubleSided, "DOUBLE_SIDED")
	define(b, p.FlipSided, "FLIP_SIDED")
	define(b, p.ShadowMapEnabled, "USE_SHADOWMAP")
	define(b, p.ShadowMapEnabled, shadowMapDefines[p.ShadowMapType])
	define(b, p.PremultipliedAlpha, "PREMULTIPLIED_ALPHA")
	define(b, p.UseLegacyLights, "LEGACY_LIGHTS")
	define(b, p.LogarithmicDepthBuffer, "USE_LOGDEPTHBUF")
	define(b, p.Dithering, "DITHERING")
	define(b, p.AlphaHash, "USE_ALPHAHASH")
	define(b, p.OutputSRGB, "OUTPUT_SRGB")
	if p.ToneMapping != 0 {
		defineInt(b, "TONE_MAPPING", int(p.ToneMapping))
	}
	defineInt(b, "DEPTH_PACKING", int(p.DepthPacking))
}

var shadowMapDefines = [...]string{"SHADOWMAP_TYPE_BASIC", "SHADOWMAP_TYPE_PCF", "SHADOWMAP_TYPE_PCF_SOFT", "SHADOWMAP_TYPE_VSM"}

func vertexPrefix(p *ProgramParameters, custom string) string {
	var b strings.Builder
	commonPrefix(&b, p, custom)
	define(&b, p.Instancing, "USE_INSTANCING")
	define(&b, p.Skinning, "USE_SKINNING")
	define(&b, p.MorphTargets, "USE_MORPHTARGETS")
	define(&b, p.MorphNormals && !p.FlatShading, "USE_MORPHNORMALS")
	define(&b, p.MorphColors, "USE_MORPHCOLORS")
	if p.MorphTargetsCount > 0 {
		defineInt(&b, "MORPHTARGETS_TEXTURE_STRIDE", p.MorphTextureStride)
		defineInt(&b, "MORPHTARGETS_COUNT", p.MorphTargetsCount)
	}
	define(&b, p.SizeAttenuation, "USE_SIZEATTENUATION")
	define(&b, p.DisplacementMap, "USE_DISPLACEMENTMAP")
	define(&b, p.PointsUVs, "USE_POINTS_UV")
	return b.String()
}

func fragmentPrefix(p *ProgramParameters, custom string) string {
	var b strings.Builder
	commonPrefix(&b, p, custom)
	return b.String()
}
