package renderer

import (
	"fmt"
	"regexp"
	"strings"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// ShaderSource is one built in shader: GLSL bodies plus the uniforms it expects.
type ShaderSource struct {
	Vertex   string
	Fragment string
	Uniforms func() UniformValues
}

var includeRe = regexp.MustCompile(`(?m)^[ \t]*#include +<([\w\d./]+)>`)

// resolveIncludes splices chunks in place of #include lines, recursively.
func resolveIncludes(src string) (string, error) {
	var err error
	out := includeRe.ReplaceAllStringFunc(src, func(line string) string {
		name := includeRe.FindStringSubmatch(line)[1]
		chunk, ok := shaderChunks[name]
		if !ok {
			err = fmt.Errorf("unknown shader chunk %q", name)
			return ""
		}
		resolved, e := resolveIncludes(chunk)
		if e != nil {
			err = e
		}
		return resolved
	})
	return out, err
}

func uval(v any) *scene.Uniform { return &scene.Uniform{Value: v} }

func mergeUniforms(groups ...UniformValues) UniformValues {
	out := make(UniformValues)
	for _, g := range groups {
		for k, v := range g {
			c := *v
			out[k] = &c
		}
	}
	return out
}

func commonUniforms() UniformValues {
	return UniformValues{
		"diffuse":      uval(mgl32.Vec3{1, 1, 1}),
		"opacity":      uval(float32(1)),
		"map":          uval((*scene.Texture)(nil)),
		"mapTransform": uval(mgl32.Ident3()),
		"alphaMap":     uval((*scene.Texture)(nil)),
		"alphaTest":    uval(float32(0)),
	}
}

func fogUniforms() UniformValues {
	return UniformValues{
		"fogDensity": uval(float32(0.00025)),
		"fogNear":    uval(float32(1)),
		"fogFar":     uval(float32(2000)),
		"fogColor":   uval(mgl32.Vec3{1, 1, 1}),
	}
}

func envmapUniforms() UniformValues {
	return UniformValues{
		"envMap":          uval((*scene.Texture)(nil)),
		"envMapRotation":  uval(mgl32.Ident3()),
		"envMapIntensity": uval(float32(1)),
		"flipEnvMap":      uval(float32(-1)),
		"reflectivity":    uval(float32(1)),
		"ior":             uval(float32(1.5)),
		"refractionRatio": uval(float32(0.98)),
	}
}

// lightUniforms are filled from Lights.State each frame.
func lightUniforms() UniformValues {
	return UniformValues{
		"ambientLightColor":       uval(mgl32.Vec3{}),
		"lightProbe":              uval(make([]mgl32.Vec3, 9)),
		"directionalLights":       uval([]any{}),
		"directionalLightShadows": uval([]any{}),
		"directionalShadowMap":    uval([]*scene.Texture{}),
		"directionalShadowMatrix": uval([]mgl32.Mat4{}),
		"spotLights":              uval([]any{}),
		"spotLightShadows":        uval([]any{}),
		"spotLightMap":            uval([]*scene.Texture{}),
		"spotShadowMap":           uval([]*scene.Texture{}),
		"spotLightMatrix":         uval([]mgl32.Mat4{}),
		"pointLights":             uval([]any{}),
		"pointLightShadows":       uval([]any{}),
		"pointShadowMap":          uval([]*scene.Texture{}),
		"pointShadowMatrix":       uval([]mgl32.Mat4{}),
		"hemisphereLights":        uval([]any{}),
		"rectAreaLights":          uval([]any{}),
		"ltc_1":                   uval((*scene.Texture)(nil)),
		"ltc_2":                   uval((*scene.Texture)(nil)),
	}
}

func mapsUniforms() UniformValues {
	return UniformValues{
		"aoMap":                    uval((*scene.Texture)(nil)),
		"aoMapIntensity":           uval(float32(1)),
		"lightMap":                 uval((*scene.Texture)(nil)),
		"lightMapIntensity":        uval(float32(1)),
		"bumpMap":                  uval((*scene.Texture)(nil)),
		"bumpScale":                uval(float32(1)),
		"normalMap":                uval((*scene.Texture)(nil)),
		"normalScale":              uval(mgl32.Vec2{1, 1}),
		"displacementMap":          uval((*scene.Texture)(nil)),
		"displacementScale":        uval(float32(1)),
		"displacementBias":         uval(float32(0)),
		"emissiveMap":              uval((*scene.Texture)(nil)),
		"specularMap":              uval((*scene.Texture)(nil)),
		"emissive":                 uval(mgl32.Vec3{}),
		"toneMappingExposure":      uval(float32(1)),
		"morphTargetBaseInfluence": uval(float32(1)),
		"morphTargetInfluences":    uval([]float32{}),
		"morphTargetsTexture":      uval((*scene.Texture)(nil)),
		"morphTargetsTextureSize":  uval([]int32{0, 0}),
		"boneTexture":              uval((*scene.Texture)(nil)),
		"bindMatrix":               uval(mgl32.Ident4()),
		"bindMatrixInverse":        uval(mgl32.Ident4()),
		"clippingPlanes":           uval([]mgl32.Vec4{}),
	}
}

func pointsUniforms() UniformValues {
	return UniformValues{
		"diffuse":      uval(mgl32.Vec3{1, 1, 1}),
		"opacity":      uval(float32(1)),
		"size":         uval(float32(1)),
		"scale":        uval(float32(1)),
		"map":          uval((*scene.Texture)(nil)),
		"mapTransform": uval(mgl32.Ident3()),
		"alphaMap":     uval((*scene.Texture)(nil)),
		"alphaTest":    uval(float32(0)),
	}
}

func spriteUniforms() UniformValues {
	return UniformValues{
		"diffuse":      uval(mgl32.Vec3{1, 1, 1}),
		"opacity":      uval(float32(1)),
		"center":       uval(mgl32.Vec2{0.5, 0.5}),
		"rotation":     uval(float32(0)),
		"map":          uval((*scene.Texture)(nil)),
		"mapTransform": uval(mgl32.Ident3()),
		"alphaMap":     uval((*scene.Texture)(nil)),
		"alphaTest":    uval(float32(0)),
	}
}

// ShaderLib holds the built in shaders keyed by shader id.
var ShaderLib = map[string]ShaderSource{
	"basic": {meshVertexShaderSource, meshBasicFragmentShaderSource, func() UniformValues {
		return mergeUniforms(commonUniforms(), mapsUniforms(), envmapUniforms(), fogUniforms())
	}},
	"lambert": {meshVertexShaderSource, litFragmentShaderSource, func() UniformValues {
		return mergeUniforms(commonUniforms(), mapsUniforms(), envmapUniforms(), fogUniforms(), lightUniforms())
	}},
	"phong": {meshVertexShaderSource, litFragmentShaderSource, func() UniformValues {
		return mergeUniforms(commonUniforms(), mapsUniforms(), envmapUniforms(), fogUniforms(), lightUniforms(),
			UniformValues{"specular": uval(mgl32.Vec3{0.067, 0.067, 0.067}), "shininess": uval(float32(30))})
	}},
	"toon": {meshVertexShaderSource, litFragmentShaderSource, func() UniformValues {
		return mergeUniforms(commonUniforms(), mapsUniforms(), fogUniforms(), lightUniforms(),
			UniformValues{"gradientMap": uval((*scene.Texture)(nil))})
	}},
	"physical": {meshVertexShaderSource, meshPhysicalFragmentShaderSource, func() UniformValues {
		return mergeUniforms(commonUniforms(), mapsUniforms(), envmapUniforms(), fogUniforms(), lightUniforms(),
			UniformValues{
				"roughness":               uval(float32(1)),
				"metalness":               uval(float32(0)),
				"roughnessMap":            uval((*scene.Texture)(nil)),
				"metalnessMap":            uval((*scene.Texture)(nil)),
				"clearcoat":               uval(float32(0)),
				"clearcoatRoughness":      uval(float32(0)),
				"sheen":                   uval(float32(0)),
				"sheenColor":              uval(mgl32.Vec3{}),
				"transmission":            uval(float32(0)),
				"transmissionMap":         uval((*scene.Texture)(nil)),
				"transmissionSamplerSize": uval(mgl32.Vec2{}),
				"transmissionSamplerMap":  uval((*scene.Texture)(nil)),
				"thickness":               uval(float32(0)),
				"attenuationDistance":     uval(float32(0)),
				"attenuationColor":        uval(mgl32.Vec3{}),
				"specularIntensity":       uval(float32(1)),
				"specularColor":           uval(mgl32.Vec3{1, 1, 1}),
				"iridescence":             uval(float32(0)),
				"dispersion":              uval(float32(0)),
			})
	}},
	"matcap": {meshVertexShaderSource, meshMatcapFragmentShaderSource, func() UniformValues {
		return mergeUniforms(commonUniforms(), mapsUniforms(), fogUniforms(), UniformValues{"matcap": uval((*scene.Texture)(nil))})
	}},
	"normal": {meshVertexShaderSource, meshNormalFragmentShaderSource, func() UniformValues {
		return mergeUniforms(mapsUniforms(), UniformValues{"opacity": uval(float32(1))})
	}},
	"depth": {meshVertexShaderSource, depthFragmentShaderSource, func() UniformValues {
		return mergeUniforms(commonUniforms(), mapsUniforms())
	}},
	"distanceRGBA": {meshVertexShaderSource, distanceFragmentShaderSource, func() UniformValues {
		return mergeUniforms(commonUniforms(), mapsUniforms(), UniformValues{
			"referencePosition": uval(mgl32.Vec3{}),
			"nearDistance":      uval(float32(1)),
			"farDistance":       uval(float32(1000)),
		})
	}},
	"shadow": {meshVertexShaderSource, shadowFragmentShaderSource, func() UniformValues {
		return mergeUniforms(lightUniforms(), fogUniforms(), UniformValues{
			"color":   uval(mgl32.Vec3{}),
			"opacity": uval(float32(1)),
		})
	}},
	"points": {pointsVertexShaderSource, pointsFragmentShaderSource, func() UniformValues {
		return mergeUniforms(pointsUniforms(), fogUniforms())
	}},
	"dashed": {dashedVertexShaderSource, dashedFragmentShaderSource, func() UniformValues {
		return mergeUniforms(commonUniforms(), fogUniforms(), UniformValues{
			"scale":     uval(float32(1)),
			"dashSize":  uval(float32(1)),
			"totalSize": uval(float32(2)),
		})
	}},
	"sprite": {spriteVertexShaderSource, meshBasicFragmentShaderSource, func() UniformValues {
		return mergeUniforms(spriteUniforms(), fogUniforms())
	}},
	"background": {backgroundVertexShaderSource, backgroundFragmentShaderSource, func() UniformValues {
		return UniformValues{
			"uvTransform":         uval(mgl32.Ident3()),
			"t2D":                 uval((*scene.Texture)(nil)),
			"backgroundIntensity": uval(float32(1)),
		}
	}},
	"backgroundCube": {backgroundCubeVertexShaderSource, backgroundCubeFragmentShaderSource, func() UniformValues {
		return UniformValues{
			"envMap":               uval((*scene.Texture)(nil)),
			"flipEnvMap":           uval(float32(-1)),
			"backgroundBlurriness": uval(float32(0)),
			"backgroundIntensity":  uval(float32(1)),
			"backgroundRotation":   uval(mgl32.Ident3()),
		}
	}},
	"equirect": {equirectVertexShaderSource, equirectFragmentShaderSource, func() UniformValues {
		return UniformValues{"tEquirect": uval((*scene.Texture)(nil))}
	}},
	"vsm": {vsmVertexShaderSource, vsmFragmentShaderSource, func() UniformValues {
		return UniformValues{
			"shadow_pass": uval((*scene.Texture)(nil)),
			"resolution":  uval(mgl32.Vec2{}),
			"radius":      uval(float32(4)),
			"samples":     uval(float32(8)),
		}
	}},
}

// shaderIDs maps built in material kinds to their library entry.
var shaderIDs = map[scene.MaterialKind]string{
	scene.MeshDepthMaterial:    "depth",
	scene.MeshDistanceMaterial: "distanceRGBA",
	scene.MeshNormalMaterial:   "normal",
	scene.MeshBasicMaterial:    "basic",
	scene.MeshLambertMaterial:  "lambert",
	scene.MeshPhongMaterial:    "phong",
	scene.MeshToonMaterial:     "toon",
	scene.MeshStandardMaterial: "physical",
	scene.MeshPhysicalMaterial: "physical",
	scene.MeshMatcapMaterial:   "matcap",
	scene.LineBasicMaterial:    "basic",
	scene.LineDashedMaterial:   "dashed",
	scene.PointsMaterial:       "points",
	scene.ShadowMaterial:       "shadow",
	scene.SpriteMaterial:       "sprite",
}

// shaderIDFor returns the library id of m, or "" for shader materials.
func shaderIDFor(m *scene.Material) string {
	if m.IsShader() {
		return m.ShaderID
	}
	return shaderIDs[m.Kind]
}

// stripVersion drops a leading #version line so the preamble can supply its own.
func stripVersion(src string) string {
	trimmed := strings.TrimLeft(src, " \t\r\n")
	if strings.HasPrefix(trimmed, "#version") {
		if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
			return trimmed[i+1:]
		}
		return ""
	}
	return src
}
