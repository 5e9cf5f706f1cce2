package renderer

import (
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// setUniform writes v into an existing entry of the bag. Missing names are ignored.
func setUniform(u UniformValues, name string, v any) {
	if e, ok := u[name]; ok {
		e.Value = v
	}
}

type refreshFunc func(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext)

type refreshContext struct {
	pixelRatio     float32
	height         float32
	transmissionRT *scene.RenderTarget
	environment    *scene.Texture
}

// Materials copies material state into uniform bags.
type Materials struct {
	cubeMaps *CubeMaps
	refresh  map[scene.MaterialKind][]refreshFunc
}

func NewMaterials(cubeMaps *CubeMaps) *Materials {
	common := []refreshFunc{refreshUniformsCommon}
	lit := append(common[:1:1], refreshUniformsLightMaps)
	return &Materials{
		cubeMaps: cubeMaps,
		refresh: map[scene.MaterialKind][]refreshFunc{
			scene.MeshBasicMaterial:    common,
			scene.MeshLambertMaterial:  lit,
			scene.MeshToonMaterial:     append(lit[:2:2], refreshUniformsToon),
			scene.MeshPhongMaterial:    append(lit[:2:2], refreshUniformsPhong),
			scene.MeshStandardMaterial: append(lit[:2:2], refreshUniformsStandard),
			scene.MeshPhysicalMaterial: append(lit[:2:2], refreshUniformsStandard, refreshUniformsPhysical),
			scene.MeshMatcapMaterial:   append(common[:1:1], refreshUniformsMatcap),
			scene.MeshDepthMaterial:    common,
			scene.MeshDistanceMaterial: append(common[:1:1], refreshUniformsDistance),
			scene.MeshNormalMaterial:   common,
			scene.LineBasicMaterial:    {refreshUniformsLine},
			scene.LineDashedMaterial:   {refreshUniformsLine, refreshUniformsDash},
			scene.PointsMaterial:       {refreshUniformsPoints},
			scene.SpriteMaterial:       {refreshUniformsSprites},
			scene.ShadowMaterial:       {refreshUniformsShadow},
		},
	}
}

// RefreshFogUniforms copies scene fog into the bag.
func (m *Materials) RefreshFogUniforms(u UniformValues, fog *scene.Fog) {
	setUniform(u, "fogColor", fog.Color)
	switch fog.Kind {
	case scene.ExponentialFog:
		setUniform(u, "fogDensity", fog.Density)
	default:
		setUniform(u, "fogNear", fog.Near)
		setUniform(u, "fogFar", fog.Far)
	}
}

// RefreshMaterialUniforms copies mat into u. Shader materials only get their uniforms refreshed
// through the bag itself.
func (m *Materials) RefreshMaterialUniforms(u UniformValues, mat *scene.Material, pixelRatio, height float32, transmissionRT *scene.RenderTarget, environment *scene.Texture) {
	ctx := &refreshContext{pixelRatio: pixelRatio, height: height, transmissionRT: transmissionRT, environment: environment}
	for _, fn := range m.refresh[mat.Kind] {
		fn(m, u, mat, ctx)
	}
}

func refreshTransformUniform(u UniformValues, name string, t *scene.Texture) {
	if t == nil {
		return
	}
	if t.MatrixAutoUpdate {
		t.UpdateMatrix()
	}
	setUniform(u, name, t.Matrix)
}

func refreshUniformsCommon(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	setUniform(u, "opacity", mat.Opacity)
	setUniform(u, "diffuse", mat.Color)
	if mat.Emissive != (mgl32.Vec3{}) || mat.EmissiveIntensity != 1 {
		setUniform(u, "emissive", mat.Emissive.Mul(mat.EmissiveIntensity))
	}
	if mat.Map != nil {
		setUniform(u, "map", mat.Map)
		refreshTransformUniform(u, "mapTransform", mat.Map)
	}
	if mat.AlphaMap != nil {
		setUniform(u, "alphaMap", mat.AlphaMap)
	}
	if mat.BumpMap != nil {
		setUniform(u, "bumpMap", mat.BumpMap)
		scale := mat.BumpScale
		if mat.Side == scene.BackSide {
			scale = -scale
		}
		setUniform(u, "bumpScale", scale)
	}
	if mat.NormalMap != nil {
		setUniform(u, "normalMap", mat.NormalMap)
		scale := mat.NormalScale
		if mat.Side == scene.BackSide {
			scale = scale.Mul(-1)
		}
		setUniform(u, "normalScale", scale)
	}
	if mat.DisplacementMap != nil {
		setUniform(u, "displacementMap", mat.DisplacementMap)
		setUniform(u, "displacementScale", mat.DisplacementScale)
		setUniform(u, "displacementBias", mat.DisplacementBias)
	}
	if mat.EmissiveMap != nil {
		setUniform(u, "emissiveMap", mat.EmissiveMap)
	}
	if mat.SpecularMap != nil {
		setUniform(u, "specularMap", mat.SpecularMap)
	}
	if mat.AlphaTest > 0 {
		setUniform(u, "alphaTest", mat.AlphaTest)
	}

	envMap := mat.EnvMap
	if envMap == nil && ctx.environment != nil && (mat.Kind == scene.MeshStandardMaterial || mat.Kind == scene.MeshPhysicalMaterial) {
		envMap = ctx.environment
	}
	if envMap != nil {
		envMap = m.cubeMaps.Get(envMap)
	}
	if envMap != nil {
		setUniform(u, "envMap", envMap)
		setUniform(u, "envMapRotation", mat.EnvMapRotation)
		flip := float32(1)
		if envMap.Kind == scene.TextureCube && !envMap.IsRenderTargetTexture {
			flip = -1
		}
		setUniform(u, "flipEnvMap", flip)
		setUniform(u, "reflectivity", mat.Reflectivity)
		setUniform(u, "ior", mat.IOR)
		setUniform(u, "refractionRatio", mat.RefractionRatio)
	}
	if len(mat.ClippingPlanes) > 0 {
		setUniform(u, "clippingPlanes", mat.ClippingPlanes)
	}
}

func refreshUniformsLightMaps(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	if mat.LightMap != nil {
		setUniform(u, "lightMap", mat.LightMap)
		setUniform(u, "lightMapIntensity", mat.LightMapIntensity)
	}
	if mat.AOMap != nil {
		setUniform(u, "aoMap", mat.AOMap)
		setUniform(u, "aoMapIntensity", mat.AOMapIntensity)
	}
}

func refreshUniformsPhong(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	setUniform(u, "specular", mat.Specular)
	shininess := mat.Shininess
	if shininess < 1e-4 {
		shininess = 1e-4
	}
	setUniform(u, "shininess", shininess)
}

func refreshUniformsToon(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	if mat.GradientMap != nil {
		setUniform(u, "gradientMap", mat.GradientMap)
	}
}

func refreshUniformsStandard(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	setUniform(u, "metalness", mat.Metalness)
	setUniform(u, "roughness", mat.Roughness)
	if mat.MetalnessMap != nil {
		setUniform(u, "metalnessMap", mat.MetalnessMap)
	}
	if mat.RoughnessMap != nil {
		setUniform(u, "roughnessMap", mat.RoughnessMap)
	}
	if mat.EnvMap != nil || ctx.environment != nil {
		setUniform(u, "envMapIntensity", mat.EnvMapIntensity)
	}
}

func refreshUniformsPhysical(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	setUniform(u, "ior", mat.IOR)
	if mat.Sheen > 0 {
		setUniform(u, "sheen", mat.Sheen)
		setUniform(u, "sheenColor", mat.SheenColor.Mul(mat.Sheen))
	}
	if mat.Clearcoat > 0 {
		setUniform(u, "clearcoat", mat.Clearcoat)
		setUniform(u, "clearcoatRoughness", mat.ClearcoatRoughness)
	}
	if mat.Iridescence > 0 {
		setUniform(u, "iridescence", mat.Iridescence)
	}
	if mat.Dispersion > 0 {
		setUniform(u, "dispersion", mat.Dispersion)
	}
	if mat.Transmission > 0 {
		setUniform(u, "transmission", mat.Transmission)
		if ctx.transmissionRT != nil {
			setUniform(u, "transmissionSamplerMap", ctx.transmissionRT.Texture())
			setUniform(u, "transmissionSamplerSize", mgl32.Vec2{float32(ctx.transmissionRT.Width), float32(ctx.transmissionRT.Height)})
		}
		if mat.TransmissionMap != nil {
			setUniform(u, "transmissionMap", mat.TransmissionMap)
		}
		setUniform(u, "thickness", mat.Thickness)
		setUniform(u, "attenuationDistance", mat.AttenuationDistance)
		setUniform(u, "attenuationColor", mat.AttenuationColor)
	}
	setUniform(u, "specularIntensity", mat.SpecularIntensity)
	setUniform(u, "specularColor", mat.SpecularColor)
}

func refreshUniformsMatcap(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	if mat.Matcap != nil {
		setUniform(u, "matcap", mat.Matcap)
	}
}

func refreshUniformsDistance(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	setUniform(u, "referencePosition", mat.ReferencePosition)
	setUniform(u, "nearDistance", mat.NearDistance)
	setUniform(u, "farDistance", mat.FarDistance)
}

func refreshUniformsLine(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	setUniform(u, "diffuse", mat.Color)
	setUniform(u, "opacity", mat.Opacity)
	if mat.Map != nil {
		setUniform(u, "map", mat.Map)
		refreshTransformUniform(u, "mapTransform", mat.Map)
	}
}

func refreshUniformsDash(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	setUniform(u, "dashSize", mat.DashSize)
	setUniform(u, "totalSize", mat.DashSize+mat.GapSize)
	setUniform(u, "scale", mat.DashScale)
}

func refreshUniformsPoints(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	setUniform(u, "diffuse", mat.Color)
	setUniform(u, "opacity", mat.Opacity)
	setUniform(u, "size", mat.Size*ctx.pixelRatio)
	setUniform(u, "scale", ctx.height*0.5)
	if mat.Map != nil {
		setUniform(u, "map", mat.Map)
		refreshTransformUniform(u, "mapTransform", mat.Map)
	}
	if mat.AlphaMap != nil {
		setUniform(u, "alphaMap", mat.AlphaMap)
	}
	if mat.AlphaTest > 0 {
		setUniform(u, "alphaTest", mat.AlphaTest)
	}
}

func refreshUniformsSprites(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	setUniform(u, "diffuse", mat.Color)
	setUniform(u, "opacity", mat.Opacity)
	setUniform(u, "rotation", mat.Rotation)
	if mat.Map != nil {
		setUniform(u, "map", mat.Map)
		refreshTransformUniform(u, "mapTransform", mat.Map)
	}
	if mat.AlphaMap != nil {
		setUniform(u, "alphaMap", mat.AlphaMap)
	}
	if mat.AlphaTest > 0 {
		setUniform(u, "alphaTest", mat.AlphaTest)
	}
}

func refreshUniformsShadow(m *Materials, u UniformValues, mat *scene.Material, ctx *refreshContext) {
	setUniform(u, "color", mat.Color)
	setUniform(u, "opacity", mat.Opacity)
}
