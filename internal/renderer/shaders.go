package renderer

// GLSL sources for the built in materials. Chunks are spliced in with #include <name>
// before compilation; feature flags arrive as #define lines from the program preamble.

var shaderChunks = map[string]string{
	"common":                commonChunk,
	"vertex_pars":           vertexParsChunk,
	"vertex_transform":      vertexTransformChunk,
	"skinning_pars":         skinningParsChunk,
	"morphtarget_pars":      morphtargetParsChunk,
	"shadowmap_pars_vertex": shadowmapParsVertexChunk,
	"shadowmap_vertex":      shadowmapVertexChunk,
	"map_pars":              mapParsChunk,
	"fog_pars":              fogParsChunk,
	"fog_fragment":          fogFragmentChunk,
	"lights_pars":           lightsParsChunk,
	"shadowmap_pars":        shadowmapParsChunk,
	"packing":               packingChunk,
	"output_fragment":       outputFragmentChunk,
	"clipping_pars":         clippingParsChunk,
	"clipping_fragment":     clippingFragmentChunk,
}

var commonChunk = `
#define PI 3.141592653589793
#define RECIPROCAL_PI 0.3183098861837907
#define saturate(a) clamp(a, 0.0, 1.0)
float pow2(const in float x) { return x * x; }
`

var vertexParsChunk = `
uniform mat4 modelMatrix;
uniform mat4 modelViewMatrix;
uniform mat4 projectionMatrix;
uniform mat4 viewMatrix;
uniform mat3 normalMatrix;
uniform vec3 cameraPosition;
uniform bool isOrthographic;
uniform mat3 mapTransform;

in vec3 position;
in vec3 normal;
in vec2 uv;
in vec4 tangent;
in vec4 color;
in mat4 instanceMatrix;
in vec3 instanceColor;

out vec2 vUv;
out vec3 vNormal;
out vec3 vViewPosition;
out vec3 vWorldPosition;
out vec4 vColor;
`

var vertexTransformChunk = `
	vec3 transformed = position;
	vec3 objectNormal = normal;
#ifdef USE_MORPHTARGETS
	transformed = applyMorphPosition(transformed);
#endif
#ifdef USE_MORPHNORMALS
	objectNormal = applyMorphNormal(objectNormal);
#endif
#ifdef USE_SKINNING
	mat4 skinMatrix = getSkinMatrix();
	transformed = (bindMatrixInverse * skinMatrix * bindMatrix * vec4(transformed, 1.0)).xyz;
	objectNormal = (bindMatrixInverse * skinMatrix * bindMatrix * vec4(objectNormal, 0.0)).xyz;
#endif
	vec4 mvPosition = vec4(transformed, 1.0);
	vec3 transformedNormal = objectNormal;
#ifdef USE_INSTANCING
	mvPosition = instanceMatrix * mvPosition;
	transformedNormal = mat3(instanceMatrix) * transformedNormal;
#endif
	vec4 worldPosition = modelMatrix * mvPosition;
	mvPosition = modelViewMatrix * mvPosition;
	gl_Position = projectionMatrix * mvPosition;
	vNormal = normalize(normalMatrix * transformedNormal);
	vViewPosition = -mvPosition.xyz;
	vWorldPosition = worldPosition.xyz;
	vUv = (mapTransform * vec3(uv, 1.0)).xy;
	vColor = vec4(1.0);
#if defined(USE_COLOR_ALPHA)
	vColor = color;
#elif defined(USE_COLOR)
	vColor.rgb = color.rgb;
#endif
#ifdef USE_INSTANCING_COLOR
	vColor.rgb *= instanceColor;
#endif
`

var skinningParsChunk = `
#ifdef USE_SKINNING
in vec4 skinIndex;
in vec4 skinWeight;
uniform mat4 bindMatrix;
uniform mat4 bindMatrixInverse;
uniform sampler2D boneTexture;
mat4 getBoneMatrix(const in float i) {
	int size = textureSize(boneTexture, 0).x;
	int j = int(i) * 4;
	int x = j % size;
	int y = j / size;
	vec4 v1 = texelFetch(boneTexture, ivec2(x, y), 0);
	vec4 v2 = texelFetch(boneTexture, ivec2(x + 1, y), 0);
	vec4 v3 = texelFetch(boneTexture, ivec2(x + 2, y), 0);
	vec4 v4 = texelFetch(boneTexture, ivec2(x + 3, y), 0);
	return mat4(v1, v2, v3, v4);
}
mat4 getSkinMatrix() {
	return skinWeight.x * getBoneMatrix(skinIndex.x) + skinWeight.y * getBoneMatrix(skinIndex.y) +
		skinWeight.z * getBoneMatrix(skinIndex.z) + skinWeight.w * getBoneMatrix(skinIndex.w);
}
#endif
`

var morphtargetParsChunk = `
#ifdef USE_MORPHTARGETS
uniform float morphTargetBaseInfluence;
uniform float morphTargetInfluences[MORPHTARGETS_COUNT];
uniform sampler2DArray morphTargetsTexture;
uniform ivec2 morphTargetsTextureSize;
vec4 getMorph(const in int vertexIndex, const in int morphTargetIndex, const in int offset) {
	int texelIndex = vertexIndex * MORPHTARGETS_TEXTURE_STRIDE + offset;
	int y = texelIndex / morphTargetsTextureSize.x;
	int x = texelIndex - y * morphTargetsTextureSize.x;
	return texelFetch(morphTargetsTexture, ivec3(x, y, morphTargetIndex), 0);
}
vec3 applyMorphPosition(vec3 p) {
	p *= morphTargetBaseInfluence;
	for (int i = 0; i < MORPHTARGETS_COUNT; i++) {
		if (morphTargetInfluences[i] != 0.0) p += getMorph(gl_VertexID, i, 0).xyz * morphTargetInfluences[i];
	}
	return p;
}
vec3 applyMorphNormal(vec3 n) {
	n *= morphTargetBaseInfluence;
	for (int i = 0; i < MORPHTARGETS_COUNT; i++) {
		if (morphTargetInfluences[i] != 0.0) n += getMorph(gl_VertexID, i, 1).xyz * morphTargetInfluences[i];
	}
	return n;
}
#endif
`

var shadowmapParsVertexChunk = `
#ifdef USE_SHADOWMAP
#if NUM_DIR_LIGHT_SHADOWS > 0
uniform mat4 directionalShadowMatrix[NUM_DIR_LIGHT_SHADOWS];
out vec4 vDirectionalShadowCoord[NUM_DIR_LIGHT_SHADOWS];
#endif
#if NUM_POINT_LIGHT_SHADOWS > 0
uniform mat4 pointShadowMatrix[NUM_POINT_LIGHT_SHADOWS];
out vec4 vPointShadowCoord[NUM_POINT_LIGHT_SHADOWS];
#endif
#endif
#if NUM_SPOT_LIGHT_COORDS > 0
uniform mat4 spotLightMatrix[NUM_SPOT_LIGHT_COORDS];
out vec4 vSpotLightCoord[NUM_SPOT_LIGHT_COORDS];
#endif
`

var shadowmapVertexChunk = `
#ifdef USE_SHADOWMAP
#if NUM_DIR_LIGHT_SHADOWS > 0
	for (int i = 0; i < NUM_DIR_LIGHT_SHADOWS; i++) {
		vDirectionalShadowCoord[i] = directionalShadowMatrix[i] * worldPosition;
	}
#endif
#if NUM_POINT_LIGHT_SHADOWS > 0
	for (int i = 0; i < NUM_POINT_LIGHT_SHADOWS; i++) {
		vPointShadowCoord[i] = pointShadowMatrix[i] * worldPosition;
	}
#endif
#endif
#if NUM_SPOT_LIGHT_COORDS > 0
	for (int i = 0; i < NUM_SPOT_LIGHT_COORDS; i++) {
		vSpotLightCoord[i] = spotLightMatrix[i] * worldPosition;
	}
#endif
`

var mapParsChunk = `
uniform vec3 diffuse;
uniform float opacity;
uniform float alphaTest;
uniform sampler2D map;
uniform sampler2D alphaMap;
in vec2 vUv;
in vec3 vNormal;
in vec3 vViewPosition;
in vec3 vWorldPosition;
in vec4 vColor;
out vec4 fragColor;
vec4 baseColor() {
	vec4 c = vec4(diffuse, opacity);
#ifdef USE_MAP
	c *= texture(map, vUv);
#endif
#ifdef USE_ALPHAMAP
	c.a *= texture(alphaMap, vUv).g;
#endif
#if defined(USE_COLOR) || defined(USE_INSTANCING_COLOR)
	c *= vColor;
#endif
#ifdef USE_ALPHATEST
	if (c.a < alphaTest) discard;
#endif
	return c;
}
`

var fogParsChunk = `
#ifdef USE_FOG
uniform vec3 fogColor;
uniform float fogNear;
uniform float fogFar;
uniform float fogDensity;
#endif
`

var fogFragmentChunk = `
#ifdef USE_FOG
	float fogDepth = length(vViewPosition);
#ifdef FOG_EXP2
	float fogFactor = 1.0 - exp(-fogDensity * fogDensity * fogDepth * fogDepth);
#else
	float fogFactor = smoothstep(fogNear, fogFar, fogDepth);
#endif
	fragColor.rgb = mix(fragColor.rgb, fogColor, fogFactor);
#endif
`

var lightsParsChunk = `
uniform vec3 ambientLightColor;
uniform vec3 lightProbe[9];
#if NUM_DIR_LIGHTS > 0
struct DirectionalLight {
	vec3 direction;
	vec3 color;
};
uniform DirectionalLight directionalLights[NUM_DIR_LIGHTS];
#endif
#if NUM_POINT_LIGHTS > 0
struct PointLight {
	vec3 position;
	vec3 color;
	float distance;
	float decay;
};
uniform PointLight pointLights[NUM_POINT_LIGHTS];
#endif
#if NUM_SPOT_LIGHTS > 0
struct SpotLight {
	vec3 position;
	vec3 direction;
	vec3 color;
	float distance;
	float decay;
	float coneCos;
	float penumbraCos;
};
uniform SpotLight spotLights[NUM_SPOT_LIGHTS];
#endif
#if NUM_HEMI_LIGHTS > 0
struct HemisphereLight {
	vec3 direction;
	vec3 skyColor;
	vec3 groundColor;
};
uniform HemisphereLight hemisphereLights[NUM_HEMI_LIGHTS];
#endif
#if NUM_RECT_AREA_LIGHTS > 0
struct RectAreaLight {
	vec3 color;
	vec3 position;
	vec3 halfWidth;
	vec3 halfHeight;
};
uniform RectAreaLight rectAreaLights[NUM_RECT_AREA_LIGHTS];
#endif
float distanceAttenuation(const in float d, const in float cutoff, const in float decay) {
	float a = 1.0 / max(pow(d, decay), 0.01);
	if (cutoff > 0.0) a *= pow2(saturate(1.0 - pow2(pow2(d / cutoff))));
	return a;
}
vec3 shIrradiance(const in vec3 n) {
	vec3 r = lightProbe[0] * 0.886227;
	r += lightProbe[1] * 2.0 * 0.511664 * n.y;
	r += lightProbe[2] * 2.0 * 0.511664 * n.z;
	r += lightProbe[3] * 2.0 * 0.511664 * n.x;
	return r;
}
`

var shadowmapParsChunk = `
#if NUM_SPOT_LIGHT_COORDS > 0
in vec4 vSpotLightCoord[NUM_SPOT_LIGHT_COORDS];
#endif
#if NUM_SPOT_LIGHT_MAPS > 0
uniform sampler2D spotLightMap[NUM_SPOT_LIGHT_MAPS];
#endif
#ifdef USE_SHADOWMAP
#if NUM_DIR_LIGHT_SHADOWS > 0
struct DirectionalLightShadow {
	float shadowIntensity;
	float shadowBias;
	float shadowNormalBias;
	float shadowRadius;
	vec2 shadowMapSize;
};
uniform DirectionalLightShadow directionalLightShadows[NUM_DIR_LIGHT_SHADOWS];
uniform sampler2D directionalShadowMap[NUM_DIR_LIGHT_SHADOWS];
in vec4 vDirectionalShadowCoord[NUM_DIR_LIGHT_SHADOWS];
#endif
#if NUM_SPOT_LIGHT_SHADOWS > 0
struct SpotLightShadow {
	float shadowIntensity;
	float shadowBias;
	float shadowNormalBias;
	float shadowRadius;
	vec2 shadowMapSize;
};
uniform SpotLightShadow spotLightShadows[NUM_SPOT_LIGHT_SHADOWS];
uniform sampler2D spotShadowMap[NUM_SPOT_LIGHT_SHADOWS];
#endif
#if NUM_POINT_LIGHT_SHADOWS > 0
struct PointLightShadow {
	float shadowIntensity;
	float shadowBias;
	float shadowNormalBias;
	float shadowRadius;
	vec2 shadowMapSize;
	float shadowCameraNear;
	float shadowCameraFar;
};
uniform PointLightShadow pointLightShadows[NUM_POINT_LIGHT_SHADOWS];
uniform sampler2D pointShadowMap[NUM_POINT_LIGHT_SHADOWS];
in vec4 vPointShadowCoord[NUM_POINT_LIGHT_SHADOWS];
#endif
float texture2DCompare(sampler2D depths, vec2 uv, float compare) {
#ifdef SHADOWMAP_TYPE_VSM
	vec2 m = texture(depths, uv).xy;
	float d = compare - m.x;
	if (d <= 0.0) return 1.0;
	float variance = max(0.00002, m.y - m.x * m.x);
	return clamp(variance / (variance + d * d), 0.0, 1.0);
#else
	return step(compare, unpackRGBAToDepth(texture(depths, uv)));
#endif
}
float getShadow(sampler2D shadowMap, vec2 size, float intensity, float bias, float radius, vec4 coord) {
	coord.xyz /= coord.w;
	coord.z += bias;
	if (coord.x < 0.0 || coord.x > 1.0 || coord.y < 0.0 || coord.y > 1.0 || coord.z > 1.0) return 1.0;
	float shadow = 0.0;
#if defined(SHADOWMAP_TYPE_PCF) || defined(SHADOWMAP_TYPE_PCF_SOFT)
	vec2 texel = radius / size;
	for (int x = -1; x <= 1; x++) {
		for (int y = -1; y <= 1; y++) {
			shadow += texture2DCompare(shadowMap, coord.xy + vec2(x, y) * texel, coord.z);
		}
	}
	shadow /= 9.0;
#else
	shadow = texture2DCompare(shadowMap, coord.xy, coord.z);
#endif
	return mix(1.0, shadow, intensity);
}
vec2 cubeToUV(vec3 v, float texelSizeY) {
	vec3 absV = abs(v);
	float scaleToCube = 1.0 / max(absV.x, max(absV.y, absV.z));
	absV *= scaleToCube;
	v *= scaleToCube * (1.0 - 2.0 * texelSizeY);
	vec2 planar = v.xy;
	float almostATexel = 1.5 * texelSizeY;
	float almostOne = 1.0 - almostATexel;
	if (absV.z >= almostOne) {
		if (v.z > 0.0) planar.x = 4.0 - v.x;
	} else if (absV.x >= almostOne) {
		float signX = sign(v.x);
		planar.x = v.z * signX + 2.0 * signX;
	} else if (absV.y >= almostOne) {
		float signY = sign(v.y);
		planar.x = v.x + 2.0 * signY + 2.0;
		planar.y = v.z * signY - 2.0;
	}
	return vec2(0.125, 0.25) * planar + vec2(0.375, 0.75);
}
float getPointShadow(sampler2D shadowMap, vec2 size, float intensity, float bias, float near, float far, vec4 coord) {
	vec3 lightToPosition = coord.xyz;
	float dp = (length(lightToPosition) - near) / (far - near);
	dp += bias;
	if (dp < 0.0 || dp > 1.0) return 1.0;
	vec2 texelSize = vec2(1.0) / (size * vec2(4.0, 2.0));
	vec3 bd3D = normalize(lightToPosition);
	return mix(1.0, texture2DCompare(shadowMap, cubeToUV(bd3D, texelSize.y), dp), intensity);
}
#endif
`

var packingChunk = `
const float PackUpscale = 256.0 / 255.0;
const float UnpackDownscale = 255.0 / 256.0;
const vec3 PackFactors = vec3(256.0 * 256.0 * 256.0, 256.0 * 256.0, 256.0);
const vec4 UnpackFactors = UnpackDownscale / vec4(PackFactors, 1.0);
const float ShiftRight8 = 1.0 / 256.0;
vec4 packDepthToRGBA(const in float v) {
	vec4 r = vec4(fract(v * PackFactors), v);
	r.yzw -= r.xyz * ShiftRight8;
	return r * PackUpscale;
}
float unpackRGBAToDepth(const in vec4 v) {
	return dot(v, UnpackFactors);
}
`

var outputFragmentChunk = `
#ifdef TONE_MAPPING
uniform float toneMappingExposure;
vec3 toneMap(vec3 c) {
	c *= toneMappingExposure;
#if TONE_MAPPING == 2
	return saturate(c / (vec3(1.0) + c));
#elif TONE_MAPPING == 4
	c = (c * (2.51 * c + 0.03)) / (c * (2.43 * c + 0.59) + 0.14);
	return saturate(c);
#else
	return saturate(c);
#endif
}
#endif
vec4 linearToOutput(vec4 c) {
#ifdef OUTPUT_SRGB
	return vec4(mix(pow(c.rgb, vec3(0.41666)) * 1.055 - vec3(0.055), c.rgb * 12.92, vec3(lessThanEqual(c.rgb, vec3(0.0031308)))), c.a);
#else
	return c;
#endif
}
vec4 finalColor(vec4 c) {
#ifdef TONE_MAPPING
	c.rgb = toneMap(c.rgb);
#endif
#ifdef PREMULTIPLIED_ALPHA
	c.rgb *= c.a;
#endif
	return linearToOutput(c);
}
`

var clippingParsChunk = `
#if NUM_CLIPPING_PLANES > 0
uniform vec4 clippingPlanes[NUM_CLIPPING_PLANES];
#endif
`

var clippingFragmentChunk = `
#if NUM_CLIPPING_PLANES > 0
	for (int i = 0; i < NUM_CLIPPING_PLANES; i++) {
		vec4 plane = clippingPlanes[i];
		if (dot(vViewPosition, plane.xyz) > plane.w) discard;
	}
#endif
`

var meshVertexShaderSource = `
#include <common>
#include <vertex_pars>
#include <skinning_pars>
#include <morphtarget_pars>
#include <shadowmap_pars_vertex>
void main() {
#include <vertex_transform>
#include <shadowmap_vertex>
}
`

var meshBasicFragmentShaderSource = `
#include <common>
#include <map_pars>
#include <fog_pars>
#include <clipping_pars>
#include <output_fragment>
uniform sampler2D envMap;
uniform float reflectivity;
void main() {
#include <clipping_fragment>
	fragColor = baseColor();
#include <fog_fragment>
	fragColor = finalColor(fragColor);
}
`

// litFragmentShaderSource serves lambert, phong and toon; the variant comes from a define.
var litFragmentShaderSource = `
#include <common>
#include <packing>
#include <map_pars>
#include <fog_pars>
#include <lights_pars>
#include <shadowmap_pars>
#include <clipping_pars>
#include <output_fragment>
uniform vec3 emissive;
uniform vec3 specular;
uniform float shininess;
uniform sampler2D gradientMap;
vec3 diffuseTerm(vec3 n, vec3 l) {
	float d = max(dot(n, l), 0.0);
#ifdef TOON
	d = texture(gradientMap, vec2(d * 0.5 + 0.5, 0.0)).r;
#endif
	return vec3(d);
}
vec3 specularTerm(vec3 n, vec3 l, vec3 v) {
#ifdef PHONG
	vec3 h = normalize(l + v);
	return specular * pow(max(dot(n, h), 0.0), shininess) * (shininess + 2.0) / 8.0;
#else
	return vec3(0.0);
#endif
}
void main() {
#include <clipping_fragment>
	vec4 base = baseColor();
	vec3 n = normalize(vNormal);
#ifdef DOUBLE_SIDED
	n *= gl_FrontFacing ? 1.0 : -1.0;
#endif
	vec3 v = normalize(vViewPosition);
	vec3 direct = vec3(0.0);
	vec3 spec = vec3(0.0);
#if NUM_DIR_LIGHTS > 0
	for (int i = 0; i < NUM_DIR_LIGHTS; i++) {
		vec3 l = directionalLights[i].direction;
		float s = 1.0;
#if defined(USE_SHADOWMAP) && NUM_DIR_LIGHT_SHADOWS > 0
		if (i < NUM_DIR_LIGHT_SHADOWS) {
			DirectionalLightShadow ds = directionalLightShadows[i];
			s = getShadow(directionalShadowMap[i], ds.shadowMapSize, ds.shadowIntensity, ds.shadowBias, ds.shadowRadius, vDirectionalShadowCoord[i]);
		}
#endif
		direct += directionalLights[i].color * diffuseTerm(n, l) * s;
		spec += directionalLights[i].color * specularTerm(n, l, v) * s;
	}
#endif
#if NUM_POINT_LIGHTS > 0
	for (int i = 0; i < NUM_POINT_LIGHTS; i++) {
		vec3 lv = pointLights[i].position + vViewPosition;
		vec3 l = normalize(lv);
		float a = distanceAttenuation(length(lv), pointLights[i].distance, pointLights[i].decay);
		float s = 1.0;
#if defined(USE_SHADOWMAP) && NUM_POINT_LIGHT_SHADOWS > 0
		if (i < NUM_POINT_LIGHT_SHADOWS) {
			PointLightShadow ps = pointLightShadows[i];
			s = getPointShadow(pointShadowMap[i], ps.shadowMapSize, ps.shadowIntensity, ps.shadowBias, ps.shadowCameraNear, ps.shadowCameraFar, vPointShadowCoord[i]);
		}
#endif
		direct += pointLights[i].color * a * diffuseTerm(n, l) * s;
		spec += pointLights[i].color * a * specularTerm(n, l, v) * s;
	}
#endif
#if NUM_SPOT_LIGHTS > 0
	for (int i = 0; i < NUM_SPOT_LIGHTS; i++) {
		vec3 lv = spotLights[i].position + vViewPosition;
		vec3 l = normalize(lv);
		float angleCos = dot(l, spotLights[i].direction);
		float cone = smoothstep(spotLights[i].coneCos, spotLights[i].penumbraCos, angleCos);
		float a = cone * distanceAttenuation(length(lv), spotLights[i].distance, spotLights[i].decay);
		float s = 1.0;
#if defined(USE_SHADOWMAP) && NUM_SPOT_LIGHT_SHADOWS > 0
		if (i < NUM_SPOT_LIGHT_SHADOWS) {
			SpotLightShadow ss = spotLightShadows[i];
			s = getShadow(spotShadowMap[i], ss.shadowMapSize, ss.shadowIntensity, ss.shadowBias, ss.shadowRadius, vSpotLightCoord[i]);
		}
#endif
		direct += spotLights[i].color * a * diffuseTerm(n, l) * s;
		spec += spotLights[i].color * a * specularTerm(n, l, v) * s;
	}
#endif
	vec3 indirect = ambientLightColor + shIrradiance(n);
#if NUM_HEMI_LIGHTS > 0
	for (int i = 0; i < NUM_HEMI_LIGHTS; i++) {
		float w = 0.5 * dot(n, hemisphereLights[i].direction) + 0.5;
		indirect += mix(hemisphereLights[i].groundColor, hemisphereLights[i].skyColor, w);
	}
#endif
	vec3 outgoing = base.rgb * (direct + indirect) * RECIPROCAL_PI * PI + spec + emissive;
	fragColor = vec4(outgoing, base.a);
#include <fog_fragment>
	fragColor = finalColor(fragColor);
}
`

var meshPhysicalFragmentShaderSource = `
#include <common>
#include <packing>
#include <map_pars>
#include <fog_pars>
#include <lights_pars>
#include <shadowmap_pars>
#include <clipping_pars>
#include <output_fragment>
uniform vec3 emissive;
uniform float roughness;
uniform float metalness;
uniform sampler2D roughnessMap;
uniform sampler2D metalnessMap;
uniform sampler2D normalMap;
uniform sampler2D emissiveMap;
uniform samplerCube envMap;
uniform float envMapIntensity;
uniform float clearcoat;
uniform float ior;
float D_GGX(float a, float dotNH) {
	float a2 = pow2(a);
	float denom = pow2(dotNH) * (a2 - 1.0) + 1.0;
	return RECIPROCAL_PI * a2 / pow2(denom);
}
vec3 F_Schlick(vec3 f0, float dotVH) {
	return f0 + (vec3(1.0) - f0) * pow(1.0 - dotVH, 5.0);
}
vec3 brdf(vec3 n, vec3 l, vec3 v, vec3 albedo, float rough, float metal) {
	vec3 h = normalize(l + v);
	float dotNL = saturate(dot(n, l));
	float dotNV = saturate(dot(n, v));
	float dotNH = saturate(dot(n, h));
	float dotVH = saturate(dot(v, h));
	vec3 f0 = mix(vec3(0.04), albedo, metal);
	vec3 F = F_Schlick(f0, dotVH);
	float a = pow2(rough);
	float k = a * 0.5;
	float G = 0.25 / ((dotNL * (1.0 - k) + k) * (dotNV * (1.0 - k) + k));
	vec3 diffuseColor = albedo * (1.0 - metal);
	return (diffuseColor * RECIPROCAL_PI * (vec3(1.0) - F) + F * G * D_GGX(a, dotNH)) * dotNL * PI;
}
void main() {
#include <clipping_fragment>
	vec4 base = baseColor();
	float rough = roughness;
	float metal = metalness;
#ifdef USE_ROUGHNESSMAP
	rough *= texture(roughnessMap, vUv).g;
#endif
#ifdef USE_METALNESSMAP
	metal *= texture(metalnessMap, vUv).b;
#endif
	rough = clamp(rough, 0.0525, 1.0);
	vec3 n = normalize(vNormal);
#ifdef DOUBLE_SIDED
	n *= gl_FrontFacing ? 1.0 : -1.0;
#endif
	vec3 v = normalize(vViewPosition);
	vec3 radiance = vec3(0.0);
#if NUM_DIR_LIGHTS > 0
	for (int i = 0; i < NUM_DIR_LIGHTS; i++) {
		float s = 1.0;
#if defined(USE_SHADOWMAP) && NUM_DIR_LIGHT_SHADOWS > 0
		if (i < NUM_DIR_LIGHT_SHADOWS) {
			DirectionalLightShadow ds = directionalLightShadows[i];
			s = getShadow(directionalShadowMap[i], ds.shadowMapSize, ds.shadowIntensity, ds.shadowBias, ds.shadowRadius, vDirectionalShadowCoord[i]);
		}
#endif
		radiance += directionalLights[i].color * brdf(n, directionalLights[i].direction, v, base.rgb, rough, metal) * s;
	}
#endif
#if NUM_POINT_LIGHTS > 0
	for (int i = 0; i < NUM_POINT_LIGHTS; i++) {
		vec3 lv = pointLights[i].position + vViewPosition;
		float a = distanceAttenuation(length(lv), pointLights[i].distance, pointLights[i].decay);
		float s = 1.0;
#if defined(USE_SHADOWMAP) && NUM_POINT_LIGHT_SHADOWS > 0
		if (i < NUM_POINT_LIGHT_SHADOWS) {
			PointLightShadow ps = pointLightShadows[i];
			s = getPointShadow(pointShadowMap[i], ps.shadowMapSize, ps.shadowIntensity, ps.shadowBias, ps.shadowCameraNear, ps.shadowCameraFar, vPointShadowCoord[i]);
		}
#endif
		radiance += pointLights[i].color * a * brdf(n, normalize(lv), v, base.rgb, rough, metal) * s;
	}
#endif
#if NUM_SPOT_LIGHTS > 0
	for (int i = 0; i < NUM_SPOT_LIGHTS; i++) {
		vec3 lv = spotLights[i].position + vViewPosition;
		vec3 l = normalize(lv);
		float cone = smoothstep(spotLights[i].coneCos, spotLights[i].penumbraCos, dot(l, spotLights[i].direction));
		float a = cone * distanceAttenuation(length(lv), spotLights[i].distance, spotLights[i].decay);
		float s = 1.0;
#if defined(USE_SHADOWMAP) && NUM_SPOT_LIGHT_SHADOWS > 0
		if (i < NUM_SPOT_LIGHT_SHADOWS) {
			SpotLightShadow ss = spotLightShadows[i];
			s = getShadow(spotShadowMap[i], ss.shadowMapSize, ss.shadowIntensity, ss.shadowBias, ss.shadowRadius, vSpotLightCoord[i]);
		}
#endif
		radiance += spotLights[i].color * a * brdf(n, l, v, base.rgb, rough, metal) * s;
	}
#endif
	vec3 irradiance = ambientLightColor + shIrradiance(n);
#if NUM_HEMI_LIGHTS > 0
	for (int i = 0; i < NUM_HEMI_LIGHTS; i++) {
		float w = 0.5 * dot(n, hemisphereLights[i].direction) + 0.5;
		irradiance += mix(hemisphereLights[i].groundColor, hemisphereLights[i].skyColor, w);
	}
#endif
	radiance += irradiance * base.rgb * (1.0 - metal);
#ifdef USE_ENVMAP
	vec3 r = reflect(-v, n);
	radiance += textureLod(envMap, r, rough * 8.0).rgb * envMapIntensity * mix(vec3(0.04), base.rgb, metal);
#endif
	vec3 em = emissive;
#ifdef USE_EMISSIVEMAP
	em *= texture(emissiveMap, vUv).rgb;
#endif
	fragColor = vec4(radiance + em, base.a);
#include <fog_fragment>
	fragColor = finalColor(fragColor);
}
`

var meshNormalFragmentShaderSource = `
#include <common>
#include <clipping_pars>
#include <output_fragment>
uniform float opacity;
in vec3 vNormal;
in vec3 vViewPosition;
out vec4 fragColor;
void main() {
#include <clipping_fragment>
	fragColor = vec4(normalize(vNormal) * 0.5 + 0.5, opacity);
}
`

var meshMatcapFragmentShaderSource = `
#include <common>
#include <map_pars>
#include <fog_pars>
#include <clipping_pars>
#include <output_fragment>
uniform sampler2D matcap;
void main() {
#include <clipping_fragment>
	vec4 base = baseColor();
	vec3 n = normalize(vNormal);
	vec3 v = normalize(vViewPosition);
	vec3 x = normalize(vec3(v.z, 0.0, -v.x));
	vec3 y = cross(v, x);
	vec2 uv = vec2(dot(x, n), dot(y, n)) * 0.495 + 0.5;
#ifdef USE_MATCAP
	base.rgb *= texture(matcap, uv).rgb;
#endif
	fragColor = base;
#include <fog_fragment>
	fragColor = finalColor(fragColor);
}
`

var depthFragmentShaderSource = `
#include <common>
#include <packing>
#include <map_pars>
#include <clipping_pars>
void main() {
#include <clipping_fragment>
	vec4 base = baseColor();
	float fragCoordZ = gl_FragCoord.z;
#if DEPTH_PACKING == 3201
	fragColor = packDepthToRGBA(fragCoordZ);
#else
	fragColor = vec4(vec3(1.0 - fragCoordZ), base.a);
#endif
}
`

var distanceFragmentShaderSource = `
#include <common>
#include <packing>
#include <map_pars>
#include <clipping_pars>
uniform vec3 referencePosition;
uniform float nearDistance;
uniform float farDistance;
void main() {
#include <clipping_fragment>
	baseColor();
	float dist = length(vWorldPosition - referencePosition);
	dist = saturate((dist - nearDistance) / (farDistance - nearDistance));
	fragColor = packDepthToRGBA(dist);
}
`

var shadowFragmentShaderSource = `
#include <common>
#include <packing>
#include <map_pars>
#include <fog_pars>
#include <lights_pars>
#include <shadowmap_pars>
#include <output_fragment>
uniform vec3 color;
void main() {
	float s = 1.0;
#if defined(USE_SHADOWMAP) && NUM_DIR_LIGHT_SHADOWS > 0
	for (int i = 0; i < NUM_DIR_LIGHT_SHADOWS; i++) {
		DirectionalLightShadow ds = directionalLightShadows[i];
		s *= getShadow(directionalShadowMap[i], ds.shadowMapSize, ds.shadowIntensity, ds.shadowBias, ds.shadowRadius, vDirectionalShadowCoord[i]);
	}
#endif
	fragColor = vec4(color, opacity * (1.0 - s));
#include <fog_fragment>
	fragColor = finalColor(fragColor);
}
`

var pointsVertexShaderSource = `
#include <common>
#include <vertex_pars>
#include <morphtarget_pars>
uniform float size;
uniform float scale;
void main() {
#include <vertex_transform>
	gl_PointSize = size;
#ifdef USE_SIZEATTENUATION
	if (!isOrthographic) gl_PointSize *= scale / -mvPosition.z;
#endif
}
`

var pointsFragmentShaderSource = `
#include <common>
#include <map_pars>
#include <fog_pars>
#include <clipping_pars>
#include <output_fragment>
void main() {
#include <clipping_fragment>
	vec4 c = vec4(diffuse, opacity);
#ifdef USE_MAP
	c *= texture(map, gl_PointCoord);
#endif
#ifdef USE_COLOR
	c *= vColor;
#endif
#ifdef USE_ALPHATEST
	if (c.a < alphaTest) discard;
#endif
	fragColor = c;
#include <fog_fragment>
	fragColor = finalColor(fragColor);
}
`

var dashedVertexShaderSource = `
#include <common>
#include <vertex_pars>
uniform float scale;
in float lineDistance;
out float vLineDistance;
void main() {
	vLineDistance = scale * lineDistance;
#include <vertex_transform>
}
`

var dashedFragmentShaderSource = `
#include <common>
#include <map_pars>
#include <fog_pars>
#include <output_fragment>
uniform float dashSize;
uniform float totalSize;
in float vLineDistance;
void main() {
	if (mod(vLineDistance, totalSize) > dashSize) discard;
	fragColor = baseColor();
#include <fog_fragment>
	fragColor = finalColor(fragColor);
}
`

var spriteVertexShaderSource = `
#include <common>
#include <vertex_pars>
uniform float rotation;
uniform vec2 center;
void main() {
	vec4 mvPosition = modelViewMatrix * vec4(0.0, 0.0, 0.0, 1.0);
	vec2 scale = vec2(length(modelMatrix[0].xyz), length(modelMatrix[1].xyz));
	vec2 aligned = (position.xy - (center - vec2(0.5))) * scale;
	vec2 rotated = vec2(cos(rotation) * aligned.x - sin(rotation) * aligned.y, sin(rotation) * aligned.x + cos(rotation) * aligned.y);
	mvPosition.xy += rotated;
	gl_Position = projectionMatrix * mvPosition;
	vUv = (mapTransform * vec3(uv, 1.0)).xy;
	vViewPosition = -mvPosition.xyz;
	vNormal = vec3(0.0, 0.0, 1.0);
	vWorldPosition = vec3(0.0);
	vColor = vec4(1.0);
}
`

var backgroundVertexShaderSource = `
in vec3 position;
in vec2 uv;
uniform mat3 uvTransform;
out vec2 vUv;
void main() {
	vUv = (uvTransform * vec3(uv, 1.0)).xy;
	gl_Position = vec4(position.xy, 1.0, 1.0);
}
`

var backgroundFragmentShaderSource = `
#include <common>
#include <output_fragment>
uniform sampler2D t2D;
uniform float backgroundIntensity;
in vec2 vUv;
out vec4 fragColor;
void main() {
	vec4 texColor = texture(t2D, vUv);
	texColor.rgb *= backgroundIntensity;
	fragColor = finalColor(texColor);
}
`

var backgroundCubeVertexShaderSource = `
in vec3 position;
uniform mat4 modelMatrix;
uniform mat4 modelViewMatrix;
uniform mat4 projectionMatrix;
out vec3 vWorldDirection;
void main() {
	vWorldDirection = normalize((modelMatrix * vec4(position, 0.0)).xyz);
	vec4 p = projectionMatrix * modelViewMatrix * vec4(position, 1.0);
	gl_Position = p.xyww;
}
`

var backgroundCubeFragmentShaderSource = `
#include <common>
#include <output_fragment>
uniform samplerCube envMap;
uniform float flipEnvMap;
uniform float backgroundBlurriness;
uniform float backgroundIntensity;
uniform mat3 backgroundRotation;
in vec3 vWorldDirection;
out vec4 fragColor;
void main() {
	vec3 dir = backgroundRotation * vWorldDirection;
	vec4 texColor = textureLod(envMap, vec3(flipEnvMap * dir.x, dir.yz), backgroundBlurriness * 8.0);
	texColor.rgb *= backgroundIntensity;
	fragColor = finalColor(texColor);
}
`

var equirectVertexShaderSource = `
in vec3 position;
uniform mat4 modelMatrix;
uniform mat4 viewMatrix;
uniform mat4 projectionMatrix;
out vec3 vWorldDirection;
void main() {
	vWorldDirection = normalize((modelMatrix * vec4(position, 0.0)).xyz);
	gl_Position = projectionMatrix * viewMatrix * modelMatrix * vec4(position, 1.0);
}
`

var equirectFragmentShaderSource = `
#include <common>
uniform sampler2D tEquirect;
in vec3 vWorldDirection;
out vec4 fragColor;
void main() {
	vec3 d = normalize(vWorldDirection);
	vec2 uv = vec2(atan(d.z, d.x) * (0.5 * RECIPROCAL_PI) + 0.5, asin(clamp(d.y, -1.0, 1.0)) * RECIPROCAL_PI + 0.5);
	fragColor = texture(tEquirect, uv);
}
`

var vsmVertexShaderSource = `
in vec3 position;
void main() {
	gl_Position = vec4(position, 1.0);
}
`

var vsmFragmentShaderSource = `
#include <common>
#include <packing>
uniform sampler2D shadow_pass;
uniform vec2 resolution;
uniform float radius;
uniform float samples;
out vec4 fragColor;
void main() {
	float mean = 0.0;
	float squaredMean = 0.0;
	float uvStride = samples <= 1.0 ? 0.0 : 2.0 / (samples - 1.0);
	float uvStart = samples <= 1.0 ? 0.0 : -1.0;
	for (float i = 0.0; i < samples; i++) {
		float uvOffset = uvStart + i * uvStride;
#ifdef HORIZONTAL_PASS
		vec2 d = texture(shadow_pass, (gl_FragCoord.xy + vec2(uvOffset, 0.0) * radius) / resolution).rg;
		mean += d.x;
		squaredMean += d.y * d.y + d.x * d.x;
#else
		float d = unpackRGBAToDepth(texture(shadow_pass, (gl_FragCoord.xy + vec2(0.0, uvOffset) * radius) / resolution));
		mean += d;
		squaredMean += d * d;
#endif
	}
	mean /= samples;
	squaredMean /= samples;
	fragColor = vec4(mean, sqrt(max(squaredMean - mean * mean, 0.0)), 0.0, 1.0);
}
`
