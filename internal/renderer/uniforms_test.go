package renderer

import (
	"testing"

	"GopherScene/internal/gpu"
	"GopherScene/internal/gpu/gputest"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uniformsFragment = `
struct PointLight {
	vec3 position;
	vec3 color;
	float distance;
};
uniform PointLight pointLights[2];
uniform vec3 diffuse;
uniform float weights[3];
uniform sampler2D map;
out vec4 fragColor;
void main() { fragColor = vec4(diffuse, 1.0); }
`

func linkTestProgram(t *testing.T, rec *gputest.Recorder, vertex, fragment string) gpu.Program {
	t.Helper()
	p := rec.CreateProgram()
	for typ, src := range map[gpu.Enum]string{gpu.VERTEX_SHADER: vertex, gpu.FRAGMENT_SHADER: fragment} {
		s := rec.CreateShader(typ)
		rec.ShaderSource(s, src)
		rec.CompileShader(s)
		rec.AttachShader(p, s)
	}
	rec.LinkProgram(p)
	rec.UseProgram(p)
	return p
}

func newTestUniforms(t *testing.T) (*Uniforms, *Textures, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	ext := NewExtensions(rec)
	caps := NewCapabilities(rec, ext, DefaultConfig())
	utils := NewUtils(ext)
	tx := NewTextures(rec, ext, NewState(rec, utils, caps), caps, utils, newInfo())
	u := NewUniforms(rec, linkTestProgram(t, rec, testVertex, uniformsFragment))
	rec.ResetCalls()
	return u, tx, rec
}

func TestUniformTreeTopLevelNames(t *testing.T) {
	u, _, _ := newTestUniforms(t)

	for _, name := range []string{"pointLights", "diffuse", "weights", "map", "modelViewMatrix", "projectionMatrix"} {
		assert.True(t, u.Has(name), name)
	}
	assert.False(t, u.Has("position"))
	assert.False(t, u.Has("color"))
}

func TestSingleUniformSkipsUnchangedValues(t *testing.T) {
	u, tx, rec := newTestUniforms(t)

	require.NoError(t, u.SetValue("diffuse", mgl32.Vec3{1, 0, 0}, tx))
	require.NoError(t, u.SetValue("diffuse", mgl32.Vec3{1, 0, 0}, tx))
	assert.Equal(t, 1, rec.Count("Uniform3fv"))

	require.NoError(t, u.SetValue("diffuse", mgl32.Vec3{0, 1, 0}, tx))
	assert.Equal(t, 2, rec.Count("Uniform3fv"))
	assert.Equal(t, []float32{0, 1, 0}, rec.UniformValue("diffuse"))
}

func TestUnknownUniformIsIgnored(t *testing.T) {
	u, tx, rec := newTestUniforms(t)

	assert.NoError(t, u.SetValue("missing", float32(1), tx))
	assert.Empty(t, rec.Calls)
}

func TestPureArrayUniform(t *testing.T) {
	u, tx, rec := newTestUniforms(t)

	require.NoError(t, u.SetValue("weights", []float32{0.25, 0.5, 0.25}, tx))

	assert.Equal(t, 1, rec.Count("Uniform1fv"))
	assert.Equal(t, []float32{0.25, 0.5, 0.25}, rec.UniformValue("weights"))
}

func TestStructArrayUniformsResolveMembers(t *testing.T) {
	u, tx, rec := newTestUniforms(t)
	values := UniformValues{
		"pointLights": {Value: []any{
			map[string]any{"color": mgl32.Vec3{1, 2, 3}, "distance": float32(10)},
			&PointLightUniforms{Color: mgl32.Vec3{4, 5, 6}},
		}},
		"diffuse": {Value: mgl32.Vec3{1, 1, 1}},
	}

	require.NoError(t, u.Upload(SeqWithValue(u.Seq(), values), values, tx))

	assert.Equal(t, []float32{1, 2, 3}, rec.UniformValue("pointLights[0].color"))
	assert.Equal(t, []float32{10}, rec.UniformValue("pointLights[0].distance"))
	assert.Equal(t, []float32{4, 5, 6}, rec.UniformValue("pointLights[1].color"))
	assert.Equal(t, []float32{1, 1, 1}, rec.UniformValue("diffuse"))
}

func TestSeqWithValueFilters(t *testing.T) {
	u, _, _ := newTestUniforms(t)
	values := UniformValues{"diffuse": {Value: mgl32.Vec3{}}, "unused": {Value: float32(1)}}

	seq := SeqWithValue(u.Seq(), values)

	require.Len(t, seq, 1)
	assert.Equal(t, "diffuse", seq[0].ID())
}

func TestSamplerClaimsTextureUnit(t *testing.T) {
	u, tx, rec := newTestUniforms(t)
	tex := scene.NewTexture(scene.NewSource(make([]byte, 16), 2, 2))

	tx.ResetTextureUnits()
	require.NoError(t, u.SetValue("map", tex, tx))

	assert.Equal(t, []float32{0}, rec.UniformValue("map"))
	assert.NotZero(t, rec.Bound(gpu.TEXTURE0, gpu.TEXTURE_2D))

	// same unit next frame, no redundant Uniform1i
	tx.ResetTextureUnits()
	require.NoError(t, u.SetValue("map", tex, tx))
	assert.Equal(t, 1, rec.Count("Uniform1i"))
}
