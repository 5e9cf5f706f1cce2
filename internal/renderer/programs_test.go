package renderer

import (
	"errors"
	"strings"
	"testing"

	"GopherScene/internal/gpu/gputest"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrograms(t *testing.T, cfg Config) (*Programs, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	ext := NewExtensions(rec)
	caps := NewCapabilities(rec, ext, cfg)
	attrs := NewAttributes(rec, NewUtils(ext))
	ps := NewPrograms(rec, NewBindingStates(rec, attrs, caps), caps, &cfg, newInfo())
	rec.ResetCalls()
	return ps, rec
}

func paramsFor(t *testing.T, ps *Programs, m *scene.Material, lights *LightsState) *ProgramParameters {
	t.Helper()
	if lights == nil {
		lights = &NewLights().State
	}
	object := scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), m)
	p, err := ps.GetParameters(m, lights, nil, scene.NewScene(), object)
	require.NoError(t, err)
	return p
}

func acquire(t *testing.T, ps *Programs, m *scene.Material) *Program {
	t.Helper()
	p := paramsFor(t, ps, m, nil)
	prog, err := ps.AcquireProgram(p, ps.GetProgramCacheKey(p))
	require.NoError(t, err)
	return prog
}

func TestEqualParametersShareProgram(t *testing.T) {
	ps, rec := newTestPrograms(t, DefaultConfig())

	a := acquire(t, ps, scene.NewMaterial(scene.MeshBasicMaterial))
	b := acquire(t, ps, scene.NewMaterial(scene.MeshBasicMaterial))

	assert.Same(t, a, b)
	assert.Equal(t, 2, a.UsedTimes())
	assert.Equal(t, 1, rec.Count("CreateProgram"))
	assert.Len(t, ps.Programs(), 1)
	assert.Equal(t, 1, ps.info.Programs)
}

func TestReleaseDeletesWithLastUse(t *testing.T) {
	ps, rec := newTestPrograms(t, DefaultConfig())
	a := acquire(t, ps, scene.NewMaterial(scene.MeshBasicMaterial))
	acquire(t, ps, scene.NewMaterial(scene.MeshBasicMaterial))
	native := a.Native()

	ps.ReleaseProgram(a)
	assert.Equal(t, 0, rec.Count("DeleteProgram"))
	assert.Len(t, ps.Programs(), 1)

	ps.ReleaseProgram(a)
	assert.Equal(t, 1, rec.Count("DeleteProgram"))
	assert.True(t, rec.Programs[native].Deleted)
	assert.Empty(t, ps.Programs())
	assert.Equal(t, 0, ps.info.Programs)
}

func TestReleasePastZeroPanics(t *testing.T) {
	ps, _ := newTestPrograms(t, DefaultConfig())
	a := acquire(t, ps, scene.NewMaterial(scene.MeshBasicMaterial))
	ps.ReleaseProgram(a)

	assert.Panics(t, func() { ps.ReleaseProgram(a) })
}

func TestMapChangesCacheKey(t *testing.T) {
	ps, _ := newTestPrograms(t, DefaultConfig())
	plain := scene.NewMaterial(scene.MeshBasicMaterial)
	mapped := scene.NewMaterial(scene.MeshBasicMaterial)
	mapped.Map = scene.NewTexture(scene.NewSource(make([]byte, 4), 1, 1))

	a := ps.GetProgramCacheKey(paramsFor(t, ps, plain, nil))
	b := ps.GetProgramCacheKey(paramsFor(t, ps, mapped, nil))

	assert.NotEqual(t, a, b)
}

func TestDefinesAreKeyedInSortedOrder(t *testing.T) {
	ps, _ := newTestPrograms(t, DefaultConfig())
	a := scene.NewMaterial(scene.MeshBasicMaterial)
	a.Defines["USE_A"] = "1"
	a.Defines["USE_B"] = "2"
	b := scene.NewMaterial(scene.MeshBasicMaterial)
	b.Defines["USE_B"] = "2"
	b.Defines["USE_A"] = "1"
	c := scene.NewMaterial(scene.MeshBasicMaterial)
	c.Defines["USE_A"] = "3"

	ka := ps.GetProgramCacheKey(paramsFor(t, ps, a, nil))
	assert.Equal(t, ka, ps.GetProgramCacheKey(paramsFor(t, ps, b, nil)))
	assert.NotEqual(t, ka, ps.GetProgramCacheKey(paramsFor(t, ps, c, nil)))
	assert.Less(t, strings.Index(ka, "USE_A"), strings.Index(ka, "USE_B"))
}

const (
	testVertex   = "in vec3 position;\nuniform mat4 modelViewMatrix;\nuniform mat4 projectionMatrix;\nvoid main() { gl_Position = projectionMatrix * modelViewMatrix * vec4(position, 1.0); }\n"
	testFragment = "uniform vec3 tint;\nout vec4 fragColor;\nvoid main() { fragColor = vec4(tint, 1.0); }\n"
)

func TestShaderMaterialsAreKeyedBySource(t *testing.T) {
	ps, _ := newTestPrograms(t, DefaultConfig())
	a := scene.NewShaderMaterial(testVertex, testFragment, nil)
	b := scene.NewShaderMaterial(testVertex, testFragment, nil)
	c := scene.NewShaderMaterial(testVertex, strings.Replace(testFragment, "1.0", "0.5", 1), nil)

	ka := ps.GetProgramCacheKey(paramsFor(t, ps, a, nil))
	assert.Equal(t, ka, ps.GetProgramCacheKey(paramsFor(t, ps, b, nil)))
	assert.NotEqual(t, ka, ps.GetProgramCacheKey(paramsFor(t, ps, c, nil)))
}

func TestRawShaderKeyIgnoresDerivedFlags(t *testing.T) {
	ps, _ := newTestPrograms(t, DefaultConfig())
	a := scene.NewMaterial(scene.RawShaderMaterial)
	a.VertexShader, a.FragmentShader = testVertex, testFragment
	b := scene.NewMaterial(scene.RawShaderMaterial)
	b.VertexShader, b.FragmentShader = testVertex, testFragment
	b.Map = scene.NewTexture(scene.NewSource(make([]byte, 4), 1, 1))

	assert.Equal(t,
		ps.GetProgramCacheKey(paramsFor(t, ps, a, nil)),
		ps.GetProgramCacheKey(paramsFor(t, ps, b, nil)))
}

func TestCustomCacheKeyCallback(t *testing.T) {
	ps, _ := newTestPrograms(t, DefaultConfig())
	a := scene.NewMaterial(scene.MeshBasicMaterial)
	b := scene.NewMaterial(scene.MeshBasicMaterial)
	b.CustomProgramCacheKey = func() string { return "variant" }

	assert.NotEqual(t,
		ps.GetProgramCacheKey(paramsFor(t, ps, a, nil)),
		ps.GetProgramCacheKey(paramsFor(t, ps, b, nil)))
}

func TestLightCountsOnlyForLitMaterials(t *testing.T) {
	ps, _ := newTestPrograms(t, DefaultConfig())
	lights := NewLights()
	lights.Setup([]*scene.Light{scene.NewDirectionalLight(mgl32.Vec3{1, 1, 1}, 1)}, false)

	basic := paramsFor(t, ps, scene.NewMaterial(scene.MeshBasicMaterial), &lights.State)
	standard := paramsFor(t, ps, scene.NewMaterial(scene.MeshStandardMaterial), &lights.State)

	assert.Equal(t, 0, basic.NumDirLights)
	assert.Equal(t, 1, standard.NumDirLights)
	assert.True(t, standard.IsStandard)
}

func TestToneMappingOnlyOnDefaultFramebuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ToneMapping = "aces"
	ps, _ := newTestPrograms(t, cfg)
	m := scene.NewMaterial(scene.MeshStandardMaterial)

	assert.Equal(t, scene.ACESFilmicToneMapping, paramsFor(t, ps, m, nil).ToneMapping)

	ps.SetRenderTarget(scene.NewRenderTarget(8, 8, scene.DefaultRenderTargetOptions()))
	assert.Equal(t, scene.NoToneMapping, paramsFor(t, ps, m, nil).ToneMapping)

	ps.SetRenderTarget(nil)
	m.ToneMapped = false
	assert.Equal(t, scene.NoToneMapping, paramsFor(t, ps, m, nil).ToneMapping)
}

func TestFailedLinkIsNotRunnable(t *testing.T) {
	ps, rec := newTestPrograms(t, DefaultConfig())
	rec.FailCompile = func(src string) bool { return strings.Contains(src, "tint") }

	prog := acquire(t, ps, scene.NewShaderMaterial(testVertex, testFragment, nil))
	d := prog.Diagnostics()

	assert.False(t, prog.Runnable())
	assert.NotEmpty(t, d.FragmentLog)
	assert.Empty(t, d.VertexLog)
}

func TestUnknownKindIsAnError(t *testing.T) {
	ps, _ := newTestPrograms(t, DefaultConfig())
	m := scene.NewMaterial(scene.MaterialKind(99))
	object := scene.NewMesh(scene.NewBoxGeometry(1, 1, 1), m)

	_, err := ps.GetParameters(m, &NewLights().State, nil, scene.NewScene(), object)

	assert.True(t, errors.Is(err, ErrUnknownMaterialKind))
}
