package loader

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestReadOBJTriangulatesQuads(t *testing.T) {
	obj, err := ReadOBJ(strings.NewReader(quadOBJ), "")
	require.NoError(t, err)

	g := obj.Geometry
	assert.Equal(t, scene.KindMesh, obj.Kind)
	assert.Equal(t, scene.Uint32Array{0, 1, 2, 0, 2, 3}, g.Index.Array)
	assert.Equal(t, 4, g.Attribute("position").Count())
	assert.Empty(t, g.Groups)
	require.NotNil(t, g.BoundingSphere)
	assert.Equal(t, "default", obj.Material.Name)
}

func TestReadOBJSupportsNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"

	obj, err := ReadOBJ(strings.NewReader(src), "")
	require.NoError(t, err)

	pos := obj.Geometry.Attribute("position").(*scene.BufferAttribute).Array
	assert.Equal(t, scene.Float32Array{0, 0, 0, 1, 0, 0, 0, 1, 0}, pos)
}

func TestReadOBJComputesMissingNormals(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

	obj, err := ReadOBJ(strings.NewReader(src), "")
	require.NoError(t, err)

	n := obj.Geometry.Attribute("normal").(*scene.BufferAttribute).Array.(scene.Float32Array)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1, n[i*3+2], 1e-6)
	}
}

func TestReadOBJSharesRepeatedCorners(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3\nf 3 2 4\n"

	obj, err := ReadOBJ(strings.NewReader(src), "")
	require.NoError(t, err)

	assert.Equal(t, 4, obj.Geometry.Attribute("position").Count())
	assert.Equal(t, 6, obj.Geometry.Index.Count())
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"bad vertex", "v 0 x 0\n"},
		{"degenerate face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tt.src), "")
			assert.Error(t, err)
		})
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadOBJWithMaterialGroups(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "bricks.png"), 2, 2)
	mtl := `newmtl red
Kd 1 0 0
Ns 64
newmtl glass
Kd 0.8 0.9 1
d 0.25
map_Kd -s 1 1 1 bricks.png
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.mtl"), []byte(mtl), 0o644))
	obj := `mtllib scene.mtl
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
usemtl red
f 1 2 3
f 3 2 4
usemtl glass
f 1 3 4
usemtl red
f 1 2 4
`
	path := filepath.Join(dir, "scene.obj")
	require.NoError(t, os.WriteFile(path, []byte(obj), 0o644))

	o, err := LoadOBJ(path)
	require.NoError(t, err)

	assert.Equal(t, "scene", o.Name)
	require.Len(t, o.Materials, 2)
	red, glass := o.Materials[0], o.Materials[1]
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, red.Color)
	assert.Equal(t, float32(64), red.Shininess)
	assert.True(t, glass.Transparent)
	assert.Equal(t, float32(0.25), glass.Opacity)
	require.NotNil(t, glass.Map)
	assert.Equal(t, 2, glass.Map.Source.Width)
	assert.Equal(t, scene.SRGBColorSpace, glass.Map.ColorSpace)

	assert.Equal(t, []scene.Group{
		{Start: 0, Count: 6, MaterialIndex: 0},
		{Start: 6, Count: 3, MaterialIndex: 1},
		{Start: 9, Count: 3, MaterialIndex: 0},
	}, o.Geometry.Groups)
}

func TestLoadOBJMissingLibraryFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lonely.obj")
	src := "mtllib nowhere.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl ghost\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	o, err := LoadOBJ(path)
	require.NoError(t, err)

	assert.Equal(t, scene.MeshPhongMaterial, o.Material.Kind)
	assert.Equal(t, "default", o.Material.Name)
}

func TestLoadOBJMissingFile(t *testing.T) {
	_, err := LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"))
	assert.True(t, os.IsNotExist(err))
}
