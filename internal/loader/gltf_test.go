package loader

import (
	"path/filepath"
	"testing"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func triangleDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Materials = []*gltf.Material{{
		Name: "red",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{1, 0, 0, 1},
			MetallicFactor:  ptr(0.5),
			RoughnessFactor: ptr(0.25),
		},
		AlphaMode:   gltf.AlphaMask,
		AlphaCutoff: ptr(0.25),
		DoubleSided: true,
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    ptr(idx),
			Attributes: map[string]int{"POSITION": pos},
			Material:   ptr(0),
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "parent", Translation: [3]float64{1, 2, 3}, Children: []int{1}},
		{Name: "child", Mesh: ptr(0)},
	}
	doc.Scenes[0].Nodes = []int{0}
	return doc
}

func TestBuildGLTFHierarchyAndMaterial(t *testing.T) {
	root, err := BuildGLTF(triangleDocument(), "")
	require.NoError(t, err)

	require.Len(t, root.Children, 1)
	parent := root.Children[0]
	assert.Equal(t, "parent", parent.Name)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, parent.Position)
	require.Len(t, parent.Children, 1)
	child := parent.Children[0]
	require.Len(t, child.Children, 1)

	mesh := child.Children[0]
	assert.Equal(t, scene.KindMesh, mesh.Kind)
	m := mesh.Material
	assert.Equal(t, scene.MeshStandardMaterial, m.Kind)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Color)
	assert.Equal(t, float32(0.5), m.Metalness)
	assert.Equal(t, float32(0.25), m.Roughness)
	assert.Equal(t, float32(0.25), m.AlphaTest)
	assert.Equal(t, scene.DoubleSide, m.Side)

	// world matrices are ready after the build
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, mesh.WorldPosition())
}

func TestBuildGLTFGeometry(t *testing.T) {
	root, err := BuildGLTF(triangleDocument(), "")
	require.NoError(t, err)

	g := root.Children[0].Children[0].Children[0].Geometry
	assert.Equal(t, scene.Uint32Array{0, 1, 2}, g.Index.Array)
	assert.Equal(t, 3, g.Attribute("position").Count())
	n := g.Attribute("normal").(*scene.BufferAttribute).Array.(scene.Float32Array)
	assert.InDelta(t, 1, n[2], 1e-6)
}

func TestBuildGLTFSharedMeshGetsDistinctObjects(t *testing.T) {
	doc := triangleDocument()
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "twin", Mesh: ptr(0)})
	doc.Scenes[0].Nodes = []int{0, 2}

	root, err := BuildGLTF(doc, "")
	require.NoError(t, err)

	a := root.Children[0].Children[0].Children[0]
	b := root.Children[1].Children[0]
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Same(t, a.Geometry, b.Geometry)
	assert.Same(t, a.Material, b.Material)
}

func TestBuildGLTFSkipsPrimitivesWithoutPositions(t *testing.T) {
	doc := triangleDocument()
	doc.Meshes[0].Primitives[0].Attributes = map[string]int{}

	root, err := BuildGLTF(doc, "")
	require.NoError(t, err)

	assert.Empty(t, root.Children[0].Children[0].Children)
}

func TestLoadGLTFRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, gltf.SaveBinary(triangleDocument(), path))

	root, err := LoadGLTF(path)
	require.NoError(t, err)

	assert.Equal(t, "tri.glb", root.Name)
	assert.Len(t, root.Children, 1)
}
