package loader

import (
	"testing"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVoxelWorld(t *testing.T) {
	world := NewVoxelWorld(16, 2, 2, 64, 1.0)

	require.Len(t, world.Chunks, 2)
	assert.Len(t, world.Chunks[1], 2)
	assert.Equal(t, mgl32.Vec3{16, 0, 16}, world.Chunks[1][1].Position)
	assert.Zero(t, world.ActiveVoxels)
}

func TestSetVoxelTracksActiveCount(t *testing.T) {
	world := NewVoxelWorld(4, 2, 1, 8, 1)

	world.SetVoxel(5, 2, 1, 3)
	world.SetVoxel(5, 2, 1, 2)
	world.SetVoxel(0, 0, 0, 1)

	assert.Equal(t, 2, world.ActiveVoxels)
	assert.Equal(t, VoxelID(2), world.GetVoxel(5, 2, 1))
	assert.True(t, world.Chunks[1][0].NeedsUpdate)

	world.SetVoxel(5, 2, 1, Air)
	assert.Equal(t, 1, world.ActiveVoxels)
}

func TestVoxelOutOfRangeIsAir(t *testing.T) {
	world := NewVoxelWorld(4, 1, 1, 4, 1)

	world.SetVoxel(-1, 0, 0, 1)
	world.SetVoxel(0, 4, 0, 1)
	world.SetVoxel(4, 0, 0, 1)

	assert.Zero(t, world.ActiveVoxels)
	assert.Equal(t, Air, world.GetVoxel(99, 0, 0))
}

func TestClearChunk(t *testing.T) {
	world := NewVoxelWorld(2, 2, 1, 2, 1)
	world.SetVoxel(0, 0, 0, 1)
	world.SetVoxel(1, 1, 1, 1)
	world.SetVoxel(2, 0, 0, 1)

	world.ClearChunk(0, 0)

	assert.Equal(t, 1, world.ActiveVoxels)
	assert.Equal(t, VoxelID(1), world.GetVoxel(2, 0, 0))
}

func TestVoxelPalette(t *testing.T) {
	t.Cleanup(ClearCustomVoxelColors)

	assert.Equal(t, mgl32.Vec3{}, GetVoxelColor(Air))
	grass := GetVoxelColor(1)
	assert.NotEqual(t, mgl32.Vec3{}, grass)

	SetVoxelColor(1, mgl32.Vec3{1, 0, 0})
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, GetVoxelColor(1))

	ClearCustomVoxelColors()
	assert.Equal(t, grass, GetVoxelColor(1))
}

func TestBuildInstancedSkipsEnclosedVoxels(t *testing.T) {
	world := NewVoxelWorld(3, 1, 1, 3, 0.5)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				world.SetVoxel(x, y, z, 3)
			}
		}
	}

	mesh := world.BuildInstanced(scene.NewMaterial(scene.MeshLambertMaterial))

	// the center voxel of a solid 3x3x3 block has no open face
	assert.Equal(t, 26, mesh.Count)
	assert.Equal(t, scene.KindInstancedMesh, mesh.Kind)
	assert.False(t, mesh.FrustumCulled)
	require.NotNil(t, mesh.InstanceColor)
	assert.Equal(t, 26*3, mesh.InstanceColor.Array.Len())
	assert.False(t, world.Chunks[0][0].NeedsUpdate)

	m := mesh.InstanceMatrix.Array.(scene.Float32Array)
	last := m[25*16 : 26*16]
	assert.Equal(t, []float32{1, 1, 1}, []float32(last[12:15]))
}

func TestFillHeightmapLayers(t *testing.T) {
	world := NewVoxelWorld(2, 1, 1, 8, 1)

	world.FillHeightmap(func(x, z int) int { return 4 })

	assert.Equal(t, VoxelID(1), world.GetVoxel(0, 4, 0))
	assert.Equal(t, VoxelID(2), world.GetVoxel(0, 3, 0))
	assert.Equal(t, VoxelID(3), world.GetVoxel(0, 0, 0))
	assert.Equal(t, Air, world.GetVoxel(0, 5, 0))
	assert.Equal(t, 2*2*5, world.ActiveVoxels)
}
