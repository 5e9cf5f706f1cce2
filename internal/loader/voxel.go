package loader

import (
	"sync"

	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

type VoxelID uint16

const Air VoxelID = 0

var defaultVoxelColors = map[VoxelID]mgl32.Vec3{
	1: {0.33, 0.62, 0.24}, // grass
	2: {0.47, 0.33, 0.2},  // dirt
	3: {0.5, 0.5, 0.52},   // stone
	4: {0.86, 0.8, 0.58},  // sand
	5: {0.95, 0.96, 0.98}, // snow
}

var (
	colorMu      sync.RWMutex
	customColors = map[VoxelID]mgl32.Vec3{}
)

// GetVoxelColor returns the palette color for id. Air is black, unknown ids are magenta.
func GetVoxelColor(id VoxelID) mgl32.Vec3 {
	if id == Air {
		return mgl32.Vec3{}
	}
	colorMu.RLock()
	c, ok := customColors[id]
	colorMu.RUnlock()
	if ok {
		return c
	}
	if c, ok := defaultVoxelColors[id]; ok {
		return c
	}
	return mgl32.Vec3{1, 0, 1}
}

// SetVoxelColor overrides the palette color for id.
func SetVoxelColor(id VoxelID, c mgl32.Vec3) {
	colorMu.Lock()
	customColors[id] = c
	colorMu.Unlock()
}

func ClearCustomVoxelColors() {
	colorMu.Lock()
	customColors = map[VoxelID]mgl32.Vec3{}
	colorMu.Unlock()
}

type VoxelChunk struct {
	Position    mgl32.Vec3
	Size        int
	Voxels      [][][]VoxelID
	NeedsUpdate bool
}

// VoxelWorld is a grid of chunks, each Size x MaxHeight x Size voxels.
type VoxelWorld struct {
	ChunkSize    int
	WorldSizeX   int
	WorldSizeZ   int
	MaxHeight    int
	VoxelSize    float32
	Chunks       [][]*VoxelChunk
	ActiveVoxels int
}

func NewVoxelWorld(chunkSize, worldSizeX, worldSizeZ, maxHeight int, voxelSize float32) *VoxelWorld {
	world := &VoxelWorld{
		ChunkSize:  chunkSize,
		WorldSizeX: worldSizeX,
		WorldSizeZ: worldSizeZ,
		MaxHeight:  maxHeight,
		VoxelSize:  voxelSize,
		Chunks:     make([][]*VoxelChunk, worldSizeX),
	}

	for x := 0; x < worldSizeX; x++ {
		world.Chunks[x] = make([]*VoxelChunk, worldSizeZ)
		for z := 0; z < worldSizeZ; z++ {
			chunk := &VoxelChunk{
				Position:    mgl32.Vec3{float32(x * chunkSize), 0, float32(z * chunkSize)},
				Size:        chunkSize,
				Voxels:      make([][][]VoxelID, chunkSize),
				NeedsUpdate: true,
			}
			for i := 0; i < chunkSize; i++ {
				chunk.Voxels[i] = make([][]VoxelID, maxHeight)
				for j := 0; j < maxHeight; j++ {
					chunk.Voxels[i][j] = make([]VoxelID, chunkSize)
				}
			}
			world.Chunks[x][z] = chunk
		}
	}
	return world
}

func (world *VoxelWorld) locate(x, y, z int) (*VoxelChunk, int, int, bool) {
	if x < 0 || z < 0 || y < 0 || y >= world.MaxHeight {
		return nil, 0, 0, false
	}
	cx, cz := x/world.ChunkSize, z/world.ChunkSize
	if cx >= world.WorldSizeX || cz >= world.WorldSizeZ {
		return nil, 0, 0, false
	}
	return world.Chunks[cx][cz], x % world.ChunkSize, z % world.ChunkSize, true
}

// SetVoxel writes id at world coordinates. Out of range writes are ignored.
func (world *VoxelWorld) SetVoxel(x, y, z int, id VoxelID) {
	chunk, lx, lz, ok := world.locate(x, y, z)
	if !ok {
		return
	}
	prev := chunk.Voxels[lx][y][lz]
	chunk.Voxels[lx][y][lz] = id
	switch {
	case prev != Air && id == Air:
		world.ActiveVoxels--
	case prev == Air && id != Air:
		world.ActiveVoxels++
	}
	chunk.NeedsUpdate = true
}

// GetVoxel returns Air outside the world.
func (world *VoxelWorld) GetVoxel(x, y, z int) VoxelID {
	chunk, lx, lz, ok := world.locate(x, y, z)
	if !ok {
		return Air
	}
	return chunk.Voxels[lx][y][lz]
}

func (world *VoxelWorld) ClearChunk(chunkX, chunkZ int) {
	if chunkX < 0 || chunkX >= world.WorldSizeX || chunkZ < 0 || chunkZ >= world.WorldSizeZ {
		return
	}
	chunk := world.Chunks[chunkX][chunkZ]
	for x := range chunk.Voxels {
		for y := range chunk.Voxels[x] {
			for z, id := range chunk.Voxels[x][y] {
				if id != Air {
					world.ActiveVoxels--
				}
				chunk.Voxels[x][y][z] = Air
			}
		}
	}
	chunk.NeedsUpdate = true
}

// FillHeightmap sets every column up to the terrain height, picking the id by depth.
func (world *VoxelWorld) FillHeightmap(height func(x, z int) int) {
	for x := 0; x < world.ChunkSize*world.WorldSizeX; x++ {
		for z := 0; z < world.ChunkSize*world.WorldSizeZ; z++ {
			top := height(x, z)
			for y := 0; y <= top && y < world.MaxHeight; y++ {
				id := VoxelID(3)
				switch {
				case y == top && top > world.MaxHeight*3/4:
					id = 5
				case y == top:
					id = 1
				case y > top-3:
					id = 2
				}
				world.SetVoxel(x, y, z, id)
			}
		}
	}
}

func (world *VoxelWorld) exposed(x, y, z int) bool {
	for _, d := range [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}} {
		if world.GetVoxel(x+d[0], y+d[1], z+d[2]) == Air {
			return true
		}
	}
	return false
}

// BuildInstanced returns one box instance per voxel that has at least one open face,
// colored from the palette. Fully enclosed voxels are skipped.
func (world *VoxelWorld) BuildInstanced(m *scene.Material) *scene.Object {
	type cell struct {
		pos mgl32.Vec3
		id  VoxelID
	}
	var cells []cell
	for x := 0; x < world.ChunkSize*world.WorldSizeX; x++ {
		for y := 0; y < world.MaxHeight; y++ {
			for z := 0; z < world.ChunkSize*world.WorldSizeZ; z++ {
				id := world.GetVoxel(x, y, z)
				if id == Air || !world.exposed(x, y, z) {
					continue
				}
				p := mgl32.Vec3{float32(x), float32(y), float32(z)}.Mul(world.VoxelSize)
				cells = append(cells, cell{p, id})
			}
		}
	}

	s := world.VoxelSize
	mesh := scene.NewInstancedMesh(scene.NewBoxGeometry(s, s, s), m, len(cells))
	mesh.Name = "Voxels"
	// instances extend far past the single box bounds
	mesh.FrustumCulled = false
	for i, c := range cells {
		mesh.SetMatrixAt(i, mgl32.Translate3D(c.pos[0], c.pos[1], c.pos[2]))
		mesh.SetColorAt(i, GetVoxelColor(c.id))
	}
	for x := range world.Chunks {
		for _, chunk := range world.Chunks[x] {
			chunk.NeedsUpdate = false
		}
	}
	return mesh
}
