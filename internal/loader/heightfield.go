package loader

import (
	"errors"

	"GopherScene/internal/scene"

	"github.com/aquilax/go-perlin"
)

// noise parameters for Heightfield
const (
	perlinAlpha  = 2.0
	perlinBeta   = 2.0
	perlinOctave = 3
	// features per grid edge
	perlinScale = 4.0
)

// Grid returns a flat size x size vertex grid in the XZ plane, centered on the origin,
// with spacing between neighbours. Normals point up and UVs span [0,1].
func Grid(size int, spacing float32) (*scene.Geometry, error) {
	if size < 2 {
		return nil, errors.New("loader: grid size must be at least 2")
	}
	n := size * size
	pos := make(scene.Float32Array, 0, n*3)
	norm := make(scene.Float32Array, 0, n*3)
	uv := make(scene.Float32Array, 0, n*2)
	half := float32(size-1) * spacing / 2
	for z := 0; z < size; z++ {
		for x := 0; x < size; x++ {
			pos = append(pos, float32(x)*spacing-half, 0, float32(z)*spacing-half)
			norm = append(norm, 0, 1, 0)
			uv = append(uv, float32(x)/float32(size-1), 1-float32(z)/float32(size-1))
		}
	}

	index := make(scene.Uint32Array, 0, (size-1)*(size-1)*6)
	for z := 0; z < size-1; z++ {
		for x := 0; x < size-1; x++ {
			a := uint32(z*size + x)
			b := a + 1
			c := a + uint32(size)
			d := c + 1
			// counter clockwise seen from +Y
			index = append(index, a, c, b, b, c, d)
		}
	}

	g := scene.NewGeometry()
	g.SetAttribute("position", scene.NewBufferAttribute(pos, 3, false))
	g.SetAttribute("normal", scene.NewBufferAttribute(norm, 3, false))
	g.SetAttribute("uv", scene.NewBufferAttribute(uv, 2, false))
	g.SetIndex(scene.NewBufferAttribute(index, 1, false))
	g.ComputeBoundingSphere()
	return g, nil
}

// Heightfield returns a Grid displaced by Perlin noise. The same seed always yields the
// same terrain. Peak height is a quarter of the grid extent.
func Heightfield(size int, spacing float32, seed int64) (*scene.Geometry, error) {
	g, err := Grid(size, spacing)
	if err != nil {
		return nil, err
	}
	p := perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctave, seed)
	amplitude := float32(size-1) * spacing / 4

	pos := g.Attribute("position").(*scene.BufferAttribute).Array.(scene.Float32Array)
	for z := 0; z < size; z++ {
		for x := 0; x < size; x++ {
			h := p.Noise2D(float64(x)/float64(size)*perlinScale, float64(z)/float64(size)*perlinScale)
			pos[(z*size+x)*3+1] = float32(h) * amplitude
		}
	}
	index := g.Index.Array.(scene.Uint32Array)
	g.SetAttribute("normal", scene.NewBufferAttribute(RecalculateNormals(pos, index), 3, false))
	g.ComputeBoundingSphere()
	return g, nil
}
