package renderer

import (
	"math"

	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"go.uber.org/zap"
)

type morphEntry struct {
	count   int
	texture *scene.Texture
	size    [2]int32
}

// Morphtargets packs morph attributes into a float texture array, one layer per target.
type Morphtargets struct {
	caps    *Capabilities
	entries map[int]*morphEntry

	influences []float32
}

func NewMorphtargets(caps *Capabilities) *Morphtargets {
	return &Morphtargets{caps: caps, entries: make(map[int]*morphEntry)}
}

// morphTargetsCount is the number of targets of the longest morph attribute list.
func morphTargetsCount(g *scene.Geometry) int {
	n := 0
	for _, list := range g.MorphAttributes {
		if len(list) > n {
			n = len(list)
		}
	}
	return n
}

// morphTextureStride is the number of texels one vertex occupies in a layer.
func morphTextureStride(g *scene.Geometry) int {
	stride := 0
	for _, name := range [...]string{"position", "normal", "color"} {
		if len(g.MorphAttributes[name]) > 0 {
			stride++
		}
	}
	return stride
}

func (m *Morphtargets) build(g *scene.Geometry, count int) *morphEntry {
	position := g.Attributes["position"]
	if position == nil {
		return nil
	}
	vertexCount := position.Count()
	stride := morphTextureStride(g)
	width := vertexCount * stride
	height := 1
	if max := m.caps.MaxTextureSize; max > 0 && width > max {
		height = int(math.Ceil(float64(width) / float64(max)))
		width = max
	}

	layer := width * height * 4
	data := make(scene.Float32Array, layer*count)
	names := make([]string, 0, 3)
	for _, name := range [...]string{"position", "normal", "color"} {
		if len(g.MorphAttributes[name]) > 0 {
			names = append(names, name)
		}
	}
	for i := 0; i < count; i++ {
		offset := layer * i
		for slot, name := range names {
			list := g.MorphAttributes[name]
			if i >= len(list) {
				continue
			}
			attr := list[i]
			for j := 0; j < vertexCount && j < attr.Count(); j++ {
				base := offset + (j*stride+slot)*4
				for k := 0; k < attr.ItemSize && k < 4; k++ {
					data[base+k] = attr.Array.Float(j*attr.ItemSize + k)
				}
				if name == "color" && attr.ItemSize == 3 {
					data[base+3] = 1
				}
			}
		}
	}

	src := scene.NewSource(data.Bytes(), width, height)
	src.Depth = count
	t := scene.NewDataTextureArray(src)
	t.Format, t.Type = scene.RGBAFormat, scene.FloatType
	logger.Log.Debug("Morph texture built",
		zap.Int("geometry", g.ID()),
		zap.Int("targets", count),
		zap.Int("width", width),
		zap.Int("height", height))
	return &morphEntry{count: count, texture: t, size: [2]int32{int32(width), int32(height)}}
}

// Update refreshes the morph uniforms of program for object. The texture is rebuilt when the
// number of targets changes.
func (m *Morphtargets) Update(object *scene.Object, g *scene.Geometry, uniforms *Uniforms, tx *Textures) error {
	count := morphTargetsCount(g)
	if count == 0 {
		return nil
	}
	entry, ok := m.entries[g.ID()]
	if !ok || entry.count != count {
		if ok {
			tx.DeallocateTexture(entry.texture)
		}
		entry = m.build(g, count)
		if entry == nil {
			delete(m.entries, g.ID())
			return nil
		}
		m.entries[g.ID()] = entry
	}

	m.influences = m.influences[:0]
	var sum float32
	for i := 0; i < count; i++ {
		var v float32
		if i < len(object.MorphTargetInfluences) {
			v = object.MorphTargetInfluences[i]
		}
		sum += v
		m.influences = append(m.influences, v)
	}
	base := 1 - sum
	if g.MorphTargetsRelative {
		base = 1
	}
	if err := uniforms.SetValue("morphTargetBaseInfluence", base, tx); err != nil {
		return err
	}
	if err := uniforms.SetValue("morphTargetInfluences", m.influences, tx); err != nil {
		return err
	}
	if err := uniforms.SetValue("morphTargetsTexture", entry.texture, tx); err != nil {
		return err
	}
	return uniforms.SetValue("morphTargetsTextureSize", entry.size[:], tx)
}

// Dispose forgets the morph texture of a disposed geometry.
func (m *Morphtargets) Dispose(id int, tx *Textures) {
	if entry, ok := m.entries[id]; ok {
		tx.DeallocateTexture(entry.texture)
		delete(m.entries, id)
	}
}
