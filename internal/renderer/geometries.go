package renderer

import (
	"GopherScene/internal/gpu"
	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"go.uber.org/zap"
)

type wireframeRecord struct {
	attribute *scene.BufferAttribute
	version   int
}

// Geometries registers geometries with the renderer and owns their derived wireframe indices.
type Geometries struct {
	attributes    *Attributes
	bindingStates *BindingStates
	info          *Info

	registered map[int]*scene.Geometry
	wireframes map[int]*wireframeRecord
}

func NewGeometries(attributes *Attributes, bindingStates *BindingStates, info *Info) *Geometries {
	return &Geometries{
		attributes:    attributes,
		bindingStates: bindingStates,
		info:          info,
		registered:    make(map[int]*scene.Geometry),
		wireframes:    make(map[int]*wireframeRecord),
	}
}

// Get registers geometry on first sight and returns it.
func (g *Geometries) Get(geometry *scene.Geometry) *scene.Geometry {
	if _, ok := g.registered[geometry.ID()]; ok {
		return geometry
	}
	g.registered[geometry.ID()] = geometry
	g.info.Memory.Geometries++
	logger.Log.Debug("Geometry registered",
		zap.Int("id", geometry.ID()),
		zap.String("name", geometry.Name))
	return geometry
}

// Update pushes every vertex and morph attribute through the version gate.
func (g *Geometries) Update(geometry *scene.Geometry) {
	for _, a := range geometry.Attributes {
		g.attributes.Update(a, gpu.ARRAY_BUFFER)
	}
	for _, list := range geometry.MorphAttributes {
		for _, a := range list {
			g.attributes.Update(a, gpu.ARRAY_BUFFER)
		}
	}
}

// GetWireframeAttribute returns a line index for geometry, rebuilt when the source index
// or the position attribute changed.
func (g *Geometries) GetWireframeAttribute(geometry *scene.Geometry) *scene.BufferAttribute {
	version := wireframeSourceVersion(geometry)
	rec, ok := g.wireframes[geometry.ID()]
	if ok && rec.version >= version {
		return rec.attribute
	}
	if ok {
		g.attributes.Remove(rec.attribute)
	}
	attr := buildWireframeIndex(geometry)
	g.attributes.Update(attr, gpu.ELEMENT_ARRAY_BUFFER)
	g.wireframes[geometry.ID()] = &wireframeRecord{attribute: attr, version: version}
	return attr
}

func wireframeSourceVersion(geometry *scene.Geometry) int {
	if geometry.Index != nil {
		return geometry.Index.Version
	}
	if p, ok := geometry.Attributes["position"].(*scene.BufferAttribute); ok {
		return p.Version
	}
	return 0
}

func buildWireframeIndex(geometry *scene.Geometry) *scene.BufferAttribute {
	var indices []uint32
	if idx := geometry.Index; idx != nil {
		n := idx.Array.Len()
		for i := 0; i+2 < n; i += 3 {
			a, b, c := uint32(idx.Array.Float(i)), uint32(idx.Array.Float(i+1)), uint32(idx.Array.Float(i+2))
			indices = append(indices, a, b, b, c, c, a)
		}
	} else if pos := geometry.Attributes["position"]; pos != nil {
		n := pos.Count()
		for i := 0; i+2 < n; i += 3 {
			a, b, c := uint32(i), uint32(i+1), uint32(i+2)
			indices = append(indices, a, b, b, c, c, a)
		}
	}

	var max uint32
	for _, v := range indices {
		if v > max {
			max = v
		}
	}
	if max >= 65535 {
		return scene.NewBufferAttribute(scene.Uint32Array(indices), 1, false)
	}
	short := make(scene.Uint16Array, len(indices))
	for i, v := range indices {
		short[i] = uint16(v)
	}
	return scene.NewBufferAttribute(short, 1, false)
}

// Dispose releases every GPU resource derived from geometry.
func (g *Geometries) Dispose(geometry *scene.Geometry) {
	id := geometry.ID()
	if _, ok := g.registered[id]; !ok {
		return
	}
	if geometry.Index != nil {
		g.attributes.Remove(geometry.Index)
	}
	for _, a := range geometry.Attributes {
		g.attributes.Remove(a)
	}
	for _, list := range geometry.MorphAttributes {
		for _, a := range list {
			g.attributes.Remove(a)
		}
	}
	if rec, ok := g.wireframes[id]; ok {
		g.attributes.Remove(rec.attribute)
		delete(g.wireframes, id)
	}
	g.bindingStates.ReleaseStatesOfGeometry(id)
	delete(g.registered, id)
	g.info.Memory.Geometries--
}

// DisposeAll releases every registered geometry.
func (g *Geometries) DisposeAll() {
	for _, geometry := range g.registered {
		g.Dispose(geometry)
	}
}
