package loader

import (
	"bytes"
	"fmt"
	"path/filepath"

	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

// LoadGLTF opens a .gltf or .glb file and returns its default scene as a group.
// Metallic-roughness materials map onto MeshStandardMaterial.
func LoadGLTF(path string) (*scene.Object, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	root, err := BuildGLTF(doc, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("gltf %q: %w", path, err)
	}
	root.Name = filepath.Base(path)
	return root, nil
}

// BuildGLTF converts a decoded document. External images resolve relative to dir.
func BuildGLTF(doc *gltf.Document, dir string) (*scene.Object, error) {
	b := gltfBuilder{doc: doc, dir: dir}
	b.textures = make([]*scene.Texture, len(doc.Textures))
	for i := range doc.Textures {
		b.textures[i] = b.texture(i)
	}
	b.materials = make([]*scene.Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		b.materials[i] = b.material(gm)
	}

	meshes := make([][]*scene.Object, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			o, err := b.primitive(prim)
			if err != nil {
				logger.Log.Warn("Skipping glTF primitive",
					zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			o.Name = fmt.Sprintf("%s_%d", gm.Name, pi)
			meshes[mi] = append(meshes[mi], o)
		}
	}

	nodes := make([]*scene.Object, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		n := scene.NewGroup()
		n.Name = gn.Name
		t, r, s := gn.TranslationOrDefault(), gn.RotationOrDefault(), gn.ScaleOrDefault()
		n.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
		n.Rotation = mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
		n.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
		if gn.Mesh != nil && *gn.Mesh < len(meshes) {
			// nodes reusing a mesh share its geometry and materials, not its objects
			for _, prim := range meshes[*gn.Mesh] {
				c := scene.NewObject(prim.Kind)
				c.Name = prim.Name
				c.Geometry, c.Material = prim.Geometry, prim.Material
				n.Add(c)
			}
		}
		nodes[i] = n
	}

	hasParent := make([]bool, len(nodes))
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(nodes) {
				nodes[i].Add(nodes[c])
				hasParent[c] = true
			}
		}
	}

	root := scene.NewGroup()
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, i := range doc.Scenes[*doc.Scene].Nodes {
			if i < len(nodes) {
				root.Add(nodes[i])
			}
		}
	} else {
		for i, n := range nodes {
			if !hasParent[i] {
				root.Add(n)
			}
		}
	}
	root.UpdateMatrixWorld()

	logger.Log.Debug("glTF built",
		zap.Int("nodes", len(nodes)),
		zap.Int("meshes", len(meshes)),
		zap.Int("materials", len(b.materials)),
		zap.Int("textures", len(b.textures)))
	return root, nil
}

type gltfBuilder struct {
	doc       *gltf.Document
	dir       string
	textures  []*scene.Texture
	materials []*scene.Material
}

func (b *gltfBuilder) texture(i int) *scene.Texture {
	gt := b.doc.Textures[i]
	if gt.Source == nil || *gt.Source >= len(b.doc.Images) {
		return nil
	}
	img := b.doc.Images[*gt.Source]

	var (
		src *scene.Source
		err error
	)
	switch {
	case img.BufferView != nil:
		var raw []byte
		raw, err = modeler.ReadBufferView(b.doc, b.doc.BufferViews[*img.BufferView])
		if err == nil {
			src, err = DecodeImage(bytes.NewReader(raw))
		}
	case img.IsEmbeddedResource():
		var raw []byte
		raw, err = img.MarshalData()
		if err == nil {
			src, err = DecodeImage(bytes.NewReader(raw))
		}
	case img.URI != "":
		var t *scene.Texture
		t, err = LoadImage(filepath.Join(b.dir, img.URI))
		if t != nil {
			src = t.Source
		}
	}
	if err != nil || src == nil {
		logger.Log.Warn("Skipping glTF image", zap.Int("image", *gt.Source), zap.Error(err))
		return nil
	}

	tex := scene.NewTexture(src)
	tex.Name = img.Name
	// glTF UVs have their origin at the top left
	tex.FlipY = false
	tex.WrapS, tex.WrapT = scene.RepeatWrapping, scene.RepeatWrapping
	if gt.Sampler != nil && *gt.Sampler < len(b.doc.Samplers) {
		s := b.doc.Samplers[*gt.Sampler]
		tex.WrapS = wrapping(s.WrapS)
		tex.WrapT = wrapping(s.WrapT)
		if s.MagFilter == gltf.MagNearest {
			tex.MagFilter = scene.NearestFilter
		}
	}
	return tex
}

func wrapping(w gltf.WrappingMode) scene.Wrapping {
	switch w {
	case gltf.WrapClampToEdge:
		return scene.ClampToEdgeWrapping
	case gltf.WrapMirroredRepeat:
		return scene.MirroredRepeatWrapping
	}
	return scene.RepeatWrapping
}

// textureAt returns a clone so per-material color space does not leak between uses.
func (b *gltfBuilder) textureAt(i int, cs scene.ColorSpace) *scene.Texture {
	if i < 0 || i >= len(b.textures) || b.textures[i] == nil {
		return nil
	}
	t := b.textures[i].Clone()
	t.ColorSpace = cs
	return t
}

func (b *gltfBuilder) material(gm *gltf.Material) *scene.Material {
	m := scene.NewMaterial(scene.MeshStandardMaterial)
	m.Name = gm.Name
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		m.Color = mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}
		m.Opacity = float32(c[3])
		m.Metalness = float32(pbr.MetallicFactorOrDefault())
		m.Roughness = float32(pbr.RoughnessFactorOrDefault())
		if pbr.BaseColorTexture != nil {
			m.Map = b.textureAt(pbr.BaseColorTexture.Index, scene.SRGBColorSpace)
		}
		if pbr.MetallicRoughnessTexture != nil {
			mr := b.textureAt(pbr.MetallicRoughnessTexture.Index, scene.NoColorSpace)
			m.RoughnessMap, m.MetalnessMap = mr, mr
		}
	}
	if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
		m.NormalMap = b.textureAt(*nt.Index, scene.NoColorSpace)
		s := float32(nt.ScaleOrDefault())
		m.NormalScale = mgl32.Vec2{s, s}
	}
	if ot := gm.OcclusionTexture; ot != nil && ot.Index != nil {
		m.AOMap = b.textureAt(*ot.Index, scene.NoColorSpace)
		m.AOMapIntensity = float32(ot.StrengthOrDefault())
	}
	if gm.EmissiveTexture != nil {
		m.EmissiveMap = b.textureAt(gm.EmissiveTexture.Index, scene.SRGBColorSpace)
	}
	e := gm.EmissiveFactor
	m.Emissive = mgl32.Vec3{float32(e[0]), float32(e[1]), float32(e[2])}

	switch gm.AlphaMode {
	case gltf.AlphaBlend:
		m.Transparent = true
		m.DepthWrite = false
	case gltf.AlphaMask:
		m.AlphaTest = float32(gm.AlphaCutoffOrDefault())
	}
	if gm.DoubleSided {
		m.Side = scene.DoubleSide
	}
	return m
}

func (b *gltfBuilder) primitive(prim *gltf.Primitive) (*scene.Object, error) {
	doc := b.doc
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	g := scene.NewGeometry()
	g.SetAttribute("position", scene.NewBufferAttribute(flatten3(positions), 3, false))

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		g.SetAttribute("normal", scene.NewBufferAttribute(flatten3(normals), 3, false))
	}
	for set, name := range []string{"uv", "uv1"} {
		idx, ok := prim.Attributes[fmt.Sprintf("TEXCOORD_%d", set)]
		if !ok {
			continue
		}
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("texcoord %d: %w", set, err)
		}
		flat := make(scene.Float32Array, 0, len(uvs)*2)
		for _, uv := range uvs {
			flat = append(flat, uv[0], uv[1])
		}
		g.SetAttribute(name, scene.NewBufferAttribute(flat, 2, false))
	}
	if idx, ok := prim.Attributes["TANGENT"]; ok {
		tangents, err := modeler.ReadTangent(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("tangents: %w", err)
		}
		flat := make(scene.Float32Array, 0, len(tangents)*4)
		for _, t := range tangents {
			flat = append(flat, t[:]...)
		}
		g.SetAttribute("tangent", scene.NewBufferAttribute(flat, 4, false))
	}
	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		g.SetIndex(scene.NewBufferAttribute(scene.Uint32Array(indices), 1, false))
	}
	if g.Attribute("normal") == nil && g.Index != nil && prim.Mode == gltf.PrimitiveTriangles {
		pos := g.Attribute("position").(*scene.BufferAttribute).Array.(scene.Float32Array)
		g.SetAttribute("normal", scene.NewBufferAttribute(RecalculateNormals(pos, g.Index.Array.(scene.Uint32Array)), 3, false))
	}
	g.ComputeBoundingSphere()

	var m *scene.Material
	if prim.Material != nil && *prim.Material < len(b.materials) {
		m = b.materials[*prim.Material]
	} else {
		m = scene.NewMaterial(scene.MeshStandardMaterial)
	}
	if _, ok := prim.Attributes["TANGENT"]; ok && m.NormalMap != nil {
		m.Defines["USE_TANGENT"] = ""
	}

	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		return scene.NewMesh(g, m), nil
	case gltf.PrimitivePoints:
		pm := scene.NewMaterial(scene.PointsMaterial)
		pm.Color, pm.Map = m.Color, m.Map
		return scene.NewPoints(g, pm), nil
	case gltf.PrimitiveLines:
		return scene.NewLine(scene.KindLineSegments, g, lineMaterial(m)), nil
	case gltf.PrimitiveLineStrip:
		return scene.NewLine(scene.KindLine, g, lineMaterial(m)), nil
	case gltf.PrimitiveLineLoop:
		return scene.NewLine(scene.KindLineLoop, g, lineMaterial(m)), nil
	}
	return nil, fmt.Errorf("unsupported primitive mode %v", prim.Mode)
}

func lineMaterial(m *scene.Material) *scene.Material {
	lm := scene.NewMaterial(scene.LineBasicMaterial)
	lm.Color = m.Color
	return lm
}

func flatten3(v [][3]float32) scene.Float32Array {
	out := make(scene.Float32Array, 0, len(v)*3)
	for _, p := range v {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}
