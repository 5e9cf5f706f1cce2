// Package scene holds the object model the renderer consumes: transforms, meshes,
// materials, textures, lights and cameras. Resources get a stable integer id at
// construction which the renderer uses to key its side tables.
package scene

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

var lastID int64

// NextID returns a process-unique resource id.
func NextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

type ObjectKind int

const (
	KindGroup ObjectKind = iota
	KindMesh
	KindInstancedMesh
	KindSkinnedMesh
	KindPoints
	KindLine
	KindLineSegments
	KindLineLoop
	KindSprite
	KindLight
	KindCamera
	KindBone
	KindScene
)

// Layers is a 32 bit visibility mask. An object renders for a camera when they share a bit.
type Layers uint32

func (l *Layers) Set(channel int)    { *l = Layers(1 << uint(channel)) }
func (l *Layers) Enable(channel int) { *l |= Layers(1 << uint(channel)) }
func (l *Layers) Disable(channel int) {
	*l &^= Layers(1 << uint(channel))
}
func (l Layers) Test(other Layers) bool { return l&other != 0 }

// Group is a draw range of a geometry rendered with one material.
type Group struct {
	Start         int
	Count         int
	MaterialIndex int
}

type Object struct {
	id       int
	Name     string
	Kind     ObjectKind
	Parent   *Object
	Children []*Object

	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Matrix           mgl32.Mat4
	MatrixWorld      mgl32.Mat4
	MatrixAutoUpdate bool
	ModelViewMatrix  mgl32.Mat4
	NormalMatrix     mgl32.Mat3

	Visible       bool
	Layers        Layers
	RenderOrder   int
	FrustumCulled bool
	CastShadow    bool
	ReceiveShadow bool

	Geometry  *Geometry
	Material  *Material
	Materials []*Material

	// Instancing
	InstanceMatrix *BufferAttribute
	InstanceColor  *BufferAttribute
	Count          int

	// Skinning
	Skeleton          *Skeleton
	BindMatrix        mgl32.Mat4
	BindMatrixInverse mgl32.Mat4

	MorphTargetInfluences []float32

	UserData map[string]any

	light  *Light
	camera *Camera
}

func (o *Object) init(kind ObjectKind) {
	o.id = NextID()
	o.Kind = kind
	o.Rotation = mgl32.QuatIdent()
	o.Scale = mgl32.Vec3{1, 1, 1}
	o.Matrix = mgl32.Ident4()
	o.MatrixWorld = mgl32.Ident4()
	o.MatrixAutoUpdate = true
	o.Visible = true
	o.Layers = 1
	o.FrustumCulled = true
	o.BindMatrix = mgl32.Ident4()
	o.BindMatrixInverse = mgl32.Ident4()
}

// NewObject returns an empty object of the given kind.
func NewObject(kind ObjectKind) *Object {
	o := &Object{}
	o.init(kind)
	return o
}

// NewGroup returns an empty transform node.
func NewGroup() *Object { return NewObject(KindGroup) }

// NewMesh returns a triangle mesh.
func NewMesh(g *Geometry, m *Material) *Object {
	o := NewObject(KindMesh)
	o.Geometry, o.Material = g, m
	return o
}

// NewMultiMaterialMesh returns a mesh whose geometry groups index materials.
func NewMultiMaterialMesh(g *Geometry, materials []*Material) *Object {
	o := NewObject(KindMesh)
	o.Geometry, o.Materials = g, materials
	return o
}

// NewInstancedMesh returns a mesh drawn count times with per-instance matrices.
func NewInstancedMesh(g *Geometry, m *Material, count int) *Object {
	o := NewObject(KindInstancedMesh)
	o.Geometry, o.Material, o.Count = g, m, count
	mats := make(Float32Array, 16*count)
	ident := mgl32.Ident4()
	for i := 0; i < count; i++ {
		copy(mats[i*16:], ident[:])
	}
	o.InstanceMatrix = NewBufferAttribute(mats, 16, false)
	o.InstanceMatrix.Instanced = true
	o.InstanceMatrix.MeshPerAttribute = 1
	o.InstanceMatrix.Usage = DynamicDrawUsage
	return o
}

// SetMatrixAt writes the instance matrix at index i and marks it for upload.
func (o *Object) SetMatrixAt(i int, m mgl32.Mat4) {
	copy(o.InstanceMatrix.Array.(Float32Array)[i*16:], m[:])
	o.InstanceMatrix.NeedsUpdate()
}

// SetColorAt writes the instance color at index i, creating the color attribute on first use.
func (o *Object) SetColorAt(i int, c mgl32.Vec3) {
	if o.InstanceColor == nil {
		cols := make(Float32Array, 3*o.Count)
		for j := range cols {
			cols[j] = 1
		}
		o.InstanceColor = NewBufferAttribute(cols, 3, false)
		o.InstanceColor.Instanced = true
		o.InstanceColor.MeshPerAttribute = 1
		o.InstanceColor.Usage = DynamicDrawUsage
	}
	copy(o.InstanceColor.Array.(Float32Array)[i*3:], c[:])
	o.InstanceColor.NeedsUpdate()
}

// NewSkinnedMesh returns a mesh deformed by a skeleton.
func NewSkinnedMesh(g *Geometry, m *Material, s *Skeleton) *Object {
	o := NewObject(KindSkinnedMesh)
	o.Geometry, o.Material, o.Skeleton = g, m, s
	return o
}

// NewPoints returns a point cloud.
func NewPoints(g *Geometry, m *Material) *Object {
	o := NewObject(KindPoints)
	o.Geometry, o.Material = g, m
	return o
}

// NewLine returns a line strip, segment list or loop depending on kind.
func NewLine(kind ObjectKind, g *Geometry, m *Material) *Object {
	o := NewObject(kind)
	o.Geometry, o.Material = g, m
	return o
}

func (o *Object) ID() int { return o.id }

// Light returns the light this object belongs to, or nil.
func (o *Object) Light() *Light { return o.light }

// Camera returns the camera this object belongs to, or nil.
func (o *Object) Camera() *Camera { return o.camera }

// IsMesh reports whether the object draws triangles.
func (o *Object) IsMesh() bool {
	return o.Kind == KindMesh || o.Kind == KindInstancedMesh || o.Kind == KindSkinnedMesh
}

// IsLine reports whether the object draws line primitives.
func (o *Object) IsLine() bool {
	return o.Kind == KindLine || o.Kind == KindLineSegments || o.Kind == KindLineLoop
}

// Add attaches children, detaching them from a previous parent.
func (o *Object) Add(children ...*Object) {
	for _, c := range children {
		if c == o {
			continue
		}
		if c.Parent != nil {
			c.Parent.Remove(c)
		}
		c.Parent = o
		o.Children = append(o.Children, c)
	}
}

// Remove detaches a child.
func (o *Object) Remove(child *Object) {
	for i, c := range o.Children {
		if c == child {
			o.Children = append(o.Children[:i], o.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// Traverse visits o and all descendants depth first.
func (o *Object) Traverse(fn func(*Object)) {
	fn(o)
	for _, c := range o.Children {
		c.Traverse(fn)
	}
}

// UpdateMatrix composes Matrix from position, rotation and scale.
func (o *Object) UpdateMatrix() {
	o.Matrix = mgl32.Translate3D(o.Position.X(), o.Position.Y(), o.Position.Z()).
		Mul4(o.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(o.Scale.X(), o.Scale.Y(), o.Scale.Z()))
}

// UpdateMatrixWorld recomputes world matrices for the subtree.
func (o *Object) UpdateMatrixWorld() {
	if o.MatrixAutoUpdate {
		o.UpdateMatrix()
	}
	if o.Parent == nil {
		o.MatrixWorld = o.Matrix
	} else {
		o.MatrixWorld = o.Parent.MatrixWorld.Mul4(o.Matrix)
	}
	if o.camera != nil {
		o.camera.MatrixWorldInverse = o.MatrixWorld.Inv()
	}
	for _, c := range o.Children {
		c.UpdateMatrixWorld()
	}
}

// WorldPosition returns the translation part of MatrixWorld.
func (o *Object) WorldPosition() mgl32.Vec3 {
	return o.MatrixWorld.Col(3).Vec3()
}

// LookAt rotates the object so its -Z axis points at target.
func (o *Object) LookAt(target mgl32.Vec3) {
	up := mgl32.Vec3{0, 1, 0}
	dir := target.Sub(o.Position)
	if dir.Len() == 0 {
		return
	}
	if abs(dir.Normalize().Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(o.Position, target, up)
	o.Rotation = mgl32.Mat4ToQuat(view.Inv())
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
