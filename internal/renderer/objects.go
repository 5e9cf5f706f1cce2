package renderer

import (
	"GopherScene/internal/gpu"
	"GopherScene/internal/scene"
)

// Objects memoizes per frame updates so shared geometries and skeletons upload once.
type Objects struct {
	info       *Info
	geometries *Geometries
	attributes *Attributes

	geometryFrames map[int]int
	instanceFrames map[int]int
	skeletonFrames map[int]int
}

func NewObjects(geometries *Geometries, attributes *Attributes, info *Info) *Objects {
	return &Objects{
		info:           info,
		geometries:     geometries,
		attributes:     attributes,
		geometryFrames: make(map[int]int),
		instanceFrames: make(map[int]int),
		skeletonFrames: make(map[int]int),
	}
}

func seenThisFrame(frames map[int]int, id, frame int) bool {
	if f, ok := frames[id]; ok && f == frame {
		return true
	}
	frames[id] = frame
	return false
}

// Update brings object's geometry, instance buffers and skeleton up to date, each at most
// once per frame.
func (o *Objects) Update(object *scene.Object) (*scene.Geometry, error) {
	if object.Geometry == nil {
		return nil, ErrNilGeometry
	}
	frame := o.info.Render.Frame
	geometry := o.geometries.Get(object.Geometry)

	if !seenThisFrame(o.geometryFrames, geometry.ID(), frame) {
		o.geometries.Update(geometry)
	}

	if object.Kind == scene.KindInstancedMesh && !seenThisFrame(o.instanceFrames, object.ID(), frame) {
		if object.InstanceMatrix != nil {
			o.attributes.Update(object.InstanceMatrix, gpu.ARRAY_BUFFER)
		}
		if object.InstanceColor != nil {
			o.attributes.Update(object.InstanceColor, gpu.ARRAY_BUFFER)
		}
	}

	if object.Kind == scene.KindSkinnedMesh && object.Skeleton != nil {
		if !seenThisFrame(o.skeletonFrames, object.Skeleton.ID(), frame) {
			object.Skeleton.Update()
		}
	}
	return geometry, nil
}

func (o *Objects) Dispose() {
	o.geometryFrames = make(map[int]int)
	o.instanceFrames = make(map[int]int)
	o.skeletonFrames = make(map[int]int)
}
