package renderer

import (
	"sort"

	"GopherScene/internal/scene"
)

// RenderItem is one draw candidate. Items are pooled per list and reused between frames.
type RenderItem struct {
	ID          int
	Order       int // push sequence within the frame, breaks sort ties
	Object      *scene.Object
	Geometry    *scene.Geometry
	Material    *scene.Material
	GroupOrder  int
	RenderOrder int
	Z           float32
	Group       *scene.Group
}

// RenderList buckets the visible items of one scene render.
type RenderList struct {
	items      []*RenderItem
	itemsIndex int

	Opaque       []*RenderItem
	Transmissive []*RenderItem
	Transparent  []*RenderItem
}

func NewRenderList() *RenderList {
	return &RenderList{}
}

// Init starts a new frame. Pooled items are kept.
func (l *RenderList) Init() {
	l.itemsIndex = 0
	l.Opaque = l.Opaque[:0]
	l.Transmissive = l.Transmissive[:0]
	l.Transparent = l.Transparent[:0]
}

func (l *RenderList) nextItem(object *scene.Object, geometry *scene.Geometry, material *scene.Material, groupOrder int, z float32, group *scene.Group) *RenderItem {
	var item *RenderItem
	if l.itemsIndex < len(l.items) {
		item = l.items[l.itemsIndex]
	} else {
		item = &RenderItem{}
		l.items = append(l.items, item)
	}
	*item = RenderItem{
		ID:          object.ID(),
		Order:       l.itemsIndex,
		Object:      object,
		Geometry:    geometry,
		Material:    material,
		GroupOrder:  groupOrder,
		RenderOrder: object.RenderOrder,
		Z:           z,
		Group:       group,
	}
	l.itemsIndex++
	return item
}

func isTransmissive(m *scene.Material) bool {
	return m.Kind == scene.MeshPhysicalMaterial && m.Transmission > 0
}

// Push appends a candidate to its bucket.
func (l *RenderList) Push(object *scene.Object, geometry *scene.Geometry, material *scene.Material, groupOrder int, z float32, group *scene.Group) {
	item := l.nextItem(object, geometry, material, groupOrder, z, group)
	switch {
	case isTransmissive(material):
		l.Transmissive = append(l.Transmissive, item)
	case material.Transparent:
		l.Transparent = append(l.Transparent, item)
	default:
		l.Opaque = append(l.Opaque, item)
	}
}

// Unshift prepends a candidate to its bucket.
func (l *RenderList) Unshift(object *scene.Object, geometry *scene.Geometry, material *scene.Material, groupOrder int, z float32, group *scene.Group) {
	item := l.nextItem(object, geometry, material, groupOrder, z, group)
	switch {
	case isTransmissive(material):
		l.Transmissive = prepend(l.Transmissive, item)
	case material.Transparent:
		l.Transparent = prepend(l.Transparent, item)
	default:
		l.Opaque = prepend(l.Opaque, item)
	}
}

func prepend(s []*RenderItem, item *RenderItem) []*RenderItem {
	s = append(s, nil)
	copy(s[1:], s)
	s[0] = item
	return s
}

// ItemLess orders two render items.
type ItemLess func(a, b *RenderItem) bool

func painterSortStable(a, b *RenderItem) bool {
	switch {
	case a.GroupOrder != b.GroupOrder:
		return a.GroupOrder < b.GroupOrder
	case a.RenderOrder != b.RenderOrder:
		return a.RenderOrder < b.RenderOrder
	case a.Material.ID() != b.Material.ID():
		return a.Material.ID() < b.Material.ID()
	case a.Z != b.Z:
		return a.Z < b.Z
	}
	return a.Order < b.Order
}

func reversePainterSortStable(a, b *RenderItem) bool {
	switch {
	case a.GroupOrder != b.GroupOrder:
		return a.GroupOrder < b.GroupOrder
	case a.RenderOrder != b.RenderOrder:
		return a.RenderOrder < b.RenderOrder
	case a.Z != b.Z:
		return b.Z < a.Z
	}
	return a.Order < b.Order
}

// Sort orders opaque items front to back and the translucent buckets back to front.
// Nil comparators select the defaults.
func (l *RenderList) Sort(opaque, transparent ItemLess) {
	if opaque == nil {
		opaque = painterSortStable
	}
	if transparent == nil {
		transparent = reversePainterSortStable
	}
	sortItems(l.Opaque, opaque)
	sortItems(l.Transmissive, transparent)
	sortItems(l.Transparent, transparent)
}

func sortItems(items []*RenderItem, less ItemLess) {
	if len(items) > 1 {
		sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	}
}

// Finish drops references held by pooled items that were not used this frame.
func (l *RenderList) Finish() {
	for i := l.itemsIndex; i < len(l.items); i++ {
		item := l.items[i]
		if item.ID == 0 && item.Object == nil {
			break
		}
		*item = RenderItem{}
	}
}

type listKey struct {
	sceneID int
	depth   int
}

// RenderLists holds one list per scene and nested render depth.
type RenderLists struct {
	lists map[listKey]*RenderList
}

func NewRenderLists() *RenderLists {
	return &RenderLists{lists: make(map[listKey]*RenderList)}
}

// Get returns the list of scene at the nested render depth.
func (r *RenderLists) Get(sceneID, depth int) *RenderList {
	k := listKey{sceneID, depth}
	l, ok := r.lists[k]
	if !ok {
		l = NewRenderList()
		r.lists[k] = l
	}
	return l
}

func (r *RenderLists) Dispose() {
	r.lists = make(map[listKey]*RenderList)
}

// RenderState collects the lights and shadow casters of one scene render.
type RenderState struct {
	Lights       *Lights
	LightsArray  []*scene.Light
	ShadowsArray []*scene.Light
}

func NewRenderState() *RenderState {
	return &RenderState{Lights: NewLights()}
}

// Init starts a new frame.
func (s *RenderState) Init() {
	s.LightsArray = s.LightsArray[:0]
	s.ShadowsArray = s.ShadowsArray[:0]
}

func (s *RenderState) PushLight(l *scene.Light) {
	s.LightsArray = append(s.LightsArray, l)
}

func (s *RenderState) PushShadow(l *scene.Light) {
	s.ShadowsArray = append(s.ShadowsArray, l)
}

// SetupLights rebuilds the world space light uniforms.
func (s *RenderState) SetupLights(useLegacyLights bool) {
	s.Lights.Setup(s.LightsArray, useLegacyLights)
}

// SetupLightsView moves light positions into camera space.
func (s *RenderState) SetupLightsView(camera *scene.Camera) {
	s.Lights.SetupView(s.LightsArray, camera)
}

// RenderStates holds one state per scene and nested render depth.
type RenderStates struct {
	states map[listKey]*RenderState
}

func NewRenderStates() *RenderStates {
	return &RenderStates{states: make(map[listKey]*RenderState)}
}

func (r *RenderStates) Get(sceneID, depth int) *RenderState {
	k := listKey{sceneID, depth}
	s, ok := r.states[k]
	if !ok {
		s = NewRenderState()
		r.states[k] = s
	}
	return s
}

func (r *RenderStates) Dispose() {
	r.states = make(map[listKey]*RenderState)
}
