package renderer

import (
	"testing"

	"GopherScene/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pushMesh(l *RenderList, m *scene.Material, z float32, renderOrder int) *scene.Object {
	o := scene.NewMesh(scene.NewPlaneGeometry(1, 1), m)
	o.RenderOrder = renderOrder
	l.Push(o, o.Geometry, m, 0, z, nil)
	return o
}

func objectsOf(items []*RenderItem) []*scene.Object {
	out := make([]*scene.Object, len(items))
	for i, it := range items {
		out[i] = it.Object
	}
	return out
}

func TestPushBucketsByMaterial(t *testing.T) {
	l := NewRenderList()
	l.Init()

	transparent := scene.NewMaterial(scene.MeshBasicMaterial)
	transparent.Transparent = true
	glass := scene.NewMaterial(scene.MeshPhysicalMaterial)
	glass.Transmission = 1
	glass.Transparent = true

	pushMesh(l, scene.NewMaterial(scene.MeshBasicMaterial), 0, 0)
	pushMesh(l, transparent, 0, 0)
	pushMesh(l, glass, 0, 0)

	assert.Len(t, l.Opaque, 1)
	assert.Len(t, l.Transparent, 1)
	assert.Len(t, l.Transmissive, 1)
}

func TestOpaqueSortsFrontToBackWithinMaterial(t *testing.T) {
	l := NewRenderList()
	l.Init()
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	far := pushMesh(l, m, 0.9, 0)
	near := pushMesh(l, m, 0.1, 0)

	l.Sort(nil, nil)

	assert.Equal(t, []*scene.Object{near, far}, objectsOf(l.Opaque))
}

func TestRenderOrderWinsOverDepth(t *testing.T) {
	l := NewRenderList()
	l.Init()
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	late := pushMesh(l, m, 0.1, 1)
	early := pushMesh(l, m, 0.9, 0)

	l.Sort(nil, nil)

	assert.Equal(t, []*scene.Object{early, late}, objectsOf(l.Opaque))
}

func TestTransparentSortsBackToFront(t *testing.T) {
	l := NewRenderList()
	l.Init()
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	m.Transparent = true
	near := pushMesh(l, m, 0.1, 0)
	far := pushMesh(l, m, 0.9, 0)

	l.Sort(nil, nil)

	assert.Equal(t, []*scene.Object{far, near}, objectsOf(l.Transparent))
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	l := NewRenderList()
	l.Init()
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	o := scene.NewMesh(scene.NewPlaneGeometry(1, 1), m)
	// one object split in groups yields items with equal keys
	groups := []*scene.Group{{Start: 0, Count: 3}, {Start: 3, Count: 3}, {Start: 6, Count: 3}}
	for _, g := range groups {
		l.Push(o, o.Geometry, m, 0, 0.5, g)
	}

	l.Sort(nil, nil)

	require.Len(t, l.Opaque, 3)
	for i, g := range groups {
		assert.Same(t, g, l.Opaque[i].Group)
	}
}

func TestEqualKeysSortInPushOrder(t *testing.T) {
	l := NewRenderList()
	l.Init()
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	older := scene.NewMesh(scene.NewPlaneGeometry(1, 1), m)
	newer := scene.NewMesh(scene.NewPlaneGeometry(1, 1), m)
	require.Less(t, older.ID(), newer.ID())

	l.Push(newer, newer.Geometry, m, 0, 0.5, nil)
	l.Push(older, older.Geometry, m, 0, 0.5, nil)
	l.Sort(nil, nil)

	assert.Equal(t, []*scene.Object{newer, older}, objectsOf(l.Opaque))
}

func TestUnshiftPrepends(t *testing.T) {
	l := NewRenderList()
	l.Init()
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	first := pushMesh(l, m, 0, 0)
	bg := scene.NewMesh(scene.NewPlaneGeometry(2, 2), m)
	l.Unshift(bg, bg.Geometry, m, 0, 0, nil)

	assert.Equal(t, []*scene.Object{bg, first}, objectsOf(l.Opaque))
}

func TestInitReusesItemsAndFinishClearsTheRest(t *testing.T) {
	l := NewRenderList()
	l.Init()
	m := scene.NewMaterial(scene.MeshBasicMaterial)
	pushMesh(l, m, 0, 0)
	pushMesh(l, m, 0, 0)
	second := l.items[1]

	l.Init()
	pushMesh(l, m, 0, 0)
	l.Finish()

	assert.Len(t, l.items, 2)
	assert.Nil(t, second.Object)
	assert.Nil(t, second.Material)
}

func TestRenderListsKeyedBySceneAndDepth(t *testing.T) {
	lists := NewRenderLists()
	a := lists.Get(1, 0)

	assert.Same(t, a, lists.Get(1, 0))
	assert.NotSame(t, a, lists.Get(1, 1))
	assert.NotSame(t, a, lists.Get(2, 0))

	lists.Dispose()
	assert.NotSame(t, a, lists.Get(1, 0))
}
