package renderer

import (
	"testing"

	"GopherScene/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupReusesCachedBindingState(t *testing.T) {
	r, rec := newTestRenderer(t, DefaultConfig())
	box := basicBox()
	sc := scene.NewScene()
	sc.Add(box)
	require.NoError(t, r.Render(sc, newTestCamera()))

	program := r.properties.Get(box.Material.ID()).currentProgram
	require.NotNil(t, program)
	g := box.Geometry

	first := r.bindingStates.Setup(box, box.Material, program, g, g.Index)
	rec.ResetCalls()
	second := r.bindingStates.Setup(box, box.Material, program, g, g.Index)

	assert.Same(t, first, second)
	assert.Zero(t, rec.Count("BindVertexArray"))
	assert.Zero(t, rec.Count("VertexAttribPointer"))
	assert.Zero(t, rec.Count("EnableVertexAttribArray"))
}

func TestWireframeGetsItsOwnBindingState(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	box := basicBox()
	sc := scene.NewScene()
	sc.Add(box)
	require.NoError(t, r.Render(sc, newTestCamera()))

	program := r.properties.Get(box.Material.ID()).currentProgram
	require.NotNil(t, program)
	g := box.Geometry

	solid := r.bindingStates.Setup(box, box.Material, program, g, g.Index)
	box.Material.Wireframe = true
	wire := r.bindingStates.Setup(box, box.Material, program, g, g.Index)

	assert.NotSame(t, solid, wire)
}
