package behaviour

import (
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Component is the base interface for all components.
// Components are attached to game objects and driven by a Manager.
type Component interface {
	// Lifecycle methods
	Awake()                 // Called when the component is attached
	Start()                 // Called before the first Update
	Update(dt float32)      // Called every frame
	FixedUpdate(dt float32) // Called at fixed time steps
	OnDestroy()             // Called when the component or its object is destroyed

	GetEnabled() bool
	SetEnabled(bool)
	GetGameObject() *GameObject
	SetGameObject(*GameObject)
}

// BaseComponent provides default implementations for all Component methods.
// Scripts embed it and override only what they need.
type BaseComponent struct {
	enabled    bool
	gameObject *GameObject
}

func (c *BaseComponent) Awake()                 {}
func (c *BaseComponent) Start()                 {}
func (c *BaseComponent) Update(dt float32)      {}
func (c *BaseComponent) FixedUpdate(dt float32) {}
func (c *BaseComponent) OnDestroy()             {}

func (c *BaseComponent) GetEnabled() bool {
	return c.enabled
}

func (c *BaseComponent) SetEnabled(enabled bool) {
	c.enabled = enabled
}

func (c *BaseComponent) GetGameObject() *GameObject {
	return c.gameObject
}

func (c *BaseComponent) SetGameObject(obj *GameObject) {
	c.gameObject = obj
}

// GameObject attaches components to a scene object. Transform helpers write
// straight into the object so the renderer sees changes on the next frame.
type GameObject struct {
	Name       string
	Tag        string
	Active     bool
	Object     *scene.Object
	Components []Component

	started bool
}

// NewGameObject wraps obj, or a fresh group when obj is nil.
func NewGameObject(name string, obj *scene.Object) *GameObject {
	if obj == nil {
		obj = scene.NewGroup()
	}
	if obj.Name == "" {
		obj.Name = name
	}
	return &GameObject{Name: name, Active: true, Object: obj}
}

func (obj *GameObject) Translate(delta mgl32.Vec3) {
	obj.Object.Position = obj.Object.Position.Add(delta)
}

// Rotate applies angle radians about a local axis.
func (obj *GameObject) Rotate(axis mgl32.Vec3, angle float32) {
	obj.Object.Rotation = obj.Object.Rotation.Mul(mgl32.QuatRotate(angle, axis)).Normalize()
}

func (obj *GameObject) Forward() mgl32.Vec3 {
	return obj.Object.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (obj *GameObject) Up() mgl32.Vec3 {
	return obj.Object.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

func (obj *GameObject) Right() mgl32.Vec3 {
	return obj.Object.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
}

func (obj *GameObject) AddComponent(component Component) {
	component.SetGameObject(obj)
	component.SetEnabled(true)
	obj.Components = append(obj.Components, component)
	component.Awake()
	// late additions to a running object start on the next update
	if obj.started {
		component.Start()
	}
}

// GetComponent returns the first component for which match reports true.
func (obj *GameObject) GetComponent(match func(Component) bool) Component {
	for _, comp := range obj.Components {
		if match(comp) {
			return comp
		}
	}
	return nil
}

func (obj *GameObject) RemoveComponent(component Component) {
	for i, comp := range obj.Components {
		if comp == component {
			comp.OnDestroy()
			obj.Components = append(obj.Components[:i], obj.Components[i+1:]...)
			return
		}
	}
}

func (obj *GameObject) internalStart() {
	if obj.started || !obj.Active {
		return
	}
	obj.started = true
	for _, comp := range obj.Components {
		if comp.GetEnabled() {
			comp.Start()
		}
	}
}

func (obj *GameObject) internalUpdate(dt float32) {
	if !obj.Active {
		return
	}
	for _, comp := range obj.Components {
		if comp.GetEnabled() {
			comp.Update(dt)
		}
	}
}

func (obj *GameObject) internalFixedUpdate(dt float32) {
	if !obj.Active {
		return
	}
	for _, comp := range obj.Components {
		if comp.GetEnabled() {
			comp.FixedUpdate(dt)
		}
	}
}

func (obj *GameObject) Destroy() {
	for _, comp := range obj.Components {
		comp.OnDestroy()
	}
	obj.Active = false
}
