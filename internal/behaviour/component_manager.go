package behaviour

import "golang.org/x/exp/slices"

// ComponentManager owns the registered game objects in registration order.
type ComponentManager struct {
	gameObjects []*GameObject
	toDestroy   []*GameObject
}

func NewComponentManager() *ComponentManager {
	return &ComponentManager{}
}

// RegisterGameObject adds obj and starts its components if it is active.
// Registering the same object twice is a no-op.
func (cm *ComponentManager) RegisterGameObject(obj *GameObject) {
	if slices.Contains(cm.gameObjects, obj) {
		return
	}
	cm.gameObjects = append(cm.gameObjects, obj)
	obj.internalStart()
}

// UnregisterGameObject removes obj immediately and calls OnDestroy on its components.
func (cm *ComponentManager) UnregisterGameObject(obj *GameObject) {
	i := slices.Index(cm.gameObjects, obj)
	if i < 0 {
		return
	}
	cm.gameObjects = slices.Delete(cm.gameObjects, i, i+1)
	obj.Destroy()
}

func (cm *ComponentManager) FindGameObject(name string) *GameObject {
	i := slices.IndexFunc(cm.gameObjects, func(o *GameObject) bool { return o.Name == name })
	if i < 0 {
		return nil
	}
	return cm.gameObjects[i]
}

func (cm *ComponentManager) FindGameObjectsWithTag(tag string) []*GameObject {
	var result []*GameObject
	for _, obj := range cm.gameObjects {
		if obj.Tag == tag {
			result = append(result, obj)
		}
	}
	return result
}

// UpdateAll first drops objects queued by DestroyGameObject, then updates the active
// ones. Objects activated after registration get their Start here.
func (cm *ComponentManager) UpdateAll(dt float32) {
	for _, obj := range cm.toDestroy {
		cm.UnregisterGameObject(obj)
	}
	cm.toDestroy = cm.toDestroy[:0]

	for _, obj := range cm.gameObjects {
		if !obj.Active {
			continue
		}
		obj.internalStart()
		obj.internalUpdate(dt)
	}
}

func (cm *ComponentManager) FixedUpdateAll(dt float32) {
	for _, obj := range cm.gameObjects {
		obj.internalFixedUpdate(dt)
	}
}

// DestroyGameObject queues obj for removal on the next UpdateAll.
func (cm *ComponentManager) DestroyGameObject(obj *GameObject) {
	if !slices.Contains(cm.toDestroy, obj) {
		cm.toDestroy = append(cm.toDestroy, obj)
	}
}

func (cm *ComponentManager) GetAllGameObjects() []*GameObject {
	return cm.gameObjects
}

// Clear destroys every object, including those still queued.
func (cm *ComponentManager) Clear() {
	for _, obj := range cm.gameObjects {
		obj.Destroy()
	}
	cm.gameObjects = nil
	cm.toDestroy = nil
}
