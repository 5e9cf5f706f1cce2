package behaviour

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type ScriptConstructor func() Component

var scriptRegistry = make(map[string]ScriptConstructor)

func RegisterScript(name string, constructor ScriptConstructor) {
	scriptRegistry[name] = constructor
}

// GetAvailableScripts returns the registered names in sorted order.
func GetAvailableScripts() []string {
	names := maps.Keys(scriptRegistry)
	slices.Sort(names)
	return names
}

// CreateScript returns nil for unknown names.
func CreateScript(name string) Component {
	if constructor, exists := scriptRegistry[name]; exists {
		return constructor()
	}
	return nil
}
