package auth

import "github.com/heraldhq/herald/notify"

// Filter returns the entities the caller may see, preserving order.
// The built-in notify.DefaultTarget is visible to everyone and is retained without
// consulting check. The input slice is not modified.
func Filter[T any](entities []T, nameOf func(T) string, check CheckFunc) []T {
	visible := make([]T, 0, len(entities))
	for _, e := range entities {
		name := nameOf(e)
		if name == notify.DefaultTarget || (check != nil && check(name)) {
			visible = append(visible, e)
		}
	}
	return visible
}
