//go:build !windows

package engine

import "github.com/go-gl/glfw/v3.3/glfw"

// applyDarkTitleBar is only supported on Windows.
func applyDarkTitleBar(*glfw.Window) {}
