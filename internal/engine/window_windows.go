//go:build windows

package engine

import (
	"syscall"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var (
	dwmapi                    = syscall.NewLazyDLL("dwmapi.dll")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

const (
	dwmwaUseImmersiveDarkMode = 20
	dwmwaBorderColor          = 34
	dwmwaCaptionColor         = 35
)

func setDwmAttribute(hwnd unsafe.Pointer, attr uintptr, value uint32) {
	procDwmSetWindowAttribute.Call(uintptr(hwnd), attr, uintptr(unsafe.Pointer(&value)), unsafe.Sizeof(value))
}

// applyDarkTitleBar switches the native caption to dark mode. Failures are ignored
// on Windows versions without DWM attributes.
func applyDarkTitleBar(window *glfw.Window) {
	hwnd := window.GetWin32Window()
	if hwnd == nil {
		return
	}
	p := unsafe.Pointer(hwnd)
	setDwmAttribute(p, dwmwaUseImmersiveDarkMode, 1)
	setDwmAttribute(p, dwmwaBorderColor, 0x00000000)
	setDwmAttribute(p, dwmwaCaptionColor, 0x00202020)
}
