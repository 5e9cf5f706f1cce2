// Package engine owns the window, the GL context and the frame loop around a renderer.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"GopherScene/internal/behaviour"
	"GopherScene/internal/gpu/glbackend"
	"GopherScene/internal/logger"
	"GopherScene/internal/renderer"
	"GopherScene/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Gopher runs a scene in a window. Everything except the exported callbacks must be used
// from the goroutine that calls Run.
type Gopher struct {
	Config     Config
	ConfigPath string

	Scene      *scene.Scene
	Camera     *scene.Camera
	Controls   *FlyCamera
	Behaviours *behaviour.BehaviourManager
	Renderer   *renderer.Renderer

	// EnableCameraInput toggles keyboard and mouse camera control
	EnableCameraInput bool

	// OnUpdate runs once per frame after behaviours and before rendering
	OnUpdate func(dt float32)
	// OnConfig runs after a reloaded config was applied
	OnConfig func(cfg Config)
	// OnPick receives the object under the cursor on left click
	OnPick func(hit Hit)

	window           *glfw.Window
	width, height    int
	lastX, lastY     float64
	firstMouse       bool
	framebufferDirty bool
}

func NewGopher(cfg Config) *Gopher {
	logger.Init()
	logger.SetLevel(logger.ParseLevel(cfg.Renderer.LogLevel))
	logger.Log.Info("GopherScene initializing...")

	cfg.Validate()
	cam := scene.NewPerspectiveCamera(cfg.Camera.Fov,
		float32(cfg.Window.Width)/float32(cfg.Window.Height), cfg.Camera.Near, cfg.Camera.Far)
	cam.Name = "MainCamera"
	cam.Position = mgl32.Vec3(cfg.Camera.Position)

	g := &Gopher{
		Config:            cfg,
		Scene:             scene.NewScene(),
		Camera:            cam,
		Controls:          NewFlyCamera(cam),
		Behaviours:        behaviour.NewBehaviourManager(),
		EnableCameraInput: true,
		width:             cfg.Window.Width,
		height:            cfg.Window.Height,
		firstMouse:        true,
	}
	g.applyCameraConfig(cfg.Camera)
	if cfg.Camera.Target != cfg.Camera.Position {
		g.Controls.LookAt(mgl32.Vec3(cfg.Camera.Target))
	}
	return g
}

func (g *Gopher) applyCameraConfig(c CameraConfig) {
	g.Controls.Speed = c.Speed
	g.Controls.Sensitivity = c.Sensitivity
	g.Controls.InvertMouse = c.InvertMouse
	g.Camera.Fov, g.Camera.Near, g.Camera.Far = c.Fov, c.Near, c.Far
	g.Camera.UpdateProjection()
}

// Run opens the window and renders until it is closed or ctx is done. It locks the
// calling goroutine to its OS thread, as GL contexts are thread bound.
func (g *Gopher) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	win := g.Config.Window
	glfw.WindowHint(glfw.Decorated, boolHint(win.Decorated))
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.StencilBits, 8)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(win.Width, win.Height, win.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	g.window = window
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return fmt.Errorf("init OpenGL: %w", err)
	}
	g.setVSync(win.VSync)
	if win.X >= 0 && win.Y >= 0 {
		window.SetPos(win.X, win.Y)
	}
	if win.DarkTitleBar {
		applyDarkTitleBar(window)
	}
	logger.Log.Info("OpenGL context ready", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	g.width, g.height = window.GetSize()
	g.Renderer, err = renderer.New(glbackend.New(), g.Config.Renderer, g.width, g.height)
	if err != nil {
		return err
	}
	defer g.Renderer.Dispose()
	g.updatePixelRatio()
	g.Camera.SetAspect(float32(g.width) / float32(g.height))

	window.SetSizeCallback(g.sizeCallback)
	window.SetFramebufferSizeCallback(func(*glfw.Window, int, int) { g.framebufferDirty = true })
	window.SetCursorPosCallback(g.mouseCallback)
	window.SetMouseButtonCallback(g.mouseButtonCallback)
	window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)

	var reloads <-chan Config
	if g.Config.WatchConfig && g.ConfigPath != "" {
		if reloads, err = WatchConfig(ctx, g.ConfigPath); err != nil {
			logger.Log.Warn("Config watching disabled", zap.String("path", g.ConfigPath), zap.Error(err))
		}
	}

	return g.loop(ctx, reloads)
}

func (g *Gopher) loop(ctx context.Context, reloads <-chan Config) error {
	keys := glfwKeys{g.window}
	last := glfw.GetTime()
	for !g.window.ShouldClose() {
		select {
		case <-ctx.Done():
			g.window.SetShouldClose(true)
			continue
		case cfg, ok := <-reloads:
			if ok {
				g.ApplyConfig(cfg)
			} else {
				reloads = nil
			}
		default:
		}

		now := glfw.GetTime()
		dt := float32(now - last)
		last = now

		if g.framebufferDirty {
			g.updatePixelRatio()
			g.framebufferDirty = false
		}
		if g.EnableCameraInput {
			g.Controls.ProcessKeyboard(keys, dt)
		}
		g.Behaviours.Step(dt)
		if g.OnUpdate != nil {
			g.OnUpdate(dt)
		}
		if g.width > 0 && g.height > 0 {
			if err := g.Renderer.Render(g.Scene, g.Camera); err != nil {
				logger.Log.Error("Render failed", zap.Error(err))
				return err
			}
		}
		g.window.SwapBuffers()
		glfw.PollEvents()
	}
	logger.Log.Info("Window closed", zap.Int("frames", g.Renderer.Info().Render.Frame))
	return nil
}

// ApplyConfig swaps window, camera and renderer settings at runtime. Window size and
// scene content are not touched.
func (g *Gopher) ApplyConfig(cfg Config) {
	cfg.Validate()
	g.applyCameraConfig(cfg.Camera)
	if g.Renderer != nil {
		g.Renderer.SetConfig(cfg.Renderer)
		g.updatePixelRatio()
	}
	if g.window != nil && cfg.Window.VSync != g.Config.Window.VSync {
		g.setVSync(cfg.Window.VSync)
	}
	if g.window != nil && cfg.Window.Title != g.Config.Window.Title {
		g.window.SetTitle(cfg.Window.Title)
	}
	g.Config = cfg
	if g.OnConfig != nil {
		g.OnConfig(cfg)
	}
}

func (g *Gopher) setVSync(on bool) {
	if on {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

// updatePixelRatio scales the drawing buffer to the framebuffer on high DPI displays.
func (g *Gopher) updatePixelRatio() {
	if g.width == 0 {
		return
	}
	fw, _ := g.window.GetFramebufferSize()
	ratio := float32(fw) / float32(g.width) * g.Config.Renderer.PixelRatio
	if ratio > 0 {
		g.Renderer.SetPixelRatio(ratio)
	}
}

func (g *Gopher) sizeCallback(_ *glfw.Window, width, height int) {
	g.width, g.height = width, height
	// minimized
	if width == 0 || height == 0 {
		return
	}
	g.Renderer.SetSize(width, height)
	g.Camera.SetAspect(float32(width) / float32(height))
	g.framebufferDirty = true
	logger.Log.Debug("Window resized", zap.Int("width", width), zap.Int("height", height))
}

func (g *Gopher) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	if !g.EnableCameraInput || w.GetAttrib(glfw.Focused) != glfw.True || w.GetMouseButton(glfw.MouseButtonRight) != glfw.Press {
		g.firstMouse = true
		return
	}
	if g.firstMouse {
		g.lastX, g.lastY = xpos, ypos
		g.firstMouse = false
		return
	}
	xoffset := xpos - g.lastX
	// window y grows downward
	yoffset := g.lastY - ypos
	g.lastX, g.lastY = xpos, ypos
	g.Controls.ProcessMouseMovement(float32(xoffset), float32(yoffset), true)
}

func (g *Gopher) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft || action != glfw.Press || g.OnPick == nil {
		return
	}
	x, y := w.GetCursorPos()
	g.Scene.UpdateMatrixWorld()
	ray := ScreenToRay(g.Camera, float32(x), float32(y), g.width, g.height)
	if hit, ok := Pick(&g.Scene.Object, ray); ok {
		g.OnPick(hit)
	}
}

// GetWindow returns the GLFW window. It is nil outside Run.
func (g *Gopher) GetWindow() *glfw.Window {
	return g.window
}

type glfwKeys struct {
	w *glfw.Window
}

var keyBindings = map[Key][]glfw.Key{
	KeyForward:  {glfw.KeyW, glfw.KeyUp},
	KeyBackward: {glfw.KeyS, glfw.KeyDown},
	KeyLeft:     {glfw.KeyA, glfw.KeyLeft},
	KeyRight:    {glfw.KeyD, glfw.KeyRight},
	KeyUp:       {glfw.KeyE, glfw.KeySpace},
	KeyDown:     {glfw.KeyQ, glfw.KeyLeftControl},
	KeyBoost:    {glfw.KeyLeftShift, glfw.KeyRightShift},
}

func (k glfwKeys) Pressed(key Key) bool {
	for _, gk := range keyBindings[key] {
		if k.w.GetKey(gk) == glfw.Press {
			return true
		}
	}
	return false
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
