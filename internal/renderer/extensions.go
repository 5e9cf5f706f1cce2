package renderer

import (
	"strings"

	"GopherScene/internal/gpu"
	"GopherScene/internal/logger"

	"go.uber.org/zap"
)

// Extensions answers optional feature queries. Results are memoized.
type Extensions struct {
	ctx       gpu.Context
	supported map[string]bool
	cache     map[string]bool
	warned    map[string]bool
}

func NewExtensions(ctx gpu.Context) *Extensions {
	e := &Extensions{
		ctx:    ctx,
		cache:  make(map[string]bool),
		warned: make(map[string]bool),
	}
	return e
}

func (e *Extensions) load() {
	if e.supported != nil {
		return
	}
	e.supported = make(map[string]bool)
	for _, name := range e.ctx.Extensions() {
		e.supported[name] = true
	}
}

// Has reports whether name is supported. Names may omit the GL_ prefix.
func (e *Extensions) Has(name string) bool {
	if v, ok := e.cache[name]; ok {
		return v
	}
	e.load()
	v := e.supported[name] || e.supported["GL_"+strings.TrimPrefix(name, "GL_")]
	e.cache[name] = v
	return v
}

// Get is Has with a one time warning when the extension is missing.
func (e *Extensions) Get(name string) bool {
	ok := e.Has(name)
	if !ok && !e.warned[name] {
		e.warned[name] = true
		logger.Log.Warn("Extension not supported", zap.String("extension", name))
	}
	return ok
}
