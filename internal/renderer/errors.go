package renderer

import "errors"

// Caller misuse. Unsupported features and exhaustion are logged and degraded instead.
var (
	ErrDisposed            = errors.New("renderer: resource used after dispose")
	ErrInvalidDepthTexture = errors.New("renderer: invalid depth texture configuration")
	ErrUnknownMaterialKind = errors.New("renderer: unknown material kind")
	ErrNilGeometry         = errors.New("renderer: drawable without geometry")
	ErrNilMaterial         = errors.New("renderer: drawable without material")
	ErrFramebuffer         = errors.New("renderer: framebuffer incomplete")
)
