package containerengine

import "errors"

// Sentinel error categories (§7: matches ContainerError / EngineError).
var (
	ErrEngine     = errors.New("container engine error")
	ErrEmptyIndex = errors.New("empty image index")
)
