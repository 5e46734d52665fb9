package sparsego

import (
	"github.com/hupe1980/sparsego/pattern"
)

// ErrMemoryLimit is the panic value raised when a configured hard memory
// limit refuses a buffer growth. Duplicate insertions and capacity
// exhaustion are never errors; they are resolved via return values and
// transparent growth.
var ErrMemoryLimit = pattern.ErrMemoryLimit
