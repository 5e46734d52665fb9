package sparsego

import (
	"github.com/hupe1980/sparsego/pattern"
)

// DefaultGrowthFactor is the multiplier applied to the required slot count
// when a row grows on demand.
const DefaultGrowthFactor = pattern.DefaultGrowthFactor

// MemoryReserver tracks (and optionally caps) the bytes held by a matrix's
// slabs. resource.Controller satisfies it.
type MemoryReserver = pattern.MemoryReserver

// Option configures a Matrix.
type Option func(*config)

type config struct {
	growthFactor int
	reserver     MemoryReserver
	name         string
}

// WithGrowthFactor sets the on-demand growth multiplier for rows. Values
// below 2 fall back to DefaultGrowthFactor.
func WithGrowthFactor(factor int) Option {
	return func(c *config) {
		c.growthFactor = factor
	}
}

// WithMemoryReserver registers a reserver that accounts for the bytes held
// by the matrix's buffers. Growth that a configured hard limit refuses
// panics with ErrMemoryLimit.
func WithMemoryReserver(r MemoryReserver) Option {
	return func(c *config) {
		c.reserver = r
	}
}

// WithName sets the diagnostic label associated with the matrix's buffers.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}
