// Package interp implements the tree-walking evaluator and its
// supporting Environment: a recursive walk over arena-allocated nodes
// that produces one value per expression and mutates the environment
// per statement.
package interp

import (
	"github.com/isaacjoffe/nanopy/errors"
	"github.com/isaacjoffe/nanopy/internal/limits"
	"github.com/isaacjoffe/nanopy/internal/values"
)

// Environment is a flat name-to-value table. The parent link is
// reserved for future nested scopes and is not traversed: every
// lookup and write is local.
type Environment struct {
	names  []string
	vals   []values.Value
	cfg    limits.Config
	parent *Environment
}

// NewEnvironment allocates an empty Environment sized to cfg.
func NewEnvironment(cfg limits.Config) *Environment {
	return &Environment{
		names: make([]string, 0, cfg.MaxNumVar),
		vals:  make([]values.Value, 0, cfg.MaxNumVar),
		cfg:   cfg,
	}
}

func (e *Environment) find(name string) int {
	for i, n := range e.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Write creates or updates name with value. Fails with RuntimeError
// once MaxNumVar distinct names have been written.
func (e *Environment) Write(name string, value values.Value) error {
	if i := e.find(name); i >= 0 {
		e.vals[i] = value
		return nil
	}
	if len(e.names) >= e.cfg.MaxNumVar {
		return errors.New(errors.Runtime, "too many variables in environment")
	}
	e.names = append(e.names, name)
	e.vals = append(e.vals, value)
	return nil
}

// Read looks up name, reporting ok=false if it is unbound.
func (e *Environment) Read(name string) (values.Value, bool) {
	if i := e.find(name); i >= 0 {
		return e.vals[i], true
	}
	return values.None, false
}
