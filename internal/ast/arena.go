package ast

import "github.com/isaacjoffe/nanopy/errors"

// Arena is a fixed-capacity, append-only allocator for AST nodes.
// Allocation is strictly append-only during a single parse; node
// references (Ref values) remain stable for the lifetime of one
// parse/eval cycle, and nothing is ever deallocated individually;
// the whole arena is discarded at the end of the REPL cycle that
// created it.
type Arena struct {
	nodes []Node
	cap   int
}

// NewArena allocates an empty Arena with room for capacity nodes.
func NewArena(capacity int) *Arena {
	return &Arena{nodes: make([]Node, 0, capacity), cap: capacity}
}

// New appends n to the arena and returns its stable reference, or a
// RuntimeError if the arena is full.
func (a *Arena) New(n Node) (Ref, error) {
	if len(a.nodes) >= a.cap {
		return NoRef, errors.New(errors.Runtime, "AST node arena exhausted")
	}
	a.nodes = append(a.nodes, n)
	return Ref(len(a.nodes) - 1), nil
}

// Get dereferences r. r must have been returned by New on this same
// Arena; it is a programmer error (not a runtime error condition) to
// pass a stale or out-of-range Ref, so Get panics rather than
// returning an error: no child reference ever escapes the arena that
// produced it in a well-formed parse.
func (a *Arena) Get(r Ref) *Node {
	return &a.nodes[r]
}

// Len returns the number of nodes allocated so far.
func (a *Arena) Len() int {
	return len(a.nodes)
}
