package wavevar

import (
	"fmt"

	"github.com/tracewave/wfdecode/errs"
)

// Registry accumulates PreVariables declared during header/hierarchy
// decoding and enforces the shared-handle invariant: two variables that
// declare the same handle (VCD's "two wires driven by one id-token", or a
// binary trace's aliased geometry entries) must agree on width and data
// type.
type Registry struct {
	vars     []PreVariable
	byHandle map[uint64][]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byHandle: make(map[uint64][]int)}
}

// Add appends v, validating it against any previously registered
// variable sharing the same handle.
func (r *Registry) Add(v PreVariable) error {
	if existing, ok := r.byHandle[v.Handle]; ok {
		for _, i := range existing {
			prev := r.vars[i]
			if prev.Width != v.Width || prev.DataType != v.DataType {
				return fmt.Errorf("%w: handle %d redeclared with width/type (%d,%v) != (%d,%v)",
					errs.ErrWidthMismatch, v.Handle, v.Width, v.DataType, prev.Width, prev.DataType)
			}
			r.vars[i].Shared = true
		}

		v.Shared = true
	}

	idx := len(r.vars)
	r.vars = append(r.vars, v)
	r.byHandle[v.Handle] = append(r.byHandle[v.Handle], idx)

	return nil
}

// Vars returns every registered variable in declaration order.
func (r *Registry) Vars() []PreVariable { return r.vars }

// Len reports how many variables are registered (including shared
// aliases as separate entries, matching one per declaration).
func (r *Registry) Len() int { return len(r.vars) }
