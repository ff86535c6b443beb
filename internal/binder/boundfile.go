package binder

import "github.com/shivasurya/pathfinder-pytype/internal/pyast"

// BoundFile is the binder's output for one source file: the scope tree,
// the flow graph, and the per-reference flow attachment the evaluator
// consults for narrowing. The binder never resolves types; this is the
// skeleton the evaluator walks (§4.4).
type BoundFile struct {
	File        *pyast.File
	ModuleScope *Scope

	// Scopes maps each scope-introducing node (Module, ClassDef,
	// FunctionDef, Lambda, Comprehension) to the scope it introduces.
	Scopes map[pyast.NodeID]*Scope

	Flow          []FlowNode
	ReferenceFlow map[pyast.NodeID]FlowID

	FutureAnnotations bool

	// HasDunderAll is true when a statically-inferable `__all__` list
	// assignment was found at module scope; DunderAll then holds its
	// members and takes precedence over the underscore-prefix rule.
	HasDunderAll bool
	DunderAll    []string
}

func (b *BoundFile) FlowNode(id FlowID) *FlowNode {
	if id < 0 || int(id) >= len(b.Flow) {
		return nil
	}
	return &b.Flow[id]
}

// ScopeOf returns the scope introduced directly by node, if any.
func (b *BoundFile) ScopeOf(node pyast.NodeID) (*Scope, bool) {
	s, ok := b.Scopes[node]
	return s, ok
}
