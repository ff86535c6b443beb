package types

// Variance classifies how a TypeVar participates in subtyping when it
// appears in a generic position, consulted by the constraint solver
// (§4.5 "Generic instantiation").
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "covariant"
	case Contravariant:
		return "contravariant"
	default:
		return "invariant"
	}
}

// TypeVarInfo is a type-variable declaration site: `T = TypeVar("T",
// bound=..., covariant=...)` or a PEP 695 `[T]` binder.
type TypeVarInfo struct {
	Name        string
	Bound       *Type   // nil if unbounded
	Constraints []*Type // mutually exclusive with Bound in valid source
	Variance    Variance
}
