package types

// Type is an immutable value shared by reference; the large variants
// (Class, Function, Module) carry their payload behind a pointer so that
// copying a Type never duplicates it, per §3 "types are immutable values
// shared by reference (interned where beneficial)".
type Type struct {
	Kind Kind

	// Class, Object
	Class    *Class
	TypeArgs []*Type // Object's bound type-argument list (generic instantiation)

	// Function
	Function *Function

	// OverloadedFunction
	Overloads    []*Function
	OverloadImpl *Function // nil if the overload set has no implementation in scope

	// Module
	Module *Module

	// Union, in canonical order (see NewUnion)
	Members []*Type

	// TypeVar
	TypeVar *TypeVarInfo

	// Literal
	LiteralBase  *Type
	LiteralValue *LiteralValue
}

var (
	unknownType = &Type{Kind: KindUnknown}
	unboundType = &Type{Kind: KindUnbound}
	anyType     = &Type{Kind: KindAny}
)

// Unknown is the "inference failed" bottom: distinct from Unbound so a
// diagnostic can tell "could not infer" apart from "not yet assigned".
func Unknown() *Type { return unknownType }

// Unbound models a name that has a declaration but no reaching
// assignment on the current flow path (§8 S6, "possibly unbound").
func Unbound() *Type { return unboundType }

// Any is the silent bottom/top: it suppresses further diagnostics about
// the value it flows through.
func Any() *Type { return anyType }

// ClassType wraps a Class definition as a Class-kind Type (the "Foo" in
// `Foo` used as a value, e.g. as a metaclass or in `type[Foo]`).
func ClassType(c *Class) *Type {
	return &Type{Kind: KindClass, Class: c}
}

// NewObject wraps an instance of cls, optionally with bound generic type
// arguments positionally matching cls.TypeParams. Object(cls) and
// Class(cls) are always distinct Types, per §3 invariant (b).
func NewObject(cls *Class, args ...*Type) *Type {
	return &Type{Kind: KindObject, Class: cls, TypeArgs: args}
}

// NewFunction wraps a single (non-overloaded) function signature.
func NewFunction(fn *Function) *Type {
	return &Type{Kind: KindFunction, Function: fn}
}

// NewOverloadedFunction wraps a non-empty ordered overload list and an
// optional implementation, matching the declaration a caller actually
// invokes once overload resolution picks a member.
func NewOverloadedFunction(overloads []*Function, impl *Function) *Type {
	return &Type{Kind: KindOverloadedFunction, Overloads: overloads, OverloadImpl: impl}
}

// NewModule wraps a resolved module's exported surface.
func NewModule(m *Module) *Type {
	return &Type{Kind: KindModule, Module: m}
}

// NewTypeVar wraps a type-variable declaration site.
func NewTypeVar(tv *TypeVarInfo) *Type {
	return &Type{Kind: KindTypeVar, TypeVar: tv}
}

// NewLiteral wraps a concrete literal value together with its base type
// (e.g. base=str, value="ok" for `Literal["ok"]`).
func NewLiteral(base *Type, value *LiteralValue) *Type {
	return &Type{Kind: KindLiteral, LiteralBase: base, LiteralValue: value}
}

// IsBottom reports whether t carries no useful information for further
// inference (Unknown or Unbound); callers widen rather than propagate
// these into arithmetic or member lookups.
func (t *Type) IsBottom() bool {
	return t == nil || t.Kind == KindUnknown || t.Kind == KindUnbound
}

// General returns the base type of a Literal, or t itself for every
// other kind — the PEP 586 widening operation applied at assignment to
// an unannotated target.
func (t *Type) General() *Type {
	if t != nil && t.Kind == KindLiteral {
		return t.LiteralBase
	}
	return t
}
