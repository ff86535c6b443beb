package types

import (
	"strconv"
	"strings"
)

// Equal reports structural equality per §3 invariant (d): two Types are
// equal if they have the same shape and content, except that TypeVars
// compare equal ignoring their Name (a freshly instantiated type
// parameter is the "same" variable regardless of what it was renamed to
// during generic instantiation).
//
// Class and Module identity is nominal (module path + name), not a deep
// structural walk of bases/members: classes are canonical per §3
// ownership notes, and a deep walk would not terminate on a
// self-referential class (`class Node: children: list["Node"]`).
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindUnknown, KindUnbound, KindAny:
		return true
	case KindClass:
		return sameClass(a.Class, b.Class)
	case KindObject:
		if !sameClass(a.Class, b.Class) || len(a.TypeArgs) != len(b.TypeArgs) {
			return false
		}
		for i := range a.TypeArgs {
			if !Equal(a.TypeArgs[i], b.TypeArgs[i]) {
				return false
			}
		}
		return true
	case KindFunction:
		return equalFunction(a.Function, b.Function)
	case KindOverloadedFunction:
		if len(a.Overloads) != len(b.Overloads) {
			return false
		}
		for i := range a.Overloads {
			if !equalFunction(a.Overloads[i], b.Overloads[i]) {
				return false
			}
		}
		return true
	case KindModule:
		return a.Module == b.Module || (a.Module != nil && b.Module != nil && a.Module.Name == b.Module.Name)
	case KindUnion:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if !Equal(a.Members[i], b.Members[i]) {
				return false
			}
		}
		return true
	case KindTypeVar:
		return equalTypeVarModuloName(a.TypeVar, b.TypeVar)
	case KindLiteral:
		return Equal(a.LiteralBase, b.LiteralBase) && a.LiteralValue.Equal(b.LiteralValue)
	default:
		return false
	}
}

func sameClass(a, b *Class) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.ModulePath == b.ModulePath && a.Name == b.Name
}

func equalFunction(a, b *Function) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if len(a.Parameters) != len(b.Parameters) || !Equal(a.Return, b.Return) {
		return false
	}
	for i := range a.Parameters {
		pa, pb := a.Parameters[i], b.Parameters[i]
		if pa.Kind != pb.Kind || pa.HasDefault != pb.HasDefault || !Equal(pa.Type, pb.Type) {
			return false
		}
	}
	return true
}

func equalTypeVarModuloName(a, b *TypeVarInfo) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Variance != b.Variance || !Equal(a.Bound, b.Bound) || len(a.Constraints) != len(b.Constraints) {
		return false
	}
	for i := range a.Constraints {
		if !Equal(a.Constraints[i], b.Constraints[i]) {
			return false
		}
	}
	return true
}

// Key renders a canonical string identity for t, used as a cache key and
// to give Union a stable member ordering. It follows the same
// nominal-identity rule as Equal for Class/Object, and normalises
// TypeVars to a name-independent placeholder so two structurally
// identical but freshly-renamed type variables key the same.
func Key(t *Type) string {
	var b strings.Builder
	writeKey(&b, t)
	return b.String()
}

func writeKey(b *strings.Builder, t *Type) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	switch t.Kind {
	case KindUnknown:
		b.WriteString("Unknown")
	case KindUnbound:
		b.WriteString("Unbound")
	case KindAny:
		b.WriteString("Any")
	case KindClass:
		b.WriteString("Class:")
		writeClassKey(b, t.Class)
	case KindObject:
		b.WriteString("Object:")
		writeClassKey(b, t.Class)
		if len(t.TypeArgs) > 0 {
			b.WriteString("[")
			for i, a := range t.TypeArgs {
				if i > 0 {
					b.WriteString(",")
				}
				writeKey(b, a)
			}
			b.WriteString("]")
		}
	case KindFunction:
		b.WriteString("Function:")
		writeFunctionKey(b, t.Function)
	case KindOverloadedFunction:
		b.WriteString("Overloaded(")
		for i, o := range t.Overloads {
			if i > 0 {
				b.WriteString("|")
			}
			writeFunctionKey(b, o)
		}
		b.WriteString(")")
	case KindModule:
		b.WriteString("Module:")
		if t.Module != nil {
			b.WriteString(t.Module.Name)
		}
	case KindUnion:
		b.WriteString("Union(")
		for i, m := range t.Members {
			if i > 0 {
				b.WriteString("|")
			}
			writeKey(b, m)
		}
		b.WriteString(")")
	case KindTypeVar:
		b.WriteString("TypeVar(")
		if t.TypeVar != nil {
			b.WriteString(t.TypeVar.Variance.String())
			b.WriteString(":")
			writeKey(b, t.TypeVar.Bound)
		}
		b.WriteString(")")
	case KindLiteral:
		b.WriteString("Literal(")
		writeKey(b, t.LiteralBase)
		b.WriteString(":")
		writeLiteralValueKey(b, t.LiteralValue)
		b.WriteString(")")
	}
}

func writeClassKey(b *strings.Builder, c *Class) {
	if c == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteString(c.ModulePath)
	b.WriteString(".")
	b.WriteString(c.Name)
}

func writeFunctionKey(b *strings.Builder, fn *Function) {
	if fn == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteString(fn.Name)
	b.WriteString("(")
	for i, p := range fn.Parameters {
		if i > 0 {
			b.WriteString(",")
		}
		writeKey(b, p.Type)
	}
	b.WriteString(")->")
	writeKey(b, fn.Return)
}

func writeLiteralValueKey(b *strings.Builder, v *LiteralValue) {
	if v == nil {
		b.WriteString("<nil>")
		return
	}
	switch v.Kind {
	case LiteralStr:
		b.WriteString("s:" + v.Str)
	case LiteralInt:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case LiteralBool:
		if v.Bool {
			b.WriteString("b:true")
		} else {
			b.WriteString("b:false")
		}
	case LiteralBytes:
		b.WriteString("y:" + v.Bytes)
	case LiteralEnum:
		b.WriteString("e:" + v.EnumClass + "." + v.EnumMember)
	}
}
