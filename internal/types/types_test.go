package types

import "testing"

func TestUnionSingletonDegeneratesToMember(t *testing.T) {
	strObj := NewObject(NewClass("str", "builtins"))
	u := NewUnion(strObj)
	if u.Kind == KindUnion {
		t.Fatalf("Union[T] must degenerate to T, got Kind=%v", u.Kind)
	}
}

func TestUnionFlattensNestedUnions(t *testing.T) {
	a := NewObject(classOf("A"))
	b := NewObject(classOf("B"))
	c := NewObject(classOf("C"))
	inner := NewUnion(a, b)
	outer := NewUnion(inner, c)
	if outer.Kind != KindUnion {
		t.Fatalf("expected a Union, got %v", outer.Kind)
	}
	if len(outer.Members) != 3 {
		t.Fatalf("expected 3 flattened members, got %d", len(outer.Members))
	}
	for _, m := range outer.Members {
		if m.Kind == KindUnion {
			t.Fatalf("union member must not itself be a union")
		}
	}
}

func TestUnionDedupsByStructuralEquality(t *testing.T) {
	a1 := NewObject(classOf("A"))
	a2 := NewObject(classOf("A"))
	b := NewObject(classOf("B"))
	u := NewUnion(a1, a2, b)
	if len(u.Members) != 2 {
		t.Fatalf("expected deduped union of 2 members, got %d", len(u.Members))
	}
}

func TestUnionOfEmptyIsUnknown(t *testing.T) {
	u := NewUnion()
	if u.Kind != KindUnknown {
		t.Fatalf("expected Unknown for an empty union, got %v", u.Kind)
	}
}

func TestUnionNoneIsFirstClassElement(t *testing.T) {
	noneObj := NewObject(classOf("NoneType"))
	strObj := NewObject(classOf("str"))
	u := NewUnion(strObj, noneObj)
	if u.Kind != KindUnion || len(u.Members) != 2 {
		t.Fatalf("expected a 2-member union including NoneType")
	}
}

func TestClassAndObjectAreDistinctTypes(t *testing.T) {
	cls := classOf("Foo")
	classType := ClassType(cls)
	objType := NewObject(cls)
	if Equal(classType, objType) {
		t.Fatalf("Class(cls) and Object(cls) must never be equal")
	}
}

func TestMROSimpleLinearChain(t *testing.T) {
	object := ObjectClass()
	base := NewClass("Base", "m")
	base.Bases = []*Type{ClassType(object)}
	derived := NewClass("Derived", "m")
	derived.Bases = []*Type{ClassType(base)}

	mro := Linearize(derived)
	if len(mro) != 3 || mro[0] != derived || mro[1] != base || mro[2] != object {
		names := make([]string, len(mro))
		for i, c := range mro {
			names[i] = c.Name
		}
		t.Fatalf("expected [Derived Base object], got %v", names)
	}
}

func TestMRODiamond(t *testing.T) {
	object := ObjectClass()
	a := NewClass("A", "m")
	a.Bases = []*Type{ClassType(object)}
	b := NewClass("B", "m")
	b.Bases = []*Type{ClassType(a)}
	c := NewClass("C", "m")
	c.Bases = []*Type{ClassType(a)}
	d := NewClass("D", "m")
	d.Bases = []*Type{ClassType(b), ClassType(c)}

	mro := Linearize(d)
	order := make([]string, len(mro))
	for i, cls := range mro {
		order[i] = cls.Name
	}
	want := []string{"D", "B", "C", "A", "object"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
	if d.InconsistentMRO {
		t.Fatalf("diamond inheritance should linearise consistently")
	}
}

func TestMROInconsistentFallsBackToSelfAndObject(t *testing.T) {
	object := ObjectClass()
	x := NewClass("X", "m")
	x.Bases = []*Type{ClassType(object)}
	y := NewClass("Y", "m")
	y.Bases = []*Type{ClassType(object)}
	// X and Y each order themselves ahead of the other relative to a
	// shared base list with no consistent linearisation.
	xOrderedFirst := NewClass("XF", "m")
	xOrderedFirst.Bases = []*Type{ClassType(x), ClassType(y)}
	yOrderedFirst := NewClass("YF", "m")
	yOrderedFirst.Bases = []*Type{ClassType(y), ClassType(x)}
	bad := NewClass("Bad", "m")
	bad.Bases = []*Type{ClassType(xOrderedFirst), ClassType(yOrderedFirst)}

	mro := Linearize(bad)
	if !bad.InconsistentMRO {
		t.Fatalf("expected an inconsistent MRO to be flagged")
	}
	if len(mro) != 2 || mro[0] != bad || mro[1] != object {
		t.Fatalf("expected fallback MRO [Bad object]")
	}
}

func TestResolveMemberFollowsMRO(t *testing.T) {
	object := ObjectClass()
	base := NewClass("Base", "m")
	base.Bases = []*Type{ClassType(object)}
	base.AddMember(&Member{Name: "greet", Type: NewFunction(&Function{Name: "greet"})})
	derived := NewClass("Derived", "m")
	derived.Bases = []*Type{ClassType(base)}

	member, owner, ok := derived.ResolveMember("greet")
	if !ok {
		t.Fatalf("expected to resolve greet via MRO")
	}
	if owner != base {
		t.Fatalf("expected greet to resolve from Base")
	}
	if member.Type.Function.Name != "greet" {
		t.Fatalf("unexpected member type")
	}
}

func TestLiteralGeneralWidensToBase(t *testing.T) {
	strBase := NewObject(classOf("str"))
	lit := NewLiteral(strBase, &LiteralValue{Kind: LiteralStr, Str: "ok"})
	if lit.General() != strBase {
		t.Fatalf("expected General() to widen a literal to its base type")
	}
	if strBase.General() != strBase {
		t.Fatalf("General() on a non-literal must return itself")
	}
}

func TestTypeVarEqualityIgnoresName(t *testing.T) {
	tv1 := NewTypeVar(&TypeVarInfo{Name: "T"})
	tv2 := NewTypeVar(&TypeVarInfo{Name: "U"})
	if !Equal(tv1, tv2) {
		t.Fatalf("expected fresh type variables to compare equal modulo name")
	}
}

func TestFunctionBindStripsLeadingParameter(t *testing.T) {
	fn := &Function{
		Name: "method",
		Parameters: []Parameter{
			{Name: "self", Kind: ParamPositionalOrKeyword},
			{Name: "x", Kind: ParamPositionalOrKeyword},
		},
	}
	bound := fn.Bind()
	if len(bound.Parameters) != 1 || bound.Parameters[0].Name != "x" {
		t.Fatalf("expected Bind to strip the leading parameter, got %+v", bound.Parameters)
	}
	if len(fn.Parameters) != 2 {
		t.Fatalf("Bind must not mutate the original function")
	}
}

func TestInternerReturnsCanonicalClass(t *testing.T) {
	in := NewInterner()
	first := NewClass("Foo", "pkg")
	second := NewClass("Foo", "pkg")
	got1 := in.InternClass("pkg", "Foo", first)
	got2 := in.InternClass("pkg", "Foo", second)
	if got1 != got2 {
		t.Fatalf("expected the interner to return the same canonical class both times")
	}
	if got1 != first {
		t.Fatalf("expected the first-registered class to stay canonical")
	}
}

func classOf(name string) *Class {
	return NewClass(name, "m")
}
