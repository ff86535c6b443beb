package evaluator

import (
	"testing"

	"github.com/shivasurya/pathfinder-pytype/internal/binder"
	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/pyimport"
	"github.com/shivasurya/pathfinder-pytype/internal/pyparser"
	"github.com/shivasurya/pathfinder-pytype/internal/pytoken"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

func mustBind(t *testing.T, src string) *binder.BoundFile {
	t.Helper()
	f, errs := pyparser.Parse("<test>", src, pytoken.PyVersion{Major: 3, Minor: 10})
	for _, e := range errs {
		t.Logf("parse error: %s @ [%d,%d]", e.Message, e.Start, e.End)
	}
	return binder.Bind(f, binder.NewBuiltinScope())
}

// stubProvider is a single-file FileProvider for tests that never cross a
// real import boundary; ResolveImport always reports "not found", matching
// an evaluator used without the program layer's wiring.
type stubProvider struct {
	files map[string]*binder.BoundFile
}

func (s *stubProvider) BoundFileAt(path string) (*binder.BoundFile, bool) {
	bf, ok := s.files[path]
	return bf, ok
}

func (s *stubProvider) ResolveImport(fromFile, module string, level int) (pyimport.Result, bool) {
	return pyimport.Result{}, false
}

// exprStmts returns, in source order, the node id of every top-level bare
// expression statement's expression (e.g. a line that is just `x` or
// `x + 1`), the simplest way to pin a TypeOf test to a specific
// expression without hand-computing node ids.
func exprStmts(bf *binder.BoundFile) []pyast.NodeID {
	var out []pyast.NodeID
	root := bf.File.Get(bf.File.Root)
	if root == nil {
		return nil
	}
	for _, c := range root.Children {
		n := bf.File.Get(c)
		if n != nil && n.Kind == pyast.KindExprStmt && len(n.Children) == 1 {
			out = append(out, n.Children[0])
		}
	}
	return out
}

func TestTypeOfLiterals(t *testing.T) {
	bf := mustBind(t, "1\n1.5\n\"hi\"\nTrue\nNone\n1 + 2\n1 / 2\nTrue + 1\n")
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	if len(exprs) != 8 {
		t.Fatalf("expected 8 expression statements, got %d", len(exprs))
	}

	want := []string{"int", "float", "str", "bool", "NoneType", "int", "float", "int"}
	for i, id := range exprs {
		typ := ev.TypeOf(bf, id)
		name := classNameOf(typ)
		if name != want[i] {
			t.Errorf("expr %d: expected %s, got %s (%+v)", i, want[i], name, typ)
		}
	}
}

func TestTypeOfNameAndReassignment(t *testing.T) {
	bf := mustBind(t, "x = 1\nx = \"s\"\nx\n")
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	last := exprs[len(exprs)-1]
	typ := ev.TypeOf(bf, last)
	if typ.Kind != types.KindUnion {
		t.Fatalf("expected a union of int/str for a reassigned name, got %+v", typ)
	}
}

func TestNarrowIsinstance(t *testing.T) {
	src := "class Foo:\n" +
		"    pass\n" +
		"def use(x):\n" +
		"    if isinstance(x, Foo):\n" +
		"        x\n"
	bf := mustBind(t, src)
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	last := exprs[len(exprs)-1]
	typ := ev.TypeOf(bf, last)
	if typ.Kind != types.KindObject || typ.Class == nil || typ.Class.Name != "Foo" {
		t.Fatalf("expected narrowed Foo instance, got %+v", typ)
	}
}

func TestNarrowNoneComparison(t *testing.T) {
	src := "def use(x):\n" +
		"    if x is not None:\n" +
		"        x\n"
	bf := mustBind(t, src)
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	last := exprs[len(exprs)-1]
	typ := ev.TypeOf(bf, last)
	if typ.Kind == types.KindObject && typ.Class == ev.builtins.noneType {
		t.Fatalf("expected None excluded from narrowed type, got %+v", typ)
	}
}

func TestClassAndMethodBinding(t *testing.T) {
	src := "class Greeter:\n" +
		"    def greet(self) -> str:\n" +
		"        return \"hi\"\n" +
		"g = Greeter()\n" +
		"g.greet\n"
	bf := mustBind(t, src)
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	last := exprs[len(exprs)-1]
	typ := ev.TypeOf(bf, last)
	if typ.Kind != types.KindFunction {
		t.Fatalf("expected a bound method Function, got %+v", typ)
	}
	if len(typ.Function.Parameters) != 0 {
		t.Fatalf("expected `self` stripped by Bind, got params %+v", typ.Function.Parameters)
	}
	if typ.Function.Return == nil || classNameOf(typ.Function.Return) != "str" {
		t.Fatalf("expected str return type, got %+v", typ.Function.Return)
	}
}

func TestPropertyGetterBinding(t *testing.T) {
	src := "class Box:\n" +
		"    @property\n" +
		"    def value(self) -> int:\n" +
		"        return 1\n" +
		"b = Box()\n" +
		"b.value\n"
	bf := mustBind(t, src)
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	last := exprs[len(exprs)-1]
	typ := ev.TypeOf(bf, last)
	if classNameOf(typ) != "int" {
		t.Fatalf("expected property getter to yield int directly, not a bound method, got %+v", typ)
	}
}

func TestConstructorCall(t *testing.T) {
	src := "class Point:\n" +
		"    def __init__(self, x: int, y: int):\n" +
		"        pass\n" +
		"Point(1, 2)\n"
	bf := mustBind(t, src)
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	last := exprs[len(exprs)-1]
	typ := ev.TypeOf(bf, last)
	if typ.Kind != types.KindObject || typ.Class == nil || typ.Class.Name != "Point" {
		t.Fatalf("expected Point instance, got %+v", typ)
	}
}

func TestGenericClassInstantiation(t *testing.T) {
	src := "from typing import Generic, TypeVar\n" +
		"T = TypeVar(\"T\")\n" +
		"class Box(Generic[T]):\n" +
		"    def __init__(self, value: T):\n" +
		"        pass\n" +
		"Box(1)\n"
	bf := mustBind(t, src)
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	last := exprs[len(exprs)-1]
	typ := ev.TypeOf(bf, last)
	if typ.Kind != types.KindObject || typ.Class == nil || typ.Class.Name != "Box" {
		t.Fatalf("expected a Box instance, got %+v", typ)
	}
}

func TestAnnotationOptionalAndUnion(t *testing.T) {
	src := "from typing import Optional\n" +
		"def f(x: Optional[int]):\n" +
		"    x\n"
	bf := mustBind(t, src)
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	last := exprs[len(exprs)-1]
	typ := ev.TypeOf(bf, last)
	if typ.Kind != types.KindUnion || len(typ.Members) != 2 {
		t.Fatalf("expected a two-member union (int | None), got %+v", typ)
	}
}

func TestLambda(t *testing.T) {
	bf := mustBind(t, "f = lambda x: x + 1\nf\n")
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	last := exprs[len(exprs)-1]
	typ := ev.TypeOf(bf, last)
	if typ.Kind != types.KindFunction {
		t.Fatalf("expected a Function type for a lambda-bound name, got %+v", typ)
	}
}

func TestTypedDictValidation(t *testing.T) {
	src := "from typing import TypedDict\n" +
		"class Movie(TypedDict):\n" +
		"    name: str\n" +
		"    year: int\n"
	bf := mustBind(t, src)
	ev := New(&stubProvider{})
	sym, ok := bf.ModuleScope.Symbol("Movie")
	if !ok {
		t.Fatalf("expected Movie declared at module scope")
	}
	decl := sym.Latest()
	cls := ev.classOf(bf, decl.Node, bf.File.Get(decl.Node))
	if !cls.Flags.TypedDict {
		t.Fatalf("expected Movie to be flagged as a TypedDict")
	}
	if len(cls.Fields) != 2 {
		t.Fatalf("expected 2 TypedDict fields, got %+v", cls.Fields)
	}

	errs := ValidateTypedDictLiteral(cls, []string{"name"})
	if len(errs) != 1 || !errs[0].Missing || errs[0].Key != "year" {
		t.Fatalf("expected a single missing-key error for year, got %+v", errs)
	}
}

func TestInvalidateFileClearsCache(t *testing.T) {
	bf := mustBind(t, "1\n")
	ev := New(&stubProvider{})
	exprs := exprStmts(bf)
	id := exprs[0]
	ev.TypeOf(bf, id)
	if _, ok := ev.cache[cacheKey{bf, id}]; !ok {
		t.Fatalf("expected TypeOf to populate the cache")
	}
	ev.InvalidateFile(bf)
	if _, ok := ev.cache[cacheKey{bf, id}]; ok {
		t.Fatalf("expected InvalidateFile to clear the cache entry")
	}
}

func classNameOf(t *types.Type) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case types.KindObject:
		if t.Class != nil {
			return t.Class.Name
		}
	case types.KindLiteral:
		if t.General() != nil && t.General().Kind == types.KindObject {
			return t.General().Class.Name
		}
	}
	return ""
}
