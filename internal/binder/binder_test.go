package binder

import (
	"testing"

	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/pyparser"
	"github.com/shivasurya/pathfinder-pytype/internal/pytoken"
)

func mustBind(t *testing.T, src string) *BoundFile {
	t.Helper()
	f, errs := pyparser.Parse("<test>", src, pytoken.PyVersion{Major: 3, Minor: 10})
	for _, e := range errs {
		t.Logf("parse error: %s @ [%d,%d]", e.Message, e.Start, e.End)
	}
	return Bind(f, NewBuiltinScope())
}

func TestModuleScopeAndVariableDeclaration(t *testing.T) {
	bf := mustBind(t, "x = 1\ny = x + 1\n")
	sym, ok := bf.ModuleScope.Symbol("x")
	if !ok {
		t.Fatalf("expected x declared at module scope")
	}
	if len(sym.Declarations) != 1 || sym.Declarations[0].Kind != DeclVariable {
		t.Fatalf("expected one Variable declaration for x, got %+v", sym.Declarations)
	}
	if _, ok := bf.ModuleScope.Symbol("y"); !ok {
		t.Fatalf("expected y declared at module scope")
	}
}

func TestFunctionScopeAndParameters(t *testing.T) {
	bf := mustBind(t, "def add(a, b):\n    return a + b\n")
	fnSym, ok := bf.ModuleScope.Symbol("add")
	if !ok {
		t.Fatalf("expected add declared at module scope")
	}
	if fnSym.Declarations[0].Kind != DeclFunction {
		t.Fatalf("expected Function declaration, got %v", fnSym.Declarations[0].Kind)
	}
	var fnScope *Scope
	for node, sc := range bf.Scopes {
		if sc.Kind == ScopeFunction {
			fnScope = sc
			_ = node
		}
	}
	if fnScope == nil {
		t.Fatalf("expected a function scope to be recorded")
	}
	if _, ok := fnScope.Symbol("a"); !ok {
		t.Fatalf("expected parameter a declared in function scope")
	}
	if _, ok := fnScope.Symbol("b"); !ok {
		t.Fatalf("expected parameter b declared in function scope")
	}
	if sym, _ := fnScope.Symbol("a"); sym.Declarations[0].Kind != DeclParameter {
		t.Fatalf("expected Parameter declaration for a")
	}
}

func TestClassScopeAndMethodIsMethod(t *testing.T) {
	bf := mustBind(t, "class Foo:\n    def bar(self):\n        pass\n")
	classSym, ok := bf.ModuleScope.Symbol("Foo")
	if !ok || classSym.Declarations[0].Kind != DeclClass {
		t.Fatalf("expected Foo declared as Class at module scope")
	}
	var classScope *Scope
	for _, sc := range bf.Scopes {
		if sc.Kind == ScopeClass {
			classScope = sc
		}
	}
	if classScope == nil {
		t.Fatalf("expected a class scope")
	}
	methodSym, ok := classScope.Symbol("bar")
	if !ok {
		t.Fatalf("expected bar declared in class scope")
	}
	if !methodSym.Declarations[0].IsMethod {
		t.Fatalf("expected bar's Function declaration to have IsMethod set")
	}
}

func TestLambdaIntroducesFunctionScope(t *testing.T) {
	bf := mustBind(t, "f = lambda x: x + 1\n")
	found := false
	for _, sc := range bf.Scopes {
		if sc.Kind == ScopeFunction {
			if _, ok := sc.Symbol("x"); ok {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected a lambda function scope declaring parameter x")
	}
}

func TestComprehensionIntroducesComprehensionScope(t *testing.T) {
	bf := mustBind(t, "xs = [i for i in range(10) if i % 2 == 0]\n")
	found := false
	for _, sc := range bf.Scopes {
		if sc.Kind == ScopeComprehension {
			if _, ok := sc.Symbol("i"); ok {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected a comprehension scope declaring target i")
	}
}

func TestGlobalRedirectsToModuleScope(t *testing.T) {
	bf := mustBind(t, "x = 1\ndef f():\n    global x\n    x = 2\n")
	sym, ok := bf.ModuleScope.Symbol("x")
	if !ok {
		t.Fatalf("expected x in module scope")
	}
	if len(sym.Declarations) != 2 {
		t.Fatalf("expected two declarations of x (module-level + global-redirected), got %d", len(sym.Declarations))
	}
	for _, sc := range bf.Scopes {
		if sc.Kind == ScopeFunction {
			if _, ok := sc.Symbol("x"); ok {
				t.Fatalf("global x must not create a local symbol in the function scope")
			}
		}
	}
}

func TestNonlocalRedirectsToEnclosingFunction(t *testing.T) {
	bf := mustBind(t, "def outer():\n    x = 1\n    def inner():\n        nonlocal x\n        x = 2\n    return inner\n")
	var outerScope *Scope
	for _, sc := range bf.Scopes {
		if sc.Kind == ScopeFunction {
			if _, ok := sc.Symbol("x"); ok {
				outerScope = sc
			}
		}
	}
	if outerScope == nil {
		t.Fatalf("expected outer function scope declaring x")
	}
	sym, _ := outerScope.Symbol("x")
	if len(sym.Declarations) != 2 {
		t.Fatalf("expected two declarations of x (outer + nonlocal-redirected from inner), got %d", len(sym.Declarations))
	}
}

func TestIfElseBothBranchesJoin(t *testing.T) {
	bf := mustBind(t, "if cond:\n    x = 1\nelse:\n    x = 2\n")
	sym, ok := bf.ModuleScope.Symbol("x")
	if !ok {
		t.Fatalf("expected x declared")
	}
	if len(sym.Declarations) != 2 {
		t.Fatalf("expected 2 declarations of x, one per branch, got %d", len(sym.Declarations))
	}
}

func TestElifChainProducesNestedIf(t *testing.T) {
	f, errs := pyparser.Parse("<test>", "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n", pytoken.PyVersion{Major: 3, Minor: 10})
	for _, e := range errs {
		t.Logf("parse error: %s", e.Message)
	}
	bf := Bind(f, NewBuiltinScope())
	sym, ok := bf.ModuleScope.Symbol("x")
	if !ok {
		t.Fatalf("expected x declared")
	}
	if len(sym.Declarations) != 3 {
		t.Fatalf("expected 3 declarations of x across if/elif/else, got %d", len(sym.Declarations))
	}
}

func TestWhileElseSuiteIsBound(t *testing.T) {
	bf := mustBind(t, "while cond:\n    pass\nelse:\n    y = 1\n")
	if _, ok := bf.ModuleScope.Symbol("y"); !ok {
		t.Fatalf("expected while-else suite's assignment to y to be bound, not folded away")
	}
}

func TestForElseSuiteIsBound(t *testing.T) {
	bf := mustBind(t, "for i in range(10):\n    pass\nelse:\n    y = 1\n")
	if _, ok := bf.ModuleScope.Symbol("y"); !ok {
		t.Fatalf("expected for-else suite's assignment to y to be bound")
	}
}

func TestTrySplitsBodyElseFinally(t *testing.T) {
	bf := mustBind(t, "try:\n    a = 1\nexcept ValueError as e:\n    b = 2\nelse:\n    c = 3\nfinally:\n    d = 4\n")
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if _, ok := bf.ModuleScope.Symbol(name); !ok {
			t.Fatalf("expected %s to be bound somewhere reachable from module scope", name)
		}
	}
}

func TestBreakAndContinueFeedLoopJoin(t *testing.T) {
	bf := mustBind(t, "for i in range(10):\n    if i == 5:\n        break\n    if i == 2:\n        continue\n    x = i\n")
	if len(bf.Flow) == 0 {
		t.Fatalf("expected a non-empty flow graph")
	}
}

func TestFutureAnnotationsDetected(t *testing.T) {
	bf := mustBind(t, "from __future__ import annotations\n\ndef f(x: Foo) -> Bar:\n    pass\n")
	if !bf.FutureAnnotations {
		t.Fatalf("expected FutureAnnotations to be detected")
	}
}

func TestFutureAnnotationsNotSetWithoutImport(t *testing.T) {
	bf := mustBind(t, "x = 1\n")
	if bf.FutureAnnotations {
		t.Fatalf("expected FutureAnnotations false without the future import")
	}
}

func TestDunderAllHidesNonExportedNames(t *testing.T) {
	bf := mustBind(t, "__all__ = ['a']\na = 1\nb = 2\n")
	if !bf.HasDunderAll {
		t.Fatalf("expected __all__ to be statically inferred")
	}
	aSym, _ := bf.ModuleScope.Symbol("a")
	bSym, _ := bf.ModuleScope.Symbol("b")
	if aSym.ExternallyHidden {
		t.Fatalf("a is listed in __all__, must not be hidden")
	}
	if !bSym.ExternallyHidden {
		t.Fatalf("b is not listed in __all__, must be hidden")
	}
}

func TestUnderscorePrefixHidesWithoutDunderAll(t *testing.T) {
	bf := mustBind(t, "_private = 1\npublic = 2\n__dunder__ = 3\n")
	priv, _ := bf.ModuleScope.Symbol("_private")
	pub, _ := bf.ModuleScope.Symbol("public")
	dunder, _ := bf.ModuleScope.Symbol("__dunder__")
	if !priv.ExternallyHidden {
		t.Fatalf("expected leading-underscore name to be hidden")
	}
	if pub.ExternallyHidden {
		t.Fatalf("expected unprefixed name to stay visible")
	}
	if dunder.ExternallyHidden {
		t.Fatalf("expected dunder name to stay visible despite leading underscore")
	}
}

func TestImportAliasDeclaresBindName(t *testing.T) {
	bf := mustBind(t, "import os.path as p\nfrom foo.bar import baz as qux\n")
	pSym, ok := bf.ModuleScope.Symbol("p")
	if !ok || pSym.Declarations[0].Kind != DeclAlias {
		t.Fatalf("expected p declared as an Alias")
	}
	if pSym.Declarations[0].ImportPath != "os.path" {
		t.Fatalf("expected ImportPath os.path, got %q", pSym.Declarations[0].ImportPath)
	}
	quxSym, ok := bf.ModuleScope.Symbol("qux")
	if !ok || quxSym.Declarations[0].ImportPath != "foo.bar" {
		t.Fatalf("expected qux aliasing foo.bar.baz")
	}
}

func TestWildcardImportProducesFlowNode(t *testing.T) {
	bf := mustBind(t, "from m import *\n")
	found := false
	for _, fn := range bf.Flow {
		if fn.Kind == FlowWildcardImport {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a WildcardImport flow node")
	}
}

func TestReferenceFlowAttachedToNameUses(t *testing.T) {
	bf := mustBind(t, "x = 1\nprint(x)\n")
	found := false
	bf.File.Walk(bf.File.Root, func(id pyast.NodeID, n *pyast.Node) bool {
		if n.Kind == pyast.KindName && n.Name == "x" {
			if _, ok := bf.ReferenceFlow[id]; ok {
				found = true
			}
		}
		return true
	})
	if !found {
		t.Fatalf("expected at least one reference to x to carry a flow attachment")
	}
}

func TestWithStatementBindsTargetAndWrapsPostContextManager(t *testing.T) {
	bf := mustBind(t, "with open('f') as fh:\n    pass\n")
	if _, ok := bf.ModuleScope.Symbol("fh"); !ok {
		t.Fatalf("expected with-target fh to be bound")
	}
	found := false
	for _, fn := range bf.Flow {
		if fn.Kind == FlowPostContextManager {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a PostContextManager flow node")
	}
}

func TestFinalAnnotationMarksConstant(t *testing.T) {
	bf := mustBind(t, "X: Final = 1\n")
	sym, ok := bf.ModuleScope.Symbol("X")
	if !ok {
		t.Fatalf("expected X declared")
	}
	decl := sym.Declarations[0]
	if !decl.IsFinal || !decl.IsConstant {
		t.Fatalf("expected X to be IsFinal and IsConstant, got %+v", decl)
	}
}

func TestBuiltinScopeIsSharedParentOfModule(t *testing.T) {
	builtin := NewBuiltinScope()
	bf := Bind(mustParseFile(t, "x = len([1, 2])\n"), builtin)
	if bf.ModuleScope.Parent != builtin {
		t.Fatalf("expected module scope's parent to be the shared builtin scope")
	}
	if _, ok := builtin.Symbol("len"); !ok {
		t.Fatalf("expected len in builtin scope")
	}
}

func mustParseFile(t *testing.T, src string) *pyast.File {
	t.Helper()
	f, _ := pyparser.Parse("<test>", src, pytoken.PyVersion{Major: 3, Minor: 10})
	return f
}
