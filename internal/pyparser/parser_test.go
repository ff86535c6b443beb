package pyparser

import (
	"testing"

	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
	"github.com/shivasurya/pathfinder-pytype/internal/pytoken"
)

func mustParse(t *testing.T, src string) *pyast.File {
	t.Helper()
	f, errs := Parse("<test>", src, pytoken.PyVersion{Major: 3, Minor: 10})
	for _, e := range errs {
		t.Logf("parse error: %s @ [%d,%d]", e.Message, e.Start, e.End)
	}
	if errs := pyast.CheckConsistency(f); len(errs) != 0 {
		for _, e := range errs {
			t.Errorf("consistency: %v", e)
		}
	}
	return f
}

func countKind(f *pyast.File, kind pyast.Kind) int {
	n := 0
	f.Walk(f.Root, func(_ pyast.NodeID, node *pyast.Node) bool {
		if node.Kind == kind {
			n++
		}
		return true
	})
	return n
}

func TestParseSimpleFunction(t *testing.T) {
	f := mustParse(t, "def add(x: int, y: int) -> int:\n    return x + y\n")
	if countKind(f, pyast.KindFunctionDef) != 1 {
		t.Fatalf("expected one function def")
	}
	if countKind(f, pyast.KindReturn) != 1 {
		t.Fatalf("expected one return")
	}
}

func TestParseIfElifElse(t *testing.T) {
	f := mustParse(t, "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n")
	if countKind(f, pyast.KindIf) != 2 {
		t.Fatalf("expected 2 If nodes (outer + elif), got %d", countKind(f, pyast.KindIf))
	}
}

func TestParseClassWithBases(t *testing.T) {
	f := mustParse(t, "class Foo(Base, metaclass=Meta):\n    def bar(self):\n        pass\n")
	if countKind(f, pyast.KindClassDef) != 1 {
		t.Fatalf("expected a class def")
	}
}

func TestParseImportForms(t *testing.T) {
	f := mustParse(t, "import os\nfrom . import sibling\nfrom foo.bar import baz as qux\nfrom m import *\n")
	if countKind(f, pyast.KindImport) != 1 {
		t.Fatalf("expected 1 plain import")
	}
	if countKind(f, pyast.KindImportFrom) != 3 {
		t.Fatalf("expected 3 import-from statements, got %d", countKind(f, pyast.KindImportFrom))
	}
}

func TestParseComprehensionAndFString(t *testing.T) {
	f := mustParse(t, "xs = [i for i in range(10) if i % 2 == 0]\nname = f'hello {xs[0]}'\n")
	if countKind(f, pyast.KindComprehension) != 1 {
		t.Fatalf("expected one comprehension")
	}
	if countKind(f, pyast.KindFString) != 1 {
		t.Fatalf("expected one fstring node")
	}
	if countKind(f, pyast.KindFStringExpr) != 1 {
		t.Fatalf("expected one embedded fstring expression")
	}
}

func TestParseWalrusAndTry(t *testing.T) {
	f := mustParse(t, "try:\n    if (n := len(x)) > 0:\n        pass\nexcept ValueError as e:\n    raise\nfinally:\n    pass\n")
	if countKind(f, pyast.KindNamedExpr) != 1 {
		t.Fatalf("expected one named expr (walrus)")
	}
	if countKind(f, pyast.KindTry) != 1 || countKind(f, pyast.KindExceptHandler) != 1 {
		t.Fatalf("expected try/except structure")
	}
}

func TestParseWithStatement(t *testing.T) {
	f := mustParse(t, "with open('f') as fh, open('g') as gh:\n    pass\n")
	if countKind(f, pyast.KindWith) != 1 {
		t.Fatalf("expected with statement")
	}
	if countKind(f, pyast.KindWithItem) != 2 {
		t.Fatalf("expected 2 with items, got %d", countKind(f, pyast.KindWithItem))
	}
}

func TestParseErrorRecoveryProducesErrorNode(t *testing.T) {
	f, errs := Parse("<test>", "x = )\n", pytoken.PyVersion{Major: 3, Minor: 10})
	if len(errs) == 0 {
		t.Fatalf("expected a parse error")
	}
	if countKind(f, pyast.KindError) == 0 {
		t.Fatalf("expected an error placeholder node")
	}
}
