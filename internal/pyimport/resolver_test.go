package pyimport

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveLocalPackage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "pkg", "mod.py"), "x = 1\n")
	importing := filepath.Join(root, "main.py")
	writeFile(t, importing, "")

	r := NewResolver(Options{ProjectRoot: root}, nil)
	res := r.Resolve(importing, "pkg.mod", 0)
	if len(res.ResolvedPaths) != 1 {
		t.Fatalf("expected one resolved path, got %v", res.ResolvedPaths)
	}
	if res.Type != ImportLocal {
		t.Fatalf("expected local import, got %v", res.Type)
	}
}

func TestPreferStubOverSource(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "mod.py"), "x = 1\n")
	writeFile(t, filepath.Join(root, "mod.pyi"), "x: int\n")
	importing := filepath.Join(root, "main.py")

	r := NewResolver(Options{ProjectRoot: root}, nil)
	res := r.Resolve(importing, "mod", 0)
	if !res.IsStubFile {
		t.Fatalf("expected stub file to be preferred")
	}
}

func TestNamespacePackage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ns", "mod.py"), "x = 1\n")
	importing := filepath.Join(root, "main.py")

	r := NewResolver(Options{ProjectRoot: root}, nil)
	res := r.Resolve(importing, "ns", 0)
	if len(res.ResolvedPaths) != 1 || res.ResolvedPaths[0] != filepath.Join(root, "ns") {
		t.Fatalf("expected namespace package directory resolved, got %v", res.ResolvedPaths)
	}
}

func TestRelativeImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "pkg", "sibling.py"), "")
	importing := filepath.Join(root, "pkg", "main.py")
	writeFile(t, importing, "")

	r := NewResolver(Options{ProjectRoot: root}, nil)
	res := r.Resolve(importing, "sibling", 1)
	if !res.IsRelative || len(res.ResolvedPaths) != 1 {
		t.Fatalf("expected relative resolution, got %+v", res)
	}
}

func TestImplicitSubImports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "a", "b", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "a", "b", "c.py"), "")
	importing := filepath.Join(root, "main.py")

	r := NewResolver(Options{ProjectRoot: root}, nil)
	res := r.Resolve(importing, "a.b.c", 0)
	if len(res.ImplicitSubImports) != 2 {
		t.Fatalf("expected 2 implicit sub-imports, got %v", res.ImplicitSubImports)
	}
}

func TestClassifyKnownFramework(t *testing.T) {
	name, ok := ClassifyKnownFramework("django.http")
	if !ok || name != "Django" {
		t.Fatalf("expected Django classification, got %q %v", name, ok)
	}
}

func TestSuggestModules(t *testing.T) {
	out := SuggestModules("requets", []string{"requests", "re", "os"}, 0.6)
	if len(out) != 1 || out[0].Name != "requests" {
		t.Fatalf("expected requests to be suggested, got %v", out)
	}
}
