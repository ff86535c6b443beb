package program

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivasurya/pathfinder-pytype/internal/diagnostic"
	"github.com/shivasurya/pathfinder-pytype/internal/sourcetext"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestProgram(t *testing.T, root string) *Program {
	t.Helper()
	p := New(nil)
	p.SetOptions(Options{ProjectRoot: root})
	return p
}

func analyzeToCompletion(t *testing.T, p *Program) {
	t.Helper()
	for i := 0; i < 100; i++ {
		more, err := p.Analyze(Budget{Ctx: context.Background(), MaxFiles: 4})
		require.NoError(t, err)
		if !more {
			return
		}
	}
	t.Fatal("analysis did not converge")
}

func TestMissingImportDiagnostic(t *testing.T) {
	root := t.TempDir()
	main := filepath.Join(root, "main.py")
	writeFile(t, main, "import totally_unknown_package\n")

	p := newTestProgram(t, root)
	p.SetTrackedFiles([]string{main})
	analyzeToCompletion(t, p)

	diags, err := p.GetDiagnostics(main, nil)
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Code == diagnostic.RuleMissingImport {
			found = true
		}
	}
	assert.True(t, found, "expected a missing-import diagnostic, got %+v", diags)
}

func TestPossiblyUnboundDiagnostic(t *testing.T) {
	root := t.TempDir()
	main := filepath.Join(root, "main.py")
	writeFile(t, main, "if cond():\n    x = 1\nprint(x)\n\ndef cond():\n    return True\n")

	p := newTestProgram(t, root)
	p.SetTrackedFiles([]string{main})
	analyzeToCompletion(t, p)

	diags, err := p.GetDiagnostics(main, nil)
	require.NoError(t, err)
	found := false
	for _, d := range diags {
		if d.Code == diagnostic.RulePossiblyUnbound {
			found = true
		}
	}
	assert.True(t, found, "expected a possibly-unbound diagnostic, got %+v", diags)
}

func TestGetTypeOnIntLiteral(t *testing.T) {
	root := t.TempDir()
	main := filepath.Join(root, "main.py")
	writeFile(t, main, "x = 1\n")

	p := newTestProgram(t, root)
	p.SetTrackedFiles([]string{main})
	analyzeToCompletion(t, p)

	typ, ok := p.GetType(main, sourcetext.Position{Line: 0, Column: 4})
	require.True(t, ok)
	require.NotNil(t, typ)
}
