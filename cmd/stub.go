package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shivasurya/pathfinder-pytype/internal/analytics"
	"github.com/shivasurya/pathfinder-pytype/internal/program"
	"github.com/shivasurya/pathfinder-pytype/internal/types"
)

// runCreateStub implements §6's --createstub: a trivial `.pyi` skeleton
// for the resolved module, per the spec's Non-goal of full type-directed
// stub inference — the file just declares the module has an unknown
// public surface rather than attempting to reproduce it.
func runCreateStub(prog *program.Program, module, projectRoot string) error {
	analytics.ReportEvent(analytics.CreateStubCommand)
	fromFile := filepath.Join(projectRoot, "__pathfinder_cli__.py")
	res, ok := prog.ResolveImport(fromFile, module, 0)
	if !ok || len(res.ResolvedPaths) == 0 {
		fmt.Fprintf(os.Stderr, "pathfinder: could not resolve module %q\n", module)
		return cobraExit(exitErrorsFound)
	}
	stubPath := filepath.Join(projectRoot, module+".pyi")
	content := "from typing import Any\n\ndef __getattr__(name: str) -> Any: ...\n"
	if err := os.WriteFile(stubPath, []byte(content), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "pathfinder: writing stub:", err)
		return cobraExit(exitIOOrConfig)
	}
	fmt.Printf("wrote stub for %s to %s\n", module, stubPath)
	return cobraExit(exitOK)
}

// runVerifyTypes implements §6's --verifytypes: the fraction of module's
// top-level public declarations whose inferred type is neither Unknown
// nor Any.
func runVerifyTypes(prog *program.Program, module, projectRoot string) error {
	analytics.ReportEvent(analytics.VerifyTypesCommand)
	fromFile := filepath.Join(projectRoot, "__pathfinder_cli__.py")
	res, ok := prog.ResolveImport(fromFile, module, 0)
	if !ok || len(res.ResolvedPaths) == 0 {
		fmt.Fprintf(os.Stderr, "pathfinder: could not resolve module %q\n", module)
		return cobraExit(exitErrorsFound)
	}
	bf, ok := prog.BoundFileAt(res.ResolvedPaths[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "pathfinder: could not bind module %q\n", module)
		return cobraExit(exitIOOrConfig)
	}
	total, known := 0, 0
	for _, name := range bf.ModuleScope.Names() {
		if len(name) > 0 && name[0] == '_' {
			continue
		}
		sym, ok := bf.ModuleScope.Symbol(name)
		if !ok || sym.Latest() == nil {
			continue
		}
		total++
		t := prog.TypeOfDeclaration(bf, sym.Latest())
		if t != nil && t.Kind != types.KindUnknown && t.Kind != types.KindAny {
			known++
		}
	}
	if total == 0 {
		fmt.Printf("%s: no public declarations found\n", module)
		return cobraExit(exitOK)
	}
	pct := float64(known) / float64(total) * 100
	fmt.Printf("%s: %d/%d (%.1f%%) public symbols have known types\n", module, known, total, pct)
	if known < total {
		return cobraExit(exitErrorsFound)
	}
	return cobraExit(exitOK)
}
