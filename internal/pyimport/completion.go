package pyimport

import "strings"

// KnownFramework mirrors the teacher's builtin framework table
// (graph/callgraph/core/frameworks.go): a curated list of well-known
// third-party module prefixes. importsort uses it to place an import in
// the third-party group, and program's completion suggestions draw their
// candidate names from it; the resolver itself does not consult it.
type KnownFramework struct {
	Name     string
	Prefixes []string
	Category string
}

var KnownFrameworks = []KnownFramework{
	{Name: "Django", Prefixes: []string{"django"}, Category: "web"},
	{Name: "Flask", Prefixes: []string{"flask"}, Category: "web"},
	{Name: "FastAPI", Prefixes: []string{"fastapi"}, Category: "web"},
	{Name: "SQLAlchemy", Prefixes: []string{"sqlalchemy"}, Category: "orm"},
	{Name: "requests", Prefixes: []string{"requests"}, Category: "http"},
	{Name: "numpy", Prefixes: []string{"numpy"}, Category: "scientific"},
	{Name: "pytest", Prefixes: []string{"pytest", "_pytest"}, Category: "testing"},
	{Name: "pydantic", Prefixes: []string{"pydantic"}, Category: "validation"},
}

// ClassifyKnownFramework returns the framework name covering `module`, if
// its top-level package matches a known third-party prefix.
func ClassifyKnownFramework(module string) (string, bool) {
	top := module
	if i := strings.IndexByte(module, '.'); i >= 0 {
		top = module[:i]
	}
	for _, fw := range KnownFrameworks {
		for _, prefix := range fw.Prefixes {
			if top == prefix {
				return fw.Name, true
			}
		}
	}
	return "", false
}

// Completion is one candidate module name offered for a partial dotted
// reference, per §4.3 "Completion-suggestion mode".
type Completion struct {
	Name       string
	Similarity float64
}

// SuggestModules returns candidate module names at the current depth that
// are similar to `partial` by normalized Levenshtein distance, filtering
// out anything below `threshold`. `candidates` is the set of sibling
// names available at this depth (e.g. directory listing results).
func SuggestModules(partial string, candidates []string, threshold float64) []Completion {
	var out []Completion
	for _, cand := range candidates {
		sim := similarity(partial, cand)
		if sim >= threshold {
			out = append(out, Completion{Name: cand, Similarity: sim})
		}
	}
	return out
}

func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(maxLen)
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	row := make([]int, lb+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= la; i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= lb; j++ {
			cur := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = minOf3(row[j]+1, row[j-1]+1, prev+cost)
			prev = cur
		}
	}
	return row[lb]
}

func minOf3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
