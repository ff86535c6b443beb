package diagnostic

import (
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/shivasurya/pathfinder-pytype/internal/sourcetext"
)

// toolName/toolVersion identify the run in the SARIF "driver" block; the
// CLI overwrites toolVersion with its own build-time Version via
// SetToolVersion before it writes a report.
const toolName = "pathfinder"

var toolVersion = "dev"

// SetToolVersion records the CLI's build-time version for WriteSARIF's
// driver block.
func SetToolVersion(v string) { toolVersion = v }

// WriteSARIF emits a SARIF 2.1.0 report for the given per-file diagnostics
// (keyed by absolute path), the `--outputjson`-adjacent sibling format
// named in the ambient CLI surface for CI integration.
func WriteSARIF(w io.Writer, byFile map[string][]Diagnostic, index map[string]*sourcetext.Index) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}
	run := sarif.NewRunWithInformationURI(toolName, "https://github.com/shivasurya/pathfinder-pytype")
	run.Tool.Driver.Version = &toolVersion

	seen := make(map[string]bool)
	for _, diags := range byFile {
		for _, d := range diags {
			if seen[d.Code] {
				continue
			}
			seen[d.Code] = true
			run.AddRule(d.Code).
				WithDescription(d.Code).
				WithHelpURI("https://github.com/shivasurya/pathfinder-pytype/docs/rules/" + d.Code)
		}
	}

	for path, diags := range byFile {
		idx := index[path]
		for _, d := range diags {
			startLine, startCol := 1, 1
			endLine, endCol := 1, 1
			if idx != nil {
				sp := idx.PositionAt(d.Range.Start)
				ep := idx.PositionAt(d.Range.End)
				startLine, startCol = sp.Line+1, sp.Column+1
				endLine, endCol = ep.Line+1, ep.Column+1
			}
			region := sarif.NewRegion().
				WithStartLine(startLine).
				WithStartColumn(startCol).
				WithEndLine(endLine).
				WithEndColumn(endCol)
			loc := sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(path)).
				WithRegion(region)
			result := run.CreateResultForRule(d.Code).
				WithLevel(sarifLevel(d.Severity)).
				WithMessage(sarif.NewTextMessage(d.Message)).
				WithLocations([]*sarif.Location{sarif.NewLocationWithPhysicalLocation(loc)})
			_ = result
		}
	}
	report.AddRun(run)
	return report.PrettyWrite(w)
}

func sarifLevel(s Severity) string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "note"
	default:
		return "none"
	}
}
