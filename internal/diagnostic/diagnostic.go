// Package diagnostic implements the diagnostic sink named in §2 and §7: a
// severity-classified, range-tagged collection of findings produced while
// analyzing a file, plus the two concrete code actions an editor can offer
// against one ("CreateTypeStub", "AddMissingOptional").
package diagnostic

import (
	"sort"

	"github.com/shivasurya/pathfinder-pytype/internal/sourcetext"
)

// Severity mirrors the four levels a config rule can be set to, per §6's
// config file `reportX` fields: "none" suppresses a rule entirely.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInformation
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityInformation:
		return "information"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity accepts the config file's four string spellings.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "none":
		return SeverityNone, true
	case "information":
		return SeverityInformation, true
	case "warning":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	default:
		return SeverityNone, false
	}
}

// ActionKind enumerates the two concrete editor actions named in §6.
type ActionKind int

const (
	ActionCreateTypeStub ActionKind = iota
	ActionAddMissingOptional
)

// Action is one editor-offered fix attached to a Diagnostic.
type Action struct {
	Kind ActionKind

	// CreateTypeStub
	ModuleName string

	// AddMissingOptional
	TypeNodeOffset int
}

// RelatedInfo points a diagnostic at a secondary location worth showing
// alongside the primary message (e.g. the conflicting earlier declaration).
type RelatedInfo struct {
	File    string
	Range   sourcetext.Range
	Message string
}

// Diagnostic is the shape named in §6: severity, a stable rule code, a
// range, a message, and optional related locations/actions.
type Diagnostic struct {
	File     string
	Severity Severity
	Code     string
	Range    sourcetext.Range
	Message  string
	Related  []RelatedInfo
	Actions  []Action
}

// Sink collects diagnostics for one file and produces them ordered by
// start offset, per §4.6's get_diagnostics contract. A zero Sink is ready
// to use.
type Sink struct {
	items []Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report appends d, applying no ordering yet; Diagnostics sorts on read.
// A SeverityNone diagnostic is dropped here, not carried and filtered
// later, matching §7's "none suppresses entirely".
func (s *Sink) Report(d Diagnostic) {
	if d.Severity == SeverityNone {
		return
	}
	s.items = append(s.items, d)
}

// Diagnostics returns every reported diagnostic ordered by start offset,
// then by code for stability among same-offset findings.
func (s *Sink) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Range.Start != out[j].Range.Start {
			return out[i].Range.Start < out[j].Range.Start
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Len reports how many diagnostics have been reported (pre-suppression
// counting already applied by Report).
func (s *Sink) Len() int {
	return len(s.items)
}

// Reset clears the sink for reuse, called before a file is re-analyzed.
func (s *Sink) Reset() {
	s.items = s.items[:0]
}

// InRange reports whether d's range overlaps rng, used by
// Program.GetDiagnostics when a caller narrows the request to one range.
func (d Diagnostic) InRange(rng sourcetext.Range) bool {
	return d.Range.Start < rng.End && rng.Start < d.Range.End
}
