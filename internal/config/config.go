// Package config loads the JSON project configuration named in §6: glob
// include/exclude/ignore lists, search-path fields, the Python
// version/platform pair, execution environments, and the per-rule
// severity table.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shivasurya/pathfinder-pytype/internal/diagnostic"
)

// ExecutionEnvironment mirrors one entry of the `executionEnvironments`
// array, per §6.
type ExecutionEnvironment struct {
	Root           string   `json:"root" yaml:"root"`
	PythonVersion  string   `json:"pythonVersion,omitempty" yaml:"pythonVersion,omitempty"`
	PythonPlatform string   `json:"pythonPlatform,omitempty" yaml:"pythonPlatform,omitempty"`
	ExtraPaths     []string `json:"extraPaths,omitempty" yaml:"extraPaths,omitempty"`
}

// Config is the fully-resolved project configuration, combining the JSON
// file's fields (§6) with any `.pathfinder.yml` overlay (ambient stack
// B.2): the YAML file, when present, is merged over the JSON file's
// values field-by-field rather than replacing it outright.
type Config struct {
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Ignore  []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`

	VenvPath     string `json:"venvPath,omitempty" yaml:"venvPath,omitempty"`
	PythonPath   string `json:"pythonPath,omitempty" yaml:"pythonPath,omitempty"`
	TypeshedPath string `json:"typeshedPath,omitempty" yaml:"typeshedPath,omitempty"`
	TypingsPath  string `json:"typingsPath,omitempty" yaml:"typingsPath,omitempty"`

	PythonVersion  string `json:"pythonVersion,omitempty" yaml:"pythonVersion,omitempty"`
	PythonPlatform string `json:"pythonPlatform,omitempty" yaml:"pythonPlatform,omitempty"`

	ExecutionEnvironments []ExecutionEnvironment `json:"executionEnvironments,omitempty" yaml:"executionEnvironments,omitempty"`

	// Report holds the raw `reportX` severity strings as written; Rules()
	// parses them into a diagnostic.RuleTable.
	Report map[string]string `json:"-" yaml:"-"`

	Strict []string `json:"strict,omitempty" yaml:"strict,omitempty"`

	UseLibraryCodeForTypes bool `json:"useLibraryCodeForTypes,omitempty" yaml:"useLibraryCodeForTypes,omitempty"`
}

// Rules parses c.Report into a diagnostic.RuleTable, silently skipping
// any value that isn't one of the four documented severity strings.
// LoadFile does not report such entries either: it drops non-string
// `reportX` values and keeps other strings as written.
func (c *Config) Rules() diagnostic.RuleTable {
	overrides := make(map[string]diagnostic.Severity, len(c.Report))
	for rule, raw := range c.Report {
		if sev, ok := diagnostic.ParseSeverity(raw); ok {
			overrides[rule] = sev
		}
	}
	return diagnostic.NewRuleTable(overrides)
}

// LoadFile reads the JSON config at path, then merges a sibling
// `.pathfinder.yml` (same directory) over it if one exists. Every path
// field has `${workspaceFolder}` expanded against workspaceRoot.
func LoadFile(path, workspaceRoot string) (*Config, error) {
	cfg := &Config{PythonVersion: "3.12", PythonPlatform: "All"}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := unmarshalReportFields(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing report rules in %s: %w", path, err)
	}

	overlay := filepath.Join(filepath.Dir(path), ".pathfinder.yml")
	if data, err := os.ReadFile(overlay); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing overlay %s: %w", overlay, err)
		}
	}

	cfg.expandPaths(workspaceRoot)
	return cfg, nil
}

// unmarshalReportFields extracts every top-level `reportXxx` key from the
// raw JSON object into cfg.Report, since Config's typed fields don't
// enumerate the open-ended rule name set.
func unmarshalReportFields(raw []byte, cfg *Config) error {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	cfg.Report = make(map[string]string)
	for key, val := range generic {
		if !strings.HasPrefix(key, "report") {
			continue
		}
		var s string
		if err := json.Unmarshal(val, &s); err != nil {
			continue
		}
		cfg.Report[key] = s
	}
	return nil
}

func (c *Config) expandPaths(workspaceRoot string) {
	c.VenvPath = expand(c.VenvPath, workspaceRoot)
	c.PythonPath = expand(c.PythonPath, workspaceRoot)
	c.TypeshedPath = expand(c.TypeshedPath, workspaceRoot)
	c.TypingsPath = expand(c.TypingsPath, workspaceRoot)
	for i := range c.ExecutionEnvironments {
		c.ExecutionEnvironments[i].Root = expand(c.ExecutionEnvironments[i].Root, workspaceRoot)
		for j, p := range c.ExecutionEnvironments[i].ExtraPaths {
			c.ExecutionEnvironments[i].ExtraPaths[j] = expand(p, workspaceRoot)
		}
	}
}

func expand(p, workspaceRoot string) string {
	if p == "" {
		return p
	}
	return strings.ReplaceAll(p, "${workspaceFolder}", workspaceRoot)
}

// Default returns the zero-config defaults used when no config file is
// present: project root scanned wholesale, Python 3.12/All, every rule
// at its documented default severity.
func Default() *Config {
	return &Config{
		Include:        []string{"**/*.py", "**/*.pyi"},
		PythonVersion:  "3.12",
		PythonPlatform: "All",
		Report:         map[string]string{},
	}
}

// IncludedFiles filters candidates (relative to root) down to those
// matching Include but neither Exclude nor Ignore, per §6.
func (c *Config) IncludedFiles(candidates []string) []string {
	var out []string
	for _, rel := range candidates {
		if len(c.Include) > 0 && !MatchAny(c.Include, rel) {
			continue
		}
		if MatchAny(c.Exclude, rel) || MatchAny(c.Ignore, rel) {
			continue
		}
		out = append(out, rel)
	}
	return out
}

// IsStrict reports whether path matches one of the `strict` glob patterns.
func (c *Config) IsStrict(path string) bool {
	return MatchAny(c.Strict, path)
}
