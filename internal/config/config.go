// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads scancore's YAML configuration: reporting/analysis
// options, the context-sensitivity policy, and the taint specification
// (sources, sinks, transfers) matched against the program's declared
// methods by CodeIdentifier pattern. Grounded on analysis/config's
// Options/Config/TaintSpec/Load shape, narrowed to this module's IR.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/taint"
)

var globalConfigFile string

// SetGlobalConfig sets the filename LoadGlobal reads from.
func SetGlobalConfig(filename string) { globalConfigFile = filename }

// LoadGlobal loads the file set by SetGlobalConfig.
func LoadGlobal() (*Config, error) { return Load(globalConfigFile) }

// Options are the analysis-wide knobs scancore reads from YAML, independent
// of the taint specification.
type Options struct {
	// ReportsDir is loaded from YAML but not read by any analysis or by
	// cmd/scancore, which prints its report to stdout.
	ReportsDir string `yaml:"reports-dir"`

	// ContextSensitivity names a PTA ContextSelector ("insensitive", "kcfa",
	// or "kobj"). cmd/scancore does not read it; it picks the selector from
	// its -pta flag.
	ContextSensitivity string `yaml:"context-sensitivity"`

	// K is the call-string/object-allocation-site depth for kcfa/kobj.
	K int `yaml:"k"`

	// MaxDepth is loaded from YAML but not read: the inter-CP worklist
	// always explores every call level the call graph reaches.
	MaxDepth int `yaml:"max-depth"`

	// LogLevel controls LogGroup verbosity: 1 (error) through 5 (trace).
	LogLevel int `yaml:"log-level"`
}

// TaintSpec is one taint-tracking problem's source/sink/transfer patterns,
// each matched against every method in the program by CodeIdentifier.
type TaintSpec struct {
	Sources   []SourceSpec   `yaml:"sources"`
	Sinks     []SinkSpec     `yaml:"sinks"`
	Transfers []TransferSpec `yaml:"transfers"`
}

// SourceSpec marks methods matching Method as taint sources.
type SourceSpec struct {
	Method CodeIdentifier `yaml:"method"`
}

// SinkSpec marks argument ArgIdx of methods matching Method as a sink.
type SinkSpec struct {
	Method CodeIdentifier `yaml:"method"`
	ArgIdx int            `yaml:"arg"`
}

// TransferSpec propagates taint from argument/receiver From to
// receiver/result To for methods matching Method (an argument To has no
// effect).
type TransferSpec struct {
	Method CodeIdentifier `yaml:"method"`
	From   int            `yaml:"from"`
	To     int            `yaml:"to"`
}

// Config is the whole-file configuration: global Options plus the taint
// specification for this run.
type Config struct {
	Options `yaml:",inline"`

	Taint TaintSpec `yaml:"taint"`

	sourceFile string
}

// NewDefault returns the zero-value Config with scancore's defaults filled
// in.
func NewDefault() *Config {
	return &Config{
		Options: Options{
			ContextSensitivity: "insensitive",
			K:                  1,
			MaxDepth:           -1,
			LogLevel:           int(InfoLevel),
		},
	}
}

// Load reads and unmarshals a YAML config file, applying NewDefault's
// fallbacks for zero-valued fields.
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}
	cfg.sourceFile = filename

	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.ContextSensitivity == "" {
		cfg.ContextSensitivity = "insensitive"
	}
	if cfg.K <= 0 {
		cfg.K = 1
	}

	compileTaintSpec(&cfg.Taint)
	return cfg, nil
}

// SourceFile returns the path Load read cfg from, or "" for NewDefault.
func (c *Config) SourceFile() string { return c.sourceFile }

func compileTaintSpec(t *TaintSpec) {
	for i := range t.Sources {
		t.Sources[i].Method = CompileRegexes(t.Sources[i].Method)
	}
	for i := range t.Sinks {
		t.Sinks[i].Method = CompileRegexes(t.Sinks[i].Method)
	}
	for i := range t.Transfers {
		t.Transfers[i].Method = CompileRegexes(t.Transfers[i].Method)
	}
}

// ResolveTaint expands a TaintSpec's CodeIdentifier patterns against every
// method of prog into a concrete taint.Config keyed by exact MethodRef,
// plus the declared return type (prog's Obj type string, for typing
// synthetic source objects) of each matched source.
func ResolveTaint(spec TaintSpec, prog *ir.Program) (taint.Config, map[ir.MethodRef]string) {
	var out taint.Config
	returns := map[ir.MethodRef]string{}

	for _, m := range prog.AllMethods() {
		ref := ir.MethodRef{Class: m.Class(), Sub: m.Subsignature()}

		for _, s := range spec.Sources {
			if s.Method.Matches(m) {
				out.Sources = append(out.Sources, taint.Source{Method: ref})
				returns[ref] = returnTypeOf(m)
			}
		}
		for _, s := range spec.Sinks {
			if s.Method.Matches(m) {
				out.Sinks = append(out.Sinks, taint.Sink{Method: ref, ArgIdx: s.ArgIdx})
			}
		}
		for _, tr := range spec.Transfers {
			if tr.Method.Matches(m) {
				out.Transfers = append(out.Transfers, taint.Transfer{Method: ref, From: tr.From, To: tr.To})
			}
		}
	}
	return out, returns
}

// returnTypeOf reports a placeholder declared type for a source method's
// return value. The IR's Kind only distinguishes primitive-vs-reference
// (internal/ir.Kind), so any reference-typed source is indistinguishable
// from another without a real front end; "Object" is good enough to give
// synthetic taint objects a non-empty Type().
func returnTypeOf(m ir.Method) string {
	if m.IsAbstract() {
		return ""
	}
	if len(m.IR().ReturnVar) == 0 {
		return ""
	}
	if m.IR().ReturnVar[0].Kind().CanHoldInt() {
		return "int"
	}
	return "Object"
}
