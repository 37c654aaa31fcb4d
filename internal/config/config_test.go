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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowcore/analysis/internal/ir"
)

func TestCodeIdentifierEmptyMatchesAny(t *testing.T) {
	cid := CodeIdentifier{}
	m := ir.NewBuilder("Lib", "source()LString;", true).Build()
	if !cid.Matches(m) {
		t.Fatal("empty CodeIdentifier should match any method")
	}
}

func TestCodeIdentifierExactClassAndSub(t *testing.T) {
	cid := CodeIdentifier{Class: "Lib", Sub: "source()LString;"}
	match := ir.NewBuilder("Lib", "source()LString;", true).Build()
	noMatch := ir.NewBuilder("Other", "source()LString;", true).Build()
	if !cid.Matches(match) {
		t.Fatal("exact class/sub should match")
	}
	if cid.Matches(noMatch) {
		t.Fatal("different class should not match")
	}
}

func TestCodeIdentifierRegex(t *testing.T) {
	cid := CompileRegexes(CodeIdentifier{Class: "^Lib.*", Sub: ""})
	match := ir.NewBuilder("LibImpl", "f()V", true).Build()
	noMatch := ir.NewBuilder("OtherImpl", "f()V", true).Build()
	if !cid.Matches(match) {
		t.Fatal("prefix regex should match LibImpl")
	}
	if cid.Matches(noMatch) {
		t.Fatal("prefix regex should not match OtherImpl")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "reports-dir: /tmp/reports\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ContextSensitivity != "insensitive" {
		t.Fatalf("expected default context-sensitivity, got %q", cfg.ContextSensitivity)
	}
	if cfg.K != 1 {
		t.Fatalf("expected default K=1, got %d", cfg.K)
	}
	if cfg.LogLevel != int(InfoLevel) {
		t.Fatalf("expected default LogLevel=Info, got %d", cfg.LogLevel)
	}
	if cfg.ReportsDir != "/tmp/reports" {
		t.Fatalf("expected reports-dir to be read from the file, got %q", cfg.ReportsDir)
	}
}

func TestResolveTaintMatchesDeclaredMethods(t *testing.T) {
	source := ir.NewBuilder("Lib", "source()LString;", true).Build()
	sink := ir.NewBuilder("Lib", "sink(LString;)V", true).Build()
	main := ir.NewBuilder("Main", "m()V", true).Build()

	prog := ir.NewProgram(ir.NewMapHierarchy(), ir.NewMapHeapModel(), main)
	prog.AddMethod(source)
	prog.AddMethod(sink)
	prog.AddMethod(main)

	spec := TaintSpec{
		Sources: []SourceSpec{{Method: CodeIdentifier{Class: "Lib", Sub: "source()LString;"}}},
		Sinks:   []SinkSpec{{Method: CodeIdentifier{Class: "Lib", Sub: "sink(LString;)V"}, ArgIdx: 0}},
	}
	taintCfg, returns := ResolveTaint(spec, prog)

	if len(taintCfg.Sources) != 1 || taintCfg.Sources[0].Method.Class != "Lib" {
		t.Fatalf("expected exactly the Lib.source method as a source, got %+v", taintCfg.Sources)
	}
	if len(taintCfg.Sinks) != 1 || taintCfg.Sinks[0].ArgIdx != 0 {
		t.Fatalf("expected exactly the Lib.sink method arg 0 as a sink, got %+v", taintCfg.Sinks)
	}
	if _, ok := returns[taintCfg.Sources[0].Method]; !ok {
		t.Fatal("expected a declared return type entry for the matched source")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write test file: %v", err)
	}
}
