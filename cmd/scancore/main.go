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

// scancore: drives CHA, pointer/taint analysis and interprocedural
// constant propagation over a program built from an ir.Builder, printing a
// flow report.
//
// Usage:
//
//	scancore [-taint-config path.yaml] [-pta insensitive|kcfa|kobj] [-entry Class.sub]
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/flowcore/analysis/internal/cha"
	"github.com/flowcore/analysis/internal/config"
	"github.com/flowcore/analysis/internal/constprop"
	"github.com/flowcore/analysis/internal/deadcode"
	"github.com/flowcore/analysis/internal/fact"
	"github.com/flowcore/analysis/internal/intercp"
	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/pta"
	"github.com/flowcore/analysis/internal/taint"
)

var (
	taintConfigPath = flag.String("taint-config", "", "YAML file with analysis options and a taint specification")
	ptaMode         = flag.String("pta", "insensitive", "pointer-analysis context sensitivity: insensitive, kcfa, kobj")
	entryRef        = flag.String("entry", "Main.m()V", "entry method, as Class.subsignature")
)

func main() {
	flag.Parse()

	cfg := config.NewDefault()
	if *taintConfigPath != "" {
		var err error
		cfg, err = config.Load(*taintConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scancore: could not load %s: %v\n", *taintConfigPath, err)
			os.Exit(1)
		}
	}
	log := config.NewLogGroup(cfg)

	width, _, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}

	prog := demoProgram()
	entry := prog.Main
	if ref, ok := parseMethodRef(*entryRef); ok {
		if m := prog.MethodByRef(ref); m != nil {
			entry = m
		} else {
			log.Warnf("entry %q not found in the demo program, using %s\n", *entryRef, entry.String())
		}
	}
	log.Infof("entry: %s\n", entry.String())

	log.Infof("running class-hierarchy analysis\n")
	callGraph := cha.Build(prog.Hierarchy, entry)
	edgeCount := 0
	for _, edges := range callGraph.CallEdges {
		edgeCount += len(edges)
	}
	log.Infof("CHA call graph: %d reachable methods, %d edges\n", len(callGraph.Reachable), edgeCount)

	log.Infof("running pointer analysis (%s)\n", *ptaMode)
	selector, err := selectorFor(*ptaMode, cfg.K)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scancore: %v\n", err)
		os.Exit(1)
	}
	solver := pta.NewSolver(prog.Hierarchy, prog.Heap, selector)

	taintCfg, returnTypes := config.ResolveTaint(cfg.Taint, prog)
	hook := taint.NewHook(taintCfg, returnTypes)
	solver.SetTaintHook(hook)

	result := solver.Solve(entry)
	log.Infof("points-to analysis reached %d call edges\n", len(result.CallGraph.Edges))

	flows := taint.CollectSinks(taintCfg, result.CallGraph, result.Manager)
	if len(flows) == 0 {
		log.Infof("no source-to-sink taint flows found\n")
	}
	for _, f := range flows {
		fmt.Printf("tainted data flows from %s to %s (arg %d)\n", f.SourceSite, f.SinkSite, f.ArgIdx)
	}

	log.Infof("running interprocedural constant propagation\n")
	icp := intercp.Analyze(prog, result, entry)

	printReport(prog, icp, width)
}

// parseMethodRef splits "Class.sub" into an ir.MethodRef. The subsignature
// itself may contain dots (e.g. package-qualified types), so only the
// first dot is treated as the separator.
func parseMethodRef(s string) (ir.MethodRef, bool) {
	i := strings.Index(s, ".")
	if i < 0 {
		return ir.MethodRef{}, false
	}
	return ir.MethodRef{Class: s[:i], Sub: ir.Subsignature(s[i+1:])}, true
}

func selectorFor(mode string, k int) (pta.ContextSelector, error) {
	switch mode {
	case "insensitive":
		return pta.InsensitiveSelector{}, nil
	case "kcfa":
		return pta.KCFASelector{K: k}, nil
	case "kobj":
		return pta.KObjSelector{K: k}, nil
	default:
		return nil, fmt.Errorf("unknown -pta mode %q", mode)
	}
}

// printReport prints, for every non-abstract method prog holds, each
// statement's interprocedural OUT fact, marking the statements that
// intraprocedural dead-code detection finds dead. width only sizes the
// divider between methods; fact lines are not wrapped.
func printReport(prog *ir.Program, icp *intercp.Result, width int) {
	for _, m := range prog.AllMethods() {
		if m.IsAbstract() {
			continue
		}
		fmt.Println(divider(width))
		fmt.Printf("%s\n", m.String())

		cp := constprop.Analyze(m)
		dead := deadcode.Analyze(m, cp)

		for _, stmt := range m.IR().Stmts {
			marker := ""
			if dead.Contains(stmt.Index()) {
				marker = " [dead]"
			}
			fmt.Printf("  #%d%s %s\n", stmt.Index(), marker, factLine(icp.Out[stmt]))
		}
	}
}

// factLine renders a statement's OUT fact as "var=value" pairs, skipping
// variables still at UNDEF (nothing worth reporting yet).
func factLine(f *fact.CPFact) string {
	if f == nil {
		return ""
	}
	var sb strings.Builder
	for _, v := range f.Keys() {
		val := f.Get(v)
		if val.IsUndef() {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%s", v.Name(), val.String())
	}
	return sb.String()
}

func divider(width int) string {
	if width > 120 {
		width = 120
	}
	b := make([]byte, width)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}

// demoProgram builds the toy Main.m()V / Helper.f(I)I program scancore
// runs by default, standing in for a real front end that would otherwise
// translate source into this module's IR.
func demoProgram() *ir.Program {
	h := ir.NewBuilder("Helper", "f(I)I", true)
	p := ir.NewVar("p", ir.KindInt)
	h.Param(p)
	ret := h.Add(func(i int) ir.Stmt { return ir.NewReturn(i, p) })
	h.Edge(h.Entry(), ir.Normal, ret)
	h.Edge(ret, ir.Normal, h.Exit())
	helper := h.Build()

	m := ir.NewBuilder("Main", "m()V", true)
	x := ir.NewVar("x", ir.KindInt)
	y := ir.NewVar("y", ir.KindInt)
	s1 := m.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 1}) })
	s2 := m.Add(func(i int) ir.Stmt {
		return ir.NewInvoke(i, ir.Static, ir.MethodRef{Class: "Helper", Sub: "f(I)I"}, nil, []ir.Var{x}, y)
	})
	m.Edge(m.Entry(), ir.Normal, s1)
	m.Edge(s1, ir.Normal, s2)
	m.Edge(s2, ir.Normal, m.Exit())
	main := m.Build()

	hierarchy := ir.NewMapHierarchy()
	hierarchy.AddMethod(main)
	hierarchy.AddMethod(helper)

	heap := ir.NewMapHeapModel()
	prog := ir.NewProgram(hierarchy, heap, main)
	prog.AddMethod(main)
	prog.AddMethod(helper)
	return prog
}
