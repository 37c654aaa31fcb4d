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

// Package cha implements the Class Hierarchy Analysis call-graph
// builder: a reachability worklist over methods, driven by resolve()/
// dispatch() for the four invoke kinds. Grounded on original_source's
// pascal.taie.analysis.graph.callgraph.CHABuilder, with the subtype-closure
// step (direct subclasses/subinterfaces/implementors, transitive reflexive)
// run over github.com/yourbasic/graph the way analysis/graph-ops already
// leans on that package for graph traversal.
package cha

import (
	graph "github.com/yourbasic/graph"
	"golang.org/x/tools/container/intsets"

	"github.com/flowcore/analysis/internal/ir"
)

// Edge is one resolved call-site -> callee edge.
type Edge struct {
	Site   *ir.Invoke
	Callee ir.Method
}

// CallGraph is the result of Build: every reachable method (in worklist
// discovery order) and the resolved call edges out of each.
type CallGraph struct {
	Reachable []ir.Method
	CallEdges map[ir.Method][]Edge
}

// Build runs the worklist algorithm from entry over hierarchy.
func Build(hierarchy ir.ClassHierarchy, entry ir.Method) *CallGraph {
	cg := &CallGraph{CallEdges: map[ir.Method][]Edge{}}
	seen := map[ir.Method]bool{entry: true}
	cg.Reachable = append(cg.Reachable, entry)
	queue := []ir.Method{entry}

	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		if m.IsAbstract() {
			continue
		}
		for _, stmt := range m.IR().Stmts {
			inv, ok := stmt.(*ir.Invoke)
			if !ok {
				continue
			}
			for _, callee := range Resolve(hierarchy, inv) {
				cg.CallEdges[m] = append(cg.CallEdges[m], Edge{Site: inv, Callee: callee})
				if !seen[callee] {
					seen[callee] = true
					cg.Reachable = append(cg.Reachable, callee)
					queue = append(queue, callee)
				}
			}
		}
	}
	return cg
}

// Resolve implements the resolve(c): the set of methods a call
// site may actually invoke.
func Resolve(hierarchy ir.ClassHierarchy, inv *ir.Invoke) []ir.Method {
	switch inv.InvKind {
	case ir.Static:
		if m := hierarchy.DeclaredMethod(inv.Callee.Class, inv.Callee.Sub); m != nil {
			return []ir.Method{m}
		}
		return nil
	case ir.Special:
		if m := Dispatch(hierarchy, inv.Callee.Class, inv.Callee.Sub); m != nil {
			return []ir.Method{m}
		}
		return nil
	case ir.Virtual, ir.Interface:
		var out []ir.Method
		seen := map[ir.Method]bool{}
		for _, cls := range transitiveReflexiveClosure(hierarchy, inv.Callee.Class) {
			m := Dispatch(hierarchy, cls, inv.Callee.Sub)
			if m != nil && !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// Dispatch implements the dispatch(cls, subsig): the method
// declared in cls matching subsig if non-abstract, else recurse to the
// superclass, else nil.
func Dispatch(hierarchy ir.ClassHierarchy, cls string, sub ir.Subsignature) ir.Method {
	for {
		if m := hierarchy.DeclaredMethod(cls, sub); m != nil && !m.IsAbstract() {
			return m
		}
		super, ok := hierarchy.SuperClassOf(cls)
		if !ok {
			return nil
		}
		cls = super
	}
}

// transitiveReflexiveClosure returns root and every class reachable from it
// via direct subclass/subinterface/implementor edges, root included. The
// universe of classes is discovered by walking the hierarchy first (its
// size is not known up front), then re-materialized as a fixed-order
// graph.Mutable so the actual closure traversal runs as a graph.BFS over
// class indices.
func transitiveReflexiveClosure(hierarchy ir.ClassHierarchy, root string) []string {
	order, ids := discoverUniverse(hierarchy, root)

	g := graph.New(len(order))
	for _, cls := range order {
		for _, succ := range successorsOf(hierarchy, cls) {
			g.Add(ids[cls], ids[succ])
		}
	}

	visited := &intsets.Sparse{}
	rootID := ids[root]
	visited.Insert(rootID)
	graph.BFS(g, rootID, func(v, w int, c int64) {
		visited.Insert(w)
	})

	out := make([]string, 0, visited.Len())
	for _, id := range visited.AppendTo(nil) {
		out = append(out, order[id])
	}
	return out
}

func successorsOf(hierarchy ir.ClassHierarchy, cls string) []string {
	succ := append([]string(nil), hierarchy.DirectSubclassesOf(cls)...)
	succ = append(succ, hierarchy.DirectSubinterfacesOf(cls)...)
	succ = append(succ, hierarchy.DirectImplementorsOf(cls)...)
	return succ
}

func discoverUniverse(hierarchy ir.ClassHierarchy, root string) ([]string, map[string]int) {
	ids := map[string]int{root: 0}
	order := []string{root}
	queue := []string{root}
	for len(queue) > 0 {
		cls := queue[0]
		queue = queue[1:]
		for _, succ := range successorsOf(hierarchy, cls) {
			if _, ok := ids[succ]; !ok {
				ids[succ] = len(order)
				order = append(order, succ)
				queue = append(queue, succ)
			}
		}
	}
	return order, ids
}
