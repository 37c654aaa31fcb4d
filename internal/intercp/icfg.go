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

// Package intercp lifts intraprocedural constant propagation to a whole
// program: it builds an interprocedural control-flow graph over every
// method the program holds (call sites split into Call/CallToReturn/Return edges),
// derives an alias map and a field/array load-store index from a completed
// pointer analysis, and runs a worklist that re-enqueues aliased loads when
// a store changes -- the one non-standard wrinkle a plain forward
// dataflow.Solve can't express. Grounded on internal/pta's call-graph and
// PFG shapes and on internal/constprop's evaluate(), generalized across
// method boundaries.
package intercp

import (
	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/pta"
)

// EdgeKind tags an ICFG edge with the interprocedural role it plays in the
// solver's edge-transfer step.
type EdgeKind int

const (
	// Normal is an ordinary intraprocedural flow edge, copied verbatim from
	// the method's own CFG.
	Normal EdgeKind = iota
	// CallToReturn skips a call site directly to its successor, carrying
	// every local variable except the call's result (which only arrives via
	// a Return edge).
	CallToReturn
	// Call connects a call site to a resolved callee's entry.
	Call
	// Return connects a resolved callee's exit back to the call site's
	// successor, carrying only the call's result variable.
	Return
)

// Edge is one ICFG edge. Callee is set on Call edges (the resolved target);
// CallSite is set on Return edges (the originating call, needed to find its
// result variable since the edge's source is the callee's exit, not the
// call itself).
type Edge struct {
	Kind     EdgeKind
	Callee   ir.Method
	CallSite *ir.Invoke
	Target   ir.Stmt
}

// ICFG is the whole-program control-flow graph the solver runs over:
// every statement of every non-abstract method the program holds, whether
// or not PTA reached it, linked by Normal edges within
// a method and by Call/CallToReturn/Return edges across call sites.
type ICFG struct {
	Nodes []ir.Stmt

	owner map[ir.Stmt]ir.Method
	succs map[ir.Stmt][]Edge
	preds map[ir.Stmt][]Edge
}

// Build constructs the ICFG over every method prog knows about, wiring call
// sites against the callees cg actually resolved (so an ICFG call edge
// exists only where PTA proved a target reachable).
func Build(prog *ir.Program, cg *pta.CSCallGraph) *ICFG {
	g := &ICFG{
		owner: map[ir.Stmt]ir.Method{},
		succs: map[ir.Stmt][]Edge{},
		preds: map[ir.Stmt][]Edge{},
	}

	calleesOf := map[*ir.Invoke]map[ir.Method]bool{}
	for _, e := range cg.Edges {
		set, ok := calleesOf[e.Caller.Site]
		if !ok {
			set = map[ir.Method]bool{}
			calleesOf[e.Caller.Site] = set
		}
		set[e.Callee.Method] = true
	}

	for _, m := range prog.AllMethods() {
		if m.IsAbstract() {
			continue
		}
		for _, stmt := range m.IR().Stmts {
			g.owner[stmt] = m
			g.Nodes = append(g.Nodes, stmt)
		}
	}

	for _, m := range prog.AllMethods() {
		if m.IsAbstract() {
			continue
		}
		cfg := m.IR().CFG
		for _, stmt := range m.IR().Stmts {
			inv, isInvoke := stmt.(*ir.Invoke)
			for _, cfgEdge := range cfg.SuccsOf(stmt) {
				if !isInvoke {
					g.addEdge(stmt, Edge{Kind: Normal, Target: cfgEdge.Target})
					continue
				}
				g.addEdge(stmt, Edge{Kind: CallToReturn, Target: cfgEdge.Target})
				for callee := range calleesOf[inv] {
					if callee.IsAbstract() {
						continue
					}
					g.addEdge(stmt, Edge{Kind: Call, Callee: callee, Target: callee.IR().CFG.Entry})
					g.addEdge(callee.IR().CFG.Exit, Edge{Kind: Return, CallSite: inv, Target: cfgEdge.Target})
				}
			}
		}
	}

	return g
}

func (g *ICFG) addEdge(src ir.Stmt, e Edge) {
	g.succs[src] = append(g.succs[src], e)
	g.preds[e.Target] = append(g.preds[e.Target], Edge{Kind: e.Kind, Callee: e.Callee, CallSite: e.CallSite, Target: src})
}

// SuccsOf returns the outgoing edges of s.
func (g *ICFG) SuccsOf(s ir.Stmt) []Edge { return g.succs[s] }

// PredsOf returns the incoming edges of s; as with ir.CFG.PredsOf, Target
// holds the predecessor statement in this reversed view, not s itself.
func (g *ICFG) PredsOf(s ir.Stmt) []Edge { return g.preds[s] }

// Owner returns the method a statement belongs to.
func (g *ICFG) Owner(s ir.Stmt) ir.Method { return g.owner[s] }
