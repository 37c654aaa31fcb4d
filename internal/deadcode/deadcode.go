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

// Package deadcode implements the two independent dead-code
// passes over an already-computed intraprocedural constant-propagation
// result: the unreachable-code pass (three branch-folded CFG reachability
// traversals, intersected) and the dead-assignment pass (liveness-gated,
// hasNoSideEffect-gated). Grounded on original_source's
// pascal.taie.analysis.deadcode.DeadCodeDetection, restructured around
// github.com/yourbasic/graph for the traversals, reusing the same
// dependency analysis/graph-ops already leans on for its cycle detector.
package deadcode

import (
	graph "github.com/yourbasic/graph"
	"golang.org/x/tools/container/intsets"

	"github.com/flowcore/analysis/internal/constprop"
	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/liveness"
)

// Result is the sorted set of statement indices the CORE deems dead, with
// the CFG's entry/exit sentinels always excluded.
type Result struct {
	Dead []int
}

// Contains reports whether idx is among the dead statement indices.
func (r Result) Contains(idx int) bool {
	for _, d := range r.Dead {
		if d == idx {
			return true
		}
	}
	return false
}

// Analyze runs both passes over m's CFG. cp is the already-computed
// intraprocedural constant-propagation result for m, whose in-facts drive
// the unreachable pass's branch folding.
func Analyze(m ir.Method, cp *constprop.Result) Result {
	cfg := m.IR().CFG

	dead := unreachablePass(cfg, cp)
	for _, idx := range deadAssignmentPass(cfg, liveness.Analyze(m)) {
		dead.Insert(idx)
	}
	dead.Remove(cfg.Entry.Index())
	dead.Remove(cfg.Exit.Index())

	return Result{Dead: dead.AppendTo(nil)}
}

// unreachablePass runs the three reachability traversals and returns every
// statement absent from their intersection.
func unreachablePass(cfg *ir.CFG, cp *constprop.Result) *intsets.Sparse {
	start := cfg.Entry.Index()
	plain := reachableSet(buildGraph(cfg, cp, false, false), start)
	ifFolded := reachableSet(buildGraph(cfg, cp, true, false), start)
	switchFolded := reachableSet(buildGraph(cfg, cp, false, true), start)

	reachable := &intsets.Sparse{}
	reachable.Copy(plain)
	reachable.IntersectionWith(ifFolded)
	reachable.IntersectionWith(switchFolded)

	dead := &intsets.Sparse{}
	for _, n := range cfg.Nodes {
		if !reachable.Has(n.Index()) {
			dead.Insert(n.Index())
		}
	}
	return dead
}

// buildGraph materializes one of the three traversal variants as a
// graph.Mutable over statement indices: foldIf folds If branches against
// cp's in-fact, foldSwitch folds Switch branches; with both false it is
// plain CFG reachability.
func buildGraph(cfg *ir.CFG, cp *constprop.Result, foldIf, foldSwitch bool) *graph.Mutable {
	g := graph.New(len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		succs := cfg.SuccsOf(n)

		if foldIf {
			if s, ok := n.(*ir.If); ok {
				addFoldedIf(g, n, s, succs, cp)
				continue
			}
		}
		if foldSwitch {
			if s, ok := n.(*ir.Switch); ok {
				addFoldedSwitch(g, n, s, succs, cp)
				continue
			}
		}
		for _, e := range succs {
			g.Add(n.Index(), e.Target.Index())
		}
	}
	return g
}

func addFoldedIf(g *graph.Mutable, n ir.Stmt, s *ir.If, succs []ir.CFGEdge, cp *constprop.Result) {
	v := constprop.Evaluate(s.Cond, cp.InFact(n))
	if !v.IsConst() {
		for _, e := range succs {
			g.Add(n.Index(), e.Target.Index())
		}
		return
	}
	want := ir.IfFalse
	if v.Int() != 0 {
		want = ir.IfTrue
	}
	for _, e := range succs {
		if e.Kind == want {
			g.Add(n.Index(), e.Target.Index())
		}
	}
}

func addFoldedSwitch(g *graph.Mutable, n ir.Stmt, s *ir.Switch, succs []ir.CFGEdge, cp *constprop.Result) {
	v := constprop.Evaluate(ir.VarExpr{V: s.Selector}, cp.InFact(n))
	if !v.IsConst() {
		for _, e := range succs {
			g.Add(n.Index(), e.Target.Index())
		}
		return
	}
	c := v.Int()
	matched := false
	for _, e := range succs {
		if e.Kind == ir.SwitchCase && e.Case == c {
			g.Add(n.Index(), e.Target.Index())
			matched = true
		}
	}
	if matched {
		return
	}
	for _, e := range succs {
		if e.Kind == ir.SwitchDefault {
			g.Add(n.Index(), e.Target.Index())
		}
	}
}

// reachableSet runs a BFS from start over g and returns the visited set.
func reachableSet(g *graph.Mutable, start int) *intsets.Sparse {
	visited := &intsets.Sparse{}
	visited.Insert(start)
	graph.BFS(g, start, func(v, w int, c int64) {
		visited.Insert(w)
	})
	return visited
}

// deadAssignmentPass: an Assign is dead iff its RHS has no side effect and
// its LHS is not in liveOut.
func deadAssignmentPass(cfg *ir.CFG, live *liveness.Result) []int {
	var dead []int
	for _, n := range cfg.Nodes {
		asn, ok := n.(*ir.Assign)
		if !ok {
			continue
		}
		if !hasNoSideEffect(asn.Rhs) {
			continue
		}
		if live.OutFact(n).Contains(asn.Lhs) {
			continue
		}
		dead = append(dead, n.Index())
	}
	return dead
}

// hasNoSideEffect implements the predicate: false for
// allocations and DIV/REM arithmetic, true otherwise. Casts and field/array
// accesses are not expressible as an Assign's RHS in this IR (they are
// their own statement kinds), so they never reach this function.
func hasNoSideEffect(e ir.Expr) bool {
	switch exp := e.(type) {
	case ir.NewExpr:
		return false
	case ir.BinExpr:
		return !exp.BinOp.IsDivOrRem()
	default:
		return true
	}
}
