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

// Package liveness implements the backward live-variable analysis used to
// decide whether an assignment's LHS is dead: IN[s] =
// use(s) ∪ (OUT[s] \ def(s)), OUT[s] = ∪ IN[succ], with the boundary fact
// (empty set) installed at the CFG's exit. Instantiates internal/dataflow's
// generic solver backward over SetFact[ir.Var], mirroring how
// internal/constprop instantiates it forward over CPFact. Grounded on
// original_source's pascal.taie.analysis.dataflow.analysis.LiveVariableAnalysis.
package liveness

import (
	"github.com/flowcore/analysis/internal/dataflow"
	"github.com/flowcore/analysis/internal/fact"
	"github.com/flowcore/analysis/internal/ir"
)

// Result is the per-statement fixed point: Result.InFact(s) is liveIn(s),
// Result.OutFact(s) is liveOut(s) (the set internal/deadcode's
// dead-assignment pass tests x against).
type Result = dataflow.Result[*fact.SetFact[ir.Var]]

// Analyze runs live-variable analysis to a fixed point over m's CFG.
func Analyze(m ir.Method) *Result {
	cfg := m.IR().CFG
	a := dataflow.Analysis[*fact.SetFact[ir.Var]]{
		Direction:    dataflow.Backward,
		BoundaryFact: func(*ir.CFG) *fact.SetFact[ir.Var] { return fact.NewSetFact[ir.Var]() },
		InitialFact:  fact.NewSetFact[ir.Var],
		MeetInto: func(src, target *fact.SetFact[ir.Var]) bool {
			return target.Union(src)
		},
		Transfer: Transfer,
	}
	return dataflow.Solve(cfg, a)
}

// Transfer computes in = use(stmt) ∪ (out \ def(stmt)), returning whether in
// changed. out is read-only here; the solver owns mutating it via MeetInto.
func Transfer(stmt ir.Stmt, out, in *fact.SetFact[ir.Var]) bool {
	next := out.Copy()
	if d, ok := Def(stmt); ok {
		next.Remove(d)
	}
	for _, u := range Uses(stmt) {
		next.Add(u)
	}
	if next.Equal(in) {
		return false
	}
	in.Clear()
	in.Union(next)
	return true
}

// Def returns the single variable stmt assigns, if any.
func Def(stmt ir.Stmt) (ir.Var, bool) {
	switch s := stmt.(type) {
	case *ir.Assign:
		return s.Lhs, s.Lhs != nil
	case *ir.Invoke:
		return s.Lhs, s.Lhs != nil
	case *ir.LoadField:
		return s.Lhs, s.Lhs != nil
	case *ir.LoadArray:
		return s.Lhs, s.Lhs != nil
	default:
		return nil, false
	}
}

// Uses returns the variables stmt reads.
func Uses(stmt ir.Stmt) []ir.Var {
	switch s := stmt.(type) {
	case *ir.Assign:
		return exprUses(s.Rhs)
	case *ir.Invoke:
		uses := make([]ir.Var, 0, len(s.Args)+1)
		if s.Recv != nil {
			uses = append(uses, s.Recv)
		}
		uses = append(uses, s.Args...)
		return uses
	case *ir.LoadField:
		if s.Base != nil {
			return []ir.Var{s.Base}
		}
		return nil
	case *ir.StoreField:
		uses := make([]ir.Var, 0, 2)
		if s.Base != nil {
			uses = append(uses, s.Base)
		}
		if s.Rhs != nil {
			uses = append(uses, s.Rhs)
		}
		return uses
	case *ir.LoadArray:
		return []ir.Var{s.Arr, s.Idx}
	case *ir.StoreArray:
		return []ir.Var{s.Arr, s.Idx, s.Rhs}
	case *ir.If:
		return exprUses(s.Cond)
	case *ir.Switch:
		return []ir.Var{s.Selector}
	case *ir.Return:
		if s.ReturnVar != nil {
			return []ir.Var{s.ReturnVar}
		}
		return nil
	default:
		return nil
	}
}

func exprUses(e ir.Expr) []ir.Var {
	switch exp := e.(type) {
	case ir.VarExpr:
		return []ir.Var{exp.V}
	case ir.BinExpr:
		return []ir.Var{exp.X, exp.Y}
	default:
		// ConstExpr, NewExpr read nothing.
		return nil
	}
}
