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

package intercp

import (
	"github.com/flowcore/analysis/internal/constprop"
	"github.com/flowcore/analysis/internal/dataflow"
	"github.com/flowcore/analysis/internal/fact"
	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/lattice"
	"github.com/flowcore/analysis/internal/pta"
)

// Result is the whole-program fixed point: an IN/OUT CPFact per statement,
// across every method in the ICFG.
type Result struct {
	In  map[ir.Stmt]*fact.CPFact
	Out map[ir.Stmt]*fact.CPFact
}

// ForMethod slices the global result down to the per-method shape
// described for the CORE's per-method outputs.
func (r *Result) ForMethod(m ir.Method) *dataflow.Result[*fact.CPFact] {
	out := &dataflow.Result[*fact.CPFact]{In: map[ir.Stmt]*fact.CPFact{}, Out: map[ir.Stmt]*fact.CPFact{}}
	for _, stmt := range m.IR().Stmts {
		out.In[stmt] = r.In[stmt]
		out.Out[stmt] = r.Out[stmt]
	}
	return out
}

// Analyze runs interprocedural constant propagation over every method prog
// holds, using result's call graph (for the ICFG's call edges) and its
// points-to sets (for the alias map). entry is the method
// whose formal parameters seed the boundary fact, normally prog.Main.
func Analyze(prog *ir.Program, result *pta.Result, entry ir.Method) *Result {
	icfg := Build(prog, result.CallGraph)
	aliases := BuildAliasMap(result)
	fields := BuildFieldIndex(prog)
	return newSolver(icfg, aliases, fields, entry).solve()
}

type solver struct {
	icfg    *ICFG
	aliases *AliasMap
	fields  *FieldIndex
	entry   ir.Stmt

	in  map[ir.Stmt]*fact.CPFact
	out map[ir.Stmt]*fact.CPFact

	queue  []ir.Stmt
	queued map[ir.Stmt]bool

	boundary *fact.CPFact
}

func newSolver(icfg *ICFG, aliases *AliasMap, fields *FieldIndex, entryMethod ir.Method) *solver {
	s := &solver{
		icfg:    icfg,
		aliases: aliases,
		fields:  fields,
		entry:   entryMethod.IR().CFG.Entry,
		in:      map[ir.Stmt]*fact.CPFact{},
		out:     map[ir.Stmt]*fact.CPFact{},
		queued:  map[ir.Stmt]bool{},
	}
	s.boundary = fact.NewCPFact()
	for _, p := range entryMethod.IR().Params {
		if ir.CanHoldInt(p) {
			s.boundary.Update(p, lattice.NacValue)
		}
	}
	for _, n := range icfg.Nodes {
		s.in[n] = fact.NewCPFact()
		s.out[n] = fact.NewCPFact()
		s.enqueue(n)
	}
	return s
}

func (s *solver) enqueue(n ir.Stmt) {
	if !s.queued[n] {
		s.queued[n] = true
		s.queue = append(s.queue, n)
	}
}

func (s *solver) solve() *Result {
	for len(s.queue) > 0 {
		n := s.queue[0]
		s.queue = s.queue[1:]
		s.queued[n] = false

		in := s.meetIncoming(n)
		s.in[n] = in

		out, changed := s.localTransfer(n, in)
		if !changed {
			continue
		}
		s.out[n] = out

		if st, ok := n.(*ir.StoreField); ok {
			s.reenqueueFieldLoads(st)
		}
		if st, ok := n.(*ir.StoreArray); ok {
			s.reenqueueArrayLoads(st)
		}

		for _, e := range s.icfg.SuccsOf(n) {
			s.enqueue(e.Target)
		}
	}

	return &Result{In: s.in, Out: s.out}
}

func (s *solver) meetIncoming(n ir.Stmt) *fact.CPFact {
	if n == s.entry {
		return s.boundary.Copy()
	}
	merged := fact.NewCPFact()
	for _, e := range s.icfg.PredsOf(n) {
		contrib := s.edgeTransfer(e)
		fact.MeetInto(contrib, merged)
	}
	return merged
}

// edgeTransfer applies the per-edge-kind transfer: Normal is identity,
// CallToReturn drops the call's result variable, Call binds callee
// parameters from the caller's argument values, and Return binds the
// call's result from the callee's return values.
func (s *solver) edgeTransfer(e Edge) *fact.CPFact {
	predOut := s.out[e.Target] // reversed view: e.Target is the predecessor

	switch e.Kind {
	case Normal:
		return predOut

	case CallToReturn:
		inv := e.Target.(*ir.Invoke)
		clone := predOut.Copy()
		if inv.Lhs != nil {
			clone.Remove(inv.Lhs)
		}
		return clone

	case Call:
		inv := e.Target.(*ir.Invoke)
		fresh := fact.NewCPFact()
		params := e.Callee.IR().Params
		for i, arg := range inv.Args {
			if i >= len(params) {
				break
			}
			if ir.CanHoldInt(params[i]) {
				fresh.Update(params[i], predOut.Get(arg))
			}
		}
		return fresh

	case Return:
		fresh := fact.NewCPFact()
		if e.CallSite.Lhs == nil || !ir.CanHoldInt(e.CallSite.Lhs) {
			return fresh
		}
		calleeMethod := s.icfg.Owner(e.Target)
		v := lattice.UndefValue
		for _, rv := range calleeMethod.IR().ReturnVar {
			v = lattice.Meet(v, predOut.Get(rv))
		}
		fresh.Update(e.CallSite.Lhs, v)
		return fresh

	default:
		return predOut
	}
}

// localTransfer computes a statement's own OUT fact from its merged IN
// fact, special-casing the field/array load statement kinds and deferring
// everything else (assignments, branches, calls, returns) to the same
// evaluation rules as intraprocedural constant propagation.
func (s *solver) localTransfer(n ir.Stmt, in *fact.CPFact) (*fact.CPFact, bool) {
	switch st := n.(type) {
	case *ir.LoadField:
		return s.transferLoadField(st, in)
	case *ir.LoadArray:
		return s.transferLoadArray(st, in)
	default:
		out := fact.NewCPFact()
		constprop.Transfer(n, in, out)
		return out, !out.Equal(s.out[n])
	}
}

// transferLoadField is `x = y.f` (or `x = T.f` when Base == nil): remove x
// from the copied-through fact, then recompute its value by meeting the
// current IN fact of every aliased store's rhs variable.
func (s *solver) transferLoadField(ld *ir.LoadField, in *fact.CPFact) (*fact.CPFact, bool) {
	out := in.Copy()
	out.Remove(ld.Lhs)

	if ir.CanHoldInt(ld.Lhs) {
		v := lattice.UndefValue
		if ld.Base == nil {
			for _, st := range s.fields.StaticStoresOf(ld.Field) {
				v = lattice.Meet(v, s.in[st].Get(st.Rhs))
			}
		} else {
			for _, base := range s.aliases.Aliases(ld.Base) {
				for _, st := range s.fields.InstanceStoresOf(base, ld.Field) {
					v = lattice.Meet(v, s.in[st].Get(st.Rhs))
				}
			}
		}
		out.Update(ld.Lhs, v)
	}

	return out, !out.Equal(s.out[ld])
}

// transferLoadArray is `x = a[i]`: analogous to transferLoadField, but
// additionally requires the load's and store's index variables to be
// compatIndex before the stored value contributes to the meet.
func (s *solver) transferLoadArray(la *ir.LoadArray, in *fact.CPFact) (*fact.CPFact, bool) {
	out := in.Copy()
	out.Remove(la.Lhs)

	if ir.CanHoldInt(la.Lhs) {
		v := lattice.UndefValue
		iVal := in.Get(la.Idx)
		for _, base := range s.aliases.Aliases(la.Arr) {
			for _, st := range s.fields.ArrayStoresOf(base) {
				jVal := s.in[st].Get(st.Idx)
				if compatIndex(iVal, jVal) {
					v = lattice.Meet(v, s.in[st].Get(st.Rhs))
				}
			}
		}
		out.Update(la.Lhs, v)
	}

	return out, !out.Equal(s.out[la])
}

// compatIndex reports whether a load with index value a could be reading a
// store with index value b: false if either side is still UNDEF (nothing
// observed yet), exact equality if both are CONST, and true otherwise (at
// least one side is NAC, so no index can be ruled out).
func compatIndex(a, b lattice.Value) bool {
	if a.IsUndef() || b.IsUndef() {
		return false
	}
	if a.IsConst() && b.IsConst() {
		return a.Int() == b.Int()
	}
	return true
}

// reenqueueFieldLoads re-triggers every load this store could now feed,
// substituting for the ICFG edge the solver doesn't have between a store
// and the loads that alias it.
func (s *solver) reenqueueFieldLoads(st *ir.StoreField) {
	if st.Base == nil {
		for _, ld := range s.fields.StaticLoadsOf(st.Field) {
			s.enqueue(ld)
		}
		return
	}
	for _, base := range s.aliases.Aliases(st.Base) {
		for _, ld := range s.fields.InstanceLoadsOf(base, st.Field) {
			s.enqueue(ld)
		}
	}
}

func (s *solver) reenqueueArrayLoads(st *ir.StoreArray) {
	for _, base := range s.aliases.Aliases(st.Arr) {
		for _, ld := range s.fields.ArrayLoadsOf(base) {
			s.enqueue(ld)
		}
	}
}
