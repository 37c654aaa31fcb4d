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

package pta

// The worklist shape mirrors yangshenyi-PA4Go's solve.go: pop a (pointer,
// delta) pair, propagate, re-trigger the statements whose base variable
// just grew.

import (
	"github.com/flowcore/analysis/internal/cha"
	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/liveness"
)

// TaintHook is the seam internal/taint implements to add its source/sink/
// transfer overlay without pta importing taint (which would import pta
// back, for CSObj/CSVar/Pointer). A nil hook means "no taint overlay": PTA
// runs as plain points-to analysis, satisfying taint overlay isolation
// trivially.
type TaintHook interface {
	// IsTaint reports whether obj is a synthetic taint object, used to
	// partition worklist deltas.
	IsTaint(obj CSObj) bool
	// OnStaticInvoke is invoked once, when a STATIC/SPECIAL call is first
	// processed at its caller's method-entry (the "invoke taint
	// transfer").
	OnStaticInvoke(s *Solver, caller CSCallSite, callee CSMethod)
	// OnVirtualInvoke is invoked once per resolved VIRTUAL/INTERFACE
	// dispatch, from processCall.
	OnVirtualInvoke(s *Solver, caller CSCallSite, callee CSMethod)
}

type workItem struct {
	P   Pointer
	PTS *PointsToSet
}

// methodIndex memoizes, per ir.Method, the statements keyed by the variable
// they read as a base/receiver -- so the worklist loop can find "every
// x.f = y" for a grown x without rescanning the whole method body each time
//.
type methodIndex struct {
	storeFieldsOf map[ir.Var][]*ir.StoreField
	loadFieldsOf  map[ir.Var][]*ir.LoadField
	storeArraysOf map[ir.Var][]*ir.StoreArray
	loadArraysOf  map[ir.Var][]*ir.LoadArray
	invokesOf     map[ir.Var][]*ir.Invoke
}

// Solver is the worklist engine: the state is CSManager (pointer/
// object interning), CSCallGraph (reachable CS methods and resolved edges),
// PFG (object + taint edges) and a FIFO work queue.
type Solver struct {
	Hierarchy ir.ClassHierarchy
	Heap      ir.HeapModel
	Selector  ContextSelector
	Manager   *CSManager
	CallGraph *CSCallGraph
	PFG       *PFG

	Taint TaintHook

	queue     []workItem
	varOwner  map[ir.Var]ir.Method
	methodIdx map[ir.Method]*methodIndex
	callEdges map[callEdgeKey]bool
}

type callEdgeKey struct {
	callerCtx Context
	site      *ir.Invoke
	calleeCtx Context
	callee    ir.Method
}

// NewSolver returns a ready-to-run Solver. Call SetTaintHook before Solve if
// the taint overlay is wanted.
func NewSolver(hierarchy ir.ClassHierarchy, heap ir.HeapModel, selector ContextSelector) *Solver {
	return &Solver{
		Hierarchy: hierarchy,
		Heap:      heap,
		Selector:  selector,
		Manager:   NewCSManager(),
		CallGraph: NewCSCallGraph(),
		PFG:       NewPFG(),
		varOwner:  map[ir.Var]ir.Method{},
		methodIdx: map[ir.Method]*methodIndex{},
		callEdges: map[callEdgeKey]bool{},
	}
}

// SetTaintHook installs the taint overlay. Must be called before Solve.
func (s *Solver) SetTaintHook(h TaintHook) { s.Taint = h }

// Result is the final, queryable state of a completed Solve.
type Result struct {
	Manager   *CSManager
	CallGraph *CSCallGraph
	PFG       *PFG
}

// Solve runs the fixed-point worklist starting from (emptyContext, entry)
//.
func (s *Solver) Solve(entry ir.Method) *Result {
	csEntry := CSMethod{Ctx: s.Selector.EmptyContext(), Method: entry}
	s.addReachable(csEntry)

	for len(s.queue) > 0 {
		item := s.queue[0]
		s.queue = s.queue[1:]

		delta := s.propagate(item.P, item.PTS)
		if delta.Len() == 0 {
			continue
		}

		taintObjs, heapObjs := s.partition(delta)
		s.propagateTaintTransfer(item.P, taintObjs)

		v, ok := item.P.(*CSVar)
		if !ok {
			continue
		}
		for _, id := range heapObjs.IDs() {
			obj := s.Manager.ObjAt(id)
			s.processInstanceStmts(v, obj)
			s.processCall(v, obj)
		}
	}

	return &Result{Manager: s.Manager, CallGraph: s.CallGraph, PFG: s.PFG}
}

// --- public helpers for TaintHook implementations ---

// EmptyContext exposes the selector's empty context.
func (s *Solver) EmptyContext() Context { return s.Selector.EmptyContext() }

// CSVarOf interns (ctx, v) as a CSVar, for a hook to seed or read PTS.
func (s *Solver) CSVarOf(ctx Context, v ir.Var) *CSVar { return s.Manager.CSVarOf(ctx, v) }

// ObjID interns obj, returning its stable id (for building a singleton PTS).
func (s *Solver) ObjID(obj CSObj) int { return s.Manager.ObjID(obj) }

// EnqueueSingleton enqueues {obj} at p, e.g. to seed a freshly synthesized
// taint object at a source call's result variable.
func (s *Solver) EnqueueSingleton(p Pointer, obj CSObj) {
	pts := NewPointsToSet()
	pts.InsertID(s.Manager.ObjID(obj))
	s.enqueue(p, pts)
}

// AddTaintEdge adds a taint-transfer edge to the overlay,
// propagating only the taint-filtered subset of src's PTS.
func (s *Solver) AddTaintEdge(src, tgt Pointer) bool {
	if !s.PFG.AddTaintEdge(src, tgt) {
		return false
	}
	if s.Taint == nil {
		return true
	}
	filtered := NewPointsToSet()
	for _, id := range src.PTS().IDs() {
		if s.Taint.IsTaint(s.Manager.ObjAt(id)) {
			filtered.InsertID(id)
		}
	}
	s.enqueue(tgt, filtered)
	return true
}

// --- internals ---

func (s *Solver) enqueue(p Pointer, pts *PointsToSet) {
	if pts == nil || pts.Len() == 0 {
		return
	}
	s.queue = append(s.queue, workItem{P: p, PTS: pts})
}

// propagate is the propagate(p, pts): Δ ← pts \ p.pts.
func (s *Solver) propagate(p Pointer, pts *PointsToSet) *PointsToSet {
	delta := p.PTS().NewIn(pts)
	if delta.Len() == 0 {
		return delta
	}
	p.PTS().UnionWith(delta)
	for _, succ := range s.PFG.ObjectSuccessors(p) {
		s.enqueue(succ, delta)
	}
	return delta
}

func (s *Solver) partition(delta *PointsToSet) (taintObjs, heapObjs *PointsToSet) {
	taintObjs, heapObjs = NewPointsToSet(), NewPointsToSet()
	for _, id := range delta.IDs() {
		obj := s.Manager.ObjAt(id)
		if s.Taint != nil && s.Taint.IsTaint(obj) {
			taintObjs.InsertID(id)
		} else {
			heapObjs.InsertID(id)
		}
	}
	return
}

func (s *Solver) propagateTaintTransfer(p Pointer, taintObjs *PointsToSet) {
	if taintObjs.Len() == 0 {
		return
	}
	for _, succ := range s.PFG.TaintSuccessors(p) {
		s.enqueue(succ, taintObjs)
	}
}

// addPFGEdge is the addPFGEdge(src, tgt).
func (s *Solver) addPFGEdge(src, tgt Pointer) bool {
	if !s.PFG.AddObjectEdge(src, tgt) {
		return false
	}
	if src.PTS().Len() > 0 {
		s.enqueue(tgt, src.PTS())
	}
	return true
}

func (s *Solver) addReachable(csm CSMethod) bool {
	if !s.CallGraph.AddReachable(csm) {
		return false
	}
	if !csm.Method.IsAbstract() {
		s.processStmts(csm)
	}
	return true
}

// indexFor lazily builds and memoizes m's methodIndex, and registers every
// variable m's body touches (plus its params/this/return vars) in varOwner.
func (s *Solver) indexFor(m ir.Method) *methodIndex {
	if idx, ok := s.methodIdx[m]; ok {
		return idx
	}
	idx := &methodIndex{
		storeFieldsOf: map[ir.Var][]*ir.StoreField{},
		loadFieldsOf:  map[ir.Var][]*ir.LoadField{},
		storeArraysOf: map[ir.Var][]*ir.StoreArray{},
		loadArraysOf:  map[ir.Var][]*ir.LoadArray{},
		invokesOf:     map[ir.Var][]*ir.Invoke{},
	}

	for _, v := range m.IR().Params {
		s.varOwner[v] = m
	}
	for _, v := range m.IR().ReturnVar {
		s.varOwner[v] = m
	}
	if this := m.IR().This; this != nil {
		s.varOwner[this] = m
	}

	for _, stmt := range m.IR().Stmts {
		if d, ok := liveness.Def(stmt); ok {
			s.varOwner[d] = m
		}
		for _, u := range liveness.Uses(stmt) {
			s.varOwner[u] = m
		}

		switch st := stmt.(type) {
		case *ir.StoreField:
			if st.Base != nil {
				idx.storeFieldsOf[st.Base] = append(idx.storeFieldsOf[st.Base], st)
			}
		case *ir.LoadField:
			if st.Base != nil {
				idx.loadFieldsOf[st.Base] = append(idx.loadFieldsOf[st.Base], st)
			}
		case *ir.StoreArray:
			idx.storeArraysOf[st.Arr] = append(idx.storeArraysOf[st.Arr], st)
		case *ir.LoadArray:
			idx.loadArraysOf[st.Arr] = append(idx.loadArraysOf[st.Arr], st)
		case *ir.Invoke:
			if st.Recv != nil {
				idx.invokesOf[st.Recv] = append(idx.invokesOf[st.Recv], st)
			}
		}
	}

	s.methodIdx[m] = idx
	return idx
}

// processStmts implements the method-entry table.
func (s *Solver) processStmts(csm CSMethod) {
	s.indexFor(csm.Method)
	for _, stmt := range csm.Method.IR().Stmts {
		switch st := stmt.(type) {
		case *ir.Assign:
			switch rhs := st.Rhs.(type) {
			case ir.NewExpr:
				obj := s.Heap.Obj(st)
				hc := s.Selector.SelectHeapContext(csm.Ctx, obj)
				csObj := CSObj{Ctx: hc, Obj: obj}
				p := s.Manager.CSVarOf(csm.Ctx, st.Lhs)
				s.EnqueueSingleton(p, csObj)
			case ir.VarExpr:
				src := s.Manager.CSVarOf(csm.Ctx, rhs.V)
				tgt := s.Manager.CSVarOf(csm.Ctx, st.Lhs)
				s.addPFGEdge(src, tgt)
			}
		case *ir.LoadField:
			if st.Base == nil {
				src := s.Manager.StaticFieldOf(st.Field)
				tgt := s.Manager.CSVarOf(csm.Ctx, st.Lhs)
				s.addPFGEdge(src, tgt)
			}
		case *ir.StoreField:
			if st.Base == nil {
				src := s.Manager.CSVarOf(csm.Ctx, st.Rhs)
				tgt := s.Manager.StaticFieldOf(st.Field)
				s.addPFGEdge(src, tgt)
			}
		case *ir.Invoke:
			if st.InvKind == ir.Static || st.InvKind == ir.Special {
				s.handleStaticLikeInvoke(csm, st)
			}
		}
	}
}

// handleStaticLikeInvoke resolves a STATIC or SPECIAL call site eagerly, at
// method-entry processing time. Per the resolve(), both are
// single-target resolutions (unlike VIRTUAL/INTERFACE's lazy, receiver-PTS-
// driven dispatch), so both are handled here rather than in processCall.
func (s *Solver) handleStaticLikeInvoke(csm CSMethod, inv *ir.Invoke) {
	var callee ir.Method
	if inv.InvKind == ir.Static {
		callee = s.Hierarchy.DeclaredMethod(inv.Callee.Class, inv.Callee.Sub)
	} else {
		callee = cha.Dispatch(s.Hierarchy, inv.Callee.Class, inv.Callee.Sub)
	}
	if callee == nil {
		return
	}

	callerSite := CSCallSite{Ctx: csm.Ctx, Caller: csm.Method, Site: inv}
	calleeCtx := s.Selector.SelectContext(callerSite, callee)
	csCallee := CSMethod{Ctx: calleeCtx, Method: callee}

	if inv.InvKind == ir.Special && inv.Recv != nil && !callee.IsAbstract() && callee.IR().This != nil {
		src := s.Manager.CSVarOf(csm.Ctx, inv.Recv)
		tgt := s.Manager.CSVarOf(calleeCtx, callee.IR().This)
		s.addPFGEdge(src, tgt)
	}

	if s.Taint != nil {
		s.Taint.OnStaticInvoke(s, callerSite, csCallee)
	}
	s.handleCall(callerSite, csCallee)
}

// processInstanceStmts implements the worklist-loop instance-
// field/array triggers for a CSVar(ctx,x) that just gained obj.
func (s *Solver) processInstanceStmts(v *CSVar, obj CSObj) {
	owner, ok := s.varOwner[v.V]
	if !ok {
		return
	}
	idx := s.indexFor(owner)

	for _, sf := range idx.storeFieldsOf[v.V] {
		src := s.Manager.CSVarOf(v.Ctx, sf.Rhs)
		tgt := s.Manager.InstanceFieldOf(obj, sf.Field)
		s.addPFGEdge(src, tgt)
	}
	for _, lf := range idx.loadFieldsOf[v.V] {
		src := s.Manager.InstanceFieldOf(obj, lf.Field)
		tgt := s.Manager.CSVarOf(v.Ctx, lf.Lhs)
		s.addPFGEdge(src, tgt)
	}
	for _, sa := range idx.storeArraysOf[v.V] {
		src := s.Manager.CSVarOf(v.Ctx, sa.Rhs)
		tgt := s.Manager.ArrayIndexOf(obj)
		s.addPFGEdge(src, tgt)
	}
	for _, la := range idx.loadArraysOf[v.V] {
		src := s.Manager.ArrayIndexOf(obj)
		tgt := s.Manager.CSVarOf(v.Ctx, la.Lhs)
		s.addPFGEdge(src, tgt)
	}
}

// processCall implements the processCall(recv, recvObj): resolve
// every VIRTUAL/INTERFACE invoke on v.V against obj's dynamic type.
func (s *Solver) processCall(v *CSVar, obj CSObj) {
	owner, ok := s.varOwner[v.V]
	if !ok {
		return
	}
	idx := s.indexFor(owner)

	for _, inv := range idx.invokesOf[v.V] {
		if inv.InvKind != ir.Virtual && inv.InvKind != ir.Interface {
			continue
		}
		callee := cha.Dispatch(s.Hierarchy, obj.Obj.Type(), inv.Callee.Sub)
		if callee == nil {
			continue
		}

		callerSite := CSCallSite{Ctx: v.Ctx, Caller: owner, Site: inv}
		calleeCtx := s.Selector.SelectContextForVirtual(callerSite, obj, callee)
		csCallee := CSMethod{Ctx: calleeCtx, Method: callee}

		if !callee.IsAbstract() && callee.IR().This != nil {
			thisPtr := s.Manager.CSVarOf(calleeCtx, callee.IR().This)
			s.EnqueueSingleton(thisPtr, obj)
		}

		if s.Taint != nil {
			s.Taint.OnVirtualInvoke(s, callerSite, csCallee)
		}
		s.handleCall(callerSite, csCallee)
	}
}

// handleCall implements the handleCall(stmt, csCallSite,
// csCallee): dedupe the call edge, mark the callee reachable, and wire
// argument/return flow.
func (s *Solver) handleCall(callerSite CSCallSite, csCallee CSMethod) {
	key := callEdgeKey{callerCtx: callerSite.Ctx, site: callerSite.Site, calleeCtx: csCallee.Ctx, callee: csCallee.Method}
	if s.callEdges[key] {
		return
	}
	s.callEdges[key] = true
	s.CallGraph.AddEdge(CSCallEdge{Caller: callerSite, Callee: csCallee})

	s.addReachable(csCallee)
	if csCallee.Method.IsAbstract() {
		return
	}

	inv := callerSite.Site
	params := csCallee.Method.IR().Params
	for i, arg := range inv.Args {
		if i >= len(params) {
			break
		}
		src := s.Manager.CSVarOf(callerSite.Ctx, arg)
		tgt := s.Manager.CSVarOf(csCallee.Ctx, params[i])
		s.addPFGEdge(src, tgt)
	}

	if inv.Lhs != nil {
		for _, rv := range csCallee.Method.IR().ReturnVar {
			src := s.Manager.CSVarOf(csCallee.Ctx, rv)
			tgt := s.Manager.CSVarOf(callerSite.Ctx, inv.Lhs)
			s.addPFGEdge(src, tgt)
		}
	}
}
