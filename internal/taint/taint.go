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

// Package taint implements the taint overlay on top of
// internal/pta: source detection at configured calls, transfer edges that
// propagate taint without perturbing ordinary points-to propagation, and
// post-fixed-point sink collection into a sorted set of TaintFlow. Grounded
// on the analysis/taint package (source/sink/transfer configuration keyed
// by method identity) adapted from ssa.Function keys to
// this module's ir.Method/Subsignature keys.
package taint

import (
	"sort"

	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/pta"
)

// BASE and RESULT are the transfer rule sentinels: "arg i -> BASE/RESULT"
// and "BASE -> RESULT".
const (
	BASE   = -1
	RESULT = -2
)

// Source marks a method whose return value is tainted when called.
type Source struct {
	Method ir.MethodRef
}

// Sink marks a (method, argument index) pair that must never observe taint.
type Sink struct {
	Method ir.MethodRef
	ArgIdx int
}

// Transfer is one `from -> to` taint-propagation rule for a method, indexed
// by its subsignature for O(1) dispatch.
type Transfer struct {
	Method ir.MethodRef
	From   int // argument index, or BASE
	To     int // RESULT, or BASE (a rule with an argument-index To is not applied)
}

// Config is the in-memory taint triple -- sources, sinks, and transfer
// rules; internal/config loads this from YAML.
type Config struct {
	Sources   []Source
	Sinks     []Sink
	Transfers []Transfer
}

type methodKey struct {
	class string
	sub   ir.Subsignature
}

func keyOf(ref ir.MethodRef) methodKey { return methodKey{ref.Class, ref.Sub} }

// index is Config compiled into O(1)-dispatch maps. Sources and sinks are
// keyed by exact (class, subsignature), matching a specific declaration.
// Transfers are keyed by subsignature alone: a transfer rule configured
// against an interface/abstract method must still fire for every concrete
// override resolved through virtual dispatch, not just the declaring class.
type index struct {
	sources   map[methodKey]bool
	sinks     map[methodKey][]int
	transfers map[ir.Subsignature][]Transfer
}

func buildIndex(cfg Config) *index {
	idx := &index{
		sources:   map[methodKey]bool{},
		sinks:     map[methodKey][]int{},
		transfers: map[ir.Subsignature][]Transfer{},
	}
	for _, s := range cfg.Sources {
		idx.sources[keyOf(s.Method)] = true
	}
	for _, s := range cfg.Sinks {
		k := keyOf(s.Method)
		idx.sinks[k] = append(idx.sinks[k], s.ArgIdx)
	}
	for _, tr := range cfg.Transfers {
		idx.transfers[tr.Method.Sub] = append(idx.transfers[tr.Method.Sub], tr)
	}
	return idx
}

// Manager dedupes synthetic taint objects by (call-site, type), never by
// the identity of any synthesized Go value.
type Manager struct {
	objs map[taintKey]*Obj
}

type taintKey struct {
	site *ir.Invoke
	typ  string
}

// Obj is a synthetic taint heap object: it carries no real allocation, only
// the call site and declared type that produced it.
type Obj struct {
	Site *ir.Invoke
	Typ  string
}

func (o *Obj) Type() string    { return o.Typ }
func (o *Obj) String() string  { return "taint@" + o.Site.String() }
func (o *Obj) AllocIndex() int { return o.Site.Index() }

// NewManager returns an empty taint-object manager.
func NewManager() *Manager { return &Manager{objs: map[taintKey]*Obj{}} }

// MakeTaint interns the taint object for (site, typ).
func (m *Manager) MakeTaint(site *ir.Invoke, typ string) *Obj {
	k := taintKey{site: site, typ: typ}
	if o, ok := m.objs[k]; ok {
		return o
	}
	o := &Obj{Site: site, Typ: typ}
	m.objs[k] = o
	return o
}

// Flow is one reported taint path: the source call that introduced the
// value, the sink call that observed it, and the tainted argument index.
type Flow struct {
	SourceSite *ir.Invoke
	SinkSite   *ir.Invoke
	ArgIdx     int
}

// Less gives Flow a total order for deterministic dedup/sort: source
// call-site index, then sink call-site index, then argument index.
func (f Flow) Less(other Flow) bool {
	if f.SourceSite.Index() != other.SourceSite.Index() {
		return f.SourceSite.Index() < other.SourceSite.Index()
	}
	if f.SinkSite.Index() != other.SinkSite.Index() {
		return f.SinkSite.Index() < other.SinkSite.Index()
	}
	return f.ArgIdx < other.ArgIdx
}

// Hook implements pta.TaintHook, wiring Config-driven source detection and
// transfer-edge insertion into the solver's worklist, without pta needing
// to import this package.
type Hook struct {
	idx     *index
	mgr     *Manager
	returns map[ir.MethodRef]string // declared return type, for source typing
}

// NewHook builds a Hook from cfg. returnTypes supplies each configured
// source method's declared return type (the IR oracle does not model
// types beyond Var.Kind, so callers pass this in explicitly).
func NewHook(cfg Config, returnTypes map[ir.MethodRef]string) *Hook {
	return &Hook{idx: buildIndex(cfg), mgr: NewManager(), returns: returnTypes}
}

// IsTaint implements pta.TaintHook.
func (h *Hook) IsTaint(obj pta.CSObj) bool {
	_, ok := obj.Obj.(*Obj)
	return ok
}

// OnStaticInvoke implements pta.TaintHook for STATIC/SPECIAL call sites.
func (h *Hook) OnStaticInvoke(s *pta.Solver, caller pta.CSCallSite, callee pta.CSMethod) {
	h.apply(s, caller, callee)
}

// OnVirtualInvoke implements pta.TaintHook for VIRTUAL/INTERFACE dispatch.
func (h *Hook) OnVirtualInvoke(s *pta.Solver, caller pta.CSCallSite, callee pta.CSMethod) {
	h.apply(s, caller, callee)
}

func methodRefOf(m ir.Method) ir.MethodRef {
	return ir.MethodRef{Class: m.Class(), Sub: m.Subsignature()}
}

func (h *Hook) apply(s *pta.Solver, caller pta.CSCallSite, callee pta.CSMethod) {
	inv := caller.Site
	ref := methodRefOf(callee.Method)
	k := keyOf(ref)

	if h.idx.sources[k] && inv.Lhs != nil {
		typ := h.returns[ref]
		obj := h.mgr.MakeTaint(inv, typ)
		lhsPtr := s.CSVarOf(caller.Ctx, inv.Lhs)
		s.EnqueueSingleton(lhsPtr, pta.CSObj{Ctx: s.EmptyContext(), Obj: obj})
	}

	for _, tr := range h.idx.transfers[ref.Sub] {
		h.applyTransfer(s, caller, tr)
	}
}

func (h *Hook) applyTransfer(s *pta.Solver, caller pta.CSCallSite, tr Transfer) {
	inv := caller.Site
	argPtr := func(i int) (pta.Pointer, bool) {
		if i < 0 || i >= len(inv.Args) {
			return nil, false
		}
		return s.CSVarOf(caller.Ctx, inv.Args[i]), true
	}

	switch {
	case tr.From >= 0 && tr.To == RESULT:
		if inv.Lhs == nil {
			return
		}
		if src, ok := argPtr(tr.From); ok {
			s.AddTaintEdge(src, s.CSVarOf(caller.Ctx, inv.Lhs))
		}
	case tr.From >= 0 && tr.To == BASE:
		if inv.Recv == nil {
			return
		}
		if src, ok := argPtr(tr.From); ok {
			s.AddTaintEdge(src, s.CSVarOf(caller.Ctx, inv.Recv))
		}
	case tr.From == BASE && tr.To == RESULT:
		if inv.Recv == nil || inv.Lhs == nil {
			return
		}
		base := s.CSVarOf(caller.Ctx, inv.Recv)
		s.AddTaintEdge(base, s.CSVarOf(caller.Ctx, inv.Lhs))
	}
}

// CollectSinks implements the post-fixed-point sink scan: for
// every call-graph edge and every tainted argument at a configured sink
// index, emit a Flow referencing the taint object's originating call site.
func CollectSinks(cfg Config, cg *pta.CSCallGraph, mgr *pta.CSManager) []Flow {
	idx := buildIndex(cfg)
	var flows []Flow
	for _, e := range cg.Edges {
		k := keyOf(methodRefOf(e.Callee.Method))
		sinkArgs := idx.sinks[k]
		if len(sinkArgs) == 0 {
			continue
		}
		inv := e.Caller.Site
		for _, argIdx := range sinkArgs {
			if argIdx < 0 || argIdx >= len(inv.Args) {
				continue
			}
			argPtr := mgr.CSVarOf(e.Caller.Ctx, inv.Args[argIdx])
			for _, id := range argPtr.PTS().IDs() {
				obj := mgr.ObjAt(id)
				tobj, ok := obj.Obj.(*Obj)
				if !ok {
					continue
				}
				flows = append(flows, Flow{SourceSite: tobj.Site, SinkSite: inv, ArgIdx: argIdx})
			}
		}
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].Less(flows[j]) })
	return dedupFlows(flows)
}

func dedupFlows(sorted []Flow) []Flow {
	out := sorted[:0]
	for i, f := range sorted {
		if i == 0 || f != out[len(out)-1] {
			out = append(out, f)
		}
	}
	return out
}
