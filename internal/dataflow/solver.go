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

// Package dataflow implements a generic worklist solver, parameterized by
// direction, meet, and a per-statement transfer function.
// internal/constprop instantiates it forward over CPFact; internal/liveness
// instantiates it backward over SetFact[ir.Var]. Grounded on the
// MonotoneAnalysis shape
// (analysis/dataflow/single_function_monotone_analysis.go and
// intra_procedural_monotone_analysis.go), which hard-codes a forward
// worklist; generalized here with an explicit Direction.
package dataflow

import "github.com/flowcore/analysis/internal/ir"

// Direction selects which way facts flow through the CFG.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Analysis is the set of operations the solver needs from a concrete
// dataflow problem. Fact is the per-program-point fact type (e.g. *CPFact
// or *SetFact[ir.Var]); the solver treats it as an opaque pointer-identity
// value that transfer functions mutate in place.
type Analysis[Fact any] struct {
	// Direction of flow.
	Direction Direction
	// BoundaryFact returns the fact installed at the CFG's entry (Forward)
	// or exit (Backward) node, before any transfer runs. It is called once
	// for that node's IN and once for its OUT, so each call must return a
	// fresh value.
	BoundaryFact func(cfg *ir.CFG) Fact
	// InitialFact returns the fact installed at every other node before the
	// first iteration (typically the lattice bottom/empty set). Must
	// allocate a fresh value on every call: the solver calls it once per
	// node and mutates each node's fact independently.
	InitialFact func() Fact
	// MeetInto merges src into target in place, returning true iff target
	// changed. Must be commutative, associative and idempotent.
	MeetInto func(src, target Fact) bool
	// Transfer runs the per-statement transfer function, reading in and
	// writing out, returning true iff out changed.
	Transfer func(stmt ir.Stmt, in, target Fact) bool
}

// Result holds the fixed-point In/Out facts per statement.
type Result[Fact any] struct {
	In  map[ir.Stmt]Fact
	Out map[ir.Stmt]Fact
}

// InFact returns the IN fact at stmt.
func (r *Result[Fact]) InFact(stmt ir.Stmt) Fact { return r.In[stmt] }

// OutFact returns the OUT fact at stmt.
func (r *Result[Fact]) OutFact(stmt ir.Stmt) Fact { return r.Out[stmt] }

// Solve runs the analysis to a fixed point over cfg using a FIFO worklist
// seeded with every node except the boundary node (whose IN and OUT both
// hold the boundary fact and are never recomputed), re-enqueueing a node's flow-successors whenever
// its fact changes. Any fair processing order reaches the same fixed
// point; FIFO is simplest and deterministic enough for tests, though
// determinism of intermediate order is not required.
func Solve[Fact any](cfg *ir.CFG, a Analysis[Fact]) *Result[Fact] {
	res := &Result[Fact]{In: map[ir.Stmt]Fact{}, Out: map[ir.Stmt]Fact{}}

	boundary := cfg.Entry
	if a.Direction == Backward {
		boundary = cfg.Exit
	}

	for _, n := range cfg.Nodes {
		if n == boundary {
			if a.Direction == Forward {
				res.In[n] = a.BoundaryFact(cfg)
				res.Out[n] = a.BoundaryFact(cfg)
			} else {
				res.Out[n] = a.BoundaryFact(cfg)
				res.In[n] = a.BoundaryFact(cfg)
			}
			continue
		}
		res.In[n] = a.InitialFact()
		res.Out[n] = a.InitialFact()
	}

	queue := make([]ir.Stmt, 0, len(cfg.Nodes))
	queued := make(map[ir.Stmt]bool, len(cfg.Nodes))
	enqueue := func(n ir.Stmt) {
		if !queued[n] {
			queued[n] = true
			queue = append(queue, n)
		}
	}
	for _, n := range cfg.Nodes {
		if n != boundary {
			enqueue(n)
		}
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		queued[n] = false

		if a.Direction == Forward {
			in := res.In[n]
			for _, e := range cfg.PredsOf(n) {
				a.MeetInto(res.Out[e.Target], in)
			}
			if a.Transfer(n, in, res.Out[n]) {
				for _, e := range cfg.SuccsOf(n) {
					enqueue(e.Target)
				}
			}
		} else {
			out := res.Out[n]
			for _, e := range cfg.SuccsOf(n) {
				a.MeetInto(res.In[e.Target], out)
			}
			if a.Transfer(n, out, res.In[n]) {
				for _, e := range cfg.PredsOf(n) {
					enqueue(e.Target)
				}
			}
		}
	}

	return res
}
