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

import "github.com/flowcore/analysis/internal/ir"

// CSMethod is a context-sensitive reachable method: a Method analyzed under
// a specific calling context.
type CSMethod struct {
	Ctx    Context
	Method ir.Method
}

func (m CSMethod) String() string { return m.Method.Class() + "." + string(m.Method.Subsignature()) + "@" + m.Ctx.String() }

// CSCallSite is a call instruction paired with the context of the caller
// method it appears in, i.e. the caller-side context a callee's context is
// selected from.
type CSCallSite struct {
	Ctx    Context
	Caller ir.Method
	Site   *ir.Invoke
}

// CSCallEdge is one resolved, context-sensitive call edge.
type CSCallEdge struct {
	Caller CSCallSite
	Callee CSMethod
}

// CSCallGraph is the context-sensitive call graph PTA builds incrementally:
// every CSMethod made reachable, and the resolved edges out of each call
// site.
type CSCallGraph struct {
	Reachable []CSMethod
	Edges     []CSCallEdge
	byCallee  map[CSMethod]bool
	outEdges  map[CSMethod][]CSCallEdge
}

// NewCSCallGraph returns an empty CSCallGraph.
func NewCSCallGraph() *CSCallGraph {
	return &CSCallGraph{byCallee: map[CSMethod]bool{}, outEdges: map[CSMethod][]CSCallEdge{}}
}

// AddReachable records m as reachable, returning true iff it is new.
func (cg *CSCallGraph) AddReachable(m CSMethod) bool {
	if cg.byCallee[m] {
		return false
	}
	cg.byCallee[m] = true
	cg.Reachable = append(cg.Reachable, m)
	return true
}

// IsReachable reports whether m has already been added.
func (cg *CSCallGraph) IsReachable(m CSMethod) bool { return cg.byCallee[m] }

// AddEdge records a resolved call edge.
func (cg *CSCallGraph) AddEdge(e CSCallEdge) {
	cg.Edges = append(cg.Edges, e)
	caller := CSMethod{Ctx: e.Caller.Ctx, Method: e.Caller.Caller}
	cg.outEdges[caller] = append(cg.outEdges[caller], e)
}

// EdgesFrom returns the call edges whose caller is m.
func (cg *CSCallGraph) EdgesFrom(m CSMethod) []CSCallEdge { return cg.outEdges[m] }
