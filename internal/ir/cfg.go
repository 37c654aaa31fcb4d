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

package ir

// EdgeKind tags a CFG or ICFG edge.
type EdgeKind int

const (
	Normal EdgeKind = iota
	IfTrue
	IfFalse
	SwitchCase
	SwitchDefault
	Call
	CallToReturn
	ReturnEdgeKind
)

// CFGEdge is a directed edge in a method's control-flow graph.
type CFGEdge struct {
	Kind   EdgeKind
	Case   int32 // meaningful iff Kind == SwitchCase
	Target Stmt
}

// CFG is a method's intraprocedural control-flow graph: a statement list
// plus successor/predecessor adjacency, with distinguished Entry/Exit nodes.
type CFG struct {
	Entry Stmt
	Exit  Stmt
	Nodes []Stmt
	succs map[Stmt][]CFGEdge
	preds map[Stmt][]CFGEdge
}

// NewCFG builds an (initially edgeless) CFG over nodes, with the given
// entry/exit sentinels (both must already be present in nodes).
func NewCFG(entry, exit Stmt, nodes []Stmt) *CFG {
	return &CFG{
		Entry: entry,
		Exit:  exit,
		Nodes: nodes,
		succs: make(map[Stmt][]CFGEdge, len(nodes)),
		preds: make(map[Stmt][]CFGEdge, len(nodes)),
	}
}

// AddEdge records a directed edge src -> e.Target of kind e.Kind.
func (g *CFG) AddEdge(src Stmt, e CFGEdge) {
	g.succs[src] = append(g.succs[src], e)
	g.preds[e.Target] = append(g.preds[e.Target], CFGEdge{Kind: e.Kind, Case: e.Case, Target: src})
}

// SuccsOf returns the outgoing edges of s, in insertion order.
func (g *CFG) SuccsOf(s Stmt) []CFGEdge { return g.succs[s] }

// PredsOf returns the incoming edges of s (Target is actually the
// predecessor statement in this reversed view).
func (g *CFG) PredsOf(s Stmt) []CFGEdge { return g.preds[s] }
