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

// PFG wraps two parallel graphs of Pointer nodes -- one for ordinary
// points-to-propagation edges, one for taint-transfer edges -- each
// satisfying gonum's graph.Graph/graph.Iterator: an adjacency map of
// node id -> set of successor ids, exposed through a PFGNode/PFGNodes/PFGEdge
// trio.
package pta

import (
	"gonum.org/v1/gonum/graph"
)

// PFGNode adapts a Pointer to graph.Node.
type PFGNode struct{ P Pointer }

func (n PFGNode) ID() int64    { return n.P.ID() }
func (n PFGNode) String() string { return n.P.String() }

// PFGNodes iterates a fixed slice of PFGNodes, implementing graph.Nodes.
type PFGNodes struct {
	nodes []PFGNode
	cur   int
}

func newPFGNodes(nodes []PFGNode) *PFGNodes { return &PFGNodes{nodes: nodes, cur: -1} }

func (it *PFGNodes) Next() bool {
	if it.cur < len(it.nodes)-1 {
		it.cur++
		return true
	}
	return false
}
func (it *PFGNodes) Len() int         { return len(it.nodes) - (it.cur + 1) }
func (it *PFGNodes) Reset()           { it.cur = -1 }
func (it *PFGNodes) Node() graph.Node { return it.nodes[it.cur] }

// PFGEdge adapts a (from, to) Pointer pair to graph.Edge.
type PFGEdge struct{ F, T PFGNode }

func (e PFGEdge) From() graph.Node         { return e.F }
func (e PFGEdge) To() graph.Node           { return e.T }
func (e PFGEdge) ReversedEdge() graph.Edge { return PFGEdge{F: e.T, T: e.F} }

// edgeGraph is one directed graph of Pointer nodes keyed by pointer id,
// shared by both the object-flow PFG and the taint-transfer graph.
type edgeGraph struct {
	nodes map[int64]PFGNode
	succ  map[int64]map[int64]bool
}

func newEdgeGraph() *edgeGraph {
	return &edgeGraph{nodes: map[int64]PFGNode{}, succ: map[int64]map[int64]bool{}}
}

// addNode registers p if unseen, returning true iff it was newly added.
func (g *edgeGraph) addNode(p Pointer) bool {
	if _, ok := g.nodes[p.ID()]; ok {
		return false
	}
	g.nodes[p.ID()] = PFGNode{P: p}
	g.succ[p.ID()] = map[int64]bool{}
	return true
}

// addEdge adds from->to, returning true iff the edge is new.
func (g *edgeGraph) addEdge(from, to Pointer) bool {
	g.addNode(from)
	g.addNode(to)
	if g.succ[from.ID()][to.ID()] {
		return false
	}
	g.succ[from.ID()][to.ID()] = true
	return true
}

func (g *edgeGraph) successors(p Pointer) []Pointer {
	out := make([]Pointer, 0, len(g.succ[p.ID()]))
	for id := range g.succ[p.ID()] {
		out = append(out, g.nodes[id].P)
	}
	return out
}

func (g *edgeGraph) Node(id int64) graph.Node { return g.nodes[id] }

func (g *edgeGraph) Nodes() graph.Nodes {
	out := make([]PFGNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return newPFGNodes(out)
}

func (g *edgeGraph) From(id int64) graph.Nodes {
	out := make([]PFGNode, 0, len(g.succ[id]))
	for succID := range g.succ[id] {
		out = append(out, g.nodes[succID])
	}
	return newPFGNodes(out)
}

func (g *edgeGraph) HasEdgeBetween(xid, yid int64) bool {
	return g.succ[xid][yid] || g.succ[yid][xid]
}

func (g *edgeGraph) Edge(uid, vid int64) graph.Edge {
	if !g.succ[uid][vid] {
		return nil
	}
	return PFGEdge{F: g.nodes[uid], T: g.nodes[vid]}
}

// PFG is the Pointer Flow Graph: object-flow edges (ordinary assignment/
// field/array/parameter-passing propagation) and taint-transfer edges kept
// as two separate edgeGraphs over the same Pointer node space, so taint
// propagation never perturbs points-to propagation or vice versa.
type PFG struct {
	Objects *edgeGraph
	Taint   *edgeGraph
}

// NewPFG returns an empty PFG.
func NewPFG() *PFG {
	return &PFG{Objects: newEdgeGraph(), Taint: newEdgeGraph()}
}

// AddObjectEdge adds an object-flow edge from->to, returning true iff new.
func (g *PFG) AddObjectEdge(from, to Pointer) bool { return g.Objects.addEdge(from, to) }

// AddTaintEdge adds a taint-transfer edge from->to, returning true iff new.
func (g *PFG) AddTaintEdge(from, to Pointer) bool { return g.Taint.addEdge(from, to) }

// ObjectSuccessors returns p's object-flow successors.
func (g *PFG) ObjectSuccessors(p Pointer) []Pointer { return g.Objects.successors(p) }

// TaintSuccessors returns p's taint-transfer successors.
func (g *PFG) TaintSuccessors(p Pointer) []Pointer { return g.Taint.successors(p) }
