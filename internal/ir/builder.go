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

// method is the in-memory Method implementation built by Builder.
type method struct {
	class  string
	sub    Subsignature
	static bool
	abs    bool
	ir     *IR
}

func (m *method) Class() string             { return m.class }
func (m *method) Subsignature() Subsignature { return m.sub }
func (m *method) IsAbstract() bool           { return m.abs }
func (m *method) IsStatic() bool             { return m.static }
func (m *method) IR() *IR {
	if m.abs {
		panic("ir: IR() called on an abstract method")
	}
	return m.ir
}
func (m *method) String() string { return m.class + "." + string(m.sub) }

// Builder assembles a toy Method body statement-by-statement and wires its
// CFG, standing in for the out-of-scope real IR builder. This is the shape
// tests and cmd/scancore use to construct example programs; a production
// front end would instead translate parsed/type-checked source directly
// into *Assign/*Invoke/... statements.
type Builder struct {
	class    string
	sub      Subsignature
	static   bool
	this     Var
	params   []Var
	rets     []Var
	stmts    []Stmt
	nextID   int
	cfgEdges []pendingEdge
	exitMark *exitMarker
}

// exitMarker stands in for the not-yet-created Exit sentinel so callers can
// wire edges to it (via Builder.Exit()) before calling Build.
type exitMarker struct{ base }

func (*exitMarker) String() string { return "exit(pending)" }

// NewBuilder starts building a method declared in class with subsignature sub.
func NewBuilder(class string, sub Subsignature, static bool) *Builder {
	b := &Builder{class: class, sub: sub, static: static, exitMark: &exitMarker{}}
	b.stmts = append(b.stmts, NewEntry(b.alloc()))
	return b
}

func (b *Builder) alloc() int {
	id := b.nextID
	b.nextID++
	return id
}

// Entry returns the method's entry sentinel, usable immediately for wiring.
func (b *Builder) Entry() Stmt { return b.stmts[0] }

// Exit returns a stable placeholder for the method's exit sentinel; edges
// wired to it are retargeted to the real Exit node in Build.
func (b *Builder) Exit() Stmt { return b.exitMark }

// This declares the method's receiver variable; static methods leave it
// unset, so their IR's This stays nil.
func (b *Builder) This(v Var) *Builder {
	b.this = v
	return b
}

// Param appends a formal parameter.
func (b *Builder) Param(v Var) *Builder {
	b.params = append(b.params, v)
	return b
}

// Add appends a non-entry/exit statement built via the ir.New* helpers,
// assigning it the next statement index, and returns it for edge-wiring.
func (b *Builder) Add(mk func(idx int) Stmt) Stmt {
	s := mk(b.alloc())
	b.stmts = append(b.stmts, s)
	if r, ok := s.(*Return); ok && r.ReturnVar != nil {
		b.rets = append(b.rets, r.ReturnVar)
	}
	return s
}

// Edge records a CFG edge of the given kind between two already-added
// statements (or the sentinel Entry/Exit).
func (b *Builder) Edge(from Stmt, kind EdgeKind, to Stmt) *Builder {
	b.cfgEdges = append(b.cfgEdges, pendingEdge{from, CFGEdge{Kind: kind, Target: to}})
	return b
}

// SwitchEdge records a SwitchCase edge carrying a case value.
func (b *Builder) SwitchEdge(from Stmt, caseValue int32, to Stmt) *Builder {
	b.cfgEdges = append(b.cfgEdges, pendingEdge{from, CFGEdge{Kind: SwitchCase, Case: caseValue, Target: to}})
	return b
}

type pendingEdge struct {
	from Stmt
	edge CFGEdge
}

// Build finalizes the method: exit sentinel, CFG wiring, and Method wrapper.
// cfgEdges is consumed lazily so callers can intersperse Add/Edge freely.
func (b *Builder) Build() Method {
	exit := NewExit(b.alloc())
	b.stmts = append(b.stmts, exit)

	nodes := append([]Stmt(nil), b.stmts...)
	cfg := NewCFG(b.stmts[0], exit, nodes)
	for _, pe := range b.cfgEdges {
		from := pe.from
		if from == Stmt(b.exitMark) {
			from = exit
		}
		if pe.edge.Target == Stmt(b.exitMark) {
			pe.edge.Target = exit
		}
		cfg.AddEdge(from, pe.edge)
	}

	return &method{
		class:  b.class,
		sub:    b.sub,
		static: b.static,
		ir: &IR{
			Params:    b.params,
			This:      b.this,
			ReturnVar: b.rets,
			Stmts:     b.stmts,
			CFG:       cfg,
		},
	}
}

// NewAbstractMethod builds a Method with no body, for interface/abstract
// declarations referenced only as dispatch targets that must fail to
// resolve to a concrete body.
func NewAbstractMethod(class string, sub Subsignature) Method {
	return &method{class: class, sub: sub, abs: true}
}
