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

package taint

import (
	"testing"

	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/pta"
)

func refVar(name string) ir.Var { return ir.NewVar(name, ir.KindOther) }

// Lib.source()LString; is a source; Lib.sink(LString;)V's argument 0 is a
// sink. Main calls `t = source(); sink(t);`.
func TestSourceToSinkFlow(t *testing.T) {
	sourceRef := ir.MethodRef{Class: "Lib", Sub: "source()LString;"}
	sinkRef := ir.MethodRef{Class: "Lib", Sub: "sink(LString;)V"}

	sourceB := ir.NewBuilder(sourceRef.Class, sourceRef.Sub, true)
	sRet := sourceB.Add(func(i int) ir.Stmt { return ir.NewReturn(i, nil) })
	sourceB.Edge(sourceB.Entry(), ir.Normal, sRet)
	sourceB.Edge(sRet, ir.Normal, sourceB.Exit())
	source := sourceB.Build()

	p := refVar("p")
	sinkB := ir.NewBuilder(sinkRef.Class, sinkRef.Sub, true)
	sinkB.Param(p)
	kRet := sinkB.Add(func(i int) ir.Stmt { return ir.NewReturn(i, nil) })
	sinkB.Edge(sinkB.Entry(), ir.Normal, kRet)
	sinkB.Edge(kRet, ir.Normal, sinkB.Exit())
	sink := sinkB.Build()

	tvar := refVar("t")
	mb := ir.NewBuilder("Main", "m()V", true)
	callSource := mb.Add(func(i int) ir.Stmt {
		return ir.NewInvoke(i, ir.Static, sourceRef, nil, nil, tvar)
	})
	callSink := mb.Add(func(i int) ir.Stmt {
		return ir.NewInvoke(i, ir.Static, sinkRef, nil, []ir.Var{tvar}, nil)
	})
	mb.Edge(mb.Entry(), ir.Normal, callSource)
	mb.Edge(callSource, ir.Normal, callSink)
	mb.Edge(callSink, ir.Normal, mb.Exit())
	m := mb.Build()

	h := ir.NewMapHierarchy()
	h.AddMethod(m)
	h.AddMethod(source)
	h.AddMethod(sink)

	cfg := Config{
		Sources: []Source{{Method: sourceRef}},
		Sinks:   []Sink{{Method: sinkRef, ArgIdx: 0}},
	}
	hook := NewHook(cfg, map[ir.MethodRef]string{sourceRef: "String"})

	solver := pta.NewSolver(h, ir.NewMapHeapModel(), pta.InsensitiveSelector{})
	solver.SetTaintHook(hook)
	res := solver.Solve(m)

	flows := CollectSinks(cfg, res.CallGraph, res.Manager)
	if len(flows) != 1 {
		t.Fatalf("expected exactly one taint flow, got %d: %v", len(flows), flows)
	}
	if flows[0].SourceSite != callSource || flows[0].SinkSite != callSink || flows[0].ArgIdx != 0 {
		t.Fatalf("flow does not reference the expected source/sink/arg: %+v", flows[0])
	}
}

// A transfer rule configured against an abstract declaration (Shape.area)
// must still fire when PTA resolves a virtual call to a concrete override
// (Circle.area), since transfer dispatch is keyed by subsignature alone,
// not by the resolved callee's class. s also holds an allocated Circle:
// the solver dispatches virtual calls on heap objects only, never on taint
// objects.
func TestTransferFiresThroughVirtualDispatch(t *testing.T) {
	areaSub := ir.Subsignature("area()I")
	shapeRef := ir.MethodRef{Class: "Shape", Sub: areaSub}
	sourceRef := ir.MethodRef{Class: "Lib", Sub: "source()LCircle;"}

	h := ir.NewMapHierarchy()
	h.AddImplements("Circle", "Shape")
	h.AddMethod(ir.NewAbstractMethod("Shape", areaSub))
	h.AddMethod(ir.NewBuilder("Circle", areaSub, false).Build())

	sourceB := ir.NewBuilder(sourceRef.Class, sourceRef.Sub, true)
	sRet := sourceB.Add(func(i int) ir.Stmt { return ir.NewReturn(i, nil) })
	sourceB.Edge(sourceB.Entry(), ir.Normal, sRet)
	sourceB.Edge(sRet, ir.Normal, sourceB.Exit())
	h.AddMethod(sourceB.Build())

	s, y := refVar("s"), refVar("y")
	mb := ir.NewBuilder("Main", "m()V", true)
	alloc := mb.Add(func(i int) ir.Stmt { return ir.NewAssign(i, s, ir.NewExpr{Class: "Circle"}) })
	callSource := mb.Add(func(i int) ir.Stmt {
		return ir.NewInvoke(i, ir.Static, sourceRef, nil, nil, s)
	})
	callArea := mb.Add(func(i int) ir.Stmt {
		return ir.NewInvoke(i, ir.Virtual, shapeRef, s, nil, y)
	})
	mb.Edge(mb.Entry(), ir.Normal, alloc)
	mb.Edge(alloc, ir.Normal, callSource)
	mb.Edge(callSource, ir.Normal, callArea)
	mb.Edge(callArea, ir.Normal, mb.Exit())
	m := mb.Build()
	h.AddMethod(m)

	cfg := Config{
		Sources:   []Source{{Method: sourceRef}},
		Transfers: []Transfer{{Method: shapeRef, From: BASE, To: RESULT}},
	}
	hook := NewHook(cfg, map[ir.MethodRef]string{sourceRef: "Circle"})

	solver := pta.NewSolver(h, ir.NewMapHeapModel(), pta.InsensitiveSelector{})
	solver.SetTaintHook(hook)
	res := solver.Solve(m)

	ctx := solver.EmptyContext()
	found := false
	for _, id := range res.Manager.CSVarOf(ctx, y).PTS().IDs() {
		if _, ok := res.Manager.ObjAt(id).Obj.(*Obj); ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected taint to transfer through virtual dispatch to Circle.area()I's result")
	}
}

// With an empty Config, PTA must behave exactly as if no taint hook were
// installed at all.
func TestEmptyConfigIsolatesOverlay(t *testing.T) {
	x, y := refVar("x"), refVar("y")
	b := ir.NewBuilder("Main", "m()V", true)
	s1 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.NewExpr{Class: "A"}) })
	s2 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, y, ir.VarExpr{V: x}) })
	b.Edge(b.Entry(), ir.Normal, s1)
	b.Edge(s1, ir.Normal, s2)
	b.Edge(s2, ir.Normal, b.Exit())
	m := b.Build()

	h := ir.NewMapHierarchy()
	h.AddMethod(m)

	withHook := pta.NewSolver(h, ir.NewMapHeapModel(), pta.InsensitiveSelector{})
	withHook.SetTaintHook(NewHook(Config{}, nil))
	resWith := withHook.Solve(m)

	withoutHook := pta.NewSolver(h, ir.NewMapHeapModel(), pta.InsensitiveSelector{})
	resWithout := withoutHook.Solve(m)

	ctx := withHook.EmptyContext()
	gotLen := resWith.Manager.CSVarOf(ctx, y).PTS().Len()
	wantLen := resWithout.Manager.CSVarOf(ctx, y).PTS().Len()
	if gotLen != wantLen {
		t.Fatalf("taint overlay perturbed plain PTA: got pts len %d, want %d", gotLen, wantLen)
	}
}
