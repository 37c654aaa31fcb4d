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
	"testing"

	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/pta"
)

func v(name string, kind ir.Kind) ir.Var { return ir.NewVar(name, kind) }

// Helper.f(p) { return p; } called as y = Helper.f(x) with x = 1 must flow
// CONST(1) into y across the Call/Return ICFG edges; the result arrives at
// the call's successor (here main's exit), the Return edge's target.
func TestCallReturnPropagatesConstant(t *testing.T) {
	hb := ir.NewBuilder("Helper", "f(I)I", true)
	p := v("p", ir.KindInt)
	hb.Param(p)
	ret := hb.Add(func(i int) ir.Stmt { return ir.NewReturn(i, p) })
	hb.Edge(hb.Entry(), ir.Normal, ret)
	hb.Edge(ret, ir.Normal, hb.Exit())
	helper := hb.Build()

	mb := ir.NewBuilder("Main", "m()V", true)
	x, y := v("x", ir.KindInt), v("y", ir.KindInt)
	s1 := mb.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 1}) })
	s2 := mb.Add(func(i int) ir.Stmt {
		return ir.NewInvoke(i, ir.Static, ir.MethodRef{Class: "Helper", Sub: "f(I)I"}, nil, []ir.Var{x}, y)
	})
	mb.Edge(mb.Entry(), ir.Normal, s1)
	mb.Edge(s1, ir.Normal, s2)
	mb.Edge(s2, ir.Normal, mb.Exit())
	main := mb.Build()

	h := ir.NewMapHierarchy()
	h.AddMethod(main)
	h.AddMethod(helper)

	heap := ir.NewMapHeapModel()
	prog := ir.NewProgram(h, heap, main)
	prog.AddMethod(main)
	prog.AddMethod(helper)

	ptaSolver := pta.NewSolver(h, heap, pta.InsensitiveSelector{})
	ptaResult := ptaSolver.Solve(main)

	res := Analyze(prog, ptaResult, main)

	got := res.In[main.IR().CFG.Exit].Get(y)
	if !got.IsConst() || got.Int() != 1 {
		t.Fatalf("expected y = CONST(1) after the call returns, got %v", got)
	}
}

// h1 = new Holder(); h2 = h1; y = h2.f (load before the store); x = 1;
// h1.f = x (store after the load). Because h1/h2 alias and the field index
// is built over the whole program, the load must pick up the store's value
// even though it runs first in program order -- only the explicit
// re-enqueue-on-store makes that converge.
func TestFieldLoadPicksUpLaterAliasedStore(t *testing.T) {
	field := ir.FieldRef{Class: "Holder", Name: "f"}
	b := ir.NewBuilder("Main", "m()V", true)
	h1, h2 := v("h1", ir.KindOther), v("h2", ir.KindOther)
	x, y := v("x", ir.KindInt), v("y", ir.KindInt)

	s1 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, h1, ir.NewExpr{Class: "Holder"}) })
	s2 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, h2, ir.VarExpr{V: h1}) })
	s3 := b.Add(func(i int) ir.Stmt { return ir.NewLoadField(i, y, h2, field) })
	s4 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 1}) })
	s5 := b.Add(func(i int) ir.Stmt { return ir.NewStoreField(i, h1, field, x) })
	b.Edge(b.Entry(), ir.Normal, s1)
	b.Edge(s1, ir.Normal, s2)
	b.Edge(s2, ir.Normal, s3)
	b.Edge(s3, ir.Normal, s4)
	b.Edge(s4, ir.Normal, s5)
	b.Edge(s5, ir.Normal, b.Exit())
	m := b.Build()

	h := ir.NewMapHierarchy()
	h.AddMethod(m)
	heap := ir.NewMapHeapModel()
	prog := ir.NewProgram(h, heap, m)
	prog.AddMethod(m)

	ptaSolver := pta.NewSolver(h, heap, pta.InsensitiveSelector{})
	ptaResult := ptaSolver.Solve(m)

	res := Analyze(prog, ptaResult, m)

	got := res.Out[s3].Get(y)
	if !got.IsConst() || got.Int() != 1 {
		t.Fatalf("expected the aliased load to observe the later store's constant, got %v", got)
	}
}

// a1 = new Arr(); a2 = a1 (alias); a1[0] = 10; a1[1] = 20; y = a2[0] must
// read only the index-0 store, not meet with the index-1 store.
func TestArrayLoadRespectsIndexCompatibility(t *testing.T) {
	b := ir.NewBuilder("Main", "m()V", true)
	a1, a2 := v("a1", ir.KindOther), v("a2", ir.KindOther)
	i0, i1 := v("i0", ir.KindInt), v("i1", ir.KindInt)
	x, z, y := v("x", ir.KindInt), v("z", ir.KindInt), v("y", ir.KindInt)

	s1 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, a1, ir.NewExpr{Class: "Arr"}) })
	s2 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, a2, ir.VarExpr{V: a1}) })
	s3 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, i0, ir.ConstExpr{Value: 0}) })
	s4 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, i1, ir.ConstExpr{Value: 1}) })
	s5 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 10}) })
	s6 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, z, ir.ConstExpr{Value: 20}) })
	s7 := b.Add(func(i int) ir.Stmt { return ir.NewStoreArray(i, a1, i0, x) })
	s8 := b.Add(func(i int) ir.Stmt { return ir.NewStoreArray(i, a1, i1, z) })
	s9 := b.Add(func(i int) ir.Stmt { return ir.NewLoadArray(i, y, a2, i0) })
	prev := b.Entry()
	for _, s := range []ir.Stmt{s1, s2, s3, s4, s5, s6, s7, s8, s9} {
		b.Edge(prev, ir.Normal, s)
		prev = s
	}
	b.Edge(prev, ir.Normal, b.Exit())
	m := b.Build()

	h := ir.NewMapHierarchy()
	h.AddMethod(m)
	heap := ir.NewMapHeapModel()
	prog := ir.NewProgram(h, heap, m)
	prog.AddMethod(m)

	ptaSolver := pta.NewSolver(h, heap, pta.InsensitiveSelector{})
	ptaResult := ptaSolver.Solve(m)

	res := Analyze(prog, ptaResult, m)

	got := res.Out[s9].Get(y)
	if !got.IsConst() || got.Int() != 10 {
		t.Fatalf("expected y = CONST(10) from the index-0 store only, got %v", got)
	}
}
