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

package constprop

import (
	"testing"

	"github.com/flowcore/analysis/internal/fact"
	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/lattice"
)

func intVar(name string) ir.Var { return ir.NewVar(name, ir.KindInt) }

// linearMethod builds `int x = 1; int y = 2; int z = x + y;` with explicit
// linear CFG wiring (entry -> s1 -> s2 -> s3 -> exit).
func linearMethod() (ir.Method, *ir.Assign) {
	b := ir.NewBuilder("Main", "m()V", true)
	x, y, z := intVar("x"), intVar("y"), intVar("z")
	s1 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 1}) })
	s2 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, y, ir.ConstExpr{Value: 2}) })
	s3 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, z, ir.BinExpr{BinOp: ir.ADD, X: x, Y: y}) })
	b.Edge(b.Entry(), ir.Normal, s1)
	b.Edge(s1, ir.Normal, s2)
	b.Edge(s2, ir.Normal, s3)
	b.Edge(s3, ir.Normal, b.Exit())
	m := b.Build()
	return m, s3.(*ir.Assign)
}

func TestScenario1_LinearConstantFolding(t *testing.T) {
	m, s3 := linearMethod()
	res := Analyze(m)
	got := res.OutFact(s3).Get(s3.Lhs)
	if got != lattice.ConstValue(3) {
		t.Fatalf("z = %v, want CONST(3)", got)
	}
}

func TestScenario3_DivByZeroIsUndef(t *testing.T) {
	b := ir.NewBuilder("Main", "m()V", true)
	z := intVar("z")
	ten := intVar("ten")
	zero := intVar("zero")
	s0 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, ten, ir.ConstExpr{Value: 10}) })
	s1 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, zero, ir.ConstExpr{Value: 0}) })
	s2 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, z, ir.BinExpr{BinOp: ir.DIV, X: ten, Y: zero}) })
	m := b.Build()
	cfg := m.IR().CFG
	cfg.AddEdge(cfg.Entry, ir.CFGEdge{Kind: ir.Normal, Target: s0})
	cfg.AddEdge(s0, ir.CFGEdge{Kind: ir.Normal, Target: s1})
	cfg.AddEdge(s1, ir.CFGEdge{Kind: ir.Normal, Target: s2})
	cfg.AddEdge(s2, ir.CFGEdge{Kind: ir.Normal, Target: cfg.Exit})

	res := Analyze(m)
	zAssign := s2.(*ir.Assign)
	got := res.OutFact(s2).Get(zAssign.Lhs)
	if got != lattice.UndefValue {
		t.Fatalf("z = %v, want UNDEF", got)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	f := fact.NewCPFact()
	x := intVar("x")
	f.Update(x, lattice.ConstValue(4))
	e := ir.BinExpr{BinOp: ir.MUL, X: x, Y: x}
	a := Evaluate(e, f)
	b := Evaluate(e, f)
	if a != b {
		t.Fatalf("evaluate not pure: %v != %v", a, b)
	}
	if a != lattice.ConstValue(16) {
		t.Fatalf("x*x = %v, want CONST(16)", a)
	}
}

func TestEvaluateDivByZeroNacDividend(t *testing.T) {
	f := fact.NewCPFact()
	y := intVar("y")
	z := intVar("z")
	f.Update(y, lattice.NacValue)
	f.Update(z, lattice.ConstValue(0))
	got := Evaluate(ir.BinExpr{BinOp: ir.DIV, X: y, Y: z}, f)
	if got != lattice.UndefValue {
		t.Fatalf("NAC / CONST(0) = %v, want UNDEF", got)
	}
}

func TestEvaluateMergeJoinYieldsNac(t *testing.T) {
	// int x = p ? 1 : 2; int z = x + 1;
	b := ir.NewBuilder("Main", "m(Z)V", true)
	p := ir.NewVar("p", ir.KindBoolean)
	b.Param(p)
	x := intVar("x")
	z := intVar("z")
	one := ir.NewVar("one", ir.KindInt)

	sIf := b.Add(func(i int) ir.Stmt { return ir.NewIf(i, ir.VarExpr{V: p}) })
	sThen := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 1}) })
	sElse := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 2}) })
	sOneLit := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, one, ir.ConstExpr{Value: 1}) })
	sZ := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, z, ir.BinExpr{BinOp: ir.ADD, X: x, Y: one}) })

	b.Edge(sIf, ir.IfTrue, sThen)
	b.Edge(sIf, ir.IfFalse, sElse)
	b.Edge(sThen, ir.Normal, sOneLit)
	b.Edge(sElse, ir.Normal, sOneLit)
	b.Edge(sOneLit, ir.Normal, sZ)
	m := b.Build()
	cfg := m.IR().CFG
	cfg.AddEdge(cfg.Entry, ir.CFGEdge{Kind: ir.Normal, Target: sIf})
	cfg.AddEdge(sZ, ir.CFGEdge{Kind: ir.Normal, Target: cfg.Exit})

	res := Analyze(m)
	zAssign := sZ.(*ir.Assign)
	got := res.OutFact(sZ).Get(zAssign.Lhs)
	if got != lattice.NacValue {
		t.Fatalf("z = %v, want NAC", got)
	}
}
