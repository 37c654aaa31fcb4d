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

package deadcode

import (
	"testing"

	"github.com/flowcore/analysis/internal/constprop"
	"github.com/flowcore/analysis/internal/ir"
)

func intVar(name string) ir.Var { return ir.NewVar(name, ir.KindInt) }

// `if (true) x = 1; else x = 2;` -- the CP in-fact at the If folds the
// condition to CONST(1), so the else branch is unreachable even though it
// is plain-CFG reachable.
func TestUnreachableElseBranch(t *testing.T) {
	b := ir.NewBuilder("Main", "m()V", true)
	x := intVar("x")
	one := intVar("one")

	sOne := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, one, ir.ConstExpr{Value: 1}) })
	sIf := b.Add(func(i int) ir.Stmt { return ir.NewIf(i, ir.VarExpr{V: one}) })
	sThen := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 1}) })
	sElse := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 2}) })
	sRet := b.Add(func(i int) ir.Stmt { return ir.NewReturn(i, x) })

	b.Edge(b.Entry(), ir.Normal, sOne)
	b.Edge(sOne, ir.Normal, sIf)
	b.Edge(sIf, ir.IfTrue, sThen)
	b.Edge(sIf, ir.IfFalse, sElse)
	b.Edge(sThen, ir.Normal, sRet)
	b.Edge(sElse, ir.Normal, sRet)
	b.Edge(sRet, ir.Normal, b.Exit())
	m := b.Build()

	cp := constprop.Analyze(m)
	res := Analyze(m, cp)

	if !res.Contains(sElse.Index()) {
		t.Fatalf("else branch (idx %d) should be unreachable; dead = %v", sElse.Index(), res.Dead)
	}
	if res.Contains(sThen.Index()) {
		t.Fatal("then branch should be reachable")
	}
}

// `x = 1; x = 2; return x;` -- s1's assignment is overwritten before any
// use and has no side effect, so it is a dead assignment.
func TestDeadAssignmentOverwritten(t *testing.T) {
	b := ir.NewBuilder("Main", "m()I", true)
	x := intVar("x")
	s1 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 1}) })
	s2 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 2}) })
	s3 := b.Add(func(i int) ir.Stmt { return ir.NewReturn(i, x) })
	b.Edge(b.Entry(), ir.Normal, s1)
	b.Edge(s1, ir.Normal, s2)
	b.Edge(s2, ir.Normal, s3)
	b.Edge(s3, ir.Normal, b.Exit())
	m := b.Build()

	cp := constprop.Analyze(m)
	res := Analyze(m, cp)

	if !res.Contains(s1.Index()) {
		t.Fatalf("s1 should be a dead assignment; dead = %v", res.Dead)
	}
	if res.Contains(s2.Index()) {
		t.Fatal("s2 is live out (used by the return) and must not be dead")
	}
}

// `x = 10 / 0;` has no live use of x, but DIV has a side effect (a fault),
// so it must not be marked dead even though x is never read afterward.
func TestDivRemNeverDeadDespiteUnusedResult(t *testing.T) {
	b := ir.NewBuilder("Main", "m()V", true)
	ten := intVar("ten")
	zero := intVar("zero")
	x := intVar("x")
	s0 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, ten, ir.ConstExpr{Value: 10}) })
	s1 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, zero, ir.ConstExpr{Value: 0}) })
	s2 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.BinExpr{BinOp: ir.DIV, X: ten, Y: zero}) })
	b.Edge(b.Entry(), ir.Normal, s0)
	b.Edge(s0, ir.Normal, s1)
	b.Edge(s1, ir.Normal, s2)
	b.Edge(s2, ir.Normal, b.Exit())
	m := b.Build()

	cp := constprop.Analyze(m)
	res := Analyze(m, cp)

	if res.Contains(s2.Index()) {
		t.Fatal("DIV has a side effect and must never be marked a dead assignment")
	}
}

func TestEntryExitNeverDead(t *testing.T) {
	b := ir.NewBuilder("Main", "m()V", true)
	s1 := b.Add(func(i int) ir.Stmt { return ir.NewOther(i) })
	b.Edge(b.Entry(), ir.Normal, s1)
	b.Edge(s1, ir.Normal, b.Exit())
	m := b.Build()

	cp := constprop.Analyze(m)
	res := Analyze(m, cp)

	cfg := m.IR().CFG
	if res.Contains(cfg.Entry.Index()) || res.Contains(cfg.Exit.Index()) {
		t.Fatal("entry/exit sentinels must never appear in the dead set")
	}
}
