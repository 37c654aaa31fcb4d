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

package liveness

import (
	"testing"

	"github.com/flowcore/analysis/internal/ir"
)

func intVar(name string) ir.Var { return ir.NewVar(name, ir.KindInt) }

// `x = 1; y = x; return y;` -- x is live across the first statement (used by
// the second), y is live across the second (used by the return).
func TestLiveAcrossCopyChain(t *testing.T) {
	b := ir.NewBuilder("Main", "m()I", true)
	x, y := intVar("x"), intVar("y")
	s1 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, x, ir.ConstExpr{Value: 1}) })
	s2 := b.Add(func(i int) ir.Stmt { return ir.NewAssign(i, y, ir.VarExpr{V: x}) })
	s3 := b.Add(func(i int) ir.Stmt { return ir.NewReturn(i, y) })
	b.Edge(b.Entry(), ir.Normal, s1)
	b.Edge(s1, ir.Normal, s2)
	b.Edge(s2, ir.Normal, s3)
	b.Edge(s3, ir.Normal, b.Exit())
	m := b.Build()

	res := Analyze(m)
	if !res.OutFact(s1).Contains(x) {
		t.Fatal("x should be live after s1 (used by s2)")
	}
	if !res.OutFact(s2).Contains(y) {
		t.Fatal("y should be live after s2 (used by s3)")
	}
	if res.OutFact(s3).Contains(y) {
		t.Fatal("nothing should be live after the return")
	}
}

// `x = 1; x = 2; return x;` -- the first assignment's value never reaches a
// use, so x is dead (not live) immediately after s1.
func TestOverwrittenBeforeUseIsDead(t *testing.T) {
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

	res := Analyze(m)
	if res.OutFact(s1).Contains(x) {
		t.Fatal("x written by s1 is overwritten by s2 before any use: should not be live")
	}
	if !res.OutFact(s2).Contains(x) {
		t.Fatal("x written by s2 should be live (used by s3)")
	}
}

func TestDefUsesHelpers(t *testing.T) {
	x, y, z := intVar("x"), intVar("y"), intVar("z")
	add := ir.NewAssign(0, z, ir.BinExpr{BinOp: ir.ADD, X: x, Y: y})
	d, ok := Def(add)
	if !ok || d != z {
		t.Fatalf("Def(z = x+y) = %v, %v; want z, true", d, ok)
	}
	uses := Uses(add)
	if len(uses) != 2 || uses[0] != x || uses[1] != y {
		t.Fatalf("Uses(z = x+y) = %v, want [x y]", uses)
	}

	ret := ir.NewReturn(1, nil)
	if _, ok := Def(ret); ok {
		t.Fatal("void return should have no def")
	}
	if len(Uses(ret)) != 0 {
		t.Fatal("void return should have no uses")
	}
}
