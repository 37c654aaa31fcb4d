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

package fact

import (
	"testing"

	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/lattice"
)

func TestCPFactAbsentIsUndef(t *testing.T) {
	f := NewCPFact()
	x := ir.NewVar("x", ir.KindInt)
	if got := f.Get(x); got != lattice.UndefValue {
		t.Fatalf("Get on absent var = %v, want UNDEF", got)
	}
}

func TestCPFactUpdateReturnsChanged(t *testing.T) {
	f := NewCPFact()
	x := ir.NewVar("x", ir.KindInt)
	if !f.Update(x, lattice.ConstValue(1)) {
		t.Fatal("first update should report changed")
	}
	if f.Update(x, lattice.ConstValue(1)) {
		t.Fatal("no-op update should report unchanged")
	}
	if !f.Update(x, lattice.NacValue) {
		t.Fatal("update to new value should report changed")
	}
}

func TestCPFactEqualityIgnoresExplicitUndef(t *testing.T) {
	x := ir.NewVar("x", ir.KindInt)
	a := NewCPFact()
	b := NewCPFact()
	a.Update(x, lattice.ConstValue(1))
	a.Update(x, lattice.UndefValue) // removes the key again
	if !a.Equal(b) {
		t.Fatal("fact explicitly reset to UNDEF should equal an empty fact")
	}
}

func TestMeetIntoMatchesSpecExample(t *testing.T) {
	x := ir.NewVar("x", ir.KindInt)
	y := ir.NewVar("y", ir.KindInt)
	source := NewCPFact()
	source.Update(x, lattice.ConstValue(1))
	source.Update(y, lattice.ConstValue(2))
	target := NewCPFact()
	target.Update(x, lattice.ConstValue(1))
	target.Update(y, lattice.ConstValue(3))

	changed := MeetInto(source, target)
	if !changed {
		t.Fatal("expected meetInto to report a change")
	}
	if got := target.Get(x); got != lattice.ConstValue(1) {
		t.Errorf("x = %v, want CONST(1)", got)
	}
	if got := target.Get(y); got != lattice.NacValue {
		t.Errorf("y = %v, want NAC", got)
	}
}

func TestSetFactUnionDiff(t *testing.T) {
	a := NewSetFact[string]()
	a.Add("x")
	b := NewSetFact[string]()
	b.Add("y")

	if !a.Union(b) {
		t.Fatal("union should change a")
	}
	if !a.Contains("x") || !a.Contains("y") {
		t.Fatal("union missing members")
	}
	if !a.Diff(b) {
		t.Fatal("diff should change a")
	}
	if a.Contains("y") {
		t.Fatal("diff should have removed y")
	}
}
