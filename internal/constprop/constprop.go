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

// Package constprop implements the intraprocedural constant
// propagation: the boundary/initial facts, the per-statement transfer
// function, and the pure evaluate() used to fold If/Switch conditions in
// internal/deadcode. Grounded on original_source's
// pascal.taie.analysis.dataflow.analysis.constprop.ConstantPropagation,
// restructured as a Go type switch per the polymorphic-dispatch
// design note, and wired into internal/dataflow's generic forward solver.
package constprop

import (
	"github.com/flowcore/analysis/internal/dataflow"
	"github.com/flowcore/analysis/internal/fact"
	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/lattice"
)

// Result is the per-statement fixed point of the intraprocedural analysis.
type Result = dataflow.Result[*fact.CPFact]

// Analyze runs constant propagation to a fixed point over m's CFG.
func Analyze(m ir.Method) *Result {
	cfg := m.IR().CFG
	a := dataflow.Analysis[*fact.CPFact]{
		Direction: dataflow.Forward,
		BoundaryFact: func(*ir.CFG) *fact.CPFact {
			return boundaryFact(m)
		},
		InitialFact: fact.NewCPFact,
		MeetInto: func(src, target *fact.CPFact) bool {
			return fact.MeetInto(src, target)
		},
		Transfer: Transfer,
	}
	return dataflow.Solve(cfg, a)
}

// boundaryFact builds the entry fact: every integer-holding formal parameter
// is NAC, every other variable defaults to UNDEF by absence.
func boundaryFact(m ir.Method) *fact.CPFact {
	f := fact.NewCPFact()
	for _, p := range m.IR().Params {
		if ir.CanHoldInt(p) {
			f.Update(p, lattice.NacValue)
		}
	}
	return f
}

// Transfer implements the per-statement transfer function:
// assignments always copy in -> out and then (re)bind the LHS; every other
// statement kind is pure copy-through. Returns whether out changed.
func Transfer(stmt ir.Stmt, in, out *fact.CPFact) bool {
	asn, ok := stmt.(*ir.Assign)
	if !ok {
		return out.CopyFrom(in)
	}
	v := Evaluate(asn.Rhs, in)
	changed := out.CopyFrom(in)
	if ir.CanHoldInt(asn.Lhs) {
		if out.Update(asn.Lhs, v) {
			changed = true
		}
	} else if out.Update(asn.Lhs, lattice.UndefValue) {
		changed = true
	}
	return changed
}

// Evaluate is the pure evaluate(exp, in): it never reads or
// writes anything but its two arguments, so the same (exp, fact) always
// yields the same Value.
func Evaluate(e ir.Expr, in *fact.CPFact) lattice.Value {
	switch exp := e.(type) {
	case ir.VarExpr:
		if ir.CanHoldInt(exp.V) {
			return in.Get(exp.V)
		}
		return lattice.NacValue
	case ir.ConstExpr:
		return lattice.ConstValue(exp.Value)
	case ir.BinExpr:
		return evaluateBin(exp, in)
	default:
		// New expressions and anything else evaluate() doesn't model fold
		// to NAC.
		return lattice.NacValue
	}
}

func evaluateBin(exp ir.BinExpr, in *fact.CPFact) lattice.Value {
	if !ir.CanHoldInt(exp.X) || !ir.CanHoldInt(exp.Y) {
		return lattice.UndefValue
	}
	x := in.Get(exp.X)
	y := in.Get(exp.Y)

	if x.IsConst() && y.IsConst() {
		return evalConstConst(exp.BinOp, x.Int(), y.Int())
	}

	// Division/remainder by a known-zero divisor is UNDEF regardless of the
	// other operand's abstraction level: bypassing propagation of a
	// guaranteed exception prevents spurious facts downstream, even before
	// both operands are fully constant.
	if exp.BinOp.IsDivOrRem() && y.IsConst() && y.Int() == 0 {
		return lattice.UndefValue
	}

	if x.IsNac() || y.IsNac() {
		return lattice.NacValue
	}

	// Exactly one operand CONST, the other UNDEF (and neither NAC): await
	// more information rather than jumping to NAC.
	return lattice.UndefValue
}

func evalConstConst(op ir.Op, a, b int32) lattice.Value {
	if op.IsComparison() {
		return boolValue(evalComparison(op, a, b))
	}
	switch op {
	case ir.ADD:
		return lattice.ConstValue(a + b)
	case ir.SUB:
		return lattice.ConstValue(a - b)
	case ir.MUL:
		return lattice.ConstValue(a * b)
	case ir.DIV:
		if b == 0 {
			return lattice.UndefValue
		}
		return lattice.ConstValue(a / b)
	case ir.REM:
		if b == 0 {
			return lattice.UndefValue
		}
		return lattice.ConstValue(a % b)
	case ir.AND:
		return lattice.ConstValue(a & b)
	case ir.OR:
		return lattice.ConstValue(a | b)
	case ir.XOR:
		return lattice.ConstValue(a ^ b)
	case ir.SHL:
		return lattice.ConstValue(a << (uint32(b) & 0x1f))
	case ir.SHR:
		return lattice.ConstValue(a >> (uint32(b) & 0x1f))
	case ir.USHR:
		return lattice.ConstValue(int32(uint32(a) >> (uint32(b) & 0x1f)))
	default:
		panic(unknownOperator(op))
	}
}

func evalComparison(op ir.Op, a, b int32) bool {
	switch op {
	case ir.EQ:
		return a == b
	case ir.NE:
		return a != b
	case ir.LT:
		return a < b
	case ir.LE:
		return a <= b
	case ir.GT:
		return a > b
	case ir.GE:
		return a >= b
	default:
		panic(unknownOperator(op))
	}
}

func boolValue(b bool) lattice.Value {
	if b {
		return lattice.ConstValue(1)
	}
	return lattice.ConstValue(0)
}

func unknownOperator(op ir.Op) error {
	return ir.NewAnalysisError(ir.UnknownOperator, "constprop: unknown operator "+op.String())
}
