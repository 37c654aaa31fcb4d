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

// Expr is the right-hand side of an Assign statement or an If condition:
// a variable reference, an integer literal, a binary operation, or an
// allocation site. evaluate() (internal/constprop) dispatches on it.
type Expr interface {
	String() string
}

// VarExpr is `x = y`: a copy.
type VarExpr struct{ V Var }

func (e VarExpr) String() string { return e.V.Name() }

// ConstExpr is `x = n`: an integer literal.
type ConstExpr struct{ Value int32 }

func (e ConstExpr) String() string { return "#const" }

// Op is a binary operator. The CATEGORIES below are significant:
// evaluate()'s arithmetic/comparison split and hasNoSideEffect's DIV/REM
// carve-out both key off them.
type Op int

const (
	ADD Op = iota
	SUB
	MUL
	DIV
	REM
	AND
	OR
	XOR
	SHL
	SHR
	USHR
	EQ
	NE
	LT
	LE
	GT
	GE
)

// IsComparison reports whether op yields a boolean (0/1) rather than an
// arithmetic result.
func (op Op) IsComparison() bool {
	switch op {
	case EQ, NE, LT, LE, GT, GE:
		return true
	default:
		return false
	}
}

// IsDivOrRem reports whether op can fault on a zero divisor.
func (op Op) IsDivOrRem() bool { return op == DIV || op == REM }

func (op Op) String() string {
	names := [...]string{"+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>", ">>>", "==", "!=", "<", "<=", ">", ">="}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// BinExpr is `x = y op z`, both operands variables: binary expressions
// always evaluate from the in-fact's values for the operand variables,
// never from nested sub-expressions.
type BinExpr struct {
	BinOp Op
	X, Y  Var
}

func (e BinExpr) String() string { return e.X.Name() + " " + e.BinOp.String() + " " + e.Y.Name() }

// NewExpr is `x = new K(...)`: an allocation. Identity for the heap model's
// allocation-site abstraction is the *Assign statement itself, so NewExpr
// carries only the class name for display/typing purposes.
type NewExpr struct{ Class string }

func (e NewExpr) String() string { return "new " + e.Class }
