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

// Package lattice implements the three-point abstract integer
// lattice: UNDEF ⊑ CONST(n) ⊑ NAC, and its meet operator. Grounded on the
// teacher's tri-state AbstractValue (analysis/dataflow/abstract_value.go),
// generalized from taint marks to a signed 32-bit constant.
package lattice

// Kind tags a Value's lattice position.
type Kind int

const (
	Undef Kind = iota
	Const
	Nac
)

func (k Kind) String() string {
	switch k {
	case Undef:
		return "UNDEF"
	case Const:
		return "CONST"
	case Nac:
		return "NAC"
	default:
		return "?"
	}
}

// Value is an abstract integer: UNDEF (⊥), CONST(i), or NAC (⊤). It is a
// plain comparable value type, so two Values are equal with ==.
type Value struct {
	kind  Kind
	value int32
}

// UndefValue is ⊥, the "not yet observed" value.
var UndefValue = Value{kind: Undef}

// NacValue is ⊤, "not a constant".
var NacValue = Value{kind: Nac}

// ConstValue builds CONST(n).
func ConstValue(n int32) Value { return Value{kind: Const, value: n} }

func (v Value) IsUndef() bool { return v.kind == Undef }
func (v Value) IsConst() bool { return v.kind == Const }
func (v Value) IsNac() bool   { return v.kind == Nac }
func (v Value) Kind() Kind    { return v.kind }

// Int returns the constant payload; only meaningful when IsConst().
func (v Value) Int() int32 { return v.value }

func (v Value) String() string {
	if v.kind == Const {
		return "CONST(" + itoa(v.value) + ")"
	}
	return v.kind.String()
}

func itoa(n int32) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	var buf [12]byte
	i := len(buf)
	u := uint32(n)
	if neg {
		u = uint32(-int64(n))
	}
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Meet implements the componentwise meet (⊓):
//
//	NAC ⊓ x = NAC
//	UNDEF ⊓ x = x
//	CONST(a) ⊓ CONST(b) = CONST(a) if a == b, else NAC
//
// Meet is commutative, associative and idempotent.
func Meet(a, b Value) Value {
	if a.kind == Nac || b.kind == Nac {
		return NacValue
	}
	if a.kind == Undef {
		return b
	}
	if b.kind == Undef {
		return a
	}
	// both Const
	if a.value == b.value {
		return a
	}
	return NacValue
}
