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

// Stmt is the polymorphic statement sum type used in place of a visitor
// pattern: a tagged union over statement kinds, dispatched with a Go type
// switch in each analysis pass. Every Stmt also carries an Index, assigned
// by the IR builder, used to produce a deterministic ordering of
// observable output (dead-code sets, sorted below by Index).
type Stmt interface {
	Index() int
	String() string
}

type base struct{ idx int }

func (b base) Index() int { return b.idx }

// Entry and Exit are the CFG's distinguished entry/exit nodes.
type Entry struct{ base }
type Exit struct{ base }

func (Entry) String() string { return "entry" }
func (Exit) String() string  { return "exit" }

// NewEntry and NewExit build the sentinel nodes for a method's CFG.
func NewEntry(idx int) *Entry { return &Entry{base{idx}} }
func NewExit(idx int) *Exit   { return &Exit{base{idx}} }

// Assign is `x = rhs`: a copy, a literal, a binary operation, or an
// allocation (NewExpr) - anything evaluate() can be asked to fold, plus
// New which evaluate() folds to NAC but which the PTA solver's
// processStmts treats specially.
type Assign struct {
	base
	Lhs Var
	Rhs Expr
}

func (a *Assign) String() string { return a.Lhs.Name() + " = " + a.Rhs.String() }

// NewAssign builds an Assign statement at the given index.
func NewAssign(idx int, lhs Var, rhs Expr) *Assign { return &Assign{base{idx}, lhs, rhs} }

// InvokeKind classifies a call site per the resolve() cases.
type InvokeKind int

const (
	Static InvokeKind = iota
	Special
	Virtual
	Interface
)

func (k InvokeKind) String() string {
	switch k {
	case Static:
		return "static"
	case Special:
		return "special"
	case Virtual:
		return "virtual"
	case Interface:
		return "interface"
	default:
		return "invoke"
	}
}

// Invoke is a call statement: static/special/virtual/interface, with an
// optional receiver, a list of argument variables, and an optional result
// variable.
type Invoke struct {
	base
	InvKind InvokeKind
	Callee  MethodRef // statically declared target (class + subsignature)
	Recv    Var       // nil for Static
	Args    []Var
	Lhs     Var // nil if the call's result is discarded
}

func (i *Invoke) String() string { return i.InvKind.String() + " call to " + i.Callee.String() }

func (m MethodRef) String() string { return m.Class + "." + string(m.Sub) }

// NewInvoke builds an Invoke statement.
func NewInvoke(idx int, kind InvokeKind, callee MethodRef, recv Var, args []Var, lhs Var) *Invoke {
	return &Invoke{base{idx}, kind, callee, recv, args, lhs}
}

// LoadField is `x = y.f` (instance, Base != nil) or `x = T.f` (static, Base == nil).
type LoadField struct {
	base
	Lhs   Var
	Base  Var // nil iff static
	Field FieldRef
}

func (l *LoadField) String() string { return l.Lhs.Name() + " = load " + l.Field.String() }

// NewLoadField builds a LoadField statement. Pass baseVar == nil for a static load.
func NewLoadField(idx int, lhs Var, baseVar Var, field FieldRef) *LoadField {
	return &LoadField{base: base{idx}, Lhs: lhs, Base: baseVar, Field: field}
}

// StoreField is `y.f = x` (instance) or `T.f = x` (static).
type StoreField struct {
	base
	Base  Var // nil iff static
	Field FieldRef
	Rhs   Var
}

func (s *StoreField) String() string { return "store " + s.Field.String() }

// NewStoreField builds a StoreField statement. Pass baseVar == nil for a static store.
func NewStoreField(idx int, baseVar Var, field FieldRef, rhs Var) *StoreField {
	return &StoreField{base{idx}, baseVar, field, rhs}
}

// LoadArray is `x = a[i]`.
//
// Its index Var is named Idx (rather than Index) because base's promoted
// Index() int method - required to satisfy Stmt - would otherwise be
// shadowed by a field of the same name.
type LoadArray struct {
	base
	Lhs Var
	Arr Var
	Idx Var
}

func (l *LoadArray) String() string { return l.Lhs.Name() + " = " + l.Arr.Name() + "[" + l.Idx.Name() + "]" }

// NewLoadArray builds a LoadArray statement.
func NewLoadArray(idx int, lhs, arr, index Var) *LoadArray {
	return &LoadArray{base{idx}, lhs, arr, index}
}

// StoreArray is `a[i] = x`.
//
// Its index Var is named Idx (rather than Index) because base's promoted
// Index() int method - required to satisfy Stmt - would otherwise be
// shadowed by a field of the same name.
type StoreArray struct {
	base
	Arr Var
	Idx Var
	Rhs Var
}

func (s *StoreArray) String() string { return s.Arr.Name() + "[" + s.Idx.Name() + "] = " + s.Rhs.Name() }

// NewStoreArray builds a StoreArray statement.
func NewStoreArray(idx int, arr, index, rhs Var) *StoreArray {
	return &StoreArray{base{idx}, arr, index, rhs}
}

// If is a conditional branch whose condition expression is evaluated by
// constant propagation to fold the branch.
type If struct {
	base
	Cond Expr
}

func (i *If) String() string { return "if " + i.Cond.String() }

// NewIf builds an If statement.
func NewIf(idx int, cond Expr) *If { return &If{base{idx}, cond} }

// Switch is a multi-way branch over an integer selector variable.
type Switch struct {
	base
	Selector Var
}

func (s *Switch) String() string { return "switch " + s.Selector.Name() }

// NewSwitch builds a Switch statement.
func NewSwitch(idx int, selector Var) *Switch { return &Switch{base{idx}, selector} }

// Return is a method return; ReturnVar is nil for a void return.
type Return struct {
	base
	ReturnVar Var
}

func (r *Return) String() string { return "return" }

// NewReturn builds a Return statement.
func NewReturn(idx int, v Var) *Return { return &Return{base{idx}, v} }

// Other is a catch-all for statement kinds the analyses do not reason
// about specially, e.g. a goto or a nop.
type Other struct{ base }

func (Other) String() string { return "other" }

// NewOther builds an Other statement.
func NewOther(idx int) *Other { return &Other{base{idx}} }
