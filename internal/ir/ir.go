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

// Package ir defines the oracle types the analytical core consumes: typed
// variables, three-address statements, a control-flow graph, a class
// hierarchy and a heap model. Building these from source (parsing,
// type-checking, CFG construction) is out of scope for this module; the
// types here are what a real IR builder would hand the analyses, plus one
// in-memory Builder used by tests and by cmd/scancore to construct small
// programs without a real front end.
package ir

import "fmt"

// Kind classifies a Var's declared type for the purposes of canHoldInt.
type Kind int

const (
	// KindOther covers reference types, floating point, arrays, etc.
	KindOther Kind = iota
	KindByte
	KindShort
	KindInt
	KindChar
	KindBoolean
)

// CanHoldInt reports whether a variable of this kind participates in the
// integer constant-propagation lattice.
func (k Kind) CanHoldInt() bool {
	switch k {
	case KindByte, KindShort, KindInt, KindChar, KindBoolean:
		return true
	default:
		return false
	}
}

// Var is an opaque variable handle with an attached type. Identity is the
// pointer identity of the concrete *variable value; two Vars are the same
// variable iff ==.
type Var interface {
	Name() string
	Kind() Kind
}

// CanHoldInt is a convenience wrapper around the canHoldInt(v) predicate.
func CanHoldInt(v Var) bool {
	return v != nil && v.Kind().CanHoldInt()
}

type variable struct {
	name string
	kind Kind
}

// NewVar builds a concrete Var. Used by the Builder and by tests.
func NewVar(name string, kind Kind) Var {
	return &variable{name: name, kind: kind}
}

func (v *variable) Name() string { return v.name }
func (v *variable) Kind() Kind   { return v.kind }
func (v *variable) String() string {
	return v.name
}

// FieldRef identifies an instance or static field: T.f. It is a comparable
// struct so it can be used directly as a map key: the static-field index,
// and the field component of an InstanceField pointer.
type FieldRef struct {
	Class string
	Name  string
}

func (f FieldRef) String() string { return fmt.Sprintf("%s.%s", f.Class, f.Name) }

// Subsignature is a method's name + parameter types + return type, excluding
// its declaring class; it is what virtual dispatch looks up.
type Subsignature string

// MethodRef is how a call site names its static target: a declaring class
// plus a subsignature, resolved against the ClassHierarchy at CHA/PTA time.
type MethodRef struct {
	Class string
	Sub   Subsignature
}

// Method is a resolved, analyzable method: its declaring class, its
// subsignature, whether it is abstract (no body), and its IR.
type Method interface {
	Class() string
	Subsignature() Subsignature
	IsAbstract() bool
	IsStatic() bool
	// IR returns the method body. Panics if IsAbstract().
	IR() *IR
	String() string
}

// IR is a method body: its parameters, its "this" variable (nil for static
// methods), its return variables, and its statement list with an associated
// CFG.
type IR struct {
	Params    []Var
	This      Var // nil if static
	ReturnVar []Var
	Stmts     []Stmt
	CFG       *CFG
}

// Program is the whole-program oracle: method lookup, the class hierarchy,
// the heap model, and the designated entry point.
type Program struct {
	Hierarchy ClassHierarchy
	Heap      HeapModel
	Main      Method
	methods   map[MethodRef]Method
}

// NewProgram builds a Program around a class hierarchy, a heap model and an
// entry method. Use AddMethod to register the methods reachable from it.
func NewProgram(hierarchy ClassHierarchy, heap HeapModel, main Method) *Program {
	return &Program{Hierarchy: hierarchy, Heap: heap, Main: main, methods: map[MethodRef]Method{}}
}

// AddMethod registers m so MethodByRef can resolve calls to it.
func (p *Program) AddMethod(m Method) {
	p.methods[MethodRef{Class: m.Class(), Sub: m.Subsignature()}] = m
}

// MethodByRef resolves the method declared in exactly the named class with
// the given subsignature, or nil if none is registered: a CHA dispatch
// miss returns nil and callers skip it.
func (p *Program) MethodByRef(ref MethodRef) Method {
	return p.methods[ref]
}

// DeclaredMethod looks up a method declared directly in class, or nil.
func (p *Program) DeclaredMethod(class string, sub Subsignature) Method {
	return p.MethodByRef(MethodRef{Class: class, Sub: sub})
}

// AllMethods returns every method registered with AddMethod, for config
// resolution passes that must scan the whole program (e.g. matching
// CodeIdentifier patterns against every declared method).
func (p *Program) AllMethods() []Method {
	out := make([]Method, 0, len(p.methods))
	for _, m := range p.methods {
		out = append(out, m)
	}
	return out
}
