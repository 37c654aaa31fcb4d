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

// ClassHierarchy is the external oracle CHA and PTA resolve virtual calls
// against: direct subtype edges in both directions, plus
// per-class method lookup by subsignature.
type ClassHierarchy interface {
	DirectSubclassesOf(class string) []string
	DirectSubinterfacesOf(class string) []string
	DirectImplementorsOf(class string) []string
	SuperClassOf(class string) (string, bool)
	// DeclaredMethod returns the method declared directly in class with the
	// given subsignature, or nil.
	DeclaredMethod(class string, sub Subsignature) Method
}

// MapHierarchy is a minimal in-memory ClassHierarchy, good enough for tests
// and for cmd/scancore's toy programs; a real front end would derive this
// from parsed class files instead.
type MapHierarchy struct {
	Subclasses    map[string][]string
	Subinterfaces map[string][]string
	Implementors  map[string][]string
	Super         map[string]string
	Declared      map[string]map[Subsignature]Method
}

// NewMapHierarchy returns an empty, ready-to-populate MapHierarchy.
func NewMapHierarchy() *MapHierarchy {
	return &MapHierarchy{
		Subclasses:    map[string][]string{},
		Subinterfaces: map[string][]string{},
		Implementors:  map[string][]string{},
		Super:         map[string]string{},
		Declared:      map[string]map[Subsignature]Method{},
	}
}

func (h *MapHierarchy) DirectSubclassesOf(class string) []string    { return h.Subclasses[class] }
func (h *MapHierarchy) DirectSubinterfacesOf(class string) []string { return h.Subinterfaces[class] }
func (h *MapHierarchy) DirectImplementorsOf(class string) []string  { return h.Implementors[class] }

func (h *MapHierarchy) SuperClassOf(class string) (string, bool) {
	s, ok := h.Super[class]
	return s, ok
}

func (h *MapHierarchy) DeclaredMethod(class string, sub Subsignature) Method {
	if m, ok := h.Declared[class]; ok {
		return m[sub]
	}
	return nil
}

// AddMethod registers m as declared in its own Class(), for DeclaredMethod lookups.
func (h *MapHierarchy) AddMethod(m Method) {
	if h.Declared[m.Class()] == nil {
		h.Declared[m.Class()] = map[Subsignature]Method{}
	}
	h.Declared[m.Class()][m.Subsignature()] = m
}

// AddExtends records class as a direct subclass of super.
func (h *MapHierarchy) AddExtends(class, super string) {
	h.Super[class] = super
	h.Subclasses[super] = append(h.Subclasses[super], class)
}

// AddImplements records class as a direct implementor of iface.
func (h *MapHierarchy) AddImplements(class, iface string) {
	h.Implementors[iface] = append(h.Implementors[iface], class)
}

// AddExtendsInterface records iface as a direct subinterface of super.
func (h *MapHierarchy) AddExtendsInterface(iface, super string) {
	h.Subinterfaces[super] = append(h.Subinterfaces[super], iface)
}

// Obj is a heap object: an allocation-site abstraction, optionally tagged
// as a synthetic taint object by the taint overlay. Identity is the pointer
// identity of the concrete value a HeapModel returns for a given site.
type Obj interface {
	Type() string
	String() string
	// AllocIndex is a stable integer, the index of the allocating statement
	// within its method, for use as the trail element in object-sensitive
	// ContextSelectors. Allocations in different methods can share it.
	AllocIndex() int
}

// HeapModel maps an allocation site (the *Assign statement whose Rhs is a
// NewExpr) to its Obj. Out of scope to build from a real front end;
// MapHeapModel is the in-memory stand-in.
type HeapModel interface {
	Obj(site *Assign) Obj
}

type allocObj struct {
	site *Assign
	typ  string
}

func (o *allocObj) Type() string      { return o.typ }
func (o *allocObj) String() string    { return o.typ + "@" + o.site.String() }
func (o *allocObj) AllocIndex() int   { return o.site.Index() }

// MapHeapModel assigns one Obj per allocation site, memoized, matching the
// standard allocation-site abstraction.
type MapHeapModel struct {
	objs map[*Assign]Obj
}

// NewMapHeapModel returns an empty MapHeapModel.
func NewMapHeapModel() *MapHeapModel { return &MapHeapModel{objs: map[*Assign]Obj{}} }

func (h *MapHeapModel) Obj(site *Assign) Obj {
	if o, ok := h.objs[site]; ok {
		return o
	}
	typ := "object"
	if ne, ok := site.Rhs.(NewExpr); ok {
		typ = ne.Class
	}
	o := &allocObj{site: site, typ: typ}
	h.objs[site] = o
	return o
}
