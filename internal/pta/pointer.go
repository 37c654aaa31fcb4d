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

// Package pta implements the Pointer Flow Graph and the
// context-sensitive points-to analysis solver, with a pluggable
// ContextSelector and a TaintHook seam for internal/taint's overlay.
// Grounded on original_source's pascal.taie.analysis.pta (Solver.java,
// PointerFlowGraph.java, CSManager.java), and on yangshenyi-PA4Go's choice
// of golang.org/x/tools/container/intsets.Sparse for points-to sets.
package pta

import (
	"fmt"

	"golang.org/x/tools/container/intsets"

	"github.com/flowcore/analysis/internal/ir"
)

// CSObj is a context-sensitive heap object: an allocation-site Obj paired
// with the heap context selected for it.
type CSObj struct {
	Ctx Context
	Obj ir.Obj
}

func (o CSObj) String() string { return fmt.Sprintf("%v:%s", o.Ctx, o.Obj.String()) }

// PointsToSet is a set of CSObjs, represented as a sparse set of the ids a
// CSManager interns them to.
type PointsToSet struct {
	ids intsets.Sparse
}

// NewPointsToSet returns an empty PointsToSet.
func NewPointsToSet() *PointsToSet { return &PointsToSet{} }

// Len reports the set's size.
func (s *PointsToSet) Len() int { return s.ids.Len() }

// HasID reports whether id is a member.
func (s *PointsToSet) HasID(id int) bool { return s.ids.Has(id) }

// InsertID adds id, returning true iff it was not already present.
func (s *PointsToSet) InsertID(id int) bool { return s.ids.Insert(id) }

// IDs returns the set's members in ascending order.
func (s *PointsToSet) IDs() []int { return s.ids.AppendTo(nil) }

// UnionWith merges other into s, returning true iff s changed.
func (s *PointsToSet) UnionWith(other *PointsToSet) bool { return s.ids.UnionWith(&other.ids) }

// NewIn returns the members of other absent from s: the worklist delta
// "Δ ← pts \ p.pts", called as p.pts.NewIn(pts).
func (s *PointsToSet) NewIn(other *PointsToSet) *PointsToSet {
	d := &PointsToSet{}
	d.ids.Difference(&other.ids, &s.ids)
	return d
}

// Pointer is a PFG node: one of CSVar, InstanceField, StaticField,
// ArrayIndex. ID is the pointer's interning-assigned node identity, used
// as the PFG's underlying graph.Node id.
type Pointer interface {
	ID() int64
	PTS() *PointsToSet
	String() string
}

// CSVar is a context-sensitive local variable pointer.
type CSVar struct {
	id  int64
	Ctx Context
	V   ir.Var
	pts *PointsToSet
}

func (p *CSVar) ID() int64          { return p.id }
func (p *CSVar) PTS() *PointsToSet  { return p.pts }
func (p *CSVar) String() string     { return fmt.Sprintf("%v:%s", p.Ctx, p.V.Name()) }

// InstanceField is obj.field for a specific heap object.
type InstanceField struct {
	id    int64
	Obj   CSObj
	Field ir.FieldRef
	pts   *PointsToSet
}

func (p *InstanceField) ID() int64         { return p.id }
func (p *InstanceField) PTS() *PointsToSet { return p.pts }
func (p *InstanceField) String() string    { return p.Obj.String() + "." + p.Field.Name }

// StaticField is T.f, context-independent.
type StaticField struct {
	id    int64
	Field ir.FieldRef
	pts   *PointsToSet
}

func (p *StaticField) ID() int64         { return p.id }
func (p *StaticField) PTS() *PointsToSet { return p.pts }
func (p *StaticField) String() string    { return p.Field.String() }

// ArrayIndex is the (collapsed) index cell of a heap object.
type ArrayIndex struct {
	id  int64
	Obj CSObj
	pts *PointsToSet
}

func (p *ArrayIndex) ID() int64         { return p.id }
func (p *ArrayIndex) PTS() *PointsToSet { return p.pts }
func (p *ArrayIndex) String() string    { return p.Obj.String() + "[*]" }
