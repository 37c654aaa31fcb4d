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

package pta

import "github.com/flowcore/analysis/internal/ir"

// CSManager interns pointers and CSObjs so that, per the "CSManager
// invariant", exactly one canonical Pointer/id exists per
// (context, variable), (context, object), (object, field) or (object, array)
// tuple. Single-writer, no locking.
type CSManager struct {
	nextPointerID int64

	vars     map[varKey]*CSVar
	instFlds map[instFieldKey]*InstanceField
	statFlds map[ir.FieldRef]*StaticField
	arrays   map[CSObj]*ArrayIndex

	objIDs map[CSObj]int
	objs   []CSObj
}

type varKey struct {
	ctx Context
	v   ir.Var
}

type instFieldKey struct {
	obj   CSObj
	field ir.FieldRef
}

// NewCSManager returns an empty, ready-to-use CSManager.
func NewCSManager() *CSManager {
	return &CSManager{
		vars:     map[varKey]*CSVar{},
		instFlds: map[instFieldKey]*InstanceField{},
		statFlds: map[ir.FieldRef]*StaticField{},
		arrays:   map[CSObj]*ArrayIndex{},
		objIDs:   map[CSObj]int{},
	}
}

func (m *CSManager) allocID() int64 {
	id := m.nextPointerID
	m.nextPointerID++
	return id
}

// CSVarOf returns the canonical CSVar for (ctx, v), interning on first use.
func (m *CSManager) CSVarOf(ctx Context, v ir.Var) *CSVar {
	key := varKey{ctx, v}
	if p, ok := m.vars[key]; ok {
		return p
	}
	p := &CSVar{id: m.allocID(), Ctx: ctx, V: v, pts: NewPointsToSet()}
	m.vars[key] = p
	return p
}

// InstanceFieldOf returns the canonical InstanceField for (obj, field).
func (m *CSManager) InstanceFieldOf(obj CSObj, field ir.FieldRef) *InstanceField {
	key := instFieldKey{obj, field}
	if p, ok := m.instFlds[key]; ok {
		return p
	}
	p := &InstanceField{id: m.allocID(), Obj: obj, Field: field, pts: NewPointsToSet()}
	m.instFlds[key] = p
	return p
}

// StaticFieldOf returns the canonical StaticField for field.
func (m *CSManager) StaticFieldOf(field ir.FieldRef) *StaticField {
	if p, ok := m.statFlds[field]; ok {
		return p
	}
	p := &StaticField{id: m.allocID(), Field: field, pts: NewPointsToSet()}
	m.statFlds[field] = p
	return p
}

// ArrayIndexOf returns the canonical (collapsed) ArrayIndex pointer for obj.
func (m *CSManager) ArrayIndexOf(obj CSObj) *ArrayIndex {
	if p, ok := m.arrays[obj]; ok {
		return p
	}
	p := &ArrayIndex{id: m.allocID(), Obj: obj, pts: NewPointsToSet()}
	m.arrays[obj] = p
	return p
}

// AllVars returns every CSVar interned so far, for passes (e.g.
// interprocedural constant propagation's alias map) that must scan the
// whole pointer space rather than look up one (context, variable) pair.
func (m *CSManager) AllVars() []*CSVar {
	out := make([]*CSVar, 0, len(m.vars))
	for _, v := range m.vars {
		out = append(out, v)
	}
	return out
}

// ObjID interns obj, returning its stable integer id.
func (m *CSManager) ObjID(obj CSObj) int {
	if id, ok := m.objIDs[obj]; ok {
		return id
	}
	id := len(m.objs)
	m.objIDs[obj] = id
	m.objs = append(m.objs, obj)
	return id
}

// ObjAt returns the CSObj interned with the given id.
func (m *CSManager) ObjAt(id int) CSObj { return m.objs[id] }
