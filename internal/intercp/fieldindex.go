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

package intercp

import "github.com/flowcore/analysis/internal/ir"

// instanceKey pairs a base variable with the field accessed through it: the
// index is keyed this way rather than by variable alone, since two fields
// read through the same base must never be confused with each other.
type instanceKey struct {
	base  ir.Var
	field ir.FieldRef
}

// FieldIndex is the whole-program multimap of field/array accesses the
// solver needs to answer "every store this load could be reading from" (and
// vice versa, for re-enqueueing). Built once over every method prog holds.
type FieldIndex struct {
	instanceLoads  map[instanceKey][]*ir.LoadField
	instanceStores map[instanceKey][]*ir.StoreField
	staticLoads    map[ir.FieldRef][]*ir.LoadField
	staticStores   map[ir.FieldRef][]*ir.StoreField
	arrayLoads     map[ir.Var][]*ir.LoadArray
	arrayStores    map[ir.Var][]*ir.StoreArray
}

// BuildFieldIndex scans every statement of every method in prog.
func BuildFieldIndex(prog *ir.Program) *FieldIndex {
	idx := &FieldIndex{
		instanceLoads:  map[instanceKey][]*ir.LoadField{},
		instanceStores: map[instanceKey][]*ir.StoreField{},
		staticLoads:    map[ir.FieldRef][]*ir.LoadField{},
		staticStores:   map[ir.FieldRef][]*ir.StoreField{},
		arrayLoads:     map[ir.Var][]*ir.LoadArray{},
		arrayStores:    map[ir.Var][]*ir.StoreArray{},
	}

	for _, m := range prog.AllMethods() {
		if m.IsAbstract() {
			continue
		}
		for _, stmt := range m.IR().Stmts {
			switch st := stmt.(type) {
			case *ir.LoadField:
				if st.Base == nil {
					idx.staticLoads[st.Field] = append(idx.staticLoads[st.Field], st)
				} else {
					key := instanceKey{st.Base, st.Field}
					idx.instanceLoads[key] = append(idx.instanceLoads[key], st)
				}
			case *ir.StoreField:
				if st.Base == nil {
					idx.staticStores[st.Field] = append(idx.staticStores[st.Field], st)
				} else {
					key := instanceKey{st.Base, st.Field}
					idx.instanceStores[key] = append(idx.instanceStores[key], st)
				}
			case *ir.LoadArray:
				idx.arrayLoads[st.Arr] = append(idx.arrayLoads[st.Arr], st)
			case *ir.StoreArray:
				idx.arrayStores[st.Arr] = append(idx.arrayStores[st.Arr], st)
			}
		}
	}

	return idx
}

// InstanceStoresOf returns every `base.field = rhs` store where base is
// exactly the given variable.
func (idx *FieldIndex) InstanceStoresOf(base ir.Var, field ir.FieldRef) []*ir.StoreField {
	return idx.instanceStores[instanceKey{base, field}]
}

// InstanceLoadsOf returns every `lhs = base.field` load where base is
// exactly the given variable.
func (idx *FieldIndex) InstanceLoadsOf(base ir.Var, field ir.FieldRef) []*ir.LoadField {
	return idx.instanceLoads[instanceKey{base, field}]
}

// StaticStoresOf returns every static store to field.
func (idx *FieldIndex) StaticStoresOf(field ir.FieldRef) []*ir.StoreField {
	return idx.staticStores[field]
}

// StaticLoadsOf returns every static load of field.
func (idx *FieldIndex) StaticLoadsOf(field ir.FieldRef) []*ir.LoadField {
	return idx.staticLoads[field]
}

// ArrayStoresOf returns every `arr[i] = rhs` store where arr is exactly the
// given variable.
func (idx *FieldIndex) ArrayStoresOf(arr ir.Var) []*ir.StoreArray {
	return idx.arrayStores[arr]
}

// ArrayLoadsOf returns every `lhs = arr[i]` load where arr is exactly the
// given variable.
func (idx *FieldIndex) ArrayLoadsOf(arr ir.Var) []*ir.LoadArray {
	return idx.arrayLoads[arr]
}
