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

// Package fact implements two fact representations:
// CPFact (variable -> Value, absent key == UNDEF) and SetFact[T] (a plain
// set, used for live-variable results). Grounded on FlowInformation
// (analysis/dataflow/flow_info.go), which keeps a similar
// "absent means bottom" convention, generalized here to a small map type
// directly keyed by ir.Var rather than a dense per-instruction slice.
package fact

import (
	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/lattice"
)

// CPFact maps variables to abstract Values. A variable absent from the map
// is equivalent to lattice.UndefValue.
type CPFact struct {
	m map[ir.Var]lattice.Value
}

// NewCPFact returns an empty fact (all-UNDEF).
func NewCPFact() *CPFact {
	return &CPFact{m: map[ir.Var]lattice.Value{}}
}

// Get returns the Value bound to v, or UndefValue if v is unbound.
func (f *CPFact) Get(v ir.Var) lattice.Value {
	if val, ok := f.m[v]; ok {
		return val
	}
	return lattice.UndefValue
}

// Update sets f[v] = val, returning true iff this changed the fact. Binding
// a variable to UndefValue removes the key (keeping the "absent == UNDEF"
// representation canonical, so Equal needn't special-case it).
func (f *CPFact) Update(v ir.Var, val lattice.Value) bool {
	cur := f.Get(v)
	if cur == val {
		return false
	}
	if val == lattice.UndefValue {
		delete(f.m, v)
	} else {
		f.m[v] = val
	}
	return true
}

// Remove deletes v's binding (equivalent to Update(v, UndefValue)), without
// needing to construct the UNDEF value, mirroring CPFact.remove.
func (f *CPFact) Remove(v ir.Var) {
	delete(f.m, v)
}

// Keys returns the set of variables this fact explicitly mentions (not
// counting the implicit UNDEF default for absent variables).
func (f *CPFact) Keys() []ir.Var {
	keys := make([]ir.Var, 0, len(f.m))
	for v := range f.m {
		keys = append(keys, v)
	}
	return keys
}

// Copy returns an independent copy of f.
func (f *CPFact) Copy() *CPFact {
	cp := NewCPFact()
	for v, val := range f.m {
		cp.m[v] = val
	}
	return cp
}

// CopyFrom overwrites f's contents with src's, returning true iff f changed.
func (f *CPFact) CopyFrom(src *CPFact) bool {
	if f.Equal(src) {
		return false
	}
	f.m = make(map[ir.Var]lattice.Value, len(src.m))
	for v, val := range src.m {
		f.m[v] = val
	}
	return true
}

// Equal reports whether f and other agree on every variable they mention
// (a variable absent from both is implicitly UNDEF in both, so it never
// breaks equality).
func (f *CPFact) Equal(other *CPFact) bool {
	if len(f.m) != len(other.m) {
		return false
	}
	for v, val := range f.m {
		if ov, ok := other.m[v]; !ok || ov != val {
			return false
		}
	}
	return true
}

// MeetInto implements the meetInto(source, target): for every
// variable appearing in either fact, target[v] <- source[v] ⊓ target[v].
// Returns true iff target changed.
func MeetInto(source, target *CPFact) bool {
	changed := false
	seen := make(map[ir.Var]bool, len(source.m)+len(target.m))
	for v := range source.m {
		seen[v] = true
	}
	for v := range target.m {
		seen[v] = true
	}
	for v := range seen {
		merged := lattice.Meet(source.Get(v), target.Get(v))
		if target.Update(v, merged) {
			changed = true
		}
	}
	return changed
}
