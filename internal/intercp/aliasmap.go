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

import (
	"github.com/flowcore/analysis/internal/ir"
	"github.com/flowcore/analysis/internal/pta"
)

// AliasMap answers, for a variable v seen by PTA, the set of variables
// whose points-to sets overlap v's (v included, reflexively). Built once
// from a completed pta.Result by unioning every CSVar's PTS across
// contexts per underlying ir.Var, then pairwise-intersecting: O(V^2) in the
// number of pointer-tracked variables, which is the straightforward
// approach here. A union-find over "shares an object" edges would trade
// that quadratic pass for lower peak memory if the variable count ever
// makes it a problem; not needed at this scale.
type AliasMap struct {
	aliases map[ir.Var][]ir.Var
}

// BuildAliasMap computes the alias map from a finished pointer analysis.
func BuildAliasMap(result *pta.Result) *AliasMap {
	groups := map[ir.Var]map[int]bool{}
	for _, cv := range result.Manager.AllVars() {
		ids, ok := groups[cv.V]
		if !ok {
			ids = map[int]bool{}
			groups[cv.V] = ids
		}
		for _, id := range cv.PTS().IDs() {
			ids[id] = true
		}
	}

	vars := make([]ir.Var, 0, len(groups))
	for v := range groups {
		vars = append(vars, v)
	}

	aliases := make(map[ir.Var][]ir.Var, len(vars))
	for _, v := range vars {
		aliases[v] = []ir.Var{v}
	}
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			if !intersects(groups[vars[i]], groups[vars[j]]) {
				continue
			}
			aliases[vars[i]] = append(aliases[vars[i]], vars[j])
			aliases[vars[j]] = append(aliases[vars[j]], vars[i])
		}
	}

	return &AliasMap{aliases: aliases}
}

// Aliases returns every variable whose points-to set overlaps v's,
// including v itself. A variable PTA never tracked (e.g. one that never
// holds a reference) aliases only itself.
func (a *AliasMap) Aliases(v ir.Var) []ir.Var {
	if as, ok := a.aliases[v]; ok {
		return as
	}
	return []ir.Var{v}
}

func intersects(a, b map[int]bool) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for id := range a {
		if b[id] {
			return true
		}
	}
	return false
}
