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

package config

import (
	"regexp"

	"github.com/flowcore/analysis/internal/ir"
)

// CodeIdentifier identifies a method by class and subsignature, each an
// optional regex: an empty field matches anything. Grounded on
// analysis/config's CodeIdentifier, narrowed from ssa.Function's
// package/receiver/field axes to this module's Class/Subsignature pair,
// since the IR oracle has no separate package or field-type axis.
type CodeIdentifier struct {
	Class string `yaml:"class"`
	Sub   string `yaml:"sub"`

	computed *compiledIdentifier
}

type compiledIdentifier struct {
	classRegex *regexp.Regexp
	subRegex   *regexp.Regexp
}

// CompileRegexes compiles cid's Class/Sub patterns, returning a copy with
// computed set. Compiles all fields or none: a malformed pattern in either
// field leaves cid unchanged, matching nothing.
func CompileRegexes(cid CodeIdentifier) CodeIdentifier {
	classRegex, err := regexp.Compile(cid.Class)
	if err != nil {
		return cid
	}
	subRegex, err := regexp.Compile(cid.Sub)
	if err != nil {
		return cid
	}
	cid.computed = &compiledIdentifier{classRegex: classRegex, subRegex: subRegex}
	return cid
}

// Matches reports whether m's class and subsignature satisfy cid, treating
// an empty pattern as "match anything".
func (cid CodeIdentifier) Matches(m ir.Method) bool {
	if cid.computed == nil {
		return (cid.Class == "" || cid.Class == m.Class()) &&
			(cid.Sub == "" || cid.Sub == string(m.Subsignature()))
	}
	return (cid.Class == "" || cid.computed.classRegex.MatchString(m.Class())) &&
		(cid.Sub == "" || cid.computed.subRegex.MatchString(string(m.Subsignature())))
}

// MatchesRef is Matches for a MethodRef, for call sites where only the
// static target name is known (no resolved ir.Method yet).
func (cid CodeIdentifier) MatchesRef(ref ir.MethodRef) bool {
	if cid.computed == nil {
		return (cid.Class == "" || cid.Class == ref.Class) &&
			(cid.Sub == "" || cid.Sub == string(ref.Sub))
	}
	return (cid.Class == "" || cid.computed.classRegex.MatchString(ref.Class)) &&
		(cid.Sub == "" || cid.computed.subRegex.MatchString(string(ref.Sub)))
}

// AnyMatches reports whether some identifier in cids matches m.
func AnyMatches(cids []CodeIdentifier, m ir.Method) bool {
	for _, cid := range cids {
		if cid.Matches(m) {
			return true
		}
	}
	return false
}
