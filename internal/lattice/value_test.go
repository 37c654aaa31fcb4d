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

package lattice

import "testing"

func TestMeetCommutative(t *testing.T) {
	vals := []Value{UndefValue, NacValue, ConstValue(1), ConstValue(2)}
	for _, a := range vals {
		for _, b := range vals {
			if Meet(a, b) != Meet(b, a) {
				t.Errorf("Meet(%v,%v) != Meet(%v,%v)", a, b, b, a)
			}
		}
	}
}

func TestMeetIdentities(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want Value
	}{
		{"undef meet a = a", UndefValue, ConstValue(5), ConstValue(5)},
		{"nac meet a = nac", NacValue, ConstValue(5), NacValue},
		{"const k meet const k = const k", ConstValue(7), ConstValue(7), ConstValue(7)},
		{"const k meet const j = nac", ConstValue(7), ConstValue(8), NacValue},
		{"undef meet undef = undef", UndefValue, UndefValue, UndefValue},
		{"nac meet nac = nac", NacValue, NacValue, NacValue},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Meet(c.a, c.b); got != c.want {
				t.Errorf("Meet(%v,%v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestMeetIdempotent(t *testing.T) {
	vals := []Value{UndefValue, NacValue, ConstValue(3)}
	for _, v := range vals {
		if Meet(v, v) != v {
			t.Errorf("Meet(%v,%v) = %v, want %v", v, v, Meet(v, v), v)
		}
	}
}

func TestMeetAssociative(t *testing.T) {
	vals := []Value{UndefValue, NacValue, ConstValue(1), ConstValue(2)}
	for _, a := range vals {
		for _, b := range vals {
			for _, c := range vals {
				lhs := Meet(Meet(a, b), c)
				rhs := Meet(a, Meet(b, c))
				if lhs != rhs {
					t.Errorf("Meet not associative for %v,%v,%v: %v vs %v", a, b, c, lhs, rhs)
				}
			}
		}
	}
}
