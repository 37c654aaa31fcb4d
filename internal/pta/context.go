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

import (
	"strconv"
	"strings"

	"github.com/flowcore/analysis/internal/ir"
)

// Context is an opaque, comparable call-string abstraction. Concrete
// contexts must be comparable so they can key Go maps
// inside CSManager; kctx below satisfies that with a flattened string trail
// rather than a []int (Go slices aren't comparable).
type Context interface {
	String() string
}

// kctx is a k-limited trail of call-site (or allocation-site) indices,
// joined into a single comparable string. Used by both KCFASelector and
// KObjSelector: the former trails call sites, the latter trails receiver
// allocation sites.
type kctx struct{ trail string }

func (c kctx) String() string {
	if c.trail == "" {
		return "[]"
	}
	return "[" + c.trail + "]"
}

func emptyKctx() kctx { return kctx{} }

// extend appends elem to the trail, keeping only the last k entries.
func (c kctx) extend(k int, elem int) kctx {
	parts := c.split()
	parts = append(parts, strconv.Itoa(elem))
	if len(parts) > k {
		parts = parts[len(parts)-k:]
	}
	return kctx{trail: strings.Join(parts, ",")}
}

func (c kctx) split() []string {
	if c.trail == "" {
		return nil
	}
	return strings.Split(c.trail, ",")
}

// ContextSelector picks the context for a newly reached call edge or heap
// allocation ").
type ContextSelector interface {
	// EmptyContext is the context of the analysis entry point.
	EmptyContext() Context
	// SelectContext picks the callee's context for a STATIC/SPECIAL call.
	SelectContext(caller CSCallSite, callee ir.Method) Context
	// SelectContextForVirtual picks the callee's context for a
	// VIRTUAL/INTERFACE call whose receiver object is recvObj.
	SelectContextForVirtual(caller CSCallSite, recvObj CSObj, callee ir.Method) Context
	// SelectHeapContext picks the heap context for an allocation site
	// reached under the (already-selected) context csCtx.
	SelectHeapContext(csCtx Context, obj ir.Obj) Context
}

// InsensitiveSelector collapses every context to a single one: plain CHA-style
// context-insensitive analysis.
type InsensitiveSelector struct{}

func (InsensitiveSelector) EmptyContext() Context { return kctx{} }
func (InsensitiveSelector) SelectContext(_ CSCallSite, _ ir.Method) Context { return kctx{} }
func (InsensitiveSelector) SelectContextForVirtual(_ CSCallSite, _ CSObj, _ ir.Method) Context {
	return kctx{}
}
func (InsensitiveSelector) SelectHeapContext(_ Context, _ ir.Obj) Context { return kctx{} }

// KCFASelector is call-site-sensitivity: the callee's context is the
// caller's context extended with the call site's statement index, truncated
// to the last K entries.
type KCFASelector struct{ K int }

func (s KCFASelector) EmptyContext() Context { return emptyKctx() }

func (s KCFASelector) SelectContext(caller CSCallSite, _ ir.Method) Context {
	callerCtx := caller.Ctx.(kctx)
	return callerCtx.extend(s.K, caller.Site.Index())
}

func (s KCFASelector) SelectContextForVirtual(caller CSCallSite, _ CSObj, _ ir.Method) Context {
	callerCtx := caller.Ctx.(kctx)
	return callerCtx.extend(s.K, caller.Site.Index())
}

func (s KCFASelector) SelectHeapContext(csCtx Context, _ ir.Obj) Context {
	c := csCtx.(kctx)
	if s.K == 0 {
		return emptyKctx()
	}
	return c
}

// KObjSelector is object-sensitivity: the callee's context for a virtual
// call is the receiver object's allocation context extended with its own
// allocation-site index. STATIC/SPECIAL calls (no receiver object) fall
// back to the caller's context, matching original_source's treatment of
// static contexts under object sensitivity.
type KObjSelector struct{ K int }

func (s KObjSelector) EmptyContext() Context { return emptyKctx() }

func (s KObjSelector) SelectContext(caller CSCallSite, _ ir.Method) Context {
	return caller.Ctx
}

func (s KObjSelector) SelectContextForVirtual(_ CSCallSite, recvObj CSObj, _ ir.Method) Context {
	recvCtx := recvObj.Ctx.(kctx)
	return recvCtx.extend(s.K, recvObj.Obj.AllocIndex())
}

func (s KObjSelector) SelectHeapContext(csCtx Context, _ ir.Obj) Context {
	c := csCtx.(kctx)
	if s.K == 0 {
		return emptyKctx()
	}
	return c
}
