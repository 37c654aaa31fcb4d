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

import "github.com/pkg/errors"

// ErrorKind classifies the fail-fast analysis exceptions raised for
// precondition violations the IR is expected never to exhibit.
type ErrorKind int

const (
	// MalformedIR signals an operator or statement applied to operands the
	// analysis preconditions should have ruled out (e.g. a binary operator
	// over a non-integer-holding operand that canHoldInt did not filter).
	MalformedIR ErrorKind = iota
	// UnknownOperator signals a BinOp value outside the closed set this
	// module knows how to evaluate.
	UnknownOperator
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedIR:
		return "malformed IR"
	case UnknownOperator:
		return "unknown operator"
	default:
		return "analysis error"
	}
}

// AnalysisError is the CORE's single exported error type for precondition
// violations. It is always a programmer/IR-builder bug, never a recoverable
// condition, so it carries a stack trace via github.com/pkg/errors the way
// the rest of this dependency tree already does.
type AnalysisError struct {
	Kind  ErrorKind
	cause error
}

func (e *AnalysisError) Error() string {
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *AnalysisError) Unwrap() error { return e.cause }

// NewAnalysisError wraps msg as a stack-traced AnalysisError of the given kind.
func NewAnalysisError(kind ErrorKind, msg string) error {
	return &AnalysisError{Kind: kind, cause: errors.New(msg)}
}

// WrapAnalysisError wraps an existing error as a stack-traced AnalysisError.
func WrapAnalysisError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &AnalysisError{Kind: kind, cause: errors.WithStack(err)}
}
