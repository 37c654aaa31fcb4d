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
	"io"
	"log"
)

// LogLevel is the leveled-logging threshold, low to high severity inverted:
// higher levels are more verbose and include every lower level's output.
type LogLevel int

const (
	// ErrLevel is the minimum level: only errors are printed.
	ErrLevel LogLevel = iota + 1
	// WarnLevel adds warnings.
	WarnLevel
	// InfoLevel adds high-level progress messages.
	InfoLevel
	// DebugLevel adds per-method analysis detail.
	DebugLevel
	// TraceLevel adds per-statement worklist detail; only practical on
	// small test programs.
	TraceLevel
)

// LogGroup is five independent *log.Logger values gated by LogLevel, so
// callers can unconditionally call Tracef/Debugf/etc. without checking the
// level themselves.
type LogGroup struct {
	level LogLevel
	trace *log.Logger
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
}

// NewLogGroup returns a LogGroup configured from cfg.LogLevel, writing to
// log.Default()'s writer until SetAllOutput redirects it.
func NewLogGroup(cfg *Config) *LogGroup {
	w, flags := log.Default().Writer(), log.Default().Flags()
	return &LogGroup{
		level: LogLevel(cfg.LogLevel),
		trace: log.New(w, "[TRACE] ", flags),
		debug: log.New(w, "[DEBUG] ", flags),
		info:  log.New(w, "[INFO] ", flags),
		warn:  log.New(w, "[WARN] ", flags),
		err:   log.New(w, "[ERROR] ", flags),
	}
}

// SetAllOutput redirects every logger in the group to w.
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.trace.SetOutput(w)
	l.debug.SetOutput(w)
	l.info.SetOutput(w)
	l.warn.SetOutput(w)
	l.err.SetOutput(w)
}

// Tracef prints to the trace logger if the group's level is at least Trace.
func (l *LogGroup) Tracef(format string, v ...any) {
	if l.level >= TraceLevel {
		l.trace.Printf(format, v...)
	}
}

// Debugf prints to the debug logger if the group's level is at least Debug.
func (l *LogGroup) Debugf(format string, v ...any) {
	if l.level >= DebugLevel {
		l.debug.Printf(format, v...)
	}
}

// Infof prints to the info logger if the group's level is at least Info.
func (l *LogGroup) Infof(format string, v ...any) {
	if l.level >= InfoLevel {
		l.info.Printf(format, v...)
	}
}

// Warnf prints to the warn logger if the group's level is at least Warn.
func (l *LogGroup) Warnf(format string, v ...any) {
	if l.level >= WarnLevel {
		l.warn.Printf(format, v...)
	}
}

// Errorf prints to the error logger if the group's level is at least Error.
func (l *LogGroup) Errorf(format string, v ...any) {
	if l.level >= ErrLevel {
		l.err.Printf(format, v...)
	}
}
