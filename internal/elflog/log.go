// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package elflog is a small leveled logger, reconstructed in the shape of
// the logging package this codec's teacher depends on (Logger/Helper/
// Filter/Level), kept internal since the upstream package it mirrors was
// never itself a module this repository imports.
package elflog

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Level is a log severity.
type Level int

// Recognised severities, increasing.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal leveled-logging sink every component in this
// package logs through.
type Logger interface {
	Log(level Level, msg string)
}

// stdLogger writes formatted lines to an io.Writer via the standard
// library logger.
type stdLogger struct {
	mu  sync.Mutex
	std *log.Logger
}

// NewStdLogger returns a Logger that writes timestamped "LEVEL: msg" lines
// to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{std: log.New(w, "", log.LstdFlags)}
}

func (l *stdLogger) Log(level Level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.std.Printf("%s: %s", level, msg)
}

// filter wraps a Logger, dropping any entry below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// FilterLevel returns a filter option value understood by NewFilter.
func FilterLevel(min Level) Level { return min }

// NewFilter wraps next so that only entries at or above min pass through.
func NewFilter(next Logger, min Level) Logger {
	return &filter{next: next, min: min}
}

func (f *filter) Log(level Level, msg string) {
	if level < f.min {
		return
	}
	f.next.Log(level, msg)
}

// Helper is the ergonomic, printf-style wrapper every parser function
// logs through, rather than calling Logger.Log directly.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

// Debugf logs a formatted message at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.logger.Log(LevelDebug, fmt.Sprintf(format, args...))
}

// Infof logs a formatted message at LevelInfo.
func (h *Helper) Infof(format string, args ...interface{}) {
	h.logger.Log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.logger.Log(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.logger.Log(LevelError, fmt.Sprintf(format, args...))
}
