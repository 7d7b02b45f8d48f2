/*
 * Copyright 2025 The Featran Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logger provides leveled logging for the extraction engine.
// A process-wide default instance is used by the engine; callers can
// replace it or silence it entirely.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

// Level defines log levels.
type Level int32

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	// OFF disables logging.
	OFF
)

// String returns the level name used in log lines.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case OFF:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal logging surface the engine needs.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SetLevel(level Level)
}

type stdLogger struct {
	level  atomic.Int32
	logger *log.Logger
}

// New creates a logger writing to output at the given level.
func New(level Level, output io.Writer) Logger {
	l := &stdLogger{logger: log.New(output, "", 0)}
	l.level.Store(int32(level))
	return l
}

func (l *stdLogger) enabled(level Level) bool {
	cur := Level(l.level.Load())
	return cur != OFF && cur <= level
}

func (l *stdLogger) log(level Level, format string, args ...any) {
	if !l.enabled(level) {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] %s", ts, level, fmt.Sprintf(format, args...))
}

func (l *stdLogger) Debug(format string, args ...any) { l.log(DEBUG, format, args...) }
func (l *stdLogger) Info(format string, args ...any)  { l.log(INFO, format, args...) }
func (l *stdLogger) Warn(format string, args ...any)  { l.log(WARN, format, args...) }
func (l *stdLogger) Error(format string, args ...any) { l.log(ERROR, format, args...) }
func (l *stdLogger) SetLevel(level Level)             { l.level.Store(int32(level)) }

type discardLogger struct{}

// NewDiscard creates a logger that drops everything.
func NewDiscard() Logger { return discardLogger{} }

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
func (discardLogger) SetLevel(Level)       {}

var defaultInstance Logger = New(WARN, os.Stdout)

// SetDefault replaces the process-wide default logger. Meant for setup
// time, before extractions run.
func SetDefault(l Logger) {
	defaultInstance = l
}

// Default returns the process-wide default logger.
func Default() Logger {
	return defaultInstance
}

// Debug logs through the default logger.
func Debug(format string, args ...any) { Default().Debug(format, args...) }

// Info logs through the default logger.
func Info(format string, args ...any) { Default().Info(format, args...) }

// Warn logs through the default logger.
func Warn(format string, args ...any) { Default().Warn(format, args...) }

// Error logs through the default logger.
func Error(format string, args ...any) { Default().Error(format, args...) }
