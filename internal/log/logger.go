/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log configures the process-wide slog logger used by every
// sketchboard component. Records go to stderr in console or JSON form and
// optionally to a rotating JSON file.
package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	lj "gopkg.in/natefinch/lumberjack.v2"

	"sketchboard/internal/version"
)

// EnvPrefix is the prefix of every environment variable read by FromEnv.
const EnvPrefix = "SKB"

// Options controls logger initialization.
// FromEnv fills it from the environment:
//   - SKB_LOG_LEVEL=debug|info|warn|error
//   - SKB_LOG_FORMAT=console|json
//   - SKB_LOG_SOURCE=true|false
//   - SKB_LOG_FILE=<path> (rotated JSON file)
type Options struct {
	Level     string `envconfig:"LOG_LEVEL" default:"info"`
	Format    string `envconfig:"LOG_FORMAT" default:"console"`
	AddSource bool   `envconfig:"LOG_SOURCE" default:"false"`
	File      string `envconfig:"LOG_FILE"`
}

// Rotation limits for file logging.
const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
	fileMaxAgeDays = 28
)

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   *slog.Logger
)

// L returns the default logger, initializing it from the environment on first use.
func L() *slog.Logger {
	defaultLoggerMu.RLock()
	l := defaultLogger
	defaultLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	defaultLoggerMu.RLock()
	l = defaultLogger
	defaultLoggerMu.RUnlock()
	return l
}

// Init configures the global logger and installs it as slog.Default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	format := strings.ToLower(strings.TrimSpace(opts.Format))

	var handlers []slog.Handler
	if format == "json" {
		handlers = append(handlers, slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	} else {
		handlers = append(handlers, newConsoleHandler(os.Stderr, lvl, opts.AddSource))
	}

	if file := strings.TrimSpace(opts.File); file != "" {
		w := &lj.Logger{
			Filename:   file,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	h := handlers[0]
	if len(handlers) > 1 {
		h = fanout(handlers...)
	}

	logger := slog.New(h).With(
		slog.String("app", "sketchboard"),
		slog.String("ver", version.Version),
		slog.Time("ts_init", time.Now()),
	)

	defaultLoggerMu.Lock()
	defaultLogger = logger
	defaultLoggerMu.Unlock()
	slog.SetDefault(logger)
}

// FromEnv builds Options from SKB_LOG_* variables. Malformed values fall
// back to the defaults.
func FromEnv() Options {
	var opts Options
	if err := envconfig.Process(EnvPrefix, &opts); err != nil {
		return Options{Level: "info", Format: "console"}
	}
	return opts
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// WithDocument annotates the logger with a board document id.
func WithDocument(l *slog.Logger, id string) *slog.Logger {
	if id == "" {
		return l
	}
	return l.With(slog.String("doc", id))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
