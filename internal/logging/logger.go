// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how diagnostics are written.
type Config struct {
	// Level is debug, info, warn or error
	Level string

	// Format is text (console writer) or json
	Format string

	// File, if set, receives a rotated copy of the log
	File string

	// Console is where logs go besides File. Nil disables console output,
	// which the terminal UI needs so logs do not draw over the screen.
	Console io.Writer

	WithCaller bool
}

// ParseLevel converts a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, errors.Errorf("unknown log level %q", level)
	}
}

// New builds a logger from cfg without touching global state.
func New(cfg Config) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var writers []io.Writer
	if cfg.Console != nil {
		if strings.EqualFold(cfg.Format, "json") {
			writers = append(writers, cfg.Console)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: cfg.Console})
		}
	}

	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		if strings.EqualFold(cfg.Format, "json") {
			writers = append(writers, rotated)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: rotated, NoColor: true})
		}
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.WithCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), nil
}

// Init replaces the global logger and level.
func Init(cfg Config) error {
	logger, err := New(cfg)
	if err != nil {
		return err
	}
	level, _ := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
	log.Logger = logger
	return nil
}
