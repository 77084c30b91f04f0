// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a new default logger
// it will need to be closed with
// ```
// defer logger.Desugar().Sync()
// ```
// to make sure all has been piped out before terminating
func NewLogger(l string) *Logger {
	var lvl string

	val := strings.ToLower(l)

	switch val {
	case "debug", "error", "warn", "info":
		lvl = val
	default:
		lvl = "error"
	}

	// this cannot fail with the levels above
	level, _ := zap.ParseAtomicLevel(lvl)

	c := zap.NewProductionConfig()
	c.Level = level
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.EncoderConfig.TimeKey = "timestamp"

	z, err := c.Build(zap.AddCallerSkip(0))
	if err != nil {
		panic(err)
	}

	return NewLoggerFromZap(z)
}

// NewLoggerFromZap wraps an existing zap logger, the security logger shares its core
func NewLoggerFromZap(z *zap.Logger) *Logger {
	logger := new(Logger)
	logger.SugaredLogger = z.Sugar()
	logger.security = &SecurityLogger{l: z.Named("security")}

	return logger
}
