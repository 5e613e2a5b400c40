// Package logging builds the service logger: an ectologger front (structured
// fields, context awareness) with zap as the write path.
package logging

import (
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates the service logger. When pretty is true the output is
// human-readable (local development); otherwise JSON.
func New(level string, pretty bool) (ectologger.Logger, error) {
	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	zl, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, err
	}

	logger := ectologger.NewEctoLogger(func(m ectologger.EctoLogMessage) {
		fields := make([]zap.Field, 0, len(m.Fields)+1)
		for k, v := range m.Fields {
			fields = append(fields, zap.Any(k, v))
		}
		if m.Err != nil {
			fields = append(fields, zap.Error(m.Err))
		}

		switch strings.ToLower(fmt.Sprint(m.Level)) {
		case "debug":
			zl.Debug(m.Message, fields...)
		case "warn", "warning":
			zl.Warn(m.Message, fields...)
		case "error":
			zl.Error(m.Message, fields...)
		case "fatal":
			zl.Fatal(m.Message, fields...)
		default:
			zl.Info(m.Message, fields...)
		}
	})

	return logger, nil
}
