// Package logger implements the contracts.Logger interface on top of zap.
package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leandrodaf/midiin/sdk/contracts"
)

// levelMap translates the contract levels to zap levels.
var levelMap = map[contracts.LogLevel]zapcore.Level{
	contracts.DebugLevel: zapcore.DebugLevel,
	contracts.InfoLevel:  zapcore.InfoLevel,
	contracts.WarnLevel:  zapcore.WarnLevel,
	contracts.ErrorLevel: zapcore.ErrorLevel,
	contracts.FatalLevel: zapcore.FatalLevel,
}

// ZapLogger implements contracts.Logger using uber's zap.
type ZapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// NewZapLogger creates a production-encoded logger writing to stderr at Info
// level.
func NewZapLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	return &ZapLogger{
		logger: newLogger(zapcore.Lock(os.Stderr), level),
		level:  level,
	}
}

// NewWith wraps an existing zap logger. Used by tests to capture output.
func NewWith(l *zap.Logger) contracts.Logger {
	return &ZapLogger{
		logger: l,
		level:  zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

func newLogger(ws zapcore.WriteSyncer, level zap.AtomicLevel) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.logger.Info(msg, zapFields(fields)...)
}

func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.logger.Error(msg, zapFields(fields)...)
}

func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.logger.Debug(msg, zapFields(fields)...)
}

func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.logger.Warn(msg, zapFields(fields)...)
}

func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.logger.Fatal(msg, zapFields(fields)...)
}

// Field returns a new field builder.
func (z *ZapLogger) Field() contracts.Field {
	return field{}
}

// SetLevel adjusts the minimum level of emitted entries.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	if zl, ok := levelMap[level]; ok {
		z.level.SetLevel(zl)
	}
}

// SetDestination redirects output to the console or to a file. An unusable
// file path leaves the current destination in place.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) {
	switch dest {
	case contracts.ConsoleLog:
		z.logger = newLogger(zapcore.Lock(os.Stderr), z.level)
	case contracts.FileLog:
		if len(filePath) == 0 {
			return
		}
		f, err := os.OpenFile(filePath[0], os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			z.logger.Error("failed to open log file", zap.String("path", filePath[0]), zap.Error(err))
			return
		}
		z.logger = newLogger(zapcore.Lock(f), z.level)
	}
}

func zapFields(fields []contracts.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if zf, ok := f.(field); ok {
			out = append(out, zf.f)
		}
	}
	return out
}

// field implements contracts.Field over a single zap.Field.
type field struct {
	f zap.Field
}

func (field) Bool(key string, val bool) contracts.Field {
	return field{zap.Bool(key, val)}
}

func (field) Int(key string, val int) contracts.Field {
	return field{zap.Int(key, val)}
}

func (field) Float64(key string, val float64) contracts.Field {
	return field{zap.Float64(key, val)}
}

func (field) String(key string, val string) contracts.Field {
	return field{zap.String(key, val)}
}

func (field) Time(key string, val time.Time) contracts.Field {
	return field{zap.Time(key, val)}
}

func (field) Int64(key string, val int64) contracts.Field {
	return field{zap.Int64(key, val)}
}

func (field) Error(key string, val error) contracts.Field {
	return field{zap.NamedError(key, val)}
}

func (field) Uint64(key string, val uint64) contracts.Field {
	return field{zap.Uint64(key, val)}
}

func (field) Uint8(key string, val uint8) contracts.Field {
	return field{zap.Uint8(key, val)}
}
