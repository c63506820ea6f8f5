package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The optimization engine logs through *zap.Logger; zapAdapter forwards
// those entries to the service Logger so both surfaces share one output.
type zapAdapter struct {
	logger *Logger
}

// NewZapLogger wraps a service Logger in a *zap.Logger for the engine.
func NewZapLogger(logger *Logger) *zap.Logger {
	return zap.New(&zapAdapter{logger: logger})
}

func zapLevel(level zapcore.Level) LogLevel {
	switch level {
	case zapcore.DebugLevel:
		return DebugLevel
	case zapcore.InfoLevel:
		return InfoLevel
	case zapcore.WarnLevel:
		return WarnLevel
	default:
		return ErrorLevel
	}
}

func (a *zapAdapter) Enabled(level zapcore.Level) bool {
	return a.logger.shouldLog(zapLevel(level))
}

func (a *zapAdapter) With(fields []zapcore.Field) zapcore.Core {
	return &zapAdapter{logger: a.logger.WithFields(fieldMap(fields))}
}

func (a *zapAdapter) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(ent.Level) {
		return ce.AddCore(ent, a)
	}
	return ce
}

func (a *zapAdapter) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	a.logger.log(zapLevel(ent.Level), ent.Message, fieldMap(fields))
	return nil
}

func (a *zapAdapter) Sync() error { return nil }

func fieldMap(fields []zapcore.Field) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return enc.Fields
}
