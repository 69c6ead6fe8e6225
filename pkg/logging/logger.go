package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides logging functionality with structured fields
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
	Named(component string) Logger
	WithContext(ctx map[string]interface{}) Logger
	Sync() error
}

// ZapLogger implements Logger using zap
type ZapLogger struct {
	logger  *zap.Logger
	context map[string]interface{}
}

// New builds a zap-backed logger. Production uses JSON output, anything else the console encoder.
func New(appEnv, level string) *ZapLogger {
	var config zap.Config
	if appEnv == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return wrap(logger)
}

// NewNop returns a logger that discards everything. Used by tests and tools.
func NewNop() *ZapLogger {
	return wrap(zap.NewNop())
}

func wrap(l *zap.Logger) *ZapLogger {
	return &ZapLogger{
		logger:  l,
		context: make(map[string]interface{}),
	}
}

func (z *ZapLogger) Info(msg string, fields map[string]interface{}) {
	z.logger.Info(msg, z.buildZapFields(fields)...)
}

func (z *ZapLogger) Error(msg string, err error, fields map[string]interface{}) {
	zapFields := z.buildZapFields(fields)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	z.logger.Error(msg, zapFields...)
}

func (z *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	z.logger.Warn(msg, z.buildZapFields(fields)...)
}

func (z *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	z.logger.Debug(msg, z.buildZapFields(fields)...)
}

// Named returns a child logger tagged with a component name
func (z *ZapLogger) Named(component string) Logger {
	return &ZapLogger{
		logger:  z.logger.Named(component),
		context: z.copyContext(),
	}
}

// WithContext creates a new logger with additional context
func (z *ZapLogger) WithContext(ctx map[string]interface{}) Logger {
	newContext := z.copyContext()
	for k, v := range ctx {
		newContext[k] = v
	}

	return &ZapLogger{
		logger:  z.logger,
		context: newContext,
	}
}

func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}

func (z *ZapLogger) copyContext() map[string]interface{} {
	newContext := make(map[string]interface{}, len(z.context))
	for k, v := range z.context {
		newContext[k] = v
	}
	return newContext
}

// buildZapFields converts map fields to zap fields
func (z *ZapLogger) buildZapFields(fields map[string]interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, len(z.context)+len(fields))

	// Add context fields first
	for k, v := range z.context {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}

	return zapFields
}
