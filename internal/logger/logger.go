package logger

import (
	"context"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/crumbs/internal/config"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.SugaredLogger
	otelCore   *otelzap.Core
	tracer     trace.Tracer
	baseLogger *zap.Logger
}

func New(cfg config.LoggerConfig) (*Logger, error) {
	var zapConfig zap.Config

	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.EncoderConfig.TimeKey = "timestamp"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.TimeKey = "timestamp"
		zapConfig.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	if len(cfg.OutputPaths) > 0 {
		zapConfig.OutputPaths = cfg.OutputPaths
	}

	zapConfig.InitialFields = map[string]interface{}{
		"service":   "crumbs",
		"component": "logger",
	}

	baseLogger, err := zapConfig.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	// Tee standard zap output with the otelzap core so log records correlate
	// with any active trace.
	otelCore := otelzap.NewCore("crumbs",
		otelzap.WithAttributes(
			attribute.String("service", "crumbs"),
		),
	)
	core := zapcore.NewTee(baseLogger.Core(), otelCore)
	enhanced := zap.New(core, zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))

	return &Logger{
		SugaredLogger: enhanced.Sugar(),
		otelCore:      otelCore,
		tracer:        otel.Tracer("crumbs/logger"),
		baseLogger:    enhanced,
	}, nil
}

func (l *Logger) WithContext(ctx context.Context) *Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		spanCtx := span.SpanContext()
		return &Logger{
			SugaredLogger: l.With(
				"trace_id", spanCtx.TraceID().String(),
				"span_id", spanCtx.SpanID().String(),
			),
			otelCore:   l.otelCore,
			tracer:     l.tracer,
			baseLogger: l.baseLogger,
		}
	}
	return l
}

func (l *Logger) WithFields(fields ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.With(fields...),
		otelCore:      l.otelCore,
		tracer:        l.tracer,
		baseLogger:    l.baseLogger,
	}
}

func (l *Logger) WithComponent(component string) *Logger {
	return l.WithFields("component", component)
}

func (l *Logger) WithCookie(name, domain string) *Logger {
	return l.WithFields("cookie", name, "domain", domain)
}

func (l *Logger) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if l.tracer == nil {
		l.tracer = otel.Tracer("crumbs/default")
	}
	return l.tracer.Start(ctx, name, opts...)
}

// LogError records err against the current span and logs it with context.
func (l *Logger) LogError(ctx context.Context, err error, operation string, fields ...interface{}) {
	if err == nil {
		return
	}

	allFields := []interface{}{
		"error", err.Error(),
		"operation", operation,
		"error_type", fmt.Sprintf("%T", err),
	}
	allFields = append(allFields, fields...)

	l.WithContext(ctx).Errorw("Operation failed", allFields...)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

type contextKey struct{}

var loggerKey = contextKey{}

func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey).(*Logger); ok {
		return logger
	}
	logger, _ := New(config.LoggerConfig{Level: "info", Format: "json"})
	return logger
}

func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}
