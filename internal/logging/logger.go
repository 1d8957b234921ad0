// Package logging builds the zap logger used across the service.
package logging

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storyteller/internal/config"
)

// Field names shared by every component.
const (
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldEvent     = "event"
	FieldStory     = "story"
	FieldToken     = "token"
)

// Options controls logger construction.
type Options struct {
	// Level is debug, info, warn or error. Unknown values mean info.
	Level string
	// Format is json or console.
	Format string
	// OutputPaths defaults to stderr.
	OutputPaths []string
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	var zcfg zap.Config
	if strings.EqualFold(opts.Format, "console") {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if len(opts.OutputPaths) > 0 {
		zcfg.OutputPaths = opts.OutputPaths
	}
	return zcfg.Build()
}

// NewFromConfig builds a logger from the logging section.
func NewFromConfig(cfg config.LoggingConfig) (*zap.Logger, error) {
	return New(Options{Level: cfg.Level, Format: cfg.Format})
}

type requestIDKey struct{}

// WithRequestID stores a request id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithContext returns logger annotated with the request id carried by ctx.
func WithContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if id := RequestID(ctx); id != "" {
		return logger.With(zap.String(FieldRequestID, id))
	}
	return logger
}
