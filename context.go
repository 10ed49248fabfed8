package quorum

import (
	"context"

	"github.com/tendermint/tendermint/libs/log"
)

// DefaultLogger is used for all context that have not set anything
// themselves
var DefaultLogger = log.NewNopLogger()

type contextKey int

const contextKeyLogger contextKey = iota

// WithLogger sets the logger to be carried with this context. Every
// component that accepts a context should log through GetLogger so that
// callers control the destination and the attached key value pairs.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the logger carried by this context, or DefaultLogger if
// none was set.
func GetLogger(ctx context.Context) log.Logger {
	if logger, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return logger
	}
	return DefaultLogger
}

// WithLogInfo accents the logger with given key value pairs.
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	return WithLogger(ctx, GetLogger(ctx).With(keyvals...))
}
