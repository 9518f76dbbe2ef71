package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InjectTraceID returns a context whose logger tags every line with a fresh trace id.
func InjectTraceID(ctx context.Context) context.Context {
	id := uuid.New().String()
	logger := log.With().Str("traceId", id).Logger()
	return logger.WithContext(ctx)
}

// InjectOperation adds the operation name to the logger carried by ctx.
func InjectOperation(ctx context.Context, operation string) context.Context {
	logger := log.Ctx(ctx).With().Str("operation", operation).Logger()
	return logger.WithContext(ctx)
}
