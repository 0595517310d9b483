package utils

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/checkmarble/consent-ledger/models"
)

func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, found := ctx.Value(ContextKeyLogger).(*slog.Logger)
	if !found {
		return slog.Default()
	}
	return logger
}

func StoreLoggerInContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, logger)
}

func StoreLoggerInContextMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctxWithLogger := StoreLoggerInContext(c.Request.Context(), logger)
		c.Request = c.Request.WithContext(ctxWithLogger)
		c.Next()
	}
}

// ClientInfoFromContext returns the caller description set by the transport layer. Outside
// of a request, the ip address is unknown and the user agent empty.
func ClientInfoFromContext(ctx context.Context) models.ClientInfo {
	info, found := ctx.Value(ContextKeyClientInfo).(models.ClientInfo)
	if !found {
		return models.ClientInfo{IpAddress: models.UnknownIpAddress}
	}
	return info
}

func StoreClientInfoInContext(ctx context.Context, info models.ClientInfo) context.Context {
	return context.WithValue(ctx, ContextKeyClientInfo, info)
}

func RequestIdFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestId).(string)
	return id
}

func StoreRequestIdInContext(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestId, requestId)
}
