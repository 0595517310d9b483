package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	timeout "github.com/vearne/gin-timeout"
)

const timeoutBody = `{"error":{"code":"REQUEST_TIMEOUT","message":"request timeout"}}`

func NewTimeout(duration time.Duration) gin.HandlerFunc {
	return timeout.Timeout(
		timeout.WithTimeout(duration),
		timeout.WithErrorHttpCode(http.StatusRequestTimeout),
		timeout.WithDefaultMsg(timeoutBody),
	)
}
