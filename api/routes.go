package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/checkmarble/consent-ledger/api/middleware"
	"github.com/checkmarble/consent-ledger/dto"
	"github.com/checkmarble/consent-ledger/usecases"
)

const defaultTimeout = 10 * time.Second

func addRoutes(r *gin.Engine, conf Configuration, uc usecases.Usecases) {
	timeout := conf.DefaultTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	r.GET("/liveness", handleLivenessProbe(uc))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.GET("/status", handleGetStatus(uc))

	consent := v1.Group("/consent", middleware.NewTimeout(timeout))
	consent.POST("", handlePostConsent(uc))
	consent.PATCH("/identify", handleIdentifyUser(uc))
	consent.POST("/verify", handleVerifyConsent(uc))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.APIErrorResponse{Error: dto.APIError{
			Code:    dto.ErrorCodeNotFound,
			Message: "route not found",
		}})
	})
}
