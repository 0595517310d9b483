package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	limits "github.com/gin-contrib/size"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/checkmarble/consent-ledger/api/middleware"
	"github.com/checkmarble/consent-ledger/infra"
	"github.com/checkmarble/consent-ledger/utils"
)

func corsOption(ctx context.Context, conf Configuration) cors.Config {
	logger := utils.LoggerFromContext(ctx)
	allowedOrigins := []string{}
	allowAll := false
	for _, s := range conf.CorsAllowOrigins {
		if s == "*" {
			allowAll = true
			continue
		}
		parsedUrl, err := url.Parse(s)
		switch {
		case err != nil:
			logger.Error("Failed to parse a CORS origin. Requests made from the browser from this url to the API will be rejected.",
				"url", s)
		case !slices.Contains([]string{"http", "https"}, parsedUrl.Scheme):
			logger.Error(
				fmt.Sprintf("The url %s does not contain a scheme (http or https), so it cannot be used for CORS.", s),
				"url", s)
		default:
			u := url.URL{
				Scheme: parsedUrl.Scheme,
				Host:   parsedUrl.Host,
			}
			allowedOrigins = append(allowedOrigins, u.String())
		}
	}

	// without configured origins, any https origin is allowed
	if !allowAll && len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://*"}
	}

	if conf.Env == "development" {
		allowedOrigins = append(allowedOrigins,
			"http://localhost:3000", "http://localhost:3001", "http://localhost:5173")
	}

	config := cors.Config{
		AllowMethods: []string{
			http.MethodOptions, http.MethodHead, http.MethodGet,
			http.MethodPost, http.MethodPatch,
		},
		AllowHeaders:     []string{"Content-Type", middleware.RequestIdHeader, "baggage", "sentry-trace"},
		ExposeHeaders:    []string{middleware.RequestIdHeader},
		AllowCredentials: false,
		AllowWildcard:    true,
		MaxAge:           12 * time.Hour,
	}
	if allowAll {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
	}
	return config
}

func InitRouterMiddlewares(
	ctx context.Context,
	conf Configuration,
	telemetryRessources infra.TelemetryRessources,
) *gin.Engine {
	if conf.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := utils.LoggerFromContext(ctx)

	maxBodySize := conf.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	ipHeaders := conf.IpHeaders
	if len(ipHeaders) == 0 {
		ipHeaders = DefaultIpHeaders
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(cors.New(corsOption(ctx, conf)))
	r.Use(limits.RequestSizeLimiter(maxBodySize))
	r.Use(middleware.NewRequestId())
	r.Use(middleware.NewClientInfo(ipHeaders, conf.DisableIpTracking))
	r.Use(utils.StoreLoggerInContextMiddleware(logger))
	r.Use(middleware.NewLogging(logger,
		middleware.WithIgnorePath([]string{"/liveness", "/metrics", "/v1/status"}),
		middleware.WithRequestLoggingLevel(conf.RequestLoggingLevel)))
	r.Use(otelgin.Middleware(
		conf.AppName,
		otelgin.WithTracerProvider(telemetryRessources.TracerProvider),
		otelgin.WithPropagators(telemetryRessources.TextMapPropagator),
	))
	r.Use(utils.StoreOpenTelemetryTracerInContextMiddleware(telemetryRessources.Tracer))

	return r
}
