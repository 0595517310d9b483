package api

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/checkmarble/consent-ledger/usecases"
)

const (
	// headroom over the handler timeout, so the timeout middleware answers before the
	// connection is cut
	serverTimeoutMargin = 5 * time.Second
	readHeaderTimeout   = 5 * time.Second
)

type Option func(*options)

func WithLocalTest(localTest bool) Option {
	return func(o *options) {
		if localTest {
			o.host = "localhost"
		}
	}
}

type options struct {
	host string
}

// NewServer registers the ledger routes on router and serves it over http/1.1 and h2c.
func NewServer(router *gin.Engine, conf Configuration, uc usecases.Usecases, opts ...Option) *http.Server {
	o := &options{host: "0.0.0.0"}
	for _, opt := range opts {
		opt(o)
	}

	addRoutes(router, conf, uc)

	timeout := max(conf.DefaultTimeout, defaultTimeout) + serverTimeoutMargin
	return &http.Server{
		Addr:              net.JoinHostPort(o.host, conf.Port),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       timeout,
		Handler:           h2c.NewHandler(router, &http2.Server{}),
	}
}
