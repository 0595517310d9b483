package api

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/checkmarble/consent-ledger/repositories/memory"
	"github.com/checkmarble/consent-ledger/usecases"
)

func TestNewServer(t *testing.T) {
	uc := usecases.NewUsecases(memory.NewStorage())

	t.Run("listens on every interface", func(t *testing.T) {
		server := NewServer(gin.New(), Configuration{Port: "8080", DefaultTimeout: 20 * time.Second}, uc)

		assert.Equal(t, "0.0.0.0:8080", server.Addr)
		assert.Equal(t, 25*time.Second, server.WriteTimeout)
		assert.Equal(t, 25*time.Second, server.ReadTimeout)
		assert.Equal(t, readHeaderTimeout, server.ReadHeaderTimeout)
	})

	t.Run("local test listens on localhost", func(t *testing.T) {
		server := NewServer(gin.New(), Configuration{Port: "8080"}, uc, WithLocalTest(true))

		assert.Equal(t, "localhost:8080", server.Addr)
	})

	t.Run("timeout below the route default", func(t *testing.T) {
		server := NewServer(gin.New(), Configuration{Port: "8080", DefaultTimeout: time.Second}, uc)

		assert.Equal(t, defaultTimeout+serverTimeoutMargin, server.WriteTimeout)
	})
}
