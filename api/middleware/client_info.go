package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/checkmarble/consent-ledger/models"
	"github.com/checkmarble/consent-ledger/utils"
)

const RequestIdHeader = "X-Request-Id"

// ClientIpAddress returns the first address found in headers, read in order. A header
// holding a list yields its first item.
func ClientIpAddress(get func(header string) string, headers []string) string {
	for _, header := range headers {
		value := get(header)
		if value == "" {
			continue
		}
		first, _, _ := strings.Cut(value, ",")
		first = strings.TrimSpace(first)
		// RFC 7239 form: for=192.0.2.60;proto=http
		if strings.HasPrefix(strings.ToLower(first), "for=") {
			first, _, _ = strings.Cut(first[len("for="):], ";")
			first = strings.Trim(first, `"`)
		}
		if first != "" {
			return first
		}
	}
	return models.UnknownIpAddress
}

// NewClientInfo stores the client ip address and user agent in the request context. With
// disableIpTracking, the address is always unknown.
func NewClientInfo(headers []string, disableIpTracking bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := models.UnknownIpAddress
		if !disableIpTracking {
			ip = ClientIpAddress(c.GetHeader, headers)
		}
		ctx := utils.StoreClientInfoInContext(c.Request.Context(), models.ClientInfo{
			IpAddress: ip,
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// NewRequestId propagates the request id of the caller, or creates one, in the response
// headers and the request context.
func NewRequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(RequestIdHeader)
		if _, err := uuid.Parse(requestId); err != nil {
			requestId = uuid.NewString()
		}
		c.Header(RequestIdHeader, requestId)
		c.Request = c.Request.WithContext(utils.StoreRequestIdInContext(c.Request.Context(), requestId))
		c.Next()
	}
}
