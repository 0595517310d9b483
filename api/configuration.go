package api

import "time"

// DefaultIpHeaders are read in order to find the address of the client.
var DefaultIpHeaders = []string{
	"x-client-ip",
	"x-forwarded-for",
	"cf-connecting-ip",
	"fastly-client-ip",
	"x-real-ip",
	"x-cluster-client-ip",
	"x-forwarded",
	"forwarded-for",
	"forwarded",
}

const DefaultMaxBodySize = 1 << 20

type Configuration struct {
	Env                 string
	AppName             string
	AppVersion          string
	Port                string
	RequestLoggingLevel string
	DefaultTimeout      time.Duration
	MaxBodySize         int64
	CorsAllowOrigins    []string

	IpHeaders         []string
	DisableIpTracking bool
}
