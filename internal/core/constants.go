package core

import "time"

// Vendor identifiers accepted in the {vendor} path segment
const (
	VendorAnthropic = "anthropic"
	VendorGoogle    = "google"
)

// SupportedVendors lists the vendors in the order they are reported to clients
var SupportedVendors = []string{VendorAnthropic, VendorGoogle}

// IsSupportedVendor reports whether vendor is one of the known literals
func IsSupportedVendor(vendor string) bool {
	return vendor == VendorAnthropic || vendor == VendorGoogle
}

// HTTP client config constants
const (
	HTTPMaxIdleConns          = 100
	HTTPMaxIdleConnsPerHost   = 20
	HTTPMaxConnsPerHost       = 50
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 10 * time.Second
	HTTPResponseHeaderTimeout = 60 * time.Second
	HTTPExpectContinueTimeout = 1 * time.Second
	HTTPRequestTimeout        = 2 * time.Minute
)

// Stats and monitoring constants
const (
	StatsFilePath        = "stats.json"
	StatsRedisKey        = "tokencounter:stats"
	MinSaveInterval      = 5 * time.Second
	HistoryBufferSize    = 1000
	HistoryBatchSize     = 100
	HistoryFlushInterval = 100 * time.Millisecond
)

// Google model listing constants
const (
	GoogleModelPrefix       = "models/"
	GoogleGenerateContent   = "generateContent"
	GoogleDefaultCreatedAt  = "2024-01-01T00:00:00Z"
	GoogleAuthErrorMessage  = "Google API authentication error"
	AnthropicModelListLimit = 100
)

// Logging config constants
const (
	MaxDebugFilePathLength = 260
)

// File permission constants
const (
	FilePermissionReadWrite = 0644
)

// Time format constants
const (
	TimeFormatDateTime = "2006-01-02 15:04:05"
)

// Default config constants
const (
	DefaultAppName     = "Token Counter API"
	DefaultAppVersion  = "1.0.0"
	DefaultPort        = "8000"
	DefaultGinMode     = "release"
	DefaultCORSOrigins = "*"
	CORSMaxAge         = "86400"
	MaxRequestBodySize = 10 << 20
)

// Content type and header constants
const (
	ContentTypeJSON     = "application/json"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-ID"
	ContextKeyRequestID = "request_id"
)
