package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"tokencounter/internal/core"
	"tokencounter/internal/util"
)

// Settings process-wide configuration, loaded once at startup
type Settings struct {
	AnthropicAPIKey  string
	GoogleAPIKey     string
	AnthropicBaseURL string
	GoogleBaseURL    string

	CORSOrigins string
	AppName     string
	AppVersion  string

	Port    string
	GinMode string

	RedisURL      string
	StatsFilePath string

	HTTPClientSettings HTTPClientSettings
	Storage            core.StorageInterface
	Logger             core.Logger
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	RequestTimeout      time.Duration
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:        core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: core.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:     core.HTTPMaxConnsPerHost,
		IdleConnTimeout:     core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: core.HTTPTLSHandshakeTimeout,
		RequestTimeout:      core.HTTPRequestTimeout,
	}
}

// CORSOriginsList parses CORS_ORIGINS into a list of allowed origins
func (s Settings) CORSOriginsList() []string {
	if strings.TrimSpace(s.CORSOrigins) == "*" {
		return []string{"*"}
	}
	origins := util.ParseEnvList(s.CORSOrigins)
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// APIKeyFor returns the configured key for a vendor
func (s Settings) APIKeyFor(vendor string) string {
	switch vendor {
	case core.VendorAnthropic:
		return s.AnthropicAPIKey
	case core.VendorGoogle:
		return s.GoogleAPIKey
	default:
		return ""
	}
}

// Validate checks the settings that the process cannot start without
func (s Settings) Validate() error {
	var missing []string
	if s.AnthropicAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if s.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// LoadSettingsFromEnv loads settings from environment variables
func LoadSettingsFromEnv(logger core.Logger) (Settings, error) {
	settings := Settings{
		AnthropicAPIKey:    strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		GoogleAPIKey:       strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
		AnthropicBaseURL:   os.Getenv("ANTHROPIC_BASE_URL"),
		GoogleBaseURL:      os.Getenv("GOOGLE_BASE_URL"),
		CORSOrigins:        util.GetEnvWithDefault("CORS_ORIGINS", core.DefaultCORSOrigins),
		AppName:            util.GetEnvWithDefault("APP_NAME", core.DefaultAppName),
		AppVersion:         util.GetEnvWithDefault("APP_VERSION", core.DefaultAppVersion),
		Port:               util.GetEnvWithDefault("PORT", core.DefaultPort),
		GinMode:            util.GetEnvWithDefault("GIN_MODE", core.DefaultGinMode),
		RedisURL:           os.Getenv("REDIS_URL"),
		StatsFilePath:      util.GetEnvWithDefault("STATS_FILE", core.StatsFilePath),
		HTTPClientSettings: DefaultHTTPClientSettings(),
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}

	logger.Info("Loaded Anthropic API key %s", util.MaskSecret(settings.AnthropicAPIKey))
	logger.Info("Loaded Google API key %s", util.MaskSecret(settings.GoogleAPIKey))
	logger.Info("CORS origins: %s", strings.Join(settings.CORSOriginsList(), ", "))

	return settings, nil
}
