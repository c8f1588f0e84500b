package server

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"tokencounter/internal/core"
	"tokencounter/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) maxBodySizeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, core.MaxRequestBodySize)
		}
		c.Next()
	}
}

// requestIDMiddleware propagates X-Request-ID, generating one when absent.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(core.HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(core.ContextKeyRequestID, requestID)
		c.Header(core.HeaderRequestID, requestID)
		c.Next()
	}
}

const corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"

func (s *Server) corsMiddleware() gin.HandlerFunc {
	origins := s.config.CORSOriginsList()
	allowAll := slices.Contains(origins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			if reqHeaders := c.GetHeader("Access-Control-Request-Headers"); reqHeaders != "" {
				c.Header("Access-Control-Allow-Headers", reqHeaders)
			} else {
				c.Header("Access-Control-Allow-Headers", "*")
			}
			c.Header("Access-Control-Max-Age", core.CORSMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// validateVendor rejects unknown vendors before any adapter is resolved.
func (s *Server) validateVendor(c *gin.Context) {
	vendorName := c.Param("vendor")
	if !core.IsSupportedVendor(vendorName) {
		respondWithError(c, core.ErrInvalidVendor(vendorName))
		return
	}
	c.Next()
}
