package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"tokencounter/internal/core"
	"tokencounter/internal/metrics"

	"github.com/gin-gonic/gin"
)

const (
	operationListModels       = "list_models"
	operationCountTokens      = "count_tokens"
	operationCountTokensBatch = "count_tokens_batch"
)

// respondWithError writes a classified error as {"detail": message} and aborts
func respondWithError(c *gin.Context, apiErr *core.APIError) {
	c.AbortWithStatusJSON(apiErr.StatusCode(), gin.H{"detail": apiErr.Message})
}

// classify passes APIErrors through and wraps anything else as unexpected
func classify(err error, operation string) *core.APIError {
	if apiErr, ok := core.AsAPIError(err); ok {
		return apiErr
	}
	return core.ErrUnexpected(operation, err)
}

// bindingError turns a binder failure into a validation error
func bindingError(err error) *core.APIError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return core.NewAPIError(core.ErrorKindValidation, err,
			"Request body exceeds %d bytes", maxBytesErr.Limit)
	}
	return core.ErrValidation(err)
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    s.config.AppName,
		"version": s.config.AppVersion,
		"vendors": core.SupportedVendors,
		"endpoints": gin.H{
			"list_models":        "/api/v1/{vendor}/models",
			"count_tokens":       "/api/v1/{vendor}/counttokens",
			"count_tokens_batch": "/api/v1/{vendor}/counttokens/batch",
			"stats":              "/api/stats",
			"metrics":            "/metrics",
		},
	})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": s.config.AppVersion,
	})
}

func (s *Server) listModels(c *gin.Context) {
	startTime := time.Now()
	vendorName := c.Param("vendor")

	adapter, err := s.registry.Get(vendorName)
	if err != nil {
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, vendorName, "", operationListModels)
		respondWithError(c, classify(err, "listing models"))
		return
	}

	models, err := adapter.ListModels(c.Request.Context())
	if err != nil {
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, vendorName, "", operationListModels)
		respondWithError(c, classify(err, "listing models"))
		return
	}
	if models == nil {
		models = []core.ModelInfo{}
	}

	metrics.RecordSuccessWithMetrics(s.metricsService, startTime, vendorName, "", operationListModels)
	c.JSON(http.StatusOK, core.ModelsResponse{Vendor: vendorName, Models: models})
}

func (s *Server) countTokens(c *gin.Context) {
	startTime := time.Now()
	vendorName := c.Param("vendor")

	var req core.CountTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	adapter, err := s.registry.Get(vendorName)
	if err != nil {
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, vendorName, req.Model, operationCountTokens)
		respondWithError(c, classify(err, "counting tokens"))
		return
	}

	tokens, err := adapter.CountTokens(c.Request.Context(), *req.Text, req.Model)
	if err != nil {
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, vendorName, req.Model, operationCountTokens)
		respondWithError(c, classify(err, "counting tokens"))
		return
	}

	metrics.RecordSuccessWithMetrics(s.metricsService, startTime, vendorName, req.Model, operationCountTokens)
	c.JSON(http.StatusOK, core.TokenCountResponse{
		Vendor:     vendorName,
		Model:      req.Model,
		TokenCount: tokens,
	})
}

func (s *Server) countTokensBatch(c *gin.Context) {
	startTime := time.Now()
	vendorName := c.Param("vendor")

	var req core.CountTokensBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}
	if !req.Texts.Present() {
		respondWithError(c, core.ErrValidation(fmt.Errorf("field 'texts' is required")))
		return
	}

	adapter, err := s.registry.Get(vendorName)
	if err != nil {
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, vendorName, req.Model, operationCountTokensBatch)
		respondWithError(c, classify(err, "counting tokens"))
		return
	}

	counts, err := adapter.CountTokensBatch(c.Request.Context(), req.Texts, req.Model)
	if err != nil {
		metrics.RecordFailureWithMetrics(s.metricsService, startTime, vendorName, req.Model, operationCountTokensBatch)
		respondWithError(c, classify(err, "counting tokens"))
		return
	}

	metrics.RecordSuccessWithMetrics(s.metricsService, startTime, vendorName, req.Model, operationCountTokensBatch)
	c.JSON(http.StatusOK, core.TokenCountBatchResponse{
		Vendor:      vendorName,
		Model:       req.Model,
		TokenCounts: counts,
	})
}

func (s *Server) getStatsData(c *gin.Context) {
	stats := s.metricsService.GetRequestStats()
	periodStats := metrics.GetPeriodStats(stats.RequestHistory, 24, 24*7, 24*30)

	c.JSON(http.StatusOK, gin.H{
		"currentTime":        time.Now().Format(core.TimeFormatDateTime),
		"currentQPS":         fmt.Sprintf("%.3f", s.metricsService.GetQPS()),
		"totalRequests":      stats.TotalRequests,
		"successfulRequests": stats.SuccessfulRequests,
		"failedRequests":     stats.FailedRequests,
		"totalRecords":       len(stats.RequestHistory),
		"vendors":            metrics.VendorBreakdown(stats.RequestHistory),
		"stats24h":           periodStats[24],
		"stats7d":            periodStats[24*7],
		"stats30d":           periodStats[24*30],
	})
}
