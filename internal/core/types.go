package core

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

// ModelInfo describes one model offered by a vendor.
type ModelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

// ModelsResponse is the body of GET /api/v1/{vendor}/models.
type ModelsResponse struct {
	Vendor string      `json:"vendor"`
	Models []ModelInfo `json:"models"`
}

// CountTokensRequest is the body of POST /api/v1/{vendor}/counttokens.
// Text is a pointer so that a missing key can be told apart from an empty string.
type CountTokensRequest struct {
	Text  *string `json:"text" binding:"required"`
	Model string  `json:"model" binding:"required"`
}

// CountTokensBatchRequest is the body of POST /api/v1/{vendor}/counttokens/batch.
type CountTokensBatchRequest struct {
	Texts FormatTexts `json:"texts"`
	Model string      `json:"model" binding:"required"`
}

// TokenCountResponse is the single-text counting result.
type TokenCountResponse struct {
	Vendor     string `json:"vendor"`
	Model      string `json:"model"`
	TokenCount int64  `json:"token_count"`
}

// TokenCountBatchResponse is the batch counting result, keyed by format label.
type TokenCountBatchResponse struct {
	Vendor      string           `json:"vendor"`
	Model       string           `json:"model"`
	TokenCounts map[string]int64 `json:"token_counts"`
}

// FormatTexts maps caller-chosen format labels to text while remembering the
// order in which labels appeared in the request body.
type FormatTexts struct {
	labels []string
	texts  map[string]string
}

// NewFormatTexts builds FormatTexts from label/text pairs, in order.
func NewFormatTexts(pairs ...string) FormatTexts {
	ft := FormatTexts{texts: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		ft.Set(pairs[i], pairs[i+1])
	}
	return ft
}

// Set stores text under label. A repeated label keeps its first position.
func (ft *FormatTexts) Set(label, text string) {
	if ft.texts == nil {
		ft.texts = make(map[string]string)
	}
	if _, exists := ft.texts[label]; !exists {
		ft.labels = append(ft.labels, label)
	}
	ft.texts[label] = text
}

// Labels returns the labels in input order.
func (ft FormatTexts) Labels() []string {
	out := make([]string, len(ft.labels))
	copy(out, ft.labels)
	return out
}

// Get returns the text stored under label.
func (ft FormatTexts) Get(label string) string {
	return ft.texts[label]
}

// Len returns the number of distinct labels.
func (ft FormatTexts) Len() int {
	return len(ft.labels)
}

// Present reports whether the value was decoded from (or built as) an object.
func (ft FormatTexts) Present() bool {
	return ft.texts != nil
}

// UnmarshalJSON decodes a JSON object of string values, keeping key order.
func (ft *FormatTexts) UnmarshalJSON(data []byte) error {
	root, err := sonic.Get(data)
	if err != nil {
		return fmt.Errorf("texts: %w", err)
	}
	if root.TypeSafe() != ast.V_OBJECT {
		return fmt.Errorf("texts must be an object of label to text")
	}

	decoded := FormatTexts{texts: make(map[string]string)}
	var itemErr error
	err = root.ForEach(func(path ast.Sequence, node *ast.Node) bool {
		if path.Key == nil {
			return true
		}
		if node.TypeSafe() != ast.V_STRING {
			itemErr = fmt.Errorf("texts.%s must be a string", *path.Key)
			return false
		}
		text, strErr := node.String()
		if strErr != nil {
			itemErr = fmt.Errorf("texts.%s: %w", *path.Key, strErr)
			return false
		}
		decoded.Set(*path.Key, text)
		return true
	})
	if err != nil {
		return fmt.Errorf("texts: %w", err)
	}
	if itemErr != nil {
		return itemErr
	}

	*ft = decoded
	return nil
}

// MarshalJSON encodes the texts as a JSON object.
func (ft FormatTexts) MarshalJSON() ([]byte, error) {
	if ft.texts == nil {
		return []byte("{}"), nil
	}
	return sonic.Marshal(ft.texts)
}

// RequestStats holds aggregated request statistics for monitoring.
type RequestStats struct {
	TotalRequests      int64           `json:"total_requests"`
	SuccessfulRequests int64           `json:"successful_requests"`
	FailedRequests     int64           `json:"failed_requests"`
	TotalResponseTime  int64           `json:"total_response_time"`
	LastRequestTime    time.Time       `json:"last_request_time"`
	RequestHistory     []RequestRecord `json:"request_history"`
}

// RequestRecord represents a single request's metadata for history tracking.
type RequestRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Success      bool      `json:"success"`
	ResponseTime int64     `json:"response_time"`
	Vendor       string    `json:"vendor"`
	Model        string    `json:"model"`
	Operation    string    `json:"operation"`
}

// PeriodStats holds computed statistics for a time period.
type PeriodStats struct {
	Requests        int64   `json:"requests"`
	SuccessRate     float64 `json:"successRate"`
	AvgResponseTime int64   `json:"avgResponseTime"`
	QPS             float64 `json:"qps"`
}
