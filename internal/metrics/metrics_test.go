package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"tokencounter/internal/core"
)

type countingStorage struct {
	mu        sync.Mutex
	saveCount int
	loaded    *core.RequestStats
}

func (s *countingStorage) SaveStats(_ *core.RequestStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCount++
	return nil
}

func (s *countingStorage) LoadStats() (*core.RequestStats, error) {
	if s.loaded != nil {
		return s.loaded, nil
	}
	return &core.RequestStats{}, nil
}

func (s *countingStorage) Close() error { return nil }

func (s *countingStorage) getSaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCount
}

func newTestService(historySize int, storage core.StorageInterface) *MetricsService {
	return NewMetricsService(MetricsConfig{
		SaveInterval: time.Second,
		HistorySize:  historySize,
		Storage:      storage,
		Logger:       &core.NopLogger{},
	})
}

func TestMetricsService_RecordRequest(t *testing.T) {
	ms := newTestService(10, nil)
	defer func() { _ = ms.Close() }()

	ms.RecordRequest(core.RequestRecord{Success: true, ResponseTime: 100, Vendor: core.VendorAnthropic, Model: "claude", Operation: "count_tokens"})
	ms.RecordRequest(core.RequestRecord{Success: false, ResponseTime: 200, Vendor: core.VendorGoogle, Model: "gemini", Operation: "count_tokens"})
	ms.RecordRequest(core.RequestRecord{Success: true, ResponseTime: 150, Vendor: core.VendorGoogle, Operation: "list_models"})

	stats := ms.GetRequestStats()
	if stats.TotalRequests != 3 {
		t.Errorf("Expected 3 total requests, got %d", stats.TotalRequests)
	}
	if stats.SuccessfulRequests != 2 {
		t.Errorf("Expected 2 successful requests, got %d", stats.SuccessfulRequests)
	}
	if stats.FailedRequests != 1 {
		t.Errorf("Expected 1 failed request, got %d", stats.FailedRequests)
	}
	if stats.TotalResponseTime != 450 {
		t.Errorf("Expected total response time 450, got %d", stats.TotalResponseTime)
	}
	if len(stats.RequestHistory) != 3 {
		t.Fatalf("Expected 3 history records, got %d", len(stats.RequestHistory))
	}
	if stats.RequestHistory[1].Vendor != core.VendorGoogle {
		t.Errorf("Expected history order to be preserved, got %+v", stats.RequestHistory[1])
	}
}

func TestMetricsService_GetQPS(t *testing.T) {
	ms := newTestService(10, nil)
	defer func() { _ = ms.Close() }()

	if qps := ms.GetQPS(); qps != 0 {
		t.Errorf("QPS should be 0 with no requests, got %f", qps)
	}

	ms.RecordRequest(core.RequestRecord{Success: true})
	if qps := ms.GetQPS(); qps <= 0 {
		t.Errorf("QPS should be positive after a request, got %f", qps)
	}
}

func TestMetricsService_MaxHistorySize(t *testing.T) {
	ms := newTestService(3, nil)
	defer func() { _ = ms.Close() }()

	for i := 0; i < 5; i++ {
		ms.RecordRequest(core.RequestRecord{Success: true, ResponseTime: 100})
	}

	stats := ms.GetRequestStats()
	if len(stats.RequestHistory) != 3 {
		t.Errorf("History should be capped at 3, got %d", len(stats.RequestHistory))
	}
}

func TestMetricsService_DefaultHistorySize(t *testing.T) {
	ms := newTestService(0, nil)
	defer func() { _ = ms.Close() }()

	if ms.maxHistorySize != core.HistoryBufferSize {
		t.Errorf("Expected default history size %d, got %d", core.HistoryBufferSize, ms.maxHistorySize)
	}
}

func TestMetricsService_LoadStats(t *testing.T) {
	st := &countingStorage{loaded: &core.RequestStats{
		TotalRequests:      7,
		SuccessfulRequests: 6,
		FailedRequests:     1,
		RequestHistory: []core.RequestRecord{
			{Timestamp: time.Now(), Success: true, Vendor: core.VendorAnthropic},
		},
	}}
	ms := newTestService(10, st)
	defer func() { _ = ms.Close() }()

	if err := ms.LoadStats(); err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}

	stats := ms.GetRequestStats()
	if stats.TotalRequests != 7 || stats.FailedRequests != 1 {
		t.Errorf("Unexpected restored counters: %+v", stats)
	}
	if len(stats.RequestHistory) != 1 {
		t.Errorf("Expected 1 restored history record, got %d", len(stats.RequestHistory))
	}
}

func TestRecordSuccessAndFailureWithMetrics(t *testing.T) {
	ms := newTestService(10, nil)
	defer func() { _ = ms.Close() }()

	RecordSuccessWithMetrics(ms, time.Now(), core.VendorAnthropic, "claude", "count_tokens")
	RecordFailureWithMetrics(ms, time.Now(), core.VendorGoogle, "gemini", "count_tokens_batch")

	stats := ms.GetRequestStats()
	if stats.SuccessfulRequests != 1 || stats.FailedRequests != 1 {
		t.Errorf("Expected 1 success and 1 failure, got %+v", stats)
	}
	if got := stats.RequestHistory[1].Operation; got != "count_tokens_batch" {
		t.Errorf("Expected operation to be recorded, got %q", got)
	}
}

func TestGetPeriodStats(t *testing.T) {
	now := time.Now()
	history := []core.RequestRecord{
		{Timestamp: now.Add(-30 * time.Minute), Success: true, ResponseTime: 100},
		{Timestamp: now.Add(-2 * time.Hour), Success: false, ResponseTime: 300},
		{Timestamp: now.Add(-48 * time.Hour), Success: true, ResponseTime: 50},
	}

	periods := GetPeriodStats(history, 1, 24, 24*7)

	if periods[1].Requests != 1 || periods[1].SuccessRate != 100 {
		t.Errorf("Unexpected 1h stats: %+v", periods[1])
	}
	if periods[24].Requests != 2 || periods[24].AvgResponseTime != 200 || periods[24].SuccessRate != 50 {
		t.Errorf("Unexpected 24h stats: %+v", periods[24])
	}
	if periods[24*7].Requests != 3 {
		t.Errorf("Unexpected 7d stats: %+v", periods[24*7])
	}
	if GetPeriodStats(history) != nil {
		t.Error("Expected nil for no periods")
	}
}

func TestVendorBreakdown(t *testing.T) {
	history := []core.RequestRecord{
		{Vendor: core.VendorAnthropic},
		{Vendor: core.VendorAnthropic},
		{Vendor: ""},
	}
	counts := VendorBreakdown(history)
	if counts[core.VendorAnthropic] != 2 {
		t.Errorf("Expected 2 anthropic records, got %d", counts[core.VendorAnthropic])
	}
	if count, ok := counts[core.VendorGoogle]; !ok || count != 0 {
		t.Errorf("Expected google to be reported with 0, got %d (present=%v)", count, ok)
	}
}

func TestMetricsService_Close_Idempotent(t *testing.T) {
	st := &countingStorage{}
	ms := newTestService(10, st)

	ms.RecordRequest(core.RequestRecord{Success: true, ResponseTime: 10})

	if err := ms.Close(); err != nil {
		t.Fatalf("first Close should not fail: %v", err)
	}
	firstCloseSaves := st.getSaveCount()
	if firstCloseSaves == 0 {
		t.Fatal("first Close should persist at least once")
	}

	if err := ms.Close(); err != nil {
		t.Fatalf("second Close should not fail: %v", err)
	}
	if st.getSaveCount() != firstCloseSaves {
		t.Fatalf("second Close should not persist again, first=%d, after second=%d", firstCloseSaves, st.getSaveCount())
	}
}

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if labelsMatch(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if pair.GetValue() != want {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}

func TestPrometheusCollector(t *testing.T) {
	collector := NewPrometheusCollector()
	okLabels := map[string]string{"vendor": "google", "operation": "count_tokens", "status": "ok"}
	errLabels := map[string]string{"vendor": "google", "operation": "count_tokens", "status": "error"}
	tokenLabels := map[string]string{"vendor": "google", "model": "models/gemini-test"}

	okBefore := counterValue(t, "tokencounter_upstream_calls_total", okLabels)
	errBefore := counterValue(t, "tokencounter_upstream_calls_total", errLabels)
	tokensBefore := counterValue(t, "tokencounter_tokens_counted_total", tokenLabels)

	collector.RecordUpstreamCall("google", "count_tokens", 20*time.Millisecond, nil)
	collector.RecordUpstreamCall("google", "count_tokens", 20*time.Millisecond, errors.New("boom"))
	collector.RecordTokens("google", "models/gemini-test", 12)
	collector.RecordTokens("google", "models/gemini-test", 0)

	if got := counterValue(t, "tokencounter_upstream_calls_total", okLabels) - okBefore; got != 1 {
		t.Errorf("expected 1 ok call, got %v", got)
	}
	if got := counterValue(t, "tokencounter_upstream_calls_total", errLabels) - errBefore; got != 1 {
		t.Errorf("expected 1 failed call, got %v", got)
	}
	if got := counterValue(t, "tokencounter_tokens_counted_total", tokenLabels) - tokensBefore; got != 12 {
		t.Errorf("expected 12 tokens, got %v", got)
	}
}
