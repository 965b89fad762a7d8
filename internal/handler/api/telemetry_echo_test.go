package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/repository"
	"TradePulse/internal/service/events"
	"TradePulse/internal/usecase"
	"TradePulse/pkg/config"
	"TradePulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

type nopMetrics struct{}

func (nopMetrics) RecordEntry(string)                   {}
func (nopMetrics) RecordError(string)                   {}
func (nopMetrics) RecordEquity(string, float64)         {}
func (nopMetrics) RecordDrawdown(float64)               {}
func (nopMetrics) RecordSampleDuration(string, float64) {}

func newTestHandler(t *testing.T) (*TelemetryEchoHandler, *usecase.Telemetry, *echo.Echo) {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	tc := cfg.Telemetry
	tc.LogDir = t.TempDir()

	w := repository.NewFileChannelWriter(tc.LogDir, map[models.Category]string{
		models.CategoryPnl:      tc.Dirs.Pnl,
		models.CategoryTrade:    tc.Dirs.Trade,
		models.CategoryPosition: tc.Dirs.Position,
		models.CategoryBalance:  tc.Dirs.Balance,
		models.CategoryRisk:     tc.Dirs.Risk,
		models.CategorySystem:   tc.Dirs.System,
		models.CategoryMetric:   tc.Dirs.Metric,
	})
	bus := events.NewBus()
	now := func() time.Time { return time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC) }
	tel := usecase.NewTelemetry(tc, w, bus, nopMetrics{}, logger.Nop(), usecase.WithClock(now))
	t.Cleanup(func() { _ = tel.Close() })

	h := NewTelemetryEchoHandler(logger.Nop(), tel, bus)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, tel, e
}

func TestStatsEndpoint(t *testing.T) {
	_, tel, e := newTestHandler(t)
	tel.LogSystem("info", "boot", nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data models.Stats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.SystemLogsCount != 1 {
		t.Fatalf("system_logs_count = %d, want 1", body.Data.SystemLogsCount)
	}
	if body.Data.RotationDate != "2025-03-10" {
		t.Fatalf("rotation_date = %q", body.Data.RotationDate)
	}
}

func TestLogFilesEndpoint(t *testing.T) {
	_, _, e := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/logfiles", nil)
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != len(models.Categories()) {
		t.Fatalf("paths = %d, want %d", len(body.Data), len(models.Categories()))
	}
	if !strings.Contains(body.Data["trade"], "trade-2025-03-10.log") {
		t.Fatalf("trade path = %q", body.Data["trade"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, tel, e := newTestHandler(t)
	tel.Start()
	defer tel.Stop()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestIngestMetricsEndpoint(t *testing.T) {
	_, tel, e := newTestHandler(t)

	payload := `{"samples":[{"name":"equity","value":101.5},{"name":"drawdown","value":0.02}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/metrics", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := tel.GetStats().MetricLogsCount; got != 2 {
		t.Fatalf("metric_logs_count = %d, want 2", got)
	}
}

func TestIngestMetricsRejectsEmptyBatch(t *testing.T) {
	_, tel, e := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/metrics", strings.NewReader(`{"samples":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	e.ServeHTTP(rec, req)

	// The envelope carries the logical status; transport status stays 200.
	if !strings.Contains(rec.Body.String(), `"status":400`) {
		t.Fatalf("body = %s, want status 400 envelope", rec.Body.String())
	}
	if got := tel.GetStats().MetricLogsCount; got != 0 {
		t.Fatalf("metric_logs_count = %d, want 0", got)
	}
}
