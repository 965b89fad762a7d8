package usecase

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
)

func TestLogMetricsEnabled(t *testing.T) {
	tel, _ := newTestTelemetry(t, testConfig(t), func() time.Time { return testDay })

	tel.LogMetrics([]models.MetricSample{
		{Name: "equity", Value: 10000},
		{Name: "drawdown", Value: 0.05},
		{Name: "pnl", Value: 100},
	})

	path := tel.GetLogFilePaths()[models.CategoryMetric]
	if n := countLines(t, path); n != 3 {
		t.Fatalf("expected 3 metric entries, got %d", n)
	}
	if st := tel.GetStats(); st.MetricLogsCount != 3 {
		t.Fatalf("expected metricLogsCount=3, got %d", st.MetricLogsCount)
	}

	// input order is preserved
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	for i, want := range []string{"equity", "drawdown", "pnl"} {
		var rec map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &rec); err != nil {
			t.Fatalf("line %d not json: %v", i, err)
		}
		if rec["name"] != want {
			t.Fatalf("line %d: expected %s, got %v", i, want, rec["name"])
		}
	}
}

func TestLogMetricsDisabledIsCompleteNoop(t *testing.T) {
	tc := testConfig(t)
	tc.MetricMode = false
	tel, _ := newTestTelemetry(t, tc, func() time.Time { return testDay })

	tel.LogMetrics([]models.MetricSample{
		{Name: "equity", Value: 10000},
		{Name: "drawdown", Value: 0.05},
		{Name: "pnl", Value: 100},
	})

	path := tel.GetLogFilePaths()[models.CategoryMetric]
	if n := countLines(t, path); n != 0 {
		t.Fatalf("expected no metric entries, got %d", n)
	}
	st := tel.GetStats()
	if st.MetricLogsCount != 0 || st.ErrorsCount != 0 {
		t.Fatalf("expected silent skip, got %+v", st)
	}
}

func TestLogTradeFillsIDAndEmits(t *testing.T) {
	tel, bus := newTestTelemetry(t, testConfig(t), func() time.Time { return testDay })
	var payloads []models.TradeLog
	bus.SubscribeNamed(models.EventTradeLogged, func(ev models.Event) {
		tr, ok := ev.Payload.(models.TradeLog)
		if !ok {
			t.Fatalf("unexpected payload type %T", ev.Payload)
		}
		payloads = append(payloads, tr)
	})

	tel.LogTrade(models.TradeLog{Symbol: "BTCUSDT", Side: "sell", Amount: 1, Price: 49000, Venue: "bybit"})

	if len(payloads) != 1 {
		t.Fatalf("expected 1 tradeLogged event, got %d", len(payloads))
	}
	if payloads[0].ID == "" {
		t.Fatalf("expected generated trade id")
	}
}

func TestLogOrderRecordsUnderTradeCategory(t *testing.T) {
	tel, _ := newTestTelemetry(t, testConfig(t), func() time.Time { return testDay })

	tel.LogOrder("cancelled", models.OrderLog{Symbol: "ETHUSDT", Side: "buy", Amount: 3, Price: 2900})

	st := tel.GetStats()
	if st.TradeLogsCount != 1 {
		t.Fatalf("expected tradeLogsCount=1, got %d", st.TradeLogsCount)
	}

	b, err := os.ReadFile(tel.GetLogFilePaths()[models.CategoryTrade])
	if err != nil {
		t.Fatalf("read trade log: %v", err)
	}
	if !strings.Contains(string(b), `"action":"cancelled"`) {
		t.Fatalf("missing action tag in %s", b)
	}
}

func TestLogSystemSeverities(t *testing.T) {
	tel, _ := newTestTelemetry(t, testConfig(t), func() time.Time { return testDay })

	for _, lvl := range []string{"trace", "debug", "info", "warn", "error", "fatal"} {
		tel.LogSystem(lvl, "probe", map[string]any{"component": "engine"})
	}
	// unknown severity is normalized, not dropped
	tel.LogSystem("shout", "probe", nil)

	st := tel.GetStats()
	if st.SystemLogsCount != 7 {
		t.Fatalf("expected systemLogsCount=7, got %d", st.SystemLogsCount)
	}

	b, err := os.ReadFile(tel.GetLogFilePaths()[models.CategorySystem])
	if err != nil {
		t.Fatalf("read system log: %v", err)
	}
	s := string(b)
	for _, lvl := range []string{"trace", "debug", "warn", "error", "fatal"} {
		if !strings.Contains(s, `"level":"`+lvl+`"`) {
			t.Fatalf("expected a %s entry", lvl)
		}
	}
}

func TestLogRiskEventWarnsAndEmits(t *testing.T) {
	tel, bus := newTestTelemetry(t, testConfig(t), func() time.Time { return testDay })
	emitted := 0
	bus.SubscribeNamed(models.EventRiskEventLogged, func(models.Event) { emitted++ })

	tel.LogRiskEvent("max_drawdown", "drawdown 12% exceeds 10% limit")

	if st := tel.GetStats(); st.RiskLogsCount != 1 {
		t.Fatalf("expected riskLogsCount=1, got %d", st.RiskLogsCount)
	}
	if emitted != 1 {
		t.Fatalf("expected riskEventLogged event")
	}
	b, err := os.ReadFile(tel.GetLogFilePaths()[models.CategoryRisk])
	if err != nil {
		t.Fatalf("read risk log: %v", err)
	}
	if !strings.Contains(string(b), `"level":"warn"`) {
		t.Fatalf("expected warn severity, got %s", b)
	}
}

func TestLogPnLDirect(t *testing.T) {
	tel, bus := newTestTelemetry(t, testConfig(t), func() time.Time { return testDay })
	emitted := 0
	bus.SubscribeNamed(models.EventPnlLogged, func(models.Event) { emitted++ })

	tel.LogPnL(models.PnLSnapshot{Drawdown: 0.02, RiskLevel: "low", TradingAllowed: true})

	if st := tel.GetStats(); st.PnlLogsCount != 1 {
		t.Fatalf("expected pnlLogsCount=1, got %d", st.PnlLogsCount)
	}
	if emitted != 1 {
		t.Fatalf("expected pnlLogged event")
	}
}
