package usecase

import (
	"github.com/google/uuid"

	"TradePulse/internal/domain/models"
)

// systemLevels are the only severities LogSystem accepts. Anything else is
// normalized to info.
var systemLevels = map[string]bool{
	"trace": true, "debug": true, "info": true,
	"warn": true, "error": true, "fatal": true,
}

// LogPnL records an immediate pnl entry outside the sampling cadence.
// No data source is required.
func (t *Telemetry) LogPnL(snap models.PnLSnapshot) {
	if snap.Time.IsZero() {
		snap.Time = t.nowFn()
	}
	fields := map[string]any{
		"drawdown":        snap.Drawdown,
		"risk_level":      snap.RiskLevel,
		"trading_allowed": snap.TradingAllowed,
	}
	if len(snap.Accounts) > 0 {
		fields["accounts"] = snap.Accounts
	}
	if t.write(models.CategoryPnl, "info", fields) {
		t.emit(models.EventPnlLogged, snap)
	}
}

// LogTrade records a trade fill. A missing id is filled with a uuid so the
// audit trail stays joinable with the archive.
func (t *Telemetry) LogTrade(trade models.TradeLog) {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	fields := map[string]any{
		"id":     trade.ID,
		"symbol": trade.Symbol,
		"side":   trade.Side,
		"amount": trade.Amount,
		"price":  trade.Price,
		"fee":    trade.Fee,
		"venue":  trade.Venue,
	}
	if t.write(models.CategoryTrade, "info", fields) {
		t.emit(models.EventTradeLogged, trade)
	}
}

// LogOrder records an order lifecycle event (created, filled, cancelled, ...)
// under the trade category, tagged with the action.
func (t *Telemetry) LogOrder(action string, order models.OrderLog) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	fields := map[string]any{
		"action": action,
		"id":     order.ID,
		"symbol": order.Symbol,
		"side":   order.Side,
		"amount": order.Amount,
		"price":  order.Price,
	}
	if order.Type != "" {
		fields["type"] = order.Type
	}
	if order.Venue != "" {
		fields["venue"] = order.Venue
	}
	t.write(models.CategoryTrade, "info", fields)
}

// LogSystem records a system-category entry at the given severity.
// Supported severities: trace, debug, info, warn, error, fatal. The fatal
// severity is a log level only and never terminates the process.
func (t *Telemetry) LogSystem(level, message string, meta map[string]any) {
	if !systemLevels[level] {
		level = "info"
	}
	fields := map[string]any{"message": message}
	for k, v := range meta {
		fields[k] = v
	}
	t.write(models.CategorySystem, level, fields)
}

// LogRiskEvent records a risk-category entry at warning severity.
func (t *Telemetry) LogRiskEvent(kind, detail string) {
	fields := map[string]any{"kind": kind, "detail": detail}
	if t.write(models.CategoryRisk, "warn", fields) {
		t.emit(models.EventRiskEventLogged, map[string]string{
			"kind": kind, "detail": detail,
		})
	}
}

// LogMetric records one named-value sample on the metric channel. A complete
// no-op, counters included, when metric mode is disabled: dashboards infer
// configuration state from the absence of entries.
func (t *Telemetry) LogMetric(name string, value float64, tags map[string]string) {
	if !t.cfg.MetricMode {
		return
	}
	fields := map[string]any{"name": name, "value": value}
	if len(tags) > 0 {
		fields["tags"] = tags
	}
	t.write(models.CategoryMetric, "info", fields)
}

// LogMetrics records each sample as an independent metric entry, preserving
// input order. Equivalent to calling LogMetric once per element.
func (t *Telemetry) LogMetrics(samples []models.MetricSample) {
	for _, s := range samples {
		t.LogMetric(s.Name, s.Value, s.Tags)
	}
}
