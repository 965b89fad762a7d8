package usecase

import (
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/logger"
)

// Snapshot sampling. Each function is an independently-isolated unit of
// work driven by its own ticker: a missing provider is a silent no-op, a
// failing provider costs one error count and nothing else. A sampler never
// lets a collaborator's failure reach the timer driver.

func (t *Telemetry) samplePnl() {
	t.mu.Lock()
	provider := t.risk
	t.mu.Unlock()
	if provider == nil {
		return
	}

	start := time.Now()
	status, err := provider.RiskStatus()
	if err != nil {
		t.addError("datasource")
		t.log.Warn("pnl sample failed", logger.Error(err))
		return
	}

	snap := models.PnLSnapshot{
		Time:           t.nowFn(),
		Drawdown:       status.Drawdown,
		RiskLevel:      status.RiskLevel,
		TradingAllowed: status.TradingAllowed,
		Accounts:       status.Accounts,
	}
	fields := map[string]any{
		"drawdown":        snap.Drawdown,
		"risk_level":      snap.RiskLevel,
		"trading_allowed": snap.TradingAllowed,
	}
	if len(snap.Accounts) > 0 {
		fields["accounts"] = snap.Accounts
	}
	if !t.write(models.CategoryPnl, "info", fields) {
		return
	}

	t.metrics.RecordDrawdown(snap.Drawdown)
	for _, a := range snap.Accounts {
		t.metrics.RecordEquity(a.Account, a.Equity)
	}
	t.metrics.RecordSampleDuration("pnl", time.Since(start).Seconds())
	t.emit(models.EventPnlLogged, snap)
}

func (t *Telemetry) samplePosition() {
	t.mu.Lock()
	provider := t.position
	t.mu.Unlock()
	if provider == nil {
		return
	}

	start := time.Now()
	positions, err := provider.ActivePositions()
	if err != nil {
		t.addError("datasource")
		t.log.Warn("position sample failed", logger.Error(err))
		return
	}

	fields := map[string]any{
		"count":     len(positions),
		"positions": positions,
	}
	if !t.write(models.CategoryPosition, "info", fields) {
		return
	}
	t.metrics.RecordSampleDuration("position", time.Since(start).Seconds())
}

func (t *Telemetry) sampleBalance() {
	t.mu.Lock()
	provider := t.account
	t.mu.Unlock()
	if provider == nil {
		return
	}

	start := time.Now()
	balances, err := provider.Balances()
	if err != nil {
		t.addError("datasource")
		t.log.Warn("balance sample failed", logger.Error(err))
		return
	}

	fields := map[string]any{
		"count":    len(balances),
		"balances": balances,
	}
	if !t.write(models.CategoryBalance, "info", fields) {
		return
	}
	for _, b := range balances {
		t.metrics.RecordEquity(b.Exchange, b.Equity)
	}
	t.metrics.RecordSampleDuration("balance", time.Since(start).Seconds())
}
