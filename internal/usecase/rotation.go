package usecase

import (
	"TradePulse/pkg/logger"
	"TradePulse/pkg/util"
)

// checkRotation compares today against the stored rotation date on each
// rotation tick. Equal dates are a no-op. A stale date advances to today
// when date rotation is enabled, which repoints every subsequent write at
// the new day files, and then triggers the retention purge. With rotation
// disabled the stored date never changes.
func (t *Telemetry) checkRotation() {
	t.mu.Lock()
	today := util.Day(t.nowFn())
	if !t.cfg.DateRotation || today.Equal(t.rotation) {
		t.mu.Unlock()
		return
	}
	old := t.rotation
	t.rotation = today
	t.mu.Unlock()

	t.log.Info("log rotation",
		logger.String("from", util.FormatDay(old)),
		logger.String("to", util.FormatDay(today)))

	// RetentionDays == 0 means never purge.
	if t.cfg.RetentionDays <= 0 {
		return
	}
	cutoff := t.nowFn().AddDate(0, 0, -t.cfg.RetentionDays)
	removed, err := t.writer.Purge(cutoff)
	if err != nil {
		t.addError("purge")
		t.log.Warn("retention purge failed", logger.Error(err))
	}
	if removed > 0 {
		t.log.Info("retention purge", logger.Int("removed", removed),
			logger.Int("retention_days", t.cfg.RetentionDays))
	}
}
