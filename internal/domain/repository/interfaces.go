package repository

import (
	"context"

	"TradePulse/internal/domain/models"
)

// RiskStatusProvider is the capability a risk manager exposes to the pnl
// sampler. A nil reference means "not attached" and the tick is a no-op.
type RiskStatusProvider interface {
	RiskStatus() (models.RiskStatus, error)
}

// PositionProvider exposes the list of currently open positions.
type PositionProvider interface {
	ActivePositions() ([]models.Position, error)
}

// AccountProvider exposes per-exchange equity and used margin.
type AccountProvider interface {
	Balances() ([]models.ExchangeBalance, error)
}

// DataSources is a partial set of provider references. Nil fields are left
// untouched when merged into the live set.
type DataSources struct {
	Risk     RiskStatusProvider
	Position PositionProvider
	Account  AccountProvider
}

// Archiver is a secondary sink for telemetry entries (analytical store).
// Implementations must not block the recording path beyond a buffered handoff.
type Archiver interface {
	Archive(e models.Entry)
	Flush(ctx context.Context) error
	Close() error
}

// EventPublisher forwards bus events to an external transport.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev models.Event) error
	Close() error
}

// Metrics mirrors operational counters into the metrics backend.
type Metrics interface {
	RecordEntry(category string)
	RecordError(kind string)
	RecordEquity(account string, equity float64)
	RecordDrawdown(dd float64)
	RecordSampleDuration(category string, seconds float64)
}
