package models

import "time"

// Category identifies a logical telemetry log channel. Each category owns
// its own directory, day files and counter.
type Category string

const (
	CategoryPnl      Category = "pnl"
	CategoryTrade    Category = "trade"
	CategoryPosition Category = "position"
	CategoryBalance  Category = "balance"
	CategoryRisk     Category = "risk"
	CategorySystem   Category = "system"
	CategoryMetric   Category = "metric"
)

// Categories lists every channel in a stable order.
func Categories() []Category {
	return []Category{
		CategoryPnl,
		CategoryTrade,
		CategoryPosition,
		CategoryBalance,
		CategoryRisk,
		CategorySystem,
		CategoryMetric,
	}
}

// AccountEquity is one per-account equity figure inside a pnl snapshot.
type AccountEquity struct {
	Account string  `json:"account"`
	Equity  float64 `json:"equity"`
}

// RiskStatus is the state a risk-status provider reports on each pnl tick.
type RiskStatus struct {
	Drawdown       float64         `json:"drawdown"`
	RiskLevel      string          `json:"risk_level"`
	TradingAllowed bool            `json:"trading_allowed"`
	Accounts       []AccountEquity `json:"accounts"`
}

// PnLSnapshot is a sampled pnl record, either timer-driven or recorded
// directly by a caller.
type PnLSnapshot struct {
	Time           time.Time       `json:"time"`
	Drawdown       float64         `json:"drawdown"`
	RiskLevel      string          `json:"risk_level"`
	TradingAllowed bool            `json:"trading_allowed"`
	Accounts       []AccountEquity `json:"accounts,omitempty"`
}

// Position is one active position as reported by a position provider.
type Position struct {
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Size       float64 `json:"size"`
	EntryPrice float64 `json:"entry_price"`
}

// ExchangeBalance is per-exchange equity and used margin.
type ExchangeBalance struct {
	Exchange   string  `json:"exchange"`
	Equity     float64 `json:"equity"`
	UsedMargin float64 `json:"used_margin"`
}

// TradeLog is a single trade fill record.
type TradeLog struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Amount float64 `json:"amount"`
	Price  float64 `json:"price"`
	Fee    float64 `json:"fee"`
	Venue  string  `json:"venue"`
}

// OrderLog is an order lifecycle record tagged with an action
// (created, filled, cancelled, ...).
type OrderLog struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Type   string  `json:"type,omitempty"`
	Amount float64 `json:"amount"`
	Price  float64 `json:"price"`
	Venue  string  `json:"venue,omitempty"`
}

// MetricSample is one named-value sample for the dashboard-compatible
// metric channel.
type MetricSample struct {
	Name  string            `json:"name" validate:"required"`
	Value float64           `json:"value"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// Stats is a point-in-time snapshot of the pipeline's operational counters.
type Stats struct {
	PnlLogsCount      uint64 `json:"pnl_logs_count"`
	TradeLogsCount    uint64 `json:"trade_logs_count"`
	PositionLogsCount uint64 `json:"position_logs_count"`
	BalanceLogsCount  uint64 `json:"balance_logs_count"`
	RiskLogsCount     uint64 `json:"risk_logs_count"`
	SystemLogsCount   uint64 `json:"system_logs_count"`
	MetricLogsCount   uint64 `json:"metric_logs_count"`
	ErrorsCount       uint64 `json:"errors_count"`
	Running           bool   `json:"running"`
	RotationDate      string `json:"rotation_date"`
}

// Entry is one structured line bound for a channel file (and, when enabled,
// the analytical archive).
type Entry struct {
	Time     time.Time      `json:"time"`
	Level    string         `json:"level"`
	Category Category       `json:"category"`
	Fields   map[string]any `json:"fields,omitempty"`
}
