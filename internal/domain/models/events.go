package models

import "time"

// Event names published on the bus.
const (
	EventStarted         = "started"
	EventStopped         = "stopped"
	EventPnlLogged       = "pnlLogged"
	EventTradeLogged     = "tradeLogged"
	EventRiskEventLogged = "riskEventLogged"
)

// Event is one item on the completion-event stream. Payload carries the
// recorded value (PnLSnapshot, TradeLog, ...) for the named event.
type Event struct {
	Name    string    `json:"name"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}
