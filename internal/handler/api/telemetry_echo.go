package api

import (
	"net/http"
	"time"

	models "TradePulse/internal/domain/models"
	"TradePulse/internal/service/events"
	"TradePulse/internal/usecase"
	xhttp "TradePulse/pkg/http"
	xlogger "TradePulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// TelemetryEchoHandler exposes the pipeline's operational surface over
// Echo: counters, resolved file paths, health, metric ingest and a
// websocket stream of completion events.
type TelemetryEchoHandler struct {
	logger   *xlogger.Logger
	tel      *usecase.Telemetry
	bus      *events.Bus
	upgrader websocket.Upgrader
}

func NewTelemetryEchoHandler(logger *xlogger.Logger, tel *usecase.Telemetry, bus *events.Bus) *TelemetryEchoHandler {
	return &TelemetryEchoHandler{
		logger: logger,
		tel:    tel,
		bus:    bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *TelemetryEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/stats", h.Stats)
	g.GET("/logfiles", h.LogFiles)
	g.GET("/health", h.Health)
	g.POST("/metrics", h.IngestMetrics)

	e.GET("/ws/events", h.StreamEvents)
}

func (h *TelemetryEchoHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.tel.GetStats())
}

func (h *TelemetryEchoHandler) LogFiles(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.tel.GetLogFilePaths())
}

func (h *TelemetryEchoHandler) Health(c echo.Context) error {
	status := "degraded"
	if h.tel.Running() {
		status = "ok"
	}
	return xhttp.SuccessResponse(c, map[string]any{
		"status":  status,
		"running": h.tel.Running(),
		"time":    time.Now().UTC(),
	})
}

// IngestMetricsRequest carries a batch of dashboard metric samples.
type IngestMetricsRequest struct {
	Samples []models.MetricSample `json:"samples" validate:"required,min=1,dive"`
}

func (h *TelemetryEchoHandler) IngestMetrics(c echo.Context) error {
	req := &IngestMetricsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	h.tel.LogMetrics(req.Samples)
	return xhttp.SuccessResponse(c, map[string]any{"accepted": len(req.Samples)})
}

// StreamEvents upgrades to a websocket and forwards every bus event to
// the client as JSON. A slow client drops events rather than stalling
// the publisher.
func (h *TelemetryEchoHandler) StreamEvents(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", xlogger.Error(err))
		return err
	}

	send := make(chan models.Event, 64)
	id := h.bus.Subscribe(func(ev models.Event) {
		select {
		case send <- ev:
		default:
		}
	})

	done := make(chan struct{})

	// Reader goroutine: the client never sends data, but reading is
	// needed to observe close frames.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.bus.Unsubscribe(id)
		_ = conn.Close()
	}()

	for {
		select {
		case ev := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}
