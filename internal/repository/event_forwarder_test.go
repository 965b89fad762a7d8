package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/service/events"
	"TradePulse/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordEntry(string)                  {}
func (nopMetrics) RecordError(string)                  {}
func (nopMetrics) RecordEquity(string, float64)        {}
func (nopMetrics) RecordDrawdown(float64)              {}
func (nopMetrics) RecordSampleDuration(string, float64) {}

type capturePublisher struct {
	mu     sync.Mutex
	got    []models.Event
	notify chan struct{}
	err    error
	closed bool
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{notify: make(chan struct{}, 16)}
}

func (p *capturePublisher) PublishEvent(_ context.Context, ev models.Event) error {
	p.mu.Lock()
	p.got = append(p.got, ev)
	p.mu.Unlock()
	p.notify <- struct{}{}
	return p.err
}

func (p *capturePublisher) Close() error {
	p.closed = true
	return nil
}

func (p *capturePublisher) wait(t *testing.T, n int) []models.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-p.notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %d deliveries", n)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Event, len(p.got))
	copy(out, p.got)
	return out
}

func TestForwarderDeliversBusEvents(t *testing.T) {
	bus := events.NewBus()
	pub := newCapturePublisher()
	f := NewEventForwarder([]drepo.EventPublisher{pub}, logger.Nop(), nopMetrics{})
	f.Attach(bus)
	defer f.Close()

	bus.Publish(models.Event{Name: models.EventTradeLogged, Payload: models.TradeLog{Symbol: "BTCUSDT"}})
	bus.Publish(models.Event{Name: models.EventRiskEventLogged})

	got := pub.wait(t, 2)
	if got[0].Name != models.EventTradeLogged || got[1].Name != models.EventRiskEventLogged {
		t.Fatalf("unexpected delivery order %v", got)
	}
}

func TestForwarderSurvivesPublisherError(t *testing.T) {
	bus := events.NewBus()
	pub := newCapturePublisher()
	pub.err = errors.New("broker down")
	f := NewEventForwarder([]drepo.EventPublisher{pub}, logger.Nop(), nopMetrics{})
	f.Attach(bus)
	defer f.Close()

	bus.Publish(models.Event{Name: models.EventStarted})
	bus.Publish(models.Event{Name: models.EventStopped})

	got := pub.wait(t, 2)
	if len(got) != 2 {
		t.Fatalf("expected forwarding to continue after error, got %d", len(got))
	}
}

func TestForwarderCloseClosesPublishers(t *testing.T) {
	bus := events.NewBus()
	pub := newCapturePublisher()
	f := NewEventForwarder([]drepo.EventPublisher{pub}, logger.Nop(), nopMetrics{})
	f.Attach(bus)

	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !pub.closed {
		t.Fatalf("expected publisher closed")
	}
}
