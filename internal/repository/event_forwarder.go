package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/service/events"
	pkgkafka "TradePulse/pkg/kafka"
	"TradePulse/pkg/logger"
	pkgredis "TradePulse/pkg/redis"
)

// EventForwarder pumps bus events to external publishers (Kafka, Redis)
// through a buffered channel so bus delivery never blocks on network I/O.
type EventForwarder struct {
	pubs    []drepo.EventPublisher
	log     *logger.Logger
	metrics drepo.Metrics

	ch    chan models.Event
	done  chan struct{}
	wg    sync.WaitGroup
	subID int
}

// NewEventForwarder creates a forwarder over the given publishers.
func NewEventForwarder(pubs []drepo.EventPublisher, log *logger.Logger, metrics drepo.Metrics) *EventForwarder {
	return &EventForwarder{
		pubs:    pubs,
		log:     log,
		metrics: metrics,
		ch:      make(chan models.Event, 256),
		done:    make(chan struct{}),
	}
}

// Attach subscribes to the bus and starts the pump goroutine.
func (f *EventForwarder) Attach(bus *events.Bus) {
	f.subID = bus.Subscribe(func(ev models.Event) {
		select {
		case f.ch <- ev:
		default:
			f.metrics.RecordError("forward_backpressure")
		}
	})
	f.wg.Add(1)
	go f.pump()
}

func (f *EventForwarder) pump() {
	defer f.wg.Done()
	for {
		select {
		case ev := <-f.ch:
			f.deliver(ev)
		case <-f.done:
			return
		}
	}
}

func (f *EventForwarder) deliver(ev models.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, p := range f.pubs {
		if err := p.PublishEvent(ctx, ev); err != nil {
			f.metrics.RecordError("forward")
			f.log.Warn("event forward failed",
				logger.String("event", ev.Name), logger.Error(err))
		}
	}
}

// Close stops the pump and closes the publishers.
func (f *EventForwarder) Close() error {
	close(f.done)
	f.wg.Wait()
	for _, p := range f.pubs {
		_ = p.Close()
	}
	return nil
}

// KafkaEventPublisher publishes bus events to a Kafka topic keyed by name.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates a Kafka-backed event publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, ev models.Event) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Name), ev)
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// RedisEventPublisher publishes bus events to a Redis pub/sub channel.
type RedisEventPublisher struct {
	client  *pkgredis.Client
	channel string
}

// NewRedisEventPublisher creates a Redis-backed event publisher.
func NewRedisEventPublisher(client *pkgredis.Client, channel string) *RedisEventPublisher {
	return &RedisEventPublisher{client: client, channel: channel}
}

func (p *RedisEventPublisher) PublishEvent(ctx context.Context, ev models.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, b)
}

func (p *RedisEventPublisher) Close() error {
	return p.client.Close()
}
