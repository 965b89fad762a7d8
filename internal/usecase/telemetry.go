package usecase

import (
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/repository"
	"TradePulse/internal/service/events"
	"TradePulse/pkg/config"
	"TradePulse/pkg/logger"
	"TradePulse/pkg/util"
)

// Telemetry is the sampling/recording/rotation core. It owns the periodic
// samplers, the synchronous recording API, the rotation date and the
// operational counters. Data-source references are held but never owned:
// callers attach and detach them at will.
//
// All shared mutable state (counters, rotation date, tickers, provider
// references) sits behind a single mutex; independently firing tickers and
// caller-invoked recording calls interleave on it safely.
type Telemetry struct {
	cfg      config.TelemetryConfig
	writer   *repository.FileChannelWriter
	bus      *events.Bus
	metrics  drepo.Metrics
	log      *logger.Logger
	archiver drepo.Archiver

	mu       sync.Mutex
	running  bool
	rotation time.Time // day-truncated
	risk     drepo.RiskStatusProvider
	position drepo.PositionProvider
	account  drepo.AccountProvider
	counters map[models.Category]uint64
	errors   uint64
	tickers  map[string]*time.Ticker
	stopCh   chan struct{}
	wg       sync.WaitGroup

	nowFn func() time.Time
}

// Option configures Telemetry.
type Option func(*Telemetry)

// WithClock overrides the time source. Used in tests.
func WithClock(fn func() time.Time) Option {
	return func(t *Telemetry) { t.nowFn = fn }
}

// WithArchiver attaches an optional secondary entry sink.
func WithArchiver(a drepo.Archiver) Option {
	return func(t *Telemetry) { t.archiver = a }
}

// NewTelemetry creates the core. Channel files are created lazily on first
// write; tickers are created in Start.
func NewTelemetry(
	cfg config.TelemetryConfig,
	writer *repository.FileChannelWriter,
	bus *events.Bus,
	metrics drepo.Metrics,
	log *logger.Logger,
	opts ...Option,
) *Telemetry {
	t := &Telemetry{
		cfg:      cfg,
		writer:   writer,
		bus:      bus,
		metrics:  metrics,
		log:      log,
		counters: make(map[models.Category]uint64),
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.rotation = util.Day(t.nowFn())
	return t
}

// Start creates the four timers (pnl, position, balance, rotation check) and
// emits "started". No-op when already running.
func (t *Telemetry) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.stopCh = make(chan struct{})
	t.tickers = map[string]*time.Ticker{}
	t.spawn("pnl", t.cfg.PnlIntervalMS, t.samplePnl)
	t.spawn("position", t.cfg.PositionIntervalMS, t.samplePosition)
	t.spawn("balance", t.cfg.BalanceIntervalMS, t.sampleBalance)
	t.spawn("rotation", t.cfg.RotationCheckMS, t.checkRotation)
	t.running = true
	t.mu.Unlock()

	t.log.Info("telemetry started",
		logger.Int("pnl_interval_ms", t.cfg.PnlIntervalMS),
		logger.Int("position_interval_ms", t.cfg.PositionIntervalMS),
		logger.Int("balance_interval_ms", t.cfg.BalanceIntervalMS))
	t.emit(models.EventStarted, nil)
}

// spawn creates one ticker plus its driving goroutine. Caller holds t.mu.
func (t *Telemetry) spawn(name string, intervalMS int, fn func()) {
	tk := time.NewTicker(time.Duration(intervalMS) * time.Millisecond)
	t.tickers[name] = tk
	stop := t.stopCh
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for {
			select {
			case <-stop:
				return
			case <-tk.C:
				fn()
			}
		}
	}()
}

// Stop clears every timer, emits "stopped" and waits for in-flight ticks to
// drain. Idempotent; safe without a prior Start.
func (t *Telemetry) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	close(t.stopCh)
	for _, tk := range t.tickers {
		tk.Stop()
	}
	t.tickers = nil
	t.stopCh = nil
	t.running = false
	t.mu.Unlock()

	t.wg.Wait()
	t.log.Info("telemetry stopped")
	t.emit(models.EventStopped, nil)
}

// SetDataSources merges any non-nil provider references into the live set.
// Safe before or after Start; takes effect on the next sampling tick.
func (t *Telemetry) SetDataSources(src drepo.DataSources) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if src.Risk != nil {
		t.risk = src.Risk
	}
	if src.Position != nil {
		t.position = src.Position
	}
	if src.Account != nil {
		t.account = src.Account
	}
}

// GetStats returns a read-only snapshot of the operational counters, the
// running flag and the current rotation date.
func (t *Telemetry) GetStats() models.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.Stats{
		PnlLogsCount:      t.counters[models.CategoryPnl],
		TradeLogsCount:    t.counters[models.CategoryTrade],
		PositionLogsCount: t.counters[models.CategoryPosition],
		BalanceLogsCount:  t.counters[models.CategoryBalance],
		RiskLogsCount:     t.counters[models.CategoryRisk],
		SystemLogsCount:   t.counters[models.CategorySystem],
		MetricLogsCount:   t.counters[models.CategoryMetric],
		ErrorsCount:       t.errors,
		Running:           t.running,
		RotationDate:      util.FormatDay(t.rotation),
	}
}

// GetLogFilePaths returns the active file path per category, derived from
// the current rotation date.
func (t *Telemetry) GetLogFilePaths() map[models.Category]string {
	t.mu.Lock()
	date := t.rotation
	t.mu.Unlock()

	paths := make(map[models.Category]string, len(models.Categories()))
	for _, cat := range models.Categories() {
		paths[cat] = t.writer.PathFor(cat, date)
	}
	return paths
}

// Running reports whether the timers are live.
func (t *Telemetry) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Close stops the timers and closes all channel files.
func (t *Telemetry) Close() error {
	t.Stop()
	return t.writer.Close()
}

// write appends one entry to the channel sink. Returns true when the entry
// was written and counted. Sink failures are counted and swallowed;
// recording is best-effort and failure-isolated per call.
func (t *Telemetry) write(cat models.Category, level string, fields map[string]any) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := models.Entry{Time: t.nowFn(), Level: level, Category: cat, Fields: fields}
	if err := t.writer.Write(e, t.rotation); err != nil {
		t.errors++
		t.metrics.RecordError("sink")
		t.log.Warn("channel write failed",
			logger.String("category", string(cat)), logger.Error(err))
		return false
	}
	t.counters[cat]++
	t.metrics.RecordEntry(string(cat))
	if t.archiver != nil {
		t.archiver.Archive(e)
	}
	return true
}

// addError bumps the error counter for a non-write failure (provider call,
// purge).
func (t *Telemetry) addError(kind string) {
	t.mu.Lock()
	t.errors++
	t.mu.Unlock()
	t.metrics.RecordError(kind)
}

func (t *Telemetry) emit(name string, payload any) {
	t.bus.Publish(models.Event{Name: name, At: t.nowFn(), Payload: payload})
}
