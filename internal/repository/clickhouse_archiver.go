package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/pkg/logger"
)

// ClickHouseArchiver is the optional secondary sink: it batches telemetry
// entries into an analytical table. The recording path only ever pays for a
// buffered channel send; a full buffer drops the entry for the archive (the
// day files remain the source of truth).
type ClickHouseArchiver struct {
	db      *sql.DB
	table   string
	batchSz int
	batchTO time.Duration
	log     *logger.Logger
	metrics drepo.Metrics

	in       chan models.Entry
	flushReq chan chan error
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewClickHouseArchiver creates the archiver and starts its flush loop.
func NewClickHouseArchiver(
	db *sql.DB,
	table string,
	batchSize int,
	batchTimeout time.Duration,
	log *logger.Logger,
	metrics drepo.Metrics,
) *ClickHouseArchiver {
	if batchSize <= 0 {
		batchSize = 500
	}
	if batchTimeout <= 0 {
		batchTimeout = 5 * time.Second
	}
	a := &ClickHouseArchiver{
		db:       db,
		table:    table,
		batchSz:  batchSize,
		batchTO:  batchTimeout,
		log:      log,
		metrics:  metrics,
		in:       make(chan models.Entry, batchSize*4),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
	}
	a.wg.Add(1)
	go a.loop()
	return a
}

// Archive hands an entry to the flush loop without blocking the caller.
func (a *ClickHouseArchiver) Archive(e models.Entry) {
	select {
	case a.in <- e:
	default:
		a.metrics.RecordError("archive_backpressure")
	}
}

// Flush forces the pending batch out and reports the insert error, if any.
func (a *ClickHouseArchiver) Flush(ctx context.Context) error {
	errCh := make(chan error, 1)
	select {
	case a.flushReq <- errCh:
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes what is buffered and stops the loop. The database handle is
// owned by the caller and is not closed here.
func (a *ClickHouseArchiver) Close() error {
	close(a.done)
	a.wg.Wait()
	return nil
}

func (a *ClickHouseArchiver) loop() {
	defer a.wg.Done()

	batch := make([]models.Entry, 0, a.batchSz)
	tk := time.NewTicker(a.batchTO)
	defer tk.Stop()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := a.insertBatch(batch)
		if err != nil {
			a.metrics.RecordError("archive")
			a.log.Warn("archive insert failed",
				logger.Int("entries", len(batch)), logger.Error(err))
		}
		batch = batch[:0]
		return err
	}

	for {
		select {
		case e := <-a.in:
			batch = append(batch, e)
			if len(batch) >= a.batchSz {
				_ = flush()
			}
		case <-tk.C:
			_ = flush()
		case errCh := <-a.flushReq:
			errCh <- flush()
		case <-a.done:
			// drain whatever is still buffered
			for {
				select {
				case e := <-a.in:
					batch = append(batch, e)
				default:
					_ = flush()
					return
				}
			}
		}
	}
}

func (a *ClickHouseArchiver) insertBatch(batch []models.Entry) error {
	values := make([]string, 0, len(batch))
	args := make([]interface{}, 0, len(batch)*4)
	for _, e := range batch {
		fields := "{}"
		if len(e.Fields) > 0 {
			if b, err := json.Marshal(e.Fields); err == nil {
				fields = string(b)
			}
		}
		values = append(values, "(?, ?, ?, ?)")
		args = append(args, e.Time, e.Level, string(e.Category), fields)
	}

	q := fmt.Sprintf("INSERT INTO %s (ts, level, category, fields) VALUES %s",
		a.table, strings.Join(values, ","))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("archive batch: %w", err)
	}
	return nil
}

// ArchiveSchema returns the idempotent DDL for the archive table.
func ArchiveSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ts DateTime64(3),
			level String,
			category String,
			fields String
		) ENGINE=MergeTree ORDER BY (category, ts)`, table),
	}
}
