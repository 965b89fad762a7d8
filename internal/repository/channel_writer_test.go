package repository

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
)

var day1 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestWriteAppendsStructuredLine(t *testing.T) {
	w := NewFileChannelWriter(t.TempDir(), nil)
	defer w.Close()

	e := models.Entry{
		Time:     day1,
		Level:    "info",
		Category: models.CategoryTrade,
		Fields:   map[string]any{"symbol": "BTCUSDT", "price": 50000.5},
	}
	if err := w.Write(e, day1); err != nil {
		t.Fatalf("write: %v", err)
	}

	b, err := os.ReadFile(w.PathFor(models.CategoryTrade, day1))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal(b, &line); err != nil {
		t.Fatalf("not valid json: %v", err)
	}
	if line["category"] != "trade" {
		t.Fatalf("unexpected category %v", line["category"])
	}
	if line["level"] != "info" {
		t.Fatalf("unexpected level %v", line["level"])
	}
	if line["symbol"] != "BTCUSDT" {
		t.Fatalf("missing payload field, got %v", line)
	}
}

func TestPathForUsesConfiguredDirs(t *testing.T) {
	w := NewFileChannelWriter("/var/log/tp", map[models.Category]string{
		models.CategoryPnl: "profit",
	})
	p := w.PathFor(models.CategoryPnl, day1)
	if p != "/var/log/tp/profit/pnl-2025-03-10.log" {
		t.Fatalf("unexpected path %s", p)
	}
	// unconfigured categories fall back to the category name
	p = w.PathFor(models.CategoryRisk, day1)
	if p != "/var/log/tp/risk/risk-2025-03-10.log" {
		t.Fatalf("unexpected fallback path %s", p)
	}
}

func TestWriteSwapsFileOnNewDay(t *testing.T) {
	w := NewFileChannelWriter(t.TempDir(), nil)
	defer w.Close()

	day2 := day1.AddDate(0, 0, 1)
	e := models.Entry{Time: day1, Level: "info", Category: models.CategorySystem}
	if err := w.Write(e, day1); err != nil {
		t.Fatalf("write day1: %v", err)
	}
	e.Time = day2
	if err := w.Write(e, day2); err != nil {
		t.Fatalf("write day2: %v", err)
	}

	for _, d := range []time.Time{day1, day2} {
		if _, err := os.Stat(w.PathFor(models.CategorySystem, d)); err != nil {
			t.Fatalf("missing day file for %s: %v", d.Format("2006-01-02"), err)
		}
	}
}

func TestPurgeRemovesOnlyExpiredFiles(t *testing.T) {
	root := t.TempDir()
	w := NewFileChannelWriter(root, nil)
	defer w.Close()

	old := day1.AddDate(0, 0, -40)
	fresh := day1.AddDate(0, 0, -1)

	e := models.Entry{Time: old, Level: "info", Category: models.CategoryPnl}
	if err := w.Write(e, old); err != nil {
		t.Fatalf("write old: %v", err)
	}
	e.Time = fresh
	if err := w.Write(e, fresh); err != nil {
		t.Fatalf("write fresh: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	oldPath := w.PathFor(models.CategoryPnl, old)
	if err := os.Chtimes(oldPath, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	freshPath := w.PathFor(models.CategoryPnl, fresh)
	if err := os.Chtimes(freshPath, fresh, fresh); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	cutoff := day1.AddDate(0, 0, -30)
	n, err := w.Purge(cutoff)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected old file removed")
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Fatalf("expected fresh file kept: %v", err)
	}
}

func TestFatalLevelDoesNotExit(t *testing.T) {
	w := NewFileChannelWriter(t.TempDir(), nil)
	defer w.Close()

	e := models.Entry{Time: day1, Level: "fatal", Category: models.CategorySystem,
		Fields: map[string]any{"message": "disk full"}}
	if err := w.Write(e, day1); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(w.PathFor(models.CategorySystem, day1))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(b), `"level":"fatal"`) {
		t.Fatalf("expected fatal level line, got %s", b)
	}
}
