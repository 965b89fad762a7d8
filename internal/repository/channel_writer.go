package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"TradePulse/internal/domain/models"
	"TradePulse/pkg/util"
)

// FileChannelWriter is the durable append-only sink: one directory per
// category, one JSON-lines file per calendar day. Files are opened lazily
// and swapped when the rotation date passed to Write changes.
type FileChannelWriter struct {
	root string
	dirs map[models.Category]string

	mu   sync.Mutex
	open map[models.Category]*channelFile
}

type channelFile struct {
	day string
	f   *os.File
	zl  zerolog.Logger
}

// NewFileChannelWriter creates a writer rooted at root with per-category
// subdirectory names. Missing directory names fall back to the category name.
func NewFileChannelWriter(root string, dirs map[models.Category]string) *FileChannelWriter {
	d := make(map[models.Category]string, len(models.Categories()))
	for _, cat := range models.Categories() {
		if name, ok := dirs[cat]; ok && name != "" {
			d[cat] = name
		} else {
			d[cat] = string(cat)
		}
	}
	return &FileChannelWriter{
		root: root,
		dirs: d,
		open: make(map[models.Category]*channelFile),
	}
}

// PathFor returns the file path for a category on a given day. Pure function
// of (category, date).
func (w *FileChannelWriter) PathFor(cat models.Category, date time.Time) string {
	name := fmt.Sprintf("%s-%s.log", cat, util.FormatDay(date))
	return filepath.Join(w.root, w.dirs[cat], name)
}

// Write appends one structured entry to the category's file for the given
// rotation date.
func (w *FileChannelWriter) Write(e models.Entry, date time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cf, err := w.channel(e.Category, date)
	if err != nil {
		return err
	}

	lvl, perr := zerolog.ParseLevel(e.Level)
	if perr != nil {
		lvl = zerolog.InfoLevel
	}
	ev := cf.zl.WithLevel(lvl).
		Time(zerolog.TimestampFieldName, e.Time).
		Str("category", string(e.Category))
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	ev.Msg("")
	return nil
}

// channel returns the open file for a category, reopening it when the day
// changed. Caller holds w.mu.
func (w *FileChannelWriter) channel(cat models.Category, date time.Time) (*channelFile, error) {
	day := util.FormatDay(date)
	if cf, ok := w.open[cat]; ok {
		if cf.day == day {
			return cf, nil
		}
		_ = cf.f.Close()
		delete(w.open, cat)
	}

	path := w.PathFor(cat, date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	cf := &channelFile{day: day, f: f, zl: zerolog.New(f)}
	w.open[cat] = cf
	return cf, nil
}

// Purge removes day files whose last-modified time is older than cutoff.
// The currently open files are never candidates since they were written
// today. Returns the number of removed files; removal failures are joined
// into the returned error but do not stop the sweep.
func (w *FileChannelWriter) Purge(cutoff time.Time) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	var errs []error
	for _, cat := range models.Categories() {
		dir := filepath.Join(w.root, w.dirs[cat])
		ents, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			errs = append(errs, fmt.Errorf("read dir %s: %w", dir, err))
			continue
		}
		for _, de := range ents {
			if de.IsDir() {
				continue
			}
			info, err := de.Info()
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if info.ModTime().After(cutoff) || info.ModTime().Equal(cutoff) {
				continue
			}
			if err := os.Remove(filepath.Join(dir, de.Name())); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", de.Name(), err))
				continue
			}
			removed++
		}
	}
	return removed, errors.Join(errs...)
}

// Close closes every open channel file.
func (w *FileChannelWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for cat, cf := range w.open {
		if err := cf.f.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(w.open, cat)
	}
	return errors.Join(errs...)
}
