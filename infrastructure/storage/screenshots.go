package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"signup_automation/domain/entities"
	"signup_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	// DebugMarkupFile is overwritten by every dump; it is only a diagnostic aid
	DebugMarkupFile = "iframe_debug.html"

	timestampLayout = "20060102-150405"
	maxNameAttempts = 1000
)

// ScreenshotArchiver writes captures as step_<NNN>_<timestamp>.png.
// The counter keeps names unique within a run and the timestamp keeps a
// later run from overwriting an earlier one.
type ScreenshotArchiver struct {
	dir    string
	logger *logrus.Logger
	now    func() time.Time
	create func(path string) (io.WriteCloser, error)

	mu  sync.Mutex
	seq int
}

// ArchiverOption configures a ScreenshotArchiver
type ArchiverOption func(*ScreenshotArchiver)

// WithClock - overrides the capture timestamp source
func WithClock(now func() time.Time) ArchiverOption {
	return func(a *ScreenshotArchiver) {
		a.now = now
	}
}

// NewScreenshotArchiver - creates archiver rooted at dir
func NewScreenshotArchiver(dir string, logger *logrus.Logger, opts ...ArchiverOption) *ScreenshotArchiver {
	a := &ScreenshotArchiver{
		dir:    dir,
		logger: logger,
		now:    time.Now,
		create: createExclusive,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Prepare - creates the output directory if absent
func (a *ScreenshotArchiver) Prepare() error {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", a.dir, err)
	}
	return nil
}

// Capture - takes a full-page screenshot and saves it under the next name
func (a *ScreenshotArchiver) Capture(ctx context.Context, page interfaces.Page) (entities.ScreenshotRecord, error) {
	if err := ctx.Err(); err != nil {
		return entities.ScreenshotRecord{}, err
	}

	png, err := page.Screenshot(true)
	if err != nil {
		return entities.ScreenshotRecord{}, fmt.Errorf("failed to take screenshot: %w", err)
	}
	return a.Save(png, page.URL())
}

// Save - writes png bytes under a fresh name, never replacing an existing file
func (a *ScreenshotArchiver) Save(png []byte, url string) (entities.ScreenshotRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	takenAt := a.now()
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		a.seq++
		name := fmt.Sprintf("step_%03d_%s.png", a.seq, takenAt.Format(timestampLayout))
		path := filepath.Join(a.dir, name)

		f, err := a.create(path)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			a.seq--
			return entities.ScreenshotRecord{}, fmt.Errorf("failed to create %s: %w", path, err)
		}

		_, err = f.Write(png)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			// A partial capture is worse than none; free the name for the next one.
			if rerr := os.Remove(path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				a.logger.WithField("component", "archiver").WithError(rerr).Warn("failed to remove partial screenshot")
			}
			a.seq--
			return entities.ScreenshotRecord{}, fmt.Errorf("failed to write %s: %w", path, err)
		}

		a.logger.WithFields(logrus.Fields{
			"component": "archiver",
			"path":      path,
			"seq":       a.seq,
		}).Info("screenshot saved")

		return entities.ScreenshotRecord{Seq: a.seq, Path: path, URL: url, TakenAt: takenAt}, nil
	}

	return entities.ScreenshotRecord{}, fmt.Errorf("no free screenshot name in %s after %d attempts", a.dir, maxNameAttempts)
}

// createExclusive fails with os.ErrExist instead of replacing a file
func createExclusive(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
}

// WriteDebugMarkup - overwrites the debug dump with html
func (a *ScreenshotArchiver) WriteDebugMarkup(html string) (string, error) {
	path := filepath.Join(a.dir, DebugMarkupFile)
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", a.dir, err)
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("failed to write debug markup: %w", err)
	}
	return path, nil
}

var _ interfaces.Archiver = (*ScreenshotArchiver)(nil)
