// Package lib contains the core, reusable services for the smarthash application.
package lib

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

const (
	// DefaultChunkSize is the number of bytes read from a file per step.
	DefaultChunkSize = 1024 * 1024

	// DefaultRetryCount is the number of read attempts made per file.
	DefaultRetryCount = 3

	// DefaultRetryPause is the wait between two read attempts.
	DefaultRetryPause = 30 * time.Second

	// recentWindow is the minimum length of a "recent speed" sample.
	recentWindow = 3 * time.Second

	// fullPercent is 100% expressed in hundredths of a percent.
	fullPercent = 10000
)

// EngineConfig holds the settings of a HashEngine.
type EngineConfig struct {
	Algorithm string
	// ChunkSize is the read buffer size; zero means DefaultChunkSize.
	ChunkSize int
	// RetryCount is the total number of read attempts per file; values
	// below one mean a single attempt.
	RetryCount int
	// RetryPause is the wait before every attempt after the first one.
	RetryPause time.Duration
}

// Progress is a telemetry sample emitted while a file is hashed.
type Progress struct {
	Path  string
	Done  int64
	Total int64
	// Percent is in hundredths of a percent (0..10000).
	Percent   int
	Elapsed   time.Duration
	Remaining time.Duration
	// AverageSpeed is bytes per second since the file was opened.
	AverageSpeed float64
	// RecentSpeed is bytes per second over the last completed sample
	// window, or zero until the first window completes.
	RecentSpeed float64
}

// ProgressFunc receives progress samples. It is called synchronously from
// the reading loop.
type ProgressFunc func(Progress)

// opener opens a file for hashing and returns its size.
type opener func(path string) (io.ReadCloser, int64, error)

// HashEngine computes file digests with progress reporting, retry on
// transient read faults and cooperative cancellation through a context.
type HashEngine struct {
	cfg      EngineConfig
	progress ProgressFunc
	logger   *slog.Logger
	clock    Clock
	open     opener
}

// EngineOption customizes a HashEngine.
type EngineOption func(*HashEngine)

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) EngineOption {
	return func(e *HashEngine) { e.progress = fn }
}

// WithEngineLogger sets the logger used for retry diagnostics.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *HashEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEngineClock replaces the clock used for timing and retry pauses.
func WithEngineClock(clock Clock) EngineOption {
	return func(e *HashEngine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewHashEngine validates cfg and returns an engine ready to hash files.
func NewHashEngine(cfg EngineConfig, opts ...EngineOption) (*HashEngine, error) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = DefaultAlgorithm
	}
	if _, err := NewHasher(cfg.Algorithm); err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.RetryCount < 1 {
		cfg.RetryCount = 1
	}

	e := &HashEngine{
		cfg:    cfg,
		logger: discardLogger(),
		clock:  RealClock(),
		open:   openFile,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Algorithm returns the name of the configured digest algorithm.
func (e *HashEngine) Algorithm() string { return e.cfg.Algorithm }

// Compute returns the lowercase hex digest of the file at path.
//
// A read fault restarts the whole file from the first byte after
// RetryPause, up to RetryCount attempts in total. Exhausted retries yield a
// *DataReadError. Cancellation of ctx, observed before every chunk and
// during pauses, yields ErrUserInterrupted. A missing or unreadable file
// is returned as is without retrying.
func (e *HashEngine) Compute(ctx context.Context, path string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= e.cfg.RetryCount; attempt++ {
		if attempt > 1 {
			e.logger.Warn("retrying after data read error",
				"path", path,
				"attempt", attempt,
				"max_attempts", e.cfg.RetryCount,
				"pause", e.cfg.RetryPause,
				"error", lastErr,
			)
			if err := Sleep(ctx, e.clock, e.cfg.RetryPause); err != nil {
				return "", err
			}
		}

		digest, err := e.hashOnce(ctx, path)
		if err == nil {
			return digest, nil
		}

		var fault *readFault
		if !errors.As(err, &fault) {
			return "", err
		}
		lastErr = fault.err
	}
	return "", &DataReadError{Path: path, Attempts: e.cfg.RetryCount, Err: lastErr}
}

// readFault marks an error as transient, making it eligible for a retry.
type readFault struct {
	err error
}

func (f *readFault) Error() string { return f.err.Error() }

func (f *readFault) Unwrap() error { return f.err }

func (e *HashEngine) hashOnce(ctx context.Context, path string) (string, error) {
	if ctx.Err() != nil {
		return "", ErrUserInterrupted
	}

	file, total, err := e.open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return "", err
		}
		return "", &readFault{err: err}
	}
	defer file.Close()

	hasher, err := NewHasher(e.cfg.Algorithm)
	if err != nil {
		return "", err
	}

	meter := newProgressMeter(path, total, e.clock.Now())
	if total == 0 {
		e.report(Progress{Path: path})
	}

	buffer := make([]byte, e.cfg.ChunkSize)
	for {
		if ctx.Err() != nil {
			return "", ErrUserInterrupted
		}

		n, readErr := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			if p, ok := meter.advance(int64(n), e.clock.Now()); ok {
				e.report(p)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", &readFault{err: readErr}
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (e *HashEngine) report(p Progress) {
	if e.progress != nil {
		e.progress(p)
	}
}

func openFile(path string) (io.ReadCloser, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, err
	}
	return file, info.Size(), nil
}

// progressMeter turns byte counts into Progress samples. A sample is
// produced only when the percentage grows by at least one hundredth.
type progressMeter struct {
	path        string
	total       int64
	done        int64
	start       time.Time
	recentStart time.Time
	recentSize  int64
	recentSpeed float64
	prevPercent int
}

func newProgressMeter(path string, total int64, now time.Time) *progressMeter {
	return &progressMeter{path: path, total: total, start: now, recentStart: now}
}

func (m *progressMeter) advance(n int64, now time.Time) (Progress, bool) {
	m.done += n
	m.recentSize += n
	if m.total <= 0 {
		return Progress{}, false
	}

	percent := int(fullPercent * m.done / m.total)
	if percent > fullPercent {
		percent = fullPercent
	}
	if percent <= m.prevPercent {
		return Progress{}, false
	}

	elapsed := now.Sub(m.start)
	if elapsed <= 0 {
		return Progress{}, false
	}
	m.prevPercent = percent

	if window := now.Sub(m.recentStart); window >= recentWindow && m.recentSize > 0 {
		m.recentSpeed = float64(m.recentSize) / window.Seconds()
		m.recentStart = now
		m.recentSize = 0
	}

	return Progress{
		Path:         m.path,
		Done:         m.done,
		Total:        m.total,
		Percent:      percent,
		Elapsed:      elapsed,
		Remaining:    time.Duration(float64(elapsed) / float64(percent) * float64(fullPercent-percent)),
		AverageSpeed: float64(m.done) / elapsed.Seconds(),
		RecentSpeed:  m.recentSpeed,
	}, true
}
