// Package commands contains the command-line operations of the smarthash application.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
	"github.com/gingerrexayers/smarthash-go/internal/smarthash/types"
)

const (
	// GeneratedByBanner is the last user-visible header comment of every record file.
	GeneratedByBanner = "Generated by smarthash"

	timestampLayout     = "2006.01.02 15:04:05"
	fileTimestampLayout = "2006-01-02_15-04-05"
	jsonExtension       = ".json"
)

// HashOptions holds the configuration of a hashing run.
type HashOptions struct {
	InputFiles   []string
	InputFolders []string
	// IncludeMasks and ExcludeMasks are ";"-separated file masks applied to
	// files found in input folders.
	IncludeMasks string
	ExcludeMasks string

	Algorithm  string
	ChunkSize  int
	RetryCount int
	RetryPause time.Duration

	// OutputPostfix is appended to record file names after the algorithm name.
	OutputPostfix string
	// SuppressPostfix drops the ".<algorithm>" part of record file names.
	SuppressPostfix bool
	// AddTimestamp inserts the run timestamp into record file names.
	AddTimestamp bool
	// SingleFileBase stores every record in one text file.
	SingleFileBase string
	// SingleFileBaseJSON stores every record in one JSON file.
	SingleFileBaseJSON string

	ForceCalc        bool
	PauseAfterFile   time.Duration
	SuppressOutput   bool
	Comments         []string
	SuppressComments bool
	AbsolutePaths    bool
	NormCase         bool
	SortByHash       bool
	PreserveUnused   bool
	AutosaveInterval int

	Stdout io.Writer
	Logger *slog.Logger
	Clock  lib.Clock
}

// Validate checks option combinations that cannot be expressed by flags alone.
func (o HashOptions) Validate() error {
	if len(o.InputFiles) == 0 && len(o.InputFolders) == 0 {
		return errors.New("one or more input files and/or folders should be specified")
	}
	if o.SingleFileBase != "" && o.SingleFileBaseJSON != "" {
		return errors.New("--single-hash-file-name-base and --single-hash-file-name-base-json are mutually exclusive")
	}
	if o.PauseAfterFile < 0 {
		return errors.New("--pause-after-file must be non-negative")
	}
	if o.RetryPause < 0 {
		return errors.New("--retry-pause-on-data-read-error must be non-negative")
	}
	if o.AutosaveInterval < lib.AutosaveDisabled {
		return fmt.Errorf("--autosave-timeout must be %d or greater", lib.AutosaveDisabled)
	}
	if _, err := lib.NewHasher(o.algorithm()); err != nil {
		return err
	}
	return nil
}

func (o HashOptions) algorithm() string {
	if o.Algorithm == "" {
		return lib.DefaultAlgorithm
	}
	return o.Algorithm
}

func (o HashOptions) singleFileBase() (string, bool) {
	if o.SingleFileBaseJSON != "" {
		return o.SingleFileBaseJSON, true
	}
	return o.SingleFileBase, false
}

// run holds the collaborators of one hashing run.
type run struct {
	opts    HashOptions
	out     io.Writer
	logger  *slog.Logger
	clock   lib.Clock
	engine  *lib.HashEngine
	store   lib.RecordStore
	start   time.Time
	printer *progressPrinter
}

// Hash computes hashes for all input files and records them in the
// configured store. It returns the most severe exit code met during the
// run. A data read error or a usage error on one file does not stop the
// others; an interruption stops the run after the store has been saved.
func Hash(ctx context.Context, opts HashOptions) (types.ExitCode, error) {
	if err := opts.Validate(); err != nil {
		return types.ExitInvalidCommandLineParams, err
	}

	r := &run{opts: opts, out: opts.Stdout, logger: opts.Logger, clock: opts.Clock}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.logger == nil {
		r.logger = lib.NewCommandLogger(false)
	}
	if r.clock == nil {
		r.clock = lib.RealClock()
	}
	r.start = r.clock.Now()
	r.printer = newProgressPrinter(r.out, !opts.SuppressOutput && isTerminalWriter(r.out))

	engine, err := lib.NewHashEngine(lib.EngineConfig{
		Algorithm:  opts.algorithm(),
		ChunkSize:  opts.ChunkSize,
		RetryCount: opts.RetryCount,
		RetryPause: opts.RetryPause,
	},
		lib.WithProgress(r.printer.print),
		lib.WithEngineLogger(r.logger),
		lib.WithEngineClock(r.clock),
	)
	if err != nil {
		return types.ExitInvalidCommandLineParams, err
	}
	r.engine = engine

	store, isRecordFile, err := r.newRecordStore()
	if err != nil {
		return types.ExitExceptionThrown, err
	}
	r.store = store

	files, err := collectInputFiles(opts, isRecordFile)
	if err != nil {
		return types.ExitExceptionThrown, fmt.Errorf("error finding files: %w", err)
	}
	r.logger.Debug("input files collected", "count", len(files))

	code := types.ExitOK
	err = lib.WithStore(store, func(store lib.RecordStore) error {
		for _, file := range files {
			fileCode, err := r.handleFile(ctx, file)
			code = code.Worse(fileCode)
			if err != nil {
				return err
			}
		}
		return nil
	})

	switch {
	case err == nil:
		return code, nil
	case errors.Is(err, lib.ErrUserInterrupted):
		fmt.Fprintln(r.out, "Program interrupted by user")
		return code.Worse(types.ExitInterruptedByUser), err
	case errors.Is(err, lib.ErrFormat):
		return code.Worse(types.ExitAppUsageError), err
	default:
		return code.Worse(types.ExitExceptionThrown), err
	}
}

// newRecordStore builds the store selected by the options and a predicate
// recognizing the files it writes, so they are never hashed themselves.
func (r *run) newRecordStore() (lib.RecordStore, func(string) bool, error) {
	storeOpts := lib.StoreOptions{
		Algorithm:        r.opts.algorithm(),
		AbsolutePaths:    r.opts.AbsolutePaths,
		NormCase:         r.opts.NormCase,
		SortByHash:       r.opts.SortByHash,
		PreserveUnused:   r.opts.PreserveUnused,
		AutosaveInterval: r.opts.AutosaveInterval,
		Comments:         r.headerComments(),
		SuppressComments: r.opts.SuppressComments,
		Logger:           r.logger,
		Clock:            r.clock,
	}

	base, isJSON := r.opts.singleFileBase()
	if base == "" {
		suffix := r.recordSuffix(true)
		tail := r.recordSuffix(false)
		isRecordFile := func(path string) bool {
			return (suffix != "" && strings.HasSuffix(path, suffix)) || (tail != "" && strings.HasSuffix(path, tail))
		}
		return lib.NewPerFileStore(suffix, storeOpts), isRecordFile, nil
	}

	storeOpts.JSON = isJSON
	storePath := base + r.recordSuffix(true)
	if isJSON {
		storePath += jsonExtension
	}
	store, err := lib.NewConsolidatedStore(storePath, storeOpts)
	if err != nil {
		return nil, nil, err
	}
	isRecordFile := func(path string) bool {
		abs, err := lib.AbsPath(path)
		if err != nil {
			return false
		}
		if lib.IsBackupOf(abs, store.Path()) {
			return true
		}
		same, err := lib.SamePath(abs, store.Path(), r.opts.NormCase)
		return err == nil && same
	}
	return store, isRecordFile, nil
}

// recordSuffix returns "[.<timestamp>][.<algorithm>][.<postfix>]".
func (r *run) recordSuffix(withTimestamp bool) string {
	var b strings.Builder
	if withTimestamp && r.opts.AddTimestamp {
		b.WriteString("." + r.start.Format(fileTimestampLayout))
	}
	if !r.opts.SuppressPostfix {
		b.WriteString("." + r.opts.algorithm())
	}
	if r.opts.OutputPostfix != "" {
		b.WriteString("." + r.opts.OutputPostfix)
	}
	return b.String()
}

func (r *run) headerComments() []string {
	lines := []string{
		"Generated at: " + r.start.Format(timestampLayout),
		"Hash algorithm: " + r.opts.algorithm(),
	}
	lines = append(lines, r.opts.Comments...)
	return append(lines, GeneratedByBanner)
}

// handleFile hashes one file unless it already has a record. A returned
// error stops the whole run.
func (r *run) handleFile(ctx context.Context, file string) (types.ExitCode, error) {
	if ctx.Err() != nil {
		return types.ExitInterruptedByUser, lib.ErrUserInterrupted
	}

	started := r.clock.Now()
	fmt.Fprintf(r.out, "Handle file start time: %s (%s)\n", started.Format(timestampLayout), file)

	if !r.opts.ForceCalc {
		has, err := r.store.Has(file)
		if err != nil {
			return r.fileFailed(file, err)
		}
		if has {
			fmt.Fprintf(r.out, "Hash file '%s' exists ... calculation of hash skipped.\n", r.store.RecordPath(file))
			return types.ExitOKSkippedAlreadyHashed, nil
		}
	}

	fmt.Fprintf(r.out, "Calculate hash for file '%s'...\n", file)
	digest, err := r.engine.Compute(ctx, file)
	r.printer.clear()
	if err != nil {
		return r.fileFailed(file, err)
	}

	if err := r.store.Set(file, digest); err != nil {
		return r.fileFailed(file, err)
	}
	fmt.Fprintf(r.out, "HASH: %s (%s)\n", digest, r.store.RecordPath(file))

	finished := r.clock.Now()
	elapsed := finished.Sub(started)
	speed := "0 B"
	if info, err := os.Stat(file); err == nil && elapsed >= time.Second {
		speed = humanize.IBytes(uint64(float64(info.Size()) / elapsed.Seconds()))
	}
	fmt.Fprintf(r.out, "Handle file end time: %s (%s)\n", finished.Format(timestampLayout), file)
	fmt.Fprintf(r.out, "Elapsed time: %s (Average speed: %s/sec)\n", formatDuration(elapsed), speed)

	if r.opts.PauseAfterFile > 0 {
		fmt.Fprintf(r.out, "Pause %s... Press Ctrl+C to exit program\n", formatDuration(r.opts.PauseAfterFile))
		if err := lib.Sleep(ctx, r.clock, r.opts.PauseAfterFile); err != nil {
			return types.ExitInterruptedByUser, err
		}
	}
	return types.ExitOK, nil
}

// fileFailed maps a per-file error to an exit code. Only interruptions and
// unexpected faults are returned as errors; the others are logged and the
// run continues with the next file.
func (r *run) fileFailed(file string, err error) (types.ExitCode, error) {
	switch {
	case errors.Is(err, lib.ErrUserInterrupted):
		return types.ExitInterruptedByUser, err
	case errors.Is(err, lib.ErrDataRead):
		r.logger.Error("hash not calculated", "path", file, "error", err)
		return types.ExitDataReadError, nil
	case errors.Is(err, lib.ErrUsage):
		r.logger.Error("file skipped", "path", file, "error", err)
		return types.ExitAppUsageError, nil
	default:
		return types.ExitExceptionThrown, fmt.Errorf("failed to process file %s: %w", file, err)
	}
}

// collectInputFiles returns the explicit input files followed by the files
// found under every input folder, without duplicates and without record files.
func collectInputFiles(opts HashOptions, isRecordFile func(string) bool) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) error {
		abs, err := lib.AbsPath(path)
		if err != nil {
			return err
		}
		if seen[abs] || isRecordFile(abs) {
			return nil
		}
		seen[abs] = true
		files = append(files, path)
		return nil
	}

	for _, file := range opts.InputFiles {
		info, err := os.Stat(file)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("input file %s is a directory", file)
		}
		if err := add(file); err != nil {
			return nil, err
		}
	}

	for _, folder := range opts.InputFolders {
		filter := lib.NewInputFilter(folder, opts.IncludeMasks, opts.ExcludeMasks)
		err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == folder {
				return nil
			}
			if filter.Excluded(path, d.IsDir()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				return add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
