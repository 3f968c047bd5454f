package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/fxsync/internal/metrics"
	"github.com/rickgao/fxsync/internal/model"
	"github.com/rickgao/fxsync/internal/staging"
)

// Resolver maps a staged file to its instrument, day, and rows.
type Resolver interface {
	Resolve(file model.StagedFile) (staging.Resolved, error)
}

// ExistenceChecker reports whether a day is already stored.
type ExistenceChecker interface {
	Exists(ctx context.Context, key model.DayKey) (model.ExistenceRecord, error)
}

// Uploader commits a file's rows to the store.
type Uploader interface {
	Upload(ctx context.Context, rows []model.PriceRow) (int, error)
}

// Config holds driver settings.
type Config struct {
	Dir          string
	Pattern      string
	LookbackDays int
	Location     *time.Location
}

// Driver reconciles staged files against the store.
type Driver struct {
	cfg      Config
	resolver Resolver
	oracle   ExistenceChecker
	uploader Uploader
	logger   *slog.Logger

	now    func() time.Time
	remove func(model.StagedFile) error
}

// NewDriver creates a new Driver.
func NewDriver(cfg Config, resolver Resolver, oracle ExistenceChecker, uploader Uploader, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Driver{
		cfg:      cfg,
		resolver: resolver,
		oracle:   oracle,
		uploader: uploader,
		logger:   logger,
		now:      time.Now,
		remove:   staging.Remove,
	}
}

// TargetDay returns the calendar day whose files are in window.
func (d *Driver) TargetDay() time.Time {
	now := d.now().In(d.cfg.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, d.cfg.Location)
	return today.AddDate(0, 0, -d.cfg.LookbackDays)
}

// Run performs one reconciliation pass. The returned Summary is valid
// even when err is non-nil and reflects the files handled before the abort.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	return d.run(ctx, uuid.New())
}

func (d *Driver) run(ctx context.Context, runID uuid.UUID) (Summary, error) {
	sum := Summary{RunID: runID}
	logger := d.logger.With("run_id", runID.String())

	files, err := staging.Discover(d.cfg.Dir, d.cfg.Pattern)
	if err != nil {
		return sum, err
	}
	sum.Discovered = len(files)

	day := d.TargetDay()
	logger.Info("reconciling staged files",
		"dir", d.cfg.Dir,
		"files", len(files),
		"target_day", day.Format(model.DayLayout),
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		if !staging.MatchesDay(file.Name, day) {
			sum.OutOfWindow++
			metrics.RecordFile(metrics.FileOutOfWindow)
			logger.Debug("file outside window", "file", file.Name)
			continue
		}

		if err := d.process(ctx, logger, file, &sum); err != nil {
			metrics.RecordFile(metrics.FileFailed)
			return sum, err
		}
	}

	return sum, nil
}

// process handles one in-window file. A returned error aborts the run.
func (d *Driver) process(ctx context.Context, logger *slog.Logger, file model.StagedFile, sum *Summary) error {
	res, err := d.resolver.Resolve(file)
	if err != nil {
		sum.Unresolved++
		metrics.RecordFile(metrics.FileUnresolved)
		logger.Warn("skipping unresolved file", "file", file.Name, "error", err)
		return nil
	}

	logger = logger.With("file", file.Name, "pair", res.Key.Instrument, "day", res.Key.Day.Format(model.DayLayout))

	rec, err := d.oracle.Exists(ctx, res.Key)
	if err != nil {
		return err
	}

	if rec.Duplicate() {
		logger.Info("day already stored, discarding file", "existing_rows", rec.Count)
		if err := d.remove(file); err != nil {
			return fmt.Errorf("discard duplicate %s: %w", file.Name, err)
		}
		sum.Duplicates++
		metrics.RecordFile(metrics.FileDuplicate)
		return nil
	}

	n, err := d.uploader.Upload(ctx, res.Rows)
	sum.UploadedRows += n
	if err != nil {
		logger.Error("upload failed, file kept staged", "committed_rows", n, "error", err)
		return fmt.Errorf("upload %s: %w", file.Name, err)
	}

	if err := d.remove(file); err != nil {
		return fmt.Errorf("clean up %s after upload: %w", file.Name, err)
	}
	sum.UploadedFiles++
	metrics.RecordFile(metrics.FileUploaded)

	logger.Info("file uploaded", "rows", n)
	return nil
}
