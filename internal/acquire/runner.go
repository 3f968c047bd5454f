package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rickgao/fxsync/internal/config"
	"github.com/rickgao/fxsync/internal/metrics"
	"github.com/rickgao/fxsync/internal/model"
)

const (
	// outputTailBytes bounds the captured stdout and stderr of each run.
	outputTailBytes = 2048

	// waitDelay bounds how long output pipes are drained after the tool is killed.
	waitDelay = 5 * time.Second
)

// ToolError reports a failed tool invocation.
type ToolError struct {
	Instrument string
	ExitCode   int // -1 when the process never started or was killed
	Stderr     string
	Err        error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("download %s: exit code %d: %v", e.Instrument, e.ExitCode, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Runner invokes the download tool.
type Runner struct {
	cfg    config.AcquireConfig
	logger *slog.Logger
}

// NewRunner creates a new Runner.
func NewRunner(cfg config.AcquireConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:    cfg,
		logger: logger,
	}
}

// Fetch downloads [from, to) for each instrument in order, stopping at the
// first failure.
func (r *Runner) Fetch(ctx context.Context, instruments []string, from, to time.Time) error {
	if r.cfg.WorkDir != "" {
		if err := os.MkdirAll(r.cfg.WorkDir, 0o755); err != nil {
			return fmt.Errorf("create work dir: %w", err)
		}
	}

	for _, inst := range instruments {
		start := time.Now()
		err := r.fetchOne(ctx, inst, from, to)
		metrics.RecordAcquire(inst, time.Since(start), err)
		if err != nil {
			return err
		}
		r.logger.Info("instrument downloaded",
			"instrument", inst,
			"from", from.Format(model.DayLayout),
			"to", to.Format(model.DayLayout),
			"duration", time.Since(start),
		)
	}
	return nil
}

func (r *Runner) fetchOne(ctx context.Context, instrument string, from, to time.Time) error {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	args := r.Args(instrument, from, to)
	cmd := exec.CommandContext(ctx, r.cfg.Command, args...)
	cmd.Dir = r.cfg.WorkDir
	cmd.WaitDelay = waitDelay

	stdout := &tailBuffer{max: outputTailBytes}
	stderr := &tailBuffer{max: outputTailBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.logger.Debug("running download tool", "command", r.cfg.Command, "args", args)

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return &ToolError{
			Instrument: instrument,
			ExitCode:   code,
			Stderr:     strings.TrimSpace(stderr.String()),
			Err:        err,
		}
	}

	if out := strings.TrimSpace(stdout.String()); out != "" {
		r.logger.Debug("download tool output", "instrument", instrument, "output", out)
	}
	return nil
}

// Args expands the argument template for one instrument.
func (r *Runner) Args(instrument string, from, to time.Time) []string {
	replacer := strings.NewReplacer(
		"{instrument}", strings.ToLower(instrument),
		"{from}", from.Format(model.DayLayout),
		"{to}", to.Format(model.DayLayout),
		"{timeframe}", r.cfg.Timeframe,
		"{format}", r.cfg.Format,
	)
	out := make([]string, len(r.cfg.Args))
	for i, a := range r.cfg.Args {
		out[i] = replacer.Replace(a)
	}
	return out
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	buf []byte
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
