// internal/apply/executor.go
package apply

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/logger"
	"github.com/arwahdevops/oradelta/internal/metrics"
)

// Execer is the part of *sql.DB (or *sql.Conn) the executor needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Options tunes an Executor.
type Options struct {
	ContinueOnError  bool
	StatementTimeout time.Duration
}

// Result summarises one Apply run.
type Result struct {
	Total    int
	Executed int
	Ignored  int
	Failed   int
	Duration time.Duration
}

// Executor applies rendered scripts to a live instance, serially.
type Executor struct {
	execer  Execer
	opts    Options
	logger  *zap.Logger
	tracer  *logger.SQLTracer
	metrics *metrics.Store
}

// NewExecutor creates an Executor. metricsStore may be nil.
func NewExecutor(execer Execer, opts Options, log *zap.Logger, metricsStore *metrics.Store) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("apply")
	return &Executor{
		execer:  execer,
		opts:    opts,
		logger:  log,
		tracer:  logger.NewSQLTracer(log, false),
		metrics: metricsStore,
	}
}

// Apply splits script into statements and executes them in order. "Already
// exists" errors are tolerated. Other failures either stop the run or are
// accumulated, depending on ContinueOnError; in both cases the returned
// error wraps ErrNotAllExecuted.
func (e *Executor) Apply(ctx context.Context, script string) (*Result, error) {
	start := time.Now()
	if e.metrics != nil {
		e.metrics.ApplyRunning.Set(1)
		defer func() {
			e.metrics.ApplyRunning.Set(0)
			e.metrics.ApplyDuration.Observe(time.Since(start).Seconds())
		}()
	}

	statements := SplitStatements(script)
	res := &Result{Total: len(statements)}
	log := e.logger.With(zap.Int("statement_count", len(statements)))
	log.Info("Applying script to instance")

	var accumulatedErrors error
	for i, stmt := range statements {
		if err := ctx.Err(); err != nil {
			accumulatedErrors = multierr.Append(accumulatedErrors, fmt.Errorf("apply cancelled before statement %d: %w", i+1, err))
			break
		}

		err := e.exec(ctx, stmt)
		switch {
		case err == nil:
			res.Executed++
			e.count("success")
		case IsIgnorable(err):
			res.Ignored++
			e.count("ignored")
			log.Warn("Statement resulted in an ignorable error, continuing.",
				zap.Int("index", i+1),
				zap.String("query", logger.Summarize(e.tracer.Redact(stmt), 150)),
				zap.Error(err))
		default:
			res.Failed++
			e.count("failed")
			currentErr := fmt.Errorf("statement %d [%s]: %w", i+1, logger.Summarize(e.tracer.Redact(stmt), 150), err)
			accumulatedErrors = multierr.Append(accumulatedErrors, currentErr)
			if !e.opts.ContinueOnError {
				log.Error("Failed to execute statement, aborting.", zap.Int("index", i+1))
				res.Duration = time.Since(start)
				return res, fmt.Errorf("%w: %w", ErrNotAllExecuted, accumulatedErrors)
			}
			log.Error("Failed to execute statement, but configured to continue. Error will be accumulated.", zap.Int("index", i+1))
		}
	}

	res.Duration = time.Since(start)
	if accumulatedErrors != nil {
		log.Warn("Apply completed with accumulated errors.",
			zap.Int("executed", res.Executed),
			zap.Int("ignored", res.Ignored),
			zap.Int("failed", res.Failed),
			zap.NamedError("accumulated_errors", accumulatedErrors))
		return res, fmt.Errorf("%w: %w", ErrNotAllExecuted, accumulatedErrors)
	}
	log.Info("Script applied",
		zap.Int("executed", res.Executed),
		zap.Int("ignored", res.Ignored),
		zap.Duration("duration", res.Duration))
	return res, nil
}

func (e *Executor) exec(ctx context.Context, stmt string) error {
	execCtx := ctx
	if e.opts.StatementTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, e.opts.StatementTimeout)
		defer cancel()
	}
	begin := time.Now()
	_, err := e.execer.ExecContext(execCtx, stmt)
	traceErr := err
	if IsIgnorable(err) {
		traceErr = nil
	}
	e.tracer.Trace(begin, stmt, traceErr)
	return err
}

func (e *Executor) count(status string) {
	if e.metrics != nil {
		e.metrics.StatementsExecutedTotal.WithLabelValues(status).Inc()
	}
}
