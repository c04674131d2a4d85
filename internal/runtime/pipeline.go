// Package runtime provides the view execution engine.
// It loads records from a source module, replays the view's search and
// filter steps on an entity list, and hands the result to an output module.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/canectors/gridfilter/internal/errhandling"
	"github.com/canectors/gridfilter/internal/factory"
	"github.com/canectors/gridfilter/internal/logger"
	"github.com/canectors/gridfilter/internal/modules/input"
	"github.com/canectors/gridfilter/internal/modules/output"
	"github.com/canectors/gridfilter/pkg/entitylist"
	"github.com/canectors/gridfilter/pkg/grid"
)

// Options controls how a view is executed.
type Options struct {
	// DryRun skips the output module
	DryRun bool
	// SearchField is used when the view sets none
	SearchField string
	// Permissive accepts unrecognized descriptor kinds even when the view
	// does not ask for it
	Permissive bool
}

// Executor runs views: Source -> Steps -> Output.
//
// The Executor only interacts with modules through their interfaces.
type Executor struct {
	inputModule  input.Module
	outputModule output.Module
	opts         Options
}

// NewExecutorWithModules creates an executor with its modules.
// outputModule may be nil in dry-run mode.
func NewExecutorWithModules(inputModule input.Module, outputModule output.Module, opts Options) *Executor {
	return &Executor{
		inputModule:  inputModule,
		outputModule: outputModule,
		opts:         opts,
	}
}

// NewExecutorForView creates the view's source and output modules through
// the factory. Output without a file goes to console.
func NewExecutorForView(view *grid.View, console io.Writer, opts Options) (*Executor, error) {
	if view == nil {
		return nil, ErrNilView
	}
	in, err := factory.CreateInputModule(view.Source)
	if err != nil {
		return nil, err
	}
	var out output.Module
	if !opts.DryRun {
		if out, err = factory.CreateOutputModule(view.Output, console); err != nil {
			return nil, err
		}
	}
	return NewExecutorWithModules(in, out, opts), nil
}

// Execute runs a view with a background context.
func (e *Executor) Execute(view *grid.View) (*grid.ExecutionResult, error) {
	return e.ExecuteWithContext(context.Background(), view)
}

// ExecuteWithContext runs a view with the given context.
//
// The source module is closed as soon as records are loaded; the output
// module is closed at the end of the run. The returned result is never nil
// and describes the failure when err is not nil.
func (e *Executor) ExecuteWithContext(ctx context.Context, view *grid.View) (*grid.ExecutionResult, error) {
	startedAt := time.Now()
	result := &grid.ExecutionResult{
		RunID:     uuid.NewString(),
		Status:    StatusError,
		StartedAt: startedAt,
	}

	if err := e.validateExecution(view, result); err != nil {
		return result, err
	}
	result.ViewName = view.Name

	runCtx := logger.RunContext{
		RunID:     result.RunID,
		ViewName:  view.Name,
		StepIndex: -1,
		DryRun:    e.opts.DryRun,
	}

	if e.outputModule != nil {
		defer e.closeModule(runCtx, StageOutput, e.outputModule)
	}

	records, err := e.executeSource(ctx, runCtx, result)
	if err != nil {
		logger.LogRunEnd(runCtx, StatusError, 0, time.Since(startedAt))
		return result, err
	}
	result.RecordsLoaded = len(records)
	logger.LogRunStart(runCtx, len(records))

	list := entitylist.NewRecordList(records,
		entitylist.WithSearchField(e.searchField(view)),
		entitylist.WithPermissiveDescriptors(view.Permissive || e.opts.Permissive),
	)

	matched, err := e.executeSteps(ctx, runCtx, view.Steps, list, result)
	if err != nil {
		logger.LogRunEnd(runCtx, StatusError, len(list.Result()), time.Since(startedAt))
		return result, err
	}
	result.RecordsMatched = len(matched)

	if err := e.executeOutput(ctx, runCtx, matched, result); err != nil {
		logger.LogRunEnd(runCtx, StatusError, len(matched), time.Since(startedAt))
		return result, err
	}

	result.Status = StatusSuccess
	result.CompletedAt = time.Now()
	logger.LogRunEnd(runCtx, StatusSuccess, len(matched), time.Since(startedAt))
	return result, nil
}

func (e *Executor) searchField(view *grid.View) string {
	if view.SearchField != "" {
		return view.SearchField
	}
	if e.opts.SearchField != "" {
		return e.opts.SearchField
	}
	return grid.DefaultSearchField
}

// validateExecution checks the view and modules before execution.
func (e *Executor) validateExecution(view *grid.View, result *grid.ExecutionResult) error {
	var err error
	switch {
	case view == nil:
		err = ErrNilView
	case e.inputModule == nil:
		err = ErrNilInputModule
	case e.outputModule == nil && !e.opts.DryRun:
		err = ErrNilOutputModule
	default:
		return nil
	}

	classified := errhandling.NewConfigError(err.Error(), err)
	logger.LogError("view execution failed", logger.ErrorContext{
		RunID:     result.RunID,
		StepIndex: -1,
		ErrorCode: classified.Code,
		Err:       err,
	})
	failResult(result, classified, "", -1)
	return classified
}

// executeSource fetches records and closes the source module.
func (e *Executor) executeSource(ctx context.Context, runCtx logger.RunContext, result *grid.ExecutionResult) ([]grid.Record, error) {
	runCtx.Stage = StageSource

	start := time.Now()
	records, err := e.inputModule.Fetch(ctx)
	e.closeModule(runCtx, StageSource, e.inputModule)

	if err != nil {
		err = classify(err, func(err error) *errhandling.ClassifiedError {
			return errhandling.NewInputError("fetching records", err)
		})
		e.logStageError(runCtx, "source module execution failed", err)
		failResult(result, err, StageSource, -1)
		return nil, fmt.Errorf("executing source module: %w", err)
	}

	logger.WithRun(runCtx).Debug("source module completed",
		slog.Int("records", len(records)),
		slog.Duration("duration", time.Since(start)),
	)
	return records, nil
}

// executeSteps replays the steps in order and returns the final result.
// The first rejected step stops the run.
func (e *Executor) executeSteps(ctx context.Context, runCtx logger.RunContext, steps []grid.Step, list *entitylist.RecordList, result *grid.ExecutionResult) ([]grid.Record, error) {
	runCtx.Stage = StageStep

	current := list.Result()
	for i, step := range steps {
		runCtx.StepIndex = i
		if err := ctx.Err(); err != nil {
			err = classify(err, nil)
			e.logStageError(runCtx, "view execution canceled", err)
			failResult(result, err, StageStep, i)
			return nil, err
		}

		var err error
		switch step.Kind {
		case grid.StepSearch:
			if step.Search.FieldName != "" {
				current, err = list.ApplySearchValue(step.Search.Value, step.Search.FieldName)
			} else {
				current, err = list.ApplySearchValue(step.Search.Value)
			}
		case grid.StepFilters:
			current, err = list.ApplyFiltersValue(step.Filters)
		default:
			err = errhandling.NewConfigError(fmt.Sprintf("step %d", i), fmt.Errorf("%w: %q", ErrUnknownStep, step.Kind))
		}

		if err != nil {
			err = classify(err, nil)
			e.logStageError(runCtx, "step rejected", err)
			failResult(result, err, StageStep, i)
			return nil, fmt.Errorf("executing step %d: %w", i, err)
		}

		active := len(list.ActiveFilters())
		result.Steps = append(result.Steps, grid.StepResult{
			Index:         i,
			Kind:          step.Kind,
			ActiveFilters: active,
			Records:       len(current),
		})
		logger.LogStepEnd(runCtx, string(step.Kind), active, len(current))
	}
	return current, nil
}

// executeOutput sends records to the output module. In dry-run mode the
// output is skipped and nothing is written.
func (e *Executor) executeOutput(ctx context.Context, runCtx logger.RunContext, records []grid.Record, result *grid.ExecutionResult) error {
	runCtx.Stage = StageOutput

	if e.opts.DryRun {
		logger.WithRun(runCtx).Debug("dry-run mode: skipping output module",
			slog.Int("records_would_write", len(records)),
		)
		return nil
	}

	start := time.Now()
	written, err := e.outputModule.Send(ctx, records)
	result.RecordsWritten = written
	if err != nil {
		err = classify(err, func(err error) *errhandling.ClassifiedError {
			return errhandling.NewOutputError("writing records", err)
		})
		e.logStageError(runCtx, "output module execution failed", err)
		failResult(result, err, StageOutput, -1)
		return fmt.Errorf("executing output module: %w", err)
	}

	logger.WithRun(runCtx).Debug("output module completed",
		slog.Int("records_written", written),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// classify returns err classified, using wrap for unclassified errors.
// Cancellation keeps its own code.
func classify(err error, wrap func(error) *errhandling.ClassifiedError) error {
	var classified *errhandling.ClassifiedError
	if errors.As(err, &classified) || wrap == nil ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errhandling.ClassifyError(err)
	}
	return wrap(err)
}

func (e *Executor) logStageError(runCtx logger.RunContext, message string, err error) {
	logger.LogError(message, logger.ErrorContext{
		RunID:     runCtx.RunID,
		ViewName:  runCtx.ViewName,
		Stage:     runCtx.Stage,
		StepIndex: runCtx.StepIndex,
		ErrorCode: errhandling.ErrorCode(err),
		Err:       err,
	})
}

func failResult(result *grid.ExecutionResult, err error, stage string, stepIndex int) {
	result.Status = StatusError
	result.CompletedAt = time.Now()
	result.Error = &grid.ExecutionError{
		Code:      errhandling.ErrorCode(err),
		Message:   err.Error(),
		Stage:     stage,
		StepIndex: stepIndex,
	}
}

type moduleCloser interface {
	Close() error
}

// closeModule closes a module and logs any error.
func (e *Executor) closeModule(runCtx logger.RunContext, stage string, m moduleCloser) {
	if err := m.Close(); err != nil {
		logger.Warn("failed to close module",
			slog.String("run_id", runCtx.RunID),
			slog.String("stage", stage),
			slog.String("error", err.Error()),
		)
	}
}
