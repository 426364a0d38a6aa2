// Package batch normalizes many documents in parallel.
//
// Documents are independent, so the runner is a plain worker pool mapping
// input paths to results. A failure in one document, returned error or panic
// alike, is recorded on that document's result and never stops its siblings.
// Results keep the order of the input paths.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"invoicenorm/internal/logger"
	"invoicenorm/pkg/models"
)

// ErrPanic marks a document whose processing panicked.
var ErrPanic = errors.New("document processing panicked")

// Status summarizes the outcome of one document.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// ProcessFunc builds the record of one input file. Warnings do not fail the
// document but mark it for review.
type ProcessFunc func(ctx context.Context, path string) (rec *models.InvoiceRecord, warnings []string, err error)

// Result is the outcome of one input file.
type Result struct {
	Path     string
	Name     string // Output base name, stable per input path
	Index    int    // Position in the input list
	Record   *models.InvoiceRecord
	Warnings []string
	Err      error
	Status   Status
	Duration time.Duration
}

// Report collects the results of one run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
}

// Counts returns the number of results per status.
func (r *Report) Counts() (success, warning, failed int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusSuccess:
			success++
		case StatusWarning:
			warning++
		default:
			failed++
		}
	}
	return success, warning, failed
}

// Succeeded returns the results that produced a record, in input order.
func (r *Report) Succeeded() []Result {
	var ok []Result
	for _, res := range r.Results {
		if res.Record != nil && res.Err == nil {
			ok = append(ok, res)
		}
	}
	return ok
}

// ProgressFunc is called once per finished document. Calls are serialized.
type ProgressFunc func(done, total int, res Result)

// Runner is a worker pool over a ProcessFunc.
type Runner struct {
	process  ProcessFunc
	workers  int
	progress ProgressFunc
}

// job is one input file queued for a worker.
type job struct {
	path  string
	name  string
	index int
}

// NewRunner creates a runner with the given number of workers (at least one).
func NewRunner(process ProcessFunc, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		process: process,
		workers: workers,
	}
}

// OnProgress registers a progress callback.
func (r *Runner) OnProgress(fn ProgressFunc) *Runner {
	r.progress = fn
	return r
}

// Run processes every path and returns once all documents are done.
func (r *Runner) Run(ctx context.Context, paths []string) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Results:   make([]Result, len(paths)),
	}
	log := logger.WithRunID("batch", report.RunID)

	names := OutputNames(paths)
	jobs := make(chan job, len(paths))

	var mu sync.Mutex
	processed := 0

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for j := range jobs {
				log.Debug().
					Int("worker", workerID).
					Str("file", j.path).
					Int("index", j.index+1).
					Msg("Worker processing document")

				res := r.runOne(ctx, j)

				// Each index is written by exactly one worker.
				report.Results[j.index] = res

				mu.Lock()
				processed++
				if r.progress != nil {
					r.progress(processed, len(paths), res)
				}
				mu.Unlock()

				event := log.Info()
				if res.Err != nil {
					event = log.Warn().Err(res.Err)
				}
				event.
					Str("file", res.Name).
					Str("status", string(res.Status)).
					Dur("duration", res.Duration).
					Msg("Document processed")
			}
		}(w)
	}

	for i, p := range paths {
		jobs <- job{path: p, name: names[i], index: i}
	}
	close(jobs)
	wg.Wait()

	report.FinishedAt = time.Now()
	success, warning, failed := report.Counts()
	log.Info().
		Int("total", len(paths)).
		Int("success", success).
		Int("warnings", warning).
		Int("errors", failed).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Batch processing completed")

	return report
}

// runOne processes a single document, turning panics into errors.
func (r *Runner) runOne(ctx context.Context, j job) (res Result) {
	res = Result{
		Path:   j.path,
		Name:   j.name,
		Index:  j.index,
		Status: StatusError,
	}
	start := time.Now()

	defer func() {
		res.Duration = time.Since(start)
		if p := recover(); p != nil {
			res.Record = nil
			res.Warnings = nil
			res.Err = fmt.Errorf("%w: %v", ErrPanic, p)
			res.Status = StatusError
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	rec, warnings, err := r.process(ctx, j.path)
	if err != nil {
		res.Err = err
		return res
	}
	if rec == nil {
		res.Err = fmt.Errorf("no record produced for %s", j.name)
		return res
	}

	res.Record = rec
	res.Warnings = warnings
	res.Status = StatusSuccess
	if len(warnings) > 0 {
		res.Status = StatusWarning
	}
	return res
}
