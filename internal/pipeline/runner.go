// Package pipeline wires one pipeline run: watermark, fetch, filter, transform,
// submit, watermark again.
package pipeline

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/pinsync/internal/domain"
	"github.com/MrSnakeDoc/pinsync/internal/logger"
	"github.com/MrSnakeDoc/pinsync/internal/watermark"
)

// Source lists documents updated after the given watermark.
type Source interface {
	FetchDocuments(ctx context.Context, updatedAfter, location string) ([]domain.Document, error)
}

// Sink submits one bookmark.
type Sink interface {
	Add(ctx context.Context, sub domain.Submission) error
}

// Options tune a Runner. Now is injectable for tests and defaults to
// time.Now.
type Options struct {
	SourceTag string
	Location  string
	FetchAll  bool // clear the stored watermark before this run
	Now       func() time.Time
}

// Report summarizes one run. Per-document outcomes replace the old behavior
// of silently swallowing errors: a bad record still never aborts the batch,
// but its failure is visible here.
type Report struct {
	StartedAt         time.Time        `json:"started_at"`
	FinishedAt        time.Time        `json:"finished_at"`
	Fetched           int              `json:"fetched"`
	Submitted         int              `json:"submitted"`
	Skipped           int              `json:"skipped"`
	Failed            int              `json:"failed"`
	WatermarkAdvanced bool             `json:"watermark_advanced"`
	FetchError        string           `json:"fetch_error,omitempty"`
	Outcomes          []domain.Outcome `json:"outcomes,omitempty"`
}

type Runner struct {
	source Source
	sink   Sink
	store  watermark.Store
	logger logger.Logger
	opts   Options
}

func NewRunner(source Source, sink Sink, store watermark.Store, log logger.Logger, opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{
		source: source,
		sink:   sink,
		store:  store,
		logger: log,
		opts:   opts,
	}
}

// Run executes one synchronization pass. The returned error covers watermark
// store I/O only; fetch and submission failures are contained in the report.
//
// Watermark policy: the fetch outcome is a tri-state. Success with documents
// and success with an empty result set both advance the watermark to the
// current wall-clock time; a failed fetch keeps the prior watermark so the
// next run re-queries the same window. Documents collected before a
// pagination failure are still submitted: replace=no makes re-submission on
// the retried window harmless.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: r.opts.Now()}

	if r.opts.FetchAll {
		r.logger.Info("discarding stored watermark, fetching full history")
		if err := r.store.Clear(ctx); err != nil {
			return nil, err
		}
	}

	mark, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if mark != "" {
		r.logger.Info("fetching documents updated after watermark",
			logger.String("watermark", mark))
	} else {
		r.logger.Info("no watermark set, fetching full history")
	}

	docs, fetchErr := r.source.FetchDocuments(ctx, mark, r.opts.Location)
	report.Fetched = len(docs)

	if fetchErr != nil {
		r.logger.Error("failed to fetch documents from readwise",
			logger.Int("collected", len(docs)),
			logger.Error(fetchErr))
		report.FetchError = fetchErr.Error()
	} else {
		r.logger.Info("documents returned from readwise",
			logger.Int("count", len(docs)))
		if err := r.store.Save(ctx, r.opts.Now().UTC().Format(time.RFC3339)); err != nil {
			return report, err
		}
		report.WatermarkAdvanced = true
	}

	for _, doc := range docs {
		outcome := r.processDocument(ctx, doc)
		report.Outcomes = append(report.Outcomes, outcome)
		switch outcome.Status {
		case domain.StatusSubmitted:
			report.Submitted++
		case domain.StatusSkipped:
			report.Skipped++
		case domain.StatusFailed:
			report.Failed++
		}
	}

	report.FinishedAt = r.opts.Now()
	r.logger.Info("run finished",
		logger.Int("fetched", report.Fetched),
		logger.Int("submitted", report.Submitted),
		logger.Int("skipped", report.Skipped),
		logger.Int("failed", report.Failed))
	return report, nil
}

// processDocument handles one document independently of the rest of the
// batch. Every path returns an outcome; nothing propagates.
func (r *Runner) processDocument(ctx context.Context, doc domain.Document) domain.Outcome {
	outcome := domain.Outcome{DocumentID: doc.ID, Title: doc.Title}

	ok, reason := domain.ShouldExport(doc)
	if !ok {
		r.logger.Info("ignoring document",
			logger.String("title", doc.Title),
			logger.String("reason", reason))
		outcome.Status = domain.StatusSkipped
		outcome.Reason = reason
		return outcome
	}

	sub, err := domain.NewSubmission(doc, r.opts.SourceTag)
	if err != nil {
		r.logger.Warn("failed to build submission",
			logger.String("title", doc.Title),
			logger.Error(err))
		outcome.Status = domain.StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}

	if err := r.sink.Add(ctx, sub); err != nil {
		outcome.Status = domain.StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.Status = domain.StatusSubmitted
	return outcome
}
