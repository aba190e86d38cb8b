package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/observability"
	"github.com/couchcryptid/storm-vortex-track/internal/track"
	"golang.org/x/sync/errgroup"
)

// TrackLoader acquires the track a job names.
type TrackLoader interface {
	LoadTrack(ctx context.Context, job Job) (*track.Track, error)
}

// Sink delivers serialized tracks to a destination.
type Sink interface {
	Deliver(ctx context.Context, events []domain.OutputEvent) error
}

// Report summarizes one export run.
type Report struct {
	Exported int
	Failed   []Failure // in job order
}

// Failure is a job that could not be exported.
type Failure struct {
	Index int // position in the jobs passed to Run
	Job   Job
	Err   error
}

// Pipeline loads tracks concurrently, serializes them, and hands the batch to
// every sink.
type Pipeline struct {
	loader      TrackLoader
	sinks       []Sink
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	concurrency int
}

// New creates a Pipeline with the given stages and observability.
func New(l TrackLoader, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, concurrency int) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		loader:      l,
		sinks:       sinks,
		logger:      logger,
		metrics:     metrics,
		concurrency: concurrency,
	}
}

// CheckReadiness returns nil once an export run has delivered at least one track.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not exported any tracks yet")
	}
	return nil
}

// Run exports every job. A job that fails to load or serialize is reported
// and skipped; a sink failure aborts the run. Nothing is retried.
func (p *Pipeline) Run(ctx context.Context, jobs []Job) (Report, error) {
	start := time.Now()
	p.logger.Info("export started", "jobs", len(jobs), "concurrency", p.concurrency)

	docs := make([]*domain.TrackDocument, len(jobs))
	errs := make([]error, len(jobs))
	var report Report

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			doc, err := p.export(gctx, job)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.logger.Warn("export failed, skipping track", "storm", job.Storm, "error", err)
				p.metrics.ExportErrors.Inc()
				errs[i] = err
				return nil
			}
			docs[i] = &doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	for i, err := range errs {
		if err != nil {
			report.Failed = append(report.Failed, Failure{Index: i, Job: jobs[i], Err: err})
		}
	}

	events := make([]domain.OutputEvent, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			events = append(events, ToEvent(*doc))
		}
	}
	if len(events) == 0 {
		return report, nil
	}

	for _, sink := range p.sinks {
		if err := sink.Deliver(ctx, events); err != nil {
			p.logger.Error("deliver failed", "error", err, "batch_size", len(events))
			return report, fmt.Errorf("deliver: %w", err)
		}
	}

	report.Exported = len(events)
	p.metrics.TracksExported.Add(float64(len(events)))
	p.metrics.ExportDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("export complete", "exported", report.Exported, "failed", len(report.Failed),
		"duration", time.Since(start))
	return report, nil
}

func (p *Pipeline) export(ctx context.Context, job Job) (domain.TrackDocument, error) {
	tr, err := p.loader.LoadTrack(ctx, job)
	if err != nil {
		return domain.TrackDocument{}, err
	}
	return Serialize(tr)
}
