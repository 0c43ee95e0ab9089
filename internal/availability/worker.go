// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metrics"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// Writer is the store surface the Worker writes through.
// Satisfied by *store.Store.
type Writer interface {
	UpsertProviders(ctx context.Context, providers []models.StreamingProvider) (map[int64]string, error)
	ReplaceAvailability(ctx context.Context, titleID, region string, records []models.TitleAvailability) error
}

// ErrorSink receives jobs that could not be persisted.
type ErrorSink interface {
	Report(ctx context.Context, job Job, err error)
}

// LogErrorSink logs failures and counts them.
type LogErrorSink struct {
	Logger zerolog.Logger
}

// Report implements ErrorSink.
func (s LogErrorSink) Report(_ context.Context, job Job, err error) {
	metrics.AvailabilityWrites.WithLabelValues("failure").Inc()
	s.Logger.Warn().
		Err(err).
		Str("title_id", job.TitleID).
		Str("region", job.Region).
		Int("pairs", len(job.Availability)).
		Msg("availability persistence failed")
}

// Worker consumes availability jobs and writes them to the store.
// It implements suture.Service.
type Worker struct {
	messages <-chan *message.Message
	store    Writer
	errs     ErrorSink
	timeout  time.Duration
	logger   zerolog.Logger
	name     string
}

// NewWorker creates a worker reading from q. timeout bounds the store
// writes of a single job.
func NewWorker(q *Queue, store Writer, timeout time.Duration, errs ErrorSink) *Worker {
	return newWorker(q.Messages(), store, timeout, errs)
}

func newWorker(messages <-chan *message.Message, store Writer, timeout time.Duration, errs ErrorSink) *Worker {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := logging.WithComponent("availability")
	if errs == nil {
		errs = LogErrorSink{Logger: logger}
	}
	return &Worker{
		messages: messages,
		store:    store,
		errs:     errs,
		timeout:  timeout,
		logger:   logger,
		name:     "availability-worker",
	}
}

// Serve implements suture.Service. It returns suture.ErrDoNotRestart once
// the queue has been closed.
func (w *Worker) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-w.messages:
			if !ok {
				w.logger.Info().Msg("availability queue closed, worker stopping")
				return suture.ErrDoNotRestart
			}
			w.handle(ctx, msg)
		}
	}
}

// String implements fmt.Stringer for suture's logs.
func (w *Worker) String() string {
	return w.name
}

// handle processes one message and always acknowledges it.
func (w *Worker) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	if id := msg.Metadata.Get(metadataRequestID); id != "" {
		ctx = logging.ContextWithRequestID(ctx, id)
	}
	if id := msg.Metadata.Get(metadataCorrelationID); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	var job Job
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		w.errs.Report(ctx, job, fmt.Errorf("decode job %s: %w", msg.UUID, err))
		return
	}
	if job.Empty() {
		metrics.AvailabilityWrites.WithLabelValues("skipped").Inc()
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := persist(jobCtx, w.store, job); err != nil {
		w.errs.Report(ctx, job, err)
		return
	}
	metrics.AvailabilityWrites.WithLabelValues("success").Inc()
	logging.Ctx(ctx).Debug().
		Str("title_id", job.TitleID).
		Str("region", job.Region).
		Int("pairs", len(job.Availability)).
		Msg("availability persisted")
}

// persist upserts the job's distinct providers, then replaces the title's
// availability in the job's region.
func persist(ctx context.Context, store Writer, job Job) error {
	if job.TitleID == "" || job.Region == "" {
		return errors.New("job missing title or region")
	}

	seen := make(map[int64]bool, len(job.Availability))
	providers := make([]models.StreamingProvider, 0, len(job.Availability))
	for _, a := range job.Availability {
		if seen[a.ProviderID] {
			continue
		}
		seen[a.ProviderID] = true
		providers = append(providers, models.StreamingProvider{
			TMDBProviderID: a.ProviderID,
			Name:           a.Name,
			LogoURL:        a.LogoURL,
		})
	}

	ids, err := store.UpsertProviders(ctx, providers)
	if err != nil {
		return fmt.Errorf("upsert providers: %w", err)
	}

	records := make([]models.TitleAvailability, 0, len(job.Availability))
	for _, a := range job.Availability {
		id, ok := ids[a.ProviderID]
		if !ok {
			continue
		}
		records = append(records, models.TitleAvailability{
			TitleID:          job.TitleID,
			ProviderID:       id,
			Region:           job.Region,
			AvailabilityType: a.AvailabilityType,
			WatchLink:        job.Link,
		})
	}

	if err := store.ReplaceAvailability(ctx, job.TitleID, job.Region, records); err != nil {
		return fmt.Errorf("replace availability: %w", err)
	}
	return nil
}

// Direct persists availability synchronously on the caller's goroutine.
// The operator CLI uses it where no Worker runs.
type Direct struct {
	Store Writer
}

// Enqueue implements the orchestrator's availability sink.
func (d Direct) Enqueue(ctx context.Context, titleID, region string, providers models.WatchProviders) error {
	job := Job{TitleID: titleID, Region: region, Link: providers.Link, Availability: providers.Availability}
	if job.Empty() {
		return nil
	}
	return persist(ctx, d.Store, job)
}
