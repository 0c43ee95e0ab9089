// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

// Package availability persists region-specific streaming availability in
// the background.
//
// Recommendation sessions hand each resolved title's providers to a Queue.
// The Queue publishes a JSON job on an in-process watermill pub/sub and
// returns immediately. A Worker, run under the supervisor's data layer,
// consumes the jobs and writes provider and availability rows to the store.
// Persistence is best-effort: failures are reported to an ErrorSink and the
// message is acknowledged anyway.
package availability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// Topic is the pub/sub topic availability jobs are published on.
const Topic = "title.availability"

// Message metadata keys that carry the publishing request's log identifiers.
const (
	metadataRequestID     = "request_id"
	metadataCorrelationID = "correlation_id"
)

// ErrQueueClosed is returned by Publish after Close.
var ErrQueueClosed = errors.New("availability queue closed")

// Job is one title's availability in one region.
type Job struct {
	TitleID      string                        `json:"title_id"`
	Region       string                        `json:"region"`
	Link         *string                       `json:"link,omitempty"`
	Availability []models.ProviderAvailability `json:"availability"`
}

// Empty reports whether the job has nothing to persist.
func (j Job) Empty() bool {
	return len(j.Availability) == 0
}

// Queue publishes availability jobs on a gochannel pub/sub.
type Queue struct {
	pubsub *gochannel.GoChannel
	sub    <-chan *message.Message

	mu     sync.RWMutex
	closed bool
}

// NewQueue creates the pub/sub and subscribes to Topic up front, so jobs
// published before the Worker starts are buffered rather than dropped.
// buffer sizes the subscriber's output channel.
func NewQueue(buffer int, logger watermill.LoggerAdapter) (*Queue, error) {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = NewLogger(logging.WithComponent("availability"))
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(buffer),
	}, logger)

	sub, err := pubsub.Subscribe(context.Background(), Topic)
	if err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Topic, err)
	}

	return &Queue{pubsub: pubsub, sub: sub}, nil
}

// Enqueue builds a job from a title's region providers and publishes it.
// It has the signature the recommendation orchestrator expects of its
// availability sink.
func (q *Queue) Enqueue(ctx context.Context, titleID, region string, providers models.WatchProviders) error {
	return q.Publish(ctx, Job{
		TitleID:      titleID,
		Region:       region,
		Link:         providers.Link,
		Availability: providers.Availability,
	})
}

// Publish serializes job and hands it to the pub/sub. It does not wait for
// the job to be persisted.
func (q *Queue) Publish(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal availability job: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set(metadataRequestID, id)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(metadataCorrelationID, id)
	}

	if err := q.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish availability job: %w", err)
	}
	return nil
}

// Messages is the subscription the Worker consumes.
func (q *Queue) Messages() <-chan *message.Message {
	return q.sub
}

// Close shuts the pub/sub down. The subscription channel is closed, which
// stops the Worker.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	return q.pubsub.Close()
}
