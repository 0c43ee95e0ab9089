// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metrics"
)

// GarbageCollector reclaims store space. Satisfied by *store.Store.
type GarbageCollector interface {
	RunGC(ratio float64) error
}

// StoreGCService runs value log GC every interval. A failed run is logged
// and counted; it does not stop the service.
type StoreGCService struct {
	store    GarbageCollector
	interval time.Duration
	ratio    float64
	logger   zerolog.Logger
	name     string
}

// NewStoreGCService creates the service. interval defaults to 10m and ratio
// to 0.5, Badger's recommended discard ratio.
func NewStoreGCService(store GarbageCollector, interval time.Duration, ratio float64) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &StoreGCService{
		store:    store,
		interval: interval,
		ratio:    ratio,
		logger:   logging.WithComponent("store-gc"),
		name:     "store-gc",
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *StoreGCService) runOnce() {
	start := time.Now()
	if err := s.store.RunGC(s.ratio); err != nil {
		metrics.StoreGCRuns.WithLabelValues("failure").Inc()
		s.logger.Warn().Err(err).Msg("Store GC failed")
		return
	}
	metrics.StoreGCRuns.WithLabelValues("success").Inc()
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("Store GC completed")
}

func (s *StoreGCService) String() string {
	return s.name
}
