// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/metrics"
)

type fakeGC struct {
	mu     sync.Mutex
	err    error
	ratios []float64
}

func (f *fakeGC) RunGC(ratio float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratios = append(f.ratios, ratio)
	return f.err
}

func (f *fakeGC) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ratios)
}

func TestNewStoreGCService_Defaults(t *testing.T) {
	tests := []struct {
		name         string
		interval     time.Duration
		ratio        float64
		wantInterval time.Duration
		wantRatio    float64
	}{
		{name: "explicit", interval: time.Minute, ratio: 0.7, wantInterval: time.Minute, wantRatio: 0.7},
		{name: "zero values", wantInterval: 10 * time.Minute, wantRatio: 0.5},
		{name: "ratio out of range", interval: time.Second, ratio: 1.5, wantInterval: time.Second, wantRatio: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewStoreGCService(&fakeGC{}, tt.interval, tt.ratio)
			if svc.interval != tt.wantInterval || svc.ratio != tt.wantRatio {
				t.Errorf("interval = %v ratio = %v, want %v %v", svc.interval, svc.ratio, tt.wantInterval, tt.wantRatio)
			}
		})
	}
}

func TestStoreGCService_Serve(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{name: "success", result: "success"},
		{name: "failure keeps running", err: errors.New("value log locked"), result: "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc := &fakeGC{err: tt.err}
			svc := NewStoreGCService(gc, 5*time.Millisecond, 0.5)
			before := testutil.ToFloat64(metrics.StoreGCRuns.WithLabelValues(tt.result))

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			deadline := time.Now().Add(time.Second)
			for gc.calls() < 2 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			cancel()

			if err := <-errCh; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
			if gc.calls() < 2 {
				t.Fatalf("RunGC calls = %d, want at least 2", gc.calls())
			}
			after := testutil.ToFloat64(metrics.StoreGCRuns.WithLabelValues(tt.result))
			if after-before < 2 {
				t.Errorf("%s runs delta = %v, want >= 2", tt.result, after-before)
			}
		})
	}
}
