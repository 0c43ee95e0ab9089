// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/metrics"
)

var errUpstream = errors.New("upstream 503")

func tripSettings() Settings {
	return Settings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	b := NewWithSettings("test-opens", tripSettings())
	for i := 0; i < 3; i++ {
		if _, err := b.Execute(func() (any, error) { return nil, errUpstream }); !errors.Is(err, errUpstream) {
			t.Fatalf("call %d error = %v, want upstream error", i, err)
		}
	}

	if got := b.State(); got != "open" {
		t.Fatalf("State() = %q, want open", got)
	}

	called := false
	_, err := b.Execute(func() (any, error) {
		called = true
		return nil, nil
	})
	if !IsRejected(err) {
		t.Errorf("error = %v, want rejection", err)
	}
	if called {
		t.Error("open breaker must not invoke the call")
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-opens", "rejected")); got != 1 {
		t.Errorf("rejected counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-opens")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
}

func TestBreaker_CancellationIsNotFailure(t *testing.T) {
	t.Parallel()

	b := NewWithSettings("test-cancel", tripSettings())
	for i := 0; i < 5; i++ {
		_, _ = b.Execute(func() (any, error) { return nil, context.Canceled })
	}
	if got := b.State(); got != "closed" {
		t.Errorf("State() = %q, want closed", got)
	}
}

func TestDo_Typed(t *testing.T) {
	t.Parallel()

	b := New("test-typed")

	n, err := Do(b, func() (int, error) { return 42, nil })
	if err != nil || n != 42 {
		t.Errorf("Do() = %d, %v, want 42, nil", n, err)
	}

	p, err := Do(b, func() (*string, error) { return nil, nil })
	if err != nil || p != nil {
		t.Errorf("Do(nil pointer) = %v, %v, want nil, nil", p, err)
	}

	_, err = Do(b, func() (string, error) { return "", errUpstream })
	if !errors.Is(err, errUpstream) {
		t.Errorf("Do() error = %v, want upstream error", err)
	}
}
