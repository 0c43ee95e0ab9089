// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package supervisor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
	"go.uber.org/goleak"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeService fails a configured number of times, then runs until canceled.
type fakeService struct {
	name     string
	failures int32
	err      error
	starts   atomic.Int32
}

func (f *fakeService) Serve(ctx context.Context) error {
	n := f.starts.Add(1)
	if n <= f.failures {
		return errors.New("simulated failure")
	}
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeService) String() string { return f.name }

func testLogger() *slog.Logger {
	return slog.New(logging.NewSlogHandler(logging.NewTestLogger(&bytes.Buffer{})))
}

// runTree serves tree for d and waits for it to stop.
func runTree(t *testing.T, tree *SupervisorTree, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	select {
	case err := <-tree.ServeBackground(ctx):
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			t.Errorf("tree exited with %v", err)
		}
	case <-time.After(d + 2*time.Second):
		t.Fatal("tree did not shut down in time")
	}
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(nil, TreeConfig{FailureBackoff: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}

	want := DefaultTreeConfig()
	want.FailureBackoff = time.Second
	if tree.config != want {
		t.Errorf("config = %+v, want %+v", tree.config, want)
	}
}

func TestSupervisorTree_LayersStart(t *testing.T) {
	tests := []struct {
		name string
		add  func(*SupervisorTree, suture.Service) suture.ServiceToken
	}{
		{name: "data layer", add: (*SupervisorTree).AddDataService},
		{name: "api layer", add: (*SupervisorTree).AddAPIService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
			svc := &fakeService{name: tt.name}
			tt.add(tree, svc)

			runTree(t, tree, 150*time.Millisecond)

			if svc.starts.Load() < 1 {
				t.Error("service was not started")
			}
		})
	}
}

func TestSupervisorTree_FailureIsolation(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	worker := &fakeService{name: "flaky-worker", failures: 2}
	server := &fakeService{name: "http-server"}
	tree.AddDataService(worker)
	tree.AddAPIService(server)

	runTree(t, tree, 300*time.Millisecond)

	if got := worker.starts.Load(); got < 3 {
		t.Errorf("worker starts = %d, want at least 3", got)
	}
	if got := server.starts.Load(); got != 1 {
		t.Errorf("server starts = %d, want exactly 1", got)
	}
}

func TestSupervisorTree_DoNotRestart(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})

	done := &fakeService{name: "closed-queue-worker", err: suture.ErrDoNotRestart}
	tree.AddDataService(done)

	runTree(t, tree, 200*time.Millisecond)

	if got := done.starts.Load(); got != 1 {
		t.Errorf("starts = %d, want 1", got)
	}
}

func TestSupervisorTree_RemoveAndWait(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	// Only services added to the root can be removed through the tree.
	svc := &fakeService{name: "removable"}
	token := tree.Root().Add(svc)
	time.Sleep(50 * time.Millisecond)

	if err := tree.RemoveAndWait(token, time.Second); err != nil {
		t.Errorf("RemoveAndWait() error = %v", err)
	}

	cancel()
	<-errCh

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services = %v", report)
	}
}
