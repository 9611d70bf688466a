package restsync

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunsJobsInEnqueueOrder(t *testing.T) {
	q := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	order := make(chan int, 3)
	var dones []<-chan error
	for i := 1; i <= 3; i++ {
		i := i
		dones = append(dones, q.Push("job", func() error {
			order <- i
			return nil
		}))
	}
	for i, done := range dones {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("job %d: %v", i+1, err)
			}
		case <-time.After(time.Second):
			t.Fatalf("job %d never completed", i+1)
		}
	}
	for want := 1; want <= 3; want++ {
		if got := <-order; got != want {
			t.Fatalf("expected job %d, got %d", want, got)
		}
	}
}

func TestJobFailureDoesNotStopConsumer(t *testing.T) {
	q := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	boom := errors.New("boom")
	first := q.Push("failing", func() error { return boom })
	second := q.Push("following", func() error { return nil })

	if err := <-first; !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	select {
	case err := <-second:
		if err != nil {
			t.Fatalf("second job: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("consumer stopped after a failing job")
	}
}

func TestStopParksConsumer(t *testing.T) {
	q := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	q.Stop()
	if q.IsRunning() {
		t.Fatalf("expected not running after Stop")
	}
	ran := make(chan struct{}, 1)
	q.Push("parked", func() error {
		ran <- struct{}{}
		return nil
	})
	select {
	case <-ran:
		t.Fatalf("job ran while stopped")
	case <-time.After(50 * time.Millisecond):
	}

	q.Start()
	if !q.IsRunning() {
		t.Fatalf("expected running after Start")
	}
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("job never ran after Start")
	}
}

func TestPushNowaitFull(t *testing.T) {
	q := New(1)
	// No consumer: the single slot fills and stays full.
	if err := q.PushNowait("first", func() error { return nil }); err != nil {
		t.Fatalf("first push: %v", err)
	}
	if err := q.PushNowait("second", func() error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestCloseFailsPendingJobs(t *testing.T) {
	q := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	go q.Run(ctx)

	q.Stop()
	done := q.Push("stranded", func() error { return nil })
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("pending job never resolved on shutdown")
	}

	if err := q.PushNowait("late", func() error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after shutdown, got %v", err)
	}
}

func TestDefaultSingleton(t *testing.T) {
	if Default() != Default() {
		t.Fatalf("expected one shared default queue")
	}
}
