package qa

import (
	"context"
	"errors"
	"testing"
	"time"
)

func startPool(t *testing.T, cfg PoolConfig, gen Generator) *Pool {
	t.Helper()
	pool := NewPool(cfg, gen, &nopLogger{})
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { pool.Stop(context.Background()) })
	return pool
}

func TestPool_Submit(t *testing.T) {
	pool := startPool(t, DefaultPoolConfig(), &fakeGenerator{})

	answer, err := pool.Submit(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if answer != "answer to hello" {
		t.Errorf("Submit() = %q, want %q", answer, "answer to hello")
	}
}

func TestPool_GeneratorError(t *testing.T) {
	pool := startPool(t, DefaultPoolConfig(), &fakeGenerator{err: errModelDown})

	_, err := pool.Submit(context.Background(), "hello")
	if !errors.Is(err, errModelDown) {
		t.Errorf("Submit() error = %v, want %v", err, errModelDown)
	}
}

func TestPool_QueueFull(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	defer close(gen.release)

	pool := startPool(t, PoolConfig{NumWorkers: 1, QueueSize: 0, ProcessTimeout: time.Minute}, gen)

	// Occupy the only worker.
	go pool.Submit(context.Background(), "first")
	deadline := time.Now().Add(2 * time.Second)
	for gen.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("worker never picked up the first job")
		}
		time.Sleep(5 * time.Millisecond)
	}

	_, err := pool.Submit(context.Background(), "second")
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Submit() error = %v, want %v", err, ErrQueueFull)
	}
}

func TestPool_CallerCancellation(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	defer close(gen.release)

	pool := startPool(t, DefaultPoolConfig(), gen)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := pool.Submit(ctx, "slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestPool_ProcessTimeout(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	defer close(gen.release)

	pool := startPool(t, PoolConfig{NumWorkers: 1, QueueSize: 1, ProcessTimeout: 30 * time.Millisecond}, gen)

	_, err := pool.Submit(context.Background(), "slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestPool_StopRejectsWork(t *testing.T) {
	pool := NewPool(DefaultPoolConfig(), &fakeGenerator{}, &nopLogger{})
	if _, err := pool.Submit(context.Background(), "early"); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("Submit() before Start error = %v, want %v", err, ErrPoolStopped)
	}

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := pool.Start(context.Background()); err == nil {
		t.Error("second Start() error = nil, want error")
	}
	if !pool.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	if err := pool.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if pool.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	if _, err := pool.Submit(context.Background(), "late"); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("Submit() after Stop error = %v, want %v", err, ErrPoolStopped)
	}
}

func TestPool_StopCancelsInFlight(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	defer close(gen.release)

	pool := NewPool(PoolConfig{NumWorkers: 1, QueueSize: 1, ProcessTimeout: time.Minute}, gen, &nopLogger{})
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := pool.Submit(context.Background(), "stuck")
		errCh <- err
	}()

	for gen.calls.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("Submit() error = nil after Stop, want error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Submit() did not return after Stop")
	}
}
