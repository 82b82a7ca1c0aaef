package qa

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, gen Generator, hist *memoryHistory) *Service {
	t.Helper()
	pool := startPool(t, PoolConfig{NumWorkers: 2, QueueSize: 4, ProcessTimeout: 5 * time.Second}, gen)
	return NewService(pool, hist, &nopLogger{})
}

func TestService_Ask(t *testing.T) {
	gen := &fakeGenerator{}
	hist := &memoryHistory{}
	service := newTestService(t, gen, hist)

	answer, err := service.Ask(context.Background(), "  What is Go?  ")
	require.NoError(t, err)
	assert.Equal(t, "What is Go?", answer.Question)
	assert.Equal(t, "answer to What is Go?", answer.Answer)
	assert.Equal(t, uint(1), answer.ID)

	entries, err := hist.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "What is Go?", entries[0].Question)
	assert.Equal(t, "answer to What is Go?", entries[0].Answer)
}

func TestService_AskEmptyInput(t *testing.T) {
	gen := &fakeGenerator{}
	hist := &memoryHistory{}
	service := newTestService(t, gen, hist)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := service.Ask(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyInput, "question %q", q)
	}

	assert.Equal(t, 0, hist.len(), "no history entry for rejected questions")
	assert.Equal(t, int32(0), gen.calls.Load(), "generator must not be called")
}

func TestService_AskGenerationFailure(t *testing.T) {
	hist := &memoryHistory{}
	service := newTestService(t, &fakeGenerator{err: errModelDown}, hist)

	_, err := service.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, 0, hist.len())
}

func TestService_AskHistoryFailure(t *testing.T) {
	hist := &memoryHistory{err: assert.AnError}
	service := newTestService(t, &fakeGenerator{}, hist)

	_, err := service.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestService_AskBusy(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	defer close(gen.release)

	pool := startPool(t, PoolConfig{NumWorkers: 1, QueueSize: 0, ProcessTimeout: time.Minute}, gen)
	service := NewService(pool, &memoryHistory{}, &nopLogger{})

	go service.Ask(context.Background(), "first")
	require.Eventually(t, func() bool { return gen.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err := service.Ask(context.Background(), "second")
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestService_AskCoalescesIdenticalQuestions(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	hist := &memoryHistory{}
	service := newTestService(t, gen, hist)

	const callers = 5
	var wg sync.WaitGroup
	answers := make([]*Answer, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		answers[0], errs[0] = service.Ask(context.Background(), "same")
	}()
	require.Eventually(t, func() bool { return gen.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			answers[i], errs[i] = service.Ask(context.Background(), "same")
		}()
	}

	// Give the followers time to join the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "answer to same", answers[i].Answer)
	}
	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, callers, hist.len(), "every caller records its own entry")
}

func TestService_AskCallerTimeout(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	defer close(gen.release)
	hist := &memoryHistory{}
	service := newTestService(t, gen, hist)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := service.Ask(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, hist.len())
}
