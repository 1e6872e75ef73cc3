package fanout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunKeepsTaskOrder(t *testing.T) {
	tasks := []Task[int]{
		{Name: "slow", Run: func(context.Context) (int, error) { time.Sleep(20 * time.Millisecond); return 1, nil }},
		{Name: "fast", Run: func(context.Context) (int, error) { return 2, nil }},
		{Name: "middle", Run: func(context.Context) (int, error) { time.Sleep(5 * time.Millisecond); return 3, nil }},
	}
	results := Run(context.Background(), tasks...)
	require.Len(t, results, 3)
	assert.Equal(t, []int{1, 2, 3}, Successes(log.NewNopLogger(), results))
}

func TestRunIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	results := Run(context.Background(),
		Task[string]{Name: "ok", Run: func(context.Context) (string, error) { return "a", nil }},
		Task[string]{Name: "err", Run: func(context.Context) (string, error) { return "", boom }},
		Task[string]{Name: "panic", Run: func(context.Context) (string, error) { panic("bad row") }},
		Task[string]{Name: "ok2", Run: func(context.Context) (string, error) { return "b", nil }},
	)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.ErrorContains(t, results[2].Err, "panicked")
	assert.Equal(t, []string{"a", "b"}, Successes(log.NewNopLogger(), results))
}

func TestRunPropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	done := make(chan []Result[int])
	go func() {
		done <- Run(ctx, Task[int]{Name: "wait", Run: func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		}})
	}()
	<-started
	cancel()
	select {
	case results := <-done:
		assert.ErrorIs(t, results[0].Err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("task was not cancelled")
	}
}

func TestRunLimit(t *testing.T) {
	var inFlight, peak int32
	ch := make(chan int32, 100)
	tasks := make([]Task[int], 10)
	for i := range tasks {
		tasks[i] = Task[int]{Run: func(context.Context) (int, error) {
			ch <- 1
			time.Sleep(2 * time.Millisecond)
			ch <- -1
			return 0, nil
		}}
	}
	RunLimit(context.Background(), 2, tasks...)
	close(ch)
	for delta := range ch {
		inFlight += delta
		if inFlight > peak {
			peak = inFlight
		}
	}
	assert.LessOrEqual(t, peak, int32(2))
}
