package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"resalescout/internal/scout"

	"github.com/stretchr/testify/assert"
)

type countingRunner struct {
	mu    sync.Mutex
	runs  int
	err   error
	block chan struct{}
}

func (r *countingRunner) Run(context.Context) (scout.Summary, error) {
	r.mu.Lock()
	r.runs++
	r.mu.Unlock()
	if r.block != nil {
		<-r.block
	}
	return scout.Summary{Term: "lego", Found: 2, Alerted: 1}, r.err
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

type trimCountingPublisher struct {
	mu    sync.Mutex
	trims int
}

func (p *trimCountingPublisher) Publish(string, []byte) error { return nil }

func (p *trimCountingPublisher) TrimStreams() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trims++
	return nil
}

func (p *trimCountingPublisher) Close() error { return nil }

func TestWorkerRunOnce(t *testing.T) {
	runner := &countingRunner{}
	pub := &trimCountingPublisher{}

	w := New(runner, pub, time.Hour, true)
	w.Start(context.Background())

	assert.Equal(t, 1, runner.count(), "run-once mode executes exactly one cycle")
	assert.Equal(t, 1, pub.trims, "streams are trimmed after every cycle")
}

func TestWorkerRepeatsOnInterval(t *testing.T) {
	runner := &countingRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		New(runner, nil, 5*time.Millisecond, false).Start(ctx)
	}()

	assert.Eventually(t, func() bool { return runner.count() >= 3 },
		2*time.Second, 5*time.Millisecond, "worker should keep cycling")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

func TestWorkerSurvivesCycleErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("search page unreachable")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		New(runner, nil, 5*time.Millisecond, false).Start(ctx)
	}()

	assert.Eventually(t, func() bool { return runner.count() >= 2 },
		2*time.Second, 5*time.Millisecond, "a failed cycle must not stop the loop")

	cancel()
	<-done
}

func TestWorkerStopsMidWait(t *testing.T) {
	runner := &countingRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		New(runner, nil, time.Hour, false).Start(ctx)
	}()

	assert.Eventually(t, func() bool { return runner.count() == 1 },
		2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not interrupt the interval wait")
	}
}
