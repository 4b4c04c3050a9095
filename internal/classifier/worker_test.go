package classifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

type recordingProcessor struct {
	mu    sync.Mutex
	lines []string
	block chan struct{}
	err   error
}

func (r *recordingProcessor) Process(_ context.Context, line string) (Outcome, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	return OutcomeStored, r.err
}

func TestWorkerProcessesInOrder(t *testing.T) {
	proc := &recordingProcessor{}
	w := NewWorker(proc, 8, nil)
	go w.Run(context.Background())

	for _, l := range []string{"a", "b", "c"} {
		assert.True(t, w.Submit(l))
	}
	w.Close()

	assert.Equal(t, []string{"a", "b", "c"}, proc.lines)
}

func TestWorkerDropsWhenFull(t *testing.T) {
	proc := &recordingProcessor{block: make(chan struct{})}
	w := NewWorker(proc, 1, nil)
	go w.Run(context.Background())

	// First line is picked up by Run and blocks; the second fills the queue.
	assert.True(t, w.Submit("first"))
	assert.Eventually(t, func() bool { return len(w.queue) == 0 }, timeout, tick)
	assert.True(t, w.Submit("second"))
	assert.False(t, w.Submit("third"))

	close(proc.block)
	w.Close()
	assert.Equal(t, []string{"first", "second"}, proc.lines)
}

func TestWorkerRejectsAfterClose(t *testing.T) {
	w := NewWorker(&recordingProcessor{}, 4, nil)
	go w.Run(context.Background())
	w.Close()
	w.Close()

	assert.False(t, w.Submit("late"))
}

func TestWorkerSurvivesProcessErrors(t *testing.T) {
	proc := &recordingProcessor{err: errors.New("boom")}
	w := NewWorker(proc, 4, nil)
	go w.Run(context.Background())

	w.Submit("one")
	w.Submit("two")
	w.Close()

	assert.Len(t, proc.lines, 2)
}
