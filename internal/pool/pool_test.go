package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsAllTasksOnSingleWorker(t *testing.T) {
	p := New(1)

	var count atomic.Int32
	for i := 0; i < 3; i++ {
		p.Submit(func() { count.Add(1) })
	}
	p.Shutdown()

	assert.Equal(t, int32(3), count.Load(), "no task may be lost")
}

func TestSubmitDoesNotBlock(t *testing.T) {
	p := New(1)
	defer p.Shutdown()

	block := make(chan struct{})
	p.Submit(func() { <-block })

	// The single executor is busy; further submissions must still return
	// immediately.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			p.Submit(func() {})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked the caller")
	}
	close(block)
}

func TestTaskPanicDoesNotKillExecutor(t *testing.T) {
	p := New(1)

	var ran atomic.Bool
	p.Submit(func() { panic("boom") })
	p.Submit(func() { ran.Store(true) })
	p.Shutdown()

	assert.True(t, ran.Load(), "executor must survive a panicking task")
}

func TestShutdownDrainsQueuedTasks(t *testing.T) {
	p := New(2)

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			count.Add(1)
		})
	}
	p.Shutdown()

	wg.Wait()
	assert.Equal(t, int32(50), count.Load())
}

func TestSubmitAfterShutdownIsDropped(t *testing.T) {
	p := New(1)
	p.Shutdown()

	var ran atomic.Bool
	p.Submit(func() { ran.Store(true) })
	time.Sleep(50 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestConcurrentSubmitters(t *testing.T) {
	p := New(4)

	var count atomic.Int32
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				p.Submit(func() { count.Add(1) })
			}
		}()
	}
	wg.Wait()
	p.Shutdown()

	require.Equal(t, int32(200), count.Load())
}
