// Package pool provides a fixed-size pool of concurrent executors for
// asynchronous indexing tasks.
//
// Submit is fire-and-forget: it never blocks the caller, delivers no result,
// and guarantees no ordering between tasks. Task panics are recovered and
// logged at the task boundary so an executor never dies permanently.
package pool

import (
	"log"
	"sync"
)

// DefaultWorkers is the executor count used when none is configured.
const DefaultWorkers = 10

// Task is one unit of asynchronous work.
type Task func()

// Pool runs submitted tasks across a fixed number of executors. Tasks queue
// internally without bound, so Submit never applies backpressure.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Task
	closed bool
	wg     sync.WaitGroup
}

// New starts a pool with the given number of executors.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit queues a task for execution. It never blocks. Tasks submitted after
// Shutdown are dropped.
func (p *Pool) Submit(task Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		log.Printf("pool: task submitted after shutdown, dropped")
		return
	}
	p.queue = append(p.queue, task)
	p.cond.Signal()
}

// Shutdown stops intake, drains already-queued tasks best-effort, and waits
// for all executors to exit.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(task)
	}
}

// run executes one task, containing panics at the task boundary.
func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pool: task panicked: %v", r)
		}
	}()
	task()
}
