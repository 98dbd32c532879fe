package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produces
type Result interface {
	GetError() error
}

type queuedJob struct {
	index int
	job   Job
}

type queuedResult struct {
	index  int
	result Result
}

// Pool runs submitted jobs on a fixed number of goroutines.
// Wait returns results in submission order.
type Pool struct {
	workers   int
	jobs      chan queuedJob
	results   chan queuedResult
	submitted int
	collected []queuedResult
	collectWG sync.WaitGroup
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool bound to parent; cancelling parent stops the workers
func NewPool(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers: workers,
		jobs:    make(chan queuedJob, workers*2),
		results: make(chan queuedResult, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines and the result collector
func (p *Pool) Start() {
	p.collectWG.Add(1)
	go func() {
		defer p.collectWG.Done()
		for qr := range p.results {
			p.collected = append(p.collected, qr)
		}
	}()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case qj, ok := <-p.jobs:
			if !ok {
				return
			}
			res := qj.job.Execute(p.ctx)
			select {
			case p.results <- queuedResult{index: qj.index, result: res}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It is a no-op once the pool is cancelled.
// Submit must not be called concurrently with itself or after Wait.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- queuedJob{index: p.submitted, job: job}:
		p.submitted++
	}
}

// Wait closes the queue, waits for the workers and returns results in submission order.
// Slots of jobs that never ran because of cancellation are nil.
func (p *Pool) Wait() []Result {
	close(p.jobs)

	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
	p.cancel()

	results := make([]Result, p.submitted)
	for _, qr := range p.collected {
		results[qr.index] = qr.result
	}
	return results
}

// Shutdown cancels in-flight work and stops the workers
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
