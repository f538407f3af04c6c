package workerpool

import (
	"sync"

	"github.com/kiteco/activeself/kite-golib/errors"
)

// Job is a unit of work run by the pool.
type Job func() error

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	m       sync.Mutex
	cond    *sync.Cond
	queue   []Job
	active  int
	stopped bool
	errs    errors.Errors
}

// New starts a pool with n workers (at least one).
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{}
	p.cond = sync.NewCond(&p.m)
	for i := 0; i < n; i++ {
		go p.work()
	}
	return p
}

// Add enqueues jobs; it never blocks on job execution.
func (p *Pool) Add(jobs []Job) {
	p.m.Lock()
	defer p.m.Unlock()
	if p.stopped {
		return
	}
	p.queue = append(p.queue, jobs...)
	p.cond.Broadcast()
}

// Wait blocks until every queued job has finished (or been dropped by Stop)
// and returns the errors returned by jobs since the previous Wait.
func (p *Pool) Wait() error {
	p.m.Lock()
	defer p.m.Unlock()
	for (len(p.queue) > 0 && !p.stopped) || p.active > 0 {
		p.cond.Wait()
	}
	errs := p.errs
	p.errs = nil
	if errs == nil {
		return nil
	}
	return errs
}

// Stop drops queued jobs that have not started and shuts the workers down
// once their current job returns.
func (p *Pool) Stop() {
	p.m.Lock()
	defer p.m.Unlock()
	p.stopped = true
	p.queue = nil
	p.cond.Broadcast()
}

func (p *Pool) work() {
	for {
		p.m.Lock()
		for len(p.queue) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped {
			p.m.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		p.active++
		p.m.Unlock()

		err := job()

		p.m.Lock()
		p.active--
		p.errs = errors.Append(p.errs, err)
		p.cond.Broadcast()
		p.m.Unlock()
	}
}
