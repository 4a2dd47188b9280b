package workers

import (
	"contact-lab/contract"
	"contact-lab/errors"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"slices"
	"sync"
	"time"
)

const (
	defaultRestartInterval = 200 * time.Millisecond
	maxRestartDelay        = 30 * time.Second
)

// Supervisor runs every worker in its own goroutine until the context given
// to Run is done or Stop is called. A worker returning nil is finished.
// A worker returning an error or panicking is restarted.
//
// Consecutive failures of a worker double its restart delay, from the
// configured interval up to maxRestartDelay. A worker that stayed up longer
// than maxRestartDelay before failing starts over from the interval.
// Provider delivery runs here, so a panicking listener never silences an
// account for good.
type Supervisor struct {
	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	log      *slog.Logger
	interval time.Duration
	workers  []contract.Worker
	restarts map[string]int
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	return &Supervisor{log: log, interval: restartInterval, restarts: make(map[string]int)}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts the added workers and blocks until all of them returned.
func (s *Supervisor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancel = cancel
	workers := slices.Clone(s.workers)
	s.mu.Unlock()

	for _, worker := range workers {
		s.Start(ctx, worker)
	}
	s.wg.Wait()
}

// Start supervises one more worker under ctx.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	name := contract.GetWorkerName(worker)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		delay := s.interval
		for ctx.Err() == nil {
			startedAt := time.Now()
			err := s.runOnce(ctx, name, worker)
			if ctx.Err() != nil {
				break
			}
			if err == nil {
				s.log.Info(fmt.Sprintf("Worker finished : %s", name))
				return
			}
			if time.Since(startedAt) > maxRestartDelay {
				delay = s.interval
			}
			s.log.Warn("Worker failed, restarting", "name", name,
				"restarts", s.countRestart(name), "delay", delay, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
			delay = min(delay*2, maxRestartDelay)
		}
		s.log.Info(fmt.Sprintf("Stopping : %s", name))
	}()
}

func (s *Supervisor) runOnce(ctx context.Context, name string, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Worker panicked", "name", name, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

func (s *Supervisor) countRestart(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restarts[name]++
	return s.restarts[name]
}

// Restarts returns how many times each worker was restarted, by type name.
func (s *Supervisor) Restarts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.restarts)
}

// Stop cancels every supervised worker. Run returns once they are done.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
