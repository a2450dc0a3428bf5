package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// TaskHandle cancels a scheduled task. Cancel is idempotent.
type TaskHandle interface {
	Cancel()
}

// Scheduler runs a function repeatedly at a fixed interval until cancelled.
type Scheduler interface {
	Every(interval time.Duration, fn func()) TaskHandle
}

// TickerScheduler runs each task on its own goroutine driven by a time.Ticker.
type TickerScheduler struct{}

func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

type cancelTask context.CancelFunc

func (c cancelTask) Cancel() { c() }

// Every starts fn on a ticker. A tick already in flight when Cancel is called
// may still run; callers discard it themselves.
func (s *TickerScheduler) Every(interval time.Duration, fn func()) TaskHandle {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()
	return cancelTask(cancel)
}

// ManualScheduler fires tasks only when Advance is called. It drives the
// countdown deterministically in tests and step-by-step clients.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	fn        func()
	cancelled atomic.Bool
}

func (t *manualTask) Cancel() { t.cancelled.Store(true) }

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every registers fn; the interval is ignored, one Advance step is one tick.
func (s *ManualScheduler) Every(_ time.Duration, fn func()) TaskHandle {
	task := &manualTask{fn: fn}
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
	return task
}

// Advance fires every live task n times. Tasks are run without holding the
// scheduler lock so they may schedule or cancel other tasks.
func (s *ManualScheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		for _, task := range s.live() {
			if !task.cancelled.Load() {
				task.fn()
			}
		}
	}
}

// Active returns the number of tasks that have not been cancelled.
func (s *ManualScheduler) Active() int {
	return len(s.live())
}

func (s *ManualScheduler) live() []*manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	for _, task := range s.tasks {
		if !task.cancelled.Load() {
			kept = append(kept, task)
		}
	}
	s.tasks = kept
	return append([]*manualTask(nil), kept...)
}
