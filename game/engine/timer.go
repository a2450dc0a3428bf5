package engine

import (
	"fmt"
	"time"
)

// CountdownOptions configures a Countdown.
type CountdownOptions struct {
	Limit     int
	Interval  time.Duration
	Scheduler Scheduler

	// OnTick receives the remaining seconds after each non-final tick.
	OnTick func(remaining int)
	// OnExpire is called exactly once when remaining reaches zero.
	OnExpire func()
	// Serialize wraps every scheduled tick, letting the owner run it under
	// its own lock. Nil runs ticks directly.
	Serialize func(fn func())
}

// Countdown is a per-level timer. It is not safe for concurrent use; the
// owner serializes calls and ticks through Serialize.
type Countdown struct {
	limit     int
	remaining int
	status    TimerStatus
	started   bool

	interval  time.Duration
	scheduler Scheduler
	task      TaskHandle
	gen       uint64

	onTick    func(int)
	onExpire  func()
	serialize func(func())
}

// NewCountdown returns an idle countdown holding the full limit.
func NewCountdown(opts CountdownOptions) *Countdown {
	if opts.Limit <= 0 {
		opts.Limit = DefaultTimeLimit
	}
	if opts.Interval <= 0 {
		opts.Interval = TickInterval
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTickerScheduler()
	}
	if opts.Serialize == nil {
		opts.Serialize = func(fn func()) { fn() }
	}
	return &Countdown{
		limit:     opts.Limit,
		remaining: opts.Limit,
		status:    TimerIdle,
		interval:  opts.Interval,
		scheduler: opts.Scheduler,
		onTick:    opts.OnTick,
		onExpire:  opts.OnExpire,
		serialize: opts.Serialize,
	}
}

// Start begins ticking from idle or paused. It is a no-op while running or
// after expiry and reports whether a new run was scheduled.
func (c *Countdown) Start() bool {
	if c.status == TimerRunning || c.status == TimerExpired {
		return false
	}
	c.status = TimerRunning
	c.started = true
	c.gen++
	gen := c.gen
	c.task = c.scheduler.Every(c.interval, func() {
		c.serialize(func() { c.fire(gen) })
	})
	return true
}

// Stop pauses a running countdown, keeping the remaining time.
func (c *Countdown) Stop() {
	if c.status != TimerRunning {
		return
	}
	c.cancel()
	c.status = TimerPaused
}

// Reset returns to idle with the full limit from any state.
func (c *Countdown) Reset() {
	c.cancel()
	c.gen++
	c.remaining = c.limit
	c.status = TimerIdle
	c.started = false
}

func (c *Countdown) cancel() {
	if c.task != nil {
		c.task.Cancel()
		c.task = nil
	}
}

// fire handles one tick. Ticks from a cancelled run carry an old generation
// and are dropped.
func (c *Countdown) fire(gen uint64) {
	if gen != c.gen || c.status != TimerRunning {
		return
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.status = TimerExpired
		c.cancel()
		if c.onExpire != nil {
			c.onExpire()
		}
		return
	}
	if c.onTick != nil {
		c.onTick(c.remaining)
	}
}

func (c *Countdown) Remaining() int      { return c.remaining }
func (c *Countdown) Limit() int          { return c.limit }
func (c *Countdown) Status() TimerStatus { return c.status }

// Started reports whether the countdown has run since the last reset.
func (c *Countdown) Started() bool { return c.started }

// View returns the snapshot form of the countdown.
func (c *Countdown) View() TimerView {
	return TimerView{
		Remaining: c.remaining,
		Limit:     c.limit,
		Clock:     FormatClock(c.remaining),
		Status:    c.status,
		Started:   c.started,
	}
}

// FormatClock renders seconds as zero padded MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
