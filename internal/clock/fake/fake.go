package fake

import (
	"sort"
	"sync"
	"time"

	"github.com/slok/activator/internal/clock"
)

var _ clock.Clock = (*Clock)(nil)

type timer struct {
	at     time.Time
	every  time.Duration
	seq    uint64
	fn     func()
	handle clock.Handle
}

// Clock is a deterministic clock for testing. Time only moves with Advance, and
// callbacks run inside Advance on the caller goroutine.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	timers  map[clock.Handle]*timer
	last    clock.Handle
	seq     uint64
	latency time.Duration
}

// NewClock creates a Clock starting at the given time.
func NewClock(start time.Time) *Clock {
	return &Clock{
		now:    start,
		timers: map[clock.Handle]*timer{},
	}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After schedules fn at now+d.
func (c *Clock) After(d time.Duration, fn func()) clock.Handle {
	return c.add(d, 0, fn)
}

// Every schedules fn every d.
func (c *Clock) Every(d time.Duration, fn func()) clock.Handle {
	if d <= 0 {
		d = time.Nanosecond
	}
	return c.add(d, d, fn)
}

// Cancel removes a scheduled callback.
func (c *Clock) Cancel(h clock.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.timers, h)
}

// Go runs work right away and schedules done after the configured latency (zero
// by default), so it runs on a following Advance.
func (c *Clock) Go(work func(), done func()) {
	work()

	c.mu.Lock()
	latency := c.latency
	c.mu.Unlock()
	c.add(latency, 0, done)
}

// SetLatency sets the simulated duration of the work started with Go.
func (c *Clock) SetLatency(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latency = d
}

// Advance moves the clock forward by d, running every callback due in order.
// Callbacks scheduled by other callbacks run too if they are due.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		t := c.nextDue(target)
		if t == nil {
			c.now = target
			c.mu.Unlock()
			return
		}

		c.now = t.at
		if t.every > 0 {
			t.at = t.at.Add(t.every)
			c.seq++
			t.seq = c.seq
		} else {
			delete(c.timers, t.handle)
		}
		fn := t.fn
		c.mu.Unlock()

		fn()
	}
}

// Pending returns the delays, from now, of the scheduled callbacks sorted ascending.
func (c *Clock) Pending() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	ds := make([]time.Duration, 0, len(c.timers))
	for _, t := range c.timers {
		ds = append(ds, t.at.Sub(c.now))
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })

	return ds
}

func (c *Clock) add(d, every time.Duration, fn func()) clock.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last++
	c.seq++
	c.timers[c.last] = &timer{
		at:     c.now.Add(d),
		every:  every,
		seq:    c.seq,
		fn:     fn,
		handle: c.last,
	}

	return c.last
}

func (c *Clock) nextDue(target time.Time) *timer {
	var next *timer
	for _, t := range c.timers {
		if t.at.After(target) {
			continue
		}
		if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}
