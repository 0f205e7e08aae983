package clock

import (
	"context"
	"sync"
	"time"

	"github.com/slok/activator/internal/log"
)

// LoopConfig is the configuration for the loop.
type LoopConfig struct {
	Logger log.Logger
}

func (c *LoopConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "clock.Loop"})
	return nil
}

// Loop is a real time Clock backed by a turn queue that is drained by Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	timers map[Handle]*time.Timer
	last   Handle
	logger log.Logger
}

var _ Clock = (*Loop)(nil)

// NewLoop returns a new loop. Callbacks will not run until Run is called.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}

	return &Loop{
		wake:   make(chan struct{}, 1),
		timers: map[Handle]*time.Timer{},
		logger: cfg.Logger,
	}, nil
}

// Run drains the turn queue until the context is cancelled. On return all the
// pending timers are stopped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopAll()

	for {
		l.mu.Lock()
		q := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range q {
			if ctx.Err() != nil {
				return nil
			}
			fn()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
		}
	}
}

// Post enqueues fn on the turn queue.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Now returns the current time.
func (l *Loop) Now() time.Time { return time.Now() }

// After runs fn on the turn queue once, after d.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last++
	h := l.last
	l.timers[h] = time.AfterFunc(d, func() {
		l.Post(func() {
			// The handle may have been cancelled while queued.
			if l.release(h) {
				fn()
			}
		})
	})

	return h
}

// Every runs fn on the turn queue every d until the handle is cancelled.
func (l *Loop) Every(d time.Duration, fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last++
	h := l.last
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		l.Post(func() {
			if l.active(h) {
				fn()
			}
		})

		l.mu.Lock()
		if _, ok := l.timers[h]; ok {
			t.Reset(d)
		}
		l.mu.Unlock()
	})
	l.timers[h] = t

	return h
}

// Cancel cancels a scheduled callback.
func (l *Loop) Cancel(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.timers[h]; ok {
		t.Stop()
		delete(l.timers, h)
	}
}

// Go runs work in a new goroutine and posts done to the turn queue when finished.
func (l *Loop) Go(work func(), done func()) {
	go func() {
		work()
		l.Post(done)
	}()
}

func (l *Loop) active(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.timers[h]
	return ok
}

func (l *Loop) release(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.timers[h]
	delete(l.timers, h)
	return ok
}

func (l *Loop) stopAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for h, t := range l.timers {
		t.Stop()
		delete(l.timers, h)
	}
	if len(l.queue) > 0 {
		l.logger.Debugf("Loop stopped with %d queued callbacks", len(l.queue))
	}
	l.queue = nil
}
