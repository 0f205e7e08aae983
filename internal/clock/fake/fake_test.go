package fake_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/activator/internal/clock/fake"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestClockAfter(t *testing.T) {
	assert := assert.New(t)
	c := fake.NewClock(t0)

	var got []string
	c.After(2*time.Second, func() { got = append(got, "b") })
	c.After(1*time.Second, func() { got = append(got, "a") })
	assert.Equal([]time.Duration{1 * time.Second, 2 * time.Second}, c.Pending())

	c.Advance(1500 * time.Millisecond)
	assert.Equal([]string{"a"}, got)
	assert.Equal(t0.Add(1500*time.Millisecond), c.Now())

	c.Advance(500 * time.Millisecond)
	assert.Equal([]string{"a", "b"}, got)
	assert.Empty(c.Pending())
}

func TestClockCancel(t *testing.T) {
	c := fake.NewClock(t0)

	called := false
	h := c.After(time.Second, func() { called = true })
	c.Cancel(h)
	c.Advance(time.Hour)

	assert.False(t, called)
}

func TestClockCancelFromCallback(t *testing.T) {
	c := fake.NewClock(t0)

	called := false
	h := c.After(2*time.Second, func() { called = true })
	c.After(time.Second, func() { c.Cancel(h) })
	c.Advance(2 * time.Second)

	assert.False(t, called)
}

func TestClockEvery(t *testing.T) {
	assert := assert.New(t)
	c := fake.NewClock(t0)

	calls := 0
	h := c.Every(time.Second, func() { calls++ })
	c.Advance(3500 * time.Millisecond)
	assert.Equal(3, calls)

	c.Cancel(h)
	c.Advance(10 * time.Second)
	assert.Equal(3, calls)
}

func TestClockCallbacksScheduledFromCallbacks(t *testing.T) {
	c := fake.NewClock(t0)

	var at []time.Duration
	c.After(time.Second, func() {
		at = append(at, c.Now().Sub(t0))
		c.After(time.Second, func() { at = append(at, c.Now().Sub(t0)) })
	})
	c.Advance(5 * time.Second)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, at)
}

func TestClockGo(t *testing.T) {
	assert := assert.New(t)
	c := fake.NewClock(t0)

	worked, done := false, false
	c.Go(func() { worked = true }, func() { done = true })
	assert.True(worked)
	assert.False(done)

	c.Advance(0)
	assert.True(done)
}

func TestClockGoWithLatency(t *testing.T) {
	assert := assert.New(t)
	c := fake.NewClock(t0)
	c.SetLatency(2 * time.Second)

	done := false
	c.Go(func() {}, func() { done = true })
	c.Advance(time.Second)
	assert.False(done)

	c.Advance(time.Second)
	assert.True(done)
}
