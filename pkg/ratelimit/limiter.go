package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	uber "go.uber.org/ratelimit"
)

// Limiter gates calls to the FRED API. Wait blocks until the next call is
// allowed; callers only ever see added latency, never a rejection.
type Limiter interface {
	// Wait blocks until a call is allowed or ctx is done
	Wait(ctx context.Context) error
	// Reset forgets all recorded calls
	Reset()
}

// Clock is the time source used by the limiters. It matches the clock
// accepted by go.uber.org/ratelimit so one fake drives both strategies.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// contextSleeper is implemented by clocks that can abandon a sleep early.
type contextSleeper interface {
	SleepContext(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SleepContext sleeps for d or until ctx is cancelled.
func (SystemClock) SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func sleep(ctx context.Context, clock Clock, d time.Duration) error {
	if s, ok := clock.(contextSleeper); ok {
		return s.SleepContext(ctx, d)
	}
	clock.Sleep(d)
	return ctx.Err()
}

// SlidingWindow allows at most maxRequests calls in any windowSize span.
// With one request per window it degrades to a minimum-interval scheduler.
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	clock       Clock
	requests    []time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a sliding window limiter on the given clock.
// A nil clock means the system clock.
func NewSlidingWindow(maxRequests int, windowSize time.Duration, clock Clock) *SlidingWindow {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		clock:       clock,
		requests:    make([]time.Time, 0, maxRequests),
	}
}

// Allow records a call and returns true when the window has room.
func (sw *SlidingWindow) Allow() bool {
	_, ok := sw.reserve()
	return ok
}

// reserve records a call if allowed; otherwise it reports how long until
// the oldest call leaves the window.
func (sw *SlidingWindow) reserve() (time.Duration, bool) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.clock.Now()
	sw.cleanOldRequests(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return 0, true
	}

	return sw.requests[0].Add(sw.windowSize).Sub(now), false
}

// Wait blocks until a call is allowed.
func (sw *SlidingWindow) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait, ok := sw.reserve()
		if ok {
			return nil
		}
		if err := sleep(ctx, sw.clock, wait); err != nil {
			return err
		}
	}
}

// Reset clears all recorded requests
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.requests = sw.requests[:0]
}

// cleanOldRequests drops calls that are at least windowSize old
func (sw *SlidingWindow) cleanOldRequests(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	i := 0
	for i < len(sw.requests) && !sw.requests[i].After(cutoff) {
		i++
	}

	if i > 0 {
		copy(sw.requests, sw.requests[i:])
		sw.requests = sw.requests[:len(sw.requests)-i]
	}
}

// LeakyBucket spaces calls evenly at calls/period using go.uber.org/ratelimit.
// Slack is disabled so idle time never buys a burst.
type LeakyBucket struct {
	calls  int
	period time.Duration
	clock  Clock

	mu sync.Mutex
	rl uber.Limiter
}

// NewLeakyBucket creates a leaky bucket limiter. A nil clock means the
// system clock.
func NewLeakyBucket(calls int, period time.Duration, clock Clock) *LeakyBucket {
	if clock == nil {
		clock = SystemClock{}
	}
	lb := &LeakyBucket{calls: calls, period: period, clock: clock}
	lb.rl = lb.build()
	return lb
}

func (lb *LeakyBucket) build() uber.Limiter {
	return uber.New(lb.calls, uber.Per(lb.period), uber.WithoutSlack, uber.WithClock(lb.clock))
}

// Wait takes the next slot. The underlying limiter cannot be interrupted, so
// cancellation is only observed before and after the sleep.
func (lb *LeakyBucket) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lb.mu.Lock()
	rl := lb.rl
	lb.mu.Unlock()

	rl.Take()
	return ctx.Err()
}

// Reset starts a fresh bucket.
func (lb *LeakyBucket) Reset() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.rl = lb.build()
}

// New builds the limiter for a strategy name ("window" or "leaky").
func New(strategy string, calls int, period time.Duration, clock Clock) (Limiter, error) {
	if calls <= 0 || period <= 0 {
		return nil, fmt.Errorf("invalid rate %d per %s", calls, period)
	}
	switch strategy {
	case "", "window":
		return NewSlidingWindow(calls, period, clock), nil
	case "leaky":
		return NewLeakyBucket(calls, period, clock), nil
	default:
		return nil, fmt.Errorf("unknown rate limit strategy %q", strategy)
	}
}
