package anim

import (
	"sync"
	"time"
)

// Waiter suspends the runner between stages. Wait returns true when the
// suspension elapsed normally and false when the stop signal fired first.
type Waiter interface {
	Wait(stop <-chan struct{}) bool
}

// StageWaiter is the two-state wait primitive behind the runner's pacing:
// timer-based when a positive speed is set, externally-signaled when the
// speed is zero or manual mode is forced. The runner's control flow is
// identical in both states.
type StageWaiter struct {
	mu       sync.Mutex
	duration time.Duration
	speed    float64
	manual   bool

	// advance is unbuffered so each signal satisfies at most one pending
	// wait: a signal with no waiter pending is dropped, and rapid signals
	// during a single suspension never skip stages.
	advance chan struct{}
}

// NewStageWaiter creates a waiter with the given base stage duration and
// speed multiplier. A speed of zero selects manual pacing.
func NewStageWaiter(duration time.Duration, speed float64) *StageWaiter {
	return &StageWaiter{
		duration: duration,
		speed:    speed,
		advance:  make(chan struct{}),
	}
}

// SetSpeed changes the speed multiplier. Zero switches to manual pacing.
// The new speed applies from the next suspension.
func (w *StageWaiter) SetSpeed(speed float64) {
	w.mu.Lock()
	w.speed = speed
	w.mu.Unlock()
}

// SetManual forces or releases manual pacing regardless of speed.
func (w *StageWaiter) SetManual(manual bool) {
	w.mu.Lock()
	w.manual = manual
	w.mu.Unlock()
}

// Advance satisfies exactly one pending manual wait. With no wait pending
// the signal is a no-op.
func (w *StageWaiter) Advance() {
	select {
	case w.advance <- struct{}{}:
	default:
	}
}

// Wait suspends until the stage delay elapses (timer pacing), an Advance
// arrives (manual pacing), or stop fires.
func (w *StageWaiter) Wait(stop <-chan struct{}) bool {
	w.mu.Lock()
	manual := w.manual || w.speed <= 0
	delay := w.duration
	if !manual {
		delay = time.Duration(float64(w.duration) / w.speed)
	}
	w.mu.Unlock()

	if manual {
		select {
		case <-w.advance:
			return true
		case <-stop:
			return false
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-stop:
		return false
	}
}
