// Package debounce implements a trailing-edge debouncer: values set in quick
// succession collapse into the single most recent value, delivered once the
// input has been quiet for the configured delay. There is no leading edge,
// and the final value of a burst is never dropped.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet window used when New is given a non-positive
// delay.
const DefaultDelay = 250 * time.Millisecond

// Debouncer forwards the last value of every quiet window on C.
type Debouncer[T comparable] struct {
	delay time.Duration
	out   chan T

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	armed   bool
	last    T
	emitted bool
	stopped bool
}

// New returns a debouncer with the given quiet window.
func New[T comparable](delay time.Duration) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{
		delay: delay,
		out:   make(chan T, 1),
	}
}

// C delivers debounced values. The channel has a one-element buffer; if a
// newer value fires before the previous one was read, the newer value
// replaces it.
func (d *Debouncer[T]) C() <-chan T {
	return d.out
}

// Set feeds a value. Setting a value equal to the pending one does not push
// the deadline further; setting a value equal to the last delivered one while
// idle is a no-op.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.armed {
		if v == d.pending {
			return
		}
		d.pending = v
		d.timer.Reset(d.delay)
		return
	}
	if d.emitted && v == d.last {
		return
	}
	d.pending = v
	d.armed = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
	} else {
		d.timer.Reset(d.delay)
	}
}

// Stop cancels any pending delivery. The debouncer must not be used after
// Stop.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if d.stopped || !d.armed {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.armed = false
	d.last = v
	d.emitted = true
	d.mu.Unlock()

	// Latest wins: displace an unread older value rather than block.
	for {
		select {
		case d.out <- v:
			return
		default:
			select {
			case <-d.out:
			default:
			}
		}
	}
}
