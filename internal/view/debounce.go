// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the quiescence period before a search fires.
const DefaultDebounceWindow = 300 * time.Millisecond

// Debouncer delays a call until no new Trigger has arrived for the window.
// Each Trigger replaces the pending call, so only the last one fires.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	stopped bool
	running sync.WaitGroup
}

// NewDebouncer creates a debouncer. A non-positive window uses DefaultDebounceWindow.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window}
}

// Window returns the quiescence period.
func (d *Debouncer) Window() time.Duration { return d.window }

// Trigger schedules fn to run after the window, cancelling any call still
// pending. It returns false once the debouncer is stopped.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	scheduled := d.seq
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if d.stopped || d.seq != scheduled {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.running.Add(1)
		d.mu.Unlock()

		defer d.running.Done()
		fn()
	})
	return true
}

// Pending reports whether a call is scheduled and has not fired yet.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the pending call, if any. The debouncer stays usable.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels the pending call, rejects further triggers and waits for a call
// that is already running to return. fn must not call Stop.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.running.Wait()
}
