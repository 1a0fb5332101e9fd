// Package sched implements the event-dispatch core of the endpoint: a
// shared-resource store for the protocol state machine and peripheral
// handles, plus the run-to-completion tasks that move events from interrupt
// entry points through the state machine and back out as side effects.
package sched

import (
	"sync"

	"github.com/edgelink/lorasched/driver"
	"github.com/edgelink/lorasched/protocol"
)

// Resources is the shared store. It is allocated once at startup and never
// reallocated: the state slot toggles between present and checked out, and
// the timer and clock handles are reached only through short critical
// sections that model the priority-ceiling access of the target scheduler.
type Resources struct {
	state slot

	timerMu sync.Mutex
	timer   driver.LowPowerTimer

	clockMu sync.Mutex
	clocks  driver.ClockControl
}

// NewResources creates the store with the state machine present in its slot.
func NewResources(m protocol.Machine, t driver.LowPowerTimer, c driver.ClockControl) *Resources {
	r := &Resources{timer: t, clocks: c}
	r.state.replace(m)
	return r
}

// TakeState checks the state machine out of the slot. It returns false when
// another holder has it, in which case the caller must not retry or block;
// the dispatch level treats that as a droppable condition.
func (r *Resources) TakeState() (protocol.Machine, bool) {
	return r.state.take()
}

// ReplaceState checks the state machine back in. Every path that takes the
// state must replace it before returning, error paths included.
func (r *Resources) ReplaceState(m protocol.Machine) {
	r.state.replace(m)
}

// StatePresent reports whether the machine currently sits in the slot.
func (r *Resources) StatePresent() bool {
	return r.state.present()
}

// WithTimer runs fn inside the timer's ceiling section. Only O(1) register
// work is allowed in fn; the section exists so the timer-arming level and
// the interrupt level never interleave half-programmed registers.
func (r *Resources) WithTimer(fn func(driver.LowPowerTimer)) {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	fn(r.timer)
}

// WithClocks runs fn inside the clock controller's ceiling section.
func (r *Resources) WithClocks(fn func(driver.ClockControl)) {
	r.clockMu.Lock()
	defer r.clockMu.Unlock()
	fn(r.clocks)
}

// slot holds the single, movable state machine instance. On the target only
// one priority level ever touches it, so exclusion is structural; the lock
// keeps the same discipline observable on a multi-core host, and a double
// replace panics because duplicated state is unrecoverable by construction.
type slot struct {
	mu sync.Mutex
	m  protocol.Machine
}

func (s *slot) take() (protocol.Machine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return nil, false
	}
	m := s.m
	s.m = nil
	return m, true
}

func (s *slot) replace(m protocol.Machine) {
	if m == nil {
		panic("sched: replacing state slot with nil machine")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m != nil {
		panic("sched: state slot already occupied")
	}
	s.m = m
}

func (s *slot) present() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m != nil
}
