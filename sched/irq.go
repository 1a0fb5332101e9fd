package sched

import "github.com/edgelink/lorasched/protocol"

// Interrupt entry points. These run in interrupt context on the target and
// as synthetic injections on the host; either way they stay minimal:
// acknowledge the hardware, translate the signal into a typed event, pend
// it. Protocol logic never runs here.

// TimerIRQ is the compare-match interrupt entry point.
func (c *Core) TimerIRQ() {
	// The interrupt level sits above the timer's ceiling, so it reaches
	// the handle directly instead of taking the section.
	c.res.timer.ClearCompareInterrupt()
	c.Pend(protocol.TimeoutFired{})
}

// RadioIRQ is the transceiver interrupt entry point.
func (c *Core) RadioIRQ() {
	status, flags := c.radio.ReadAndClearInterrupt()
	c.Pend(protocol.RadioEvent{Payload: protocol.PhyEvent{Status: status, Flags: flags}})
}
