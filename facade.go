// Package lorasched provides the event-dispatch core of a battery-powered
// LoRaWAN endpoint: a bounded-queue scheduler that feeds hardware and
// software events through the device state machine while keeping exclusive
// ownership of it, arbitrating the single low-power timer and translating
// interrupts into typed events.
package lorasched

import (
	"github.com/edgelink/lorasched/protocol"
	"github.com/edgelink/lorasched/sched"
)

// The wiring is split into build-tag specific files:
// - constructors_stm32wl.go - for embedded targets (//go:build tinygo || baremetal)
// - constructors_host.go    - for development/testing (//go:build !tinygo && !baremetal)

// Re-export the public surface of the core packages.
type (
	Endpoint   = sched.Core
	Config     = sched.Config
	Machine    = protocol.Machine
	Event      = protocol.Event
	Response   = protocol.Response
	Downlink   = protocol.Downlink
	MACCommand = protocol.MACCommand
)

// Error values exposed in the public API.
var (
	ErrRadio         = protocol.ErrRadio
	ErrSession       = protocol.ErrSession
	ErrNoSession     = protocol.ErrNoSession
	ErrTimerConflict = sched.ErrTimerConflict
	ErrTimerRange    = sched.ErrTimerRange
)
