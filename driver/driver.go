// Package driver defines the hardware capability interfaces the scheduling
// core depends on. The core never touches registers itself, so it runs
// unchanged against the register-level implementations in driver/stm32wl
// and the host-side peripherals in driver/stub.
package driver

// Radio exposes the subghz transceiver surface the core needs: interrupt
// acknowledgement and RF path switching.
type Radio interface {
	// ReadAndClearInterrupt returns the transceiver status byte and the
	// pending interrupt flags, clearing them in hardware.
	ReadAndClearInterrupt() (status uint8, flags uint16)
	SetReceiveMode()
	SetTransmitMode()
}

// LowPowerTimer is a single-shot compare-match countdown timer. The clock
// tree is configured so that one tick is one millisecond. A count of zero
// means the timer is idle.
type LowPowerTimer interface {
	Start(ticks uint16)
	CurrentCount() uint16
	ClearCompareInterrupt()
}

// Entropy yields random 32-bit values from the hardware generator.
// Implementations return FallbackRandom when the peripheral fails, which
// makes the weakness explicit rather than silent.
type Entropy interface {
	NextUint32() uint32
}

// ClockControl gates peripheral clocks. The entropy peripheral's clock must
// be enabled before the state machine runs, since a transition may need
// randomness at any point.
type ClockControl interface {
	EnableEntropyClock()
}

// FallbackRandom is the fixed value Entropy implementations return when the
// hardware generator fails. Do not rely on it for key material.
const FallbackRandom uint32 = 0xFAFAFAFA
