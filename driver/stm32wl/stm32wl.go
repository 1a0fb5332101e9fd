//go:build tinygo || baremetal

// Package stm32wl implements the driver capability interfaces on the
// STM32WL55 peripherals: LPTIM1 as the low-power timer, the RNG block as
// the entropy source and the subghz transceiver as the radio.
package stm32wl

import (
	"device/stm32"

	"github.com/edgelink/lorasched/driver"
)

// Clocks gates peripheral clocks through RCC.
type Clocks struct{}

func NewClocks() *Clocks { return &Clocks{} }

// EnableEntropyClock enables the RNG kernel clock. Idempotent; the state
// machine may need randomness during any transition, so this runs before
// every dispatch.
func (c *Clocks) EnableEntropyClock() {
	stm32.RCC.AHB3ENR.SetBits(stm32.RCC_AHB3ENR_RNGEN)
}

// RNG is the hardware random generator.
type RNG struct{}

func NewRNG() *RNG {
	stm32.RCC.AHB3ENR.SetBits(stm32.RCC_AHB3ENR_RNGEN)
	stm32.RNG.CR.SetBits(stm32.RNG_CR_RNGEN)
	return &RNG{}
}

// NextUint32 reads one random word. On a seed or clock error the generator
// is left as-is and the fixed fallback is returned; a stuck generator must
// not stall the protocol.
func (r *RNG) NextUint32() uint32 {
	if stm32.RNG.SR.HasBits(stm32.RNG_SR_SECS | stm32.RNG_SR_CECS) {
		return driver.FallbackRandom
	}
	for !stm32.RNG.SR.HasBits(stm32.RNG_SR_DRDY) {
	}
	return stm32.RNG.DR.Get()
}
