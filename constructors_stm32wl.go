//go:build tinygo || baremetal

// This file is built only for embedded targets (real peripherals).
package lorasched

import (
	"github.com/pion/logging"

	"github.com/edgelink/lorasched/driver/stm32wl"
	"github.com/edgelink/lorasched/protocol"
	"github.com/edgelink/lorasched/sched"
)

// NewEndpoint wires the core to the STM32WL peripherals and installs the
// interrupt vectors. build constructs the state machine and receives the
// RNG read function so the machine can draw randomness for the whole
// session.
func NewEndpoint(cfg *DeviceConfig, build func(entropy func() uint32) protocol.Machine, lf logging.LoggerFactory) (*Endpoint, error) {
	timer := stm32wl.NewLPTIM()
	radio := stm32wl.NewSubGhz()
	rng := stm32wl.NewRNG()
	clocks := stm32wl.NewClocks()

	depth := 0
	if cfg != nil {
		depth = cfg.QueueDepth
	}

	core, err := sched.New(sched.Config{
		Machine:       build(rng.NextUint32),
		Radio:         radio,
		Timer:         timer,
		Clocks:        clocks,
		QueueDepth:    depth,
		LoggerFactory: lf,
	})
	if err != nil {
		return nil, err
	}

	stm32wl.BindTimerInterrupt(core.TimerIRQ)
	stm32wl.BindRadioInterrupt(core.RadioIRQ)

	return core, nil
}
