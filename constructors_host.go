//go:build !tinygo && !baremetal

// This file is built only for non-embedded targets (host-based testing).
package lorasched

import (
	"github.com/pion/logging"

	"github.com/edgelink/lorasched/driver/stub"
	"github.com/edgelink/lorasched/protocol"
	"github.com/edgelink/lorasched/sched"
)

// HostEndpoint bundles the core with its stub peripherals so tests and
// simulations can inject interrupts and advance simulated time.
type HostEndpoint struct {
	*sched.Core

	Timer   *stub.Timer
	Radio   *stub.Radio
	Entropy *stub.Entropy
	Clocks  *stub.Clocks
}

// NewEndpoint wires the core to host stub peripherals. build constructs the
// state machine; it receives the entropy source so the machine can draw
// randomness for the whole session, like the target wiring hands the RNG
// read function to the device at init.
func NewEndpoint(cfg *DeviceConfig, build func(entropy func() uint32) protocol.Machine, lf logging.LoggerFactory) (*HostEndpoint, error) {
	timer := stub.NewTimer()
	radio := stub.NewRadio()
	entropy := stub.NewEntropy()
	clocks := stub.NewClocks()
	m := build(entropy.NextUint32)

	depth := 0
	if cfg != nil {
		depth = cfg.QueueDepth
	}

	core, err := sched.New(sched.Config{
		Machine:       m,
		Radio:         radio,
		Timer:         timer,
		Clocks:        clocks,
		QueueDepth:    depth,
		LoggerFactory: lf,
	})
	if err != nil {
		return nil, err
	}

	timer.BindInterrupt(core.TimerIRQ)
	radio.BindInterrupt(core.RadioIRQ)

	return &HostEndpoint{
		Core:    core,
		Timer:   timer,
		Radio:   radio,
		Entropy: entropy,
		Clocks:  clocks,
	}, nil
}
