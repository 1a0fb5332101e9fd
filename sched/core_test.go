package sched

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/edgelink/lorasched/driver/stub"
	"github.com/edgelink/lorasched/protocol"
)

type testRig struct {
	core    *Core
	machine *protocol.ScriptedMachine
	timer   *stub.Timer
	radio   *stub.Radio
	clocks  *stub.Clocks
}

func newTestRig(t *testing.T, cfg Config) *testRig {
	t.Helper()

	rig := &testRig{
		machine: protocol.NewScriptedMachine(stub.NewEntropy().NextUint32),
		timer:   stub.NewTimer(),
		radio:   stub.NewRadio(),
		clocks:  stub.NewClocks(),
	}

	cfg.Machine = rig.machine
	cfg.Radio = rig.radio
	cfg.Timer = rig.timer
	cfg.Clocks = rig.clocks

	core, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rig.core = core

	rig.timer.BindInterrupt(core.TimerIRQ)
	rig.radio.BindInterrupt(core.RadioIRQ)
	return rig
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, ErrMissingCollaborator) {
		t.Fatalf("New(Config{}) error = %v, want ErrMissingCollaborator", err)
	}
}

func TestStatePresentAcrossAllResults(t *testing.T) {
	results := []struct {
		name string
		resp protocol.Response
		err  error
	}{
		{"timeout request", protocol.TimeoutRequest{Millis: 100}, nil},
		{"join success", protocol.JoinSuccess{}, nil},
		{"ready to send", protocol.ReadyToSend{}, nil},
		{"downlink received", protocol.DownlinkReceived{FCntDown: 1}, nil},
		{"no ack", protocol.NoAck{}, nil},
		{"no join accept", protocol.NoJoinAccept{}, nil},
		{"session expired", protocol.SessionExpired{}, nil},
		{"no update", protocol.NoUpdate{}, nil},
		{"uplink sending", protocol.UplinkSending{FCntUp: 3}, nil},
		{"join request sending", protocol.JoinRequestSending{}, nil},
		{"radio error", nil, fmt.Errorf("tx: %w", protocol.ErrRadio)},
		{"session error", nil, fmt.Errorf("mic: %w", protocol.ErrSession)},
		{"no session error", nil, fmt.Errorf("uplink: %w", protocol.ErrNoSession)},
	}

	for _, tt := range results {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig(t, Config{})
			rig.machine.Script(tt.resp, tt.err)

			if !rig.core.Resources().StatePresent() {
				t.Fatal("state absent before dispatch")
			}
			rig.core.Pend(protocol.NewSessionRequest{})
			rig.core.Service()
			if !rig.core.Resources().StatePresent() {
				t.Fatal("state absent after dispatch")
			}
		})
	}
}

func TestDispatchEnablesEntropyClock(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.core.Pend(protocol.NewSessionRequest{})
	rig.core.Service()
	if rig.clocks.EntropyClockEnables() == 0 {
		t.Fatal("entropy clock not enabled before transition")
	}
}

func TestDispatchDropsWhenStateHeld(t *testing.T) {
	rig := newTestRig(t, Config{})

	// Hold the machine the way a stuck invocation would.
	m, ok := rig.core.Resources().TakeState()
	if !ok {
		t.Fatal("could not take state")
	}

	rig.radio.InjectInterrupt(0x2A, 0x0001)
	if n := rig.core.Service(); n != 1 {
		t.Fatalf("Service() = %d, want 1", n)
	}
	if got := rig.core.DroppedEvents(); got != 1 {
		t.Fatalf("DroppedEvents() = %d, want 1", got)
	}
	if len(rig.machine.Events()) != 0 {
		t.Fatalf("machine saw %d events while held", len(rig.machine.Events()))
	}

	// Once the state returns, dispatch resumes; the dropped event is gone
	// for good, not replayed.
	rig.core.Resources().ReplaceState(m)
	rig.core.Pend(protocol.NewSessionRequest{})
	rig.core.Service()
	events := rig.machine.Events()
	if len(events) != 1 {
		t.Fatalf("machine saw %d events, want 1", len(events))
	}
	if _, ok := events[0].(protocol.NewSessionRequest); !ok {
		t.Fatalf("machine saw %T, want NewSessionRequest", events[0])
	}
}

func TestTimeoutRequestArmsTimerOnce(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.machine.Script(protocol.TimeoutRequest{Millis: 5000}, nil)

	rig.core.Pend(protocol.NewSessionRequest{})
	rig.core.Service()

	starts := rig.timer.Starts()
	if len(starts) != 1 || starts[0] != 5000 {
		t.Fatalf("timer starts = %v, want [5000]", starts)
	}
}

func TestArmTimerConflictLeavesRunningTimer(t *testing.T) {
	rig := newTestRig(t, Config{})

	if err := rig.core.ArmTimer(3000); err != nil {
		t.Fatalf("ArmTimer(3000) error = %v", err)
	}
	rig.timer.Advance(1000)

	if err := rig.core.ArmTimer(500); !errors.Is(err, ErrTimerConflict) {
		t.Fatalf("ArmTimer(500) error = %v, want ErrTimerConflict", err)
	}
	if got := rig.timer.CurrentCount(); got != 2000 {
		t.Fatalf("CurrentCount() = %d, want 2000 (untouched)", got)
	}
	if starts := rig.timer.Starts(); len(starts) != 1 {
		t.Fatalf("timer starts = %v, want one arm", starts)
	}
}

func TestArmTimerRange(t *testing.T) {
	rig := newTestRig(t, Config{})
	if err := rig.core.ArmTimer(70000); !errors.Is(err, ErrTimerRange) {
		t.Fatalf("ArmTimer(70000) error = %v, want ErrTimerRange", err)
	}
	if starts := rig.timer.Starts(); len(starts) != 0 {
		t.Fatalf("timer starts = %v, want none", starts)
	}
}

func TestTimerRoundTrip(t *testing.T) {
	rig := newTestRig(t, Config{})

	if err := rig.core.ArmTimer(42); err != nil {
		t.Fatalf("ArmTimer(42) error = %v", err)
	}
	rig.timer.Advance(41)
	if n := rig.core.Service(); n != 0 {
		t.Fatalf("Service() = %d before expiry, want 0", n)
	}

	rig.timer.Advance(1)
	if got := rig.timer.CurrentCount(); got != 0 {
		t.Fatalf("CurrentCount() = %d after expiry, want 0", got)
	}
	if n := rig.core.Service(); n != 1 {
		t.Fatalf("Service() = %d after expiry, want 1", n)
	}

	events := rig.machine.Events()
	if len(events) != 1 {
		t.Fatalf("machine saw %d events, want 1", len(events))
	}
	if _, ok := events[0].(protocol.TimeoutFired); !ok {
		t.Fatalf("machine saw %T, want TimeoutFired", events[0])
	}

	// No spurious second fire.
	rig.timer.Advance(100)
	if n := rig.core.Service(); n != 0 {
		t.Fatalf("Service() = %d after idle advance, want 0", n)
	}
}

func TestSessionReissue(t *testing.T) {
	for _, tt := range []struct {
		name string
		resp protocol.Response
	}{
		{"no join accept", protocol.NoJoinAccept{}},
		{"session expired", protocol.SessionExpired{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig(t, Config{})
			rig.machine.Script(tt.resp, nil)

			rig.core.Pend(protocol.TimeoutFired{})
			rig.core.Service()

			// The re-issued session request is serviced in the same
			// drain, exactly once.
			events := rig.machine.Events()
			if len(events) != 2 {
				t.Fatalf("machine saw %d events, want 2", len(events))
			}
			if _, ok := events[1].(protocol.NewSessionRequest); !ok {
				t.Fatalf("second event = %T, want NewSessionRequest", events[1])
			}
		})
	}
}

// Join cycle: session request -> timeout request -> armed timer -> expiry
// -> timeout event back into the machine.
func TestJoinTimeoutCycle(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.machine.Script(protocol.TimeoutRequest{Millis: 5000}, nil)

	rig.core.Pend(protocol.NewSessionRequest{})
	rig.core.Service()

	if starts := rig.timer.Starts(); len(starts) != 1 || starts[0] != 5000 {
		t.Fatalf("timer starts = %v, want [5000]", starts)
	}

	rig.timer.Advance(5000)
	rig.core.Service()

	events := rig.machine.Events()
	if len(events) != 2 {
		t.Fatalf("machine saw %d events, want 2", len(events))
	}
	if _, ok := events[0].(protocol.NewSessionRequest); !ok {
		t.Fatalf("first event = %T, want NewSessionRequest", events[0])
	}
	if _, ok := events[1].(protocol.TimeoutFired); !ok {
		t.Fatalf("second event = %T, want TimeoutFired", events[1])
	}
}

func TestDownlinkExtraction(t *testing.T) {
	rig := newTestRig(t, Config{})

	// Three MAC commands in FOpts, and a malformed payload: port 0 data
	// may not coexist with FOpts commands.
	fopts := []byte{
		protocol.CIDLinkADRReq, 0x01, 0x02, 0x03, 0x04,
		protocol.CIDDevStatusReq,
		protocol.CIDRXTimingSetupReq, 0x05,
	}
	raw := buildDownlinkFrame(0x60, 0x01020304, 7, fopts, true, 0, []byte{0xAA})
	dl, err := protocol.ParseDownlink(raw)
	if err != nil {
		t.Fatalf("ParseDownlink() error = %v", err)
	}
	if got := len(dl.Options()); got != 3 {
		t.Fatalf("Options() = %d commands, want 3", got)
	}

	rig.machine.SetDownlink(dl)
	rig.machine.Script(protocol.DownlinkReceived{FCntDown: 7}, nil)

	rig.core.Pend(protocol.RadioEvent{Payload: protocol.PhyEvent{Status: 0x2A, Flags: 2}})
	rig.core.Service()

	if !rig.core.Resources().StatePresent() {
		t.Fatal("state absent after downlink extraction")
	}
	if rig.machine.TakeDownlink() != nil {
		t.Fatal("downlink still pending after extraction")
	}
}

func TestQueueOverflowRunsResetHook(t *testing.T) {
	overflowed := false
	rig := newTestRig(t, Config{
		QueueDepth: 2,
		OnOverflow: func() { overflowed = true },
	})

	for i := 0; i < 8; i++ {
		rig.core.Pend(protocol.TimeoutFired{})
	}
	if !overflowed {
		t.Fatal("reset hook did not run on saturated queue")
	}
}

func TestStartInjectsSessionRequest(t *testing.T) {
	rig := newTestRig(t, Config{})

	rig.core.Start()
	defer rig.core.Stop()

	if got := rig.radio.Mode(); got != stub.ModeReceive {
		t.Fatalf("radio mode = %d, want receive", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		events := rig.machine.Events()
		if len(events) == 1 {
			if _, ok := events[0].(protocol.NewSessionRequest); !ok {
				t.Fatalf("machine saw %T, want NewSessionRequest", events[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("service loop never dispatched the initial session request")
		}
		time.Sleep(time.Millisecond)
	}
}

// buildDownlinkFrame encodes a LoRaWAN downlink data frame for tests.
func buildDownlinkFrame(mhdr byte, devAddr uint32, fcnt uint16, fopts []byte, withPort bool, fport uint8, frm []byte) []byte {
	raw := []byte{mhdr}
	raw = append(raw,
		byte(devAddr), byte(devAddr>>8), byte(devAddr>>16), byte(devAddr>>24),
		byte(len(fopts)),
		byte(fcnt), byte(fcnt>>8),
	)
	raw = append(raw, fopts...)
	if withPort {
		raw = append(raw, fport)
		raw = append(raw, frm...)
	}
	return append(raw, 0xDE, 0xAD, 0xBE, 0xEF) // MIC
}
