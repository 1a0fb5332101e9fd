//go:build !tinygo && !baremetal

// Package stub provides host-side peripheral implementations with synthetic
// interrupt injection, so the scheduling core can be exercised without
// hardware timing.
package stub

import (
	crand "crypto/rand"
	"encoding/binary"
	"sync"

	"code.hybscloud.com/atomix"

	"github.com/edgelink/lorasched/driver"
)

// Timer is a host stand-in for the low-power compare-match timer. Tests
// drive it with Advance; on compare match it raises the bound interrupt
// exactly once and returns to idle (count zero).
type Timer struct {
	mu        sync.Mutex
	remaining uint16
	pending   bool
	irq       func()
	starts    []uint16
}

func NewTimer() *Timer { return &Timer{} }

// BindInterrupt registers the compare-match interrupt handler.
func (t *Timer) BindInterrupt(fn func()) {
	t.mu.Lock()
	t.irq = fn
	t.mu.Unlock()
}

func (t *Timer) Start(ticks uint16) {
	t.mu.Lock()
	t.remaining = ticks
	t.starts = append(t.starts, ticks)
	t.mu.Unlock()
}

func (t *Timer) CurrentCount() uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) ClearCompareInterrupt() {
	t.mu.Lock()
	t.pending = false
	t.mu.Unlock()
}

// Advance moves simulated time forward by ticks milliseconds. If the
// countdown reaches zero the compare-match flag is set and the bound
// interrupt handler runs, outside the internal lock like a real vector.
func (t *Timer) Advance(ticks uint16) {
	t.mu.Lock()
	var fire func()
	if t.remaining > 0 {
		if ticks >= t.remaining {
			t.remaining = 0
			t.pending = true
			fire = t.irq
		} else {
			t.remaining -= ticks
		}
	}
	t.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// Starts returns every tick count the timer has been armed with.
func (t *Timer) Starts() []uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]uint16, len(t.starts))
	copy(out, t.starts)
	return out
}

// CompareMatchPending reports whether the compare-match flag is raised.
func (t *Timer) CompareMatchPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Radio mode constants recorded by the stub radio.
const (
	ModeNone = iota
	ModeReceive
	ModeTransmit
)

// Radio is a host stand-in for the subghz transceiver. Tests raise
// interrupts with InjectInterrupt and observe RF path switches via Mode.
type Radio struct {
	mu     sync.Mutex
	status uint8
	flags  uint16
	mode   int
	irq    func()
}

func NewRadio() *Radio { return &Radio{} }

// BindInterrupt registers the radio interrupt handler.
func (r *Radio) BindInterrupt(fn func()) {
	r.mu.Lock()
	r.irq = fn
	r.mu.Unlock()
}

// InjectInterrupt latches status and flags into the interrupt registers and
// raises the bound handler.
func (r *Radio) InjectInterrupt(status uint8, flags uint16) {
	r.mu.Lock()
	r.status = status
	r.flags = flags
	fire := r.irq
	r.mu.Unlock()

	if fire != nil {
		fire()
	}
}

func (r *Radio) ReadAndClearInterrupt() (uint8, uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, flags := r.status, r.flags
	r.status, r.flags = 0, 0
	return status, flags
}

func (r *Radio) SetReceiveMode() {
	r.mu.Lock()
	r.mode = ModeReceive
	r.mu.Unlock()
}

func (r *Radio) SetTransmitMode() {
	r.mu.Lock()
	r.mode = ModeTransmit
	r.mu.Unlock()
}

// Mode returns the last RF path selected.
func (r *Radio) Mode() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Entropy is a host stand-in for the hardware random generator. It draws
// from crypto/rand and can be switched into failure mode, in which it
// returns driver.FallbackRandom like the real peripheral path does.
type Entropy struct {
	failing atomix.Uint32
}

func NewEntropy() *Entropy { return &Entropy{} }

// SetFailing switches the generator into (or out of) failure mode.
func (e *Entropy) SetFailing(failing bool) {
	if failing {
		e.failing.Store(1)
	} else {
		e.failing.Store(0)
	}
}

func (e *Entropy) NextUint32() uint32 {
	if e.failing.Load() != 0 {
		return driver.FallbackRandom
	}
	var b [4]byte
	if _, err := crand.Read(b[:]); err != nil {
		return driver.FallbackRandom
	}
	return binary.LittleEndian.Uint32(b[:])
}

// Clocks is a host stand-in for the clock gating controller.
type Clocks struct {
	entropyEnables atomix.Uint32
}

func NewClocks() *Clocks { return &Clocks{} }

func (c *Clocks) EnableEntropyClock() { c.entropyEnables.Add(1) }

// EntropyClockEnables returns how many times the entropy clock was enabled.
func (c *Clocks) EntropyClockEnables() uint32 { return c.entropyEnables.Load() }
