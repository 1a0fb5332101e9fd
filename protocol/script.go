package protocol

import "sync"

// ScriptedMachine implements Machine with a queue of pre-scripted results,
// for host-side testing and simulation. Each HandleEvent call records the
// event and pops the next scripted result; with an empty script it reports
// NoUpdate. A NewSessionRequest additionally draws a fresh DevNonce from
// the entropy function, mirroring what a real join procedure consumes.
type ScriptedMachine struct {
	mu       sync.Mutex
	script   []scriptStep
	events   []Event
	downlink *Downlink
	entropy  func() uint32
	devNonce uint16
}

type scriptStep struct {
	resp Response
	err  error
}

// NewScriptedMachine creates a scripted machine drawing randomness from
// entropy. A nil entropy function is allowed as long as no session events
// are fed in.
func NewScriptedMachine(entropy func() uint32) *ScriptedMachine {
	return &ScriptedMachine{entropy: entropy}
}

// Script appends one result to the script. Exactly one of resp and err
// should be set.
func (m *ScriptedMachine) Script(resp Response, err error) {
	m.mu.Lock()
	m.script = append(m.script, scriptStep{resp: resp, err: err})
	m.mu.Unlock()
}

// SetDownlink stores the downlink handed out by the next TakeDownlink.
func (m *ScriptedMachine) SetDownlink(d *Downlink) {
	m.mu.Lock()
	m.downlink = d
	m.mu.Unlock()
}

// HandleEvent implements Machine.
func (m *ScriptedMachine) HandleEvent(ev Event) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, ev)
	if _, ok := ev.(NewSessionRequest); ok && m.entropy != nil {
		m.devNonce = uint16(m.entropy())
	}

	if len(m.script) == 0 {
		return NoUpdate{}, nil
	}
	step := m.script[0]
	m.script = m.script[1:]
	return step.resp, step.err
}

// TakeDownlink implements Machine: it hands the pending downlink over and
// clears the slot.
func (m *ScriptedMachine) TakeDownlink() *Downlink {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.downlink
	m.downlink = nil
	return d
}

// Events returns a copy of every event the machine has been fed.
func (m *ScriptedMachine) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// DevNonce returns the nonce drawn by the most recent NewSessionRequest.
func (m *ScriptedMachine) DevNonce() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.devNonce
}
