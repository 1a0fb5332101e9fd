package protocol

// Event is the closed set of inputs that drive the LoRaWAN state machine.
// Events are produced by the interrupt entry points, by the response handler
// (session re-establishment) or by the application (uplink data), and each
// one is consumed exactly once by the dispatch core.
type Event interface {
	isEvent()
}

// NewSessionRequest asks the machine to start a fresh join procedure.
type NewSessionRequest struct{}

// TimeoutFired reports a compare-match of the low-power timer.
type TimeoutFired struct{}

// SendDataRequest carries an application uplink to be scheduled.
type SendDataRequest struct {
	FPort     uint8
	Data      []byte
	Confirmed bool
}

// RadioEvent wraps a radio-originated payload.
type RadioEvent struct {
	Payload RadioPayload
}

func (NewSessionRequest) isEvent() {}
func (TimeoutFired) isEvent()      {}
func (SendDataRequest) isEvent()   {}
func (RadioEvent) isEvent()        {}

// RadioPayload is the closed set of radio-level events carried inside a
// RadioEvent.
type RadioPayload interface {
	isRadioPayload()
}

// TxRequest asks the radio path to transmit the prepared buffer.
type TxRequest struct {
	Data []byte
}

// RxRequest asks the radio path to open a receive window.
type RxRequest struct{}

// CancelRx closes a pending receive window.
type CancelRx struct{}

// PhyEvent reports a transceiver interrupt: the status register value and
// the interrupt flags that were read and cleared.
type PhyEvent struct {
	Status uint8
	Flags  uint16
}

func (TxRequest) isRadioPayload() {}
func (RxRequest) isRadioPayload() {}
func (CancelRx) isRadioPayload()  {}
func (PhyEvent) isRadioPayload()  {}
