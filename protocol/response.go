package protocol

// Response is the closed set of outcomes the state machine can report for a
// single event. Exactly one Response (or one error) is produced per
// HandleEvent call.
type Response interface {
	isResponse()
}

// TimeoutRequest asks for the low-power timer to be armed for Millis
// milliseconds.
type TimeoutRequest struct {
	Millis uint32
}

// JoinSuccess reports that the join procedure completed and session keys
// were derived.
type JoinSuccess struct{}

// ReadyToSend reports that a receive window expired with no ACK expected;
// the next uplink may be scheduled.
type ReadyToSend struct{}

// DownlinkReceived reports that a downlink frame was accepted with the
// given frame counter. The frame itself is held by the machine until
// TakeDownlink is called.
type DownlinkReceived struct {
	FCntDown uint32
}

// NoAck reports that a confirmed uplink's receive windows expired without
// the expected acknowledgement.
type NoAck struct{}

// NoJoinAccept reports that no join-accept arrived within the receive
// windows of a join request.
type NoJoinAccept struct{}

// SessionExpired reports that the current session's frame counters are
// exhausted and a new session is required.
type SessionExpired struct{}

// NoUpdate reports that the event produced no externally visible change.
type NoUpdate struct{}

// UplinkSending reports that an uplink with the given frame counter is on
// its way to the radio.
type UplinkSending struct {
	FCntUp uint32
}

// JoinRequestSending reports that a join request is on its way to the radio.
type JoinRequestSending struct{}

func (TimeoutRequest) isResponse()     {}
func (JoinSuccess) isResponse()        {}
func (ReadyToSend) isResponse()        {}
func (DownlinkReceived) isResponse()   {}
func (NoAck) isResponse()              {}
func (NoJoinAccept) isResponse()       {}
func (SessionExpired) isResponse()     {}
func (NoUpdate) isResponse()           {}
func (UplinkSending) isResponse()      {}
func (JoinRequestSending) isResponse() {}
