package sched

import (
	"errors"

	"github.com/edgelink/lorasched/protocol"
)

// respond interprets one state-machine result and triggers its side
// effects. Recoverable protocol failures are handled here by re-driving the
// machine; the three error kinds are logged and left to the response-level
// retry cycle (NoJoinAccept and SessionExpired re-issue the session).
func (c *Core) respond(resp protocol.Response, err error) {
	if err != nil {
		switch {
		case errors.Is(err, protocol.ErrRadio):
			c.respLog.Errorf("radio error: %v", err)
		case errors.Is(err, protocol.ErrSession):
			c.respLog.Errorf("session error: %v", err)
		case errors.Is(err, protocol.ErrNoSession):
			c.respLog.Errorf("no-session error: %v", err)
		default:
			c.respLog.Errorf("protocol error: %v", err)
		}
		return
	}

	switch r := resp.(type) {
	case protocol.TimeoutRequest:
		c.respLog.Infof("timeout request: %d ms", r.Millis)
		_ = c.ArmTimer(r.Millis)
	case protocol.JoinSuccess:
		// The machine already committed the session during dispatch;
		// nothing further to apply here.
		c.respLog.Info("join success")
	case protocol.ReadyToSend:
		c.respLog.Info("rx window expired, no ack expected, ready to send")
	case protocol.DownlinkReceived:
		c.handleDownlink(r.FCntDown)
	case protocol.NoAck:
		c.respLog.Warn("rx window expired, expected ack not received")
	case protocol.NoJoinAccept:
		c.respLog.Warn("no join accept received")
		c.Pend(protocol.NewSessionRequest{})
	case protocol.SessionExpired:
		c.respLog.Warn("session expired, requesting new session")
		c.Pend(protocol.NewSessionRequest{})
	case protocol.NoUpdate:
	case protocol.UplinkSending:
		c.respLog.Infof("uplink sending (fcnt_up=%d)", r.FCntUp)
	case protocol.JoinRequestSending:
		c.respLog.Info("join request sending")
	default:
		c.respLog.Warnf("unhandled response %T", resp)
	}
}

// handleDownlink takes the machine out of the store to extract the pending
// downlink. The deferred replace keeps the state-presence invariant on
// every path, a failed payload decode included.
func (c *Core) handleDownlink(fcntDown uint32) {
	m, ok := c.res.TakeState()
	if !ok {
		c.respLog.Warnf("state unavailable, downlink fcnt_down=%d not extracted", fcntDown)
		return
	}
	defer c.res.ReplaceState(m)

	dl := m.TakeDownlink()
	if dl == nil {
		c.respLog.Infof("downlink received (fcnt_down=%d), nothing pending", fcntDown)
		return
	}

	for i, cmd := range dl.Options() {
		c.respLog.Infof("fopts[%d]: %s", i, cmd.Name())
	}

	data, err := dl.Payload()
	switch {
	case err != nil:
		c.respLog.Warnf("downlink payload undecodable (fcnt_down=%d): %v", fcntDown, err)
	case len(data) > 0:
		port, _ := dl.FPort()
		c.respLog.Infof("downlink data (fcnt_down=%d fport=%d): %d bytes", fcntDown, port, len(data))
	default:
		c.respLog.Infof("downlink received (fcnt_down=%d), no data", fcntDown)
	}
}
