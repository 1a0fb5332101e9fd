package protocol

import "encoding/binary"

// Downlink is a parsed LoRaWAN data frame in the network-to-device
// direction. Header fields are decoded eagerly by ParseDownlink; the FRM
// payload is decoded lazily and best-effort via Payload.
type Downlink struct {
	MHDR    byte
	DevAddr uint32
	FCtrl   byte
	FCnt    uint16
	FOpts   []byte
	MIC     uint32

	hasFPort bool
	fport    uint8
	frm      []byte
}

// ParseDownlink decodes the frame header of raw. It fails only on
// structural problems (short frame, wrong message type, FOpts overrunning
// the frame); payload-level problems are deferred to Payload so a bad
// application payload never hides the MAC commands in FOpts.
func ParseDownlink(raw []byte) (*Downlink, error) {
	if len(raw) < MinFrameSize {
		return nil, ErrMalformedFrame
	}

	mhdr := raw[0]
	switch mhdr & mtypeMask {
	case mtypeUnconfirmedDataDown, mtypeConfirmedDataDown:
	default:
		return nil, ErrMalformedFrame
	}

	fctrl := raw[MHDRSize+DevAddrSize]
	foptsLen := int(fctrl & fctrlFOptsLenMask)

	foptsEnd := MHDRSize + FHDRMinSize + foptsLen
	if foptsEnd+MICSize > len(raw) {
		return nil, ErrMalformedFrame
	}

	d := &Downlink{
		MHDR:    mhdr,
		DevAddr: binary.LittleEndian.Uint32(raw[MHDRSize : MHDRSize+DevAddrSize]),
		FCtrl:   fctrl,
		FCnt:    binary.LittleEndian.Uint16(raw[MHDRSize+DevAddrSize+FCtrlSize : MHDRSize+FHDRMinSize]),
		MIC:     binary.LittleEndian.Uint32(raw[len(raw)-MICSize:]),
	}

	if foptsLen > 0 {
		d.FOpts = make([]byte, foptsLen)
		copy(d.FOpts, raw[MHDRSize+FHDRMinSize:foptsEnd])
	}

	rest := raw[foptsEnd : len(raw)-MICSize]
	if len(rest) > 0 {
		d.hasFPort = true
		d.fport = rest[0]
		if len(rest) > 1 {
			d.frm = make([]byte, len(rest)-1)
			copy(d.frm, rest[1:])
		}
	}

	return d, nil
}

// Confirmed reports whether the frame requires an acknowledgement.
func (d *Downlink) Confirmed() bool { return d.MHDR&mtypeMask == mtypeConfirmedDataDown }

// Ack reports the ACK bit of FCtrl.
func (d *Downlink) Ack() bool { return d.FCtrl&fctrlACKMask != 0 }

// FPending reports whether the network has more downlink data queued.
func (d *Downlink) FPending() bool { return d.FCtrl&fctrlFPendingMask != 0 }

// FPort returns the frame port and whether one is present.
func (d *Downlink) FPort() (uint8, bool) { return d.fport, d.hasFPort }

// Payload returns the decoded FRM payload. Decoding is best-effort: a frame
// whose header parsed fine can still carry an invalid payload, and callers
// are expected to log and move on. MAC commands on port 0 may not coexist
// with MAC commands in FOpts.
func (d *Downlink) Payload() ([]byte, error) {
	if !d.hasFPort {
		return nil, nil
	}
	if d.fport == 0 && len(d.FOpts) > 0 {
		return nil, ErrMalformedPayload
	}
	if d.fport == 0 && len(d.frm) == 0 {
		return nil, ErrMalformedPayload
	}
	return d.frm, nil
}

// Options enumerates the MAC commands carried in FOpts. Enumeration stops
// at the first unknown identifier or truncated command; everything decoded
// up to that point is returned.
func (d *Downlink) Options() []MACCommand {
	var cmds []MACCommand
	opts := d.FOpts
	for len(opts) > 0 {
		cid := opts[0]
		size, known := macCommandLen[cid]
		if !known || len(opts) < 1+size {
			break
		}
		cmds = append(cmds, MACCommand{CID: cid, Payload: opts[1 : 1+size]})
		opts = opts[1+size:]
	}
	return cmds
}
