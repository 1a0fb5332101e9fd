package protocol

// MACCommand is a single MAC command extracted from a downlink FOpts field.
type MACCommand struct {
	CID     byte
	Payload []byte
}

// macCommandLen maps downlink MAC command identifiers to their payload
// sizes in bytes.
var macCommandLen = map[byte]int{
	CIDLinkCheckAns:     2,
	CIDLinkADRReq:       4,
	CIDDutyCycleReq:     1,
	CIDRXParamSetupReq:  4,
	CIDDevStatusReq:     0,
	CIDNewChannelReq:    5,
	CIDRXTimingSetupReq: 1,
	CIDTXParamSetupReq:  1,
	CIDDLChannelReq:     4,
}

var macCommandName = map[byte]string{
	CIDLinkCheckAns:     "LinkCheckAns",
	CIDLinkADRReq:       "LinkADRReq",
	CIDDutyCycleReq:     "DutyCycleReq",
	CIDRXParamSetupReq:  "RXParamSetupReq",
	CIDDevStatusReq:     "DevStatusReq",
	CIDNewChannelReq:    "NewChannelReq",
	CIDRXTimingSetupReq: "RXTimingSetupReq",
	CIDTXParamSetupReq:  "TXParamSetupReq",
	CIDDLChannelReq:     "DLChannelReq",
}

// Name returns the human-readable name of the command, or "Unknown" for
// identifiers outside the downlink table.
func (c MACCommand) Name() string {
	if name, ok := macCommandName[c.CID]; ok {
		return name
	}
	return "Unknown"
}
