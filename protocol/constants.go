package protocol

// LoRaWAN data-frame layout (downlink direction).
//
//	MHDR (1) | DevAddr (4, LE) | FCtrl (1) | FCnt (2, LE) | FOpts (0-15) | [FPort (1) | FRMPayload] | MIC (4)
//
// FCtrl carries the FOpts length in its low nibble. MAC commands travel
// either in FOpts or, when FPort is 0, in the FRM payload — never both.
const (
	MHDRSize    = 1
	DevAddrSize = 4
	FCtrlSize   = 1
	FCntSize    = 2
	MICSize     = 4

	// FHDRMinSize is DevAddr + FCtrl + FCnt with empty FOpts.
	FHDRMinSize = DevAddrSize + FCtrlSize + FCntSize

	// MinFrameSize is the shortest structurally valid data frame.
	MinFrameSize = MHDRSize + FHDRMinSize + MICSize

	// MaxFOptsLen is the widest FOpts field FCtrl can encode.
	MaxFOptsLen = 15

	fctrlFOptsLenMask = 0x0F
	fctrlACKMask      = 0x20
	fctrlFPendingMask = 0x10

	mtypeMask                = 0xE0
	mtypeUnconfirmedDataDown = 0x60
	mtypeConfirmedDataDown   = 0xA0
)

// MAC command identifiers (downlink direction).
const (
	CIDLinkCheckAns     = 0x02
	CIDLinkADRReq       = 0x03
	CIDDutyCycleReq     = 0x04
	CIDRXParamSetupReq  = 0x05
	CIDDevStatusReq     = 0x06
	CIDNewChannelReq    = 0x07
	CIDRXTimingSetupReq = 0x08
	CIDTXParamSetupReq  = 0x09
	CIDDLChannelReq     = 0x0A
)
