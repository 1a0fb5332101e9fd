//go:build tinygo || baremetal

package stm32wl

import (
	"device/stm32"
	"machine"
	"runtime/interrupt"
)

// Subghz transceiver command opcodes (SPI).
const (
	opGetIrqStatus = 0x12
	opClrIrqStatus = 0x02
)

// SubGhz drives the on-die subghz transceiver: interrupt status over the
// internal SPI bus and the external RF switch on PC3/PC4/PC5.
type SubGhz struct {
	ctrl1 machine.Pin
	ctrl2 machine.Pin
	ctrl3 machine.Pin
}

// NewSubGhz configures the RF switch pins and releases the radio from
// reset. The transceiver itself is programmed by the state machine's radio
// binding; this driver only owns the pieces the core needs.
func NewSubGhz() *SubGhz {
	s := &SubGhz{ctrl1: machine.PC3, ctrl2: machine.PC4, ctrl3: machine.PC5}
	s.ctrl1.Configure(machine.PinConfig{Mode: machine.PinOutput})
	s.ctrl2.Configure(machine.PinConfig{Mode: machine.PinOutput})
	s.ctrl3.Configure(machine.PinConfig{Mode: machine.PinOutput})

	stm32.RCC.CSR.ClearBits(stm32.RCC_CSR_RFRST)
	for stm32.RCC.CSR.HasBits(stm32.RCC_CSR_RFRSTF) {
	}
	return s
}

// ReadAndClearInterrupt issues Get_IrqStatus and Clr_IrqStatus back to
// back, returning the status byte and the pending flags.
func (s *SubGhz) ReadAndClearInterrupt() (uint8, uint16) {
	var buf [3]byte
	spiCommand(opGetIrqStatus, nil, buf[:])
	flags := uint16(buf[1])<<8 | uint16(buf[2])
	spiCommand(opClrIrqStatus, []byte{buf[1], buf[2]}, nil)
	return buf[0], flags
}

// SetReceiveMode routes the RF switch to the LNA path.
func (s *SubGhz) SetReceiveMode() {
	s.ctrl1.High()
	s.ctrl2.Low()
	s.ctrl3.High()
}

// SetTransmitMode routes the RF switch to the PA path.
func (s *SubGhz) SetTransmitMode() {
	s.ctrl1.Low()
	s.ctrl2.High()
	s.ctrl3.High()
}

// spiCommand runs one transceiver command over the internal subghz SPI:
// wait for RFBUSY, assert NSS, clock the opcode plus tx out while reading
// rx back, release NSS.
func spiCommand(op byte, tx, rx []byte) {
	for stm32.PWR.SR2.HasBits(stm32.PWR_SR2_RFBUSYS) {
	}
	stm32.PWR.SUBGHZSPICR.ClearBits(stm32.PWR_SUBGHZSPICR_NSS)

	spiTransfer(op)
	n := len(tx)
	if len(rx) > n {
		n = len(rx)
	}
	for i := 0; i < n; i++ {
		out := byte(0)
		if i < len(tx) {
			out = tx[i]
		}
		in := spiTransfer(out)
		if i < len(rx) {
			rx[i] = in
		}
	}

	stm32.PWR.SUBGHZSPICR.SetBits(stm32.PWR_SUBGHZSPICR_NSS)
}

func spiTransfer(b byte) byte {
	for !stm32.SPI3.SR.HasBits(stm32.SPI_SR_TXE) {
	}
	stm32.SPI3.DR.Set(uint32(b))
	for !stm32.SPI3.SR.HasBits(stm32.SPI_SR_RXNE) {
	}
	return byte(stm32.SPI3.DR.Get())
}

var radioHandler func()

// BindRadioInterrupt installs fn as the radio interrupt handler.
func BindRadioInterrupt(fn func()) {
	radioHandler = fn
	intr := interrupt.New(stm32.IRQ_RADIO_IRQ_BUSY, handleRadio)
	intr.Enable()
}

func handleRadio(interrupt.Interrupt) {
	if radioHandler != nil {
		radioHandler()
	}
}
