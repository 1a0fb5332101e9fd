//go:build tinygo || baremetal

package stm32wl

import (
	"device/stm32"
	"runtime/interrupt"
)

// LPTIM1 runs from LSI (32 kHz) with a /32 prescaler, so the counter
// advances once per millisecond and Start's tick argument is a duration in
// milliseconds.

// LPTIM is the low-power timer driver.
type LPTIM struct{}

// NewLPTIM brings up LSI, clocks LPTIM1 from it and enables the
// compare-match interrupt.
func NewLPTIM() *LPTIM {
	stm32.RCC.CSR.SetBits(stm32.RCC_CSR_LSION)
	for !stm32.RCC.CSR.HasBits(stm32.RCC_CSR_LSIRDY) {
	}

	stm32.RCC.APB1ENR1.SetBits(stm32.RCC_APB1ENR1_LPTIM1EN)
	// Kernel clock select: LSI.
	stm32.RCC.CCIPR.ReplaceBits(1, stm32.RCC_CCIPR_LPTIM1SEL_Msk, stm32.RCC_CCIPR_LPTIM1SEL_Pos)

	// Prescaler /32; IER writes require the peripheral disabled.
	stm32.LPTIM1.CFGR.ReplaceBits(5, stm32.LPTIM_CFGR_PRESC_Msk, stm32.LPTIM_CFGR_PRESC_Pos)
	stm32.LPTIM1.IER.SetBits(stm32.LPTIM_IER_CMPMIE)

	return &LPTIM{}
}

// Start arms a single-shot countdown of ticks milliseconds.
func (t *LPTIM) Start(ticks uint16) {
	stm32.LPTIM1.CR.SetBits(stm32.LPTIM_CR_ENABLE)
	stm32.LPTIM1.CMP.Set(uint32(ticks))
	stm32.LPTIM1.CR.SetBits(stm32.LPTIM_CR_SNGSTRT)
}

// CurrentCount returns the live counter. Zero means idle: the counter
// resets when the single-shot countdown completes.
func (t *LPTIM) CurrentCount() uint16 {
	// Two consecutive equal reads are required because the counter is
	// asynchronous to the bus clock.
	for {
		a := stm32.LPTIM1.CNT.Get()
		b := stm32.LPTIM1.CNT.Get()
		if a == b {
			return uint16(a)
		}
	}
}

// ClearCompareInterrupt acknowledges the compare-match flag.
func (t *LPTIM) ClearCompareInterrupt() {
	stm32.LPTIM1.ICR.Set(stm32.LPTIM_ICR_CMPMCF)
}

var lptimHandler func()

// BindTimerInterrupt installs fn as the LPTIM1 interrupt handler.
func BindTimerInterrupt(fn func()) {
	lptimHandler = fn
	intr := interrupt.New(stm32.IRQ_LPTIM1, handleLPTIM)
	intr.Enable()
}

func handleLPTIM(interrupt.Interrupt) {
	if lptimHandler != nil {
		lptimHandler()
	}
}
