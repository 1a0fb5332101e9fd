package sched

import (
	"errors"
	"math"

	"github.com/edgelink/lorasched/driver"
)

var (
	// ErrTimerConflict is returned when an arm request arrives while a
	// countdown is running. The running timer always wins; the request is
	// dropped without touching it.
	ErrTimerConflict = errors.New("sched: timer already running")
	// ErrTimerRange is returned when a requested duration exceeds the
	// timer's 16-bit counter.
	ErrTimerRange = errors.New("sched: duration exceeds timer range")
)

// ArmTimer arms the single-shot countdown for ms milliseconds (one tick per
// millisecond by clock configuration). The timer must be idle; there is no
// queueing and no preemption of an armed timer. Failures are logged and
// returned so harnesses can assert on them, but are never fatal.
func (c *Core) ArmTimer(ms uint32) error {
	if ms > math.MaxUint16 {
		c.timerLog.Errorf("timeout of %d ms exceeds timer range", ms)
		return ErrTimerRange
	}

	var err error
	c.res.WithTimer(func(t driver.LowPowerTimer) {
		if cnt := t.CurrentCount(); cnt != 0 {
			c.timerLog.Errorf("timer already running (count=%d), dropping request for %d ms", cnt, ms)
			err = ErrTimerConflict
			return
		}
		t.Start(uint16(ms))
	})
	return err
}
