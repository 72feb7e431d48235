// MCX-A CTimer capture and OS-timer
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ctimer implements the four-channel edge-capture peripheral and
// the always-on, gray-coded 64-bit OS-timer with its match-register alarm.
package ctimer

import (
	"math"
	"sync/atomic"

	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/gate"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wait"
)

const (
	regEvTimerL    = 0x000
	regEvTimerH    = 0x004
	regMatchL      = 0x008
	regMatchH      = 0x00c
	regOsEventCtrl = 0x010

	bitIntEnable  = 0
	bitIntFlag    = 1
	bitMatchWrRdy = 2
)

// OsTimer is the always-on 64-bit timebase. Its gate source is fixed to
// Clk1M or Clk16KVddCore per spec.md §4.2; the zero value is not usable,
// construct with New.
type OsTimer struct {
	base uint32

	initialized int32
	matchCell   wait.Cell
}

// New runs the gate layer's enable_and_reset for the OS-Timer instance at
// base, then arms the match register to "never" with its interrupt
// masked; SetAlarm unmasks the interrupt when it arms a deadline. The returned OsTimer must not be read (Now) before this
// returns, mirroring the guard the source driver keeps against reading
// the counter before the peripheral is actually enabled.
func New(base uint32, g gate.PCCGate, src gate.OsTimerSource) (*OsTimer, error) {
	if _, err := gate.EnableAndReset(g, gate.OsTimerHook(g, src)); err != nil {
		return nil, err
	}

	t := &OsTimer{base: base}

	reg.Clear(t.base+regOsEventCtrl, bitIntEnable)
	reg.Write(t.base+regMatchL, 0xffff_ffff)
	reg.Write(t.base+regMatchH, 0xffff)

	atomic.StoreInt32(&t.initialized, 1)
	return t, nil
}

// Now returns the current counter value. Reading before New completes
// returns 0 rather than touching the counter register, since doing so on
// real MCX-A silicon faults before the peripheral is enabled.
func (t *OsTimer) Now() uint64 {
	if atomic.LoadInt32(&t.initialized) == 0 {
		return 0
	}

	hi := uint64(reg.Read(t.base + regEvTimerH))
	lo := uint64(reg.Read(t.base + regEvTimerL))
	return grayToDec(hi<<32 | lo)
}

// SetAlarm arms the match register for timestamp, gray-encoding it first.
// It reports false (and leaves the interrupt masked) if timestamp has
// already passed by the time the write completes, the same race the
// caller's scheduling loop must retry against.
func (t *OsTimer) SetAlarm(timestamp uint64) bool {
	for reg.Get(t.base+regOsEventCtrl, bitMatchWrRdy, 1) == 1 {
	}

	if timestamp <= t.Now() {
		reg.Clear(t.base+regOsEventCtrl, bitIntEnable)
		return false
	}

	gray := decToGray(timestamp)
	reg.Write(t.base+regMatchL, uint32(gray&0xffff_ffff))
	reg.Write(t.base+regMatchH, uint32(gray>>32))
	reg.Set(t.base+regOsEventCtrl, bitIntEnable)

	return true
}

// HandleInterrupt acknowledges the match interrupt and wakes the match
// cell; the caller's scheduler re-derives the next expiration and calls
// SetAlarm again, retrying if the race above reports a past deadline.
func (t *OsTimer) HandleInterrupt() {
	if reg.Get(t.base+regOsEventCtrl, bitIntFlag, 1) == 1 {
		reg.Clear(t.base+regOsEventCtrl, bitIntEnable)
		reg.AckFlag(t.base+regOsEventCtrl, bitIntFlag) // write-1-to-clear
		t.matchCell.Wake()
	}
}

// MatchCell exposes the alarm wait cell so a higher-level scheduler can
// block until the next programmed match fires.
func (t *OsTimer) MatchCell() *wait.Cell { return &t.matchCell }

// NeverExpiring is the sentinel SetAlarm callers use to mean "no alarm
// scheduled".
const NeverExpiring = uint64(math.MaxUint64)
