// MCX-A peripheral clock-gate layer
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package gate implements the typed enable/reset sequence every MCX-A
// peripheral driver runs at construction time: verify the clock tree
// (soc/mcxa/clock) has the requested source live at the right power
// level, program the peripheral's source mux and 4-bit divider, enable
// its clock gate, pulse its reset line, and mint a wake-guard token when
// the chosen source does not survive deep sleep.
package gate

import (
	"github.com/nxp-mcxa/mcxa-hal/cortexm"
	"github.com/nxp-mcxa/mcxa-hal/hal/errs"
	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wakeguard"
)

// Gate is the clock-gate control surface for one peripheral instance. Each
// peripheral package (i2c, uart, ctimer, adc, ...) supplies a Gate
// implementation backed by that peripheral's PCC (peripheral clock
// control) register.
type Gate interface {
	EnableClock()
	DisableClock()
	IsClockEnabled() bool
	AssertReset()
	ReleaseReset()
	IsResetReleased() bool
}

// PCCGate is a Gate backed by a single PCC register following the common
// MCX-A layout: bit 30 clock-enable, bit 31 (active-low) reset, source
// mux at [25:24], 4-bit divider at [23:20]. GPIO/PORT/CRC and the other
// no-config peripherals in spec.md §4.2 skip the mux/div fields and use
// NoConfigHook.
type PCCGate struct {
	Addr uint32
}

const (
	pccEnableBit = 30
	pccResetBit  = 31 // active low: 0 = held in reset, 1 = released
)

func (g PCCGate) EnableClock()  { reg.Set(g.Addr, pccEnableBit) }
func (g PCCGate) DisableClock() { reg.Clear(g.Addr, pccEnableBit) }
func (g PCCGate) IsClockEnabled() bool {
	return reg.Get(g.Addr, pccEnableBit, 1) == 1
}
func (g PCCGate) AssertReset()  { reg.Clear(g.Addr, pccResetBit) }
func (g PCCGate) ReleaseReset() { reg.Set(g.Addr, pccResetBit) }
func (g PCCGate) IsResetReleased() bool {
	return reg.Get(g.Addr, pccResetBit, 1) == 1
}

// SourceMux programs the 2-bit source-select field and the 4-bit divider
// of a PCCGate register. It returns nothing; each Hook computes the fed-in
// frequency itself with div.Divide.
func (g PCCGate) SourceMux(sel uint32, div clock.Div) {
	reg.SetN(g.Addr, 24, 0x3, sel)
	reg.SetN(g.Addr, 20, 0xf, uint32(div.Field()))
}

// Hook is the per-peripheral pre_enable_config callback: given the
// published Clocks snapshot, it validates the requested source and power
// level, programs the mux/divider, and returns the resulting frequency.
type Hook func(c *clock.Clocks) (freqHz uint32, power clock.Power, err error)

// PreEnableParts is what a successful EnableAndReset returns: the
// frequency fed into the peripheral and, if its source does not survive
// deep sleep, a live wake-guard the caller must hold for as long as the
// peripheral is in use.
type PreEnableParts struct {
	FreqHz uint32
	Guard  *wakeguard.Guard
}

// resetSpinCycles is the number of no-op loop iterations the reset pulse
// holds the peripheral in reset, long enough for the reset de-assert
// synchronizer on every MCX-A peripheral to see a clean edge.
const resetSpinCycles = 16

// EnableAndReset runs the five-step sequence spec.md §4.2 describes:
// disable (idempotent), run hook inside a critical section, enable and
// poll the gate, pulse reset, and mint a wake-guard for a source that does
// not survive deep sleep (ActiveOnly or NormalEnabledDeepSleepDisabled). The critical section is entered only around the hook, matching
// §5's requirement that it be short and non-suspending.
func EnableAndReset(g Gate, hook Hook) (PreEnableParts, error) {
	g.DisableClock()

	var (
		freqHz uint32
		power  clock.Power
		hookErr error
	)

	err := clock.WithClocks(func(c *clock.Clocks) {
		freqHz, power, hookErr = hook(c)
	})
	if err != nil {
		return PreEnableParts{}, &clock.Error{Kind: errs.NeverInitialized}
	}
	if hookErr != nil {
		return PreEnableParts{}, hookErr
	}

	g.EnableClock()
	for !g.IsClockEnabled() {
		// single-register read-back poll; the gate synchronizer on
		// every MCX-A peripheral asserts within a handful of clock
		// cycles of the enable write
	}
	cortexm.CPU{}.DataSyncBarrier()
	cortexm.CPU{}.InstructionSyncBarrier()

	g.AssertReset()
	for i := 0; i < resetSpinCycles; i++ {
	}
	g.ReleaseReset()

	return PreEnableParts{
		FreqHz: freqHz,
		Guard:  wakeguard.For(power),
	}, nil
}

// NoConfigHook is the pre_enable_config for GPIO/PORT/CRC and any other
// peripheral with no source mux or divider: it always succeeds with
// freqHz 0, matching spec.md's "No-config peripherals ... return Ok(0)".
func NoConfigHook(*clock.Clocks) (uint32, clock.Power, error) {
	return 0, clock.AlwaysOn, nil
}

// checkDivided validates a computed source/div result against a
// peripheral's per-voltage maximum, as every per-peripheral hook below
// does before returning.
func checkDivided(peripheral string, freqHz, maxHz uint32) error {
	if freqHz > maxHz {
		return clock.BadConfig(peripheral, "source/div exceeds peripheral maximum for active voltage")
	}
	return nil
}
