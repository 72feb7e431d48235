// MCX-A HAL entry point
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package hal is the module's single entry point: a Config struct holding
// the clock tree bring-up configuration and per-peripheral NVIC priorities,
// and an Init that runs clock bring-up exactly once. There are no env
// vars, config files or CLI flags anywhere in this module; board bring-up
// code builds a Config literal and calls Init from its reset handler.
package hal

import (
	"github.com/nxp-mcxa/mcxa-hal/cortexm"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
)

// Peripheral names one peripheral instance for the purpose of assigning
// it an NVIC priority. Board code that never touches a given peripheral
// simply never adds an entry for it; PriorityFor falls back to the
// lowest priority rather than requiring an exhaustive map.
type Peripheral int

const (
	PeripheralI2C0 Peripheral = iota
	PeripheralI2C1
	PeripheralI3C0
	PeripheralUart0
	PeripheralUart1
	PeripheralUart2
	PeripheralCTimer0
	PeripheralOsTimer
	PeripheralRtc
	PeripheralAdc0
	PeripheralDma0
)

// Config is the complete HAL bring-up configuration: clock tree topology
// plus the priority every peripheral interrupt is to be armed at. This is
// the only surface the module accepts configuration through.
type Config struct {
	Clocks     clock.Config
	Priorities map[Peripheral]cortexm.Priority
}

// Init brings up the clock tree from cfg.Clocks. Calling it a second time
// always fails with clock.ErrAlreadyInitialized and leaves the clock
// snapshot from the first call untouched; per-peripheral construction
// (gate.EnableAndReset and the driver constructors built on it) is left to
// the caller, one peripheral at a time, after Init succeeds.
func Init(cfg Config) error {
	return clock.Init(cfg.Clocks)
}

// PriorityFor returns the NVIC priority cfg assigns to p, defaulting to
// the lowest priority (P7) when the caller never named p explicitly.
func (cfg Config) PriorityFor(p Peripheral) cortexm.Priority {
	if pr, ok := cfg.Priorities[p]; ok {
		return pr
	}
	return cortexm.P7
}
