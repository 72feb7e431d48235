// MCX-A clock tree controller
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package clock implements the one-shot, ordered bring-up of the MCX-A
// clock tree: core voltage regulators, the internal RC oscillators (SIRC,
// FIRC, FRO16K), the external system oscillator (SOSC), the system PLL
// (SPLL), the main clock mux and AHB divider, and flash wait-states. Once
// Init succeeds it publishes an immutable Clocks snapshot that the gate
// layer (soc/mcxa/gate) consults for every peripheral it brings up.
package clock

import (
	"fmt"

	"github.com/nxp-mcxa/mcxa-hal/hal/errs"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wakeguard"
)

// Power classifies whether a clock node survives deep sleep.
type Power = wakeguard.Power

const (
	ActiveOnly                     = wakeguard.ActiveOnly
	NormalEnabledDeepSleepDisabled = wakeguard.NormalEnabledDeepSleepDisabled
	AlwaysOn                       = wakeguard.AlwaysOn
)

// Node is one named clock in the tree: a frequency and the power mode it
// keeps across sleep states. The zero Node (Hz: 0) represents an absent
// clock — callers test Present() rather than comparing to a sentinel.
type Node struct {
	Hz      uint32
	Power   Power
	present bool
}

// Present reports whether this clock was brought up by Init.
func (n Node) Present() bool { return n.present }

func present(hz uint32, p Power) Node {
	return Node{Hz: hz, Power: p, present: true}
}

// Name identifies one of the clock nodes tracked in a Clocks snapshot.
type Name string

const (
	FroHFRoot     Name = "fro_hf_root"
	FroHF         Name = "fro_hf"
	Clk45M        Name = "clk_45m"
	FroHFDiv      Name = "fro_hf_div"
	Fro12M        Name = "fro_12m"
	Clk1M         Name = "clk_1m"
	FroLFDiv      Name = "fro_lf_div"
	Clk16KVSys    Name = "clk_16k_vsys"
	Clk16KVddCore Name = "clk_16k_vdd_core"
	MainClk       Name = "main_clk"
	CPUSystemClk  Name = "cpu_system_clk"
	PLL1Clk       Name = "pll1_clk"
	PLL1ClkDiv    Name = "pll1_clk_div"
	ClkIn         Name = "clk_in"
)

// VoltageLevel selects the core voltage regime, which in turn bounds the
// maximum clock frequencies permitted anywhere in the tree.
type VoltageLevel int

const (
	MidDrive VoltageLevel = iota
	OverDrive
)

// DriveMode is the regulator drive strength at a given voltage level.
type DriveMode struct {
	Low          bool
	EnableBandgap bool
}

// Normal is the standard drive strength (not Low).
var Normal = DriveMode{}

// Clocks is the immutable, process-wide snapshot published by a successful
// Init. It is safe for concurrent read access from any number of
// goroutines; nothing in it is ever mutated after Init publishes it.
type Clocks struct {
	nodes map[Name]Node

	ActiveVoltage  VoltageLevel
	LowPowerVolt   VoltageLevel
	CPUClkHz       uint32
}

// Node returns the named clock, or the zero Node (Present() == false) if
// that clock was not brought up.
func (c *Clocks) Node(n Name) Node {
	if c == nil {
		return Node{}
	}
	return c.nodes[n]
}

// Error is the taxonomy every clock-tree operation returns on failure,
// mirroring spec.md's ClockError::BadConfig{clock, reason} plus the two
// lifecycle sentinels.
type Error struct {
	Kind   errs.Code
	Clock  string
	Reason string
}

func (e *Error) Error() string {
	if e.Clock == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Clock, e.Reason)
}

func (e *Error) Code() errs.Code { return e.Kind }

// BadConfig builds the Configuration-kind error every bring-up phase
// returns on an invalid input or an out-of-range computed value.
func BadConfig(clock, reason string) *Error {
	return &Error{Kind: errs.BadConfig, Clock: clock, Reason: reason}
}

// ErrAlreadyInitialized is returned by a second call to Init.
var ErrAlreadyInitialized = &Error{Kind: errs.AlreadyInitialized}

// ErrNeverInitialized is returned by WithClocks before any Init has
// succeeded.
var ErrNeverInitialized = &Error{Kind: errs.NeverInitialized}
