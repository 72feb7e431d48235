package gate

import (
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
)

// AdcSource enumerates the clocks the ADC's source mux can select, per
// spec.md §4.2.
type AdcSource int

const (
	AdcFroLfDiv AdcSource = iota
	AdcFroHf
	AdcClkIn
	AdcClk1M
	AdcPll1ClkDiv
	AdcNone
)

// AdcHook builds the pre_enable_config hook for an ADC instance.
func AdcHook(g PCCGate, src AdcSource, div clock.Div) Hook {
	return func(c *clock.Clocks) (uint32, clock.Power, error) {
		if src == AdcNone {
			return 0, clock.AlwaysOn, nil
		}
		node, sel, err := lookup(c, adcSourceName(src))
		if err != nil {
			return 0, 0, err
		}
		g.SourceMux(sel, div)
		freq := div.Divide(node.Hz)
		if err := checkDivided("adc", freq, clock.LimitsFor(c.ActiveVoltage).AdcMaxHz); err != nil {
			return 0, 0, err
		}
		return freq, node.Power, nil
	}
}

func adcSourceName(src AdcSource) clock.Name {
	switch src {
	case AdcFroLfDiv:
		return clock.FroLFDiv
	case AdcFroHf:
		return clock.FroHF
	case AdcClkIn:
		return clock.ClkIn
	case AdcClk1M:
		return clock.Clk1M
	case AdcPll1ClkDiv:
		return clock.PLL1ClkDiv
	}
	return ""
}

// I2cSource enumerates the clocks LPI2C's source mux can select.
type I2cSource int

const (
	I2cFroLfDiv I2cSource = iota
	I2cFroHfDiv
	I2cClkIn
	I2cClk1M
	I2cPll1ClkDiv
	I2cNone
)

// I2cHook builds the pre_enable_config hook for an LPI2C instance.
func I2cHook(g PCCGate, src I2cSource, div clock.Div) Hook {
	return func(c *clock.Clocks) (uint32, clock.Power, error) {
		if src == I2cNone {
			return 0, clock.AlwaysOn, nil
		}
		node, sel, err := lookup(c, i2cSourceName(src))
		if err != nil {
			return 0, 0, err
		}
		g.SourceMux(sel, div)
		freq := div.Divide(node.Hz)
		if err := checkDivided("lpi2c", freq, clock.LimitsFor(c.ActiveVoltage).I2cMaxHz); err != nil {
			return 0, 0, err
		}
		return freq, node.Power, nil
	}
}

func i2cSourceName(src I2cSource) clock.Name {
	switch src {
	case I2cFroLfDiv:
		return clock.FroLFDiv
	case I2cFroHfDiv:
		return clock.FroHFDiv
	case I2cClkIn:
		return clock.ClkIn
	case I2cClk1M:
		return clock.Clk1M
	case I2cPll1ClkDiv:
		return clock.PLL1ClkDiv
	}
	return ""
}

// I3cSource enumerates the clocks I3C's source mux can select; it is an
// alias of I2cSource, whose set already includes Clk1M.
type I3cSource = I2cSource

const (
	I3cFroLfDiv   = I2cFroLfDiv
	I3cFroHfDiv   = I2cFroHfDiv
	I3cClkIn      = I2cClkIn
	I3cClk1M      = I2cClk1M
	I3cPll1ClkDiv = I2cPll1ClkDiv
	I3cNone       = I2cNone
)

// I3cHook builds the pre_enable_config hook for an I3C instance.
func I3cHook(g PCCGate, src I3cSource, div clock.Div) Hook {
	return func(c *clock.Clocks) (uint32, clock.Power, error) {
		if src == I3cNone {
			return 0, clock.AlwaysOn, nil
		}
		node, sel, err := lookup(c, i2cSourceName(src))
		if err != nil {
			return 0, 0, err
		}
		g.SourceMux(sel, div)
		freq := div.Divide(node.Hz)
		if err := checkDivided("i3c", freq, clock.LimitsFor(c.ActiveVoltage).I3cMaxHz); err != nil {
			return 0, 0, err
		}
		return freq, node.Power, nil
	}
}

// UartSource enumerates the clocks LPUART's source mux can select; adds
// Clk16K over the I2C set per spec.md §4.2.
type UartSource int

const (
	UartFroLfDiv UartSource = iota
	UartFroHfDiv
	UartClkIn
	UartClk1M
	UartPll1ClkDiv
	UartClk16K
	UartNone
)

// UartHook builds the pre_enable_config hook for an LPUART instance.
func UartHook(g PCCGate, src UartSource, div clock.Div) Hook {
	return func(c *clock.Clocks) (uint32, clock.Power, error) {
		if src == UartNone {
			return 0, clock.AlwaysOn, nil
		}
		node, sel, err := lookup(c, uartSourceName(src))
		if err != nil {
			return 0, 0, err
		}
		g.SourceMux(sel, div)
		freq := div.Divide(node.Hz)
		if err := checkDivided("lpuart", freq, clock.LimitsFor(c.ActiveVoltage).UartMaxHz); err != nil {
			return 0, 0, err
		}
		return freq, node.Power, nil
	}
}

func uartSourceName(src UartSource) clock.Name {
	switch src {
	case UartFroLfDiv:
		return clock.FroLFDiv
	case UartFroHfDiv:
		return clock.FroHFDiv
	case UartClkIn:
		return clock.ClkIn
	case UartClk1M:
		return clock.Clk1M
	case UartPll1ClkDiv:
		return clock.PLL1ClkDiv
	case UartClk16K:
		return clock.Clk16KVddCore
	}
	return ""
}

// OsTimerSource enumerates the clocks the OS-Timer's source mux can
// select: only Clk16KVddCore, Clk1M or None per spec.md §4.2.
type OsTimerSource int

const (
	OsTimerClk16KVddCore OsTimerSource = iota
	OsTimerClk1M
	OsTimerNone
)

// OsTimerHook builds the pre_enable_config hook for the OS-Timer. The
// OS-Timer has no divider field; it runs directly off the selected
// source.
func OsTimerHook(g PCCGate, src OsTimerSource) Hook {
	return func(c *clock.Clocks) (uint32, clock.Power, error) {
		var name clock.Name
		switch src {
		case OsTimerNone:
			return 0, clock.AlwaysOn, nil
		case OsTimerClk16KVddCore:
			name = clock.Clk16KVddCore
		case OsTimerClk1M:
			name = clock.Clk1M
		}
		node, sel, err := lookup(c, name)
		if err != nil {
			return 0, 0, err
		}
		g.SourceMux(sel, 1)
		return node.Hz, node.Power, nil
	}
}

// lookup resolves a clock.Name against the snapshot, returning its node
// and the hardware mux selector value, taken from the shared
// muxSelectors table so Hook implementations do not each duplicate the
// clock-to-register-field mapping.
func lookup(c *clock.Clocks, name clock.Name) (clock.Node, uint32, error) {
	node := c.Node(name)
	if !node.Present() {
		return clock.Node{}, 0, clock.BadConfig(string(name), "clock not present in snapshot")
	}
	return node, muxSelectors[name], nil
}

// muxSelectors assigns the hardware mux field encoding for each clock
// name that can feed a peripheral source mux. The mapping is shared
// across every peripheral's hook since the MCX-A PCC source-select field
// uses a consistent clock ordinal across peripherals.
var muxSelectors = map[clock.Name]uint32{
	clock.FroLFDiv:      0,
	clock.FroHF:         1,
	clock.FroHFDiv:      1,
	clock.ClkIn:         2,
	clock.Clk1M:         3,
	clock.PLL1ClkDiv:    4,
	clock.Clk16KVddCore: 5,
}
