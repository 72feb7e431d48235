// MCX-A pin / input-mux capability tables
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package pins implements the two-place relation between a physical pin
// and the peripheral functions it can be wired to. NewUartTXPin and its
// siblings check a Pin against the capability table when they are called
// and return an error for an incapable one; on success they return a
// sealed token (UartTXCapable, ...) that only those constructors can
// produce, so code that takes such a token cannot be handed a raw,
// unchecked Pin. CheckCapable is the fallback for callers that build pin
// identity dynamically (e.g. from a board config table).
package pins

import "fmt"

// Pin names one physical pin, P{port}_{num}.
type Pin struct {
	Port int
	Num  int
}

func (p Pin) String() string { return fmt.Sprintf("P%d_%d", p.Port, p.Num) }

// Function names a peripheral signal a pin can be muxed to.
type Function string

const (
	FuncUartTX   Function = "uart_tx"
	FuncUartRX   Function = "uart_rx"
	FuncUartRTS  Function = "uart_rts"
	FuncUartCTS  Function = "uart_cts"
	FuncI2cSDA   Function = "i2c_sda"
	FuncI2cSCL   Function = "i2c_scl"
	FuncI3cSDA   Function = "i3c_sda"
	FuncI3cSCL   Function = "i3c_scl"
	FuncCTimerIn Function = "ctimer_cap"
	FuncAdcIn    Function = "adc_in"
)

// capability is the sealed relation: which functions a given pin
// supports, populated once from the datasheet's pin-mux table.
var capability = map[Pin]map[Function]uint8{}

// register records that pin supports function at the given mux select
// value (ALT0-7). Called only from this package's init table below.
func register(pin Pin, fn Function, mux uint8) {
	m, ok := capability[pin]
	if !ok {
		m = map[Function]uint8{}
		capability[pin] = m
	}
	m[fn] = mux
}

func init() {
	// A representative slice of the MCX-A pin-mux table; per spec.md §1
	// the full per-chip pin-mux table is an external collaborator. This
	// is enough to exercise the capability-relation pattern end to end.
	register(Pin{0, 0}, FuncUartTX, 2)
	register(Pin{0, 1}, FuncUartRX, 2)
	register(Pin{0, 2}, FuncUartRTS, 2)
	register(Pin{0, 3}, FuncUartCTS, 2)
	register(Pin{1, 4}, FuncI2cSDA, 3)
	register(Pin{1, 5}, FuncI2cSCL, 3)
	register(Pin{1, 6}, FuncI3cSDA, 4)
	register(Pin{1, 7}, FuncI3cSCL, 4)
	register(Pin{2, 8}, FuncCTimerIn, 1)
	register(Pin{3, 9}, FuncAdcIn, 0)
}

// CheckCapable is the runtime fallback for callers that build Pin values
// dynamically and so cannot lean on the compile-time capable-interface
// pattern below. It returns the mux select value to program, or an error
// naming the incapable pin/function pair.
func CheckCapable(p Pin, fn Function) (muxSel uint8, err error) {
	m, ok := capability[p]
	if !ok {
		return 0, fmt.Errorf("pins: %s has no registered capabilities", p)
	}
	sel, ok := m[fn]
	if !ok {
		return 0, fmt.Errorf("pins: %s cannot be muxed to %s", p, fn)
	}
	return sel, nil
}

// The sealed capability interfaces below give the compile-time guarantee
// spec.md's design notes call for: a parameter of type UartTXCapable
// cannot be given a Pin that was never wrapped through NewUartTXPin, so
// passing an unchecked Pin is a build error. Whether the pin is capable is
// checked when NewUartTXPin runs, which returns an error for an incapable
// pin.

// UartTXCapable marks a pin validated at construction time as wirable to
// an LPUART TX signal.
type UartTXCapable interface {
	uartTX() Pin
}

// UartRXCapable marks a pin validated as wirable to an LPUART RX signal.
type UartRXCapable interface {
	uartRX() Pin
}

// I2cSDACapable marks a pin validated as wirable to an LPI2C SDA signal.
type I2cSDACapable interface {
	i2cSDA() Pin
}

// I2cSCLCapable marks a pin validated as wirable to an LPI2C SCL signal.
type I2cSCLCapable interface {
	i2cSCL() Pin
}

// UartRTSCapable marks a pin validated as wirable to an LPUART RTS signal.
type UartRTSCapable interface {
	uartRTS() Pin
}

// UartCTSCapable marks a pin validated as wirable to an LPUART CTS signal.
type UartCTSCapable interface {
	uartCTS() Pin
}

type uartTXPin struct{ p Pin }

func (u uartTXPin) uartTX() Pin { return u.p }

type uartRXPin struct{ p Pin }

func (u uartRXPin) uartRX() Pin { return u.p }

type i2cSDAPin struct{ p Pin }

func (i i2cSDAPin) i2cSDA() Pin { return i.p }

type i2cSCLPin struct{ p Pin }

func (i i2cSCLPin) i2cSCL() Pin { return i.p }

type uartRTSPin struct{ p Pin }

func (u uartRTSPin) uartRTS() Pin { return u.p }

type uartCTSPin struct{ p Pin }

func (u uartCTSPin) uartCTS() Pin { return u.p }

// NewUartTXPin validates p against the capability table and, on success,
// returns a token only usable where a UartTXCapable is required.
func NewUartTXPin(p Pin) (UartTXCapable, error) {
	if _, err := CheckCapable(p, FuncUartTX); err != nil {
		return nil, err
	}
	return uartTXPin{p}, nil
}

// NewUartRXPin validates p against the capability table for LPUART RX.
func NewUartRXPin(p Pin) (UartRXCapable, error) {
	if _, err := CheckCapable(p, FuncUartRX); err != nil {
		return nil, err
	}
	return uartRXPin{p}, nil
}

// NewI2cSDAPin validates p against the capability table for LPI2C SDA.
func NewI2cSDAPin(p Pin) (I2cSDACapable, error) {
	if _, err := CheckCapable(p, FuncI2cSDA); err != nil {
		return nil, err
	}
	return i2cSDAPin{p}, nil
}

// NewI2cSCLPin validates p against the capability table for LPI2C SCL.
func NewI2cSCLPin(p Pin) (I2cSCLCapable, error) {
	if _, err := CheckCapable(p, FuncI2cSCL); err != nil {
		return nil, err
	}
	return i2cSCLPin{p}, nil
}

// NewUartRTSPin validates p against the capability table for LPUART RTS.
func NewUartRTSPin(p Pin) (UartRTSCapable, error) {
	if _, err := CheckCapable(p, FuncUartRTS); err != nil {
		return nil, err
	}
	return uartRTSPin{p}, nil
}

// NewUartCTSPin validates p against the capability table for LPUART CTS.
func NewUartCTSPin(p Pin) (UartCTSCapable, error) {
	if _, err := CheckCapable(p, FuncUartCTS); err != nil {
		return nil, err
	}
	return uartCTSPin{p}, nil
}
