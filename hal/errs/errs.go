// MCX-A error taxonomy
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package errs defines the stable error vocabulary shared by the clock
// tree controller, the peripheral gate layer and the async drivers. A
// Code is comparable and allocation-free; E wraps one with operation
// context and, optionally, an underlying cause.
package errs

// Code is a stable, comparable error identifier.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes.
const (
	OK                  Code = "ok"
	BadConfig           Code = "bad_config"
	AlreadyInitialized  Code = "already_initialized"
	NeverInitialized    Code = "never_initialized"
	ClockNotEnabled     Code = "clock_not_enabled"
	ClockUnstable       Code = "clock_unstable"
	VoltageTooLow       Code = "voltage_too_low"
	DividerOutOfRange   Code = "divider_out_of_range"
	Timeout             Code = "timeout"
	Canceled            Code = "canceled"
	Busy                Code = "busy"
	NotReady            Code = "not_ready"
	Overrun             Code = "overrun"
	FifoError           Code = "fifo_error"
	FramingError        Code = "framing_error"
	NoiseError          Code = "noise_error"
	ParityError         Code = "parity_error"
	NACK                Code = "nack"
	ArbitrationLost     Code = "arbitration_lost"
	InvalidCapability   Code = "invalid_capability"
	Error               Code = "error"
)

// E wraps a Code with the operation and clock/peripheral name that failed,
// plus an optional underlying cause.
type E struct {
	C      Code
	Op     string
	Target string
	Msg    string
	Err    error
}

func (e *E) Error() string {
	s := e.Op
	if e.Target != "" {
		s += "(" + e.Target + ")"
	}
	s += ": " + string(e.C)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// New builds an *E for the given operation, target and code.
func New(op, target string, c Code) *E {
	return &E{Op: op, Target: target, C: c}
}

// Wrap builds an *E for the given operation, target and code, carrying an
// underlying cause.
func Wrap(op, target string, c Code, err error) *E {
	return &E{Op: op, Target: target, C: c, Err: err}
}

// Of extracts a Code from an error, defaulting to Error. Returns OK for a
// nil error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
