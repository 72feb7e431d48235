package clock

// Limits is the per-voltage-mode table of maximum clock frequencies that
// every bring-up phase and the gate layer's enable_and_reset consult for
// range checks.
type Limits struct {
	CPUClkMaxHz  uint32
	FroHFMaxHz   uint32
	MainClkMaxHz uint32
	PLL1ClkMaxHz uint32
	AdcMaxHz     uint32
	I2cMaxHz     uint32
	I3cMaxHz     uint32
	UartMaxHz    uint32
}

// MidDriveLimits bounds the tree when the core voltage regulator runs at
// its lower setting.
var MidDriveLimits = Limits{
	CPUClkMaxHz:  45_000_000,
	FroHFMaxHz:   90_000_000,
	MainClkMaxHz: 45_000_000,
	PLL1ClkMaxHz: 48_000_000,
	AdcMaxHz:     24_000_000,
	I2cMaxHz:     25_000_000,
	I3cMaxHz:     25_000_000,
	UartMaxHz:    45_000_000,
}

// OverDriveLimits bounds the tree at the raised core voltage setting.
var OverDriveLimits = Limits{
	CPUClkMaxHz:  180_000_000,
	FroHFMaxHz:   180_000_000,
	MainClkMaxHz: 180_000_000,
	PLL1ClkMaxHz: 180_000_000,
	AdcMaxHz:     64_000_000,
	I2cMaxHz:     60_000_000,
	I3cMaxHz:     25_000_000,
	UartMaxHz:    180_000_000,
}

// LimitsFor returns the table governing the given voltage level.
func LimitsFor(v VoltageLevel) Limits {
	if v == OverDrive {
		return OverDriveLimits
	}
	return MidDriveLimits
}
