package clock

// Div is a clock pre-divider value in [1, 16], stored as the 4-bit
// hardware field (div-1) but exposed to callers as the human divisor.
type Div uint8

// Field returns the 4-bit hardware divider field (d-1).
func (d Div) Field() uint8 { return uint8(d - 1) }

// Divide returns hz/d.
func (d Div) Divide(hz uint32) uint32 {
	if d == 0 {
		return hz
	}
	return hz / uint32(d)
}

func (d Div) valid() bool { return d >= 1 && d <= 16 }

// PowerConfig groups the active-mode and low-power-mode voltage settings
// consumed by the voltage bring-up phase.
type PowerConfig struct {
	ActiveMode    struct {
		Level VoltageLevel
		Drive DriveMode
	}
	LowPowerMode struct {
		Level VoltageLevel
		Drive DriveMode
	}
	CoreSleep  CoreSleepMode
	FlashSleep FlashSleepMode
}

// CoreSleepMode selects whether the WFE core sleep path ungates or gates
// clocks on entry.
type CoreSleepMode int

const (
	WfeUngated CoreSleepMode = iota
	WfeGated
)

// FlashSleepMode selects the flash controller's behavior across sleep.
type FlashSleepMode int

const (
	FlashSleepNever FlashSleepMode = iota
	FlashDoze
	FlashDozeWithFlashWake
)

// SircConfig configures the fixed 12 MHz internal oscillator.
type SircConfig struct {
	Power         Power
	Fro12MEnabled bool
	FroLFDiv      *Div
}

// FircFrequency is one of the four selectable FIRC output frequencies.
type FircFrequency uint32

const (
	Firc45MHz  FircFrequency = 45_000_000
	Firc60MHz  FircFrequency = 60_000_000
	Firc90MHz  FircFrequency = 90_000_000
	Firc180MHz FircFrequency = 180_000_000
)

func (f FircFrequency) valid() bool {
	switch f {
	case Firc45MHz, Firc60MHz, Firc90MHz, Firc180MHz:
		return true
	}
	return false
}

// FircConfig configures the 180 MHz fast internal oscillator.
type FircConfig struct {
	Frequency    FircFrequency
	Power        Power
	FroHFEnabled bool
	Clk45MEnabled bool
	FroHFDiv     *Div
}

// Fro16kConfig configures the 16 kHz auxiliary oscillator and which power
// domains its two outputs are routed to.
type Fro16kConfig struct {
	VSysDomainActive    bool
	VddCoreDomainActive bool
}

// SoscMode selects whether SOSC is driven by a crystal or an external
// active clock source.
type SoscMode int

const (
	Crystal SoscMode = iota
	ActiveClock
)

// SoscConfig configures the external system oscillator, 8-50 MHz.
type SoscConfig struct {
	Mode      SoscMode
	Frequency uint32
	Power     Power
}

func (s SoscConfig) valid() bool {
	return s.Frequency >= 8_000_000 && s.Frequency <= 50_000_000
}

// SpllSource selects the input reference for the system PLL.
type SpllSource int

const (
	SpllFromSosc SpllSource = iota
	SpllFromFirc
	SpllFromSirc
)

// SpllMode selects which of the four PLL equation variants is used.
type SpllMode int

const (
	Mode1a SpllMode = iota
	Mode1b
	Mode1c
	Mode1d
)

// SpllConfig configures the system PLL. M, N and P are the raw multiplier/
// divider values; BypassP2 selects whether modes 1b/1d divide Fcco by an
// extra factor of 2 ("(1 or 2)" in the governing equations).
type SpllConfig struct {
	Source       SpllSource
	Mode         SpllMode
	M            uint32
	N            uint32
	P            uint32
	BypassP2     bool
	Power        Power
	PLL1ClkDiv   *Div
}

// MainClockSource selects which upstream clock feeds main_clk.
type MainClockSource int

const (
	MainFromSoscClkIn MainClockSource = iota
	MainFromSircFro12M
	MainFromFircHFRoot
	MainFromRoscFro16K
	MainFromSpll1
)

// MainClockConfig configures the main clock mux and AHB divider.
type MainClockConfig struct {
	Source    MainClockSource
	AhbClkDiv Div
	Power     Power
}

// Config is the complete clock tree bring-up input, consumed by Init.
type Config struct {
	VddPower  PowerConfig
	Sirc      SircConfig
	Firc      *FircConfig
	Fro16k    *Fro16kConfig
	Sosc      *SoscConfig
	Spll      *SpllConfig
	MainClock MainClockConfig
}
