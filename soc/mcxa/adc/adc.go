// MCX-A LPADC driver
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package adc implements the LPADC command/trigger programming model:
// one of up to seven reusable conversion commands is wired to one of
// four hardware triggers, a software trigger fires a conversion, and the
// result FIFO is drained either by polling or by blocking on the
// interrupt-driven wait cell.
package adc

import (
	"context"

	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/gate"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wait"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wakeguard"
)

// Resolution selects the conversion command's output width.
type Resolution int

const (
	Resolution12Bit Resolution = iota
	Resolution16Bit
)

// ChannelMode selects single-ended vs differential sampling for a
// command.
type ChannelMode int

const (
	SingleEndedASide ChannelMode = iota
	SingleEndedBSide
	Differential
)

// TriggerPriorityPolicy mirrors the source driver's combined
// finish/abort/auto-resume trigger-preemption matrix.
type TriggerPriorityPolicy int

const (
	PreemptImmediatelyNotResumed TriggerPriorityPolicy = iota
	PreemptSoftlyNotResumed
	PreemptSubsequentlyNotResumed
	PreemptImmediatelyAutoRestarted
	PreemptSoftlyAutoRestarted
	PreemptSubsequentlyAutoRestarted
	PreemptImmediatelyAutoResumed
	PreemptSoftlyAutoResumed
	PreemptSubsequentlyAutoResumed
	TriggerPriorityExceptionDisabled
)

// Config configures the LPADC instance at construction time.
type Config struct {
	EnableInDozeMode        bool
	PowerUpDelay            uint8
	FIFOWatermark           uint8
	TriggerPriorityPolicy   TriggerPriorityPolicy
	EnableConversionPause   bool
	ConversionPauseDelayCyc uint16

	Source gate.AdcSource
	Div    clock.Div
}

// DefaultConfig matches the source driver's LpadcConfig::default(): lowest
// power level, no averaging, immediate-abort trigger preemption.
func DefaultConfig() Config {
	return Config{
		EnableInDozeMode: true,
		PowerUpDelay:     0x80,
		Source:           gate.AdcFroLfDiv,
		Div:              clock.Div(1),
	}
}

// CommandConfig is one of the seven reusable conversion command slots
// (CMDL1..CMDL7/CMDH1..CMDH7).
type CommandConfig struct {
	ChannelMode        ChannelMode
	ChannelNumber      uint8 // 0-23
	ChainedNextCommand uint8 // 0 terminates the chain
	AutoChannelIncr    bool
	LoopCount          uint8
	HardwareAverage    uint8 // log2(N), 0 = no averaging
	SampleTimeMode     uint8
	Resolution         Resolution
	WaitForTrigger     bool
}

// DefaultCommandConfig matches get_default_conv_command_config: channel
// 0, single-ended, no chaining, 12-bit.
func DefaultCommandConfig() CommandConfig {
	return CommandConfig{
		ChannelMode: SingleEndedASide,
		Resolution:  Resolution12Bit,
	}
}

// TriggerConfig binds a hardware trigger input to a command slot.
type TriggerConfig struct {
	TargetCommandID      uint8
	DelayPowerCyc        uint8
	Priority             uint8
	EnableHardwareTrigger bool
}

// DefaultTriggerConfig matches get_default_conv_trigger_config: no
// command bound, highest priority, hardware trigger disabled.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{Priority: 0}
}

// Result is one decoded entry read back from the result FIFO.
type Result struct {
	CommandIDSource  uint32
	LoopCountIndex   uint32
	TriggerIDSource  uint32
	ConvValue        uint16
}

const (
	regCTRL    = 0x000
	regSTAT    = 0x004
	regIE      = 0x008
	regCFG     = 0x00c
	regPAUSE   = 0x010
	regFCTRL0  = 0x014
	regSWTRIG  = 0x018
	regTCTRL0  = 0x020 // TCTRL0..TCTRL3 at +4 stride
	regCMDL1   = 0x040 // CMDLn/CMDHn at +8 stride per command, n=1..7
	regCMDH1   = 0x044
	regCMDStride = 0x008
	regTCTRLStride = 0x004
	regRESFIFO0 = 0x300
	regGCC0     = 0x290
	regGCR0     = 0x294

	bitRST       = 0
	bitRSTFIFO0  = 1
	bitADCEN     = 2
	bitDOZEN     = 3
	bitCALOFS    = 4
	bitCALREQ    = 5

	bitStatCalRdy = 2

	bitGCC0Rdy = 31
	bitGCR0Rdy = 31

	bitFIFOValid = 31

	bitTrigFire = 0 // plus trigger index, up to 4 triggers

	bitIERDY = 0
)

// ADC is a constructed LPADC instance ready to program commands,
// triggers, and run conversions.
type ADC struct {
	base    uint32
	guard   *wakeguard.Guard
	resultCell wait.Cell
}

// New runs gate.EnableAndReset for the ADC's source mux/divider, resets
// and configures the module per cfg, and enables it. The guard returned
// by EnableAndReset is held for the ADC's lifetime and released by
// Close.
func New(base uint32, g gate.PCCGate, cfg Config) (*ADC, error) {
	parts, err := gate.EnableAndReset(g, gate.AdcHook(g, cfg.Source, cfg.Div))
	if err != nil {
		return nil, err
	}

	a := &ADC{base: base, guard: parts.Guard}

	reg.Set(a.base+regCTRL, bitRST)
	reg.Clear(a.base+regCTRL, bitRST)
	reg.Set(a.base+regCTRL, bitRSTFIFO0)
	reg.Clear(a.base+regCTRL, bitADCEN)

	reg.SetTo(a.base+regCTRL, bitDOZEN, cfg.EnableInDozeMode)

	var cfgWord uint32
	cfgWord |= uint32(cfg.PowerUpDelay) << 8
	cfgWord |= triggerPriorityField(cfg.TriggerPriorityPolicy) << 4
	reg.Write(a.base+regCFG, cfgWord)

	if cfg.EnableConversionPause {
		reg.Write(a.base+regPAUSE, 1<<31|uint32(cfg.ConversionPauseDelayCyc))
	} else {
		reg.Write(a.base+regPAUSE, 0)
	}

	reg.Write(a.base+regFCTRL0, uint32(cfg.FIFOWatermark))

	reg.Set(a.base+regCTRL, bitADCEN)

	return a, nil
}

// triggerPriorityField packs the TPRICTRL/TRES/TCMDRES/HPT_EXDI fields
// implied by a single TriggerPriorityPolicy value, following the source
// driver's match tables verbatim.
func triggerPriorityField(p TriggerPriorityPolicy) uint32 {
	var tprictrl, tres, tcmdres, hptExdi uint32

	switch p {
	case PreemptSoftlyNotResumed, PreemptSoftlyAutoRestarted, PreemptSoftlyAutoResumed:
		tprictrl = 1 // finish current
	case PreemptSubsequentlyNotResumed, PreemptSubsequentlyAutoRestarted, PreemptSubsequentlyAutoResumed:
		tprictrl = 2 // finish sequence
	default:
		tprictrl = 0 // abort current
	}

	switch p {
	case PreemptImmediatelyAutoRestarted, PreemptSoftlyAutoRestarted,
		PreemptImmediatelyAutoResumed, PreemptSoftlyAutoResumed,
		PreemptSubsequentlyAutoRestarted, PreemptSubsequentlyAutoResumed:
		tres = 1
	}

	switch p {
	case PreemptImmediatelyAutoResumed, PreemptSoftlyAutoResumed,
		PreemptSubsequentlyAutoResumed, TriggerPriorityExceptionDisabled:
		tcmdres = 1
	}

	if p != TriggerPriorityExceptionDisabled {
		hptExdi = 1
	}

	return tprictrl | tres<<2 | tcmdres<<3 | hptExdi<<4
}

// Close disables the ADC and releases its wake-guard.
func (a *ADC) Close() {
	reg.Clear(a.base+regCTRL, bitADCEN)
	wakeguard.Release(a.guard)
}

// SetCommand programs one of the seven command slots (1-7).
func (a *ADC) SetCommand(index int, cfg CommandConfig) {
	if index < 1 || index > 7 {
		panic("adc: command index out of range 1-7")
	}
	off := uint32(index-1) * regCMDStride

	var chanField uint32
	switch cfg.ChannelMode {
	case SingleEndedASide:
		chanField = 0
	case SingleEndedBSide:
		chanField = 1
	case Differential:
		chanField = 3
	}

	var resField uint32
	if cfg.Resolution == Resolution16Bit {
		resField = 1
	}

	cmdl := uint32(cfg.ChannelNumber) | chanField<<5 | resField<<8
	reg.Write(a.base+regCMDL1+off, cmdl)

	cmdh := uint32(cfg.ChainedNextCommand) | uint32(cfg.LoopCount)<<8 |
		uint32(cfg.HardwareAverage)<<16 | uint32(cfg.SampleTimeMode)<<20
	if cfg.WaitForTrigger {
		cmdh |= 1 << 28
	}
	if cfg.AutoChannelIncr {
		cmdh |= 1 << 29
	}
	reg.Write(a.base+regCMDH1+off, cmdh)
}

// SetTrigger binds trigger input (0-3) to a command slot.
func (a *ADC) SetTrigger(trigger int, cfg TriggerConfig) {
	if trigger < 0 || trigger > 3 {
		panic("adc: trigger index out of range 0-3")
	}
	off := uint32(trigger) * regTCTRLStride

	v := uint32(cfg.TargetCommandID) | uint32(cfg.DelayPowerCyc)<<8 | uint32(cfg.Priority)<<16
	if cfg.EnableHardwareTrigger {
		v |= 1 << 20
	}
	reg.Write(a.base+regTCTRL0+off, v)
}

// SoftwareTrigger fires the triggers selected by mask (bit i fires
// trigger i).
func (a *ADC) SoftwareTrigger(mask uint32) {
	reg.Write(a.base+regSWTRIG, mask)
}

// ResetFIFO clears the result FIFO without disabling the module.
func (a *ADC) ResetFIFO() {
	reg.Set(a.base+regCTRL, bitRSTFIFO0)
}

// ReadResult drains one entry from the result FIFO, reporting ok=false
// if the FIFO was empty.
func ReadResult(base uint32) (Result, bool) {
	fifo := reg.Read(base + regRESFIFO0)
	if fifo&(1<<bitFIFOValid) == 0 {
		return Result{}, false
	}
	return Result{
		CommandIDSource: (fifo >> 24) & 0xf,
		LoopCountIndex:  (fifo >> 20) & 0xf,
		TriggerIDSource: (fifo >> 16) & 0xf,
		ConvValue:       uint16(fifo & 0xffff),
	}, true
}

// OffsetCalibration runs the module's built-in offset calibration and
// blocks (by polling the status register) until it completes.
func (a *ADC) OffsetCalibration() {
	reg.Set(a.base+regCTRL, bitCALOFS)
	for reg.Get(a.base+regSTAT, bitStatCalRdy, 1) == 0 {
	}
}

// gainConversionResult packs a floating-point gain-calibration
// adjustment into the 17-entry fixed-point GCR word the source driver
// computes bit by bit in get_gain_conv_result.
func gainConversionResult(gain float32) uint32 {
	var gcra [17]uint32
	remaining := gain

	for i := 17; i >= 1; i-- {
		shift := uint(16 - (i - 1))
		step := float32(1.0) / float32(uint32(1)<<shift)
		tmp := uint32(remaining / step)
		gcra[i-1] = tmp
		remaining -= float32(tmp) * step
	}

	var gcalr uint32
	for i := 17; i >= 1; i-- {
		gcalr += gcra[i-1] << uint(i-1)
	}
	return gcalr
}

// AutoCalibration runs the module's gain self-calibration sequence.
func (a *ADC) AutoCalibration() {
	reg.Set(a.base+regCTRL, bitCALREQ)

	for reg.Get(a.base+regGCC0, bitGCC0Rdy, 1) == 0 {
	}

	gcc := reg.Read(a.base + regGCC0)
	raw := gcc & 0xffff
	if raw&0x8000 != 0 {
		raw |= 0xffff0000
	}
	gain := float32(131072.0) / (float32(131072.0) - float32(int32(raw)))

	reg.Write(a.base+regGCR0, gainConversionResult(gain))
	reg.Set(a.base+regGCR0, bitGCR0Rdy)

	for reg.Get(a.base+regSTAT, bitStatCalRdy, 1) == 0 {
	}
}

// EnableInterrupt unmasks the FIFO-watermark interrupt.
func (a *ADC) EnableInterrupt() {
	reg.Set(a.base+regIE, bitIERDY)
}

// HandleInterrupt drains the result FIFO and wakes any goroutine blocked
// in WaitResult.
func (a *ADC) HandleInterrupt() {
	if _, ok := ReadResult(a.base); ok {
		a.resultCell.Wake()
	}
}

// WaitResult blocks until a result becomes available in the FIFO or ctx
// is canceled.
func (a *ADC) WaitResult(ctx context.Context) (Result, error) {
	var result Result
	err := a.resultCell.WaitFor(ctx, func() bool {
		r, ok := ReadResult(a.base)
		if !ok {
			return false
		}
		result = r
		return true
	})
	return result, err
}
