package clock

import (
	"sync"
	"time"

	"github.com/nxp-mcxa/mcxa-hal/cortexm"
	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
)

const pollTimeout = 10 * time.Millisecond

var (
	mu          sync.Mutex
	initialized bool
	snapshot    *Clocks
)

// Init brings up the clock tree exactly once, in the nine ordered phases
// described by spec.md §4.1: voltage, SIRC early, FIRC, FRO16K, SOSC,
// SPLL, main clock, SIRC late, commit. A second call always returns
// ErrAlreadyInitialized and leaves the snapshot from the first call
// untouched; a failed phase leaves the system in a safe but possibly
// partially configured state and the caller is expected to reset the
// chip rather than retry.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return ErrAlreadyInitialized
	}

	b := &builder{cfg: cfg, nodes: map[Name]Node{}}

	if err := b.voltageStage(); err != nil {
		return err
	}
	if err := b.sircEarly(); err != nil {
		return err
	}
	if err := b.firc(); err != nil {
		return err
	}
	if err := b.fro16k(); err != nil {
		return err
	}
	if err := b.sosc(); err != nil {
		return err
	}
	if err := b.spll(); err != nil {
		return err
	}
	if err := b.mainClock(); err != nil {
		return err
	}
	b.sircLate()

	snapshot = &Clocks{
		nodes:         b.nodes,
		ActiveVoltage: cfg.VddPower.ActiveMode.Level,
		LowPowerVolt:  cfg.VddPower.LowPowerMode.Level,
		CPUClkHz:      b.cpuFreq,
	}
	initialized = true

	return nil
}

// WithClocks hands fn a read view of the published snapshot inside a
// short critical section. It returns ErrNeverInitialized if Init has not
// yet succeeded.
func WithClocks(fn func(*Clocks)) error {
	mu.Lock()
	defer mu.Unlock()

	if !initialized {
		return ErrNeverInitialized
	}

	fn(snapshot)
	return nil
}

// builder accumulates clock nodes across the bring-up phases. It is not
// safe for concurrent use; Init holds the package mutex for its entire
// lifetime.
type builder struct {
	cfg   Config
	nodes map[Name]Node

	limits       Limits
	sircForced   bool
	mainClkHz    uint32
	cpuFreq      uint32
}

func (b *builder) voltageStage() error {
	b.limits = LimitsFor(b.cfg.VddPower.ActiveMode.Level)

	if b.cfg.VddPower.ActiveMode.Level == OverDrive {
		reg.Set(regSPCSC, 0)
		if !reg.WaitFor(pollTimeout, regSPCSC, bitSPCBusy, 1, 0) {
			return BadConfig("vdd_power", "core LDO busy timeout raising to over-drive")
		}
	}

	reg.Write(regSPCActiveCfg, uint32(b.cfg.VddPower.ActiveMode.Level))
	reg.Write(regSPCLowPowerCfg, uint32(b.cfg.VddPower.LowPowerMode.Level))

	switch b.cfg.VddPower.FlashSleep {
	case FlashDoze, FlashDozeWithFlashWake:
		reg.Set(regFMCCR, 4)
	}

	cortexm.CPU{}.DataSyncBarrier()
	return nil
}

func (b *builder) sircEarly() error {
	reg.Set(regSIRCCSR, bitSIRCEnable)
	if !reg.WaitFor(pollTimeout, regSIRCCSR, bitSIRCClkRdy, 1, 1) {
		return BadConfig("sirc", "clock-ready timeout")
	}

	if !b.cfg.Sirc.Fro12MEnabled {
		// keep SIRC running as a forced internal source so it remains
		// available to serve main_clk until configure_main_clk
		// completes; gated off again in sircLate.
		b.sircForced = true
	}

	if d := b.cfg.Sirc.FroLFDiv; d != nil {
		if !d.valid() {
			return BadConfig("fro_lf_div", "divider out of range [1,16]")
		}
		reg.SetN(regSIRCDIV, 0, 0xf, uint32(d.Field()))
		b.nodes[FroLFDiv] = present(d.Divide(12_000_000), AlwaysOn)
	}

	b.nodes[Fro12M] = present(12_000_000, AlwaysOn)
	b.nodes[Clk1M] = present(12_000_000/12, AlwaysOn)

	cortexm.CPU{}.DataSyncBarrier()
	cortexm.CPU{}.InstructionSyncBarrier()
	return nil
}

func (b *builder) firc() error {
	if b.cfg.Firc == nil {
		return nil
	}
	firc := b.cfg.Firc

	if !firc.Frequency.valid() {
		return BadConfig("firc", "unsupported FIRC frequency select")
	}

	// switch main_clk to SIRC first so FIRC reprogramming does not cut
	// the clock feeding the CPU mid-flight
	reg.SetN(regMainClkSel, 0, 0x7, 1)
	if !reg.WaitFor(pollTimeout, regMainClkSel, bitMainClkAck, 1, 1) {
		return BadConfig("main_clk", "mux ack timeout switching to sirc before firc bring-up")
	}

	reg.SetN(regFIRCSEL, 0, 0x3, fircSelectField(firc.Frequency))
	reg.Set(regFIRCCSR, bitFIRCEnable)

	if !reg.WaitFor(pollTimeout, regFIRCCSR, bitFIRCClkRdy, 1, 1) {
		return BadConfig("firc", "clock-ready timeout")
	}
	if reg.Get(regFIRCCSR, 2, 1) != 0 {
		return BadConfig("firc", "oscillator reported error")
	}

	hz := uint32(firc.Frequency)
	if hz > b.limits.FroHFMaxHz {
		return BadConfig("fro_hf", "exceeds max")
	}

	b.nodes[FroHFRoot] = present(hz, firc.Power)

	if firc.FroHFEnabled {
		reg.Set(regFIRCCSR, bitFIRCHFEnable)
		b.nodes[FroHF] = present(hz, firc.Power)
	}
	if firc.Clk45MEnabled {
		reg.Set(regFIRCCSR, bitFIRC45MEnable)
		b.nodes[Clk45M] = present(45_000_000, firc.Power)
	}
	if d := firc.FroHFDiv; d != nil {
		if !d.valid() {
			return BadConfig("fro_hf_div", "divider out of range [1,16]")
		}
		reg.SetN(regFIRCHFDIV, 0, 0xf, uint32(d.Field()))
		b.nodes[FroHFDiv] = present(d.Divide(hz), firc.Power)
	}

	cortexm.CPU{}.DataSyncBarrier()
	cortexm.CPU{}.InstructionSyncBarrier()
	return nil
}

// fircSelectField maps a caller-requested FIRC frequency to the
// silicon-accurate select encoding. The reference manual's SVD comments
// list nominal values (45/60/90/180 MHz) that are off by a small amount
// from the actual trimmed output (48/64/...); per spec.md §9 the
// user-requested frequency is authoritative and is mapped to the correct
// encoding here rather than trusted as the literal output frequency.
func fircSelectField(f FircFrequency) uint32 {
	switch f {
	case Firc45MHz:
		return 0
	case Firc60MHz:
		return 1
	case Firc90MHz:
		return 2
	case Firc180MHz:
		return 3
	}
	return 0
}

func (b *builder) fro16k() error {
	if b.cfg.Fro16k == nil {
		return nil
	}
	cfg := b.cfg.Fro16k

	reg.Set(regFRO16KCSR, bitFRO16KEnable)
	reg.Set(regFRO16KCSR, bitFRO16KLock)

	if cfg.VSysDomainActive {
		reg.Set(regFRO16KCSR, bitFRO16KVSysEn)
		b.nodes[Clk16KVSys] = present(16_000, AlwaysOn)
	}
	if cfg.VddCoreDomainActive {
		reg.Set(regFRO16KCSR, bitFRO16KCoreEn)
		b.nodes[Clk16KVddCore] = present(16_000, ActiveOnly)
	}

	return nil
}

func (b *builder) sosc() error {
	if b.cfg.Sosc == nil {
		return nil
	}
	cfg := b.cfg.Sosc

	if !cfg.valid() {
		return BadConfig("sosc", "frequency out of range [8,50] MHz")
	}

	reg.SetN(regSOSCRange, 0, 0x7, soscRangeField(cfg.Frequency))
	reg.Set(regSOSCCSR, bitSOSCEnable)

	if !reg.WaitFor(pollTimeout, regSOSCCSR, bitSOSCValid, 1, 1) {
		return BadConfig("sosc", "valid-flag timeout")
	}
	if reg.Get(regSOSCCSR, bitSOSCError, 1) != 0 {
		return BadConfig("sosc", "oscillator reported error")
	}

	b.nodes[ClkIn] = present(cfg.Frequency, cfg.Power)

	cortexm.CPU{}.DataSyncBarrier()
	return nil
}

func soscRangeField(hz uint32) uint32 {
	switch {
	case hz <= 15_000_000:
		return 0
	case hz <= 20_000_000:
		return 1
	case hz <= 30_000_000:
		return 2
	default:
		return 3
	}
}

func (b *builder) spll() error {
	if b.cfg.Spll == nil {
		return nil
	}
	cfg := b.cfg.Spll

	srcHz, srcPower, err := b.spllSourceFreq(cfg.Source)
	if err != nil {
		return err
	}
	if !powerMeetsRequirement(srcPower, cfg.Power) {
		return BadConfig("spll", "source clock power level insufficient")
	}

	if cfg.M < 1 || cfg.M > 0xffff {
		return BadConfig("spll", "m out of range [1,65535]")
	}
	if cfg.P > 31 {
		return BadConfig("spll", "p out of range [0,31]")
	}
	if cfg.N < 1 || cfg.N > 0xff {
		return BadConfig("spll", "n out of range [1,255]")
	}

	fcco, fout, err := spllFrequencies(cfg, srcHz)
	if err != nil {
		return err
	}
	if fcco < 275_000_000 || fcco > 550_000_000 {
		return BadConfig("spll", "fcco out of range [275,550] MHz")
	}
	if fout < 4_300_000 {
		return BadConfig("spll", "fout below 4.3 MHz floor")
	}
	if fout > 2*b.limits.CPUClkMaxHz {
		return BadConfig("spll", "fout exceeds 2x cpu_clk_max")
	}
	if fout > b.limits.PLL1ClkMaxHz {
		return BadConfig("spll", "fout exceeds pll1_clk_limit")
	}

	seli, selp := loopFilterConstants(cfg.M)

	reg.SetN(regSPLLCTRL0, 0, 0x3, uint32(cfg.Source))
	reg.Write(regSPLLNDIV, cfg.N)
	reg.Write(regSPLLMDIV, cfg.M)
	reg.Write(regSPLLPDIV, cfg.P)
	reg.Write(regSPLLSELI, seli)
	reg.Write(regSPLLSELP, selp)

	reg.Clear(regSPLLCSR, bitSPLLPowerDown)

	if !reg.WaitFor(pollTimeout, regSPLLCSR, bitSPLLLock, 1, 1) {
		return BadConfig("spll", "lock timeout")
	}
	if reg.Get(regSPLLCSR, bitSPLLError, 1) != 0 {
		return BadConfig("spll", "pll reported error")
	}

	b.nodes[PLL1Clk] = present(fout, cfg.Power)

	if d := cfg.PLL1ClkDiv; d != nil {
		if !d.valid() {
			return BadConfig("pll1_clk_div", "divider out of range [1,16]")
		}
		reg.SetN(regPLL1ClkDiv, 0, 0xf, uint32(d.Field()))
		b.nodes[PLL1ClkDiv] = present(d.Divide(fout), cfg.Power)
	}

	return nil
}

func (b *builder) spllSourceFreq(src SpllSource) (uint32, Power, error) {
	switch src {
	case SpllFromSosc:
		if n, ok := b.nodes[ClkIn]; ok && n.Present() {
			return n.Hz, n.Power, nil
		}
		return 0, 0, BadConfig("spll", "sosc not active")
	case SpllFromFirc:
		if n, ok := b.nodes[FroHFRoot]; ok && n.Present() {
			return n.Hz, n.Power, nil
		}
		return 0, 0, BadConfig("spll", "firc not active")
	case SpllFromSirc:
		return 12_000_000, AlwaysOn, nil
	}
	return 0, 0, BadConfig("spll", "unknown source")
}

func powerMeetsRequirement(have, want Power) bool {
	// AlwaysOn satisfies any requirement; ActiveOnly only satisfies an
	// ActiveOnly requirement.
	if have == AlwaysOn {
		return true
	}
	return have == want
}

// spllFrequencies computes Fcco and Fout per the four PLL equation
// variants spec.md §4.1 phase 6 enumerates.
func spllFrequencies(cfg *SpllConfig, fin uint32) (fcco, fout uint32, err error) {
	p2 := uint32(1)
	if cfg.BypassP2 {
		p2 = 2
	}

	switch cfg.Mode {
	case Mode1a:
		fout = cfg.M * fin
		fcco = fout
	case Mode1b:
		fcco = cfg.M * fin
		fout = fcco / (cfg.P * p2)
	case Mode1c:
		fout = cfg.M * fin / cfg.N
		fcco = cfg.M * fin
	case Mode1d:
		fcco = cfg.M * fin
		fout = fcco / (cfg.N * cfg.P * p2)
	default:
		return 0, 0, BadConfig("spll", "unknown mode")
	}

	return fcco, fout, nil
}

// loopFilterConstants returns the SELI/SELP loop-filter programming
// values for a given multiplier, per the documented piecewise table.
func loopFilterConstants(m uint32) (seli, selp uint32) {
	switch {
	case m < 60:
		return 1, 16
	case m < 1000:
		return (8000 / m) + 1, (m/4)+1
	default:
		return 1, 31
	}
}

func (b *builder) mainClock() error {
	cfg := b.cfg.MainClock

	if !cfg.AhbClkDiv.valid() {
		return BadConfig("main_clk", "ahb_clk_div out of range [1,16]")
	}

	srcHz, srcPower, srcSel, err := b.mainClockSourceFreq(cfg.Source)
	if err != nil {
		return err
	}
	if !powerMeetsRequirement(srcPower, cfg.Power) {
		return BadConfig("main_clk", "source clock power level insufficient")
	}
	if srcHz > b.limits.MainClkMaxHz {
		return BadConfig("main_clk", "main_src exceeds main_clk_limit")
	}

	cpuFreq := cfg.AhbClkDiv.Divide(srcHz)
	if cpuFreq > b.limits.CPUClkMaxHz {
		return BadConfig("main_clk", "cpu_freq exceeds cpu_clk_limit")
	}

	reg.SetN(regFMCCR, 0, maskFMCWaitStates, flashWaitStates(cpuFreq))

	reg.SetN(regMainClkSel, 0, 0x7, srcSel)
	if !reg.WaitFor(pollTimeout, regMainClkSel, bitMainClkAck, 1, 1) {
		return BadConfig("main_clk", "mux ack timeout")
	}

	reg.SetN(regAHBClkDiv, 0, 0xf, uint32(cfg.AhbClkDiv.Field()))
	if !reg.WaitFor(pollTimeout, regAHBClkDiv, bitAHBStable, 1, 1) {
		return BadConfig("main_clk", "ahb divider stable timeout")
	}

	b.nodes[MainClk] = present(srcHz, cfg.Power)
	b.nodes[CPUSystemClk] = present(cpuFreq, cfg.Power)
	b.mainClkHz = srcHz
	b.cpuFreq = cpuFreq

	return nil
}

func (b *builder) mainClockSourceFreq(src MainClockSource) (uint32, Power, uint32, error) {
	switch src {
	case MainFromSoscClkIn:
		if n := b.nodes[ClkIn]; n.Present() {
			return n.Hz, n.Power, 0, nil
		}
		return 0, 0, 0, BadConfig("main_clk", "sosc/clk_in not active")
	case MainFromSircFro12M:
		return 12_000_000, AlwaysOn, 1, nil
	case MainFromFircHFRoot:
		if n := b.nodes[FroHFRoot]; n.Present() {
			return n.Hz, n.Power, 2, nil
		}
		return 0, 0, 0, BadConfig("main_clk", "firc not active")
	case MainFromRoscFro16K:
		if n := b.nodes[Clk16KVddCore]; n.Present() {
			return n.Hz, n.Power, 3, nil
		}
		if n := b.nodes[Clk16KVSys]; n.Present() {
			return n.Hz, n.Power, 3, nil
		}
		return 0, 0, 0, BadConfig("main_clk", "fro16k not active")
	case MainFromSpll1:
		if n := b.nodes[PLL1ClkDiv]; n.Present() {
			return n.Hz, n.Power, 4, nil
		}
		if n := b.nodes[PLL1Clk]; n.Present() {
			return n.Hz, n.Power, 4, nil
		}
		return 0, 0, 0, BadConfig("main_clk", "spll not active")
	}
	return 0, 0, 0, BadConfig("main_clk", "unknown source")
}

func flashWaitStates(cpuHz uint32) uint32 {
	switch {
	case cpuHz <= 30_000_000:
		return 0
	case cpuHz <= 60_000_000:
		return 1
	case cpuHz <= 90_000_000:
		return 2
	case cpuHz <= 120_000_000:
		return 3
	case cpuHz <= 150_000_000:
		return 4
	default:
		return 5
	}
}

func (b *builder) sircLate() {
	if b.sircForced && !b.cfg.Sirc.Fro12MEnabled {
		reg.Clear(regSIRCCSR, bitSIRCEnable)
		delete(b.nodes, Fro12M)
	}
}
