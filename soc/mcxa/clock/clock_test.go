package clock

import (
	"testing"

	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
)

// resetSingleton clears the package singleton and the fake register file,
// then seeds every status bit the bring-up phases poll for. The fake
// backend has no hardware behind it: nothing ever asserts a ready/lock/ack
// bit on its own, so tests that exercise Init through to completion seed
// the acknowledgement a real oscillator or mux would eventually give.
func resetSingleton() {
	mu.Lock()
	initialized = false
	snapshot = nil
	mu.Unlock()
	reg.Reset()

	reg.Seed(regSIRCCSR, 1<<bitSIRCClkRdy)
	reg.Seed(regFIRCCSR, 1<<bitFIRCClkRdy)
	reg.Seed(regSOSCCSR, 1<<bitSOSCValid)
	reg.Seed(regSPLLCSR, 1<<bitSPLLLock)
	reg.Seed(regMainClkSel, 1<<bitMainClkAck)
	reg.Seed(regAHBClkDiv, 1<<bitAHBStable)
}

func minimalConfig() Config {
	return Config{
		VddPower: PowerConfig{},
		Sirc: SircConfig{
			Fro12MEnabled: true,
		},
		MainClock: MainClockConfig{
			Source:    MainFromSircFro12M,
			AhbClkDiv: 1,
		},
	}
}

func TestInitMinimalConfigSucceeds(t *testing.T) {
	resetSingleton()

	if err := Init(minimalConfig()); err != nil {
		t.Fatalf("Init() = %v, want nil", err)
	}

	var cpuHz uint32
	err := WithClocks(func(c *Clocks) {
		cpuHz = c.Node(CPUSystemClk).Hz
	})
	if err != nil {
		t.Fatalf("WithClocks() = %v", err)
	}
	if cpuHz != 12_000_000 {
		t.Fatalf("cpu_system_clk = %d, want 12_000_000", cpuHz)
	}
}

func TestInitTwiceFailsWithAlreadyInitialized(t *testing.T) {
	resetSingleton()

	if err := Init(minimalConfig()); err != nil {
		t.Fatalf("first Init() = %v", err)
	}

	err := Init(minimalConfig())
	if err != ErrAlreadyInitialized {
		t.Fatalf("second Init() = %v, want ErrAlreadyInitialized", err)
	}
}

func TestWithClocksBeforeInitFails(t *testing.T) {
	resetSingleton()

	err := WithClocks(func(*Clocks) {})
	if err != ErrNeverInitialized {
		t.Fatalf("WithClocks() before Init = %v, want ErrNeverInitialized", err)
	}
}

// S5 — firc = 180 MHz with active = MidDrive exceeds the mid-drive limit.
func TestFircExceedsMidDriveLimit(t *testing.T) {
	resetSingleton()

	cfg := minimalConfig()
	cfg.Firc = &FircConfig{
		Frequency:    Firc180MHz,
		FroHFEnabled: true,
	}

	err := Init(cfg)
	ce, ok := err.(*Error)
	if !ok {
		t.Fatalf("Init() error type = %T, want *Error", err)
	}
	if ce.Clock != "fro_hf" {
		t.Fatalf("Error.Clock = %q, want %q", ce.Clock, "fro_hf")
	}
}

func TestMainClockDivRejectsOutOfRangeDivider(t *testing.T) {
	resetSingleton()

	cfg := minimalConfig()
	cfg.MainClock.AhbClkDiv = 0

	if err := Init(cfg); err == nil {
		t.Fatalf("Init() with ahb_clk_div=0 succeeded, want error")
	}
}

func TestSpllMode1aFrequency(t *testing.T) {
	cfg := &SpllConfig{Mode: Mode1a, M: 20}
	fcco, fout, err := spllFrequencies(cfg, 12_000_000)
	if err != nil {
		t.Fatalf("spllFrequencies() = %v", err)
	}
	if fout != 240_000_000 || fcco != 240_000_000 {
		t.Fatalf("fout=%d fcco=%d, want 240_000_000 both", fout, fcco)
	}
}

func TestSpllMode1bFrequency(t *testing.T) {
	cfg := &SpllConfig{Mode: Mode1b, M: 40, P: 2}
	fcco, fout, err := spllFrequencies(cfg, 12_000_000)
	if err != nil {
		t.Fatalf("spllFrequencies() = %v", err)
	}
	if fcco != 480_000_000 {
		t.Fatalf("fcco = %d, want 480_000_000", fcco)
	}
	if fout != 240_000_000 {
		t.Fatalf("fout = %d, want 240_000_000", fout)
	}
}
