package i3c

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/dma"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/gate"
)

func TestMain(m *testing.M) {
	reg.Seed(0x4000_0008, 1<<7)
	reg.Seed(0x4000_000c, 1<<7)
	reg.Seed(0x4000_0100, 1<<1) // sirc ready
	reg.Seed(0x4000_0110, 1<<1)

	if err := clock.Init(clock.Config{
		Sirc: clock.SircConfig{Fro12MEnabled: true},
		Firc: &clock.FircConfig{
			Frequency:    clock.Firc45MHz,
			FroHFEnabled: true,
			FroHFDiv:     divPtr(clock.Div(2)),
		},
		MainClock: clock.MainClockConfig{
			Source:    clock.MainFromFircHFRoot,
			AhbClkDiv: 1,
		},
	}); err != nil {
		panic(err)
	}

	m.Run()
}

func divPtr(d clock.Div) *clock.Div { return &d }

// TestBaudRateParamsMatchPublishedScenario exercises spec.md's literal
// I3C baud scenario: fclk = 24 MHz, push-pull 1.5 MHz, open-drain 750
// kHz, I2C-compatibility Fast (400 kbit/s), ODHPP enabled. The derived
// SCL rates must land within 10% of every target.
func TestBaudRateParamsMatchPublishedScenario(t *testing.T) {
	cfg := Config{
		PushPullFreqHz:  1_500_000,
		OpenDrainFreqHz: 750_000,
		I2cSpeed:        I2cFast,
		ODHPP:           true,
	}

	params, err := CalculateBaudRateParams(24_000_000, cfg, true)
	if err != nil {
		t.Fatalf("CalculateBaudRateParams() = %v", err)
	}

	ppSrcHz := (24_000_000 / 2) / (params.PPBaud + 1)
	if err := within10Percent(ppSrcHz, cfg.PushPullFreqHz); err != nil {
		t.Fatalf("push-pull rate %d: %v", ppSrcHz, err)
	}

	odSrcHz := (2 * ppSrcHz) / (params.ODBaud + 2)
	if err := within10Percent(odSrcHz, cfg.OpenDrainFreqHz); err != nil {
		t.Fatalf("open-drain rate %d: %v", odSrcHz, err)
	}
}

func within10Percent(got, want uint32) error {
	var delta uint32
	if got > want {
		delta = got - want
	} else {
		delta = want - got
	}
	if delta*100/want > 10 {
		return fmt.Errorf("rate %d outside 10%% tolerance of target %d", got, want)
	}
	return nil
}

func TestCalculateBaudRateParamsRejectsZeroPushPull(t *testing.T) {
	cfg := Config{PushPullFreqHz: 0, OpenDrainFreqHz: 750_000, I2cSpeed: I2cFast}
	if _, err := CalculateBaudRateParams(24_000_000, cfg, true); err == nil {
		t.Fatalf("CalculateBaudRateParams() with zero push-pull target did not error")
	}
}

func TestNewProgramsMasterEnable(t *testing.T) {
	g := gate.PCCGate{Addr: 0x4003_1000}
	cfg := DefaultConfig()
	cfg.Clock.Source = gate.I3cFroHfDiv

	i, err := New(0x4005_0000, g, cfg)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	if reg.Get(i.base+regMCONFIG, bitMstena, 1) != 1 {
		t.Fatalf("MSTENA not set after New()")
	}
}

func TestWriteProbeEmptyBuffer(t *testing.T) {
	g := gate.PCCGate{Addr: 0x4003_2000}
	cfg := DefaultConfig()
	cfg.Clock.Source = gate.I3cFroHfDiv

	i, err := New(0x4005_1000, g, cfg)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	reg.SetN(i.base+regMSTATUS, 8, 0xf, stateNormact)
	go func() {
		time.Sleep(10 * time.Millisecond)
		reg.Set(i.base+regMSTATUS, bitMctrldone) // unblocks start()'s waitForCtrlDone
	}()
	if err := i.Write(0x50, nil, I2cCompat); err != nil {
		t.Fatalf("Write(nil) = %v", err)
	}
}

// TestAsyncWriteWakesOnInterrupt drives a single-byte AsyncWrite through
// its ctrldone/txnotfull/complete wait stages via one simulated
// interrupt, mirroring how a real ISR would fire once and let every
// already-true flag's predicate resolve on the same wake.
func TestAsyncWriteWakesOnInterrupt(t *testing.T) {
	g := gate.PCCGate{Addr: 0x4003_3000}
	cfg := DefaultConfig()
	cfg.Clock.Source = gate.I3cFroHfDiv

	i, err := NewAsync(0x4005_2000, g, cfg)
	if err != nil {
		t.Fatalf("NewAsync() = %v", err)
	}
	reg.SetN(i.base+regMSTATUS, 8, 0xf, stateNormact)

	done := make(chan error, 1)
	go func() {
		done <- i.AsyncWrite(context.Background(), 0x50, []byte{0x11}, I2cCompat)
	}()

	time.Sleep(10 * time.Millisecond)
	reg.Set(i.base+regMSTATUS, bitMctrldone)
	reg.Set(i.base+regMSTATUS, bitTxnotfull)
	reg.Set(i.base+regMSTATUS, bitComplete)
	i.HandleInterrupt()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("AsyncWrite() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("AsyncWrite() did not complete after simulated interrupt")
	}
}

// TestAsyncReadCanceledRunsRemediation exercises the cancellation path:
// no hardware ever asserts mctrldone in the fake backend, so the ctx
// deadline fires first and remediation (forced stop) must still return.
func TestAsyncReadCanceledRunsRemediation(t *testing.T) {
	g := gate.PCCGate{Addr: 0x4003_4000}
	cfg := DefaultConfig()
	cfg.Clock.Source = gate.I3cFroHfDiv

	i, err := NewAsync(0x4005_3000, g, cfg)
	if err != nil {
		t.Fatalf("NewAsync() = %v", err)
	}
	reg.SetN(i.base+regMSTATUS, 8, 0xf, stateNormact)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Remediation falls back to the blocking stop, which busy-waits on
	// MCTRLDONE the same way real hardware would eventually assert it;
	// simulate that here so the test itself cannot hang forever.
	go func() {
		time.Sleep(50 * time.Millisecond)
		reg.Set(i.base+regMSTATUS, bitMctrldone)
	}()

	buf := make([]byte, 4)
	if err := i.AsyncRead(ctx, 0x50, buf, I2cCompat); err == nil {
		t.Fatalf("AsyncRead() with no hardware progress did not error")
	}
}

// TestDMAWriteStagesThroughPoolAndChannel drives a DMAI3C.Write through
// its two blocking MCTRLDONE waits (start, stop) and the DMA channel's
// scatter-write completion, each unblocked by a separately timed register
// write, mirroring how real hardware would assert each in turn.
func TestDMAWriteStagesThroughPoolAndChannel(t *testing.T) {
	g := gate.PCCGate{Addr: 0x4003_5000}
	cfg := DefaultConfig()
	cfg.Clock.Source = gate.I3cFroHfDiv

	ch := &dma.Channel{Num: 0, CtrlAddr: 0x5000_6000}
	pool := dma.NewPool(0x2050_0000, 4096)

	i, err := NewDMA(0x4005_4000, g, cfg, ch, pool)
	if err != nil {
		t.Fatalf("NewDMA() = %v", err)
	}
	reg.SetN(i.base+regMSTATUS, 8, 0xf, stateNormact)

	done := make(chan error, 1)
	go func() {
		done <- i.Write(context.Background(), 0x50, []byte{0x11, 0x22}, I2cCompat)
	}()

	time.Sleep(10 * time.Millisecond)
	reg.Set(i.base+regMSTATUS, bitMctrldone) // unblocks start()'s waitForCtrlDone

	time.Sleep(10 * time.Millisecond)
	reg.Set(ch.CtrlAddr, 3) // DMA channel completion flag, write-1-to-clear
	ch.HandleInterrupt()

	time.Sleep(10 * time.Millisecond)
	reg.Set(i.base+regMSTATUS, bitMctrldone) // unblocks stop()'s waitForCtrlDone

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Write() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Write() did not complete")
	}
}

// TestDMAReadCompletesThroughPoolAndChannel mirrors
// TestDMAWriteStagesThroughPoolAndChannel for the read direction: the
// fake DMA backend never actually populates the staging buffer (that's
// the real engine's job), so this only asserts the call sequence
// completes without hanging or erroring.
func TestDMAReadCompletesThroughPoolAndChannel(t *testing.T) {
	g := gate.PCCGate{Addr: 0x4003_6000}
	cfg := DefaultConfig()
	cfg.Clock.Source = gate.I3cFroHfDiv

	ch := &dma.Channel{Num: 1, CtrlAddr: 0x5000_7000}
	pool := dma.NewPool(0x2060_0000, 4096)

	i, err := NewDMA(0x4005_5000, g, cfg, ch, pool)
	if err != nil {
		t.Fatalf("NewDMA() = %v", err)
	}
	reg.SetN(i.base+regMSTATUS, 8, 0xf, stateNormact)

	buf := make([]byte, 2)
	done := make(chan error, 1)
	go func() {
		done <- i.Read(context.Background(), 0x50, buf, I2cCompat)
	}()

	time.Sleep(10 * time.Millisecond)
	reg.Set(i.base+regMSTATUS, bitMctrldone) // unblocks start()'s waitForCtrlDone

	time.Sleep(10 * time.Millisecond)
	reg.Set(ch.CtrlAddr, 3) // DMA channel completion flag, write-1-to-clear
	ch.HandleInterrupt()

	time.Sleep(10 * time.Millisecond)
	reg.Set(i.base+regMSTATUS, bitMctrldone) // unblocks stop()'s waitForCtrlDone

	if err := <-done; err != nil {
		t.Fatalf("Read() = %v", err)
	}
}
