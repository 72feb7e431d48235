package adc

import (
	"context"
	"testing"
	"time"

	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/gate"
)

func TestMain(m *testing.M) {
	reg.Seed(0x4000_0008, 1<<7)
	reg.Seed(0x4000_000c, 1<<7)
	reg.Seed(0x4000_0100, 1<<1) // sirc ready

	lfDiv := clock.Div(1)
	if err := clock.Init(clock.Config{
		Sirc: clock.SircConfig{Fro12MEnabled: true, FroLFDiv: &lfDiv},
		MainClock: clock.MainClockConfig{
			Source:    clock.MainFromSircFro12M,
			AhbClkDiv: 1,
		},
	}); err != nil {
		panic(err)
	}

	m.Run()
}

func newTestADC(t *testing.T, base uint32, pccAddr uint32) *ADC {
	t.Helper()
	g := gate.PCCGate{Addr: pccAddr}
	cfg := DefaultConfig()

	a, err := New(base, g, cfg)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return a
}

func TestNewEnablesModule(t *testing.T) {
	a := newTestADC(t, 0x4004_0000, 0x4002_6000)

	if reg.Get(a.base+regCTRL, bitADCEN, 1) != 1 {
		t.Fatalf("ADCEN not set after New()")
	}
}

func TestSetCommandProgramsChannel(t *testing.T) {
	a := newTestADC(t, 0x4004_1000, 0x4002_7000)

	a.SetCommand(1, CommandConfig{
		ChannelMode:   SingleEndedASide,
		ChannelNumber: 5,
		Resolution:    Resolution12Bit,
	})

	got := reg.Read(a.base + regCMDL1)
	if got&0x1f != 5 {
		t.Fatalf("CMDL1 channel field = %d, want 5", got&0x1f)
	}
}

func TestSetCommandPanicsOnBadIndex(t *testing.T) {
	a := newTestADC(t, 0x4004_2000, 0x4002_8000)

	defer func() {
		if recover() == nil {
			t.Fatalf("SetCommand(0, ...) did not panic")
		}
	}()
	a.SetCommand(0, DefaultCommandConfig())
}

func TestReadResultDecodesFIFOWord(t *testing.T) {
	reg.Write(0x4004_3000+regRESFIFO0, 1<<31|2<<24|1<<20|3<<16|0x0aaa)

	got, ok := ReadResult(0x4004_3000)
	if !ok {
		t.Fatalf("ReadResult() ok = false, want true")
	}
	want := Result{CommandIDSource: 2, LoopCountIndex: 1, TriggerIDSource: 3, ConvValue: 0x0aaa}
	if got != want {
		t.Fatalf("ReadResult() = %+v, want %+v", got, want)
	}
}

func TestReadResultReportsEmptyFIFO(t *testing.T) {
	reg.Write(0x4004_4000+regRESFIFO0, 0)

	if _, ok := ReadResult(0x4004_4000); ok {
		t.Fatalf("ReadResult() ok = true on empty FIFO")
	}
}

func TestWaitResultWakesOnInterrupt(t *testing.T) {
	a := newTestADC(t, 0x4004_5000, 0x4002_9000)
	a.EnableInterrupt()

	done := make(chan Result, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		r, err := a.WaitResult(ctx)
		if err != nil {
			t.Errorf("WaitResult() = %v", err)
		}
		done <- r
	}()

	reg.Write(a.base+regRESFIFO0, 1<<31|0x0123)
	a.HandleInterrupt()

	got := <-done
	if got.ConvValue != 0x0123 {
		t.Fatalf("WaitResult() ConvValue = %#x, want %#x", got.ConvValue, 0x0123)
	}
}

func TestGainConversionResultIdentityGain(t *testing.T) {
	got := gainConversionResult(1.0)
	if got == 0 {
		t.Fatalf("gainConversionResult(1.0) = 0, want nonzero fixed-point encoding")
	}
}
