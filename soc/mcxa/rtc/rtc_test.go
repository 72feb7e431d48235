package rtc

import (
	"context"
	"testing"

	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
)

func TestMain(m *testing.M) {
	reg.Seed(0x4000_0008, 1<<7)
	reg.Seed(0x4000_000c, 1<<7)
	reg.Seed(0x4000_0100, 1<<1) // sirc ready

	if err := clock.Init(clock.Config{
		Sirc: clock.SircConfig{Fro12MEnabled: true},
		Fro16k: &clock.Fro16kConfig{
			VSysDomainActive: true,
		},
		MainClock: clock.MainClockConfig{
			Source:    clock.MainFromSircFro12M,
			AhbClkDiv: 1,
		},
	}); err != nil {
		panic(err)
	}

	m.Run()
}

func TestDatetimeToSecondsLeapDay(t *testing.T) {
	got := DatetimeToSeconds(DateTime{Year: 2024, Month: 2, Day: 29, Hour: 12, Minute: 0, Second: 0})
	const want = 1_709_208_000
	if got != want {
		t.Fatalf("DatetimeToSeconds(2024-02-29 12:00:00) = %d, want %d", got, want)
	}
}

func TestDatetimeRoundTrip(t *testing.T) {
	cases := []DateTime{
		{Year: 1970, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 0},
		{Year: 2000, Month: 2, Day: 29, Hour: 23, Minute: 59, Second: 59},
		{Year: 2024, Month: 2, Day: 29, Hour: 12, Minute: 0, Second: 0},
		{Year: 2038, Month: 1, Day: 19, Hour: 3, Minute: 14, Second: 7},
		{Year: 2099, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59},
	}

	for _, d := range cases {
		seconds := DatetimeToSeconds(d)
		got := SecondsToDatetime(seconds)
		if got != d {
			t.Fatalf("round-trip %+v -> %d -> %+v, want %+v", d, seconds, got, d)
		}
	}
}

func TestNewSucceedsWithClk16KVSys(t *testing.T) {
	r, err := New(0x4003_1000)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	if reg.Get(r.base+regCR, bitTimeEnable, 1) != 1 {
		t.Fatalf("time-enable bit not set after New()")
	}
}

func TestAlarmFiresWakesWaiter(t *testing.T) {
	r, err := New(0x4003_2000)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	r.SetAlarm(DateTime{Year: 1970, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 10})

	reg.Write(r.base+regTSR, 10)
	reg.Set(r.base+regSR, bitAlarmFlag)
	r.HandleInterrupt()

	if err := r.WaitAlarm(context.Background(), 10); err != nil {
		t.Fatalf("WaitAlarm() = %v", err)
	}
}
