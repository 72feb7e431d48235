// MCX-A real-time clock
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package rtc implements the DateTime conversions and alarm-match
// scheduling for the always-on real-time clock. The RTC is not gated by
// the peripheral clock-gate layer the way I2C/UART/ADC are; it only needs
// the 16 kHz VSYS-domain clock to be active, which it checks directly
// against the published clock snapshot rather than going through
// gate.EnableAndReset.
package rtc

import (
	"context"
	"fmt"

	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wait"
)

const (
	daysInYear     = 365
	secondsInDay   = 86400
	secondsInHour  = 3600
	secondsInMinute = 60
	yearRangeStart = 1970
)

// DateTime is a calendar timestamp with second resolution, matching the
// field layout the RTC's TSR/seconds register exposes after conversion.
type DateTime struct {
	Year   uint16
	Month  uint8
	Day    uint8
	Hour   uint8
	Minute uint8
	Second uint8
}

var monthDays = [13]uint32{0, 0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// DatetimeToSeconds converts a DateTime to a Unix timestamp (seconds
// since 1970-01-01), accounting for leap years.
func DatetimeToSeconds(d DateTime) uint32 {
	seconds := (uint32(d.Year) - yearRangeStart) * daysInYear
	seconds += uint32(d.Year)/4 - yearRangeStart/4
	seconds += monthDays[d.Month]
	seconds += uint32(d.Day) - 1

	if d.Year&3 == 0 && d.Month <= 2 {
		seconds--
	}

	seconds = seconds*secondsInDay +
		uint32(d.Hour)*secondsInHour +
		uint32(d.Minute)*secondsInMinute +
		uint32(d.Second)

	return seconds
}

var daysPerMonthCommon = [12]uint32{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeapYear(year uint16) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// SecondsToDatetime converts a Unix timestamp back to a DateTime. It is
// the exact inverse of DatetimeToSeconds for every representable date in
// [1970, 2099].
func SecondsToDatetime(seconds uint32) DateTime {
	remaining := seconds
	days := remaining/secondsInDay + 1
	remaining %= secondsInDay

	hour := uint8(remaining / secondsInHour)
	remaining %= secondsInHour
	minute := uint8(remaining / secondsInMinute)
	second := uint8(remaining % secondsInMinute)

	year := uint16(yearRangeStart)
	daysInThisYear := uint32(daysInYear)

	for days > daysInThisYear {
		days -= daysInThisYear
		year++

		if year%4 == 0 {
			daysInThisYear = daysInYear + 1
		} else {
			daysInThisYear = daysInYear
		}
	}

	daysPerMonth := daysPerMonthCommon
	if isLeapYear(year) {
		daysPerMonth[1] = 29
	}

	month := uint8(1)
	for i, dm := range daysPerMonth {
		m := uint8(i + 1)
		if days <= dm {
			month = m
			break
		}
		days -= dm
	}

	return DateTime{
		Year:   year,
		Month:  month,
		Day:    uint8(days),
		Hour:   hour,
		Minute: minute,
		Second: second,
	}
}

const (
	regTSR = 0x000 // seconds register, read/write
	regTAR = 0x004 // alarm register
	regTCR = 0x008 // compensation register
	regCR  = 0x00c // control register
	regSR  = 0x010 // status register

	bitOscEnable  = 0
	bitTimeEnable = 1
	bitAlarmFlag  = 2
	bitAlarmIE    = 2 // same bit position in IER, different register
	regIER        = 0x014
)

// RTC is the always-on real-time clock handle.
type RTC struct {
	base      uint32
	alarmCell wait.Cell
}

// New validates that clk_16k_vsys is active per the published clock
// snapshot, then enables the RTC oscillator and counter. Unlike the
// gated peripherals, the RTC itself is not behind a PCC gate; only its
// 16 kHz reference needs to be running.
func New(base uint32) (*RTC, error) {
	var active bool
	err := clock.WithClocks(func(c *clock.Clocks) {
		active = c.Node(clock.Clk16KVSys).Present()
	})
	if err != nil {
		return nil, fmt.Errorf("rtc: clocks not initialized: %w", err)
	}
	if !active {
		return nil, fmt.Errorf("rtc: clk_16k_vsys not active")
	}

	r := &RTC{base: base}

	reg.Set(r.base+regCR, bitOscEnable)
	reg.Set(r.base+regCR, bitTimeEnable)
	reg.Set(r.base+regIER, bitAlarmIE)

	return r, nil
}

// Now reads the current DateTime from the seconds register.
func (r *RTC) Now() DateTime {
	return SecondsToDatetime(reg.Read(r.base + regTSR))
}

// SetAlarm arms the alarm register for the given DateTime. The alarm
// interrupt is unmasked once, by New.
func (r *RTC) SetAlarm(at DateTime) {
	reg.Write(r.base+regTAR, DatetimeToSeconds(at))
}

// HandleInterrupt acknowledges the alarm flag and wakes any goroutine
// blocked in WaitAlarm.
func (r *RTC) HandleInterrupt() {
	if reg.Get(r.base+regSR, bitAlarmFlag, 1) == 1 {
		reg.AckFlag(r.base+regSR, bitAlarmFlag) // write-1-to-clear
		r.alarmCell.Wake()
	}
}

// WaitAlarm blocks until the armed alarm fires or ctx is canceled.
func (r *RTC) WaitAlarm(ctx context.Context, armed uint32) error {
	return r.alarmCell.WaitFor(ctx, func() bool {
		return reg.Read(r.base+regTSR) >= armed
	})
}
