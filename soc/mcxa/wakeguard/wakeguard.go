// MCX-A wake guard
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package wakeguard implements the reference-counted token that keeps the
// system out of a deep sleep mode that would stop a clock a live peripheral
// still depends on. A Guard is minted by the gate layer's enable_and_reset
// whenever a peripheral is wired to a clock classified ActiveOnly or
// NormalEnabledDeepSleepDisabled, and
// released when the driver built on top of that peripheral is torn down.
package wakeguard

import (
	"sync/atomic"
)

var count int32

// Guard is a held reference against entering a sleep mode that would stop
// the clock backing some live peripheral. The zero value is not a valid
// Guard; obtain one through Acquire or For.
type Guard struct {
	released uint32
}

// Acquire mints a new Guard, incrementing the global hold count.
func Acquire() *Guard {
	atomic.AddInt32(&count, 1)
	return &Guard{}
}

// Clone mints an additional Guard backed by the same hold count as g,
// mirroring a second driver layering on top of an already-guarded
// peripheral (for example a buffered reader built on a blocking UART).
func (g *Guard) Clone() *Guard {
	return Acquire()
}

// Release drops the hold. It is a programming error to release the same
// Guard twice; doing so panics rather than silently underflowing the
// shared counter, since an underflow would let sleep modes reassert while a
// peripheral using the now-imaginary extra guard is still active.
func (g *Guard) Release() {
	if !atomic.CompareAndSwapUint32(&g.released, 0, 1) {
		panic("wakeguard: Guard released twice")
	}

	if atomic.AddInt32(&count, -1) < 0 {
		panic("wakeguard: hold count underflow")
	}
}

// Held reports whether any Guard is currently outstanding. The low-power
// mode selector consults this before entering a mode that would stop an
// ActiveOnly clock.
func Held() bool {
	return atomic.LoadInt32(&count) > 0
}

// Power classifies how a peripheral clock behaves across sleep modes, as
// recorded by the gate layer for each peripheral it knows how to enable.
type Power int

const (
	// ActiveOnly clocks stop in any sleep mode; a live peripheral on one
	// of these must hold a Guard.
	ActiveOnly Power = iota
	// NormalEnabledDeepSleepDisabled clocks survive a normal sleep but
	// stop in deep sleep.
	NormalEnabledDeepSleepDisabled
	// AlwaysOn clocks are never gated by a sleep mode.
	AlwaysOn
)

// For mints a Guard only when p requires one to keep a live peripheral
// running through deep sleep (ActiveOnly or NormalEnabledDeepSleepDisabled);
// for AlwaysOn it returns nil, and Release on a nil *Guard is a no-op.
func For(p Power) *Guard {
	switch p {
	case ActiveOnly, NormalEnabledDeepSleepDisabled:
		return Acquire()
	default:
		return nil
	}
}

// Release is safe to call on a nil *Guard, matching callers that used For
// with a Power class that mints no guard.
func Release(g *Guard) {
	if g == nil {
		return
	}
	g.Release()
}
