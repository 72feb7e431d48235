// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !tamago

// This file backs the barrier and interrupt-mask primitives with no-ops so
// that packages built on top of cortexm.CPU (the clock tree controller, the
// gate layer) are exercisable with `go test` on a host. There is no
// hardware to order accesses against off-target.
package cortexm

func dsb()         {}
func isb()         {}
func dmb()         {}
func wfi()         {}
func irq_enable()  {}
func irq_disable() {}
