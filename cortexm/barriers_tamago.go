// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package cortexm

import (
	_ "unsafe"
)

// defined in barriers.s
func dsb()
func isb()
func dmb()
func wfi()
func irq_enable()
func irq_disable()

//go:linkname exceptionHandler runtime.exceptionHandler
func exceptionHandler(num int) {
	exceptionHandlerFn(num)
}
