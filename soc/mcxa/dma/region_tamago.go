// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package dma

import "unsafe"

func writeBackend(addr uint32, buf []byte) {
	mem := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), len(buf))
	copy(mem, buf)
}

func readBackend(addr uint32, buf []byte) {
	mem := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), len(buf))
	copy(buf, mem)
}
