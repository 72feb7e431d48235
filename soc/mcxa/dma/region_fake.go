// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build !tamago

// Stands in for the real bounce-buffer memory off-target: a plain byte
// map indexed by address, the same role internal/reg's fake backend plays
// for MMIO.
package dma

import "sync"

var (
	fakeMemMu sync.Mutex
	fakeMem   = map[uint32]byte{}
)

func writeBackend(addr uint32, buf []byte) {
	fakeMemMu.Lock()
	defer fakeMemMu.Unlock()
	for i, b := range buf {
		fakeMem[addr+uint32(i)] = b
	}
}

func readBackend(addr uint32, buf []byte) {
	fakeMemMu.Lock()
	defer fakeMemMu.Unlock()
	for i := range buf {
		buf[i] = fakeMem[addr+uint32(i)]
	}
}
