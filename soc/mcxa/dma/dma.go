// MCX-A DMA channel engine
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dma implements the channel descriptor table and transfer
// lifecycle shared by every DMA-mode peripheral driver (I3C scatter
// transfers, LPUART DMA TX/RX). Each Channel owns a 4-word descriptor
// (reserved, src, dst, link) the hardware DMA controller walks, plus a
// completion wait.Cell woken by the channel's interrupt handler.
package dma

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/nxp-mcxa/mcxa-hal/bits"
	"github.com/nxp-mcxa/mcxa-hal/cortexm"
	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wait"
)

// ErrAborted is returned by Wait when the transfer was canceled before
// the hardware reported completion.
var ErrAborted = errors.New("dma: transfer aborted")

// Width is the per-element transfer size.
type Width int

const (
	Width8 Width = iota
	Width16
	Width32
)

func (w Width) bytes() uint32 {
	switch w {
	case Width16:
		return 2
	case Width32:
		return 4
	default:
		return 1
	}
}

// Increment selects whether an address advances across the transfer or
// stays fixed (the common case for a peripheral data register).
type Increment int

const (
	Fixed Increment = iota
	ByWidth
)

// Trigger selects what starts a transfer once programmed.
type Trigger int

const (
	Software Trigger = iota
	PeripheralRequest
)

// descriptor mirrors the hardware's 4-word, 1 KB-aligned layout: a
// reserved control word, source address, destination address, and a link
// to the next descriptor (0 for a non-chained transfer).
type descriptor struct {
	ctrl uint32
	src  uint32
	dst  uint32
	link uint32
}

const (
	ctrlWidthShift = 0
	ctrlSrcIncBit  = 4
	ctrlDstIncBit  = 5
	ctrlCountShift = 8 // transfer count, stored as N-1 per hardware convention
	ctrlCountMask  = 0xffff
)

// Channel is one DMA channel: its descriptor, control register base, and
// completion cell. Channels are allocated by the peripheral driver that
// owns them; there is no shared channel pool in this layer.
type Channel struct {
	Num       int
	CtrlAddr  uint32 // channel enable/trigger/status register
	desc      descriptor
	busy      int32
	completed wait.Cell
}

const (
	regChanEnable  = 0 // bit 0: channel enable
	regChanTrigger = 1 // bit 1: software trigger
	regChanBusy    = 2 // bit 2: transfer in progress
	regChanDone    = 3 // bit 3: completion flag, write-1-to-clear
	regChanErr     = 4 // bit 4: transfer error
)

// program fills the channel's descriptor for a transfer of count elements
// of the given width between src and dst.
func (c *Channel) program(src, dst uint32, count int, width Width, srcInc, dstInc Increment, trig Trigger) {
	var ctrl uint32
	for i, set := range []bool{width == Width16, width == Width32} {
		bits.SetTo(&ctrl, ctrlWidthShift+i, set)
	}
	bits.SetTo(&ctrl, ctrlSrcIncBit, srcInc == ByWidth)
	bits.SetTo(&ctrl, ctrlDstIncBit, dstInc == ByWidth)
	ctrl |= (uint32(count-1) & ctrlCountMask) << ctrlCountShift

	c.desc = descriptor{ctrl: ctrl, src: src, dst: dst, link: 0}

	// full memory barrier before the trigger so the descriptor write is
	// visible to the DMA controller before it is told to start
	cortexm.CPU{}.DataMemBarrier()

	reg.Set(c.CtrlAddr, regChanEnable)

	if trig == Software {
		reg.Set(c.CtrlAddr, regChanTrigger)
	}

	atomic.StoreInt32(&c.busy, 1)
}

// Read programs a peripheral-to-memory transfer: src is fixed (a
// peripheral data register), dst increments by width.
func (c *Channel) Read(src, dst uint32, count int, width Width, trig Trigger) {
	c.program(src, dst, count, width, Fixed, ByWidth, trig)
}

// Write programs a memory-to-peripheral transfer: src increments, dst is
// fixed.
func (c *Channel) Write(src, dst uint32, count int, width Width, trig Trigger) {
	c.program(src, dst, count, width, ByWidth, Fixed, trig)
}

// Copy programs a memory-to-memory transfer: both addresses increment.
func (c *Channel) Copy(src, dst uint32, count int, width Width) {
	c.program(src, dst, count, width, ByWidth, ByWidth, Software)
}

// ScatterWrite stages data into pool, programs a memory-to-peripheral
// transfer from the staged copy to the fixed address dst, and blocks until
// it completes or ctx is canceled. The staged copy is always released
// before return. This is the scatter-mode path §4.7 describes for
// peripherals that hand the DMA engine a caller-owned buffer rather than
// a single fixed register.
func (c *Channel) ScatterWrite(ctx context.Context, pool *Pool, dst uint32, data []byte, width Width) error {
	if len(data) == 0 {
		return nil
	}

	addr, err := pool.Alloc(data, 0)
	if err != nil {
		return err
	}
	defer pool.Free(addr, len(data))

	c.Write(addr, dst, len(data)/int(width.bytes()), width, Software)
	return c.Wait(ctx)
}

// ScatterRead programs a peripheral-to-memory transfer from the fixed
// address src into a staging buffer sized len(buf), waits for completion,
// then copies the result into buf. The staging buffer is always released
// before return, including on a canceled wait.
func (c *Channel) ScatterRead(ctx context.Context, pool *Pool, src uint32, buf []byte, width Width) error {
	if len(buf) == 0 {
		return nil
	}

	addr, err := pool.Reserve(len(buf), 0)
	if err != nil {
		return err
	}
	defer pool.Free(addr, len(buf))

	c.Read(src, addr, len(buf)/int(width.bytes()), width, Software)
	if err := c.Wait(ctx); err != nil {
		return err
	}

	pool.Read(addr, buf)
	return nil
}

// HandleInterrupt is called by the channel's vector handler: it
// acknowledges the completion or error flag and wakes the channel's
// wait.Cell. Exactly mirrors the "acknowledge; update state; wake one
// cell; return" shape §6 requires of every interrupt handler.
func (c *Channel) HandleInterrupt() {
	if reg.Get(c.CtrlAddr, regChanDone, 1) == 1 {
		reg.AckFlag(c.CtrlAddr, regChanDone) // write-1-to-clear
		atomic.StoreInt32(&c.busy, 0)
		c.completed.Wake()
	}
	if reg.Get(c.CtrlAddr, regChanErr, 1) == 1 {
		reg.Set(c.CtrlAddr, regChanErr)
		atomic.StoreInt32(&c.busy, 0)
		c.completed.Wake()
	}
}

// Busy reports whether a transfer is currently in flight.
func (c *Channel) Busy() bool {
	return atomic.LoadInt32(&c.busy) != 0
}

// Wait suspends until the programmed transfer completes, or ctx is
// canceled, in which case the channel is aborted first. A dsb is issued
// after completion is observed and before the caller reads destination
// memory, per §5's DMA ordering guarantee.
func (c *Channel) Wait(ctx context.Context) error {
	err := c.completed.WaitFor(ctx, func() bool { return !c.Busy() })
	if err != nil {
		c.Abort()
		return ErrAborted
	}
	cortexm.CPU{}.DataSyncBarrier()
	return nil
}

// abortSpinLimit bounds the poll loop waiting for the hardware to report
// not-busy after an abort request, so Abort never blocks indefinitely —
// required since it runs on every cancellation path.
const abortSpinLimit = 100_000

// Abort disables the channel and spins, bounded, until the hardware
// reports it is no longer busy. It is always safe to call, including on
// an already-idle channel.
func (c *Channel) Abort() {
	reg.Clear(c.CtrlAddr, regChanEnable)

	for i := 0; i < abortSpinLimit && reg.Get(c.CtrlAddr, regChanBusy, 1) == 1; i++ {
	}

	atomic.StoreInt32(&c.busy, 0)
	c.completed.Cancel()
}
