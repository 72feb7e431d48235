// MCX-A LPI2C controller driver
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package i2c implements the LPI2C controller bus driver in both
// blocking and async (interrupt-waker) modes: a command FIFO drives
// start/stop/transmit/receive, and every multi-byte transfer is built out
// of chunked start+command+byte-loop primitives shared by both modes.
package i2c

import (
	"context"

	"github.com/nxp-mcxa/mcxa-hal/hal/errs"
	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/gate"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wait"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wakeguard"
)

// Speed is the nominal SCL bus speed, unstretched.
type Speed int

const (
	Standard Speed = iota // 100 kbit/s
	Fast                  // 400 kbit/s
	FastPlus              // 1 Mbit/s
)

// timing returns the (CLKLO, CLKHI, SETHOLD, DATAVD) register field
// tuple for speed, the fixed per-speed table the source driver uses
// instead of computing timing from the source clock frequency.
func (s Speed) timing() (clklo, clkhi, sethold, datavd uint8) {
	switch s {
	case Fast:
		return 0x0e, 0x0c, 0x0d, 0x06
	case FastPlus:
		return 0x04, 0x03, 0x03, 0x02
	default:
		return 0x3d, 0x37, 0x3b, 0x1d
	}
}

// Config configures an I2C controller instance.
type Config struct {
	Speed Speed
}

const (
	regMCR  = 0x000
	regMSR  = 0x004
	regMIER = 0x008
	regMCCR0 = 0x014
	regMFSR = 0x02c
	regMTDR = 0x030
	regMRDR = 0x034
	regParam = 0x004 // PARAM, separate address block in real silicon; modeled here as a fixed FIFO depth instead

	bitMEN   = 0 // module enable
	bitRST   = 1 // software reset
	bitRTF   = 2 // reset tx fifo
	bitRRF   = 3 // reset rx fifo
	bitDOZEN = 4
	bitDBGEN = 5

	bitNDF  = 0 // nack detect
	bitALF  = 1 // arbitration loss
	bitFEF  = 2 // fifo error
	bitEPF  = 3
	bitSDF  = 4
	bitPLTF = 5
	bitDMF  = 6
	bitSTF  = 7

	bitTDIE = 0
	bitRDIE = 1
	bitNDIE = 2
	bitALIE = 3
	bitFEIE = 4
	bitPLTIE = 5

	fifoDepth = 4 // fixed depth for this family's LPI2C FIFO
)

// command encodes the MTDR CMD field the source driver's Cmd enum
// selects.
type command uint8

const (
	cmdTransmit command = 0
	cmdReceive  command = 1
	cmdStop     command = 2
	cmdStart    command = 4
	cmdStartHs  command = 6
)

// core holds the register base and bring-up state shared by the blocking
// and async driver handles; it carries no method valid only in one mode,
// so neither handle's method set leaks the other's operations.
type core struct {
	base  uint32
	guard *wakeguard.Guard
	isHS  bool
}

// newCore runs gate.EnableAndReset for src/div and configures the
// controller for cfg.Speed. The caller is responsible for muxing the
// SCL/SDA pins via soc/mcxa/pins before or after construction.
func newCore(base uint32, g gate.PCCGate, src gate.I2cSource, div clock.Div, cfg Config) (*core, error) {
	parts, err := gate.EnableAndReset(g, gate.I2cHook(g, src, div))
	if err != nil {
		return nil, err
	}

	c := &core{base: base, guard: parts.Guard}

	reg.Clear(c.base+regMCR, bitMEN)
	c.resetFIFOs()

	reg.Set(c.base+regMCR, bitRST)
	reg.Clear(c.base+regMCR, bitRST) // no minimum delay required between set/clear per the reference manual

	reg.Clear(c.base+regMCR, bitDOZEN)
	reg.Clear(c.base+regMCR, bitDBGEN)

	clklo, clkhi, sethold, datavd := cfg.Speed.timing()
	reg.Write(c.base+regMCCR0, uint32(clklo)|uint32(clkhi)<<8|uint32(sethold)<<16|uint32(datavd)<<24)

	reg.Set(c.base+regMCR, bitMEN)
	c.clearStatus()

	return c, nil
}

// close disables the controller and releases its wake-guard.
func (c *core) close() {
	reg.Clear(c.base+regMCR, bitMEN)
	wakeguard.Release(c.guard)
}

func (c *core) resetFIFOs() {
	reg.Set(c.base+regMCR, bitRTF)
	reg.Set(c.base+regMCR, bitRRF)
}

func (c *core) clearStatus() {
	reg.AckFlag(c.base+regMSR, bitEPF)
	reg.AckFlag(c.base+regMSR, bitSDF)
	reg.AckFlag(c.base+regMSR, bitNDF)
	reg.AckFlag(c.base+regMSR, bitALF)
	reg.AckFlag(c.base+regMSR, bitFEF)
	reg.AckFlag(c.base+regMSR, bitPLTF)
	reg.AckFlag(c.base+regMSR, bitDMF)
	reg.AckFlag(c.base+regMSR, bitSTF)
}

func (c *core) txCount() uint32 { return reg.Get(c.base+regMFSR, 0, 0x7) }
func (c *core) rxCount() uint32 { return reg.Get(c.base+regMFSR, 16, 0x7) }

func (c *core) isTxFIFOFull() bool  { return c.txCount() >= fifoDepth }
func (c *core) isTxFIFOEmpty() bool { return c.txCount() == 0 }
func (c *core) isRxFIFOEmpty() bool { return c.rxCount() == 0 }

func (c *core) sendCmd(cmd command, data uint8) {
	reg.Write(c.base+regMTDR, uint32(data)|uint32(cmd)<<8)
}

// status reads and clears the status register, translating the NACK,
// arbitration-loss and FIFO-error bits into the shared error taxonomy.
func (c *core) status() error {
	msr := reg.Read(c.base + regMSR)
	c.clearStatus()

	switch {
	case msr&(1<<bitNDF) != 0:
		return errs.New("i2c.status", "lpi2c", errs.NACK)
	case msr&(1<<bitALF) != 0:
		return errs.New("i2c.status", "lpi2c", errs.ArbitrationLost)
	case msr&(1<<bitFEF) != 0:
		return errs.New("i2c.status", "lpi2c", errs.FifoError)
	default:
		return nil
	}
}

// start blocks waiting for TxFIFO space, then blocks waiting for the
// command to drain before checking status.
func (c *core) start(address uint8, read bool) error {
	if address >= 0x80 {
		return errs.New("i2c.start", "lpi2c", errs.BadConfig)
	}

	for c.isTxFIFOFull() {
	}

	addrRW := address<<1 | boolBit(read)
	cmd := cmdStart
	if c.isHS {
		cmd = cmdStartHs
	}
	c.sendCmd(cmd, addrRW)

	for !c.isTxFIFOEmpty() {
	}

	return c.status()
}

func (c *core) stop() error {
	for c.isTxFIFOFull() {
	}
	c.sendCmd(cmdStop, 0)
	for !c.isTxFIFOEmpty() {
	}
	return c.status()
}

// remediation is run when an async operation is canceled: drop the
// TxFIFO contents if non-empty, then force a stop onto the bus so the
// peripheral does not wedge the bus for the next transaction.
func (c *core) remediation() {
	if !c.isTxFIFOEmpty() {
		c.resetFIFOs()
	}
	_ = c.stop()
}

func (c *core) enableTxInts() {
	reg.Write(c.base+regMIER, 1<<bitTDIE|1<<bitNDIE|1<<bitALIE|1<<bitFEIE|1<<bitPLTIE)
}

func (c *core) enableRxInts() {
	reg.Write(c.base+regMIER, 1<<bitRDIE|1<<bitNDIE|1<<bitALIE|1<<bitFEIE|1<<bitPLTIE)
}

// I2C is a blocking-mode LPI2C controller instance: Read/Write/WriteRead
// busy-wait on the FIFO and status registers directly. It exposes no
// async method, so a blocking handle can never be driven by
// HandleInterrupt by mistake.
type I2C struct {
	core
}

// NewBlocking runs the controller bring-up and returns a handle whose
// only transfer methods busy-wait for completion.
func NewBlocking(base uint32, g gate.PCCGate, src gate.I2cSource, div clock.Div, cfg Config) (*I2C, error) {
	c, err := newCore(base, g, src, div, cfg)
	if err != nil {
		return nil, err
	}
	return &I2C{core: *c}, nil
}

// Close disables the controller and releases its wake-guard.
func (i *I2C) Close() { i.core.close() }

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

const maxChunk = 256

// blockingReadInternal mirrors the source driver's chunked-read loop: a
// receive command is issued per 256-byte chunk (the command's count
// field is eight bits), each followed by a byte-at-a-time FIFO drain.
func (i *I2C) blockingReadInternal(address uint8, read []byte, sendStop bool) error {
	if len(read) == 0 {
		return errs.New("i2c.read", "lpi2c", errs.BadConfig)
	}

	for off := 0; off < len(read); off += maxChunk {
		end := off + maxChunk
		if end > len(read) {
			end = len(read)
		}
		chunk := read[off:end]

		if err := i.start(address, true); err != nil {
			return err
		}

		for i.isTxFIFOFull() {
		}
		i.sendCmd(cmdReceive, uint8(len(chunk)-1))

		for b := range chunk {
			for i.isRxFIFOEmpty() {
			}
			chunk[b] = uint8(reg.Read(i.base + regMRDR))
		}
	}

	if sendStop {
		return i.stop()
	}
	return nil
}

// blockingWriteInternal issues no start/transmit-count limit: each byte
// is queued once FIFO space is available, matching the source driver.
// Writing a zero-length buffer is a legal "write probe" (start then
// immediate stop) rather than an error.
func (i *I2C) blockingWriteInternal(address uint8, write []byte, sendStop bool) error {
	if err := i.start(address, false); err != nil {
		return err
	}

	for _, b := range write {
		for i.isTxFIFOFull() {
		}
		i.sendCmd(cmdTransmit, b)
	}

	if sendStop {
		return i.stop()
	}
	return nil
}

// Read reads len(read) bytes from address, framed with a start and stop.
func (i *I2C) Read(address uint8, read []byte) error {
	return i.blockingReadInternal(address, read, true)
}

// Write writes write to address, framed with a start and stop. An empty
// write is a legal address probe.
func (i *I2C) Write(address uint8, write []byte) error {
	return i.blockingWriteInternal(address, write, true)
}

// WriteRead writes write then reads into read, using a repeated start
// between the two phases instead of an intervening stop.
func (i *I2C) WriteRead(address uint8, write []byte, read []byte) error {
	if err := i.blockingWriteInternal(address, write, false); err != nil {
		return err
	}
	return i.blockingReadInternal(address, read, true)
}

// Operation is one leg of a Transaction: either a Read or a Write against
// the same address, each framed with start but only the final leg sends
// stop.
type Operation struct {
	Read  []byte // non-nil selects a read leg
	Write []byte // non-nil selects a write leg
}

// Transaction runs a sequence of Read/Write legs against address, issuing
// a stop only after the final leg.
func (i *I2C) Transaction(address uint8, ops []Operation) error {
	for n, op := range ops {
		last := n == len(ops)-1
		var err error
		if op.Read != nil {
			err = i.blockingReadInternal(address, op.Read, last)
		} else {
			err = i.blockingWriteInternal(address, op.Write, last)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// AsyncI2C is an interrupt-driven LPI2C controller instance: AsyncRead,
// AsyncWrite and AsyncWriteRead suspend on a wait.Cell woken by
// HandleInterrupt instead of busy-waiting. It exposes no blocking
// Read/Write/WriteRead, so an async handle can never be driven by
// busy-polling by mistake.
type AsyncI2C struct {
	core
	waitCell wait.Cell
}

// NewAsync runs the same controller bring-up as NewBlocking but returns a
// handle meant to be driven by HandleInterrupt and the AsyncX family of
// methods instead.
func NewAsync(base uint32, g gate.PCCGate, src gate.I2cSource, div clock.Div, cfg Config) (*AsyncI2C, error) {
	c, err := newCore(base, g, src, div, cfg)
	if err != nil {
		return nil, err
	}
	return &AsyncI2C{core: *c}, nil
}

// Close disables the controller and releases its wake-guard.
func (i *AsyncI2C) Close() { i.core.close() }

// HandleInterrupt wakes any goroutine blocked in an async call; the
// predicate each waiter is polling re-reads the FIFO/status registers
// directly rather than this handler interpreting the cause.
func (i *AsyncI2C) HandleInterrupt() {
	i.waitCell.Wake()
}

func (i *AsyncI2C) asyncStart(ctx context.Context, address uint8, read bool) error {
	if address >= 0x80 {
		return errs.New("i2c.start", "lpi2c", errs.BadConfig)
	}

	addrRW := address<<1 | boolBit(read)
	cmd := cmdStart
	if i.isHS {
		cmd = cmdStartHs
	}
	i.sendCmd(cmd, addrRW)

	err := i.waitCell.WaitFor(ctx, func() bool {
		i.enableTxInts()
		return i.isTxFIFOEmpty()
	})
	if err != nil {
		i.remediation()
		return errs.Wrap("i2c.start", "lpi2c", errs.Canceled, err)
	}

	return i.status()
}

func (i *AsyncI2C) asyncStop(ctx context.Context) error {
	i.sendCmd(cmdStop, 0)

	err := i.waitCell.WaitFor(ctx, func() bool {
		i.enableTxInts()
		return i.isTxFIFOEmpty()
	})
	if err != nil {
		i.remediation()
		return errs.Wrap("i2c.stop", "lpi2c", errs.Canceled, err)
	}

	return i.status()
}

// AsyncRead is the interrupt-driven equivalent of Read: it waits on the
// wake cell between FIFO operations instead of busy-polling, and runs
// remediation (flush + forced stop) if ctx is canceled mid-transfer.
func (i *AsyncI2C) AsyncRead(ctx context.Context, address uint8, read []byte) error {
	if len(read) == 0 {
		return errs.New("i2c.read", "lpi2c", errs.BadConfig)
	}

	for off := 0; off < len(read); off += maxChunk {
		end := off + maxChunk
		if end > len(read) {
			end = len(read)
		}
		chunk := read[off:end]

		if err := i.asyncStart(ctx, address, true); err != nil {
			return err
		}

		i.sendCmd(cmdReceive, uint8(len(chunk)-1))
		if err := i.waitCell.WaitFor(ctx, func() bool {
			i.enableTxInts()
			return i.isTxFIFOEmpty()
		}); err != nil {
			i.remediation()
			return errs.Wrap("i2c.read", "lpi2c", errs.Canceled, err)
		}

		for b := range chunk {
			err := i.waitCell.WaitFor(ctx, func() bool {
				i.enableRxInts()
				return !i.isRxFIFOEmpty()
			})
			if err != nil {
				i.remediation()
				return errs.Wrap("i2c.read", "lpi2c", errs.Canceled, err)
			}
			chunk[b] = uint8(reg.Read(i.base + regMRDR))
		}
	}

	return i.asyncStop(ctx)
}

// AsyncWrite is the interrupt-driven equivalent of Write.
func (i *AsyncI2C) AsyncWrite(ctx context.Context, address uint8, write []byte) error {
	if err := i.asyncStart(ctx, address, false); err != nil {
		return err
	}

	for _, b := range write {
		err := i.waitCell.WaitFor(ctx, func() bool {
			i.enableTxInts()
			i.sendCmd(cmdTransmit, b)
			return i.isTxFIFOEmpty()
		})
		if err != nil {
			i.remediation()
			return errs.Wrap("i2c.write", "lpi2c", errs.Canceled, err)
		}
	}

	return i.asyncStop(ctx)
}

// AsyncWriteRead is the interrupt-driven equivalent of WriteRead.
func (i *AsyncI2C) AsyncWriteRead(ctx context.Context, address uint8, write []byte, read []byte) error {
	if err := i.asyncStart(ctx, address, false); err != nil {
		return err
	}
	for _, b := range write {
		err := i.waitCell.WaitFor(ctx, func() bool {
			i.enableTxInts()
			i.sendCmd(cmdTransmit, b)
			return i.isTxFIFOEmpty()
		})
		if err != nil {
			i.remediation()
			return errs.Wrap("i2c.writeread", "lpi2c", errs.Canceled, err)
		}
	}
	return i.AsyncRead(ctx, address, read)
}
