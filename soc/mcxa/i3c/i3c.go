// MCX-A I3C controller driver
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package i3c implements the I3C controller's baud-rate derivation (one
// source clock feeds push-pull, open-drain and I2C-compatibility SCL
// rates simultaneously) and the MCTRL/MSTATUS-based start/stop protocol
// shared across I3C SDR, I3C DDR and legacy-I2C bus types, in both
// blocking and interrupt-driven async modes.
package i3c

import (
	"context"

	"github.com/nxp-mcxa/mcxa-hal/hal/errs"
	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/dma"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/gate"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wait"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wakeguard"
)

// BusType selects the protocol a start/stop/transfer uses.
type BusType int

const (
	I3cSDR BusType = iota
	I2cCompat
	I3cDDR
)

// I2cSpeed is the legacy-I2C-compatibility target rate used only to pick
// I2CBAUD; the push-pull/open-drain rates are independent of it.
type I2cSpeed uint32

const (
	I2cStandard I2cSpeed = 100_000
	I2cFast     I2cSpeed = 400_000
	I2cFastPlus I2cSpeed = 1_000_000
)

// ClockConfig selects the I3C peripheral's source mux and divider.
type ClockConfig struct {
	Source gate.I3cSource
	Div    clock.Div
}

// Config configures an I3C controller instance.
type Config struct {
	PushPullFreqHz  uint32
	OpenDrainFreqHz uint32
	I2cSpeed        I2cSpeed
	Clock           ClockConfig
	ODHPP           bool // open-drain high-push-pull: derive OD from 2x the PP clock
}

// DefaultConfig matches the source driver's Config::default(): 1.5 MHz
// push-pull, 750 kHz open-drain, Fast (400 kbit/s) I2C compatibility.
func DefaultConfig() Config {
	return Config{
		PushPullFreqHz:  1_500_000,
		OpenDrainFreqHz: 750_000,
		I2cSpeed:        I2cFast,
		Clock:           ClockConfig{Source: gate.I3cFroLfDiv, Div: clock.Div(1)},
		ODHPP:           true,
	}
}

// BaudParams is the (PPBAUD, ODBAUD, I2CBAUD) triple MCONFIG is
// programmed with.
type BaudParams struct {
	PPBaud  uint32
	ODBaud  uint32
	I2cBaud uint32
}

func calculateError(curFreq, desiredFreq uint32) uint32 {
	var delta uint32
	if curFreq > desiredFreq {
		delta = curFreq - desiredFreq
	} else {
		delta = desiredFreq - curFreq
	}
	return delta * 100 / desiredFreq
}

const nsecPerSec = 1_000_000_000

// CalculateBaudRateParams derives PPBAUD, ODBAUD and I2CBAUD from fclk
// and cfg, per spec.md §4.4: push-pull is generated from fclk/2, open-drain
// from either the push-pull clock (ODHPP) or directly from fclk, and the
// I2C-compatibility divider is chosen between an even and an odd
// candidate by whichever comes within 10% of the target rate.
func CalculateBaudRateParams(fclk uint32, cfg Config, odhppEnabled bool) (BaudParams, error) {
	targetPP := cfg.PushPullFreqHz
	if targetPP == 0 {
		return BaudParams{}, errs.New("i3c.baud", "i3c", errs.BadConfig)
	}
	maxPP := targetPP + targetPP/10

	targetOD := cfg.OpenDrainFreqHz
	maxOD := targetOD + targetOD/10

	targetI2c := uint32(cfg.I2cSpeed)

	// 1) push-pull baud, generated from fclk/2.
	ppSrcHz := fclk / 2
	ppDiv := max1(ppSrcHz / targetPP)
	if ppSrcHz/ppDiv > maxPP {
		ppDiv++
	}
	ppBaud := ppDiv - 1
	ppSrcHz /= ppDiv
	ppLowNs := nsecPerSec / (2 * ppSrcHz)

	// 2) open-drain baud, dependent on ODHPP mode.
	var odBaud uint32
	if odhppEnabled {
		div := max2((2 * ppSrcHz) / targetOD)
		if (2*ppSrcHz)/div > maxOD {
			div++
		}
		odBaud = div - 2
	} else {
		div := max1(ppSrcHz / targetOD)
		if ppSrcHz/div > maxOD {
			div++
		}
		odBaud = div - 1
	}
	odLowNs := (odBaud + 1) * ppLowNs

	// 3) I2C-compatibility baud: choose even/odd divider by lowest error.
	evenDiv := max1((fclk / targetI2c) / (2 * (ppBaud + 1) * (odBaud + 1)))
	evenRate := nsecPerSec / (2 * evenDiv * odLowNs)
	evenError := calculateError(evenRate, targetI2c)

	oddDiv := max1(((fclk / targetI2c) / ((ppBaud+1)*(odBaud+1) - 1)) / 2)
	oddRate := nsecPerSec / ((2*oddDiv + 1) * odLowNs)
	oddError := calculateError(oddRate, targetI2c)

	var i2cBaud uint32
	switch {
	case evenError < 10 || oddError < 10:
		if evenError < oddError {
			i2cBaud = (evenDiv - 1) * 2
		} else {
			i2cBaud = (oddDiv-1)*2 + 1
		}
	case ppSrcHz/evenDiv < targetI2c:
		i2cBaud = (evenDiv - 1) * 2
	default:
		i2cBaud = evenDiv * 2
	}

	return BaudParams{PPBaud: ppBaud, ODBaud: odBaud, I2cBaud: i2cBaud}, nil
}

func max1(v uint32) uint32 {
	if v < 1 {
		return 1
	}
	return v
}

func max2(v uint32) uint32 {
	if v < 2 {
		return 2
	}
	return v
}

const (
	regMCONFIG  = 0x000
	regMCTRL    = 0x004
	regMSTATUS  = 0x008
	regMERRWARN = 0x00c
	regMDATACTRL = 0x010
	regMWDATAB  = 0x014
	regMWDATABE = 0x018
	regMRDATAB  = 0x01c
	regMINTSET  = 0x020

	bitMstena = 31 // MCONFIG master-enable

	bitSlvstart   = 0
	bitMctrldone  = 1
	bitComplete   = 2
	bitIbiwon     = 3
	bitNowmaster  = 4
	bitErrwarn    = 5
	bitTxnotfull  = 6
	bitRxpend     = 7
	stateNormact  = 1

	bitFlushtb = 0
	bitFlushfb = 1
	bitTxfull  = 2
	bitRxempty = 3

	bitUrun   = 0
	bitNack   = 1
	bitWrabt  = 2
	bitTerm   = 3
	bitTimeout = 4
)

// core holds the register base and bring-up state shared by the
// blocking, async and DMA driver handles; it carries no method valid
// only in one mode, so no handle's method set leaks another's
// operations.
type core struct {
	base  uint32
	fclk  uint32
	guard *wakeguard.Guard
}

// newCore runs gate.EnableAndReset for cfg.Clock, derives baud parameters
// from the resulting fclk, and programs MCONFIG as master.
func newCore(base uint32, g gate.PCCGate, cfg Config) (*core, error) {
	parts, err := gate.EnableAndReset(g, gate.I3cHook(g, cfg.Clock.Source, cfg.Clock.Div))
	if err != nil {
		return nil, err
	}

	c := &core{base: base, fclk: parts.FreqHz, guard: parts.Guard}
	c.clearFlags()

	reg.Set(c.base+regMDATACTRL, bitFlushtb)
	reg.Set(c.base+regMDATACTRL, bitFlushfb)

	baud, err := CalculateBaudRateParams(c.fclk, cfg, cfg.ODHPP)
	if err != nil {
		wakeguard.Release(c.guard)
		return nil, err
	}

	reg.Write(c.base+regMCONFIG, baud.PPBaud|baud.ODBaud<<8|baud.I2cBaud<<16|1<<bitMstena)

	return c, nil
}

// close releases the controller's wake-guard.
func (c *core) close() { wakeguard.Release(c.guard) }

func (c *core) clearFlags() {
	reg.AckFlag(c.base+regMSTATUS, bitSlvstart)
	reg.AckFlag(c.base+regMSTATUS, bitMctrldone)
	reg.AckFlag(c.base+regMSTATUS, bitComplete)
	reg.AckFlag(c.base+regMSTATUS, bitIbiwon)
	reg.AckFlag(c.base+regMSTATUS, bitNowmaster)
}

func (c *core) waitForCtrlDone() {
	for reg.Get(c.base+regMSTATUS, bitMctrldone, 1) == 0 {
	}
}

func (c *core) waitForComplete() {
	for reg.Get(c.base+regMSTATUS, bitComplete, 1) == 0 {
	}
}

func (c *core) waitForTxFIFO() {
	for reg.Get(c.base+regMDATACTRL, bitTxfull, 1) == 1 {
	}
}

func (c *core) waitForRxFIFO() {
	for reg.Get(c.base+regMDATACTRL, bitRxempty, 1) == 1 {
	}
}

// status decodes MERRWARN into the shared error taxonomy after an
// ERRWARN flag is observed in MSTATUS.
func (c *core) status() error {
	if reg.Get(c.base+regMSTATUS, bitErrwarn, 1) == 0 {
		return nil
	}

	merrwarn := reg.Read(c.base + regMERRWARN)
	switch {
	case merrwarn&(1<<bitUrun) != 0:
		return errs.New("i3c.status", "i3c", errs.Overrun)
	case merrwarn&(1<<bitNack) != 0:
		return errs.New("i3c.status", "i3c", errs.NACK)
	case merrwarn&(1<<bitWrabt) != 0:
		return errs.New("i3c.status", "i3c", errs.Error)
	case merrwarn&(1<<bitTerm) != 0:
		return errs.New("i3c.status", "i3c", errs.Error)
	case merrwarn&(1<<bitTimeout) != 0:
		return errs.New("i3c.status", "i3c", errs.Timeout)
	default:
		return errs.New("i3c.status", "i3c", errs.Error)
	}
}

// direction selects MCTRL's DIR field.
type direction int

const (
	dirWrite direction = iota
	dirRead
)

func busTypeField(bt BusType) uint32 {
	switch bt {
	case I2cCompat:
		return 1
	case I3cDDR:
		return 2
	default:
		return 0
	}
}

func (c *core) start(address uint8, bt BusType, dir direction, length uint8) error {
	c.clearFlags()

	var dirBit uint32
	if dir == dirRead {
		dirBit = 1
	}
	reg.Write(c.base+regMCTRL, uint32(address)|uint32(length)<<8|busTypeField(bt)<<16|dirBit<<18|1<<19 /* EMITSTARTADDR */)

	c.waitForCtrlDone()
	return c.status()
}

func (c *core) stop(bt BusType) error {
	if reg.Get(c.base+regMSTATUS, 8, 0xf) != stateNormact {
		return errs.New("i3c.stop", "i3c", errs.BadConfig)
	}

	reg.SetTo(c.base+regMCONFIG, 9 /* ODSTOP */, bt == I2cCompat)
	reg.Write(c.base+regMCTRL, 1<<20 /* EMITSTOP */ |busTypeField(bt)<<16)

	c.waitForCtrlDone()
	return c.status()
}

func (c *core) remediation(bt BusType) {
	if reg.Get(c.base+regMDATACTRL, 16, 0xff) != 0 { // TXCOUNT
		reg.Set(c.base+regMDATACTRL, bitFlushtb)
		reg.Set(c.base+regMDATACTRL, bitFlushfb)
	}
	_ = c.stop(bt)
}

const maxChunk = 256

// I3C is a blocking-mode I3C controller instance: Read, Write and
// WriteRead busy-wait on MSTATUS/MDATACTRL directly. It exposes no
// async or DMA method, so a blocking handle can never be driven by
// HandleInterrupt or a dma.Channel by mistake.
type I3C struct {
	core
}

// New runs the controller bring-up and returns a handle whose transfer
// methods busy-wait for completion.
func New(base uint32, g gate.PCCGate, cfg Config) (*I3C, error) {
	c, err := newCore(base, g, cfg)
	if err != nil {
		return nil, err
	}
	return &I3C{core: *c}, nil
}

// Close releases the controller's wake-guard.
func (i *I3C) Close() { i.core.close() }

func (i *I3C) readInternal(address uint8, read []byte, bt BusType, sendStop bool) error {
	if len(read) == 0 {
		return errs.New("i3c.read", "i3c", errs.BadConfig)
	}

	for off := 0; off < len(read); off += maxChunk {
		end := off + maxChunk
		if end > len(read) {
			end = len(read)
		}
		chunk := read[off:end]

		if err := i.start(address, bt, dirRead, uint8(len(chunk))); err != nil {
			i.remediation(bt)
			return err
		}

		for b := range chunk {
			i.waitForRxFIFO()
			chunk[b] = uint8(reg.Read(i.base + regMRDATAB))
		}
	}

	if sendStop {
		return i.stop(bt)
	}
	return nil
}

func (i *I3C) writeInternal(address uint8, write []byte, bt BusType, sendStop bool) error {
	if err := i.start(address, bt, dirWrite, 0); err != nil {
		i.remediation(bt)
		return err
	}

	if len(write) == 0 {
		if sendStop {
			return i.stop(bt)
		}
		return nil
	}

	last := write[len(write)-1]
	for _, b := range write[:len(write)-1] {
		i.waitForTxFIFO()
		reg.Write(i.base+regMWDATAB, uint32(b))
	}

	i.waitForTxFIFO()
	reg.Write(i.base+regMWDATABE, uint32(last)) // byte-end: closes the transfer
	i.waitForComplete()

	if sendStop {
		return i.stop(bt)
	}
	return nil
}

// Read reads len(read) bytes from address, framed with a start and stop.
func (i *I3C) Read(address uint8, read []byte, bt BusType) error {
	return i.readInternal(address, read, bt, true)
}

// Write writes write to address, framed with a start and stop. An empty
// write is a legal address probe (start immediately followed by stop).
func (i *I3C) Write(address uint8, write []byte, bt BusType) error {
	return i.writeInternal(address, write, bt, true)
}

// WriteRead writes write, then reads into read without an intervening
// stop, via repeated start.
func (i *I3C) WriteRead(address uint8, write []byte, read []byte, bt BusType) error {
	if err := i.writeInternal(address, write, bt, false); err != nil {
		return err
	}
	return i.readInternal(address, read, bt, true)
}

// AsyncI3C is an interrupt-driven I3C controller instance: AsyncRead,
// AsyncWrite and AsyncWriteRead suspend on a wait.Cell woken by
// HandleInterrupt instead of busy-waiting. It exposes no blocking
// Read/Write/WriteRead, so an async handle can never be driven by
// busy-polling by mistake.
type AsyncI3C struct {
	core
	waitCell wait.Cell
}

// NewAsync runs the same controller bring-up as New but returns a handle
// meant to be driven by HandleInterrupt and the AsyncX family of methods
// instead.
func NewAsync(base uint32, g gate.PCCGate, cfg Config) (*AsyncI3C, error) {
	c, err := newCore(base, g, cfg)
	if err != nil {
		return nil, err
	}
	return &AsyncI3C{core: *c}, nil
}

// Close releases the controller's wake-guard.
func (i *AsyncI3C) Close() { i.core.close() }

// HandleInterrupt wakes any goroutine blocked in an async call; each
// waiter's predicate re-reads MSTATUS directly rather than this handler
// interpreting the cause.
func (i *AsyncI3C) HandleInterrupt() {
	i.waitCell.Wake()
}

func (i *AsyncI3C) asyncWaitForCtrlDone(ctx context.Context) error {
	return i.waitCell.WaitFor(ctx, func() bool {
		reg.Set(i.base+regMINTSET, bitMctrldone)
		reg.Set(i.base+regMINTSET, bitErrwarn)
		return reg.Get(i.base+regMSTATUS, bitMctrldone, 1) == 1 || reg.Get(i.base+regMSTATUS, bitErrwarn, 1) == 1
	})
}

func (i *AsyncI3C) asyncWaitForComplete(ctx context.Context) error {
	return i.waitCell.WaitFor(ctx, func() bool {
		reg.Set(i.base+regMINTSET, bitComplete)
		reg.Set(i.base+regMINTSET, bitErrwarn)
		return reg.Get(i.base+regMSTATUS, bitComplete, 1) == 1 || reg.Get(i.base+regMSTATUS, bitErrwarn, 1) == 1
	})
}

func (i *AsyncI3C) asyncWaitForTxFIFO(ctx context.Context) error {
	return i.waitCell.WaitFor(ctx, func() bool {
		reg.Set(i.base+regMINTSET, bitTxnotfull)
		reg.Set(i.base+regMINTSET, bitErrwarn)
		return reg.Get(i.base+regMSTATUS, bitTxnotfull, 1) == 1 || reg.Get(i.base+regMSTATUS, bitErrwarn, 1) == 1
	})
}

func (i *AsyncI3C) asyncWaitForRxFIFO(ctx context.Context) error {
	return i.waitCell.WaitFor(ctx, func() bool {
		reg.Set(i.base+regMINTSET, bitRxpend)
		reg.Set(i.base+regMINTSET, bitErrwarn)
		return reg.Get(i.base+regMSTATUS, bitRxpend, 1) == 1 || reg.Get(i.base+regMSTATUS, bitErrwarn, 1) == 1
	})
}

func (i *AsyncI3C) asyncStart(ctx context.Context, address uint8, bt BusType, dir direction, length uint8) error {
	i.clearFlags()

	var dirBit uint32
	if dir == dirRead {
		dirBit = 1
	}
	reg.Write(i.base+regMCTRL, uint32(address)|uint32(length)<<8|busTypeField(bt)<<16|dirBit<<18|1<<19 /* EMITSTARTADDR */)

	if err := i.asyncWaitForCtrlDone(ctx); err != nil {
		i.remediation(bt)
		return errs.Wrap("i3c.start", "i3c", errs.Canceled, err)
	}
	return i.status()
}

func (i *AsyncI3C) asyncStop(ctx context.Context, bt BusType) error {
	if reg.Get(i.base+regMSTATUS, 8, 0xf) != stateNormact {
		return errs.New("i3c.stop", "i3c", errs.BadConfig)
	}

	reg.SetTo(i.base+regMCONFIG, 9 /* ODSTOP */, bt == I2cCompat)
	reg.Write(i.base+regMCTRL, 1<<20 /* EMITSTOP */ |busTypeField(bt)<<16)

	if err := i.asyncWaitForCtrlDone(ctx); err != nil {
		i.remediation(bt)
		return errs.Wrap("i3c.stop", "i3c", errs.Canceled, err)
	}
	return i.status()
}

// asyncReadInternal is the interrupt-driven equivalent of readInternal:
// it waits on the wake cell between FIFO operations instead of
// busy-polling, and runs remediation (flush + forced stop) if ctx is
// canceled mid-transfer.
func (i *AsyncI3C) asyncReadInternal(ctx context.Context, address uint8, read []byte, bt BusType, sendStop bool) error {
	if len(read) == 0 {
		return errs.New("i3c.read", "i3c", errs.BadConfig)
	}

	for off := 0; off < len(read); off += maxChunk {
		end := off + maxChunk
		if end > len(read) {
			end = len(read)
		}
		chunk := read[off:end]

		if err := i.asyncStart(ctx, address, bt, dirRead, uint8(len(chunk))); err != nil {
			return err
		}

		for b := range chunk {
			if err := i.asyncWaitForRxFIFO(ctx); err != nil {
				i.remediation(bt)
				return errs.Wrap("i3c.read", "i3c", errs.Canceled, err)
			}
			chunk[b] = uint8(reg.Read(i.base + regMRDATAB))
		}
	}

	if sendStop {
		return i.asyncStop(ctx, bt)
	}
	return nil
}

func (i *AsyncI3C) asyncWriteInternal(ctx context.Context, address uint8, write []byte, bt BusType, sendStop bool) error {
	if err := i.asyncStart(ctx, address, bt, dirWrite, 0); err != nil {
		return err
	}

	if len(write) == 0 {
		if sendStop {
			return i.asyncStop(ctx, bt)
		}
		return nil
	}

	last := write[len(write)-1]
	for _, b := range write[:len(write)-1] {
		if err := i.asyncWaitForTxFIFO(ctx); err != nil {
			i.remediation(bt)
			return errs.Wrap("i3c.write", "i3c", errs.Canceled, err)
		}
		reg.Write(i.base+regMWDATAB, uint32(b))
	}

	if err := i.asyncWaitForTxFIFO(ctx); err != nil {
		i.remediation(bt)
		return errs.Wrap("i3c.write", "i3c", errs.Canceled, err)
	}
	reg.Write(i.base+regMWDATABE, uint32(last)) // byte-end: closes the transfer

	if err := i.asyncWaitForComplete(ctx); err != nil {
		i.remediation(bt)
		return errs.Wrap("i3c.write", "i3c", errs.Canceled, err)
	}

	if sendStop {
		return i.asyncStop(ctx, bt)
	}
	return nil
}

// AsyncRead is the interrupt-driven equivalent of Read.
func (i *AsyncI3C) AsyncRead(ctx context.Context, address uint8, read []byte, bt BusType) error {
	return i.asyncReadInternal(ctx, address, read, bt, true)
}

// AsyncWrite is the interrupt-driven equivalent of Write. An empty write
// is a legal address probe, same as Write.
func (i *AsyncI3C) AsyncWrite(ctx context.Context, address uint8, write []byte, bt BusType) error {
	return i.asyncWriteInternal(ctx, address, write, bt, true)
}

// AsyncWriteRead is the interrupt-driven equivalent of WriteRead.
func (i *AsyncI3C) AsyncWriteRead(ctx context.Context, address uint8, write []byte, read []byte, bt BusType) error {
	if err := i.asyncWriteInternal(ctx, address, write, bt, false); err != nil {
		return err
	}
	return i.asyncReadInternal(ctx, address, read, bt, true)
}

// DMAI3C is an I3C controller instance whose byte transfers are driven by
// a DMA channel scatter transfer against MWDATAB/MRDATAB rather than a
// CPU busy-wait or interrupt-driven byte loop. It exposes no blocking or
// async transfer method, so a DMA handle can never be driven any other
// way.
type DMAI3C struct {
	core
	ch   *dma.Channel
	pool *dma.Pool
}

// NewDMA runs the same controller bring-up as New but binds ch and pool
// for DMA-mode transfers: Write stages into pool and scatters it out to
// MWDATAB, Read scatters MRDATAB into pool and copies the result out.
func NewDMA(base uint32, g gate.PCCGate, cfg Config, ch *dma.Channel, pool *dma.Pool) (*DMAI3C, error) {
	c, err := newCore(base, g, cfg)
	if err != nil {
		return nil, err
	}
	return &DMAI3C{core: *c, ch: ch, pool: pool}, nil
}

// Close releases the controller's wake-guard.
func (i *DMAI3C) Close() { i.core.close() }

// Write writes write to address, framed with a start and stop, staging
// write through the bound Pool and transferring it to MWDATAB with one
// DMA scatter transfer per maxChunk-sized run. The transfer's length is
// programmed into MCTRL up front, so unlike the blocking/async writers
// this path needs no MWDATABE byte-end marker to close the transfer.
func (i *DMAI3C) Write(ctx context.Context, address uint8, write []byte, bt BusType) error {
	if len(write) == 0 {
		if err := i.start(address, bt, dirWrite, 0); err != nil {
			i.remediation(bt)
			return err
		}
		return i.stop(bt)
	}

	for off := 0; off < len(write); off += maxChunk {
		end := off + maxChunk
		if end > len(write) {
			end = len(write)
		}
		chunk := write[off:end]

		if err := i.start(address, bt, dirWrite, uint8(len(chunk))); err != nil {
			i.remediation(bt)
			return err
		}
		if err := i.ch.ScatterWrite(ctx, i.pool, i.base+regMWDATAB, chunk, dma.Width8); err != nil {
			i.remediation(bt)
			return errs.Wrap("i3c.write", "i3c", errs.Canceled, err)
		}
	}

	return i.stop(bt)
}

// Read reads len(read) bytes from address, framed with a start and stop,
// scattering MRDATAB into the bound Pool and copying the result into read
// one maxChunk-sized run at a time.
func (i *DMAI3C) Read(ctx context.Context, address uint8, read []byte, bt BusType) error {
	if len(read) == 0 {
		return errs.New("i3c.read", "i3c", errs.BadConfig)
	}

	for off := 0; off < len(read); off += maxChunk {
		end := off + maxChunk
		if end > len(read) {
			end = len(read)
		}
		chunk := read[off:end]

		if err := i.start(address, bt, dirRead, uint8(len(chunk))); err != nil {
			i.remediation(bt)
			return err
		}
		if err := i.ch.ScatterRead(ctx, i.pool, i.base+regMRDATAB, chunk, dma.Width8); err != nil {
			i.remediation(bt)
			return errs.Wrap("i3c.read", "i3c", errs.Canceled, err)
		}
	}

	return i.stop(bt)
}
