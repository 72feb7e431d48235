// MCX-A LPUART controller driver
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package uart implements the LPUART controller bus driver: a baudrate
// search over OSR 4-32 picking the candidate with lowest error (rejecting
// anything outside 3%), blocking polled transfers, a true interrupt-driven
// per-byte async mode, a buffered mode that pumps bytes between the
// peripheral FIFO and a pair of soc/mcxa/ring queues the way the source
// driver's ISR does, and a DMA-scatter mode built on soc/mcxa/dma.
package uart

import (
	"context"

	"github.com/nxp-mcxa/mcxa-hal/hal/errs"
	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/clock"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/dma"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/gate"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/ring"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wait"
	"github.com/nxp-mcxa/mcxa-hal/soc/mcxa/wakeguard"
)

// Parity selects the frame's parity bit, or its absence.
type Parity int

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// DataBits selects the frame's data-bit count.
type DataBits int

const (
	Data8 DataBits = iota
	Data9
)

// StopBits selects the frame's stop-bit count.
type StopBits int

const (
	OneStopBit StopBits = iota
	TwoStopBits
)

// ClockConfig selects the LPUART peripheral's source mux and divider.
type ClockConfig struct {
	Source gate.UartSource
	Div    clock.Div
}

// Config configures an LPUART controller instance.
type Config struct {
	Clock           ClockConfig
	BaudRate        uint32
	Parity          Parity
	DataBits        DataBits
	StopBits        StopBits
	MSBFirst        bool
	SwapTxRx        bool
	TxFIFOWatermark uint8
	RxFIFOWatermark uint8
	EnableRTS       bool
	EnableCTS       bool
}

// DefaultConfig matches the source driver's Config::default(): 115200
// 8N1, LSB first, watermarks at 0.
func DefaultConfig() Config {
	return Config{
		Clock:    ClockConfig{Source: gate.UartFroLfDiv, Div: clock.Div(1)},
		BaudRate: 115_200,
		DataBits: Data8,
		StopBits: OneStopBit,
	}
}

const (
	regBAUD   = 0x10
	regSTAT   = 0x14
	regCTRL   = 0x18
	regDATA   = 0x1c
	regMATCH  = 0x20
	regMODIR  = 0x24
	regFIFO   = 0x28
	regWATER  = 0x2c
	regPARAM  = 0x08
	regGLOBAL = 0x44

	bitSBNS = 13 // BAUD: stop bit number select
	bitM10  = 5  // BAUD: 10-bit mode (unused, always cleared)

	bitTE    = 19 // CTRL: transmit enable
	bitRE    = 18 // CTRL: receive enable
	bitPE    = 1  // CTRL: parity enable
	bitPT    = 0  // CTRL: parity type
	bitM     = 4  // CTRL: 9-bit mode
	bitRIE   = 21 // CTRL: receive interrupt enable
	bitTIE   = 23 // CTRL: transmit interrupt enable
	bitTCIE  = 22 // CTRL: transmission-complete interrupt enable
	bitORIE  = 27 // CTRL: overrun interrupt enable
	bitPEIE  = 26 // CTRL: parity error interrupt enable
	bitFEIE  = 25 // CTRL: framing error interrupt enable
	bitNEIE  = 24 // CTRL: noise error interrupt enable
	bitDOZEN = 6

	bitTDRE = 23 // STAT: transmit data register empty
	bitTC   = 22 // STAT: transmission complete
	bitRDRF = 21 // STAT: receive data register full
	bitIDLE = 20 // STAT: idle line
	bitOR   = 19 // STAT: overrun
	bitNF   = 18 // STAT: noise flag
	bitFE   = 17 // STAT: framing error
	bitPF   = 16 // STAT: parity error
	bitMSBF = 5

	bitTXFE    = 7 // FIFO: tx fifo enable
	bitRXFE    = 3 // FIFO: rx fifo enable
	bitTXFLUSH = 6
	bitRXFLUSH = 2

	bitRST = 1 // GLOBAL: software reset

	bitRTSE = 3 // MODIR: rx rts enable
	bitCTSE = 0 // MODIR: tx cts enable
)

// CalculateBaudrate derives the (OSR, SBR) pair closest to target from
// srcClockHz, searching OSR 4-32 the way the source driver's
// calculate_baudrate does, and rejects any result whose error exceeds 3%.
func CalculateBaudrate(target, srcClockHz uint32) (osr uint8, sbr uint16, err error) {
	if target == 0 {
		return 0, 0, errs.New("uart.baud", "lpuart", errs.BadConfig)
	}

	bestDiff := target
	var bestOsr uint8
	var bestSbr uint16

	for osrTemp := uint8(4); osrTemp <= 32; osrTemp++ {
		// sbr_calc = ((srcClockHz * 2) / (target * osrTemp)).div_ceil(2)
		raw := (srcClockHz * 2) / (target * uint32(osrTemp))
		sbrCalc := (raw + 1) / 2

		var sbrTemp uint16
		switch {
		case sbrCalc == 0:
			sbrTemp = 1
		case sbrCalc > 0x1fff:
			sbrTemp = 0x1fff
		default:
			sbrTemp = uint16(sbrCalc)
		}

		calculated := srcClockHz / (uint32(osrTemp) * uint32(sbrTemp))
		diff := absDiff(calculated, target)

		if diff <= bestDiff {
			bestDiff = diff
			bestOsr = osrTemp
			bestSbr = sbrTemp
		}
	}

	if bestDiff > (target/100)*3 {
		return 0, 0, errs.New("uart.baud", "lpuart", errs.BadConfig)
	}

	return bestOsr, bestSbr, nil
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// core holds the bring-up state and register helpers shared by every
// LPUART mode. Its method set never touches a ring, a wait.Cell or a DMA
// channel, so none of those mode-specific resources can be driven through
// the wrong handle.
type core struct {
	base    uint32
	guard   *wakeguard.Guard
	hasFIFO bool
}

// newCore runs the clock-gate/reset/baud/frame-format sequence shared by
// every constructor. The caller is responsible for muxing the TX/RX/RTS/CTS
// pins via soc/mcxa/pins before or after construction, the same division
// of responsibility the i2c and i3c packages use.
func newCore(base uint32, g gate.PCCGate, cfg Config) (*core, error) {
	parts, err := gate.EnableAndReset(g, gate.UartHook(g, cfg.Clock.Source, cfg.Clock.Div))
	if err != nil {
		return nil, err
	}

	c := &core{base: base, guard: parts.Guard}

	// software reset
	reg.Set(c.base+regGLOBAL, bitRST)
	reg.Clear(c.base+regGLOBAL, bitRST)

	reg.Clear(c.base+regCTRL, bitTE)
	reg.Clear(c.base+regCTRL, bitRE)

	osr, sbr, err := CalculateBaudrate(cfg.BaudRate, parts.FreqHz)
	if err != nil {
		wakeguard.Release(c.guard)
		return nil, err
	}
	reg.SetN(c.base+regBAUD, 24, 0x1f, uint32(osr-1))
	reg.SetN(c.base+regBAUD, 0, 0x1fff, uint32(sbr))
	reg.SetTo(c.base+regBAUD, 17 /* BOTHEDGE */, osr > 3 && osr < 8)
	reg.SetTo(c.base+regBAUD, bitSBNS, cfg.StopBits == TwoStopBits)
	reg.Clear(c.base+regBAUD, bitM10)

	switch cfg.Parity {
	case ParityNone:
		reg.Clear(c.base+regCTRL, bitPE)
	default:
		reg.Set(c.base+regCTRL, bitPE)
		reg.SetTo(c.base+regCTRL, bitPT, cfg.Parity == ParityOdd)
	}
	reg.Set(c.base+regCTRL, bitDOZEN)

	nineBit := cfg.DataBits == Data9 || cfg.Parity != ParityNone
	reg.SetTo(c.base+regCTRL, bitM, nineBit)
	reg.SetTo(c.base+regSTAT, bitMSBF, cfg.MSBFirst)

	reg.SetN(c.base+regWATER, 16, 0xff, uint32(cfg.RxFIFOWatermark))
	reg.SetN(c.base+regWATER, 0, 0xff, uint32(cfg.TxFIFOWatermark))
	reg.Set(c.base+regFIFO, bitTXFE)
	reg.Set(c.base+regFIFO, bitRXFE)
	reg.Set(c.base+regFIFO, bitTXFLUSH)
	reg.Set(c.base+regFIFO, bitRXFLUSH)

	c.hasFIFO = reg.Get(c.base+regPARAM, 0, 0xff) > 0

	c.clearStatus()

	if cfg.EnableRTS || cfg.EnableCTS {
		reg.SetTo(c.base+regMODIR, bitRTSE, cfg.EnableRTS)
		reg.SetTo(c.base+regMODIR, bitCTSE, cfg.EnableCTS)
	}

	return c, nil
}

func (c *core) clearStatus() {
	// STAT's error/idle flags are write-1-to-clear; writing the register
	// back with every flag bit already set (read-modify-write with no
	// other field touched) is the source driver's "write back all values"
	// idiom for clearing them in one access.
	reg.AckFlag(c.base+regSTAT, bitOR)
	reg.AckFlag(c.base+regSTAT, bitNF)
	reg.AckFlag(c.base+regSTAT, bitFE)
	reg.AckFlag(c.base+regSTAT, bitPF)
	reg.AckFlag(c.base+regSTAT, bitIDLE)
}

// close disables the transceiver and releases the wake-guard.
func (c *core) close() {
	reg.Clear(c.base+regCTRL, bitTE)
	reg.Clear(c.base+regCTRL, bitRE)
	wakeguard.Release(c.guard)
}

func (c *core) hasData() bool {
	if c.hasFIFO {
		return reg.Get(c.base+regWATER, 16, 0xff) > 0
	}
	return reg.Get(c.base+regSTAT, bitRDRF, 1) == 1
}

func (c *core) checkAndClearRxErrors() error {
	or := reg.Get(c.base+regSTAT, bitOR, 1) == 1
	pf := reg.Get(c.base+regSTAT, bitPF, 1) == 1
	fe := reg.Get(c.base+regSTAT, bitFE, 1) == 1
	nf := reg.Get(c.base+regSTAT, bitNF, 1) == 1

	if or {
		reg.AckFlag(c.base+regSTAT, bitOR)
	}
	if pf {
		reg.AckFlag(c.base+regSTAT, bitPF)
	}
	if fe {
		reg.AckFlag(c.base+regSTAT, bitFE)
	}
	if nf {
		reg.AckFlag(c.base+regSTAT, bitNF)
	}

	switch {
	case or:
		return errs.New("uart.read", "lpuart", errs.Overrun)
	case pf, fe, nf:
		return errs.New("uart.read", "lpuart", errs.Error)
	default:
		return nil
	}
}

func (c *core) waitForTxComplete() error {
	for reg.Get(c.base+regWATER, 0, 0xff) != 0 {
	}
	for reg.Get(c.base+regSTAT, bitTC, 1) == 0 {
	}
	return nil
}

// UART is a blocking-mode LPUART controller instance: Write and Read
// busy-wait on STAT/WATER directly. It exposes no async, buffered or DMA
// method, so a blocking handle can never be driven by HandleInterrupt or
// a dma.Channel by mistake.
type UART struct {
	core
}

// NewBlocking runs gate.EnableAndReset for cfg.Clock, derives (OSR, SBR)
// from the resulting fclk and enables both the transmitter and receiver
// for polled Read/Write use.
func NewBlocking(base uint32, g gate.PCCGate, cfg Config) (*UART, error) {
	c, err := newCore(base, g, cfg)
	if err != nil {
		return nil, err
	}
	reg.Set(c.base+regCTRL, bitTE)
	reg.Set(c.base+regCTRL, bitRE)
	return &UART{core: *c}, nil
}

// Close disables the transceiver and releases the wake-guard.
func (u *UART) Close() { u.core.close() }

// Write blocks until every byte in data has been queued for
// transmission, then waits for the FIFO and shift register to drain.
func (u *UART) Write(data []byte) error {
	for _, b := range data {
		for reg.Get(u.base+regSTAT, bitTDRE, 1) == 0 {
		}
		reg.Write(u.base+regDATA, uint32(b))
	}
	return u.waitForTxComplete()
}

// Read blocks until len(buf) bytes have been received, returning the
// first receive error (overrun/parity/framing/noise) it observes.
func (u *UART) Read(buf []byte) error {
	for i := range buf {
		for !u.hasData() {
		}
		if err := u.checkAndClearRxErrors(); err != nil {
			return err
		}
		buf[i] = uint8(reg.Read(u.base + regDATA))
	}
	return nil
}

// AsyncUART is an interrupt-driven LPUART controller instance: AsyncWrite
// and AsyncRead suspend one byte at a time on a wait.Cell woken by
// HandleInterrupt instead of busy-waiting or ring-buffering. It exposes no
// blocking, buffered or DMA method, so an async handle can never be
// driven by a ring helper or a dma.Channel by mistake.
type AsyncUART struct {
	core
	waitCell wait.Cell
}

// NewAsync runs the same bring-up as NewBlocking and arms RX/error
// interrupts. TIE is not armed here; AsyncWrite sets it when it waits for
// TDRE, and nothing in this handle clears it again.
func NewAsync(base uint32, g gate.PCCGate, cfg Config) (*AsyncUART, error) {
	c, err := newCore(base, g, cfg)
	if err != nil {
		return nil, err
	}

	reg.Set(c.base+regCTRL, bitTE)
	reg.Set(c.base+regCTRL, bitRE)
	reg.Set(c.base+regCTRL, bitRIE)
	reg.Set(c.base+regCTRL, bitORIE)
	reg.Set(c.base+regCTRL, bitPEIE)
	reg.Set(c.base+regCTRL, bitFEIE)
	reg.Set(c.base+regCTRL, bitNEIE)

	return &AsyncUART{core: *c}, nil
}

// Close disables the transceiver and releases the wake-guard.
func (u *AsyncUART) Close() { u.core.close() }

// HandleInterrupt wakes any goroutine blocked in AsyncWrite/AsyncRead; the
// predicate each waiter polls re-reads STAT directly rather than this
// handler interpreting the cause.
func (u *AsyncUART) HandleInterrupt() {
	u.waitCell.Wake()
}

// AsyncWrite suspends on the wait cell between bytes instead of
// busy-polling TDRE, then waits the same way for the shift register to
// finish draining.
func (u *AsyncUART) AsyncWrite(ctx context.Context, data []byte) error {
	for _, b := range data {
		err := u.waitCell.WaitFor(ctx, func() bool {
			reg.Set(u.base+regCTRL, bitTIE)
			return reg.Get(u.base+regSTAT, bitTDRE, 1) == 1
		})
		if err != nil {
			return errs.Wrap("uart.write", "lpuart", errs.Canceled, err)
		}
		reg.Write(u.base+regDATA, uint32(b))
	}

	return u.waitCell.WaitFor(ctx, func() bool {
		return reg.Get(u.base+regWATER, 0, 0xff) == 0 && reg.Get(u.base+regSTAT, bitTC, 1) == 1
	})
}

// AsyncRead is the interrupt-driven equivalent of Read: it suspends on the
// wait cell between bytes instead of busy-polling RDRF.
func (u *AsyncUART) AsyncRead(ctx context.Context, buf []byte) error {
	for i := range buf {
		err := u.waitCell.WaitFor(ctx, func() bool {
			return u.hasData()
		})
		if err != nil {
			return errs.Wrap("uart.read", "lpuart", errs.Canceled, err)
		}
		if err := u.checkAndClearRxErrors(); err != nil {
			return err
		}
		buf[i] = uint8(reg.Read(u.base + regDATA))
	}
	return nil
}

// BufferedUART is a ring-buffered LPUART controller instance:
// HandleInterrupt pumps bytes between the peripheral FIFO and a pair of
// ring.Ring queues, and Write/Read move bytes in and out of those rings
// rather than waiting on the peripheral directly. It exposes no blocking
// or async method, so a buffered handle can never bypass the rings.
type BufferedUART struct {
	core
	txRing *ring.Ring
	rxRing *ring.Ring
}

// NewBuffered runs gate.EnableAndReset, enables both the transmitter and
// receiver, and arms RX/error interrupts for HandleInterrupt to pump
// bytes through a pair of ring.Ring queues sized txCap/rxCap.
func NewBuffered(base uint32, g gate.PCCGate, cfg Config, txCap, rxCap int) (*BufferedUART, error) {
	c, err := newCore(base, g, cfg)
	if err != nil {
		return nil, err
	}

	u := &BufferedUART{core: *c, txRing: ring.New(txCap), rxRing: ring.New(rxCap)}

	reg.Set(u.base+regCTRL, bitTE)
	reg.Set(u.base+regCTRL, bitRE)

	reg.Set(u.base+regCTRL, bitRIE)
	reg.Set(u.base+regCTRL, bitORIE)
	reg.Set(u.base+regCTRL, bitPEIE)
	reg.Set(u.base+regCTRL, bitFEIE)
	reg.Set(u.base+regCTRL, bitNEIE)

	return u, nil
}

// Close disables the transceiver and releases the wake-guard.
func (u *BufferedUART) Close() { u.core.close() }

// HandleInterrupt pumps received bytes into the RX ring and queued bytes
// out of the TX ring, exactly mirroring the source driver's ISR: an
// overrun aborts the RX pump entirely (other RX error flags are only
// meaningful when OR is clear), and the TX side switches from
// FIFO-empty (TIE) to transmission-complete (TCIE) interrupts once the
// ring itself runs dry so the caller's Flush can observe true drain.
func (u *BufferedUART) HandleInterrupt() {
	if reg.Get(u.base+regSTAT, bitOR, 1) == 1 {
		reg.AckFlag(u.base+regSTAT, bitOR)
		return
	}

	for _, bit := range []int{bitPF, bitFE, bitNF} {
		if reg.Get(u.base+regSTAT, bit, 1) == 1 {
			reg.AckFlag(u.base+regSTAT, bit)
		}
	}

	if reg.Get(u.base+regCTRL, bitRIE, 1) == 1 && (u.hasData() || reg.Get(u.base+regSTAT, bitIDLE, 1) == 1) {
		if u.hasFIFO {
			for reg.Get(u.base+regWATER, 16, 0xff) > 0 {
				b := uint8(reg.Read(u.base + regDATA))
				if !u.rxRing.PushByte(b) {
					break
				}
			}
		} else if reg.Get(u.base+regSTAT, bitRDRF, 1) == 1 {
			b := uint8(reg.Read(u.base + regDATA))
			u.rxRing.PushByte(b)
		}

		if reg.Get(u.base+regSTAT, bitIDLE, 1) == 1 {
			reg.AckFlag(u.base+regSTAT, bitIDLE)
		}
	}

	if reg.Get(u.base+regCTRL, bitTIE, 1) == 1 {
		for reg.Get(u.base+regSTAT, bitTDRE, 1) == 1 {
			b, ok := u.txRing.PopByte()
			if !ok {
				break
			}
			reg.Write(u.base+regDATA, uint32(b))
		}

		if u.txRing.Available() == 0 {
			reg.Clear(u.base+regCTRL, bitTIE)
			reg.Set(u.base+regCTRL, bitTCIE)
		}
	}

	if reg.Get(u.base+regCTRL, bitTCIE, 1) == 1 && reg.Get(u.base+regSTAT, bitTC, 1) == 1 {
		reg.Clear(u.base+regCTRL, bitTCIE)
	}
}

// Write copies as much of data as fits into the TX ring, blocking only if
// the ring starts full, and arms the TX-empty interrupt so
// HandleInterrupt drains it. It returns the count written, which may be
// short if the ring fills before all of data is copied.
func (u *BufferedUART) Write(ctx context.Context, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	for {
		n := u.txRing.Write(data)
		if n > 0 {
			reg.Set(u.base+regCTRL, bitTIE)
			return n, nil
		}

		select {
		case <-u.txRing.Writable():
		case <-ctx.Done():
			return 0, errs.Wrap("uart.write", "lpuart", errs.Canceled, ctx.Err())
		}
	}
}

// Flush blocks until every byte handed to Write has left the shift
// register, i.e. the ring is empty, the FIFO is empty and TC is set.
func (u *BufferedUART) Flush(ctx context.Context) error {
	for {
		ringEmpty := u.txRing.Available() == 0
		fifoEmpty := reg.Get(u.base+regWATER, 0, 0xff) == 0
		complete := reg.Get(u.base+regSTAT, bitTC, 1) == 1

		if ringEmpty && fifoEmpty && complete {
			return nil
		}

		select {
		case <-u.txRing.Writable():
		case <-ctx.Done():
			return errs.Wrap("uart.flush", "lpuart", errs.Canceled, ctx.Err())
		}
	}
}

// Read blocks until at least one byte is available in the RX ring, then
// copies as many bytes as fit into buf.
func (u *BufferedUART) Read(ctx context.Context, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	for {
		p1, p2 := u.rxRing.ReadAcquire()
		if len(p1) > 0 {
			n := copy(buf, p1)
			if n < len(buf) && len(p2) > 0 {
				n += copy(buf[n:], p2)
			}
			u.rxRing.ReadRelease(n)
			return n, nil
		}

		select {
		case <-u.rxRing.Readable():
		case <-ctx.Done():
			return 0, errs.Wrap("uart.read", "lpuart", errs.Canceled, ctx.Err())
		}
	}
}

// TryWrite is the non-blocking equivalent of Write.
func (u *BufferedUART) TryWrite(data []byte) int {
	n := u.txRing.Write(data)
	if n > 0 {
		reg.Set(u.base+regCTRL, bitTIE)
	}
	return n
}

// TryRead is the non-blocking equivalent of Read.
func (u *BufferedUART) TryRead(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}
	p1, p2 := u.rxRing.ReadAcquire()
	n := copy(buf, p1)
	if n < len(buf) && len(p2) > 0 {
		n += copy(buf[n:], p2)
	}
	u.rxRing.ReadRelease(n)
	return n
}

// DMAUART is an LPUART controller instance whose byte transfers are
// driven by a DMA channel scatter transfer against DATA rather than a CPU
// busy-wait, an interrupt-driven byte loop or a ring. It exposes no
// blocking, async or buffered method, so a DMA handle can never be driven
// any other way.
type DMAUART struct {
	core
	ch   *dma.Channel
	pool *dma.Pool
}

// NewDMA runs the same bring-up as NewBlocking and binds ch and pool for
// DMA-mode transfers: Write stages data through the bound Pool and
// scatters it out to DATA; Read scatters DATA into the pool and copies
// the result out.
func NewDMA(base uint32, g gate.PCCGate, cfg Config, ch *dma.Channel, pool *dma.Pool) (*DMAUART, error) {
	c, err := newCore(base, g, cfg)
	if err != nil {
		return nil, err
	}

	reg.Set(c.base+regCTRL, bitTE)
	reg.Set(c.base+regCTRL, bitRE)

	return &DMAUART{core: *c, ch: ch, pool: pool}, nil
}

// Close disables the transceiver and releases the wake-guard.
func (u *DMAUART) Close() { u.core.close() }

// Write scatters data out to DATA one DMA transfer at a time, then waits
// for the shift register to drain the same way the blocking writer does.
func (u *DMAUART) Write(ctx context.Context, data []byte) error {
	if err := u.ch.ScatterWrite(ctx, u.pool, u.base+regDATA, data, dma.Width8); err != nil {
		return errs.Wrap("uart.write", "lpuart", errs.Canceled, err)
	}
	return u.waitForTxComplete()
}

// Read scatters buf's worth of bytes in from DATA, checking for a receive
// error once the transfer completes.
func (u *DMAUART) Read(ctx context.Context, buf []byte) error {
	if err := u.ch.ScatterRead(ctx, u.pool, u.base+regDATA, buf, dma.Width8); err != nil {
		return errs.Wrap("uart.read", "lpuart", errs.Canceled, err)
	}
	return u.checkAndClearRxErrors()
}
