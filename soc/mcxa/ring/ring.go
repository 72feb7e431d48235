// MCX-A ring-buffered byte queue
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ring implements the single-producer/single-consumer byte queue
// backing a buffered LPUART instance: the foreground goroutine is the
// producer for TX and the consumer for RX, the ISR goroutine is the
// consumer for TX and the producer for RX. Readiness is surfaced through
// edge-coalesced channels rather than a condition variable, grounded on
// the same SPSC ring pattern used for shared-memory byte transport
// elsewhere in the example pack.
package ring

import (
	"sync/atomic"
)

// Ring is a fixed-capacity SPSC byte queue with atomic head/tail indices.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32
	wr   atomic.Uint32

	readable chan struct{}
	writable chan struct{}
}

// New returns a Ring with the given power-of-two capacity (>= 2). LPUART
// TX/RX ring sizes are fixed at construction time per instance.
func New(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("ring: size must be a power of two >= 2")
	}
	return &Ring{
		buf:      make([]byte, size),
		mask:     uint32(size - 1),
		readable: make(chan struct{}, 1),
		writable: make(chan struct{}, 1),
	}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// Cap returns the capacity in bytes.
func (r *Ring) Cap() int { return len(r.buf) }

// Available returns bytes available to the consumer.
func (r *Ring) Available() int {
	rd := r.rd.Load()
	wr := r.wr.Load()
	return int(wr - rd)
}

// Space returns bytes free for the producer.
func (r *Ring) Space() int {
	rd := r.rd.Load()
	wr := r.wr.Load()
	return int(r.size() - (wr - rd))
}

// Readable signals an empty-to-non-empty transition. The RX foreground
// reader (or the TX-complete flush waiter) always re-checks Available
// after waking, since the signal is coalesced and may be stale by the
// time it is observed.
func (r *Ring) Readable() <-chan struct{} { return r.readable }

// Writable signals a full-to-non-full transition.
func (r *Ring) Writable() <-chan struct{} { return r.writable }

// WriteAcquire returns up to two contiguous writable spans. The producer
// must call WriteCommit(n) to publish the bytes it wrote.
func (r *Ring) WriteAcquire() (p1, p2 []byte) {
	rd := r.rd.Load()
	wr := r.wr.Load()
	size := r.size()

	space := size - (wr - rd)
	if space == 0 {
		return nil, nil
	}
	wrIdx := wr & r.mask
	first := int(size - wrIdx)
	if uint32(first) > space {
		first = int(space)
	}
	p1 = r.buf[wrIdx : wrIdx+uint32(first)]
	if rem := int(space) - first; rem > 0 {
		p2 = r.buf[:rem]
	}
	return p1, p2
}

// WriteCommit publishes n bytes previously reserved by WriteAcquire.
func (r *Ring) WriteCommit(n int) {
	if n <= 0 {
		return
	}
	rd := r.rd.Load()
	wr := r.wr.Load()
	beforeAvail := wr - rd

	r.wr.Store(wr + uint32(n))

	if beforeAvail == 0 {
		select {
		case r.readable <- struct{}{}:
		default:
		}
	}
}

// ReadAcquire returns up to two contiguous readable spans. The consumer
// must call ReadRelease(n) to advance past the bytes it consumed.
func (r *Ring) ReadAcquire() (p1, p2 []byte) {
	rd := r.rd.Load()
	wr := r.wr.Load()
	size := r.size()

	avail := wr - rd
	if avail == 0 {
		return nil, nil
	}
	rdIdx := rd & r.mask
	first := int(size - rdIdx)
	if uint32(first) > avail {
		first = int(avail)
	}
	p1 = r.buf[rdIdx : rdIdx+uint32(first)]
	if rem := int(avail) - first; rem > 0 {
		p2 = r.buf[:rem]
	}
	return p1, p2
}

// ReadRelease consumes n bytes previously obtained by ReadAcquire.
func (r *Ring) ReadRelease(n int) {
	if n <= 0 {
		return
	}
	rd := r.rd.Load()
	wr := r.wr.Load()
	size := r.size()
	beforeSpace := size - (wr - rd)

	r.rd.Store(rd + uint32(n))

	if beforeSpace == 0 {
		select {
		case r.writable <- struct{}{}:
		default:
		}
	}
}

// PushByte pushes a single byte, as the RX ISR does per received byte on
// a FIFO-less LPUART instance. Returns false if the ring is full, in
// which case the byte is dropped (overrun at the ring level; the caller
// is expected to count this as a driver-level Overrun).
func (r *Ring) PushByte(b byte) bool {
	p1, _ := r.WriteAcquire()
	if len(p1) == 0 {
		return false
	}
	p1[0] = b
	r.WriteCommit(1)
	return true
}

// PopByte pops a single byte, as the TX ISR does per free FIFO slot.
func (r *Ring) PopByte() (byte, bool) {
	p1, _ := r.ReadAcquire()
	if len(p1) == 0 {
		return 0, false
	}
	b := p1[0]
	r.ReadRelease(1)
	return b, true
}

// Write copies as much of src into the ring as fits, returning the count
// actually written; a short write is not an error at this layer.
func (r *Ring) Write(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	p1, p2 := r.WriteAcquire()
	if len(p1) == 0 {
		return 0
	}
	n := copy(p1, src)
	if n < len(src) && len(p2) > 0 {
		n += copy(p2, src[n:])
	}
	r.WriteCommit(n)
	return n
}

// Read copies as much as available into dst, returning the count
// actually read.
func (r *Ring) Read(dst []byte) int {
	if len(dst) == 0 {
		return 0
	}
	p1, p2 := r.ReadAcquire()
	if len(p1) == 0 {
		return 0
	}
	n := copy(dst, p1)
	if n < len(dst) && len(p2) > 0 {
		n += copy(dst[n:], p2)
	}
	r.ReadRelease(n)
	return n
}
