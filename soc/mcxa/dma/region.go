// MCX-A DMA bounce-buffer pool
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// First-fit allocator over a fixed address span, used to stage a Go slice
// into DMA-addressable memory before a Channel transfer and copy the
// result back out afterward. A scatter transfer programmed directly
// against a Go-managed slice's address is unsafe: the garbage collector
// may move or reclaim the backing array while the transfer is still in
// flight. Every scatter-mode call site in this module routes through a
// Pool instead of handing a slice's address straight to a Channel.
package dma

import (
	"container/list"
	"errors"
	"sync"
)

// ErrPoolExhausted is returned by Alloc/Reserve when no free block large
// enough for the request remains.
var ErrPoolExhausted = errors.New("dma: pool exhausted")

type block struct {
	addr uint32
	size uint32
	res  bool
}

// Pool is a fixed address range carved into first-fit blocks. The address
// space it describes need not be backed by Go-addressable memory on the
// target (it names a region the SoC's bus fabric can reach); Alloc/Read
// are the only operations that touch the underlying bytes, and do so
// through a build-tag-selected backend exactly as internal/reg splits
// real MMIO from a host-testable fake.
type Pool struct {
	mu sync.Mutex

	start uint32
	size  uint32

	free *list.List
	used map[uint32]*block
}

// NewPool carves out [start, start+size) as a fresh first-fit pool.
func NewPool(start uint32, size uint32) *Pool {
	p := &Pool{start: start, size: size}
	p.free = list.New()
	p.free.PushFront(&block{addr: start, size: size})
	p.used = map[uint32]*block{}
	return p
}

// Start returns the pool's base address.
func (p *Pool) Start() uint32 { return p.start }

// End returns the address one past the pool's last byte.
func (p *Pool) End() uint32 { return p.start + p.size }

// alloc finds and claims the first free block of at least size bytes,
// honoring the optional power-of-two alignment (0 applies no alignment
// beyond the free block's own address).
// Must be called with p.mu held.
func (p *Pool) alloc(size uint32, align uint32) (*block, error) {
	// worst-case room an alignment shift could cost, 0 when the caller
	// did not request alignment beyond whatever the block already has
	need := size
	if align > 0 {
		need += align
	}

	var e *list.Element
	var found *block

	for e = p.free.Front(); e != nil; e = e.Next() {
		b := e.Value.(*block)
		if b.size >= need {
			found = b
			break
		}
	}
	if found == nil {
		return nil, ErrPoolExhausted
	}

	defer p.free.Remove(e)

	addr := found.addr
	if align > 0 {
		if r := addr % align; r != 0 {
			shift := align - r
			before := &block{addr: addr, size: shift}
			p.free.InsertBefore(before, e)
			addr += shift
		}
	}

	claimed := &block{addr: addr, size: size}

	remaining := (found.addr + found.size) - (addr + size)
	if remaining > 0 {
		after := &block{addr: addr + size, size: remaining}
		p.free.InsertAfter(after, e)
	}

	return claimed, nil
}

// release returns a claimed block to the free list, merging with its
// neighbors when they are address-contiguous. Must be called with p.mu
// held.
func (p *Pool) release(b *block) {
	for e := p.free.Front(); e != nil; e = e.Next() {
		f := e.Value.(*block)
		if f.addr > b.addr {
			p.free.InsertBefore(b, e)
			p.defrag()
			return
		}
	}
	p.free.PushBack(b)
	p.defrag()
}

func (p *Pool) defrag() {
	var prev *block
	for e := p.free.Front(); e != nil; e = e.Next() {
		b := e.Value.(*block)
		if prev != nil && prev.addr+prev.size == b.addr {
			prev.size += b.size
			defer p.free.Remove(e)
			continue
		}
		prev = b
	}
}

// Reserve claims size bytes aligned to align (0 == no extra alignment) and
// returns its address. The caller releases it with Free.
func (p *Pool) Reserve(size int, align int) (addr uint32, err error) {
	if size <= 0 {
		return 0, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	b, err := p.alloc(uint32(size), uint32(align))
	if err != nil {
		return 0, err
	}
	b.res = true
	p.used[b.addr] = b
	return b.addr, nil
}

// Alloc reserves len(buf) bytes and copies buf into them, returning the
// allocation's address for programming a Channel transfer.
func (p *Pool) Alloc(buf []byte, align int) (addr uint32, err error) {
	if len(buf) == 0 {
		return 0, nil
	}

	addr, err = p.Reserve(len(buf), align)
	if err != nil {
		return 0, err
	}
	writeBackend(addr, buf)
	return addr, nil
}

// Read copies len(buf) bytes starting at addr into buf.
func (p *Pool) Read(addr uint32, buf []byte) {
	readBackend(addr, buf)
}

// Free releases the size-byte allocation at addr back to the pool.
func (p *Pool) Free(addr uint32, size int) {
	if size <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.used[addr]
	if !ok {
		return
	}
	delete(p.used, addr)
	p.release(b)
}
