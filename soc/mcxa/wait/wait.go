// MCX-A async wait primitive
// https://github.com/nxp-mcxa/mcxa-hal
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package wait implements the single-slot wait cell that every async
// peripheral operation uses to bridge a hardware interrupt flag to a
// suspended goroutine. It plays the role the source specification gives to
// a Future/Waker pair; Go's cooperative scheduler (present even under
// GOOS=tamago) makes a goroutine blocked on a channel receive the natural
// stand-in, so Cell is built on a buffered-1 "wake" channel rather than a
// hand-rolled poll/park state machine — the same edge-coalesced channel
// idiom the ring buffer's readable/writable signals use.
package wait

import (
	"context"
	"errors"
)

// ErrClosed is returned by Wait when the cell is closed while a waiter is
// suspended. It maps to the "other" error kind at the driver layer.
var ErrClosed = errors.New("wait: cell closed")

// Cell is a single-waiter wake primitive. The zero value is ready to use.
// A Cell must not be waited on by more than one goroutine concurrently;
// doing so is a caller error per the source specification ("undefined").
type Cell struct {
	wake   chan struct{}
	closed chan struct{}
}

func (c *Cell) init() {
	if c.wake == nil {
		c.wake = make(chan struct{}, 1)
	}
	if c.closed == nil {
		c.closed = make(chan struct{})
	}
}

// Wake transitions the cell to a fired state and, if a waiter is
// registered, schedules it to re-check its predicate. Wake is safe to call
// from an interrupt handler goroutine; it never blocks. Calling Wake with
// no waiter registered is not lost: the buffered-1 channel holds the
// signal until the next Wait call consumes it, so a flag that fires
// between register-and-recheck is never missed.
func (c *Cell) Wake() {
	c.init()
	select {
	case c.wake <- struct{}{}:
	default:
		// already has a pending wake queued; coalesce
	}
}

// Close permanently closes the cell. Any goroutine currently blocked in
// Wait returns ErrClosed; subsequent Wait calls return ErrClosed
// immediately. Used on driver teardown so an in-flight cancellation does
// not leave a goroutine parked forever.
func (c *Cell) Close() {
	c.init()
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
}

// WaitFor registers interest, then evaluates predicate once immediately —
// mandatory "register-then-recheck" ordering, since a hardware flag can
// already be satisfied by the time the caller starts waiting and a naive
// wait-then-check would otherwise lose that edge. If predicate is already
// true, WaitFor returns immediately without consuming a pending Wake. If
// predicate is false, WaitFor blocks until the next Wake (or ctx
// cancellation, or Close) and re-evaluates predicate; it loops until the
// predicate is satisfied, a spurious Wake coalesced from an unrelated
// event must not be treated as success.
func (c *Cell) WaitFor(ctx context.Context, predicate func() bool) error {
	c.init()

	if predicate() {
		return nil
	}

	for {
		select {
		case <-c.wake:
			if predicate() {
				return nil
			}
		case <-c.closed:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Cancel is called by a caller abandoning an in-flight WaitFor (for
// example via ctx cancellation) to drain any pending wake so a later,
// unrelated WaitFor on the same cell does not observe a stale signal.
// Dropping the future in the source specification clears the waker slot;
// here that is draining the buffered wake.
func (c *Cell) Cancel() {
	c.init()
	select {
	case <-c.wake:
	default:
	}
}
