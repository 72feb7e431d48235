package reg

import "testing"

func TestSetNClearN(t *testing.T) {
	Reset()

	const addr = 0x4000_0000

	SetN(addr, 4, 0b111, 0b101)

	if got := Get(addr, 4, 0b111); got != 0b101 {
		t.Fatalf("Get() = %#x, want %#x", got, 0b101)
	}

	Set(addr, 0)
	if Get(addr, 0, 1) != 1 {
		t.Fatalf("Set() did not set bit 0")
	}

	Clear(addr, 0)
	if Get(addr, 0, 1) != 0 {
		t.Fatalf("Clear() did not clear bit 0")
	}

	ClearN(addr, 4, 0b111)
	if Get(addr, 4, 0b111) != 0 {
		t.Fatalf("ClearN() did not clear field")
	}
}

func TestWaitFor(t *testing.T) {
	Reset()

	const addr = 0x4000_0010

	Seed(addr, 0)

	if WaitFor(0, addr, 0, 1, 1) {
		t.Fatalf("WaitFor() with zero timeout unexpectedly succeeded")
	}

	Set(addr, 0)

	if !WaitFor(0, addr, 0, 1, 1) {
		t.Fatalf("WaitFor() failed once condition was already true")
	}
}

func Test16BitField(t *testing.T) {
	Reset()

	const addr = 0x4000_0020

	Write16(addr, 0x1234)

	if got := Read16(addr); got != 0x1234 {
		t.Fatalf("Read16() = %#x, want %#x", got, 0x1234)
	}

	SetN16(addr, 0, 0xff, 0xAB)

	if got := Get16(addr, 0, 0xff); got != 0xAB {
		t.Fatalf("Get16() = %#x, want %#x", got, 0xAB)
	}
}
