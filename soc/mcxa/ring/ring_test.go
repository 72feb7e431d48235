package ring

import "testing"

func TestWriteReadRoundTrip(t *testing.T) {
	r := New(8)

	n := r.Write([]byte("hello"))
	if n != 5 {
		t.Fatalf("Write() = %d, want 5", n)
	}
	if got := r.Available(); got != 5 {
		t.Fatalf("Available() = %d, want 5", got)
	}

	dst := make([]byte, 5)
	n = r.Read(dst)
	if n != 5 || string(dst) != "hello" {
		t.Fatalf("Read() = %q, want %q", dst[:n], "hello")
	}
	if r.Available() != 0 {
		t.Fatalf("Available() after drain = %d, want 0", r.Available())
	}
}

func TestWriteWrapsAroundBuffer(t *testing.T) {
	r := New(4)

	r.Write([]byte{1, 2, 3})
	buf := make([]byte, 2)
	r.Read(buf)

	n := r.Write([]byte{4, 5, 6})
	if n != 3 {
		t.Fatalf("Write() across wrap = %d, want 3", n)
	}

	dst := make([]byte, 4)
	got := r.Read(dst)
	want := []byte{3, 4, 5, 6}
	if got != 4 {
		t.Fatalf("Read() = %d, want 4", got)
	}
	for i, b := range want {
		if dst[i] != b {
			t.Fatalf("byte %d = %d, want %d", i, dst[i], b)
		}
	}
}

func TestFullRingShortWrite(t *testing.T) {
	r := New(2)

	n := r.Write([]byte{1, 2, 3})
	if n != 2 {
		t.Fatalf("Write() into full ring = %d, want short write of 2", n)
	}
	if r.Space() != 0 {
		t.Fatalf("Space() = %d, want 0", r.Space())
	}
}

func TestPushPopByte(t *testing.T) {
	r := New(2)

	if !r.PushByte('a') {
		t.Fatalf("PushByte() failed on empty ring")
	}
	if !r.PushByte('b') {
		t.Fatalf("PushByte() failed on half-full ring")
	}
	if r.PushByte('c') {
		t.Fatalf("PushByte() succeeded on full ring")
	}

	b, ok := r.PopByte()
	if !ok || b != 'a' {
		t.Fatalf("PopByte() = %v, %v, want 'a', true", b, ok)
	}
}

func TestReadableWritableSignals(t *testing.T) {
	r := New(4)

	select {
	case <-r.Readable():
		t.Fatalf("Readable fired before any write")
	default:
	}

	r.Write([]byte{1})

	select {
	case <-r.Readable():
	default:
		t.Fatalf("Readable did not fire on empty->non-empty transition")
	}

	r.Write([]byte{2, 3, 4})

	select {
	case <-r.Writable():
		t.Fatalf("Writable fired before ring reached full")
	default:
	}

	dst := make([]byte, 4)
	r.Read(dst)

	select {
	case <-r.Writable():
	default:
		t.Fatalf("Writable did not fire on full->non-full transition")
	}
}

func TestNewPanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("New(3) did not panic")
		}
	}()
	New(3)
}
