package ctimer

import (
	"context"
	"testing"
	"time"

	"github.com/nxp-mcxa/mcxa-hal/internal/reg"
)

func TestCaptureReturnsLatchedValue(t *testing.T) {
	reg.Reset()
	c := NewCaptureChannel(0x4002_0000, 0, Rising)

	done := make(chan uint32, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		v, _, err := c.Capture(ctx)
		if err != nil {
			t.Errorf("Capture() = %v", err)
		}
		done <- v
	}()

	reg.Write(c.ccrAddr(), 12345)
	reg.Set(c.ctrlAddr(), bitCapEvent)
	c.HandleInterrupt()

	if got := <-done; got != 12345 {
		t.Fatalf("Capture() value = %d, want 12345", got)
	}
}

func TestCaptureReportsOverCapture(t *testing.T) {
	reg.Reset()
	c := NewCaptureChannel(0x4002_1000, 1, Both)

	reg.Write(c.ccrAddr(), 1)
	reg.Set(c.ctrlAddr(), bitCapEvent)
	reg.Set(c.ctrlAddr(), bitCapOverCapture)
	c.HandleInterrupt()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, over, err := c.Capture(ctx)
	if err != nil {
		t.Fatalf("Capture() = %v", err)
	}
	if !over {
		t.Fatalf("Capture() overCapture = false, want true")
	}
}
