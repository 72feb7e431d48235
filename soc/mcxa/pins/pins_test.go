package pins

import "testing"

func TestCheckCapableAcceptsRegisteredPin(t *testing.T) {
	sel, err := CheckCapable(Pin{0, 0}, FuncUartTX)
	if err != nil {
		t.Fatalf("CheckCapable() = %v", err)
	}
	if sel != 2 {
		t.Fatalf("mux select = %d, want 2", sel)
	}
}

func TestCheckCapableRejectsWrongFunction(t *testing.T) {
	if _, err := CheckCapable(Pin{0, 0}, FuncI2cSDA); err == nil {
		t.Fatalf("CheckCapable() accepted an incapable pin/function pair")
	}
}

func TestNewUartTXPinRejectsIncapablePin(t *testing.T) {
	if _, err := NewUartTXPin(Pin{9, 9}); err == nil {
		t.Fatalf("NewUartTXPin() accepted an unregistered pin")
	}
}

func TestNewUartTXPinAcceptsCapablePin(t *testing.T) {
	tok, err := NewUartTXPin(Pin{0, 0})
	if err != nil {
		t.Fatalf("NewUartTXPin() = %v", err)
	}
	if tok.uartTX() != (Pin{0, 0}) {
		t.Fatalf("token does not carry back the original pin")
	}
}
