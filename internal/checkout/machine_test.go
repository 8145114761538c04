package checkout

import (
	"math"
	"testing"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
)

func staticPin(code string) PinChecker {
	return func(pin string) bool { return pin == code }
}

func press(k *Keypad, digits string) {
	for _, d := range digits {
		k.Press(d)
	}
}

func TestKeypad(t *testing.T) {
	var k Keypad
	press(&k, "12a3")
	if k.Value() != "123" {
		t.Errorf("Value() = %q, want %q", k.Value(), "123")
	}
	k.Backspace()
	if k.Value() != "12" {
		t.Errorf("Value() after backspace = %q, want %q", k.Value(), "12")
	}
	k.Clear()
	if k.Value() != "" || k.Amount() != 0 {
		t.Errorf("keypad not empty after clear: %q / %v", k.Value(), k.Amount())
	}
	k.Backspace() // no-op on empty buffer
	if k.Value() != "" {
		t.Errorf("backspace on empty buffer produced %q", k.Value())
	}
}

func TestKeypadLimit(t *testing.T) {
	k := Keypad{limit: 3}
	press(&k, "12345")
	if k.Value() != "123" {
		t.Errorf("Value() = %q, want %q", k.Value(), "123")
	}
}

func TestImmediateMethods(t *testing.T) {
	for _, method := range []entity.PaymentMethod{entity.PaymentCard, entity.PaymentMobile, entity.PaymentPayLater} {
		t.Run(method.String(), func(t *testing.T) {
			m := NewMachine(staticPin("123456"))
			if err := m.Begin(50); err != nil {
				t.Fatalf("Begin: %v", err)
			}
			if err := m.SelectMethod(method); err != nil {
				t.Fatalf("SelectMethod: %v", err)
			}
			if m.State() != StateConfirmed {
				t.Errorf("State() = %s, want confirmed", m.State())
			}
			if m.Method() != method {
				t.Errorf("Method() = %s, want %s", m.Method(), method)
			}
		})
	}
}

func TestBeginFromNonIdle(t *testing.T) {
	m := NewMachine(staticPin("123456"))
	m.Begin(10)
	if err := m.Begin(10); err != ErrBadTransition {
		t.Errorf("second Begin error = %v, want ErrBadTransition", err)
	}
}

func TestUnknownMethodRejected(t *testing.T) {
	m := NewMachine(staticPin("123456"))
	m.Begin(10)
	if err := m.SelectMethod("cheque"); err == nil {
		t.Error("expected error for unknown payment method")
	}
	if m.State() != StateMethodSelection {
		t.Errorf("State() = %s, want method_selection", m.State())
	}
}

func TestCashTendering(t *testing.T) {
	m := NewMachine(staticPin("123456"))
	m.Begin(37.50)
	if err := m.SelectMethod(entity.PaymentCash); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if m.State() != StateCashTendering {
		t.Fatalf("State() = %s, want cash_tendering", m.State())
	}

	// Tendered below total: change zero, confirm disabled and rejected.
	press(&m.Tendered, "20")
	if m.ChangeDue() != 0 {
		t.Errorf("ChangeDue() = %v, want 0", m.ChangeDue())
	}
	if m.CanConfirmCash() {
		t.Error("CanConfirmCash() = true below total")
	}
	if err := m.ConfirmCash(); err != ErrInsufficientCash {
		t.Errorf("ConfirmCash error = %v, want ErrInsufficientCash", err)
	}

	// "5000" reads as 5000 currency units.
	m.Tendered.Clear()
	press(&m.Tendered, "5000")
	if got := m.ChangeDue(); math.Abs(got-4962.50) > 1e-9 {
		t.Errorf("ChangeDue() = %v, want 4962.50", got)
	}
	if !m.CanConfirmCash() {
		t.Error("CanConfirmCash() = false at 5000 tendered")
	}
	if err := m.ConfirmCash(); err != nil {
		t.Fatalf("ConfirmCash: %v", err)
	}
	if m.State() != StateConfirmed {
		t.Errorf("State() = %s, want confirmed", m.State())
	}
}

func TestExactTenderConfirms(t *testing.T) {
	m := NewMachine(staticPin("123456"))
	m.Begin(40)
	m.SelectMethod(entity.PaymentCash)
	press(&m.Tendered, "40")
	if !m.CanConfirmCash() {
		t.Error("CanConfirmCash() = false for exact tender")
	}
	if m.ChangeDue() != 0 {
		t.Errorf("ChangeDue() = %v, want 0", m.ChangeDue())
	}
}

func TestDiscountFlow(t *testing.T) {
	m := NewMachine(staticPin("123456"))
	m.Begin(100)
	if err := m.BeginDiscount(); err != nil {
		t.Fatalf("BeginDiscount: %v", err)
	}
	if m.State() != StateDiscountAuth || m.Stage() != StageDiscountPin {
		t.Fatalf("state/stage = %s/%s, want discount_authorization/pin", m.State(), m.Stage())
	}

	// Wrong PIN: buffer cleared, stage unchanged.
	press(&m.Pin, "000000")
	if err := m.SubmitPin(); err != ErrPinMismatch {
		t.Errorf("SubmitPin error = %v, want ErrPinMismatch", err)
	}
	if m.Pin.Value() != "" {
		t.Errorf("PIN buffer = %q, want cleared", m.Pin.Value())
	}
	if m.Stage() != StageDiscountPin {
		t.Errorf("Stage() = %s, want pin", m.Stage())
	}

	// Correct PIN advances to percent entry.
	press(&m.Pin, "123456")
	if err := m.SubmitPin(); err != nil {
		t.Fatalf("SubmitPin: %v", err)
	}
	if m.Stage() != StageDiscountPercent {
		t.Fatalf("Stage() = %s, want percent", m.Stage())
	}

	// Out-of-range percent rejected with the buffer retained.
	press(&m.Percent, "150")
	if err := m.SubmitPercent(); err != ErrInvalidPercent {
		t.Errorf("SubmitPercent error = %v, want ErrInvalidPercent", err)
	}
	if m.Percent.Value() != "150" {
		t.Errorf("Percent buffer = %q, want retained %q", m.Percent.Value(), "150")
	}

	m.Percent.Clear()
	press(&m.Percent, "10")
	if err := m.SubmitPercent(); err != nil {
		t.Fatalf("SubmitPercent: %v", err)
	}
	if m.State() != StateMethodSelection {
		t.Errorf("State() = %s, want method_selection", m.State())
	}
	if m.Stage() != StageDiscountPin {
		t.Errorf("Stage() = %s, want reset to pin", m.Stage())
	}
	if m.DiscountPercent() != 10 {
		t.Errorf("DiscountPercent() = %v, want 10", m.DiscountPercent())
	}
	if got := m.Total(); math.Abs(got-90) > 1e-9 {
		t.Errorf("Total() = %v, want 90", got)
	}
}

func TestDiscountPercentMaxThreeDigits(t *testing.T) {
	m := NewMachine(staticPin("123456"))
	m.Begin(100)
	m.BeginDiscount()
	press(&m.Pin, "123456")
	m.SubmitPin()

	press(&m.Percent, "1000")
	if m.Percent.Value() != "100" {
		t.Errorf("Percent buffer = %q, want capped at %q", m.Percent.Value(), "100")
	}
	if err := m.SubmitPercent(); err != nil {
		t.Errorf("SubmitPercent: %v", err)
	}
	if m.DiscountPercent() != 100 {
		t.Errorf("DiscountPercent() = %v, want 100", m.DiscountPercent())
	}
}

func TestEmptyPercentRejected(t *testing.T) {
	m := NewMachine(staticPin("123456"))
	m.Begin(100)
	m.BeginDiscount()
	press(&m.Pin, "123456")
	m.SubmitPin()
	if err := m.SubmitPercent(); err != ErrInvalidPercent {
		t.Errorf("SubmitPercent error = %v, want ErrInvalidPercent", err)
	}
}

func TestCancelDiscountReturnsToMethodSelection(t *testing.T) {
	m := NewMachine(staticPin("123456"))
	m.Begin(100)
	m.BeginDiscount()
	press(&m.Pin, "12")
	if err := m.CancelDiscount(); err != nil {
		t.Fatalf("CancelDiscount: %v", err)
	}
	if m.State() != StateMethodSelection {
		t.Errorf("State() = %s, want method_selection", m.State())
	}
	if m.Pin.Value() != "" {
		t.Errorf("PIN buffer = %q, want cleared", m.Pin.Value())
	}
	if m.DiscountPercent() != 0 {
		t.Errorf("DiscountPercent() = %v, want 0", m.DiscountPercent())
	}
}

func TestCancelFromAnyState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Machine)
	}{
		{name: "method selection", setup: func(m *Machine) { m.Begin(10) }},
		{name: "cash tendering", setup: func(m *Machine) {
			m.Begin(10)
			m.SelectMethod(entity.PaymentCash)
			press(&m.Tendered, "50")
		}},
		{name: "discount auth", setup: func(m *Machine) {
			m.Begin(10)
			m.BeginDiscount()
			press(&m.Pin, "12")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(staticPin("123456"))
			tt.setup(m)
			m.Cancel()
			if m.State() != StateIdle {
				t.Errorf("State() = %s, want idle", m.State())
			}
			if m.Tendered.Value() != "" || m.Pin.Value() != "" || m.Percent.Value() != "" {
				t.Error("buffers not discarded on cancel")
			}
		})
	}
}

func TestOperationsOutsideTheirState(t *testing.T) {
	m := NewMachine(staticPin("123456"))
	if err := m.SelectMethod(entity.PaymentCash); err != ErrBadTransition {
		t.Errorf("SelectMethod from idle = %v, want ErrBadTransition", err)
	}
	if err := m.ConfirmCash(); err != ErrBadTransition {
		t.Errorf("ConfirmCash from idle = %v, want ErrBadTransition", err)
	}
	if err := m.SubmitPin(); err != ErrBadTransition {
		t.Errorf("SubmitPin from idle = %v, want ErrBadTransition", err)
	}
	if err := m.SubmitPercent(); err != ErrBadTransition {
		t.Errorf("SubmitPercent from idle = %v, want ErrBadTransition", err)
	}
	if err := m.BeginDiscount(); err != ErrBadTransition {
		t.Errorf("BeginDiscount from idle = %v, want ErrBadTransition", err)
	}
}

func TestCashTotalUsesDiscount(t *testing.T) {
	m := NewMachine(staticPin("123456"))
	m.Begin(100)
	m.BeginDiscount()
	press(&m.Pin, "123456")
	m.SubmitPin()
	press(&m.Percent, "50")
	m.SubmitPercent()

	m.SelectMethod(entity.PaymentCash)
	press(&m.Tendered, "60")
	if got := m.ChangeDue(); math.Abs(got-10) > 1e-9 {
		t.Errorf("ChangeDue() = %v, want 10 against discounted total", got)
	}
}
