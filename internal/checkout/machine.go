package checkout

import (
	"errors"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
)

// State is the checkout machine's position in the payment flow.
type State string

const (
	StateIdle            State = "idle"
	StateMethodSelection State = "method_selection"
	StateCashTendering   State = "cash_tendering"
	StateDiscountAuth    State = "discount_authorization"
	StateConfirmed       State = "confirmed"
)

func (s State) String() string {
	return string(s)
}

// DiscountStage is the step inside the two-step discount dialog.
type DiscountStage string

const (
	StageDiscountPin     DiscountStage = "pin"
	StageDiscountPercent DiscountStage = "percent"
)

// PinChecker verifies a manager PIN. Injected so the static code lives in
// configuration, not here.
type PinChecker func(pin string) bool

var (
	ErrBadTransition    = errors.New("operation not allowed in current state")
	ErrPinMismatch      = errors.New("manager PIN mismatch")
	ErrInvalidPercent   = errors.New("discount percent must be between 0 and 100")
	ErrInsufficientCash = errors.New("tendered amount below order total")
)

// Machine drives one order's checkout: method selection, optional authorized
// discount, cash tendering with change computation, and confirmation. It is
// a plain value object with no transport attached, so every transition is
// unit-testable.
type Machine struct {
	state    State
	stage    DiscountStage
	total    float64
	method   entity.PaymentMethod
	discount float64
	checkPin PinChecker

	Tendered Keypad
	Pin      Keypad
	Percent  Keypad
}

// NewMachine returns an idle machine using the given PIN capability.
func NewMachine(checkPin PinChecker) *Machine {
	m := &Machine{
		state:    StateIdle,
		stage:    StageDiscountPin,
		checkPin: checkPin,
	}
	m.Percent.limit = 3
	return m
}

// State reports the current state.
func (m *Machine) State() State {
	return m.state
}

// Stage reports the discount dialog step.
func (m *Machine) Stage() DiscountStage {
	return m.stage
}

// Method returns the selected payment method once confirmed.
func (m *Machine) Method() entity.PaymentMethod {
	return m.method
}

// DiscountPercent returns the authorized discount, 0 when none was applied.
func (m *Machine) DiscountPercent() float64 {
	return m.discount
}

// Total returns the order total the machine is settling, discount applied.
func (m *Machine) Total() float64 {
	return entity.Round2(m.total * (1 - m.discount/100))
}

// Begin moves from Idle to MethodSelection for an order with the given raw
// total.
func (m *Machine) Begin(rawTotal float64) error {
	if m.state != StateIdle {
		return ErrBadTransition
	}
	m.total = rawTotal
	m.state = StateMethodSelection
	return nil
}

// SelectMethod picks the settlement channel. Card, mobile and pay-later
// confirm immediately; cash opens the tendering step.
func (m *Machine) SelectMethod(method entity.PaymentMethod) error {
	if m.state != StateMethodSelection {
		return ErrBadTransition
	}
	switch method {
	case entity.PaymentCash:
		m.method = method
		m.Tendered.Clear()
		m.state = StateCashTendering
	case entity.PaymentCard, entity.PaymentMobile, entity.PaymentPayLater:
		m.method = method
		m.state = StateConfirmed
	default:
		return errors.New("unknown payment method")
	}
	return nil
}

// ChangeDue is the cash to hand back, never negative.
func (m *Machine) ChangeDue() float64 {
	change := m.Tendered.Amount() - m.Total()
	if change < 0 {
		return 0
	}
	return entity.Round2(change)
}

// CanConfirmCash reports whether the tendered amount covers the total. The
// screen keeps the confirm button disabled while this is false.
func (m *Machine) CanConfirmCash() bool {
	return m.state == StateCashTendering && m.Tendered.Amount() >= m.Total()
}

// ConfirmCash finalizes a cash payment. Guarded rather than error-driven in
// the UI, but validated here anyway.
func (m *Machine) ConfirmCash() error {
	if m.state != StateCashTendering {
		return ErrBadTransition
	}
	if m.Tendered.Amount() < m.Total() {
		return ErrInsufficientCash
	}
	m.state = StateConfirmed
	return nil
}

// BeginDiscount opens the manager authorization dialog at the PIN step.
func (m *Machine) BeginDiscount() error {
	if m.state != StateMethodSelection {
		return ErrBadTransition
	}
	m.state = StateDiscountAuth
	m.stage = StageDiscountPin
	m.Pin.Clear()
	m.Percent.Clear()
	return nil
}

// SubmitPin checks the accumulated PIN. A mismatch clears the buffer and
// stays on the PIN step; a match advances to percent entry.
func (m *Machine) SubmitPin() error {
	if m.state != StateDiscountAuth || m.stage != StageDiscountPin {
		return ErrBadTransition
	}
	if m.checkPin == nil || !m.checkPin(m.Pin.Value()) {
		m.Pin.Clear()
		return ErrPinMismatch
	}
	m.Pin.Clear()
	m.stage = StageDiscountPercent
	return nil
}

// SubmitPercent applies the accumulated percentage. Out-of-range input is
// rejected with the buffer retained for correction; valid input applies the
// discount and returns to method selection with the dialog reset to its PIN
// step.
func (m *Machine) SubmitPercent() error {
	if m.state != StateDiscountAuth || m.stage != StageDiscountPercent {
		return ErrBadTransition
	}
	pct := m.Percent.Amount()
	if m.Percent.Value() == "" || pct < 0 || pct > 100 {
		return ErrInvalidPercent
	}
	m.discount = pct
	m.Percent.Clear()
	m.stage = StageDiscountPin
	m.state = StateMethodSelection
	return nil
}

// CancelDiscount abandons the dialog and returns to method selection.
func (m *Machine) CancelDiscount() error {
	if m.state != StateDiscountAuth {
		return ErrBadTransition
	}
	m.Pin.Clear()
	m.Percent.Clear()
	m.stage = StageDiscountPin
	m.state = StateMethodSelection
	return nil
}

// Cancel aborts the whole checkout from any state, discarding in-progress
// input. The applied discount is kept on purpose: it was authorized against
// the order, not the payment attempt.
func (m *Machine) Cancel() {
	m.Pin.Clear()
	m.Percent.Clear()
	m.Tendered.Clear()
	m.stage = StageDiscountPin
	m.method = ""
	m.state = StateIdle
}
