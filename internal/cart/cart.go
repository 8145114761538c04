package cart

import (
	"errors"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
)

var (
	// ErrLineNotFound is returned when an index is outside the cart.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrLineLocked is returned for quantity changes on already-submitted
	// lines.
	ErrLineLocked = errors.New("cart line belongs to a submitted order revision")
	// ErrUnauthorized is returned when removing a submitted line without a
	// manager authorization.
	ErrUnauthorized = errors.New("manager authorization required")
)

// Cart is the ordered collection of lines for one order session. Insertion
// order is display order. Lines are addressed by index because identical
// configurations may appear more than once.
type Cart struct {
	lines []entity.CartLine
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddLine appends a line at the end. No merging happens even when an
// identical configuration already exists.
func (c *Cart) AddLine(line entity.CartLine) {
	c.lines = append(c.lines, line)
}

// Lines returns a copy of the cart contents in display order.
func (c *Cart) Lines() []entity.CartLine {
	return append([]entity.CartLine(nil), c.lines...)
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IncreaseQuantity bumps a line's quantity by one. Submitted lines are
// immutable.
func (c *Cart) IncreaseQuantity(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	if c.lines[index].ExistingItem {
		return ErrLineLocked
	}
	c.lines[index].Quantity++
	return nil
}

// DecreaseQuantity lowers a line's quantity by one, flooring at 1. A
// decrement at quantity 1 is a no-op, never a removal.
func (c *Cart) DecreaseQuantity(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	if c.lines[index].ExistingItem {
		return ErrLineLocked
	}
	if c.lines[index].Quantity > 1 {
		c.lines[index].Quantity--
	}
	return nil
}

// RemoveLine deletes a line. Lines from a submitted order revision require
// authorized=true, which the checkout layer supplies after a manager PIN
// check.
func (c *Cart) RemoveLine(index int, authorized bool) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	if c.lines[index].ExistingItem && !authorized {
		return ErrUnauthorized
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

// Clear empties the cart after a successful submission or an explicit
// cancel.
func (c *Cart) Clear() {
	c.lines = nil
}

// Total sums quantity times unit price over all lines. Removals never enter
// the computation.
func (c *Cart) Total() float64 {
	total := 0.0
	for i := range c.lines {
		total += c.lines[i].Subtotal()
	}
	return total
}
